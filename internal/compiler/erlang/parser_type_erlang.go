// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

import (
	"fmt"

	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/idl"
)

// The type grammar is its own precedence ladder, loosest first:
//
//	::                        variable binders
//	|                         unions
//	..                        integer ranges
//	+ - bor bxor bsl bsr      constant arithmetic
//	* / div rem band
//	unary + - bnot
//	name(Args) and m:name(Args)
//	primary

// TypeDef = atom "(" [variable {"," variable}] ")" "::" Type "."
func (p *parserErlangTokens) parseTypeDef(start idl.Location, opaque bool) topLevel {
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return nil
	}
	params := applyOverCommaDelimitedList(p, idl.TokenTypeParenOpen, p.parseTypeVar, idl.TokenTypeParenClose)
	if params == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeColonColon) == nil {
		return nil
	}
	maybeBody := p.parseType()
	if maybeBody == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeDot) == nil {
		return nil
	}
	return &astTypeDef{
		astNode: astNode{p.span(start)},
		opaque:  opaque,
		name:    maybeName.Value,
		params:  params,
		body:    maybeBody,
	}
}

func (p *parserErlangTokens) parseTypeVar() (astVariable, bool) {
	maybeToken := p.expectOne(idl.TokenTypeVariable)
	if maybeToken == nil {
		return astVariable{}, false
	}
	return astVariable{
		astNode: astNode{maybeToken.Span},
		name:    maybeToken.Value,
	}, true
}

// TypeSpec = [atom ":"] atom TypeSig {";" TypeSig} "."
func (p *parserErlangTokens) parseTypeSpec(start idl.Location) topLevel {
	maybeSpec := p.parseTypeSpecBody(start)
	if maybeSpec == nil {
		return nil
	}
	return maybeSpec
}

// Callback = TypeSpec
func (p *parserErlangTokens) parseAttributeCallback(start idl.Location, optional bool) topLevel {
	maybeSpec := p.parseTypeSpecBody(start)
	if maybeSpec == nil {
		return nil
	}
	return &astAttributeCallback{
		astNode:  astNode{p.span(start)},
		spec:     *maybeSpec,
		optional: optional,
	}
}

func (p *parserErlangTokens) parseTypeSpecBody(start idl.Location) *astTypeSpec {
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return nil
	}

	this := astTypeSpec{
		name: maybeName.Value,
	}
	if p.peekType(idl.TokenTypeColon) {
		p.advance()
		maybeFunction := p.expectOne(idl.TokenTypeAtom)
		if maybeFunction == nil {
			return nil
		}
		this.module = maybeName.Value
		this.name = maybeFunction.Value
	}

	sigs := applyOverSeparatedList(p, idl.TokenTypeSemicolon, p.parseTypeSig)
	if sigs == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeDot) == nil {
		return nil
	}
	this.sigs = sigs
	this.span = p.span(start)
	return &this
}

// TypeSig = "(" [Type {"," Type}] ")" "->" Type ["when" TypeGuard {"," TypeGuard}]
func (p *parserErlangTokens) parseTypeSig() (astTypeSig, bool) {
	start := p.start()
	params := applyOverCommaDelimitedList(p, idl.TokenTypeParenOpen, p.parseTypeOk, idl.TokenTypeParenClose)
	if params == nil {
		return astTypeSig{}, false
	}
	if p.expectOne(idl.TokenTypeArrow) == nil {
		return astTypeSig{}, false
	}
	maybeResult := p.parseType()
	if maybeResult == nil {
		return astTypeSig{}, false
	}

	this := astTypeSig{
		params: params,
		result: maybeResult,
	}
	if p.peekType(idl.TokenTypeKeywordWhen) {
		p.advance()
		guards := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseTypeGuard)
		if guards == nil {
			return astTypeSig{}, false
		}
		this.guards = guards
	}
	this.span = p.span(start)
	return this, true
}

// TypeGuard = variable "::" Type | atom "(" variable "," Type ")"
//
// The call form is the legacy spelling is_subtype(Var, Type). Any other guard
// function name is a recoverable diagnostic; the guard is still recorded with
// the same argument shape so later passes see a consistent tree.
func (p *parserErlangTokens) parseTypeGuard() (astTypeGuard, bool) {
	start := p.start()
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input (expecting a type guard)")
		return astTypeGuard{}, false
	}

	if maybeToken.Type == idl.TokenTypeVariable {
		p.advance()
		if p.expectOne(idl.TokenTypeColonColon) == nil {
			return astTypeGuard{}, false
		}
		maybeType := p.parseType()
		if maybeType == nil {
			return astTypeGuard{}, false
		}
		return astTypeGuard{
			astNode: astNode{p.span(start)},
			variable: astVariable{
				astNode: astNode{maybeToken.Span},
				name:    maybeToken.Value,
			},
			typ: maybeType,
		}, true
	}

	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return astTypeGuard{}, false
	}
	if maybeName.Value != "is_subtype" {
		p.reportWarning(exc.CodeBadTypeGuard,
			fmt.Sprintf("unknown type guard %s", maybeName.Value),
			maybeName.Span,
			exc.Label{Span: maybeName.Span, Message: "expecting is_subtype or a :: constraint"})
	}
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return astTypeGuard{}, false
	}
	maybeVariable, ok := p.parseTypeVar()
	if !ok {
		return astTypeGuard{}, false
	}
	if p.expectOne(idl.TokenTypeComma) == nil {
		return astTypeGuard{}, false
	}
	maybeType := p.parseType()
	if maybeType == nil {
		return astTypeGuard{}, false
	}
	if p.expectOne(idl.TokenTypeParenClose) == nil {
		return astTypeGuard{}, false
	}
	return astTypeGuard{
		astNode:  astNode{p.span(start)},
		variable: maybeVariable,
		typ:      maybeType,
	}, true
}

// Type = variable "::" UnionType | UnionType
func (p *parserErlangTokens) parseType() typeExpr {
	maybeToken := p.peek()
	if maybeToken != nil && maybeToken.Type == idl.TokenTypeVariable {
		if next := p.peekN(1); next != nil && next.Type == idl.TokenTypeColonColon {
			start := p.start()
			p.advance()
			p.advance()
			maybeType := p.parseTypeUnion()
			if maybeType == nil {
				return nil
			}
			return &astTypeBinder{
				astNode: astNode{p.span(start)},
				name: astVariable{
					astNode: astNode{maybeToken.Span},
					name:    maybeToken.Value,
				},
				typ: maybeType,
			}
		}
	}
	return p.parseTypeUnion()
}

// UnionType = RangeType {"|" RangeType}
func (p *parserErlangTokens) parseTypeUnion() typeExpr {
	start := p.start()
	alternatives := applyOverSeparatedList(p, idl.TokenTypePipe, p.parseTypeRangeOk)
	if alternatives == nil {
		return nil
	}
	if len(alternatives) == 1 {
		return alternatives[0]
	}
	return &astTypeUnion{
		astNode:      astNode{p.span(start)},
		alternatives: alternatives,
	}
}

func (p *parserErlangTokens) parseTypeRangeOk() (typeExpr, bool) {
	t := p.parseTypeRange()
	return t, t != nil
}

// RangeType = AddType [".." AddType]
func (p *parserErlangTokens) parseTypeRange() typeExpr {
	start := p.start()
	maybeLow := p.parseTypeAdd()
	if maybeLow == nil {
		return nil
	}
	if !p.peekType(idl.TokenTypeDotDot) {
		return maybeLow
	}
	p.advance()
	maybeHigh := p.parseTypeAdd()
	if maybeHigh == nil {
		return nil
	}
	return &astTypeRange{
		astNode: astNode{p.span(start)},
		low:     maybeLow,
		high:    maybeHigh,
	}
}

// AddType = MulType {AddOp MulType}
func (p *parserErlangTokens) parseTypeAdd() typeExpr {
	return p.parseTypeBinOpLeft(addOps, p.parseTypeMul)
}

// MulType = UnaryType {MulOp UnaryType}
func (p *parserErlangTokens) parseTypeMul() typeExpr {
	return p.parseTypeBinOpLeft(mulOps, p.parseTypeUnary)
}

func (p *parserErlangTokens) parseTypeBinOpLeft(ops []idl.TokenType, operand func() typeExpr) typeExpr {
	start := p.start()
	maybeLeft := operand()
	if maybeLeft == nil {
		return nil
	}
	for {
		maybeToken := p.peek()
		if !tokenTypeIn(maybeToken, ops) {
			return maybeLeft
		}
		p.advance()
		maybeRight := operand()
		if maybeRight == nil {
			return nil
		}
		maybeLeft = &astTypeBinOp{
			astNode: astNode{p.span(start)},
			op:      *maybeToken,
			left:    maybeLeft,
			right:   maybeRight,
		}
	}
}

// UnaryType = [UnaryOp] CallType
func (p *parserErlangTokens) parseTypeUnary() typeExpr {
	maybeToken := p.peek()
	if !tokenTypeIn(maybeToken, unaryOps) {
		return p.parseTypeCall()
	}
	start := p.start()
	p.advance()
	maybeOperand := p.parseTypeUnary()
	if maybeOperand == nil {
		return nil
	}
	return &astTypeUnaryOp{
		astNode: astNode{p.span(start)},
		op:      *maybeToken,
		operand: maybeOperand,
	}
}

// CallType = atom ":" atom "(" [Type {"," Type}] ")"
//          | atom "(" [Type {"," Type}] ")"
//          | PrimaryType
func (p *parserErlangTokens) parseTypeCall() typeExpr {
	maybeToken := p.peek()
	if maybeToken == nil || maybeToken.Type != idl.TokenTypeAtom {
		return p.parseTypePrimary()
	}

	start := p.start()
	if next := p.peekN(1); next != nil && next.Type == idl.TokenTypeColon {
		p.advance()
		p.advance()
		maybeName := p.expectOne(idl.TokenTypeAtom)
		if maybeName == nil {
			return nil
		}
		args := applyOverCommaDelimitedList(p, idl.TokenTypeParenOpen, p.parseTypeOk, idl.TokenTypeParenClose)
		if args == nil {
			return nil
		}
		return &astTypeRemote{
			astNode: astNode{p.span(start)},
			module:  maybeToken.Value,
			name:    maybeName.Value,
			args:    args,
		}
	}

	if next := p.peekN(1); next != nil && next.Type == idl.TokenTypeParenOpen {
		p.advance()
		args := applyOverCommaDelimitedList(p, idl.TokenTypeParenOpen, p.parseTypeOk, idl.TokenTypeParenClose)
		if args == nil {
			return nil
		}
		return &astTypeCall{
			astNode: astNode{p.span(start)},
			name:    maybeToken.Value,
			args:    args,
		}
	}

	p.advance()
	return &astAtom{
		astNode: astNode{maybeToken.Span},
		name:    maybeToken.Value,
	}
}

// PrimaryType = variable | int_lit | char_lit | TupleType | ListType
//             | MapOrRecordType | BinaryType | FunType | "(" Type ")"
func (p *parserErlangTokens) parseTypePrimary() typeExpr {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input (expecting a type)")
		return nil
	}
	switch maybeToken.Type {
	case idl.TokenTypeVariable:
		p.advance()
		return &astVariable{
			astNode: astNode{maybeToken.Span},
			name:    maybeToken.Value,
		}
	case idl.TokenTypeInteger, idl.TokenTypeIntegerBig, idl.TokenTypeChar:
		maybeLiteral := p.parseLiteral()
		if maybeLiteral == nil {
			return nil
		}
		return maybeLiteral.(typeExpr)
	case idl.TokenTypeCurlyOpen:
		start := p.start()
		elements := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseTypeOk, idl.TokenTypeCurlyClose)
		if elements == nil {
			return nil
		}
		return &astTypeTuple{
			astNode:  astNode{p.span(start)},
			elements: elements,
		}
	case idl.TokenTypeSquareOpen:
		return p.parseTypeList()
	case idl.TokenTypeHash:
		return p.parseTypeMapOrRecord()
	case idl.TokenTypeBinaryOpen:
		return p.parseTypeBinary()
	case idl.TokenTypeKeywordFun:
		return p.parseTypeFun()
	case idl.TokenTypeParenOpen:
		start := p.start()
		p.advance()
		maybeType := p.parseType()
		if maybeType == nil {
			return nil
		}
		if p.expectOne(idl.TokenTypeParenClose) == nil {
			return nil
		}
		if settable, ok := maybeType.(spanSetter); ok {
			settable.setSpan(p.span(start))
		}
		return maybeType
	default:
		p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting a type)", maybeToken.Value))
		return nil
	}
}

// ListType = "[" "]" | "[" Type "]" | "[" Type "," "..." "]"
func (p *parserErlangTokens) parseTypeList() typeExpr {
	start := p.start()
	if p.expectOne(idl.TokenTypeSquareOpen) == nil {
		return nil
	}
	if p.peekType(idl.TokenTypeSquareClose) {
		p.advance()
		return &astNil{astNode{p.span(start)}}
	}

	maybeElement := p.parseType()
	if maybeElement == nil {
		return nil
	}
	this := astTypeList{
		element: maybeElement,
	}
	if p.peekType(idl.TokenTypeComma) {
		p.advance()
		if p.expectOne(idl.TokenTypeEllipsis) == nil {
			return nil
		}
		this.nonEmpty = true
	}
	if p.expectOne(idl.TokenTypeSquareClose) == nil {
		return nil
	}
	this.span = p.span(start)
	return &this
}

// MapOrRecordType = "#" "{" [MapEntryType {"," MapEntryType}] "}"
//                 | "#" atom "{" [FieldType {"," FieldType}] "}"
func (p *parserErlangTokens) parseTypeMapOrRecord() typeExpr {
	start := p.start()
	if p.expectOne(idl.TokenTypeHash) == nil {
		return nil
	}
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input after #")
		return nil
	}

	if maybeToken.Type == idl.TokenTypeCurlyOpen {
		entries := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseTypeMapEntry, idl.TokenTypeCurlyClose)
		if entries == nil {
			return nil
		}
		return &astTypeMap{
			astNode: astNode{p.span(start)},
			entries: entries,
		}
	}

	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return nil
	}
	fields := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseTypeRecordField, idl.TokenTypeCurlyClose)
	if fields == nil {
		return nil
	}
	return &astTypeRecord{
		astNode: astNode{p.span(start)},
		name:    maybeName.Value,
		fields:  fields,
	}
}

// MapEntryType = Type ("=>" | ":=") Type
func (p *parserErlangTokens) parseTypeMapEntry() (astTypeMapEntry, bool) {
	start := p.start()
	maybeKey := p.parseType()
	if maybeKey == nil {
		return astTypeMapEntry{}, false
	}
	if p.expectOneOf([]idl.TokenType{idl.TokenTypeFatArrow, idl.TokenTypeColonEqual}) == nil {
		return astTypeMapEntry{}, false
	}
	maybeValue := p.parseType()
	if maybeValue == nil {
		return astTypeMapEntry{}, false
	}
	return astTypeMapEntry{
		astNode: astNode{p.span(start)},
		key:     maybeKey,
		value:   maybeValue,
	}, true
}

// FieldType = atom "::" Type
func (p *parserErlangTokens) parseTypeRecordField() (astTypeRecordField, bool) {
	start := p.start()
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return astTypeRecordField{}, false
	}
	if p.expectOne(idl.TokenTypeColonColon) == nil {
		return astTypeRecordField{}, false
	}
	maybeType := p.parseType()
	if maybeType == nil {
		return astTypeRecordField{}, false
	}
	return astTypeRecordField{
		astNode: astNode{p.span(start)},
		name:    maybeName.Value,
		typ:     maybeType,
	}, true
}

// BinaryType = "<<" ">>"
//            | "<<" "_" ":" UnaryType ">>"
//            | "<<" "_" ":" "_" "*" UnaryType ">>"
//            | "<<" "_" ":" UnaryType "," "_" ":" "_" "*" UnaryType ">>"
func (p *parserErlangTokens) parseTypeBinary() typeExpr {
	start := p.start()
	if p.expectOne(idl.TokenTypeBinaryOpen) == nil {
		return nil
	}
	this := astTypeBinary{}
	if p.peekType(idl.TokenTypeBinaryClose) {
		p.advance()
		this.span = p.span(start)
		return &this
	}

	if !p.expectTypeWildcard() {
		return nil
	}
	if p.expectOne(idl.TokenTypeColon) == nil {
		return nil
	}

	if p.peekType(idl.TokenTypeVariable) && p.peek().Value == "_" {
		p.advance()
		if p.expectOne(idl.TokenTypeStar) == nil {
			return nil
		}
		maybeUnit := p.parseTypeUnary()
		if maybeUnit == nil {
			return nil
		}
		this.unit = maybeUnit
	} else {
		maybeSize := p.parseTypeUnary()
		if maybeSize == nil {
			return nil
		}
		this.size = maybeSize

		if p.peekType(idl.TokenTypeComma) {
			p.advance()
			if !p.expectTypeWildcard() {
				return nil
			}
			if p.expectOne(idl.TokenTypeColon) == nil {
				return nil
			}
			if !p.expectTypeWildcard() {
				return nil
			}
			if p.expectOne(idl.TokenTypeStar) == nil {
				return nil
			}
			maybeUnit := p.parseTypeUnary()
			if maybeUnit == nil {
				return nil
			}
			this.unit = maybeUnit
		}
	}

	if p.expectOne(idl.TokenTypeBinaryClose) == nil {
		return nil
	}
	this.span = p.span(start)
	return &this
}

func (p *parserErlangTokens) expectTypeWildcard() bool {
	maybeToken := p.expectOne(idl.TokenTypeVariable)
	if maybeToken == nil {
		return false
	}
	if maybeToken.Value != "_" {
		p.reportSpan(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting _)", maybeToken.Value), maybeToken.Span)
		return false
	}
	return true
}

// FunType = "fun" "(" ")"
//         | "fun" "(" "(" "..." ")" "->" Type ")"
//         | "fun" "(" "(" [Type {"," Type}] ")" "->" Type ")"
func (p *parserErlangTokens) parseTypeFun() typeExpr {
	start := p.start()
	if p.expectOne(idl.TokenTypeKeywordFun) == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}

	this := astTypeFun{}
	if p.peekType(idl.TokenTypeParenClose) {
		p.advance()
		this.span = p.span(start)
		return &this
	}

	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}
	if p.peekType(idl.TokenTypeEllipsis) {
		p.advance()
		this.anyArity = true
		if p.expectOne(idl.TokenTypeParenClose) == nil {
			return nil
		}
	} else if p.peekType(idl.TokenTypeParenClose) {
		p.advance()
		this.params = []typeExpr{}
	} else {
		params := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseTypeOk)
		if params == nil {
			return nil
		}
		this.params = params
		if p.expectOne(idl.TokenTypeParenClose) == nil {
			return nil
		}
	}

	if p.expectOne(idl.TokenTypeArrow) == nil {
		return nil
	}
	maybeResult := p.parseType()
	if maybeResult == nil {
		return nil
	}
	this.result = maybeResult

	if p.expectOne(idl.TokenTypeParenClose) == nil {
		return nil
	}
	this.span = p.span(start)
	return &this
}
