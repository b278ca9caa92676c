// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

import (
	"fmt"

	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/idl"
)

// The expression grammar is a precedence ladder with one rule per level,
// loosest first:
//
//	catch
//	= !                       right associative
//	orelse
//	andalso
//	== /= =< < >= > =:= =/=   non associative
//	++ --                     right associative
//	+ - bor bxor bsl bsr or xor
//	* / div rem band and
//	unary + - bnot not
//	# record and map suffixes
//	function application
//	: remote references
//	primary

type spanSetter interface {
	setSpan(span idl.Span)
}

// Expr = "catch" Expr | MatchExpr
func (p *parserErlangTokens) parseExpr() expression {
	if p.peekType(idl.TokenTypeKeywordCatch) {
		start := p.start()
		p.advance()
		maybeOperand := p.parseExpr()
		if maybeOperand == nil {
			return nil
		}
		return &astCatch{
			astNode: astNode{p.span(start)},
			operand: maybeOperand,
		}
	}
	return p.parseMatchExpr()
}

// MatchExpr = OrelseExpr [("=" | "!") MatchExpr]
func (p *parserErlangTokens) parseMatchExpr() expression {
	start := p.start()
	maybeLeft := p.parseOrelseExpr()
	if maybeLeft == nil {
		return nil
	}
	maybeToken := p.peek()
	if maybeToken == nil {
		return maybeLeft
	}
	switch maybeToken.Type {
	case idl.TokenTypeEqual:
		p.advance()
		maybeRight := p.parseMatchExpr()
		if maybeRight == nil {
			return nil
		}
		return &astMatch{
			astNode: astNode{p.span(start)},
			left:    maybeLeft,
			right:   maybeRight,
		}
	case idl.TokenTypeBang:
		p.advance()
		maybeRight := p.parseMatchExpr()
		if maybeRight == nil {
			return nil
		}
		return &astSend{
			astNode: astNode{p.span(start)},
			left:    maybeLeft,
			right:   maybeRight,
		}
	}
	return maybeLeft
}

// OrelseExpr = AndalsoExpr {"orelse" AndalsoExpr}
func (p *parserErlangTokens) parseOrelseExpr() expression {
	return p.parseBinOpLeft([]idl.TokenType{idl.TokenTypeKeywordOrelse}, p.parseAndalsoExpr)
}

// AndalsoExpr = CompareExpr {"andalso" CompareExpr}
func (p *parserErlangTokens) parseAndalsoExpr() expression {
	return p.parseBinOpLeft([]idl.TokenType{idl.TokenTypeKeywordAndalso}, p.parseCompareExpr)
}

var compareOps = []idl.TokenType{
	idl.TokenTypeEqualEqual,
	idl.TokenTypeSlashEqual,
	idl.TokenTypeEqualLess,
	idl.TokenTypeLess,
	idl.TokenTypeGreaterEqual,
	idl.TokenTypeGreater,
	idl.TokenTypeEqualColonEqual,
	idl.TokenTypeEqualSlashEqual,
}

func tokenTypeIn(tok *idl.Token, types []idl.TokenType) bool {
	if tok == nil {
		return false
	}
	for _, t := range types {
		if tok.Type == t {
			return true
		}
	}
	return false
}

// CompareExpr = ListOpExpr [CompareOp ListOpExpr]
//
// Comparison operators do not associate. A chain like a == b == c is rejected
// here with a dedicated message rather than falling through to a generic
// unexpected-token error.
func (p *parserErlangTokens) parseCompareExpr() expression {
	start := p.start()
	maybeLeft := p.parseListOpExpr()
	if maybeLeft == nil {
		return nil
	}
	maybeToken := p.peek()
	if !tokenTypeIn(maybeToken, compareOps) {
		return maybeLeft
	}
	p.advance()
	maybeRight := p.parseListOpExpr()
	if maybeRight == nil {
		return nil
	}
	if trailing := p.peek(); tokenTypeIn(trailing, compareOps) {
		p.reportSpan(exc.CodeUnexpectedToken,
			fmt.Sprintf("comparison operators do not associate; parenthesize one side of %s", trailing.Value),
			trailing.Span)
		return nil
	}
	return &astBinOp{
		astNode: astNode{p.span(start)},
		op:      *maybeToken,
		left:    maybeLeft,
		right:   maybeRight,
	}
}

// ListOpExpr = AddExpr [("++" | "--") ListOpExpr]
func (p *parserErlangTokens) parseListOpExpr() expression {
	start := p.start()
	maybeLeft := p.parseAddExpr()
	if maybeLeft == nil {
		return nil
	}
	maybeToken := p.peek()
	if !tokenTypeIn(maybeToken, []idl.TokenType{idl.TokenTypePlusPlus, idl.TokenTypeMinusMinus}) {
		return maybeLeft
	}
	p.advance()
	maybeRight := p.parseListOpExpr()
	if maybeRight == nil {
		return nil
	}
	return &astBinOp{
		astNode: astNode{p.span(start)},
		op:      *maybeToken,
		left:    maybeLeft,
		right:   maybeRight,
	}
}

var addOps = []idl.TokenType{
	idl.TokenTypePlus,
	idl.TokenTypeMinus,
	idl.TokenTypeKeywordBor,
	idl.TokenTypeKeywordBxor,
	idl.TokenTypeKeywordBsl,
	idl.TokenTypeKeywordBsr,
	idl.TokenTypeKeywordOr,
	idl.TokenTypeKeywordXor,
}

// AddExpr = MulExpr {AddOp MulExpr}
func (p *parserErlangTokens) parseAddExpr() expression {
	return p.parseBinOpLeft(addOps, p.parseMulExpr)
}

var mulOps = []idl.TokenType{
	idl.TokenTypeStar,
	idl.TokenTypeSlash,
	idl.TokenTypeKeywordDiv,
	idl.TokenTypeKeywordRem,
	idl.TokenTypeKeywordBand,
	idl.TokenTypeKeywordAnd,
}

// MulExpr = UnaryExpr {MulOp UnaryExpr}
func (p *parserErlangTokens) parseMulExpr() expression {
	return p.parseBinOpLeft(mulOps, p.parseUnaryExpr)
}

// generic left-associative binary operator rule.
func (p *parserErlangTokens) parseBinOpLeft(ops []idl.TokenType, operand func() expression) expression {
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
		maybeLeft = &astBinOp{
			astNode: astNode{p.span(start)},
			op:      *maybeToken,
			left:    maybeLeft,
			right:   maybeRight,
		}
	}
}

var unaryOps = []idl.TokenType{
	idl.TokenTypePlus,
	idl.TokenTypeMinus,
	idl.TokenTypeKeywordBnot,
	idl.TokenTypeKeywordNot,
}

// UnaryExpr = [UnaryOp] RecordMapExpr
func (p *parserErlangTokens) parseUnaryExpr() expression {
	maybeToken := p.peek()
	if !tokenTypeIn(maybeToken, unaryOps) {
		return p.parseRecordMapExpr()
	}
	start := p.start()
	p.advance()
	maybeOperand := p.parseUnaryExpr()
	if maybeOperand == nil {
		return nil
	}
	return &astUnaryOp{
		astNode: astNode{p.span(start)},
		op:      *maybeToken,
		operand: maybeOperand,
	}
}

// RecordMapExpr = ("#" HashForm | ApplyExpr) {"#" HashSuffix}
//
// The prefix forms are map and record construction and the record index
// #name.field; the suffix forms are map update, record update, and record
// field access. Suffixes chain left associatively, as in M#{a => 1}#{b => 2}.
func (p *parserErlangTokens) parseRecordMapExpr() expression {
	start := p.start()

	var maybeLeft expression
	if p.peekType(idl.TokenTypeHash) {
		maybeLeft = p.parseHashPrefix(start)
	} else {
		maybeLeft = p.parseApplyExpr()
	}
	if maybeLeft == nil {
		return nil
	}

	for p.peekType(idl.TokenTypeHash) {
		maybeLeft = p.parseHashSuffix(start, maybeLeft)
		if maybeLeft == nil {
			return nil
		}
	}
	return maybeLeft
}

// HashForm = "{" [MapEntry {"," MapEntry}] "}"
//          | atom "{" [RecordField {"," RecordField}] "}"
//          | atom "." atom
func (p *parserErlangTokens) parseHashPrefix(start idl.Location) expression {
	if p.expectOne(idl.TokenTypeHash) == nil {
		return nil
	}
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input after #")
		return nil
	}

	if maybeToken.Type == idl.TokenTypeCurlyOpen {
		entries := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseMapEntry, idl.TokenTypeCurlyClose)
		if entries == nil {
			return nil
		}
		return &astMap{
			astNode: astNode{p.span(start)},
			entries: entries,
		}
	}

	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return nil
	}
	if p.peekType(idl.TokenTypeDot) {
		p.advance()
		maybeField := p.expectOne(idl.TokenTypeAtom)
		if maybeField == nil {
			return nil
		}
		return &astRecordIndex{
			astNode: astNode{p.span(start)},
			name:    maybeName.Value,
			field:   maybeField.Value,
		}
	}
	fields := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseRecordFieldExpr, idl.TokenTypeCurlyClose)
	if fields == nil {
		return nil
	}
	return &astRecord{
		astNode: astNode{p.span(start)},
		name:    maybeName.Value,
		fields:  fields,
	}
}

// HashSuffix = "{" [MapEntry {"," MapEntry}] "}"
//            | atom "{" [RecordField {"," RecordField}] "}"
//            | atom "." atom
func (p *parserErlangTokens) parseHashSuffix(start idl.Location, subject expression) expression {
	if p.expectOne(idl.TokenTypeHash) == nil {
		return nil
	}
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input after #")
		return nil
	}

	if maybeToken.Type == idl.TokenTypeCurlyOpen {
		entries := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseMapEntry, idl.TokenTypeCurlyClose)
		if entries == nil {
			return nil
		}
		return &astMapUpdate{
			astNode: astNode{p.span(start)},
			subject: subject,
			entries: entries,
		}
	}

	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return nil
	}
	if p.peekType(idl.TokenTypeDot) {
		p.advance()
		maybeField := p.expectOne(idl.TokenTypeAtom)
		if maybeField == nil {
			return nil
		}
		return &astRecordAccess{
			astNode: astNode{p.span(start)},
			subject: subject,
			name:    maybeName.Value,
			field:   maybeField.Value,
		}
	}
	fields := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseRecordFieldExpr, idl.TokenTypeCurlyClose)
	if fields == nil {
		return nil
	}
	return &astRecordUpdate{
		astNode: astNode{p.span(start)},
		subject: subject,
		name:    maybeName.Value,
		fields:  fields,
	}
}

// MapEntry = Expr ("=>" | ":=") Expr
func (p *parserErlangTokens) parseMapEntry() (astMapEntry, bool) {
	start := p.start()
	maybeKey := p.parseExpr()
	if maybeKey == nil {
		return astMapEntry{}, false
	}
	maybeOp := p.expectOneOf([]idl.TokenType{idl.TokenTypeFatArrow, idl.TokenTypeColonEqual})
	if maybeOp == nil {
		return astMapEntry{}, false
	}
	maybeValue := p.parseExpr()
	if maybeValue == nil {
		return astMapEntry{}, false
	}
	return astMapEntry{
		astNode: astNode{p.span(start)},
		key:     maybeKey,
		exact:   maybeOp.Type == idl.TokenTypeColonEqual,
		value:   maybeValue,
	}, true
}

// RecordField = (atom | "_") "=" Expr
//
// The wildcard field name sets every otherwise unmentioned field, as used in
// match specifications.
func (p *parserErlangTokens) parseRecordFieldExpr() (astRecordField, bool) {
	start := p.start()
	maybeName := p.expectOneOf([]idl.TokenType{idl.TokenTypeAtom, idl.TokenTypeVariable})
	if maybeName == nil {
		return astRecordField{}, false
	}
	if maybeName.Type == idl.TokenTypeVariable && maybeName.Value != "_" {
		p.reportSpan(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (record field names are atoms)", maybeName.Value), maybeName.Span)
		return astRecordField{}, false
	}
	if p.expectOne(idl.TokenTypeEqual) == nil {
		return astRecordField{}, false
	}
	maybeValue := p.parseExpr()
	if maybeValue == nil {
		return astRecordField{}, false
	}
	return astRecordField{
		astNode: astNode{p.span(start)},
		field:   maybeName.Value,
		value:   maybeValue,
	}, true
}

// ApplyExpr = RemoteExpr {"(" [Expr {"," Expr}] ")"}
func (p *parserErlangTokens) parseApplyExpr() expression {
	start := p.start()
	maybeCallee := p.parseRemoteExpr()
	if maybeCallee == nil {
		return nil
	}
	for p.peekType(idl.TokenTypeParenOpen) {
		args := applyOverCommaDelimitedList(p, idl.TokenTypeParenOpen, p.parseExprOk, idl.TokenTypeParenClose)
		if args == nil {
			return nil
		}
		maybeCallee = &astCall{
			astNode: astNode{p.span(start)},
			callee:  maybeCallee,
			args:    args,
		}
	}
	return maybeCallee
}

// RemoteExpr = PrimaryExpr [":" PrimaryExpr]
func (p *parserErlangTokens) parseRemoteExpr() expression {
	start := p.start()
	maybeModule := p.parsePrimaryExpr()
	if maybeModule == nil {
		return nil
	}
	if !p.peekType(idl.TokenTypeColon) {
		return maybeModule
	}
	p.advance()
	maybeFunction := p.parsePrimaryExpr()
	if maybeFunction == nil {
		return nil
	}
	return &astRemote{
		astNode:  astNode{p.span(start)},
		module:   maybeModule,
		function: maybeFunction,
	}
}

// PrimaryExpr = Literal | variable | Tuple | List | ListComprehension
//             | Binary | BinaryComprehension | "(" Expr ")" | Block
//             | If | Case | Receive | Try | Fun
func (p *parserErlangTokens) parsePrimaryExpr() expression {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input (expecting an expression)")
		return nil
	}
	switch maybeToken.Type {
	case idl.TokenTypeVariable:
		p.advance()
		return &astVariable{
			astNode: astNode{maybeToken.Span},
			name:    maybeToken.Value,
		}
	case idl.TokenTypeCurlyOpen:
		start := p.start()
		elements := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseExprOk, idl.TokenTypeCurlyClose)
		if elements == nil {
			return nil
		}
		return &astTuple{
			astNode:  astNode{p.span(start)},
			elements: elements,
		}
	case idl.TokenTypeSquareOpen:
		return p.parseListExpr()
	case idl.TokenTypeBinaryOpen:
		return p.parseBinaryExpr()
	case idl.TokenTypeParenOpen:
		start := p.start()
		p.advance()
		maybeExpr := p.parseExpr()
		if maybeExpr == nil {
			return nil
		}
		if p.expectOne(idl.TokenTypeParenClose) == nil {
			return nil
		}
		// the node keeps the parenthesized extent
		if settable, ok := maybeExpr.(spanSetter); ok {
			settable.setSpan(p.span(start))
		}
		return maybeExpr
	case idl.TokenTypeKeywordBegin:
		return p.parseBlockExpr()
	case idl.TokenTypeKeywordIf:
		return p.parseIfExpr()
	case idl.TokenTypeKeywordCase:
		return p.parseCaseExpr()
	case idl.TokenTypeKeywordReceive:
		return p.parseReceiveExpr()
	case idl.TokenTypeKeywordTry:
		return p.parseTryExpr()
	case idl.TokenTypeKeywordFun:
		return p.parseFunExpr()
	default:
		maybeLiteral := p.parseLiteral()
		if maybeLiteral == nil {
			return nil
		}
		return maybeLiteral
	}
}

// List = "[" "]"
//      | "[" Expr "||" Qualifier {"," Qualifier} "]"
//      | "[" Expr {"," Expr} ["|" Expr] "]"
func (p *parserErlangTokens) parseListExpr() expression {
	start := p.start()
	if p.expectOne(idl.TokenTypeSquareOpen) == nil {
		return nil
	}
	if p.peekType(idl.TokenTypeSquareClose) {
		p.advance()
		return &astNil{astNode{p.span(start)}}
	}

	maybeFirst := p.parseExpr()
	if maybeFirst == nil {
		return nil
	}

	if p.peekType(idl.TokenTypePipePipe) {
		p.advance()
		qualifiers := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseQualifier)
		if qualifiers == nil {
			return nil
		}
		if p.expectOne(idl.TokenTypeSquareClose) == nil {
			return nil
		}
		return &astListComprehension{
			astNode:    astNode{p.span(start)},
			body:       maybeFirst,
			qualifiers: qualifiers,
		}
	}

	this := astList{
		elements: []expression{maybeFirst},
	}
	for p.peekType(idl.TokenTypeComma) {
		p.advance()
		maybeElement := p.parseExpr()
		if maybeElement == nil {
			return nil
		}
		this.elements = append(this.elements, maybeElement)
	}
	if p.peekType(idl.TokenTypePipe) {
		p.advance()
		maybeTail := p.parseExpr()
		if maybeTail == nil {
			return nil
		}
		this.tail = maybeTail
	}
	if p.expectOne(idl.TokenTypeSquareClose) == nil {
		return nil
	}
	this.span = p.span(start)
	return &this
}

// Qualifier = Pattern "<-" Expr | Pattern "<=" Expr | Expr
//
// A qualifier that starts like a pattern may still be a filter expression, so
// the pattern interpretation is tried speculatively against a scratch
// reporter and the input is rewound when no generator arrow follows.
func (p *parserErlangTokens) parseQualifier() (qualifier, bool) {
	start := p.start()
	pos, loc := p.mark()

	saved := p.reporter
	p.reporter = exc.NewReporter(nil)
	maybeMatch := p.parsePattern()
	arrow := p.peek()
	p.reporter = saved

	if maybeMatch != nil && arrow != nil && (arrow.Type == idl.TokenTypeLeftArrow || arrow.Type == idl.TokenTypeDoubleLeft) {
		p.advance()
		maybeSource := p.parseExpr()
		if maybeSource == nil {
			return nil, false
		}
		if arrow.Type == idl.TokenTypeLeftArrow {
			return &astListGenerator{
				astNode: astNode{p.span(start)},
				match:   maybeMatch,
				source:  maybeSource,
			}, true
		}
		return &astBinaryGenerator{
			astNode: astNode{p.span(start)},
			match:   maybeMatch,
			source:  maybeSource,
		}, true
	}

	p.reset(pos, loc)
	maybeCondition := p.parseExpr()
	if maybeCondition == nil {
		return nil, false
	}
	return &astFilter{
		astNode:   astNode{p.span(start)},
		condition: maybeCondition,
	}, true
}

// Binary = "<<" ">>"
//        | "<<" Expr "||" Qualifier {"," Qualifier} ">>"
//        | "<<" BinaryElement {"," BinaryElement} ">>"
func (p *parserErlangTokens) parseBinaryExpr() expression {
	start := p.start()
	if p.expectOne(idl.TokenTypeBinaryOpen) == nil {
		return nil
	}
	if p.peekType(idl.TokenTypeBinaryClose) {
		p.advance()
		return &astBinary{astNode: astNode{p.span(start)}, elements: []astBinaryElement{}}
	}

	elementStart := p.start()
	maybeFirst := p.parseBitExpr()
	if maybeFirst == nil {
		return nil
	}

	if p.peekType(idl.TokenTypePipePipe) {
		p.advance()
		qualifiers := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseQualifier)
		if qualifiers == nil {
			return nil
		}
		if p.expectOne(idl.TokenTypeBinaryClose) == nil {
			return nil
		}
		return &astBinaryComprehension{
			astNode:    astNode{p.span(start)},
			body:       maybeFirst,
			qualifiers: qualifiers,
		}
	}

	first, ok := p.parseBinaryElementRest(elementStart, maybeFirst)
	if !ok {
		return nil
	}
	this := astBinary{
		elements: []astBinaryElement{first},
	}
	for p.peekType(idl.TokenTypeComma) {
		p.advance()
		element, ok := p.parseBinaryElement()
		if !ok {
			return nil
		}
		this.elements = append(this.elements, element)
	}
	if p.expectOne(idl.TokenTypeBinaryClose) == nil {
		return nil
	}
	this.span = p.span(start)
	return &this
}

// BinaryElement = BitExpr [":" PrimaryExpr] ["/" BitType {"-" BitType}]
func (p *parserErlangTokens) parseBinaryElement() (astBinaryElement, bool) {
	start := p.start()
	maybeValue := p.parseBitExpr()
	if maybeValue == nil {
		return astBinaryElement{}, false
	}
	return p.parseBinaryElementRest(start, maybeValue)
}

func (p *parserErlangTokens) parseBinaryElementRest(start idl.Location, value expression) (astBinaryElement, bool) {
	this := astBinaryElement{
		value: value,
	}
	if p.peekType(idl.TokenTypeColon) {
		p.advance()
		maybeSize := p.parsePrimaryExpr()
		if maybeSize == nil {
			return astBinaryElement{}, false
		}
		this.size = maybeSize
	}
	if p.peekType(idl.TokenTypeSlash) {
		p.advance()
		specifiers := applyOverSeparatedList(p, idl.TokenTypeMinus, p.parseBitType)
		if specifiers == nil {
			return astBinaryElement{}, false
		}
		this.specifiers = specifiers
	}
	this.span = p.span(start)
	return this, true
}

// BitExpr = [UnaryOp] PrimaryExpr
//
// Binary element values bind at primary level; anything looser needs parens.
func (p *parserErlangTokens) parseBitExpr() expression {
	maybeToken := p.peek()
	if !tokenTypeIn(maybeToken, unaryOps) {
		return p.parsePrimaryExpr()
	}
	start := p.start()
	p.advance()
	maybeOperand := p.parsePrimaryExpr()
	if maybeOperand == nil {
		return nil
	}
	return &astUnaryOp{
		astNode: astNode{p.span(start)},
		op:      *maybeToken,
		operand: maybeOperand,
	}
}

// BitType = atom [":" int_lit]
func (p *parserErlangTokens) parseBitType() (astBitType, bool) {
	start := p.start()
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return astBitType{}, false
	}
	this := astBitType{
		name: maybeName.Value,
	}
	if p.peekType(idl.TokenTypeColon) {
		p.advance()
		maybeUnit := p.parseArity()
		if maybeUnit == nil {
			return astBitType{}, false
		}
		this.unit = maybeUnit.val
	}
	this.span = p.span(start)
	return this, true
}

// Block = "begin" Expr {"," Expr} "end"
func (p *parserErlangTokens) parseBlockExpr() expression {
	start := p.start()
	if p.expectOne(idl.TokenTypeKeywordBegin) == nil {
		return nil
	}
	body := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseExprOk)
	if body == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeKeywordEnd) == nil {
		return nil
	}
	return &astBlock{
		astNode: astNode{p.span(start)},
		body:    body,
	}
}

// If = "if" IfClause {";" IfClause} "end"
func (p *parserErlangTokens) parseIfExpr() expression {
	start := p.start()
	if p.expectOne(idl.TokenTypeKeywordIf) == nil {
		return nil
	}
	clauses := applyOverSeparatedList(p, idl.TokenTypeSemicolon, p.parseIfClause)
	if clauses == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeKeywordEnd) == nil {
		return nil
	}
	return &astIf{
		astNode: astNode{p.span(start)},
		clauses: clauses,
	}
}

// IfClause = Guard "->" Expr {"," Expr}
func (p *parserErlangTokens) parseIfClause() (astIfClause, bool) {
	start := p.start()
	maybeGuard := p.parseGuard()
	if maybeGuard == nil {
		return astIfClause{}, false
	}
	if p.expectOne(idl.TokenTypeArrow) == nil {
		return astIfClause{}, false
	}
	body := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseExprOk)
	if body == nil {
		return astIfClause{}, false
	}
	return astIfClause{
		astNode: astNode{p.span(start)},
		guard:   *maybeGuard,
		body:    body,
	}, true
}

// Case = "case" Expr "of" CaseClause {";" CaseClause} "end"
func (p *parserErlangTokens) parseCaseExpr() expression {
	start := p.start()
	if p.expectOne(idl.TokenTypeKeywordCase) == nil {
		return nil
	}
	maybeScrutinee := p.parseExpr()
	if maybeScrutinee == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeKeywordOf) == nil {
		return nil
	}
	clauses := applyOverSeparatedList(p, idl.TokenTypeSemicolon, p.parseCaseClause)
	if clauses == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeKeywordEnd) == nil {
		return nil
	}
	return &astCase{
		astNode:   astNode{p.span(start)},
		scrutinee: maybeScrutinee,
		clauses:   clauses,
	}
}

// CaseClause = Pattern [Guard] "->" Expr {"," Expr}
func (p *parserErlangTokens) parseCaseClause() (astClause, bool) {
	start := p.start()
	maybeMatch := p.parsePattern()
	if maybeMatch == nil {
		return astClause{}, false
	}

	this := astClause{
		match: maybeMatch,
	}
	if p.peekType(idl.TokenTypeKeywordWhen) {
		p.advance()
		maybeGuard := p.parseGuard()
		if maybeGuard == nil {
			return astClause{}, false
		}
		this.guard = maybeGuard
	}

	if p.expectOne(idl.TokenTypeArrow) == nil {
		return astClause{}, false
	}
	body := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseExprOk)
	if body == nil {
		return astClause{}, false
	}
	this.body = body
	this.span = p.span(start)
	return this, true
}

// Receive = "receive" [CaseClause {";" CaseClause}] ["after" Expr "->" Expr {"," Expr}] "end"
//
// At least one of the clause list and the after section must be present.
func (p *parserErlangTokens) parseReceiveExpr() expression {
	start := p.start()
	if p.expectOne(idl.TokenTypeKeywordReceive) == nil {
		return nil
	}

	this := astReceive{
		clauses: []astClause{},
	}
	if !p.peekType(idl.TokenTypeKeywordAfter) && !p.peekType(idl.TokenTypeKeywordEnd) {
		clauses := applyOverSeparatedList(p, idl.TokenTypeSemicolon, p.parseCaseClause)
		if clauses == nil {
			return nil
		}
		this.clauses = clauses
	}

	if p.peekType(idl.TokenTypeKeywordAfter) {
		afterStart := p.start()
		p.advance()
		maybeTimeout := p.parseExpr()
		if maybeTimeout == nil {
			return nil
		}
		if p.expectOne(idl.TokenTypeArrow) == nil {
			return nil
		}
		body := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseExprOk)
		if body == nil {
			return nil
		}
		this.after = &astReceiveAfter{
			astNode: astNode{p.span(afterStart)},
			timeout: maybeTimeout,
			body:    body,
		}
	}

	if len(this.clauses) == 0 && this.after == nil {
		p.report(exc.CodeUnexpectedToken, "receive expression requires clauses or an after section")
		return nil
	}
	if p.expectOne(idl.TokenTypeKeywordEnd) == nil {
		return nil
	}
	this.span = p.span(start)
	return &this
}

// Try = "try" Expr {"," Expr} ["of" CaseClause {";" CaseClause}]
//       ["catch" CatchClause {";" CatchClause}] ["after" Expr {"," Expr}] "end"
//
// At least one of the catch and after sections must be present.
func (p *parserErlangTokens) parseTryExpr() expression {
	start := p.start()
	if p.expectOne(idl.TokenTypeKeywordTry) == nil {
		return nil
	}
	exprs := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseExprOk)
	if exprs == nil {
		return nil
	}

	this := astTry{
		exprs: exprs,
	}
	if p.peekType(idl.TokenTypeKeywordOf) {
		p.advance()
		ofClauses := applyOverSeparatedList(p, idl.TokenTypeSemicolon, p.parseCaseClause)
		if ofClauses == nil {
			return nil
		}
		this.ofClauses = ofClauses
	}

	if p.peekType(idl.TokenTypeKeywordCatch) {
		p.advance()
		catchClauses := applyOverSeparatedList(p, idl.TokenTypeSemicolon, p.parseCatchClause)
		if catchClauses == nil {
			return nil
		}
		this.catchClauses = catchClauses
	}

	if p.peekType(idl.TokenTypeKeywordAfter) {
		p.advance()
		afterBody := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseExprOk)
		if afterBody == nil {
			return nil
		}
		this.afterBody = afterBody
	}

	if this.catchClauses == nil && this.afterBody == nil {
		p.report(exc.CodeUnexpectedToken, "try expression requires a catch or after section")
		return nil
	}
	if p.expectOne(idl.TokenTypeKeywordEnd) == nil {
		return nil
	}
	this.span = p.span(start)
	return &this
}

// CatchClause = [(atom | variable) ":"] Pattern [":" variable] [Guard] "->" Expr {"," Expr}
//
// An absent class becomes a throw atom and an absent stack trace variable
// becomes a wildcard, both synthesized with a zero width span at the clause
// start.
func (p *parserErlangTokens) parseCatchClause() (astCatchClause, bool) {
	start := p.start()
	this := astCatchClause{}

	maybeToken := p.peek()
	if maybeToken != nil && (maybeToken.Type == idl.TokenTypeAtom || maybeToken.Type == idl.TokenTypeVariable) {
		if next := p.peekN(1); next != nil && next.Type == idl.TokenTypeColon {
			p.advance()
			p.advance()
			if maybeToken.Type == idl.TokenTypeAtom {
				this.class = &astAtom{
					astNode: astNode{maybeToken.Span},
					name:    maybeToken.Value,
				}
			} else {
				this.class = &astVariable{
					astNode: astNode{maybeToken.Span},
					name:    maybeToken.Value,
				}
			}
		}
	}

	if this.class == nil {
		this.class = &astAtom{
			astNode: astNode{idl.Span{Start: start, End: start}},
			name:    "throw",
		}
	}

	maybeMatch := p.parsePattern()
	if maybeMatch == nil {
		return astCatchClause{}, false
	}
	this.match = maybeMatch

	if p.peekType(idl.TokenTypeColon) {
		p.advance()
		maybeTrace := p.expectOne(idl.TokenTypeVariable)
		if maybeTrace == nil {
			return astCatchClause{}, false
		}
		this.trace = astVariable{
			astNode: astNode{maybeTrace.Span},
			name:    maybeTrace.Value,
		}
	} else {
		this.trace = astVariable{
			astNode: astNode{idl.Span{Start: start, End: start}},
			name:    "_",
		}
	}

	if p.peekType(idl.TokenTypeKeywordWhen) {
		p.advance()
		maybeGuard := p.parseGuard()
		if maybeGuard == nil {
			return astCatchClause{}, false
		}
		this.guard = maybeGuard
	}

	if p.expectOne(idl.TokenTypeArrow) == nil {
		return astCatchClause{}, false
	}
	body := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseExprOk)
	if body == nil {
		return astCatchClause{}, false
	}
	this.body = body
	this.span = p.span(start)
	return this, true
}

// Fun = "fun" atom "/" int_lit
//     | "fun" (atom | variable) ":" (atom | variable) "/" (int_lit | variable)
//     | "fun" FunClause {";" FunClause} "end"
func (p *parserErlangTokens) parseFunExpr() expression {
	start := p.start()
	if p.expectOne(idl.TokenTypeKeywordFun) == nil {
		return nil
	}
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input after fun")
		return nil
	}

	switch maybeToken.Type {
	case idl.TokenTypeAtom:
		if next := p.peekN(1); next != nil && next.Type == idl.TokenTypeColon {
			return p.parseFunRefRemote(start)
		}
		p.advance()
		if p.expectOne(idl.TokenTypeSlash) == nil {
			return nil
		}
		maybeArity := p.parseArity()
		if maybeArity == nil {
			return nil
		}
		return &astFunRef{
			astNode: astNode{p.span(start)},
			name:    maybeToken.Value,
			arity:   maybeArity.val,
		}
	case idl.TokenTypeVariable:
		if next := p.peekN(1); next != nil && next.Type == idl.TokenTypeColon {
			return p.parseFunRefRemote(start)
		}
		fallthrough
	case idl.TokenTypeParenOpen:
		clauses := applyOverSeparatedList(p, idl.TokenTypeSemicolon, p.parseFunClause)
		if clauses == nil {
			return nil
		}
		if p.expectOne(idl.TokenTypeKeywordEnd) == nil {
			return nil
		}
		return p.newFun(p.span(start), clauses)
	default:
		p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s after fun", maybeToken.Value))
		return nil
	}
}

// each position of fun M:F/A may independently be a variable; the reference
// is dynamic if any of them is.
func (p *parserErlangTokens) parseFunRefRemote(start idl.Location) expression {
	maybeModule := p.expectOneOf([]idl.TokenType{idl.TokenTypeAtom, idl.TokenTypeVariable})
	if maybeModule == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeColon) == nil {
		return nil
	}
	maybeFunction := p.expectOneOf([]idl.TokenType{idl.TokenTypeAtom, idl.TokenTypeVariable})
	if maybeFunction == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeSlash) == nil {
		return nil
	}
	maybeArity := p.expectOneOf([]idl.TokenType{idl.TokenTypeInteger, idl.TokenTypeVariable})
	if maybeArity == nil {
		return nil
	}
	if maybeArity.Type == idl.TokenTypeInteger {
		if _, err := parseIntegerText(maybeArity.Value); err != nil {
			p.reportSpan(exc.CodeInvalidLiteral, fmt.Sprintf("invalid arity %s", maybeArity.Value), maybeArity.Span)
			return nil
		}
	}
	dynamic := maybeModule.Type == idl.TokenTypeVariable ||
		maybeFunction.Type == idl.TokenTypeVariable ||
		maybeArity.Type == idl.TokenTypeVariable
	return &astFunRefRemote{
		astNode:  astNode{p.span(start)},
		module:   *maybeModule,
		function: *maybeFunction,
		arity:    *maybeArity,
		dynamic:  dynamic,
	}
}

// FunClause = [variable] "(" [Pattern {"," Pattern}] ")" [Guard] "->" Expr {"," Expr}
func (p *parserErlangTokens) parseFunClause() (astFunctionClause, bool) {
	start := p.start()
	var name *idl.Token
	if p.peekType(idl.TokenTypeVariable) {
		name = p.peek()
		p.advance()
	}
	return p.parseFunctionClauseRest(start, name)
}

// newFun is the validating constructor for a fun expression: the clauses must
// agree on arity, and either all carry the same name variable or none do.
func (p *parserErlangTokens) newFun(span idl.Span, clauses []astFunctionClause) *astFun {
	name := ""
	if clauses[0].name != nil {
		name = clauses[0].name.Value
	}
	arity := len(clauses[0].params)
	for _, clause := range clauses[1:] {
		clauseName := ""
		if clause.name != nil {
			clauseName = clause.name.Value
		}
		if clauseName != name {
			p.reportSpan(exc.CodeClauseMismatch, fmt.Sprintf("fun clause name %s does not match %s", clauseName, name), clause.span)
			return nil
		}
		if len(clause.params) != arity {
			p.reportSpan(exc.CodeClauseMismatch, fmt.Sprintf("fun clause has %d parameters, expected %d", len(clause.params), arity), clause.span)
			return nil
		}
	}
	return &astFun{
		astNode: astNode{span},
		clauses: clauses,
	}
}
