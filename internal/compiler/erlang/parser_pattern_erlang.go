// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

import (
	"fmt"

	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/idl"
)

// The pattern grammar mirrors the expression ladder from the match level down
// to the primaries, minus everything that cannot appear in match position:
// sends, calls, comprehensions, compound forms, and the record and map suffix
// operators. Operators stay in the grammar so that constant arithmetic such
// as -1 or "abc" ++ Rest keeps its usual precedence.

// Pattern = ComparePattern ["=" Pattern]
func (p *parserErlangTokens) parsePattern() pattern {
	start := p.start()
	maybeLeft := p.parseComparePattern()
	if maybeLeft == nil {
		return nil
	}
	if !p.peekType(idl.TokenTypeEqual) {
		return maybeLeft
	}
	p.advance()
	maybeRight := p.parsePattern()
	if maybeRight == nil {
		return nil
	}
	return &astMatchPattern{
		astNode: astNode{p.span(start)},
		left:    maybeLeft,
		right:   maybeRight,
	}
}

// ComparePattern = ListOpPattern [CompareOp ListOpPattern]
func (p *parserErlangTokens) parseComparePattern() pattern {
	start := p.start()
	maybeLeft := p.parseListOpPattern()
	if maybeLeft == nil {
		return nil
	}
	maybeToken := p.peek()
	if !tokenTypeIn(maybeToken, compareOps) {
		return maybeLeft
	}
	p.advance()
	maybeRight := p.parseListOpPattern()
	if maybeRight == nil {
		return nil
	}
	if trailing := p.peek(); tokenTypeIn(trailing, compareOps) {
		p.reportSpan(exc.CodeUnexpectedToken,
			fmt.Sprintf("comparison operators do not associate; parenthesize one side of %s", trailing.Value),
			trailing.Span)
		return nil
	}
	return &astBinOpPattern{
		astNode: astNode{p.span(start)},
		op:      *maybeToken,
		left:    maybeLeft,
		right:   maybeRight,
	}
}

// ListOpPattern = AddPattern [("++" | "--") ListOpPattern]
func (p *parserErlangTokens) parseListOpPattern() pattern {
	start := p.start()
	maybeLeft := p.parseAddPattern()
	if maybeLeft == nil {
		return nil
	}
	maybeToken := p.peek()
	if !tokenTypeIn(maybeToken, []idl.TokenType{idl.TokenTypePlusPlus, idl.TokenTypeMinusMinus}) {
		return maybeLeft
	}
	p.advance()
	maybeRight := p.parseListOpPattern()
	if maybeRight == nil {
		return nil
	}
	return &astBinOpPattern{
		astNode: astNode{p.span(start)},
		op:      *maybeToken,
		left:    maybeLeft,
		right:   maybeRight,
	}
}

// AddPattern = MulPattern {AddOp MulPattern}
func (p *parserErlangTokens) parseAddPattern() pattern {
	return p.parseBinOpPatternLeft(addOps, p.parseMulPattern)
}

// MulPattern = UnaryPattern {MulOp UnaryPattern}
func (p *parserErlangTokens) parseMulPattern() pattern {
	return p.parseBinOpPatternLeft(mulOps, p.parseUnaryPattern)
}

func (p *parserErlangTokens) parseBinOpPatternLeft(ops []idl.TokenType, operand func() pattern) pattern {
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
		maybeLeft = &astBinOpPattern{
			astNode: astNode{p.span(start)},
			op:      *maybeToken,
			left:    maybeLeft,
			right:   maybeRight,
		}
	}
}

// UnaryPattern = [UnaryOp] HashPattern
func (p *parserErlangTokens) parseUnaryPattern() pattern {
	maybeToken := p.peek()
	if !tokenTypeIn(maybeToken, unaryOps) {
		return p.parseHashPattern()
	}
	start := p.start()
	p.advance()
	maybeOperand := p.parseUnaryPattern()
	if maybeOperand == nil {
		return nil
	}
	return &astUnaryOpPattern{
		astNode: astNode{p.span(start)},
		op:      *maybeToken,
		operand: maybeOperand,
	}
}

// HashPattern = "#" "{" [MapPatternEntry {"," MapPatternEntry}] "}"
//             | "#" atom "{" [RecordFieldPattern {"," RecordFieldPattern}] "}"
//             | "#" atom "." atom
//             | PrimaryPattern
//
// The suffix forms of # are not part of the pattern grammar; only map
// projections, record matches, and record index constants appear here.
func (p *parserErlangTokens) parseHashPattern() pattern {
	if !p.peekType(idl.TokenTypeHash) {
		return p.parsePrimaryPattern()
	}
	start := p.start()
	p.advance()
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input after #")
		return nil
	}

	if maybeToken.Type == idl.TokenTypeCurlyOpen {
		entries := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseMapPatternEntry, idl.TokenTypeCurlyClose)
		if entries == nil {
			return nil
		}
		return &astMapPattern{
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
	fields := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseRecordFieldPattern, idl.TokenTypeCurlyClose)
	if fields == nil {
		return nil
	}
	return &astRecordPattern{
		astNode: astNode{p.span(start)},
		name:    maybeName.Value,
		fields:  fields,
	}
}

// MapPatternEntry = Pattern ":=" Pattern
//
// Map patterns are projections: only := entries are legal, so a => here is a
// syntax error.
func (p *parserErlangTokens) parseMapPatternEntry() (astMapPatternEntry, bool) {
	start := p.start()
	maybeKey := p.parsePattern()
	if maybeKey == nil {
		return astMapPatternEntry{}, false
	}
	if p.expectOne(idl.TokenTypeColonEqual) == nil {
		return astMapPatternEntry{}, false
	}
	maybeValue := p.parsePattern()
	if maybeValue == nil {
		return astMapPatternEntry{}, false
	}
	return astMapPatternEntry{
		astNode: astNode{p.span(start)},
		key:     maybeKey,
		value:   maybeValue,
	}, true
}

// RecordFieldPattern = (atom | "_") "=" Pattern
func (p *parserErlangTokens) parseRecordFieldPattern() (astRecordFieldPattern, bool) {
	start := p.start()
	maybeName := p.expectOneOf([]idl.TokenType{idl.TokenTypeAtom, idl.TokenTypeVariable})
	if maybeName == nil {
		return astRecordFieldPattern{}, false
	}
	if maybeName.Type == idl.TokenTypeVariable && maybeName.Value != "_" {
		p.reportSpan(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (record field names are atoms)", maybeName.Value), maybeName.Span)
		return astRecordFieldPattern{}, false
	}
	if p.expectOne(idl.TokenTypeEqual) == nil {
		return astRecordFieldPattern{}, false
	}
	maybeValue := p.parsePattern()
	if maybeValue == nil {
		return astRecordFieldPattern{}, false
	}
	return astRecordFieldPattern{
		astNode: astNode{p.span(start)},
		field:   maybeName.Value,
		value:   maybeValue,
	}, true
}

// PrimaryPattern = Literal | variable | TuplePattern | ListPattern
//                | BinaryPattern | "(" Pattern ")"
func (p *parserErlangTokens) parsePrimaryPattern() pattern {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input (expecting a pattern)")
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
		elements := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parsePatternOk, idl.TokenTypeCurlyClose)
		if elements == nil {
			return nil
		}
		return &astTuplePattern{
			astNode:  astNode{p.span(start)},
			elements: elements,
		}
	case idl.TokenTypeSquareOpen:
		return p.parseListPattern()
	case idl.TokenTypeBinaryOpen:
		return p.parseBinaryPattern()
	case idl.TokenTypeParenOpen:
		start := p.start()
		p.advance()
		maybePattern := p.parsePattern()
		if maybePattern == nil {
			return nil
		}
		if p.expectOne(idl.TokenTypeParenClose) == nil {
			return nil
		}
		if settable, ok := maybePattern.(spanSetter); ok {
			settable.setSpan(p.span(start))
		}
		return maybePattern
	default:
		maybeLiteral := p.parseLiteral()
		if maybeLiteral == nil {
			return nil
		}
		return maybeLiteral
	}
}

// ListPattern = "[" "]" | "[" Pattern {"," Pattern} ["|" Pattern] "]"
func (p *parserErlangTokens) parseListPattern() pattern {
	start := p.start()
	if p.expectOne(idl.TokenTypeSquareOpen) == nil {
		return nil
	}
	if p.peekType(idl.TokenTypeSquareClose) {
		p.advance()
		return &astNil{astNode{p.span(start)}}
	}

	elements := applyOverSeparatedList(p, idl.TokenTypeComma, p.parsePatternOk)
	if elements == nil {
		return nil
	}
	this := astListPattern{
		elements: elements,
	}
	if p.peekType(idl.TokenTypePipe) {
		p.advance()
		maybeTail := p.parsePattern()
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

// BinaryPattern = "<<" [BinaryPatternElement {"," BinaryPatternElement}] ">>"
func (p *parserErlangTokens) parseBinaryPattern() pattern {
	start := p.start()
	if p.expectOne(idl.TokenTypeBinaryOpen) == nil {
		return nil
	}
	this := astBinaryPattern{
		elements: []astBinaryPatternElement{},
	}
	if p.peekType(idl.TokenTypeBinaryClose) {
		p.advance()
		this.span = p.span(start)
		return &this
	}
	elements := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseBinaryPatternElement)
	if elements == nil {
		return nil
	}
	this.elements = elements
	if p.expectOne(idl.TokenTypeBinaryClose) == nil {
		return nil
	}
	this.span = p.span(start)
	return &this
}

// BinaryPatternElement = PrimaryPattern [":" PrimaryExpr] ["/" BitType {"-" BitType}]
//
// Sizes are expressions even in match position: a size may reference a
// variable bound earlier in the same binary.
func (p *parserErlangTokens) parseBinaryPatternElement() (astBinaryPatternElement, bool) {
	start := p.start()
	maybeValue := p.parsePrimaryPattern()
	if maybeValue == nil {
		return astBinaryPatternElement{}, false
	}
	this := astBinaryPatternElement{
		value: maybeValue,
	}
	if p.peekType(idl.TokenTypeColon) {
		p.advance()
		maybeSize := p.parsePrimaryExpr()
		if maybeSize == nil {
			return astBinaryPatternElement{}, false
		}
		this.size = maybeSize
	}
	if p.peekType(idl.TokenTypeSlash) {
		p.advance()
		specifiers := applyOverSeparatedList(p, idl.TokenTypeMinus, p.parseBitType)
		if specifiers == nil {
			return astBinaryPatternElement{}, false
		}
		this.specifiers = specifiers
	}
	this.span = p.span(start)
	return this, true
}
