// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/idl"
	"gopkg.microglot.org/erlc.go/internal/iter"
	"gopkg.microglot.org/erlc.go/internal/optional"
)

const (
	lexerErlangLookahead = 8
)

var erlangKeywords = map[string]idl.TokenType{
	"after":   idl.TokenTypeKeywordAfter,
	"and":     idl.TokenTypeKeywordAnd,
	"andalso": idl.TokenTypeKeywordAndalso,
	"band":    idl.TokenTypeKeywordBand,
	"begin":   idl.TokenTypeKeywordBegin,
	"bnot":    idl.TokenTypeKeywordBnot,
	"bor":     idl.TokenTypeKeywordBor,
	"bsl":     idl.TokenTypeKeywordBsl,
	"bsr":     idl.TokenTypeKeywordBsr,
	"bxor":    idl.TokenTypeKeywordBxor,
	"case":    idl.TokenTypeKeywordCase,
	"catch":   idl.TokenTypeKeywordCatch,
	"div":     idl.TokenTypeKeywordDiv,
	"end":     idl.TokenTypeKeywordEnd,
	"fun":     idl.TokenTypeKeywordFun,
	"if":      idl.TokenTypeKeywordIf,
	"not":     idl.TokenTypeKeywordNot,
	"of":      idl.TokenTypeKeywordOf,
	"or":      idl.TokenTypeKeywordOr,
	"orelse":  idl.TokenTypeKeywordOrelse,
	"receive": idl.TokenTypeKeywordReceive,
	"rem":     idl.TokenTypeKeywordRem,
	"try":     idl.TokenTypeKeywordTry,
	"when":    idl.TokenTypeKeywordWhen,
	"xor":     idl.TokenTypeKeywordXor,
}

// LexerErlang implements a tokenizer for Erlang source text. Macro expansion
// is assumed to have happened already; the lexer treats ? as an ordinary
// (unexpected) token.
type LexerErlang struct {
	reporter exc.Reporter
}

var _ idl.Lexer = &LexerErlang{}

func NewLexerErlang(reporter exc.Reporter) *LexerErlang {
	return &LexerErlang{reporter: reporter}
}

func (self *LexerErlang) Lex(ctx context.Context, f idl.File) (idl.LexerFile, error) {
	return &lexerFileErlang{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileErlang struct {
	idl.File
	reporter exc.Reporter
}

func (self *lexerFileErlang) Tokens(ctx context.Context) (idl.Iterator[*idl.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBodyCtx(ctx, b), lexerErlangLookahead)
	return &lexerFileErlangTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		line:     1,
		col:      1,
		offset:   0,
	}, nil
}

type lexerFileErlangTokens struct {
	uri      string
	body     idl.Lookahead[idl.CodePoint]
	reporter exc.Reporter
	line     int32
	col      int32
	offset   int64
}

// here is the location of the next unconsumed code point.
func (self *lexerFileErlangTokens) here() idl.Location {
	return idl.Location{Line: self.line, Column: self.col, Offset: self.offset}
}

func (self *lexerFileErlangTokens) peekN(ctx context.Context, n uint8) (rune, bool) {
	point, ok := self.body.Lookahead(ctx, n).Get()
	return rune(point), ok
}

func (self *lexerFileErlangTokens) next(ctx context.Context) (rune, bool) {
	point, ok := self.body.Next(ctx).Get()
	if !ok {
		return 0, false
	}
	r := rune(point)
	if r == '\n' {
		self.line = self.line + 1
		self.col = 1
	} else {
		self.col = self.col + 1
	}
	self.offset = self.offset + int64(len(string(r)))
	return r, true
}

func (self *lexerFileErlangTokens) token(start idl.Location, kind idl.TokenType, value string) optional.Optional[*idl.Token] {
	return optional.Some(&idl.Token{
		Span:  idl.Span{Start: start, End: self.here()},
		Type:  kind,
		Value: value,
	})
}

func (self *lexerFileErlangTokens) exc(code string, message string) exc.Exception {
	loc := self.here()
	return exc.New(exc.Location{
		URI:  self.uri,
		Span: idl.Span{Start: loc, End: loc},
	}, code, message)
}

func (self *lexerFileErlangTokens) Next(ctx context.Context) optional.Optional[*idl.Token] {
	for {
		r, ok := self.peekN(ctx, 0)
		if !ok {
			return optional.None[*idl.Token]()
		}
		start := self.here()
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\f':
			_, _ = self.next(ctx)
			continue
		case r == '%':
			return self.readComment(ctx, start)
		case r >= '0' && r <= '9':
			return self.readNumber(ctx, start)
		case r == '$':
			return self.readChar(ctx, start)
		case r == '"':
			return self.readString(ctx, start)
		case r == '\'':
			return self.readQuotedAtom(ctx, start)
		case unicode.IsLower(r):
			return self.readAtom(ctx, start)
		case unicode.IsUpper(r) || r == '_':
			return self.readVariable(ctx, start)
		default:
			return self.readPunctuation(ctx, start, r)
		}
	}
}

func (self *lexerFileErlangTokens) readPunctuation(ctx context.Context, start idl.Location, r rune) optional.Optional[*idl.Token] {
	_, _ = self.next(ctx)
	one := func(kind idl.TokenType) optional.Optional[*idl.Token] {
		return self.token(start, kind, string(r))
	}
	two := func(kind idl.TokenType, value string) optional.Optional[*idl.Token] {
		_, _ = self.next(ctx)
		return self.token(start, kind, value)
	}
	n, _ := self.peekN(ctx, 0)
	switch r {
	case '(':
		return one(idl.TokenTypeParenOpen)
	case ')':
		return one(idl.TokenTypeParenClose)
	case '{':
		return one(idl.TokenTypeCurlyOpen)
	case '}':
		return one(idl.TokenTypeCurlyClose)
	case '[':
		return one(idl.TokenTypeSquareOpen)
	case ']':
		return one(idl.TokenTypeSquareClose)
	case ',':
		return one(idl.TokenTypeComma)
	case ';':
		return one(idl.TokenTypeSemicolon)
	case '#':
		return one(idl.TokenTypeHash)
	case '!':
		return one(idl.TokenTypeBang)
	case '?':
		return one(idl.TokenTypeQuestion)
	case '*':
		return one(idl.TokenTypeStar)
	case '|':
		if n == '|' {
			return two(idl.TokenTypePipePipe, "||")
		}
		return one(idl.TokenTypePipe)
	case '.':
		if n == '.' {
			_, _ = self.next(ctx)
			if nn, _ := self.peekN(ctx, 0); nn == '.' {
				_, _ = self.next(ctx)
				return self.token(start, idl.TokenTypeEllipsis, "...")
			}
			return self.token(start, idl.TokenTypeDotDot, "..")
		}
		return one(idl.TokenTypeDot)
	case ':':
		if n == ':' {
			return two(idl.TokenTypeColonColon, "::")
		}
		if n == '=' {
			return two(idl.TokenTypeColonEqual, ":=")
		}
		return one(idl.TokenTypeColon)
	case '<':
		if n == '<' {
			return two(idl.TokenTypeBinaryOpen, "<<")
		}
		if n == '-' {
			return two(idl.TokenTypeLeftArrow, "<-")
		}
		if n == '=' {
			return two(idl.TokenTypeDoubleLeft, "<=")
		}
		return one(idl.TokenTypeLess)
	case '>':
		if n == '>' {
			return two(idl.TokenTypeBinaryClose, ">>")
		}
		if n == '=' {
			return two(idl.TokenTypeGreaterEqual, ">=")
		}
		return one(idl.TokenTypeGreater)
	case '=':
		switch n {
		case '=':
			return two(idl.TokenTypeEqualEqual, "==")
		case '<':
			return two(idl.TokenTypeEqualLess, "=<")
		case '>':
			return two(idl.TokenTypeFatArrow, "=>")
		case ':':
			if nn, _ := self.peekN(ctx, 1); nn == '=' {
				_, _ = self.next(ctx)
				_, _ = self.next(ctx)
				return self.token(start, idl.TokenTypeEqualColonEqual, "=:=")
			}
			return one(idl.TokenTypeEqual)
		case '/':
			if nn, _ := self.peekN(ctx, 1); nn == '=' {
				_, _ = self.next(ctx)
				_, _ = self.next(ctx)
				return self.token(start, idl.TokenTypeEqualSlashEqual, "=/=")
			}
			return one(idl.TokenTypeEqual)
		}
		return one(idl.TokenTypeEqual)
	case '/':
		if n == '=' {
			return two(idl.TokenTypeSlashEqual, "/=")
		}
		return one(idl.TokenTypeSlash)
	case '+':
		if n == '+' {
			return two(idl.TokenTypePlusPlus, "++")
		}
		return one(idl.TokenTypePlus)
	case '-':
		if n == '>' {
			return two(idl.TokenTypeArrow, "->")
		}
		if n == '-' {
			return two(idl.TokenTypeMinusMinus, "--")
		}
		return one(idl.TokenTypeMinus)
	default:
		return one(idl.TokenTypeUnknown)
	}
}

func (self *lexerFileErlangTokens) readComment(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = self.next(ctx)
	for {
		n, ok := self.peekN(ctx, 0)
		if !ok || n == '\n' {
			return self.token(start, idl.TokenTypeComment, builder.String())
		}
		_, _ = self.next(ctx)
		_, _ = builder.WriteRune(n)
	}
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '@'
}

func (self *lexerFileErlangTokens) readName(ctx context.Context) string {
	var builder strings.Builder
	for {
		n, ok := self.peekN(ctx, 0)
		if !ok || !isNameRune(n) {
			return builder.String()
		}
		_, _ = self.next(ctx)
		_, _ = builder.WriteRune(n)
	}
}

func (self *lexerFileErlangTokens) readAtom(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	name := self.readName(ctx)
	if kind, ok := erlangKeywords[name]; ok {
		return self.token(start, kind, name)
	}
	return self.token(start, idl.TokenTypeAtom, name)
}

func (self *lexerFileErlangTokens) readVariable(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	name := self.readName(ctx)
	return self.token(start, idl.TokenTypeVariable, name)
}

func isDigitInBase(r rune, base int) bool {
	switch {
	case r >= '0' && r <= '9':
		return int(r-'0') < base
	case r >= 'a' && r <= 'z':
		return int(r-'a')+10 < base
	case r >= 'A' && r <= 'Z':
		return int(r-'A')+10 < base
	default:
		return false
	}
}

func (self *lexerFileErlangTokens) readDigits(ctx context.Context, base int) string {
	var builder strings.Builder
	for {
		n, ok := self.peekN(ctx, 0)
		if !ok || !isDigitInBase(n, base) {
			return builder.String()
		}
		_, _ = self.next(ctx)
		_, _ = builder.WriteRune(n)
	}
}

// readNumber lexes decimal and base#digits integers, promoting to a
// big-integer token when the value exceeds the native 64-bit range, and
// floats of the form digits.digits with an optional exponent.
func (self *lexerFileErlangTokens) readNumber(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	digits := self.readDigits(ctx, 10)

	n, _ := self.peekN(ctx, 0)
	switch n {
	case '#':
		base, err := strconv.Atoi(digits)
		if err != nil || base < 2 || base > 36 {
			_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, fmt.Sprintf("invalid integer base %s", digits)))
			return optional.None[*idl.Token]()
		}
		_, _ = self.next(ctx)
		based := self.readDigits(ctx, base)
		if based == "" {
			_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, fmt.Sprintf("missing digits after %s#", digits)))
			return optional.None[*idl.Token]()
		}
		return self.integerToken(start, digits+"#"+based, based, base)
	case '.':
		if nn, _ := self.peekN(ctx, 1); nn >= '0' && nn <= '9' {
			_, _ = self.next(ctx)
			fraction := self.readDigits(ctx, 10)
			text := digits + "." + fraction
			if e, _ := self.peekN(ctx, 0); e == 'e' || e == 'E' {
				sign, _ := self.peekN(ctx, 1)
				first := sign
				if sign == '+' || sign == '-' {
					first, _ = self.peekN(ctx, 2)
				}
				if first >= '0' && first <= '9' {
					_, _ = self.next(ctx)
					text += "e"
					if sign == '+' || sign == '-' {
						_, _ = self.next(ctx)
						text += string(sign)
					}
					text += self.readDigits(ctx, 10)
				}
			}
			return self.token(start, idl.TokenTypeFloat, text)
		}
		return self.integerToken(start, digits, digits, 10)
	}
	return self.integerToken(start, digits, digits, 10)
}

func (self *lexerFileErlangTokens) integerToken(start idl.Location, text string, digits string, base int) optional.Optional[*idl.Token] {
	_, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return self.token(start, idl.TokenTypeIntegerBig, text)
		}
		_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, fmt.Sprintf("invalid integer literal %s", text)))
		return optional.None[*idl.Token]()
	}
	return self.token(start, idl.TokenTypeInteger, text)
}

// readEscape consumes one character escape after the backslash has been
// consumed and returns the escaped rune.
func (self *lexerFileErlangTokens) readEscape(ctx context.Context) (rune, bool) {
	r, ok := self.next(ctx)
	if !ok {
		_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading character escape"))
		return 0, false
	}
	switch r {
	case 'b':
		return '\b', true
	case 'd':
		return 0x7F, true
	case 'e':
		return 0x1B, true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 's':
		return ' ', true
	case 't':
		return '\t', true
	case 'v':
		return '\v', true
	case '^':
		c, ok := self.next(ctx)
		if !ok {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading control escape"))
			return 0, false
		}
		return c & 0b11111, true
	case 'x':
		c, ok := self.next(ctx)
		if !ok {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading hex escape"))
			return 0, false
		}
		digits := ""
		if c == '{' {
			for {
				c, ok = self.next(ctx)
				if !ok {
					_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading hex escape"))
					return 0, false
				}
				if c == '}' {
					break
				}
				digits += string(c)
			}
		} else {
			c2, ok := self.next(ctx)
			if !ok {
				_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading hex escape"))
				return 0, false
			}
			digits = string(c) + string(c2)
		}
		v, err := strconv.ParseInt(digits, 16, 32)
		if err != nil {
			_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, fmt.Sprintf("invalid hex escape \\x%s", digits)))
			return 0, false
		}
		return rune(v), true
	case '0', '1', '2', '3', '4', '5', '6', '7':
		digits := string(r)
		for len(digits) < 3 {
			n, ok := self.peekN(ctx, 0)
			if !ok || n < '0' || n > '7' {
				break
			}
			_, _ = self.next(ctx)
			digits += string(n)
		}
		v, _ := strconv.ParseInt(digits, 8, 32)
		return rune(v), true
	default:
		// \\, \', \", and any other escaped character stand for themselves.
		return r, true
	}
}

func (self *lexerFileErlangTokens) readChar(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	_, _ = self.next(ctx)
	r, ok := self.next(ctx)
	if !ok {
		_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading character literal"))
		return optional.None[*idl.Token]()
	}
	if r == '\\' {
		r, ok = self.readEscape(ctx)
		if !ok {
			return optional.None[*idl.Token]()
		}
	}
	return self.token(start, idl.TokenTypeChar, string(r))
}

func (self *lexerFileErlangTokens) readDelimited(ctx context.Context, delimiter rune, what string) (string, bool) {
	var builder strings.Builder
	_, _ = self.next(ctx)
	for {
		r, ok := self.next(ctx)
		if !ok {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, fmt.Sprintf("EOF while reading %s", what)))
			return "", false
		}
		if r == delimiter {
			return builder.String(), true
		}
		if r == '\\' {
			r, ok = self.readEscape(ctx)
			if !ok {
				return "", false
			}
		}
		_, _ = builder.WriteRune(r)
	}
}

func (self *lexerFileErlangTokens) readString(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	value, ok := self.readDelimited(ctx, '"', "string literal")
	if !ok {
		return optional.None[*idl.Token]()
	}
	return self.token(start, idl.TokenTypeString, value)
}

func (self *lexerFileErlangTokens) readQuotedAtom(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	value, ok := self.readDelimited(ctx, '\'', "quoted atom")
	if !ok {
		return optional.None[*idl.Token]()
	}
	return self.token(start, idl.TokenTypeAtom, value)
}

func (self *lexerFileErlangTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}
