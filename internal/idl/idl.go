// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"context"
	"fmt"

	"gopkg.microglot.org/erlc.go/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindErlang
)

func (k FileKind) String() string {
	switch k {
	case FileKindErlang:
		return "erlang"
	case FileKindNone:
		return "none"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}

// Module is the parsed unit a Parser hands back. The concrete tree type lives
// with the language implementation; drivers see only identity and rendering.
type Module interface {
	fmt.Stringer
	Name() string
	URI() string
}

type Parser interface {
	Parse(ctx context.Context, f LexerFile) (Module, error)
}

// Location is a single point in a source file. Offset is the byte offset from
// the start of the file; Line and Column are 1-based and exist only for
// diagnostics.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

// Span is the textual extent of a token or syntax node. Start is the location
// of the first byte and End is the location one past the last byte, so
// source[Start.Offset:End.Offset] is exactly the covered text.
type Span struct {
	Start Location
	End   Location
}

type Token struct {
	Span  Span
	Type  TokenType
	Value string
}

type TokenType uint16

const (
	TokenTypeUnknown    TokenType = 0
	TokenTypeAtom       TokenType = 1
	TokenTypeVariable   TokenType = 2
	TokenTypeInteger    TokenType = 3
	TokenTypeIntegerBig TokenType = 4
	TokenTypeFloat      TokenType = 5
	TokenTypeChar       TokenType = 6
	TokenTypeString     TokenType = 7
	TokenTypeComment    TokenType = 8

	TokenTypeParenOpen   TokenType = 20
	TokenTypeParenClose  TokenType = 21
	TokenTypeCurlyOpen   TokenType = 22
	TokenTypeCurlyClose  TokenType = 23
	TokenTypeSquareOpen  TokenType = 24
	TokenTypeSquareClose TokenType = 25
	TokenTypeBinaryOpen  TokenType = 26
	TokenTypeBinaryClose TokenType = 27
	TokenTypeComma       TokenType = 28
	TokenTypeDot         TokenType = 29
	TokenTypeSemicolon   TokenType = 30
	TokenTypeColon       TokenType = 31
	TokenTypeColonColon  TokenType = 32
	TokenTypePipe        TokenType = 33
	TokenTypePipePipe    TokenType = 34
	TokenTypeHash        TokenType = 35
	TokenTypeArrow       TokenType = 36
	TokenTypeLeftArrow   TokenType = 37
	TokenTypeDoubleLeft  TokenType = 38
	TokenTypeFatArrow    TokenType = 39
	TokenTypeColonEqual  TokenType = 40
	TokenTypeDotDot      TokenType = 41
	TokenTypeEllipsis    TokenType = 42
	TokenTypeQuestion    TokenType = 43

	TokenTypeEqual           TokenType = 60
	TokenTypeBang            TokenType = 61
	TokenTypePlus            TokenType = 62
	TokenTypeMinus           TokenType = 63
	TokenTypeStar            TokenType = 64
	TokenTypeSlash           TokenType = 65
	TokenTypePlusPlus        TokenType = 66
	TokenTypeMinusMinus      TokenType = 67
	TokenTypeEqualEqual      TokenType = 68
	TokenTypeSlashEqual      TokenType = 69
	TokenTypeEqualLess       TokenType = 70
	TokenTypeLess            TokenType = 71
	TokenTypeGreaterEqual    TokenType = 72
	TokenTypeGreater         TokenType = 73
	TokenTypeEqualColonEqual TokenType = 74
	TokenTypeEqualSlashEqual TokenType = 75

	TokenTypeKeywordAfter   TokenType = 100
	TokenTypeKeywordAnd     TokenType = 101
	TokenTypeKeywordAndalso TokenType = 102
	TokenTypeKeywordBand    TokenType = 103
	TokenTypeKeywordBegin   TokenType = 104
	TokenTypeKeywordBnot    TokenType = 105
	TokenTypeKeywordBor     TokenType = 106
	TokenTypeKeywordBsl     TokenType = 107
	TokenTypeKeywordBsr     TokenType = 108
	TokenTypeKeywordBxor    TokenType = 109
	TokenTypeKeywordCase    TokenType = 110
	TokenTypeKeywordCatch   TokenType = 111
	TokenTypeKeywordDiv     TokenType = 112
	TokenTypeKeywordEnd     TokenType = 113
	TokenTypeKeywordFun     TokenType = 114
	TokenTypeKeywordIf      TokenType = 115
	TokenTypeKeywordNot     TokenType = 116
	TokenTypeKeywordOf      TokenType = 117
	TokenTypeKeywordOr      TokenType = 118
	TokenTypeKeywordOrelse  TokenType = 119
	TokenTypeKeywordReceive TokenType = 120
	TokenTypeKeywordRem     TokenType = 121
	TokenTypeKeywordTry     TokenType = 122
	TokenTypeKeywordWhen    TokenType = 123
	TokenTypeKeywordXor     TokenType = 124
)

var tokenTypeNames = map[TokenType]string{
	TokenTypeUnknown:         "unknown",
	TokenTypeAtom:            "atom",
	TokenTypeVariable:        "variable",
	TokenTypeInteger:         "integer",
	TokenTypeIntegerBig:      "integer",
	TokenTypeFloat:           "float",
	TokenTypeChar:            "character",
	TokenTypeString:          "string",
	TokenTypeComment:         "comment",
	TokenTypeParenOpen:       "(",
	TokenTypeParenClose:      ")",
	TokenTypeCurlyOpen:       "{",
	TokenTypeCurlyClose:      "}",
	TokenTypeSquareOpen:      "[",
	TokenTypeSquareClose:     "]",
	TokenTypeBinaryOpen:      "<<",
	TokenTypeBinaryClose:     ">>",
	TokenTypeComma:           ",",
	TokenTypeDot:             ".",
	TokenTypeSemicolon:       ";",
	TokenTypeColon:           ":",
	TokenTypeColonColon:      "::",
	TokenTypePipe:            "|",
	TokenTypePipePipe:        "||",
	TokenTypeHash:            "#",
	TokenTypeArrow:           "->",
	TokenTypeLeftArrow:       "<-",
	TokenTypeDoubleLeft:      "<=",
	TokenTypeFatArrow:        "=>",
	TokenTypeColonEqual:      ":=",
	TokenTypeDotDot:          "..",
	TokenTypeEllipsis:        "...",
	TokenTypeQuestion:        "?",
	TokenTypeEqual:           "=",
	TokenTypeBang:            "!",
	TokenTypePlus:            "+",
	TokenTypeMinus:           "-",
	TokenTypeStar:            "*",
	TokenTypeSlash:           "/",
	TokenTypePlusPlus:        "++",
	TokenTypeMinusMinus:      "--",
	TokenTypeEqualEqual:      "==",
	TokenTypeSlashEqual:      "/=",
	TokenTypeEqualLess:       "=<",
	TokenTypeLess:            "<",
	TokenTypeGreaterEqual:    ">=",
	TokenTypeGreater:         ">",
	TokenTypeEqualColonEqual: "=:=",
	TokenTypeEqualSlashEqual: "=/=",
	TokenTypeKeywordAfter:    "after",
	TokenTypeKeywordAnd:      "and",
	TokenTypeKeywordAndalso:  "andalso",
	TokenTypeKeywordBand:     "band",
	TokenTypeKeywordBegin:    "begin",
	TokenTypeKeywordBnot:     "bnot",
	TokenTypeKeywordBor:      "bor",
	TokenTypeKeywordBsl:      "bsl",
	TokenTypeKeywordBsr:      "bsr",
	TokenTypeKeywordBxor:     "bxor",
	TokenTypeKeywordCase:     "case",
	TokenTypeKeywordCatch:    "catch",
	TokenTypeKeywordDiv:      "div",
	TokenTypeKeywordEnd:      "end",
	TokenTypeKeywordFun:      "fun",
	TokenTypeKeywordIf:       "if",
	TokenTypeKeywordNot:      "not",
	TokenTypeKeywordOf:       "of",
	TokenTypeKeywordOr:       "or",
	TokenTypeKeywordOrelse:   "orelse",
	TokenTypeKeywordReceive:  "receive",
	TokenTypeKeywordRem:      "rem",
	TokenTypeKeywordTry:      "try",
	TokenTypeKeywordWhen:     "when",
	TokenTypeKeywordXor:      "xor",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token-%d", uint16(t))
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Span.Start.Line, t.Span.Start.Column, t.Type, t.Value)
}
