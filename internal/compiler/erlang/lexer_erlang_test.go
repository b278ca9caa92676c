// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/fs"
	"gopkg.microglot.org/erlc.go/internal/idl"
	"gopkg.microglot.org/erlc.go/internal/iter"
)

func lexInput(t *testing.T, input string) ([]*idl.Token, exc.Reporter) {
	t.Helper()
	ctx := context.Background()
	rep := exc.NewReporter(nil)
	lexer := NewLexerErlang(rep)
	lexerFile, err := lexer.Lex(ctx, fs.NewFileString("/test.erl", input, idl.FileKindErlang))
	require.Nil(t, err)
	tokens, err := lexerFile.Tokens(ctx)
	require.Nil(t, err)
	collected, err := iter.Collect(ctx, tokens)
	require.Nil(t, err)
	return collected, rep
}

type expectedToken struct {
	t idl.TokenType
	v string
}

func TestLexer(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []expectedToken
	}{
		{
			name:     "empty file",
			input:    "",
			expected: []expectedToken{},
		},
		{
			name:  "atoms",
			input: "foo foo_bar fOO@9 'quoted atom' ''",
			expected: []expectedToken{
				{idl.TokenTypeAtom, "foo"},
				{idl.TokenTypeAtom, "foo_bar"},
				{idl.TokenTypeAtom, "fOO@9"},
				{idl.TokenTypeAtom, "quoted atom"},
				{idl.TokenTypeAtom, ""},
			},
		},
		{
			name:  "variables",
			input: "X Foo _ _Ignored V@2",
			expected: []expectedToken{
				{idl.TokenTypeVariable, "X"},
				{idl.TokenTypeVariable, "Foo"},
				{idl.TokenTypeVariable, "_"},
				{idl.TokenTypeVariable, "_Ignored"},
				{idl.TokenTypeVariable, "V@2"},
			},
		},
		{
			name:  "keywords",
			input: "case of end fun when andalso orelse bnot rem",
			expected: []expectedToken{
				{idl.TokenTypeKeywordCase, "case"},
				{idl.TokenTypeKeywordOf, "of"},
				{idl.TokenTypeKeywordEnd, "end"},
				{idl.TokenTypeKeywordFun, "fun"},
				{idl.TokenTypeKeywordWhen, "when"},
				{idl.TokenTypeKeywordAndalso, "andalso"},
				{idl.TokenTypeKeywordOrelse, "orelse"},
				{idl.TokenTypeKeywordBnot, "bnot"},
				{idl.TokenTypeKeywordRem, "rem"},
			},
		},
		{
			name:  "integers",
			input: "0 42 16#ff 2#1010 36#z",
			expected: []expectedToken{
				{idl.TokenTypeInteger, "0"},
				{idl.TokenTypeInteger, "42"},
				{idl.TokenTypeInteger, "16#ff"},
				{idl.TokenTypeInteger, "2#1010"},
				{idl.TokenTypeInteger, "36#z"},
			},
		},
		{
			name:  "big integers",
			input: "123456789123456789123456789 16#ffffffffffffffffff",
			expected: []expectedToken{
				{idl.TokenTypeIntegerBig, "123456789123456789123456789"},
				{idl.TokenTypeIntegerBig, "16#ffffffffffffffffff"},
			},
		},
		{
			name:  "big integer before a terminating dot",
			input: "36893488147419103232.\n",
			expected: []expectedToken{
				{idl.TokenTypeIntegerBig, "36893488147419103232"},
				{idl.TokenTypeDot, "."},
			},
		},
		{
			name:  "floats",
			input: "1.5 0.25 2.0e10 1.0e-3 3.25E+2",
			expected: []expectedToken{
				{idl.TokenTypeFloat, "1.5"},
				{idl.TokenTypeFloat, "0.25"},
				{idl.TokenTypeFloat, "2.0e10"},
				{idl.TokenTypeFloat, "1.0e-3"},
				{idl.TokenTypeFloat, "3.25E+2"},
			},
		},
		{
			name:  "integer followed by range is not a float",
			input: "1..2",
			expected: []expectedToken{
				{idl.TokenTypeInteger, "1"},
				{idl.TokenTypeDotDot, ".."},
				{idl.TokenTypeInteger, "2"},
			},
		},
		{
			name:  "characters",
			input: "$a $\\n $\\x41 $\\x{1F600} $\\101 $\\^c $ ",
			expected: []expectedToken{
				{idl.TokenTypeChar, "a"},
				{idl.TokenTypeChar, "\n"},
				{idl.TokenTypeChar, "A"},
				{idl.TokenTypeChar, "\U0001F600"},
				{idl.TokenTypeChar, "A"},
				{idl.TokenTypeChar, "\x03"},
				{idl.TokenTypeChar, " "},
			},
		},
		{
			name:  "strings",
			input: `"" "hello" "line\nbreak" "quote\"inside" "tab\ts"`,
			expected: []expectedToken{
				{idl.TokenTypeString, ""},
				{idl.TokenTypeString, "hello"},
				{idl.TokenTypeString, "line\nbreak"},
				{idl.TokenTypeString, "quote\"inside"},
				{idl.TokenTypeString, "tab\ts"},
			},
		},
		{
			name:  "comments run to end of line",
			input: "a % trailing words, even punctuation ->\nb",
			expected: []expectedToken{
				{idl.TokenTypeAtom, "a"},
				{idl.TokenTypeComment, " trailing words, even punctuation ->"},
				{idl.TokenTypeAtom, "b"},
			},
		},
		{
			name:  "compound operators use maximal munch",
			input: "=:= =/= == =< => = < <- << <= > >= :: := : .. ... . ++ + -- -> - || | / /=",
			expected: []expectedToken{
				{idl.TokenTypeEqualColonEqual, "=:="},
				{idl.TokenTypeEqualSlashEqual, "=/="},
				{idl.TokenTypeEqualEqual, "=="},
				{idl.TokenTypeEqualLess, "=<"},
				{idl.TokenTypeFatArrow, "=>"},
				{idl.TokenTypeEqual, "="},
				{idl.TokenTypeLess, "<"},
				{idl.TokenTypeLeftArrow, "<-"},
				{idl.TokenTypeBinaryOpen, "<<"},
				{idl.TokenTypeDoubleLeft, "<="},
				{idl.TokenTypeGreater, ">"},
				{idl.TokenTypeGreaterEqual, ">="},
				{idl.TokenTypeColonColon, "::"},
				{idl.TokenTypeColonEqual, ":="},
				{idl.TokenTypeColon, ":"},
				{idl.TokenTypeDotDot, ".."},
				{idl.TokenTypeEllipsis, "..."},
				{idl.TokenTypeDot, "."},
				{idl.TokenTypePlusPlus, "++"},
				{idl.TokenTypePlus, "+"},
				{idl.TokenTypeMinusMinus, "--"},
				{idl.TokenTypeArrow, "->"},
				{idl.TokenTypeMinus, "-"},
				{idl.TokenTypePipePipe, "||"},
				{idl.TokenTypePipe, "|"},
				{idl.TokenTypeSlash, "/"},
				{idl.TokenTypeSlashEqual, "/="},
			},
		},
		{
			name:  "punctuation",
			input: "( ) { } [ ] >> , ; # ! ? *",
			expected: []expectedToken{
				{idl.TokenTypeParenOpen, "("},
				{idl.TokenTypeParenClose, ")"},
				{idl.TokenTypeCurlyOpen, "{"},
				{idl.TokenTypeCurlyClose, "}"},
				{idl.TokenTypeSquareOpen, "["},
				{idl.TokenTypeSquareClose, "]"},
				{idl.TokenTypeBinaryClose, ">>"},
				{idl.TokenTypeComma, ","},
				{idl.TokenTypeSemicolon, ";"},
				{idl.TokenTypeHash, "#"},
				{idl.TokenTypeBang, "!"},
				{idl.TokenTypeQuestion, "?"},
				{idl.TokenTypeStar, "*"},
			},
		},
		{
			name:  "small form",
			input: "-module(m).\nf() -> ok.\n",
			expected: []expectedToken{
				{idl.TokenTypeMinus, "-"},
				{idl.TokenTypeAtom, "module"},
				{idl.TokenTypeParenOpen, "("},
				{idl.TokenTypeAtom, "m"},
				{idl.TokenTypeParenClose, ")"},
				{idl.TokenTypeDot, "."},
				{idl.TokenTypeAtom, "f"},
				{idl.TokenTypeParenOpen, "("},
				{idl.TokenTypeParenClose, ")"},
				{idl.TokenTypeArrow, "->"},
				{idl.TokenTypeAtom, "ok"},
				{idl.TokenTypeDot, "."},
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			tokens, rep := lexInput(t, testCase.input)
			require.Empty(t, rep.Reported())
			require.Len(t, tokens, len(testCase.expected))
			for i, expected := range testCase.expected {
				require.Equal(t, expected.t, tokens[i].Type, "token %d type", i)
				require.Equal(t, expected.v, tokens[i].Value, "token %d value", i)
			}
		})
	}
}

func TestLexerSpans(t *testing.T) {
	t.Parallel()

	tokens, rep := lexInput(t, "ab\n  cd")
	require.Empty(t, rep.Reported())
	require.Len(t, tokens, 2)

	require.Equal(t, int32(1), tokens[0].Span.Start.Line)
	require.Equal(t, int32(1), tokens[0].Span.Start.Column)
	require.Equal(t, int64(0), tokens[0].Span.Start.Offset)
	require.Equal(t, int32(1), tokens[0].Span.End.Line)
	require.Equal(t, int32(3), tokens[0].Span.End.Column)
	require.Equal(t, int64(2), tokens[0].Span.End.Offset)

	require.Equal(t, int32(2), tokens[1].Span.Start.Line)
	require.Equal(t, int32(3), tokens[1].Span.Start.Column)
	require.Equal(t, int64(5), tokens[1].Span.Start.Offset)
	require.Equal(t, int64(7), tokens[1].Span.End.Offset)
}

func TestLexerInvalidLiterals(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
	}{
		{name: "bad integer base", input: "40#zz"},
		{name: "missing based digits", input: "16#"},
		{name: "unterminated string", input: `"abc`},
		{name: "unterminated quoted atom", input: "'abc"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, rep := lexInput(t, testCase.input)
			require.NotEmpty(t, rep.Reported())
		})
	}
}
