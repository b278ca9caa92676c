// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/fs"
	"gopkg.microglot.org/erlc.go/internal/idl"
)

func prepare(t *testing.T, input string) (*parserErlangTokens, exc.Reporter) {
	t.Helper()
	ctx := context.Background()
	rep := exc.NewReporter(nil)
	lexer := NewLexerErlang(rep)
	lexerFile, err := lexer.Lex(ctx, fs.NewFileString("/test.erl", input, idl.FileKindErlang))
	require.Nil(t, err)
	parser := NewParserErlang(rep)
	p, err := parser.PrepareParse(ctx, lexerFile)
	require.Nil(t, err)
	return p, rep
}

func parseModuleText(t *testing.T, input string) (*astModule, exc.Reporter) {
	t.Helper()
	p, rep := prepare(t, input)
	return p.ParseModule(), rep
}

func parseExprText(t *testing.T, input string) (expression, exc.Reporter) {
	t.Helper()
	p, rep := prepare(t, input)
	return p.ParseExpression(), rep
}

func requireFatal(t *testing.T, rep exc.Reporter, code string) {
	t.Helper()
	for _, e := range rep.Reported() {
		if e.Severity() == exc.SeverityError && e.Code() == code {
			return
		}
	}
	require.Failf(t, "missing fatal", "no fatal exception with code %s in %v", code, rep.Reported())
}

func TestParseModuleMinimal(t *testing.T) {
	t.Parallel()

	module, rep := parseModuleText(t, "-module(m).")
	require.Empty(t, rep.Reported())
	require.NotNil(t, module)
	require.Equal(t, "m", module.Name())
	require.Empty(t, module.items)
}

func TestParseModuleRequiredFirst(t *testing.T) {
	t.Parallel()

	module, rep := parseModuleText(t, "f() -> ok.")
	require.Nil(t, module)
	requireFatal(t, rep, exc.CodeUnexpectedToken)

	module, rep = parseModuleText(t, "-export([f/1]).\n-module(m).")
	require.Nil(t, module)
	requireFatal(t, rep, exc.CodeMissingModule)
}

func TestParseAttributes(t *testing.T) {
	t.Parallel()

	module, rep := parseModuleText(t, `
-module(m).
-export([f/1, g/0]).
-export([]).
-export_type([t/0]).
-import(lists, [map/2, foldl/3]).
-vsn("1.2.0").
-compile([export_all]).
-behaviour(gen_server).
-behavior(supervisor).
-author({jane, "doe"}).
`)
	require.Empty(t, rep.Reported())
	require.NotNil(t, module)
	require.Len(t, module.items, 9)

	export := module.items[0].(*astAttributeExport)
	require.Len(t, export.funs, 2)
	require.Equal(t, "f", export.funs[0].name)
	require.Equal(t, int64(1), export.funs[0].arity)
	require.Equal(t, "g", export.funs[1].name)
	require.Equal(t, int64(0), export.funs[1].arity)

	require.Empty(t, module.items[1].(*astAttributeExport).funs)

	exportType := module.items[2].(*astAttributeExportType)
	require.Len(t, exportType.types, 1)
	require.Equal(t, "t", exportType.types[0].name)

	importAttr := module.items[3].(*astAttributeImport)
	require.Equal(t, "lists", importAttr.module)
	require.Len(t, importAttr.funs, 2)

	vsn := module.items[4].(*astAttributeVsn)
	require.Equal(t, "1.2.0", vsn.value.(*astLiteralString).val)

	compile := module.items[5].(*astAttributeCompile)
	list := compile.value.(*astConstList)
	require.Len(t, list.elements, 1)
	require.Equal(t, "export_all", list.elements[0].(*astAtom).name)

	require.Equal(t, "gen_server", module.items[6].(*astAttributeBehaviour).name)
	require.Equal(t, "supervisor", module.items[7].(*astAttributeBehaviour).name)

	custom := module.items[8].(*astAttributeCustom)
	require.Equal(t, "author", custom.name)
	tuple := custom.value.(*astConstTuple)
	require.Len(t, tuple.elements, 2)
	require.Equal(t, "jane", tuple.elements[0].(*astAtom).name)
}

func TestParseConstants(t *testing.T) {
	t.Parallel()

	module, rep := parseModuleText(t, `
-module(m).
-magic(-42).
-limits({1.5, [a, b | c]}).
-meta(#{name => "m", count => 3}).
`)
	require.Empty(t, rep.Reported())
	require.NotNil(t, module)

	magic := module.items[0].(*astAttributeCustom)
	require.Equal(t, int64(-42), magic.value.(*astLiteralInt).val)

	limits := module.items[1].(*astAttributeCustom).value.(*astConstTuple)
	require.Equal(t, 1.5, limits.elements[0].(*astLiteralFloat).val)
	improper := limits.elements[1].(*astConstList)
	require.Len(t, improper.elements, 2)
	require.Equal(t, "c", improper.tail.(*astAtom).name)

	meta := module.items[2].(*astAttributeCustom).value.(*astConstMap)
	require.Len(t, meta.entries, 2)
	require.Equal(t, "name", meta.entries[0].key.(*astAtom).name)
	require.Equal(t, "m", meta.entries[0].value.(*astLiteralString).val)
}

func TestParseRecordDecl(t *testing.T) {
	t.Parallel()

	module, rep := parseModuleText(t, `
-module(m).
-record(state, {count = 0 :: integer(), name, extra :: atom()}).
-record(empty, {}).
`)
	require.Empty(t, rep.Reported())
	require.NotNil(t, module)

	record := module.items[0].(*astRecordDecl)
	require.Equal(t, "state", record.name)
	require.Len(t, record.fields, 3)

	require.Equal(t, "count", record.fields[0].name)
	require.Equal(t, int64(0), record.fields[0].def.(*astLiteralInt).val)
	require.Equal(t, "integer", record.fields[0].typ.(*astTypeCall).name)

	require.Equal(t, "name", record.fields[1].name)
	require.Nil(t, record.fields[1].def)
	require.Nil(t, record.fields[1].typ)

	require.Nil(t, record.fields[2].def)
	require.NotNil(t, record.fields[2].typ)

	require.Empty(t, module.items[1].(*astRecordDecl).fields)
}

func TestParseNamedFunction(t *testing.T) {
	t.Parallel()

	module, rep := parseModuleText(t, `
-module(m).
f(0) -> zero;
f(N) -> N - 1, N.
`)
	require.Empty(t, rep.Reported())
	require.NotNil(t, module)

	function := module.items[0].(*astNamedFunction)
	require.Equal(t, "f", function.name)
	require.Equal(t, 1, function.arity)
	require.Len(t, function.clauses, 2)
	require.Equal(t, int64(0), function.clauses[0].params[0].(*astLiteralInt).val)
	require.Len(t, function.clauses[0].body, 1)
	require.Len(t, function.clauses[1].body, 2)
}

func TestParseBigIntegerAtFormEnd(t *testing.T) {
	t.Parallel()

	// the literal runs right into the terminating dot
	module, rep := parseModuleText(t, "-module(m).\nf() -> 36893488147419103232.\n")
	require.Empty(t, rep.Reported())
	require.NotNil(t, module)

	function := module.items[0].(*astNamedFunction)
	lit := function.clauses[0].body[0].(*astLiteralBigInt)
	require.Equal(t, "36893488147419103232", lit.val.String())
}

func TestParseNamedFunctionClauseMismatch(t *testing.T) {
	t.Parallel()

	module, rep := parseModuleText(t, "-module(m).\nf(0) -> a;\ng(1) -> b.")
	require.Nil(t, module)
	requireFatal(t, rep, exc.CodeClauseMismatch)

	module, rep = parseModuleText(t, "-module(m).\nf(0) -> a;\nf(1, 2) -> b.")
	require.Nil(t, module)
	requireFatal(t, rep, exc.CodeClauseMismatch)
}

func TestParseGuards(t *testing.T) {
	t.Parallel()

	module, rep := parseModuleText(t, `
-module(m).
f(X) when X > 0; X < 10, X > 1 -> X.
g(X) -> X.
`)
	require.Empty(t, rep.Reported())
	require.NotNil(t, module)

	guarded := module.items[0].(*astNamedFunction)
	guard := guarded.clauses[0].guard
	require.NotNil(t, guard)
	require.Len(t, guard.alternatives, 2)
	require.Len(t, guard.alternatives[0].conditions, 1)
	require.Len(t, guard.alternatives[1].conditions, 2)

	unguarded := module.items[1].(*astNamedFunction)
	require.Nil(t, unguarded.clauses[0].guard)
}

func TestParseDeprecated(t *testing.T) {
	t.Parallel()

	t.Run("whole module", func(t *testing.T) {
		t.Parallel()
		module, rep := parseModuleText(t, "-module(m).\n-deprecated(module).")
		require.Empty(t, rep.Reported())
		deprecated := module.items[0].(*astAttributeDeprecated)
		require.Len(t, deprecated.deprecations, 1)
		require.True(t, deprecated.deprecations[0].wholeModule)
		require.Equal(t, deprecationFlagEventually, deprecated.deprecations[0].flag)
	})

	t.Run("function with flag", func(t *testing.T) {
		t.Parallel()
		module, rep := parseModuleText(t, "-module(m).\n-deprecated({f, 1, next_version}).")
		require.Empty(t, rep.Reported())
		deprecation := module.items[0].(*astAttributeDeprecated).deprecations[0]
		require.False(t, deprecation.wholeModule)
		require.Equal(t, "f", deprecation.function)
		require.Equal(t, int64(1), deprecation.arity)
		require.Equal(t, deprecationFlagNextVersion, deprecation.flag)
	})

	t.Run("bad target recovers", func(t *testing.T) {
		t.Parallel()
		module, rep := parseModuleText(t, "-module(m).\n-deprecated(foo).\nf() -> ok.")
		require.NotNil(t, module)
		require.Len(t, rep.Warnings(), 1)
		require.Equal(t, exc.CodeBadDeprecatedTarget, rep.Warnings()[0].Code())

		deprecation := module.items[0].(*astAttributeDeprecated).deprecations[0]
		require.True(t, deprecation.wholeModule)
		// parsing continued past the diagnostic
		require.Equal(t, "f", module.items[1].(*astNamedFunction).name)
	})

	t.Run("bad flag recovers with default", func(t *testing.T) {
		t.Parallel()
		module, rep := parseModuleText(t, "-module(m).\n-deprecated([{f, 1}, {g, 2, bogus}]).\nf() -> ok.")
		require.NotNil(t, module)
		require.Len(t, rep.Warnings(), 1)
		require.Equal(t, exc.CodeBadDeprecatedFlag, rep.Warnings()[0].Code())

		deprecations := module.items[0].(*astAttributeDeprecated).deprecations
		require.Len(t, deprecations, 2)
		require.Equal(t, deprecationFlagEventually, deprecations[0].flag)
		require.Equal(t, deprecationFlagEventually, deprecations[1].flag)
		require.Equal(t, "f", module.items[1].(*astNamedFunction).name)
	})
}

func TestParseExpressionRejectsTrailing(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "1 2")
	require.Nil(t, e)
	requireFatal(t, rep, exc.CodeUnexpectedToken)
}

func TestSpans(t *testing.T) {
	t.Parallel()

	input := `-module(m).
-export([f/1]).
f(X) when X > 0 -> [Y || Y <- lists:seq(1, X), Y rem 2 =:= 0].
`
	module, rep := parseModuleText(t, input)
	require.Empty(t, rep.Reported())
	require.NotNil(t, module)

	require.Equal(t, int64(0), module.span.Start.Offset)
	require.Equal(t, int64(len(input))-1, module.span.End.Offset)

	walkModule(module, func(n node) {
		span := n.Span()
		require.LessOrEqual(t, span.Start.Offset, span.End.Offset)
		require.LessOrEqual(t, module.span.Start.Offset, span.Start.Offset)
		require.LessOrEqual(t, span.End.Offset, module.span.End.Offset)
	})
}

// Every expression node's span delimits a substring that parses back to the
// same shape. The shape fingerprint pairs each node's type with its span
// width, so renumbered offsets in the re-parse do not matter.
func TestSpanRoundTrip(t *testing.T) {
	t.Parallel()

	input := "-module(m).\n" +
		"f(X) -> {X + 1 * 2, lists:seq(1, X), [a, b | C], #rec{a = 1}, M#{k => v}}.\n"
	module, rep := parseModuleText(t, input)
	require.Empty(t, rep.Reported())
	require.NotNil(t, module)

	shape := func(e expression) []string {
		fingerprint := []string{}
		walkExpression(e, func(n node) {
			span := n.Span()
			fingerprint = append(fingerprint, fmt.Sprintf("%T %d", n, span.End.Offset-span.Start.Offset))
		})
		return fingerprint
	}

	walkModule(module, func(n node) {
		e, ok := n.(expression)
		if !ok {
			return
		}
		span := n.Span()
		text := input[span.Start.Offset:span.End.Offset]
		again, rep := parseExprText(t, text)
		require.Empty(t, rep.Reported(), "re-parsing %q", text)
		require.Equal(t, shape(e), shape(again), "re-parsing %q", text)
	})
}
