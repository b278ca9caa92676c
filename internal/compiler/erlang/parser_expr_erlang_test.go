// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/idl"
)

func TestExprPrecedence(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "1 + 2 * 3")
	require.Empty(t, rep.Reported())
	plus := e.(*astBinOp)
	require.Equal(t, idl.TokenTypePlus, plus.op.Type)
	require.Equal(t, int64(1), plus.left.(*astLiteralInt).val)
	star := plus.right.(*astBinOp)
	require.Equal(t, idl.TokenTypeStar, star.op.Type)

	e, rep = parseExprText(t, "(1 + 2) * 3")
	require.Empty(t, rep.Reported())
	star = e.(*astBinOp)
	require.Equal(t, idl.TokenTypeStar, star.op.Type)
	inner := star.left.(*astBinOp)
	require.Equal(t, idl.TokenTypePlus, inner.op.Type)
	// the parenthesized operand's span covers the parens
	require.Equal(t, int64(0), inner.Span().Start.Offset)

	e, rep = parseExprText(t, "1 bsl 2 + 3")
	require.Empty(t, rep.Reported())
	outer := e.(*astBinOp)
	require.Equal(t, idl.TokenTypePlus, outer.op.Type)
	require.Equal(t, idl.TokenTypeKeywordBsl, outer.left.(*astBinOp).op.Type)

	e, rep = parseExprText(t, "a andalso b orelse c")
	require.Empty(t, rep.Reported())
	orelse := e.(*astBinOp)
	require.Equal(t, idl.TokenTypeKeywordOrelse, orelse.op.Type)
	require.Equal(t, idl.TokenTypeKeywordAndalso, orelse.left.(*astBinOp).op.Type)

	e, rep = parseExprText(t, "- X * Y")
	require.Empty(t, rep.Reported())
	star = e.(*astBinOp)
	require.Equal(t, idl.TokenTypeStar, star.op.Type)
	unary := star.left.(*astUnaryOp)
	require.Equal(t, idl.TokenTypeMinus, unary.op.Type)
}

func TestExprAssociativity(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "a -- b -- c")
	require.Empty(t, rep.Reported())
	listOp := e.(*astBinOp)
	require.Equal(t, idl.TokenTypeMinusMinus, listOp.op.Type)
	require.Equal(t, "a", listOp.left.(*astAtom).name)
	require.Equal(t, idl.TokenTypeMinusMinus, listOp.right.(*astBinOp).op.Type)

	e, rep = parseExprText(t, "1 - 2 - 3")
	require.Empty(t, rep.Reported())
	sub := e.(*astBinOp)
	require.Equal(t, int64(3), sub.right.(*astLiteralInt).val)
	require.Equal(t, int64(1), sub.left.(*astBinOp).left.(*astLiteralInt).val)

	e, rep = parseExprText(t, "A = B ! C")
	require.Empty(t, rep.Reported())
	match := e.(*astMatch)
	require.Equal(t, "A", match.left.(*astVariable).name)
	send := match.right.(*astSend)
	require.Equal(t, "B", send.left.(*astVariable).name)

	e, rep = parseExprText(t, "A ! B ! C")
	require.Empty(t, rep.Reported())
	send = e.(*astSend)
	require.Equal(t, "C", send.right.(*astSend).right.(*astVariable).name)
}

func TestExprComparisonDoesNotAssociate(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "a == b == c")
	require.Nil(t, e)
	requireFatal(t, rep, exc.CodeUnexpectedToken)

	e, rep = parseExprText(t, "(a == b) == c")
	require.Empty(t, rep.Reported())
	require.NotNil(t, e)
}

func TestExprLiterals(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "$a")
	require.Empty(t, rep.Reported())
	require.Equal(t, 'a', e.(*astLiteralChar).val)

	e, rep = parseExprText(t, `"hi there"`)
	require.Empty(t, rep.Reported())
	require.Equal(t, "hi there", e.(*astLiteralString).val)

	e, rep = parseExprText(t, "36893488147419103232")
	require.Empty(t, rep.Reported())
	require.Equal(t, "36893488147419103232", e.(*astLiteralBigInt).val.String())

	e, rep = parseExprText(t, "[]")
	require.Empty(t, rep.Reported())
	require.IsType(t, &astNil{}, e)
}

func TestExprContainers(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "{ok, 1}")
	require.Empty(t, rep.Reported())
	tuple := e.(*astTuple)
	require.Len(t, tuple.elements, 2)

	e, rep = parseExprText(t, "[1, 2 | T]")
	require.Empty(t, rep.Reported())
	list := e.(*astList)
	require.Len(t, list.elements, 2)
	require.Equal(t, "T", list.tail.(*astVariable).name)

	e, rep = parseExprText(t, "[1, 2]")
	require.Empty(t, rep.Reported())
	require.Nil(t, e.(*astList).tail)
}

func TestExprMaps(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "#{a => 1, b := 2}")
	require.Empty(t, rep.Reported())
	m := e.(*astMap)
	require.Len(t, m.entries, 2)
	require.False(t, m.entries[0].exact)
	require.True(t, m.entries[1].exact)

	e, rep = parseExprText(t, "M#{a => 1}#{b => 2}")
	require.Empty(t, rep.Reported())
	update := e.(*astMapUpdate)
	require.Equal(t, "b", update.entries[0].key.(*astAtom).name)
	first := update.subject.(*astMapUpdate)
	require.Equal(t, "M", first.subject.(*astVariable).name)
}

func TestExprRecords(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "#state{count = 1, _ = default}")
	require.Empty(t, rep.Reported())
	record := e.(*astRecord)
	require.Equal(t, "state", record.name)
	require.Len(t, record.fields, 2)
	require.Equal(t, "count", record.fields[0].field)
	require.Equal(t, "_", record.fields[1].field)

	e, rep = parseExprText(t, "S#state{count = 1}")
	require.Empty(t, rep.Reported())
	update := e.(*astRecordUpdate)
	require.Equal(t, "state", update.name)
	require.Equal(t, "S", update.subject.(*astVariable).name)

	e, rep = parseExprText(t, "S#state.count")
	require.Empty(t, rep.Reported())
	access := e.(*astRecordAccess)
	require.Equal(t, "count", access.field)

	e, rep = parseExprText(t, "#state.count")
	require.Empty(t, rep.Reported())
	index := e.(*astRecordIndex)
	require.Equal(t, "state", index.name)
	require.Equal(t, "count", index.field)
}

func TestExprCalls(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "f()")
	require.Empty(t, rep.Reported())
	call := e.(*astCall)
	require.Empty(t, call.args)
	require.Equal(t, "f", call.callee.(*astAtom).name)

	e, rep = parseExprText(t, "lists:map(F, L)")
	require.Empty(t, rep.Reported())
	call = e.(*astCall)
	require.Len(t, call.args, 2)
	remote := call.callee.(*astRemote)
	require.Equal(t, "lists", remote.module.(*astAtom).name)
	require.Equal(t, "map", remote.function.(*astAtom).name)

	e, rep = parseExprText(t, "(f())()")
	require.Empty(t, rep.Reported())
	_, isCall := e.(*astCall).callee.(*astCall)
	require.True(t, isCall)
}

func TestExprComprehensions(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "[f(X) || X <- L, X > 0]")
	require.Empty(t, rep.Reported())
	lc := e.(*astListComprehension)
	require.Len(t, lc.qualifiers, 2)
	generator := lc.qualifiers[0].(*astListGenerator)
	require.Equal(t, "X", generator.match.(*astVariable).name)
	require.Equal(t, "L", generator.source.(*astVariable).name)
	require.IsType(t, &astFilter{}, lc.qualifiers[1])

	// a filter that begins like a pattern still parses as a filter
	e, rep = parseExprText(t, "[X || {Y} <- L, {Z} =:= X]")
	require.Empty(t, rep.Reported())
	lc = e.(*astListComprehension)
	require.IsType(t, &astListGenerator{}, lc.qualifiers[0])
	filter := lc.qualifiers[1].(*astFilter)
	require.IsType(t, &astBinOp{}, filter.condition)

	e, rep = parseExprText(t, "<< <<X>> || <<X:8>> <= Bin >>")
	require.Empty(t, rep.Reported())
	bc := e.(*astBinaryComprehension)
	require.Len(t, bc.qualifiers, 1)
	bg := bc.qualifiers[0].(*astBinaryGenerator)
	require.IsType(t, &astBinaryPattern{}, bg.match)
	require.IsType(t, &astBinary{}, bc.body)
}

func TestExprBinaries(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "<<>>")
	require.Empty(t, rep.Reported())
	require.Empty(t, e.(*astBinary).elements)

	e, rep = parseExprText(t, "<<X:8/big-unsigned-integer-unit:1, Rest/binary>>")
	require.Empty(t, rep.Reported())
	binary := e.(*astBinary)
	require.Len(t, binary.elements, 2)

	first := binary.elements[0]
	require.Equal(t, "X", first.value.(*astVariable).name)
	require.Equal(t, int64(8), first.size.(*astLiteralInt).val)
	require.Len(t, first.specifiers, 4)
	require.Equal(t, "big", first.specifiers[0].name)
	require.Equal(t, "unit", first.specifiers[3].name)
	require.Equal(t, int64(1), first.specifiers[3].unit)

	second := binary.elements[1]
	require.Nil(t, second.size)
	require.Len(t, second.specifiers, 1)
	require.Equal(t, "binary", second.specifiers[0].name)
}

func TestExprControlFlow(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "begin a, b end")
	require.Empty(t, rep.Reported())
	require.Len(t, e.(*astBlock).body, 2)

	e, rep = parseExprText(t, "catch f()")
	require.Empty(t, rep.Reported())
	require.IsType(t, &astCall{}, e.(*astCatch).operand)

	e, rep = parseExprText(t, "if X > 0 -> pos; true -> neg end")
	require.Empty(t, rep.Reported())
	ifExpr := e.(*astIf)
	require.Len(t, ifExpr.clauses, 2)
	require.Len(t, ifExpr.clauses[0].guard.alternatives, 1)

	e, rep = parseExprText(t, "case X of {ok, V} -> V; _ -> 0 end")
	require.Empty(t, rep.Reported())
	caseExpr := e.(*astCase)
	require.Equal(t, "X", caseExpr.scrutinee.(*astVariable).name)
	require.Len(t, caseExpr.clauses, 2)
	require.IsType(t, &astTuplePattern{}, caseExpr.clauses[0].match)
	require.True(t, caseExpr.clauses[1].match.(*astVariable).isWildcard())
}

func TestExprReceive(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "receive {msg, M} -> M after 1000 -> timeout end")
	require.Empty(t, rep.Reported())
	recv := e.(*astReceive)
	require.Len(t, recv.clauses, 1)
	require.NotNil(t, recv.after)
	require.Equal(t, int64(1000), recv.after.timeout.(*astLiteralInt).val)

	e, rep = parseExprText(t, "receive after T -> ok end")
	require.Empty(t, rep.Reported())
	recv = e.(*astReceive)
	require.Empty(t, recv.clauses)
	require.NotNil(t, recv.after)

	e, rep = parseExprText(t, "receive X -> X end")
	require.Empty(t, rep.Reported())
	recv = e.(*astReceive)
	require.Len(t, recv.clauses, 1)
	require.Nil(t, recv.after)

	// neither clauses nor an after section
	e, rep = parseExprText(t, "receive end")
	require.Nil(t, e)
	requireFatal(t, rep, exc.CodeUnexpectedToken)
}

func TestExprTry(t *testing.T) {
	t.Parallel()

	input := "try f(), g() of ok -> 1 catch error:Reason:Stack when Reason =/= x -> 0; throw:_ -> 2 after h() end"
	e, rep := parseExprText(t, input)
	require.Empty(t, rep.Reported())
	try := e.(*astTry)
	require.Len(t, try.exprs, 2)
	require.Len(t, try.ofClauses, 1)
	require.Len(t, try.catchClauses, 2)
	require.Len(t, try.afterBody, 1)

	first := try.catchClauses[0]
	require.Equal(t, "error", first.class.(*astAtom).name)
	require.Equal(t, "Reason", first.match.(*astVariable).name)
	require.Equal(t, "Stack", first.trace.name)
	require.NotNil(t, first.guard)

	second := try.catchClauses[1]
	require.Equal(t, "throw", second.class.(*astAtom).name)
	require.Equal(t, "_", second.trace.name)
	require.Nil(t, second.guard)

	e, rep = parseExprText(t, "try f() after g() end")
	require.Empty(t, rep.Reported())
	try = e.(*astTry)
	require.Nil(t, try.ofClauses)
	require.Nil(t, try.catchClauses)
	require.Len(t, try.afterBody, 1)

	// a class-less catch pattern defaults to the throw class with a wildcard
	// trace, each marked with a zero width span at the clause start
	e, rep = parseExprText(t, "try f() catch _ -> failed end")
	require.Empty(t, rep.Reported())
	try = e.(*astTry)
	clause := try.catchClauses[0]
	class := clause.class.(*astAtom)
	require.Equal(t, "throw", class.name)
	require.Equal(t, class.span.Start, class.span.End)
	require.Equal(t, "_", clause.trace.name)

	e, rep = parseExprText(t, "try f() of ok -> 1 end")
	require.Nil(t, e)
	requireFatal(t, rep, exc.CodeUnexpectedToken)
}

func TestExprFuns(t *testing.T) {
	t.Parallel()

	e, rep := parseExprText(t, "fun foo/2")
	require.Empty(t, rep.Reported())
	ref := e.(*astFunRef)
	require.Equal(t, "foo", ref.name)
	require.Equal(t, int64(2), ref.arity)

	e, rep = parseExprText(t, "fun m:f/1")
	require.Empty(t, rep.Reported())
	remote := e.(*astFunRefRemote)
	require.False(t, remote.dynamic)
	require.Equal(t, "m", remote.module.Value)

	e, rep = parseExprText(t, "fun M:F/A")
	require.Empty(t, rep.Reported())
	remote = e.(*astFunRefRemote)
	require.True(t, remote.dynamic)

	e, rep = parseExprText(t, "fun(X) -> X end")
	require.Empty(t, rep.Reported())
	fn := e.(*astFun)
	require.Len(t, fn.clauses, 1)
	require.Nil(t, fn.clauses[0].name)

	e, rep = parseExprText(t, "fun F(0) -> 1; F(N) -> N * F(N - 1) end")
	require.Empty(t, rep.Reported())
	fn = e.(*astFun)
	require.Len(t, fn.clauses, 2)
	require.Equal(t, "F", fn.clauses[0].name.Value)

	e, rep = parseExprText(t, "fun(X) -> X; (Y, Z) -> Y end")
	require.Nil(t, e)
	requireFatal(t, rep, exc.CodeClauseMismatch)
}

func TestPatternRestrictions(t *testing.T) {
	t.Parallel()

	// map patterns admit := only
	e, rep := parseExprText(t, "case M of #{a := V} -> V end")
	require.Empty(t, rep.Reported())
	mp := e.(*astCase).clauses[0].match.(*astMapPattern)
	require.Len(t, mp.entries, 1)

	e, rep = parseExprText(t, "case M of #{a => V} -> V end")
	require.Nil(t, e)
	requireFatal(t, rep, exc.CodeUnexpectedToken)

	e, rep = parseExprText(t, "case R of #state{count = N} -> N end")
	require.Empty(t, rep.Reported())
	rp := e.(*astCase).clauses[0].match.(*astRecordPattern)
	require.Equal(t, "state", rp.name)
	require.Equal(t, "count", rp.fields[0].field)

	e, rep = parseExprText(t, "case X of [H | T] = All -> {H, T, All} end")
	require.Empty(t, rep.Reported())
	match := e.(*astCase).clauses[0].match.(*astMatchPattern)
	require.IsType(t, &astListPattern{}, match.left)

	// binary pattern sizes are expressions
	e, rep = parseExprText(t, "case B of <<X:N, _/binary>> -> X end")
	require.Empty(t, rep.Reported())
	bp := e.(*astCase).clauses[0].match.(*astBinaryPattern)
	require.Equal(t, "N", bp.elements[0].size.(*astVariable).name)
}
