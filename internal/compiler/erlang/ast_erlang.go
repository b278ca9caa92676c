// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

import (
	"fmt"
	"math/big"

	"gopkg.microglot.org/erlc.go/internal/idl"
)

// interface for all AST nodes
type node interface {
	node()
	Span() idl.Span
}

// interface for all top-level forms of a module
type topLevel interface {
	node
	topLevel()
}

// interface for module attribute forms
type attribute interface {
	topLevel
	attribute()
}

// interface for all expression nodes
type expression interface {
	node
	expression()
}

// interface for all pattern nodes. Patterns are a restricted sub-grammar of
// expressions; expression shapes that are illegal in pattern position simply
// never implement this interface.
type pattern interface {
	node
	pattern()
}

// interface for type-expression nodes
type typeExpr interface {
	node
	typeExpr()
}

// interface for compile-time-literal-shaped values used in attribute payloads
type constant interface {
	node
	constant()
}

// interface for comprehension qualifiers
type qualifier interface {
	node
	qualifier()
}

// interface for the leaf nodes that are valid in every grammar: expression,
// pattern, and attribute-constant position alike
type literal interface {
	expression
	pattern
	constant
}

type astNode struct {
	span idl.Span
}

func (self astNode) Span() idl.Span {
	return self.span
}

func (self *astNode) setSpan(span idl.Span) {
	self.span = span
}

// Atomics. These are shared between the expression, pattern, type, and
// constant grammars.

type astAtom struct {
	astNode
	name string
}

type astVariable struct {
	astNode
	name string
}

func (self astVariable) isWildcard() bool {
	return self.name == "_"
}

type astLiteralInt struct {
	astNode
	token idl.Token
	val   int64
}

// astLiteralBigInt holds an integer literal whose value exceeds the native
// 64-bit range.
type astLiteralBigInt struct {
	astNode
	token idl.Token
	val   *big.Int
}

type astLiteralFloat struct {
	astNode
	token idl.Token
	val   float64
}

type astLiteralChar struct {
	astNode
	val rune
}

type astLiteralString struct {
	astNode
	val string
}

type astNil struct {
	astNode
}

// Expressions.

type astTuple struct {
	astNode
	elements []expression
}

// astList is a proper or improper list literal. A nil tail means the list is
// nil-terminated.
type astList struct {
	astNode
	elements []expression
	tail     expression
}

type astBinary struct {
	astNode
	elements []astBinaryElement
}

type astBinaryElement struct {
	astNode
	value      expression
	size       expression
	specifiers []astBitType
}

// astBitType is one entry of the dash-delimited type-specifier list of a
// binary element, e.g. big-signed-unit:8.
type astBitType struct {
	astNode
	name string
	// unit is 0 unless the specifier carried an explicit :N size.
	unit int64
}

type astListComprehension struct {
	astNode
	body       expression
	qualifiers []qualifier
}

type astBinaryComprehension struct {
	astNode
	body       expression
	qualifiers []qualifier
}

type astListGenerator struct {
	astNode
	match  pattern
	source expression
}

type astBinaryGenerator struct {
	astNode
	match  pattern
	source expression
}

type astFilter struct {
	astNode
	condition expression
}

type astMapEntry struct {
	astNode
	key expression
	// exact is true for := entries, false for => entries.
	exact bool
	value expression
}

type astMap struct {
	astNode
	entries []astMapEntry
}

type astMapUpdate struct {
	astNode
	subject expression
	entries []astMapEntry
}

type astRecordField struct {
	astNode
	field string
	value expression
}

type astRecord struct {
	astNode
	name   string
	fields []astRecordField
}

type astRecordUpdate struct {
	astNode
	subject expression
	name    string
	fields  []astRecordField
}

type astRecordAccess struct {
	astNode
	subject expression
	name    string
	field   string
}

type astRecordIndex struct {
	astNode
	name  string
	field string
}

type astMatch struct {
	astNode
	left  expression
	right expression
}

type astSend struct {
	astNode
	left  expression
	right expression
}

type astBinOp struct {
	astNode
	op    idl.Token
	left  expression
	right expression
}

type astUnaryOp struct {
	astNode
	op      idl.Token
	operand expression
}

type astRemote struct {
	astNode
	module   expression
	function expression
}

type astCall struct {
	astNode
	callee expression
	args   []expression
}

type astBlock struct {
	astNode
	body []expression
}

type astCatch struct {
	astNode
	operand expression
}

type astGuardAlternative struct {
	astNode
	conditions []expression
}

// astGuard is a two-level guard sequence: the outer alternatives combine with
// OR semantics, the conditions inside one alternative with AND semantics.
type astGuard struct {
	astNode
	alternatives []astGuardAlternative
}

type astIfClause struct {
	astNode
	guard astGuard
	body  []expression
}

type astIf struct {
	astNode
	clauses []astIfClause
}

type astClause struct {
	astNode
	match pattern
	guard *astGuard
	body  []expression
}

type astCase struct {
	astNode
	scrutinee expression
	clauses   []astClause
}

type astReceiveAfter struct {
	astNode
	timeout expression
	body    []expression
}

type astReceive struct {
	astNode
	clauses []astClause
	after   *astReceiveAfter
}

// astTry keeps the optional branches apart: ofClauses is nil when there is no
// of section, catchClauses is nil when there is no catch section, and
// afterBody is nil when there is no after section.
type astTry struct {
	astNode
	exprs        []expression
	ofClauses    []astClause
	catchClauses []astCatchClause
	afterBody    []expression
}

// astCatchClause binds one catch alternative of a try expression. When the
// source omits the exception class it defaults to a synthesized throw atom;
// when it omits the trace binding it defaults to a synthesized wildcard.
type astCatchClause struct {
	astNode
	class expression
	match pattern
	trace astVariable
	guard *astGuard
	body  []expression
}

type astFunRef struct {
	astNode
	name  string
	arity int64
}

// astFunRefRemote is a fun module:function/arity reference. Each position may
// be a literal (atom, atom, integer) or a variable; dynamic records whether
// any position is a variable.
type astFunRefRemote struct {
	astNode
	module   idl.Token
	function idl.Token
	arity    idl.Token
	dynamic  bool
}

type astFun struct {
	astNode
	clauses []astFunctionClause
}

// Patterns. Containers are duplicated from the expression grammar with
// pattern-typed children so that illegal shapes cannot be constructed.

type astTuplePattern struct {
	astNode
	elements []pattern
}

type astListPattern struct {
	astNode
	elements []pattern
	tail     pattern
}

type astBinaryPattern struct {
	astNode
	elements []astBinaryPatternElement
}

type astBinaryPatternElement struct {
	astNode
	value      pattern
	size       expression
	specifiers []astBitType
}

type astMapPatternEntry struct {
	astNode
	key   pattern
	value pattern
}

// astMapPattern is a map projection: every entry matches with := semantics.
type astMapPattern struct {
	astNode
	entries []astMapPatternEntry
}

type astRecordFieldPattern struct {
	astNode
	field string
	value pattern
}

type astRecordPattern struct {
	astNode
	name   string
	fields []astRecordFieldPattern
}

type astMatchPattern struct {
	astNode
	left  pattern
	right pattern
}

type astBinOpPattern struct {
	astNode
	op    idl.Token
	left  pattern
	right pattern
}

type astUnaryOpPattern struct {
	astNode
	op      idl.Token
	operand pattern
}

// Top-level forms.

type astModule struct {
	astNode
	uri   string
	name  astAtom
	items []topLevel
}

func (self astModule) String() string {
	formatted := fmt.Sprintf("-module(%s).\n", self.name.name)
	for _, item := range self.items {
		formatted += fmt.Sprintf("%+v\n", item)
	}
	return formatted
}

func (self astModule) Name() string {
	return self.name.name
}

func (self astModule) URI() string {
	return self.uri
}

// Module is the read surface of a parsed module tree, for callers outside
// this package.
type astFunctionClause struct {
	astNode
	// name is nil for the clauses of an unnamed fun.
	name   *idl.Token
	params []pattern
	guard  *astGuard
	body   []expression
}

type astNamedFunction struct {
	astNode
	name    string
	arity   int
	clauses []astFunctionClause
}

type astRecordDeclField struct {
	astNode
	name string
	def  expression
	typ  typeExpr
}

type astRecordDecl struct {
	astNode
	name   string
	fields []astRecordDeclField
}

// Attributes.

type astNameArity struct {
	astNode
	name  string
	arity int64
}

type astAttributeVsn struct {
	astNode
	value constant
}

type astAttributeCompile struct {
	astNode
	value constant
}

type astAttributeExport struct {
	astNode
	funs []astNameArity
}

type astAttributeExportType struct {
	astNode
	types []astNameArity
}

type astAttributeImport struct {
	astNode
	module string
	funs   []astNameArity
}

type astAttributeBehaviour struct {
	astNode
	name string
}

type astAttributeCustom struct {
	astNode
	name  string
	value constant
}

type deprecationFlag uint8

const (
	deprecationFlagEventually deprecationFlag = iota
	deprecationFlagNextVersion
	deprecationFlagNextMajorRelease
)

func (f deprecationFlag) String() string {
	switch f {
	case deprecationFlagNextVersion:
		return "next_version"
	case deprecationFlagNextMajorRelease:
		return "next_major_release"
	default:
		return "eventually"
	}
}

// astDeprecation is one deprecation entry: either the whole module or one
// function/arity.
type astDeprecation struct {
	astNode
	wholeModule bool
	function    string
	arity       int64
	flag        deprecationFlag
}

type astAttributeDeprecated struct {
	astNode
	deprecations []astDeprecation
}

// Type declarations and specs.

type astTypeDef struct {
	astNode
	opaque bool
	name   string
	params []astVariable
	body   typeExpr
}

type astTypeSig struct {
	astNode
	params []typeExpr
	result typeExpr
	guards []astTypeGuard
}

type astTypeGuard struct {
	astNode
	variable astVariable
	typ      typeExpr
}

type astTypeSpec struct {
	astNode
	// module is empty unless the spec carries an explicit module qualifier.
	module string
	name   string
	sigs   []astTypeSig
}

type astAttributeCallback struct {
	astNode
	spec     astTypeSpec
	optional bool
}

// Type expressions.

type astTypeUnion struct {
	astNode
	alternatives []typeExpr
}

type astTypeRange struct {
	astNode
	low  typeExpr
	high typeExpr
}

type astTypeBinOp struct {
	astNode
	op    idl.Token
	left  typeExpr
	right typeExpr
}

type astTypeUnaryOp struct {
	astNode
	op      idl.Token
	operand typeExpr
}

type astTypeCall struct {
	astNode
	name string
	args []typeExpr
}

type astTypeRemote struct {
	astNode
	module string
	name   string
	args   []typeExpr
}

type astTypeList struct {
	astNode
	element  typeExpr
	nonEmpty bool
}

type astTypeTuple struct {
	astNode
	elements []typeExpr
}

type astTypeMapEntry struct {
	astNode
	key   typeExpr
	value typeExpr
}

type astTypeMap struct {
	astNode
	entries []astTypeMapEntry
}

type astTypeRecordField struct {
	astNode
	name string
	typ  typeExpr
}

type astTypeRecord struct {
	astNode
	name   string
	fields []astTypeRecordField
}

// astTypeBinary covers <<>>, <<_:M>>, <<_:_*N>>, and <<_:M,_:_*N>>. size and
// unit are nil when the corresponding constraint is absent.
type astTypeBinary struct {
	astNode
	size typeExpr
	unit typeExpr
}

// astTypeFun covers fun(), fun((...) -> R), and fun((Args) -> R). result is
// nil for the bare fun() form; anyArity is true for the (...) form.
type astTypeFun struct {
	astNode
	params   []typeExpr
	anyArity bool
	result   typeExpr
}

type astTypeBinder struct {
	astNode
	name astVariable
	typ  typeExpr
}

// Constants.

type astConstTuple struct {
	astNode
	elements []constant
}

type astConstList struct {
	astNode
	elements []constant
	tail     constant
}

type astConstMapEntry struct {
	astNode
	key   constant
	value constant
}

type astConstMap struct {
	astNode
	entries []astConstMapEntry
}

func (astAtom) node()               {}
func (astVariable) node()           {}
func (astLiteralInt) node()         {}
func (astLiteralBigInt) node()      {}
func (astLiteralFloat) node()       {}
func (astLiteralChar) node()        {}
func (astLiteralString) node()      {}
func (astNil) node()                {}
func (astTuple) node()              {}
func (astList) node()               {}
func (astBinary) node()             {}
func (astBinaryElement) node()      {}
func (astBitType) node()            {}
func (astListComprehension) node()       {}
func (astBinaryComprehension) node()     {}
func (astListGenerator) node()           {}
func (astBinaryGenerator) node()         {}
func (astFilter) node()                  {}
func (astMapEntry) node()                {}
func (astMap) node()                     {}
func (astMapUpdate) node()               {}
func (astRecordField) node()             {}
func (astRecord) node()                  {}
func (astRecordUpdate) node()            {}
func (astRecordAccess) node()            {}
func (astRecordIndex) node()             {}
func (astMatch) node()                   {}
func (astSend) node()                    {}
func (astBinOp) node()                   {}
func (astUnaryOp) node()                 {}
func (astRemote) node()                  {}
func (astCall) node()                    {}
func (astBlock) node()                   {}
func (astCatch) node()                   {}
func (astGuardAlternative) node()        {}
func (astGuard) node()                   {}
func (astIfClause) node()                {}
func (astIf) node()                      {}
func (astClause) node()                  {}
func (astCase) node()                    {}
func (astReceiveAfter) node()            {}
func (astReceive) node()                 {}
func (astTry) node()                     {}
func (astCatchClause) node()             {}
func (astFunRef) node()                  {}
func (astFunRefRemote) node()            {}
func (astFun) node()                     {}
func (astTuplePattern) node()            {}
func (astListPattern) node()             {}
func (astBinaryPattern) node()           {}
func (astBinaryPatternElement) node()    {}
func (astMapPatternEntry) node()         {}
func (astMapPattern) node()              {}
func (astRecordFieldPattern) node()      {}
func (astRecordPattern) node()           {}
func (astMatchPattern) node()            {}
func (astBinOpPattern) node()            {}
func (astUnaryOpPattern) node()          {}
func (astModule) node()                  {}
func (astFunctionClause) node()          {}
func (astNamedFunction) node()           {}
func (astRecordDeclField) node()         {}
func (astRecordDecl) node()              {}
func (astNameArity) node()               {}
func (astAttributeVsn) node()            {}
func (astAttributeCompile) node()        {}
func (astAttributeExport) node()         {}
func (astAttributeExportType) node()     {}
func (astAttributeImport) node()         {}
func (astAttributeBehaviour) node()      {}
func (astAttributeCustom) node()         {}
func (astDeprecation) node()             {}
func (astAttributeDeprecated) node()     {}
func (astTypeDef) node()                 {}
func (astTypeSig) node()                 {}
func (astTypeGuard) node()               {}
func (astTypeSpec) node()                {}
func (astAttributeCallback) node()       {}
func (astTypeUnion) node()               {}
func (astTypeRange) node()               {}
func (astTypeBinOp) node()               {}
func (astTypeUnaryOp) node()             {}
func (astTypeCall) node()                {}
func (astTypeRemote) node()              {}
func (astTypeList) node()                {}
func (astTypeTuple) node()               {}
func (astTypeMapEntry) node()            {}
func (astTypeMap) node()                 {}
func (astTypeRecordField) node()         {}
func (astTypeRecord) node()              {}
func (astTypeBinary) node()              {}
func (astTypeFun) node()                 {}
func (astTypeBinder) node()              {}
func (astConstTuple) node()              {}
func (astConstList) node()               {}
func (astConstMapEntry) node()           {}
func (astConstMap) node()                {}

func (astNamedFunction) topLevel()       {}
func (astRecordDecl) topLevel()          {}
func (astAttributeVsn) topLevel()        {}
func (astAttributeCompile) topLevel()    {}
func (astAttributeExport) topLevel()     {}
func (astAttributeExportType) topLevel() {}
func (astAttributeImport) topLevel()     {}
func (astAttributeBehaviour) topLevel()  {}
func (astAttributeCustom) topLevel()     {}
func (astAttributeDeprecated) topLevel() {}
func (astTypeDef) topLevel()             {}
func (astTypeSpec) topLevel()            {}
func (astAttributeCallback) topLevel()   {}

func (astAttributeVsn) attribute()        {}
func (astAttributeCompile) attribute()    {}
func (astAttributeExport) attribute()     {}
func (astAttributeExportType) attribute() {}
func (astAttributeImport) attribute()     {}
func (astAttributeBehaviour) attribute()  {}
func (astAttributeCustom) attribute()     {}
func (astAttributeDeprecated) attribute() {}
func (astTypeDef) attribute()             {}
func (astTypeSpec) attribute()            {}
func (astAttributeCallback) attribute()   {}

func (astAtom) expression()                {}
func (astVariable) expression()            {}
func (astLiteralInt) expression()          {}
func (astLiteralBigInt) expression()       {}
func (astLiteralFloat) expression()        {}
func (astLiteralChar) expression()         {}
func (astLiteralString) expression()       {}
func (astNil) expression()                 {}
func (astTuple) expression()               {}
func (astList) expression()                {}
func (astBinary) expression()              {}
func (astListComprehension) expression()   {}
func (astBinaryComprehension) expression() {}
func (astMap) expression()                 {}
func (astMapUpdate) expression()           {}
func (astRecord) expression()              {}
func (astRecordUpdate) expression()        {}
func (astRecordAccess) expression()        {}
func (astRecordIndex) expression()         {}
func (astMatch) expression()               {}
func (astSend) expression()                {}
func (astBinOp) expression()               {}
func (astUnaryOp) expression()             {}
func (astRemote) expression()              {}
func (astCall) expression()                {}
func (astBlock) expression()               {}
func (astCatch) expression()               {}
func (astIf) expression()                  {}
func (astCase) expression()                {}
func (astReceive) expression()             {}
func (astTry) expression()                 {}
func (astFunRef) expression()              {}
func (astFunRefRemote) expression()        {}
func (astFun) expression()                 {}

func (astAtom) pattern()            {}
func (astVariable) pattern()        {}
func (astLiteralInt) pattern()      {}
func (astLiteralBigInt) pattern()   {}
func (astLiteralFloat) pattern()    {}
func (astLiteralChar) pattern()     {}
func (astLiteralString) pattern()   {}
func (astNil) pattern()             {}
func (astRecordIndex) pattern()     {}
func (astTuplePattern) pattern()    {}
func (astListPattern) pattern()     {}
func (astBinaryPattern) pattern()   {}
func (astMapPattern) pattern()      {}
func (astRecordPattern) pattern()   {}
func (astMatchPattern) pattern()    {}
func (astBinOpPattern) pattern()    {}
func (astUnaryOpPattern) pattern()  {}

func (astListGenerator) qualifier()   {}
func (astBinaryGenerator) qualifier() {}
func (astFilter) qualifier()          {}

func (astAtom) typeExpr()          {}
func (astVariable) typeExpr()      {}
func (astLiteralInt) typeExpr()    {}
func (astLiteralBigInt) typeExpr() {}
func (astLiteralChar) typeExpr()   {}
func (astNil) typeExpr()           {}
func (astTypeUnion) typeExpr()     {}
func (astTypeRange) typeExpr()     {}
func (astTypeBinOp) typeExpr()     {}
func (astTypeUnaryOp) typeExpr()   {}
func (astTypeCall) typeExpr()      {}
func (astTypeRemote) typeExpr()    {}
func (astTypeList) typeExpr()      {}
func (astTypeTuple) typeExpr()     {}
func (astTypeMap) typeExpr()       {}
func (astTypeRecord) typeExpr()    {}
func (astTypeBinary) typeExpr()    {}
func (astTypeFun) typeExpr()       {}
func (astTypeBinder) typeExpr()    {}

func (astAtom) constant()          {}
func (astLiteralInt) constant()    {}
func (astLiteralBigInt) constant() {}
func (astLiteralFloat) constant()  {}
func (astLiteralChar) constant()   {}
func (astLiteralString) constant() {}
func (astNil) constant()           {}
func (astConstTuple) constant()    {}
func (astConstList) constant()     {}
func (astConstMap) constant()      {}
