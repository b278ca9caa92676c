// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/idl"
	"gopkg.microglot.org/erlc.go/internal/iter"
)

type ParserErlang struct {
	reporter exc.Reporter
}

var _ idl.Parser = &ParserErlang{}

func NewParserErlang(reporter exc.Reporter) *ParserErlang {
	return &ParserErlang{reporter: reporter}
}

func (self *ParserErlang) PrepareParse(ctx context.Context, f idl.LexerFile) (*parserErlangTokens, error) {
	ft, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	// comment tokens are retained by the lexer so a future doc pass can
	// associate them with the following declaration; the grammar itself
	// ignores them.
	filteredTokens := iter.NewIteratorFilter(ft, idl.Filter[*idl.Token](iter.FilterFunc[*idl.Token](func(ctx context.Context, t *idl.Token) bool {
		return t.Type != idl.TokenTypeComment
	})))

	// the token sequence is materialized up front: every rule runs on bounded
	// lookahead except the comprehension-qualifier rule, which needs to rewind
	// after a failed speculative pattern parse.
	tokens, err := iter.Collect(ctx, filteredTokens)
	if err != nil {
		return nil, err
	}

	return &parserErlangTokens{
		reporter: self.reporter,
		ctx:      ctx,
		tokens:   tokens,
		uri:      f.Path(ctx),
	}, nil
}

// Parse runs the module grammar over f. On success it returns the module tree;
// recoverable diagnostics are available from the reporter. On fatal failure it
// returns the first fatal exception as the error and no tree.
func (self *ParserErlang) Parse(ctx context.Context, f idl.LexerFile) (idl.Module, error) {
	p, err := self.PrepareParse(ctx, f)
	if err != nil {
		return nil, err
	}
	tree := p.ParseModule()
	if tree == nil {
		for _, e := range self.reporter.Reported() {
			if e.Severity() == exc.SeverityError {
				return nil, e
			}
		}
		return nil, exc.New(exc.Location{URI: p.uri}, exc.CodeUnknownFatal, "parse failed")
	}
	return tree, nil
}

type parserErlangTokens struct {
	reporter exc.Reporter
	ctx      context.Context
	uri      string
	tokens   []*idl.Token
	pos      int
	// loc is the .Span.End of the last consumed token; it gives "unexpected
	// EOF" errors a meaningful location and closes every node span.
	loc idl.Location
}

func (p *parserErlangTokens) report(code string, message string) {
	span := idl.Span{Start: p.loc, End: p.loc}
	if tok := p.peek(); tok != nil {
		span = tok.Span
	}
	_ = p.reporter.Report(exc.New(exc.Location{
		URI:  p.uri,
		Span: span,
	}, code, message, exc.Label{Span: span, Message: message}))
}

func (p *parserErlangTokens) reportWarning(code string, message string, span idl.Span, labels ...exc.Label) {
	_ = p.reporter.Report(exc.NewWarning(exc.Location{
		URI:  p.uri,
		Span: span,
	}, code, message, labels...))
}

func (p *parserErlangTokens) peekN(n int) *idl.Token {
	if p.pos+n >= len(p.tokens) {
		return nil
	}
	return p.tokens[p.pos+n]
}

func (p *parserErlangTokens) peek() *idl.Token {
	return p.peekN(0)
}

func (p *parserErlangTokens) peekType(t idl.TokenType) bool {
	tok := p.peek()
	return tok != nil && tok.Type == t
}

func (p *parserErlangTokens) advance() {
	if p.pos < len(p.tokens) {
		p.loc = p.tokens[p.pos].Span.End
		p.pos = p.pos + 1
	}
}

// mark and reset implement the single backtrack point of the grammar (see
// parseQualifier).
func (p *parserErlangTokens) mark() (int, idl.Location) {
	return p.pos, p.loc
}

func (p *parserErlangTokens) reset(pos int, loc idl.Location) {
	p.pos = pos
	p.loc = loc
}

// start is the location where the next construct will begin: the start of the
// next token, or the end of input.
func (p *parserErlangTokens) start() idl.Location {
	if tok := p.peek(); tok != nil {
		return tok.Span.Start
	}
	return p.loc
}

// span closes a node span opened with start.
func (p *parserErlangTokens) span(start idl.Location) idl.Span {
	return idl.Span{Start: start, End: p.loc}
}

// reports an error if there is no current token, or the current token isn't of
// the expected type. advances on success.
func (p *parserErlangTokens) expectOne(expectedType idl.TokenType) *idl.Token {
	return p.expectOneOf([]idl.TokenType{expectedType})
}

// reports an error if the current token isn't one of the given expected types.
// advances on success.
func (p *parserErlangTokens) expectOneOf(expectedTypes []idl.TokenType) *idl.Token {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, fmt.Sprintf("unexpected end of input (expecting %v)", expectedTypes))
		return nil
	}
	for _, expectedType := range expectedTypes {
		if maybeToken.Type == expectedType {
			p.advance()
			return maybeToken
		}
	}
	p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting %v)", maybeToken.Value, expectedTypes))
	return nil
}

// generic application of parsing a separator-delimited sequence: zero or more
// "T sep" pairs followed by a mandatory trailing T. A separator without a
// following element is a syntax error.
func applyOverSeparatedList[N any](p *parserErlangTokens, sep idl.TokenType, parser func() (N, bool)) []N {
	values := []N{}
	v, ok := parser()
	if !ok {
		return nil
	}
	values = append(values, v)
	for {
		maybeToken := p.peek()
		if maybeToken == nil || maybeToken.Type != sep {
			break
		}
		p.advance()
		v, ok = parser()
		if !ok {
			return nil
		}
		values = append(values, v)
	}
	return values
}

// generic application of parsing lists of zero or more comma-separated nodes
// between delimiters. Unlike the separator rules above this one permits the
// empty sequence; it never permits a trailing comma.
func applyOverCommaDelimitedList[N any](p *parserErlangTokens, tOpen idl.TokenType, parser func() (N, bool), tClose idl.TokenType) []N {
	if p.expectOne(tOpen) == nil {
		return nil
	}
	if p.peekType(tClose) {
		p.advance()
		return []N{}
	}
	values := applyOverSeparatedList(p, idl.TokenTypeComma, parser)
	if values == nil {
		return nil
	}
	if p.expectOne(tClose) == nil {
		return nil
	}
	return values
}

// ok-adapters for the interface-typed productions so they compose with the
// generic list rules.
func (p *parserErlangTokens) parseExprOk() (expression, bool) {
	e := p.parseExpr()
	return e, e != nil
}

func (p *parserErlangTokens) parsePatternOk() (pattern, bool) {
	v := p.parsePattern()
	return v, v != nil
}

func (p *parserErlangTokens) parseTypeOk() (typeExpr, bool) {
	t := p.parseType()
	return t, t != nil
}

func (p *parserErlangTokens) parseConstantOk() (constant, bool) {
	c := p.parseConstant()
	return c, c != nil
}

// Module = ModuleAttribute {Attribute | NamedFunction}
func (p *parserErlangTokens) ParseModule() *astModule {
	start := p.start()
	this := astModule{
		uri: p.uri,
	}

	maybeName := p.parseModuleAttribute()
	if maybeName == nil {
		return nil
	}
	this.name = *maybeName

	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			break
		}
		maybeForm := p.parseForm()
		if maybeForm == nil {
			return nil
		}
		this.items = append(this.items, maybeForm)
	}

	this.span = p.span(start)
	return &this
}

// ParseExpression parses a token stream holding exactly one expression. It is
// the entry point for interactive and embedded-expression contexts.
func (p *parserErlangTokens) ParseExpression() expression {
	maybeExpr := p.parseExpr()
	if maybeExpr == nil {
		return nil
	}
	if maybeToken := p.peek(); maybeToken != nil {
		p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s after expression", maybeToken.Value))
		return nil
	}
	return maybeExpr
}

// ModuleAttribute = "-" "module" "(" atom ")" "."
func (p *parserErlangTokens) parseModuleAttribute() *astAtom {
	if p.expectOne(idl.TokenTypeMinus) == nil {
		return nil
	}
	maybeKeyword := p.expectOne(idl.TokenTypeAtom)
	if maybeKeyword == nil {
		return nil
	}
	if maybeKeyword.Value != "module" {
		p.report(exc.CodeMissingModule, fmt.Sprintf("expected -module as the first form, found -%s", maybeKeyword.Value))
		return nil
	}
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeParenClose) == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeDot) == nil {
		return nil
	}
	return &astAtom{
		astNode: astNode{maybeName.Span},
		name:    maybeName.Value,
	}
}

// Form = Attribute | NamedFunction
func (p *parserErlangTokens) parseForm() topLevel {
	maybeToken := p.peek()
	switch maybeToken.Type {
	case idl.TokenTypeMinus:
		return p.parseAttribute()
	case idl.TokenTypeAtom:
		maybeFunction := p.parseNamedFunction()
		if maybeFunction == nil {
			return nil
		}
		return maybeFunction
	default:
		p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting an attribute or a function)", maybeToken.Value))
		return nil
	}
}

// Attribute = "-" atom AttributeBody "."
func (p *parserErlangTokens) parseAttribute() topLevel {
	start := p.start()
	if p.expectOne(idl.TokenTypeMinus) == nil {
		return nil
	}
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return nil
	}

	var this topLevel
	switch maybeName.Value {
	case "vsn":
		this = p.parseAttributeVsn(start)
	case "compile":
		this = p.parseAttributeCompile(start)
	case "export":
		this = p.parseAttributeExport(start)
	case "export_type":
		this = p.parseAttributeExportType(start)
	case "import":
		this = p.parseAttributeImport(start)
	case "behaviour", "behavior":
		this = p.parseAttributeBehaviour(start)
	case "record":
		this = p.parseRecordDecl(start)
	case "deprecated":
		this = p.parseAttributeDeprecated(start)
	case "type":
		this = p.parseTypeDef(start, false)
	case "opaque":
		this = p.parseTypeDef(start, true)
	case "spec":
		this = p.parseTypeSpec(start)
	case "callback":
		this = p.parseAttributeCallback(start, false)
	case "optional_callback":
		this = p.parseAttributeCallback(start, true)
	default:
		this = p.parseAttributeCustom(start, maybeName)
	}
	if this == nil {
		return nil
	}
	return this
}

// VsnAttribute = "(" Constant ")" "."
func (p *parserErlangTokens) parseAttributeVsn(start idl.Location) topLevel {
	maybeValue := p.parseParenConstant()
	if maybeValue == nil {
		return nil
	}
	return &astAttributeVsn{
		astNode: astNode{p.span(start)},
		value:   maybeValue,
	}
}

// CompileAttribute = "(" Constant ")" "."
func (p *parserErlangTokens) parseAttributeCompile(start idl.Location) topLevel {
	maybeValue := p.parseParenConstant()
	if maybeValue == nil {
		return nil
	}
	return &astAttributeCompile{
		astNode: astNode{p.span(start)},
		value:   maybeValue,
	}
}

func (p *parserErlangTokens) parseParenConstant() constant {
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}
	maybeValue := p.parseConstant()
	if maybeValue == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeParenClose) == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeDot) == nil {
		return nil
	}
	return maybeValue
}

// ExportAttribute = "(" "[" [NameArity {"," NameArity}] "]" ")" "."
func (p *parserErlangTokens) parseAttributeExport(start idl.Location) topLevel {
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}
	funs := applyOverCommaDelimitedList(p, idl.TokenTypeSquareOpen, p.parseNameArity, idl.TokenTypeSquareClose)
	if funs == nil {
		return nil
	}
	if !p.finishAttribute() {
		return nil
	}
	return &astAttributeExport{
		astNode: astNode{p.span(start)},
		funs:    funs,
	}
}

// ExportTypeAttribute = "(" "[" [NameArity {"," NameArity}] "]" ")" "."
func (p *parserErlangTokens) parseAttributeExportType(start idl.Location) topLevel {
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}
	types := applyOverCommaDelimitedList(p, idl.TokenTypeSquareOpen, p.parseNameArity, idl.TokenTypeSquareClose)
	if types == nil {
		return nil
	}
	if !p.finishAttribute() {
		return nil
	}
	return &astAttributeExportType{
		astNode: astNode{p.span(start)},
		types:   types,
	}
}

// ImportAttribute = "(" atom "," "[" [NameArity {"," NameArity}] "]" ")" "."
func (p *parserErlangTokens) parseAttributeImport(start idl.Location) topLevel {
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}
	maybeModule := p.expectOne(idl.TokenTypeAtom)
	if maybeModule == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeComma) == nil {
		return nil
	}
	funs := applyOverCommaDelimitedList(p, idl.TokenTypeSquareOpen, p.parseNameArity, idl.TokenTypeSquareClose)
	if funs == nil {
		return nil
	}
	if !p.finishAttribute() {
		return nil
	}
	return &astAttributeImport{
		astNode: astNode{p.span(start)},
		module:  maybeModule.Value,
		funs:    funs,
	}
}

// BehaviourAttribute = "(" atom ")" "."
func (p *parserErlangTokens) parseAttributeBehaviour(start idl.Location) topLevel {
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return nil
	}
	if !p.finishAttribute() {
		return nil
	}
	return &astAttributeBehaviour{
		astNode: astNode{p.span(start)},
		name:    maybeName.Value,
	}
}

// CustomAttribute = "(" Constant ")" "."
func (p *parserErlangTokens) parseAttributeCustom(start idl.Location, name *idl.Token) topLevel {
	maybeValue := p.parseParenConstant()
	if maybeValue == nil {
		return nil
	}
	return &astAttributeCustom{
		astNode: astNode{p.span(start)},
		name:    name.Value,
		value:   maybeValue,
	}
}

// finishAttribute consumes the closing ")" "." of an attribute form.
func (p *parserErlangTokens) finishAttribute() bool {
	if p.expectOne(idl.TokenTypeParenClose) == nil {
		return false
	}
	return p.expectOne(idl.TokenTypeDot) != nil
}

// NameArity = atom "/" int_lit
func (p *parserErlangTokens) parseNameArity() (astNameArity, bool) {
	start := p.start()
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return astNameArity{}, false
	}
	if p.expectOne(idl.TokenTypeSlash) == nil {
		return astNameArity{}, false
	}
	maybeArity := p.parseArity()
	if maybeArity == nil {
		return astNameArity{}, false
	}
	return astNameArity{
		astNode: astNode{p.span(start)},
		name:    maybeName.Value,
		arity:   maybeArity.val,
	}, true
}

func (p *parserErlangTokens) parseArity() *astLiteralInt {
	maybeToken := p.expectOne(idl.TokenTypeInteger)
	if maybeToken == nil {
		return nil
	}
	val, err := parseIntegerText(maybeToken.Value)
	if err != nil {
		p.report(exc.CodeInvalidLiteral, fmt.Sprintf("invalid arity %s", maybeToken.Value))
		return nil
	}
	return &astLiteralInt{
		astNode: astNode{maybeToken.Span},
		token:   *maybeToken,
		val:     val,
	}
}

// parseIntegerText converts the raw text of an integer token, including the
// base#digits form, into its native value.
func parseIntegerText(text string) (int64, error) {
	for i := 0; i < len(text); i = i + 1 {
		if text[i] == '#' {
			base, err := strconv.Atoi(text[:i])
			if err != nil {
				return 0, err
			}
			return strconv.ParseInt(text[i+1:], base, 64)
		}
	}
	return strconv.ParseInt(text, 10, 64)
}

// RecordAttribute = "(" atom "," "{" [RecordFieldDecl {"," RecordFieldDecl}] "}" ")" "."
func (p *parserErlangTokens) parseRecordDecl(start idl.Location) topLevel {
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeComma) == nil {
		return nil
	}
	fields := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseRecordDeclField, idl.TokenTypeCurlyClose)
	if fields == nil {
		return nil
	}
	if !p.finishAttribute() {
		return nil
	}
	return &astRecordDecl{
		astNode: astNode{p.span(start)},
		name:    maybeName.Value,
		fields:  fields,
	}
}

// RecordFieldDecl = atom ["=" Expr] ["::" Type]
func (p *parserErlangTokens) parseRecordDeclField() (astRecordDeclField, bool) {
	start := p.start()
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return astRecordDeclField{}, false
	}

	this := astRecordDeclField{
		name: maybeName.Value,
	}

	if p.peekType(idl.TokenTypeEqual) {
		p.advance()
		maybeDefault := p.parseExpr()
		if maybeDefault == nil {
			return astRecordDeclField{}, false
		}
		this.def = maybeDefault
	}

	if p.peekType(idl.TokenTypeColonColon) {
		p.advance()
		maybeType := p.parseType()
		if maybeType == nil {
			return astRecordDeclField{}, false
		}
		this.typ = maybeType
	}

	this.span = p.span(start)
	return this, true
}

var deprecationFlags = map[string]deprecationFlag{
	"eventually":         deprecationFlagEventually,
	"next_version":       deprecationFlagNextVersion,
	"next_major_release": deprecationFlagNextMajorRelease,
}

// DeprecatedAttribute = "(" (Deprecation | "[" Deprecation {"," Deprecation} "]") ")" "."
func (p *parserErlangTokens) parseAttributeDeprecated(start idl.Location) topLevel {
	if p.expectOne(idl.TokenTypeParenOpen) == nil {
		return nil
	}

	var deprecations []astDeprecation
	if p.peekType(idl.TokenTypeSquareOpen) {
		p.advance()
		deprecations = applyOverSeparatedList(p, idl.TokenTypeComma, p.parseDeprecation)
		if deprecations == nil {
			return nil
		}
		if p.expectOne(idl.TokenTypeSquareClose) == nil {
			return nil
		}
	} else {
		single, ok := p.parseDeprecation()
		if !ok {
			return nil
		}
		deprecations = []astDeprecation{single}
	}

	if !p.finishAttribute() {
		return nil
	}
	return &astAttributeDeprecated{
		astNode:      astNode{p.span(start)},
		deprecations: deprecations,
	}
}

// Deprecation = atom | "{" atom "," int_lit ["," atom] "}"
//
// The bare-atom form deprecates the whole module; any atom other than module
// in that position is a recoverable diagnostic and the module-scope
// deprecation is still synthesized so parsing continues. An unrecognized flag
// atom is likewise reported and silently defaulted.
func (p *parserErlangTokens) parseDeprecation() (astDeprecation, bool) {
	start := p.start()
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input (expecting a deprecation)")
		return astDeprecation{}, false
	}

	if maybeToken.Type == idl.TokenTypeAtom {
		p.advance()
		if maybeToken.Value != "module" {
			p.reportWarning(exc.CodeBadDeprecatedTarget,
				fmt.Sprintf("invalid deprecated target %s (expecting the atom module)", maybeToken.Value),
				maybeToken.Span,
				exc.Label{Span: maybeToken.Span, Message: "this atom is not a valid deprecation target"})
		}
		return astDeprecation{
			astNode:     astNode{p.span(start)},
			wholeModule: true,
			flag:        deprecationFlagEventually,
		}, true
	}

	if p.expectOne(idl.TokenTypeCurlyOpen) == nil {
		return astDeprecation{}, false
	}
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return astDeprecation{}, false
	}
	if p.expectOne(idl.TokenTypeComma) == nil {
		return astDeprecation{}, false
	}
	maybeArity := p.parseArity()
	if maybeArity == nil {
		return astDeprecation{}, false
	}

	this := astDeprecation{
		function: maybeName.Value,
		arity:    maybeArity.val,
		flag:     deprecationFlagEventually,
	}

	if p.peekType(idl.TokenTypeComma) {
		p.advance()
		maybeFlag := p.expectOne(idl.TokenTypeAtom)
		if maybeFlag == nil {
			return astDeprecation{}, false
		}
		flag, ok := deprecationFlags[maybeFlag.Value]
		if !ok {
			p.reportWarning(exc.CodeBadDeprecatedFlag,
				fmt.Sprintf("unrecognized deprecation flag %s", maybeFlag.Value),
				maybeFlag.Span,
				exc.Label{Span: maybeFlag.Span, Message: "expecting next_version, next_major_release, or eventually"})
			flag = deprecationFlagEventually
		}
		this.flag = flag
	}

	if p.expectOne(idl.TokenTypeCurlyClose) == nil {
		return astDeprecation{}, false
	}
	this.span = p.span(start)
	return this, true
}

// NamedFunction = FunctionClause {";" FunctionClause} "."
func (p *parserErlangTokens) parseNamedFunction() *astNamedFunction {
	start := p.start()
	clauses := applyOverSeparatedList(p, idl.TokenTypeSemicolon, p.parseNamedFunctionClause)
	if clauses == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeDot) == nil {
		return nil
	}
	return p.newNamedFunction(p.span(start), clauses)
}

// newNamedFunction is the validating constructor for a function definition:
// every clause must agree on both name and arity or the whole form is a fatal
// parse error.
func (p *parserErlangTokens) newNamedFunction(span idl.Span, clauses []astFunctionClause) *astNamedFunction {
	name := clauses[0].name.Value
	arity := len(clauses[0].params)
	for _, clause := range clauses[1:] {
		if clause.name.Value != name {
			p.reportSpan(exc.CodeClauseMismatch, fmt.Sprintf("clause name %s does not match %s", clause.name.Value, name), clause.name.Span)
			return nil
		}
		if len(clause.params) != arity {
			p.reportSpan(exc.CodeClauseMismatch, fmt.Sprintf("clause of %s has %d parameters, expected %d", name, len(clause.params), arity), clause.span)
			return nil
		}
	}
	return &astNamedFunction{
		astNode: astNode{span},
		name:    name,
		arity:   arity,
		clauses: clauses,
	}
}

func (p *parserErlangTokens) reportSpan(code string, message string, span idl.Span) {
	_ = p.reporter.Report(exc.New(exc.Location{
		URI:  p.uri,
		Span: span,
	}, code, message, exc.Label{Span: span, Message: message}))
}

// FunctionClause = atom "(" [Pattern {"," Pattern}] ")" [Guard] "->" Body
func (p *parserErlangTokens) parseNamedFunctionClause() (astFunctionClause, bool) {
	maybeName := p.expectOne(idl.TokenTypeAtom)
	if maybeName == nil {
		return astFunctionClause{}, false
	}
	return p.parseFunctionClauseRest(maybeName.Span.Start, maybeName)
}

func (p *parserErlangTokens) parseFunctionClauseRest(start idl.Location, name *idl.Token) (astFunctionClause, bool) {
	params := applyOverCommaDelimitedList(p, idl.TokenTypeParenOpen, p.parsePatternOk, idl.TokenTypeParenClose)
	if params == nil {
		return astFunctionClause{}, false
	}

	this := astFunctionClause{
		name:   name,
		params: params,
	}

	if p.peekType(idl.TokenTypeKeywordWhen) {
		p.advance()
		maybeGuard := p.parseGuard()
		if maybeGuard == nil {
			return astFunctionClause{}, false
		}
		this.guard = maybeGuard
	}

	if p.expectOne(idl.TokenTypeArrow) == nil {
		return astFunctionClause{}, false
	}
	body := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseExprOk)
	if body == nil {
		return astFunctionClause{}, false
	}
	this.body = body
	this.span = p.span(start)
	return this, true
}

// Guard = GuardAlternative {";" GuardAlternative}
//
// Alternatives combine with OR semantics; the conditions within one
// alternative combine with AND semantics.
func (p *parserErlangTokens) parseGuard() *astGuard {
	start := p.start()
	alternatives := applyOverSeparatedList(p, idl.TokenTypeSemicolon, p.parseGuardAlternative)
	if alternatives == nil {
		return nil
	}
	return &astGuard{
		astNode:      astNode{p.span(start)},
		alternatives: alternatives,
	}
}

// GuardAlternative = Expr {"," Expr}
func (p *parserErlangTokens) parseGuardAlternative() (astGuardAlternative, bool) {
	start := p.start()
	conditions := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseExprOk)
	if conditions == nil {
		return astGuardAlternative{}, false
	}
	return astGuardAlternative{
		astNode:    astNode{p.span(start)},
		conditions: conditions,
	}, true
}

// Literal = atom | int_lit | float_lit | char_lit | string_lit
//
// Literals are the one production shared verbatim by the expression, pattern,
// and constant grammars.
func (p *parserErlangTokens) parseLiteral() literal {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input (expecting a literal)")
		return nil
	}
	switch maybeToken.Type {
	case idl.TokenTypeAtom:
		p.advance()
		return &astAtom{
			astNode: astNode{maybeToken.Span},
			name:    maybeToken.Value,
		}
	case idl.TokenTypeInteger, idl.TokenTypeIntegerBig, idl.TokenTypeFloat:
		return p.parseNumber()
	case idl.TokenTypeChar:
		p.advance()
		return &astLiteralChar{
			astNode: astNode{maybeToken.Span},
			val:     []rune(maybeToken.Value)[0],
		}
	case idl.TokenTypeString:
		p.advance()
		return &astLiteralString{
			astNode: astNode{maybeToken.Span},
			val:     maybeToken.Value,
		}
	default:
		p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting a literal)", maybeToken.Value))
		return nil
	}
}

func (p *parserErlangTokens) parseNumber() literal {
	maybeToken := p.expectOneOf([]idl.TokenType{idl.TokenTypeInteger, idl.TokenTypeIntegerBig, idl.TokenTypeFloat})
	if maybeToken == nil {
		return nil
	}
	switch maybeToken.Type {
	case idl.TokenTypeInteger:
		val, err := parseIntegerText(maybeToken.Value)
		if err != nil {
			p.reportSpan(exc.CodeInvalidLiteral, fmt.Sprintf("invalid integer literal %s", maybeToken.Value), maybeToken.Span)
			return nil
		}
		return &astLiteralInt{
			astNode: astNode{maybeToken.Span},
			token:   *maybeToken,
			val:     val,
		}
	case idl.TokenTypeIntegerBig:
		val, ok := parseBigIntegerText(maybeToken.Value)
		if !ok {
			p.reportSpan(exc.CodeInvalidLiteral, fmt.Sprintf("invalid integer literal %s", maybeToken.Value), maybeToken.Span)
			return nil
		}
		return &astLiteralBigInt{
			astNode: astNode{maybeToken.Span},
			token:   *maybeToken,
			val:     val,
		}
	default:
		val, err := strconv.ParseFloat(maybeToken.Value, 64)
		if err != nil {
			p.reportSpan(exc.CodeInvalidLiteral, fmt.Sprintf("invalid float literal %s", maybeToken.Value), maybeToken.Span)
			return nil
		}
		return &astLiteralFloat{
			astNode: astNode{maybeToken.Span},
			token:   *maybeToken,
			val:     val,
		}
	}
}

func parseBigIntegerText(text string) (*big.Int, bool) {
	for i := 0; i < len(text); i = i + 1 {
		if text[i] == '#' {
			base, err := strconv.Atoi(text[:i])
			if err != nil {
				return nil, false
			}
			return new(big.Int).SetString(text[i+1:], base)
		}
	}
	return new(big.Int).SetString(text, 10)
}

// Constant = Literal | ("-" | "+") Number | ConstTuple | ConstList | ConstMap
func (p *parserErlangTokens) parseConstant() constant {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input (expecting a constant)")
		return nil
	}
	switch maybeToken.Type {
	case idl.TokenTypeMinus, idl.TokenTypePlus:
		return p.parseSignedNumber()
	case idl.TokenTypeCurlyOpen:
		start := p.start()
		elements := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseConstantOk, idl.TokenTypeCurlyClose)
		if elements == nil {
			return nil
		}
		return &astConstTuple{
			astNode:  astNode{p.span(start)},
			elements: elements,
		}
	case idl.TokenTypeSquareOpen:
		return p.parseConstList()
	case idl.TokenTypeHash:
		return p.parseConstMap()
	default:
		maybeLiteral := p.parseLiteral()
		if maybeLiteral == nil {
			return nil
		}
		return maybeLiteral
	}
}

// signs fold into the literal value so that constant payloads stay flat.
func (p *parserErlangTokens) parseSignedNumber() constant {
	start := p.start()
	maybeOp := p.expectOneOf([]idl.TokenType{idl.TokenTypeMinus, idl.TokenTypePlus})
	if maybeOp == nil {
		return nil
	}
	maybeNumber := p.parseNumber()
	if maybeNumber == nil {
		return nil
	}
	negate := maybeOp.Type == idl.TokenTypeMinus
	switch number := maybeNumber.(type) {
	case *astLiteralInt:
		if negate {
			number.val = -number.val
		}
		number.setSpan(p.span(start))
		return number
	case *astLiteralBigInt:
		if negate {
			number.val = new(big.Int).Neg(number.val)
		}
		number.setSpan(p.span(start))
		return number
	case *astLiteralFloat:
		if negate {
			number.val = -number.val
		}
		number.setSpan(p.span(start))
		return number
	}
	return maybeNumber
}

// ConstList = "[" [Constant {"," Constant} ["|" Constant]] "]"
func (p *parserErlangTokens) parseConstList() constant {
	start := p.start()
	if p.expectOne(idl.TokenTypeSquareOpen) == nil {
		return nil
	}
	if p.peekType(idl.TokenTypeSquareClose) {
		p.advance()
		return &astNil{astNode{p.span(start)}}
	}
	elements := applyOverSeparatedList(p, idl.TokenTypeComma, p.parseConstantOk)
	if elements == nil {
		return nil
	}
	this := astConstList{
		elements: elements,
	}
	if p.peekType(idl.TokenTypePipe) {
		p.advance()
		maybeTail := p.parseConstant()
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

// ConstMap = "#" "{" [ConstMapEntry {"," ConstMapEntry}] "}"
func (p *parserErlangTokens) parseConstMap() constant {
	start := p.start()
	if p.expectOne(idl.TokenTypeHash) == nil {
		return nil
	}
	entries := applyOverCommaDelimitedList(p, idl.TokenTypeCurlyOpen, p.parseConstMapEntry, idl.TokenTypeCurlyClose)
	if entries == nil {
		return nil
	}
	return &astConstMap{
		astNode: astNode{p.span(start)},
		entries: entries,
	}
}

// ConstMapEntry = Constant "=>" Constant
func (p *parserErlangTokens) parseConstMapEntry() (astConstMapEntry, bool) {
	start := p.start()
	maybeKey := p.parseConstant()
	if maybeKey == nil {
		return astConstMapEntry{}, false
	}
	if p.expectOne(idl.TokenTypeFatArrow) == nil {
		return astConstMapEntry{}, false
	}
	maybeValue := p.parseConstant()
	if maybeValue == nil {
		return astConstMapEntry{}, false
	}
	return astConstMapEntry{
		astNode: astNode{p.span(start)},
		key:     maybeKey,
		value:   maybeValue,
	}, true
}
