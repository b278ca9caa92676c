// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package erlang

// walkModule applies f to every node of the tree, children before parents.
func walkModule(module *astModule, f func(node)) {
	f(&module.name)
	for _, item := range module.items {
		walkTopLevel(item, f)
	}
	f(module)
}

func walkTopLevel(item topLevel, f func(node)) {
	switch v := item.(type) {
	case *astNamedFunction:
		for i := range v.clauses {
			walkFunctionClause(&v.clauses[i], f)
		}
	case *astRecordDecl:
		for i := range v.fields {
			field := &v.fields[i]
			if field.def != nil {
				walkExpression(field.def, f)
			}
			if field.typ != nil {
				walkType(field.typ, f)
			}
			f(field)
		}
	case *astAttributeVsn:
		walkConstant(v.value, f)
	case *astAttributeCompile:
		walkConstant(v.value, f)
	case *astAttributeCustom:
		walkConstant(v.value, f)
	case *astAttributeExport:
		for i := range v.funs {
			f(&v.funs[i])
		}
	case *astAttributeExportType:
		for i := range v.types {
			f(&v.types[i])
		}
	case *astAttributeImport:
		for i := range v.funs {
			f(&v.funs[i])
		}
	case *astAttributeDeprecated:
		for i := range v.deprecations {
			f(&v.deprecations[i])
		}
	case *astTypeDef:
		for i := range v.params {
			f(&v.params[i])
		}
		walkType(v.body, f)
	case *astTypeSpec:
		walkTypeSigs(v.sigs, f)
	case *astAttributeCallback:
		walkTypeSigs(v.spec.sigs, f)
		f(&v.spec)
	}
	f(item)
}

func walkTypeSigs(sigs []astTypeSig, f func(node)) {
	for i := range sigs {
		sig := &sigs[i]
		for _, param := range sig.params {
			walkType(param, f)
		}
		walkType(sig.result, f)
		for j := range sig.guards {
			walkType(sig.guards[j].typ, f)
			f(&sig.guards[j])
		}
		f(sig)
	}
}

func walkFunctionClause(clause *astFunctionClause, f func(node)) {
	for _, param := range clause.params {
		walkPattern(param, f)
	}
	if clause.guard != nil {
		walkGuard(clause.guard, f)
	}
	for _, e := range clause.body {
		walkExpression(e, f)
	}
	f(clause)
}

func walkGuard(guard *astGuard, f func(node)) {
	for i := range guard.alternatives {
		for _, condition := range guard.alternatives[i].conditions {
			walkExpression(condition, f)
		}
		f(&guard.alternatives[i])
	}
	f(guard)
}

func walkClause(clause *astClause, f func(node)) {
	walkPattern(clause.match, f)
	if clause.guard != nil {
		walkGuard(clause.guard, f)
	}
	for _, e := range clause.body {
		walkExpression(e, f)
	}
	f(clause)
}

func walkExpression(e expression, f func(node)) {
	switch v := e.(type) {
	case *astTuple:
		for _, element := range v.elements {
			walkExpression(element, f)
		}
	case *astList:
		for _, element := range v.elements {
			walkExpression(element, f)
		}
		if v.tail != nil {
			walkExpression(v.tail, f)
		}
	case *astBinary:
		for i := range v.elements {
			walkBinaryElement(&v.elements[i], f)
		}
	case *astListComprehension:
		walkExpression(v.body, f)
		walkQualifiers(v.qualifiers, f)
	case *astBinaryComprehension:
		walkExpression(v.body, f)
		walkQualifiers(v.qualifiers, f)
	case *astMap:
		walkMapEntries(v.entries, f)
	case *astMapUpdate:
		walkExpression(v.subject, f)
		walkMapEntries(v.entries, f)
	case *astRecord:
		walkRecordFields(v.fields, f)
	case *astRecordUpdate:
		walkExpression(v.subject, f)
		walkRecordFields(v.fields, f)
	case *astRecordAccess:
		walkExpression(v.subject, f)
	case *astMatch:
		walkExpression(v.left, f)
		walkExpression(v.right, f)
	case *astSend:
		walkExpression(v.left, f)
		walkExpression(v.right, f)
	case *astBinOp:
		walkExpression(v.left, f)
		walkExpression(v.right, f)
	case *astUnaryOp:
		walkExpression(v.operand, f)
	case *astRemote:
		walkExpression(v.module, f)
		walkExpression(v.function, f)
	case *astCall:
		walkExpression(v.callee, f)
		for _, arg := range v.args {
			walkExpression(arg, f)
		}
	case *astBlock:
		for _, e := range v.body {
			walkExpression(e, f)
		}
	case *astCatch:
		walkExpression(v.operand, f)
	case *astIf:
		for i := range v.clauses {
			clause := &v.clauses[i]
			walkGuard(&clause.guard, f)
			for _, e := range clause.body {
				walkExpression(e, f)
			}
			f(clause)
		}
	case *astCase:
		walkExpression(v.scrutinee, f)
		for i := range v.clauses {
			walkClause(&v.clauses[i], f)
		}
	case *astReceive:
		for i := range v.clauses {
			walkClause(&v.clauses[i], f)
		}
		if v.after != nil {
			walkExpression(v.after.timeout, f)
			for _, e := range v.after.body {
				walkExpression(e, f)
			}
			f(v.after)
		}
	case *astTry:
		for _, e := range v.exprs {
			walkExpression(e, f)
		}
		for i := range v.ofClauses {
			walkClause(&v.ofClauses[i], f)
		}
		for i := range v.catchClauses {
			walkCatchClause(&v.catchClauses[i], f)
		}
		for _, e := range v.afterBody {
			walkExpression(e, f)
		}
	case *astFun:
		for i := range v.clauses {
			walkFunctionClause(&v.clauses[i], f)
		}
	}
	f(e)
}

func walkCatchClause(clause *astCatchClause, f func(node)) {
	if clause.class != nil {
		walkExpression(clause.class, f)
	}
	walkPattern(clause.match, f)
	if clause.guard != nil {
		walkGuard(clause.guard, f)
	}
	for _, e := range clause.body {
		walkExpression(e, f)
	}
	f(clause)
}

func walkQualifiers(qualifiers []qualifier, f func(node)) {
	for _, q := range qualifiers {
		switch v := q.(type) {
		case *astListGenerator:
			walkPattern(v.match, f)
			walkExpression(v.source, f)
		case *astBinaryGenerator:
			walkPattern(v.match, f)
			walkExpression(v.source, f)
		case *astFilter:
			walkExpression(v.condition, f)
		}
		f(q)
	}
}

func walkBinaryElement(element *astBinaryElement, f func(node)) {
	walkExpression(element.value, f)
	if element.size != nil {
		walkExpression(element.size, f)
	}
	for i := range element.specifiers {
		f(&element.specifiers[i])
	}
	f(element)
}

func walkMapEntries(entries []astMapEntry, f func(node)) {
	for i := range entries {
		walkExpression(entries[i].key, f)
		walkExpression(entries[i].value, f)
		f(&entries[i])
	}
}

func walkRecordFields(fields []astRecordField, f func(node)) {
	for i := range fields {
		walkExpression(fields[i].value, f)
		f(&fields[i])
	}
}

func walkPattern(pat pattern, f func(node)) {
	switch v := pat.(type) {
	case *astTuplePattern:
		for _, element := range v.elements {
			walkPattern(element, f)
		}
	case *astListPattern:
		for _, element := range v.elements {
			walkPattern(element, f)
		}
		if v.tail != nil {
			walkPattern(v.tail, f)
		}
	case *astBinaryPattern:
		for i := range v.elements {
			element := &v.elements[i]
			walkPattern(element.value, f)
			if element.size != nil {
				walkExpression(element.size, f)
			}
			for j := range element.specifiers {
				f(&element.specifiers[j])
			}
			f(element)
		}
	case *astMapPattern:
		for i := range v.entries {
			walkPattern(v.entries[i].key, f)
			walkPattern(v.entries[i].value, f)
			f(&v.entries[i])
		}
	case *astRecordPattern:
		for i := range v.fields {
			walkPattern(v.fields[i].value, f)
			f(&v.fields[i])
		}
	case *astMatchPattern:
		walkPattern(v.left, f)
		walkPattern(v.right, f)
	case *astBinOpPattern:
		walkPattern(v.left, f)
		walkPattern(v.right, f)
	case *astUnaryOpPattern:
		walkPattern(v.operand, f)
	}
	f(pat)
}

func walkType(t typeExpr, f func(node)) {
	switch v := t.(type) {
	case *astTypeUnion:
		for _, alternative := range v.alternatives {
			walkType(alternative, f)
		}
	case *astTypeRange:
		walkType(v.low, f)
		walkType(v.high, f)
	case *astTypeBinOp:
		walkType(v.left, f)
		walkType(v.right, f)
	case *astTypeUnaryOp:
		walkType(v.operand, f)
	case *astTypeCall:
		for _, arg := range v.args {
			walkType(arg, f)
		}
	case *astTypeRemote:
		for _, arg := range v.args {
			walkType(arg, f)
		}
	case *astTypeList:
		if v.element != nil {
			walkType(v.element, f)
		}
	case *astTypeTuple:
		for _, element := range v.elements {
			walkType(element, f)
		}
	case *astTypeMap:
		for i := range v.entries {
			walkType(v.entries[i].key, f)
			walkType(v.entries[i].value, f)
			f(&v.entries[i])
		}
	case *astTypeRecord:
		for i := range v.fields {
			walkType(v.fields[i].typ, f)
			f(&v.fields[i])
		}
	case *astTypeBinary:
		if v.size != nil {
			walkType(v.size, f)
		}
		if v.unit != nil {
			walkType(v.unit, f)
		}
	case *astTypeFun:
		for _, param := range v.params {
			walkType(param, f)
		}
		if v.result != nil {
			walkType(v.result, f)
		}
	case *astTypeBinder:
		f(&v.name)
		walkType(v.typ, f)
	}
	f(t)
}

func walkConstant(c constant, f func(node)) {
	switch v := c.(type) {
	case *astConstTuple:
		for _, element := range v.elements {
			walkConstant(element, f)
		}
	case *astConstList:
		for _, element := range v.elements {
			walkConstant(element, f)
		}
		if v.tail != nil {
			walkConstant(v.tail, f)
		}
	case *astConstMap:
		for i := range v.entries {
			walkConstant(v.entries[i].key, f)
			walkConstant(v.entries[i].value, f)
			f(&v.entries[i])
		}
	}
	f(c)
}
