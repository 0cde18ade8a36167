package lang

import "strings"

// Type is the semantic type assigned to expressions and declarations.
type Type interface {
	String() string
}

// NamedType is a nominal type introduced by a type declaration.
type NamedType struct {
	Name string
	Decl *Node
}

func (t *NamedType) String() string { return t.Name }

// FuncType is the signature type of a function declaration.
type FuncType struct {
	Params []Type
	Result Type
}

func (t *FuncType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = typeString(p)
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + typeString(t.Result)
}

func typeString(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// sameType reports nominal equality. Unknown (nil) types compare equal to
// anything so that earlier diagnostics do not cascade.
func sameType(a, b Type) bool {
	if a == nil || b == nil {
		return true
	}
	an, aok := a.(*NamedType)
	bn, bok := b.(*NamedType)
	if aok && bok {
		return an.Name == bn.Name
	}
	return a == b
}

// typeAssigner computes expression and declaration types for one module.
type typeAssigner struct {
	module *Module
	diags  []Diagnostic

	// Builtin nominal types resolved through the module's scope chain.
	intType    Type
	boolType   Type
	stringType Type
	unitType   Type

	// Innermost function whose body is being checked.
	currentFn *Node
}

// AssignTypes runs type assignment over a module whose scopes have already
// been assigned. Type errors are diagnostics; every expression still gets a
// best-effort type (or none), and checking continues past failures.
func AssignTypes(m *Module) ([]Diagnostic, bool) {
	a := &typeAssigner{module: m}
	for _, root := range m.roots {
		sc := m.scopes[root]
		if sc == nil {
			continue
		}
		a.intType = a.namedType(sc, "Int")
		a.boolType = a.namedType(sc, "Bool")
		a.stringType = a.namedType(sc, "String")
		a.unitType = a.namedType(sc, "Unit")
		for _, decl := range root.Children {
			a.check(decl)
		}
	}
	m.diags = append(m.diags, a.diags...)
	return a.diags, hasErrors(a.diags)
}

func (a *typeAssigner) namedType(sc *Scope, name string) Type {
	if decl := sc.Lookup(name); decl != nil && decl.Kind == KindTypeDecl {
		return a.declType(decl)
	}
	return nil
}

func (a *typeAssigner) errf(n *Node, code, msg string) {
	span := n.Span
	if n.NameSpan.End > n.NameSpan.Start {
		span = n.NameSpan
	}
	a.diags = append(a.diags, errDiag(n.Container, span, code, msg))
}

// declType returns (computing and memoizing if needed) the type of a
// declaration node.
func (a *typeAssigner) declType(decl *Node) Type {
	if t, ok := a.module.types[decl]; ok {
		return t
	}
	// Cross-module targets carry their type in their own module's table.
	if owner := decl.Container; owner != nil && a.module.container(owner) == nil {
		return nil
	}
	var t Type
	switch decl.Kind {
	case KindTypeDecl:
		t = &NamedType{Name: decl.Name, Decl: decl}
	case KindParameterDecl:
		t = a.refType(decl.TypeAnnotation())
	case KindFunctionDecl:
		params := decl.Parameters()
		ft := &FuncType{Params: make([]Type, len(params))}
		for i, p := range params {
			ft.Params[i] = a.refType(p.TypeAnnotation())
		}
		if ret := decl.ResultTypeRef(); ret != nil {
			ft.Result = a.refType(ret)
		} else {
			ft.Result = a.unitType
		}
		t = ft
	case KindLetDecl:
		// Handled in order by check; fall through to nil if queried early.
	}
	if t != nil {
		a.module.types[decl] = t
	}
	return t
}

// refType resolves a type reference node to the nominal type it names.
func (a *typeAssigner) refType(tr *Node) Type {
	if tr == nil {
		return nil
	}
	target := a.module.refs[tr]
	if target == nil {
		return nil
	}
	t := &NamedType{Name: target.Name, Decl: target}
	a.module.types[tr] = t
	return t
}

func (a *typeAssigner) check(n *Node) Type {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindFunctionDecl:
		a.declType(n)
		prev := a.currentFn
		a.currentFn = n
		if body := n.Body(); body != nil {
			a.check(body)
		}
		a.currentFn = prev
		return nil

	case KindTypeDecl:
		a.declType(n)
		return nil

	case KindLetDecl:
		declared := a.refType(n.TypeAnnotation())
		var inferred Type
		if init := n.Initializer(); init != nil {
			inferred = a.check(init)
		}
		t := declared
		if t == nil {
			t = inferred
		} else if !sameType(declared, inferred) {
			a.errf(n, "type/let-mismatch",
				"cannot initialize "+typeString(declared)+" binding with "+typeString(inferred))
		}
		a.module.types[n] = t
		return nil

	case KindBlock:
		for _, stmt := range n.Children {
			a.check(stmt)
		}
		return nil

	case KindIfStmt, KindWhileStmt:
		if len(n.Children) > 0 {
			cond := a.check(n.Children[0])
			if !sameType(cond, a.boolType) {
				a.errf(n.Children[0], "type/condition", "condition must be Bool, got "+typeString(cond))
			}
		}
		for _, c := range n.Children[1:] {
			a.check(c)
		}
		return nil

	case KindReturnStmt:
		var got Type = a.unitType
		if len(n.Children) > 0 {
			got = a.check(n.Children[0])
		}
		if a.currentFn != nil {
			if ft, ok := a.declType(a.currentFn).(*FuncType); ok && !sameType(got, ft.Result) {
				a.errf(n, "type/return",
					"cannot return "+typeString(got)+" from function returning "+typeString(ft.Result))
			}
		}
		return nil

	case KindExprStmt:
		for _, c := range n.Children {
			a.check(c)
		}
		return nil

	case KindCallExpr:
		callee := n.Callee()
		calleeType := a.check(callee)
		args := n.Arguments()
		argTypes := make([]Type, len(args))
		for i, arg := range args {
			argTypes[i] = a.check(arg)
		}
		ft, ok := calleeType.(*FuncType)
		if !ok {
			if calleeType != nil {
				a.errf(n, "type/not-callable", typeString(calleeType)+" is not callable")
			}
			return nil
		}
		if len(args) != len(ft.Params) {
			a.errf(n, "type/arity", "wrong number of arguments")
		}
		for i := 0; i < len(args) && i < len(ft.Params); i++ {
			if !sameType(argTypes[i], ft.Params[i]) {
				a.errf(args[i], "type/argument",
					"cannot pass "+typeString(argTypes[i])+" as "+typeString(ft.Params[i]))
			}
		}
		t := ft.Result
		a.module.types[n] = t
		return t

	case KindMemberExpr:
		base := a.check(n.Children[0])
		if base != nil {
			a.errf(n, "type/no-member", typeString(base)+" has no member "+n.Name)
		}
		return nil

	case KindBinaryExpr:
		if len(n.Children) < 2 {
			if len(n.Children) == 1 {
				a.check(n.Children[0])
			}
			return nil
		}
		left := a.check(n.Children[0])
		right := a.check(n.Children[1])
		var result Type
		switch n.Op {
		case "+", "-", "*", "/":
			if !sameType(left, a.intType) || !sameType(right, a.intType) {
				a.errf(n, "type/operand", "operator "+n.Op+" requires Int operands")
			}
			result = a.intType
		case "<", ">":
			if !sameType(left, a.intType) || !sameType(right, a.intType) {
				a.errf(n, "type/operand", "operator "+n.Op+" requires Int operands")
			}
			result = a.boolType
		case "==", "!=":
			if !sameType(left, right) {
				a.errf(n, "type/operand",
					"cannot compare "+typeString(left)+" with "+typeString(right))
			}
			result = a.boolType
		}
		a.module.types[n] = result
		return result

	case KindNameExpr:
		target := a.module.refs[n]
		if target == nil {
			return nil
		}
		if target.Kind == KindTypeDecl {
			a.errf(n, "type/type-as-value", target.Name+" is a type, not a value")
			return nil
		}
		t := a.targetType(target)
		a.module.types[n] = t
		return t

	case KindIntLiteral:
		a.module.types[n] = a.intType
		return a.intType
	case KindStringLiteral:
		a.module.types[n] = a.stringType
		return a.stringType
	case KindBoolLiteral:
		a.module.types[n] = a.boolType
		return a.boolType
	}
	return nil
}

// targetType resolves the type of a referenced declaration, looking in the
// declaration's own module when the reference crosses modules.
func (a *typeAssigner) targetType(decl *Node) Type {
	if t, ok := a.module.types[decl]; ok {
		return t
	}
	if a.module.container(decl.Container) != nil {
		return a.declType(decl)
	}
	// Cross-module: the standard library module was analyzed first; its
	// table holds the type.
	if a.module.program != nil {
		if owner := a.module.program.moduleOf(decl.Container); owner != nil {
			if t, ok := owner.types[decl]; ok {
				return t
			}
		}
	}
	return nil
}
