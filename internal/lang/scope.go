package lang

// Scope is one region of name visibility. Scopes form a tree mirroring the
// scope-introducing syntax nodes (module, function, block).
type Scope struct {
	parent  *Scope
	owner   *Node
	symbols map[string]*Node
}

func newScope(parent *Scope, owner *Node) *Scope {
	return &Scope{parent: parent, owner: owner, symbols: make(map[string]*Node)}
}

// Parent returns the enclosing scope, or nil for the outermost scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Owner returns the syntax node that introduced the scope.
func (s *Scope) Owner() *Node { return s.owner }

// Declare binds a name to its declaration node in this scope. Redeclaration
// replaces the earlier binding (shadowing within one scope is tolerated; the
// scope assigner reports it as a diagnostic).
func (s *Scope) Declare(name string, decl *Node) {
	s.symbols[name] = decl
}

// Lookup resolves a name through this scope and its ancestors.
func (s *Scope) Lookup(name string) *Node {
	for sc := s; sc != nil; sc = sc.parent {
		if d, ok := sc.symbols[name]; ok {
			return d
		}
	}
	return nil
}

// Visible collects every declaration reachable from this scope, innermost
// binding winning. Used by completion.
func (s *Scope) Visible() map[string]*Node {
	out := make(map[string]*Node)
	var chain []*Scope
	for sc := s; sc != nil; sc = sc.parent {
		chain = append(chain, sc)
	}
	// Outermost first so inner bindings overwrite outer ones.
	for i := len(chain) - 1; i >= 0; i-- {
		for name, decl := range chain[i].symbols {
			out[name] = decl
		}
	}
	return out
}

// scopeAssigner resolves names for one module.
type scopeAssigner struct {
	module *Module
	diags  []Diagnostic
}

// AssignScopes builds the scope tree for a module and resolves every name
// expression and type reference to its declaration, recording the results in
// the module's reference table. The parent parameter is the scope the
// module's top level resolves against (the standard library's module scope,
// or nil for the standard library itself). Unresolved names are diagnostics,
// not failures.
func AssignScopes(m *Module, parent *Scope) ([]Diagnostic, bool) {
	a := &scopeAssigner{module: m}
	for _, root := range m.roots {
		moduleScope := newScope(parent, root)
		m.scopes[root] = moduleScope
		// Functions and types are visible module-wide regardless of order.
		for _, decl := range root.Children {
			if decl.Kind == KindFunctionDecl || decl.Kind == KindTypeDecl {
				a.declare(moduleScope, decl)
			}
		}
		for _, decl := range root.Children {
			a.assign(decl, moduleScope)
		}
	}
	m.diags = append(m.diags, a.diags...)
	return a.diags, hasErrors(a.diags)
}

func (a *scopeAssigner) declare(sc *Scope, decl *Node) {
	if decl.Name == "" {
		return
	}
	if prev := sc.symbols[decl.Name]; prev != nil && prev != decl {
		a.diags = append(a.diags, Diagnostic{
			Container: decl.Container,
			Span:      decl.NameSpan,
			Severity:  SeverityWarning,
			Code:      "scope/redeclared",
			Message:   "redeclaration of " + decl.Name,
		})
	}
	sc.Declare(decl.Name, decl)
}

func (a *scopeAssigner) assign(n *Node, sc *Scope) {
	switch n.Kind {
	case KindFunctionDecl:
		fnScope := newScope(sc, n)
		a.module.scopes[n] = fnScope
		for _, param := range n.Parameters() {
			if tr := param.TypeAnnotation(); tr != nil {
				a.resolveTypeRef(tr, sc)
			}
			a.declare(fnScope, param)
		}
		if ret := n.ResultTypeRef(); ret != nil {
			a.resolveTypeRef(ret, sc)
		}
		if body := n.Body(); body != nil {
			a.assignBlock(body, fnScope)
		}

	case KindLetDecl:
		if tr := n.TypeAnnotation(); tr != nil {
			a.resolveTypeRef(tr, sc)
		}
		if init := n.Initializer(); init != nil {
			a.assign(init, sc)
		}
		// The binding is visible only after its initializer.
		a.declare(sc, n)

	case KindTypeDecl:
		// Declared up front by the enclosing scope pass.

	case KindBlock:
		a.assignBlock(n, sc)

	case KindNameExpr:
		if target := sc.Lookup(n.Name); target != nil {
			a.module.refs[n] = target
		} else {
			a.diags = append(a.diags, errDiag(n.Container, n.NameSpan,
				"scope/undefined", "undefined name "+n.Name))
		}

	case KindTypeRef:
		a.resolveTypeRef(n, sc)

	default:
		for _, c := range n.Children {
			a.assign(c, sc)
		}
	}
}

func (a *scopeAssigner) assignBlock(block *Node, parent *Scope) {
	sc := newScope(parent, block)
	a.module.scopes[block] = sc
	for _, stmt := range block.Children {
		a.assign(stmt, sc)
	}
}

func (a *scopeAssigner) resolveTypeRef(tr *Node, sc *Scope) {
	target := sc.Lookup(tr.Name)
	if target == nil {
		a.diags = append(a.diags, errDiag(tr.Container, tr.NameSpan,
			"scope/undefined-type", "undefined type "+tr.Name))
		return
	}
	if target.Kind != KindTypeDecl {
		a.diags = append(a.diags, errDiag(tr.Container, tr.NameSpan,
			"scope/not-a-type", tr.Name+" is not a type"))
		return
	}
	a.module.refs[tr] = target
}
