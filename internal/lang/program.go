package lang

// Module is a named collection of source containers with the analysis tables
// produced for them. A module is mutable while it is being built and treated
// as immutable once scope and type assignment have run.
type Module struct {
	Name string

	program    *Program
	containers []*SourceContainer
	roots      []*Node // parse tree root per container, parallel to containers

	scopes map[*Node]*Scope
	refs   map[*Node]*Node
	types  map[*Node]Type
	diags  []Diagnostic
}

// AddSource parses text into the module as a new source container and
// returns the container together with the parse diagnostics. Parsing never
// fails; malformed input yields a partial tree.
func (m *Module) AddSource(url, text string) (*SourceContainer, []Diagnostic) {
	c := NewSourceContainer(url, text)
	root, diags := Parse(c)
	m.containers = append(m.containers, c)
	m.roots = append(m.roots, root)
	m.diags = append(m.diags, diags...)
	return c, diags
}

// Containers returns the module's source containers.
func (m *Module) Containers() []*SourceContainer { return m.containers }

// Diagnostics returns every diagnostic collected for the module so far.
func (m *Module) Diagnostics() []Diagnostic { return m.diags }

// container returns c if the module owns it, nil otherwise.
func (m *Module) container(c *SourceContainer) *SourceContainer {
	for _, own := range m.containers {
		if own == c {
			return own
		}
	}
	return nil
}

// Scope returns the module's top-level scope, or nil before scope
// assignment. A module with several containers shares one visibility space;
// the first root's scope is the canonical entry point.
func (m *Module) Scope() *Scope {
	for _, root := range m.roots {
		if sc := m.scopes[root]; sc != nil {
			return sc
		}
	}
	return nil
}

// Program is the compiled representation of one or more modules. A freshly
// constructed Program with no sources is the degenerate program: every
// lookup on it returns nothing, and nothing panics.
type Program struct {
	modules []*Module
	byName  map[string]*Module
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{byName: make(map[string]*Module)}
}

// Module returns the named module, creating it on first use.
func (p *Program) Module(name string) *Module {
	if m, ok := p.byName[name]; ok {
		return m
	}
	m := &Module{
		Name:    name,
		program: p,
		scopes:  make(map[*Node]*Scope),
		refs:    make(map[*Node]*Node),
		types:   make(map[*Node]Type),
	}
	p.modules = append(p.modules, m)
	p.byName[name] = m
	return m
}

// Modules returns the program's modules in creation order.
func (p *Program) Modules() []*Module { return p.modules }

// Extend derives a new program that shares this program's modules. The
// shared modules must already be fully analyzed; modules added to the
// derived program see them but never mutate them.
func (p *Program) Extend() *Program {
	ext := NewProgram()
	ext.modules = append(ext.modules, p.modules...)
	for name, m := range p.byName {
		ext.byName[name] = m
	}
	return ext
}

// ContainerFor returns the source container whose backing file matches the
// URL, or nil.
func (p *Program) ContainerFor(url string) *SourceContainer {
	for _, m := range p.modules {
		for _, c := range m.containers {
			if c.URL == url {
				return c
			}
		}
	}
	return nil
}

// RootFor returns the parse tree root of a container, or nil.
func (p *Program) RootFor(c *SourceContainer) *Node {
	m := p.moduleOf(c)
	if m == nil {
		return nil
	}
	for i, own := range m.containers {
		if own == c {
			return m.roots[i]
		}
	}
	return nil
}

func (p *Program) moduleOf(c *SourceContainer) *Module {
	if c == nil {
		return nil
	}
	for _, m := range p.modules {
		if m.container(c) != nil {
			return m
		}
	}
	return nil
}

// NodesOfKind selects every node of the given kinds across all modules, in
// stable pre-order traversal order.
func (p *Program) NodesOfKind(kinds ...NodeKind) []*Node {
	want := make(map[NodeKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []*Node
	for _, m := range p.modules {
		for _, root := range m.roots {
			walk(root, func(n *Node) bool {
				if want[n.Kind] {
					out = append(out, n)
				}
				return true
			})
		}
	}
	return out
}

// RefTarget returns the declaration a name expression or type reference
// resolves to, or nil for unresolved or non-name nodes.
func (p *Program) RefTarget(n *Node) *Node {
	m := p.moduleOf(n.Container)
	if m == nil {
		return nil
	}
	return m.refs[n]
}

// TypeOf returns the type assigned to a node, or nil.
func (p *Program) TypeOf(n *Node) Type {
	m := p.moduleOf(n.Container)
	if m == nil {
		return nil
	}
	return m.types[n]
}

// ScopeOf returns the innermost scope enclosing a node: the node's own scope
// if it introduces one, otherwise the nearest scope-introducing ancestor's.
func (p *Program) ScopeOf(n *Node) *Scope {
	m := p.moduleOf(n.Container)
	if m == nil {
		return nil
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if sc := m.scopes[cur]; sc != nil {
			return sc
		}
	}
	return nil
}

// Diagnostics returns the diagnostics of every module in the program.
func (p *Program) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for _, m := range p.modules {
		out = append(out, m.diags...)
	}
	return out
}
