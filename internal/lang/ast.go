package lang

// NodeKind tags a syntax node. The set is closed: feature code switches over
// it exhaustively.
type NodeKind int

const (
	KindModule NodeKind = iota
	KindFunctionDecl
	KindParameterDecl
	KindLetDecl
	KindTypeDecl
	KindBlock
	KindIfStmt
	KindWhileStmt
	KindReturnStmt
	KindExprStmt
	KindCallExpr
	KindMemberExpr
	KindBinaryExpr
	KindNameExpr
	KindTypeRef
	KindIntLiteral
	KindStringLiteral
	KindBoolLiteral
	KindBadNode
)

var nodeKindNames = [...]string{
	KindModule:        "Module",
	KindFunctionDecl:  "FunctionDecl",
	KindParameterDecl: "ParameterDecl",
	KindLetDecl:       "LetDecl",
	KindTypeDecl:      "TypeDecl",
	KindBlock:         "Block",
	KindIfStmt:        "IfStmt",
	KindWhileStmt:     "WhileStmt",
	KindReturnStmt:    "ReturnStmt",
	KindExprStmt:      "ExprStmt",
	KindCallExpr:      "CallExpr",
	KindMemberExpr:    "MemberExpr",
	KindBinaryExpr:    "BinaryExpr",
	KindNameExpr:      "NameExpr",
	KindTypeRef:       "TypeRef",
	KindIntLiteral:    "IntLiteral",
	KindStringLiteral: "StringLiteral",
	KindBoolLiteral:   "BoolLiteral",
	KindBadNode:       "BadNode",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// IntroducesScope reports whether nodes of this kind own a scope. The parser
// guarantees that a scope-introducing node's span covers the spans of all of
// its descendants.
func (k NodeKind) IntroducesScope() bool {
	switch k {
	case KindModule, KindFunctionDecl, KindBlock:
		return true
	default:
		return false
	}
}

// IsDeclaration reports whether nodes of this kind define a name.
func (k NodeKind) IsDeclaration() bool {
	switch k {
	case KindFunctionDecl, KindParameterDecl, KindLetDecl, KindTypeDecl:
		return true
	default:
		return false
	}
}

// Node is one syntax-tree node. Node identity is pointer identity; nodes are
// immutable after parsing.
type Node struct {
	Kind      NodeKind
	Span      Span
	Container *SourceContainer
	Parent    *Node
	Children  []*Node

	// Name is set for declarations, name expressions, type references, and
	// member expressions (the member name). NameSpan is the span of that
	// identifier token.
	Name     string
	NameSpan Span

	// Op is the operator text of a binary expression.
	Op string

	// Label is the external argument label of a parameter ("_" = unlabeled).
	Label string
}

func (n *Node) addChild(c *Node) {
	if c == nil {
		return
	}
	c.Parent = n
	n.Children = append(n.Children, c)
}

// Callee returns the callee expression of a call node, or nil.
func (n *Node) Callee() *Node {
	if n.Kind != KindCallExpr || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Arguments returns the argument expressions of a call node.
func (n *Node) Arguments() []*Node {
	if n.Kind != KindCallExpr || len(n.Children) == 0 {
		return nil
	}
	return n.Children[1:]
}

// Parameters returns the parameter declarations of a function node.
func (n *Node) Parameters() []*Node {
	if n.Kind != KindFunctionDecl {
		return nil
	}
	var params []*Node
	for _, c := range n.Children {
		if c.Kind == KindParameterDecl {
			params = append(params, c)
		}
	}
	return params
}

// Body returns the block of a function node, or nil.
func (n *Node) Body() *Node {
	if n.Kind != KindFunctionDecl {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == KindBlock {
			return c
		}
	}
	return nil
}

// ResultTypeRef returns the declared return type reference of a function
// node, or nil when the function returns Unit implicitly.
func (n *Node) ResultTypeRef() *Node {
	if n.Kind != KindFunctionDecl {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == KindTypeRef {
			return c
		}
	}
	return nil
}

// TypeAnnotation returns the declared type reference of a let or parameter
// node, or nil.
func (n *Node) TypeAnnotation() *Node {
	if n.Kind != KindLetDecl && n.Kind != KindParameterDecl {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == KindTypeRef {
			return c
		}
	}
	return nil
}

// Initializer returns the initializer expression of a let node, or nil.
func (n *Node) Initializer() *Node {
	if n.Kind != KindLetDecl {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind != KindTypeRef {
			return c
		}
	}
	return nil
}

// walk visits n and all descendants in pre-order. The callback returns false
// to skip a node's children.
func walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, visit)
	}
}
