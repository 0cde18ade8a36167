package analysis

import "github.com/mica-lang/micals/internal/lang"

// FindNode returns the most specific syntax node whose span contains the
// byte offset, or nil when no node in the container covers it (offset past
// end of file, or file unknown to the program).
//
// The search is a depth-first pre-order traversal keeping the deepest match:
// sibling spans never overlap, so only an ancestor/descendant pair can both
// contain a point, and the descendant is always the more useful answer.
// Node spans are not guaranteed to strictly nest in every case, so children
// are still visited after a match. Scope-introducing nodes whose span misses
// the offset are pruned: the parser guarantees a scope's span covers all of
// its descendants.
func FindNode(prog *lang.Program, c *lang.SourceContainer, offset int) *lang.Node {
	root := prog.RootFor(c)
	if root == nil {
		return nil
	}

	var (
		deepest      *lang.Node
		deepestDepth = -1
	)
	var visit func(n *lang.Node, depth int)
	visit = func(n *lang.Node, depth int) {
		if n.Span.Contains(offset) {
			if depth > deepestDepth {
				deepest, deepestDepth = n, depth
			}
		} else if n.Kind.IntroducesScope() {
			return
		}
		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}
	visit(root, 0)
	return deepest
}

// FindNodeAt resolves a protocol position and finds the node at it in one
// step.
func FindNodeAt(prog *lang.Program, c *lang.SourceContainer, pos LineCol) *lang.Node {
	offset, ok := OffsetForPosition(c, pos)
	if !ok {
		return nil
	}
	return FindNode(prog, c, offset)
}

// ResolveDefinition returns the declaration a node denotes, or nil when the
// node does not name anything ("nothing to jump to", not an error).
//
// A call expression resolves through its callee so that go-to-definition on
// a call jumps to the called function. Name expressions and type references
// resolve directly through the program's reference table.
func ResolveDefinition(prog *lang.Program, node *lang.Node) *lang.Node {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case lang.KindCallExpr:
		callee := node.Callee()
		if callee != nil && callee.Kind == lang.KindNameExpr {
			return prog.RefTarget(callee)
		}
		return nil
	case lang.KindNameExpr, lang.KindTypeRef:
		return prog.RefTarget(node)
	default:
		return nil
	}
}

// ResolveSymbolAt combines node and declaration resolution for a cursor
// position: a cursor on a declaration's own identifier resolves to that
// declaration, anything else goes through ResolveDefinition.
func ResolveSymbolAt(prog *lang.Program, c *lang.SourceContainer, pos LineCol) *lang.Node {
	offset, ok := OffsetForPosition(c, pos)
	if !ok {
		return nil
	}
	node := FindNode(prog, c, offset)
	if node == nil {
		return nil
	}
	if node.Kind.IsDeclaration() && node.NameSpan.Contains(offset) {
		return node
	}
	return ResolveDefinition(prog, node)
}
