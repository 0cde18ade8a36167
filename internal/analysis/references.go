package analysis

import (
	"sort"

	"github.com/mica-lang/micals/internal/lang"
)

// Reference is one place a declaration is named.
type Reference struct {
	Container *lang.SourceContainer
	Span      lang.Span
}

// FindReferences enumerates every name expression and type reference in the
// program whose resolved target is the given declaration, projected to the
// name token's span. The declaration's own defining identifier is not
// included; callers that want it (rename does) append it explicitly. Order
// follows the program's traversal order; use SortReferences for
// deterministic output.
func FindReferences(prog *lang.Program, decl *lang.Node) []Reference {
	if decl == nil {
		return nil
	}
	var refs []Reference
	for _, n := range prog.NodesOfKind(lang.KindNameExpr, lang.KindTypeRef) {
		if prog.RefTarget(n) == decl {
			refs = append(refs, Reference{Container: n.Container, Span: n.NameSpan})
		}
	}
	return refs
}

// SortReferences orders references by (file, start offset).
func SortReferences(refs []Reference) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Container.URL != refs[j].Container.URL {
			return refs[i].Container.URL < refs[j].Container.URL
		}
		return refs[i].Span.Start < refs[j].Span.Start
	})
}
