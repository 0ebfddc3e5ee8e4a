package normalizer

import "github.com/photostructure/exif-oxide-codegen/internal/ast"

// containerClasses are the node kinds whose Children field holds a flat
// token list that a pass's rewrite function operates on. List nodes are the
// PPI bridge's representation of a parenthesized/braced/bracketed group —
// rewriting them bottom-up before their enclosing list is normalized is
// what lets "join " ", unpack "H2H2", $val" resolve its nested unpack(...)
// call before join's own argument list is built (spec §4.2, Testable
// Property 8 scenario 4).
func isContainer(n *ast.Node) bool {
	switch n.Class {
	case ast.Document, ast.Statement, ast.List:
		return true
	default:
		return false
	}
}

// rewriteChildren is the shape of reduceLevel and of each pass it runs: given a
// flat token list (with any nested List children already transformed),
// return a rewritten flat token list.
type rewriteChildren func([]*ast.Node) []*ast.Node

// bottomUpRewrite recursively transforms every container node's Children
// depth-first (innermost groups first), then applies fn to each level. This
// realizes "each pass takes a tree and returns a tree" (spec §4.2) while
// keeping every pass's own logic expressed as an operation on a flat list.
func bottomUpRewrite(n *ast.Node, fn rewriteChildren) *ast.Node {
	if n == nil {
		return nil
	}
	out := n.Clone()
	if isContainer(out) {
		for i, c := range out.Children {
			out.Children[i] = bottomUpRewrite(c, fn)
		}
		out.Children = fn(out.Children)
	}
	return out
}
