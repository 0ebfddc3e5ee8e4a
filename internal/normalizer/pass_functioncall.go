package normalizer

import (
	"strings"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
)

// recognizeFunctionCalls implements spec §4.2 pass 1: "a Word followed by a
// List structure becomes a FunctionCall; a Word from a known function set
// ... followed by an argument expression becomes a FunctionCall even
// without parentheses."
//
// Because bottomUpRewrite has already reduced every nested List's own
// contents before this runs on the enclosing level, a parenthesized call's
// List child is already a flat, fully-formed argument list by the time we
// see it here.
func recognizeFunctionCalls(tokens []*ast.Node) []*ast.Node {
	var out []*ast.Node
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		// Sigil-prefixed words ($self, $val, ...) are variable accesses, not
		// callable barewords — $self{Name} must reach recognizeSelfFieldAccess
		// (pass 2) untouched rather than being mistaken for a call here.
		if tok.Class == ast.Word && !strings.HasPrefix(tok.Name, "$") {
			// Word immediately followed by a parenthesized List: explicit call.
			if i+1 < len(tokens) && tokens[i+1].Class == ast.List {
				args := splitOnTopLevelCommas(tokens[i+1].Children)
				out = append(out, &ast.Node{Class: ast.FunctionCall, Name: tok.Name, Args: args})
				i++
				continue
			}
			// Known bareword function with no parens: swallow the rest of
			// this flat list as its argument expression (Perl's named list
			// operators extend as far right as syntax allows). Recognize any
			// nested bareword/paren calls within that remainder FIRST, so a
			// nested list operator (e.g. "unpack" inside "join ..., unpack
			// ..., $val") claims its own comma-separated args before we split
			// on whatever top-level commas are left over for our own.
			if knownFunctions[tok.Name] && i+1 < len(tokens) {
				rest := tokens[i+1:]
				rest = recognizeFunctionCalls(rest)
				rest = recognizeSelfFieldAccess(rest)
				rest = recognizeRegexBind(rest)
				rest = sugarCleanup(rest)
				args := splitOnTopLevelCommas(rest)
				out = append(out, &ast.Node{Class: ast.FunctionCall, Name: tok.Name, Args: args})
				return out // rest of the list has been consumed
			}
		}
		out = append(out, tok)
	}
	return out
}

// splitOnTopLevelCommas splits a flat token span on comma operators and
// recursively recognizes function calls within each segment, then reduces
// each segment down to a single node via precedence climbing so an argument
// like "unpack "H2H2", $val" becomes one FunctionCall node rather than a
// raw token run.
func splitOnTopLevelCommas(tokens []*ast.Node) []*ast.Node {
	var segments [][]*ast.Node
	var cur []*ast.Node
	for _, tok := range tokens {
		if tok.Class == ast.Operator && tok.Op == "," {
			segments = append(segments, cur)
			cur = nil
			continue
		}
		cur = append(cur, tok)
	}
	segments = append(segments, cur)

	args := make([]*ast.Node, 0, len(segments))
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		args = append(args, reduceSegment(seg))
	}
	return args
}

// reduceSegment runs the remaining pass pipeline (self-field access, regex
// binding, precedence climbing, sugar cleanup) over one argument segment so
// splitOnTopLevelCommas yields single expression nodes, not token runs.
func reduceSegment(tokens []*ast.Node) *ast.Node {
	tokens = recognizeFunctionCalls(tokens)
	tokens = recognizeSelfFieldAccess(tokens)
	tokens = recognizeRegexBind(tokens)
	tokens = sugarCleanup(tokens)
	return climb(tokens)
}
