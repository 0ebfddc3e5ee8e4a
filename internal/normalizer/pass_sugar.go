package normalizer

import "github.com/photostructure/exif-oxide-codegen/internal/ast"

// stringCompareWords catches bareword-tokenized comparison operators (some
// PPI-style tokenizers hand these back as Word rather than Operator) so the
// precedence table in precedence.go always sees them as Operator nodes.
var stringCompareWords = map[string]bool{
	"eq": true, "ne": true, "lt": true, "gt": true, "le": true, "ge": true, "cmp": true,
}

// sugarCleanup implements the token-level half of spec §4.2 pass 6: coerce
// misclassified comparison-word tokens to operators and collapse redundant
// single-child List wrapping before the span reaches the precedence climber.
// The tree-level half (folding constant arithmetic) runs once at the end of
// Normalize, after the whole expression has been climbed into a tree.
func sugarCleanup(tokens []*ast.Node) []*ast.Node {
	out := make([]*ast.Node, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Class == ast.Word && stringCompareWords[tok.Name] {
			out = append(out, &ast.Node{Class: ast.Operator, Op: tok.Name})
			continue
		}
		if tok.Class == ast.List && len(tok.Children) == 1 {
			out = append(out, tok.Children[0])
			continue
		}
		out = append(out, tok)
	}
	return out
}

// foldConstants walks a fully climbed tree bottom-up and reduces binary
// operations between two literal numbers for +, -, *, / (spec §4.2 pass 6
// "fold trivial literal constant arithmetic where safe"). Division by zero
// is left unfolded so the generated code still surfaces the runtime error
// Perl itself would raise.
func foldConstants(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}

	switch n.Class {
	case ast.BinaryOperation:
		n.Lhs = foldConstants(n.Lhs)
		n.Rhs = foldConstants(n.Rhs)
		if n.Lhs != nil && n.Rhs != nil && n.Lhs.Class == ast.Number && n.Rhs.Class == ast.Number {
			if folded, ok := foldArithmetic(n.Op, *n.Lhs.NumericValue, *n.Rhs.NumericValue); ok {
				return ast.Num(folded)
			}
		}
		return n
	case ast.UnaryOperation:
		n.Operand = foldConstants(n.Operand)
		if n.Op == "-" && n.Operand != nil && n.Operand.Class == ast.Number {
			return ast.Num(-*n.Operand.NumericValue)
		}
		return n
	case ast.TernaryOperation:
		n.Cond = foldConstants(n.Cond)
		n.Then = foldConstants(n.Then)
		n.Else = foldConstants(n.Else)
		return n
	case ast.FunctionCall:
		for i, a := range n.Args {
			n.Args[i] = foldConstants(a)
		}
		return n
	case ast.RegexMatch:
		n.Target = foldConstants(n.Target)
		return n
	case ast.List:
		for i, c := range n.Children {
			n.Children[i] = foldConstants(c)
		}
		return n
	default:
		return n
	}
}

func foldArithmetic(op string, lhs, rhs float64) (float64, bool) {
	switch op {
	case "+":
		return lhs + rhs, true
	case "-":
		return lhs - rhs, true
	case "*":
		return lhs * rhs, true
	case "/":
		if rhs == 0 {
			return 0, false
		}
		return lhs / rhs, true
	default:
		return 0, false
	}
}
