// Package normalizer turns the PPI bridge's flat, shallow token trees into
// the canonical compound AST (BinaryOperation, FunctionCall, TernaryOperation,
// SelfFieldAccess, ValueReference, RegexMatch, Unrecognized) described in
// spec §3, by running the six fixed passes of spec §4.2 bottom-up over every
// nested List before its enclosing expression is reduced.
package normalizer

import (
	"fmt"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/cgerrors"
)

// maxExpressionTokens is the length guard from spec §4.2: expressions with
// more raw tokens than this are rejected as TooComplex rather than risking a
// pathological parse. ExifTool's hand-written Perl conditions and
// conversions are short by construction; anything past this is almost always
// a sign the PPI bridge mis-tokenized something, not a legitimately large
// expression.
const maxExpressionTokens = 500

// Normalize runs the full six-pass pipeline over one expression's flat token
// list and returns the single canonical root node. tokens is the Children of
// a Statement node produced by the PPI bridge (one Perl expression, not a
// multi-statement block — multi-statement Perl control flow is out of scope,
// spec §1 Non-goals).
func Normalize(module, symbol string, tokens []*ast.Node) (*ast.Node, error) {
	if len(tokens) > maxExpressionTokens {
		return nil, cgerrors.New(cgerrors.UnparseableExpression, module, symbol,
			fmt.Sprintf("expression has %d tokens, exceeds length guard of %d (TooComplex)", len(tokens), maxExpressionTokens), nil)
	}

	root := bottomUpRewrite(&ast.Node{Class: ast.Statement, Children: tokens}, reduceLevel)

	switch len(root.Children) {
	case 0:
		return nil, cgerrors.New(cgerrors.UnparseableExpression, module, symbol, "expression reduced to nothing", nil)
	case 1:
		return foldConstants(root.Children[0]), nil
	default:
		// Multiple unconnected top-level items with no enclosing comma
		// context: surface the whole span rather than guessing which one
		// the caller meant (spec §4.2 "No loss").
		return unrecognizedFrom(root.Children), nil
	}
}

// reduceLevel is the rewriteChildren function bottomUpRewrite applies at
// every container level (List, Statement, Document), running passes 1-3 and
// the token-level half of pass 6 before splitting on top-level commas and
// climbing each resulting span (passes 4-5, plus the recursive per-segment
// application of 1-3 already folded into splitOnTopLevelCommas/reduceSegment).
func reduceLevel(tokens []*ast.Node) []*ast.Node {
	tokens = recognizeFunctionCalls(tokens)
	tokens = recognizeSelfFieldAccess(tokens)
	tokens = recognizeRegexBind(tokens)
	tokens = sugarCleanup(tokens)
	return splitOnTopLevelCommas(tokens)
}
