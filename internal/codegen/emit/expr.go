// Package emit translates the canonical AST (internal/ast) into generated
// Go source using jennifer, consulting the conversion registry for every
// operator, function call, and control form it knows how to translate
// natively (spec §4.5).
package emit

import (
	"fmt"
	"hash/fnv"

	"github.com/dave/jennifer/jen"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

// ManualFallback is returned by Expr when a node has no native translation
// and must be demoted to a generated call into a hand-written manual
// function instead (spec §7 "UnparseableExpression ... demoted to Manual").
type ManualFallback struct {
	Reason string
}

func (m *ManualFallback) Error() string { return m.Reason }

// Expr walks n and returns the generated Go expression for it. valIdent is
// the identifier the generated function binds the tag's raw value to
// (spec §3 ValueReference); selfIdent is the identifier bound to the
// current tag's sibling-field map (spec §3 SelfFieldAccess).
func Expr(n *ast.Node, convRegistry *registry.ConversionRegistry, valIdent, selfIdent string) (jen.Code, error) {
	if n == nil {
		return nil, fmt.Errorf("emit: nil AST node")
	}

	switch n.Class {
	case ast.Number:
		return numberLiteral(*n.NumericValue), nil

	case ast.QuotedString:
		return jen.Lit(n.StringValue), nil

	case ast.Symbol:
		return jen.Id(valIdent), nil

	case ast.ValueReference:
		return jen.Id(valIdent), nil

	case ast.SelfFieldAccess:
		return jen.Id(selfIdent).Index(jen.Lit(n.Field)), nil

	case ast.BinaryOperation:
		return emitBinary(n, convRegistry, valIdent, selfIdent)

	case ast.UnaryOperation:
		return emitUnary(n, convRegistry, valIdent, selfIdent)

	case ast.TernaryOperation:
		return emitTernary(n, convRegistry, valIdent, selfIdent)

	case ast.FunctionCall:
		return emitFunctionCall(n, convRegistry, valIdent, selfIdent)

	case ast.RegexMatch:
		return emitRegexMatch(n, convRegistry, valIdent, selfIdent)

	case ast.Unrecognized:
		return nil, &ManualFallback{Reason: fmt.Sprintf("unrecognized expression: %q", n.Raw)}

	default:
		return nil, fmt.Errorf("emit: unsupported node class %q", n.Class)
	}
}

// numberLiteral renders a Number node as an int literal when it carries no
// fractional part, matching how most ExifTool numeric constants (tag ids,
// small integer thresholds) read in generated Go.
func numberLiteral(v float64) jen.Code {
	if v == float64(int64(v)) {
		return jen.Lit(int64(v))
	}
	return jen.Lit(v)
}

func emitBinary(n *ast.Node, reg *registry.ConversionRegistry, valIdent, selfIdent string) (jen.Code, error) {
	entry, ok := reg.Lookup(n.Op, 2)
	if !ok {
		return nil, &ManualFallback{Reason: fmt.Sprintf("operator %q is not in the conversion registry", n.Op)}
	}
	lhs, err := Expr(n.Lhs, reg, valIdent, selfIdent)
	if err != nil {
		return nil, err
	}
	rhs, err := Expr(n.Rhs, reg, valIdent, selfIdent)
	if err != nil {
		return nil, err
	}
	return entry.Emit([]jen.Code{lhs, rhs})
}

func emitUnary(n *ast.Node, reg *registry.ConversionRegistry, valIdent, selfIdent string) (jen.Code, error) {
	key := n.Op
	if n.Op == "-" {
		key = "unary-"
	}
	entry, ok := reg.Lookup(key, 1)
	if !ok {
		return nil, &ManualFallback{Reason: fmt.Sprintf("unary operator %q is not in the conversion registry", n.Op)}
	}
	operand, err := Expr(n.Operand, reg, valIdent, selfIdent)
	if err != nil {
		return nil, err
	}
	return entry.Emit([]jen.Code{operand})
}

func emitTernary(n *ast.Node, reg *registry.ConversionRegistry, valIdent, selfIdent string) (jen.Code, error) {
	entry, ok := reg.Lookup("Ternary", 3)
	if !ok {
		return nil, fmt.Errorf("emit: Ternary is not registered, this is a registry configuration bug")
	}
	cond, err := Expr(n.Cond, reg, valIdent, selfIdent)
	if err != nil {
		return nil, err
	}
	then, err := Expr(n.Then, reg, valIdent, selfIdent)
	if err != nil {
		return nil, err
	}
	els, err := Expr(n.Else, reg, valIdent, selfIdent)
	if err != nil {
		return nil, err
	}
	return entry.Emit([]jen.Code{cond, then, els})
}

func emitFunctionCall(n *ast.Node, reg *registry.ConversionRegistry, valIdent, selfIdent string) (jen.Code, error) {
	entry, ok := reg.Lookup(n.Name, len(n.Args))
	if !ok {
		return nil, &ManualFallback{Reason: fmt.Sprintf("function %q/%d is not in the conversion registry", n.Name, len(n.Args))}
	}
	args := make([]jen.Code, 0, len(n.Args))
	for _, a := range n.Args {
		code, err := Expr(a, reg, valIdent, selfIdent)
		if err != nil {
			return nil, err
		}
		args = append(args, code)
	}
	return entry.Emit(args)
}

func emitRegexMatch(n *ast.Node, reg *registry.ConversionRegistry, valIdent, selfIdent string) (jen.Code, error) {
	entry, ok := reg.Lookup("RegexMatch", 2)
	if !ok {
		return nil, fmt.Errorf("emit: RegexMatch is not registered, this is a registry configuration bug")
	}
	target, err := Expr(n.Target, reg, valIdent, selfIdent)
	if err != nil {
		return nil, err
	}
	patternIdent := jen.Id(CompiledPatternIdent(n.Pattern))
	args := []jen.Code{target, patternIdent}
	code, err := entry.Emit(args)
	if err != nil {
		return nil, err
	}
	if n.Negated {
		return jen.Op("!").Parens(code), nil
	}
	return code, nil
}

// CompiledPatternIdent derives the Go identifier a RegexTable strategy
// emitter binds a compiled regexp.Regexp constant to for a given source
// pattern, so the expression visitor and the regex-table emitter agree on
// the same name without either importing the other.
func CompiledPatternIdent(pattern string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(pattern))
	return fmt.Sprintf("pattern%08x", h.Sum32())
}
