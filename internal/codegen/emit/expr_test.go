package emit

import (
	"strings"
	"testing"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

func TestExprBinaryOperation(t *testing.T) {
	reg := registry.NewConversionRegistry()
	n := &ast.Node{Class: ast.BinaryOperation, Op: "+", Lhs: ast.Num(1), Rhs: ast.Num(2)}

	code, err := Expr(n, reg, "val", "self")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rendered := code.GoString()
	if !strings.Contains(rendered, "+") {
		t.Fatalf("expected rendered code to contain +, got %q", rendered)
	}
}

func TestExprFunctionCallFallsBackWhenUnregistered(t *testing.T) {
	reg := registry.NewConversionRegistry()
	n := &ast.Node{Class: ast.FunctionCall, Name: "Image::ExifTool::Canon::SomeCustomSub", Args: nil}

	_, err := Expr(n, reg, "val", "self")
	if err == nil {
		t.Fatal("expected an error for an unregistered function")
	}
	if _, ok := err.(*ManualFallback); !ok {
		t.Fatalf("expected a *ManualFallback, got %T: %v", err, err)
	}
}

func TestExprSelfFieldAccess(t *testing.T) {
	reg := registry.NewConversionRegistry()
	n := &ast.Node{Class: ast.SelfFieldAccess, Field: "Make"}

	code, err := Expr(n, reg, "val", "self")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rendered := code.GoString()
	if !strings.Contains(rendered, "self") || !strings.Contains(rendered, "Make") {
		t.Fatalf("expected generated code to reference self[\"Make\"], got %q", rendered)
	}
}

func TestCompiledPatternIdentIsStableAndValid(t *testing.T) {
	a := CompiledPatternIdent(`^\xff\xd8\xff`)
	b := CompiledPatternIdent(`^\xff\xd8\xff`)
	if a != b {
		t.Fatalf("expected deterministic identifier, got %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "pattern") {
		t.Fatalf("expected identifier to start with \"pattern\", got %q", a)
	}
}
