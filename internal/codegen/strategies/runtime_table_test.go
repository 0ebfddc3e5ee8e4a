package strategies

import (
	"strings"
	"testing"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
)

func TestEmitRuntimeBinaryDataTableRendersFieldsAndDefaults(t *testing.T) {
	spec := RuntimeBinaryDataTableSpec{
		ConstantName:  "CanonCameraSettings",
		DefaultFormat: "int16s",
		FirstEntry:    1,
		Fields: []RuntimeFieldSpec{
			{Offset: "2", Name: "Quality"},
			{Offset: "1", Name: "MacroMode"},
		},
	}

	f, err := EmitRuntimeBinaryDataTable("canon", spec, testConvRegistry())
	if err != nil {
		t.Fatalf("EmitRuntimeBinaryDataTable: %v", err)
	}
	out := f.GoString()

	if !strings.Contains(out, "func NewCanonCameraSettings() *BinaryDataTable") {
		t.Fatalf("expected factory function, got:\n%s", out)
	}
	if !strings.Contains(out, `"MacroMode"`) || !strings.Contains(out, `"Quality"`) {
		t.Fatalf("expected both fields rendered, got:\n%s", out)
	}
	// MacroMode (offset "1") sorts before Quality (offset "2").
	if strings.Index(out, "MacroMode") > strings.Index(out, "Quality") {
		t.Fatalf("expected fields ordered by offset, got:\n%s", out)
	}
	if !strings.Contains(out, `"int16s"`) {
		t.Fatalf("expected default format applied when field format is empty, got:\n%s", out)
	}
}

func TestEmitRuntimeBinaryDataTableCondition(t *testing.T) {
	cond := &ast.Node{
		Class: ast.BinaryOperation,
		Op:    "==",
		Lhs:   &ast.Node{Class: ast.SelfFieldAccess, Field: "Model"},
		Rhs:   &ast.Node{Class: ast.QuotedString, StringValue: "EOS 5D"},
	}
	spec := RuntimeBinaryDataTableSpec{
		ConstantName:  "Table",
		DefaultFormat: "int8u",
		Fields: []RuntimeFieldSpec{
			{Offset: "0", Name: "Flag", Condition: cond},
		},
	}

	f, err := EmitRuntimeBinaryDataTable("canon", spec, testConvRegistry())
	if err != nil {
		t.Fatalf("EmitRuntimeBinaryDataTable: %v", err)
	}
	out := f.GoString()
	if !strings.Contains(out, `self["Model"]`) {
		t.Fatalf("expected condition referencing self map, got:\n%s", out)
	}
}
