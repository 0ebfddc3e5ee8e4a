package tagkit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/model"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

func TestAssembleConversionKindSelection(t *testing.T) {
	convRegistry := registry.NewConversionRegistry()

	none := AssembleConversion("LensType", model.PrintConv, RawConversion{}, nil, convRegistry)
	require.Equal(t, model.ConvNone, none.Kind)

	simpleInline := AssembleConversion("LensType", model.PrintConv, RawConversion{InlineMap: map[string]string{"1": "Canon EF"}}, nil, convRegistry)
	require.Equal(t, model.ConvSimple, simpleInline.Kind)
	require.Equal(t, "Canon EF", simpleInline.InlineMap["1"])

	simpleShared := AssembleConversion("Model", model.PrintConv, RawConversion{SharedRef: "%canonModelID"}, map[string]bool{"%canonModelID": true}, convRegistry)
	require.Equal(t, model.ConvSimple, simpleShared.Kind)
	require.Equal(t, "%canonModelID", simpleShared.SharedRef)

	expr := AssembleConversion("FocalLength", model.ValueConv, RawConversion{Expr: ast.Num(1)}, nil, convRegistry)
	require.Equal(t, model.ConvExpression, expr.Kind)

	manual := AssembleConversion("WeirdTag", model.PrintConv, RawConversion{Unparsed: true}, nil, convRegistry)
	require.Equal(t, model.ConvManual, manual.Kind)
	require.Equal(t, "Manual_WeirdTag_PrintConv", manual.ManualName)
}

func TestAssembleAttachesManualNotes(t *testing.T) {
	manual := &model.Conversion{Kind: model.ConvManual, ManualName: "Manual_Foo_PrintConv"}
	def := Assemble("0x1", "Foo", "int16u", "false", nil, manual, nil, nil, nil, nil)
	if len(def.Notes) != 1 {
		t.Fatalf("expected one manual-implementation note, got %v", def.Notes)
	}
}

func TestGroupByIDPreservesVariantOrder(t *testing.T) {
	defs := []model.TagDefinition{
		{ID: "0x10", Name: "VariantA"},
		{ID: "0x10", Name: "VariantB"},
		{ID: "0x20", Name: "Other"},
	}
	grouped := GroupByID(defs)
	if len(grouped["0x10"]) != 2 || grouped["0x10"][0].Name != "VariantA" || grouped["0x10"][1].Name != "VariantB" {
		t.Fatalf("expected ordered variants for 0x10, got %+v", grouped["0x10"])
	}
}
