package classify

import (
	"testing"

	"github.com/photostructure/exif-oxide-codegen/internal/model"
)

func hashSymbol(name string, data map[string]any) model.Symbol {
	return model.Symbol{Type: model.HashSymbol, Name: name, Module: "Canon.pm", Data: data}
}

func TestClassifyBooleanSet(t *testing.T) {
	sym := hashSymbol("%isDirectory", map[string]any{"CR2": float64(1), "CR3": float64(1)})
	if got := Classify(sym, nil); got != BooleanSet {
		t.Fatalf("expected BooleanSet, got %s", got)
	}
}

func TestClassifySimpleTable(t *testing.T) {
	sym := hashSymbol("%canonModelID", map[string]any{"1": "EOS R5", "2": "EOS R6"})
	if got := Classify(sym, nil); got != SimpleTable {
		t.Fatalf("expected SimpleTable, got %s", got)
	}
}

func TestClassifyRegexTable(t *testing.T) {
	sym := hashSymbol("%magicNumber", map[string]any{"JPEG": `\xff\xd8\xff`, "PNG": `\x89PNG\r\n`})
	if got := Classify(sym, nil); got != RegexTable {
		t.Fatalf("expected RegexTable, got %s", got)
	}
}

func TestClassifyFileTypeLookup(t *testing.T) {
	sym := hashSymbol("%fileTypeLookup", map[string]any{
		"JPG": map[string]any{"Description": "JPEG", "Format": "JPEG"},
		"PNG": map[string]any{"Description": "PNG image", "Format": "PNG"},
	})
	if got := Classify(sym, nil); got != FileTypeLookup {
		t.Fatalf("expected FileTypeLookup, got %s", got)
	}
}

func TestClassifyTagKit(t *testing.T) {
	sym := hashSymbol("%Main", map[string]any{
		"GROUPS": map[string]any{"0": "MakerNotes"},
		"1":      map[string]any{"Name": "LensType", "PrintConv": map[string]any{"1": "Canon EF"}},
	})
	if got := Classify(sym, nil); got != TagKit {
		t.Fatalf("expected TagKit, got %s", got)
	}
}

func TestClassifyCompositeTagTable(t *testing.T) {
	sym := hashSymbol("%Composite", map[string]any{"ISO": map[string]any{"Name": "ISO"}})
	sym.Metadata.IsCompositeTable = true
	if got := Classify(sym, nil); got != CompositeTagTable {
		t.Fatalf("expected CompositeTagTable, got %s", got)
	}
}

func TestClassifyRuntimeBinaryDataTable(t *testing.T) {
	sym := hashSymbol("%CameraInfo", map[string]any{
		"PROCESS_PROC": "ProcessBinaryData",
		"FIRST_ENTRY":  float64(0),
		"0":            map[string]any{"Name": "FirmwareVersion"},
	})
	if got := Classify(sym, nil); got != RuntimeBinaryDataTable {
		t.Fatalf("expected RuntimeBinaryDataTable, got %s", got)
	}
}

func TestClassifyInlineEnumRequiresSeeding(t *testing.T) {
	sym := hashSymbol("%weirdShape", map[string]any{"A": []any{"x", "y"}})
	if got := Classify(sym, nil); got != Other {
		t.Fatalf("expected unseeded ambiguous shape to fall through to Other, got %s", got)
	}
	if got := Classify(sym, map[string]bool{"%weirdShape": true}); got != InlineEnum {
		t.Fatalf("expected seeded hash to classify as InlineEnum, got %s", got)
	}
}

func TestClassifyScalarIsOther(t *testing.T) {
	sym := model.Symbol{Type: model.ScalarSymbol, Name: "$VERSION", Module: "Canon.pm"}
	if got := Classify(sym, nil); got != Other {
		t.Fatalf("expected scalar symbol to classify as Other, got %s", got)
	}
}
