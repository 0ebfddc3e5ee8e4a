package strategies

import (
	"strings"
	"testing"
)

func TestEmitOtherRendersDiagnostic(t *testing.T) {
	spec := OtherSpec{
		ConstantName: "WeirdTable",
		SourceName:   "Image::ExifTool::Weird::Table",
		Module:       "Weird",
	}

	f, err := EmitOther("weird", spec)
	if err != nil {
		t.Fatalf("EmitOther: %v", err)
	}
	out := f.GoString()
	if !strings.Contains(out, "did not match any known strategy") {
		t.Fatalf("expected diagnostic comment, got:\n%s", out)
	}
	if !strings.Contains(out, `var WeirdTableUnclassified = "Image::ExifTool::Weird::Table"`) {
		t.Fatalf("expected diagnostic variable, got:\n%s", out)
	}
}
