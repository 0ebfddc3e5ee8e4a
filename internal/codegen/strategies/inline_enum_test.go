package strategies

import (
	"strings"
	"testing"
)

func TestEmitInlineEnumRendersSortedEntries(t *testing.T) {
	spec := InlineEnumSpec{
		ConstantName: "MeteringModeEnum",
		Entries:      map[string]string{"2": "CenterWeightedAverage", "0": "Unknown", "1": "Average"},
	}

	f, err := EmitInlineEnum("canon", spec)
	if err != nil {
		t.Fatalf("EmitInlineEnum: %v", err)
	}
	out := f.GoString()
	if !strings.Contains(out, "var MeteringModeEnum = map[string]string{") {
		t.Fatalf("expected map literal declaration, got:\n%s", out)
	}
	if !strings.Contains(out, `"CenterWeightedAverage"`) {
		t.Fatalf("expected entry rendered, got:\n%s", out)
	}
}
