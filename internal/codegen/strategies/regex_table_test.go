package strategies

import (
	"strings"
	"testing"
)

func TestEmitRegexTableRendersCompiledPatterns(t *testing.T) {
	spec := RegexTableSpec{
		ConstantName: "MagicNumbers",
		Patterns:     []RegexPattern{{Name: "JPEG", Pattern: `^\xff\xd8\xff`}},
	}
	f, err := EmitRegexTable("filetypes", spec)
	if err != nil {
		t.Fatalf("EmitRegexTable: %v", err)
	}
	got := f.GoString()
	if !strings.Contains(got, "regexp.MustCompile") {
		t.Fatalf("expected a MustCompile call, got:\n%s", got)
	}
	if !strings.Contains(got, "var MagicNumbers") {
		t.Fatalf("expected the lookup map declared, got:\n%s", got)
	}
}

func TestEmitRegexTableCommentsOutIncompatiblePatterns(t *testing.T) {
	spec := RegexTableSpec{
		ConstantName: "Weird",
		Patterns:     []RegexPattern{{Name: "Lookahead", Pattern: `(?=foo)bar`, Incompatible: "lookaround"}},
	}
	f, err := EmitRegexTable("filetypes", spec)
	if err != nil {
		t.Fatalf("EmitRegexTable: %v", err)
	}
	got := f.GoString()
	if !strings.Contains(got, "rejected") || !strings.Contains(got, "lookaround") {
		t.Fatalf("expected a rejection comment naming the incompatible feature, got:\n%s", got)
	}
	if strings.Contains(got, "MustCompile") {
		t.Fatalf("incompatible pattern should not be compiled, got:\n%s", got)
	}
}

func TestEmitRegexTableRejectsInvalidPattern(t *testing.T) {
	spec := RegexTableSpec{
		ConstantName: "Bad",
		Patterns:     []RegexPattern{{Name: "Broken", Pattern: `[unterminated`}},
	}
	if _, err := EmitRegexTable("filetypes", spec); err == nil {
		t.Fatalf("expected an error for an invalid regex pattern")
	}
}
