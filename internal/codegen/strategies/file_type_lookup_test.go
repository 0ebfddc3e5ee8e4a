package strategies

import (
	"strings"
	"testing"
)

func TestEmitFileTypeLookupSortsAndRendersEntries(t *testing.T) {
	spec := FileTypeLookupSpec{
		ConstantName: "FileTypeLookup",
		TypeName:     "FileTypeInfo",
		Entries: []FileTypeDescriptor{
			{Extension: "JPEG", Description: "Joint Photographic Experts Group", Formats: []string{"JPEG"}, MimeType: "image/jpeg"},
			{Extension: "CR2", Description: "Canon RAW 2", Formats: []string{"TIFF", "CR2"}, MimeType: "image/x-canon-cr2"},
		},
	}

	f, err := EmitFileTypeLookup("filetype", spec)
	if err != nil {
		t.Fatalf("EmitFileTypeLookup: %v", err)
	}

	out := f.GoString()
	if !strings.Contains(out, "type FileTypeInfo struct") {
		t.Fatalf("expected struct type declaration, got:\n%s", out)
	}
	if !strings.Contains(out, `"CR2"`) || !strings.Contains(out, `"JPEG"`) {
		t.Fatalf("expected both extensions present, got:\n%s", out)
	}
	// CR2 sorts before JPEG; assert its block appears first in the literal.
	if strings.Index(out, `"CR2"`) > strings.Index(out, `"JPEG"`) {
		t.Fatalf("expected entries sorted by extension, got:\n%s", out)
	}
	if !strings.Contains(out, "image/x-canon-cr2") {
		t.Fatalf("expected mime type rendered, got:\n%s", out)
	}
}

func TestEmitFileTypeLookupEmptyEntries(t *testing.T) {
	spec := FileTypeLookupSpec{ConstantName: "Empty", TypeName: "FileTypeInfo"}
	f, err := EmitFileTypeLookup("filetype", spec)
	if err != nil {
		t.Fatalf("EmitFileTypeLookup: %v", err)
	}
	if !strings.Contains(f.GoString(), "var Empty = map[string]FileTypeInfo{}") {
		t.Fatalf("expected empty map literal, got:\n%s", f.GoString())
	}
}
