package planner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/require"

	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

func TestWritePlacesFileUnderMarkerSuffixedModuleDir(t *testing.T) {
	root := t.TempDir()
	p, err := New(root)
	require.NoError(t, err)

	f := jen.NewFile("canon")
	f.Var().Id("X").Op("=").Lit(1)

	dest, err := p.Write(Plan{Module: "Canon", Strategy: "SimpleTable", File: f})
	require.NoError(t, err)

	want := filepath.Join(root, "Canon"+ModuleMarker, "simple_tables.go")
	require.Equal(t, want, dest)
	require.FileExists(t, dest)
	require.NoFileExists(t, dest+".tmp")
}

func TestWriteRejectsUnknownStrategy(t *testing.T) {
	root := t.TempDir()
	p, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.Write(Plan{Module: "Canon", Strategy: "NotAStrategy", File: jen.NewFile("canon")})
	if err == nil {
		t.Fatalf("expected error for unrecognized strategy")
	}
}

func TestClearModuleRemovesStaleFiles(t *testing.T) {
	root := t.TempDir()
	p, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stale := filepath.Join(p.ModuleDir("Canon"), "stale.go")
	if err := os.MkdirAll(p.ModuleDir("Canon"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(stale, []byte("package canon\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := p.ClearModule("Canon"); err != nil {
		t.Fatalf("ClearModule: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale file removed, stat err = %v", err)
	}
}

func TestWriteTopLevelAggregatorListsModules(t *testing.T) {
	root := t.TempDir()
	p, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dest, err := p.WriteTopLevelAggregator("exifgen", []string{"Nikon", "Canon"})
	if err != nil {
		t.Fatalf("WriteTopLevelAggregator: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "Canon") || !strings.Contains(content, "Nikon") {
		t.Fatalf("expected both modules listed, got:\n%s", content)
	}
}

func TestWriteAggregateEmitsLoadTagTableWithTagsOnlyForTagKit(t *testing.T) {
	root := t.TempDir()
	p, err := New(root)
	require.NoError(t, err)

	tables := []registry.TableRegistration{
		{SourceName: "Canon::Main", Module: "canon", ConstantName: "CanonMainTagKits", Strategy: "TagKit"},
		{SourceName: "Canon::Composite", Module: "canon", ConstantName: "CanonComposite", Strategy: "CompositeTagTable"},
	}

	dest, err := p.WriteAggregate("canon", "canon", []string{"TagKit", "CompositeTagTable"}, tables)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	content := string(data)

	require.Contains(t, content, "Tags []TagKit")
	require.Contains(t, content, `"Canon::Main"`)
	require.Contains(t, content, `"Canon::Composite"`)
	require.Contains(t, content, "Tags: CanonMainTagKits")
	require.Contains(t, content, "func LoadTagTable(name string)")
}

func TestWriteAggregateOmitsTagsFieldWithoutTagKitStrategy(t *testing.T) {
	root := t.TempDir()
	p, err := New(root)
	require.NoError(t, err)

	tables := []registry.TableRegistration{
		{SourceName: "Canon::Composite", Module: "canon", ConstantName: "CanonComposite", Strategy: "CompositeTagTable"},
	}

	dest, err := p.WriteAggregate("canon", "canon", []string{"CompositeTagTable"}, tables)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	content := string(data)

	require.NotContains(t, content, "TagKit")
}
