package subdir

import (
	"testing"

	"github.com/photostructure/exif-oxide-codegen/internal/model"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

func TestResolveMixesKnownAndUnknownTargets(t *testing.T) {
	tables := registry.NewTableRegistry()
	tables.Register(registry.TableRegistration{SourceName: "Canon::CameraSettings", ConstantName: "CameraSettings"})

	defs := []model.SubDirectoryDef{
		{TagTable: "Canon::CameraSettings"},
		{TagTable: "Canon::Nonexistent"},
	}

	resolved, errs := Resolve(defs, tables)
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved subdirectory, got %d", len(resolved))
	}
	if resolved[0].Target.ConstantName != "CameraSettings" {
		t.Fatalf("expected resolved target CameraSettings, got %s", resolved[0].Target.ConstantName)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 UnknownTable error, got %d", len(errs))
	}
}
