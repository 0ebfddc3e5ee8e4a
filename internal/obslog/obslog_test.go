package obslog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.log.json")
	log, err := New(LevelInfo, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ModuleWarning(log, "Canon", "WeirdTag", "expression demoted to manual")
	ModuleError(log, "Nikon", errTest{"extraction failed"})
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON log lines, got %d:\n%s", len(lines), data)
	}

	var warn map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &warn); err != nil {
		t.Fatalf("unmarshal warning line: %v", err)
	}
	if warn["module"] != "Canon" || warn["symbol"] != "WeirdTag" {
		t.Fatalf("unexpected warning fields: %v", warn)
	}

	var errLine map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &errLine); err != nil {
		t.Fatalf("unmarshal error line: %v", err)
	}
	if errLine["module"] != "Nikon" {
		t.Fatalf("unexpected error fields: %v", errLine)
	}
}

func TestNewWithoutJSONSink(t *testing.T) {
	log, err := New(LevelDebug, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ModuleWarning(log, "Canon", "Tag", "reason")
	_ = log.Sync()
}

type errTest struct{ msg string }

func (e errTest) Error() string { return e.msg }
