package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/photostructure/exif-oxide-codegen/internal/cgerrors"
)

// TableRegistration is what the table registry knows about one source
// table, used both to resolve SubDirectory references to other tables and
// to emit the generated load_tag_table dispatcher (spec §4.6).
type TableRegistration struct {
	SourceName      string // fully-qualified source name, e.g. "Canon::Main"
	Module          string // generated module path
	ConstantName    string
	Strategy        string // classify.Strategy that produced ConstantName's generated var, e.g. "TagKit"
	IsBinaryData    bool
	DefaultFormat   string
	FirstEntryIndex int
}

// TableRegistry is the shared, build-once, read-only-after-Freeze index of
// every table the build emitted (spec §5 "frozen read-only registries").
// It is safe for concurrent reads and writes (each module's worker
// registers its own tables as it finishes), but Lookup after Freeze never
// sees a partial registration from a still-running worker.
type TableRegistry struct {
	mu     sync.RWMutex
	tables map[string]TableRegistration
	frozen bool
}

// NewTableRegistry returns an empty, writable table registry.
func NewTableRegistry() *TableRegistry {
	return &TableRegistry{tables: make(map[string]TableRegistration)}
}

// Register records one table's generated location. It panics if called
// after Freeze — that would indicate a worker racing the build's
// aggregation phase, a programming error rather than a recoverable one.
func (r *TableRegistry) Register(reg TableRegistration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic("registry: Register called after Freeze")
	}
	r.tables[reg.SourceName] = reg
}

// Freeze marks the registry read-only. Call once, after every module
// worker has finished registering its tables and before the subdirectory
// resolver or load_tag_table emitter consults it.
func (r *TableRegistry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Resolve looks up a fully-qualified source table name. An unregistered
// name is UnknownTable (spec §7) — the caller (subdirectory resolver or the
// generated load_tag_table dispatcher's fallback) never panics on it.
func (r *TableRegistry) Resolve(sourceName string) (TableRegistration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.tables[sourceName]
	if !ok {
		return TableRegistration{}, cgerrors.New(cgerrors.UnknownTable, "", sourceName,
			"load_tag_table: no table registered under this name", nil)
	}
	return reg, nil
}

// All returns every registration in stable, sorted-by-source-name order,
// the order the load_tag_table dispatcher's generated switch statement is
// emitted in (spec §5 "strategy emission is deterministic").
func (r *TableRegistry) All() []TableRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TableRegistration, 0, len(r.tables))
	for _, reg := range r.tables {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceName < out[j].SourceName })
	return out
}

// WriteSnapshot persists every registration to path as JSON, so a later
// `registry verify` run can load it back without re-running extraction
// (spec's "registry verify" supplemented feature).
func (r *TableRegistry) WriteSnapshot(path string) error {
	data, err := json.MarshalIndent(r.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal table registry snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write table registry snapshot %s: %w", path, err)
	}
	return nil
}

// LoadTableRegistry rebuilds a frozen registry from a snapshot written by
// WriteSnapshot, for standalone `registry verify` runs against a
// previously generated tree.
func LoadTableRegistry(path string) (*TableRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table registry snapshot %s: %w", path, err)
	}
	var regs []TableRegistration
	if err := json.Unmarshal(data, &regs); err != nil {
		return nil, fmt.Errorf("decode table registry snapshot %s: %w", path, err)
	}
	reg := NewTableRegistry()
	for _, r := range regs {
		reg.Register(r)
	}
	reg.Freeze()
	return reg, nil
}
