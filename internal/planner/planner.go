// Package planner assigns each generated strategy output a canonical path
// and writes it atomically (spec §4.7): one directory per source module,
// one file per strategy, plus a generated aggregation file per module and a
// top-level aggregator enumerating modules.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

// ModuleMarker is appended to every source module's short name to name its
// output directory, preserving faithful source-name identity while
// avoiding collisions with host-language naming conventions (spec §4.7).
const ModuleMarker = "_gen"

// StrategyFile names the fixed per-strategy output file stems, matched
// against the strategy that produced the content (spec §4.7 example list).
var StrategyFile = map[string]string{
	"FileTypeLookup":         "file_types",
	"RegexTable":             "regex_patterns",
	"BooleanSet":             "boolean_sets",
	"SimpleTable":            "simple_tables",
	"RuntimeBinaryDataTable": "runtime_tables",
	"TagKit":                 "tag_kit",
	"CompositeTagTable":      "composite",
	"InlineEnum":             "inline_enums",
	"Other":                  "unclassified",
}

// Plan is one generated file awaiting a write: its destination module, the
// strategy that produced it (used only to pick the file stem), and the
// rendered jen.File.
type Plan struct {
	Module   string
	Strategy string
	File     *jen.File
}

// Planner owns a run's output root, directory creation, atomic file
// writes, and module-level re-export aggregation.
type Planner struct {
	root string
}

// New returns a Planner rooted at root. root is created if missing.
func New(root string) (*Planner, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("planner: create output root %s: %w", root, err)
	}
	return &Planner{root: root}, nil
}

// ModuleDir returns the canonical output directory for a source module
// short name.
func (p *Planner) ModuleDir(module string) string {
	return filepath.Join(p.root, module+ModuleMarker)
}

// ClearModule removes and recreates a module's output directory, guaranteeing
// no stale files remain from a previous run (spec §4.7 "cleared at the
// start of a run").
func (p *Planner) ClearModule(module string) error {
	dir := p.ModuleDir(module)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("planner: clear module dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("planner: recreate module dir %s: %w", dir, err)
	}
	return nil
}

// Write renders plan.File and writes it atomically to its canonical path
// within its module's output directory (spec §4.7 "written to a temporary
// path and renamed atomically"). Returns the final path written.
func (p *Planner) Write(plan Plan) (string, error) {
	stem, ok := StrategyFile[plan.Strategy]
	if !ok {
		return "", fmt.Errorf("planner: unrecognized strategy %q", plan.Strategy)
	}

	dir := p.ModuleDir(plan.Module)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("planner: create module dir %s: %w", dir, err)
	}

	dest := filepath.Join(dir, stem+".go")
	if err := writeAtomic(dest, plan.File); err != nil {
		return "", err
	}
	return dest, nil
}

// WriteAggregate writes a module's re-export file: one comment per strategy
// file actually produced (spec §4.7 "a generated aggregation file per module
// re-exports symbols"), plus a LoadedTagTable type and LoadTagTable(name)
// dispatcher over this module's own table registrations (spec §4.6, §6
// "generated code surface" — load_tag_table is part of the GENERATED tree,
// not just the build-time TableRegistry). tables is restricted by the
// caller to this module's own registrations, since each is referenced here
// by its package-local generated identifier (no cross-package linkage).
func (p *Planner) WriteAggregate(module, pkg string, strategiesEmitted []string, tables []registry.TableRegistration) (string, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")
	f.Commentf("Aggregates the generated strategy files for module %s.", module)

	strategies := append([]string(nil), strategiesEmitted...)
	sort.Strings(strategies)
	for _, s := range strategies {
		stem, ok := StrategyFile[s]
		if !ok {
			return "", fmt.Errorf("planner: unrecognized strategy %q", s)
		}
		f.Commentf("see %s.go", stem)
	}

	hasTagKit := false
	for _, s := range strategies {
		if s == "TagKit" {
			hasTagKit = true
		}
	}
	writeLoadTagTable(f, tables, hasTagKit)

	dir := p.ModuleDir(module)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("planner: create module dir %s: %w", dir, err)
	}
	dest := filepath.Join(dir, "aggregate.go")
	if err := writeAtomic(dest, f); err != nil {
		return "", err
	}
	return dest, nil
}

// writeLoadTagTable emits LoadedTagTable and LoadTagTable(name), the
// runtime-queryable counterpart to the build-time TableRegistry (spec §4.6
// "load_tag_table(name) -> LoadedTagTable"). Tags is populated only for
// TagKit-strategy tables, since RuntimeBinaryDataTable and CompositeTagTable
// emit structurally different generated types; callers distinguish via
// Strategy.
func writeLoadTagTable(f *jen.File, tables []registry.TableRegistration, hasTagKit bool) {
	sorted := append([]registry.TableRegistration(nil), tables...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SourceName < sorted[j].SourceName })

	structFields := []jen.Code{
		jen.Id("SourceName").String(),
		jen.Id("Strategy").String(),
		jen.Id("IsBinaryData").Bool(),
		jen.Id("DefaultFormat").String(),
		jen.Id("FirstEntryIndex").Int(),
	}
	if hasTagKit {
		// Tags is only ever populated for a TagKit-strategy registration;
		// RuntimeBinaryDataTable and CompositeTagTable emit structurally
		// different generated types this module's own package can't name
		// uniformly, so those entries leave Tags nil (spec §6).
		structFields = append(structFields, jen.Id("Tags").Index().Id("TagKit"))
	}
	f.Type().Id("LoadedTagTable").Struct(structFields...)

	cases := make([]jen.Code, 0, len(sorted))
	for _, t := range sorted {
		fields := jen.Dict{
			jen.Id("SourceName"):      jen.Lit(t.SourceName),
			jen.Id("Strategy"):        jen.Lit(t.Strategy),
			jen.Id("IsBinaryData"):    jen.Lit(t.IsBinaryData),
			jen.Id("DefaultFormat"):   jen.Lit(t.DefaultFormat),
			jen.Id("FirstEntryIndex"): jen.Lit(t.FirstEntryIndex),
		}
		if hasTagKit && t.Strategy == "TagKit" {
			fields[jen.Id("Tags")] = jen.Id(t.ConstantName)
		}
		cases = append(cases, jen.Case(jen.Lit(t.SourceName)).Block(
			jen.Return(jen.Id("LoadedTagTable").Values(fields), jen.True()),
		))
	}
	cases = append(cases, jen.Default().Block(jen.Return(jen.Id("LoadedTagTable").Values(), jen.False())))

	f.Comment("LoadTagTable resolves a fully-qualified source table name (e.g. \"Canon::Main\") to")
	f.Comment("its generated data, or reports ok=false for an unregistered name (spec §7 UnknownTable).")
	f.Func().Id("LoadTagTable").Params(jen.Id("name").String()).Params(jen.Id("LoadedTagTable"), jen.Bool()).Block(
		jen.Switch(jen.Id("name")).Block(cases...),
	)
}

// WriteTopLevelAggregator writes the top-level file enumerating every
// module this run produced output for (spec §4.7 "top-level aggregator
// that enumerates modules").
func (p *Planner) WriteTopLevelAggregator(pkg string, modules []string) (string, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")

	sorted := append([]string(nil), modules...)
	sort.Strings(sorted)

	dict := jen.Dict{}
	for _, m := range sorted {
		dict[jen.Lit(m)] = jen.Lit(strings.TrimSuffix(m, ModuleMarker) + ModuleMarker)
	}
	f.Var().Id("GeneratedModules").Op("=").Map(jen.String()).String().Values(dict)

	dest := filepath.Join(p.root, "modules.go")
	if err := writeAtomic(dest, f); err != nil {
		return "", err
	}
	return dest, nil
}

func writeAtomic(dest string, f *jen.File) error {
	tmp := dest + ".tmp"
	data := []byte(f.GoString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("planner: write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("planner: rename %s to %s: %w", tmp, dest, err)
	}
	return nil
}
