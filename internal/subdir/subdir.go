// Package subdir implements the subdirectory resolver (spec §4.6): for each
// tag carrying one or more SubDirectory references, it emits a static array
// of candidate SubDirectoryDef records, consulting the shared table
// registry to confirm (or reject) each reference's target table.
package subdir

import (
	"github.com/photostructure/exif-oxide-codegen/internal/model"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

// ResolvedSubDir is one candidate expansion for a tag, with its target
// table's generated location already looked up.
type ResolvedSubDir struct {
	Def    model.SubDirectoryDef
	Target registry.TableRegistration
}

// Resolve looks up every SubDirectoryDef on defs against the table
// registry, in declaration order (spec §5 "deterministic... emission").
// A target that resolves to UnknownTable is reported rather than silently
// dropped, so the caller can decide whether a single bad reference should
// demote just that one candidate or fail the whole tag.
func Resolve(defs []model.SubDirectoryDef, tables *registry.TableRegistry) ([]ResolvedSubDir, []error) {
	var resolved []ResolvedSubDir
	var errs []error

	for _, def := range defs {
		target, err := tables.Resolve(def.TagTable)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		resolved = append(resolved, ResolvedSubDir{Def: def, Target: target})
	}
	return resolved, errs
}
