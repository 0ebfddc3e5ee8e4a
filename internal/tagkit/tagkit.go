// Package tagkit implements the tag-kit assembler (spec §4.4): for each
// entry in a tag-definition table it selects a PrintConv/ValueConv kind and
// assembles one self-contained record combining a tag's metadata, format,
// group hierarchy, writability, and discriminated conversion payloads.
package tagkit

import (
	"fmt"
	"strings"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/model"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

// RawConversion is what the field extractor handed back for one
// PrintConv/ValueConv/RawConv field before classification: at most one of
// these is populated, mirroring how ExifTool itself stores the field.
type RawConversion struct {
	InlineMap map[string]string // a literal { 1 => "Canon", 2 => "Nikon" } hash
	SharedRef string            // "%canonModelID"-style reference to another extracted hash
	Expr      *ast.Node         // the normalizer's output for a scalar expression string, or nil
	Unparsed  bool              // true if the normalizer returned Unrecognized/TooComplex
	SubRef    string             // a "\&Image::ExifTool::Module::FuncName"-style code reference
}

// AssembleConversion implements the PrintConv kind-selection rules of spec
// §4.4 (ValueConv/RawConv are handled identically — "handled analogously").
// tagName and field feed the synthesized stable name used as a last resort.
func AssembleConversion(tagName string, field model.ExprField, raw RawConversion, sharedMappings map[string]bool, convRegistry *registry.ConversionRegistry) *model.Conversion {
	switch {
	case raw.InlineMap == nil && raw.SharedRef == "" && raw.Expr == nil && raw.SubRef == "" && !raw.Unparsed:
		return &model.Conversion{Kind: model.ConvNone}

	case raw.InlineMap != nil:
		return &model.Conversion{Kind: model.ConvSimple, InlineMap: raw.InlineMap}

	case raw.SharedRef != "" && sharedMappings[raw.SharedRef]:
		return &model.Conversion{Kind: model.ConvSimple, SharedRef: raw.SharedRef}

	case raw.Expr != nil:
		return &model.Conversion{Kind: model.ConvExpression, Expr: raw.Expr}

	case raw.SubRef != "" && registeredSubRef(raw.SubRef, convRegistry):
		return &model.Conversion{Kind: model.ConvManual, ManualName: registryKeyFromSubRef(raw.SubRef)}

	default:
		return &model.Conversion{Kind: model.ConvManual, ManualName: synthesizeManualName(tagName, field)}
	}
}

// registeredSubRef reports whether a "\&Package::Sub" reference names a
// function the conversion registry already knows under its bare sub name —
// ExifTool sometimes hand-writes PrintConv as a reference to a helper that
// happens to already have a native equivalent (e.g. \&Image::ExifTool::Exif::PrintExposureTime).
func registeredSubRef(subRef string, convRegistry *registry.ConversionRegistry) bool {
	if convRegistry == nil {
		return false
	}
	key := registryKeyFromSubRef(subRef)
	for argc := 0; argc <= 3; argc++ {
		if _, ok := convRegistry.Lookup(key, argc); ok {
			return true
		}
	}
	return false
}

func registryKeyFromSubRef(subRef string) string {
	name := strings.TrimPrefix(subRef, `\&`)
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		name = name[idx+2:]
	}
	return name
}

// synthesizeManualName derives a stable name from the tag name and field
// kind (spec §4.4 "a synthesized stable name"), used both as the manual
// function's Go identifier and as the key reported in the "needs manual
// implementation" list (spec §7).
func synthesizeManualName(tagName string, field model.ExprField) string {
	return fmt.Sprintf("Manual_%s_%s", tagName, field)
}

// Assemble builds the full TagDefinition for one table entry given the
// already-classified conversions and condition AST. It exists as a thin
// seam the strategy emitter calls after AssembleConversion has run for each
// field, so the table-level assembly logic (condition handling, subdir
// attachment) lives in one place (spec §4.4 "Output").
func Assemble(id, name, format, writable string, groups map[string]string, printConv, valueConv, rawConv *model.Conversion, condition *ast.Node, subDirs []model.SubDirectoryDef) model.TagDefinition {
	def := model.TagDefinition{
		ID:        id,
		Name:      name,
		Format:    format,
		Writable:  writable,
		Groups:    groups,
		PrintConv: printConv,
		ValueConv: valueConv,
		RawConv:   rawConv,
		Condition: condition,
		SubDirs:   subDirs,
	}
	if printConv != nil && printConv.Kind == model.ConvManual {
		def.Notes = append(def.Notes, fmt.Sprintf("PrintConv needs manual implementation: %s", printConv.ManualName))
	}
	if valueConv != nil && valueConv.Kind == model.ConvManual {
		def.Notes = append(def.Notes, fmt.Sprintf("ValueConv needs manual implementation: %s", valueConv.ManualName))
	}
	return def
}

// GroupByID collapses a flat slice of TagDefinitions for one table into the
// id-keyed map model.TagTable expects, preserving declaration order within
// each id's variant slice — a tag with multiple conditional variants
// produces multiple entries under the same id (spec §4.4 "Conditions").
func GroupByID(defs []model.TagDefinition) map[string][]model.TagDefinition {
	out := make(map[string][]model.TagDefinition)
	for _, d := range defs {
		out[d.ID] = append(out[d.ID], d)
	}
	return out
}
