// Package classify implements the strategy dispatcher (spec §4.3): given one
// sanitized symbol, it picks exactly one of nine strategies via structural
// probes, falling back to name patterns only when structure is ambiguous.
// Strategies do not chain — whichever one claims a symbol owns it outright.
package classify

import (
	"strings"

	"github.com/photostructure/exif-oxide-codegen/internal/model"
)

// Strategy is the generator strategy a symbol was classified into.
type Strategy string

const (
	FileTypeLookup         Strategy = "FileTypeLookup"
	RegexTable             Strategy = "RegexTable"
	BooleanSet             Strategy = "BooleanSet"
	SimpleTable            Strategy = "SimpleTable"
	RuntimeBinaryDataTable Strategy = "RuntimeBinaryDataTable"
	TagKit                 Strategy = "TagKit"
	CompositeTagTable      Strategy = "CompositeTagTable"
	InlineEnum             Strategy = "InlineEnum"
	Other                  Strategy = "Other"
)

// fileTypeHints are the structural keys ExifTool's file-type discriminator
// tables carry on every entry (Description plus at least one of Format/
// Mimetype identify the "this hash picks a decoder by extension" shape).
var fileTypeHints = []string{"Description", "Format", "Mimetype", "MimeType"}

// Classify picks the single strategy that owns sym, per the priority order
// in spec §4.3. seededInlineEnums is the set of hash names a companion
// config file explicitly requested as InlineEnum (strategy 8 only ever
// fires when seeded — it is never inferred from structure alone).
func Classify(sym model.Symbol, seededInlineEnums map[string]bool) Strategy {
	switch sym.Type {
	case model.ArraySymbol:
		return classifyArray(sym)
	case model.ScalarSymbol:
		return Other
	}

	data := sym.Data
	if len(data) == 0 {
		return Other
	}

	if sym.Metadata.IsCompositeTable {
		return CompositeTagTable
	}

	if looksLikeFileTypeLookup(data) {
		return FileTypeLookup
	}
	if looksLikeRegexTable(data) {
		return RegexTable
	}
	if looksLikeBooleanSet(data) {
		return BooleanSet
	}
	if looksLikeRuntimeBinaryData(data) {
		return RuntimeBinaryDataTable
	}
	if looksLikeTagTable(data) {
		return TagKit
	}
	if looksLikeSimpleTable(data) {
		return SimpleTable
	}
	if seededInlineEnums[sym.Name] {
		return InlineEnum
	}
	return Other
}

func classifyArray(sym model.Symbol) Strategy {
	// Every array symbol classifies as Other, including the handful of
	// ProcessBinaryData fixed layouts and file-type alias lists ExifTool
	// stores as arrays rather than hashes.
	return Other
}

func looksLikeFileTypeLookup(data map[string]any) bool {
	hintHits := 0
	for _, entry := range data {
		m, ok := entry.(map[string]any)
		if !ok {
			return false
		}
		for _, hint := range fileTypeHints {
			if _, ok := m[hint]; ok {
				hintHits++
				break
			}
		}
	}
	return hintHits > 0 && hintHits == len(data)
}

func looksLikeRegexTable(data map[string]any) bool {
	for _, v := range data {
		switch vv := v.(type) {
		case string:
			if !looksLikeRegexLiteral(vv) {
				return false
			}
		default:
			return false
		}
	}
	return len(data) > 0
}

func looksLikeRegexLiteral(s string) bool {
	return strings.HasPrefix(s, "(?") || strings.ContainsAny(s, `\.[]{}()*+?^$|`)
}

func looksLikeBooleanSet(data map[string]any) bool {
	for _, v := range data {
		switch vv := v.(type) {
		case float64:
			if vv != 1 {
				return false
			}
		case bool:
			if !vv {
				return false
			}
		case string:
			if vv != "1" {
				return false
			}
		default:
			return false
		}
	}
	return len(data) > 0
}

// binaryDataMarkers are the keys present on a ProcessBinaryData table's
// metadata entry (conventionally keyed "0" or "PROCESS_PROC" depending on
// how ExifTool wrote the table).
var binaryDataMarkers = []string{"PROCESS_PROC", "FIRST_ENTRY", "FORMAT"}

func looksLikeRuntimeBinaryData(data map[string]any) bool {
	for _, marker := range binaryDataMarkers {
		if _, ok := data[marker]; ok {
			return true
		}
	}
	return false
}

func looksLikeTagTable(data map[string]any) bool {
	hits := 0
	for key, v := range data {
		if isTableMetaKey(key) {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := m["Name"]; ok {
			hits++
			continue
		}
		if _, ok := m["PrintConv"]; ok {
			hits++
			continue
		}
		if _, ok := m["SubDirectory"]; ok {
			hits++
			continue
		}
		return false
	}
	return hits > 0
}

func isTableMetaKey(key string) bool {
	switch key {
	case "GROUPS", "NOTES", "PROCESS_PROC", "WRITE_PROC", "CHECK_PROC", "0":
		return true
	default:
		return false
	}
}

func looksLikeSimpleTable(data map[string]any) bool {
	var kind string
	for _, v := range data {
		var this string
		switch v.(type) {
		case string:
			this = "string"
		case float64:
			this = "number"
		default:
			return false
		}
		if kind == "" {
			kind = this
		} else if kind != this {
			return false
		}
	}
	return len(data) > 0
}
