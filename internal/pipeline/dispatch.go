package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/classify"
	"github.com/photostructure/exif-oxide-codegen/internal/codegen/strategies"
	"github.com/photostructure/exif-oxide-codegen/internal/extractor"
	"github.com/photostructure/exif-oxide-codegen/internal/model"
	"github.com/photostructure/exif-oxide-codegen/internal/normalizer"
	"github.com/photostructure/exif-oxide-codegen/internal/planner"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
	"github.com/photostructure/exif-oxide-codegen/internal/subdir"
	"github.com/photostructure/exif-oxide-codegen/internal/tagkit"
)

// dispatch builds the strategy-specific spec for sym (already classified as
// strat) and writes its generated file via the planner. It never fails the
// whole module: an error here is logged as a per-symbol warning by the
// caller and the symbol is skipped.
func (p *Pipeline) dispatch(m model.Module, sym model.Symbol, strat classify.Strategy) (dest string, manualNames []string, autoConverted, flaggedManual, regexRejected int, err error) {
	constant := constantName(m.Package, sym.Name)

	switch strat {
	case classify.SimpleTable:
		spec, buildErr := buildSimpleTableSpec(constant, sym)
		if buildErr != nil {
			return "", nil, 0, 0, 0, buildErr
		}
		f, emitErr := strategies.EmitSimpleTable(m.Package, spec)
		if emitErr != nil {
			return "", nil, 0, 0, 0, emitErr
		}
		dest, err = p.Planner.Write(planner.Plan{Module: m.Package, Strategy: string(strat), File: f})
		return dest, nil, 0, 0, 0, err

	case classify.BooleanSet:
		spec, buildErr := buildBooleanSetSpec(constant, sym)
		if buildErr != nil {
			return "", nil, 0, 0, 0, buildErr
		}
		f, emitErr := strategies.EmitBooleanSet(m.Package, spec)
		if emitErr != nil {
			return "", nil, 0, 0, 0, emitErr
		}
		dest, err = p.Planner.Write(planner.Plan{Module: m.Package, Strategy: string(strat), File: f})
		return dest, nil, 0, 0, 0, err

	case classify.RegexTable:
		spec, rejected, buildErr := buildRegexTableSpec(constant, sym)
		if buildErr != nil {
			return "", nil, 0, 0, 0, buildErr
		}
		f, emitErr := strategies.EmitRegexTable(m.Package, spec)
		if emitErr != nil {
			return "", nil, 0, 0, 0, emitErr
		}
		dest, err = p.Planner.Write(planner.Plan{Module: m.Package, Strategy: string(strat), File: f})
		return dest, nil, 0, 0, rejected, err

	case classify.FileTypeLookup:
		spec, buildErr := buildFileTypeLookupSpec(constant, sym)
		if buildErr != nil {
			return "", nil, 0, 0, 0, buildErr
		}
		f, emitErr := strategies.EmitFileTypeLookup(m.Package, spec)
		if emitErr != nil {
			return "", nil, 0, 0, 0, emitErr
		}
		dest, err = p.Planner.Write(planner.Plan{Module: m.Package, Strategy: string(strat), File: f})
		return dest, nil, 0, 0, 0, err

	case classify.InlineEnum:
		spec, buildErr := buildInlineEnumSpec(constant, sym)
		if buildErr != nil {
			return "", nil, 0, 0, 0, buildErr
		}
		f, emitErr := strategies.EmitInlineEnum(m.Package, spec)
		if emitErr != nil {
			return "", nil, 0, 0, 0, emitErr
		}
		dest, err = p.Planner.Write(planner.Plan{Module: m.Package, Strategy: string(strat), File: f})
		return dest, nil, 0, 0, 0, err

	case classify.TagKit:
		table, tagErr := p.buildTagTable(m, sym)
		if tagErr != nil {
			return "", nil, 0, 0, 0, tagErr
		}
		manuals := collectManualNames(table.Tags)
		f, emitErr := strategies.EmitTagKit(m.Package, strategies.TagKitSpec{ConstantName: constant, Tags: table.Tags}, p.ConvRegistry)
		if emitErr != nil {
			return "", nil, 0, 0, 0, emitErr
		}
		dest, err = p.Planner.Write(planner.Plan{Module: m.Package, Strategy: string(strat), File: f})
		p.registerTable(m, sym, constant, strat, false, "", 0)
		auto, manual := countConversionOutcomes(table.Tags)
		return dest, manuals, auto, manual, 0, err

	case classify.RuntimeBinaryDataTable:
		spec, buildErr := p.buildRuntimeTableSpec(constant, sym)
		if buildErr != nil {
			return "", nil, 0, 0, 0, buildErr
		}
		f, emitErr := strategies.EmitRuntimeBinaryDataTable(m.Package, spec, p.ConvRegistry)
		if emitErr != nil {
			return "", nil, 0, 0, 0, emitErr
		}
		dest, err = p.Planner.Write(planner.Plan{Module: m.Package, Strategy: string(strat), File: f})
		p.registerTable(m, sym, constant, strat, true, spec.DefaultFormat, spec.FirstEntry)
		return dest, nil, 0, 0, 0, err

	case classify.CompositeTagTable:
		spec, manuals, buildErr := p.buildCompositeTagTableSpec(m, constant, sym)
		if buildErr != nil {
			return "", nil, 0, 0, 0, buildErr
		}
		f, emitErr := strategies.EmitCompositeTagTable(m.Package, spec, p.ConvRegistry)
		if emitErr != nil {
			return "", nil, 0, 0, 0, emitErr
		}
		dest, err = p.Planner.Write(planner.Plan{Module: m.Package, Strategy: string(strat), File: f})
		p.registerTable(m, sym, constant, strat, false, "", 0)
		return dest, manuals, 0, 0, 0, err

	default: // classify.Other, and anything else unclassifiable
		f, emitErr := strategies.EmitOther(m.Package, strategies.OtherSpec{ConstantName: constant, SourceName: sym.Name, Module: m.Package})
		if emitErr != nil {
			return "", nil, 0, 0, 0, emitErr
		}
		dest, err = p.Planner.Write(planner.Plan{Module: m.Package, Strategy: string(classify.Other), File: f})
		return dest, []string{constant + "Unclassified"}, 0, 0, 0, err
	}
}

// registerTable records a load_tag_table-dispatchable table's generated
// location in the shared table registry, keyed by its fully-qualified
// source name (e.g. "Canon::Main"), so sibling modules' SubDirectory
// references can resolve against it (spec §4.6) and `registry verify` can
// round-trip it later. A nil TableRegistry (e.g. in unit tests) is a no-op.
func (p *Pipeline) registerTable(m model.Module, sym model.Symbol, constant string, strat classify.Strategy, isBinaryData bool, defaultFormat string, firstEntry int) {
	if p.TableRegistry == nil {
		return
	}
	p.TableRegistry.Register(registry.TableRegistration{
		SourceName:      m.Package + "::" + sym.Name,
		Module:          m.Package,
		ConstantName:    constant,
		Strategy:        string(strat),
		IsBinaryData:    isBinaryData,
		DefaultFormat:   defaultFormat,
		FirstEntryIndex: firstEntry,
	})
}

func constantName(module, symbol string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, symbol)
	clean = strings.Trim(clean, "_")
	if clean == "" {
		return module
	}
	return module + strings.ToUpper(clean[:1]) + clean[1:]
}

func buildSimpleTableSpec(constant string, sym model.Symbol) (strategies.SimpleTableSpec, error) {
	entries, valueIsInt, err := stringMapEntries(sym.Data)
	if err != nil {
		return strategies.SimpleTableSpec{}, fmt.Errorf("simple_table %s: %w", sym.Name, err)
	}
	keyType := "String"
	if sym.Type == model.ArraySymbol {
		keyType = "u16"
	}
	return strategies.SimpleTableSpec{ConstantName: constant, KeyType: keyType, ValueIsInt: valueIsInt, Entries: entries}, nil
}

func buildBooleanSetSpec(constant string, sym model.Symbol) (strategies.BooleanSetSpec, error) {
	keys := make([]string, 0, len(sym.Data))
	for k := range sym.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strategies.BooleanSetSpec{ConstantName: constant, KeyType: "String", Keys: keys}, nil
}

func buildRegexTableSpec(constant string, sym model.Symbol) (strategies.RegexTableSpec, int, error) {
	patterns := make([]strategies.RegexPattern, 0, len(sym.Data))
	rejected := 0
	keys := sortedDataKeys(sym.Data)
	for _, k := range keys {
		v, ok := sym.Data[k].(string)
		if !ok {
			return strategies.RegexTableSpec{}, rejected, fmt.Errorf("regex_table %s: value for key %q is not a string pattern", sym.Name, k)
		}

		// Binary magic-number patterns carry raw, possibly non-UTF8 byte
		// sequences; run them through the binary-pattern pre-processor
		// before anything downstream treats the pattern as plain text, and
		// confirm the byte sequence round-trips exactly (spec §4.1,
		// Testable Property 9).
		processed, components := extractor.PreprocessBinary(v)
		if reconstructed := extractor.ReconstructBinary(processed, components); reconstructed != v {
			return strategies.RegexTableSpec{}, rejected, fmt.Errorf("regex_table %s: pattern %q did not round-trip through binary preprocessing", sym.Name, k)
		}

		incompatible := regexIncompatibility(processed)
		if incompatible != "" {
			rejected++
		}
		patterns = append(patterns, strategies.RegexPattern{Name: k, Pattern: v, Incompatible: incompatible})
	}
	return strategies.RegexTableSpec{ConstantName: constant, Patterns: patterns}, rejected, nil
}

// regexIncompatibility reports the RE2-unsupported feature name a pattern
// uses, or "" if it is expressible (spec §7 RegexIncompatible).
func regexIncompatibility(pattern string) string {
	switch {
	case strings.Contains(pattern, "(?="), strings.Contains(pattern, "(?!"), strings.Contains(pattern, "(?<="), strings.Contains(pattern, "(?<!"):
		return "lookaround"
	case strings.Contains(pattern, `\1`), strings.Contains(pattern, `\2`):
		return "backreference"
	case strings.Contains(pattern, "?+"), strings.Contains(pattern, "*+"), strings.Contains(pattern, "++"):
		return "possessive quantifier"
	case strings.Contains(pattern, "(?>"):
		return "atomic group"
	case strings.Contains(pattern, "(?("):
		return "conditional pattern"
	default:
		return ""
	}
}

func buildFileTypeLookupSpec(constant string, sym model.Symbol) (strategies.FileTypeLookupSpec, error) {
	entries := make([]strategies.FileTypeDescriptor, 0, len(sym.Data))
	for ext, raw := range sym.Data {
		row, ok := raw.(map[string]any)
		if !ok {
			return strategies.FileTypeLookupSpec{}, fmt.Errorf("file_type_lookup %s: entry %q is not a record", sym.Name, ext)
		}
		entries = append(entries, strategies.FileTypeDescriptor{
			Extension:   ext,
			Description: stringField(row, "Description"),
			Formats:     stringSliceField(row, "Format", "Formats"),
			MimeType:    stringField(row, "MimeType", "Mimetype"),
		})
	}
	return strategies.FileTypeLookupSpec{ConstantName: constant, TypeName: constant + "Info", Entries: entries}, nil
}

func buildInlineEnumSpec(constant string, sym model.Symbol) (strategies.InlineEnumSpec, error) {
	entries, _, err := stringMapEntries(sym.Data)
	if err != nil {
		return strategies.InlineEnumSpec{}, fmt.Errorf("inline_enum %s: %w", sym.Name, err)
	}
	return strategies.InlineEnumSpec{ConstantName: constant, Entries: entries}, nil
}

// buildTagTable converts a classified TagKit symbol's sanitized hash into a
// model.TagTable, normalizing every embedded expression field and running
// it through the tag-kit assembler (spec §4.4).
func (p *Pipeline) buildTagTable(m model.Module, sym model.Symbol) (model.TagTable, error) {
	defs := make([]model.TagDefinition, 0, len(sym.Data))
	keys := sortedDataKeys(sym.Data)
	for _, id := range keys {
		switch raw := sym.Data[id].(type) {
		case map[string]any:
			def, err := p.buildTagDefinition(m, sym.Name, id, raw)
			if err != nil {
				return model.TagTable{}, err
			}
			defs = append(defs, def)

		case []any:
			// Multiple conditional variants sharing one tag id (spec §4.4
			// "conditional variants", scenario 6): one model.TagDefinition
			// per row, grouped back together by id below.
			for _, rawVariant := range raw {
				row, ok := rawVariant.(map[string]any)
				if !ok {
					continue
				}
				def, err := p.buildTagDefinition(m, sym.Name, id, row)
				if err != nil {
					return model.TagTable{}, err
				}
				defs = append(defs, def)
			}

		default:
			continue // metadata keys (e.g. GROUPS, WRITE_PROC); not a tag entry
		}
	}
	return model.TagTable{Module: m.Package, Name: sym.Name, Tags: tagkit.GroupByID(defs)}, nil
}

func (p *Pipeline) buildTagDefinition(m model.Module, tableName, id string, raw map[string]any) (model.TagDefinition, error) {
	name := stringField(raw, "Name")
	if name == "" {
		name = id
	}

	printConv, autoErr := p.buildConversion(m, tableName, name, model.PrintConv, raw["PrintConv"], raw["PrintConv_ast"], stringField(raw, "PrintConv_note"))
	if autoErr != nil {
		return model.TagDefinition{}, autoErr
	}
	valueConv, autoErr := p.buildConversion(m, tableName, name, model.ValueConv, raw["ValueConv"], raw["ValueConv_ast"], stringField(raw, "ValueConv_note"))
	if autoErr != nil {
		return model.TagDefinition{}, autoErr
	}
	rawConv, autoErr := p.buildConversion(m, tableName, name, model.RawConv, raw["RawConv"], raw["RawConv_ast"], stringField(raw, "RawConv_note"))
	if autoErr != nil {
		return model.TagDefinition{}, autoErr
	}
	printConvResolved := tagkit.AssembleConversion(name, model.PrintConv, *printConv, p.SharedMappings, p.ConvRegistry)
	valueConvResolved := tagkit.AssembleConversion(name, model.ValueConv, *valueConv, p.SharedMappings, p.ConvRegistry)
	rawConvResolved := tagkit.AssembleConversion(name, model.RawConv, *rawConv, p.SharedMappings, p.ConvRegistry)

	condition, condErr := p.buildConditionAST(m, name, raw["Condition_ast"])
	if condErr != nil {
		return model.TagDefinition{}, condErr
	}

	groups := map[string]string{}
	if g, ok := raw["Groups"].(map[string]any); ok {
		for k, v := range g {
			if s, ok := v.(string); ok {
				groups[k] = s
			}
		}
	}

	subDirs, err := p.buildSubDirs(m, name, raw["SubDirectory"])
	if err != nil {
		return model.TagDefinition{}, err
	}
	if len(subDirs) > 0 && p.TableRegistry != nil {
		if _, resolveErrs := subdir.Resolve(subDirs, p.TableRegistry); len(resolveErrs) > 0 && p.Log != nil {
			for _, e := range resolveErrs {
				p.Log.Warnw("unresolved subdirectory reference", "module", m.Package, "tag", name, "error", e)
			}
		}
	}

	return tagkit.Assemble(id, name, stringField(raw, "Format"), stringField(raw, "Writable"), groups, printConvResolved, valueConvResolved, rawConvResolved, condition, subDirs), nil
}

// buildConversion resolves one PrintConv/ValueConv/RawConv field into a
// tagkit.RawConversion. raw is the field's own value (inline map, shared-ref
// string, \&Sub reference, or a bare string ExifTool evaluates as Perl);
// astTokens is the sibling <Field>_ast the field extractor attaches when it
// recognized and parsed an expression; note is the sibling <Field>_note
// attached when it recognized an expression but could not parse it, or found
// an OTHER handler requiring a hand-written implementation (spec §4.1 step
// 5, §6 wire contract).
func (p *Pipeline) buildConversion(m model.Module, tableName, tagName string, field model.ExprField, raw, astTokens any, note string) (*tagkit.RawConversion, error) {
	if tokens, ok := astTokens.([]any); ok {
		decoded, err := decodeTokens(tokens)
		if err != nil {
			return nil, fmt.Errorf("%s %s.%s: decode tokens: %w", field, tableName, tagName, err)
		}
		node, normErr := normalizer.Normalize(m.Package, tagName, decoded)
		if normErr != nil {
			return &tagkit.RawConversion{Unparsed: true}, nil
		}
		return &tagkit.RawConversion{Expr: node}, nil
	}

	if note != "" {
		return &tagkit.RawConversion{Unparsed: true}, nil
	}

	if raw == nil {
		return &tagkit.RawConversion{}, nil
	}

	switch v := raw.(type) {
	case map[string]any:
		inline, _, err := stringMapEntries(v)
		if err != nil {
			return nil, fmt.Errorf("%s %s.%s: %w", field, tableName, tagName, err)
		}
		return &tagkit.RawConversion{InlineMap: inline}, nil

	case string:
		switch {
		case strings.HasPrefix(v, `\&`):
			return &tagkit.RawConversion{SubRef: v}, nil
		case looksLikeSharedRef(v):
			return &tagkit.RawConversion{SharedRef: v}, nil
		default:
			// A bare string the field extractor didn't recognize as an
			// expression is still something ExifTool evaluates as Perl at
			// read/write time; it needs a hand-written implementation, not
			// silent treatment as "field absent" (spec §4.4, §7 Manual).
			return &tagkit.RawConversion{Unparsed: true}, nil
		}

	case []any:
		tokens, err := decodeTokens(v)
		if err != nil {
			return nil, fmt.Errorf("%s %s.%s: decode tokens: %w", field, tableName, tagName, err)
		}
		node, normErr := normalizer.Normalize(m.Package, tagName, tokens)
		if normErr != nil {
			return &tagkit.RawConversion{Unparsed: true}, nil
		}
		return &tagkit.RawConversion{Expr: node}, nil

	default:
		return &tagkit.RawConversion{Unparsed: true}, nil
	}
}

// buildConditionAST decodes and normalizes a tag's Condition_ast sibling, if
// the field extractor recognized and parsed one (spec §4.4 "Condition...
// discriminates between conditional variants of the same tag id").
func (p *Pipeline) buildConditionAST(m model.Module, tagName string, astTokens any) (*ast.Node, error) {
	tokens, ok := astTokens.([]any)
	if !ok {
		return nil, nil
	}
	decoded, err := decodeTokens(tokens)
	if err != nil {
		return nil, fmt.Errorf("Condition %s: decode tokens: %w", tagName, err)
	}
	node, normErr := normalizer.Normalize(m.Package, tagName, decoded)
	if normErr != nil {
		return nil, nil // unparseable condition: treated as always-applicable by the assembler
	}
	return node, nil
}

func looksLikeSharedRef(v string) bool {
	return strings.HasPrefix(v, "\\%") || strings.HasPrefix(v, "%")
}

// buildSubDirs normalizes a tag's SubDirectory field, which ExifTool
// represents either as a single candidate record or, when a tag has multiple
// conditional subdirectory targets, as an array of candidate records (spec
// §4.4 scenario 6). Each candidate's own Condition_ast/Validate are read
// alongside the existing TagTable/ProcessProc/ByteOrder/Start/Base.
func (p *Pipeline) buildSubDirs(m model.Module, tagName string, raw any) ([]model.SubDirectoryDef, error) {
	if raw == nil {
		return nil, nil
	}

	var rows []map[string]any
	switch v := raw.(type) {
	case map[string]any:
		rows = []map[string]any{v}
	case []any:
		for _, e := range v {
			if row, ok := e.(map[string]any); ok {
				rows = append(rows, row)
			}
		}
	default:
		return nil, nil
	}

	defs := make([]model.SubDirectoryDef, 0, len(rows))
	for _, row := range rows {
		condition, err := p.buildConditionAST(m, tagName, row["Condition_ast"])
		if err != nil {
			return nil, err
		}
		defs = append(defs, model.SubDirectoryDef{
			TagTable:    stringField(row, "TagTable"),
			Condition:   condition,
			Validate:    stringField(row, "Validate"),
			ProcessProc: stringField(row, "ProcessProc"),
			ByteOrder:   stringField(row, "ByteOrder"),
			Start:       stringField(row, "Start"),
			Base:        stringField(row, "Base"),
		})
	}
	return defs, nil
}

func (p *Pipeline) buildRuntimeTableSpec(constant string, sym model.Symbol) (strategies.RuntimeBinaryDataTableSpec, error) {
	fields := make([]strategies.RuntimeFieldSpec, 0, len(sym.Data))
	defaultFormat := stringField(sym.Data, "FORMAT")
	firstEntry := 0
	if v, ok := sym.Data["FIRST_ENTRY"]; ok {
		if f, ok := v.(float64); ok {
			firstEntry = int(f)
		}
	}
	for k, raw := range sym.Data {
		if strings.HasPrefix(k, "PROCESS_") || k == "FORMAT" || k == "FIRST_ENTRY" || k == "GROUPS" {
			continue
		}
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fields = append(fields, strategies.RuntimeFieldSpec{
			Offset: k,
			Name:   stringField(row, "Name"),
			Format: stringField(row, "Format"),
		})
	}
	return strategies.RuntimeBinaryDataTableSpec{ConstantName: constant, DefaultFormat: defaultFormat, FirstEntry: firstEntry, Fields: fields}, nil
}

func (p *Pipeline) buildCompositeTagTableSpec(m model.Module, constant string, sym model.Symbol) (strategies.CompositeTagTableSpec, []string, error) {
	tags := make([]strategies.CompositeTagSpec, 0, len(sym.Data))
	var manuals []string
	keys := sortedDataKeys(sym.Data)
	for _, name := range keys {
		row, ok := sym.Data[name].(map[string]any)
		if !ok {
			continue
		}
		manualName := constant + "_" + name + "_ValueConv"
		tag := strategies.CompositeTagSpec{
			Name:    name,
			Require: stringListField(row, "Require"),
			Desire:  stringListField(row, "Desire"),
			Inhibit: stringListField(row, "Inhibit"),
		}

		// A composite's ValueConv resolves $self-equivalent access against
		// its dependency map (Require/Desire), not sibling tag fields, but
		// it is still PPI-tokenized the same way a regular tag's ValueConv
		// is, so it goes through the same decode/normalize path.
		if raw, ok := row["ValueConv"].([]any); ok {
			if node, err := decodeAndNormalizeComposite(m, name, raw); err == nil && node.Class != ast.Unrecognized {
				tag.ValueConv = node
			} else {
				tag.ManualName = manualName
				manuals = append(manuals, manualName)
			}
		} else if row["ValueConv"] != nil {
			tag.ManualName = manualName
			manuals = append(manuals, manualName)
		}

		tags = append(tags, tag)
	}
	return strategies.CompositeTagTableSpec{ConstantName: constant, Tags: tags}, manuals, nil
}

func decodeAndNormalizeComposite(m model.Module, tagName string, raw []any) (*ast.Node, error) {
	tokens, err := decodeTokens(raw)
	if err != nil {
		return nil, err
	}
	return normalizer.Normalize(m.Package, tagName, tokens)
}

func collectManualNames(tags map[string][]model.TagDefinition) []string {
	var names []string
	for _, defs := range tags {
		for _, d := range defs {
			for _, c := range []*model.Conversion{d.PrintConv, d.ValueConv, d.RawConv} {
				if c != nil && c.Kind == model.ConvManual && c.ManualName != "" {
					names = append(names, c.ManualName)
				}
			}
		}
	}
	sort.Strings(names)
	return names
}

func countConversionOutcomes(tags map[string][]model.TagDefinition) (auto, manual int) {
	for _, defs := range tags {
		for _, d := range defs {
			for _, c := range []*model.Conversion{d.PrintConv, d.ValueConv, d.RawConv} {
				if c == nil {
					continue
				}
				switch c.Kind {
				case model.ConvExpression:
					auto++
				case model.ConvManual:
					manual++
				}
			}
		}
	}
	return auto, manual
}

func decodeTokens(raw []any) ([]*ast.Node, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var nodes []*ast.Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func stringMapEntries(data map[string]any) (map[string]string, bool, error) {
	entries := make(map[string]string, len(data))
	allInt := len(data) > 0
	for k, v := range data {
		switch x := v.(type) {
		case string:
			allInt = false
			entries[k] = x
		case float64:
			entries[k] = trimFloat(x)
		default:
			return nil, false, fmt.Errorf("unsupported value type %T for key %q", v, k)
		}
	}
	return entries, allInt, nil
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func sortedDataKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringField(row map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k].(string); ok {
			return v
		}
	}
	return ""
}

func stringSliceField(row map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch v := row[k].(type) {
		case string:
			return []string{v}
		case []any:
			out := make([]string, 0, len(v))
			for _, e := range v {
				if s, ok := e.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return nil
}

func stringListField(row map[string]any, key string) []string {
	switch v := row[key].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
