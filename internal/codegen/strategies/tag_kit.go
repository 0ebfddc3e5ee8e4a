package strategies

import (
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/codegen/emit"
	"github.com/photostructure/exif-oxide-codegen/internal/model"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

// TagKitSpec is the already-assembled input to the TagKit strategy (spec
// §4.3 item 6, §4.4): one source tag-definition table, already grouped by
// tag id (internal/tagkit.GroupByID).
type TagKitSpec struct {
	ConstantName string // e.g. "CanonMainTagKits"
	Tags         map[string][]model.TagDefinition
}

// EmitTagKit renders the tag-kit array, an id-to-index map, and a manual
// function stub for every Conversion demoted to ConvManual (spec §4.4
// "Output"). Expressions the registry can translate natively are emitted
// inline; any it can't are demoted to ConvManual with a note, rather than
// failing the whole table (spec §7 "demoted to Manual").
func EmitTagKit(pkg string, spec TagKitSpec, convRegistry *registry.ConversionRegistry) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")

	f.Type().Id("TagKitSubDir").Struct(
		jen.Id("TagTable").String(),
		jen.Id("Condition").Func().Params(jen.Id("val").Any(), jen.Id("self").Map(jen.String()).Any()).Bool(),
		jen.Id("Validate").String(),
		jen.Id("ProcessProc").String(),
		jen.Id("ByteOrder").String(),
		jen.Id("Start").String(),
		jen.Id("Base").String(),
	)

	f.Type().Id("TagKit").Struct(
		jen.Id("ID").String(),
		jen.Id("Name").String(),
		jen.Id("Format").String(),
		jen.Id("Writable").String(),
		jen.Id("Groups").Map(jen.String()).String(),
		jen.Id("PrintConv").Func().Params(jen.Id("val").Any(), jen.Id("self").Map(jen.String()).Any()).Any(),
		jen.Id("ValueConv").Func().Params(jen.Id("val").Any(), jen.Id("self").Map(jen.String()).Any()).Any(),
		jen.Id("RawConv").Func().Params(jen.Id("val").Any(), jen.Id("self").Map(jen.String()).Any()).Any(),
		jen.Id("Condition").Func().Params(jen.Id("val").Any(), jen.Id("self").Map(jen.String()).Any()).Bool(),
		jen.Id("SubDirs").Index().Id("TagKitSubDir"),
	)

	ids := sortedTagIDs(spec.Tags)
	elements := make([]jen.Code, 0, len(ids))
	byID := map[string][]int{}
	manualNames := map[string]bool{}
	boolManualNames := map[string]bool{}

	for _, id := range ids {
		for _, def := range spec.Tags[id] {
			printConv, err := conversionFunc(def.PrintConv, convRegistry, manualNames)
			if err != nil {
				return nil, fmt.Errorf("tag_kit %s: tag %s PrintConv: %w", spec.ConstantName, def.Name, err)
			}
			valueConv, err := conversionFunc(def.ValueConv, convRegistry, manualNames)
			if err != nil {
				return nil, fmt.Errorf("tag_kit %s: tag %s ValueConv: %w", spec.ConstantName, def.Name, err)
			}
			rawConv, err := conversionFunc(def.RawConv, convRegistry, manualNames)
			if err != nil {
				return nil, fmt.Errorf("tag_kit %s: tag %s RawConv: %w", spec.ConstantName, def.Name, err)
			}
			condition, err := conditionFunc(def.Condition, fmt.Sprintf("Manual_%s_%s", def.Name, model.Condition), convRegistry, boolManualNames)
			if err != nil {
				return nil, fmt.Errorf("tag_kit %s: tag %s Condition: %w", spec.ConstantName, def.Name, err)
			}
			subDirs, err := subDirsLiteral(def.Name, def.SubDirs, convRegistry, boolManualNames)
			if err != nil {
				return nil, fmt.Errorf("tag_kit %s: tag %s SubDirectory: %w", spec.ConstantName, def.Name, err)
			}

			byID[id] = append(byID[id], len(elements))
			elements = append(elements, jen.Values(jen.Dict{
				jen.Id("ID"):        jen.Lit(def.ID),
				jen.Id("Name"):      jen.Lit(def.Name),
				jen.Id("Format"):    jen.Lit(def.Format),
				jen.Id("Writable"):  jen.Lit(def.Writable),
				jen.Id("Groups"):    groupsLiteral(def.Groups),
				jen.Id("PrintConv"): printConv,
				jen.Id("ValueConv"): valueConv,
				jen.Id("RawConv"):   rawConv,
				jen.Id("Condition"): condition,
				jen.Id("SubDirs"):   subDirs,
			}))
		}
	}

	f.Var().Id(spec.ConstantName).Op("=").Index().Id("TagKit").Values(elements...)

	indexDict := jen.Dict{}
	for id, positions := range byID {
		indexDict[jen.Lit(id)] = intSliceLiteral(positions)
	}
	f.Var().Id(spec.ConstantName + "ByID").Op("=").Map(jen.String()).Index().Int().Values(indexDict)

	// <ConstantName>Lookup dispatches among a tag id's conditional variants
	// (spec §4.4 scenario 6, §6 "dispatcher emitted at table level"),
	// returning the first whose Condition is nil or evaluates true against
	// the already-decoded value and sibling-tag map.
	f.Comment(spec.ConstantName + "Lookup returns the first variant of id, in declaration order, whose Condition")
	f.Comment("is nil or matches val/self, or (nil, false) if none does.")
	f.Func().Id(spec.ConstantName+"Lookup").Params(
		jen.Id("id").String(),
		jen.Id("val").Any(),
		jen.Id("self").Map(jen.String()).Any(),
	).Params(jen.Op("*").Id("TagKit"), jen.Bool()).Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("i")).Op(":=").Range().Id(spec.ConstantName+"ByID").Index(jen.Id("id"))).Block(
			jen.Id("kit").Op(":=").Op("&").Id(spec.ConstantName).Index(jen.Id("i")),
			jen.If(jen.Id("kit").Dot("Condition").Op("==").Nil().Op("||").Id("kit").Dot("Condition").Call(jen.Id("val"), jen.Id("self"))).Block(
				jen.Return(jen.Id("kit"), jen.True()),
			),
		),
		jen.Return(jen.Nil(), jen.False()),
	)

	for name := range manualNames {
		f.Comment(fmt.Sprintf("%s needs a hand-written implementation; see the \"needs manual implementation\" report.", name))
		f.Func().Id(name).Params(jen.Id("val").Any(), jen.Id("self").Map(jen.String()).Any()).Any().Block(
			jen.Panic(jen.Lit(fmt.Sprintf("%s: not implemented", name))),
		)
	}
	for name := range boolManualNames {
		f.Comment(fmt.Sprintf("%s needs a hand-written implementation; see the \"needs manual implementation\" report.", name))
		f.Func().Id(name).Params(jen.Id("val").Any(), jen.Id("self").Map(jen.String()).Any()).Bool().Block(
			jen.Panic(jen.Lit(fmt.Sprintf("%s: not implemented", name))),
		)
	}

	return f, nil
}

func intSliceLiteral(values []int) jen.Code {
	codes := make([]jen.Code, len(values))
	for i, v := range values {
		codes[i] = jen.Lit(v)
	}
	return jen.Index().Int().Values(codes...)
}

// conditionFunc renders a boolean-valued Condition/SubDirectory-candidate
// gate as a standalone function literal, falling back to a synthesized
// manual stub (registered in boolManualNames, rendered once at the end of
// EmitTagKit with a bool-returning signature distinct from conversionFunc's
// manual stubs) when the registry can't translate it.
func conditionFunc(cond *ast.Node, manualName string, convRegistry *registry.ConversionRegistry, boolManualNames map[string]bool) (jen.Code, error) {
	if cond == nil {
		return jen.Nil(), nil
	}

	body, err := emit.Expr(cond, convRegistry, "val", "self")
	if err != nil {
		if _, isManual := err.(*emit.ManualFallback); isManual {
			boolManualNames[manualName] = true
			return jen.Id(manualName), nil
		}
		return nil, err
	}
	return jen.Func().Params(jen.Id("val").Any(), jen.Id("self").Map(jen.String()).Any()).Bool().Block(
		jen.Return(body),
	), nil
}

// subDirsLiteral renders a tag's resolved subdirectory candidates (spec §4.4
// scenario 6, §6 "subdirectory-definition arrays keyed by tag id"). TagTable
// is emitted as the source-qualified name (e.g. "Canon::Main") rather than a
// cross-package reference, deferring resolution to the generated
// LoadTagTable lookup (spec §4.6).
func subDirsLiteral(tagName string, subDirs []model.SubDirectoryDef, convRegistry *registry.ConversionRegistry, boolManualNames map[string]bool) (jen.Code, error) {
	if len(subDirs) == 0 {
		return jen.Index().Id("TagKitSubDir").Values(), nil
	}
	elements := make([]jen.Code, 0, len(subDirs))
	for i, sd := range subDirs {
		manualName := fmt.Sprintf("Manual_%s_SubDirCondition_%d", tagName, i)
		condition, err := conditionFunc(sd.Condition, manualName, convRegistry, boolManualNames)
		if err != nil {
			return nil, err
		}
		elements = append(elements, jen.Values(jen.Dict{
			jen.Id("TagTable"):    jen.Lit(sd.TagTable),
			jen.Id("Condition"):   condition,
			jen.Id("Validate"):    jen.Lit(sd.Validate),
			jen.Id("ProcessProc"): jen.Lit(sd.ProcessProc),
			jen.Id("ByteOrder"):   jen.Lit(sd.ByteOrder),
			jen.Id("Start"):       jen.Lit(sd.Start),
			jen.Id("Base"):        jen.Lit(sd.Base),
		}))
	}
	return jen.Index().Id("TagKitSubDir").Values(elements...), nil
}

func conversionFunc(conv *model.Conversion, convRegistry *registry.ConversionRegistry, manualNames map[string]bool) (jen.Code, error) {
	if conv == nil || conv.Kind == model.ConvNone {
		return jen.Nil(), nil
	}

	switch conv.Kind {
	case model.ConvSimple:
		if conv.SharedRef != "" {
			return jen.Id(conv.SharedRef), nil
		}
		return inlineMapLiteral(conv.InlineMap), nil

	case model.ConvExpression:
		body, err := emit.Expr(conv.Expr, convRegistry, "val", "self")
		if err != nil {
			if _, isManual := err.(*emit.ManualFallback); isManual {
				manualNames[conv.ManualName] = true
				return jen.Id(conv.ManualName), nil
			}
			return nil, err
		}
		return jen.Func().Params(jen.Id("val").Any(), jen.Id("self").Map(jen.String()).Any()).Any().Block(
			jen.Return(body),
		), nil

	case model.ConvManual:
		manualNames[conv.ManualName] = true
		return jen.Id(conv.ManualName), nil

	default:
		return nil, fmt.Errorf("unhandled conversion kind %q", conv.Kind)
	}
}

func inlineMapLiteral(m map[string]string) jen.Code {
	keys := sortedKeys(m)
	dict := jen.Dict{}
	for _, k := range keys {
		dict[jen.Lit(k)] = jen.Lit(m[k])
	}
	return jen.Map(jen.String()).String().Values(dict)
}

func groupsLiteral(groups map[string]string) jen.Code {
	keys := sortedKeys(groups)
	dict := jen.Dict{}
	for _, k := range keys {
		dict[jen.Lit(k)] = jen.Lit(groups[k])
	}
	return jen.Map(jen.String()).String().Values(dict)
}

func sortedTagIDs(tags map[string][]model.TagDefinition) []string {
	ids := make([]string, 0, len(tags))
	for id := range tags {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
