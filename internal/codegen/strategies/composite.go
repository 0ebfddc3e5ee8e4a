package strategies

import (
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/codegen/emit"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

// CompositeTagSpec is one composite/derived tag: its dependencies on other
// tags via Require/Desire/Inhibit, and its ValueConv expression operating
// over the resolved dependency values (spec §4.3 item 7).
type CompositeTagSpec struct {
	Name       string
	Require    []string // hard dependencies; missing any one skips this composite
	Desire     []string // soft dependencies; resolved when present, nil otherwise
	Inhibit    []string // presence of any of these suppresses this composite
	ValueConv  *ast.Node
	ManualName string // used when ValueConv is nil or has no native translation
}

// CompositeTagTableSpec is the already-classified input to the
// CompositeTagTable strategy.
type CompositeTagTableSpec struct {
	ConstantName string
	Tags         []CompositeTagSpec
}

// EmitCompositeTagTable renders a dependency-descriptor table (resolution
// order is left to the runtime, since it depends on which sibling tags a
// given image actually produced) plus a per-tag conversion function taking
// the map of already-resolved dependency values (spec §4.3 "emits a
// dependency graph plus per-tag conversion code").
func EmitCompositeTagTable(pkg string, spec CompositeTagTableSpec, convRegistry *registry.ConversionRegistry) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")

	f.Type().Id("CompositeTag").Struct(
		jen.Id("Name").String(),
		jen.Id("Require").Index().String(),
		jen.Id("Desire").Index().String(),
		jen.Id("Inhibit").Index().String(),
		jen.Id("ValueConv").Func().Params(jen.Id("deps").Map(jen.String()).Any()).Any(),
	)

	tags := append([]CompositeTagSpec(nil), spec.Tags...)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	elements := make([]jen.Code, 0, len(tags))
	manualNames := map[string]bool{}

	for _, tag := range tags {
		fn, err := compositeValueConvFunc(tag, convRegistry, manualNames)
		if err != nil {
			return nil, fmt.Errorf("composite_tags %s: tag %s: %w", spec.ConstantName, tag.Name, err)
		}

		elements = append(elements, jen.Values(jen.Dict{
			jen.Id("Name"):      jen.Lit(tag.Name),
			jen.Id("Require"):   stringSliceLiteral(tag.Require),
			jen.Id("Desire"):    stringSliceLiteral(tag.Desire),
			jen.Id("Inhibit"):   stringSliceLiteral(tag.Inhibit),
			jen.Id("ValueConv"): fn,
		}))
	}

	f.Var().Id(spec.ConstantName).Op("=").Index().Id("CompositeTag").Values(elements...)

	for name := range manualNames {
		f.Comment(fmt.Sprintf("%s needs a hand-written implementation; see the \"needs manual implementation\" report.", name))
		f.Func().Id(name).Params(jen.Id("deps").Map(jen.String()).Any()).Any().Block(
			jen.Panic(jen.Lit(fmt.Sprintf("%s: not implemented", name))),
		)
	}

	return f, nil
}

func compositeValueConvFunc(tag CompositeTagSpec, convRegistry *registry.ConversionRegistry, manualNames map[string]bool) (jen.Code, error) {
	if tag.ValueConv == nil {
		if tag.ManualName == "" {
			return jen.Nil(), nil
		}
		manualNames[tag.ManualName] = true
		return jen.Id(tag.ManualName), nil
	}

	body, err := emit.Expr(tag.ValueConv, convRegistry, "val", "deps")
	if err != nil {
		if _, isManual := err.(*emit.ManualFallback); isManual {
			if tag.ManualName == "" {
				return nil, fmt.Errorf("unparseable composite expression with no manual fallback name assigned")
			}
			manualNames[tag.ManualName] = true
			return jen.Id(tag.ManualName), nil
		}
		return nil, err
	}

	return jen.Func().Params(jen.Id("deps").Map(jen.String()).Any()).Any().Block(
		jen.Return(body),
	), nil
}

func stringSliceLiteral(values []string) jen.Code {
	codes := make([]jen.Code, len(values))
	for i, v := range values {
		codes[i] = jen.Lit(v)
	}
	return jen.Index().String().Values(codes...)
}
