package strategies

import (
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/codegen/emit"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

// RuntimeFieldSpec is one positional field descriptor of a
// ProcessBinaryData table (spec §4.3 item 5): its byte offset (as a string
// since ExifTool allows offset expressions like "0.1" for bitfields), name,
// format, and an optional gating condition.
type RuntimeFieldSpec struct {
	Offset    string
	Name      string
	Format    string // defaults to the table's DefaultFormat when empty
	Condition *ast.Node
}

// RuntimeBinaryDataTableSpec is the already-classified input to the
// RuntimeBinaryDataTable strategy.
type RuntimeBinaryDataTableSpec struct {
	ConstantName  string
	DefaultFormat string
	FirstEntry    int // FIRST_ENTRY, the index the first positional field starts at
	Fields        []RuntimeFieldSpec
}

// EmitRuntimeBinaryDataTable renders a factory function constructing a
// table of field descriptors, preserving format strings, first-entry
// index, default format, and condition expressions (spec §4.3 item 5).
func EmitRuntimeBinaryDataTable(pkg string, spec RuntimeBinaryDataTableSpec, convRegistry *registry.ConversionRegistry) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")

	f.Type().Id("BinaryField").Struct(
		jen.Id("Offset").String(),
		jen.Id("Name").String(),
		jen.Id("Format").String(),
		jen.Id("Condition").Func().Params(jen.Id("self").Map(jen.String()).Any()).Bool(),
	)

	f.Type().Id("BinaryDataTable").Struct(
		jen.Id("DefaultFormat").String(),
		jen.Id("FirstEntry").Int(),
		jen.Id("Fields").Index().Id("BinaryField"),
	)

	fields := append([]RuntimeFieldSpec(nil), spec.Fields...)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Offset < fields[j].Offset })

	elements := make([]jen.Code, 0, len(fields))
	for _, field := range fields {
		format := field.Format
		if format == "" {
			format = spec.DefaultFormat
		}

		cond := jen.Nil()
		if field.Condition != nil {
			body, err := emit.Expr(field.Condition, convRegistry, "val", "self")
			if err != nil {
				if _, isManual := err.(*emit.ManualFallback); isManual {
					body = jen.Lit(true) // condition has no native translation; the field is treated as always present and the substitution is not recorded
				} else {
					return nil, err
				}
			}
			cond = jen.Func().Params(jen.Id("self").Map(jen.String()).Any()).Bool().Block(
				jen.Return(body),
			)
		}

		elements = append(elements, jen.Values(jen.Dict{
			jen.Id("Offset"):    jen.Lit(field.Offset),
			jen.Id("Name"):      jen.Lit(field.Name),
			jen.Id("Format"):    jen.Lit(format),
			jen.Id("Condition"): cond,
		}))
	}

	f.Func().Id("New" + spec.ConstantName).Params().Op("*").Id("BinaryDataTable").Block(
		jen.Return(jen.Op("&").Id("BinaryDataTable").Values(jen.Dict{
			jen.Id("DefaultFormat"): jen.Lit(spec.DefaultFormat),
			jen.Id("FirstEntry"):    jen.Lit(spec.FirstEntry),
			jen.Id("Fields"):        jen.Index().Id("BinaryField").Values(elements...),
		})),
	)

	return f, nil
}
