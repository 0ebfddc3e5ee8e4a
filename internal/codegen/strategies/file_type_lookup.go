package strategies

import (
	"sort"

	"github.com/dave/jennifer/jen"
)

// FileTypeDescriptor is one entry of a FileTypeLookup table (spec §4.3 item
// 1): ExifTool's per-extension file-type discriminator records.
type FileTypeDescriptor struct {
	Extension   string
	Description string
	Formats     []string // the union of aliased/underlying formats this extension can resolve to
	MimeType    string
}

// FileTypeLookupSpec is the already-classified input to the FileTypeLookup
// strategy.
type FileTypeLookupSpec struct {
	ConstantName string
	TypeName     string // the generated struct type name
	Entries      []FileTypeDescriptor
}

// EmitFileTypeLookup renders a typed discriminated-union constant: a struct
// describing each file type, plus a frozen map from extension to
// descriptor (spec §4.3 "Emits a typed discriminated-union constant").
func EmitFileTypeLookup(pkg string, spec FileTypeLookupSpec) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")

	f.Type().Id(spec.TypeName).Struct(
		jen.Id("Description").String(),
		jen.Id("Formats").Index().String(),
		jen.Id("MimeType").String(),
	)

	entries := append([]FileTypeDescriptor(nil), spec.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Extension < entries[j].Extension })

	dict := jen.Dict{}
	for _, e := range entries {
		formats := make([]jen.Code, len(e.Formats))
		for i, fmtName := range e.Formats {
			formats[i] = jen.Lit(fmtName)
		}
		dict[jen.Lit(e.Extension)] = jen.Values(jen.Dict{
			jen.Id("Description"): jen.Lit(e.Description),
			jen.Id("Formats"):      jen.Index().String().Values(formats...),
			jen.Id("MimeType"):     jen.Lit(e.MimeType),
		})
	}

	f.Var().Id(spec.ConstantName).Op("=").Map(jen.String()).Id(spec.TypeName).Values(dict)
	return f, nil
}
