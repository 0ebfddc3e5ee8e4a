package strategies

import (
	"github.com/dave/jennifer/jen"
)

// InlineEnumSpec is the already-seeded input to the InlineEnum strategy
// (spec §4.3 item 8): a small, named enumeration-shaped mapping embedded in
// an otherwise-complex module, identified by a companion config rather than
// structural inference alone.
type InlineEnumSpec struct {
	ConstantName string
	Entries      map[string]string // numeric-or-string key, per source, to label
}

// EmitInlineEnum renders a frozen Go map literal, identical in shape to
// SimpleTable's output but kept as its own strategy since the classifier
// reaches it only via seeding, not structural inference (spec §4.3
// "seeded from a companion config").
func EmitInlineEnum(pkg string, spec InlineEnumSpec) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")

	keys := sortedKeys(spec.Entries)
	dict := jen.Dict{}
	for _, k := range keys {
		dict[jen.Lit(k)] = jen.Lit(spec.Entries[k])
	}

	f.Var().Id(spec.ConstantName).Op("=").Map(jen.String()).String().Values(dict)
	return f, nil
}
