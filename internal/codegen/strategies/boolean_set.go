package strategies

import (
	"github.com/dave/jennifer/jen"
)

// BooleanSetSpec is the already-classified input to the BooleanSet strategy
// (spec §4.3 item 3): symbols whose values are all 1 (or all true).
type BooleanSetSpec struct {
	ConstantName string
	KeyType      string // usually "String", occasionally a numeric key_type
	Keys         []string
}

// EmitBooleanSet renders a frozen Go set (map[K]struct{}) for one
// BooleanSet symbol.
func EmitBooleanSet(pkg string, spec BooleanSetSpec) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")

	goKeyType, err := goType(spec.KeyType)
	if err != nil {
		return nil, err
	}

	dict := jen.Dict{}
	for _, k := range spec.Keys {
		keyCode, err := keyLiteral(spec.KeyType, k)
		if err != nil {
			return nil, err
		}
		dict[keyCode] = jen.Struct()
	}

	f.Var().Id(spec.ConstantName).Op("=").Map(goKeyType).Struct().Values(dict)
	return f, nil
}
