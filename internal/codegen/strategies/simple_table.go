// Package strategies emits one Go source file per strategy (spec §4.3,
// §4.7): each Emit function takes the already-classified data for one
// symbol and returns a *jen.File ready for the output-location planner to
// write out.
package strategies

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dave/jennifer/jen"
)

// SimpleTableSpec is the already-classified input to the SimpleTable
// strategy (spec §4.3 item 4): a homogeneously-typed flat mapping of
// primitive keys to primitive values.
type SimpleTableSpec struct {
	ConstantName string
	KeyType      string // one of u8,u16,u32,i8,i16,i32,String
	ValueIsInt   bool
	Entries      map[string]string // always string-keyed on the wire; parsed per KeyType below
}

// EmitSimpleTable renders a frozen Go map literal for one SimpleTable
// symbol, keyed and typed per spec §6's key_type closed set.
func EmitSimpleTable(pkg string, spec SimpleTableSpec) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")

	goKeyType, err := goType(spec.KeyType)
	if err != nil {
		return nil, err
	}

	keys := sortedKeys(spec.Entries)
	dict := jen.Dict{}
	for _, k := range keys {
		keyCode, err := keyLiteral(spec.KeyType, k)
		if err != nil {
			return nil, err
		}
		v := spec.Entries[k]
		if spec.ValueIsInt {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("simple_table %s: value %q for key %q is not an integer: %w", spec.ConstantName, v, k, err)
			}
			dict[keyCode] = jen.Lit(n)
		} else {
			dict[keyCode] = jen.Lit(v)
		}
	}

	valueType := jen.String()
	if spec.ValueIsInt {
		valueType = jen.Int64()
	}

	f.Var().Id(spec.ConstantName).Op("=").Map(goKeyType).Add(valueType).Values(dict)
	return f, nil
}

func goType(keyType string) (jen.Code, error) {
	switch keyType {
	case "u8":
		return jen.Uint8(), nil
	case "u16":
		return jen.Uint16(), nil
	case "u32":
		return jen.Uint32(), nil
	case "i8":
		return jen.Int8(), nil
	case "i16":
		return jen.Int16(), nil
	case "i32":
		return jen.Int32(), nil
	case "String":
		return jen.String(), nil
	default:
		return nil, fmt.Errorf("unrecognized key_type %q", keyType)
	}
}

func keyLiteral(keyType, key string) (jen.Code, error) {
	if keyType == "String" {
		return jen.Lit(key), nil
	}
	n, err := strconv.ParseInt(key, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("key %q is not a valid integer for key_type %q: %w", key, keyType, err)
	}
	return jen.Lit(n), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
