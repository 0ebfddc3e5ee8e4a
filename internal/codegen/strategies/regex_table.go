package strategies

import (
	"fmt"
	"regexp"

	"github.com/dave/jennifer/jen"

	"github.com/photostructure/exif-oxide-codegen/internal/codegen/emit"
)

// RegexPattern is one entry of a RegexTable symbol: a named pattern plus
// whatever byte-pattern pre-processing recovered its raw bytes (spec §4.1
// binary-pattern pre-processor, §9 "Binary-in-regex").
type RegexPattern struct {
	Name    string
	Pattern string
	// Incompatible names the unsupported regex feature (lookaround,
	// backreference, possessive quantifier, atomic group, conditional
	// pattern) when the target engine (Go's RE2-based regexp) can't express
	// this pattern (spec §7 RegexIncompatible). Empty when compatible.
	Incompatible string
}

// RegexTableSpec is the already-classified input to the RegexTable strategy
// (spec §4.3 item 2): symbols where every value is a binary regex or raw
// byte pattern.
type RegexTableSpec struct {
	ConstantName string
	Patterns     []RegexPattern
}

// EmitRegexTable renders one precompiled-pattern constant per entry plus a
// lookup map keyed by the source hash's key, using regexp.MustCompile
// (spec §4.3 "Emits a table of precompiled patterns") and documenting every
// pattern rejected as RE2-incompatible as a commented-out entry (spec §7).
func EmitRegexTable(pkg string, spec RegexTableSpec) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")

	dict := jen.Dict{}
	for _, p := range spec.Patterns {
		ident := emit.CompiledPatternIdent(p.Pattern)

		if p.Incompatible != "" {
			f.Commentf("%s: rejected, pattern uses %s which RE2 cannot express: %s", p.Name, p.Incompatible, p.Pattern)
			continue
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return nil, fmt.Errorf("regex_table %s: pattern %q for key %q does not compile: %w", spec.ConstantName, p.Pattern, p.Name, err)
		}

		f.Var().Id(ident).Op("=").Qual("regexp", "MustCompile").Call(jen.Lit(p.Pattern))
		dict[jen.Lit(p.Name)] = jen.Id(ident)
	}

	f.Var().Id(spec.ConstantName).Op("=").Map(jen.String()).Op("*").Qual("regexp", "Regexp").Values(dict)
	return f, nil
}
