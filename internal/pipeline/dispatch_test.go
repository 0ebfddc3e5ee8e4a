package pipeline

import (
	"strings"
	"testing"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
	"github.com/photostructure/exif-oxide-codegen/internal/codegen/strategies"
	"github.com/photostructure/exif-oxide-codegen/internal/model"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

func TestConstantNameSanitizesSourceNames(t *testing.T) {
	got := constantName("Canon", "canonModelID")
	if got != "CanonCanonModelID" {
		t.Fatalf("constantName = %q", got)
	}
	got = constantName("Canon", "%canon::lensTypes")
	if !strings.HasPrefix(got, "Canon") || strings.ContainsAny(got, "%:") {
		t.Fatalf("constantName with punctuation should be a valid identifier suffix, got %q", got)
	}
}

func TestBuildSimpleTableSpecFromStringValues(t *testing.T) {
	sym := model.Symbol{Name: "canonLensTypes", Data: map[string]any{"1": "Canon EF 50mm", "2": "Canon EF 28mm"}}
	spec, err := buildSimpleTableSpec("CanonLensTypes", sym)
	if err != nil {
		t.Fatalf("buildSimpleTableSpec: %v", err)
	}
	if spec.ValueIsInt {
		t.Fatalf("expected string values, got ValueIsInt=true")
	}
	if spec.Entries["1"] != "Canon EF 50mm" {
		t.Fatalf("unexpected entries: %v", spec.Entries)
	}
}

func TestBuildRegexTableSpecFlagsIncompatiblePatterns(t *testing.T) {
	sym := model.Symbol{Name: "magicNumbers", Data: map[string]any{
		"JPEG":  `^\xff\xd8\xff`,
		"Weird": `(?<=foo)bar`,
	}}
	spec, rejected, err := buildRegexTableSpec("MagicNumbers", sym)
	if err != nil {
		t.Fatalf("buildRegexTableSpec: %v", err)
	}
	if rejected != 1 {
		t.Fatalf("expected 1 rejected pattern, got %d", rejected)
	}
	if len(spec.Patterns) != 2 {
		t.Fatalf("expected both patterns present (one marked incompatible), got %d", len(spec.Patterns))
	}
}

func TestBuildFileTypeLookupSpecExtractsFields(t *testing.T) {
	sym := model.Symbol{Name: "fileTypeLookup", Data: map[string]any{
		"JPEG": map[string]any{"Description": "Joint Photographic Experts Group", "Format": "JPEG", "MimeType": "image/jpeg"},
	}}
	spec, err := buildFileTypeLookupSpec("FileTypeLookup", sym)
	if err != nil {
		t.Fatalf("buildFileTypeLookupSpec: %v", err)
	}
	if len(spec.Entries) != 1 || spec.Entries[0].MimeType != "image/jpeg" {
		t.Fatalf("unexpected entries: %+v", spec.Entries)
	}
}

func TestDecodeTokensRoundTripsASTNodes(t *testing.T) {
	raw := []any{
		map[string]any{"class": "Symbol", "content": "$val"},
		map[string]any{"class": "Operator", "op": "+"},
		map[string]any{"class": "Number", "numeric_value": 1.0},
	}
	nodes, err := decodeTokens(raw)
	if err != nil {
		t.Fatalf("decodeTokens: %v", err)
	}
	if len(nodes) != 3 || nodes[0].Class != ast.Symbol || nodes[2].Class != ast.Number {
		t.Fatalf("unexpected decoded nodes: %+v", nodes)
	}
}

func TestBuildConversionHandlesSharedRefAndSubRef(t *testing.T) {
	p := &Pipeline{ConvRegistry: registry.NewConversionRegistry(), SharedMappings: map[string]bool{}}
	m := model.Module{Package: "canon"}

	shared, err := p.buildConversion(m, "Canon::Main", "Make", model.PrintConv, "%canonModelID", nil, "")
	if err != nil {
		t.Fatalf("buildConversion (shared): %v", err)
	}
	if shared.SharedRef != "%canonModelID" {
		t.Fatalf("expected SharedRef set, got %+v", shared)
	}

	subref, err := p.buildConversion(m, "Canon::Main", "ExposureTime", model.PrintConv, `\&Image::ExifTool::Exif::sprintf`, nil, "")
	if err != nil {
		t.Fatalf("buildConversion (subref): %v", err)
	}
	if subref.SubRef == "" {
		t.Fatalf("expected SubRef set, got %+v", subref)
	}

	manual, err := p.buildConversion(m, "Canon::Main", "WeirdField", model.PrintConv, "some unrecognized bareword", nil, "")
	if err != nil {
		t.Fatalf("buildConversion (manual): %v", err)
	}
	if !manual.Unparsed {
		t.Fatalf("expected unrecognized bare string to be flagged Unparsed, got %+v", manual)
	}

	noted, err := p.buildConversion(m, "Canon::Main", "OtherField", model.PrintConv, map[string]any{"OTHER": "sub { ... }"}, nil, "manual implementation required (OTHER key)")
	if err != nil {
		t.Fatalf("buildConversion (note): %v", err)
	}
	if !noted.Unparsed {
		t.Fatalf("expected a note sibling to be flagged Unparsed, got %+v", noted)
	}

	withAST, err := p.buildConversion(m, "Canon::Main", "Val", model.ValueConv, "$val / 8", []any{
		map[string]any{"class": "Symbol", "name": "$val", "symbol_type": "scalar"},
		map[string]any{"class": "Operator", "op": "/"},
		map[string]any{"class": "Number", "numeric_value": 8.0},
	}, "")
	if err != nil {
		t.Fatalf("buildConversion (ast): %v", err)
	}
	if withAST.Expr == nil {
		t.Fatalf("expected attached AST tokens to normalize into an expression, got %+v", withAST)
	}
}

func TestBuildCompositeTagTableSpecParsesValueConvExpression(t *testing.T) {
	p := &Pipeline{ConvRegistry: registry.NewConversionRegistry()}
	m := model.Module{Package: "canon"}
	sym := model.Symbol{Name: "Composite", Data: map[string]any{
		"ShutterSpeed": map[string]any{
			"Require": []any{"ExposureTime"},
			"ValueConv": []any{
				map[string]any{"class": "SelfFieldAccess", "field": "ExposureTime"},
			},
		},
		"Weird": map[string]any{
			"ValueConv": []any{
				map[string]any{"class": "Unrecognized", "raw": "???"},
			},
		},
	}}

	spec, manuals, err := p.buildCompositeTagTableSpec(m, "Composite", sym)
	if err != nil {
		t.Fatalf("buildCompositeTagTableSpec: %v", err)
	}
	if len(spec.Tags) != 2 {
		t.Fatalf("expected 2 composite tags, got %d", len(spec.Tags))
	}

	byName := map[string]strategies.CompositeTagSpec{}
	for _, tag := range spec.Tags {
		byName[tag.Name] = tag
	}

	shutter := byName["ShutterSpeed"]
	if shutter.ValueConv == nil || shutter.ManualName != "" {
		t.Fatalf("expected ShutterSpeed to parse to a native ValueConv, got %+v", shutter)
	}

	weird := byName["Weird"]
	if weird.ValueConv != nil || weird.ManualName == "" {
		t.Fatalf("expected Weird to demote to a manual stub, got %+v", weird)
	}
	if len(manuals) != 1 || manuals[0] != weird.ManualName {
		t.Fatalf("expected manuals to list Weird's stub, got %v", manuals)
	}
}

func TestRegexIncompatibilityDetectsKnownFeatures(t *testing.T) {
	cases := map[string]string{
		`(?=foo)`:   "lookaround",
		`(a)\1`:     "backreference",
		`a?+`:       "possessive quantifier",
		`(?>abc)`:   "atomic group",
		`^\xff\xd8`: "",
	}
	for pattern, want := range cases {
		if got := regexIncompatibility(pattern); got != want {
			t.Errorf("regexIncompatibility(%q) = %q, want %q", pattern, got, want)
		}
	}
}
