package registry

import (
	"testing"

	"github.com/dave/jennifer/jen"
)

func TestConversionRegistryLooksUpSprintf(t *testing.T) {
	r := NewConversionRegistry()
	entry, ok := r.Lookup("sprintf", 2)
	if !ok {
		t.Fatal("expected sprintf to be registered")
	}
	code, err := entry.Emit([]jen.Code{jen.Lit("%.2f"), jen.Id("val")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code == nil {
		t.Fatal("expected non-nil generated code")
	}
}

func TestConversionRegistryArityMismatch(t *testing.T) {
	r := NewConversionRegistry()
	if _, ok := r.Lookup("int", 2); ok {
		t.Fatal("expected int/2 to not match the registered 1-arg entry")
	}
}

func TestConversionRegistryUnknownIdiom(t *testing.T) {
	r := NewConversionRegistry()
	if _, ok := r.Lookup("Image::ExifTool::Canon::SomeCustomSub", 1); ok {
		t.Fatal("expected an unregistered Perl sub to not be found")
	}
}

func TestConversionRegistryOperatorsAndControlForms(t *testing.T) {
	r := NewConversionRegistry()
	for _, key := range []string{"+", "eq", "Ternary", "RegexMatch", "!"} {
		if _, ok := r.Lookup(key, argCountFor(key)); !ok {
			t.Fatalf("expected %q to be registered", key)
		}
	}
}

func argCountFor(key string) int {
	switch key {
	case "!":
		return 1
	case "Ternary":
		return 3
	case "RegexMatch":
		return 2
	default:
		return 2
	}
}
