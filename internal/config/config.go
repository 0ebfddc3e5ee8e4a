// Package config loads and validates the per-module JSON configuration
// inputs (spec §6): the eight schemas that seed which tables the build
// should extract and how. Each is validated against a published JSON-Schema
// draft-7 document before being decoded into its typed Go shape.
package config

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/photostructure/exif-oxide-codegen/internal/cgerrors"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Kind identifies one of the eight recognized config schemas (spec §6).
type Kind string

const (
	SimpleTable    Kind = "simple_table"
	TagKit         Kind = "tag_kit"
	FileTypeLookup Kind = "file_type_lookup"
	RegexStrings   Kind = "regex_strings"
	BooleanSet     Kind = "boolean_set"
	PrintConv      Kind = "print_conv"
	CompositeTags  Kind = "composite_tags"
	RuntimeTable   Kind = "runtime_table"
)

var schemaIDs = map[Kind]string{
	SimpleTable:    "https://photostructure.github.io/exif-oxide-codegen/schemas/simple_table.json",
	TagKit:         "https://photostructure.github.io/exif-oxide-codegen/schemas/tag_kit.json",
	FileTypeLookup: "https://photostructure.github.io/exif-oxide-codegen/schemas/file_type_lookup.json",
	RegexStrings:   "https://photostructure.github.io/exif-oxide-codegen/schemas/regex_strings.json",
	BooleanSet:     "https://photostructure.github.io/exif-oxide-codegen/schemas/boolean_set.json",
	PrintConv:      "https://photostructure.github.io/exif-oxide-codegen/schemas/print_conv.json",
	CompositeTags:  "https://photostructure.github.io/exif-oxide-codegen/schemas/composite_tags.json",
	RuntimeTable:   "https://photostructure.github.io/exif-oxide-codegen/schemas/runtime_table.json",
}

var schemaFiles = map[Kind]string{
	SimpleTable:    "schemas/simple_table.schema.json",
	TagKit:         "schemas/tag_kit.schema.json",
	FileTypeLookup: "schemas/file_type_lookup.schema.json",
	RegexStrings:   "schemas/regex_strings.schema.json",
	BooleanSet:     "schemas/boolean_set.schema.json",
	PrintConv:      "schemas/print_conv.schema.json",
	CompositeTags:  "schemas/composite_tags.schema.json",
	RuntimeTable:   "schemas/runtime_table.schema.json",
}

// Validator compiles every config schema once and validates raw JSON
// documents against the one a given Kind names.
type Validator struct {
	schemas map[Kind]*jsonschema.Schema
}

// NewValidator compiles all eight embedded schemas, panicking if any of
// them fails to compile — a broken schema is a build-time defect in this
// binary, not a condition callers should have to handle at runtime.
func NewValidator() *Validator {
	compiler := jsonschema.NewCompiler()
	v := &Validator{schemas: make(map[Kind]*jsonschema.Schema, len(schemaIDs))}

	for kind, path := range schemaFiles {
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("config: missing embedded schema for %s: %v", kind, err))
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			panic(fmt.Sprintf("config: malformed schema JSON for %s: %v", kind, err))
		}
		id := schemaIDs[kind]
		if err := compiler.AddResource(id, doc); err != nil {
			panic(fmt.Sprintf("config: could not register schema for %s: %v", kind, err))
		}
	}
	for kind, id := range schemaIDs {
		schema, err := compiler.Compile(id)
		if err != nil {
			panic(fmt.Sprintf("config: could not compile schema for %s: %v", kind, err))
		}
		v.schemas[kind] = schema
	}
	return v
}

// Validate parses raw as JSON and validates it against kind's schema,
// returning a ConfigError (spec §7) path-qualified with the config kind and
// source path on failure.
func (v *Validator) Validate(kind Kind, path string, raw []byte) error {
	schema, ok := v.schemas[kind]
	if !ok {
		return cgerrors.New(cgerrors.ConfigError, "", path, fmt.Sprintf("unrecognized config kind %q", kind), nil)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return cgerrors.New(cgerrors.ConfigError, "", path, "not valid JSON", err)
	}
	if err := schema.Validate(inst); err != nil {
		return cgerrors.New(cgerrors.ConfigError, "", path, fmt.Sprintf("does not satisfy %s schema", kind), err)
	}
	return nil
}

// SimpleTableTable, TagKitTable, etc. are the typed shapes decoded from a
// config document once it has validated (spec §6 required-keys table).
type SimpleTableTable struct {
	HashName     string `json:"hash_name"`
	ConstantName string `json:"constant_name"`
	KeyType      string `json:"key_type"`
}

type SimpleTableConfig struct {
	Source string             `json:"source"`
	Tables []SimpleTableTable `json:"tables"`
}

type TagKitTable struct {
	TableName string `json:"table_name"`
}

type TagKitConfig struct {
	Source string        `json:"source"`
	Tables []TagKitTable `json:"tables"`
}

type NamedHashTable struct {
	HashName     string `json:"hash_name"`
	ConstantName string `json:"constant_name"`
	KeyType      string `json:"key_type,omitempty"`
}

type FileTypeLookupConfig struct {
	Tables []NamedHashTable `json:"tables"`
}

type RegexStringsConfig struct {
	Tables []NamedHashTable `json:"tables"`
}

type BooleanSetConfig struct {
	Tables []NamedHashTable `json:"tables"`
}

type PrintConvConfig struct {
	Tables []NamedHashTable `json:"tables"`
}

type CompositeTagsConfig struct {
	Source       string  `json:"source"`
	Table        string  `json:"table"`
	MinFrequency float64 `json:"min_frequency,omitempty"`
}

type RuntimeTableEntry struct {
	TableName      string `json:"table_name"`
	FunctionName   string `json:"function_name"`
	ProcessingMode string `json:"processing_mode,omitempty"`
	FormatHandling string `json:"format_handling,omitempty"`
}

type RuntimeTableConfig struct {
	Source string              `json:"source"`
	Tables []RuntimeTableEntry `json:"tables"`
}

// Decode validates raw against kind's schema and decodes it into out, a
// pointer to one of the typed config structs above.
func (v *Validator) Decode(kind Kind, path string, raw []byte, out any) error {
	if err := v.Validate(kind, path, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return cgerrors.New(cgerrors.ConfigError, "", path, "validated but failed to decode", err)
	}
	return nil
}
