// Package model defines the source-side entities read from the field
// extractor's JSON stream: modules, symbols, tag definitions, and
// subdirectory references (spec §3).
package model

import "github.com/photostructure/exif-oxide-codegen/internal/ast"

// SymbolType is the kind of a package global the extractor found.
type SymbolType string

const (
	HashSymbol   SymbolType = "hash"
	ArraySymbol  SymbolType = "array"
	ScalarSymbol SymbolType = "scalar"
)

// Metadata accompanies every extracted Symbol (spec §6 wire schema).
type Metadata struct {
	Size             int  `json:"size"`
	IsCompositeTable bool `json:"is_composite_table"`
}

// Symbol is one named variable inside a module, as sanitized and emitted by
// the field extractor.
type Symbol struct {
	Type     SymbolType     `json:"type"`
	Name     string         `json:"name"`
	Module   string         `json:"module"`
	Data     map[string]any `json:"data"`
	Metadata Metadata       `json:"metadata"`
}

// Module identifies a single ExifTool .pm source unit.
type Module struct {
	Path    string
	Package string
}

// ExprField names the four expression-bearing fields a tag definition may
// carry (spec §3, §4.4).
type ExprField string

const (
	PrintConv ExprField = "PrintConv"
	ValueConv ExprField = "ValueConv"
	RawConv   ExprField = "RawConv"
	Condition ExprField = "Condition"
)

// ConvKind classifies how a conversion field was resolved by the tag-kit
// assembler (spec §4.4).
type ConvKind string

const (
	ConvNone       ConvKind = "None"
	ConvSimple     ConvKind = "Simple"
	ConvExpression ConvKind = "Expression"
	ConvManual     ConvKind = "Manual"
)

// Conversion is the discriminated payload for a PrintConv/ValueConv field
// after classification (spec §4.4): exactly one of the payload fields is
// populated, matching Kind.
type Conversion struct {
	Kind ConvKind

	// ConvSimple: either an inline mapping, or a reference to a shared
	// mapping emitted elsewhere (SharedRef names the constant).
	InlineMap map[string]string
	SharedRef string

	// ConvExpression.
	Expr *ast.Node

	// ConvManual: a registry key (known function) or a synthesized stable
	// name (derived from tag name + field kind, spec §4.4).
	ManualName string
}

// SubDirectoryDef is one candidate expansion for a tag (spec §3, §4.6).
type SubDirectoryDef struct {
	TagTable     string
	Condition    *ast.Node
	Validate     string
	ProcessProc  string
	ByteOrder    string
	Start        string
	Base         string
}

// TagDefinition is a single entry of a tag-definition table (spec §3).
type TagDefinition struct {
	ID         string // numeric-or-string tag id within the table
	Name       string
	Format     string
	Writable   string
	Groups     map[string]string
	PrintConv  *Conversion
	ValueConv  *Conversion
	RawConv    *Conversion
	Condition  *ast.Node
	SubDirs    []SubDirectoryDef
	Notes      []string // e.g. "manual implementation required" markers
}

// TagTable is a source-side hash symbol that holds tag definitions, keyed by
// tag id; a given id may have more than one TagDefinition when ExifTool
// declares multiple conditional variants.
type TagTable struct {
	Module    string
	Name      string // fully-qualified source table name, e.g. "Canon::Main"
	Composite bool
	Tags      map[string][]TagDefinition
}
