// Package ast defines the canonical AST shared by the field extractor's PPI
// bridge, the expression normalizer, and the code generator's expression
// visitor. A single Node type carries a discriminating Class plus
// class-specific fields, mirroring the wire schema in spec §6.
package ast

// Class discriminates the node kinds defined in spec §3. The shallow classes
// (Symbol, Number, QuotedString, Operator, Word, Regex, BinaryBytes) are
// produced by the PPI bridge; the canonical compound classes (BinaryOperation,
// UnaryOperation, TernaryOperation, FunctionCall, RegexMatch,
// SelfFieldAccess, ValueReference, Unrecognized) are produced by the
// normalizer in pkg normalizer.
type Class string

const (
	Document      Class = "Document"
	Statement     Class = "Statement"
	Symbol        Class = "Symbol"
	Number        Class = "Number"
	QuotedString  Class = "QuotedString"
	Operator      Class = "Operator"
	Word          Class = "Word"
	Regex         Class = "Regex"
	BinaryBytes   Class = "BinaryBytes"
	List          Class = "List"

	BinaryOperation  Class = "BinaryOperation"
	UnaryOperation   Class = "UnaryOperation"
	TernaryOperation Class = "TernaryOperation"
	FunctionCall     Class = "FunctionCall"
	RegexMatch       Class = "RegexMatch"
	SelfFieldAccess  Class = "SelfFieldAccess"
	ValueReference   Class = "ValueReference"
	Unrecognized     Class = "Unrecognized"
)

// SymbolKind is the sigil family of a Symbol/Word node (spec §3).
type SymbolKind string

const (
	ScalarSymbol SymbolKind = "scalar"
	ArraySymbol  SymbolKind = "array"
	HashSymbol   SymbolKind = "hash"
	GlobSymbol   SymbolKind = "glob"
)

// StringKind distinguishes Perl's single- and double-quoted string literals;
// only double-quoted strings interpolate variables, which matters when the
// normalizer decides whether a QuotedString can be folded as a constant.
type StringKind string

const (
	SingleQuoted StringKind = "single"
	DoubleQuoted StringKind = "double"
)

// Node is the single tagged-union AST node type used end to end. Fields not
// meaningful for a given Class are left zero; MarshalJSON below (see
// node_json.go) omits zero fields to match the wire schema in spec §6.
type Node struct {
	Class Class `json:"class"`

	// Structural children, used by Document, Statement, List, and as the
	// generic fallback for any node not covered by a named field below.
	Children []*Node `json:"children,omitempty"`

	// Shallow-node fields (from the PPI bridge).
	Content         string     `json:"content,omitempty"`
	StructureBounds string     `json:"structure_bounds,omitempty"`
	SymbolKind      SymbolKind `json:"symbol_type,omitempty"`
	NumericValue    *float64   `json:"numeric_value,omitempty"`
	StringValue     string     `json:"string_value,omitempty"`
	StringKind      StringKind `json:"string_kind,omitempty"`

	// Operator/Word content.
	Op   string `json:"op,omitempty"`
	Name string `json:"name,omitempty"`

	// Regex content (both the shallow Regex node and canonical RegexMatch).
	Pattern string `json:"pattern,omitempty"`
	Flags   string `json:"flags,omitempty"`

	// BinaryBytes content: raw bytes produced by the binary-pattern
	// pre-processor (spec §4.1, §9 "Binary-in-regex").
	Bytes []byte `json:"bytes,omitempty"`

	// Canonical compound fields.
	Lhs     *Node   `json:"lhs,omitempty"`
	Rhs     *Node   `json:"rhs,omitempty"`
	Operand *Node   `json:"operand,omitempty"`
	Cond    *Node   `json:"cond,omitempty"`
	Then    *Node   `json:"then,omitempty"`
	Else    *Node   `json:"else,omitempty"`
	Args    []*Node `json:"args,omitempty"`
	Target  *Node   `json:"target,omitempty"`
	Negated bool    `json:"negated,omitempty"`
	Field   string  `json:"field,omitempty"` // SelfFieldAccess

	// Unrecognized: the raw, untranslated source text.
	Raw string `json:"raw,omitempty"`
}

// BinaryComponent is one entry of the binary-pattern pre-processor's side
// table: the byte that was replaced by a placeholder token, and the
// placeholder's position in the pre-processed string (spec §4.1, §9,
// Testable Property 9).
type BinaryComponent struct {
	Placeholder string `json:"placeholder"`
	Byte        byte   `json:"byte"`
	// Raw is the exact source escape ("\xFF" or "\0") this byte came from,
	// kept so reconstruction is byte-for-byte exact even though both escape
	// forms decode to the same byte value.
	Raw string `json:"raw,omitempty"`
}

// Num is a convenience constructor for a Number node.
func Num(v float64) *Node { return &Node{Class: Number, NumericValue: &v} }

// Str is a convenience constructor for a QuotedString node.
func Str(v string, kind StringKind) *Node {
	return &Node{Class: QuotedString, StringValue: v, StringKind: kind}
}

// Sym is a convenience constructor for a Symbol node ($val, @array, %hash, …).
func Sym(name string, kind SymbolKind) *Node {
	return &Node{Class: Symbol, Name: name, SymbolKind: kind}
}

// Clone performs a deep copy, used by normalizer passes that must not
// mutate their input in place (pass purity is part of the contract in
// spec §4.2).
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Children = cloneSlice(n.Children)
	c.Args = cloneSlice(n.Args)
	c.Lhs = n.Lhs.Clone()
	c.Rhs = n.Rhs.Clone()
	c.Operand = n.Operand.Clone()
	c.Cond = n.Cond.Clone()
	c.Then = n.Then.Clone()
	c.Else = n.Else.Clone()
	c.Target = n.Target.Clone()
	if n.Bytes != nil {
		c.Bytes = append([]byte(nil), n.Bytes...)
	}
	if n.NumericValue != nil {
		v := *n.NumericValue
		c.NumericValue = &v
	}
	return &c
}

func cloneSlice(ns []*Node) []*Node {
	if ns == nil {
		return nil
	}
	out := make([]*Node, len(ns))
	for i, n := range ns {
		out[i] = n.Clone()
	}
	return out
}

// Equal performs a structural deep-equality check, used by the normalizer's
// idempotence test (Testable Property 3: applying the pipeline twice yields
// the same tree as applying it once).
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Class != o.Class || n.Content != o.Content || n.Op != o.Op || n.Name != o.Name ||
		n.Pattern != o.Pattern || n.Flags != o.Flags || n.Negated != o.Negated ||
		n.Field != o.Field || n.Raw != o.Raw || n.StringValue != o.StringValue ||
		n.StringKind != o.StringKind || n.SymbolKind != o.SymbolKind {
		return false
	}
	if (n.NumericValue == nil) != (o.NumericValue == nil) {
		return false
	}
	if n.NumericValue != nil && *n.NumericValue != *o.NumericValue {
		return false
	}
	if len(n.Bytes) != len(o.Bytes) {
		return false
	}
	for i := range n.Bytes {
		if n.Bytes[i] != o.Bytes[i] {
			return false
		}
	}
	if !equalSlice(n.Children, o.Children) || !equalSlice(n.Args, o.Args) {
		return false
	}
	return n.Lhs.Equal(o.Lhs) && n.Rhs.Equal(o.Rhs) && n.Operand.Equal(o.Operand) &&
		n.Cond.Equal(o.Cond) && n.Then.Equal(o.Then) && n.Else.Equal(o.Else) &&
		n.Target.Equal(o.Target)
}

func equalSlice(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
