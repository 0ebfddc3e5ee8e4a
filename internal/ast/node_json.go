package ast

import "encoding/json"

// nodeWire mirrors Node but represents Bytes as a plain array of small
// integers instead of the base64 string encoding.MarshalJSON would give a
// []byte, matching the "raw_bytes: [u8, …]" wire shape from spec §3/§6.
type nodeWire struct {
	Class           Class      `json:"class"`
	Children        []*Node    `json:"children,omitempty"`
	Content         string     `json:"content,omitempty"`
	StructureBounds string     `json:"structure_bounds,omitempty"`
	SymbolKind      SymbolKind `json:"symbol_type,omitempty"`
	NumericValue    *float64   `json:"numeric_value,omitempty"`
	StringValue     string     `json:"string_value,omitempty"`
	StringKind      StringKind `json:"string_kind,omitempty"`
	Op              string     `json:"op,omitempty"`
	Name            string     `json:"name,omitempty"`
	Pattern         string     `json:"pattern,omitempty"`
	Flags           string     `json:"flags,omitempty"`
	Bytes           []int      `json:"bytes,omitempty"`
	Lhs             *Node      `json:"lhs,omitempty"`
	Rhs             *Node      `json:"rhs,omitempty"`
	Operand         *Node      `json:"operand,omitempty"`
	Cond            *Node      `json:"cond,omitempty"`
	Then            *Node      `json:"then,omitempty"`
	Else            *Node      `json:"else,omitempty"`
	Args            []*Node    `json:"args,omitempty"`
	Target          *Node      `json:"target,omitempty"`
	Negated         bool       `json:"negated,omitempty"`
	Field           string     `json:"field,omitempty"`
	Raw             string     `json:"raw,omitempty"`
}

// MarshalJSON implements the wire schema in spec §6: every node is a
// {"class": ..., ...} object, with byte sequences rendered as int arrays.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	w := nodeWire{
		Class: n.Class, Children: n.Children, Content: n.Content,
		StructureBounds: n.StructureBounds, SymbolKind: n.SymbolKind,
		NumericValue: n.NumericValue, StringValue: n.StringValue, StringKind: n.StringKind,
		Op: n.Op, Name: n.Name, Pattern: n.Pattern, Flags: n.Flags,
		Lhs: n.Lhs, Rhs: n.Rhs, Operand: n.Operand, Cond: n.Cond, Then: n.Then, Else: n.Else,
		Args: n.Args, Target: n.Target, Negated: n.Negated, Field: n.Field, Raw: n.Raw,
	}
	if n.Bytes != nil {
		w.Bytes = make([]int, len(n.Bytes))
		for i, b := range n.Bytes {
			w.Bytes[i] = int(b)
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = Node{
		Class: w.Class, Children: w.Children, Content: w.Content,
		StructureBounds: w.StructureBounds, SymbolKind: w.SymbolKind,
		NumericValue: w.NumericValue, StringValue: w.StringValue, StringKind: w.StringKind,
		Op: w.Op, Name: w.Name, Pattern: w.Pattern, Flags: w.Flags,
		Lhs: w.Lhs, Rhs: w.Rhs, Operand: w.Operand, Cond: w.Cond, Then: w.Then, Else: w.Else,
		Args: w.Args, Target: w.Target, Negated: w.Negated, Field: w.Field, Raw: w.Raw,
	}
	if w.Bytes != nil {
		n.Bytes = make([]byte, len(w.Bytes))
		for i, b := range w.Bytes {
			n.Bytes[i] = byte(b)
		}
	}
	return nil
}
