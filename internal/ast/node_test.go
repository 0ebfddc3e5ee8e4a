package ast

import (
	"encoding/json"
	"testing"
)

func TestNodeJSONRoundTrip(t *testing.T) {
	n := &Node{
		Class: FunctionCall,
		Name:  "join",
		Args: []*Node{
			Str(" ", DoubleQuoted),
			{
				Class: FunctionCall,
				Name:  "unpack",
				Args: []*Node{
					Str("H2H2", DoubleQuoted),
					{Class: ValueReference},
				},
			},
		},
	}

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Node
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !n.Equal(&got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", n, got)
	}
}

func TestNodeBytesWireShape(t *testing.T) {
	n := &Node{Class: BinaryBytes, Bytes: []byte{0xff, 0xd8, 0xff}}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var asMap map[string]any
	if err := json.Unmarshal(data, &asMap); err != nil {
		t.Fatalf("unmarshal to map: %v", err)
	}
	bytes, ok := asMap["bytes"].([]any)
	if !ok {
		t.Fatalf("expected bytes to be a JSON array, got %T", asMap["bytes"])
	}
	if len(bytes) != 3 {
		t.Fatalf("expected 3 bytes, got %d", len(bytes))
	}
	if int(bytes[0].(float64)) != 0xff {
		t.Fatalf("expected first byte 0xff, got %v", bytes[0])
	}
}

func TestNodeCloneIsIndependent(t *testing.T) {
	orig := &Node{Class: BinaryOperation, Op: "+", Lhs: Num(1), Rhs: Num(2)}
	clone := orig.Clone()
	clone.Op = "-"
	*clone.Lhs.NumericValue = 99

	if orig.Op != "+" {
		t.Fatalf("mutating clone affected original Op: %v", orig.Op)
	}
	if *orig.Lhs.NumericValue != 1 {
		t.Fatalf("mutating clone affected original Lhs value: %v", *orig.Lhs.NumericValue)
	}
}

func TestNodeEqualDetectsDifference(t *testing.T) {
	a := &Node{Class: BinaryOperation, Op: "+", Lhs: Num(1), Rhs: Num(2)}
	b := &Node{Class: BinaryOperation, Op: "+", Lhs: Num(1), Rhs: Num(3)}
	if a.Equal(b) {
		t.Fatal("expected nodes with different Rhs to be unequal")
	}
	c := a.Clone()
	if !a.Equal(c) {
		t.Fatal("expected clone to be structurally equal")
	}
}
