package extractor

import (
	"fmt"
	"strings"

	"github.com/photostructure/exif-oxide-codegen/internal/ast"
)

// PreprocessBinary replaces every \xNN and \0 escape in expr with a
// placeholder token, recording the original byte alongside the placeholder.
// This runs before the expression is handed to the PPI parser, because
// non-text bytes (e.g. JPEG/PNG magic numbers) would otherwise poison a
// UTF-8-oriented parser and the JSON encoding (spec §4.1, §9
// "Binary-in-regex").
//
// The returned string is always valid UTF-8 and round-trips: reinserting
// each byte at its placeholder in order reconstructs expr exactly
// (Testable Property 9).
func PreprocessBinary(expr string) (string, []ast.BinaryComponent) {
	var b strings.Builder
	var components []ast.BinaryComponent
	i := 0
	n := 0
	for i < len(expr) {
		if expr[i] == '\\' && i+1 < len(expr) {
			if expr[i+1] == 'x' && i+3 < len(expr) && isHex(expr[i+2]) && isHex(expr[i+3]) {
				byteVal := hexVal(expr[i+2])<<4 | hexVal(expr[i+3])
				ph := placeholder(n)
				b.WriteString(ph)
				components = append(components, ast.BinaryComponent{Placeholder: ph, Byte: byte(byteVal), Raw: expr[i : i+4]})
				n++
				i += 4
				continue
			}
			if expr[i+1] == '0' {
				ph := placeholder(n)
				b.WriteString(ph)
				components = append(components, ast.BinaryComponent{Placeholder: ph, Byte: 0, Raw: expr[i : i+2]})
				n++
				i += 2
				continue
			}
		}
		b.WriteByte(expr[i])
		i++
	}
	return b.String(), components
}

// ReconstructBinary reverses PreprocessBinary: it reinserts each recorded
// byte's original escape (\xNN or \0) at its placeholder, in order.
func ReconstructBinary(processed string, components []ast.BinaryComponent) string {
	out := processed
	for _, c := range components {
		out = strings.Replace(out, c.Placeholder, c.Raw, 1)
	}
	return out
}

func placeholder(n int) string {
	return fmt.Sprintf("\x01BINPH%d\x02", n)
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}
