package extractor

import (
	"fmt"
	"reflect"
)

// maxSanitizeDepth is the depth limit past which sanitization truncates with
// the [MaxDepth] sentinel (spec §4.1 step 4).
const maxSanitizeDepth = 10

// nonCompositeSizeCeiling bounds non-composite hash symbols (spec §4.1 step
// 3, "order 10^3"): entries beyond it are left out of the sanitized map.
// Which entries are kept follows Go's map iteration order and is not
// defined, and no warning is emitted for the dropped ones.
const nonCompositeSizeCeiling = 1000

// FuncRef and ObjectRef are Go-side stand-ins for Perl values the field
// extractor cannot serialize directly: a code reference and a blessed
// (objected) reference, respectively. A real Perl-hosted extractor detects
// these on the Perl side before JSON-encoding; this Go-side sanitizer
// re-validates decoded trees for anything that slipped through (and is the
// thing Testable Property 2 is checked against here, since no live Perl
// process backs this exercise's test run).
type FuncRef struct{ Name string }
type ObjectRef struct{ Class string }

// Sanitize recursively walks v (expected to be built from maps, slices, and
// scalars) and returns a tree safe to JSON-encode: function refs become
// "[Function: <name>]", blessed refs become "[Object: <class>]", cycles
// become "[Circular]", and depth beyond maxSanitizeDepth becomes
// "[MaxDepth]". isComposite disables the size ceiling (spec §4.1 step 6).
//
// Sanitize always terminates (Testable Property 2): cycles are broken by
// identity tracking of maps/slices on the current path, and depth is capped
// unconditionally.
func Sanitize(v any, isComposite bool) any {
	return sanitize(v, isComposite, 0, map[uintptr]bool{})
}

func sanitize(v any, isComposite bool, depth int, seen map[uintptr]bool) any {
	if depth > maxSanitizeDepth {
		return "[MaxDepth]"
	}
	switch x := v.(type) {
	case FuncRef:
		return fmt.Sprintf("[Function: %s]", x.Name)
	case ObjectRef:
		return fmt.Sprintf("[Object: %s]", x.Class)
	case map[string]any:
		ptr := reflect.ValueOf(x).Pointer()
		if seen[ptr] {
			return "[Circular]"
		}
		next := markSeen(seen, ptr)
		limit := len(x)
		if !isComposite && limit > nonCompositeSizeCeiling {
			limit = nonCompositeSizeCeiling
		}
		out := make(map[string]any, limit)
		i := 0
		for k, child := range x {
			if i >= limit {
				break
			}
			out[k] = sanitize(child, isComposite, depth+1, next)
			i++
		}
		return out
	case []any:
		ptr := reflect.ValueOf(x).Pointer()
		if len(x) > 0 && seen[ptr] {
			return "[Circular]"
		}
		next := markSeen(seen, ptr)
		out := make([]any, len(x))
		for i, child := range x {
			out[i] = sanitize(child, isComposite, depth+1, next)
		}
		return out
	default:
		return v
	}
}

// markSeen returns a copy of seen with ptr added, so sibling subtrees at the
// same depth don't falsely collide (only ancestors on the current path count
// as cycles).
func markSeen(seen map[uintptr]bool, ptr uintptr) map[uintptr]bool {
	next := make(map[uintptr]bool, len(seen)+1)
	for k := range seen {
		next[k] = true
	}
	next[ptr] = true
	return next
}
