// Package registry implements the conversion registry (spec §4.5) and the
// table registry (spec §4.6): the two static, hand-curated indices the code
// generator consults while walking a tag's canonical AST and while
// resolving SubDirectory references to other tables.
package registry

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// ArgMode documents how a registered idiom's arguments are materialized —
// informational metadata consulted by the codegen visitor when deciding
// whether an argument needs to be passed by value, as a reference to the
// tag's raw value, or folded into a format string (spec §4.5 registry
// contract).
type ArgMode string

const (
	ByValue  ArgMode = "by_value"
	ByRawRef ArgMode = "by_raw_ref"
	AsFormat ArgMode = "as_format"
)

// ConversionEntry is one registered Perl-idiom-to-native-code mapping (spec
// §4.5). Arity of -1 means variadic (sprintf, join). Emit receives the
// already-generated jen.Code for each argument — the registry never walks
// an AST itself, the codegen expression visitor does that and calls into
// the registry only once its own children are resolved.
type ConversionEntry struct {
	Name     string
	Arity    int
	ArgModes []ArgMode
	Emit     func(args []jen.Code) (jen.Code, error)
}

// matches reports whether this entry applies to a call site with n
// arguments (spec §4.5 "the predicate under which the entry applies").
func (e ConversionEntry) matches(n int) bool {
	return e.Arity == -1 || e.Arity == n
}

// ConversionRegistry is the generator's static idiom table, built once and
// treated as read-only afterward (spec §5 "frozen read-only registries").
type ConversionRegistry struct {
	entries map[string]ConversionEntry
}

// NewConversionRegistry returns the registry seeded with every idiom spec
// §4.5 names explicitly. Operators (BinaryOperation/UnaryOperation),
// TernaryOperation, and RegexMatch are keyed by their symbol/class name
// alongside FunctionCall entries, so the visitor has one lookup surface for
// every node kind it can translate natively.
func NewConversionRegistry() *ConversionRegistry {
	r := &ConversionRegistry{entries: make(map[string]ConversionEntry)}
	r.registerFunctions()
	r.registerOperators()
	r.registerControlForms()
	return r
}

func (r *ConversionRegistry) add(e ConversionEntry) {
	r.entries[e.Name] = e
}

// Lookup returns the entry for a call/operator named key with argc
// arguments, if one is registered and its arity predicate matches.
func (r *ConversionRegistry) Lookup(key string, argc int) (ConversionEntry, bool) {
	e, ok := r.entries[key]
	if !ok || !e.matches(argc) {
		return ConversionEntry{}, false
	}
	return e, true
}

func (r *ConversionRegistry) registerFunctions() {
	r.add(ConversionEntry{Name: "sprintf", Arity: -1, ArgModes: []ArgMode{AsFormat, ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("sprintf: at least a format argument is required")
		}
		return jen.Qual("fmt", "Sprintf").Call(args...), nil
	}})
	r.add(ConversionEntry{Name: "int", Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.Id("int64").Call(args[0]), nil
	}})
	r.add(ConversionEntry{Name: "abs", Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.Qual("math", "Abs").Call(args[0]), nil
	}})
	r.add(ConversionEntry{Name: "length", Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.Len(args[0]), nil
	}})
	r.add(ConversionEntry{Name: "hex", Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.Qual("strconv", "ParseInt").Call(args[0], jen.Lit(16), jen.Lit(64)), nil
	}})
	r.add(ConversionEntry{Name: "ord", Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.Index().Byte().Call(args[0]).Index(jen.Lit(0)), nil
	}})
	r.add(ConversionEntry{Name: "chr", Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.String().Call(jen.Id("rune").Call(args[0])), nil
	}})
	r.add(ConversionEntry{Name: "join", Arity: 2, ArgModes: []ArgMode{ByValue, ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.Qual("strings", "Join").Call(args[1], args[0]), nil
	}})
	r.add(ConversionEntry{Name: "unpack", Arity: 2, ArgModes: []ArgMode{AsFormat, ByRawRef}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.Id("exifpack").Dot("Unpack").Call(args...), nil
	}})
	r.add(ConversionEntry{Name: "defined", Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return args[0].Clone().Op("!=").Nil(), nil
	}})
	r.add(ConversionEntry{Name: "substr", Arity: -1, ArgModes: []ArgMode{ByValue, ByValue, ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("substr: expected at least 2 arguments, got %d", len(args))
		}
		return jen.Id("exifpack").Dot("Substr").Call(args...), nil
	}})
	for name, qualFn := range map[string]string{"exp": "Exp", "log": "Log", "sqrt": "Sqrt"} {
		fn := qualFn
		r.add(ConversionEntry{Name: name, Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
			return jen.Qual("math", fn).Call(args[0]), nil
		}})
	}
}

// binaryOperators maps a BinaryOperation's Op to the native jen operator
// token, for every operator the registry natively supports (spec §4.5
// "numeric comparison operators, string equality operators").
var binaryOperators = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "%": "%", ".": "+",
	"==": "==", "!=": "!=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"eq": "==", "ne": "!=", "lt": "<", "le": "<=", "gt": ">", "ge": ">=",
	"&&": "&&", "||": "||", "&": "&", "|": "|", "^": "^",
}

func (r *ConversionRegistry) registerOperators() {
	for op, jenOp := range binaryOperators {
		tok := jenOp
		r.add(ConversionEntry{Name: op, Arity: 2, ArgModes: []ArgMode{ByValue, ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("operator %q: expected 2 arguments, got %d", op, len(args))
			}
			return jen.Parens(args[0].Clone().Op(tok).Add(args[1])), nil
		}})
	}
	r.add(ConversionEntry{Name: "!", Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.Op("!").Add(args[0]), nil
	}})
	r.add(ConversionEntry{Name: "unary-", Arity: 1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		return jen.Op("-").Add(args[0]), nil
	}})
}

// registerControlForms registers the two compound node kinds the visitor
// translates structurally rather than through a function-call shape:
// TernaryOperation and RegexMatch (spec §4.5 "ternary, regex match").
func (r *ConversionRegistry) registerControlForms() {
	r.add(ConversionEntry{Name: "Ternary", Arity: 3, ArgModes: []ArgMode{ByValue, ByValue, ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("ternary: expected 3 arguments (cond, then, else), got %d", len(args))
		}
		return jen.Func().Params().Params(jen.Id("v")).Block(
			jen.If(args[0]).Block(jen.Return(args[1])),
			jen.Return(args[2]),
		).Call(), nil
	}})
	r.add(ConversionEntry{Name: "RegexMatch", Arity: -1, ArgModes: []ArgMode{ByValue}, Emit: func(args []jen.Code) (jen.Code, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("regex match: expected target and compiled pattern reference, got %d args", len(args))
		}
		return args[1].Clone().Dot("MatchString").Call(args[0]), nil
	}})
}
