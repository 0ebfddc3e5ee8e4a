package normalizer

// Associativity describes which side a binary operator groups on.
type Associativity int

const (
	LeftAssoc Associativity = iota
	RightAssoc
)

// opInfo is one entry of the Perl operator-precedence table implemented
// here (spec §4.2 "Precedence table (high → low)"). Level is a tightness
// rank: higher binds tighter.
type opInfo struct {
	level int
	assoc Associativity
}

// precedence maps every binary operator in the supported subset to its
// level and associativity, high to low exactly as spec §4.2 lists them.
// Named-unary, ternary, and comma are handled structurally rather than in
// this table (ternary and comma because they aren't ordinary binary ops;
// named-unary because it is resolved during function-call recognition,
// spec §4.2 pass 1).
var precedence = map[string]opInfo{
	"**": {12, RightAssoc},

	"*": {11, LeftAssoc},
	"/": {11, LeftAssoc},
	"%": {11, LeftAssoc},
	"x": {11, LeftAssoc},

	"+": {10, LeftAssoc},
	"-": {10, LeftAssoc},
	".": {10, LeftAssoc},

	"<<": {9, LeftAssoc},
	">>": {9, LeftAssoc},

	"<":  {7, LeftAssoc},
	"<=": {7, LeftAssoc},
	">":  {7, LeftAssoc},
	">=": {7, LeftAssoc},
	"lt": {7, LeftAssoc},
	"le": {7, LeftAssoc},
	"gt": {7, LeftAssoc},
	"ge": {7, LeftAssoc},

	"==":  {6, LeftAssoc},
	"!=":  {6, LeftAssoc},
	"<=>": {6, LeftAssoc},
	"eq":  {6, LeftAssoc},
	"ne":  {6, LeftAssoc},
	"cmp": {6, LeftAssoc},

	"&": {5, LeftAssoc},

	"|": {4, LeftAssoc},
	"^": {4, LeftAssoc},

	"&&": {3, LeftAssoc},

	"||": {2, LeftAssoc},
	"//": {2, LeftAssoc},

	// Assignment family: lower than ternary, right-associative.
	"=":   {0, RightAssoc},
	"+=":  {0, RightAssoc},
	"-=":  {0, RightAssoc},
	".=":  {0, RightAssoc},
	"//=": {0, RightAssoc},
}

// ternaryLevel sits between logical-or/assignment-family and the bottom of
// the table; comma is strictly the lowest-precedence operator (spec §4.2).
const (
	ternaryLevel      = 1
	commaLevel        = -1
	lowestBinaryLevel = 2
)

// unaryOps are the prefix operators recognized by the climbing parser
// (spec §4.2: "unary !, unary -, ~").
var unaryOps = map[string]bool{"!": true, "-": true, "~": true}

// knownFunctions is the closed set of bareword function names recognized
// without parentheses during function-call recognition (spec §4.2 pass 1).
var knownFunctions = map[string]bool{
	"sprintf": true, "int": true, "abs": true, "length": true, "join": true,
	"unpack": true, "pack": true, "hex": true, "ord": true, "chr": true,
	"substr": true, "defined": true, "exp": true, "log": true, "sqrt": true,
}
