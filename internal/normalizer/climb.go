package normalizer

import "github.com/photostructure/exif-oxide-codegen/internal/ast"

// climb parses one comma-free token span into a single canonical expression
// node via precedence climbing (spec §4.2 pass 4 "unified precedence
// climbing") followed by ternary canonicalization (pass 5, folded in here
// since a ternary is simply the level between assignment and logical-or in
// the same climb). Commas are handled by the caller (reduceTokens) before
// climb ever sees a span, so this parser never needs to special-case them.
//
// An empty span returns nil; a span that doesn't fully reduce to one node
// (stray trailing tokens) becomes Unrecognized (spec §4.2 "No loss": every
// input token is either consumed or explicitly surfaced).
func climb(tokens []*ast.Node) *ast.Node {
	if len(tokens) == 0 {
		return nil
	}
	p := &parser{toks: tokens}
	node := p.parseAssign()
	if p.pos != len(p.toks) {
		return unrecognizedFrom(tokens)
	}
	return node
}

type parser struct {
	toks []*ast.Node
	pos  int
}

func (p *parser) peek() *ast.Node {
	if p.pos >= len(p.toks) {
		return nil
	}
	return p.toks[p.pos]
}

func (p *parser) next() *ast.Node {
	t := p.peek()
	if t != nil {
		p.pos++
	}
	return t
}

func (p *parser) peekOp() (string, bool) {
	t := p.peek()
	if t != nil && t.Class == ast.Operator {
		return t.Op, true
	}
	return "", false
}

// parseAssign handles the assignment family, spec §4.2 table level 0,
// right-associative and binding looser than ternary.
func (p *parser) parseAssign() *ast.Node {
	left := p.parseTernary()
	if op, ok := p.peekOp(); ok {
		if info, known := precedence[op]; known && info.level == 0 {
			p.next()
			right := p.parseAssign() // right-associative
			return &ast.Node{Class: ast.BinaryOperation, Op: op, Lhs: left, Rhs: right}
		}
	}
	return left
}

// parseTernary handles "cond ? then : else", right-associative, binding
// looser than every ordinary binary operator (spec §4.2 table: "ternary
// ?: (right-associative)").
func (p *parser) parseTernary() *ast.Node {
	cond := p.parseBinary(lowestBinaryLevel)
	if op, ok := p.peekOp(); ok && op == "?" {
		p.next()
		then := p.parseTernary()
		if op2, ok2 := p.peekOp(); !ok2 || op2 != ":" {
			return unrecognizedFrom(p.toks)
		}
		p.next()
		elseBranch := p.parseTernary()
		return &ast.Node{Class: ast.TernaryOperation, Cond: cond, Then: then, Else: elseBranch}
	}
	return cond
}

// parseBinary implements precedence climbing proper for every ordinary
// binary operator at or above minLevel (spec §4.2 table levels 2 through
// 12; ternary/assignment/comma are handled by the callers above and below).
func (p *parser) parseBinary(minLevel int) *ast.Node {
	left := p.parseUnary()
	for {
		op, ok := p.peekOp()
		if !ok {
			return left
		}
		info, known := precedence[op]
		if !known || info.level < minLevel || info.level == 0 {
			return left
		}
		p.next()
		nextMin := info.level + 1
		if info.assoc == RightAssoc {
			nextMin = info.level
		}
		right := p.parseBinary(nextMin)
		left = &ast.Node{Class: ast.BinaryOperation, Op: op, Lhs: left, Rhs: right}
	}
}

// parseUnary handles prefix !, -, ~ (spec §4.2 table: "unary !, unary -, ~",
// the highest level below function-call).
func (p *parser) parseUnary() *ast.Node {
	if op, ok := p.peekOp(); ok && unaryOps[op] {
		p.next()
		operand := p.parseUnary()
		return &ast.Node{Class: ast.UnaryOperation, Op: op, Operand: operand}
	}
	return p.parseAtom()
}

// parseAtom consumes a single already-reduced node: a literal, a symbol, a
// compound node produced by an earlier pass (FunctionCall, SelfFieldAccess,
// RegexMatch, ValueReference), or a parenthesized group's already-reduced
// List (unwrapped when it holds exactly one item, since "(expr)" is just
// expr with redundant parens collapsed — spec §4.2 pass 6 "collapse
// redundant parentheses").
func (p *parser) parseAtom() *ast.Node {
	tok := p.next()
	if tok == nil {
		return unrecognizedFrom(p.toks)
	}
	switch tok.Class {
	case ast.List:
		if len(tok.Children) == 1 {
			return tok.Children[0]
		}
		return tok
	default:
		return tok
	}
}

// unrecognizedFrom surfaces tokens the pipeline could not reduce as an
// Unrecognized node (spec §4.2 "No loss" contract), carrying enough of the
// original content to be useful in diagnostics.
func unrecognizedFrom(tokens []*ast.Node) *ast.Node {
	raw := ""
	for _, t := range tokens {
		if t.Content != "" {
			raw += t.Content
		} else if t.Name != "" {
			raw += t.Name
		} else if t.StringValue != "" {
			raw += t.StringValue
		}
	}
	return &ast.Node{Class: ast.Unrecognized, Raw: raw}
}
