package normalizer

import "github.com/photostructure/exif-oxide-codegen/internal/ast"

// recognizeRegexBind implements spec §4.2 pass 3: "<expr> =~ <regex> and
// <expr> !~ <regex> become RegexMatch{target, regex, negated}." The target
// is whatever single node immediately precedes the bind operator — by this
// point in the pipeline that may already be a SelfFieldAccess or
// ValueReference rather than a raw Symbol.
func recognizeRegexBind(tokens []*ast.Node) []*ast.Node {
	var out []*ast.Node
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if tok.Class == ast.Operator && (tok.Op == "=~" || tok.Op == "!~") &&
			len(out) > 0 && i+1 < len(tokens) && tokens[i+1].Class == ast.Regex {
			target := out[len(out)-1]
			out = out[:len(out)-1]
			regexTok := tokens[i+1]
			out = append(out, &ast.Node{
				Class:   ast.RegexMatch,
				Target:  target,
				Pattern: regexTok.Pattern,
				Flags:   regexTok.Flags,
				Negated: tok.Op == "!~",
			})
			i++
			continue
		}

		out = append(out, tok)
	}
	return out
}
