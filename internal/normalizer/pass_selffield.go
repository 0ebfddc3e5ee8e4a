package normalizer

import "github.com/photostructure/exif-oxide-codegen/internal/ast"

// recognizeSelfFieldAccess implements spec §4.2 pass 2: "$$self{Name} and
// variants become SelfFieldAccess{field: "Name"}". It also folds $val and
// $valPt into the canonical ValueReference node (spec §3), since both are
// simple symbol-to-canonical-node rewrites that don't depend on operator
// context and are naturally done in the same bottom-up sweep.
func recognizeSelfFieldAccess(tokens []*ast.Node) []*ast.Node {
	var out []*ast.Node
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if tok.Class == ast.Word && tok.Name == "$$self" && i+1 < len(tokens) && tokens[i+1].Class == ast.List {
			fieldList := tokens[i+1].Children
			if len(fieldList) == 1 && (fieldList[0].Class == ast.Word || fieldList[0].Class == ast.QuotedString) {
				field := fieldList[0].Name
				if field == "" {
					field = fieldList[0].StringValue
				}
				out = append(out, &ast.Node{Class: ast.SelfFieldAccess, Field: field})
				i++
				continue
			}
		}

		if tok.Class == ast.Symbol && (tok.Name == "$val" || tok.Name == "$valPt") {
			out = append(out, &ast.Node{Class: ast.ValueReference, Name: tok.Name})
			continue
		}

		out = append(out, tok)
	}
	return out
}
