package strategies

import (
	"github.com/dave/jennifer/jen"
)

// OtherSpec is the catch-all strategy's input: a symbol the classifier
// could not place into any of the other eight strategies (spec §4.3 item
// 9).
type OtherSpec struct {
	ConstantName string
	SourceName   string // fully-qualified source symbol name, for the diagnostic
	Module       string
}

// EmitOther renders a commented placeholder plus a diagnostic variable the
// build report can surface in its "needs manual implementation" list (spec
// §4.3 "falls through to a catch-all that emits a commented placeholder and
// a diagnostic").
func EmitOther(pkg string, spec OtherSpec) (*jen.File, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by exif-oxide-codegen. DO NOT EDIT.")
	f.Commentf("%s (module %s) did not match any known strategy and needs a hand-written implementation.", spec.SourceName, spec.Module)

	f.Var().Id(spec.ConstantName + "Unclassified").Op("=").Lit(spec.SourceName)
	return f, nil
}
