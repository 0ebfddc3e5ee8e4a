// Package cgerrors defines the error taxonomy shared by every stage of the
// codegen pipeline (extractor, normalizer, classifier, generator).
package cgerrors

import (
	"errors"
	"fmt"
)

// Kind identifies which bucket of the error taxonomy an error belongs to.
type Kind string

const (
	// ExtractionFailure means the extractor subprocess exited non-zero or
	// emitted malformed JSON. Fatal for the module, not for the build.
	ExtractionFailure Kind = "extraction_failure"
	// UnserializableSymbol means a single symbol could not be sanitized.
	UnserializableSymbol Kind = "unserializable_symbol"
	// UnparseableExpression means PPI rejected the expression, or the
	// normalizer returned Unrecognized/TooComplex.
	UnparseableExpression Kind = "unparseable_expression"
	// RegexIncompatible means a pattern uses features the target regex
	// engine does not support.
	RegexIncompatible Kind = "regex_incompatible"
	// UnknownTable means load_tag_table was invoked with an unregistered name.
	UnknownTable Kind = "unknown_table"
	// ConfigError means a JSON config input failed schema validation.
	ConfigError Kind = "config_error"
)

// Error is a taxonomy-tagged error. Module and Symbol are optional context;
// empty strings are omitted when formatting.
type Error struct {
	Kind    Kind
	Module  string
	Symbol  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	loc := ""
	switch {
	case e.Module != "" && e.Symbol != "":
		loc = fmt.Sprintf(" [%s/%s]", e.Module, e.Symbol)
	case e.Module != "":
		loc = fmt.Sprintf(" [%s]", e.Module)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s%s: %s: %v", e.Kind, loc, e.Message, e.Err)
	}
	return fmt.Sprintf("%s%s: %s", e.Kind, loc, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, cgerrors.ExtractionFailure)-style checks against
// a bare Kind value by wrapping it in sentinelKind.
func (e *Error) Is(target error) bool {
	var k sentinelKind
	if errors.As(target, &k) {
		return e.Kind == Kind(k)
	}
	return false
}

type sentinelKind Kind

func (s sentinelKind) Error() string { return string(s) }

// Sentinel returns an error value usable with errors.Is to test a Kind,
// e.g. errors.Is(err, cgerrors.Sentinel(cgerrors.ConfigError)).
func Sentinel(k Kind) error { return sentinelKind(k) }

// New constructs a taxonomy error.
func New(kind Kind, module, symbol, message string, err error) *Error {
	return &Error{Kind: kind, Module: module, Symbol: symbol, Message: message, Err: err}
}

// ModuleFailure collects fatal per-module errors across a build; non-fatal
// warnings are tracked separately by the caller (see pipeline.BuildReport).
type ModuleFailure struct {
	Module string
	Err    error
}

// Join mirrors errors.Join for a slice of ModuleFailure, used to produce the
// build's final non-zero exit error without losing per-module identity.
func Join(failures []ModuleFailure) error {
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, fmt.Errorf("module %s: %w", f.Module, f.Err))
	}
	return errors.Join(errs...)
}
