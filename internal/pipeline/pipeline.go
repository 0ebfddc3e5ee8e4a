// Package pipeline orchestrates a full run across many source modules:
// extraction, classification, strategy dispatch, and output-location
// writing, bounded by a worker pool that lets sibling modules keep
// progressing past one module's failure (spec §4.8, §5 "not canceling on
// failure").
package pipeline

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/photostructure/exif-oxide-codegen/internal/cgerrors"
	"github.com/photostructure/exif-oxide-codegen/internal/classify"
	"github.com/photostructure/exif-oxide-codegen/internal/extractor"
	"github.com/photostructure/exif-oxide-codegen/internal/model"
	"github.com/photostructure/exif-oxide-codegen/internal/obslog"
	"github.com/photostructure/exif-oxide-codegen/internal/planner"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"

	"go.uber.org/zap"
)

// BuildReport summarizes one module's run, aggregated into the CLI's final
// "needs manual implementation" output (spec §4.8).
type BuildReport struct {
	Module                   string
	SymbolsExtracted         int
	TagKitsEmitted           int
	ExpressionsAutoConverted int
	ExpressionsFlaggedManual int
	RegexPatternsRejected    int
	FilesWritten             []string
	ManualImplementations    []string
}

// Pipeline holds the registries and planner shared read-only across every
// concurrent module worker (spec §5 "frozen read-only registries").
type Pipeline struct {
	Planner           *planner.Planner
	ConvRegistry      *registry.ConversionRegistry
	TableRegistry     *registry.TableRegistry
	Log               *zap.SugaredLogger
	SeededInlineEnums map[string]bool
	SharedMappings    map[string]bool // names of hashes known to be shared/already-extracted (spec §4.4 SharedRef)
	Concurrency       int
}

// Run extracts and generates every module in modules, bounded by
// p.Concurrency concurrent workers. A module's extraction or generation
// failure is recorded as a cgerrors.ModuleFailure and does not cancel
// sibling workers (spec §5). The returned error, if non-nil, is the joined
// set of module failures; reports for modules that succeeded are still
// returned alongside it.
func (p *Pipeline) Run(ctx context.Context, modules []model.Module) ([]BuildReport, error) {
	limit := p.Concurrency
	if limit <= 0 {
		limit = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	var reports []BuildReport
	var failures []cgerrors.ModuleFailure

	for _, m := range modules {
		m := m
		g.Go(func() error {
			report, err := p.processModule(gctx, m)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, cgerrors.ModuleFailure{Module: m.Package, Err: err})
				if p.Log != nil {
					obslog.ModuleError(p.Log, m.Package, err)
				}
				return nil
			}
			reports = append(reports, report)
			return nil
		})
	}

	_ = g.Wait() // errors are collected via failures, not propagated through Wait

	sort.Slice(reports, func(i, j int) bool { return reports[i].Module < reports[j].Module })
	sort.Slice(failures, func(i, j int) bool { return failures[i].Module < failures[j].Module })

	if len(failures) > 0 {
		return reports, cgerrors.Join(failures)
	}
	return reports, nil
}

func (p *Pipeline) processModule(ctx context.Context, m model.Module) (BuildReport, error) {
	symbols, err := extractor.ExtractModule(ctx, m.Path, nil)
	if err != nil {
		return BuildReport{Module: m.Package}, err
	}

	if err := p.Planner.ClearModule(m.Package); err != nil {
		return BuildReport{Module: m.Package}, err
	}

	report := BuildReport{Module: m.Package, SymbolsExtracted: len(symbols)}
	strategiesEmitted := map[string]bool{}

	for _, sym := range symbols {
		strat := classify.Classify(sym, p.SeededInlineEnums)
		dest, manualNames, autoConverted, flaggedManual, regexRejected, err := p.dispatch(m, sym, strat)
		if err != nil {
			if p.Log != nil {
				obslog.ModuleWarning(p.Log, m.Package, sym.Name, err.Error())
			}
			continue
		}
		if dest != "" {
			report.FilesWritten = append(report.FilesWritten, dest)
			strategiesEmitted[string(strat)] = true
		}
		report.ManualImplementations = append(report.ManualImplementations, manualNames...)
		report.ExpressionsAutoConverted += autoConverted
		report.ExpressionsFlaggedManual += flaggedManual
		report.RegexPatternsRejected += regexRejected
		if strat == classify.TagKit {
			report.TagKitsEmitted++
		}
	}

	strategies := make([]string, 0, len(strategiesEmitted))
	for s := range strategiesEmitted {
		strategies = append(strategies, s)
	}

	var moduleTables []registry.TableRegistration
	if p.TableRegistry != nil {
		for _, t := range p.TableRegistry.All() {
			if t.Module == m.Package {
				moduleTables = append(moduleTables, t)
			}
		}
	}

	if _, err := p.Planner.WriteAggregate(m.Package, m.Package, strategies, moduleTables); err != nil {
		return report, err
	}

	return report, nil
}
