// Package obslog configures the structured logger the codegen pipeline
// uses to report progress and failures (spec §4.8, §7): warnings for a
// skipped symbol or a demoted expression, errors for a fatal module
// failure, grounded on goa-ai's go.uber.org/zap dependency since the
// teacher repo does no structured logging of its own.
package obslog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level selects the logger's verbosity, mirroring the CLI's --verbose flag.
type Level string

const (
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
)

// New builds a console-encoded SugaredLogger. jsonPath, when non-empty,
// additionally tees every entry to a JSON file at that path so a CI
// pipeline can machine-parse a run's warnings and errors (spec §7 "surface
// the rejected patterns").
func New(level Level, jsonPath string) (*zap.SugaredLogger, error) {
	zapLevel := zapcore.InfoLevel
	if level == LevelDebug {
		zapLevel = zapcore.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.TimeKey = ""
	consoleEncoder := zapcore.NewConsoleEncoder(consoleCfg)
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), zapLevel),
	}

	if jsonPath != "" {
		f, err := os.OpenFile(jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("obslog: open json sink %s: %w", jsonPath, err)
		}
		jsonEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(f), zapLevel))
	}

	core := zapcore.NewTee(cores...)
	return zap.New(core).Sugar(), nil
}

// ModuleWarning logs a non-fatal skip: a symbol the extractor couldn't
// sanitize, or an expression demoted to manual rather than translated
// natively (spec §7 distinguishing warnings from fatal module errors).
func ModuleWarning(log *zap.SugaredLogger, module, symbol, reason string) {
	log.Warnw("skipped symbol", "module", module, "symbol", symbol, "reason", reason)
}

// ModuleError logs a fatal per-module failure: the whole module's
// extraction or generation failed and its build report carries no output.
func ModuleError(log *zap.SugaredLogger, module string, err error) {
	log.Errorw("module failed", "module", module, "error", err)
}
