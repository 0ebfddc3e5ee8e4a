package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/photostructure/exif-oxide-codegen/internal/cgerrors"
	"github.com/photostructure/exif-oxide-codegen/internal/model"
)

// ExtractModule loads modulePath (a host path to an ExifTool .pm file, copied
// into the interpreter's /tmp mount before the extractor runs) and returns its extracted
// symbols. only, if non-empty, restricts extraction to the named symbols
// (spec §4.1 "Contract": optional filter list of target symbol names).
//
// A PerlHost is single-use per call in the sense that spec §5 requires:
// interpreter state does not leak across modules. Callers extracting many
// modules should construct a fresh PerlHost per module (internal/pipeline
// does this).
func ExtractModule(ctx context.Context, modulePath string, only []string) ([]model.Symbol, error) {
	host, err := NewWithContext(ctx)
	if err != nil {
		return nil, cgerrors.New(cgerrors.ExtractionFailure, modulePath, "", "starting Perl host", err)
	}
	defer host.Close()

	base := filepath.Base(modulePath)
	src, err := os.ReadFile(modulePath)
	if err != nil {
		return nil, cgerrors.New(cgerrors.ExtractionFailure, modulePath, "", "reading module source", err)
	}
	if err := os.WriteFile(filepath.Join(host.tmpDir, base), src, 0o644); err != nil {
		return nil, cgerrors.New(cgerrors.ExtractionFailure, modulePath, "", "copying module into the interpreter's /tmp", err)
	}

	argv := `"/tmp/` + base + `"`
	for _, name := range only {
		argv += `, "` + name + `"`
	}
	code := fmt.Sprintf("local @ARGV = (%s);\n%s", argv, fieldExtractorScript)

	stdout, stderr, err := host.eval(code)
	if err != nil {
		return nil, cgerrors.New(cgerrors.ExtractionFailure, modulePath, "", "running field_extractor.pl", err)
	}

	sawStart, sawEnd := DetectBanners(stderr)
	if !sawStart || !sawEnd {
		return nil, cgerrors.New(cgerrors.ExtractionFailure, modulePath, "",
			"extractor did not emit both start/end banners: "+strings.TrimSpace(stderr), nil)
	}

	return ParseStream(modulePath, stdout)
}
