package extractor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/photostructure/exif-oxide-codegen/internal/cgerrors"
	"github.com/photostructure/exif-oxide-codegen/internal/model"
)

const (
	bannerStart = "===EXTRACTOR-START==="
	bannerEnd   = "===EXTRACTOR-END==="
)

// magicNumberSymbol is the special-case hash name whose entries are opaque
// byte patterns rather than text (spec §4.1 step 7).
const magicNumberSymbol = "magicNumber"

// ParseStream decodes the extractor's newline-delimited JSON stdout into
// Symbol records (spec §6 wire schema). The first line that is not valid
// JSON, or that lacks a required field, stops decoding: ParseStream returns
// the symbols decoded before it together with an ExtractionFailure (spec
// §7). The extractor's own per-symbol warnings are printed to stderr rather
// than emitted as a malformed stdout line, so a malformed stdout line
// indicates a transport-level problem.
func ParseStream(module string, stdout string) ([]model.Symbol, error) {
	var symbols []model.Symbol
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var sym model.Symbol
		if err := json.Unmarshal([]byte(line), &sym); err != nil {
			return symbols, cgerrors.New(cgerrors.ExtractionFailure, module, "",
				fmt.Sprintf("malformed JSON on stdout line %d", lineNo), err)
		}
		if sym.Type == "" || sym.Name == "" || sym.Module == "" {
			return symbols, cgerrors.New(cgerrors.ExtractionFailure, module, sym.Name,
				fmt.Sprintf("record on line %d missing required field(s)", lineNo), nil)
		}
		if sym.Name == magicNumberSymbol {
			sym.Data = rewriteMagicNumber(sym.Data)
		}
		symbols = append(symbols, sym)
	}
	if err := scanner.Err(); err != nil {
		return symbols, cgerrors.New(cgerrors.ExtractionFailure, module, "", "reading extractor stdout", err)
	}
	return symbols, nil
}

// rewriteMagicNumber converts {file_type => "<opaque bytes>"} entries into
// {file_type => {"raw_bytes": [u8, …]}}, the special-case rule for the
// magicNumber symbol (spec §4.1 step 7).
func rewriteMagicNumber(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for fileType, v := range data {
		switch raw := v.(type) {
		case string:
			bs := make([]int, len(raw))
			for i := 0; i < len(raw); i++ {
				bs[i] = int(raw[i])
			}
			out[fileType] = map[string]any{"raw_bytes": bs}
		default:
			out[fileType] = v
		}
	}
	return out
}

// DetectBanners reports whether the extractor's start/end banner lines were
// both observed on stderr, used by the host-language driver to detect
// extraction boundaries (spec §6 "Process interface").
func DetectBanners(stderr string) (sawStart, sawEnd bool) {
	return strings.Contains(stderr, bannerStart), strings.Contains(stderr, bannerEnd)
}
