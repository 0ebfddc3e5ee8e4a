// Package extractor drives the Field Extractor (spec §4.1): it hosts a Perl
// interpreter, runs field_extractor.pl against one ExifTool module, and
// turns its newline-delimited JSON stdout into model.Symbol values.
//
// The host embeds zeroperl (Perl compiled to WebAssembly) via wazero, the
// same mechanism the teacher package (pkg/exiftool) uses to run
// Image::ExifTool at runtime. Here it runs field_extractor.pl instead: the
// same "compile Perl to WASM, call a cooperative eval entry point, read
// stdout back" shape, repointed from metadata *reading* to module
// *introspection*.
package extractor

import (
	"bytes"
	"context"
	"embed"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

//go:embed wasm/zeroperl.wasm
var wasmFS embed.FS

//go:embed assets/field_extractor.pl
var fieldExtractorScript string

const (
	// asyncify constants, unchanged from the teacher: zeroperl exposes a
	// cooperative-yield interpreter loop via the asyncify WASM transform.
	dataAddr  = 16
	dataStart = 24
	dataEnd   = 1024 * 1024 // 1MB
)

// PerlHost is one embedded Perl interpreter instance, good for extracting a
// single module (spec §5 "Extractor isolation": a fresh interpreter per
// module, discarded afterward — callers should construct a new PerlHost per
// module rather than reusing one across ExtractModule calls).
type PerlHost struct {
	mu      sync.Mutex
	ctx     context.Context
	runtime wazero.Runtime
	mod     api.Module
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	tmpDir  string
	devDir  string

	mallocFn    api.Function
	freeFn      api.Function
	evalFn      api.Function
	flushFn     api.Function
	getState    api.Function
	stopUnwind  api.Function
	startRewind api.Function
	stopRewind  api.Function
}

// New creates a PerlHost.
func New() (*PerlHost, error) {
	return NewWithContext(context.Background())
}

// NewWithContext creates a PerlHost bound to ctx, used for cancellation and
// per-module timeouts (spec §5 "Cancellation and timeouts").
func NewWithContext(ctx context.Context) (*PerlHost, error) {
	wasmBytes, err := wasmFS.ReadFile("wasm/zeroperl.wasm")
	if err != nil {
		return nil, fmt.Errorf("failed to read wasm: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "exif-oxide-extractor-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	devDir := tmpDir + "/dev"
	if err := os.MkdirAll(devDir, 0755); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to create dev dir: %w", err)
	}
	if err := os.WriteFile(devDir+"/null", []byte{}, 0644); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to create /dev/null: %w", err)
	}

	h := &PerlHost{
		ctx:    ctx,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		tmpDir: tmpDir,
		devDir: devDir,
	}

	h.runtime = wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, h.runtime)

	_, err = h.runtime.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, funcId, argPtr, argLen uint32) uint32 {
			return 0
		}).
		Export("call_host_function").
		Instantiate(ctx)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to create env module: %w", err)
	}

	config := wazero.NewModuleConfig().
		WithStdout(h.stdout).
		WithStderr(h.stderr).
		WithArgs("perl").
		WithFSConfig(wazero.NewFSConfig().
			WithDirMount(tmpDir, "/tmp").
			WithDirMount(devDir, "/dev"))

	h.mod, err = h.runtime.InstantiateWithConfig(ctx, wasmBytes, config)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	mem := h.mod.Memory()
	dataBuffer := make([]byte, 8)
	binary.LittleEndian.PutUint32(dataBuffer[0:4], dataStart)
	binary.LittleEndian.PutUint32(dataBuffer[4:8], dataEnd)
	if !mem.Write(dataAddr, dataBuffer) {
		h.Close()
		return nil, fmt.Errorf("failed to write asyncify data buffer")
	}

	h.mallocFn = h.mod.ExportedFunction("malloc")
	h.freeFn = h.mod.ExportedFunction("free")
	h.evalFn = h.mod.ExportedFunction("zeroperl_eval")
	h.flushFn = h.mod.ExportedFunction("zeroperl_flush")
	h.getState = h.mod.ExportedFunction("asyncify_get_state")
	h.stopUnwind = h.mod.ExportedFunction("asyncify_stop_unwind")
	h.startRewind = h.mod.ExportedFunction("asyncify_start_rewind")
	h.stopRewind = h.mod.ExportedFunction("asyncify_stop_rewind")

	if initFn := h.mod.ExportedFunction("_initialize"); initFn != nil {
		if _, err := initFn.Call(ctx); err != nil {
			h.Close()
			return nil, fmt.Errorf("_initialize failed: %w", err)
		}
	}

	if perlInitFn := h.mod.ExportedFunction("zeroperl_init"); perlInitFn != nil {
		if _, err := h.callWithAsyncify(perlInitFn); err != nil {
			h.Close()
			return nil, fmt.Errorf("zeroperl_init failed: %w", err)
		}
	}

	return h, nil
}

// Close releases all resources held by the interpreter instance.
func (h *PerlHost) Close() error {
	if h.mod != nil {
		h.mod.Close(h.ctx)
	}
	if h.runtime != nil {
		h.runtime.Close(h.ctx)
	}
	if h.tmpDir != "" {
		os.RemoveAll(h.tmpDir)
	}
	return nil
}

func (h *PerlHost) callWithAsyncify(fn api.Function, args ...uint64) ([]uint64, error) {
	mem := h.mod.Memory()
	dataBuffer := make([]byte, 8)

	for {
		results, err := fn.Call(h.ctx, args...)
		if err != nil {
			return nil, err
		}

		stateResults, _ := h.getState.Call(h.ctx)
		state := uint32(stateResults[0])

		switch state {
		case 0: // NORMAL
			return results, nil
		case 1: // UNWINDING
			h.stopUnwind.Call(h.ctx)
			binary.LittleEndian.PutUint32(dataBuffer[0:4], dataStart)
			binary.LittleEndian.PutUint32(dataBuffer[4:8], dataEnd)
			mem.Write(dataAddr, dataBuffer)
			h.startRewind.Call(h.ctx, dataAddr)
		case 2: // REWINDING
			h.stopRewind.Call(h.ctx)
			return results, nil
		}
	}
}

// eval executes Perl code and returns its captured stdout and stderr.
func (h *PerlHost) eval(code string) (stdout, stderr string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stdout.Reset()
	h.stderr.Reset()

	codeBytes := append([]byte(code), 0)
	results, err := h.mallocFn.Call(h.ctx, uint64(len(codeBytes)))
	if err != nil {
		return "", "", fmt.Errorf("malloc failed: %w", err)
	}
	codePtr := uint32(results[0])
	defer h.freeFn.Call(h.ctx, uint64(codePtr))

	mem := h.mod.Memory()
	if !mem.Write(codePtr, codeBytes) {
		return "", "", fmt.Errorf("failed to write code to memory")
	}

	if _, err = h.callWithAsyncify(h.evalFn, uint64(codePtr), 0, 0, 0); err != nil {
		return "", "", fmt.Errorf("eval failed: %w", err)
	}

	if h.flushFn != nil {
		h.flushFn.Call(h.ctx)
	}

	return h.stdout.String(), h.stderr.String(), nil
}

// Version reports the embedded Perl interpreter's version, surfaced in the
// build's diagnostic banner.
func (h *PerlHost) Version() (string, error) {
	out, _, err := h.eval(`print $^V;`)
	return out, err
}
