// Command exif-oxide-codegen turns sanitized ExifTool module symbols into
// generated Go source (spec §1-§7): extract reads one module's symbols,
// generate classifies and emits them, build runs the full pipeline over a
// module list, and registry verify round-trips the table registry.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/photostructure/exif-oxide-codegen/internal/extractor"
	"github.com/photostructure/exif-oxide-codegen/internal/model"
	"github.com/photostructure/exif-oxide-codegen/internal/obslog"
	"github.com/photostructure/exif-oxide-codegen/internal/pipeline"
	"github.com/photostructure/exif-oxide-codegen/internal/planner"
	"github.com/photostructure/exif-oxide-codegen/internal/registry"
)

var (
	version = "dev"

	outDir      string
	concurrency int
	verbose     bool
	reportPath  string
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "exif-oxide-codegen",
		Short:   "Generates native Go code from sanitized ExifTool module symbols",
		Version: version,
	}
	root.PersistentFlags().StringVar(&outDir, "out", "generated", "output directory for generated Go source")
	root.PersistentFlags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent module workers")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	root.PersistentFlags().StringVar(&reportPath, "report", "", "write the build report as JSON to this path")

	root.AddCommand(newExtractCommand())
	root.AddCommand(newGenerateCommand())
	root.AddCommand(newBuildCommand())
	root.AddCommand(newRegistryCommand())
	return root
}

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <module.pm>",
		Short: "Extract and print the sanitized symbols of a single ExifTool module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols, err := extractor.ExtractModule(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(symbols)
		},
	}
}

func newGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <module.pm>",
		Short: "Extract, classify, and generate Go source for a single module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modulePath := args[0]
			pkg := modulePackageName(modulePath)
			module := model.Module{Path: modulePath, Package: pkg}

			p, log, err := newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			reports, runErr := p.Run(cmd.Context(), []model.Module{module})
			p.TableRegistry.Freeze()
			if snapErr := p.TableRegistry.WriteSnapshot(registrySnapshotPath()); snapErr != nil {
				return snapErr
			}
			if writeErr := writeReports(reports); writeErr != nil {
				return writeErr
			}
			printReports(reports)
			return runErr
		},
	}
}

func newBuildCommand() *cobra.Command {
	var modulesFile string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the full pipeline over every module listed in --modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, err := readModuleList(modulesFile)
			if err != nil {
				return err
			}

			p, log, err := newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			reports, runErr := p.Run(cmd.Context(), modules)
			p.TableRegistry.Freeze()
			if snapErr := p.TableRegistry.WriteSnapshot(registrySnapshotPath()); snapErr != nil {
				return snapErr
			}
			if writeErr := writeReports(reports); writeErr != nil {
				return writeErr
			}
			printReports(reports)
			return runErr
		},
	}
	cmd.Flags().StringVar(&modulesFile, "modules", "", "path to a newline-delimited list of ExifTool module paths")
	_ = cmd.MarkFlagRequired("modules")
	return cmd
}

func newRegistryCommand() *cobra.Command {
	registryCmd := &cobra.Command{Use: "registry", Short: "Inspect or verify the generator's frozen table registry"}
	registryCmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Confirm every registered table resolves and its generated aggregate file was emitted (Testable Property 7)",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadTableRegistry(registrySnapshotPath())
			if err != nil {
				return err
			}
			for _, entry := range reg.All() {
				if _, err := reg.Resolve(entry.SourceName); err != nil {
					return fmt.Errorf("registry verify: %s did not round-trip: %w", entry.SourceName, err)
				}
				if err := verifyAggregateEmitted(entry); err != nil {
					return err
				}
			}
			fmt.Printf("registry verify: %d tables round-trip cleanly\n", len(reg.All()))
			return nil
		},
	})
	return registryCmd
}

func newPipeline(ctx context.Context) (*pipeline.Pipeline, *zap.SugaredLogger, error) {
	level := obslog.LevelInfo
	if verbose {
		level = obslog.LevelDebug
	}
	log, err := obslog.New(level, "")
	if err != nil {
		return nil, nil, err
	}

	pl, err := planner.New(outDir)
	if err != nil {
		return nil, nil, err
	}

	convRegistry := registry.NewConversionRegistry()
	tableRegistry := registry.NewTableRegistry()

	p := &pipeline.Pipeline{
		Planner:           pl,
		ConvRegistry:      convRegistry,
		TableRegistry:     tableRegistry,
		Log:               log,
		SeededInlineEnums: map[string]bool{},
		SharedMappings:    map[string]bool{},
		Concurrency:       concurrency,
	}
	return p, log, nil
}

func readModuleList(path string) ([]model.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read module list %s: %w", path, err)
	}
	defer f.Close()

	var modules []model.Module
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		modules = append(modules, model.Module{Path: line, Package: modulePackageName(line)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read module list %s: %w", path, err)
	}
	return modules, nil
}

func registrySnapshotPath() string {
	return filepath.Join(outDir, "registry.json")
}

// verifyAggregateEmitted confirms entry's module actually emitted a
// load_tag_table case for it, not just a JSON snapshot entry: registry
// verify must touch the generated tree itself (spec §6, §7 Testable
// Property 7), since the snapshot alone can go stale relative to a tree
// regenerated or hand-edited afterward.
func verifyAggregateEmitted(entry registry.TableRegistration) error {
	path := filepath.Join(outDir, entry.Module+planner.ModuleMarker, "aggregate.go")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("registry verify: %s: generated aggregate missing: %w", entry.SourceName, err)
	}
	src := string(data)
	if !strings.Contains(src, strconv.Quote(entry.SourceName)) {
		return fmt.Errorf("registry verify: %s: no load_tag_table case in %s", entry.SourceName, path)
	}
	if entry.Strategy == "TagKit" && !strings.Contains(src, entry.ConstantName) {
		return fmt.Errorf("registry verify: %s: load_tag_table case does not reference %s", entry.SourceName, entry.ConstantName)
	}
	return nil
}

func modulePackageName(modulePath string) string {
	base := filepath.Base(modulePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeReports(reports []pipeline.BuildReport) error {
	if reportPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}
	if err := os.WriteFile(reportPath, data, 0o644); err != nil {
		return fmt.Errorf("write build report %s: %w", reportPath, err)
	}
	return nil
}

func printReports(reports []pipeline.BuildReport) {
	for _, r := range reports {
		fmt.Printf("%s: %d symbols, %d tag kits, %d auto-converted, %d manual, %d regex rejected, %d files written\n",
			r.Module, r.SymbolsExtracted, r.TagKitsEmitted, r.ExpressionsAutoConverted, r.ExpressionsFlaggedManual, r.RegexPatternsRejected, len(r.FilesWritten))
		for _, name := range r.ManualImplementations {
			fmt.Printf("  needs manual implementation: %s\n", name)
		}
	}
}
