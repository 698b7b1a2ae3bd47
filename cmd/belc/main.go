// Package main provides the belc binary entry point. Belc compiles
// BEL documents into property graphs from the command line, sharing
// the pipeline and export formats of the API service.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/graphbio/bel/internal/util"
	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/compile"
	"github.com/graphbio/bel/pkg/lang"
	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/logger/console"
	"github.com/graphbio/bel/pkg/normalize"
)

const (
	Version = "0.1.0"
	appName = "belc"
)

func main() {
	util.LoadEnv()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "belc",
		Short: "BEL compiler",
		Long: `Belc compiles Biological Expression Language documents into
property graphs and renders them in the interchange formats the API
serves.

Sources are local files, directories of .bel files, or s3:// locations.
Compile options come from flags or a belc.yaml config file; flags win.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: debug}))
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default belc.yaml when present)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", util.GetEnvBool("DEBUG", false), "Enable debug logging")

	cmd.AddCommand(compileCmd(&configPath))
	cmd.AddCommand(validateCmd(&configPath))
	cmd.AddCommand(exportCmd(&configPath))
	cmd.AddCommand(schemaCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

const defaultConfigPath = "belc.yaml"

// fileConfig is the belc.yaml shape. Every field has a flag
// counterpart, and an explicitly set flag wins over the file value.
type fileConfig struct {
	Format          string `yaml:"format"`
	Parallel        int    `yaml:"parallel"`
	AllowNested     bool   `yaml:"allow_nested"`
	StrictLegacy    bool   `yaml:"strict_legacy"`
	LenientPmod     bool   `yaml:"lenient_pmod"`
	RelaxedHeader   bool   `yaml:"relaxed_header"`
	SkipAnnotations bool   `yaml:"skip_annotations"`
}

// loadFileConfig reads the config file. A missing file is only an
// error when the path was given explicitly.
func loadFileConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return &fileConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &fileConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// compileFlags is the option flag set shared by the compile, validate,
// and export commands.
type compileFlags struct {
	allowNested     bool
	strictLegacy    bool
	lenientPmod     bool
	relaxedHeader   bool
	skipAnnotations bool
}

func (f *compileFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.allowNested, "allow-nested", false, "Accept nested statements a -> (b -> c)")
	cmd.Flags().BoolVar(&f.strictLegacy, "strict-legacy", false, "Reject legacy constructs instead of rewriting them")
	cmd.Flags().BoolVar(&f.lenientPmod, "lenient-pmod", false, "Keep unknown protein modification types with a warning")
	cmd.Flags().BoolVar(&f.relaxedHeader, "relax-header", false, "Downgrade missing document metadata to a warning")
	cmd.Flags().BoolVar(&f.skipAnnotations, "skip-annotations", false, "Attach annotations without definition checks")
}

// options merges the file config under the explicitly set flags. The
// caller fills in the resolver.
func (f *compileFlags) options(cmd *cobra.Command, cfg *fileConfig) compile.Options {
	pick := func(name string, flag, file bool) bool {
		if cmd.Flags().Changed(name) {
			return flag
		}
		return file
	}
	return compile.Options{
		AllowNested: pick("allow-nested", f.allowNested, cfg.AllowNested),
		Policy: normalize.Policy{
			StrictLegacy: pick("strict-legacy", f.strictLegacy, cfg.StrictLegacy),
			LenientPmod:  pick("lenient-pmod", f.lenientPmod, cfg.LenientPmod),
		},
		RelaxedHeader:   pick("relax-header", f.relaxedHeader, cfg.RelaxedHeader),
		SkipAnnotations: pick("skip-annotations", f.skipAnnotations, cfg.SkipAnnotations),
	}
}

// printDiagnostics writes every diagnostic compiler style and returns
// how many are error tier or worse.
func printDiagnostics(w io.Writer, name string, report *common.Report) int {
	problems := 0
	for _, d := range report.Diagnostics() {
		fmt.Fprintf(w, "%s:%d: %s %d: %s\n", name, d.Line, d.Severity, d.Code, d.Message)
		if d.Severity != lang.SeverityWarning {
			problems++
		}
	}
	return problems
}
