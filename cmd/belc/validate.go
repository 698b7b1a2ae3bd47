package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/graphbio/bel/internal/util"
	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/compile"
)

func validateCmd(configPath *string) *cobra.Command {
	var (
		flags    compileFlags
		parallel int
	)

	cmd := &cobra.Command{
		Use:   "validate SOURCE...",
		Short: "Check BEL documents and report diagnostics",
		Long: `Check BEL documents and report diagnostics.

Every document is compiled without storing anything; diagnostics print
one per line. The exit code is 1 when any document has error or fatal
diagnostics.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadFileConfig(*configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("parallel") && cfg.Parallel > 0 {
				parallel = cfg.Parallel
			}

			var documents []compile.Document
			for _, source := range args {
				batch, err := loadDocuments(ctx, source)
				if err != nil {
					return err
				}
				documents = append(documents, batch...)
			}

			options := flags.options(cmd, cfg)
			options.Resolver = newResolver(ctx, nil)
			runner := compile.NewRunner(compile.RunnerParams{Options: options, Parallel: parallel})
			results := runner.Run(ctx, documents)

			problems, bad := 0, 0
			for _, document := range results {
				count := printDiagnostics(os.Stdout, document.Name, document.Result.Report)
				if document.Err != nil {
					var fatal *common.FatalError
					if !errors.As(document.Err, &fatal) {
						return document.Err
					}
				}
				summary := document.Result.Report.Summary()
				fmt.Printf("%s: %d warnings, %d errors\n", document.Name, summary.Warnings, summary.Errors)
				if count > 0 {
					problems += count
					bad++
				}
			}

			if problems > 0 {
				return fmt.Errorf("%d problems in %d of %d documents", problems, bad, len(results))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&parallel, "parallel", int(util.GetEnvNumeric("COMPILE_PARALLEL_DOCS", 0)), "Documents compiling at once (default 4)")

	return cmd
}
