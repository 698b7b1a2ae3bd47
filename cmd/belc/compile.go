package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/graphbio/bel/internal/storage"
	"github.com/graphbio/bel/internal/util"
	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/compile"
	"github.com/graphbio/bel/pkg/export"
	"github.com/graphbio/bel/pkg/graph"
	"github.com/graphbio/bel/pkg/resolve"
	"github.com/graphbio/bel/pkg/store"
	graphstorage "github.com/graphbio/bel/pkg/store/pgx"
)

func compileCmd(configPath *string) *cobra.Command {
	var (
		flags      compileFlags
		formatName string
		outPath    string
		toStore    bool
		parallel   int
	)

	cmd := &cobra.Command{
		Use:   "compile SOURCE",
		Short: "Compile BEL documents into graphs",
		Long: `Compile BEL documents into graphs.

SOURCE is a .bel file, a directory of .bel files, or an s3:// location.
Results go to the database with --store, or to a file with --out for a
single document. Without either, belc prints the compile summary only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadFileConfig(*configPath)
			if err != nil {
				return err
			}
			format, err := pickFormat(cmd, cfg, formatName)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("parallel") && cfg.Parallel > 0 {
				parallel = cfg.Parallel
			}

			documents, err := loadDocuments(ctx, args[0])
			if err != nil {
				return err
			}
			if outPath != "" && len(documents) != 1 {
				return fmt.Errorf("--out needs a single document source, got %d documents", len(documents))
			}

			var st store.GraphStore
			if toStore {
				var pool *pgxpool.Pool
				st, pool, err = openStore(ctx)
				if err != nil {
					return err
				}
				defer pool.Close()
			}

			options := flags.options(cmd, cfg)
			options.Resolver = newResolver(ctx, st)
			runner := compile.NewRunner(compile.RunnerParams{Options: options, Parallel: parallel})
			results := runner.Run(ctx, documents)

			failed := 0
			for _, document := range results {
				printDiagnostics(os.Stderr, document.Name, document.Result.Report)
				if document.Err != nil {
					failed++
					var fatal *common.FatalError
					if !errors.As(document.Err, &fatal) {
						fmt.Fprintf(os.Stderr, "%s: %v\n", document.Name, document.Err)
					}
					continue
				}

				summary := document.Result.Report.Summary()
				fmt.Printf("%s: %d nodes, %d edges, %d warnings, %d errors, %d excluded\n",
					document.Name,
					document.Result.Graph.NodeCount(), document.Result.Graph.EdgeCount(),
					summary.Warnings, summary.Errors, summary.Excluded)

				if toStore {
					graphID, saveErr := st.SaveGraph(ctx, document.Result.Graph, document.Result.Report)
					if saveErr != nil {
						return fmt.Errorf("failed to save %s: %w", document.Name, saveErr)
					}
					fmt.Printf("%s: saved as graph %d\n", document.Name, graphID)
				}
				if outPath != "" {
					if err := writeExport(document.Result.Graph, format, outPath); err != nil {
						return err
					}
					fmt.Printf("%s: wrote %s\n", document.Name, outPath)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(results))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&formatName, "format", "", "Export format for --out (default nodelink)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the export to a file")
	cmd.Flags().BoolVar(&toStore, "store", false, "Save compiled graphs to the database (DATABASE_URL)")
	cmd.Flags().IntVar(&parallel, "parallel", int(util.GetEnvNumeric("COMPILE_PARALLEL_DOCS", 0)), "Documents compiling at once (default 4)")

	return cmd
}

// pickFormat resolves the format name from the flag, the config file,
// and the nodelink default, in that order.
func pickFormat(cmd *cobra.Command, cfg *fileConfig, flagValue string) (export.Format, error) {
	name := flagValue
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		name = cfg.Format
	}
	if name == "" {
		name = "nodelink"
	}
	format, ok := export.ByName(strings.ToLower(name))
	if !ok {
		return export.Format{}, fmt.Errorf("unknown export format %q, choose one of %s",
			name, strings.Join(export.FormatNames(), ", "))
	}
	return format, nil
}

// openStore migrates and connects to the database named by
// DATABASE_URL. The caller closes the returned pool.
func openStore(ctx context.Context) (store.GraphStore, *pgxpool.Pool, error) {
	databaseURL := util.GetEnv("DATABASE_URL")
	if databaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is not set")
	}
	if err := graphstorage.Migrate(databaseURL); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return graphstorage.NewGraphDBStore(graphstorage.GraphDBStoreParams{Conn: pool}), pool, nil
}

// newResolver builds the definition resolver: http and file locations
// always work, s3:// locations when AWS is configured, and the shared
// definition cache when a store is connected.
func newResolver(ctx context.Context, shared store.GraphStore) *resolve.Resolver {
	params := resolve.Params{}
	if s3Client := storage.NewClient(ctx); s3Client != nil {
		params.Objects = s3Client
	}
	if shared != nil {
		params.Shared = shared
	}
	return resolve.New(params)
}

// writeExport renders the graph to a file, or stdout when path is
// empty.
func writeExport(g *graph.Graph, format export.Format, path string) error {
	if path == "" {
		return format.Write(os.Stdout, g)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := format.Write(file, g); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
