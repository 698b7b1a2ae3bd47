package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/compile"
	"github.com/graphbio/bel/pkg/export"
	"github.com/graphbio/bel/pkg/graph"
	"github.com/graphbio/bel/pkg/store"
)

func exportCmd(configPath *string) *cobra.Command {
	var (
		flags      compileFlags
		graphID    int64
		formatName string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export [SOURCE]",
		Short: "Render a graph in an interchange format",
		Long: `Render a graph in an interchange format.

The graph comes from the database with --graph, or from compiling a
single SOURCE document. Output goes to --out, or stdout without it.`,
		Args: cobra.MaximumNArgs(1),
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

			if len(args) == 0 && graphID == 0 {
				return errors.New("export needs a SOURCE argument or --graph")
			}
			if len(args) > 0 && graphID != 0 {
				return errors.New("export takes a SOURCE argument or --graph, not both")
			}

			var g *graph.Graph
			if graphID != 0 {
				st, pool, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer pool.Close()

				g, err = st.GetGraph(ctx, graphID)
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("graph %d not found", graphID)
				}
				if err != nil {
					return err
				}
			} else {
				documents, err := loadDocuments(ctx, args[0])
				if err != nil {
					return err
				}
				if len(documents) != 1 {
					return fmt.Errorf("export compiles a single document, got %d", len(documents))
				}

				options := flags.options(cmd, cfg)
				options.Resolver = newResolver(ctx, nil)
				session := compile.NewSession(options)
				result, err := session.Compile(ctx, documents[0].Text)
				printDiagnostics(os.Stderr, documents[0].Name, result.Report)
				if err != nil {
					var fatal *common.FatalError
					if errors.As(err, &fatal) {
						return fmt.Errorf("%s: compile failed", documents[0].Name)
					}
					return err
				}
				g = result.Graph
			}

			return writeExport(g, format, outPath)
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64Var(&graphID, "graph", 0, "Stored graph id to export (DATABASE_URL)")
	cmd.Flags().StringVar(&formatName, "format", "", "Export format (default nodelink)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to a file instead of stdout")

	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the node-link export JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(export.NodeLinkSchema(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
