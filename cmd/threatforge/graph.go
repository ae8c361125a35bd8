package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"threatforge/internal/codec"
	"threatforge/internal/config"
	"threatforge/internal/logging"
)

var graphCmd = &cobra.Command{
	Use:   "graph <model.yaml>",
	Short: "Print the diagram graph of a model",
	Long:  `Builds the visual graph of a threat model, applying its saved layout, and prints it as JSON or a Mermaid flowchart.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return writeGraph(cmd.Context(), cfg, args[0], format, cmd.OutOrStdout())
	},
}

func init() {
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: json, mermaid")
	rootCmd.AddCommand(graphCmd)
}

// writeGraph renders the model at path in a text format
func writeGraph(ctx context.Context, cfg *config.Config, path, format string, w io.Writer) error {
	if format == "png" {
		return fmt.Errorf("png is binary, use the export command")
	}
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}

	sess, err := openSession(ctx, cfg, logging.NewNop(), nil, nil, path)
	if err != nil {
		return err
	}
	defer sess.Close()

	snap := sess.svc.Snapshot()
	return exporter.Export(snap.Model, snap.Graph, w)
}
