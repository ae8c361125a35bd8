package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"threatforge/internal/codec"
	"threatforge/internal/config"
	"threatforge/internal/logging"
)

var exportCmd = &cobra.Command{
	Use:   "export <model.yaml>",
	Short: "Export the diagram of a model to a file",
	Long: `Renders the diagram of a threat model to a file. The format is taken from
--format, or from the output file extension when --format is not set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = formatForPath(out)
		}
		if err := exportDiagram(cmd.Context(), cfg, args[0], format, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s diagram to %s\n", format, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file")
	exportCmd.Flags().StringP("format", "f", "", "Output format: json, mermaid, png")
	exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}

// formatForPath maps a file extension to an export format
func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".mmd", ".mermaid", ".md":
		return "mermaid"
	case ".png":
		return "png"
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// exportDiagram renders the model at path into out
func exportDiagram(ctx context.Context, cfg *config.Config, path, format, out string) error {
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}

	sess, err := openSession(ctx, cfg, logging.NewNop(), nil, nil, path)
	if err != nil {
		return err
	}
	defer sess.Close()

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	snap := sess.svc.Snapshot()
	if err := exporter.Export(snap.Model, snap.Graph, f); err != nil {
		f.Close()
		os.Remove(out)
		return fmt.Errorf("export %s: %w", format, err)
	}
	return f.Close()
}
