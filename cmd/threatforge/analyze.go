package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"threatforge/internal/config"
	"threatforge/internal/domain"
	"threatforge/internal/logging"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <model.yaml>",
	Short: "Suggest STRIDE threats for a model",
	Long:  `Runs the STRIDE rules over the elements and data flows of a model and prints the threats it does not record yet.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return analyzeModel(cmd.Context(), cfg, args[0], format, cmd.OutOrStdout())
	},
}

func init() {
	analyzeCmd.Flags().StringP("format", "f", "table", "Output format: table, yaml, json")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeModel prints the threats suggested for the model at path
func analyzeModel(ctx context.Context, cfg *config.Config, path, format string, w io.Writer) error {
	sess, err := openSession(ctx, cfg, logging.NewNop(), nil, nil, path)
	if err != nil {
		return err
	}
	defer sess.Close()

	threats, err := sess.svc.SuggestThreats(ctx)
	if err != nil {
		return err
	}

	switch format {
	case "table", "":
		return printThreatTable(w, threats)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(threats); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(threats)
	}
	return fmt.Errorf("unknown format %q (supported: table, yaml, json)", format)
}

func printThreatTable(w io.Writer, threats []domain.Threat) error {
	if len(threats) == 0 {
		_, err := fmt.Fprintln(w, "No new threats suggested")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tCATEGORY\tSEVERITY\tTITLE")
	for _, t := range threats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Ref(), t.Category, t.Severity, t.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d threats suggested\n", len(threats))
	return err
}
