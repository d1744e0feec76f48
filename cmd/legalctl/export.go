package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportSlug string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render one document to PDF with the configured strategy",
	Long: `Render a published document to PDF without going through the HTTP API.

EXPORT_STRATEGY selects the strategy. The capture strategy loads the
document page from SITE_INTERNAL_URL, so the server must be running.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSlug, "slug", "", "document slug (required)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file; defaults to the slugified title")
	_ = exportCmd.MarkFlagRequired("slug")
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := openDeps(false, true)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Export.Timeout())
	defer cancel()

	art, err := rt.svc.Export(ctx, exportSlug)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = art.Filename
	}
	if err := os.WriteFile(out, art.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(art.Body))
	return nil
}
