package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curriculum-engine/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch, vet, extract, and store one resource",
	Long: `Ingest runs one resource through the pipeline: URL compliance, a
rate-limited fetch, HTML or PDF extraction, content compliance, and the
store upsert. The target may be a URL, an arXiv id, or a DOI.

Rejected and skipped resources print the skip reason; compliance
rejections are also appended to the do-not-ingest log.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("url", "", "URL, arXiv id, or DOI to ingest (required)")
	ingestCmd.Flags().String("subject", "", "subject tag for the stored resource")
	ingestCmd.Flags().String("level", "", "level tag for the stored resource")
	_ = ingestCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("url")
	subject, _ := cmd.Flags().GetString("subject")
	level, _ := cmd.Flags().GetString("level")

	e, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.Pipeline.Ingest(cmd.Context(), target, ingest.Options{Subject: subject, Level: level})
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %s\n", res.Reason)
	}
	return writeJSON(cmd.OutOrStdout(), res)
}
