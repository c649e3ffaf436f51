package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curriculum-engine/internal/discovery"
	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find and rank candidate open resources for a subject",
	Long: `Discover queries OpenStax, curated OER catalogs, and scholarly indexes
concurrently, removes duplicate URLs, scores each candidate, and prints the
ranked list. A snapshot of the run is saved to the discovery directory.

Biomedical subjects also query PubMed Central and Europe PMC.`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().String("subject", "", "subject to search for (required)")
	discoverCmd.Flags().String("level", "", "audience level, e.g. high-school, undergraduate, graduate")
	discoverCmd.Flags().String("outcomes", "", "comma-separated target outcomes")
	discoverCmd.Flags().Int("maxResults", 0, "maximum results (default from config)")
	discoverCmd.Flags().String("format", "json", "output format: json, table, or csl")
	_ = discoverCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	level, _ := cmd.Flags().GetString("level")
	outcomes, _ := cmd.Flags().GetString("outcomes")
	maxResults, _ := cmd.Flags().GetInt("maxResults")
	format, _ := cmd.Flags().GetString("format")

	switch format {
	case "json", "table", "csl":
	default:
		return fmt.Errorf("unknown format %q (want json, table, or csl)", format)
	}

	e, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	run, err := e.Discoverer.Discover(cmd.Context(), types.DiscoveryRequest{
		Subject:        subject,
		Level:          level,
		TargetOutcomes: textutil.SplitCSV(outcomes),
		MaxResults:     maxResults,
	})
	if err != nil {
		return err
	}
	for _, ae := range run.AdapterErrors() {
		fmt.Fprintf(cmd.ErrOrStderr(), "adapter %s failed: %s\n", ae.Adapter, ae.Error)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "snapshot: %s\n", run.SnapshotPath)

	out := cmd.OutOrStdout()
	switch format {
	case "table":
		discovery.FormatTable(run.Results, out)
		return nil
	case "csl":
		return discovery.FormatCSL(run.Results, out)
	default:
		return discovery.FormatJSON(run.Results, out)
	}
}
