package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/curriculum-engine/internal/store"
)

var searchIndexCmd = &cobra.Command{
	Use:   "search-index",
	Short: "Full-text search over stored resources",
	Long: `Search-index runs a ranked full-text query over the titles, institutions,
topic tags, and extracted text of stored resources. Each word matches as a
prefix.`,
	RunE: runSearchIndex,
}

func init() {
	searchIndexCmd.Flags().String("query", "", "search text (required)")
	searchIndexCmd.Flags().Int("limit", store.DefaultSearchLimit, "maximum hits")
	_ = searchIndexCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(searchIndexCmd)
}

func runSearchIndex(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")

	e, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	hits, err := e.Store.Search(cmd.Context(), query, limit)
	if err != nil {
		return err
	}
	if hits == nil {
		hits = []store.Hit{}
	}
	return writeJSON(cmd.OutOrStdout(), hits)
}
