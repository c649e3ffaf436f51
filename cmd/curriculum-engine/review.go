// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Record a curation decision for a stored resource",
	Long: `Review sets the curation status of a stored resource to reviewed,
rejected, or back to automated-discovery. Rejected resources are left out
of blueprints.`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().String("id", "", "resource id (required)")
	reviewCmd.Flags().String("status", "", "reviewed, rejected, or automated-discovery (required)")
	reviewCmd.Flags().String("reviewer", "", "who made the decision")
	reviewCmd.Flags().String("notes", "", "review notes")
	_ = reviewCmd.MarkFlagRequired("id")
	_ = reviewCmd.MarkFlagRequired("status")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	status, _ := cmd.Flags().GetString("status")
	reviewer, _ := cmd.Flags().GetString("reviewer")
	notes, _ := cmd.Flags().GetString("notes")

	if !types.CurationStatus(status).Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	e, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	r, err := e.Store.UpdateReview(cmd.Context(), id, types.CurationStatus(status), reviewer, notes)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), r)
}
