package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curriculum-engine/internal/blueprint"
	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

var buildBlueprintCmd = &cobra.Command{
	Use:   "build-blueprint",
	Short: "Build a four-module course blueprint from stored resources",
	Long: `Build-blueprint assembles a course outline of four modules with two
lessons each, citing stored resources that match the subject and level.
It writes course_blueprint.json and COURSE_BLUEPRINT.md under the blueprint
directory and prints their paths.

With --seedIngest N, discovery runs first and the top N candidates scoring
at least discovery.minScore are ingested before the build.`,
	RunE: runBuildBlueprint,
}

func init() {
	buildBlueprintCmd.Flags().String("subject", "", "course subject (required)")
	buildBlueprintCmd.Flags().String("level", "", "audience level")
	buildBlueprintCmd.Flags().String("outcomes", "", "comma-separated course outcomes")
	buildBlueprintCmd.Flags().Int("seedIngest", 0, "ingest the top N discovery results first")
	buildBlueprintCmd.Flags().String("mode", string(types.ModeManual), "generation mode: manual or byo-key")
	_ = buildBlueprintCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(buildBlueprintCmd)
}

func runBuildBlueprint(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	level, _ := cmd.Flags().GetString("level")
	outcomes, _ := cmd.Flags().GetString("outcomes")
	seedN, _ := cmd.Flags().GetInt("seedIngest")
	mode, _ := cmd.Flags().GetString("mode")

	e, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	run, err := e.BuildBlueprint(cmd.Context(), blueprint.Request{
		Subject:  subject,
		Level:    level,
		Outcomes: textutil.SplitCSV(outcomes),
		Mode:     types.GenerationMode(mode),
	}, seedN)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	for _, r := range run.Seeded {
		if r.Skipped {
			fmt.Fprintf(stderr, "seed skipped %s: %s\n", r.URL, r.Reason)
		} else {
			fmt.Fprintf(stderr, "seed ingested %s\n", r.Resource.ID)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), run.Artifacts.JSONPath)
	fmt.Fprintln(cmd.OutOrStdout(), run.Artifacts.MarkdownPath)
	return nil
}
