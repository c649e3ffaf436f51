// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the curriculum-engine CLI.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pdiddy/curriculum-engine/internal/config"
	"github.com/pdiddy/curriculum-engine/internal/engine"
	"github.com/pdiddy/curriculum-engine/internal/logger"
	"github.com/pdiddy/curriculum-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ and the environment at
// startup.
var loadedSecrets map[string]string

var rootCmd = &cobra.Command{
	Use:   "curriculum-engine",
	Short: "Discover, vet, and organize open educational resources into course blueprints",
	Long: `curriculum-engine finds openly licensed educational material, checks it
against a compliance policy, extracts and indexes its text, and assembles
course blueprints from what it has stored.

The pipeline stages are subcommands: discover, ingest, search-index, and
build-blueprint. review and export manage the stored catalog; serve exposes
the same operations over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(verbose)

		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		s = secrets.WithEnv(s)
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets: %v", keys)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "path to the JSON config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log progress to stderr")
}

// openEngine loads the config named by --config and wires the engine.
func openEngine(cmd *cobra.Command) (*engine.Engine, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return engine.Open(cfg, engine.Options{Secrets: loadedSecrets})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
