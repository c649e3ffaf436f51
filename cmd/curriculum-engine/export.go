// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored resource to YAML or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output path (default: resources.<format> next to the database)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	e, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if out == "" {
		out = filepath.Join(filepath.Dir(e.Store.Path()), "resources."+format)
	}

	var n int
	switch format {
	case "yaml":
		n, err = e.Store.ExportYAML(cmd.Context(), out)
	case "json":
		n, err = e.Store.ExportJSON(cmd.Context(), out)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d resources to %s\n", n, out)
	return nil
}
