// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// ExportYAML writes every stored resource to path as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, path string) (int, error) {
	resources, err := s.exportResources(ctx)
	if err != nil {
		return 0, err
	}
	data, err := yaml.Marshal(resources)
	if err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	return len(resources), writeExport(path, data)
}

// ExportJSON writes every stored resource to path as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, path string) (int, error) {
	resources, err := s.exportResources(ctx)
	if err != nil {
		return 0, err
	}
	data, err := json.MarshalIndent(resources, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}
	return len(resources), writeExport(path, data)
}

func (s *Store) exportResources(ctx context.Context) ([]types.Resource, error) {
	resources, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if resources == nil {
		resources = []types.Resource{}
	}
	return resources, nil
}

func writeExport(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
