package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pbk-dev/pbk/internal/atomicfile"
)

// Save writes the complete metadata structure to path as indented JSON.
func Save(path string, meta *CompleteMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return atomicfile.WriteFile(path, data, 0644)
}

// Load reads a previously saved metadata structure.
func Load(path string) (*CompleteMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta CompleteMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return &meta, nil
}
