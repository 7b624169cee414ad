package templatepack

import (
	"log"
	"os"
	"path/filepath"
)

// DiscoverPacks scans the specified directory for pack subdirectories
// containing pack.yaml manifest files. Invalid packs are logged and skipped
// (not fatal) to allow partial discovery. Packs that declare a variables
// schema have their sample values validated against it, so a broken pack is
// caught at startup instead of at send time.
//
// Returns all successfully loaded pack metadata.
func DiscoverPacks(packDir string) ([]*PackMetadata, error) {
	var packs []*PackMetadata

	entries, err := os.ReadDir(packDir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		manifestPath := filepath.Join(packDir, entry.Name(), "pack.yaml")

		if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
			continue // skip directories without pack.yaml
		}

		meta, err := LoadPackMetadata(manifestPath)
		if err != nil {
			log.Printf("Warning: failed to load template pack from %s: %v", entry.Name(), err)
			continue
		}

		if meta.VariablesSchemaPath != "" {
			schemaPath := filepath.Join(packDir, entry.Name(), meta.VariablesSchemaPath)
			if err := ValidateSampleValues(schemaPath, meta.SampleValues); err != nil {
				log.Printf("Warning: template pack %s failed schema validation: %v", meta.Name, err)
				continue
			}
		}

		packs = append(packs, meta)
	}

	return packs, nil
}
