package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ObjectEntry lists an asset to preload and how many instances to pool.
type ObjectEntry struct {
	Key      string `yaml:"key"`
	PoolSize int    `yaml:"pool_size"` // 0 = load only, no pool
}

type objectListFile struct {
	Objects []ObjectEntry `yaml:"objects"`
}

// LoadObjectList loads object_list.yaml.
func LoadObjectList(path string) ([]ObjectEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object_list: %w", err)
	}
	var f objectListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse object_list: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Objects))
	for _, e := range f.Objects {
		if e.Key == "" {
			return nil, fmt.Errorf("object_list: entry without key")
		}
		if _, dup := seen[e.Key]; dup {
			return nil, fmt.Errorf("object_list: duplicate key %q", e.Key)
		}
		if e.PoolSize < 0 {
			return nil, fmt.Errorf("object_list: %s pool_size must not be negative", e.Key)
		}
		seen[e.Key] = struct{}{}
	}
	return f.Objects, nil
}
