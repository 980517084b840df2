package ordering

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type record struct {
	Keys []string `yaml:"keys"`
}

// Load restores a store's order from the state file at path. A missing file
// yields an empty, unseeded store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewStore(), nil
		}
		return nil, err
	}
	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	s := NewStore()
	if len(rec.Keys) > 0 {
		s.keys = rec.Keys
		s.seeded = true
	}
	return s, nil
}

// Save writes the store's current order to the state file at path.
func (s *Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(record{Keys: s.keys})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
