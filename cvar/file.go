package cvar

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// LoadFile reads a JSON object of variable names to numbers from path on fs
// and assigns each to s. Values already in s are overwritten.
//
//	{"_scoreSaveTime": 300}
func LoadFile(fs afero.Fs, path string, s Store) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("reading vars file: %w", err)
	}

	var vals map[string]float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("parsing vars file: %w", err)
	}

	for name, v := range vals {
		s.Set(name, v)
	}
	return nil
}
