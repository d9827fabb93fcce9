package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Preferences are the user choices kept between runs.
type Preferences struct {
	Effect  string `json:"effect"`
	Palette string `json:"palette"`
}

// DefaultPreferences is used when nothing was saved yet.
func DefaultPreferences() *Preferences {
	return &Preferences{Effect: "sphere"}
}

// LoadPreferences reads preferences from @path. A missing file yields the defaults.
func LoadPreferences(path string) (*Preferences, error) {
	fp, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultPreferences(), nil
		}
		return nil, err
	}
	defer fp.Close()

	prefs := DefaultPreferences()
	if err := json.NewDecoder(fp).Decode(prefs); err != nil {
		return nil, fmt.Errorf("preferences %s: %w", path, err)
	}
	return prefs, nil
}

// Save writes the preferences to @path.
func (p *Preferences) Save(path string) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(fp).Encode(p); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
