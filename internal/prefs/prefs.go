package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Prefs are the user's durable defaults for deployment runs. Command-line
// flags override these; these override the built-in defaults.
type Prefs struct {
	PrivateRoot        string `toml:"private_root"`
	SharedRoot         string `toml:"shared_root"`
	HooksDir           string `toml:"hooks_dir"`
	PathFile           string `toml:"path_file"`
	Registry           string `toml:"registry"`
	PortableHookPolicy string `toml:"portable_hook_policy"`
}

// DefaultPath returns the conventional preferences location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "seshat", "prefs.toml")
}

// Load reads preferences from path. A missing file yields zero preferences,
// not an error; a malformed file is reported.
func Load(path string) (Prefs, error) {
	if path == "" {
		return Prefs{}, nil
	}
	var p Prefs
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if os.IsNotExist(err) {
			return Prefs{}, nil
		}
		return Prefs{}, fmt.Errorf("read preferences: %v", err)
	}
	return p, nil
}

// Save writes preferences to path, creating parent directories as needed.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write preferences: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write preferences: %v", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("write preferences: %v", err)
	}
	return nil
}
