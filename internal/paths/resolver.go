package paths

import (
	"os"
	"path/filepath"

	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// Locate returns the on-disk location and display name for a record. The
// shared root wins outright when its candidate directory exists; the private
// root is a fallback, never a merge. When neither root holds the toolbox the
// returned path is empty and only the display name is usable.
func Locate(rec toolbox.Record, sharedRoot, privateRoot string) (string, string) {
	display := rec.Name
	if sharedRoot != "" {
		if p := Candidate(sharedRoot, rec); dirExists(p) {
			return p, display
		}
	}
	if privateRoot != "" {
		if p := Candidate(privateRoot, rec); dirExists(p) {
			return p, display
		}
	}
	return "", display
}

// Candidate computes the directory a record would occupy under root, applying
// the naming convention (toolbox name, then the optional subfolder).
func Candidate(root string, rec toolbox.Record) string {
	p := filepath.Join(root, rec.Name)
	if rec.Subfolder != "" {
		p = filepath.Join(p, filepath.FromSlash(rec.Subfolder))
	}
	return p
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
