package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// SearchPath mutates the ordered search-path manifest consumed by the runtime.
// Insertion order is significant: prepended entries shadow later ones.
type SearchPath interface {
	Add(path string, placement toolbox.Placement) error
	Reset(keepInstalled bool) error
	Current() ([]string, error)
}

// FileSearchPath stores the search path as one absolute directory per line in
// a manifest file. A mutex serializes mutations so concurrent callers cannot
// interleave read-modify-write cycles.
type FileSearchPath struct {
	mu   sync.Mutex
	file string
}

// NewFileSearchPath returns a manifest-backed search path. The file is created
// on first mutation.
func NewFileSearchPath(file string) *FileSearchPath {
	return &FileSearchPath{file: file}
}

// Add inserts path into the manifest. An entry already present is moved to the
// requested position rather than duplicated.
func (s *FileSearchPath) Add(path string, placement toolbox.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.read()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e != path {
			kept = append(kept, e)
		}
	}
	if placement == toolbox.PlaceAppend {
		kept = append(kept, path)
	} else {
		kept = append([]string{path}, kept...)
	}
	return s.write(kept)
}

// Reset clears the manifest. With keepInstalled, entries whose directories
// still exist on disk survive as the baseline.
func (s *FileSearchPath) Reset(keepInstalled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !keepInstalled {
		return s.write(nil)
	}
	entries, err := s.read()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if info, err := os.Stat(e); err == nil && info.IsDir() {
			kept = append(kept, e)
		}
	}
	return s.write(kept)
}

// Current returns the manifest entries in order. A missing manifest is an
// empty path, not an error.
func (s *FileSearchPath) Current() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileSearchPath) read() ([]string, error) {
	b, err := os.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read search path: %v", err)
	}
	var entries []string
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}

func (s *FileSearchPath) write(entries []string) error {
	if dir := filepath.Dir(s.file); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write search path: %v", err)
		}
	}
	var buf strings.Builder
	for _, e := range entries {
		buf.WriteString(e)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(s.file, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write search path: %v", err)
	}
	return nil
}
