package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"gopkg.in/yaml.v3"

	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// ErrNotFound is returned when a toolbox definition is absent from the registry.
var ErrNotFound = errors.New("toolbox not found in registry")

const definitionSuffix = ".toolbox.yaml"

// Definition is one registry entry: a deployable record, optionally pointing
// at further toolboxes via includes.
type Definition struct {
	toolbox.Record `yaml:",inline"`
	Includes       []string `yaml:"includes,omitempty"`
}

// Store resolves toolbox names to definitions. The file-backed Registry is the
// production implementation; tests substitute their own.
type Store interface {
	Lookup(name string) (Definition, error)
}

// Registry reads definitions from a directory of <name>.toolbox.yaml files.
type Registry struct {
	dir string
}

// Ensure makes the registry cache current for the given spec and returns a
// store over it. A git spec is cloned into cacheDir on first use and pulled
// when update is set; a local directory spec is used in place. An empty spec
// yields a registry where every lookup misses.
func Ensure(spec, cacheDir string, update bool) (*Registry, error) {
	if spec == "" {
		return &Registry{}, nil
	}
	if !isGitSpec(spec) {
		info, err := os.Stat(spec)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("registry directory not found: %s", spec)
		}
		return &Registry{dir: spec}, nil
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		if _, err := git.PlainClone(cacheDir, false, &git.CloneOptions{URL: spec, Depth: 1}); err != nil {
			return nil, fmt.Errorf("clone registry: %v", err)
		}
		return &Registry{dir: cacheDir}, nil
	}
	if update {
		repo, err := git.PlainOpen(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("open registry cache: %v", err)
		}
		wt, err := repo.Worktree()
		if err != nil {
			return nil, fmt.Errorf("open registry cache: %v", err)
		}
		if err := wt.Pull(&git.PullOptions{}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil, fmt.Errorf("update registry: %v", err)
		}
	}
	return &Registry{dir: cacheDir}, nil
}

// Lookup reads the definition file for name.
func (r *Registry) Lookup(name string) (Definition, error) {
	if r.dir == "" {
		return Definition{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	p := filepath.Join(r.dir, name+definitionSuffix)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Definition{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Definition{}, fmt.Errorf("read definition %s: %v", name, err)
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse definition %s: %v", name, err)
	}
	if def.Name == "" {
		def.Name = name
	}
	return def, nil
}

func isGitSpec(spec string) bool {
	for _, prefix := range []string{"http://", "https://", "git@", "ssh://", "file://"} {
		if strings.HasPrefix(spec, prefix) {
			return true
		}
	}
	return strings.HasSuffix(spec, ".git")
}
