package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	goversion "github.com/hashicorp/go-version"

	"github.com/flarebyte/seshat-toolkit/internal/hook"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// Entry is one element of the declarative toolbox list. Exactly one of Name
// and Include is set: a named entry declares deployable content directly, an
// include entry points into the registry and is expanded during resolution.
type Entry struct {
	Name              string `json:"name,omitempty"`
	Include           string `json:"include,omitempty"`
	Source            string `json:"source,omitempty"`
	Subfolder         string `json:"subfolder,omitempty"`
	Version           string `json:"version,omitempty"`
	Placement         string `json:"placement,omitempty"`
	LocalHookTemplate string `json:"localHookTemplate,omitempty"`
	Hook              string `json:"hook,omitempty"`
}

// Record converts a named entry into a pipeline record.
func (e Entry) Record() toolbox.Record {
	return toolbox.Record{
		Name:              e.Name,
		Subfolder:         e.Subfolder,
		Source:            e.Source,
		Version:           e.Version,
		Placement:         toolbox.Placement(e.Placement),
		LocalHookTemplate: e.LocalHookTemplate,
		Hook:              e.Hook,
	}
}

// Config is the parsed deploy configuration. Root and policy fields are
// defaults that command-line flags override.
type Config struct {
	ConfigVersion      string        `json:"configVersion"`
	Toolboxes          []Entry       `json:"toolboxes,omitempty"`
	Registry           string        `json:"registry,omitempty"`
	PrivateRoot        string        `json:"privateRoot,omitempty"`
	SharedRoot         string        `json:"sharedRoot,omitempty"`
	HooksDir           string        `json:"hooksDir,omitempty"`
	PathFile           string        `json:"pathFile,omitempty"`
	PortableHookPolicy string        `json:"portableHookPolicy,omitempty"`
	LuaSandbox         *hook.Options `json:"luaSandbox,omitempty"`
}

// Load parses and validates a CUE deploy config. An empty path yields an
// empty config, so a run driven purely by registered names needs no file.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	if filepath.Ext(path) != ".cue" {
		return Config{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %v", err)
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Config{}, err
	}
	if tb := v.LookupPath(cue.ParsePath("toolboxes")); tb.Exists() && tb.Kind() != cue.ListKind {
		return Config{}, errors.New("invalid type for field: toolboxes (expected list)")
	}
	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %v", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BuildRecord turns an ad-hoc registered name into an include entry resolved
// against the registry like any configured include pointer.
func BuildRecord(name string) Entry {
	return Entry{Include: name}
}

func validate(cfg Config) error {
	for i, e := range cfg.Toolboxes {
		if (e.Name == "") == (e.Include == "") {
			return fmt.Errorf("toolboxes[%d]: exactly one of name and include is required", i)
		}
		switch e.Placement {
		case "", string(toolbox.PlacePrepend), string(toolbox.PlaceAppend):
		default:
			return fmt.Errorf("toolboxes[%d]: invalid placement %q", i, e.Placement)
		}
		if e.Include != "" && e.Version != "" {
			if _, err := goversion.NewConstraint(e.Version); err != nil {
				return fmt.Errorf("toolboxes[%d]: invalid version constraint %q", i, e.Version)
			}
		}
	}
	switch cfg.PortableHookPolicy {
	case "", string(hook.PolicyAlways), string(hook.PolicySkipActive):
	default:
		return fmt.Errorf("invalid portableHookPolicy %q", cfg.PortableHookPolicy)
	}
	return nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}
