package stage

import (
	"sort"

	"github.com/flarebyte/seshat-toolkit/internal/config"
	"github.com/flarebyte/seshat-toolkit/internal/hook"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// Error is a per-toolbox error surfaced by a stage.
type Error struct {
	Stage   string `json:"stage"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// Meta carries the run options through the pipeline.
type Meta struct {
	Entries         []config.Entry
	RegisteredNames []string
	Only            string

	PrivateRoot string
	SharedRoot  string
	HooksDir    string

	ResetPath        bool
	IncludeInstalled bool

	PortablePolicy hook.PortablePolicy
}

// Envelope is the contract between stages. Records move strictly forward:
// entries are expanded into the resolved and included sets, which are then
// enriched in place until the report stage.
type Envelope struct {
	Entries  []config.Entry   `json:"-"`
	Resolved []toolbox.Record `json:"resolved"`
	Included []toolbox.Record `json:"included"`
	Meta     *Meta            `json:"-"`
	Errors   []Error          `json:"errors,omitempty"`
}

// Result extracts the terminal record sets.
func (e Envelope) Result() toolbox.Result {
	return toolbox.Result{Resolved: e.Resolved, Included: e.Included}
}

// SortErrors orders envelope errors by (stage, name, message) so output is
// deterministic regardless of processing order.
func SortErrors(env *Envelope) {
	if env == nil || len(env.Errors) == 0 {
		return
	}
	sort.Slice(env.Errors, func(i, j int) bool {
		ei, ej := env.Errors[i], env.Errors[j]
		if ei.Stage != ej.Stage {
			return ei.Stage < ej.Stage
		}
		if ei.Name != ej.Name {
			return ei.Name < ej.Name
		}
		return ei.Message < ej.Message
	})
}
