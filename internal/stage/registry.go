package stage

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/flarebyte/seshat-toolkit/internal/hook"
	"github.com/flarebyte/seshat-toolkit/internal/paths"
	"github.com/flarebyte/seshat-toolkit/internal/registry"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// Fetcher materializes content for one record, writing the outcome onto it.
type Fetcher interface {
	Fetch(rec *toolbox.Record)
}

// Deps carries the external collaborators stages call out to. Tests wire
// fakes; the deploy command wires the real implementations.
type Deps struct {
	Search   paths.SearchPath
	Fetcher  Fetcher
	Registry registry.Store
	Hooks    hook.Runner
	Log      *logrus.Entry
	// Active is the search-path snapshot taken before this run mutated
	// anything; the skip-active portable hook policy reads it.
	Active []string
}

// Runner executes a stage.
type Runner func(ctx context.Context, in Envelope, deps Deps) (Envelope, error)

var stageRegistry = map[string]Runner{}

// Register adds a stage runner.
func Register(name string, r Runner) {
	stageRegistry[name] = r
}

// Run executes a registered stage by name.
func Run(ctx context.Context, name string, in Envelope, deps Deps) (Envelope, error) {
	r, ok := stageRegistry[name]
	if !ok {
		return Envelope{}, ErrUnknown{name: name}
	}
	return r(ctx, in, deps)
}

// ErrUnknown is returned when a stage is not found.
type ErrUnknown struct{ name string }

func (e ErrUnknown) Error() string { return "unknown stage: " + e.name }
