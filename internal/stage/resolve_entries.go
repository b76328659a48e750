package stage

import (
	"context"

	"github.com/flarebyte/seshat-toolkit/internal/config"
)

const resolveEntriesStage = "resolve-entries"

// resolveEntriesRunner merges the declarative config entries with ad-hoc
// registered names into a single entry list. An empty config with no
// registered names yields an empty run, not an error.
func resolveEntriesRunner(_ context.Context, in Envelope, _ Deps) (Envelope, error) {
	out := in
	out.Entries = append([]config.Entry(nil), in.Meta.Entries...)
	for _, name := range in.Meta.RegisteredNames {
		out.Entries = append(out.Entries, config.BuildRecord(name))
	}
	return out, nil
}

func init() { Register(resolveEntriesStage, resolveEntriesRunner) }
