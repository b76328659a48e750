package stage

import (
	"context"

	"github.com/flarebyte/seshat-toolkit/internal/registry"
)

const expandIncludesStage = "expand-includes"

// expandIncludesRunner flattens include pointers into the resolved and
// included record sets. Resolution failures arrive as already-failed included
// records and are surfaced as envelope errors without stopping the run.
func expandIncludesRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	out := in
	out.Resolved, out.Included = registry.Expand(in.Entries, deps.Registry)
	for _, rec := range out.Included {
		if rec.Failed() {
			out.Errors = append(out.Errors, Error{Stage: expandIncludesStage, Name: rec.Name, Message: rec.Message})
		}
	}
	SortErrors(&out)
	return out, nil
}

func init() { Register(expandIncludesStage, expandIncludesRunner) }
