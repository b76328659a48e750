package stage

import (
	"context"
	"fmt"

	"github.com/flarebyte/seshat-toolkit/internal/paths"
)

const placeOnPathStage = "place-on-path"

// placeOnPathRunner records each successfully fetched toolbox on the search
// path. A failed record is never exposed as active. A toolbox found under
// neither root is skipped silently: "not deployed" is not "deployment
// errored". Manifest write failures are structural and abort the run.
func placeOnPathRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta.ResetPath {
		if err := deps.Search.Reset(in.Meta.IncludeInstalled); err != nil {
			return Envelope{}, fmt.Errorf("%s: %v", placeOnPathStage, err)
		}
	}
	out := in
	for i := range out.Resolved {
		rec := &out.Resolved[i]
		if rec.Failed() {
			continue
		}
		p, display := paths.Locate(*rec, in.Meta.SharedRoot, in.Meta.PrivateRoot)
		if p == "" {
			if deps.Log != nil {
				deps.Log.WithField("toolbox", display).Debug("no content on disk, skipping path placement")
			}
			continue
		}
		rec.Path = p
		if err := deps.Search.Add(p, rec.EffectivePlacement()); err != nil {
			return Envelope{}, fmt.Errorf("%s: %v", placeOnPathStage, err)
		}
	}
	return out, nil
}

func init() { Register(placeOnPathStage, placeOnPathRunner) }
