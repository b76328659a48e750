package stage

import (
	"context"

	"github.com/flarebyte/seshat-toolkit/internal/hook"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

const localHooksStage = "local-hooks"

func engineFor(in Envelope, deps Deps) *hook.Engine {
	return hook.NewEngine(deps.Hooks, hook.EngineConfig{
		HooksDir:    in.Meta.HooksDir,
		SharedRoot:  in.Meta.SharedRoot,
		PrivateRoot: in.Meta.PrivateRoot,
		Policy:      in.Meta.PortablePolicy,
		Active:      deps.Active,
	})
}

// localHooksRunner runs the machine-local hook for every resolved record,
// then for every included record. Included records never attempted a fetch,
// so they enter hook evaluation with a clean status unless resolution itself
// failed them.
func localHooksRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	eng := engineFor(in, deps)
	out := in
	runHookSet(&out, localHooksStage, eng.RunLocal, out.Resolved)
	runHookSet(&out, localHooksStage, eng.RunLocal, out.Included)
	SortErrors(&out)
	return out, nil
}

// runHookSet applies fn to each record not already failed, accumulating any
// new failure as an envelope error.
func runHookSet(out *Envelope, stageName string, fn func(*toolbox.Record), records []toolbox.Record) {
	for i := range records {
		rec := &records[i]
		if rec.Failed() {
			continue
		}
		fn(rec)
		if rec.Failed() {
			out.Errors = append(out.Errors, Error{Stage: stageName, Name: rec.Name, Message: rec.Message})
		}
	}
}

func init() { Register(localHooksStage, localHooksRunner) }
