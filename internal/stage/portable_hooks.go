package stage

import "context"

const portableHooksStage = "portable-hooks"

// portableHooksRunner runs toolbox-shipped post-deploy hooks for resolved
// records only; included records were never deployed in this run.
func portableHooksRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	eng := engineFor(in, deps)
	out := in
	runHookSet(&out, portableHooksStage, eng.RunPortable, out.Resolved)
	SortErrors(&out)
	return out, nil
}

func init() { Register(portableHooksStage, portableHooksRunner) }
