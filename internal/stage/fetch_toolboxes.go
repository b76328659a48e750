package stage

import "context"

const fetchToolboxesStage = "fetch-toolboxes"

// fetchToolboxesRunner fetches content for every resolved record. A fetch
// failure is sticky on its record and never halts the stage.
func fetchToolboxesRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	out := in
	for i := range out.Resolved {
		rec := &out.Resolved[i]
		if rec.Failed() {
			continue
		}
		deps.Fetcher.Fetch(rec)
		if rec.Failed() {
			out.Errors = append(out.Errors, Error{Stage: fetchToolboxesStage, Name: rec.Name, Message: rec.Message})
		}
	}
	SortErrors(&out)
	return out, nil
}

func init() { Register(fetchToolboxesStage, fetchToolboxesRunner) }
