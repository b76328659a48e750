package stage

import "context"

const filterToolboxStage = "filter-toolbox"

// filterToolboxRunner narrows the run to one named entry when requested. A
// name absent from the entries yields an empty run, matching the silent
// no-op contract for filter misses.
func filterToolboxRunner(_ context.Context, in Envelope, _ Deps) (Envelope, error) {
	if in.Meta.Only == "" {
		return in, nil
	}
	out := in
	out.Entries = nil
	for _, e := range in.Entries {
		if e.Name == in.Meta.Only || e.Include == in.Meta.Only {
			out.Entries = append(out.Entries, e)
		}
	}
	return out, nil
}

func init() { Register(filterToolboxStage, filterToolboxRunner) }
