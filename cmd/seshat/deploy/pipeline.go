package deploy

import (
	"context"

	"github.com/flarebyte/seshat-toolkit/internal/stage"
)

// deployStages is the fixed deployment sequence. A structural stage failure
// aborts the run; per-toolbox failures ride on the records instead.
var deployStages = []string{
	"resolve-entries",
	"filter-toolbox",
	"expand-includes",
	"fetch-toolboxes",
	"place-on-path",
	"local-hooks",
	"portable-hooks",
	"report",
}

// executePipeline runs the deployment pipeline.
func executePipeline(ctx context.Context, in stage.Envelope, deps stage.Deps) (stage.Envelope, error) {
	return runStages(ctx, in, deps, deployStages)
}

// runStages executes the provided list of stage names in order.
func runStages(ctx context.Context, in stage.Envelope, deps stage.Deps, stages []string) (stage.Envelope, error) {
	out := in
	var err error
	for _, name := range stages {
		out, err = stage.Run(ctx, name, out, deps)
		if err != nil {
			return stage.Envelope{}, err
		}
	}
	return out, nil
}
