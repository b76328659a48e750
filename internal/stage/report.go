package stage

import (
	"context"

	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

const reportStage = "report"

// reportRunner logs the run summary: one clean line when every record in both
// sets succeeded, otherwise one warning per failing record with its name,
// status and message.
func reportRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if deps.Log == nil {
		return in, nil
	}
	res := in.Result()
	if res.Clean() {
		deps.Log.WithField("deployed", len(res.Resolved)).
			WithField("included", len(res.Included)).
			Info("deployment clean")
		return in, nil
	}
	warn := func(kind string, records []toolbox.Record) {
		for _, rec := range records {
			deps.Log.WithField("toolbox", rec.Name).
				WithField("set", kind).
				WithField("status", rec.Status).
				Warn(rec.Message)
		}
	}
	warn("resolved", toolbox.Failing(res.Resolved))
	warn("included", toolbox.Failing(res.Included))
	return in, nil
}

func init() { Register(reportStage, reportRunner) }
