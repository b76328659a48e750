package deploy

import (
	"fmt"

	"github.com/flarebyte/seshat-toolkit/internal/stage"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

const (
	exitCodeSuccess  = 0
	exitCodeExecErr  = 1
	exitCodeDegraded = 2
)

type deployExitError struct {
	code int
	msg  string
}

func (e deployExitError) Error() string { return e.msg }
func (e deployExitError) ExitCode() int { return e.code }

// exitRuleFor maps the terminal envelope to the process outcome: nil for a
// clean run, a degraded-run error (exit 2) when any record failed.
func exitRuleFor(out stage.Envelope) error {
	res := out.Result()
	if res.Clean() {
		return nil
	}
	failing := len(toolbox.Failing(res.Resolved)) + len(toolbox.Failing(res.Included))
	return deployExitError{
		code: exitCodeDegraded,
		msg:  fmt.Sprintf("deployment degraded: %d toolboxes failing", failing),
	}
}
