package hook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/flarebyte/seshat-toolkit/internal/paths"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// PortablePolicy controls when a toolbox-shipped post-deploy hook is skipped.
type PortablePolicy string

const (
	// PolicyAlways runs the portable hook on every deployment.
	PolicyAlways PortablePolicy = "always"
	// PolicySkipActive skips the portable hook when the toolbox path was
	// already on the search path before this run started.
	PolicySkipActive PortablePolicy = "skip-active"
)

// Runner executes one hook script. Satisfied by *Executor; tests substitute
// their own.
type Runner interface {
	Run(path string, globals map[string]any) (int, string)
}

// EngineConfig wires the hook engine to one deployment run.
type EngineConfig struct {
	HooksDir    string
	SharedRoot  string
	PrivateRoot string
	Policy      PortablePolicy
	// Active is the search-path snapshot taken before this run mutated
	// anything, used by the skip-active portable policy.
	Active []string
}

// Engine materializes and runs per-toolbox hooks. Both hook kinds are gated on
// the record not having failed already; a failed record is never touched.
type Engine struct {
	run    Runner
	cfg    EngineConfig
	active map[string]bool
}

// NewEngine returns a hook engine for one deployment run.
func NewEngine(run Runner, cfg EngineConfig) *Engine {
	if cfg.Policy == "" {
		cfg.Policy = PolicySkipActive
	}
	active := make(map[string]bool, len(cfg.Active))
	for _, p := range cfg.Active {
		active[p] = true
	}
	return &Engine{run: run, cfg: cfg, active: active}
}

// LocalHookPath returns where the machine-local hook for a display name lives.
func (e *Engine) LocalHookPath(display string) string {
	return filepath.Join(e.cfg.HooksDir, display+".lua")
}

// RunLocal runs the machine-local hook for rec, seeding it from the toolbox
// template on first use. The hook outcome is written back onto the record; a
// record with neither hook file nor template is left untouched.
func (e *Engine) RunLocal(rec *toolbox.Record) {
	if rec.Failed() {
		return
	}
	tbPath := rec.Path
	display := rec.Name
	if tbPath == "" {
		tbPath, display = paths.Locate(*rec, e.cfg.SharedRoot, e.cfg.PrivateRoot)
	}
	hookPath := e.LocalHookPath(display)
	if !fileExists(hookPath) {
		if tbPath == "" || rec.LocalHookTemplate == "" {
			return
		}
		tmpl := filepath.Join(tbPath, filepath.FromSlash(rec.LocalHookTemplate))
		if !fileExists(tmpl) {
			return
		}
		if err := e.materialize(tmpl, hookPath); err != nil {
			rec.Fail(toolbox.StatusScriptError, err.Error())
			return
		}
	}
	status, msg := e.run.Run(hookPath, hookGlobals(rec, tbPath))
	rec.Status = status
	rec.Message = msg
}

// RunPortable runs the toolbox-shipped post-deploy hook for rec, honoring the
// configured idempotence policy.
func (e *Engine) RunPortable(rec *toolbox.Record) {
	if rec.Failed() || rec.Hook == "" {
		return
	}
	tbPath := rec.Path
	if tbPath == "" {
		tbPath, _ = paths.Locate(*rec, e.cfg.SharedRoot, e.cfg.PrivateRoot)
	}
	if tbPath == "" {
		return
	}
	if e.cfg.Policy == PolicySkipActive && e.active[tbPath] {
		return
	}
	hookPath := filepath.Join(tbPath, filepath.FromSlash(rec.Hook))
	status, msg := e.run.Run(hookPath, hookGlobals(rec, tbPath))
	rec.Status = status
	rec.Message = msg
}

// materialize copies the template to the local hook location. The hooks
// directory is created on demand.
func (e *Engine) materialize(tmpl, hookPath string) error {
	if err := os.MkdirAll(e.cfg.HooksDir, 0o755); err != nil {
		return fmt.Errorf("create hooks dir: %v", err)
	}
	src, err := os.Open(tmpl)
	if err != nil {
		return fmt.Errorf("open hook template: %v", err)
	}
	defer src.Close()
	dst, err := os.OpenFile(hookPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Raced with another materialization; the existing file wins.
			return nil
		}
		return fmt.Errorf("create local hook: %v", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy hook template: %v", err)
	}
	return nil
}

func hookGlobals(rec *toolbox.Record, tbPath string) map[string]any {
	return map[string]any{
		"toolbox": map[string]any{
			"name":    rec.Name,
			"path":    tbPath,
			"version": rec.Version,
		},
	}
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
