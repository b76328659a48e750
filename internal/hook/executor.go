package hook

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

const defaultTimeoutMs = 30000

// Libs is the allowlist of Lua standard libraries opened for hook scripts.
type Libs struct {
	Base   bool `json:"base"`
	Table  bool `json:"table"`
	String bool `json:"string"`
	Math   bool `json:"math"`
	OS     bool `json:"os"`
	IO     bool `json:"io"`
}

// Options configures the executor sandbox.
type Options struct {
	TimeoutMs int  `json:"timeoutMs"`
	Libs      Libs `json:"libs"`
}

// DefaultOptions opens the libraries a machine-customization hook usually
// needs. IO stays closed unless the config asks for it.
func DefaultOptions() Options {
	return Options{
		TimeoutMs: defaultTimeoutMs,
		Libs:      Libs{Base: true, Table: true, String: true, Math: true, OS: true},
	}
}

// Executor runs hook scripts in a Lua state that is created per call and
// discarded afterwards, so a hook cannot leak globals or a working-directory
// change back into the run. Errors raised by a script are converted into a
// nonzero status and never propagate.
type Executor struct {
	opts Options
}

// New returns an executor with the given sandbox options.
func New(opts Options) *Executor {
	if opts.TimeoutMs == 0 {
		opts.TimeoutMs = defaultTimeoutMs
	}
	return &Executor{opts: opts}
}

// Run executes the Lua script at path with the given globals. See RunSource.
func (e *Executor) Run(path string, globals map[string]any) (int, string) {
	code, err := os.ReadFile(path)
	if err != nil {
		return toolbox.StatusScriptError, fmt.Sprintf("read hook: %v", err)
	}
	return e.RunSource(string(code), globals)
}

// RunSource executes Lua source. The returned status is 0 on success, the
// script's own integer return value when it returns one, or StatusScriptError
// when the script fails to load or raises. On success the message is the
// script's captured print output; on failure it is the error description.
func (e *Executor) RunSource(code string, globals map[string]any) (status int, message string) {
	cwd, cwdErr := os.Getwd()
	if cwdErr == nil {
		// Restore on every exit path, whatever the script did.
		defer func() { _ = os.Chdir(cwd) }()
	}

	L := e.newState()
	defer L.Close()

	var out bytes.Buffer
	installPrint(L, &out)
	installChdir(L)
	for k, v := range globals {
		L.SetGlobal(k, toLValue(L, v))
	}

	if e.opts.TimeoutMs > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(e.opts.TimeoutMs)*time.Millisecond)
		defer cancel()
		L.SetContext(ctx)
	}

	fn, err := L.LoadString(code)
	if err != nil {
		return toolbox.StatusScriptError, strings.TrimSpace(err.Error())
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return toolbox.StatusScriptError, strings.TrimSpace(err.Error())
	}
	if L.GetTop() > 0 {
		if n, ok := L.Get(-1).(lua.LNumber); ok {
			status = int(n)
		}
	}
	return status, strings.TrimSpace(out.String())
}

func (e *Executor) newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	if e.opts.Libs.Base {
		openLib("base", lua.OpenBase)
	}
	if e.opts.Libs.String {
		openLib("string", lua.OpenString)
	}
	if e.opts.Libs.Table {
		openLib("table", lua.OpenTable)
	}
	if e.opts.Libs.Math {
		openLib("math", lua.OpenMath)
	}
	if e.opts.Libs.OS {
		openLib("os", lua.OpenOs)
		// os.exit would terminate the orchestrator process itself.
		// Replace it with a raise so PCall contains the failure.
		if tbl, ok := L.GetGlobal("os").(*lua.LTable); ok {
			tbl.RawSetString("exit", L.NewFunction(func(L *lua.LState) int {
				L.RaiseError("os.exit is not available in hooks")
				return 0
			}))
		}
	}
	if e.opts.Libs.IO {
		openLib("io", lua.OpenIo)
	}
	return L
}

// installPrint captures print output so it can be reported as the hook
// message instead of interleaving with the orchestrator's own output.
func installPrint(L *lua.LState, out *bytes.Buffer) {
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		for i := 1; i <= top; i++ {
			if i > 1 {
				out.WriteByte('\t')
			}
			out.WriteString(L.ToStringMeta(L.Get(i)).String())
		}
		out.WriteByte('\n')
		return 0
	}))
}

// installChdir exposes chdir/getcwd to hooks that need to work inside the
// toolbox directory. The executor restores the original directory afterwards.
func installChdir(L *lua.LState) {
	L.SetGlobal("chdir", L.NewFunction(func(L *lua.LState) int {
		dir := L.CheckString(1)
		if err := os.Chdir(dir); err != nil {
			L.RaiseError("chdir: %v", err)
		}
		return 0
	}))
	L.SetGlobal("getcwd", L.NewFunction(func(L *lua.LState) int {
		wd, err := os.Getwd()
		if err != nil {
			L.RaiseError("getcwd: %v", err)
		}
		L.Push(lua.LString(wd))
		return 1
	}))
}

// toLValue converts a Go value to a Lua value.
func toLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case bool:
		if x {
			return lua.LTrue
		}
		return lua.LFalse
	case int:
		return lua.LNumber(float64(x))
	case int64:
		return lua.LNumber(float64(x))
	case float64:
		return lua.LNumber(x)
	case map[string]any:
		tbl := L.NewTable()
		for k, v2 := range x {
			tbl.RawSetString(k, toLValue(L, v2))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for i, v2 := range x {
			tbl.RawSetInt(i+1, toLValue(L, v2))
		}
		return tbl
	default:
		return lua.LNil
	}
}
