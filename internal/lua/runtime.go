// Package lua embeds a sandboxed Golua runtime for colormix scripts.
// Scripts run with CPU and memory limits and see the color functions
// registered by RegisterAPI.
package lua

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// RuntimeConfig contains configuration options for the Lua runtime.
type RuntimeConfig struct {
	// CPULimit is the CPU instruction limit for a single execution.
	// 0 means unlimited.
	CPULimit uint64
	// MemoryLimit is the maximum memory in bytes a single execution may
	// allocate. 0 means unlimited.
	MemoryLimit uint64
	// Stdout receives Lua print output in addition to the capture buffer.
	// If nil, output is only captured.
	Stdout io.Writer
}

// DefaultConfig returns a RuntimeConfig with a 10M instruction CPU limit,
// a 50 MB memory limit and print output on os.Stdout.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		CPULimit:    10_000_000,
		MemoryLimit: 50 * 1024 * 1024,
		Stdout:      os.Stdout,
	}
}

// Runtime wraps a Golua runtime. All methods are safe for concurrent use;
// executions are serialized.
type Runtime struct {
	config  RuntimeConfig
	runtime *rt.Runtime
	output  *bytes.Buffer
	cleanup func()
	closed  bool
	mu      sync.RWMutex
}

// New creates a Runtime with the Lua standard libraries loaded.
func New(config RuntimeConfig) (*Runtime, error) {
	output := &bytes.Buffer{}
	var stdout io.Writer = output
	if config.Stdout != nil {
		stdout = io.MultiWriter(config.Stdout, output)
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &Runtime{
		config:  config,
		runtime: runtime,
		output:  output,
		cleanup: cleanup,
	}, nil
}

// LoadString compiles a Lua chunk. The returned closure can be run with Execute.
func (r *Runtime) LoadString(name, code string) (*rt.Closure, error) {
	closure, err := r.load(name, []byte(code))
	if err != nil {
		return nil, fmt.Errorf("failed to load Lua code: %w", err)
	}
	return closure, nil
}

// LoadFile reads and compiles a Lua file from disk.
func (r *Runtime) LoadFile(path string) (*rt.Closure, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Lua file %s: %w", path, err)
	}
	closure, err := r.load(path, content)
	if err != nil {
		return nil, fmt.Errorf("failed to load Lua file %s: %w", path, err)
	}
	return closure, nil
}

// LoadFileFromFS reads and compiles a Lua file from fsys, e.g. an embed.FS.
func (r *Runtime) LoadFileFromFS(fsys fs.FS, path string) (*rt.Closure, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Lua file from FS %s: %w", path, err)
	}
	closure, err := r.load(path, content)
	if err != nil {
		return nil, fmt.Errorf("failed to load Lua file %s: %w", path, err)
	}
	return closure, nil
}

func (r *Runtime) load(name string, content []byte) (*rt.Closure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrNilRuntime
	}
	return r.runtime.CompileAndLoadLuaChunk(name, content, rt.TableValue(r.runtime.GlobalEnv()))
}

// Execute runs a compiled closure within the configured resource limits and
// returns its first result.
func (r *Runtime) Execute(closure *rt.Closure) (rt.Value, error) {
	if closure == nil {
		return rt.NilValue, fmt.Errorf("cannot execute nil closure")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.call(rt.FunctionValue(closure))
	if err != nil {
		return rt.NilValue, fmt.Errorf("Lua execution error: %w", err)
	}
	return result, nil
}

// ExecuteString compiles and runs a Lua chunk.
func (r *Runtime) ExecuteString(name, code string) (rt.Value, error) {
	closure, err := r.LoadString(name, code)
	if err != nil {
		return rt.NilValue, err
	}
	return r.Execute(closure)
}

// ExecuteFile compiles and runs a Lua file.
func (r *Runtime) ExecuteFile(path string) (rt.Value, error) {
	closure, err := r.LoadFile(path)
	if err != nil {
		return rt.NilValue, err
	}
	return r.Execute(closure)
}

// GetGlobal retrieves a global variable from the Lua environment.
func (r *Runtime) GetGlobal(name string) (rt.Value, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return rt.NilValue, ErrNilRuntime
	}
	return r.runtime.GlobalEnv().Get(rt.StringValue(name)), nil
}

// SetGlobal sets a global variable in the Lua environment.
func (r *Runtime) SetGlobal(name string, value rt.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrNilRuntime
	}
	r.runtime.GlobalEnv().Set(rt.StringValue(name), value)
	return nil
}

// SetGoFunction registers fn as a Lua global. The function is declared
// compliant with the CPU and memory limits.
func (r *Runtime) SetGoFunction(name string, fn rt.GoFunctionFunc, nArgs int, hasVarArgs bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrNilRuntime
	}
	goFunc := rt.NewGoFunction(fn, name, nArgs, hasVarArgs)
	rt.SolemnlyDeclareCompliance(rt.ComplyMemSafe|rt.ComplyCpuSafe, goFunc)
	r.runtime.GlobalEnv().Set(rt.StringValue(name), rt.FunctionValue(goFunc))
	return nil
}

// CallFunction calls the global Lua function name and returns its first result.
func (r *Runtime) CallFunction(name string, args ...rt.Value) (rt.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return rt.NilValue, ErrNilRuntime
	}
	fn := r.runtime.GlobalEnv().Get(rt.StringValue(name))
	if fn.IsNil() {
		return rt.NilValue, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}

	result, err := r.call(fn, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("failed to call function %s: %w", name, err)
	}
	return result, nil
}

// call runs fn under a fresh resource context. r.mu must be held.
func (r *Runtime) call(fn rt.Value, args ...rt.Value) (result rt.Value, err error) {
	if r.closed {
		return rt.NilValue, ErrNilRuntime
	}
	r.runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    r.config.CPULimit,
			Memory: r.config.MemoryLimit,
		},
	})
	defer r.runtime.PopContext()

	// golua panics with a ContextTerminationError when a hard limit is hit.
	defer func() {
		if p := recover(); p != nil {
			term, ok := p.(rt.ContextTerminationError)
			if !ok {
				panic(p)
			}
			result, err = rt.NilValue, fmt.Errorf("%w: %v", ErrResourceLimit, term)
		}
	}()

	return rt.Call1(r.runtime.MainThread(), fn, args...)
}

// Output returns everything Lua has printed so far.
func (r *Runtime) Output() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.output.String()
}

// ClearOutput clears the captured output buffer.
func (r *Runtime) ClearOutput() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.output.Reset()
}

// Config returns the runtime configuration.
func (r *Runtime) Config() RuntimeConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.config
}

// Close releases resources associated with the runtime. Loading, calling
// and global access fail with ErrNilRuntime afterwards.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
	return nil
}
