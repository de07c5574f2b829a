// Package registry implements Dana's Function Registry: a namespace
// qualified table of callables plus the pipe-operator composition rules
// that let two functions combine into one without either side needing to
// interpret a function body itself — that job stays with internal/interp,
// which supplies the run closures wrapped below.
package registry

import (
	"fmt"
	"sync"

	"github.com/dana-lang/dana/internal/values"
)

// UserFunction wraps a Dana-defined function. internal/interp constructs
// one per FunctionDefinition, closing over the AST body and the defining
// Context so Call only has to forward argument binding.
type UserFunction struct {
	name string
	run  func(args []values.Value, kwargs map[string]values.Value) (values.Value, error)
}

func NewUserFunction(name string, run func([]values.Value, map[string]values.Value) (values.Value, error)) *UserFunction {
	return &UserFunction{name: name, run: run}
}

func (f *UserFunction) Name() string { return f.name }

func (f *UserFunction) Call(args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	return f.run(args, kwargs)
}

// HostFunction wraps a native Go implementation exposed to Dana code, such
// as the reason() host call in internal/host.
type HostFunction struct {
	name string
	run  func(args []values.Value, kwargs map[string]values.Value) (values.Value, error)
}

func NewHostFunction(name string, run func([]values.Value, map[string]values.Value) (values.Value, error)) *HostFunction {
	return &HostFunction{name: name, run: run}
}

func (f *HostFunction) Name() string { return f.name }

func (f *HostFunction) Call(args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	return f.run(args, kwargs)
}

// ComposedFunction is the result of "f | g" where both operands are
// function-valued: calling it calls f with the original arguments, then
// feeds f's single result into g as g's sole positional argument. If f
// errors, g is never invoked — the error propagates as-is.
type ComposedFunction struct {
	left, right values.Callable
}

func NewComposedFunction(left, right values.Callable) *ComposedFunction {
	return &ComposedFunction{left: left, right: right}
}

func (f *ComposedFunction) Name() string {
	return fmt.Sprintf("%s|%s", f.left.Name(), f.right.Name())
}

func (f *ComposedFunction) Call(args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	mid, err := f.left.Call(args, kwargs)
	if err != nil {
		return values.None(), err
	}
	return f.right.Call([]values.Value{mid}, nil)
}

// Registry is a namespace-qualified function table. Names are stored
// exactly as registered ("module.name" for functions brought in by
// "import module", the bare name or alias for "from module import name",
// bare "name" for functions defined in the running file); Resolve additionally
// falls back to the "builtin." namespace so host functions like reason
// are reachable unqualified from any module.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]values.Callable
}

func New() *Registry {
	return &Registry{funcs: map[string]values.Callable{}}
}

func (r *Registry) Register(qualifiedName string, fn values.Callable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[qualifiedName] = fn
}

func (r *Registry) Resolve(name string) (values.Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.funcs[name]; ok {
		return fn, true
	}
	if fn, ok := r.funcs["builtin."+name]; ok {
		return fn, true
	}
	return nil, false
}

func (r *Registry) Call(name string, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	fn, ok := r.Resolve(name)
	if !ok {
		return values.None(), fmt.Errorf("function %q not found", name)
	}
	return fn.Call(args, kwargs)
}

// Names returns every registered name, primarily for module export lists
// and debug dumps.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		out = append(out, n)
	}
	return out
}
