// Package module implements Dana's Module Loader: search-path resolution,
// parse/execute/cache of imported .na files, cycle detection, and the
// host (.py) vs Dana import distinction.
//
// The loader never imports internal/interp directly — that would create
// an import cycle, since the interpreter is what calls into the loader to
// satisfy an import statement. Instead the interpreter hands the loader an
// Executor closure at construction time, inverting the dependency so the
// loader depends only on a function value rather than on interp itself.
package module

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dana-lang/dana/internal/structs"
	"github.com/dana-lang/dana/internal/values"
)

// Result is everything a loaded module exposes to its importer.
type Result struct {
	Exports map[string]values.Value
	Funcs   map[string]values.Callable
	Structs []*structs.Type
}

// Executor parses and runs a module's source, returning what it exports.
// internal/interp supplies this when it constructs the sandbox's Loader.
type Executor func(filename, src string) (*Result, error)

// Loader resolves, executes, and caches Dana module imports for a single
// sandbox run. It is sandbox-scoped state, not a process-wide singleton —
// see internal/structs for the same deliberate deviation from the
// original's global StructTypeRegistry.
type Loader struct {
	mu      sync.Mutex
	baseDir string
	exec    Executor
	cache   map[string]*Result
	loading []string // import stack, for cycle detection and error messages
}

func NewLoader(baseDir string, exec Executor) *Loader {
	return &Loader{
		baseDir: baseDir,
		exec:    exec,
		cache:   map[string]*Result{},
	}
}

// Load resolves and executes the module named by segs, returning its
// cached Result on repeat imports. host imports (a path whose final
// segment is "py") are not executed in-process — Dana has no embedded
// Python runtime — and instead report ImportError, directing callers to
// bridge host modules externally before import.
func (l *Loader) Load(segs []string, host bool) (*Result, error) {
	key := strings.Join(segs, ".")
	if host {
		return nil, fmt.Errorf("ImportError: host module %q cannot be executed in-process; bridge it before import", key)
	}

	l.mu.Lock()
	if cached, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	for _, inFlight := range l.loading {
		if inFlight == key {
			chain := append(append([]string{}, l.loading...), key)
			l.mu.Unlock()
			return nil, fmt.Errorf("CircularImportError: %s", strings.Join(chain, " -> "))
		}
	}
	l.loading = append(l.loading, key)
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.loading = l.loading[:len(l.loading)-1]
		l.mu.Unlock()
	}()

	path, err := Resolve(SearchPaths(l.baseDir), segs, false)
	if err != nil {
		return nil, fmt.Errorf("ImportError: %w", err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ImportError: reading %s: %w", path, err)
	}
	result, err := l.exec(path, string(src))
	if err != nil {
		return nil, fmt.Errorf("ImportError: executing %s: %w", path, err)
	}

	l.mu.Lock()
	l.cache[key] = result
	l.mu.Unlock()
	return result, nil
}
