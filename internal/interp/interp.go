// Package interp is Dana's tree-walking evaluator: the Expression
// Executor and Statement Executor the rest of the runtime (Context,
// Function Registry, Struct System, Module Loader) plug into.
package interp

import (
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/host"
	"github.com/dana-lang/dana/internal/module"
	"github.com/dana-lang/dana/internal/parser"
	"github.com/dana-lang/dana/internal/registry"
	"github.com/dana-lang/dana/internal/structs"
	"github.com/dana-lang/dana/internal/values"
)

// Interpreter ties together the registry, struct type table, and module
// loader for one sandbox run. It is not safe for concurrent Run calls
// against the same root Context — a single Dana program runs on one
// goroutine, matching the original's single-threaded interpreter loop.
type Interpreter struct {
	Registry  *registry.Registry
	Structs   *structs.Registry
	Loader    *module.Loader
	Logger    hclog.Logger
	ReasonRes host.Resource
	filename  string
}

// New builds an Interpreter rooted at filename (used for relative module
// resolution and error positions).
func New(filename string, logger hclog.Logger) *Interpreter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	i := &Interpreter{
		Registry: registry.New(),
		Structs:  structs.NewRegistry(),
		Logger:   logger,
		filename: filename,
	}
	i.Loader = module.NewLoader(filepath.Dir(filename), i.execModule)
	i.RegisterBuiltins()
	return i
}

// SetReasonResource installs the LLM backend reason() calls through,
// propagated to every module-scoped Interpreter execModule spins up so
// an imported file's reason() calls share the same backend as the
// top-level program's.
func (i *Interpreter) SetReasonResource(res host.Resource) { i.ReasonRes = res }

// Run executes every statement in prog against ctx in order, returning the
// value of the last top-level expression statement (None if the program
// has none), the way a REPL or sandbox.Eval reports back a result.
func (i *Interpreter) Run(ctx *context.Context, prog *ast.Program) (values.Value, error) {
	result := values.None()
	for _, s := range prog.Statements {
		v, err := i.execStmt(ctx, s)
		if err != nil {
			return values.None(), err
		}
		if _, isExpr := s.(*ast.ExpressionStatement); isExpr {
			result = v
		}
	}
	return result, nil
}

// execModule is the module.Executor the Loader calls to run an imported
// file: parse, transform, validate, execute against a fresh root Context,
// then collect exports per the Export-statement rule (explicit export
// list when present, otherwise every top-level binding/function/struct).
func (i *Interpreter) execModule(filename, src string) (*module.Result, error) {
	p, err := parser.NewParser()
	if err != nil {
		return nil, err
	}
	concrete, err := p.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	prog, err := ast.Transform(filename, concrete)
	if err != nil {
		return nil, err
	}
	if err := ast.Validate(prog); err != nil {
		return nil, err
	}

	modInterp := New(filename, i.Logger)
	modInterp.SetReasonResource(i.ReasonRes)
	modCtx := context.New(false)
	if _, err := modInterp.Run(modCtx, prog); err != nil {
		return nil, err
	}

	var exportNames []string
	for _, s := range prog.Statements {
		if exp, ok := s.(*ast.Export); ok {
			exportNames = append(exportNames, exp.Names...)
		}
	}

	funcs := map[string]values.Callable{}
	for _, name := range modInterp.Registry.Names() {
		if exportNames == nil || contains(exportNames, name) {
			fn, _ := modInterp.Registry.Resolve(name)
			funcs[name] = fn
		}
	}

	var structTypes []*structs.Type
	for _, name := range modInterp.Structs.ListTypes() {
		if exportNames == nil || contains(exportNames, name) {
			t, _ := modInterp.Structs.Get(name)
			structTypes = append(structTypes, t)
		}
	}

	exports := map[string]values.Value{}
	for k, v := range modCtx.Snapshot() {
		name := k
		if idx := indexOfColon(k); idx >= 0 {
			name = k[idx+1:]
		}
		if exportNames == nil || contains(exportNames, name) {
			exports[name] = v
		}
	}

	return &module.Result{Exports: exports, Funcs: funcs, Structs: structTypes}, nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func indexOfColon(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}
