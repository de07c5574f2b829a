// Package sandbox is the façade a host application or the dana CLI drives:
// one DanaSandbox per isolated run, exposing Eval/Run over a lazily
// initialized Interpreter and root Context, collecting results into an
// ExecutionResult the way the original's DanaSandbox/ExecutionResult pair
// does.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/danalog"
	"github.com/dana-lang/dana/internal/host"
	"github.com/dana-lang/dana/internal/interp"
	"github.com/dana-lang/dana/internal/parser"
	"github.com/dana-lang/dana/internal/values"
)

// ExecutionResult reports the outcome of one Eval or Run call: whether it
// succeeded, the value of the last top-level expression, everything
// written via print during the run, a snapshot of the final scope
// bindings, and the error when Success is false.
type ExecutionResult struct {
	Success      bool
	Result       values.Value
	Output       string
	FinalContext map[string]values.Value
	Error        error
}

// String renders an ExecutionResult the way DanaSandbox.run's __str__
// counterpart does: "Success: <result>" or "Error: <err>", with any
// captured print output first.
func (r *ExecutionResult) String() string {
	var b strings.Builder
	b.WriteString(r.Output)
	if !r.Success {
		fmt.Fprintf(&b, "Error: %v", r.Error)
		return b.String()
	}
	fmt.Fprintf(&b, "Success: %s", r.Result.Repr())
	return b.String()
}

// Options configures a Sandbox at construction time.
type Options struct {
	Debug     bool          // verbose structured logging via Logger
	Strict    bool          // strict undefined-name lookups (NameError instead of None)
	ReasonRes host.Resource // LLM backend for reason(); nil falls back to mock/error, see internal/host
}

// Sandbox owns one root Context and Interpreter, created lazily on first
// use and torn down exactly once. Mirrors the original's
// DanaSandbox._ensure_initialized/_cleanup pair: Go has no interpreter-exit
// hook to run cleanup automatically, so the CLI is responsible for calling
// Shutdown before main exits.
type Sandbox struct {
	ID      string
	opts    Options
	logger  hclog.Logger
	ctx     *context.Context
	interp  *interp.Interpreter
	started bool
	closed  bool
}

// New constructs a Sandbox, tagging it with a fresh instance id used in log
// fields so concurrent sandboxes' debug output can be told apart.
// Initialization of the Context/Interpreter is deferred to the first
// Eval/Run call (see ensureStarted) so constructing a Sandbox that's never
// used costs nothing.
func New(opts Options) *Sandbox {
	id := uuid.NewString()
	logger := danalog.New(opts.Debug).Named(id[:8])
	return &Sandbox{ID: id, opts: opts, logger: logger}
}

func (s *Sandbox) ensureStarted(filename string) {
	if s.started {
		return
	}
	s.ctx = context.New(s.opts.Strict)
	s.ctx.SetStatus(context.Running)
	s.interp = interp.New(filename, s.logger)
	s.interp.SetReasonResource(s.opts.ReasonRes)
	s.started = true
}

// Shutdown releases the sandbox's root Context and Interpreter. Idempotent:
// calling it more than once, or on a Sandbox that was never started, is a
// no-op. Reverse-order teardown doesn't apply here the way it did in the
// original's resource-stack cleanup, since Go's runtime reclaims everything
// owned by ctx/interp once they're dropped; Shutdown exists primarily to
// mark Status as no longer Running and to give callers an explicit point to
// defer.
func (s *Sandbox) Shutdown() {
	if s.closed || !s.started {
		s.closed = true
		return
	}
	s.ctx.SetStatus(context.Completed)
	s.closed = true
}

// Eval parses and executes a snippet of Dana source against this sandbox's
// persistent root Context, so later calls see bindings made by earlier
// ones — the behaviour a REPL depends on. filename is used only for error
// positions and module-relative imports; it defaults to "<eval>".
func (s *Sandbox) Eval(source string, filename string) *ExecutionResult {
	if filename == "" {
		filename = "<eval>"
	}
	s.ensureStarted(filename)
	return s.execute(filename, source)
}

// Run loads and executes a .na file. The path extension is enforced the
// way the original's DanaSandbox.run refuses anything but a .na module.
func (s *Sandbox) Run(path string) *ExecutionResult {
	if filepath.Ext(path) != ".na" {
		return &ExecutionResult{Error: fmt.Errorf("ValueError: dana can only run .na files, got %q", path)}
	}
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExecutionResult{Error: fmt.Errorf("FileNotFoundError: %s", path)}
		}
		return &ExecutionResult{Error: err}
	}
	s.ensureStarted(path)
	return s.execute(path, string(src))
}

func (s *Sandbox) execute(filename, source string) *ExecutionResult {
	p, err := parser.NewParser()
	if err != nil {
		return s.fail(err)
	}
	concrete, err := p.Parse(filename, source)
	if err != nil {
		return s.fail(err)
	}
	prog, err := ast.Transform(filename, concrete)
	if err != nil {
		return s.fail(err)
	}
	if err := ast.Validate(prog); err != nil {
		return s.fail(err)
	}

	result, err := s.interp.Run(s.ctx, prog)
	output := s.ctx.DrainOutput()
	if err != nil {
		s.ctx.SetStatus(context.Failed)
		return &ExecutionResult{Success: false, Output: output, Error: err, FinalContext: s.ctx.Snapshot()}
	}
	return &ExecutionResult{
		Success:      true,
		Result:       result,
		Output:       output,
		FinalContext: s.ctx.Snapshot(),
	}
}

func (s *Sandbox) fail(err error) *ExecutionResult {
	output := ""
	if s.ctx != nil {
		output = s.ctx.DrainOutput()
	}
	return &ExecutionResult{Success: false, Output: output, Error: err}
}
