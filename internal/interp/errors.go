package interp

import (
	"fmt"

	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/values"
)

// danaError is the common shape of every typed runtime error: a position,
// a message, and an optional cause forming a breadcrumb chain back through
// nested calls, mirroring the original's exception-chaining behaviour.
type danaError struct {
	kind  string
	pos   ast.Position
	msg   string
	cause error
}

func (e *danaError) Error() string {
	if e.pos.Filename != "" {
		return fmt.Sprintf("%s: %s:%d:%d: %s", e.kind, e.pos.Filename, e.pos.Line, e.pos.Column, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *danaError) Unwrap() error { return e.cause }

func newErr(kind string, pos ast.Position, format string, args ...any) *danaError {
	return &danaError{kind: kind, pos: pos, msg: fmt.Sprintf(format, args...)}
}

func NameError(pos ast.Position, name string) error {
	return newErr("NameError", pos, "name %q is not defined", name)
}

func TypeError(pos ast.Position, format string, args ...any) error {
	return newErr("TypeError", pos, format, args...)
}

func ValueError(pos ast.Position, format string, args ...any) error {
	return newErr("ValueError", pos, format, args...)
}

func IndexError(pos ast.Position, format string, args ...any) error {
	return newErr("IndexError", pos, format, args...)
}

func KeyError(pos ast.Position, key string) error {
	return newErr("KeyError", pos, "%s", key)
}

func AttributeError(pos ast.Position, typ, attr string) error {
	return newErr("AttributeError", pos, "%s has no attribute %q", typ, attr)
}

// StructAttributeError reports a field-not-found or method-not-found
// failure against a struct instance, citing the struct's declared field
// list alongside the missing name so the message is actionable rather
// than just naming what's absent.
func StructAttributeError(pos ast.Position, typeName, attr string, fields []string) error {
	return newErr("AttributeError", pos, "%s has no attribute %q (valid fields: %v)", typeName, attr, fields)
}

func ImportError(pos ast.Position, format string, args ...any) error {
	return newErr("ImportError", pos, format, args...)
}

func ModuleNotFoundError(pos ast.Position, name string) error {
	return newErr("ModuleNotFoundError", pos, "no module named %q", name)
}

func CircularImportError(pos ast.Position, chain []string) error {
	return newErr("CircularImportError", pos, "circular import: %v", chain)
}

func RuntimeError(pos ast.Position, format string, args ...any) error {
	return newErr("RuntimeError", pos, format, args...)
}

func AssertionError(pos ast.Position, format string, args ...any) error {
	return newErr("AssertionError", pos, format, args...)
}

// CallError wraps an error raised inside a function call with the
// caller's position, so a chain of Unwrap() calls reconstructs the full
// call-stack breadcrumb trail the way the original's exception chaining
// does, from innermost failure back out to the top-level call site.
type CallError struct {
	FuncName string
	Pos      ast.Position
	Cause    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("in call to %s at %s:%d:%d: %v", e.FuncName, e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Cause)
}

func (e *CallError) Unwrap() error { return e.Cause }

// The following are internal-only control-flow signals, never surfaced to
// Dana code as errors — the statement executor's loop/call dispatch
// catches them with errors.As before they can escape a function boundary.

type BreakSignal struct{}

func (BreakSignal) Error() string { return "break outside loop" }

type ContinueSignal struct{}

func (ContinueSignal) Error() string { return "continue outside loop" }

type ReturnSignal struct {
	Value values.Value
}

func (ReturnSignal) Error() string { return "return outside function" }
