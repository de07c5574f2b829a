// Package structs implements Dana's nominal struct type system: type
// declarations and instance construction with strict field validation.
// Method sugar (obj.method(args) called as method(obj, args)) is handled by
// the interpreter's call evaluation, not here.
//
// The registry here is owned per sandbox rather than process-global,
// since Dana's scope model keeps the struct type table and module cache
// sandbox-scoped state instead of a process-wide singleton.
package structs

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/dana-lang/dana/internal/values"
)

// Field is one declared field of a struct type, name paired with its
// (currently advisory, unenforced at the value level) type hint.
type Field struct {
	Name string
	Type string
}

// Type is a registered struct declaration.
type Type struct {
	Name   string
	Fields []Field
}

func NewType(name string, fields []Field) (*Type, error) {
	if name == "" {
		return nil, fmt.Errorf("struct type name must not be empty")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("struct %s must declare at least one field", name)
	}
	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("struct %s: duplicate field %q", name, f.Name)
		}
		seen[f.Name] = true
	}
	return &Type{Name: name, Fields: fields}, nil
}

func (t *Type) fieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// ValidateInstantiation checks the keyword arguments supplied to a struct
// constructor call against the declared field set. Missing and unexpected
// fields are both collected and reported together via go-multierror rather
// than stopping at the first problem found, so a caller fixing up a
// constructor call sees every field mistake in one pass instead of playing
// whack-a-mole one error at a time.
func (t *Type) ValidateInstantiation(fieldValues map[string]values.Value) error {
	var missing, extra []string
	declared := map[string]bool{}
	for _, f := range t.Fields {
		declared[f.Name] = true
		if _, ok := fieldValues[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	for name := range fieldValues {
		if !declared[name] {
			extra = append(extra, name)
		}
	}
	var result *multierror.Error
	if len(missing) > 0 {
		sort.Strings(missing)
		result = multierror.Append(result, fmt.Errorf("struct %s: missing required field(s): %v", t.Name, missing))
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		result = multierror.Append(result, fmt.Errorf("struct %s: unexpected field(s): %v (valid fields: %v)", t.Name, extra, t.fieldNames()))
	}
	return result.ErrorOrNil()
}

// Instance is a constructed struct value. It implements values.StructInstance
// so it can be embedded directly in a values.Value without an import cycle.
type Instance struct {
	mu     sync.RWMutex
	typ    *Type
	fields map[string]values.Value
}

func NewInstance(t *Type, fieldValues map[string]values.Value) (*Instance, error) {
	if err := t.ValidateInstantiation(fieldValues); err != nil {
		return nil, err
	}
	fields := make(map[string]values.Value, len(fieldValues))
	for k, v := range fieldValues {
		fields[k] = v
	}
	return &Instance{typ: t, fields: fields}, nil
}

func (i *Instance) TypeName() string { return i.typ.Name }

func (i *Instance) Field(name string) (values.Value, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.fields[name]
	return v, ok
}

func (i *Instance) SetField(name string, v values.Value) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.fields[name]; !ok {
		return false
	}
	i.fields[name] = v
	return true
}

func (i *Instance) FieldNames() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.typ.fieldNames()
}

// Registry holds struct types for a single sandbox/module execution. It is
// intentionally NOT a package-level singleton — see the package doc.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

func NewRegistry() *Registry {
	return &Registry{types: map[string]*Type{}}
}

func (r *Registry) Register(t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("struct type %q already registered", t.Name)
	}
	r.types[t.Name] = t
	return nil
}

func (r *Registry) Get(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

func (r *Registry) Exists(name string) bool {
	_, ok := r.Get(name)
	return ok
}

func (r *Registry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for n := range r.types {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) CreateInstance(name string, fieldValues map[string]values.Value) (*Instance, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("struct type %q is not defined", name)
	}
	return NewInstance(t, fieldValues)
}
