// Package values implements Dana's dynamically-typed runtime value: a
// small tagged union the interpreter passes around instead of any bare
// Go interface{}, so arithmetic, equality, and truthiness all live in one
// place instead of being scattered across the evaluator.
package values

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant of the union a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindList
	KindTuple
	KindDict
	KindSet
	KindFunction
	KindStruct
	KindForeign
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "str"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindSet:
		return "set"
	case KindFunction:
		return "function"
	case KindStruct:
		return "struct"
	case KindForeign:
		return "foreign"
	default:
		return "unknown"
	}
}

// Callable is implemented by every function-valued runtime object: user
// functions, host functions, and pipe-composed functions alike. It lives
// here (rather than in internal/registry) so a Value can hold a function
// without values importing registry and creating a cycle.
type Callable interface {
	Call(args []Value, kwargs map[string]Value) (Value, error)
	Name() string
}

// StructInstance is implemented by internal/structs.Instance; kept as an
// interface here for the same reason Callable is.
type StructInstance interface {
	TypeName() string
	Field(name string) (Value, bool)
	SetField(name string, v Value) bool
	FieldNames() []string
}

// Value is Dana's dynamic runtime value. Zero value is None.
type Value struct {
	kind   Kind
	i      int64
	f      float64
	s      string
	b      bool
	list   []Value
	dict   *orderedDict
	set    *orderedSet
	fn     Callable
	strct  StructInstance
	fgn    any
}

func None() Value               { return Value{kind: KindNone} }
func Int(v int64) Value         { return Value{kind: KindInt, i: v} }
func Float(v float64) Value     { return Value{kind: KindFloat, f: v} }
func Str(v string) Value        { return Value{kind: KindString, s: v} }
func Bool(v bool) Value         { return Value{kind: KindBool, b: v} }
func List(items []Value) Value  { return Value{kind: KindList, list: items} }
func Tuple(items []Value) Value { return Value{kind: KindTuple, list: items} }
func Func(f Callable) Value     { return Value{kind: KindFunction, fn: f} }
func Struct(s StructInstance) Value {
	return Value{kind: KindStruct, strct: s}
}
func Foreign(v any) Value { return Value{kind: KindForeign, fgn: v} }

func Dict(entries []DictEntry) Value {
	d := newOrderedDict()
	for _, e := range entries {
		d.set(e.Key, e.Value)
	}
	return Value{kind: KindDict, dict: d}
}

func Set(items []Value) Value {
	s := newOrderedSet()
	for _, v := range items {
		s.add(v)
	}
	return Value{kind: KindSet, set: s}
}

type DictEntry struct {
	Key   Value
	Value Value
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNone() bool { return v.kind == KindNone }

// --- accessors, each paired with an "ok" so callers don't need a Kind
// check first ---

func (v Value) AsInt() (int64, bool)     { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsList() ([]Value, bool)  { return v.list, v.kind == KindList }
func (v Value) AsTuple() ([]Value, bool) { return v.list, v.kind == KindTuple }
func (v Value) AsFunc() (Callable, bool) { return v.fn, v.kind == KindFunction }
func (v Value) AsStruct() (StructInstance, bool) {
	return v.strct, v.kind == KindStruct
}
func (v Value) AsForeign() (any, bool) { return v.fgn, v.kind == KindForeign }

func (v Value) DictEntries() []DictEntry {
	if v.kind != KindDict {
		return nil
	}
	return v.dict.entries()
}

func (v Value) SetItems() []Value {
	if v.kind != KindSet {
		return nil
	}
	return v.set.items()
}

// Truthy implements Dana's enhanced boolean coercion: numbers are falsy at
// zero, collections are falsy when empty, none is always falsy, and
// strings recognise an expanded word list of truthy/falsy spellings
// before falling back to "non-empty is truthy".
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return stringTruthy(v.s)
	case KindList, KindTuple:
		return len(v.list) > 0
	case KindDict:
		return v.dict.len() > 0
	case KindSet:
		return v.set.len() > 0
	default:
		return true
	}
}

var truthyWords = map[string]bool{
	"yes": true, "y": true, "true": true, "1": true,
	"on": true, "sure": true, "definitely": true,
}

var falsyWords = map[string]bool{
	"no": true, "n": true, "false": true, "0": true,
	"off": true, "never": true, "nope": true, "": true,
}

func stringTruthy(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	if truthyWords[lower] {
		return true
	}
	if falsyWords[lower] {
		return false
	}
	return s != ""
}

// Equal implements Dana's value equality: cross-numeric comparison
// (Int(2) == Float(2.0)), structural comparison for collections, and
// dict-key equality by value rather than by Go identity.
func Equal(a, b Value) bool {
	if a.kind == KindInt && b.kind == KindFloat {
		return float64(a.i) == b.f
	}
	if a.kind == KindFloat && b.kind == KindInt {
		return a.f == float64(b.i)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindBool:
		return a.b == b.b
	case KindList, KindTuple:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindDict:
		return a.dict.equal(b.dict)
	case KindSet:
		return a.set.equal(b.set)
	case KindStruct:
		return a.strct == b.strct
	case KindFunction:
		return a.fn == b.fn
	default:
		return false
	}
}

// Str renders a Value the way `str(value)`/f-string interpolation does:
// no quotes around strings, Python-ish float formatting.
func (v Value) Str() string {
	switch v.kind {
	case KindNone:
		return "none"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	case KindList:
		return "[" + joinStr(v.list) + "]"
	case KindTuple:
		return "(" + joinStr(v.list) + ")"
	case KindDict:
		return dictStr(v.dict)
	case KindSet:
		return "{" + joinStr(v.set.items()) + "}"
	case KindFunction:
		return fmt.Sprintf("<function %s>", v.fn.Name())
	case KindStruct:
		return structStr(v.strct)
	case KindForeign:
		return fmt.Sprintf("<foreign %T>", v.fgn)
	default:
		return "?"
	}
}

// Repr renders a Value the way it would be written back as Dana source:
// quoted strings, otherwise identical to Str.
func (v Value) Repr() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	if v.kind == KindList || v.kind == KindTuple {
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.Repr()
		}
		open, close := "[", "]"
		if v.kind == KindTuple {
			open, close = "(", ")"
		}
		return open + strings.Join(parts, ", ") + close
	}
	return v.Str()
}

func joinStr(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.Repr()
	}
	return strings.Join(parts, ", ")
}

func dictStr(d *orderedDict) string {
	entries := d.entries()
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Key.Repr() + ": " + e.Value.Repr()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func structStr(s StructInstance) string {
	names := s.FieldNames()
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		v, _ := s.Field(n)
		parts = append(parts, n+"="+v.Repr())
	}
	return fmt.Sprintf("%s(%s)", s.TypeName(), strings.Join(parts, ", "))
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
