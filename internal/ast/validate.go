package ast

import "fmt"

// Validate walks a transformed Program checking invariants the transformer
// is supposed to guarantee by construction — a defensive pass run once
// after Transform, catching a malformed program before the interpreter
// ever sees it.
func Validate(p *Program) error {
	v := &validator{}
	for _, s := range p.Statements {
		if err := v.statement(s); err != nil {
			return err
		}
	}
	return nil
}

type validator struct{}

func (v *validator) statement(s Statement) error {
	switch n := s.(type) {
	case *Assignment:
		return v.assignTarget(n.Target)
	case *Conditional:
		return v.blocks(n.Then, n.Else)
	case *WhileLoop:
		return v.blocks(n.Body)
	case *ForLoop:
		if n.Target == "" {
			return fmt.Errorf("%s: for-loop target must not be empty", posStr(n.Position))
		}
		return v.blocks(n.Body)
	case *FunctionDefinition:
		seen := map[string]bool{}
		sawDefault := false
		for _, p := range n.Params {
			if seen[p.Name] {
				return fmt.Errorf("%s: duplicate parameter %q in def %s", posStr(n.Position), p.Name, n.Name)
			}
			seen[p.Name] = true
			if p.Default != nil {
				sawDefault = true
			} else if sawDefault {
				return fmt.Errorf("%s: required parameter %q follows a defaulted parameter in def %s", posStr(n.Position), p.Name, n.Name)
			}
		}
		return v.blocks(n.Body)
	case *StructDefinition:
		if len(n.Fields) == 0 {
			return fmt.Errorf("%s: struct %s must declare at least one field", posStr(n.Position), n.Name)
		}
		seen := map[string]bool{}
		for _, f := range n.Fields {
			if seen[f.Name] {
				return fmt.Errorf("%s: duplicate field %q in struct %s", posStr(n.Position), f.Name, n.Name)
			}
			seen[f.Name] = true
		}
		return nil
	case *TryStatement:
		if err := v.blocks(n.Body, n.Finally); err != nil {
			return err
		}
		for _, h := range n.Handlers {
			if err := v.blocks(h.Body); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// assignTarget rejects literal expressions as assignment targets; the
// grammar already restricts targets to identifier/attribute/subscript
// forms, so this only guards against a transformer regression.
func (v *validator) assignTarget(e Expression) error {
	switch e.(type) {
	case *Identifier, *AttributeAccess, *SubscriptExpression:
		return nil
	default:
		return fmt.Errorf("%s: invalid assignment target", posStr(e.Pos()))
	}
}

func (v *validator) blocks(blocks ...[]Statement) error {
	for _, b := range blocks {
		for _, s := range b {
			if err := v.statement(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func posStr(p Position) string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}
