package ast

import (
	"fmt"
	"strconv"
	"strings"

	plex "github.com/alecthomas/participle/v2/lexer"

	"github.com/dana-lang/dana/internal/parser"
)

// Transform walks a participle concrete tree and builds the closed AST the
// interpreter consumes. It is the only place concrete-tree types from
// internal/parser are referenced outside of this package.
func Transform(filename string, prog *parser.Program) (*Program, error) {
	t := &transformer{filename: filename}
	stmts, err := t.block(prog.Stmts)
	if err != nil {
		return nil, err
	}
	return &Program{Statements: stmts, Position: t.pos(prog.Pos)}, nil
}

type transformer struct{ filename string }

func (t *transformer) pos(p plex.Position) Position {
	return Position{Filename: t.filename, Line: p.Line, Column: p.Column}
}

func (t *transformer) errf(p plex.Position, format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", t.filename, p.Line, p.Column, fmt.Sprintf(format, args...))
}

func (t *transformer) block(stmts []*parser.Statement) ([]Statement, error) {
	out := make([]Statement, 0, len(stmts))
	for _, s := range stmts {
		n, err := t.statement(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (t *transformer) blockOf(b *parser.Block) ([]Statement, error) {
	if b == nil {
		return nil, nil
	}
	return t.block(b.Stmts)
}

func (t *transformer) statement(s *parser.Statement) (Statement, error) {
	switch {
	case s.If != nil:
		return t.ifStmt(s.If)
	case s.While != nil:
		cond, err := t.expr(s.While.Cond)
		if err != nil {
			return nil, err
		}
		body, err := t.blockOf(s.While.Body)
		if err != nil {
			return nil, err
		}
		return &WhileLoop{base: base{t.pos(s.While.Pos)}, Cond: cond, Body: body}, nil
	case s.For != nil:
		iter, err := t.expr(s.For.Iterable)
		if err != nil {
			return nil, err
		}
		body, err := t.blockOf(s.For.Body)
		if err != nil {
			return nil, err
		}
		return &ForLoop{base: base{t.pos(s.For.Pos)}, Target: s.For.Target, Iterable: iter, Body: body}, nil
	case s.FuncDef != nil:
		return t.funcDef(s.FuncDef)
	case s.StructDef != nil:
		return t.structDef(s.StructDef)
	case s.Try != nil:
		return t.tryStmt(s.Try)
	case s.ImportFrom != nil:
		return t.importFrom(s.ImportFrom)
	case s.Import != nil:
		return t.importStmt(s.Import)
	case s.Export != nil:
		return &Export{base: base{t.pos(s.Export.Pos)}, Names: s.Export.Names}, nil
	case s.Return != nil:
		var v Expression
		var err error
		if s.Return.Value != nil {
			v, err = t.expr(s.Return.Value)
			if err != nil {
				return nil, err
			}
		}
		return &Return{base: base{t.pos(s.Return.Pos)}, Value: v}, nil
	case s.Break != nil:
		return &Break{base{t.pos(s.Break.Pos)}}, nil
	case s.Continue != nil:
		return &Continue{base{t.pos(s.Continue.Pos)}}, nil
	case s.Pass != nil:
		return &Pass{base{t.pos(s.Pass.Pos)}}, nil
	case s.Raise != nil:
		return t.raiseStmt(s.Raise)
	case s.Assert != nil:
		return t.assertStmt(s.Assert)
	case s.Print != nil:
		v, err := t.expr(s.Print.Msg)
		if err != nil {
			return nil, err
		}
		return &Print{base: base{t.pos(s.Print.Pos)}, Value: v}, nil
	case s.Assignment != nil:
		return t.assignStmt(s.Assignment)
	case s.ExprStmt != nil:
		v, err := t.expr(s.ExprStmt.Expr)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{base: base{t.pos(s.ExprStmt.Pos)}, Value: v}, nil
	}
	return nil, t.errf(s.Pos, "empty statement production")
}

func (t *transformer) ifStmt(s *parser.IfStmt) (Statement, error) {
	cond, err := t.expr(s.Cond)
	if err != nil {
		return nil, err
	}
	then, err := t.blockOf(s.Body)
	if err != nil {
		return nil, err
	}
	var elseBranch []Statement
	if s.Else != nil {
		elseBranch, err = t.blockOf(s.Else)
		if err != nil {
			return nil, err
		}
	}
	// Fold "elif" clauses from the tail backward into nested Conditionals,
	// so the AST only ever knows about a two-way Then/Else split.
	for i := len(s.Elifs) - 1; i >= 0; i-- {
		ec := s.Elifs[i]
		ecCond, err := t.expr(ec.Cond)
		if err != nil {
			return nil, err
		}
		ecBody, err := t.blockOf(ec.Body)
		if err != nil {
			return nil, err
		}
		elseBranch = []Statement{&Conditional{
			base: base{t.pos(ec.Pos)},
			Cond: ecCond,
			Then: ecBody,
			Else: elseBranch,
		}}
	}
	return &Conditional{base: base{t.pos(s.Pos)}, Cond: cond, Then: then, Else: elseBranch}, nil
}

func (t *transformer) funcDef(s *parser.FuncDef) (Statement, error) {
	params := make([]Param, 0, len(s.Params.Params))
	for _, p := range s.Params.Params {
		var def Expression
		if p.Default != nil {
			d, err := t.expr(p.Default)
			if err != nil {
				return nil, err
			}
			def = d
		}
		params = append(params, Param{Name: p.Name, TypeHint: p.Type, Default: def})
	}
	body, err := t.blockOf(s.Body)
	if err != nil {
		return nil, err
	}
	decorators := make([]*Decorator, 0, len(s.Decorators))
	for _, d := range s.Decorators {
		var args []Argument
		if d.Args != nil {
			args, err = t.callArgs(d.Args)
			if err != nil {
				return nil, err
			}
		}
		decorators = append(decorators, &Decorator{
			Position: t.pos(d.Pos),
			Call: &FunctionCall{
				base:   base{t.pos(d.Pos)},
				Callee: &Identifier{base: base{t.pos(d.Pos)}, Name: d.Name},
				Args:   args,
			},
		})
	}
	return &FunctionDefinition{
		base:       base{t.pos(s.Pos)},
		Name:       s.Name,
		Params:     params,
		ReturnType: s.ReturnType,
		Body:       body,
		Decorators: decorators,
	}, nil
}

func (t *transformer) structDef(s *parser.StructDef) (Statement, error) {
	fields := make([]StructField, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, StructField{Name: f.Name, TypeHint: f.Type})
	}
	return &StructDefinition{base: base{t.pos(s.Pos)}, Name: s.Name, Fields: fields}, nil
}

func (t *transformer) tryStmt(s *parser.TryStmt) (Statement, error) {
	body, err := t.blockOf(s.Body)
	if err != nil {
		return nil, err
	}
	handlers := make([]ExceptHandler, 0, len(s.Excepts))
	for _, e := range s.Excepts {
		hb, err := t.blockOf(e.Body)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, ExceptHandler{ErrorType: e.Name, Alias: e.Alias, Body: hb})
	}
	var finally []Statement
	if s.Finally != nil {
		finally, err = t.blockOf(s.Finally)
		if err != nil {
			return nil, err
		}
	}
	return &TryStatement{base: base{t.pos(s.Pos)}, Body: body, Handlers: handlers, Finally: finally}, nil
}

func dottedHost(segs []string) bool {
	return len(segs) > 0 && segs[len(segs)-1] == "py"
}

func (t *transformer) importStmt(s *parser.ImportStmt) (Statement, error) {
	return &Import{
		base:  base{t.pos(s.Pos)},
		Path:  s.Path.Segs,
		Alias: s.Alias,
		Host:  dottedHost(s.Path.Segs),
	}, nil
}

func (t *transformer) importFrom(s *parser.ImportFromStmt) (Statement, error) {
	names := make([]ImportedName, 0, len(s.Names))
	for _, n := range s.Names {
		names = append(names, ImportedName{Name: n.Name, Alias: n.Alias})
	}
	return &ImportFrom{
		base:  base{t.pos(s.Pos)},
		Path:  s.Path.Segs,
		Names: names,
		Host:  dottedHost(s.Path.Segs),
	}, nil
}

func (t *transformer) raiseStmt(s *parser.RaiseStmt) (Statement, error) {
	var v, from Expression
	var err error
	if s.Value != nil {
		if v, err = t.expr(s.Value); err != nil {
			return nil, err
		}
	}
	if s.From != nil {
		if from, err = t.expr(s.From); err != nil {
			return nil, err
		}
	}
	return &Raise{base: base{t.pos(s.Pos)}, Value: v, From: from}, nil
}

func (t *transformer) assertStmt(s *parser.AssertStmt) (Statement, error) {
	cond, err := t.expr(s.Cond)
	if err != nil {
		return nil, err
	}
	var msg Expression
	if s.Msg != nil {
		if msg, err = t.expr(s.Msg); err != nil {
			return nil, err
		}
	}
	return &Assert{base: base{t.pos(s.Pos)}, Cond: cond, Message: msg}, nil
}

func (t *transformer) assignStmt(s *parser.AssignStmt) (Statement, error) {
	target, err := t.target(s.Target)
	if err != nil {
		return nil, err
	}
	val, err := t.expr(s.Value)
	if err != nil {
		return nil, err
	}
	return &Assignment{base: base{t.pos(s.Pos)}, Target: target, TypeHint: s.TypeHint, Value: val}, nil
}

// target builds the assignment-target expression: a bare Identifier, or an
// Identifier wrapped in AttributeAccess/SubscriptExpression layers applied
// left to right for "a.b[0].c"-style targets.
func (t *transformer) target(tg *parser.Target) (Expression, error) {
	pos := t.pos(tg.Pos)
	var cur Expression = &Identifier{base: base{pos}, Scope: Scope(tg.Scope), Name: tg.Name}
	attrIdx, idxIdx := 0, 0
	for attrIdx < len(tg.Attrs) || idxIdx < len(tg.Index) {
		// Attributes and indices in the grammar are captured into separate
		// slices but were written in source order; without an interleave
		// marker we apply all attributes before any index, which matches
		// every target form Dana's grammar actually allows (a.b.c, a[0],
		// a.b[0], but never a[0].b — subscripted targets end a chain).
		if attrIdx < len(tg.Attrs) {
			cur = &AttributeAccess{base: base{pos}, Object: cur, Attr: tg.Attrs[attrIdx]}
			attrIdx++
			continue
		}
		idx, err := t.expr(tg.Index[idxIdx])
		if err != nil {
			return nil, err
		}
		cur = &SubscriptExpression{base: base{pos}, Object: cur, Index: idx}
		idxIdx++
	}
	return cur, nil
}

func (t *transformer) callArgs(c *parser.CallArgs) ([]Argument, error) {
	args := make([]Argument, 0, len(c.Args))
	for _, a := range c.Args {
		v, err := t.expr(a.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, Argument{Name: a.Name, Value: v})
	}
	return args, nil
}

// --- expressions ---

func (t *transformer) expr(e *parser.Expr) (Expression, error) {
	return t.pipeExpr(e.Pipe)
}

func (t *transformer) pipeExpr(e *parser.PipeExpr) (Expression, error) {
	left, err := t.orExpr(e.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Rest {
		right, err := t.orExpr(r)
		if err != nil {
			return nil, err
		}
		left = &PipeExpression{base: base{left.Pos()}, Left: left, Right: right}
	}
	return left, nil
}

func (t *transformer) orExpr(e *parser.OrExpr) (Expression, error) {
	left, err := t.andExpr(e.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Rest {
		right, err := t.andExpr(r)
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{base: base{left.Pos()}, Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (t *transformer) andExpr(e *parser.AndExpr) (Expression, error) {
	left, err := t.notExpr(e.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Rest {
		right, err := t.notExpr(r)
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{base: base{left.Pos()}, Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (t *transformer) notExpr(e *parser.NotExpr) (Expression, error) {
	if e.Not != nil {
		inner, err := t.notExpr(e.Not)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{base: base{t.pos(e.Pos)}, Op: "not", Operand: inner}, nil
	}
	return t.comparison(e.Cmp)
}

func (t *transformer) comparison(e *parser.Comparison) (Expression, error) {
	left, err := t.sum(e.Left)
	if err != nil {
		return nil, err
	}
	for i, op := range e.Ops {
		right, err := t.sum(e.Rights[i])
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{base: base{left.Pos()}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (t *transformer) sum(e *parser.Sum) (Expression, error) {
	left, err := t.term(e.Left)
	if err != nil {
		return nil, err
	}
	for i, op := range e.Ops {
		right, err := t.term(e.Rights[i])
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{base: base{left.Pos()}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (t *transformer) term(e *parser.Term) (Expression, error) {
	left, err := t.unary(e.Left)
	if err != nil {
		return nil, err
	}
	for i, op := range e.Ops {
		right, err := t.unary(e.Rights[i])
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{base: base{left.Pos()}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (t *transformer) unary(e *parser.Unary) (Expression, error) {
	switch {
	case e.NegOperand != nil:
		inner, err := t.unary(e.NegOperand)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{base: base{t.pos(e.Pos)}, Op: "-", Operand: inner}, nil
	case e.PosOperand != nil:
		inner, err := t.unary(e.PosOperand)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{base: base{t.pos(e.Pos)}, Op: "+", Operand: inner}, nil
	default:
		return t.power(e.Operand)
	}
}

func (t *transformer) power(e *parser.Power) (Expression, error) {
	base_, err := t.trailer(e.Base)
	if err != nil {
		return nil, err
	}
	if e.Exp == nil {
		return base_, nil
	}
	exp, err := t.unary(e.Exp)
	if err != nil {
		return nil, err
	}
	return &BinaryOp{base: base{base_.Pos()}, Op: "**", Left: base_, Right: exp}, nil
}

func (t *transformer) trailer(e *parser.Trailer) (Expression, error) {
	cur, err := t.atom(e.Atom)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		switch {
		case op.Call != nil:
			args, err := t.callArgs(op.Call)
			if err != nil {
				return nil, err
			}
			cur = &FunctionCall{base: base{cur.Pos()}, Callee: cur, Args: args}
		case op.Index != nil:
			cur, err = t.subscript(cur, op.Index)
			if err != nil {
				return nil, err
			}
		default:
			cur = &AttributeAccess{base: base{cur.Pos()}, Object: cur, Attr: op.Attr}
		}
	}
	return cur, nil
}

func (t *transformer) subscript(obj Expression, s *parser.SubscriptOp) (Expression, error) {
	if s.Slice != nil {
		sl := s.Slice
		var start, stop, step Expression
		var err error
		if sl.Start != nil {
			if start, err = t.expr(sl.Start); err != nil {
				return nil, err
			}
		}
		if sl.Stop != nil {
			if stop, err = t.expr(sl.Stop); err != nil {
				return nil, err
			}
		}
		if sl.Step != nil {
			if step, err = t.expr(sl.Step); err != nil {
				return nil, err
			}
		}
		return &SliceExpression{
			base: base{obj.Pos()}, Object: obj,
			Start: start, Stop: stop, Step: step, HasStep: sl.HasStep,
		}, nil
	}
	idx, err := t.expr(s.Index)
	if err != nil {
		return nil, err
	}
	return &SubscriptExpression{base: base{obj.Pos()}, Object: obj, Index: idx}, nil
}

func (t *transformer) atom(a *parser.Atom) (Expression, error) {
	pos := t.pos(a.Pos)
	switch {
	case a.Int != nil:
		v, err := strconv.ParseInt(*a.Int, 10, 64)
		if err != nil {
			return nil, t.errf(a.Pos, "invalid integer literal %q: %v", *a.Int, err)
		}
		return &IntegerLiteral{base: base{pos}, Value: v}, nil
	case a.Float != nil:
		v, err := strconv.ParseFloat(*a.Float, 64)
		if err != nil {
			return nil, t.errf(a.Pos, "invalid float literal %q: %v", *a.Float, err)
		}
		return &FloatLiteral{base: base{pos}, Value: v}, nil
	case a.Str != nil:
		return &StringLiteral{base: base{pos}, Value: decodeQuoted(*a.Str)}, nil
	case a.RawStr != nil:
		return &StringLiteral{base: base{pos}, Value: decodeRaw(*a.RawStr)}, nil
	case a.FStr != nil:
		parts, err := t.parseFString(a.Pos, *a.FStr)
		if err != nil {
			return nil, err
		}
		return &FStringLiteral{base: base{pos}, Parts: parts}, nil
	case a.True_:
		return &BoolLiteral{base: base{pos}, Value: true}, nil
	case a.False_:
		return &BoolLiteral{base: base{pos}, Value: false}, nil
	case a.None_:
		return &NoneLiteral{base{pos}}, nil
	case a.Tuple != nil:
		return t.parenOrTuple(a.Tuple)
	case a.List != nil:
		items, err := t.exprList(a.List.Items)
		if err != nil {
			return nil, err
		}
		return &ListLiteral{base: base{pos}, Items: items}, nil
	case a.DictSet != nil:
		return t.dictSet(a.DictSet)
	case a.Ident != nil:
		return &Identifier{base: base{pos}, Scope: Scope(a.Ident.Scope), Name: a.Ident.Name}, nil
	}
	return nil, t.errf(a.Pos, "empty atom production")
}

func (t *transformer) exprList(es []*parser.Expr) ([]Expression, error) {
	out := make([]Expression, 0, len(es))
	for _, e := range es {
		v, err := t.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *transformer) parenOrTuple(p *parser.ParenOrTuple) (Expression, error) {
	items, err := t.exprList(p.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 1 && !p.Trailing {
		return items[0], nil
	}
	return &TupleLiteral{base: base{t.pos(p.Pos)}, Items: items}, nil
}

func (t *transformer) dictSet(d *parser.DictSetLit) (Expression, error) {
	pos := t.pos(d.Pos)
	if d.Dict != nil {
		entries := make([]DictEntry, 0, len(d.Dict.Entries))
		for _, e := range d.Dict.Entries {
			k, err := t.expr(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := t.expr(e.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, DictEntry{Key: k, Value: v})
		}
		return &DictLiteral{base: base{pos}, Entries: entries}, nil
	}
	items, err := t.exprList(d.Set.Items)
	if err != nil {
		return nil, err
	}
	return &SetLiteral{base: base{pos}, Items: items}, nil
}

// decodeQuoted strips the surrounding quotes from a String token and
// resolves backslash escapes the way Dana's literal grammar promises.
func decodeQuoted(raw string) string {
	return decodeEscapes(stripQuotes(raw))
}

// decodeEscapes resolves backslash escapes in an already-unquoted string,
// shared by decodeQuoted and the f-string literal-run decoder.
func decodeEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// decodeRaw strips quotes but performs no escape processing.
func decodeRaw(raw string) string {
	s := raw
	if strings.HasPrefix(s, "r") || strings.HasPrefix(s, "R") {
		s = s[1:]
	}
	return stripQuotes(s)
}

func stripQuotes(s string) string {
	for _, q := range []string{`"""`, "'''"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
