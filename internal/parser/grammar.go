// Package parser builds the LALR-ish, PEG-backtracking concrete tree for
// Dana source using participle's struct-tag grammar idiom, driven by the
// custom indentation-aware lexer in internal/lexer instead of participle's
// stock simple lexer, since Dana needs synthesized INDENT/DEDENT/NEWLINE
// tokens.
package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Program is the root of a parsed Dana source file: a flat sequence of
// top-level statements.
type Program struct {
	Pos   lexer.Position
	Stmts []*Statement `@@*`
}

// Statement is a sum type over every statement form in the grammar.
type Statement struct {
	Pos        lexer.Position
	If         *IfStmt         `  @@`
	While      *WhileStmt      `| @@`
	For        *ForStmt        `| @@`
	FuncDef    *FuncDef        `| @@`
	StructDef  *StructDef      `| @@`
	Try        *TryStmt        `| @@`
	ImportFrom *ImportFromStmt `| @@`
	Import     *ImportStmt     `| @@`
	Export     *ExportStmt     `| @@`
	Return     *ReturnStmt     `| @@ NEWLINE`
	Break      *BreakStmt      `| @@ NEWLINE`
	Continue   *ContinueStmt   `| @@ NEWLINE`
	Pass       *PassStmt       `| @@ NEWLINE`
	Raise      *RaiseStmt      `| @@ NEWLINE`
	Assert     *AssertStmt     `| @@ NEWLINE`
	Print      *PrintStmt      `| @@ NEWLINE`
	Assignment *AssignStmt     `| @@ NEWLINE`
	ExprStmt   *ExprStmt       `| @@ NEWLINE`
}

// Block is an indented suite: INDENT statement+ DEDENT.
type Block struct {
	Pos   lexer.Position
	Stmts []*Statement `INDENT @@+ DEDENT`
}

// --- compound statements ---

type IfStmt struct {
	Pos   lexer.Position
	Cond  *Expr         `"if" @@ ":" NEWLINE`
	Body  *Block        `@@`
	Elifs []*ElifClause `@@*`
	Else  *Block        `( "else" ":" NEWLINE @@ )?`
}

type ElifClause struct {
	Pos  lexer.Position
	Cond *Expr  `"elif" @@ ":" NEWLINE`
	Body *Block `@@`
}

type WhileStmt struct {
	Pos  lexer.Position
	Cond *Expr  `"while" @@ ":" NEWLINE`
	Body *Block `@@`
}

type ForStmt struct {
	Pos      lexer.Position
	Target   string `"for" @Ident`
	Iterable *Expr  `"in" @@ ":" NEWLINE`
	Body     *Block `@@`
}

type TryStmt struct {
	Pos     lexer.Position
	Body    *Block          `"try" ":" NEWLINE @@`
	Excepts []*ExceptClause `@@*`
	Finally *Block          `( "finally" ":" NEWLINE @@ )?`
}

type ExceptClause struct {
	Pos   lexer.Position
	Name  string `"except" ( @Ident )?`
	Alias string `( "as" @Ident )? ":" NEWLINE`
	Body  *Block `@@`
}

// --- declarations ---

type Decorator struct {
	Pos  lexer.Position
	Name string    `"@" @Ident`
	Args *CallArgs `( "(" @@ ")" )? NEWLINE`
}

type Param struct {
	Pos     lexer.Position
	Name    string `@Ident`
	Type    string `( ":" @Ident )?`
	Default *Expr  `( "=" @@ )?`
}

type ParamList struct {
	Pos    lexer.Position
	Params []*Param `( @@ ( "," @@ )* )?`
}

type FuncDef struct {
	Pos        lexer.Position
	Decorators []*Decorator `@@*`
	Name       string       `"def" @Ident`
	Params     *ParamList   `"(" @@ ")"`
	ReturnType string       `( "->" @Ident )?`
	Body       *Block       `":" NEWLINE @@`
}

type FieldDecl struct {
	Pos  lexer.Position
	Name string `@Ident`
	Type string `":" @Ident NEWLINE`
}

type StructDef struct {
	Pos    lexer.Position
	Name   string       `"struct" @Ident ":" NEWLINE`
	Fields []*FieldDecl `INDENT @@+ DEDENT`
}

// --- module statements ---

type DottedPath struct {
	Pos  lexer.Position
	Segs []string `@Ident ( "." @Ident )*`
}

type ImportStmt struct {
	Pos   lexer.Position
	Path  *DottedPath `"import" @@`
	Alias string      `( "as" @Ident )? NEWLINE`
}

type ImportName struct {
	Pos   lexer.Position
	Name  string `@Ident`
	Alias string `( "as" @Ident )?`
}

type ImportFromStmt struct {
	Pos   lexer.Position
	Path  *DottedPath    `"from" @@`
	Names []*ImportName  `"import" @@ ( "," @@ )* NEWLINE`
}

type ExportStmt struct {
	Pos   lexer.Position
	Names []string `"export" @Ident ( "," @Ident )* NEWLINE`
}

// --- simple statements ---

type ReturnStmt struct {
	Pos   lexer.Position
	Value *Expr `"return" @@?`
}

type BreakStmt struct {
	Pos     lexer.Position
	Present bool `@"break"`
}

type ContinueStmt struct {
	Pos     lexer.Position
	Present bool `@"continue"`
}

type PassStmt struct {
	Pos     lexer.Position
	Present bool `@"pass"`
}

type RaiseStmt struct {
	Pos   lexer.Position
	Value *Expr `"raise" @@?`
	From  *Expr `( "from" @@ )?`
}

type AssertStmt struct {
	Pos  lexer.Position
	Cond *Expr `"assert" @@`
	Msg  *Expr `( "," @@ )?`
}

type PrintStmt struct {
	Pos lexer.Position
	Msg *Expr `"print" @@`
}

type Target struct {
	Pos   lexer.Position
	Scope string   `( @("local"|"private"|"public"|"system") ":" )?`
	Name  string   `@Ident`
	Attrs []string `( "." @Ident )*`
	Index []*Expr  `( "[" @@ "]" )*`
}

type AssignStmt struct {
	Pos      lexer.Position
	Target   *Target `@@`
	TypeHint string  `( ":" @Ident )?`
	Value    *Expr   `"=" @@`
}

type ExprStmt struct {
	Pos  lexer.Position
	Expr *Expr `@@`
}

// --- expression grammar, loosest to tightest ---

type Expr struct {
	Pos  lexer.Position
	Pipe *PipeExpr `@@`
}

type PipeExpr struct {
	Pos  lexer.Position
	Left *OrExpr   `@@`
	Rest []*OrExpr `( "|" @@ )*`
}

type OrExpr struct {
	Pos  lexer.Position
	Left *AndExpr   `@@`
	Rest []*AndExpr `( "or" @@ )*`
}

type AndExpr struct {
	Pos  lexer.Position
	Left *NotExpr   `@@`
	Rest []*NotExpr `( "and" @@ )*`
}

// NotExpr is a sum type: either a "not" prefix over a nested NotExpr, or a
// plain Comparison, using the usual participle pattern of alternating
// pointer fields to encode alternation.
type NotExpr struct {
	Pos  lexer.Position
	Not  *NotExpr    `  "not" @@`
	Cmp  *Comparison `| @@`
}

type Comparison struct {
	Pos    lexer.Position
	Left   *Sum     `@@`
	Ops    []string `( @("=="|"!="|"<="|">="|"<"|">"|"in")`
	Rights []*Sum   `  @@ )*`
}

type Sum struct {
	Pos    lexer.Position
	Left   *Term    `@@`
	Ops    []string `( @("+"|"-")`
	Rights []*Term  `  @@ )*`
}

type Term struct {
	Pos    lexer.Position
	Left   *Unary   `@@`
	Ops    []string `( @("*"|"//"|"/"|"%")`
	Rights []*Unary `  @@ )*`
}

// Unary is a sum type over prefix +/- and the Power level beneath it.
type Unary struct {
	Pos        lexer.Position
	NegOperand *Unary `  "-" @@`
	PosOperand *Unary `| "+" @@`
	Operand    *Power `| @@`
}

// Power is right-associative: base ** exponent, where exponent may itself
// contain a unary prefix (2 ** -1).
type Power struct {
	Pos  lexer.Position
	Base *Trailer `@@`
	Exp  *Unary   `( "**" @@ )?`
}

// Trailer is the postfix chain: atom followed by any number of calls,
// subscripts, or attribute accesses, evaluated strictly left to right.
type Trailer struct {
	Pos  lexer.Position
	Atom *Atom        `@@`
	Ops  []*TrailerOp `@@*`
}

type TrailerOp struct {
	Pos   lexer.Position
	Call  *CallArgs    `  "(" @@ ")"`
	Index *SubscriptOp `| "[" @@ "]"`
	Attr  string       `| "." @Ident`
}

type Arg struct {
	Pos   lexer.Position
	Name  string `( @Ident "=" )?`
	Value *Expr  `@@`
}

type CallArgs struct {
	Pos  lexer.Position
	Args []*Arg `( @@ ( "," @@ )* )?`
}

type SliceExpr struct {
	Pos     lexer.Position
	Start   *Expr `@@?`
	HasStop bool  `@":"`
	Stop    *Expr `@@?`
	HasStep bool  `( @":"`
	Step    *Expr `  @@? )?`
}

type SubscriptOp struct {
	Pos   lexer.Position
	Slice *SliceExpr `  @@`
	Index *Expr      `| @@`
}

// ParenOrTuple disambiguates a grouped expression "(x)" from a tuple
// literal "(x,)" / "(x, y)" / "()" by tracking whether a trailing comma
// followed the last captured item — a single item with Trailing=false is a
// plain grouped expression, everything else is a tuple.
type ParenOrTuple struct {
	Pos      lexer.Position
	Items    []*Expr `"(" ( @@ ( "," @@ )* )?`
	Trailing bool    `@(",")? ")"`
}

type ListLit struct {
	Pos   lexer.Position
	Items []*Expr `"[" ( @@ ( "," @@ )* )? ","? "]"`
}

type DictEntry struct {
	Pos   lexer.Position
	Key   *Expr `@@ ":"`
	Value *Expr `@@`
}

type DictBody struct {
	Pos     lexer.Position
	Entries []*DictEntry `( @@ ( "," @@ )* )? ","?`
}

type SetBody struct {
	Pos   lexer.Position
	Items []*Expr `( @@ ( "," @@ )* )? ","?`
}

// DictSetLit tries the dict production (mandatory ":" per entry) before
// the set production; a non-dict body (no colon after the first element)
// fails the Dict alternative and falls back to Set.
type DictSetLit struct {
	Pos  lexer.Position
	Dict *DictBody `"{" ( @@`
	Set  *SetBody  `     | @@ ) "}"`
}

type IdentExpr struct {
	Pos   lexer.Position
	Scope string `( @("local"|"private"|"public"|"system") ":" )?`
	Name  string `@Ident`
}

// Atom is the tightest-binding production: literals, identifiers,
// collection literals, and parenthesised (sub)expressions.
type Atom struct {
	Pos     lexer.Position
	Int     *string     `  @Int`
	Float   *string     `| @Float`
	Str     *string     `| @String`
	FStr    *string     `| @FString`
	RawStr  *string     `| @RawString`
	True_   bool        `| @"true"`
	False_  bool        `| @"false"`
	None_   bool        `| @"none"`
	Tuple   *ParenOrTuple `| @@`
	List    *ListLit    `| @@`
	DictSet *DictSetLit `| @@`
	Ident   *IdentExpr  `| @@`
}
