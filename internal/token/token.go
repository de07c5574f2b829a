// Package token defines an enum of Dana's lexical token kinds. The lexer
// in internal/lexer does not use it: it emits participle tokens typed by
// its own TokenType constants.
package token

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int

const (
	EOF Kind = iota
	NEWLINE
	INDENT
	DEDENT
	IDENT
	INT
	FLOAT
	STRING
	FSTRING
	RAWSTRING
	OP
	PUNCT
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case INDENT:
		return "INDENT"
	case DEDENT:
		return "DEDENT"
	case IDENT:
		return "Ident"
	case INT:
		return "Int"
	case FLOAT:
		return "Float"
	case STRING:
		return "String"
	case FSTRING:
		return "FString"
	case RAWSTRING:
		return "RawString"
	case OP:
		return "Op"
	case PUNCT:
		return "Punct"
	default:
		return "Unknown"
	}
}

// Token is one lexical unit: its kind, raw text, and source position.
type Token struct {
	Kind   Kind
	Value  string
	Line   int
	Column int
	Offset int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Value, t.Line, t.Column)
}

// Keywords recognised by the grammar layer. The lexer itself never
// distinguishes a keyword from an identifier — see internal/lexer: both
// are emitted as IDENT tokens, and the grammar matches keywords by their
// literal value against those Ident-typed tokens.
var Keywords = map[string]bool{
	"if": true, "elif": true, "else": true, "while": true, "for": true,
	"in": true, "def": true, "return": true, "break": true, "continue": true,
	"pass": true, "import": true, "from": true, "as": true, "try": true,
	"except": true, "finally": true, "raise": true, "assert": true,
	"struct": true, "true": true, "false": true, "none": true,
	"and": true, "or": true, "not": true, "export": true,
	"local": true, "private": true, "public": true, "system": true,
}
