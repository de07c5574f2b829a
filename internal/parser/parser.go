package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	plex "github.com/alecthomas/participle/v2/lexer"

	dlex "github.com/dana-lang/dana/internal/lexer"
)

// Parser wraps a built participle parser for Program.
type Parser struct {
	inner *participle.Parser[Program]
}

// NewParser builds the Dana parser over the custom indentation lexer by
// wrapping participle.Build[Program] around it.
func NewParser() (*Parser, error) {
	p, err := participle.Build[Program](
		participle.Lexer(dlex.New()),
		participle.UseLookahead(8),
	)
	if err != nil {
		return nil, fmt.Errorf("building parser: %w", err)
	}
	return &Parser{inner: p}, nil
}

// ExprOnly wraps a single expression statement so f-string placeholders
// can be parsed standalone: the tokenizer always closes a source string
// with a synthesized trailing NEWLINE, even for a bracket-free snippet.
type ExprOnly struct {
	Pos  plex.Position
	Expr *Expr `@@ NEWLINE`
}

// ExprParser parses a standalone Dana expression, used by internal/ast to
// recursively parse f-string "{...}" placeholders.
type ExprParser struct {
	inner *participle.Parser[ExprOnly]
}

func NewExprParser() (*ExprParser, error) {
	p, err := participle.Build[ExprOnly](
		participle.Lexer(dlex.New()),
		participle.UseLookahead(8),
	)
	if err != nil {
		return nil, fmt.Errorf("building expression parser: %w", err)
	}
	return &ExprParser{inner: p}, nil
}

func (p *ExprParser) Parse(filename, src string) (*Expr, error) {
	wrapped, err := p.inner.ParseString(filename, src)
	if err != nil {
		return nil, err
	}
	return wrapped.Expr, nil
}

// ParseError is a user-facing parse failure with source context, the
// Dana-side counterpart to the participle.UnexpectedTokenError it wraps.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Message  string
	Source   string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
	if line := sourceLine(e.Source, e.Line); line != "" {
		fmt.Fprintf(&b, "\n    %s\n    %s^", line, strings.Repeat(" ", max(e.Column-1, 0)))
	}
	return b.String()
}

func sourceLine(src string, n int) string {
	if n < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Parse parses Dana source into a concrete Program tree, wrapping any
// failure as a *ParseError carrying source context for the CLI and
// sandbox error surfaces.
func (p *Parser) Parse(filename, src string) (*Program, error) {
	prog, err := p.inner.ParseString(filename, src)
	if err != nil {
		line, col := 1, 1
		if pe, ok := err.(plex.Error); ok {
			line, col = pe.Position().Line, pe.Position().Column
		}
		return nil, &ParseError{
			Filename: filename,
			Line:     line,
			Column:   col,
			Message:  err.Error(),
			Source:   src,
		}
	}
	return prog, nil
}
