package ast

import (
	"fmt"
	"strings"
	"sync"

	plex "github.com/alecthomas/participle/v2/lexer"

	"github.com/dana-lang/dana/internal/parser"
)

var (
	exprParserOnce sync.Once
	exprParser     *parser.ExprParser
	exprParserErr  error
)

func getExprParser() (*parser.ExprParser, error) {
	exprParserOnce.Do(func() {
		exprParser, exprParserErr = parser.NewExprParser()
	})
	return exprParser, exprParserErr
}

// parseFString splits an f-string token's raw text into literal runs and
// "{expr}" placeholders, recursively parsing each placeholder as a
// standalone Dana expression with the same grammar used for the rest of
// the file. Doubled braces "{{" / "}}" escape to a literal brace.
func (t *transformer) parseFString(tokPos plex.Position, raw string) ([]FStringPart, error) {
	body := stripFStringQuotes(raw)

	var parts []FStringPart
	var lit strings.Builder
	i := 0
	for i < len(body) {
		c := body[i]
		switch {
		case c == '{' && i+1 < len(body) && body[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(body) && body[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			if lit.Len() > 0 {
				parts = append(parts, FStringPart{Literal: decodeEscapes(lit.String())})
				lit.Reset()
			}
			end, depth := i+1, 1
			for end < len(body) && depth > 0 {
				switch body[end] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					end++
				}
			}
			if depth != 0 {
				return nil, t.errf(tokPos, "unbalanced '{' in f-string")
			}
			exprSrc := body[i+1 : end]
			expr, err := t.parseFStringExpr(tokPos, exprSrc)
			if err != nil {
				return nil, err
			}
			parts = append(parts, FStringPart{Expr: expr})
			i = end + 1
		default:
			lit.WriteByte(c)
			i++
		}
	}
	if lit.Len() > 0 {
		parts = append(parts, FStringPart{Literal: decodeEscapes(lit.String())})
	}
	return parts, nil
}

func (t *transformer) parseFStringExpr(tokPos plex.Position, src string) (Expression, error) {
	ep, err := getExprParser()
	if err != nil {
		return nil, fmt.Errorf("building f-string expression parser: %w", err)
	}
	concrete, err := ep.Parse(t.filename, src)
	if err != nil {
		return nil, t.errf(tokPos, "invalid f-string placeholder %q: %v", src, err)
	}
	return t.expr(concrete)
}

// stripFStringQuotes removes the leading prefix ("f", "F", "fr", "rf", ...)
// and the surrounding quotes from a raw FString token.
func stripFStringQuotes(raw string) string {
	s := raw
	for len(s) > 0 && (s[0] == 'f' || s[0] == 'F' || s[0] == 'r' || s[0] == 'R') {
		s = s[1:]
	}
	return stripQuotes(s)
}
