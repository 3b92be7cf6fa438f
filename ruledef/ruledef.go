/*
Package ruledef compiles production descriptions written in an EBNF-like
mini-language into grammar rule expressions.

A production is a string of whitespace-separated elements forming a
sequence. An element is a token kind or rule name, a parenthesized group,
or an optional group in square brackets. "|" separates alternatives and has
the lowest binding precedence. A name or parenthesized group may carry one
postfix quantifier: "*" (zero or more), "+" (one or more), or "?" (zero or
one). For example:

	factor ((TIMES | DIVIDE) factor)*
	LPAREN expr RPAREN
	[sign] NUMBER

Compilation is purely syntactic: referenced names are not checked against
any rule or token table. Resolution happens lazily at match time, which is
what allows forward references, mutual recursion, and late registration.

The mini-language is tokenized by this module's own lexer package.
*/
package ruledef

import (
	"github.com/zwegner/sprdpl/grammar"
	"github.com/zwegner/sprdpl/lexer"
	"github.com/zwegner/sprdpl/source"
)

const (
	nameTok  = "name"
	opTok    = "op"
	spaceTok = "space"
)

var defLexer *lexer.Lexer

func init() {
	var e error
	defLexer, e = lexer.New(
		lexer.TokenRule{Name: nameTok, Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		lexer.TokenRule{Name: opTok, Pattern: `[()\[\]|*+?]`},
		lexer.TokenRule{Name: spaceTok, Pattern: `[ \t\r\n]+`, Transform: drop},
	)
	if e != nil {
		panic(e)
	}
}

func drop(string) (any, bool) {
	return nil, false
}

// Compile parses one production description and returns its expression
// tree. name is the owning rule's name, used in error messages only.
// Returns nil and *sprdpl.Error or *sprdpl.ParseError on error.
func Compile(name, prod string) (grammar.Expr, error) {
	buf := source.New(name, []byte(prod))
	tokens, e := defLexer.Tokenize(buf)
	if e != nil {
		return nil, e
	}

	c := &defParser{buf: buf, tokens: tokens}
	expr, e := c.parseExpr()
	if e != nil {
		return nil, e
	}

	t := c.peek()
	if t != nil {
		return nil, unexpectedTokenError(t)
	}
	return expr, nil
}

type defParser struct {
	buf    *source.Buffer
	tokens []*lexer.Token
	pos    int
}

func (c *defParser) peek() *lexer.Token {
	if c.pos >= len(c.tokens) {
		return nil
	}
	return c.tokens[c.pos]
}

// acceptOp consumes the next token if it is the given operator.
func (c *defParser) acceptOp(op string) bool {
	t := c.peek()
	if t == nil || t.Kind() != opTok || t.Text() != op {
		return false
	}

	c.pos++
	return true
}

func (c *defParser) expectOp(op string) error {
	if c.acceptOp(op) {
		return nil
	}

	t := c.peek()
	if t == nil {
		return unexpectedEndError(c.buf, op)
	}
	return wrongTokenError(t, op)
}

// parseExpr parses any number of sequences joined by "|".
func (c *defParser) parseExpr() (grammar.Expr, error) {
	item, e := c.parseSeq()
	if e != nil {
		return nil, e
	}

	items := []grammar.Expr{item}
	for c.acceptOp("|") {
		item, e = c.parseSeq()
		if e != nil {
			return nil, e
		}
		items = append(items, item)
	}

	if len(items) == 1 {
		return items[0], nil
	}
	return &grammar.Alternation{Items: items}, nil
}

// parseSeq parses the concatenation of one or more elements. A bare
// single element is returned unwrapped so that productions without a
// reducer keep their sole value, not a one-element list.
func (c *defParser) parseSeq() (grammar.Expr, error) {
	items := []grammar.Expr{}
	for {
		t := c.peek()
		if t == nil || (t.Kind() == opTok && t.Text() != "(" && t.Text() != "[") {
			break
		}

		item, e := c.parseAtom()
		if e != nil {
			return nil, e
		}
		items = append(items, item)
	}

	switch len(items) {
	case 0:
		t := c.peek()
		if t == nil {
			return nil, emptyAlternativeError(c.buf)
		}
		return nil, unexpectedTokenError(t)
	case 1:
		return items[0], nil
	default:
		return &grammar.Sequence{Items: items}, nil
	}
}

// parseAtom parses a name, a parenthesized group, or a bracketed optional
// group, with a quantifier where allowed.
func (c *defParser) parseAtom() (grammar.Expr, error) {
	if c.acceptOp("(") {
		expr, e := c.parseExpr()
		if e != nil {
			return nil, e
		}
		e = c.expectOp(")")
		if e != nil {
			return nil, e
		}
		return c.parseQuant(expr), nil
	}

	if c.acceptOp("[") {
		expr, e := c.parseExpr()
		if e != nil {
			return nil, e
		}
		e = c.expectOp("]")
		if e != nil {
			return nil, e
		}
		return &grammar.Optional{Inner: expr}, nil
	}

	t := c.peek()
	if t == nil {
		return nil, unexpectedEndError(c.buf, nameTok)
	}
	if t.Kind() != nameTok {
		return nil, unexpectedTokenError(t)
	}

	c.pos++
	return c.parseQuant(&grammar.Symbol{Name: t.Text()}), nil
}

// parseQuant applies at most one postfix quantifier to expr.
func (c *defParser) parseQuant(expr grammar.Expr) grammar.Expr {
	switch {
	case c.acceptOp("*"):
		return &grammar.Repeat{Inner: expr, Min: 0, Max: -1}
	case c.acceptOp("+"):
		return &grammar.Repeat{Inner: expr, Min: 1, Max: -1}
	case c.acceptOp("?"):
		return &grammar.Optional{Inner: expr}
	default:
		return expr
	}
}
