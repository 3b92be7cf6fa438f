package lexer

import (
	"github.com/zwegner/sprdpl/source"
)

// Token is an immutable record produced by the lexer: a classified,
// positioned unit of input text. Value is the raw text unless the
// matching rule's transform replaced it.
type Token struct {
	kind       string
	text       string
	value      any
	start, end source.Pos
}

// NewToken creates a token. Mostly useful for tests and token hooks;
// lexers create tokens themselves.
func NewToken(kind, text string, value any, start, end source.Pos) *Token {
	return &Token{kind, text, value, start, end}
}

// Kind returns the name of the token rule that produced the token.
func (t *Token) Kind() string {
	return t.kind
}

// Text returns the raw matched text.
func (t *Token) Text() string {
	return t.text
}

// Value returns the post-transform token value.
func (t *Token) Value() any {
	return t.value
}

// Start returns the position of the first byte of the token.
func (t *Token) Start() source.Pos {
	return t.start
}

// End returns the position just past the last byte of the token.
func (t *Token) End() source.Pos {
	return t.end
}

func (t *Token) SourceName() string {
	return t.start.SourceName()
}

func (t *Token) Line() int {
	return t.start.Line()
}

func (t *Token) Col() int {
	return t.start.Col()
}
