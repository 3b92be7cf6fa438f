package ruledef

import (
	"github.com/zwegner/sprdpl"
	"github.com/zwegner/sprdpl/lexer"
	"github.com/zwegner/sprdpl/source"
)

// Error codes used by ruledef:
const (
	// ErrUnexpectedEnd indicates a production ending in the middle of an
	// expression, e.g. an unclosed group.
	ErrUnexpectedEnd = sprdpl.RuleDefErrors + iota

	// ErrUnexpectedToken indicates a token that no expression can start
	// or continue with, e.g. a stray quantifier or bracket.
	ErrUnexpectedToken

	// ErrWrongToken indicates a specific expected operator was missing.
	ErrWrongToken

	// ErrEmptyAlternative indicates an alternative with no elements.
	ErrEmptyAlternative
)

func endPos(buf *source.Buffer) source.Pos {
	return source.NewPos(buf, buf.Len())
}

func unexpectedEndError(buf *source.Buffer, expected string) *sprdpl.Error {
	return sprdpl.FormatErrorPos(endPos(buf), ErrUnexpectedEnd, "unexpected end of production, expecting %q", expected)
}

func unexpectedTokenError(t *lexer.Token) *sprdpl.Error {
	return sprdpl.FormatErrorPos(t, ErrUnexpectedToken, "unexpected %q", t.Text())
}

func wrongTokenError(t *lexer.Token, expected string) *sprdpl.Error {
	return sprdpl.FormatErrorPos(t, ErrWrongToken, "got %q instead of %q", t.Text(), expected)
}

func emptyAlternativeError(buf *source.Buffer) *sprdpl.Error {
	return sprdpl.FormatErrorPos(endPos(buf), ErrEmptyAlternative, "empty alternative in production")
}
