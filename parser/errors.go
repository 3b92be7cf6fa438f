package parser

import (
	"fmt"

	"github.com/zwegner/sprdpl"
	"github.com/zwegner/sprdpl/grammar"
	"github.com/zwegner/sprdpl/lexer"
	"github.com/zwegner/sprdpl/source"
)

// EoiName is the pseudo-kind reported as expected when input should have
// ended but a token remained.
const EoiName = "-end-of-input-"

// Syntax error codes used by parser:
const (
	// ErrUnexpectedToken indicates that no production could accept the
	// token at the deepest reached position.
	ErrUnexpectedToken = sprdpl.SyntaxErrors + iota

	// ErrUnexpectedEoi indicates that input ended where the grammar still
	// required a token.
	ErrUnexpectedEoi

	// ErrTrailingToken indicates a successful match of the start rule that
	// left part of the input unconsumed.
	ErrTrailingToken
)

// Configuration error codes used by parser. These signal a broken grammar
// setup, not a property of the input, and are reported as *sprdpl.Error:
const (
	// ErrUnknownName indicates a symbol naming neither a rule nor a token
	// kind at the time it was invoked.
	ErrUnknownName = sprdpl.ConfigErrors + iota

	// ErrUnknownStartRule indicates a start rule that was never defined.
	ErrUnknownStartRule

	// ErrWrongExpr indicates a hand-built expression tree with a node type
	// the engine does not know.
	ErrWrongExpr
)

func unexpectedTokenError(t *lexer.Token, expected []string) *sprdpl.ParseError {
	msg := fmt.Sprintf("unexpected %s token %q", t.Kind(), t.Text())
	return sprdpl.NewParseError(ErrUnexpectedToken, msg, t.Start(), expected)
}

func unexpectedEndError(pos source.Pos, expected []string) *sprdpl.ParseError {
	return sprdpl.NewParseError(ErrUnexpectedEoi, "unexpected end of input", pos, expected)
}

func trailingTokenError(t *lexer.Token) *sprdpl.ParseError {
	msg := fmt.Sprintf("unexpected %s token %q", t.Kind(), t.Text())
	return sprdpl.NewParseError(ErrTrailingToken, msg, t.Start(), []string{EoiName})
}

func unknownNameError(pos source.Pos, name string) *sprdpl.Error {
	return sprdpl.FormatErrorPos(pos, ErrUnknownName, "%q is neither a rule nor a token", name)
}

func unknownStartRuleError(name string) *sprdpl.Error {
	return sprdpl.FormatError(ErrUnknownStartRule, "start rule %q is not defined", name)
}

func wrongExprError(x grammar.Expr) *sprdpl.Error {
	return sprdpl.FormatError(ErrWrongExpr, "unknown expression node %T", x)
}
