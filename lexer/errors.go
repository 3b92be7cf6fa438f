package lexer

import (
	"github.com/zwegner/sprdpl"
	"github.com/zwegner/sprdpl/source"
)

// Error codes used by lexer:
const (
	// ErrNoMatch indicates that no token rule matches at current position.
	// The expected set of the error contains all active token rule names.
	ErrNoMatch = sprdpl.LexicalErrors + iota

	// ErrWrongPattern indicates a token rule pattern that does not compile.
	ErrWrongPattern

	// ErrRuleDefined indicates an attempt to add a duplicate token rule.
	ErrRuleDefined

	// ErrUnknownRule indicates an unknown rule name passed to Reorder.
	ErrUnknownRule

	// ErrWrongOrder indicates a Reorder call not naming every rule once.
	ErrWrongOrder

	// ErrEmptyRuleName indicates a token rule with an empty name.
	ErrEmptyRuleName
)

func noMatchError(pos source.Pos, kinds []string) *sprdpl.ParseError {
	return sprdpl.NewParseError(ErrNoMatch, "no token matches", pos, kinds)
}

func wrongPatternError(name, pattern string, e error) *sprdpl.Error {
	return sprdpl.FormatError(ErrWrongPattern, "incorrect pattern %q for token %s (%s)", pattern, name, e.Error())
}

func ruleDefinedError(name string) *sprdpl.Error {
	return sprdpl.FormatError(ErrRuleDefined, "token rule %q already defined", name)
}

func unknownRuleError(name string) *sprdpl.Error {
	return sprdpl.FormatError(ErrUnknownRule, "unknown token rule %q", name)
}

func wrongOrderError(rules, names int) *sprdpl.Error {
	return sprdpl.FormatError(ErrWrongOrder, "reorder must name each of %d rules once, got %d names", rules, names)
}

func emptyRuleNameError() *sprdpl.Error {
	return sprdpl.FormatError(ErrEmptyRuleName, "token rule name must not be empty")
}

func errMoreInput() *sprdpl.Error {
	return sprdpl.ErrMoreInput
}
