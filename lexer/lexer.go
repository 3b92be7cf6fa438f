// Package lexer defines lexical analyzer.
package lexer

import (
	"regexp"

	"github.com/zwegner/sprdpl/source"
)

// Transform converts the raw matched text to the token value.
// Returning keep == false drops the token from the output stream while
// still advancing past the match (used for whitespace and comments).
type Transform = func(text string) (value any, keep bool)

// TokenRule describes one named token pattern. Rules are ordered: at each
// input position the first rule whose pattern matches there wins, there is
// no longest-match scan across rules. Overlapping patterns must be ordered
// deliberately, e.g. keywords before identifiers.
type TokenRule struct {
	// Name is the token kind, referenced by grammar rules. Must be unique
	// within a lexer.
	Name string

	// Pattern is a regular expression matched at the current position.
	Pattern string

	// Transform produces the token value, nil keeps the raw text.
	Transform Transform
}

type compiledRule struct {
	TokenRule
	re *regexp.Regexp
}

// Lexer holds an ordered list of token rules. The rule list may be changed
// on a live lexer; changes affect only text tokenized afterwards, tokens
// already produced by its streams are unaffected. A lexer and its streams
// must not be used from multiple goroutines concurrently, but independent
// instances are fully independent.
type Lexer struct {
	rules []compiledRule
}

// New creates new Lexer. Patterns are compiled here; a broken pattern is
// reported as a RuleDefErrors class error.
func New(rules ...TokenRule) (*Lexer, error) {
	l := &Lexer{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		e := l.AddRule(r)
		if e != nil {
			return nil, e
		}
	}
	return l, nil
}

// AddRule appends a rule to the active rule list.
func (l *Lexer) AddRule(r TokenRule) error {
	if r.Name == "" {
		return emptyRuleNameError()
	}
	if l.ruleIndex(r.Name) >= 0 {
		return ruleDefinedError(r.Name)
	}

	re, e := regexp.Compile(`^(?:` + r.Pattern + `)`)
	if e != nil {
		return wrongPatternError(r.Name, r.Pattern, e)
	}

	l.rules = append(l.rules, compiledRule{r, re})
	return nil
}

// RemoveRule removes the named rule from the active rule list.
// Reports whether the rule was present.
func (l *Lexer) RemoveRule(name string) bool {
	i := l.ruleIndex(name)
	if i < 0 {
		return false
	}

	l.rules = append(l.rules[:i], l.rules[i+1:]...)
	return true
}

// Reorder rearranges the active rule list to the given order.
// Every present rule must be named exactly once.
func (l *Lexer) Reorder(names ...string) error {
	if len(names) != len(l.rules) {
		return wrongOrderError(len(l.rules), len(names))
	}

	rules := make([]compiledRule, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		i := l.ruleIndex(name)
		if i < 0 {
			return unknownRuleError(name)
		}
		if seen[name] {
			return wrongOrderError(len(l.rules), len(names))
		}

		seen[name] = true
		rules = append(rules, l.rules[i])
	}

	l.rules = rules
	return nil
}

// HasKind reports whether the active rule list contains the named rule.
// The parser uses it to tell token kinds from grammar rule names.
func (l *Lexer) HasKind(name string) bool {
	return l.ruleIndex(name) >= 0
}

// Kinds returns the names of the active rules in order.
func (l *Lexer) Kinds() []string {
	names := make([]string, len(l.rules))
	for i, r := range l.rules {
		names[i] = r.Name
	}
	return names
}

func (l *Lexer) ruleIndex(name string) int {
	for i, r := range l.rules {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// Input creates a token stream over the buffer using the current (live)
// rule list.
func (l *Lexer) Input(buf *source.Buffer) *Stream {
	return &Stream{lexer: l, buf: buf}
}

// Tokenize eagerly converts a complete buffer to a token sequence.
// Returns nil and *sprdpl.ParseError on a lexical error, or nil and
// sprdpl.ErrMoreInput if the buffer is incomplete.
func (l *Lexer) Tokenize(buf *source.Buffer) ([]*Token, error) {
	s := l.Input(buf)
	for i := 0; ; i++ {
		t, e := s.TokenAt(i)
		if e != nil {
			return nil, e
		}
		if t == nil {
			return s.tokens, nil
		}
	}
}

// match tries the rules in order at content[pos:]. Returns the matched
// rule and match length, or matched == false.
func (l *Lexer) match(content []byte, pos int) (rule *compiledRule, size int, matched bool) {
	rest := content[pos:]
	for i := range l.rules {
		m := l.rules[i].re.FindIndex(rest)
		if m == nil || m[1] == 0 {
			continue
		}

		return &l.rules[i], m[1], true
	}
	return nil, 0, false
}
