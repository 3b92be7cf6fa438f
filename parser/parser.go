// Package parser defines a backtracking recursive-descent parser driven by
// compiled grammar rules.
//
// Alternatives are resolved by ordered choice: productions and alternation
// branches are tried in declared order and the first one whose full
// sequence matches wins, even if a later alternative would consume more
// input. Backtracking restores an index into the retained token sequence,
// so arbitrarily deep retries are cheap to set up; no sub-parse results
// are memoized, pathological grammars re-parse.
//
// Rule references are resolved by name at match time, not at compile time.
// Forward references and mutual recursion need no fix-up pass, and rules
// may be added or replaced on a live parser between parses.
package parser

import (
	"github.com/zwegner/sprdpl"
	"github.com/zwegner/sprdpl/grammar"
	"github.com/zwegner/sprdpl/lexer"
	"github.com/zwegner/sprdpl/ruledef"
	"github.com/zwegner/sprdpl/source"
)

// Prod is one production of a rule in the authoring surface: an expression
// in the ruledef mini-language plus the reducer computing its value.
// A nil reducer keeps the matched value unchanged: a single element's
// value, or the []any of a sequence.
type Prod struct {
	Expr   string
	Reduce grammar.Reducer
}

// RuleDef names a rule and lists its productions in order of preference.
type RuleDef struct {
	Name  string
	Prods []Prod
}

// Parser holds a mutable table of compiled rules. A parser instance must
// not be mutated while a Parse call is running, but independent instances
// are fully independent.
type Parser struct {
	rules map[string]*grammar.Rule
	start string
}

// New compiles the rule definitions and creates a parser starting at the
// named rule. Rule names may be referenced before they are defined; only
// the production syntax is checked here.
func New(defs []RuleDef, start string) (*Parser, error) {
	p := &Parser{rules: make(map[string]*grammar.Rule), start: start}
	for _, d := range defs {
		for _, prod := range d.Prods {
			e := p.AddProduction(d.Name, prod.Expr, prod.Reduce)
			if e != nil {
				return nil, e
			}
		}
	}
	return p, nil
}

// AddProduction compiles one production and appends it to the named rule,
// creating the rule if absent. Effective for the next match of the rule,
// parses already in flight are not re-planned.
func (p *Parser) AddProduction(rule, prod string, reduce grammar.Reducer) error {
	expr, e := ruledef.Compile(rule, prod)
	if e != nil {
		return e
	}

	r := p.rules[rule]
	if r == nil {
		r = &grammar.Rule{Name: rule}
		p.rules[rule] = r
	}
	r.Prods = append(r.Prods, grammar.Production{Expr: expr, Reduce: reduce})
	return nil
}

// ReplaceRule swaps the whole production list of the named rule, creating
// the rule if absent. Referencing rules need no recompilation: resolution
// is by name at match time.
func (p *Parser) ReplaceRule(rule string, prods []Prod) error {
	r := &grammar.Rule{Name: rule, Prods: make([]grammar.Production, 0, len(prods))}
	for _, prod := range prods {
		expr, e := ruledef.Compile(rule, prod.Expr)
		if e != nil {
			return e
		}
		r.Prods = append(r.Prods, grammar.Production{Expr: expr, Reduce: prod.Reduce})
	}

	p.rules[rule] = r
	return nil
}

// Rule returns the named compiled rule or nil.
func (p *Parser) Rule(name string) *grammar.Rule {
	return p.rules[name]
}

// Parse drives the start rule over the token stream.
// On success returns the start rule's value; the whole token sequence must
// be consumed, a trailing token is a syntax error.
// On a lexical or syntax error returns nil and *sprdpl.ParseError carrying
// the deepest reached position and the token kinds acceptable there.
// If the stream's buffer is incomplete and ends in the middle of a match
// that could still succeed, returns nil and sprdpl.ErrMoreInput; the
// driver should append input (or complete the buffer) and call Parse
// again, the retained token sequence is extended, not rebuilt.
func (p *Parser) Parse(s *lexer.Stream) (any, error) {
	return p.ParseRule(s, p.start)
}

// ParseRule is Parse starting at an explicitly named rule.
func (p *Parser) ParseRule(s *lexer.Stream, start string) (any, error) {
	rule := p.rules[start]
	if rule == nil {
		return nil, unknownStartRuleError(start)
	}

	pc := &parseContext{parser: p, stream: s, maxExpected: make(map[string]bool)}
	val, _, ok, e := pc.matchRule(rule)
	if e != nil {
		return nil, e
	}
	if !ok {
		if pc.needMoreInput() {
			return nil, sprdpl.ErrMoreInput
		}
		return nil, pc.syntaxError()
	}

	trailing, e := s.TokenAt(pc.pos)
	if sprdpl.ErrorCode(e) == sprdpl.MoreInputError {
		// The unfinished tail of an incomplete buffer is not trailing input.
		return val, nil
	}
	if e != nil {
		return nil, e
	}
	if trailing != nil {
		if pc.needMoreInput() {
			return nil, sprdpl.ErrMoreInput
		}
		if pc.maxPos > pc.pos {
			return nil, pc.syntaxError()
		}
		return nil, trailingTokenError(trailing)
	}
	return val, nil
}

// parseContext carries the state of one Parse call: the cursor into the
// token sequence and the deepest-failure bookkeeping.
type parseContext struct {
	parser      *Parser
	stream      *lexer.Stream
	pos         int
	maxPos      int
	maxExpected map[string]bool
}

// accept consumes the token at the cursor if it has the given kind.
// Every attempt is recorded against the deepest position reached so far;
// that union of kinds is what a syntax error reports.
// A nil token with nil error is an ordinary mismatch, including the end of
// available input (needMoreInput later tells the two apart); a non-nil
// error is a fatal lexical error.
func (pc *parseContext) accept(kind string) (*lexer.Token, error) {
	tok, e := pc.stream.TokenAt(pc.pos)
	if e != nil {
		if sprdpl.ErrorCode(e) != sprdpl.MoreInputError {
			return nil, e
		}
		tok = nil
	}

	if pc.pos >= pc.maxPos {
		if pc.pos > pc.maxPos {
			pc.maxPos = pc.pos
			if len(pc.maxExpected) > 0 {
				pc.maxExpected = make(map[string]bool)
			}
		}
		pc.maxExpected[kind] = true
	}

	if tok != nil && tok.Kind() == kind {
		pc.pos++
		return tok, nil
	}
	return nil, nil
}

// cursorPos returns the source position of the token at the cursor, or of
// the end of tokenized input. Never forces further tokenization.
func (pc *parseContext) cursorPos() source.Pos {
	if pc.pos < pc.stream.Len() {
		t, _ := pc.stream.TokenAt(pc.pos)
		return t.Start()
	}
	return pc.stream.EndPos()
}

// tryMatch attempts one expression at the cursor. On a mismatch the cursor
// is restored to its value at entry; at is the position where the
// expression matched or was attempted.
func (pc *parseContext) tryMatch(x grammar.Expr) (val any, at source.Pos, ok bool, e error) {
	switch x := x.(type) {
	case *grammar.Symbol:
		rule := pc.parser.rules[x.Name]
		if rule != nil {
			return pc.matchRule(rule)
		}
		if !pc.stream.Lexer().HasKind(x.Name) {
			return nil, pc.cursorPos(), false, unknownNameError(pc.cursorPos(), x.Name)
		}

		at = pc.cursorPos()
		tok, e := pc.accept(x.Name)
		if e != nil || tok == nil {
			return nil, at, false, e
		}
		return tok.Value(), tok.Start(), true, nil

	case *grammar.Sequence:
		at = pc.cursorPos()
		vals, _, ok, e := pc.matchSeq(x)
		if e != nil || !ok {
			return nil, at, false, e
		}
		return vals, at, true, nil

	case *grammar.Alternation:
		entry := pc.pos
		at = pc.cursorPos()
		for _, item := range x.Items {
			val, vat, ok, e := pc.tryMatch(item)
			if e != nil {
				return nil, at, false, e
			}
			if ok {
				return val, vat, true, nil
			}

			pc.pos = entry
		}
		return nil, at, false, nil

	case *grammar.Repeat:
		entry := pc.pos
		at = pc.cursorPos()
		vals := []any{}
		for x.Max < 0 || len(vals) < x.Max {
			save := pc.pos
			val, _, ok, e := pc.tryMatch(x.Inner)
			if e != nil {
				return nil, at, false, e
			}
			if !ok {
				pc.pos = save
				break
			}

			vals = append(vals, val)
			if pc.pos == save {
				// Inner matched without consuming, repeating would not end.
				break
			}
		}
		if len(vals) < x.Min {
			pc.pos = entry
			return nil, at, false, nil
		}
		return vals, at, true, nil

	case *grammar.Optional:
		save := pc.pos
		at = pc.cursorPos()
		val, vat, ok, e := pc.tryMatch(x.Inner)
		if e != nil {
			return nil, at, false, e
		}
		if ok {
			return val, vat, true, nil
		}

		pc.pos = save
		return nil, at, true, nil

	default:
		return nil, pc.cursorPos(), false, wrongExprError(x)
	}
}

// matchSeq matches sequence items in order, collecting one value and one
// position per item. Any item failing restores the cursor to the
// sequence's entry point.
func (pc *parseContext) matchSeq(s *grammar.Sequence) ([]any, []source.Pos, bool, error) {
	entry := pc.pos
	vals := make([]any, 0, len(s.Items))
	poss := make([]source.Pos, 0, len(s.Items))
	for _, item := range s.Items {
		val, at, ok, e := pc.tryMatch(item)
		if e != nil {
			return nil, nil, false, e
		}
		if !ok {
			pc.pos = entry
			return nil, nil, false, nil
		}

		vals = append(vals, val)
		poss = append(poss, at)
	}
	return vals, poss, true, nil
}

// matchRule tries the rule's productions in declared order; the first
// production whose full expression matches wins and its reducer supplies
// the value. Exhausting all productions restores the cursor.
func (pc *parseContext) matchRule(r *grammar.Rule) (any, source.Pos, bool, error) {
	entry := pc.pos
	at := pc.cursorPos()
	for i := range r.Prods {
		val, vat, ok, e := pc.matchProd(&r.Prods[i])
		if e != nil {
			return nil, at, false, e
		}
		if ok {
			return val, vat, true, nil
		}

		pc.pos = entry
	}
	return nil, at, false, nil
}

func (pc *parseContext) matchProd(prod *grammar.Production) (any, source.Pos, bool, error) {
	at := pc.cursorPos()
	var vals []any
	var poss []source.Pos

	seq, isSeq := prod.Expr.(*grammar.Sequence)
	if isSeq {
		var ok bool
		var e error
		vals, poss, ok, e = pc.matchSeq(seq)
		if e != nil || !ok {
			return nil, at, false, e
		}
	} else {
		val, vat, ok, e := pc.tryMatch(prod.Expr)
		if e != nil || !ok {
			return nil, at, false, e
		}
		vals, poss = []any{val}, []source.Pos{vat}
	}

	if prod.Reduce == nil {
		if isSeq {
			return vals, at, true, nil
		}
		return vals[0], at, true, nil
	}

	val, e := prod.Reduce(grammar.NewResult(vals, poss))
	if e != nil {
		return nil, at, false, e
	}
	return val, at, true, nil
}

// needMoreInput reports whether the deepest attempt ran off the end of an
// incomplete stream: the match could still succeed once input is appended,
// so the outcome is sprdpl.ErrMoreInput rather than a syntax error.
func (pc *parseContext) needMoreInput() bool {
	return !pc.stream.Ended() && pc.maxPos >= pc.stream.Len()
}

// syntaxError builds the diagnostic for the deepest position reached.
func (pc *parseContext) syntaxError() *sprdpl.ParseError {
	expected := make([]string, 0, len(pc.maxExpected))
	for kind := range pc.maxExpected {
		expected = append(expected, kind)
	}

	tok, e := pc.stream.TokenAt(pc.maxPos)
	if e != nil || tok == nil {
		return unexpectedEndError(pc.stream.EndPos(), expected)
	}
	return unexpectedTokenError(tok, expected)
}
