// Package grammar defines structures describing compiled grammar rules:
// rule expression trees, productions with their reducers, and the result
// values passed to reducers. Structures are pure data; the parser package
// interprets them and the ruledef package builds them.
package grammar

import (
	"github.com/zwegner/sprdpl/source"
)

// Expr is a node of a rule expression tree. Implementations are Symbol,
// Sequence, Alternation, Repeat, and Optional. An expression tree is
// immutable once built; replacing a rule's productions is the only way
// to change a live grammar.
type Expr interface {
	isExpr()
}

// Symbol references a token kind or another rule by name. Which one it is
// gets decided at match time: rule names shadow token kinds, a name known
// to be neither is a fatal configuration error.
type Symbol struct {
	Name string
}

// Sequence matches its items in order.
type Sequence struct {
	Items []Expr
}

// Alternation matches the first item that succeeds, trying items in
// declared order (ordered choice, not longest match).
type Alternation struct {
	Items []Expr
}

// Repeat greedily matches Inner between Min and Max times.
// Max < 0 means unbounded.
type Repeat struct {
	Inner    Expr
	Min, Max int
}

// Optional matches Inner or nothing.
type Optional struct {
	Inner Expr
}

func (*Symbol) isExpr()      {}
func (*Sequence) isExpr()    {}
func (*Alternation) isExpr() {}
func (*Repeat) isExpr()      {}
func (*Optional) isExpr()    {}

// Reducer computes a production's value from the values matched by its
// sequence elements. A non-nil error aborts the whole parse, it is not a
// backtracking signal.
type Reducer = func(r *Result) (any, error)

// Production is one alternative of a rule: a compiled expression and the
// reducer producing its value. A nil reducer yields the expression value
// unchanged: a single element's value, or the []any of a sequence.
type Production struct {
	Expr   Expr
	Reduce Reducer
}

// Rule is a named, possibly recursive set of productions tried in order.
type Rule struct {
	Name  string
	Prods []Production
}

// Result holds the values matched by a production's sequence elements,
// one entry per element, with the source position of each.
type Result struct {
	items []any
	poss  []source.Pos
}

// NewResult creates a Result. items and poss must have equal length.
func NewResult(items []any, poss []source.Pos) *Result {
	return &Result{items, poss}
}

// Len returns the number of matched elements.
func (r *Result) Len() int {
	return len(r.items)
}

// Get returns the value of the i-th element.
func (r *Result) Get(i int) any {
	return r.items[i]
}

// Items returns the values of all elements.
func (r *Result) Items() []any {
	return r.items
}

// Pos returns the source position where the i-th element matched.
func (r *Result) Pos(i int) source.Pos {
	return r.poss[i]
}
