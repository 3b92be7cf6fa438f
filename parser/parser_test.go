package parser

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/zwegner/sprdpl"
	"github.com/zwegner/sprdpl/grammar"
	"github.com/zwegner/sprdpl/internal/test"
	"github.com/zwegner/sprdpl/lexer"
	"github.com/zwegner/sprdpl/source"
)

func dropSpace(string) (any, bool) {
	return nil, false
}

func numValue(text string) (any, bool) {
	n, _ := strconv.ParseFloat(text, 64)
	return n, true
}

func calcLexer(t *testing.T) *lexer.Lexer {
	l, e := lexer.New(
		lexer.TokenRule{Name: "PLUS", Pattern: `\+`},
		lexer.TokenRule{Name: "MINUS", Pattern: `-`},
		lexer.TokenRule{Name: "TIMES", Pattern: `\*`},
		lexer.TokenRule{Name: "DIVIDE", Pattern: `/`},
		lexer.TokenRule{Name: "NUMBER", Pattern: `[0-9]+(\.[0-9]*)?|\.[0-9]+`, Transform: numValue},
		lexer.TokenRule{Name: "LPAREN", Pattern: `\(`},
		lexer.TokenRule{Name: "RPAREN", Pattern: `\)`},
		lexer.TokenRule{Name: "WS", Pattern: `[ \t\n]+`, Transform: dropSpace},
	)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	return l
}

// reduceBinop folds a value followed by a list of (operator, value) pairs,
// left to right.
func reduceBinop(r *grammar.Result) (any, error) {
	res := r.Get(0).(float64)
	for _, item := range r.Get(1).([]any) {
		pair := item.([]any)
		right := pair[1].(float64)
		switch pair[0].(string) {
		case "+":
			res += right
		case "-":
			res -= right
		case "*":
			res *= right
		case "/":
			res /= right
		}
	}
	return res, nil
}

func calcParser(t *testing.T) *Parser {
	p, e := New([]RuleDef{
		{"atom", []Prod{
			{"NUMBER", nil},
			{"LPAREN expr RPAREN", func(r *grammar.Result) (any, error) { return r.Get(1), nil }},
		}},
		{"factor", []Prod{
			{"atom", nil},
			{"MINUS factor", func(r *grammar.Result) (any, error) { return -r.Get(1).(float64), nil }},
		}},
		{"term", []Prod{{"factor ((TIMES | DIVIDE) factor)*", reduceBinop}}},
		{"expr", []Prod{{"term ((PLUS | MINUS) term)*", reduceBinop}}},
	}, "expr")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	return p
}

func parseCalc(t *testing.T, p *Parser, input string) (any, error) {
	l := calcLexer(t)
	return p.Parse(l.Input(source.New("calc", []byte(input))))
}

func TestArithmetic(t *testing.T) {
	samples := []struct {
		input    string
		expected float64
	}{
		{"1", 1},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"2 * 3 + 4", 10},
		{"-2 + 3", 1},
		{"10 / 4", 2.5},
		{"1 - 2 - 3", -4},
		{"((1))", 1},
	}

	p := calcParser(t)
	for i, s := range samples {
		res, e := parseCalc(t, p, s.input)
		if e != nil {
			t.Errorf("sample %d %q: unexpected error: %s", i, s.input, e.Error())
			continue
		}
		if res != s.expected {
			t.Errorf("sample %d %q: expected %v, got %v", i, s.input, s.expected, res)
		}
	}
}

// "2 +" must fail at end of input, with the expected set naming everything
// a term can start with, not at the start of the whole expression.
func TestErrorAtEoi(t *testing.T) {
	p := calcParser(t)
	_, e := parseCalc(t, p, "2 +")
	test.ExpectErrorCode(t, ErrUnexpectedEoi, e)

	ee := e.(*sprdpl.ParseError)
	test.ExpectInt(t, 1, ee.Pos.Line())
	test.ExpectInt(t, 4, ee.Pos.Col())
	expected := []string{"LPAREN", "MINUS", "NUMBER"}
	test.ExpectInt(t, len(expected), len(ee.Expected))
	for i, kind := range expected {
		test.ExpectString(t, kind, ee.Expected[i])
	}
}

// Deepest-failure reporting: the error for "1 + + 2" points at the second
// "+", the deepest position any production reached.
func TestDeepestError(t *testing.T) {
	l, e := lexer.New(
		lexer.TokenRule{Name: "NUMBER", Pattern: `[0-9]+`, Transform: numValue},
		lexer.TokenRule{Name: "PLUS", Pattern: `\+`},
		lexer.TokenRule{Name: "MINUS", Pattern: `-`},
		lexer.TokenRule{Name: "WS", Pattern: ` +`, Transform: dropSpace},
	)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	p, e := New([]RuleDef{
		{"expr", []Prod{{"term ((PLUS | MINUS) term)*", nil}}},
		{"term", []Prod{{"NUMBER", nil}}},
	}, "expr")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	_, e = p.Parse(l.Input(source.New("src", []byte("1 + + 2"))))
	test.ExpectErrorCode(t, ErrUnexpectedToken, e)

	ee := e.(*sprdpl.ParseError)
	test.ExpectInt(t, 5, ee.Pos.Col())
	test.ExpectInt(t, 1, len(ee.Expected))
	test.ExpectString(t, "NUMBER", ee.Expected[0])
}

func TestRenderedError(t *testing.T) {
	p := calcParser(t)
	_, e := parseCalc(t, p, "1 +\n2 + * 3")
	test.ExpectErrorCode(t, ErrUnexpectedToken, e)

	lines := strings.Split(e.(*sprdpl.ParseError).Render(), "\n")
	test.ExpectInt(t, 3, len(lines))
	test.ExpectString(t, "2 + * 3", lines[1])
	test.ExpectString(t, "    ^", lines[2])
	test.Assert(t, strings.Contains(lines[0], "line 2 col 5"), "position missing from %q", lines[0])
}

// Ordered choice commits to the first fully matching production even when
// a later one would consume more input, and a failed alternative must not
// leak partial consumption.
func TestOrderedChoice(t *testing.T) {
	l, e := lexer.New(
		lexer.TokenRule{Name: "A", Pattern: `a`},
		lexer.TokenRule{Name: "B", Pattern: `b`},
		lexer.TokenRule{Name: "WS", Pattern: ` +`, Transform: dropSpace},
	)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	p, e := New([]RuleDef{
		{"r", []Prod{
			{"A B", func(r *grammar.Result) (any, error) { return "ab", nil }},
			{"A", func(r *grammar.Result) (any, error) { return "a", nil }},
		}},
	}, "r")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	res, e := p.Parse(l.Input(source.New("", []byte("a"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == "a", "a", res)

	res, e = p.Parse(l.Input(source.New("", []byte("a b"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == "ab", "ab", res)
}

func TestRepeatMinimum(t *testing.T) {
	l, e := lexer.New(
		lexer.TokenRule{Name: "A", Pattern: `a`},
		lexer.TokenRule{Name: "END", Pattern: `;`},
		lexer.TokenRule{Name: "WS", Pattern: ` +`, Transform: dropSpace},
	)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	p, e := New([]RuleDef{
		{"r", []Prod{{"A+ END", nil}}},
	}, "r")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	_, e = p.Parse(l.Input(source.New("", []byte(";"))))
	test.ExpectErrorCode(t, ErrUnexpectedToken, e)

	res, e := p.Parse(l.Input(source.New("", []byte("a ;"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	items := res.([]any)[0].([]any)
	test.ExpectInt(t, 1, len(items))
	test.Expect(t, items[0] == "a", "a", items[0])

	res, e = p.Parse(l.Input(source.New("", []byte("a a a ;"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.ExpectInt(t, 3, len(res.([]any)[0].([]any)))
}

func TestTrailingInput(t *testing.T) {
	p := calcParser(t)
	_, e := parseCalc(t, p, "1 ) 2")
	test.ExpectErrorCode(t, ErrTrailingToken, e)

	ee := e.(*sprdpl.ParseError)
	test.ExpectInt(t, 3, ee.Pos.Col())
	test.ExpectString(t, EoiName, ee.Expected[0])
}

func TestConfigErrors(t *testing.T) {
	l, e := lexer.New(lexer.TokenRule{Name: "A", Pattern: `a`})
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	p, e := New([]RuleDef{{"r", []Prod{{"A missing", nil}}}}, "r")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	_, e = p.Parse(l.Input(source.New("", []byte("a"))))
	test.ExpectErrorCode(t, ErrUnknownName, e)

	_, e = p.ParseRule(l.Input(source.New("", []byte("a"))), "nowhere")
	test.ExpectErrorCode(t, ErrUnknownStartRule, e)

	_, e = New([]RuleDef{{"r", []Prod{{"A (", nil}}}}, "r")
	test.Assert(t, e != nil, "expecting a compile error")
}

// Rules are resolved by name at match time, so a rule may be redefined
// between parses without touching the rules referencing it.
func TestSelfModification(t *testing.T) {
	l, e := lexer.New(
		lexer.TokenRule{Name: "A", Pattern: `a`},
		lexer.TokenRule{Name: "B", Pattern: `b`},
	)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	p, e := New([]RuleDef{
		{"top", []Prod{{"item", nil}}},
		{"item", []Prod{{"A", nil}}},
	}, "top")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	_, e = p.Parse(l.Input(source.New("", []byte("b"))))
	test.ExpectErrorCode(t, ErrUnexpectedToken, e)

	e = p.AddProduction("item", "B", nil)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	res, e := p.Parse(l.Input(source.New("", []byte("b"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == "b", "b", res)

	e = p.ReplaceRule("item", []Prod{{"B", nil}})
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	_, e = p.Parse(l.Input(source.New("", []byte("a"))))
	test.ExpectErrorCode(t, ErrUnexpectedToken, e)

	test.Assert(t, p.Rule("item") != nil, "item rule missing")
	test.ExpectInt(t, 1, len(p.Rule("item").Prods))
}

// Forward references resolve lazily: a rule may be registered after the
// rules mentioning it, as long as it exists by the time it is invoked.
func TestLateRegistration(t *testing.T) {
	l, e := lexer.New(lexer.TokenRule{Name: "A", Pattern: `a`})
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	p, e := New([]RuleDef{{"top", []Prod{{"later", nil}}}}, "top")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	e = p.AddProduction("later", "A", nil)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	res, e := p.Parse(l.Input(source.New("", []byte("a"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == "a", "a", res)
}

func TestMutualRecursion(t *testing.T) {
	l, e := lexer.New(
		lexer.TokenRule{Name: "L", Pattern: `\(`},
		lexer.TokenRule{Name: "R", Pattern: `\)`},
		lexer.TokenRule{Name: "X", Pattern: `x`},
	)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	// depth counts nesting: wrap -> L wrap R | leaf, leaf -> X
	p, e := New([]RuleDef{
		{"wrap", []Prod{
			{"L wrap R", func(r *grammar.Result) (any, error) { return r.Get(1).(int) + 1, nil }},
			{"leaf", nil},
		}},
		{"leaf", []Prod{{"X", func(r *grammar.Result) (any, error) { return 0, nil }}}},
	}, "wrap")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	res, e := p.Parse(l.Input(source.New("", []byte("(((x)))"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == 3, 3, res)
}

func TestOptional(t *testing.T) {
	l, e := lexer.New(
		lexer.TokenRule{Name: "MINUS", Pattern: `-`},
		lexer.TokenRule{Name: "NUMBER", Pattern: `[0-9]+`, Transform: numValue},
	)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	signed := func(r *grammar.Result) (any, error) {
		n := r.Get(1).(float64)
		if r.Get(0) != nil {
			n = -n
		}
		return n, nil
	}
	p, e := New([]RuleDef{{"num", []Prod{{"[MINUS] NUMBER", signed}}}}, "num")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	res, e := p.Parse(l.Input(source.New("", []byte("42"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == 42.0, 42.0, res)

	res, e = p.Parse(l.Input(source.New("", []byte("-42"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == -42.0, -42.0, res)
}

func TestReducerPositions(t *testing.T) {
	l := calcLexer(t)
	var col int
	p, e := New([]RuleDef{
		{"sum", []Prod{{"NUMBER PLUS NUMBER", func(r *grammar.Result) (any, error) {
			col = r.Pos(2).Col()
			return r.Get(0).(float64) + r.Get(2).(float64), nil
		}}}},
	}, "sum")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	res, e := p.Parse(l.Input(source.New("", []byte("10 + 7"))))
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == 17.0, 17.0, res)
	test.ExpectInt(t, 6, col)
}

func TestReducerError(t *testing.T) {
	l := calcLexer(t)
	boom := fmt.Errorf("boom")
	p, e := New([]RuleDef{
		{"r", []Prod{{"NUMBER", func(r *grammar.Result) (any, error) { return nil, boom }}}},
	}, "r")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	_, e = p.Parse(l.Input(source.New("", []byte("1"))))
	test.Assert(t, e == boom, "expecting reducer error, got %v", e)
}

// Round-trip: with structure-preserving reducers, re-rendering the parsed
// tree reproduces the input text.
func TestRoundTrip(t *testing.T) {
	l := calcLexer(t)
	join := func(r *grammar.Result) (any, error) {
		parts := make([]string, 0, r.Len())
		for i := 0; i < r.Len(); i++ {
			if s := render(r.Get(i)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " "), nil
	}

	p, e := New([]RuleDef{
		{"atom", []Prod{
			{"NUMBER", func(r *grammar.Result) (any, error) { return strconv.FormatFloat(r.Get(0).(float64), 'g', -1, 64), nil }},
			{"LPAREN expr RPAREN", func(r *grammar.Result) (any, error) { return "( " + r.Get(1).(string) + " )", nil }},
		}},
		{"expr", []Prod{{"atom ((PLUS | MINUS | TIMES | DIVIDE) atom)*", join}}},
	}, "expr")
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}

	samples := []string{
		"2 + 3 * 4",
		"( 2 + 3 ) * 4",
		"1",
	}
	for i, s := range samples {
		res, e := p.Parse(l.Input(source.New("", []byte(s))))
		if e != nil {
			t.Errorf("sample %d %q: unexpected error: %s", i, s, e.Error())
			continue
		}
		if res != s {
			t.Errorf("sample %d %q: got %q", i, s, res)
		}
	}
}

func render(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = render(item)
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(v)
	}
}

func TestInteractive(t *testing.T) {
	l := calcLexer(t)
	p := calcParser(t)

	buf := source.NewIncremental("stdin")
	s := l.Input(buf)

	buf.Append([]byte("1 +"))
	_, e := p.Parse(s)
	test.ExpectErrorCode(t, sprdpl.MoreInputError, e)

	buf.Append([]byte(" 2"))
	res, e := p.Parse(s)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == 3.0, 3.0, res)

	// A longer expression keeps extending the same retained token sequence.
	buf.Append([]byte(" * 5"))
	res, e = p.Parse(s)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == 11.0, 11.0, res)

	buf.End()
	res, e = p.Parse(s)
	if e != nil {
		t.Fatalf("unexpected error: %s", e.Error())
	}
	test.Expect(t, res == 11.0, 11.0, res)
}

// A genuine syntax error in an incomplete buffer is still an error: only
// failures at the very end of available input wait for more.
func TestInteractiveError(t *testing.T) {
	l := calcLexer(t)
	p := calcParser(t)

	buf := source.NewIncremental("stdin")
	buf.Append([]byte("1 + ) 2"))
	_, e := p.Parse(l.Input(buf))
	test.ExpectErrorCode(t, ErrUnexpectedToken, e)
}
