/*
Package sprdpl is a library for building lexers and recursive-descent
parsers from declarative grammar descriptions.

Consists of subpackages:
  - source: defines append-only input buffers used by lexer, batch or incremental;
  - lexer: lexical analyzer driven by an ordered list of named token patterns;
  - grammar: defines structures describing grammar rule expressions and reducers;
  - ruledef: converts production descriptions (written in an EBNF-like language) to rule expressions;
  - parser: defines backtracking parser.

Typical usage is:

1. Describe tokens as a list of lexer.TokenRule entries: a name, a regular
expression, and an optional transform producing the token value (or dropping
the token, e.g. for whitespace and comments).

2. Describe grammar rules as parser.RuleDef entries, each production written
in the EBNF-like language with an attached reducer computing its value.

3. Create a lexer and a parser, feed input either as a complete string or
incrementally, and receive either the start rule's value or a ParseError.

Both token rules and grammar rules may be modified on live instances between
parses, affecting only input processed afterwards.
*/
package sprdpl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zwegner/sprdpl/source"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	RuleDefErrors  = 1   // used by ruledef
	LexicalErrors  = 101 // used by lexer
	SyntaxErrors   = 201 // used by parser
	ConfigErrors   = 301 // used by parser
	MoreInputError = 401 // code of ErrMoreInput
)

// Error is the error type used for configuration and rule compilation errors.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source buffer or 0.
	Line int

	// Col contains column number in source buffer or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos and lexer.Token implement this interface.
type SourcePos interface {
	// SourceName returns source buffer name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// ErrMoreInput is not a failure: it is returned by lexer and parser when an
// incomplete input buffer ends in the middle of a match that could still
// succeed. The driver is expected to append more input (or mark the buffer
// complete) and retry the same call.
var ErrMoreInput = &Error{Code: MoreInputError, Message: "unexpected end of input, more input required"}

// ParseError describes a lexical or syntax error: the deepest position the
// parser was able to reach and the set of token kinds that were acceptable
// there. Produced by lexer and parser, never by panicking.
type ParseError struct {
	// Code contains non-zero error code of LexicalErrors or SyntaxErrors class.
	Code int

	// Pos contains the deepest source position reached.
	Pos source.Pos

	// Expected contains sorted names of token kinds acceptable at Pos.
	Expected []string

	msg string
}

// NewParseError creates new ParseError structure.
// expected is deduplicated and sorted; msg must describe the failure without
// the expected set or position, both are appended here.
func NewParseError(code int, msg string, pos source.Pos, expected []string) *ParseError {
	names := make([]string, 0, len(expected))
	seen := make(map[string]bool, len(expected))
	for _, n := range expected {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)

	if len(names) > 0 {
		msg += ", expecting " + strings.Join(names, " | ")
	}
	if pos.SourceName() != "" || pos.Line() != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", pos.SourceName(), pos.Line(), pos.Col())
	}
	return &ParseError{code, pos, names, msg}
}

// Error returns the error message including position and expected set.
func (e *ParseError) Error() string {
	return e.msg
}

// Render returns the error message followed by the source line containing
// the error position with a caret underlining the column.
func (e *ParseError) Render() string {
	b := e.Pos.Buffer()
	if b == nil {
		return e.msg
	}

	line := b.Line(e.Pos.Offset())
	caret := strings.Repeat(" ", e.Pos.Col()-1) + "^"
	return e.msg + "\n" + line + "\n" + caret
}

// ErrorCode returns the code of *Error, *ParseError, or 0 for any other error.
func ErrorCode(e error) int {
	switch ee := e.(type) {
	case *Error:
		return ee.Code
	case *ParseError:
		return ee.Code
	default:
		return 0
	}
}
