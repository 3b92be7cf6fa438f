package lexer

import (
	"github.com/zwegner/sprdpl/source"
)

// Stream is a lazy token sequence over a buffer. Tokens are produced on
// demand and retained for the lifetime of the stream: the sequence is
// append-only, random access by index supports unbounded backtracking.
// When the underlying buffer grows, lexing resumes from the first byte
// not yet tokenized; committed tokens are never re-split.
type Stream struct {
	lexer  *Lexer
	buf    *source.Buffer
	scan   int // offset of the first byte not yet tokenized
	tokens []*Token
	err    error // sticky lexical error
}

// Buffer returns the underlying input buffer.
func (s *Stream) Buffer() *source.Buffer {
	return s.buf
}

// Lexer returns the lexer the stream was created by.
func (s *Stream) Lexer() *Lexer {
	return s.lexer
}

// Len returns the number of tokens produced so far.
func (s *Stream) Len() int {
	return len(s.tokens)
}

// Ended reports whether the whole input has been tokenized: the buffer is
// complete and no untokenized text remains.
func (s *Stream) Ended() bool {
	return s.buf.Ended() && s.scan >= s.buf.Len() && s.err == nil
}

// EndPos returns the position just past the last tokenized byte.
func (s *Stream) EndPos() source.Pos {
	return source.NewPos(s.buf, s.scan)
}

// TokenAt returns the i-th token, tokenizing more input as needed.
// Returns nil, nil past the end of a fully tokenized complete buffer.
// Returns nil and sprdpl.ErrMoreInput if the buffer is incomplete and
// ends before the i-th token; the caller may append input and retry.
// Returns nil and *sprdpl.ParseError on a lexical error.
func (s *Stream) TokenAt(i int) (*Token, error) {
	for i >= len(s.tokens) {
		t, e := s.fetch()
		if e != nil {
			return nil, e
		}
		if t == nil {
			return nil, nil
		}

		s.tokens = append(s.tokens, t)
	}
	return s.tokens[i], nil
}

// fetch tokenizes forward from the scan position until it produces a token,
// skipping dropped matches. Returns nil, nil at the end of a complete buffer.
func (s *Stream) fetch() (*Token, error) {
	if s.err != nil {
		return nil, s.err
	}

	content := s.buf.Content()
	for s.scan < len(content) {
		rule, size, matched := s.lexer.match(content, s.scan)
		if !matched {
			if !s.buf.Ended() {
				// The unfinished tail may still become a valid lexeme.
				return nil, errMoreInput()
			}

			s.err = noMatchError(source.NewPos(s.buf, s.scan), s.lexer.Kinds())
			return nil, s.err
		}

		start := s.scan
		s.scan += size
		text := string(content[start : start+size])
		value := any(text)
		keep := true
		if rule.Transform != nil {
			value, keep = rule.Transform(text)
		}
		if !keep {
			continue
		}

		return NewToken(rule.Name, text, value, source.NewPos(s.buf, start), source.NewPos(s.buf, s.scan)), nil
	}

	if !s.buf.Ended() {
		return nil, errMoreInput()
	}
	return nil, nil
}
