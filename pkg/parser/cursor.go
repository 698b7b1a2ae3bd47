package parser

import (
	"fmt"
	"strings"

	"github.com/ava12/llx/lexer"
)

// TermError reports a term that failed the grammar, carrying the exact
// substring it covers.
type TermError struct {
	Offending string
	Reason    string
}

func (e *TermError) Error() string {
	return fmt.Sprintf("malformed term %q: %s", e.Offending, e.Reason)
}

// tokenEOL marks the end of the token stream in peekType results.
const tokenEOL = -1

// cursor walks a tokenized logical line.
type cursor struct {
	text    string
	tokens  []*lexer.Token
	offsets []int
	pos     int
}

func newCursor(text string) (*cursor, error) {
	tokens, offsets, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	return &cursor{text: text, tokens: tokens, offsets: offsets}, nil
}

func (c *cursor) done() bool {
	return c.pos >= len(c.tokens)
}

func (c *cursor) peek() *lexer.Token {
	if c.done() {
		return nil
	}
	return c.tokens[c.pos]
}

// peekAt returns the token n positions ahead without consuming.
func (c *cursor) peekAt(n int) *lexer.Token {
	if c.pos+n >= len(c.tokens) {
		return nil
	}
	return c.tokens[c.pos+n]
}

func (c *cursor) peekType() int {
	token := c.peek()
	if token == nil {
		return tokenEOL
	}
	return token.Type()
}

func (c *cursor) next() *lexer.Token {
	token := c.peek()
	if token != nil {
		c.pos++
	}
	return token
}

// accept consumes the next token when it has the wanted type.
func (c *cursor) accept(tokenType int) (*lexer.Token, bool) {
	if c.peekType() != tokenType {
		return nil, false
	}
	return c.next(), true
}

// acceptWord consumes the next token when it is the exact word.
func (c *cursor) acceptWord(word string) bool {
	token := c.peek()
	if token == nil || token.Type() != TokenWord || token.Text() != word {
		return false
	}
	c.pos++
	return true
}

// slice returns the source text from the start of token from through
// the most recently touched token.
func (c *cursor) slice(from int) string {
	if from >= len(c.tokens) {
		return strings.TrimSpace(c.text)
	}
	last := c.pos
	if last >= len(c.tokens) {
		last = len(c.tokens) - 1
	}
	if last < from {
		last = from
	}
	end := c.offsets[last] + len(c.tokens[last].Text())
	return strings.TrimSpace(c.text[c.offsets[from]:end])
}

// errAt builds a TermError covering tokens from..current.
func (c *cursor) errAt(from int, format string, args ...any) error {
	return &TermError{
		Offending: c.slice(from),
		Reason:    fmt.Sprintf(format, args...),
	}
}

// describe names the next token for error messages.
func (c *cursor) describe() string {
	token := c.peek()
	if token == nil {
		return "end of line"
	}
	return fmt.Sprintf("%q", token.Text())
}
