// Package parser turns BEL script text into raw syntax trees. It
// recognizes logical lines, control statements (SET, UNSET, DEFINE),
// and relation statements over the term grammar. The parser is purely
// syntactic: legacy shapes are preserved for the normalizer, and
// namespace membership, citation arity, and annotation validity are
// left to later stages.
package parser

import (
	"fmt"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
)

// Parsed is the result of parsing one logical line. Exactly one of
// Control and Statement is set.
type Parsed struct {
	Control   *Control
	Statement *common.Statement
}

// Parse parses a single logical line. Control statements yield a
// Control; everything else is parsed as a relation statement or a
// sole term.
func Parse(text string) (*Parsed, error) {
	c, err := newCursor(text)
	if err != nil {
		return nil, err
	}
	if c.done() {
		return nil, fmt.Errorf("empty statement")
	}

	if c.peekType() == TokenWord {
		switch c.peek().Text() {
		case "SET", "UNSET", "DEFINE":
			control, err := parseControl(c)
			if err != nil {
				return nil, err
			}
			return &Parsed{Control: control}, nil
		}
	}

	statement, err := parseStatement(c)
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, fmt.Errorf("unexpected %s after statement", c.describe())
	}
	return &Parsed{Statement: statement}, nil
}

// parseStatement parses subject [relation (object | "(" statement ")")].
func parseStatement(c *cursor) (*common.Statement, error) {
	subject, err := parseTerm(c)
	if err != nil {
		return nil, err
	}
	statement := &common.Statement{Subject: subject}
	if c.done() || c.peekType() == TokenRParen {
		return statement, nil
	}

	relation, err := parseRelation(c)
	if err != nil {
		return nil, err
	}
	statement.Relation = relation

	if c.peekType() == TokenLParen {
		c.next()
		nested, err := parseStatement(c)
		if err != nil {
			return nil, err
		}
		if _, ok := c.accept(TokenRParen); !ok {
			return nil, fmt.Errorf("expected ) to close the nested statement, found %s", c.describe())
		}
		if nested.Relation == "" {
			return nil, fmt.Errorf("nested statement is missing a relation")
		}
		statement.Nested = nested
		return statement, nil
	}

	object, err := parseTerm(c)
	if err != nil {
		return nil, err
	}
	statement.Object = object
	return statement, nil
}

func parseRelation(c *cursor) (lang.Relation, error) {
	switch c.peekType() {
	case TokenRelSym, TokenWord:
		token := c.next()
		relation, ok := lang.Relations[token.Text()]
		if !ok {
			return "", fmt.Errorf("unknown relation %q", token.Text())
		}
		return relation, nil
	default:
		return "", fmt.Errorf("expected a relation, found %s", c.describe())
	}
}
