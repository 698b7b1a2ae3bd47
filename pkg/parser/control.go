package parser

import (
	"fmt"

	"github.com/graphbio/bel/pkg/lang"
)

// ControlKind discriminates parsed control statements.
type ControlKind int

const (
	ControlSetDocument ControlKind = iota + 1
	ControlSetCitation
	ControlSetEvidence
	ControlSetGroup
	ControlSetAnnotation
	ControlUnset
	ControlUnsetAll
	ControlDefineNamespace
	ControlDefineAnnotation
)

// Control is one parsed SET, UNSET, or DEFINE statement. The fields
// carry syntax only; membership and arity rules are applied by the
// session context.
type Control struct {
	Kind   ControlKind
	Key    string
	Value  string
	Values []string
	URL    string
}

// parseControl parses a control line. The leading keyword token is
// still unconsumed.
func parseControl(c *cursor) (*Control, error) {
	keyword := c.next()
	var control *Control
	var err error
	switch keyword.Text() {
	case "SET":
		control, err = parseSet(c)
	case "UNSET":
		control, err = parseUnset(c)
	case "DEFINE":
		control, err = parseDefine(c)
	default:
		return nil, fmt.Errorf("unknown control keyword %q", keyword.Text())
	}
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, fmt.Errorf("unexpected %s after %s statement", c.describe(), keyword.Text())
	}
	return control, nil
}

func parseSet(c *cursor) (*Control, error) {
	key, ok := c.accept(TokenWord)
	if !ok {
		return nil, fmt.Errorf("expected a key after SET, found %s", c.describe())
	}

	if key.Text() == "DOCUMENT" {
		docKey, ok := c.accept(TokenWord)
		if !ok {
			return nil, fmt.Errorf("expected a document key, found %s", c.describe())
		}
		if _, ok := c.accept(TokenEquals); !ok {
			return nil, fmt.Errorf("expected = after SET DOCUMENT %s", docKey.Text())
		}
		value, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		return &Control{Kind: ControlSetDocument, Key: docKey.Text(), Value: value}, nil
	}

	if _, ok := c.accept(TokenEquals); !ok {
		return nil, fmt.Errorf("expected = after SET %s, found %s", key.Text(), c.describe())
	}

	switch key.Text() {
	case lang.KeyCitation:
		values, err := parseValueList(c)
		if err != nil {
			return nil, err
		}
		return &Control{Kind: ControlSetCitation, Key: key.Text(), Values: values}, nil
	case lang.KeyEvidence, lang.KeySupportingText:
		value, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		return &Control{Kind: ControlSetEvidence, Key: key.Text(), Value: value}, nil
	case lang.KeyStatementGroup:
		value, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		return &Control{Kind: ControlSetGroup, Key: key.Text(), Value: value}, nil
	}

	if c.peekType() == TokenLBrace {
		values, err := parseValueList(c)
		if err != nil {
			return nil, err
		}
		return &Control{Kind: ControlSetAnnotation, Key: key.Text(), Values: values}, nil
	}
	value, err := parseValue(c)
	if err != nil {
		return nil, err
	}
	return &Control{Kind: ControlSetAnnotation, Key: key.Text(), Value: value}, nil
}

func parseUnset(c *cursor) (*Control, error) {
	switch c.peekType() {
	case TokenWord:
		key := c.next().Text()
		if key == "ALL" {
			return &Control{Kind: ControlUnsetAll}, nil
		}
		return &Control{Kind: ControlUnset, Key: key}, nil
	case TokenString:
		return &Control{Kind: ControlUnset, Key: Unquote(c.next().Text())}, nil
	default:
		return nil, fmt.Errorf("expected a key after UNSET, found %s", c.describe())
	}
}

func parseDefine(c *cursor) (*Control, error) {
	what, ok := c.accept(TokenWord)
	if !ok {
		return nil, fmt.Errorf("expected NAMESPACE or ANNOTATION after DEFINE, found %s", c.describe())
	}
	var kind ControlKind
	switch what.Text() {
	case "NAMESPACE":
		kind = ControlDefineNamespace
	case "ANNOTATION":
		kind = ControlDefineAnnotation
	default:
		return nil, fmt.Errorf("expected NAMESPACE or ANNOTATION after DEFINE, found %q", what.Text())
	}

	keyword, ok := c.accept(TokenWord)
	if !ok {
		return nil, fmt.Errorf("expected a definition keyword, found %s", c.describe())
	}
	if !c.acceptWord("AS") {
		return nil, fmt.Errorf("expected AS after DEFINE %s %s", what.Text(), keyword.Text())
	}

	form, ok := c.accept(TokenWord)
	if !ok {
		return nil, fmt.Errorf("expected URL or LIST, found %s", c.describe())
	}
	switch form.Text() {
	case "URL":
		location, ok := c.accept(TokenString)
		if !ok {
			return nil, fmt.Errorf("expected a quoted location after URL, found %s", c.describe())
		}
		return &Control{Kind: kind, Key: keyword.Text(), URL: Unquote(location.Text())}, nil
	case "LIST":
		values, err := parseValueList(c)
		if err != nil {
			return nil, err
		}
		return &Control{Kind: kind, Key: keyword.Text(), Values: values}, nil
	default:
		return nil, fmt.Errorf("expected URL or LIST, found %q", form.Text())
	}
}

// parseValue accepts a quoted string or a bare word.
func parseValue(c *cursor) (string, error) {
	switch c.peekType() {
	case TokenString:
		return Unquote(c.next().Text()), nil
	case TokenWord, TokenHGVS, TokenRange:
		return c.next().Text(), nil
	default:
		return "", fmt.Errorf("expected a value, found %s", c.describe())
	}
}

// parseValueList parses {"v1", "v2", ...}.
func parseValueList(c *cursor) ([]string, error) {
	if _, ok := c.accept(TokenLBrace); !ok {
		return nil, fmt.Errorf("expected {, found %s", c.describe())
	}
	var values []string
	for {
		value, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		if _, ok := c.accept(TokenComma); !ok {
			break
		}
	}
	if _, ok := c.accept(TokenRBrace); !ok {
		return nil, fmt.Errorf("expected } to close the list, found %s", c.describe())
	}
	return values, nil
}
