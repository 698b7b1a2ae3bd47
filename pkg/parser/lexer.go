package parser

import (
	"regexp"
	"strings"

	"github.com/ava12/llx/lexer"
	"github.com/ava12/llx/source"
)

// Token types produced by the statement lexer.
const (
	TokenString = iota
	TokenHGVS
	TokenRange
	TokenRelSym
	TokenWord
	TokenLParen
	TokenRParen
	TokenComma
	TokenColon
	TokenQMark
	TokenLBrace
	TokenRBrace
	TokenEquals
)

// Capturing group n+1 maps to tokenTypes[n]; the trailing whitespace
// alternative captures nothing and is skipped. Order matters: strings
// before HGVS words, HGVS words before fragment ranges, relation
// symbols before bare words, colons, and equals signs.
var tokenRe = regexp.MustCompile(`("(?:\\.|[^"\\])*")` +
	`|([A-Za-z]+\.[0-9A-Za-z_*?=>.+-]+)` +
	`|((?:\d+|\?)_(?:\d+|\?|\*))` +
	`|(=>|⇒|->|→|-\||=\||--|:>|>>)` +
	`|([A-Za-z0-9_]+)` +
	`|(\()|(\))|(,)|(:)|(\?)|(\{)|(\})|(=)` +
	`|[ \t\r\n]+`)

var tokenTypes = []lexer.TokenType{
	{Type: TokenString, TypeName: "string"},
	{Type: TokenHGVS, TypeName: "hgvs"},
	{Type: TokenRange, TypeName: "range"},
	{Type: TokenRelSym, TypeName: "relation"},
	{Type: TokenWord, TypeName: "word"},
	{Type: TokenLParen, TypeName: "("},
	{Type: TokenRParen, TypeName: ")"},
	{Type: TokenComma, TypeName: ","},
	{Type: TokenColon, TypeName: ":"},
	{Type: TokenQMark, TypeName: "?"},
	{Type: TokenLBrace, TypeName: "{"},
	{Type: TokenRBrace, TypeName: "}"},
	{Type: TokenEquals, TypeName: "="},
}

var belLexer = lexer.New(tokenRe, tokenTypes)

// Tokenize splits one logical line into tokens. The second result
// holds each token's byte offset in text, used to recover the exact
// substring a malformed term covers.
func Tokenize(text string) ([]*lexer.Token, []int, error) {
	queue := source.NewQueue().Append(source.New("statement", []byte(text)))

	var tokens []*lexer.Token
	var offsets []int
	offset := 0
	for {
		token, err := belLexer.Next(queue)
		if err != nil {
			return nil, nil, err
		}
		if token.Type() == lexer.EofTokenType || token.Type() == lexer.EoiTokenType {
			return tokens, offsets, nil
		}
		at := strings.Index(text[offset:], token.Text())
		if at < 0 {
			at = 0
		}
		offset += at
		tokens = append(tokens, token)
		offsets = append(offsets, offset)
		offset += len(token.Text())
	}
}

// Unquote strips the surrounding double quotes of a string token and
// resolves the two escapes the grammar admits.
func Unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = text[1 : len(text)-1]
	}
	if !strings.ContainsRune(text, '\\') {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	escaped := false
	for _, r := range text {
		if escaped {
			if r != '"' && r != '\\' {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}
