package parser

import (
	"strings"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
)

// Line is one logical line of a BEL script. Number is the 1-based
// physical line number of its first physical line; Text is the joined,
// comment-stripped content.
type Line struct {
	Number int
	Text   string
}

// ReadLines splits a document into logical lines. Blank lines and #
// comment lines are dropped. A trailing backslash joins the next
// physical line. A line with an unterminated quoted string is joined
// with following lines until the quote closes, recording the
// unclosed-quote warning. Trailing // comments outside quotes are
// stripped. The physical line count is recorded on the report.
func ReadLines(text string, report *common.Report) []Line {
	physical := strings.Split(text, "\n")
	if len(physical) > 0 && physical[len(physical)-1] == "" {
		physical = physical[:len(physical)-1]
	}
	for i, line := range physical {
		physical[i] = strings.TrimSuffix(line, "\r")
	}
	report.SetLines(len(physical))

	var lines []Line
	for i := 0; i < len(physical); i++ {
		logical := strings.TrimSpace(physical[i])
		if logical == "" || strings.HasPrefix(logical, "#") {
			continue
		}
		number := i + 1

		for {
			if !quoteBalanced(logical) {
				if i+1 >= len(physical) {
					break
				}
				report.Addf(lang.CodeUnclosedQuote, number, logical,
					"string not closed on its line, joined with line %d", i+2)
				i++
				logical = logical + " " + strings.TrimSpace(physical[i])
				continue
			}
			if strings.HasSuffix(logical, `\`) {
				if i+1 >= len(physical) {
					logical = strings.TrimSpace(strings.TrimSuffix(logical, `\`))
					break
				}
				i++
				logical = strings.TrimSpace(strings.TrimSuffix(logical, `\`)) + " " + strings.TrimSpace(physical[i])
				continue
			}
			break
		}

		logical = strings.TrimSpace(stripComment(logical))
		if logical == "" {
			continue
		}
		lines = append(lines, Line{Number: number, Text: logical})
	}
	return lines
}

// quoteBalanced reports whether every double quote in the line is
// closed, ignoring escaped quotes.
func quoteBalanced(line string) bool {
	open := false
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = open
		case r == '"':
			open = !open
		}
	}
	return !open
}

// stripComment cuts a // comment, honoring quoted strings.
func stripComment(line string) string {
	open := false
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = open
		case r == '"':
			open = !open
		case r == '/' && !open:
			if strings.HasPrefix(line[i:], "//") {
				return line[:i]
			}
		}
	}
	return line
}
