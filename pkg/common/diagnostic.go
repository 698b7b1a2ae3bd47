package common

import (
	"fmt"

	"github.com/graphbio/bel/pkg/lang"
)

// Diagnostic is one recorded compile problem. Line is the 1-based
// physical line number of the first line of the logical line it
// occurred on; Text is that line verbatim.
type Diagnostic struct {
	Code     lang.Code     `json:"code"`
	Severity lang.Severity `json:"severity"`
	Line     int           `json:"line"`
	Text     string        `json:"text"`
	Message  string        `json:"message"`
}

// NewDiagnostic builds a diagnostic with the severity implied by the
// code's range.
func NewDiagnostic(code lang.Code, line int, text string, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: code.Severity(),
		Line:     line,
		Text:     text,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %d (line %d): %s", d.Severity, d.Code, d.Line, d.Message)
}

// FatalError aborts a compile session. The partial session state stays
// inspectable; the error carries the diagnostic that ended it.
type FatalError struct {
	Diagnostic Diagnostic
}

func (e *FatalError) Error() string {
	return e.Diagnostic.String()
}

// Report is the ordered diagnostic log of one compile session. It is
// append-only; nothing is ever discarded or reordered.
type Report struct {
	diagnostics []Diagnostic
	lines       int
	excluded    int
}

// Add appends a diagnostic.
func (r *Report) Add(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

// Addf builds a diagnostic from the code and appends it.
func (r *Report) Addf(code lang.Code, line int, text string, format string, args ...any) {
	r.Add(NewDiagnostic(code, line, text, format, args...))
}

// Diagnostics returns the log in insertion order. The slice is shared;
// callers must not modify it.
func (r *Report) Diagnostics() []Diagnostic {
	return r.diagnostics
}

// SetLines records how many physical lines the session read.
func (r *Report) SetLines(n int) {
	r.lines = n
}

// Lines returns the physical line count of the session.
func (r *Report) Lines() int {
	return r.lines
}

// CountExcluded records one statement kept out of the graph.
func (r *Report) CountExcluded() {
	r.excluded++
}

// Excluded returns how many statements were kept out of the graph.
func (r *Report) Excluded() int {
	return r.excluded
}

// Warnings returns the number of warning-tier diagnostics.
func (r *Report) Warnings() int {
	return r.count(lang.SeverityWarning)
}

// Errors returns the number of error-tier diagnostics.
func (r *Report) Errors() int {
	return r.count(lang.SeverityError)
}

func (r *Report) count(severity lang.Severity) int {
	n := 0
	for _, d := range r.diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// Summary condenses the report for API responses and logs.
type Summary struct {
	Lines    int `json:"lines"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
	Excluded int `json:"excluded"`
}

// Summary returns the counts of the report.
func (r *Report) Summary() Summary {
	return Summary{
		Lines:    r.lines,
		Warnings: r.Warnings(),
		Errors:   r.Errors(),
		Excluded: r.excluded,
	}
}
