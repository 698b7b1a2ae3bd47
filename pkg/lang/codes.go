package lang

// Code identifies a diagnostic condition. Codes are tiered by numeric
// range so a consumer can classify a diagnostic without a lookup
// table: 1xx warn and never block a statement, 2xx reject the
// statement they occur on, 3xx abort the compile session.
type Code int

const (
	CodeLegacyActivity      Code = 101
	CodeLegacyGeneSub       Code = 102
	CodeLegacyProteinSub    Code = 103
	CodeLegacyTruncation    Code = 104
	CodeLegacyPmod          Code = 105
	CodeUnsetMissingKey     Code = 106
	CodeUnclosedQuote       Code = 107
	CodeLegacyTranslocation Code = 108
	CodeIncompleteHeader    Code = 109

	CodeParseFailure        Code = 201
	CodeMalformedTerm       Code = 202
	CodeUndefinedNamespace  Code = 203
	CodeUnknownValue        Code = 204
	CodeUndefinedAnnotation Code = 205
	CodeIllegalAnnotation   Code = 206
	CodeInvalidCitation     Code = 207
	CodeMissingCitation     Code = 208
	CodeSemanticMismatch    Code = 209
	CodeNestedStatement     Code = 210
	CodeMalformedTloc       Code = 211

	CodeMissingMetadata      Code = 301
	CodeUnresolvedDefinition Code = 302
)

// Severity is the tier of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityError
	SeverityFatal
)

// Severity returns the tier encoded in the code's range.
func (c Code) Severity() Severity {
	switch {
	case c < 200:
		return SeverityWarning
	case c < 300:
		return SeverityError
	default:
		return SeverityFatal
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}
