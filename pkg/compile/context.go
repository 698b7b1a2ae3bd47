package compile

import (
	"context"
	"sort"
	"strings"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
	"github.com/graphbio/bel/pkg/parser"
)

// Resolver turns a definition URL into its value set, member name to
// encoding string. Implementations live in pkg/resolve. A nil resolver
// leaves URL definitions unresolved, and an unresolved definition
// accepts any member during validation.
type Resolver interface {
	Resolve(ctx context.Context, url string) (map[string]string, error)
}

// ContextStack applies control statements to the session's document
// and annotation state. SET DOCUMENT and DEFINE build the header until
// the first statement seals it; SET and UNSET mutate the live context
// that qualified edges snapshot.
type ContextStack struct {
	document *common.Document
	context  *common.Context
	report   *common.Report
	options  Options
	sealed   bool
}

// NewContextStack returns a stack with an empty document and context.
// Control problems are recorded on report; options set the header and
// annotation tolerances.
func NewContextStack(report *common.Report, options Options) *ContextStack {
	return &ContextStack{
		document: common.NewDocument(),
		context:  common.NewContext(),
		report:   report,
		options:  options,
	}
}

// Document returns the document under construction.
func (s *ContextStack) Document() *common.Document {
	return s.document
}

// Context returns the live annotation context. Callers snapshot it
// with Clone before attaching it to an edge.
func (s *ContextStack) Context() *common.Context {
	return s.context
}

// Sealed reports whether the header block has closed.
func (s *ContextStack) Sealed() bool {
	return s.sealed
}

// Apply executes one control statement. Problems land on the report;
// control statements never abort a session.
func (s *ContextStack) Apply(control *parser.Control, line parser.Line) {
	switch control.Kind {
	case parser.ControlSetDocument:
		s.setDocument(control, line)
	case parser.ControlSetCitation:
		s.setCitation(control, line)
	case parser.ControlSetEvidence:
		s.context.Evidence = control.Value
	case parser.ControlSetGroup:
		s.context.StatementGroup = control.Value
	case parser.ControlSetAnnotation:
		s.setAnnotation(control, line)
	case parser.ControlUnset:
		s.unset(control.Key, line)
	case parser.ControlUnsetAll:
		s.context.Citation = nil
		s.context.ClearAnnotations()
	case parser.ControlDefineNamespace, parser.ControlDefineAnnotation:
		s.define(control, line)
	}
}

func (s *ContextStack) setDocument(control *parser.Control, line parser.Line) {
	if s.sealed {
		s.report.Addf(lang.CodeParseFailure, line.Number, line.Text,
			"SET DOCUMENT must come before the first statement")
		return
	}
	key := control.Key
	if canonical, ok := lang.DocumentKey[strings.ToLower(key)]; ok {
		key = canonical
	}
	s.document.Metadata[key] = control.Value
}

func (s *ContextStack) setCitation(control *parser.Control, line parser.Line) {
	values := control.Values
	if len(values) != 3 && len(values) != 6 {
		s.report.Addf(lang.CodeInvalidCitation, line.Number, line.Text,
			"SET Citation takes 3 or 6 fields, got %d", len(values))
		return
	}
	citation := &common.Citation{
		Type:      values[0],
		Name:      values[1],
		Reference: values[2],
	}
	if len(values) == 6 {
		citation.Date = values[3]
		citation.Authors = values[4]
		citation.Comments = values[5]
	}
	s.context.Citation = citation
	// A new citation opens a fresh curation scope.
	s.context.ClearAnnotations()
}

func (s *ContextStack) setAnnotation(control *parser.Control, line parser.Line) {
	values := control.Values
	if values == nil {
		values = []string{control.Value}
	}
	if s.options.SkipAnnotations {
		s.context.Annotations[control.Key] = values
		return
	}
	definition, ok := s.document.Annotations[control.Key]
	if !ok {
		s.report.Addf(lang.CodeUndefinedAnnotation, line.Number, line.Text,
			"annotation %q is not defined", control.Key)
		return
	}
	legal := true
	for _, value := range values {
		if len(definition.Values) > 0 && !definition.Has(value) {
			s.report.Addf(lang.CodeIllegalAnnotation, line.Number, line.Text,
				"%q is not a member of annotation %q", value, control.Key)
			legal = false
		}
	}
	if !legal {
		// The key keeps its previous value.
		return
	}
	s.context.Annotations[control.Key] = values
}

func (s *ContextStack) unset(key string, line parser.Line) {
	switch key {
	case lang.KeyCitation:
		if s.context.Citation == nil {
			s.unsetMissing(key, line)
			return
		}
		s.context.Citation = nil
	case lang.KeyEvidence, lang.KeySupportingText:
		if s.context.Evidence == "" {
			s.unsetMissing(key, line)
			return
		}
		s.context.Evidence = ""
	case lang.KeyStatementGroup:
		if s.context.StatementGroup == "" {
			s.unsetMissing(key, line)
			return
		}
		s.context.StatementGroup = ""
	default:
		if _, ok := s.context.Annotations[key]; !ok {
			s.unsetMissing(key, line)
			return
		}
		delete(s.context.Annotations, key)
	}
}

func (s *ContextStack) unsetMissing(key string, line parser.Line) {
	s.report.Addf(lang.CodeUnsetMissingKey, line.Number, line.Text,
		"%s is not set, UNSET has nothing to clear", key)
}

func (s *ContextStack) define(control *parser.Control, line parser.Line) {
	if s.sealed {
		s.report.Addf(lang.CodeParseFailure, line.Number, line.Text,
			"DEFINE must come before the first statement")
		return
	}
	definition := &common.Definition{
		Keyword: control.Key,
		URL:     control.URL,
	}
	if control.Values != nil {
		definition.Values = make(map[string]string, len(control.Values))
		for _, value := range control.Values {
			definition.Values[value] = ""
		}
	}
	if control.Kind == parser.ControlDefineNamespace {
		definition.Kind = common.DefinitionNamespace
		s.document.Namespaces[control.Key] = definition
	} else {
		definition.Kind = common.DefinitionAnnotation
		s.document.Annotations[control.Key] = definition
	}
}

// EnsureNamespace adds an unresolved namespace definition unless the
// keyword is already defined. The secretion and surface rewrites
// introduce GOCC terms a source document may never declare.
func (s *ContextStack) EnsureNamespace(keyword, url string) {
	if _, ok := s.document.Namespaces[keyword]; ok {
		return
	}
	s.document.Namespaces[keyword] = &common.Definition{
		Keyword: keyword,
		Kind:    common.DefinitionNamespace,
		URL:     url,
	}
}

// Seal closes the header block: the required metadata must be present
// and every URL definition is resolved through the resolver. The
// session calls Seal when the first statement arrives; later calls
// are no-ops. Missing metadata is fatal unless the session runs with
// RelaxedHeader; a resolution failure is always fatal.
func (s *ContextStack) Seal(ctx context.Context, resolver Resolver, line parser.Line) error {
	if s.sealed {
		return nil
	}
	s.sealed = true

	if missing := s.document.MissingMetadata(); len(missing) > 0 {
		if !s.options.RelaxedHeader {
			return &common.FatalError{Diagnostic: common.NewDiagnostic(
				lang.CodeMissingMetadata, line.Number, line.Text,
				"document header is missing %s", strings.Join(missing, ", "))}
		}
		s.report.Addf(lang.CodeIncompleteHeader, line.Number, line.Text,
			"document header is missing %s", strings.Join(missing, ", "))
	}
	if err := s.resolveAll(ctx, resolver, s.document.Namespaces, line); err != nil {
		return err
	}
	return s.resolveAll(ctx, resolver, s.document.Annotations, line)
}

func (s *ContextStack) resolveAll(ctx context.Context, resolver Resolver, definitions map[string]*common.Definition, line parser.Line) error {
	if resolver == nil {
		return nil
	}
	keywords := make([]string, 0, len(definitions))
	for keyword := range definitions {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	for _, keyword := range keywords {
		definition := definitions[keyword]
		if definition.URL == "" || definition.Values != nil {
			continue
		}
		values, err := resolver.Resolve(ctx, definition.URL)
		if err != nil {
			return &common.FatalError{Diagnostic: common.NewDiagnostic(
				lang.CodeUnresolvedDefinition, line.Number, line.Text,
				"%s %q could not be resolved from %s: %v",
				definition.Kind, keyword, definition.URL, err)}
		}
		definition.Values = values
	}
	return nil
}
