// Package compile drives one BEL document through the pipeline: line
// reading, parsing, normalization, semantic validation, and graph
// building. Problems are recorded as diagnostics with statement-level
// recovery; only a broken header block aborts a session. Every Result
// carries both the graph and the report, even after a fatal error.
//
// A Session compiles exactly one document and is not safe for
// concurrent use. Independent documents compile in parallel through a
// Runner, one session each.
package compile

import (
	"context"
	"errors"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/graph"
	"github.com/graphbio/bel/pkg/lang"
	"github.com/graphbio/bel/pkg/normalize"
	"github.com/graphbio/bel/pkg/parser"
	"github.com/graphbio/bel/pkg/validate"
)

// Options configure one compile session.
type Options struct {
	// AllowNested accepts statements of the form a -> (b -> c),
	// recording the inner edge plus a compound edge from the outer
	// subject to the inner object. When false such statements are
	// rejected with a nested-statement error.
	AllowNested bool

	// Policy sets the normalizer's tolerance for legacy syntax.
	Policy normalize.Policy

	// RelaxedHeader records missing required metadata as a warning
	// instead of aborting the session. Definition resolution still
	// runs when the header seals.
	RelaxedHeader bool

	// SkipAnnotations attaches SET annotations without requiring a
	// DEFINE ANNOTATION and without membership checks. Namespace
	// validation is unaffected.
	SkipAnnotations bool

	// Resolver fetches DEFINE ... AS URL value sets when the header
	// seals. Nil leaves URL definitions unresolved; unresolved
	// definitions accept any member.
	Resolver Resolver
}

// Result is one compiled document.
type Result struct {
	Graph  *graph.Graph
	Report *common.Report
}

// Session compiles one document line by line.
type Session struct {
	options    Options
	stack      *ContextStack
	report     *common.Report
	graph      *graph.Graph
	normalizer *normalize.Normalizer
	validator  *validate.Validator
}

// NewSession returns a session ready to compile one document.
func NewSession(options Options) *Session {
	report := &common.Report{}
	stack := NewContextStack(report, options)
	return &Session{
		options:    options,
		stack:      stack,
		report:     report,
		graph:      graph.New(stack.Document()),
		normalizer: normalize.New(options.Policy),
		validator:  validate.New(stack.Document()),
	}
}

// Compile runs the document through the pipeline. The returned error
// is non-nil only for fatal conditions and context cancellation;
// statement-level problems land in the report and compilation
// continues on the next line.
func (s *Session) Compile(ctx context.Context, text string) (*Result, error) {
	for _, line := range parser.ReadLines(text, s.report) {
		select {
		case <-ctx.Done():
			return s.Result(), ctx.Err()
		default:
		}
		if err := s.processLine(ctx, line); err != nil {
			return s.Result(), err
		}
	}
	return s.Result(), nil
}

// Result returns what the session has built so far.
func (s *Session) Result() *Result {
	return &Result{Graph: s.graph, Report: s.report}
}

// Graph returns the graph under construction.
func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// Report returns the session's diagnostic report.
func (s *Session) Report() *common.Report {
	return s.report
}

func (s *Session) processLine(ctx context.Context, line parser.Line) error {
	parsed, err := parser.Parse(line.Text)
	if err != nil {
		var termErr *parser.TermError
		code := lang.CodeParseFailure
		if errors.As(err, &termErr) {
			code = lang.CodeMalformedTerm
		}
		s.report.Addf(code, line.Number, line.Text, "%s", err)
		s.report.CountExcluded()
		return nil
	}
	if parsed.Control != nil {
		s.stack.Apply(parsed.Control, line)
		return nil
	}
	return s.statement(ctx, line, parsed.Statement)
}

func (s *Session) statement(ctx context.Context, line parser.Line, statement *common.Statement) error {
	if err := s.stack.Seal(ctx, s.options.Resolver, line); err != nil {
		var fatal *common.FatalError
		if errors.As(err, &fatal) {
			s.report.Add(fatal.Diagnostic)
		}
		return err
	}

	if introducesGOCC(statement) {
		s.stack.EnsureNamespace(lang.NamespaceGOCC, lang.DefaultGOCCURL)
	}

	warnings, err := s.normalizer.Statement(statement)
	for _, warning := range warnings {
		s.report.Addf(warning.Code, line.Number, line.Text, "%s", warning.Message)
	}
	if err != nil {
		s.exclude(line, err)
		return nil
	}

	if err := s.validator.Statement(statement); err != nil {
		s.exclude(line, err)
		return nil
	}

	switch {
	case statement.Relation == "":
		term, _ := graph.Lift(statement.Subject)
		s.graph.InternNode(term)
	case statement.Nested != nil:
		s.nested(line, statement)
	default:
		if distributed, ok := lang.DistributedRelation[statement.Relation]; ok {
			s.distribute(statement, distributed)
			return nil
		}
		s.qualified(line, statement)
	}
	return nil
}

// exclude records the error that kept a statement out of the graph.
func (s *Session) exclude(line parser.Line, err error) {
	s.report.Addf(errorCode(err), line.Number, line.Text, "%s", err)
	s.report.CountExcluded()
}

func errorCode(err error) lang.Code {
	var normErr *normalize.Error
	if errors.As(err, &normErr) {
		return normErr.Code
	}
	var valErr *validate.Error
	if errors.As(err, &valErr) {
		return valErr.Code
	}
	return lang.CodeParseFailure
}

// requireCitation reports whether a citation is active, recording a
// missing-citation error when it is not. Qualified edges cannot be
// traced back to a publication without one.
func (s *Session) requireCitation(line parser.Line) bool {
	if s.stack.Context().Citation != nil {
		return true
	}
	s.report.Addf(lang.CodeMissingCitation, line.Number, line.Text,
		"no citation is active, SET Citation before the statement")
	s.report.CountExcluded()
	return false
}

// qualified records one relation edge with a snapshot of the live
// context.
func (s *Session) qualified(line parser.Line, statement *common.Statement) {
	if !s.requireCitation(line) {
		return
	}
	subjectTerm, subjectModifier := graph.Lift(statement.Subject)
	objectTerm, objectModifier := graph.Lift(statement.Object)
	s.graph.AddEdge(graph.AddEdgeParams{
		Subject:         s.graph.InternNode(subjectTerm).ID,
		Relation:        statement.Relation,
		Object:          s.graph.InternNode(objectTerm).ID,
		Context:         s.stack.Context().Clone(),
		SubjectModifier: subjectModifier,
		ObjectModifier:  objectModifier,
		Line:            line.Number,
		Text:            line.Text,
	})
}

// distribute expands hasMembers and hasComponents over the object
// list, one structural edge per element. Structural edges carry no
// annotations, so no citation is required.
func (s *Session) distribute(statement *common.Statement, relation lang.Relation) {
	subjectTerm, _ := graph.Lift(statement.Subject)
	parent := s.graph.InternNode(subjectTerm)
	for _, member := range statement.Object.Members {
		s.graph.AddUnqualifiedEdge(parent.ID, relation, s.graph.InternNode(member).ID)
	}
}

// causalSign gives the sign of the four relations allowed in nested
// statements. Relations outside the map cannot nest.
var causalSign = map[lang.Relation]int{
	lang.RelIncreases:         1,
	lang.RelDirectlyIncreases: 1,
	lang.RelDecreases:         -1,
	lang.RelDirectlyDecreases: -1,
}

// compoundRelation is the relation implied by chaining outer over
// inner. The subject acts through an intermediate, so the compound
// edge is always the indirect form.
func compoundRelation(outer, inner lang.Relation) lang.Relation {
	if causalSign[outer]*causalSign[inner] > 0 {
		return lang.RelIncreases
	}
	return lang.RelDecreases
}

// nested records a -> (b -> c) as two edges: the inner statement as
// written, and a compound edge from the outer subject to the inner
// object. The outer subject keeps its modifier on the compound edge;
// the inner object's modifier belongs to the inner edge only.
func (s *Session) nested(line parser.Line, statement *common.Statement) {
	if !s.options.AllowNested {
		s.report.Addf(lang.CodeNestedStatement, line.Number, line.Text,
			"nested statements are disabled, split the statement in two")
		s.report.CountExcluded()
		return
	}
	inner := statement.Nested
	if inner.Nested != nil {
		s.report.Addf(lang.CodeNestedStatement, line.Number, line.Text,
			"statements nest one level deep")
		s.report.CountExcluded()
		return
	}
	if causalSign[statement.Relation] == 0 || causalSign[inner.Relation] == 0 {
		s.report.Addf(lang.CodeNestedStatement, line.Number, line.Text,
			"only increases and decreases relations may nest, got %s over %s",
			statement.Relation, inner.Relation)
		s.report.CountExcluded()
		return
	}
	if !s.requireCitation(line) {
		return
	}

	subjectTerm, subjectModifier := graph.Lift(statement.Subject)
	innerSubjectTerm, innerSubjectModifier := graph.Lift(inner.Subject)
	innerObjectTerm, innerObjectModifier := graph.Lift(inner.Object)

	subject := s.graph.InternNode(subjectTerm)
	innerSubject := s.graph.InternNode(innerSubjectTerm)
	innerObject := s.graph.InternNode(innerObjectTerm)

	s.graph.AddEdge(graph.AddEdgeParams{
		Subject:         innerSubject.ID,
		Relation:        inner.Relation,
		Object:          innerObject.ID,
		Context:         s.stack.Context().Clone(),
		SubjectModifier: innerSubjectModifier,
		ObjectModifier:  innerObjectModifier,
		Line:            line.Number,
		Text:            line.Text,
	})
	s.graph.AddEdge(graph.AddEdgeParams{
		Subject:         subject.ID,
		Relation:        compoundRelation(statement.Relation, inner.Relation),
		Object:          innerObject.ID,
		Context:         s.stack.Context().Clone(),
		SubjectModifier: subjectModifier,
		Line:            line.Number,
		Text:            line.Text,
	})
}

// introducesGOCC reports whether the raw statement spells a secretion
// or surface shorthand. Their rewrites reference the GOCC namespace,
// which the session defines on demand.
func introducesGOCC(statement *common.Statement) bool {
	for _, term := range []*common.Term{statement.Subject, statement.Object} {
		if term == nil || term.Type != common.TermTranslocation {
			continue
		}
		switch term.LegacyFunc {
		case lang.FuncSecretionShort, lang.FuncSecretionLong,
			lang.FuncSurfaceShort, lang.FuncSurfaceLong:
			return true
		}
	}
	if statement.Nested != nil {
		return introducesGOCC(statement.Nested)
	}
	return false
}
