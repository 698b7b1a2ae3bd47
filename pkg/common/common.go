// Package common holds the domain types shared across the compile
// pipeline: the term AST produced by the parser, statements, the
// per-session annotation context, citations, namespace and annotation
// definitions, and diagnostics.
//
// The types carry no behavior beyond copying and small accessors.
// Stages communicate by passing these values; none of them reach back
// into the stage that produced them.
package common

import (
	"github.com/graphbio/bel/pkg/lang"
)

// Statement is one parsed relation statement. Subject and Object are
// term ASTs, still carrying any process wrappers; the graph builder
// lifts those onto the edge. Nested holds the inner statement of a
// parenthesized object when nested statements are enabled.
type Statement struct {
	Subject  *Term          `json:"subject"`
	Relation lang.Relation  `json:"relation"`
	Object   *Term          `json:"object,omitempty"`
	Nested   *Statement     `json:"nested,omitempty"`
}

// Citation identifies the publication a statement was curated from.
// Type, Name, and Reference come from the 3-element SET Citation form;
// the 6-element form adds Date, Authors, and Comments.
type Citation struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Reference string `json:"reference"`
	Date      string `json:"date,omitempty"`
	Authors   string `json:"authors,omitempty"`
	Comments  string `json:"comments,omitempty"`
}

// Clone returns a copy of the citation.
func (c *Citation) Clone() *Citation {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

// Context is the annotation state active while a statement is parsed.
// The compile session owns one Context and mutates it on SET and
// UNSET; the graph builder snapshots it per edge with Clone.
type Context struct {
	Citation       *Citation           `json:"citation,omitempty"`
	Evidence       string              `json:"evidence,omitempty"`
	StatementGroup string              `json:"statement_group,omitempty"`
	Annotations    map[string][]string `json:"annotations,omitempty"`
}

// NewContext returns an empty context ready for SET statements.
func NewContext() *Context {
	return &Context{
		Annotations: make(map[string][]string),
	}
}

// Clone returns a deep copy. Later SET and UNSET statements never
// reach edges recorded before them.
func (c *Context) Clone() *Context {
	copied := &Context{
		Citation:       c.Citation.Clone(),
		Evidence:       c.Evidence,
		StatementGroup: c.StatementGroup,
		Annotations:    make(map[string][]string, len(c.Annotations)),
	}
	for key, values := range c.Annotations {
		copied.Annotations[key] = append([]string(nil), values...)
	}
	return copied
}

// ClearAnnotations removes the evidence text and every annotation
// value while keeping the citation. Used when a new citation is set.
func (c *Context) ClearAnnotations() {
	c.Evidence = ""
	c.Annotations = make(map[string][]string)
}

// DefinitionKind distinguishes namespace from annotation definitions.
type DefinitionKind string

const (
	DefinitionNamespace  DefinitionKind = "namespace"
	DefinitionAnnotation DefinitionKind = "annotation"
)

// Definition is one DEFINE NAMESPACE or DEFINE ANNOTATION statement,
// resolved to its value set. URL is empty for inline LIST definitions.
// Values maps each member name to its encoding string; LIST members
// carry an empty encoding.
type Definition struct {
	Keyword string            `json:"keyword"`
	Kind    DefinitionKind    `json:"kind"`
	URL     string            `json:"url,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
}

// Has reports whether name is a member of the definition's value set.
func (d *Definition) Has(name string) bool {
	_, ok := d.Values[name]
	return ok
}

// Document is the per-session document state: metadata from
// SET DOCUMENT statements and the resolved definitions, keyed by
// their keyword.
type Document struct {
	Metadata    map[string]string      `json:"metadata"`
	Namespaces  map[string]*Definition `json:"namespaces"`
	Annotations map[string]*Definition `json:"annotations"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Metadata:    make(map[string]string),
		Namespaces:  make(map[string]*Definition),
		Annotations: make(map[string]*Definition),
	}
}

// MissingMetadata returns the required metadata keys the document does
// not carry, in canonical order.
func (d *Document) MissingMetadata() []string {
	var missing []string
	for _, key := range lang.RequiredDocumentKeys {
		if d.Metadata[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
