// Package graph holds the product of a compile session: an arena of
// interned nodes addressed by canonical BEL form and an append-only
// multigraph of edges carrying curation context.
//
// A graph has exactly one writer, the session that builds it, and
// needs no locking inside that session. Once compilation ends the
// graph is read-only; exports and stores work against Nodes, Edges,
// and the Document and never mutate them.
package graph

import (
	"fmt"
	"strings"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
)

// NodeID addresses an interned node within one graph's arena. IDs are
// dense and assigned in interning order.
type NodeID int

// EdgeID addresses one edge, assigned in insertion order.
type EdgeID int

// Node is one interned term. BEL is the canonical serialization that
// doubles as the intern key; Term is the normalized AST with process
// wrappers and statement-level locations already lifted off.
type Node struct {
	ID   NodeID       `json:"id"`
	BEL  string       `json:"bel"`
	Kind lang.Kind    `json:"kind"`
	Term *common.Term `json:"term,omitempty"`
}

// Label returns the node class used by exports: the kind name, with
// Fusion or Variant appended when the term carries one.
func (n *Node) Label() string {
	switch {
	case n.Term == nil:
		return string(n.Kind)
	case n.Term.Fusion != nil:
		return string(n.Kind) + "Fusion"
	case len(n.Term.Variants) > 0:
		return string(n.Kind) + "Variant"
	default:
		return string(n.Kind)
	}
}

// ModifierKind says which process wrapper an edge endpoint carried in
// the source statement.
type ModifierKind int

const (
	// ModifierActivity is act(x) or act(x, ma(...)).
	ModifierActivity ModifierKind = iota + 1
	// ModifierDegradation is deg(x).
	ModifierDegradation
	// ModifierTranslocation is tloc(x, fromLoc(...), toLoc(...)),
	// including the rewritten sec() and surf() forms.
	ModifierTranslocation
)

// EdgeModifier records what Lift took off one endpoint of an edge: the
// process wrapper, if any, and the loc() argument of the wrapped
// abundance. A nil modifier means the endpoint was written plain.
type EdgeModifier struct {
	Kind        ModifierKind           `json:"kind,omitempty"`
	Activity    lang.Activity          `json:"activity,omitempty"`
	ActivityRef *common.NamespaceValue `json:"activity_ref,omitempty"`
	FromLoc     *common.NamespaceValue `json:"from_loc,omitempty"`
	ToLoc       *common.NamespaceValue `json:"to_loc,omitempty"`
	Location    *common.NamespaceValue `json:"location,omitempty"`
}

// Apply re-renders the endpoint the way the statement wrote it: the
// node's canonical form wrapped back in the modifier. The script
// exporter uses it to round-trip statements.
func (m *EdgeModifier) Apply(bel string) string {
	if m == nil {
		return bel
	}
	if m.Location != nil {
		// The loc() call sits inside the abundance, before its
		// closing paren.
		var b strings.Builder
		b.WriteString(bel[:len(bel)-1])
		b.WriteString(", ")
		b.WriteString(lang.FuncLocationShort)
		b.WriteByte('(')
		writeValue(&b, m.Location)
		b.WriteString("))")
		bel = b.String()
	}
	var b strings.Builder
	switch m.Kind {
	case ModifierActivity:
		b.WriteString(lang.FuncActivityShort)
		b.WriteByte('(')
		b.WriteString(bel)
		if m.ActivityRef != nil {
			b.WriteString(", ")
			b.WriteString(lang.FuncMolecularActShort)
			b.WriteByte('(')
			writeValue(&b, m.ActivityRef)
			b.WriteByte(')')
		} else if m.Activity != "" {
			b.WriteString(", ")
			b.WriteString(lang.FuncMolecularActShort)
			b.WriteByte('(')
			b.WriteString(string(m.Activity))
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case ModifierDegradation:
		b.WriteString(lang.FuncDegradationShort)
		b.WriteByte('(')
		b.WriteString(bel)
		b.WriteByte(')')
	case ModifierTranslocation:
		b.WriteString(lang.FuncTranslocationShort)
		b.WriteByte('(')
		b.WriteString(bel)
		if m.FromLoc != nil {
			b.WriteString(", ")
			b.WriteString(lang.FuncFromLoc)
			b.WriteByte('(')
			writeValue(&b, m.FromLoc)
			b.WriteByte(')')
		}
		if m.ToLoc != nil {
			b.WriteString(", ")
			b.WriteString(lang.FuncToLoc)
			b.WriteByte('(')
			writeValue(&b, m.ToLoc)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	default:
		return bel
	}
	return b.String()
}

// Edge is one relation instance. Qualified edges carry the context
// snapshot taken when their statement was read plus the statement's
// line; structural edges (hasComponent, hasVariant, hasReactant,
// hasProduct, and distributed hasMember) carry neither.
type Edge struct {
	ID              EdgeID          `json:"id"`
	Subject         NodeID          `json:"subject"`
	Relation        lang.Relation   `json:"relation"`
	Object          NodeID          `json:"object"`
	Context         *common.Context `json:"context,omitempty"`
	SubjectModifier *EdgeModifier   `json:"subject_modifier,omitempty"`
	ObjectModifier  *EdgeModifier   `json:"object_modifier,omitempty"`
	Line            int             `json:"line,omitempty"`
	Text            string          `json:"text,omitempty"`
}

// Qualified reports whether the edge came from a relation statement
// rather than from structural expansion.
func (e *Edge) Qualified() bool {
	return e.Context != nil
}

type structuralKey struct {
	subject  NodeID
	relation lang.Relation
	object   NodeID
}

// Graph is one compile session's output. The zero value is not usable;
// construct with New.
type Graph struct {
	// Document carries the metadata and definitions the session
	// collected while building the graph.
	Document *common.Document

	nodes []*Node
	index map[string]NodeID
	edges []*Edge
	seen  map[structuralKey]bool
}

// New returns an empty graph bound to the session's document state.
func New(document *common.Document) *Graph {
	return &Graph{
		Document: document,
		index:    make(map[string]NodeID),
		seen:     make(map[structuralKey]bool),
	}
}

// RestoreParams carries the parts of a deserialized graph.
type RestoreParams struct {
	Document *common.Document
	Nodes    []*Node
	Edges    []*Edge
}

// Restore rebuilds a graph from persisted parts, reindexing the nodes
// and re-deriving the structural dedupe set. Nodes must arrive in ID
// order with no gaps; edge endpoints must name restored nodes.
func Restore(params RestoreParams) (*Graph, error) {
	g := New(params.Document)
	for i, node := range params.Nodes {
		if node.ID != NodeID(i) {
			return nil, fmt.Errorf("node %d arrived at position %d", node.ID, i)
		}
		if _, ok := g.index[node.BEL]; ok {
			return nil, fmt.Errorf("duplicate node %q", node.BEL)
		}
		g.nodes = append(g.nodes, node)
		g.index[node.BEL] = node.ID
	}
	for _, edge := range params.Edges {
		if int(edge.Subject) >= len(g.nodes) || int(edge.Object) >= len(g.nodes) {
			return nil, fmt.Errorf("edge %d references a missing node", edge.ID)
		}
		g.edges = append(g.edges, edge)
		if edge.Context == nil {
			g.seen[structuralKey{edge.Subject, edge.Relation, edge.Object}] = true
		}
	}
	return g, nil
}

// Lift splits a statement term into the term to intern and the edge
// modifier carrying what node identity excludes: the process wrapper
// and the loc() argument. The input term is never modified; when a
// location must come off, the returned term is a copy.
func Lift(term *common.Term) (*common.Term, *EdgeModifier) {
	var modifier *EdgeModifier
	switch term.Type {
	case common.TermActivity:
		modifier = &EdgeModifier{
			Kind:        ModifierActivity,
			Activity:    term.Activity,
			ActivityRef: term.ActivityRef,
		}
		term = term.Inner
	case common.TermDegradation:
		modifier = &EdgeModifier{Kind: ModifierDegradation}
		term = term.Inner
	case common.TermTranslocation:
		modifier = &EdgeModifier{
			Kind:    ModifierTranslocation,
			FromLoc: term.FromLoc,
			ToLoc:   term.ToLoc,
		}
		term = term.Inner
	}
	if term.Location != nil {
		if modifier == nil {
			modifier = &EdgeModifier{}
		}
		modifier.Location = term.Location
		stripped := *term
		stripped.Location = nil
		term = &stripped
	}
	return term, modifier
}

// InternNode adds the term to the arena if its canonical form is new
// and returns its node either way. Interning is idempotent and
// insensitive to member, reactant, product, and variant order.
//
// Composite structures expand on first intern: complex and composite
// members attach by hasComponent, reaction participants by hasReactant
// and hasProduct, and a term carrying variants attaches under its
// variant-free parent by hasVariant.
func (g *Graph) InternNode(term *common.Term) *Node {
	bel := CanonicalTerm(term)
	if id, ok := g.index[bel]; ok {
		return g.nodes[id]
	}

	node := &Node{
		ID:   NodeID(len(g.nodes)),
		BEL:  bel,
		Kind: term.Kind,
		Term: term,
	}
	g.nodes = append(g.nodes, node)
	g.index[bel] = node.ID

	switch term.Type {
	case common.TermComplex, common.TermComposite:
		for _, member := range term.Members {
			g.AddUnqualifiedEdge(node.ID, lang.RelHasComponent, g.InternNode(member).ID)
		}
	case common.TermReaction:
		for _, reactant := range term.Reactants {
			g.AddUnqualifiedEdge(node.ID, lang.RelHasReactant, g.InternNode(reactant).ID)
		}
		for _, product := range term.Products {
			g.AddUnqualifiedEdge(node.ID, lang.RelHasProduct, g.InternNode(product).ID)
		}
	case common.TermSimple:
		if len(term.Variants) > 0 && term.Ref != nil {
			parent := *term
			parent.Variants = nil
			parent.Location = nil
			g.AddUnqualifiedEdge(g.InternNode(&parent).ID, lang.RelHasVariant, node.ID)
		}
	}

	return node
}

// AddUnqualifiedEdge records a structural relation with no context, at
// most once per subject/relation/object triple.
func (g *Graph) AddUnqualifiedEdge(subject NodeID, relation lang.Relation, object NodeID) {
	key := structuralKey{subject: subject, relation: relation, object: object}
	if g.seen[key] {
		return
	}
	g.seen[key] = true
	g.edges = append(g.edges, &Edge{
		ID:       EdgeID(len(g.edges)),
		Subject:  subject,
		Relation: relation,
		Object:   object,
	})
}

// AddEdgeParams carries one qualified edge. The context snapshot is
// the caller's; the session clones before handing it over.
type AddEdgeParams struct {
	Subject         NodeID
	Relation        lang.Relation
	Object          NodeID
	Context         *common.Context
	SubjectModifier *EdgeModifier
	ObjectModifier  *EdgeModifier
	Line            int
	Text            string
}

// AddEdge appends a qualified edge and returns its ID. Equal triples
// with different contexts stay separate edges; the graph never merges.
func (g *Graph) AddEdge(params AddEdgeParams) EdgeID {
	edge := &Edge{
		ID:              EdgeID(len(g.edges)),
		Subject:         params.Subject,
		Relation:        params.Relation,
		Object:          params.Object,
		Context:         params.Context,
		SubjectModifier: params.SubjectModifier,
		ObjectModifier:  params.ObjectModifier,
		Line:            params.Line,
		Text:            params.Text,
	}
	g.edges = append(g.edges, edge)
	return edge.ID
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// NodeByBEL looks a node up by its canonical form.
func (g *Graph) NodeByBEL(bel string) (*Node, bool) {
	id, ok := g.index[bel]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// Nodes returns the interned nodes in interning order. The slice is
// shared; callers must not modify it.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns every edge in insertion order. The slice is shared;
// callers must not modify it.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// NodeCount returns the number of interned nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, structural included.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// InferCentralDogma adds the unqualified edges implied by the interned
// abundances: every plain RNA node gains its gene with transcribedTo,
// every plain protein node its RNA with translatedTo, cascading so a
// protein also produces its gene. Variant and fusion nodes are left
// alone. The transform is opt-in; compiling never applies it on its
// own.
func (g *Graph) InferCentralDogma() {
	for i := 0; i < len(g.nodes); i++ {
		node := g.nodes[i]
		term := node.Term
		if term == nil || term.Type != common.TermSimple || term.Ref == nil || len(term.Variants) > 0 {
			continue
		}
		switch node.Kind {
		case lang.KindRNA:
			gene := g.InternNode(&common.Term{
				Type: common.TermSimple,
				Kind: lang.KindGene,
				Ref:  term.Ref,
			})
			g.AddUnqualifiedEdge(gene.ID, lang.RelTranscribedTo, node.ID)
		case lang.KindProtein:
			rna := g.InternNode(&common.Term{
				Type: common.TermSimple,
				Kind: lang.KindRNA,
				Ref:  term.Ref,
			})
			g.AddUnqualifiedEdge(rna.ID, lang.RelTranslatedTo, node.ID)
		}
	}
}
