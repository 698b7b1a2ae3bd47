// Package export serializes compiled graphs. Every adapter works
// against the graph's read surface only: node-link JSON with a
// published schema, GraphML, delimited edge tables, GSEA gene sets, a
// versioned binary snapshot, and a BEL script writer that round-trips
// statements.
package export

import (
	"encoding/json"
	"io"

	"github.com/invopop/jsonschema"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/graph"
)

// NodeLink is the node-link JSON document: a directed multigraph with
// the source document's header under graph. Nodes are identified by
// their canonical BEL form and links reference those forms.
type NodeLink struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Graph      NodeLinkGraph  `json:"graph"`
	Nodes      []NodeLinkNode `json:"nodes"`
	Links      []NodeLinkEdge `json:"links"`
}

// NodeLinkGraph carries the document header. Namespace and annotation
// maps go keyword to URL; inline LIST definitions carry an empty URL.
type NodeLinkGraph struct {
	Metadata    map[string]string `json:"metadata"`
	Namespaces  map[string]string `json:"namespaces,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// NodeLinkNode is one interned node.
type NodeLinkNode struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name,omitempty"`
}

// NodeLinkEdge is one edge with its curation context flattened in.
type NodeLinkEdge struct {
	Key             int                 `json:"key"`
	Source          string              `json:"source"`
	Target          string              `json:"target"`
	Relation        string              `json:"relation"`
	Line            int                 `json:"line,omitempty"`
	Citation        *common.Citation    `json:"citation,omitempty"`
	Evidence        string              `json:"evidence,omitempty"`
	Annotations     map[string][]string `json:"annotations,omitempty"`
	SubjectModifier *graph.EdgeModifier `json:"subject_modifier,omitempty"`
	ObjectModifier  *graph.EdgeModifier `json:"object_modifier,omitempty"`
}

// BuildNodeLink flattens a graph into its node-link form.
func BuildNodeLink(g *graph.Graph) *NodeLink {
	nl := &NodeLink{
		Directed:   true,
		Multigraph: true,
		Graph: NodeLinkGraph{
			Metadata:    g.Document.Metadata,
			Namespaces:  definitionURLs(g.Document.Namespaces),
			Annotations: definitionURLs(g.Document.Annotations),
		},
		Nodes: make([]NodeLinkNode, 0, g.NodeCount()),
		Links: make([]NodeLinkEdge, 0, g.EdgeCount()),
	}
	for _, node := range g.Nodes() {
		entry := NodeLinkNode{ID: node.BEL, Kind: node.Label()}
		if node.Term != nil && node.Term.Ref != nil {
			entry.Namespace = node.Term.Ref.Namespace
			entry.Name = node.Term.Ref.Name
		}
		nl.Nodes = append(nl.Nodes, entry)
	}
	for _, edge := range g.Edges() {
		link := NodeLinkEdge{
			Key:             int(edge.ID),
			Source:          g.Node(edge.Subject).BEL,
			Target:          g.Node(edge.Object).BEL,
			Relation:        string(edge.Relation),
			Line:            edge.Line,
			SubjectModifier: edge.SubjectModifier,
			ObjectModifier:  edge.ObjectModifier,
		}
		if edge.Context != nil {
			link.Citation = edge.Context.Citation
			link.Evidence = edge.Context.Evidence
			link.Annotations = edge.Context.Annotations
		}
		nl.Links = append(nl.Links, link)
	}
	return nl
}

// WriteNodeLink writes the indented node-link JSON form.
func WriteNodeLink(w io.Writer, g *graph.Graph) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildNodeLink(g))
}

// NodeLinkSchema returns the published JSON Schema of the node-link
// format, generated from the Go structs.
func NodeLinkSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&NodeLink{})
}

func definitionURLs(definitions map[string]*common.Definition) map[string]string {
	if len(definitions) == 0 {
		return nil
	}
	urls := make(map[string]string, len(definitions))
	for keyword, definition := range definitions {
		urls[keyword] = definition.URL
	}
	return urls
}
