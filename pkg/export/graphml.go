package export

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/graphbio/bel/pkg/graph"
)

type graphMLDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphMLKey `xml:"key"`
	Graph   graphMLGraph `xml:"graph"`
}

type graphMLKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
	Type string `xml:"attr.type,attr"`
}

type graphMLGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphMLData `xml:"data"`
}

type graphMLEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphMLData `xml:"data"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// WriteGraphML writes the graph in GraphML form. Node records carry
// kind, namespace, and name keys; edge records carry relation,
// citation, evidence, and line.
func WriteGraphML(w io.Writer, g *graph.Graph) error {
	doc := graphMLDoc{
		XMLNS: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphMLKey{
			{ID: "kind", For: "node", Name: "kind", Type: "string"},
			{ID: "namespace", For: "node", Name: "namespace", Type: "string"},
			{ID: "name", For: "node", Name: "name", Type: "string"},
			{ID: "relation", For: "edge", Name: "relation", Type: "string"},
			{ID: "citation", For: "edge", Name: "citation", Type: "string"},
			{ID: "evidence", For: "edge", Name: "evidence", Type: "string"},
			{ID: "line", For: "edge", Name: "line", Type: "int"},
		},
		Graph: graphMLGraph{
			ID:          graphName(g),
			EdgeDefault: "directed",
		},
	}

	for _, node := range g.Nodes() {
		entry := graphMLNode{
			ID:   node.BEL,
			Data: []graphMLData{{Key: "kind", Value: node.Label()}},
		}
		if node.Term != nil && node.Term.Ref != nil {
			entry.Data = append(entry.Data,
				graphMLData{Key: "namespace", Value: node.Term.Ref.Namespace},
				graphMLData{Key: "name", Value: node.Term.Ref.Name})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, entry)
	}
	for _, edge := range g.Edges() {
		entry := graphMLEdge{
			Source: g.Node(edge.Subject).BEL,
			Target: g.Node(edge.Object).BEL,
			Data:   []graphMLData{{Key: "relation", Value: string(edge.Relation)}},
		}
		if edge.Context != nil {
			if citation := edge.Context.Citation; citation != nil {
				entry.Data = append(entry.Data,
					graphMLData{Key: "citation", Value: citation.Type + ":" + citation.Reference})
			}
			if edge.Context.Evidence != "" {
				entry.Data = append(entry.Data,
					graphMLData{Key: "evidence", Value: edge.Context.Evidence})
			}
		}
		if edge.Line > 0 {
			entry.Data = append(entry.Data,
				graphMLData{Key: "line", Value: strconv.Itoa(edge.Line)})
		}
		doc.Graph.Edges = append(doc.Graph.Edges, entry)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func graphName(g *graph.Graph) string {
	if name := g.Document.Metadata["Name"]; name != "" {
		return name
	}
	return "bel"
}
