package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/graphbio/bel/pkg/graph"
	"github.com/graphbio/bel/pkg/lang"
)

// WriteEdgeTSV writes a tab-separated edge list with a header row.
// Endpoints are the statement forms: canonical node BEL with the
// edge's modifiers re-applied.
func WriteEdgeTSV(w io.Writer, g *graph.Graph) error {
	return writeTable(w, g, '\t')
}

// WriteEdgeCSV is WriteEdgeTSV with comma separation.
func WriteEdgeCSV(w io.Writer, g *graph.Graph) error {
	return writeTable(w, g, ',')
}

func writeTable(w io.Writer, g *graph.Graph, comma rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = comma
	if err := writer.Write([]string{"subject", "relation", "object"}); err != nil {
		return err
	}
	for _, edge := range g.Edges() {
		record := []string{
			edge.SubjectModifier.Apply(g.Node(edge.Subject).BEL),
			string(edge.Relation),
			edge.ObjectModifier.Apply(g.Node(edge.Object).BEL),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteGSEA writes the GSEA .grp gene set: the document name on the
// first line, then the deduplicated HGNC symbols of every gene, RNA,
// and protein node in sorted order.
func WriteGSEA(w io.Writer, g *graph.Graph) error {
	symbols := make(map[string]bool)
	for _, node := range g.Nodes() {
		switch node.Kind {
		case lang.KindGene, lang.KindRNA, lang.KindMiRNA, lang.KindProtein:
		default:
			continue
		}
		term := node.Term
		if term == nil || term.Ref == nil || term.Ref.Namespace != "HGNC" {
			continue
		}
		symbols[term.Ref.Name] = true
	}
	sorted := make([]string, 0, len(symbols))
	for symbol := range symbols {
		sorted = append(sorted, symbol)
	}
	sort.Strings(sorted)

	var b strings.Builder
	fmt.Fprintln(&b, graphName(g))
	for _, symbol := range sorted {
		fmt.Fprintln(&b, symbol)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
