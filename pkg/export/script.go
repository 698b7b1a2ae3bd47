package export

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/graph"
	"github.com/graphbio/bel/pkg/lang"
)

// WriteScript renders the graph back to BEL script form: the document
// header, the definitions, then every qualified edge as a statement,
// grouped under minimal SET and UNSET lines. Structural edges are
// left out; interning the statements re-derives them.
func WriteScript(w io.Writer, g *graph.Graph) error {
	b := bufio.NewWriter(w)
	writeHeader(b, g.Document)
	writeDefinitions(b, g.Document)

	state := &scriptState{}
	for _, edge := range g.Edges() {
		if edge.Context == nil {
			continue
		}
		state.transition(b, edge.Context)
		fmt.Fprintf(b, "%s %s %s\n",
			edge.SubjectModifier.Apply(g.Node(edge.Subject).BEL),
			edge.Relation,
			edge.ObjectModifier.Apply(g.Node(edge.Object).BEL))
	}
	return b.Flush()
}

func writeHeader(b *bufio.Writer, document *common.Document) {
	written := make(map[string]bool)
	for _, key := range lang.RequiredDocumentKeys {
		if value, ok := document.Metadata[key]; ok {
			fmt.Fprintf(b, "SET DOCUMENT %s = %s\n", key, strconv.Quote(value))
			written[key] = true
		}
	}
	var rest []string
	for key := range document.Metadata {
		if !written[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(b, "SET DOCUMENT %s = %s\n", key, strconv.Quote(document.Metadata[key]))
	}
}

func writeDefinitions(b *bufio.Writer, document *common.Document) {
	writeDefinitionBlock(b, "NAMESPACE", document.Namespaces)
	writeDefinitionBlock(b, "ANNOTATION", document.Annotations)
	b.WriteByte('\n')
}

func writeDefinitionBlock(b *bufio.Writer, what string, definitions map[string]*common.Definition) {
	keywords := make([]string, 0, len(definitions))
	for keyword := range definitions {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	for _, keyword := range keywords {
		definition := definitions[keyword]
		if definition.URL != "" {
			fmt.Fprintf(b, "DEFINE %s %s AS URL %s\n", what, keyword, strconv.Quote(definition.URL))
			continue
		}
		values := make([]string, 0, len(definition.Values))
		for value := range definition.Values {
			values = append(values, value)
		}
		sort.Strings(values)
		fmt.Fprintf(b, "DEFINE %s %s AS LIST %s\n", what, keyword, quotedList(values))
	}
}

// scriptState tracks the context the script has established so far,
// so each edge emits only the SET and UNSET lines that differ.
type scriptState struct {
	citation    *common.Citation
	evidence    string
	annotations map[string][]string
	group       string
}

func (s *scriptState) transition(b *bufio.Writer, next *common.Context) {
	if next.StatementGroup != s.group {
		if next.StatementGroup == "" {
			fmt.Fprintln(b, "UNSET STATEMENT_GROUP")
		} else {
			fmt.Fprintf(b, "SET STATEMENT_GROUP = %s\n", strconv.Quote(next.StatementGroup))
		}
		s.group = next.StatementGroup
	}
	if !citationEqual(s.citation, next.Citation) && next.Citation != nil {
		b.WriteByte('\n')
		writeCitation(b, next.Citation)
		s.citation = next.Citation
		// A citation line opens a fresh scope on read-back.
		s.evidence = ""
		s.annotations = nil
	}
	if next.Evidence != s.evidence {
		if next.Evidence == "" {
			fmt.Fprintln(b, "UNSET Evidence")
		} else {
			fmt.Fprintf(b, "SET Evidence = %s\n", strconv.Quote(next.Evidence))
		}
		s.evidence = next.Evidence
	}
	s.diffAnnotations(b, next.Annotations)
}

func (s *scriptState) diffAnnotations(b *bufio.Writer, next map[string][]string) {
	var removed []string
	for key := range s.annotations {
		if _, ok := next[key]; !ok {
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	for _, key := range removed {
		fmt.Fprintf(b, "UNSET %s\n", key)
	}

	var changed []string
	for key, values := range next {
		if !slices.Equal(s.annotations[key], values) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	for _, key := range changed {
		values := next[key]
		if len(values) == 1 {
			fmt.Fprintf(b, "SET %s = %s\n", key, strconv.Quote(values[0]))
		} else {
			fmt.Fprintf(b, "SET %s = %s\n", key, quotedList(values))
		}
	}
	s.annotations = next
}

func writeCitation(b *bufio.Writer, citation *common.Citation) {
	fields := []string{citation.Type, citation.Name, citation.Reference}
	if citation.Date != "" || citation.Authors != "" || citation.Comments != "" {
		fields = append(fields, citation.Date, citation.Authors, citation.Comments)
	}
	fmt.Fprintf(b, "SET Citation = %s\n", quotedList(fields))
}

func citationEqual(a, b *common.Citation) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func quotedList(values []string) string {
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = strconv.Quote(value)
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}
