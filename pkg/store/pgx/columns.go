package pgx

import (
	"encoding/json"

	"github.com/graphbio/bel/internal/util"
	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/graph"
	"github.com/graphbio/bel/pkg/lang"
)

// The bulk inserts take one array per column. JSONB columns travel as
// JSON text and are cast per row; nil pointers become the jsonb null,
// which scans back to nil.
//
// Statement and diagnostic columns repeat document lines verbatim, and
// Postgres text columns reject NUL bytes, so those pass through
// util.SanitizePostgresText.

type nodeColumnSet struct {
	ids   []int32
	bels  []string
	kinds []string
	terms []string
}

func nodeColumns(nodes []*graph.Node) (*nodeColumnSet, error) {
	columns := &nodeColumnSet{
		ids:   make([]int32, 0, len(nodes)),
		bels:  make([]string, 0, len(nodes)),
		kinds: make([]string, 0, len(nodes)),
		terms: make([]string, 0, len(nodes)),
	}
	for _, node := range nodes {
		term, err := jsonColumn(node.Term)
		if err != nil {
			return nil, err
		}
		columns.ids = append(columns.ids, int32(node.ID))
		columns.bels = append(columns.bels, node.BEL)
		columns.kinds = append(columns.kinds, string(node.Kind))
		columns.terms = append(columns.terms, term)
	}
	return columns, nil
}

type edgeColumnSet struct {
	ids              []int32
	subjects         []int32
	relations        []string
	objects          []int32
	contexts         []string
	subjectModifiers []string
	objectModifiers  []string
	lines            []int32
	statements       []string
}

func edgeColumns(edges []*graph.Edge) (*edgeColumnSet, error) {
	columns := &edgeColumnSet{
		ids:              make([]int32, 0, len(edges)),
		subjects:         make([]int32, 0, len(edges)),
		relations:        make([]string, 0, len(edges)),
		objects:          make([]int32, 0, len(edges)),
		contexts:         make([]string, 0, len(edges)),
		subjectModifiers: make([]string, 0, len(edges)),
		objectModifiers:  make([]string, 0, len(edges)),
		lines:            make([]int32, 0, len(edges)),
		statements:       make([]string, 0, len(edges)),
	}
	for _, edge := range edges {
		edgeContext, err := jsonColumn(edge.Context)
		if err != nil {
			return nil, err
		}
		subjectModifier, err := jsonColumn(edge.SubjectModifier)
		if err != nil {
			return nil, err
		}
		objectModifier, err := jsonColumn(edge.ObjectModifier)
		if err != nil {
			return nil, err
		}
		columns.ids = append(columns.ids, int32(edge.ID))
		columns.subjects = append(columns.subjects, int32(edge.Subject))
		columns.relations = append(columns.relations, string(edge.Relation))
		columns.objects = append(columns.objects, int32(edge.Object))
		columns.contexts = append(columns.contexts, edgeContext)
		columns.subjectModifiers = append(columns.subjectModifiers, subjectModifier)
		columns.objectModifiers = append(columns.objectModifiers, objectModifier)
		columns.lines = append(columns.lines, int32(edge.Line))
		columns.statements = append(columns.statements, util.SanitizePostgresText(edge.Text))
	}
	return columns, nil
}

type diagnosticColumnSet struct {
	positions []int32
	codes     []int32
	lines     []int32
	texts     []string
	messages  []string
}

func diagnosticColumns(diagnostics []common.Diagnostic, offset int) *diagnosticColumnSet {
	columns := &diagnosticColumnSet{
		positions: make([]int32, 0, len(diagnostics)),
		codes:     make([]int32, 0, len(diagnostics)),
		lines:     make([]int32, 0, len(diagnostics)),
		texts:     make([]string, 0, len(diagnostics)),
		messages:  make([]string, 0, len(diagnostics)),
	}
	for i, diagnostic := range diagnostics {
		columns.positions = append(columns.positions, int32(offset+i))
		columns.codes = append(columns.codes, int32(diagnostic.Code))
		columns.lines = append(columns.lines, int32(diagnostic.Line))
		columns.texts = append(columns.texts, util.SanitizePostgresText(diagnostic.Text))
		columns.messages = append(columns.messages, util.SanitizePostgresText(diagnostic.Message))
	}
	return columns
}

func rowToNode(id int32, bel, kind string, term []byte) (*graph.Node, error) {
	node := &graph.Node{
		ID:   graph.NodeID(id),
		BEL:  bel,
		Kind: lang.Kind(kind),
	}
	if err := json.Unmarshal(term, &node.Term); err != nil {
		return nil, err
	}
	return node, nil
}

func rowToEdge(id, subject int32, relation string, object int32,
	edgeContext, subjectModifier, objectModifier []byte, line int32, statement string) (*graph.Edge, error) {
	edge := &graph.Edge{
		ID:       graph.EdgeID(id),
		Subject:  graph.NodeID(subject),
		Relation: lang.Relation(relation),
		Object:   graph.NodeID(object),
		Line:     int(line),
		Text:     statement,
	}
	if err := json.Unmarshal(edgeContext, &edge.Context); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(subjectModifier, &edge.SubjectModifier); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(objectModifier, &edge.ObjectModifier); err != nil {
		return nil, err
	}
	return edge, nil
}

func jsonColumn(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
