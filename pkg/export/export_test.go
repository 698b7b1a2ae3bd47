package export

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/graphbio/bel/pkg/compile"
	"github.com/graphbio/bel/pkg/graph"
	"github.com/graphbio/bel/pkg/lang"
)

const fixtureDocument = `SET DOCUMENT Name = "Export Fixtures"
SET DOCUMENT Version = "1.0.0"
SET DOCUMENT Description = "Corpus for the export adapters"
SET DOCUMENT Authors = "Curation Team"
SET DOCUMENT ContactInfo = "curation@example.org"
DEFINE NAMESPACE HGNC AS LIST {"AKT1", "MDM2", "TP53", "JUN"}
DEFINE ANNOTATION Species AS LIST {"9606"}

SET Citation = {"PubMed", "First", "100"}
SET Evidence = "Kinase activity drives the response."
SET Species = "9606"
kin(p(HGNC:AKT1)) increases p(HGNC:JUN)
complex(p(HGNC:AKT1), p(HGNC:MDM2)) decreases p(HGNC:TP53)

SET Citation = {"PubMed", "Second", "200"}
SET Evidence = "Independent confirmation."
p(HGNC:MDM2) decreases p(HGNC:TP53)
`

func buildFixture(t *testing.T) *graph.Graph {
	t.Helper()
	result, err := compile.NewSession(compile.Options{}).Compile(context.Background(), fixtureDocument)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if errors := result.Report.Errors(); errors != 0 {
		t.Fatalf("fixture produced %d errors: %v", errors, result.Report.Diagnostics())
	}
	return result.Graph
}

func TestBuildNodeLink(t *testing.T) {
	g := buildFixture(t)
	nl := BuildNodeLink(g)

	if !nl.Directed || !nl.Multigraph {
		t.Errorf("Directed, Multigraph = %v, %v, want both true", nl.Directed, nl.Multigraph)
	}
	if len(nl.Nodes) != 5 {
		t.Fatalf("len(Nodes) = %d, want 5", len(nl.Nodes))
	}
	if len(nl.Links) != 5 {
		t.Fatalf("len(Links) = %d, want 5", len(nl.Links))
	}
	if got := nl.Graph.Metadata["Name"]; got != "Export Fixtures" {
		t.Errorf("Graph metadata Name = %q", got)
	}
	if _, ok := nl.Graph.Namespaces["HGNC"]; !ok {
		t.Error("Graph namespaces lost HGNC")
	}

	nodes := make(map[string]NodeLinkNode)
	for _, node := range nl.Nodes {
		nodes[node.ID] = node
	}
	akt1 := nodes["p(HGNC:AKT1)"]
	if akt1.Kind != "Protein" || akt1.Namespace != "HGNC" || akt1.Name != "AKT1" {
		t.Errorf("AKT1 node = %#v", akt1)
	}
	if cplx := nodes["complex(p(HGNC:AKT1), p(HGNC:MDM2))"]; cplx.Kind != "Complex" || cplx.Namespace != "" {
		t.Errorf("complex node = %#v", cplx)
	}

	first := nl.Links[0]
	if first.Source != "p(HGNC:AKT1)" || first.Target != "p(HGNC:JUN)" || first.Relation != "increases" {
		t.Errorf("first link = %#v", first)
	}
	if first.Citation == nil || first.Citation.Reference != "100" {
		t.Errorf("first link citation = %#v", first.Citation)
	}
	if first.SubjectModifier == nil || first.SubjectModifier.Kind != graph.ModifierActivity {
		t.Errorf("first link subject modifier = %#v", first.SubjectModifier)
	}
	if !reflect.DeepEqual(first.Annotations, map[string][]string{"Species": {"9606"}}) {
		t.Errorf("first link annotations = %v", first.Annotations)
	}

	structural := nl.Links[1]
	if structural.Relation != string(lang.RelHasComponent) {
		t.Errorf("second link relation = %q, want hasComponent", structural.Relation)
	}
	if structural.Citation != nil || structural.Evidence != "" {
		t.Errorf("structural link carries context: %#v", structural)
	}
}

func TestWriteNodeLink(t *testing.T) {
	var buffer bytes.Buffer
	if err := WriteNodeLink(&buffer, buildFixture(t)); err != nil {
		t.Fatalf("WriteNodeLink() error = %v", err)
	}
	var decoded NodeLink
	if err := json.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Nodes) != 5 || len(decoded.Links) != 5 {
		t.Errorf("decoded %d nodes %d links, want 5 and 5", len(decoded.Nodes), len(decoded.Links))
	}
}

func TestNodeLinkSchema(t *testing.T) {
	schema := NodeLinkSchema()
	if schema == nil {
		t.Fatal("NodeLinkSchema() = nil")
	}
	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshaling schema: %v", err)
	}
	for _, property := range []string{`"nodes"`, `"links"`, `"directed"`, `"multigraph"`} {
		if !strings.Contains(string(data), property) {
			t.Errorf("schema is missing %s", property)
		}
	}
}

func TestWriteGraphML(t *testing.T) {
	var buffer bytes.Buffer
	if err := WriteGraphML(&buffer, buildFixture(t)); err != nil {
		t.Fatalf("WriteGraphML() error = %v", err)
	}
	if !strings.HasPrefix(buffer.String(), "<?xml") {
		t.Error("output is missing the XML header")
	}

	var decoded graphMLDoc
	if err := xml.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	if decoded.Graph.EdgeDefault != "directed" {
		t.Errorf("edgedefault = %q, want directed", decoded.Graph.EdgeDefault)
	}
	if decoded.Graph.ID != "Export Fixtures" {
		t.Errorf("graph id = %q", decoded.Graph.ID)
	}
	if len(decoded.Graph.Nodes) != 5 || len(decoded.Graph.Edges) != 5 {
		t.Errorf("decoded %d nodes %d edges, want 5 and 5", len(decoded.Graph.Nodes), len(decoded.Graph.Edges))
	}
	if len(decoded.Keys) != 7 {
		t.Errorf("decoded %d key declarations, want 7", len(decoded.Keys))
	}
}

func TestWriteEdgeTSV(t *testing.T) {
	var buffer bytes.Buffer
	if err := WriteEdgeTSV(&buffer, buildFixture(t)); err != nil {
		t.Fatalf("WriteEdgeTSV() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buffer.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want header plus 5 edges", len(lines))
	}
	if lines[0] != "subject\trelation\tobject" {
		t.Errorf("header = %q", lines[0])
	}
	want := "act(p(HGNC:AKT1), ma(kin))\tincreases\tp(HGNC:JUN)"
	if lines[1] != want {
		t.Errorf("first edge = %q, want %q", lines[1], want)
	}
}

func TestWriteGSEA(t *testing.T) {
	var buffer bytes.Buffer
	if err := WriteGSEA(&buffer, buildFixture(t)); err != nil {
		t.Fatalf("WriteGSEA() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buffer.String(), "\n"), "\n")
	want := []string{"Export Fixtures", "AKT1", "JUN", "MDM2", "TP53"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("WriteGSEA() = %v, want %v", lines, want)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := buildFixture(t)
	var buffer bytes.Buffer
	if err := WriteSnapshot(&buffer, g); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	restored, err := ReadSnapshot(&buffer)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if restored.NodeCount() != g.NodeCount() || restored.EdgeCount() != g.EdgeCount() {
		t.Fatalf("restored %d nodes %d edges, want %d and %d",
			restored.NodeCount(), restored.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	if _, ok := restored.NodeByBEL("p(HGNC:TP53)"); !ok {
		t.Error("restored graph lost its index")
	}
	if !reflect.DeepEqual(restored.Edges()[0].SubjectModifier, g.Edges()[0].SubjectModifier) {
		t.Error("restored edge lost its subject modifier")
	}
	if restored.Edges()[0].Context.Evidence != g.Edges()[0].Context.Evidence {
		t.Error("restored edge lost its evidence")
	}
	if got := restored.Document.Metadata["Name"]; got != "Export Fixtures" {
		t.Errorf("restored document name = %q", got)
	}
}

func TestReadSnapshotRejectsOtherVersions(t *testing.T) {
	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(snapshot{Version: 99}); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	if _, err := ReadSnapshot(&buffer); err == nil {
		t.Error("ReadSnapshot() accepted an unknown version")
	}
}

func edgeSignatures(g *graph.Graph) []string {
	var signatures []string
	for _, edge := range g.Edges() {
		parts := []string{
			edge.SubjectModifier.Apply(g.Node(edge.Subject).BEL),
			string(edge.Relation),
			edge.ObjectModifier.Apply(g.Node(edge.Object).BEL),
		}
		if edge.Context != nil {
			parts = append(parts,
				edge.Context.Citation.Reference,
				edge.Context.Evidence,
				fmt.Sprint(edge.Context.Annotations))
		}
		signatures = append(signatures, strings.Join(parts, " | "))
	}
	sort.Strings(signatures)
	return signatures
}

func nodeSet(g *graph.Graph) []string {
	var nodes []string
	for _, node := range g.Nodes() {
		nodes = append(nodes, node.BEL)
	}
	sort.Strings(nodes)
	return nodes
}

func TestWriteScriptRoundTrip(t *testing.T) {
	g := buildFixture(t)
	var buffer bytes.Buffer
	if err := WriteScript(&buffer, g); err != nil {
		t.Fatalf("WriteScript() error = %v", err)
	}
	script := buffer.String()

	for _, line := range []string{
		`SET DOCUMENT Name = "Export Fixtures"`,
		`DEFINE NAMESPACE HGNC AS LIST {"AKT1", "JUN", "MDM2", "TP53"}`,
		`SET Citation = {"PubMed", "First", "100"}`,
		`SET Species = "9606"`,
		"act(p(HGNC:AKT1), ma(kin)) increases p(HGNC:JUN)",
	} {
		if !strings.Contains(script, line) {
			t.Errorf("script is missing %q", line)
		}
	}

	result, err := compile.NewSession(compile.Options{}).Compile(context.Background(), script)
	if err != nil {
		t.Fatalf("recompiling the script: %v", err)
	}
	if got := len(result.Report.Diagnostics()); got != 0 {
		t.Fatalf("recompile diagnostics = %v, want a clean canonical script", result.Report.Diagnostics())
	}
	if !reflect.DeepEqual(nodeSet(result.Graph), nodeSet(g)) {
		t.Errorf("recompiled nodes = %v, want %v", nodeSet(result.Graph), nodeSet(g))
	}
	if !reflect.DeepEqual(edgeSignatures(result.Graph), edgeSignatures(g)) {
		t.Errorf("recompiled edges = %v, want %v", edgeSignatures(result.Graph), edgeSignatures(g))
	}
}
