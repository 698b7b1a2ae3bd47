package export

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/graph"
)

// snapshotVersion guards gob layout compatibility. Bump it whenever
// the node, edge, or document shapes change incompatibly.
const snapshotVersion = 1

type snapshot struct {
	Version  int
	Document *common.Document
	Nodes    []*graph.Node
	Edges    []*graph.Edge
}

// WriteSnapshot encodes the graph in its binary snapshot form.
func WriteSnapshot(w io.Writer, g *graph.Graph) error {
	return gob.NewEncoder(w).Encode(snapshot{
		Version:  snapshotVersion,
		Document: g.Document,
		Nodes:    g.Nodes(),
		Edges:    g.Edges(),
	})
}

// ReadSnapshot decodes a snapshot and rebuilds the graph, index and
// structural dedupe state included.
func ReadSnapshot(r io.Reader) (*graph.Graph, error) {
	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, this build reads %d", snap.Version, snapshotVersion)
	}
	return graph.Restore(graph.RestoreParams{
		Document: snap.Document,
		Nodes:    snap.Nodes,
		Edges:    snap.Edges,
	})
}
