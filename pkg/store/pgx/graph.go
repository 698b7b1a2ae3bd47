package pgx

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/graph"
	"github.com/graphbio/bel/pkg/lang"
	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

const bulkChunkSize = 1000

// SaveGraph writes the graph, its nodes and edges, and the compile
// diagnostics in one transaction. Nodes and edges go in as chunked
// unnest inserts. Returns the assigned graph id.
func (s *GraphDBStore) SaveGraph(ctx context.Context, g *graph.Graph, report *common.Report) (int64, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	document, err := json.Marshal(g.Document)
	if err != nil {
		return 0, err
	}

	var summary common.Summary
	if report != nil {
		summary = report.Summary()
	}

	var id int64
	err = tx.QueryRow(ctx, insertGraphSQL,
		g.Document.Metadata["Name"],
		g.Document.Metadata["Version"],
		document,
		g.NodeCount(),
		g.EdgeCount(),
		summary.Lines,
		summary.Warnings,
		summary.Errors,
		summary.Excluded,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	logger.Debug("[Store][SaveGraph] Bulk inserting graph", "graph", id,
		"nodes", g.NodeCount(), "edges", g.EdgeCount())

	nodes := g.Nodes()
	err = store.ChunkRange(len(nodes), bulkChunkSize, func(start, end int) error {
		columns, err := nodeColumns(nodes[start:end])
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, insertNodesSQL,
			id, columns.ids, columns.bels, columns.kinds, columns.terms)
		return err
	})
	if err != nil {
		return 0, err
	}

	edges := g.Edges()
	err = store.ChunkRange(len(edges), bulkChunkSize, func(start, end int) error {
		columns, err := edgeColumns(edges[start:end])
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, insertEdgesSQL,
			id, columns.ids, columns.subjects, columns.relations, columns.objects,
			columns.contexts, columns.subjectModifiers, columns.objectModifiers,
			columns.lines, columns.statements)
		return err
	})
	if err != nil {
		return 0, err
	}

	if report != nil {
		diagnostics := report.Diagnostics()
		err = store.ChunkRange(len(diagnostics), bulkChunkSize, func(start, end int) error {
			columns := diagnosticColumns(diagnostics[start:end], start)
			_, err := tx.Exec(ctx, insertDiagnosticsSQL,
				id, columns.positions, columns.codes, columns.lines,
				columns.texts, columns.messages)
			return err
		})
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// GetGraph loads a stored graph and rebuilds it through graph.Restore,
// so the intern index and structural dedupe state come back intact.
func (s *GraphDBStore) GetGraph(ctx context.Context, id int64) (*graph.Graph, error) {
	var documentJSON []byte
	err := s.conn.QueryRow(ctx, selectDocumentSQL, id).Scan(&documentJSON)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	document := common.NewDocument()
	if err := json.Unmarshal(documentJSON, document); err != nil {
		return nil, err
	}

	nodes, err := s.loadNodes(ctx, id)
	if err != nil {
		return nil, err
	}
	edges, err := s.loadEdges(ctx, id)
	if err != nil {
		return nil, err
	}

	return graph.Restore(graph.RestoreParams{
		Document: document,
		Nodes:    nodes,
		Edges:    edges,
	})
}

func (s *GraphDBStore) loadNodes(ctx context.Context, id int64) ([]*graph.Node, error) {
	rows, err := s.conn.Query(ctx, selectNodesSQL, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*graph.Node
	for rows.Next() {
		var (
			nodeID int32
			bel    string
			kind   string
			term   []byte
		)
		if err := rows.Scan(&nodeID, &bel, &kind, &term); err != nil {
			return nil, err
		}
		node, err := rowToNode(nodeID, bel, kind, term)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func (s *GraphDBStore) loadEdges(ctx context.Context, id int64) ([]*graph.Edge, error) {
	rows, err := s.conn.Query(ctx, selectEdgesSQL, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []*graph.Edge
	for rows.Next() {
		var (
			edgeID          int32
			subject         int32
			relation        string
			object          int32
			edgeContext     []byte
			subjectModifier []byte
			objectModifier  []byte
			line            int32
			statement       string
		)
		err := rows.Scan(&edgeID, &subject, &relation, &object,
			&edgeContext, &subjectModifier, &objectModifier, &line, &statement)
		if err != nil {
			return nil, err
		}
		edge, err := rowToEdge(edgeID, subject, relation, object,
			edgeContext, subjectModifier, objectModifier, line, statement)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

// GetGraphSummary returns the listing row of one graph.
func (s *GraphDBStore) GetGraphSummary(ctx context.Context, id int64) (*store.GraphSummary, error) {
	row := s.conn.QueryRow(ctx, selectSummarySQL, id)
	summary, err := scanSummary(row)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ListGraphs returns the listing rows of all stored graphs, newest
// first.
func (s *GraphDBStore) ListGraphs(ctx context.Context) ([]store.GraphSummary, error) {
	rows, err := s.conn.Query(ctx, listSummariesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []store.GraphSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, rows.Err()
}

// DeleteGraph removes a graph with its nodes, edges, and diagnostics.
func (s *GraphDBStore) DeleteGraph(ctx context.Context, id int64) error {
	tag, err := s.conn.Exec(ctx, deleteGraphSQL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	logger.Debug("[Store][DeleteGraph] Deleted graph", "graph", id)
	return nil
}

// GetDiagnostics returns the compile diagnostics of a stored graph in
// report order.
func (s *GraphDBStore) GetDiagnostics(ctx context.Context, id int64) ([]common.Diagnostic, error) {
	var exists bool
	if err := s.conn.QueryRow(ctx, graphExistsSQL, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotFound
	}

	rows, err := s.conn.Query(ctx, selectDiagnosticsSQL, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diagnostics []common.Diagnostic
	for rows.Next() {
		var (
			code    int32
			line    int32
			text    string
			message string
		)
		if err := rows.Scan(&code, &line, &text, &message); err != nil {
			return nil, err
		}
		diagnostics = append(diagnostics, common.Diagnostic{
			Code:     lang.Code(code),
			Severity: lang.Code(code).Severity(),
			Line:     int(line),
			Text:     text,
			Message:  message,
		})
	}
	return diagnostics, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSummary(row scannable) (*store.GraphSummary, error) {
	var summary store.GraphSummary
	err := row.Scan(
		&summary.ID,
		&summary.Name,
		&summary.Version,
		&summary.Nodes,
		&summary.Edges,
		&summary.Report.Lines,
		&summary.Report.Warnings,
		&summary.Report.Errors,
		&summary.Report.Excluded,
		&summary.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

const insertGraphSQL = `
INSERT INTO graphs (name, version, document, node_count, edge_count,
                    line_count, warning_count, error_count, excluded_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id;
`

const insertNodesSQL = `
INSERT INTO graph_nodes (graph_id, node_id, bel, kind, term)
SELECT $1, t.node_id, t.bel, t.kind, t.term::jsonb
FROM unnest($2::int[], $3::text[], $4::text[], $5::text[])
     AS t(node_id, bel, kind, term);
`

const insertEdgesSQL = `
INSERT INTO graph_edges (graph_id, edge_id, subject_id, relation, object_id,
                         context, subject_modifier, object_modifier, line, statement)
SELECT $1, t.edge_id, t.subject_id, t.relation, t.object_id,
       t.context::jsonb, t.subject_modifier::jsonb, t.object_modifier::jsonb,
       t.line, t.statement
FROM unnest($2::int[], $3::int[], $4::text[], $5::int[],
            $6::text[], $7::text[], $8::text[], $9::int[], $10::text[])
     AS t(edge_id, subject_id, relation, object_id,
          context, subject_modifier, object_modifier, line, statement);
`

const insertDiagnosticsSQL = `
INSERT INTO graph_diagnostics (graph_id, position, code, line, line_text, message)
SELECT $1, t.position, t.code, t.line, t.line_text, t.message
FROM unnest($2::int[], $3::int[], $4::int[], $5::text[], $6::text[])
     AS t(position, code, line, line_text, message);
`

const selectDocumentSQL = `
SELECT document FROM graphs WHERE id = $1;
`

const selectNodesSQL = `
SELECT node_id, bel, kind, term
FROM graph_nodes
WHERE graph_id = $1
ORDER BY node_id;
`

const selectEdgesSQL = `
SELECT edge_id, subject_id, relation, object_id,
       context, subject_modifier, object_modifier, line, statement
FROM graph_edges
WHERE graph_id = $1
ORDER BY edge_id;
`

const selectSummarySQL = `
SELECT id, name, version, node_count, edge_count,
       line_count, warning_count, error_count, excluded_count, created_at
FROM graphs
WHERE id = $1;
`

const listSummariesSQL = `
SELECT id, name, version, node_count, edge_count,
       line_count, warning_count, error_count, excluded_count, created_at
FROM graphs
ORDER BY id DESC;
`

const deleteGraphSQL = `
DELETE FROM graphs WHERE id = $1;
`

const graphExistsSQL = `
SELECT EXISTS (SELECT 1 FROM graphs WHERE id = $1);
`

const selectDiagnosticsSQL = `
SELECT code, line, line_text, message
FROM graph_diagnostics
WHERE graph_id = $1
ORDER BY position;
`
