package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/graphbio/bel/internal/storage"
	"github.com/graphbio/bel/internal/timing"
	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/compile"
	"github.com/graphbio/bel/pkg/export"
	"github.com/graphbio/bel/pkg/leaselock"
	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/resolve"
	"github.com/graphbio/bel/pkg/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessCompileMessage handles one compile job: claim the job row,
// fetch the document, compile it, persist the graph under a lease
// lock, record stats, and move the job to completed or failed.
//
// The returned error means the delivery should retry; a fatal compile
// diagnostic is not retryable and lands in the job row instead.
func ProcessCompileMessage(
	ctx context.Context,
	s3Client *storage.Client,
	st store.GraphStore,
	resolver *resolve.Resolver,
	conn *pgxpool.Pool,
	msg string,
) (err error) {
	data := new(CompileJobMsg)
	if err = json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.CorrelationID == "" {
		return errors.New("compile message without correlation id")
	}

	claimed, err := st.ClaimJob(ctx, data.CorrelationID)
	if err != nil {
		return err
	}
	if !claimed {
		logger.Info("[Queue] Skipping compile job: already claimed or not runnable", "correlation_id", data.CorrelationID)
		return nil
	}

	defer func() {
		if err == nil {
			return
		}
		updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if updateErr := st.SetJobStatus(updateCtx, data.CorrelationID, store.JobFailed, nil, err.Error()); updateErr != nil {
			logger.Warn("[Queue] Failed to mark compile job as failed", "correlation_id", data.CorrelationID, "err", updateErr)
		}
	}()

	source := data.Source
	if source == "" {
		if data.SourceKey == "" {
			err = errors.New("compile message with neither source nor source key")
			return err
		}
		if s3Client == nil {
			err = errors.New("compile message names an object key but no object store is configured")
			return err
		}
		var raw []byte
		raw, err = s3Client.GetDocument(ctx, data.SourceKey)
		if err != nil {
			return err
		}
		source = string(raw)
	}

	logger.Debug("[Queue] Compiling document", "correlation_id", data.CorrelationID, "source_key", data.SourceKey)
	watch := timing.Start()
	session := compile.NewSession(data.Options.SessionOptions(resolver))
	result, compileErr := session.Compile(ctx, source)
	if compileErr != nil {
		var fatal *common.FatalError
		if errors.As(compileErr, &fatal) {
			// Deterministic document failure. Record it on the job and
			// ack the message; retrying cannot help.
			if updateErr := st.SetJobStatus(ctx, data.CorrelationID, store.JobFailed, nil, fatal.Error()); updateErr != nil {
				err = updateErr
				return err
			}
			logger.Info("[Queue] Compile job failed on fatal diagnostic", "correlation_id", data.CorrelationID, "message", fatal.Error())
			return nil
		}
		err = compileErr
		return err
	}

	// Duplicate deliveries of the same job serialize here; the claim
	// already filters most of them.
	lockClient := leaselock.New(conn)
	var graphID int64
	err = lockClient.WithLease(ctx, "compile:"+data.CorrelationID, leaselock.Options{
		TTL:         5 * time.Minute,
		Wait:        true,
		TokenPrefix: fmt.Sprintf("compile/%s/", data.CorrelationID),
	}, func(leaseCtx context.Context) error {
		var saveErr error
		graphID, saveErr = st.SaveGraph(leaseCtx, result.Graph, result.Report)
		return saveErr
	})
	if err != nil {
		return err
	}

	summary := result.Report.Summary()
	if statErr := watch.Record(ctx, st, graphID, summary.Lines); statErr != nil {
		logger.Warn("[Queue] Failed to record compile time", "graph", graphID, "err", statErr)
	}

	if s3Client != nil {
		if uploadErr := uploadSnapshot(ctx, s3Client, graphID, result); uploadErr != nil {
			logger.Warn("[Queue] Failed to upload graph snapshot", "graph", graphID, "err", uploadErr)
		}
	}

	if err = st.SetJobStatus(ctx, data.CorrelationID, store.JobCompleted, &graphID, ""); err != nil {
		return err
	}

	logger.Info(
		"[Queue] Compile job completed",
		"correlation_id", data.CorrelationID,
		"graph", graphID,
		"lines", summary.Lines,
		"errors", summary.Errors,
		"warnings", summary.Warnings,
	)
	return nil
}

// SnapshotKey is where a graph's snapshot artifact lives in the
// bucket.
func SnapshotKey(graphID int64) string {
	return fmt.Sprintf("graphs/%d/graph.snapshot", graphID)
}

func uploadSnapshot(ctx context.Context, s3Client *storage.Client, graphID int64, result *compile.Result) error {
	var buf bytes.Buffer
	if err := export.WriteSnapshot(&buf, result.Graph); err != nil {
		return err
	}
	return s3Client.PutArtifact(ctx, SnapshotKey(graphID), "application/octet-stream", buf.Bytes())
}
