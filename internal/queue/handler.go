package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/store"

	"github.com/rabbitmq/amqp091-go"
)

// RecoverStaleJobs requeues compile jobs whose worker died after the
// claim. Run at worker startup, before consuming begins.
func RecoverStaleJobs(
	ctx context.Context,
	ch *amqp091.Channel,
	st store.GraphStore,
	olderThan time.Duration,
) error {
	staleJobs, err := st.ListStaleJobs(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("failed to list stale jobs: %w", err)
	}

	if len(staleJobs) == 0 {
		logger.Debug("[Queue] No stale compile jobs found")
		return nil
	}

	logger.Info("[Queue] Found stale compile jobs", "count", len(staleJobs))

	for _, job := range staleJobs {
		if len(job.Payload) == 0 || string(job.Payload) == "null" {
			logger.Warn("[Queue] Stale job has no payload, marking failed", "correlation_id", job.CorrelationID)
			if err := st.SetJobStatus(ctx, job.CorrelationID, store.JobFailed, nil, "worker lost before completion"); err != nil {
				logger.Error("[Queue] Failed to mark stale job as failed", "correlation_id", job.CorrelationID, "err", err)
			}
			continue
		}

		if err := st.SetJobStatus(ctx, job.CorrelationID, store.JobPending, nil, ""); err != nil {
			logger.Error("[Queue] Failed to reset stale job", "correlation_id", job.CorrelationID, "err", err)
			continue
		}

		if err := PublishFIFO(ch, CompileQueue, job.Payload); err != nil {
			logger.Error("[Queue] Failed to requeue stale job", "correlation_id", job.CorrelationID, "err", err)
			continue
		}

		logger.Info("[Queue] Requeued stale compile job", "correlation_id", job.CorrelationID)
	}

	return nil
}

// ResetJobForRetry moves a job back to pending before its message goes
// to the retry queue, so the status row matches what the broker will
// do next.
func ResetJobForRetry(ctx context.Context, st store.GraphStore, msgBody []byte) {
	var data CompileJobMsg
	_ = json.Unmarshal(msgBody, &data)
	if data.CorrelationID == "" {
		return
	}
	_ = st.SetJobStatus(ctx, data.CorrelationID, store.JobPending, nil, "")
}
