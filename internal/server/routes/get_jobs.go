package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphbio/bel/internal/queue"
	"github.com/graphbio/bel/internal/server/middleware"
	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/store"
)

// GetJobHandler returns the status of an async compile. Completed jobs
// get a presigned link to the graph snapshot when a bucket is
// configured.
func GetJobHandler(c echo.Context) error {
	type getJobData struct {
		CorrelationID string `param:"correlation_id" validate:"required"`
	}

	type getJobResponse struct {
		Message     string     `json:"message"`
		Job         *store.Job `json:"job,omitempty"`
		DownloadURL string     `json:"download_url,omitempty"`
	}

	data := new(getJobData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getJobResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getJobResponse{Message: "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	job, err := app.Store.GetJob(ctx, data.CorrelationID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, getJobResponse{Message: "Job not found"})
	}
	if err != nil {
		logger.Error("Failed to load job", "correlation_id", data.CorrelationID, "err", err)
		return c.JSON(http.StatusInternalServerError, getJobResponse{Message: "Internal server error"})
	}

	downloadURL := ""
	if job.Status == store.JobCompleted && job.GraphID != nil && app.S3 != nil {
		url, linkErr := app.S3.PresignDownload(ctx, queue.SnapshotKey(*job.GraphID))
		if linkErr != nil {
			logger.Warn("Failed to presign snapshot download", "graph", *job.GraphID, "err", linkErr)
		} else {
			downloadURL = url
		}
	}

	return c.JSON(http.StatusOK, getJobResponse{
		Message:     "Job retrieved successfully",
		Job:         job,
		DownloadURL: downloadURL,
	})
}
