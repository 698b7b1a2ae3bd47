package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphbio/bel/internal/server/middleware"
	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/store"
)

// DeleteGraphHandler removes a graph, its diagnostics, and its bucket
// artifacts.
func DeleteGraphHandler(c echo.Context) error {
	type deleteGraphData struct {
		GraphID int64 `param:"id" validate:"required,numeric"`
	}

	type deleteGraphResponse struct {
		Message string `json:"message"`
	}

	data := new(deleteGraphData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, deleteGraphResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, deleteGraphResponse{Message: "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	err := app.Store.DeleteGraph(ctx, data.GraphID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, deleteGraphResponse{Message: "Graph not found"})
	}
	if err != nil {
		logger.Error("Failed to delete graph", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteGraphResponse{Message: "Internal server error"})
	}

	// Artifacts are best effort; the graph rows are already gone.
	if app.S3 != nil {
		prefix := fmt.Sprintf("graphs/%d/", data.GraphID)
		if err := app.S3.DeletePrefix(ctx, prefix); err != nil {
			logger.Warn("Failed to delete graph artifacts", "graph", data.GraphID, "err", err)
		}
	}

	return c.JSON(http.StatusOK, deleteGraphResponse{Message: "Graph deleted successfully"})
}
