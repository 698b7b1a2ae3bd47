package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphbio/bel/internal/server/middleware"
	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/store"
)

// GetGraphsHandler lists the stored graphs, newest first.
func GetGraphsHandler(c echo.Context) error {
	type getGraphsResponse struct {
		Message string               `json:"message"`
		Graphs  []store.GraphSummary `json:"graphs"`
	}

	app := c.(*middleware.AppContext).App
	graphs, err := app.Store.ListGraphs(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list graphs", "err", err)
		return c.JSON(http.StatusInternalServerError, getGraphsResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, getGraphsResponse{
		Message: "Graphs retrieved successfully",
		Graphs:  graphs,
	})
}

// GetGraphHandler returns one graph summary.
func GetGraphHandler(c echo.Context) error {
	type getGraphData struct {
		GraphID int64 `param:"id" validate:"required,numeric"`
	}

	type getGraphResponse struct {
		Message string              `json:"message"`
		Graph   *store.GraphSummary `json:"graph,omitempty"`
	}

	data := new(getGraphData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getGraphResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getGraphResponse{Message: "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	summary, err := app.Store.GetGraphSummary(c.Request().Context(), data.GraphID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, getGraphResponse{Message: "Graph not found"})
	}
	if err != nil {
		logger.Error("Failed to load graph summary", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, getGraphResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, getGraphResponse{
		Message: "Graph retrieved successfully",
		Graph:   summary,
	})
}

// GetGraphDiagnosticsHandler returns the full diagnostic list of the
// compile that produced a graph.
func GetGraphDiagnosticsHandler(c echo.Context) error {
	type getDiagnosticsData struct {
		GraphID int64 `param:"id" validate:"required,numeric"`
	}

	type getDiagnosticsResponse struct {
		Message     string              `json:"message"`
		Diagnostics []common.Diagnostic `json:"diagnostics"`
	}

	data := new(getDiagnosticsData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getDiagnosticsResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getDiagnosticsResponse{Message: "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	diagnostics, err := app.Store.GetDiagnostics(c.Request().Context(), data.GraphID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, getDiagnosticsResponse{Message: "Graph not found"})
	}
	if err != nil {
		logger.Error("Failed to load diagnostics", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, getDiagnosticsResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, getDiagnosticsResponse{
		Message:     "Diagnostics retrieved successfully",
		Diagnostics: diagnostics,
	})
}
