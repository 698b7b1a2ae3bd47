package routes

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/graphbio/bel/internal/server/middleware"
	"github.com/graphbio/bel/pkg/export"
	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/store"
)

// ExportGraphHandler renders a stored graph in one of the interchange
// formats and returns it as a download.
func ExportGraphHandler(c echo.Context) error {
	type exportGraphData struct {
		GraphID int64  `param:"id" validate:"required,numeric"`
		Format  string `query:"format"`
	}

	type exportGraphResponse struct {
		Message string `json:"message"`
	}

	data := new(exportGraphData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, exportGraphResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, exportGraphResponse{Message: "Invalid request params"})
	}

	name := strings.ToLower(strings.TrimSpace(data.Format))
	if name == "" {
		name = "nodelink"
	}
	format, ok := export.ByName(name)
	if !ok {
		return c.JSON(http.StatusBadRequest, exportGraphResponse{Message: "Unknown export format " + name})
	}

	app := c.(*middleware.AppContext).App
	g, err := app.Store.GetGraph(c.Request().Context(), data.GraphID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, exportGraphResponse{Message: "Graph not found"})
	}
	if err != nil {
		logger.Error("Failed to load graph", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, exportGraphResponse{Message: "Internal server error"})
	}

	var buf bytes.Buffer
	if err := format.Write(&buf, g); err != nil {
		logger.Error("Failed to render export", "graph", data.GraphID, "format", name, "err", err)
		return c.JSON(http.StatusInternalServerError, exportGraphResponse{Message: "Internal server error"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=graph-%d.%s", data.GraphID, format.Ext))
	return c.Blob(http.StatusOK, format.ContentType, buf.Bytes())
}

// GetNodeLinkSchemaHandler returns the JSON Schema of the node-link
// export document.
func GetNodeLinkSchemaHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, export.NodeLinkSchema())
}
