package server

import (
	"github.com/graphbio/bel/internal/server/middleware"
	"github.com/graphbio/bel/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Graph routes
	apiRoutes.POST("/graphs", routes.CompileGraphHandler, middleware.RequirePermission("graph.create"))
	apiRoutes.POST("/graphs/async", routes.CompileGraphAsyncHandler, middleware.RequirePermission("graph.create"))
	apiRoutes.GET("/graphs", routes.GetGraphsHandler, middleware.RequirePermission("graph.view"))
	apiRoutes.GET("/graphs/:id", routes.GetGraphHandler, middleware.RequirePermission("graph.view"))
	apiRoutes.GET("/graphs/:id/diagnostics", routes.GetGraphDiagnosticsHandler, middleware.RequirePermission("graph.view"))
	apiRoutes.GET("/graphs/:id/export", routes.ExportGraphHandler, middleware.RequirePermission("graph.export"))
	apiRoutes.DELETE("/graphs/:id", routes.DeleteGraphHandler, middleware.RequirePermission("graph.delete"))

	// Job routes
	apiRoutes.GET("/jobs/:correlation_id", routes.GetJobHandler, middleware.RequirePermission("graph.view"))

	// Schema routes
	apiRoutes.GET("/schema/nodelink", routes.GetNodeLinkSchemaHandler)
}
