package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/graphbio/bel/internal/queue"
	"github.com/graphbio/bel/internal/server/middleware"
	"github.com/graphbio/bel/internal/timing"
	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/compile"
	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/store"
)

// CompileGraphHandler compiles a BEL document from the request body
// and stores the resulting graph. The document arrives inline as JSON
// or as a multipart "document" file.
func CompileGraphHandler(c echo.Context) error {
	type compileGraphBody struct {
		Source          string `json:"source" form:"source"`
		AllowNested     bool   `json:"allow_nested" form:"allow_nested"`
		StrictLegacy    bool   `json:"strict_legacy" form:"strict_legacy"`
		LenientPmod     bool   `json:"lenient_pmod" form:"lenient_pmod"`
		RelaxedHeader   bool   `json:"relaxed_header" form:"relaxed_header"`
		SkipAnnotations bool   `json:"skip_annotations" form:"skip_annotations"`
	}

	type compileGraphResponse struct {
		Message     string              `json:"message"`
		Graph       *store.GraphSummary `json:"graph,omitempty"`
		Diagnostics []common.Diagnostic `json:"diagnostics,omitempty"`
	}

	data := new(compileGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, compileGraphResponse{Message: "Invalid request body"})
	}

	source, problem := documentSource(c, data.Source)
	if problem != "" {
		return c.JSON(http.StatusBadRequest, compileGraphResponse{Message: problem})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	options := queue.CompileOptions{
		AllowNested:     data.AllowNested,
		StrictLegacy:    data.StrictLegacy,
		LenientPmod:     data.LenientPmod,
		RelaxedHeader:   data.RelaxedHeader,
		SkipAnnotations: data.SkipAnnotations,
	}

	watch := timing.Start()
	session := compile.NewSession(options.SessionOptions(app.Resolver))
	result, err := session.Compile(ctx, source)
	if err != nil {
		var fatal *common.FatalError
		if errors.As(err, &fatal) {
			return c.JSON(http.StatusUnprocessableEntity, compileGraphResponse{
				Message:     fatal.Error(),
				Diagnostics: result.Report.Diagnostics(),
			})
		}
		logger.Error("Failed to compile document", "err", err)
		return c.JSON(http.StatusInternalServerError, compileGraphResponse{Message: "Internal server error"})
	}

	graphID, err := app.Store.SaveGraph(ctx, result.Graph, result.Report)
	if err != nil {
		logger.Error("Failed to save graph", "err", err)
		return c.JSON(http.StatusInternalServerError, compileGraphResponse{Message: "Internal server error"})
	}

	if statErr := watch.Record(ctx, app.Store, graphID, result.Report.Summary().Lines); statErr != nil {
		logger.Warn("Failed to record compile time", "graph", graphID, "err", statErr)
	}

	summary, err := app.Store.GetGraphSummary(ctx, graphID)
	if err != nil {
		logger.Error("Failed to load graph summary", "graph", graphID, "err", err)
		return c.JSON(http.StatusInternalServerError, compileGraphResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, compileGraphResponse{
		Message:     "Graph compiled successfully",
		Graph:       summary,
		Diagnostics: result.Report.Diagnostics(),
	})
}

// CompileGraphAsyncHandler enqueues a compile job and answers with the
// correlation id and a duration estimate. The document arrives inline,
// as a multipart "document" file, or as an object key of an already
// uploaded document.
func CompileGraphAsyncHandler(c echo.Context) error {
	type asyncCompileBody struct {
		Source          string `json:"source" form:"source"`
		SourceKey       string `json:"source_key" form:"source_key"`
		AllowNested     bool   `json:"allow_nested" form:"allow_nested"`
		StrictLegacy    bool   `json:"strict_legacy" form:"strict_legacy"`
		LenientPmod     bool   `json:"lenient_pmod" form:"lenient_pmod"`
		RelaxedHeader   bool   `json:"relaxed_header" form:"relaxed_header"`
		SkipAnnotations bool   `json:"skip_annotations" form:"skip_annotations"`
	}

	type asyncCompileResponse struct {
		Message             string `json:"message"`
		CorrelationID       string `json:"correlation_id,omitempty"`
		EstimatedDurationMs int64  `json:"estimated_duration_ms,omitempty"`
	}

	data := new(asyncCompileBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, asyncCompileResponse{Message: "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	source := data.Source
	if source == "" && data.SourceKey == "" {
		var problem string
		source, problem = documentSource(c, "")
		if problem != "" {
			return c.JSON(http.StatusBadRequest, asyncCompileResponse{Message: problem})
		}
	}
	if data.SourceKey != "" && app.S3 == nil {
		return c.JSON(http.StatusBadRequest, asyncCompileResponse{Message: "No object store configured for source_key"})
	}

	correlationID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate correlation id", "err", err)
		return c.JSON(http.StatusInternalServerError, asyncCompileResponse{Message: "Internal server error"})
	}

	msg := queue.CompileJobMsg{
		Message:       "Compile job accepted",
		CorrelationID: correlationID,
		SourceKey:     data.SourceKey,
		Options: queue.CompileOptions{
			AllowNested:     data.AllowNested,
			StrictLegacy:    data.StrictLegacy,
			LenientPmod:     data.LenientPmod,
			RelaxedHeader:   data.RelaxedHeader,
			SkipAnnotations: data.SkipAnnotations,
		},
	}

	// Inline documents go to the bucket when one is configured, so the
	// queue message stays small.
	if source != "" {
		if app.S3 != nil {
			key := fmt.Sprintf("documents/%s.bel", correlationID)
			if err := app.S3.PutArtifact(ctx, key, "text/plain", []byte(source)); err != nil {
				logger.Error("Failed to upload document", "err", err)
				return c.JSON(http.StatusInternalServerError, asyncCompileResponse{Message: "Internal server error"})
			}
			msg.SourceKey = key
		} else {
			msg.Source = source
		}
	}

	if err := queue.EnqueueCompile(ctx, app.Queue, app.Store, msg); err != nil {
		logger.Error("Failed to enqueue compile job", "correlation_id", correlationID, "err", err)
		return c.JSON(http.StatusInternalServerError, asyncCompileResponse{Message: "Internal server error"})
	}

	var estimatedMs int64
	if source != "" {
		if estimate, predictErr := timing.Predict(ctx, app.Store, countLines(source)); predictErr == nil {
			estimatedMs = estimate.Milliseconds()
		}
	}

	return c.JSON(http.StatusAccepted, asyncCompileResponse{
		Message:             "Compile job accepted",
		CorrelationID:       correlationID,
		EstimatedDurationMs: estimatedMs,
	})
}

// documentSource returns the BEL text of a request, preferring the
// inline field over a multipart "document" file.
func documentSource(c echo.Context, inline string) (string, string) {
	if strings.TrimSpace(inline) != "" {
		return inline, ""
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return "", "Request carries no document"
	}
	src, err := fileHeader.Open()
	if err != nil {
		return "", "Invalid request body"
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return "", "Invalid request body"
	}
	if len(raw) == 0 {
		return "", "Request carries no document"
	}
	return string(raw), ""
}

func countLines(source string) int {
	if source == "" {
		return 0
	}
	n := strings.Count(source, "\n")
	if !strings.HasSuffix(source, "\n") {
		n++
	}
	return n
}
