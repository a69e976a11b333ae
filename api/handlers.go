package api

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-linkage-engine/services"
)

// Service is what the API needs from the engine.
type Service interface {
	services.RunService
	services.JobManager
}

// API holds dependencies for API handlers.
type API struct {
	engine    Service
	startedAt time.Time
}

// NewAPI creates a new API handler structure.
func NewAPI(engine Service) *API {
	return &API{engine: engine, startedAt: time.Now()}
}

// SetupRoutes defines all the API routes of the results server.
func SetupRoutes(router *gin.Engine, engine Service) {
	apiHandler := NewAPI(engine)

	router.GET("/health", apiHandler.HealthCheckHandler)

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)                 // List jobs, optionally by label and status
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)    // Get job performance metrics
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)            // Get job status by ID
		jobRoutes.POST("/:jobId/cancel", apiHandler.CancelJobHandler) // Cancel a running job
	}

	// Run routes; ":runId" may be "latest"
	runRoutes := router.Group("/runs")
	{
		runRoutes.POST("", apiHandler.StartRunHandler)                     // Start a pipeline run
		runRoutes.GET("", apiHandler.ListRunsHandler)                      // List stored runs
		runRoutes.GET("/:runId", apiHandler.GetRunHandler)                 // Run summary and manifest
		runRoutes.GET("/:runId/manifest", apiHandler.GetManifestHandler)   // Run manifest
		runRoutes.GET("/:runId/tables/:table", apiHandler.GetTableHandler) // Paginated output table
		runRoutes.GET("/:runId/resolve", apiHandler.ResolveHandler)        // Resolve a name against the roster
	}
}

// HealthCheckHandler reports liveness and whether a run is loaded.
func (api *API) HealthCheckHandler(c *gin.Context) {
	runs := api.engine.ListRuns()
	response := gin.H{
		"status": "ok",
		"uptime": time.Since(api.startedAt).Round(time.Second).String(),
		"runs":   len(runs),
	}
	if len(runs) > 0 {
		response["latest_run_id"] = runs[0].ID
	}
	c.JSON(http.StatusOK, response)
}

// StartRunHandler starts a pipeline run in the background.
// Request Body (optional): RunRequest
func (api *API) StartRunHandler(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateRunRequest(&req); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	jobID, err := api.engine.StartRunAsync(req.Label)
	if err != nil {
		SendJobExecutionError(c, "pipeline run", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Pipeline run started",
		"job_id":  jobID,
		"label":   req.Label,
	})
}

// ListRunsHandler lists stored runs, newest first.
func (api *API) ListRunsHandler(c *gin.Context) {
	runs := api.engine.ListRuns()
	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

// GetRunHandler returns a run's summary and manifest.
func (api *API) GetRunHandler(c *gin.Context) {
	runID := c.Param("runId")
	if result := ValidateRunID(runID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	run, err := api.engine.GetRun(runID)
	if err != nil {
		SendLookupError(c, "get run", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":  run.Summary(),
		"manifest": run.Manifest,
	})
}

// GetManifestHandler returns a run's manifest.
func (api *API) GetManifestHandler(c *gin.Context) {
	runID := c.Param("runId")
	if result := ValidateRunID(runID); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	run, err := api.engine.GetRun(runID)
	if err != nil {
		SendLookupError(c, "get manifest", err)
		return
	}
	c.JSON(http.StatusOK, run.Manifest)
}

// GetTableHandler returns one page of an output table.
// Query: page (default 1), page_size (default 10, max 100)
func (api *API) GetTableHandler(c *gin.Context) {
	runID := c.Param("runId")
	table := c.Param("table")

	result := ValidateRunID(runID)
	for _, e := range ValidateTableName(table).Errors {
		result.AddError(e.Field, e.Message)
	}
	page, pageSize, pagination := ValidatePagination(c.Query("page"), c.Query("page_size"))
	for _, e := range pagination.Errors {
		result.AddError(e.Field, e.Message)
	}
	if result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	tablePage, err := api.engine.Table(runID, table, page, pageSize)
	if err != nil {
		SendLookupError(c, "get table", err)
		return
	}
	c.JSON(http.StatusOK, tablePage)
}

// ResolveHandler resolves the name query parameter against a run's roster.
func (api *API) ResolveHandler(c *gin.Context) {
	runID := c.Param("runId")
	name := c.Query("name")

	result := ValidateRunID(runID)
	for _, e := range ValidateResolveName(name).Errors {
		result.AddError(e.Field, e.Message)
	}
	if result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	resolved, err := api.engine.Resolve(runID, name)
	if err != nil {
		SendLookupError(c, "resolve", err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}
