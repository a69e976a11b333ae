package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-linkage-engine/internal/engine"
	testutil "github.com/gcbaptista/go-linkage-engine/internal/testing"
	"github.com/gcbaptista/go-linkage-engine/model"
	"github.com/gcbaptista/go-linkage-engine/services"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *engine.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	eng := engine.NewEngine(testutil.FixtureSettings(t))
	t.Cleanup(eng.Stop)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	SetupRoutes(router, eng)
	return router, eng
}

// setupRouterWithRun runs the fixture pipeline once before serving.
func setupRouterWithRun(t *testing.T) (*gin.Engine, *model.RunResult) {
	t.Helper()
	router, eng := setupTestRouter(t)
	run, err := eng.RunPipeline(context.Background(), "fixture", nil)
	require.NoError(t, err)
	return router, run
}

func doRequest(t *testing.T, router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheckHandler(t *testing.T) {
	router, run := setupRouterWithRun(t)

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["runs"])
	assert.Equal(t, run.ID, body["latest_run_id"])
}

func TestStartRunHandler(t *testing.T) {
	router, eng := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/runs", []byte(`{"label":"api"}`))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	jobID, ok := body["job_id"].(string)
	require.True(t, ok)

	job := testutil.WaitForJobCompletion(t, eng, jobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeRunPipeline, "api")

	w = doRequest(t, router, http.MethodGet, "/jobs/"+jobID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[model.Job](t, w)
	assert.Equal(t, job.RunID, got.RunID)

	w = doRequest(t, router, http.MethodGet, "/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	runs := decode[struct {
		Runs  []model.RunSummary `json:"runs"`
		Total int                `json:"total"`
	}](t, w)
	require.Equal(t, 1, runs.Total)
	assert.Equal(t, job.RunID, runs.Runs[0].ID)
}

func TestStartRunHandler_NoBody(t *testing.T) {
	router, eng := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/runs", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	jobID := decode[map[string]any](t, w)["job_id"].(string)
	testutil.WaitForJobCompletion(t, eng, jobID, testutil.DefaultJobPollingOptions())
}

func TestStartRunHandler_BadRequests(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/runs", []byte(`{"label":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorCodeInvalidJSON, decode[APIError](t, w).Code)

	w = doRequest(t, router, http.MethodPost, "/runs", []byte(`{"label":" padded"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decode[APIError](t, w)
	assert.Equal(t, ErrorCodeValidationFailed, apiErr.Code)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "label", apiErr.Details[0].Field)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestGetRunHandler(t *testing.T) {
	router, run := setupRouterWithRun(t)

	for _, id := range []string{run.ID, "latest"} {
		w := doRequest(t, router, http.MethodGet, "/runs/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode[struct {
			Summary  model.RunSummary `json:"summary"`
			Manifest model.Manifest   `json:"manifest"`
		}](t, w)
		assert.Equal(t, run.ID, body.Summary.ID)
		assert.Equal(t, "fixture", body.Summary.Label)
		assert.Len(t, body.Manifest.Stages, 7)
	}

	w := doRequest(t, router, http.MethodGet, "/runs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrorCodeRunNotFound, decode[APIError](t, w).Code)
}

func TestGetManifestHandler(t *testing.T) {
	router, run := setupRouterWithRun(t)

	w := doRequest(t, router, http.MethodGet, "/runs/latest/manifest", nil)
	require.Equal(t, http.StatusOK, w.Code)

	manifest := decode[model.Manifest](t, w)
	assert.Equal(t, run.ID, manifest.RunID)
	assert.Contains(t, manifest.Files, "sbir_scored.csv")
	require.Len(t, manifest.Collisions, 1)
	assert.Equal(t, "E9", manifest.Collisions[0].ShadowedEntityID)
}

func TestGetTableHandler(t *testing.T) {
	router, run := setupRouterWithRun(t)

	w := doRequest(t, router, http.MethodGet, "/runs/"+run.ID+"/tables/research?page=1&page_size=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[services.TablePage](t, w)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.PageSize)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "0.80", page.Rows[0]["credibility_score"])
	assert.Equal(t, "anomaly", page.Rows[0]["kw_top3"])
	assert.Nil(t, page.Rows[0]["sponsor_org"])

	w = doRequest(t, router, http.MethodGet, "/runs/latest/tables/matches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[services.TablePage](t, w)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "S1", page.Rows[0]["sighting_id"])

	w = doRequest(t, router, http.MethodGet, "/runs/latest/tables/candidates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[services.TablePage](t, w)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "Compact radar sensor", page.Rows[0]["sbir_title"])
}

func TestGetTableHandler_Errors(t *testing.T) {
	router, _ := setupRouterWithRun(t)

	tests := []struct {
		name    string
		path    string
		status  int
		code    ErrorCode
		details int
	}{
		{"unknown table", "/runs/latest/tables/documents", http.StatusBadRequest, ErrorCodeValidationFailed, 1},
		{"bad pagination", "/runs/latest/tables/sbir?page=0&page_size=500", http.StatusBadRequest, ErrorCodeValidationFailed, 2},
		{"unknown run", "/runs/nope/tables/sbir", http.StatusNotFound, ErrorCodeRunNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
			apiErr := decode[APIError](t, w)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Len(t, apiErr.Details, tt.details)
		})
	}
}

func TestResolveHandler(t *testing.T) {
	router, run := setupRouterWithRun(t)

	w := doRequest(t, router, http.MethodGet, "/runs/"+run.ID+"/resolve?name=ACME%20LABS", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[services.ResolveResult](t, w)
	assert.Equal(t, "acme labs", res.CanonicalName)
	require.NotNil(t, res.EntityID)
	assert.Equal(t, "E1", *res.EntityID)
	assert.Equal(t, "Acme Labs", res.DisplayName)

	w = doRequest(t, router, http.MethodGet, "/runs/latest/resolve?name=Initech", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[services.ResolveResult](t, w)
	assert.Nil(t, res.EntityID)
	assert.Empty(t, res.Suggestions)

	w = doRequest(t, router, http.MethodGet, "/runs/latest/resolve?name=Acme%20Lab", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[services.ResolveResult](t, w)
	assert.Nil(t, res.EntityID)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, "E1", res.Suggestions[0].EntityID)

	w = doRequest(t, router, http.MethodGet, "/runs/latest/resolve", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobHandlers(t *testing.T) {
	router, eng := setupTestRouter(t)

	jobID, err := eng.StartRunAsync("nightly")
	require.NoError(t, err)
	testutil.WaitForJobCompletion(t, eng, jobID, testutil.DefaultJobPollingOptions())

	w := doRequest(t, router, http.MethodGet, "/jobs?label=nightly&status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Jobs  []model.Job `json:"jobs"`
		Total int         `json:"total"`
	}](t, w)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, jobID, list.Jobs[0].ID)

	w = doRequest(t, router, http.MethodGet, "/jobs?status=done", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, "/jobs/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	metrics := decode[map[string]map[string]any](t, w)
	assert.Equal(t, float64(1), metrics["metrics"]["jobs_completed"])

	w = doRequest(t, router, http.MethodGet, "/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrorCodeJobNotFound, decode[APIError](t, w).Code)

	w = doRequest(t, router, http.MethodPost, "/jobs/"+jobID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, router, http.MethodPost, "/jobs/missing/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware(), CORSMiddleware(), RequestSizeLimitMiddleware(8), RequestLoggerMiddleware(nil))
	router.POST("/echo", func(c *gin.Context) {
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			SendInvalidJSONError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	})

	w := doRequest(t, router, http.MethodOptions, "/echo", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = doRequest(t, router, http.MethodPost, "/echo", []byte(`{"label":"far too long"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(requestIDHeader, "req-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
}
