package http_test

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

	"go.opentelemetry.io/otel"

	"github.com/turtacn/esg/internal/config"
	httpapi "github.com/turtacn/esg/internal/interfaces/http"
	"github.com/turtacn/esg/internal/interfaces/http/handlers"
	"github.com/turtacn/esg/internal/serverlite"
	"github.com/turtacn/esg/pkg/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := serverlite.NewServer("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })
	return &apiClient{t: t, handler: srv.Handler()}
}

func (c *apiClient) do(method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && w.Code != http.StatusNotModified {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

type scores struct {
	Environmental float64 `json:"environmental_score"`
	Social        float64 `json:"social_score"`
	Governance    float64 `json:"governance_score"`
	Overall       float64 `json:"overall_esg_score"`
}

func TestAPI_TaskLifecycleRecomputesScores(t *testing.T) {
	c := newClient(t)

	w, env := c.do(http.MethodPost, "/api/v1/tenants", map[string]string{"name": "Acme Trading", "emirate": "dubai"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tenant struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &tenant)
	base := "/api/v1/tenants/" + tenant.ID

	w, env = c.do(http.MethodPost, base+"/tasks", map[string]interface{}{
		"title":    "Track electricity",
		"category": "Environmental",
		"data_entries": map[string]interface{}{
			"energy_consumption_kwh": 1200,
		},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Task struct {
			ID string `json:"id"`
		} `json:"task"`
		Scores scores `json:"scores"`
	}
	decode(t, env.Data, &created)
	// One data point: min(50, 10) = 10, plus the meter bonus of 15.
	assert.Equal(t, 25.0, created.Scores.Environmental)
	assert.Equal(t, 10.0, created.Scores.Overall)

	w, env = c.do(http.MethodPost, base+"/tasks/"+created.Task.ID+"/attachments", map[string]interface{}{
		"original_filename": "dewa-bill.pdf",
		"file_size":         2048,
		"mime_type":         "application/pdf",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var attached struct {
		Scores scores `json:"scores"`
	}
	decode(t, env.Data, &attached)
	assert.Equal(t, 40.0, attached.Scores.Environmental)

	w, env = c.do(http.MethodGet, base+"/scores", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard scores
	decode(t, env.Data, &dashboard)
	assert.Equal(t, 40.0, dashboard.Environmental)
	assert.Equal(t, 16.0, dashboard.Overall)

	w, _ = c.do(http.MethodDelete, base+"/tasks/"+created.Task.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = c.do(http.MethodGet, base+"/scores", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env.Data, &dashboard)
	assert.Equal(t, scores{}, dashboard)
}

func TestAPI_ScoresSupportConditionalGet(t *testing.T) {
	c := newClient(t)

	_, env := c.do(http.MethodPost, "/api/v1/tenants", map[string]string{"name": "Conditional Co"}, nil)
	var tenant struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &tenant)
	path := "/api/v1/tenants/" + tenant.ID + "/scores"

	w, _ := c.do(http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w, _ = c.do(http.MethodGet, path, nil, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, w.Code)

	w, _ = c.do(http.MethodPost, "/api/v1/tenants/"+tenant.ID+"/tasks", map[string]interface{}{
		"title":        "Board charter",
		"category":     "governance",
		"data_entries": map[string]interface{}{"board_size": 7},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = c.do(http.MethodGet, path, nil, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, etag, w.Header().Get("ETag"))
}

func TestAPI_IdempotentTenantCreation(t *testing.T) {
	c := newClient(t)
	headers := map[string]string{"Idempotency-Key": "onboard-1"}

	w, _ := c.do(http.MethodPost, "/api/v1/tenants", map[string]string{"name": "Once Ltd"}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := c.do(http.MethodPost, "/api/v1/tenants", map[string]string{"name": "Once Ltd"}, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "conflict", env.Error.Code)

	w, env = c.do(http.MethodGet, "/api/v1/tenants", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	decode(t, env.Data, &list)
	assert.Equal(t, 1, list.Pagination.Total)
}

func TestAPI_ErrorsUseEnvelope(t *testing.T) {
	c := newClient(t)

	w, env := c.do(http.MethodGet, "/api/v1/tenants/does-not-exist", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)

	w, env = c.do(http.MethodGet, "/api/v1/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)

	w, _ = c.do(http.MethodPost, "/api/v1/tenants", map[string]string{"name": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Probes(t *testing.T) {
	c := newClient(t)

	w, _ := c.do(http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = c.do(http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	w, _ = c.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "esg_http_requests_total")
}

func TestAPI_CORSAllowsConfiguredOrigin(t *testing.T) {
	c := newClient(t)

	w, _ := c.do(http.MethodGet, "/health/live", nil, map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestNewRouter_WithoutAllowedOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNoopLogger()
	cfg := &config.Config{Server: config.ServerConfig{Environment: "test"}}

	var router *httpapi.Router
	require.NotPanics(t, func() {
		router = httpapi.NewRouter(cfg, httpapi.Handlers{
			Health: handlers.NewHealthHandler(map[string]handlers.Pinger{}, log),
			Tracer: otel.Tracer("router-test"),
		}, log)
	})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
