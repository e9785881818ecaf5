package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/verse-service/internal/mocks"
	"github.com/jsamuelsen/verse-service/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func healthRouter(registry ports.HealthRegistry, build BuildInfo) *gin.Engine {
	engine := gin.New()
	NewHealthHandler(registry, build).Register(engine)

	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.4.0", "abc123", "2026-03-01T08:00:00Z")

	assert.Equal(t, BuildInfo{
		Version:   "1.4.0",
		Commit:    "abc123",
		BuildTime: "2026-03-01T08:00:00Z",
		GoVersion: runtime.Version(),
	}, bi)
}

func TestHealthHandler_Liveness(t *testing.T) {
	w := get(healthRouter(mocks.NewMockHealthRegistry(t), BuildInfo{}), "/-/live")

	require.Equal(t, http.StatusOK, w.Code)

	var resp livenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "0s", resp.Uptime)
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		status     ports.HealthStatus
		picsum     *ports.CheckResult
		wantStatus int
	}{
		{
			name:       "healthy",
			status:     ports.HealthStatusHealthy,
			picsum:     &ports.CheckResult{Status: ports.HealthStatusHealthy, Optional: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "image service down",
			status:     ports.HealthStatusDegraded,
			picsum:     &ports.CheckResult{Status: ports.HealthStatusUnhealthy, Optional: true, Message: "circuit breaker open"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "store down",
			status:     ports.HealthStatusUnhealthy,
			picsum:     &ports.CheckResult{Status: ports.HealthStatusHealthy, Optional: true},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := mocks.NewMockHealthRegistry(t)
			registry.EXPECT().CheckAll(mock.Anything).Return(&ports.HealthResult{
				Status: tt.status,
				Checks: map[string]*ports.CheckResult{
					"bolt":   {Status: ports.HealthStatusHealthy},
					"picsum": tt.picsum,
				},
			})

			w := get(healthRouter(registry, BuildInfo{Version: "1.4.0"}), "/-/ready")

			require.Equal(t, tt.wantStatus, w.Code)

			var resp readinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, "1.4.0", resp.Version)
			assert.Equal(t, tt.picsum.Message, resp.Checks["picsum"].Message)
		})
	}
}

func TestHealthHandler_Build(t *testing.T) {
	build := BuildInfo{Version: "1.4.0", Commit: "def456", BuildTime: "2026-03-01T08:00:00Z", GoVersion: "go1.25.7"}

	w := get(healthRouter(mocks.NewMockHealthRegistry(t), build), "/-/build")

	require.Equal(t, http.StatusOK, w.Code)

	var resp BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, build, resp)
}

func TestHealthHandler_Metrics(t *testing.T) {
	w := get(healthRouter(mocks.NewMockHealthRegistry(t), BuildInfo{}), "/-/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}
