package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotHennadii/fogoctl/internal/launch"
	"github.com/NotHennadii/fogoctl/internal/python"
	"github.com/NotHennadii/fogoctl/pkg/logger"
)

func TestStatusEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	env := python.NewEnv("venv")
	router := NewRouter("0.1.0", env, launch.NewStatus())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "0.1.0", resp.Version)
	assert.Equal(t, env.Python(), resp.Python)
	assert.Equal(t, "venv", resp.EnvRoot)
	assert.False(t, resp.Bot.Running)
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := NewRouter("0.1.0", python.NewEnv("venv"), launch.NewStatus())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fogoctl_launches_total")
}

func TestUnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := NewRouter("0.1.0", python.NewEnv("venv"), launch.NewStatus())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerStartShutdown(t *testing.T) {
	router := NewRouter("0.1.0", python.NewEnv("venv"), launch.NewStatus())

	srv := NewServer("127.0.0.1:0", router, logger.Nop())
	srv.Start()
	srv.Shutdown()
}
