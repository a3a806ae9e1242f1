package obs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthRouter(h HealthHandlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/livez", h.Livez)
	router.GET("/readyz", h.Readyz)
	return router
}

func TestReadyzNamesFailingDependency(t *testing.T) {
	router := newHealthRouter(HealthHandlers{Checks: []Check{
		{Name: "mongo", Probe: func(ctx context.Context) error { return nil }},
		{Name: "kafka", Probe: func(ctx context.Context) error { return errors.New("broker unreachable") }},
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kafka":"broker unreachable"`)
	assert.NotContains(t, rec.Body.String(), `"mongo"`)
}

func TestReadyzWithoutChecksIsReady(t *testing.T) {
	router := newHealthRouter(HealthHandlers{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
