package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/tagnet-backend/config"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/layout"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/service"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyStore struct{}

func (emptyStore) TopTags(context.Context, int) ([]domain.TotalRow, error) { return nil, nil }
func (emptyStore) TopTagsBetween(context.Context, domain.Window, int) ([]domain.TotalRow, error) {
	return nil, nil
}
func (emptyStore) Cooccurrence(context.Context, domain.Window, int) ([]domain.CooccurrenceRow, error) {
	return nil, nil
}
func (emptyStore) Monthly(context.Context, []string) ([]domain.MonthlyRow, error) { return nil, nil }

func TestBuildRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := service.NewGraphService(emptyStore{}, layout.NewCoordinator(nil, nil), service.Options{}, nil)
	r := BuildRouter(RouterDeps{ServiceName: "tagnet", Version: "test", Service: svc})

	for _, path := range []string{"/health", "/api/v1/tags", "/api/v1/graph", "/api/v1/monthly"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Origin", "http://example.com")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader), path)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"), path)
	}
}

func TestOpenRedis(t *testing.T) {
	client, err := OpenRedis(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	mr := miniredis.RunT(t)
	client, err = OpenRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = OpenRedis(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestNewLayoutEngine(t *testing.T) {
	assert.IsType(t, &layout.ForceEngine{}, NewLayoutEngine(config.LayoutConfig{Engine: config.LayoutEngineForce}))
	assert.IsType(t, &layout.HTTPEngine{}, NewLayoutEngine(config.LayoutConfig{
		Engine: config.LayoutEngineHTTP,
		URL:    "http://layout:9000",
	}))
}

func TestSetGinMode(t *testing.T) {
	defer gin.SetMode(gin.TestMode)

	SetGinMode("Production")
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	SetGinMode("development")
	assert.Equal(t, gin.DebugMode, gin.Mode())

	SetGinMode("test")
	assert.Equal(t, gin.TestMode, gin.Mode())
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) error { return nil }

func TestStartWarmup(t *testing.T) {
	svc := service.NewGraphService(emptyStore{}, layout.NewCoordinator(nil, nil), service.Options{}, nil)

	assert.Nil(t, StartWarmup(config.WarmupConfig{}, svc, nopInvalidator{}, time.Minute, nil))
	assert.Nil(t, StartWarmup(config.WarmupConfig{Cron: "0 0 */6 * * *"}, svc, nil, time.Minute, nil))
	assert.Nil(t, StartWarmup(config.WarmupConfig{Cron: "not a cron spec"}, svc, nopInvalidator{}, time.Minute, nil))

	sched := StartWarmup(config.WarmupConfig{Cron: "0 0 */6 * * *"}, svc, nopInvalidator{}, time.Minute, nil)
	require.NotNil(t, sched)
	sched.Stop()
}
