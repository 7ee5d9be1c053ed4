package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/cache"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/layout"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/query"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/service"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/warmup"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipeline struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
	mr     *miniredis.Miniredis
	cached *cache.CachedStore
	svc    *service.GraphService
}

func setupPipeline(t *testing.T) *pipeline {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cached := cache.NewCachedStore(query.NewPostgresStore(db, "Asia/Tokyo"), rdb, time.Minute, nil)
	svc := service.NewGraphService(cached, layout.NewCoordinator(layout.NewForceEngine(60), nil),
		service.Options{QueryTimeout: 5 * time.Second, LayoutTimeout: 5 * time.Second}, nil)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "tagnet-backend",
		Version:     "test",
		Redis:       rdb,
		Service:     svc,
	})
	return &pipeline{router: router, mock: mock, mr: mr, cached: cached, svc: svc}
}

func (p *pipeline) get(t *testing.T, url string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	p.router.ServeHTTP(rr, req)
	return rr
}

func cooccurrenceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"tag1", "tag2", "count"}).
		AddRow("docker", "go", int64(5)).
		AddRow("go", "k8s", int64(3)).
		AddRow(nil, "rust", int64(2)).
		AddRow("aws", "lambda", int64(1))
}

func TestGraphPipeline_PositionedGraphIsServedFromCachedRows(t *testing.T) {
	p := setupPipeline(t)
	w := domain.DefaultWindow()

	p.mock.ExpectQuery(`SELECT a.name AS tag1, b.name AS tag2`).
		WithArgs(w.Start, w.End, service.DefaultGraphLimit).
		WillReturnRows(cooccurrenceRows())

	first := p.get(t, "/api/v1/graph?layout=true")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	var pg domain.PositionedGraph
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &pg))

	names := make([]string, len(pg.Nodes))
	for i, n := range pg.Nodes {
		assert.Equal(t, i, n.ID)
		names[i] = n.Name
	}
	assert.Equal(t, []string{"docker", "go", "k8s", "aws", "lambda"}, names)
	assert.Equal(t, int64(8), pg.Nodes[1].Count)
	assert.Equal(t, []domain.Link{
		{Source: 0, Target: 1, Count: 5},
		{Source: 1, Target: 2, Count: 3},
		{Source: 3, Target: 4, Count: 1},
	}, pg.Links)

	// the two components are packed side by side
	assert.Less(t, pg.Nodes[2].X, pg.Nodes[3].X)

	// second request hits Redis only and rebuilds the same graph
	second := p.get(t, "/api/v1/graph?layout=true")
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	require.NoError(t, p.mock.ExpectationsWereMet())

	keys := p.mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "tagnet:rows:")
}

func TestGraphPipeline_Monthly(t *testing.T) {
	p := setupPipeline(t)

	p.mock.ExpectQuery(`SELECT t.name AS tag`).
		WillReturnRows(sqlmock.NewRows([]string{"tag", "year_month", "count"}).
			AddRow("go", "2019-01-01", int64(2)).
			AddRow("rust", "2019-01-01", int64(1)).
			AddRow("go", "2019-02-01", int64(4)).
			AddRow("rust", "2019-02-01", nil))

	rr := p.get(t, "/api/v1/monthly?tags=go,rust")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[
		{"yearMonth": "2019-01-01", "go": 2, "rust": 1},
		{"yearMonth": "2019-02-01", "go": 4}
	]`, rr.Body.String())

	// tag order does not change the cache key
	rr = p.get(t, "/api/v1/monthly?tags=rust,go")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, p.mock.ExpectationsWereMet())
}

func TestGraphPipeline_WarmupRefreshesCache(t *testing.T) {
	p := setupPipeline(t)
	p.mock.MatchExpectationsInOrder(false)

	w := domain.DefaultWindow()
	tagsRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"tag", "count"}).AddRow("go", int64(9))
	}

	p.mock.ExpectQuery(`FROM item_tags t\s+GROUP BY`).
		WithArgs(service.DefaultTagLimit).
		WillReturnRows(tagsRows())
	p.mock.ExpectQuery(`WHERE i.created_at BETWEEN \$1 AND \$2\s+GROUP BY t.name`).
		WithArgs(w.Start, w.End, service.DefaultTagLimit).
		WillReturnRows(tagsRows())
	p.mock.ExpectQuery(`SELECT a.name AS tag1`).
		WithArgs(w.Start, w.End, service.DefaultGraphLimit).
		WillReturnRows(cooccurrenceRows())

	p.mr.Set("tagnet:rows:stale", "[]")

	sched := warmup.NewScheduler(p.svc, p.cached, time.Minute, nil)
	require.NoError(t, sched.RunOnce(context.Background()))
	require.NoError(t, p.mock.ExpectationsWereMet())

	assert.False(t, p.mr.Exists("tagnet:rows:stale"))
	assert.Len(t, p.mr.Keys(), 3)

	// warmed rows answer the default requests without touching the database
	rr := p.get(t, "/api/v1/tags")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"tag":"go","count":9}]`, rr.Body.String())

	rr = p.get(t, "/api/v1/graph")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, p.mock.ExpectationsWereMet())
}

func TestGraphPipeline_DatabaseFailure(t *testing.T) {
	p := setupPipeline(t)

	p.mock.ExpectQuery(`SELECT a.name AS tag1`).WillReturnError(assert.AnError)

	rr := p.get(t, "/api/v1/graph")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Empty(t, p.mr.Keys())

	rr = p.get(t, "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"cache":"up"`)
}
