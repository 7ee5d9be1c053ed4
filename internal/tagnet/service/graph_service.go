package service

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/graph"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/layout"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/normalize"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/pivot"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/query"
)

const (
	DefaultTagLimit   = 30
	DefaultGraphLimit = 100
)

// GraphRequest selects the co-occurrence rows a graph is built from.
type GraphRequest struct {
	Window          domain.Window
	Limit           int
	RequireNonEmpty bool
}

// Options configures a GraphService.
type Options struct {
	StrictRows    bool
	QueryTimeout  time.Duration
	LayoutTimeout time.Duration
}

// GraphService wires the query store to the graph pipeline. It holds no
// per-request state: every call rebuilds its graph from fresh rows.
type GraphService struct {
	store       query.Store
	normalizer  *normalize.Normalizer
	coordinator *layout.Coordinator
	opts        Options
	log         *logger.Logger
}

func NewGraphService(store query.Store, coordinator *layout.Coordinator, opts Options, log *logger.Logger) *GraphService {
	log = logger.OrNop(log)
	return &GraphService{
		store:       store,
		normalizer:  normalize.New(log, normalize.Options{Strict: opts.StrictRows}),
		coordinator: coordinator,
		opts:        opts,
		log:         log,
	}
}

// Tags returns the most used tags overall.
func (s *GraphService) Tags(ctx context.Context, limit int) ([]domain.TagCount, error) {
	if limit <= 0 {
		limit = DefaultTagLimit
	}
	qctx, cancel := s.queryContext(ctx)
	defer cancel()

	rows, err := s.store.TopTags(qctx, limit)
	if err != nil {
		return nil, queryErr("top tags", err)
	}
	out, _, err := s.normalizer.Totals(rows)
	return out, err
}

// Totals returns the most used tags within a window.
func (s *GraphService) Totals(ctx context.Context, w domain.Window, limit int) ([]domain.TagCount, error) {
	if limit <= 0 {
		limit = DefaultTagLimit
	}
	qctx, cancel := s.queryContext(ctx)
	defer cancel()

	rows, err := s.store.TopTagsBetween(qctx, w, limit)
	if err != nil {
		return nil, queryErr("tag totals", err)
	}
	out, _, err := s.normalizer.Totals(rows)
	return out, err
}

// Graph builds the co-occurrence graph for a request.
func (s *GraphService) Graph(ctx context.Context, req GraphRequest) (*domain.Graph, error) {
	if req.Limit <= 0 {
		req.Limit = DefaultGraphLimit
	}
	qctx, cancel := s.queryContext(ctx)
	defer cancel()

	rows, err := s.store.Cooccurrence(qctx, req.Window, req.Limit)
	if err != nil {
		return nil, queryErr("co-occurrence", err)
	}

	pairs, rep, err := s.normalizer.Cooccurrence(rows)
	if err != nil {
		return nil, err
	}

	g, err := graph.Assemble(pairs, graph.AssembleOptions{RequireNonEmpty: req.RequireNonEmpty})
	if err != nil {
		return nil, err
	}

	s.log.For(ctx).Info("graph assembled",
		"rows", rep.Total, "dropped", len(rep.Dropped), "nodes", len(g.Nodes), "links", len(g.Links))
	return g, nil
}

// PositionedGraph builds the graph and runs it through the layout engine.
func (s *GraphService) PositionedGraph(ctx context.Context, req GraphRequest) (*domain.PositionedGraph, error) {
	g, err := s.Graph(ctx, req)
	if err != nil {
		return nil, err
	}

	lctx, cancel := ctx, context.CancelFunc(func() {})
	if s.opts.LayoutTimeout > 0 {
		lctx, cancel = context.WithTimeout(ctx, s.opts.LayoutTimeout)
	}
	defer cancel()

	return s.coordinator.Apply(lctx, g)
}

// Monthly returns the pivoted monthly series for the given tags.
func (s *GraphService) Monthly(ctx context.Context, tags []string) ([]domain.MonthlyRecord, error) {
	if len(tags) == 0 {
		return []domain.MonthlyRecord{}, nil
	}
	qctx, cancel := s.queryContext(ctx)
	defer cancel()

	rows, err := s.store.Monthly(qctx, tags)
	if err != nil {
		return nil, queryErr("monthly", err)
	}

	counts, _, err := s.normalizer.Monthly(rows)
	if err != nil {
		return nil, err
	}
	return pivot.Pivot(counts), nil
}

func (s *GraphService) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.QueryTimeout)
	}
	return ctx, func() {}
}

func queryErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrQueryFailed, err)
}
