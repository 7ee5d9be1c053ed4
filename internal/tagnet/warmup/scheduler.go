package warmup

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/service"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Invalidator drops cached rows before a refresh.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Scheduler periodically re-runs the default queries so the row cache is
// warm for the first visitor.
type Scheduler struct {
	svc         *service.GraphService
	invalidator Invalidator
	timeout     time.Duration
	log         *logger.Logger
	cron        *cron.Cron
}

func NewScheduler(svc *service.GraphService, invalidator Invalidator, timeout time.Duration, log *logger.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		svc:         svc,
		invalidator: invalidator,
		timeout:     timeout,
		log:         logger.OrNop(log),
		cron:        cron.New(cron.WithSeconds()),
	}
}

// Start schedules the warm-up on spec (six-field cron syntax).
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			s.log.Error("cache warm-up failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid warm-up schedule %q: %w", spec, err)
	}

	s.log.Info("cache warm-up scheduled", "spec", spec)
	s.cron.Start()
	return nil
}

// Stop waits for a running warm-up to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce refreshes the default tag list and graph rows concurrently.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.svc.Tags(gctx, service.DefaultTagLimit)
		return err
	})
	g.Go(func() error {
		_, err := s.svc.Totals(gctx, domain.DefaultWindow(), service.DefaultTagLimit)
		return err
	})
	g.Go(func() error {
		_, err := s.svc.Graph(gctx, service.GraphRequest{
			Window: domain.DefaultWindow(),
			Limit:  service.DefaultGraphLimit,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.log.Info("cache warm-up complete", "latency", time.Since(start))
	return nil
}
