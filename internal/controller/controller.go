package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/metrics"
	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/workspace/aggregate"
	wkprocess "github.com/slok/tfe-workspaces/internal/workspace/process"
)

// WorkspaceFetcher returns the fused view of a workspace query.
type WorkspaceFetcher interface {
	FetchAll(ctx context.Context, q aggregate.Query) aggregate.View
}

//go:generate mockery --case underscore --output controllermock --outpkg controllermock --name WorkspaceFetcher

type RefresherConfig struct {
	Logger             log.Logger
	Interval           time.Duration
	Fetcher            WorkspaceFetcher
	Query              aggregate.Query
	WorkspaceProcessor wkprocess.Processor
	MetricsRecorder    metrics.Recorder
}

func (c *RefresherConfig) defaults() error {
	if c.Interval == 0 {
		return fmt.Errorf("interval can't be 0")
	}

	if c.Fetcher == nil {
		return fmt.Errorf("workspace fetcher is required")
	}

	if c.Query.Org == "" {
		return fmt.Errorf("organization is required")
	}

	if c.WorkspaceProcessor == nil {
		c.WorkspaceProcessor = wkprocess.NoopProcessor
	}

	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "controller.Refresher"})

	return nil
}

// Status is the state of the last refresh.
type Status struct {
	Ready       bool      `json:"ready"`
	Workspaces  int       `json:"workspaces"`
	RefreshedAt time.Time `json:"refreshed_at"`
	LastError   string    `json:"last_error,omitempty"`
}

// Refresher keeps an up to date snapshot of the workspaces of an organization, refreshing
// it in regular intervals.
type Refresher struct {
	logger     log.Logger
	interval   time.Duration
	fetcher    WorkspaceFetcher
	query      aggregate.Query
	wprocessor wkprocess.Processor
	recorder   metrics.Recorder

	mu          sync.RWMutex
	workspaces  []model.WorkspaceView
	refreshedAt time.Time
	lastErr     error
}

func NewRefresher(config RefresherConfig) (*Refresher, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Refresher{
		logger:     config.Logger,
		interval:   config.Interval,
		fetcher:    config.Fetcher,
		query:      config.Query,
		wprocessor: config.WorkspaceProcessor,
		recorder:   config.MetricsRecorder,
	}, nil
}

// Run refreshes the workspaces until the context is done.
func (r *Refresher) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	// We run this once outside the loop so we don't wait for the first tick.
	r.logRefresh(r.Refresh(ctx))

	for {
		select {
		case <-ctx.Done():
			r.logger.Infof("Stopping controller...")
			return ctx.Err()
		case <-t.C:
			r.logRefresh(r.Refresh(ctx))
		}
	}
}

func (r *Refresher) logRefresh(err error) {
	if err != nil {
		r.logger.Errorf("Workspaces refresh failed: %s", err)
		return
	}
	r.logger.Debugf("Workspaces refresh finished")
}

// Refresh fetches and processes the workspaces once. On failure the previous workspaces
// are kept.
func (r *Refresher) Refresh(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		r.recorder.ObserveRefresh(ctx, err == nil, time.Since(start))
		r.mu.Lock()
		r.lastErr = err
		r.mu.Unlock()
	}()

	v := r.fetcher.FetchAll(ctx, r.query)
	if err := v.Err(); err != nil {
		return fmt.Errorf("could not fetch workspaces: %w", err)
	}

	if len(v.Workspaces) == 0 {
		r.logger.Warningf("0 workspaces selected")
	}

	wks, err := r.wprocessor.Process(ctx, v.Workspaces)
	if err != nil {
		return fmt.Errorf("workspaces processing failed: %w", err)
	}

	r.mu.Lock()
	r.workspaces = wks
	r.refreshedAt = time.Now().UTC()
	r.mu.Unlock()

	return nil
}

// ListWorkspaces returns the workspaces of the latest successful refresh.
func (r *Refresher) ListWorkspaces(_ context.Context) ([]model.WorkspaceView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.refreshedAt.IsZero() {
		if r.lastErr != nil {
			return nil, fmt.Errorf("workspaces not available: %w", r.lastErr)
		}
		return []model.WorkspaceView{}, nil
	}

	wks := make([]model.WorkspaceView, len(r.workspaces))
	copy(wks, r.workspaces)

	return wks, nil
}

// Status returns the state of the refresher.
func (r *Refresher) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Status{
		Ready:       !r.refreshedAt.IsZero(),
		Workspaces:  len(r.workspaces),
		RefreshedAt: r.refreshedAt,
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}

	return s
}
