package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/metrics"
	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/workspace/aggregate"
)

const cliDependency = "hcpt"

// SelectorConfig is the configuration of the backend selector.
type SelectorConfig struct {
	Mode Mode
	// HTTP is the HTTP API backend, required unless the mode is CLI.
	HTTP Backend
	// CLIDetector is required unless the mode is HTTP.
	CLIDetector     CLIDetector
	MetricsRecorder metrics.Recorder
	Logger          log.Logger
}

func (c *SelectorConfig) defaults() error {
	if c.Mode == "" {
		c.Mode = ModeAuto
	}

	switch c.Mode {
	case ModeAuto:
		if c.HTTP == nil {
			return fmt.Errorf("HTTP backend is required in %s mode", c.Mode)
		}
		if c.CLIDetector == nil {
			return fmt.Errorf("CLI detector is required in %s mode", c.Mode)
		}
	case ModeHTTP:
		if c.HTTP == nil {
			return fmt.Errorf("HTTP backend is required in %s mode", c.Mode)
		}
	case ModeCLI:
		if c.CLIDetector == nil {
			return fmt.Errorf("CLI detector is required in %s mode", c.Mode)
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "provider.Selector"})

	return nil
}

// Selector chooses the backend on the first use and falls back from the CLI to the
// HTTP API when the CLI fails.
//
// It's safe to use concurrently, the detection is only executed once.
type Selector struct {
	mode        Mode
	http        Backend
	cliDetector CLIDetector
	recorder    metrics.Recorder
	logger      log.Logger

	// resolveMu serializes the resolution, mu protects the state.
	resolveMu  sync.Mutex
	mu         sync.RWMutex
	state      State
	active     Backend
	activeType model.ProviderType
	info       *model.ProviderInfo
	resolveErr error
}

func NewSelector(config SelectorConfig) (*Selector, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Selector{
		mode:        config.Mode,
		http:        config.HTTP,
		cliDetector: config.CLIDetector,
		recorder:    config.MetricsRecorder,
		logger:      config.Logger,
		state:       StateUnresolved,
	}, nil
}

// State returns the current selection state.
func (s *Selector) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ActiveProviderInfo returns the information of the active backend, nil if no backend has been resolved yet.
func (s *Selector) ActiveProviderInfo() *model.ProviderInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return nil
	}

	info := *s.info
	return &info
}

// Reset forgets the selected backend, the next operation will resolve it again.
func (s *Selector) Reset() {
	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateUnresolved
	s.active = nil
	s.activeType = ""
	s.info = nil
	s.resolveErr = nil
}

// Resolve selects the backend if not already selected.
func (s *Selector) Resolve(ctx context.Context) error {
	_, _, err := s.resolve(ctx)
	return err
}

func (s *Selector) current() (Backend, model.ProviderType, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.active != nil:
		return s.active, s.activeType, true, nil
	case s.resolveErr != nil:
		return nil, "", true, s.resolveErr
	}

	return nil, "", false, nil
}

func (s *Selector) resolve(ctx context.Context) (Backend, model.ProviderType, error) {
	if b, t, ok, err := s.current(); ok {
		return b, t, err
	}

	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()

	// Someone could have resolved while we were waiting.
	if b, t, ok, err := s.current(); ok {
		return b, t, err
	}

	s.setState(StateResolving)

	switch s.mode {
	case ModeHTTP:
		s.activate(ctx, s.http, model.ProviderTypeHTTP)
		s.logger.Infof("Using HTTP API provider")
		return s.http, model.ProviderTypeHTTP, nil

	case ModeCLI:
		b, err := s.cliDetector.DetectCLI(ctx)
		if err != nil {
			err = asConfigurationError(err)
			s.mu.Lock()
			s.state = StateUnresolved
			s.resolveErr = err
			s.mu.Unlock()
			return nil, "", err
		}
		s.activate(ctx, b, model.ProviderTypeHCPT)
		s.logger.Infof("Using hcpt CLI provider")
		return b, model.ProviderTypeHCPT, nil

	default:
		b, err := s.cliDetector.DetectCLI(ctx)
		if err != nil {
			s.logger.Infof("hcpt CLI not available, using HTTP API provider: %s", err)
			s.activate(ctx, s.http, model.ProviderTypeHTTP)
			return s.http, model.ProviderTypeHTTP, nil
		}
		s.activate(ctx, b, model.ProviderTypeHCPT)
		s.logger.Infof("Using hcpt CLI provider")
		return b, model.ProviderTypeHCPT, nil
	}
}

func (s *Selector) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Selector) activate(ctx context.Context, b Backend, t model.ProviderType) {
	info := b.ProviderInfo(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = b
	s.activeType = t
	s.info = &info
	s.resolveErr = nil
	s.state = StateHTTPActive
	if t == model.ProviderTypeHCPT {
		s.state = StateCLIActive
	}
}

// switchToHTTP moves from the CLI to the HTTP backend, returns true if this call made the switch.
func (s *Selector) switchToHTTP(ctx context.Context, from Backend) bool {
	info := s.http.ProviderInfo(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != from || s.activeType != model.ProviderTypeHCPT {
		return false
	}

	s.active = s.http
	s.activeType = model.ProviderTypeHTTP
	s.info = &info
	s.state = StateHTTPActive

	return true
}

func asConfigurationError(err error) error {
	var cerr *internalerrors.ConfigurationError
	if errors.As(err, &cerr) {
		return cerr
	}

	return &internalerrors.ConfigurationError{MissingDependency: cliDependency, Reason: err.Error()}
}

// execute runs the operation on the active backend, a CLI failure in auto mode switches
// to the HTTP backend and retries the operation there once.
func execute[T any](ctx context.Context, s *Selector, op string, f func(ctx context.Context, b Backend) (T, error)) (T, error) {
	b, t, err := s.resolve(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	res, err := measure(ctx, s, b, t, op, f)
	if err == nil || t != model.ProviderTypeHCPT || s.mode != ModeAuto {
		return res, err
	}

	if s.switchToHTTP(ctx, b) {
		s.logger.Warningf("%s failed with hcpt, falling back to HTTP API provider: %s", op, err)
	} else {
		s.logger.Debugf("%s failed with hcpt, retrying with HTTP API provider: %s", op, err)
	}
	s.recorder.IncProviderFallback(ctx, op)

	return measure(ctx, s, s.http, model.ProviderTypeHTTP, op, f)
}

func measure[T any](ctx context.Context, s *Selector, b Backend, t model.ProviderType, op string, f func(ctx context.Context, b Backend) (T, error)) (T, error) {
	start := time.Now()
	res, err := f(ctx, b)
	s.recorder.ObserveProviderOperation(ctx, string(t), op, err == nil, time.Since(start))
	return res, err
}

func (s *Selector) ListWorkspacesBasic(ctx context.Context, org, search string, page, size int) (model.Page[model.Workspace], error) {
	return execute(ctx, s, "ListWorkspacesBasic", func(ctx context.Context, b Backend) (model.Page[model.Workspace], error) {
		return b.ListWorkspacesBasic(ctx, org, search, page, size)
	})
}

func (s *Selector) ListWorkspacesDetailed(ctx context.Context, org, search string, page, size int) (model.Page[model.WorkspaceWithDetails], error) {
	return execute(ctx, s, "ListWorkspacesDetailed", func(ctx context.Context, b Backend) (model.Page[model.WorkspaceWithDetails], error) {
		return b.ListWorkspacesDetailed(ctx, org, search, page, size)
	})
}

// ListAllWorkspacesBasic lists all the workspaces, in one go if the backend supports it, paginating otherwise.
func (s *Selector) ListAllWorkspacesBasic(ctx context.Context, org, search string) ([]model.Workspace, error) {
	return execute(ctx, s, "ListAllWorkspacesBasic", func(ctx context.Context, b Backend) ([]model.Workspace, error) {
		if al, ok := b.(AllLister); ok {
			return al.ListAllWorkspacesBasic(ctx, org, search)
		}
		return aggregate.ListAllWorkspacesBasic(ctx, b, org, search)
	})
}

// ListAllWorkspacesDetailed lists all the workspaces with details, in one go if the backend supports it, paginating otherwise.
func (s *Selector) ListAllWorkspacesDetailed(ctx context.Context, org, search string) ([]model.WorkspaceWithDetails, error) {
	return execute(ctx, s, "ListAllWorkspacesDetailed", func(ctx context.Context, b Backend) ([]model.WorkspaceWithDetails, error) {
		if al, ok := b.(AllLister); ok {
			return al.ListAllWorkspacesDetailed(ctx, org, search)
		}
		return aggregate.ListAllWorkspacesDetailed(ctx, b, org, search)
	})
}

func (s *Selector) GetWorkspace(ctx context.Context, org, name string) (*model.Workspace, error) {
	return execute(ctx, s, "GetWorkspace", func(ctx context.Context, b Backend) (*model.Workspace, error) {
		return b.GetWorkspace(ctx, org, name)
	})
}

func (s *Selector) ListRuns(ctx context.Context, workspaceID string, page, size int) (model.Page[model.Run], error) {
	return execute(ctx, s, "ListRuns", func(ctx context.Context, b Backend) (model.Page[model.Run], error) {
		return b.ListRuns(ctx, workspaceID, page, size)
	})
}

// GetOrganizations always uses the HTTP API when available, the CLI can't list organizations
// and this way a CLI backend is not demoted because of it.
func (s *Selector) GetOrganizations(ctx context.Context) ([]model.Organization, error) {
	const op = "GetOrganizations"

	if s.http != nil {
		return measure(ctx, s, s.http, model.ProviderTypeHTTP, op, func(ctx context.Context, b Backend) ([]model.Organization, error) {
			return b.GetOrganizations(ctx)
		})
	}

	return execute(ctx, s, op, func(ctx context.Context, b Backend) ([]model.Organization, error) {
		return b.GetOrganizations(ctx)
	})
}

// ProviderInfo resolves the backend and returns its information.
func (s *Selector) ProviderInfo(ctx context.Context) model.ProviderInfo {
	if _, _, err := s.resolve(ctx); err != nil {
		return model.ProviderInfo{}
	}

	if info := s.ActiveProviderInfo(); info != nil {
		return *info
	}

	return model.ProviderInfo{}
}

// Capabilities returns the capabilities of the active backend, none if not resolved.
func (s *Selector) Capabilities() model.Capabilities {
	b, _, ok, err := s.current()
	if !ok || err != nil {
		return model.Capabilities{}
	}

	return b.Capabilities()
}
