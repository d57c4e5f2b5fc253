package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/model"
)

// WorkspaceLister lists all the workspaces of an organization.
type WorkspaceLister interface {
	ListAllWorkspacesBasic(ctx context.Context, org, search string) ([]model.Workspace, error)
	ListAllWorkspacesDetailed(ctx context.Context, org, search string) ([]model.WorkspaceWithDetails, error)
}

// Query is a workspace search.
type Query struct {
	Org    string
	Search string
}

// Phase is how complete a view is.
type Phase int

const (
	// PhaseBasic views only have the basic data, the details are still loading.
	PhaseBasic Phase = iota
	// PhaseComplete views have all the data that could be obtained.
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseBasic:
		return "basic"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// View is the state of a query result at a point in time.
type View struct {
	Query      Query
	Phase      Phase
	Workspaces []model.WorkspaceView
	// BasicErr and DetailsErr are independent, one query can fail while the other succeeds.
	BasicErr   error
	DetailsErr error
}

// Err returns an error only when there is no data at all to show.
func (v View) Err() error {
	if v.Phase != PhaseComplete {
		return v.BasicErr
	}

	switch {
	case v.BasicErr != nil && v.DetailsErr != nil:
		return fmt.Errorf("could not list workspaces: %w", errors.Join(v.BasicErr, v.DetailsErr))
	case v.BasicErr != nil && len(v.Workspaces) == 0:
		return v.BasicErr
	}

	return nil
}

// FetcherConfig is the configuration of the workspace fetcher.
type FetcherConfig struct {
	Lister WorkspaceLister
	Logger log.Logger
}

func (c *FetcherConfig) defaults() error {
	if c.Lister == nil {
		return fmt.Errorf("workspace lister is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "aggregate.Fetcher"})

	return nil
}

// Fetcher runs the fast basic and the slow detailed workspace queries at the same time
// and fuses their results.
type Fetcher struct {
	lister WorkspaceLister
	logger log.Logger
}

func NewFetcher(config FetcherConfig) (*Fetcher, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Fetcher{
		lister: config.Lister,
		logger: config.Logger,
	}, nil
}

type basicResult struct {
	wks []model.Workspace
	err error
}

type detailsResult struct {
	wks []model.WorkspaceWithDetails
	err error
}

// Fetch returns the views of the query as they are available. If the basic data arrives
// first a basic view is sent, the complete view is always the last one and then the
// channel is closed. The channel is buffered, not reading it doesn't block anything.
func (f *Fetcher) Fetch(ctx context.Context, q Query) <-chan View {
	out := make(chan View, 2)
	logger := f.logger.WithValues(log.Kv{"org": q.Org, "search": q.Search})

	basicC := make(chan basicResult, 1)
	detailsC := make(chan detailsResult, 1)
	go func() {
		wks, err := f.lister.ListAllWorkspacesBasic(ctx, q.Org, q.Search)
		basicC <- basicResult{wks: wks, err: err}
	}()
	go func() {
		wks, err := f.lister.ListAllWorkspacesDetailed(ctx, q.Org, q.Search)
		detailsC <- detailsResult{wks: wks, err: err}
	}()

	go func() {
		defer close(out)

		var (
			basic   *basicResult
			details *detailsResult
		)
		for basic == nil || details == nil {
			select {
			case r := <-basicC:
				basic = &r
				if r.err != nil {
					logger.Warningf("Basic workspace list failed: %s", r.err)
				}

				// Show the basic data while the details are loading.
				if details == nil {
					out <- View{Query: q, Phase: PhaseBasic, Workspaces: Basic(r.wks), BasicErr: r.err}
				}
			case r := <-detailsC:
				details = &r
				if r.err != nil {
					logger.Warningf("Detailed workspace list failed: %s", r.err)
				}
			}
		}

		out <- complete(q, *basic, *details)
	}()

	return out
}

// FetchAll blocks until both queries finish and returns the complete view.
func (f *Fetcher) FetchAll(ctx context.Context, q Query) View {
	var last View
	for v := range f.Fetch(ctx, q) {
		last = v
	}

	return last
}

func complete(q Query, basic basicResult, details detailsResult) View {
	v := View{
		Query:      q,
		Phase:      PhaseComplete,
		BasicErr:   basic.err,
		DetailsErr: details.err,
	}

	switch {
	case basic.err == nil && details.err == nil:
		v.Workspaces = Merge(basic.wks, details.wks)
	case basic.err == nil:
		v.Workspaces = Basic(basic.wks)
	case details.err == nil:
		// The details have all the basic data.
		v.Workspaces = Detailed(details.wks)
	default:
		v.Workspaces = []model.WorkspaceView{}
	}

	return v
}

// Session runs searches where each new search supersedes the previous ones.
//
// Superseded searches are not cancelled, their results are discarded.
type Session struct {
	fetcher    *Fetcher
	generation atomic.Uint64
}

func NewSession(f *Fetcher) *Session {
	return &Session{fetcher: f}
}

// Search starts a new search, the views of the previous searches stop being delivered.
func (s *Session) Search(ctx context.Context, q Query) <-chan View {
	gen := s.generation.Add(1)
	in := s.fetcher.Fetch(ctx, q)

	out := make(chan View, 2)
	go func() {
		defer close(out)
		for v := range in {
			if s.generation.Load() != gen {
				continue
			}
			out <- v
		}
	}()

	return out
}
