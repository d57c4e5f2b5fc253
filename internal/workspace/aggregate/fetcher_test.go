package aggregate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/workspace/aggregate"
)

// testLister returns the configured results, the calls block until their release channel is closed.
type testLister struct {
	basic          []model.Workspace
	basicErr       error
	basicRelease   chan struct{}
	detailed       []model.WorkspaceWithDetails
	detailedErr    error
	detailsRelease chan struct{}
}

func newTestLister() *testLister {
	return &testLister{
		basicRelease:   make(chan struct{}),
		detailsRelease: make(chan struct{}),
	}
}

func (t *testLister) ListAllWorkspacesBasic(ctx context.Context, org, search string) ([]model.Workspace, error) {
	<-t.basicRelease
	return t.basic, t.basicErr
}

func (t *testLister) ListAllWorkspacesDetailed(ctx context.Context, org, search string) ([]model.WorkspaceWithDetails, error) {
	<-t.detailsRelease
	return t.detailed, t.detailedErr
}

func viewIDs(v aggregate.View) []string {
	ids := []string{}
	for _, w := range v.Workspaces {
		ids = append(ids, w.ID)
	}
	return ids
}

func receive(t *testing.T, c <-chan aggregate.View) aggregate.View {
	t.Helper()
	select {
	case v, ok := <-c:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for view")
	}
	return aggregate.View{}
}

func assertClosed(t *testing.T, c <-chan aggregate.View) {
	t.Helper()
	select {
	case _, ok := <-c:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		assert.Fail(t, "timeout waiting for channel close")
	}
}

func TestFetcherFetchBasicFirst(t *testing.T) {
	assert := assert.New(t)

	l := newTestLister()
	l.basic = []model.Workspace{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	l.detailed = []model.WorkspaceWithDetails{
		{Workspace: model.Workspace{ID: "1"}},
		{Workspace: model.Workspace{ID: "3"}},
	}
	f, err := aggregate.NewFetcher(aggregate.FetcherConfig{Lister: l})
	require.NoError(t, err)

	views := f.Fetch(context.TODO(), aggregate.Query{Org: "acme"})

	// Basic arrives first.
	close(l.basicRelease)
	v := receive(t, views)
	assert.Equal(aggregate.PhaseBasic, v.Phase)
	assert.Equal([]string{"1", "2", "3"}, viewIDs(v))
	for _, w := range v.Workspaces {
		assert.False(w.Enriched)
		assert.Equal(model.DriftStatusLoading, w.DriftStatus())
	}
	assert.NoError(v.Err())

	// Then the details.
	close(l.detailsRelease)
	v = receive(t, views)
	assert.Equal(aggregate.PhaseComplete, v.Phase)
	assert.Equal([]string{"1", "2", "3"}, viewIDs(v))
	assert.True(v.Workspaces[0].Enriched)
	assert.False(v.Workspaces[1].Enriched)
	assert.True(v.Workspaces[2].Enriched)
	assert.NoError(v.Err())

	assertClosed(t, views)
}

func TestFetcherFetchDetailsFirst(t *testing.T) {
	assert := assert.New(t)

	l := newTestLister()
	l.basic = []model.Workspace{{ID: "1"}, {ID: "2"}}
	l.detailed = []model.WorkspaceWithDetails{{Workspace: model.Workspace{ID: "1"}}, {Workspace: model.Workspace{ID: "2"}}}
	f, err := aggregate.NewFetcher(aggregate.FetcherConfig{Lister: l})
	require.NoError(t, err)

	views := f.Fetch(context.TODO(), aggregate.Query{Org: "acme"})

	// Details first, the basic view is not needed anymore.
	close(l.detailsRelease)
	time.Sleep(10 * time.Millisecond)
	close(l.basicRelease)

	v := receive(t, views)
	assert.Equal(aggregate.PhaseComplete, v.Phase)
	assert.Equal([]string{"1", "2"}, viewIDs(v))

	assertClosed(t, views)
}

func TestFetcherFetchAllErrors(t *testing.T) {
	tests := map[string]struct {
		basicErr    error
		detailedErr error
		expIDs      []string
		expEnriched bool
		expErr      bool
	}{
		"Failing details should return the basic workspaces not enriched.": {
			detailedErr: errTest,
			expIDs:      []string{"1", "2"},
			expEnriched: false,
		},

		"Failing basic should return the detailed workspaces enriched.": {
			basicErr:    errTest,
			expIDs:      []string{"1"},
			expEnriched: true,
		},

		"Failing both should fail.": {
			basicErr:    errTest,
			detailedErr: errTest,
			expIDs:      []string{},
			expErr:      true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			l := newTestLister()
			l.basic = []model.Workspace{{ID: "1"}, {ID: "2"}}
			l.basicErr = test.basicErr
			l.detailed = []model.WorkspaceWithDetails{{Workspace: model.Workspace{ID: "1"}}}
			l.detailedErr = test.detailedErr
			close(l.basicRelease)
			close(l.detailsRelease)

			f, err := aggregate.NewFetcher(aggregate.FetcherConfig{Lister: l})
			require.NoError(t, err)

			v := f.FetchAll(context.TODO(), aggregate.Query{Org: "acme"})
			assert.Equal(aggregate.PhaseComplete, v.Phase)
			assert.Equal(test.expIDs, viewIDs(v))
			assert.Equal(test.basicErr, v.BasicErr)
			assert.Equal(test.detailedErr, v.DetailsErr)
			for _, w := range v.Workspaces {
				assert.Equal(test.expEnriched, w.Enriched)
			}

			if test.expErr {
				assert.ErrorIs(v.Err(), errTest)
			} else {
				assert.NoError(v.Err())
			}
		})
	}
}

// queryLister returns one workspace named as the search, each search blocks until released.
type queryLister struct {
	release map[string]chan struct{}
}

func (q queryLister) ListAllWorkspacesBasic(ctx context.Context, org, search string) ([]model.Workspace, error) {
	<-q.release[search]
	return []model.Workspace{{ID: search}}, nil
}

func (q queryLister) ListAllWorkspacesDetailed(ctx context.Context, org, search string) ([]model.WorkspaceWithDetails, error) {
	<-q.release[search]
	return []model.WorkspaceWithDetails{{Workspace: model.Workspace{ID: search}}}, nil
}

func TestSessionSupersedesPreviousSearches(t *testing.T) {
	assert := assert.New(t)

	l := queryLister{release: map[string]chan struct{}{
		"w":   make(chan struct{}),
		"web": make(chan struct{}),
	}}
	f, err := aggregate.NewFetcher(aggregate.FetcherConfig{Lister: l})
	require.NoError(t, err)
	s := aggregate.NewSession(f)

	old := s.Search(context.TODO(), aggregate.Query{Org: "acme", Search: "w"})
	current := s.Search(context.TODO(), aggregate.Query{Org: "acme", Search: "web"})

	// The new search finishes first.
	close(l.release["web"])
	var last aggregate.View
	for v := range current {
		last = v
	}
	assert.Equal([]string{"web"}, viewIDs(last))
	assert.Equal("web", last.Query.Search)

	// The old search finishes later but its results are discarded.
	close(l.release["w"])
	for v := range old {
		assert.Fail("superseded search delivered a view", "view: %v", v)
	}
}

func TestNewFetcherConfig(t *testing.T) {
	_, err := aggregate.NewFetcher(aggregate.FetcherConfig{})
	assert.Error(t, err)
}
