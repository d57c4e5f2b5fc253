package aggregate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/workspace/aggregate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestListAll(t *testing.T) {
	tests := map[string]struct {
		pages    []model.Page[string]
		failPage int
		expItems []string
		expCalls int
		expErr   bool
	}{
		"A single page should return its items.": {
			pages: []model.Page[string]{
				{Items: []string{"a", "b"}, HasNextPage: false},
			},
			expItems: []string{"a", "b"},
			expCalls: 1,
		},

		"Multiple pages should be concatenated in order.": {
			pages: []model.Page[string]{
				{Items: []string{"a", "b"}, HasNextPage: true},
				{Items: []string{"c"}, HasNextPage: true},
				{Items: []string{"d", "e"}, HasNextPage: false},
			},
			expItems: []string{"a", "b", "c", "d", "e"},
			expCalls: 3,
		},

		"An empty first page should return no items.": {
			pages: []model.Page[string]{
				{Items: []string{}, HasNextPage: false},
			},
			expItems: []string{},
			expCalls: 1,
		},

		"An error on a page should stop and fail.": {
			pages: []model.Page[string]{
				{Items: []string{"a"}, HasNextPage: true},
				{Items: []string{"b"}, HasNextPage: true},
			},
			failPage: 2,
			expCalls: 2,
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			calls := 0
			gotItems, err := aggregate.ListAll(context.TODO(), func(ctx context.Context, page int) (model.Page[string], error) {
				calls++
				assert.Equal(calls, page)
				if page == test.failPage {
					return model.Page[string]{}, fmt.Errorf("something")
				}
				return test.pages[page-1], nil
			})

			assert.Equal(test.expCalls, calls)
			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expItems, gotItems)
			}
		})
	}
}

func TestListAllReturnsErrorsUnmodified(t *testing.T) {
	apiErr := &internalerrors.HTTPError{StatusCode: 500}

	_, err := aggregate.ListAll(context.TODO(), func(ctx context.Context, page int) (model.Page[int], error) {
		return model.Page[int]{}, apiErr
	})

	assert.Same(t, apiErr, err)
}

func TestListAllTooManyPages(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	_, err := aggregate.ListAll(context.TODO(), func(ctx context.Context, page int) (model.Page[int], error) {
		calls++
		return model.Page[int]{Items: []int{page}, HasNextPage: true}, nil
	})

	assert.ErrorIs(err, internalerrors.ErrTooManyPages)
	assert.Equal(aggregate.MaxPages, calls)
}

func TestMerge(t *testing.T) {
	tests := map[string]struct {
		basic    []model.Workspace
		detailed []model.WorkspaceWithDetails
		expIDs   []string
		expRich  []bool
	}{
		"Missing detailed workspaces should stay not enriched in the basic order.": {
			basic: []model.Workspace{{ID: "1"}, {ID: "2"}, {ID: "3"}},
			detailed: []model.WorkspaceWithDetails{
				{Workspace: model.Workspace{ID: "3"}, LatestRun: &model.Run{ID: "run-3"}},
				{Workspace: model.Workspace{ID: "1"}, LatestRun: &model.Run{ID: "run-1"}},
			},
			expIDs:  []string{"1", "2", "3"},
			expRich: []bool{true, false, true},
		},

		"Detailed workspaces not in the basic list should be ignored.": {
			basic: []model.Workspace{{ID: "1"}},
			detailed: []model.WorkspaceWithDetails{
				{Workspace: model.Workspace{ID: "1"}},
				{Workspace: model.Workspace{ID: "4"}},
			},
			expIDs:  []string{"1"},
			expRich: []bool{true},
		},

		"Without detailed workspaces, nothing should be enriched.": {
			basic:   []model.Workspace{{ID: "1"}, {ID: "2"}},
			expIDs:  []string{"1", "2"},
			expRich: []bool{false, false},
		},

		"Without basic workspaces, the result should be empty.": {
			detailed: []model.WorkspaceWithDetails{{Workspace: model.Workspace{ID: "1"}}},
			expIDs:   []string{},
			expRich:  []bool{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			views := aggregate.Merge(test.basic, test.detailed)

			gotIDs := []string{}
			gotRich := []bool{}
			for _, v := range views {
				gotIDs = append(gotIDs, v.ID)
				gotRich = append(gotRich, v.Enriched)
			}
			assert.Equal(test.expIDs, gotIDs)
			assert.Equal(test.expRich, gotRich)
		})
	}
}

func TestMergeReplacesWithDetails(t *testing.T) {
	assert := assert.New(t)

	views := aggregate.Merge(
		[]model.Workspace{{ID: "1", Name: "basic-name"}},
		[]model.WorkspaceWithDetails{{
			Workspace:               model.Workspace{ID: "1", Name: "detailed-name"},
			CurrentAssessmentResult: &model.AssessmentResult{Succeeded: true, Drifted: true},
		}},
	)

	require.Len(t, views, 1)
	assert.Equal("detailed-name", views[0].Name)
	assert.Equal(model.DriftStatusDrifted, views[0].DriftStatus())
}

var errTest = errors.New("test error")
