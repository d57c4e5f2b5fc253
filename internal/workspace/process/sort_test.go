package process_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/workspace/process"
)

func TestSortProcessor(t *testing.T) {
	t0 := time.Now()
	wks := func() []model.WorkspaceView {
		return []model.WorkspaceView{
			{WorkspaceWithDetails: model.WorkspaceWithDetails{Workspace: model.Workspace{Name: "c", LatestChangeAt: t0.Add(-2 * time.Hour)}}},
			{WorkspaceWithDetails: model.WorkspaceWithDetails{Workspace: model.Workspace{Name: "a", LatestChangeAt: t0.Add(-5 * time.Hour)}}},
			{WorkspaceWithDetails: model.WorkspaceWithDetails{Workspace: model.Workspace{Name: "d"}}},
			{WorkspaceWithDetails: model.WorkspaceWithDetails{Workspace: model.Workspace{Name: "b", LatestChangeAt: t0.Add(-1 * time.Hour)}}},
		}
	}

	tests := map[string]struct {
		sortBy   process.SortBy
		expNames []string
		expErr   bool
	}{
		"Sorting by API should keep the order.": {
			sortBy:   process.SortByAPI,
			expNames: []string{"c", "a", "d", "b"},
		},

		"Sorting by name should sort alphabetically.": {
			sortBy:   process.SortByName,
			expNames: []string{"a", "b", "c", "d"},
		},

		"Sorting by latest change should set the most recent first.": {
			sortBy:   process.SortByLatestChange,
			expNames: []string{"b", "c", "a", "d"},
		},

		"An unknown sort should fail.": {
			sortBy: "size",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			p, err := process.NewSortProcessor(log.Noop, test.sortBy)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(t, err)

			gotWks, err := p.Process(context.TODO(), wks())
			if assert.NoError(err) {
				gotNames := []string{}
				for _, wk := range gotWks {
					gotNames = append(gotNames, wk.Name)
				}
				assert.Equal(test.expNames, gotNames)
			}
		})
	}
}
