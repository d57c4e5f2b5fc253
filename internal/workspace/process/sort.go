package process

import (
	"context"
	"fmt"
	"sort"

	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/model"
)

// SortBy is the order of the workspaces.
type SortBy string

const (
	// SortByAPI keeps the order returned by the provider.
	SortByAPI SortBy = "api"
	// SortByName sorts alphabetically.
	SortByName SortBy = "name"
	// SortByLatestChange sets first the most recently changed workspaces.
	SortByLatestChange SortBy = "latest-change"
)

func NewSortProcessor(logger log.Logger, by SortBy) (Processor, error) {
	logger = logger.WithValues(log.Kv{"workspace-processor": "Sort", "sort-by": by})

	var less func(a, b model.WorkspaceView) bool
	switch by {
	case SortByAPI, "":
		return NoopProcessor, nil
	case SortByName:
		less = func(a, b model.WorkspaceView) bool { return a.Name < b.Name }
	case SortByLatestChange:
		less = func(a, b model.WorkspaceView) bool { return a.LatestChangeAt.After(b.LatestChangeAt) }
	default:
		return nil, fmt.Errorf("unknown sort %q", by)
	}

	return ProcessorFunc(func(ctx context.Context, wks []model.WorkspaceView) ([]model.WorkspaceView, error) {
		logger.Debugf("Sorting workspaces")
		sort.SliceStable(wks, func(i, j int) bool { return less(wks[i], wks[j]) })

		return wks, nil
	}), nil
}
