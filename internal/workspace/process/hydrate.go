package process

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/model"
)

type RunLister interface {
	ListRuns(ctx context.Context, workspaceID string, page, size int) (model.Page[model.Run], error)
}

//go:generate mockery --case underscore --output processmock --outpkg processmock --name RunLister

// NewHydrateLatestRunProcessor sets the latest run on the workspaces that don't have it,
// the detailed lists already bring it so only basic workspaces are hydrated.
func NewHydrateLatestRunProcessor(logger log.Logger, l RunLister, workers int) Processor {
	logger = logger.WithValues(log.Kv{"workspace-processor": "HydrateLatestRun"})
	if workers <= 0 {
		workers = 1
	}

	return ProcessorFunc(func(ctx context.Context, wks []model.WorkspaceView) ([]model.WorkspaceView, error) {
		logger.Infof("Getting workspaces latest run")

		// Each worker writes only its own index.
		newWks := make([]model.WorkspaceView, len(wks))
		copy(newWks, wks)

		var g errgroup.Group
		g.SetLimit(workers)
		for i := range newWks {
			i := i
			if newWks[i].LatestRun != nil {
				continue
			}

			g.Go(func() error {
				// Only a stopped process fails the hydration.
				if err := ctx.Err(); err != nil {
					return err
				}

				wk := &newWks[i]
				runs, err := l.ListRuns(ctx, wk.ID, 1, 1)
				if err != nil {
					// One workspace should not stop the process for the others.
					if !errors.Is(err, internalerrors.ErrNotExist) {
						logger.WithValues(log.Kv{"workspace": wk.Name}).Errorf("Could not get latest run: %s", err)
					}
					return nil
				}

				if len(runs.Items) > 0 {
					run := runs.Items[0]
					wk.LatestRun = &run
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("latest run hydration stopped: %w", err)
		}

		return newWks, nil
	})
}
