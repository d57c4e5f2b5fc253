package aggregate

import (
	"context"
	"fmt"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/model"
)

// MaxPages is the maximum number of pages a complete listing will request.
const MaxPages = 1000

// PageFetcher returns one page of a paginated list, pages start at 1.
type PageFetcher[T any] func(ctx context.Context, page int) (model.Page[T], error)

// ListAll gets all the items of a paginated list, requesting pages until there are no more.
// Errors are returned as they are received.
func ListAll[T any](ctx context.Context, fetch PageFetcher[T]) ([]T, error) {
	all := []T{}
	for page := 1; page <= MaxPages; page++ {
		p, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}

		all = append(all, p.Items...)

		if !p.HasNextPage {
			return all, nil
		}
	}

	return nil, fmt.Errorf("listing stopped after %d pages: %w", MaxPages, internalerrors.ErrTooManyPages)
}

// PageLister lists workspaces in pages.
type PageLister interface {
	ListWorkspacesBasic(ctx context.Context, org, search string, page, size int) (model.Page[model.Workspace], error)
	ListWorkspacesDetailed(ctx context.Context, org, search string, page, size int) (model.Page[model.WorkspaceWithDetails], error)
}

// ListAllWorkspacesBasic lists all the basic workspaces using the default page size of the lister.
func ListAllWorkspacesBasic(ctx context.Context, l PageLister, org, search string) ([]model.Workspace, error) {
	return ListAll(ctx, func(ctx context.Context, page int) (model.Page[model.Workspace], error) {
		return l.ListWorkspacesBasic(ctx, org, search, page, 0)
	})
}

// ListAllWorkspacesDetailed lists all the detailed workspaces using the default page size of the lister.
func ListAllWorkspacesDetailed(ctx context.Context, l PageLister, org, search string) ([]model.WorkspaceWithDetails, error) {
	return ListAll(ctx, func(ctx context.Context, page int) (model.Page[model.WorkspaceWithDetails], error) {
		return l.ListWorkspacesDetailed(ctx, org, search, page, 0)
	})
}

// Merge fuses the fast basic list with the slow detailed one. The result keeps the basic
// order, the detailed workspaces replace the basic ones with the same ID, the rest stay
// not enriched.
func Merge(basic []model.Workspace, detailed []model.WorkspaceWithDetails) []model.WorkspaceView {
	byID := make(map[string]model.WorkspaceWithDetails, len(detailed))
	for _, d := range detailed {
		byID[d.ID] = d
	}

	views := make([]model.WorkspaceView, 0, len(basic))
	for _, w := range basic {
		d, ok := byID[w.ID]
		if !ok {
			views = append(views, model.WorkspaceView{WorkspaceWithDetails: model.WorkspaceWithDetails{Workspace: w}})
			continue
		}
		views = append(views, model.WorkspaceView{WorkspaceWithDetails: d, Enriched: true})
	}

	return views
}

// Basic returns the views of the basic workspaces, none of them enriched.
func Basic(basic []model.Workspace) []model.WorkspaceView {
	return Merge(basic, nil)
}

// Detailed returns the views of the detailed workspaces, all of them enriched.
func Detailed(detailed []model.WorkspaceWithDetails) []model.WorkspaceView {
	views := make([]model.WorkspaceView, 0, len(detailed))
	for _, d := range detailed {
		views = append(views, model.WorkspaceView{WorkspaceWithDetails: d, Enriched: true})
	}

	return views
}
