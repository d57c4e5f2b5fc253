package fake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/model"
)

const (
	fakeOrg     = "fake"
	fakeAddress = "https://app.terraform.io"
)

var fakeStatuses = []model.RunStatus{
	model.RunStatusApplied,
	model.RunStatusPlanning,
	model.RunStatusErrored,
	model.RunStatusPlannedAndFinished,
	model.RunStatusPolicyChecked,
}

type RepositoryConfig struct {
	// Workspaces is the number of fake workspaces.
	Workspaces int
	// DetailsDelay is added to the detailed listings, they are slower in real backends.
	DetailsDelay time.Duration
}

func (c *RepositoryConfig) defaults() {
	if c.Workspaces == 0 {
		c.Workspaces = 10
	}
}

// Repository is a backend with deterministic fake data, it's meant for development and demos.
type Repository struct {
	detailsDelay time.Duration
	workspaces   []model.WorkspaceWithDetails
}

func NewRepository(config RepositoryConfig) *Repository {
	config.defaults()

	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	wks := []model.WorkspaceWithDetails{}
	for i := 0; i < config.Workspaces; i++ {
		name := fmt.Sprintf("workspace-%d", i)
		updated := t0.Add(time.Duration(i) * time.Hour)
		wk := model.Workspace{
			ID:             fmt.Sprintf("ws-fake%d", i),
			Name:           name,
			Organization:   fakeOrg,
			Environment:    "default",
			ExecutionMode:  model.ExecutionModeRemote,
			Locked:         i%7 == 0,
			ResourceCount:  i * 3,
			TagNames:       []string{fmt.Sprintf("team-%d", i%3)},
			CreatedAt:      t0,
			UpdatedAt:      updated,
			LatestChangeAt: updated,
			HTMLURL:        model.WorkspaceURL(fakeAddress, fakeOrg, name),
		}

		run := &model.Run{
			ID:          fmt.Sprintf("run-fake%d", i),
			WorkspaceID: wk.ID,
			Status:      fakeStatuses[i%len(fakeStatuses)],
			Message:     "This is a fake run",
			Source:      "tfe-api",
			HasChanges:  i%2 == 0,
			CreatedAt:   updated,
		}
		wk.Relationships.LatestRun = &model.ResourceRef{Type: "runs", ID: run.ID}

		var assessment *model.AssessmentResult
		if i%4 != 3 {
			assessment = &model.AssessmentResult{
				ID:        fmt.Sprintf("asmtres-fake%d", i),
				Succeeded: true,
				Drifted:   i%3 == 0,
				CreatedAt: updated,
			}
		}

		wks = append(wks, model.WorkspaceWithDetails{Workspace: wk, LatestRun: run, CurrentAssessmentResult: assessment})
	}

	return &Repository{
		detailsDelay: config.DetailsDelay,
		workspaces:   wks,
	}
}

func (r *Repository) filter(org, search string) []model.WorkspaceWithDetails {
	res := []model.WorkspaceWithDetails{}
	if org != fakeOrg {
		return res
	}

	for _, wk := range r.workspaces {
		if strings.Contains(wk.Name, search) {
			res = append(res, wk)
		}
	}

	return res
}

func (r *Repository) ListWorkspacesBasic(ctx context.Context, org, search string, page, size int) (model.Page[model.Workspace], error) {
	wks := paginate(r.filter(org, search), page, size)
	basic := []model.Workspace{}
	for _, wk := range wks.Items {
		basic = append(basic, wk.Workspace)
	}

	return model.Page[model.Workspace]{Items: basic, TotalCount: wks.TotalCount, HasNextPage: wks.HasNextPage}, nil
}

func (r *Repository) ListWorkspacesDetailed(ctx context.Context, org, search string, page, size int) (model.Page[model.WorkspaceWithDetails], error) {
	if r.detailsDelay > 0 {
		select {
		case <-ctx.Done():
			return model.Page[model.WorkspaceWithDetails]{}, ctx.Err()
		case <-time.After(r.detailsDelay):
		}
	}

	return paginate(r.filter(org, search), page, size), nil
}

func (r *Repository) GetWorkspace(ctx context.Context, org, name string) (*model.Workspace, error) {
	for _, wk := range r.filter(org, "") {
		if wk.Name == name {
			w := wk.Workspace
			return &w, nil
		}
	}

	return nil, &internalerrors.NotFoundError{Name: name}
}

func (r *Repository) ListRuns(ctx context.Context, workspaceID string, page, size int) (model.Page[model.Run], error) {
	runs := []model.Run{}
	for _, wk := range r.workspaces {
		if wk.ID == workspaceID {
			runs = append(runs, *wk.LatestRun)
		}
	}

	return paginate(runs, page, size), nil
}

func (r *Repository) GetOrganizations(ctx context.Context) ([]model.Organization, error) {
	return []model.Organization{{ID: fakeOrg, Name: fakeOrg, Email: "fake@example.com"}}, nil
}

func (r *Repository) ProviderInfo(ctx context.Context) model.ProviderInfo {
	return model.ProviderInfo{Name: model.ProviderTypeHTTP, Version: "fake"}
}

func (r *Repository) Capabilities() model.Capabilities {
	return model.Capabilities{
		ListWorkspaces:    true,
		WorkspacesDetails: true,
		GetWorkspace:      true,
		ListRuns:          true,
		ListOrganizations: true,
	}
}

func paginate[T any](items []T, page, size int) model.Page[T] {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}

	return model.Page[T]{
		Items:       items[start:end],
		TotalCount:  len(items),
		HasNextPage: end < len(items),
	}
}
