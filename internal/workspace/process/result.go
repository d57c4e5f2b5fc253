package process

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/model"
)

// NewDriftResultProcessor logs the drifted workspaces and fails with ErrDriftDetected
// if any of them has drift and failOnDrift is set.
func NewDriftResultProcessor(logger log.Logger, failOnDrift bool) Processor {
	logger = logger.WithValues(log.Kv{"workspace-processor": "DriftResult"})

	return ProcessorFunc(func(ctx context.Context, wks []model.WorkspaceView) ([]model.WorkspaceView, error) {
		drifted := 0
		for _, wk := range wks {
			if wk.DriftStatus() == model.DriftStatusDrifted {
				drifted++
				logger.WithValues(log.Kv{"workspace": wk.Name}).Warningf("Drift detected")
			}
		}

		if failOnDrift && drifted > 0 {
			return nil, internalerrors.ErrDriftDetected
		}

		return wks, nil
	})
}

// RunResult is the output representation of a run.
type RunResult struct {
	ID                   string    `json:"id" yaml:"id"`
	Status               string    `json:"status" yaml:"status"`
	StatusLabel          string    `json:"status_label" yaml:"status_label"`
	Category             string    `json:"category" yaml:"category"`
	Message              string    `json:"message,omitempty" yaml:"message,omitempty"`
	Source               string    `json:"source,omitempty" yaml:"source,omitempty"`
	HasChanges           bool      `json:"has_changes" yaml:"has_changes"`
	IsDestroy            bool      `json:"is_destroy" yaml:"is_destroy"`
	ResourceAdditions    *int      `json:"resource_additions,omitempty" yaml:"resource_additions,omitempty"`
	ResourceChanges      *int      `json:"resource_changes,omitempty" yaml:"resource_changes,omitempty"`
	ResourceDestructions *int      `json:"resource_destructions,omitempty" yaml:"resource_destructions,omitempty"`
	URL                  string    `json:"url,omitempty" yaml:"url,omitempty"`
	CreatedAt            time.Time `json:"created_at" yaml:"created_at"`
}

// NewRunResult returns the run output, the URL is only set if the workspace URL is known.
func NewRunResult(r model.Run, workspaceURL string) RunResult {
	res := RunResult{
		ID:                   r.ID,
		Status:               string(r.Status),
		StatusLabel:          r.Status.Label(),
		Category:             string(r.Status.Category()),
		Message:              r.Message,
		Source:               r.Source,
		HasChanges:           r.HasChanges,
		IsDestroy:            r.IsDestroy,
		ResourceAdditions:    r.ResourceAdditions,
		ResourceChanges:      r.ResourceChanges,
		ResourceDestructions: r.ResourceDestructions,
		CreatedAt:            r.CreatedAt,
	}
	if workspaceURL != "" && r.ID != "" {
		res.URL = workspaceURL + "/runs/" + r.ID
	}

	return res
}

// WorkspaceResult is the output representation of a workspace.
type WorkspaceResult struct {
	ID               string     `json:"id" yaml:"id"`
	Name             string     `json:"name" yaml:"name"`
	Organization     string     `json:"organization" yaml:"organization"`
	Description      string     `json:"description,omitempty" yaml:"description,omitempty"`
	Environment      string     `json:"environment,omitempty" yaml:"environment,omitempty"`
	ExecutionMode    string     `json:"execution_mode" yaml:"execution_mode"`
	TerraformVersion string     `json:"terraform_version,omitempty" yaml:"terraform_version,omitempty"`
	Locked           bool       `json:"locked" yaml:"locked"`
	ResourceCount    int        `json:"resource_count" yaml:"resource_count"`
	Tags             []string   `json:"tags" yaml:"tags"`
	VCSRepo          string     `json:"vcs_repo,omitempty" yaml:"vcs_repo,omitempty"`
	Drift            string     `json:"drift" yaml:"drift"`
	LatestRun        *RunResult `json:"latest_run,omitempty" yaml:"latest_run,omitempty"`
	LatestChangeAt   time.Time  `json:"latest_change_at" yaml:"latest_change_at"`
	URL              string     `json:"url" yaml:"url"`
}

func NewWorkspaceResult(wk model.WorkspaceView) WorkspaceResult {
	res := WorkspaceResult{
		ID:               wk.ID,
		Name:             wk.Name,
		Organization:     wk.Organization,
		Description:      wk.Description,
		Environment:      wk.Environment,
		ExecutionMode:    string(wk.ExecutionMode),
		TerraformVersion: wk.TerraformVersion,
		Locked:           wk.Locked,
		ResourceCount:    wk.ResourceCount,
		Tags:             wk.TagNames,
		Drift:            string(wk.DriftStatus()),
		LatestChangeAt:   wk.LatestChangeAt,
		URL:              wk.HTMLURL,
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	if wk.VCSRepo != nil {
		res.VCSRepo = wk.VCSRepo.DisplayIdentifier
		if res.VCSRepo == "" {
			res.VCSRepo = wk.VCSRepo.Identifier
		}
	}
	if wk.LatestRun != nil {
		r := NewRunResult(*wk.LatestRun, wk.HTMLURL)
		res.LatestRun = &r
	}

	return res
}

// WorkspacesTable returns the table representation of the workspaces.
func WorkspacesTable(wks []model.WorkspaceView) Table {
	t := Table{Header: []string{"NAME", "DRIFT", "LATEST RUN", "RESOURCES", "LOCKED", "LATEST CHANGE", "URL"}}
	for _, wk := range wks {
		latestRun := model.RunStatus("").Label()
		if wk.LatestRun != nil {
			latestRun = wk.LatestRun.Status.Label()
		}

		latestChange := "-"
		if !wk.LatestChangeAt.IsZero() {
			latestChange = wk.LatestChangeAt.Format(time.RFC3339)
		}

		t.Rows = append(t.Rows, []string{
			wk.Name,
			string(wk.DriftStatus()),
			latestRun,
			strconv.Itoa(wk.ResourceCount),
			strconv.FormatBool(wk.Locked),
			latestChange,
			wk.HTMLURL,
		})
	}

	return t
}

// NewOutputProcessor writes the workspaces in the output.
func NewOutputProcessor(out io.Writer, format OutputFormat) Processor {
	type result struct {
		Workspaces []WorkspaceResult `json:"workspaces" yaml:"workspaces"`
		Total      int               `json:"total" yaml:"total"`
		Drifted    int               `json:"drifted" yaml:"drifted"`
		CreatedAt  time.Time         `json:"created_at" yaml:"created_at"`
	}

	return ProcessorFunc(func(ctx context.Context, wks []model.WorkspaceView) ([]model.WorkspaceView, error) {
		root := result{
			Workspaces: []WorkspaceResult{},
			Total:      len(wks),
			CreatedAt:  time.Now().UTC(),
		}
		for _, wk := range wks {
			if wk.DriftStatus() == model.DriftStatusDrifted {
				root.Drifted++
			}
			root.Workspaces = append(root.Workspaces, NewWorkspaceResult(wk))
		}

		err := WriteOutput(out, format, root, WorkspacesTable(wks))
		if err != nil {
			return nil, err
		}

		return wks, nil
	})
}
