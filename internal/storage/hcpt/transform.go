package hcpt

import (
	"time"

	"github.com/slok/tfe-workspaces/internal/model"
)

const (
	defaultVCSBranch     = "main"
	defaultEnvironment   = "default"
	unknownTriggerReason = "unknown"
)

// hcptWorkspace is a workspace as returned by `hcpt workspace list --json`.
type hcptWorkspace struct {
	Name                     string   `json:"name"`
	ID                       string   `json:"id"`
	TerraformVersion         string   `json:"terraform_version"`
	CurrentRunStatus         string   `json:"current_run_status"`
	LatestRunStatus          string   `json:"latest_run_status"`
	LatestRunID              string   `json:"latest_run_id"`
	ProjectName              string   `json:"project_name"`
	UpdatedAt                string   `json:"updated_at"`
	CreatedAt                string   `json:"created_at"`
	Locked                   bool     `json:"locked"`
	AutoApply                bool     `json:"auto_apply"`
	ExecutionMode            string   `json:"execution_mode"`
	WorkingDirectory         string   `json:"working_directory"`
	ResourceCount            int      `json:"resource_count"`
	Description              string   `json:"description"`
	TagNames                 []string `json:"tag_names"`
	VCSRepoIdentifier        string   `json:"vcs_repo_identifier"`
	VCSRepoBranch            string   `json:"vcs_repo_branch"`
	VCSRepoDisplayIdentifier string   `json:"vcs_repo_display_identifier"`
}

// hcptDrift is a drift record as returned by `hcpt drift list --all --json`.
type hcptDrift struct {
	ID                 string `json:"id"`
	WorkspaceID        string `json:"workspace_id"`
	WorkspaceName      string `json:"workspace_name"`
	Drifted            bool   `json:"drifted"`
	Succeeded          *bool  `json:"succeeded"`
	ErrorMsg           string `json:"error_msg"`
	CreatedAt          string `json:"created_at"`
	ResourcesDrifted   int    `json:"resources_drifted"`
	ResourcesUndrifted int    `json:"resources_undrifted"`
}

func mapWorkspaceHCPT2Model(w hcptWorkspace, org, address string) model.Workspace {
	updatedAt := parseTime(w.UpdatedAt)
	createdAt := updatedAt
	if w.CreatedAt != "" {
		createdAt = parseTime(w.CreatedAt)
	}

	wk := model.Workspace{
		ID:               w.ID,
		Name:             w.Name,
		Description:      w.Description,
		Organization:     org,
		TerraformVersion: w.TerraformVersion,
		WorkingDirectory: w.WorkingDirectory,
		Environment:      defaultEnvironment,
		ExecutionMode:    model.ParseExecutionMode(w.ExecutionMode),
		Locked:           w.Locked,
		AutoApply:        w.AutoApply,
		ResourceCount:    w.ResourceCount,
		TagNames:         w.TagNames,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
		LatestChangeAt:   updatedAt,
		HTMLURL:          model.WorkspaceURL(address, org, w.Name),
		Relationships: model.WorkspaceRelationships{
			Organization: &model.ResourceRef{Type: "organizations", ID: org},
		},
	}

	if wk.TagNames == nil {
		wk.TagNames = []string{}
	}

	if w.VCSRepoIdentifier != "" {
		wk.VCSRepo = &model.VCSRepo{
			Identifier:        w.VCSRepoIdentifier,
			DisplayIdentifier: w.VCSRepoDisplayIdentifier,
			Branch:            w.VCSRepoBranch,
		}
		if wk.VCSRepo.DisplayIdentifier == "" {
			wk.VCSRepo.DisplayIdentifier = w.VCSRepoIdentifier
		}
		if wk.VCSRepo.Branch == "" {
			wk.VCSRepo.Branch = defaultVCSBranch
		}
	}

	if w.LatestRunID != "" {
		wk.Relationships.LatestRun = &model.ResourceRef{Type: "runs", ID: w.LatestRunID}
	}

	return wk
}

func mapWorkspaceDetailsHCPT2Model(w hcptWorkspace, drift *hcptDrift, org, address string) model.WorkspaceWithDetails {
	wk := mapWorkspaceHCPT2Model(w, org, address)
	wd := model.WorkspaceWithDetails{Workspace: wk}

	// hcpt only knows the status of the latest run.
	if w.LatestRunStatus != "" {
		wd.LatestRun = &model.Run{
			ID:            w.LatestRunID,
			WorkspaceID:   w.ID,
			Status:        model.NormalizeRunStatus(w.LatestRunStatus),
			TriggerReason: unknownTriggerReason,
			CreatedAt:     wk.UpdatedAt,
		}
	}

	if drift != nil {
		wd.CurrentAssessmentResult = mapDriftHCPT2Model(*drift)
	}

	return wd
}

func mapDriftHCPT2Model(d hcptDrift) *model.AssessmentResult {
	succeeded := true
	if d.Succeeded != nil {
		succeeded = *d.Succeeded
	}

	return &model.AssessmentResult{
		ID:           d.ID,
		Succeeded:    succeeded,
		Drifted:      d.Drifted,
		ErrorMessage: d.ErrorMsg,
		CreatedAt:    parseTime(d.CreatedAt),
	}
}

// parseTime returns the zero time on invalid timestamps.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
