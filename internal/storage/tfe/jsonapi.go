package tfe

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/slok/tfe-workspaces/internal/model"
)

const (
	jsonAPITypeRuns              = "runs"
	jsonAPITypeAssessmentResults = "assessment-results"
	jsonAPITypeOrganizations     = "organizations"

	relLatestRun               = "latest-run"
	relCurrentRun              = "current-run"
	relCurrentAssessmentResult = "current-assessment-result"
	relOrganization            = "organization"
	relWorkspace               = "workspace"
)

// workspaceListQuery is the query of the workspaces list endpoint.
type workspaceListQuery struct {
	PageNumber int    `url:"page[number],omitempty"`
	PageSize   int    `url:"page[size],omitempty"`
	Search     string `url:"search[name],omitempty"`
	Include    string `url:"include,omitempty"`
}

type jsonAPIWorkspaceList struct {
	Data     []jsonAPIWorkspace `json:"data"`
	Included []jsonAPIResource  `json:"included"`
	Meta     *jsonAPIMeta       `json:"meta"`
}

type jsonAPIMeta struct {
	Pagination *jsonAPIPagination `json:"pagination"`
}

type jsonAPIPagination struct {
	CurrentPage int             `json:"current-page"`
	NextPage    json.RawMessage `json:"next-page"`
	TotalPages  int             `json:"total-pages"`
	TotalCount  *int            `json:"total-count"`
}

// hasNextPage is false only when the next page is explicitly null. A missing pagination
// block means that the list is not paginated. A missing next page key uses the page counters
// when present and assumes more pages otherwise.
func (m *jsonAPIMeta) hasNextPage() bool {
	if m == nil || m.Pagination == nil {
		return false
	}

	p := m.Pagination
	np := bytes.TrimSpace(p.NextPage)
	if len(np) == 0 {
		if p.CurrentPage > 0 && p.TotalPages > 0 {
			return p.CurrentPage < p.TotalPages
		}
		return true
	}

	return !bytes.Equal(np, []byte("null"))
}

func (m *jsonAPIMeta) totalCount(fallback int) int {
	if m == nil || m.Pagination == nil || m.Pagination.TotalCount == nil {
		return fallback
	}

	return *m.Pagination.TotalCount
}

type jsonAPIRelationship struct {
	// Data can be an object, an array or null depending on the relationship.
	Data json.RawMessage `json:"data"`
}

type jsonAPIResourceID struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type jsonAPIRelationships map[string]jsonAPIRelationship

// ref returns the to-one relationship reference, nil if missing, null or not a to-one relationship.
func (r jsonAPIRelationships) ref(name string) *model.ResourceRef {
	rel, ok := r[name]
	if !ok {
		return nil
	}

	data := bytes.TrimSpace(rel.Data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	var id jsonAPIResourceID
	if err := json.Unmarshal(data, &id); err != nil || id.ID == "" {
		return nil
	}

	return &model.ResourceRef{Type: id.Type, ID: id.ID}
}

type jsonAPIResource struct {
	Type          string               `json:"type"`
	ID            string               `json:"id"`
	Attributes    json.RawMessage      `json:"attributes"`
	Relationships jsonAPIRelationships `json:"relationships"`
}

type jsonAPIWorkspace struct {
	Type          string                     `json:"type"`
	ID            string                     `json:"id"`
	Attributes    jsonAPIWorkspaceAttributes `json:"attributes"`
	Relationships jsonAPIRelationships       `json:"relationships"`
}

type jsonAPIWorkspaceAttributes struct {
	Name             string                      `json:"name"`
	Description      string                      `json:"description"`
	AutoApply        bool                        `json:"auto-apply"`
	CreatedAt        time.Time                   `json:"created-at"`
	UpdatedAt        time.Time                   `json:"updated-at"`
	LatestChangeAt   time.Time                   `json:"latest-change-at"`
	Environment      string                      `json:"environment"`
	ExecutionMode    string                      `json:"execution-mode"`
	Locked           bool                        `json:"locked"`
	ResourceCount    int                         `json:"resource-count"`
	TerraformVersion string                      `json:"terraform-version"`
	WorkingDirectory string                      `json:"working-directory"`
	TagNames         []string                    `json:"tag-names"`
	VCSRepo          *jsonAPIVCSRepo             `json:"vcs-repo"`
	Permissions      jsonAPIWorkspacePermissions `json:"permissions"`
}

type jsonAPIVCSRepo struct {
	Identifier        string `json:"identifier"`
	DisplayIdentifier string `json:"display-identifier"`
	Branch            string `json:"branch"`
	IngressSubmodules bool   `json:"ingress-submodules"`
	ServiceProvider   string `json:"service-provider"`
	RepositoryHTTPURL string `json:"repository-http-url"`
}

type jsonAPIWorkspacePermissions struct {
	CanUpdate         bool `json:"can-update"`
	CanDestroy        bool `json:"can-destroy"`
	CanQueueRun       bool `json:"can-queue-run"`
	CanQueueApply     bool `json:"can-queue-apply"`
	CanQueueDestroy   bool `json:"can-queue-destroy"`
	CanUpdateVariable bool `json:"can-update-variable"`
	CanLock           bool `json:"can-lock"`
	CanUnlock         bool `json:"can-unlock"`
	CanForceUnlock    bool `json:"can-force-unlock"`
	CanReadSettings   bool `json:"can-read-settings"`
}

type jsonAPIRunAttributes struct {
	Status                   string    `json:"status"`
	Message                  string    `json:"message"`
	Source                   string    `json:"source"`
	TriggerReason            string    `json:"trigger-reason"`
	HasChanges               bool      `json:"has-changes"`
	IsDestroy                bool      `json:"is-destroy"`
	CreatedAt                time.Time `json:"created-at"`
	PlanResourceAdditions    *int      `json:"plan-resource-additions"`
	PlanResourceChanges      *int      `json:"plan-resource-changes"`
	PlanResourceDestructions *int      `json:"plan-resource-destructions"`
}

type jsonAPIAssessmentResultAttributes struct {
	Drifted   bool      `json:"drifted"`
	Succeeded bool      `json:"succeeded"`
	ErrorMsg  string    `json:"error-msg"`
	CreatedAt time.Time `json:"created-at"`
}

// includedIndex has the included resources of a compound document indexed by ID.
type includedIndex struct {
	runs        map[string]model.Run
	assessments map[string]model.AssessmentResult
}

func newIncludedIndex(included []jsonAPIResource) (*includedIndex, error) {
	idx := &includedIndex{
		runs:        map[string]model.Run{},
		assessments: map[string]model.AssessmentResult{},
	}

	for _, res := range included {
		switch res.Type {
		case jsonAPITypeRuns:
			var attrs jsonAPIRunAttributes
			if err := unmarshalAttributes(res.Attributes, &attrs); err != nil {
				return nil, err
			}
			run := mapRunJSONAPI2Model(res.ID, attrs)
			if ws := res.Relationships.ref(relWorkspace); ws != nil {
				run.WorkspaceID = ws.ID
			}
			idx.runs[res.ID] = run

		case jsonAPITypeAssessmentResults:
			var attrs jsonAPIAssessmentResultAttributes
			if err := unmarshalAttributes(res.Attributes, &attrs); err != nil {
				return nil, err
			}
			idx.assessments[res.ID] = model.AssessmentResult{
				ID:           res.ID,
				Succeeded:    attrs.Succeeded,
				Drifted:      attrs.Drifted,
				ErrorMessage: attrs.ErrorMsg,
				CreatedAt:    attrs.CreatedAt,
			}
		}
	}

	return idx, nil
}

func (i *includedIndex) latestRun(w model.Workspace) *model.Run {
	ref := w.Relationships.LatestRun
	if ref == nil {
		return nil
	}

	run, ok := i.runs[ref.ID]
	if !ok {
		return nil
	}
	if run.WorkspaceID == "" {
		run.WorkspaceID = w.ID
	}

	return &run
}

func (i *includedIndex) currentAssessmentResult(w model.Workspace) *model.AssessmentResult {
	ref := w.Relationships.CurrentAssessmentResult
	if ref == nil {
		return nil
	}

	ar, ok := i.assessments[ref.ID]
	if !ok {
		return nil
	}

	return &ar
}

func unmarshalAttributes(data json.RawMessage, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func mapWorkspaceJSONAPI2Model(w jsonAPIWorkspace, org, address string) model.Workspace {
	a := w.Attributes

	wk := model.Workspace{
		ID:               w.ID,
		Name:             a.Name,
		Description:      a.Description,
		Organization:     org,
		TerraformVersion: a.TerraformVersion,
		WorkingDirectory: a.WorkingDirectory,
		Environment:      a.Environment,
		ExecutionMode:    model.ParseExecutionMode(a.ExecutionMode),
		Locked:           a.Locked,
		AutoApply:        a.AutoApply,
		ResourceCount:    a.ResourceCount,
		TagNames:         a.TagNames,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
		LatestChangeAt:   a.LatestChangeAt,
		Permissions: model.WorkspacePermissions{
			CanUpdate:         a.Permissions.CanUpdate,
			CanDestroy:        a.Permissions.CanDestroy,
			CanQueueRun:       a.Permissions.CanQueueRun,
			CanQueueApply:     a.Permissions.CanQueueApply,
			CanQueueDestroy:   a.Permissions.CanQueueDestroy,
			CanUpdateVariable: a.Permissions.CanUpdateVariable,
			CanLock:           a.Permissions.CanLock,
			CanUnlock:         a.Permissions.CanUnlock,
			CanForceUnlock:    a.Permissions.CanForceUnlock,
			CanReadSettings:   a.Permissions.CanReadSettings,
		},
		Relationships: model.WorkspaceRelationships{
			Organization:            w.Relationships.ref(relOrganization),
			CurrentRun:              w.Relationships.ref(relCurrentRun),
			LatestRun:               w.Relationships.ref(relLatestRun),
			CurrentAssessmentResult: w.Relationships.ref(relCurrentAssessmentResult),
		},
		HTMLURL: model.WorkspaceURL(address, org, a.Name),
	}

	if wk.TagNames == nil {
		wk.TagNames = []string{}
	}

	if wk.LatestChangeAt.IsZero() {
		wk.LatestChangeAt = a.UpdatedAt
	}

	if a.VCSRepo != nil && a.VCSRepo.Identifier != "" {
		wk.VCSRepo = &model.VCSRepo{
			Identifier:        a.VCSRepo.Identifier,
			DisplayIdentifier: a.VCSRepo.DisplayIdentifier,
			Branch:            a.VCSRepo.Branch,
			IngressSubmodules: a.VCSRepo.IngressSubmodules,
			ServiceProvider:   a.VCSRepo.ServiceProvider,
			RepositoryHTTPURL: a.VCSRepo.RepositoryHTTPURL,
		}
	}

	return wk
}

func mapRunJSONAPI2Model(id string, a jsonAPIRunAttributes) model.Run {
	return model.Run{
		ID:                   id,
		Status:               model.NormalizeRunStatus(a.Status),
		Message:              a.Message,
		Source:               a.Source,
		TriggerReason:        a.TriggerReason,
		HasChanges:           a.HasChanges,
		IsDestroy:            a.IsDestroy,
		CreatedAt:            a.CreatedAt,
		ResourceAdditions:    a.PlanResourceAdditions,
		ResourceChanges:      a.PlanResourceChanges,
		ResourceDestructions: a.PlanResourceDestructions,
	}
}
