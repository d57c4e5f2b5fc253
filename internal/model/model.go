package model

import (
	"time"
)

// Organization is a Terraform cloud or enterprise organization.
type Organization struct {
	ID                    string
	Name                  string
	Email                 string
	CreatedAt             time.Time
	CostEstimationEnabled bool
	Permissions           OrganizationPermissions
}

type OrganizationPermissions struct {
	CanUpdate          bool
	CanDestroy         bool
	CanCreateTeam      bool
	CanCreateWorkspace bool
}

// ExecutionMode is where the runs of a workspace are executed.
type ExecutionMode string

const (
	ExecutionModeRemote ExecutionMode = "remote"
	ExecutionModeLocal  ExecutionMode = "local"
	ExecutionModeAgent  ExecutionMode = "agent"
)

// ParseExecutionMode returns the execution mode, unknown or empty values are
// treated as remote, that is the default of the API.
func ParseExecutionMode(s string) ExecutionMode {
	switch ExecutionMode(s) {
	case ExecutionModeLocal:
		return ExecutionModeLocal
	case ExecutionModeAgent:
		return ExecutionModeAgent
	default:
		return ExecutionModeRemote
	}
}

// ResourceRef is a weak reference to another resource, it needs to be resolved
// separately to get the resource data.
type ResourceRef struct {
	Type string
	ID   string
}

type WorkspaceRelationships struct {
	Organization            *ResourceRef
	CurrentRun              *ResourceRef
	LatestRun               *ResourceRef
	CurrentAssessmentResult *ResourceRef
}

type VCSRepo struct {
	Identifier        string
	DisplayIdentifier string
	Branch            string
	IngressSubmodules bool
	ServiceProvider   string
	RepositoryHTTPURL string
}

type WorkspacePermissions struct {
	CanUpdate         bool
	CanDestroy        bool
	CanQueueRun       bool
	CanQueueApply     bool
	CanQueueDestroy   bool
	CanUpdateVariable bool
	CanLock           bool
	CanUnlock         bool
	CanForceUnlock    bool
	CanReadSettings   bool
}

// Workspace is the unit of infrastructure configuration and state tracked by Terraform cloud.
//
// Its ID is the same independently of the provider used to obtain it, the rest of the
// fields could be partially populated or defaulted depending on the provider.
type Workspace struct {
	ID               string
	Name             string
	Description      string
	Organization     string
	TerraformVersion string
	WorkingDirectory string
	Environment      string
	ExecutionMode    ExecutionMode
	Locked           bool
	AutoApply        bool
	ResourceCount    int
	TagNames         []string
	VCSRepo          *VCSRepo
	Permissions      WorkspacePermissions
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LatestChangeAt   time.Time
	Relationships    WorkspaceRelationships
	HTMLURL          string
}

// HasTag returns true if the workspace has the tag.
func (w Workspace) HasTag(tag string) bool {
	for _, t := range w.TagNames {
		if t == tag {
			return true
		}
	}

	return false
}

// Run is a Terraform run of a workspace.
type Run struct {
	ID            string
	WorkspaceID   string
	Status        RunStatus
	Message       string
	Source        string
	TriggerReason string
	HasChanges    bool
	IsDestroy     bool
	CreatedAt     time.Time

	// Change summary, nil when the run has not been planned yet.
	ResourceAdditions    *int
	ResourceChanges      *int
	ResourceDestructions *int
}

// AssessmentResult is the result of a health assessment (drift detection) made out of band.
type AssessmentResult struct {
	ID           string
	Succeeded    bool
	Drifted      bool
	ErrorMessage string
	CreatedAt    time.Time
}

// WorkspaceWithDetails is a workspace enriched with its latest run and its current
// assessment. The enrichment is best effort, any of them can be missing.
type WorkspaceWithDetails struct {
	Workspace
	LatestRun               *Run
	CurrentAssessmentResult *AssessmentResult
}

// DriftStatus returns the drift status based on the current assessment.
func (w WorkspaceWithDetails) DriftStatus() DriftStatus {
	return DriftStatusFromAssessment(w.CurrentAssessmentResult)
}

// WorkspaceView is a workspace as shown to the users, it starts with the basic data
// and gets enriched when the detailed data arrives.
type WorkspaceView struct {
	WorkspaceWithDetails
	Enriched bool
}

// DriftStatus is like WorkspaceWithDetails.DriftStatus but knows that the details
// could still be loading.
func (w WorkspaceView) DriftStatus() DriftStatus {
	if !w.Enriched {
		return DriftStatusLoading
	}

	return w.WorkspaceWithDetails.DriftStatus()
}

// ProviderType is the kind of backend used to get the data.
type ProviderType string

const (
	ProviderTypeHCPT ProviderType = "hcpt"
	ProviderTypeHTTP ProviderType = "http"
)

// ProviderInfo is the information of the active provider.
type ProviderInfo struct {
	Name    ProviderType
	Version string
}

// Page is a page of a paginated list.
type Page[T any] struct {
	Items       []T
	TotalCount  int
	HasNextPage bool
}

// Capabilities are the operations a provider can execute.
type Capabilities struct {
	ListWorkspaces    bool `json:"list_workspaces" yaml:"list_workspaces"`
	WorkspacesDetails bool `json:"workspaces_details" yaml:"workspaces_details"`
	GetWorkspace      bool `json:"get_workspace" yaml:"get_workspace"`
	ListRuns          bool `json:"list_runs" yaml:"list_runs"`
	ListOrganizations bool `json:"list_organizations" yaml:"list_organizations"`
}
