package tfe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-tfe"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/model"
)

const (
	DefaultWorkspacePageSize = 100
	DefaultRunPageSize       = 10

	jsonAPIMediaType = "application/vnd.api+json"
	detailsInclude   = "latest-run,current-assessment-result"
)

// RepositoryConfig is the configuration of the HTTP API repository.
type RepositoryConfig struct {
	// Client is the official TFE client used for single resource reads, runs and organizations.
	Client Client
	// HTTPClient is used for the workspace lists, it should be the same the official client uses.
	HTTPClient *http.Client
	Address    string
	Token      string
	Logger     log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("tfe client is required")
	}

	if c.HTTPClient == nil {
		c.HTTPClient = NewHTTPClient()
	}

	if c.Address == "" {
		c.Address = tfe.DefaultAddress
	}
	c.Address = strings.TrimSuffix(c.Address, "/")

	if c.Token == "" {
		return fmt.Errorf("token is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.tfe.Repository"})

	return nil
}

// Repository knows how to get the workspaces data from the Terraform cloud or enterprise HTTP API.
type Repository struct {
	c          Client
	httpClient *http.Client
	address    string
	token      string
	logger     log.Logger
}

func NewRepository(config RepositoryConfig) (*Repository, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Repository{
		c:          config.Client,
		httpClient: config.HTTPClient,
		address:    config.Address,
		token:      config.Token,
		logger:     config.Logger,
	}, nil
}

func (r *Repository) ListWorkspacesBasic(ctx context.Context, org, search string, page, size int) (model.Page[model.Workspace], error) {
	doc, err := r.listWorkspaces(ctx, org, workspaceListQuery{
		PageNumber: page,
		PageSize:   size,
		Search:     search,
	})
	if err != nil {
		return model.Page[model.Workspace]{}, err
	}

	wks := make([]model.Workspace, 0, len(doc.Data))
	for _, w := range doc.Data {
		wks = append(wks, mapWorkspaceJSONAPI2Model(w, org, r.address))
	}

	return model.Page[model.Workspace]{
		Items:       wks,
		TotalCount:  doc.Meta.totalCount(len(doc.Data)),
		HasNextPage: doc.Meta.hasNextPage(),
	}, nil
}

func (r *Repository) ListWorkspacesDetailed(ctx context.Context, org, search string, page, size int) (model.Page[model.WorkspaceWithDetails], error) {
	doc, err := r.listWorkspaces(ctx, org, workspaceListQuery{
		PageNumber: page,
		PageSize:   size,
		Search:     search,
		Include:    detailsInclude,
	})
	if err != nil {
		return model.Page[model.WorkspaceWithDetails]{}, err
	}

	idx, err := newIncludedIndex(doc.Included)
	if err != nil {
		return model.Page[model.WorkspaceWithDetails]{}, fmt.Errorf("could not decode included resources: %w", err)
	}

	wks := make([]model.WorkspaceWithDetails, 0, len(doc.Data))
	for _, w := range doc.Data {
		wk := mapWorkspaceJSONAPI2Model(w, org, r.address)
		wks = append(wks, model.WorkspaceWithDetails{
			Workspace:               wk,
			LatestRun:               idx.latestRun(wk),
			CurrentAssessmentResult: idx.currentAssessmentResult(wk),
		})
	}

	return model.Page[model.WorkspaceWithDetails]{
		Items:       wks,
		TotalCount:  doc.Meta.totalCount(len(doc.Data)),
		HasNextPage: doc.Meta.hasNextPage(),
	}, nil
}

func (r *Repository) listWorkspaces(ctx context.Context, org string, q workspaceListQuery) (*jsonAPIWorkspaceList, error) {
	if q.PageNumber <= 0 {
		q.PageNumber = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultWorkspacePageSize
	}

	values, err := query.Values(q)
	if err != nil {
		return nil, fmt.Errorf("could not encode query: %w", err)
	}

	u := fmt.Sprintf("%s/api/v2/organizations/%s/workspaces?%s", r.address, url.PathEscape(org), values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", jsonAPIMediaType)
	req.Header.Set("Accept", jsonAPIMediaType)

	r.logger.Debugf("Listing workspaces: %s", u)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, unwrapHTTPError(err)
	}
	defer resp.Body.Close()

	// Our transport already does this, but the HTTP client could be a different one.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &internalerrors.HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var doc jsonAPIWorkspaceList
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not decode workspaces response: %w", err)
	}

	return &doc, nil
}

func (r *Repository) GetWorkspace(ctx context.Context, org, name string) (*model.Workspace, error) {
	w, err := r.c.ReadWorkspace(ctx, org, name)
	if err != nil {
		return nil, unwrapHTTPError(err)
	}

	wk := mapWorkspaceTFE2Model(w, org, r.address)
	return &wk, nil
}

func (r *Repository) ListRuns(ctx context.Context, workspaceID string, page, size int) (model.Page[model.Run], error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultRunPageSize
	}

	runs, err := r.c.ListRuns(ctx, workspaceID, &tfe.RunListOptions{
		ListOptions: tfe.ListOptions{PageNumber: page, PageSize: size},
		Include:     []tfe.RunIncludeOpt{tfe.RunPlan},
	})
	if err != nil {
		return model.Page[model.Run]{}, unwrapHTTPError(err)
	}

	items := make([]model.Run, 0, len(runs.Items))
	for _, run := range runs.Items {
		items = append(items, mapRunTFE2Model(run, workspaceID))
	}

	total := len(items)
	hasNext := false
	if runs.Pagination != nil {
		total = runs.Pagination.TotalCount
		hasNext = runs.Pagination.NextPage != 0
	}

	return model.Page[model.Run]{
		Items:       items,
		TotalCount:  total,
		HasNextPage: hasNext,
	}, nil
}

func (r *Repository) GetOrganizations(ctx context.Context) ([]model.Organization, error) {
	allOrgs := []*tfe.Organization{}

	// Get all organizations using client pagination.
	page := 1
	for {
		orgs, err := r.c.ListOrganizations(ctx, &tfe.OrganizationListOptions{ListOptions: tfe.ListOptions{PageNumber: page}})
		if err != nil {
			return nil, unwrapHTTPError(err)
		}

		allOrgs = append(allOrgs, orgs.Items...)

		// Nothing more to get.
		if orgs.Pagination == nil || orgs.NextPage == 0 || orgs.NextPage == page {
			break
		}
		page = orgs.NextPage
	}

	orgs := make([]model.Organization, 0, len(allOrgs))
	for _, o := range allOrgs {
		orgs = append(orgs, mapOrganizationTFE2Model(o))
	}

	return orgs, nil
}

// ProviderInfo returns the HTTP provider information, the version is the API version
// reported by the remote service.
func (r *Repository) ProviderInfo(ctx context.Context) model.ProviderInfo {
	return model.ProviderInfo{
		Name:    model.ProviderTypeHTTP,
		Version: r.c.RemoteAPIVersion(),
	}
}

// Capabilities returns the operations supported by the HTTP API, all of them.
func (r *Repository) Capabilities() model.Capabilities {
	return model.Capabilities{
		ListWorkspaces:    true,
		WorkspacesDetails: true,
		GetWorkspace:      true,
		ListRuns:          true,
		ListOrganizations: true,
	}
}

// unwrapHTTPError returns the API error as it is if the error chain has one.
func unwrapHTTPError(err error) error {
	var herr *internalerrors.HTTPError
	if errors.As(err, &herr) {
		return herr
	}

	return err
}

func mapWorkspaceTFE2Model(w *tfe.Workspace, org, address string) model.Workspace {
	wk := model.Workspace{
		ID:               w.ID,
		Name:             w.Name,
		Description:      w.Description,
		Organization:     org,
		TerraformVersion: w.TerraformVersion,
		WorkingDirectory: w.WorkingDirectory,
		Environment:      w.Environment,
		ExecutionMode:    model.ParseExecutionMode(w.ExecutionMode),
		Locked:           w.Locked,
		AutoApply:        w.AutoApply,
		ResourceCount:    w.ResourceCount,
		TagNames:         w.TagNames,
		CreatedAt:        w.CreatedAt,
		UpdatedAt:        w.UpdatedAt,
		LatestChangeAt:   w.UpdatedAt,
		HTMLURL:          model.WorkspaceURL(address, org, w.Name),
	}

	if wk.TagNames == nil {
		wk.TagNames = []string{}
	}

	if w.VCSRepo != nil && w.VCSRepo.Identifier != "" {
		wk.VCSRepo = &model.VCSRepo{
			Identifier:        w.VCSRepo.Identifier,
			DisplayIdentifier: w.VCSRepo.DisplayIdentifier,
			Branch:            w.VCSRepo.Branch,
			IngressSubmodules: w.VCSRepo.IngressSubmodules,
			ServiceProvider:   w.VCSRepo.ServiceProvider,
			RepositoryHTTPURL: w.VCSRepo.RepositoryHTTPURL,
		}
	}

	if p := w.Permissions; p != nil {
		wk.Permissions = model.WorkspacePermissions{
			CanUpdate:         p.CanUpdate,
			CanDestroy:        p.CanDestroy,
			CanQueueRun:       p.CanQueueRun,
			CanQueueApply:     p.CanQueueApply,
			CanQueueDestroy:   p.CanQueueDestroy,
			CanUpdateVariable: p.CanUpdateVariable,
			CanLock:           p.CanLock,
			CanUnlock:         p.CanUnlock,
			CanForceUnlock:    p.CanForceUnlock,
			CanReadSettings:   p.CanReadSettings,
		}
	}

	if w.Organization != nil && w.Organization.Name != "" {
		wk.Relationships.Organization = &model.ResourceRef{Type: jsonAPITypeOrganizations, ID: w.Organization.Name}
	}
	if w.CurrentRun != nil && w.CurrentRun.ID != "" {
		wk.Relationships.CurrentRun = &model.ResourceRef{Type: jsonAPITypeRuns, ID: w.CurrentRun.ID}
	}

	return wk
}

func mapRunTFE2Model(r *tfe.Run, workspaceID string) model.Run {
	run := model.Run{
		ID:          r.ID,
		WorkspaceID: workspaceID,
		Status:      model.NormalizeRunStatus(string(r.Status)),
		Message:     r.Message,
		Source:      string(r.Source),
		HasChanges:  r.HasChanges,
		IsDestroy:   r.IsDestroy,
		CreatedAt:   r.CreatedAt,
	}

	if r.Workspace != nil && r.Workspace.ID != "" {
		run.WorkspaceID = r.Workspace.ID
	}

	// Change counts are only known once the plan finished.
	if r.Plan != nil && r.Plan.Status == tfe.PlanFinished {
		additions := r.Plan.ResourceAdditions
		changes := r.Plan.ResourceChanges
		destructions := r.Plan.ResourceDestructions
		run.ResourceAdditions = &additions
		run.ResourceChanges = &changes
		run.ResourceDestructions = &destructions
	}

	return run
}

func mapOrganizationTFE2Model(o *tfe.Organization) model.Organization {
	org := model.Organization{
		ID:                    o.ExternalID,
		Name:                  o.Name,
		Email:                 o.Email,
		CreatedAt:             o.CreatedAt,
		CostEstimationEnabled: o.CostEstimationEnabled,
	}

	if p := o.Permissions; p != nil {
		org.Permissions = model.OrganizationPermissions{
			CanUpdate:          p.CanUpdate,
			CanDestroy:         p.CanDestroy,
			CanCreateTeam:      p.CanCreateTeam,
			CanCreateWorkspace: p.CanCreateWorkspace,
		}
	}

	return org
}
