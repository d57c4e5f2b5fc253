package tfe_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gotfe "github.com/hashicorp/go-tfe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/storage/tfe"
	"github.com/slok/tfe-workspaces/internal/storage/tfe/tfemock"
)

func intPtr(i int) *int { return &i }

const detailedResponse = `{
  "data": [
    {
      "id": "ws-1",
      "type": "workspaces",
      "attributes": {
        "name": "web",
        "execution-mode": "agent",
        "resource-count": 12,
        "tag-names": ["team:web"],
        "updated-at": "2024-01-02T03:04:05Z",
        "created-at": "2023-01-02T03:04:05Z",
        "vcs-repo": {"identifier": "acme/web", "display-identifier": "acme/web", "branch": "main"},
        "permissions": {"can-update": true, "can-queue-run": true}
      },
      "relationships": {
        "organization": {"data": {"id": "acme", "type": "organizations"}},
        "latest-run": {"data": {"id": "run-1", "type": "runs"}},
        "current-assessment-result": {"data": {"id": "asmtres-1", "type": "assessment-results"}},
        "tags": {"data": []}
      }
    },
    {
      "id": "ws-2",
      "type": "workspaces",
      "attributes": {"name": "db"},
      "relationships": {
        "latest-run": {"data": null},
        "current-assessment-result": {"data": {"id": "asmtres-missing", "type": "assessment-results"}}
      }
    }
  ],
  "included": [
    {
      "id": "run-1",
      "type": "runs",
      "attributes": {
        "status": "planned_and_finished",
        "message": "Queued manually",
        "has-changes": true,
        "created-at": "2024-01-02T03:00:00Z",
        "plan-resource-additions": 1,
        "plan-resource-changes": 2,
        "plan-resource-destructions": 0
      }
    },
    {
      "id": "asmtres-1",
      "type": "assessment-results",
      "attributes": {"drifted": true, "succeeded": true, "created-at": "2024-01-01T00:00:00Z"}
    },
    {
      "id": "cv-1",
      "type": "configuration-versions",
      "attributes": {"status": "uploaded"}
    }
  ],
  "meta": {"pagination": {"current-page": 1, "next-page": 2, "total-count": 150}}
}`

func newTestRepository(t *testing.T, srv *httptest.Server, mc *tfemock.Client) *tfe.Repository {
	if mc == nil {
		mc = tfemock.NewClient(t)
	}

	r, err := tfe.NewRepository(tfe.RepositoryConfig{
		Client:     mc,
		HTTPClient: tfe.NewHTTPClient(),
		Address:    srv.URL,
		Token:      "test-token",
	})
	require.NoError(t, err)

	return r
}

func TestRepositoryListWorkspacesDetailed(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/api/v2/organizations/acme/workspaces", r.URL.Path)
		assert.Equal("2", r.URL.Query().Get("page[number]"))
		assert.Equal("50", r.URL.Query().Get("page[size]"))
		assert.Equal("web", r.URL.Query().Get("search[name]"))
		assert.Equal("latest-run,current-assessment-result", r.URL.Query().Get("include"))
		assert.Equal("Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal("application/vnd.api+json", r.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(detailedResponse))
	}))
	defer srv.Close()

	repo := newTestRepository(t, srv, nil)
	page, err := repo.ListWorkspacesDetailed(context.TODO(), "acme", "web", 2, 50)
	require.NoError(err)

	assert.Equal(150, page.TotalCount)
	assert.True(page.HasNextPage)
	require.Len(page.Items, 2)

	// Fully resolved workspace.
	ws1 := page.Items[0]
	assert.Equal("ws-1", ws1.ID)
	assert.Equal("web", ws1.Name)
	assert.Equal("acme", ws1.Organization)
	assert.Equal(model.ExecutionModeAgent, ws1.ExecutionMode)
	assert.Equal(12, ws1.ResourceCount)
	assert.Equal([]string{"team:web"}, ws1.TagNames)
	assert.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), ws1.LatestChangeAt)
	assert.Equal(&model.VCSRepo{Identifier: "acme/web", DisplayIdentifier: "acme/web", Branch: "main"}, ws1.VCSRepo)
	assert.True(ws1.Permissions.CanUpdate)
	assert.True(ws1.Permissions.CanQueueRun)
	assert.False(ws1.Permissions.CanDestroy)
	assert.Equal(&model.ResourceRef{Type: "organizations", ID: "acme"}, ws1.Relationships.Organization)
	assert.Equal(srv.URL+"/app/acme/workspaces/web", ws1.HTMLURL)

	expRun := &model.Run{
		ID:                   "run-1",
		WorkspaceID:          "ws-1",
		Status:               model.RunStatusPlannedAndFinished,
		Message:              "Queued manually",
		HasChanges:           true,
		CreatedAt:            time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC),
		ResourceAdditions:    intPtr(1),
		ResourceChanges:      intPtr(2),
		ResourceDestructions: intPtr(0),
	}
	assert.Equal(expRun, ws1.LatestRun)
	assert.Equal(&model.AssessmentResult{
		ID:        "asmtres-1",
		Succeeded: true,
		Drifted:   true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, ws1.CurrentAssessmentResult)
	assert.Equal(model.DriftStatusDrifted, ws1.DriftStatus())

	// Null and missing references are resolved as nothing.
	ws2 := page.Items[1]
	assert.Equal("ws-2", ws2.ID)
	assert.Nil(ws2.LatestRun)
	assert.Nil(ws2.CurrentAssessmentResult)
	assert.Equal([]string{}, ws2.TagNames)
	assert.Nil(ws2.VCSRepo)
	assert.Equal(model.ExecutionModeRemote, ws2.ExecutionMode)
	assert.Equal(model.DriftStatusUnavailable, ws2.DriftStatus())
}

func TestRepositoryListWorkspacesBasicPagination(t *testing.T) {
	tests := map[string]struct {
		response       string
		page           int
		size           int
		expPageNumber  string
		expPageSize    string
		expTotal       int
		expHasNextPage bool
		expIDs         []string
	}{
		"A null next page should not have more pages.": {
			response:       `{"data":[{"id":"ws-1","attributes":{"name":"a"}}],"meta":{"pagination":{"next-page":null,"total-count":1}}}`,
			page:           1,
			size:           10,
			expPageNumber:  "1",
			expPageSize:    "10",
			expTotal:       1,
			expHasNextPage: false,
			expIDs:         []string{"ws-1"},
		},

		"A set next page should have more pages.": {
			response:       `{"data":[{"id":"ws-1","attributes":{"name":"a"}},{"id":"ws-2","attributes":{"name":"b"}}],"meta":{"pagination":{"next-page":3,"total-count":5}}}`,
			page:           2,
			size:           2,
			expPageNumber:  "2",
			expPageSize:    "2",
			expTotal:       5,
			expHasNextPage: true,
			expIDs:         []string{"ws-1", "ws-2"},
		},

		"Without pagination meta the total should be the number of items and no more pages.": {
			response:       `{"data":[{"id":"ws-1","attributes":{"name":"a"}},{"id":"ws-2","attributes":{"name":"b"}}]}`,
			expPageNumber:  "1",
			expPageSize:    "100",
			expTotal:       2,
			expHasNextPage: false,
			expIDs:         []string{"ws-1", "ws-2"},
		},

		"A missing next page should have more pages.": {
			response:       `{"data":[{"id":"ws-1","attributes":{"name":"a"}}],"meta":{"pagination":{"total-count":5}}}`,
			page:           1,
			size:           1,
			expPageNumber:  "1",
			expPageSize:    "1",
			expTotal:       5,
			expHasNextPage: true,
			expIDs:         []string{"ws-1"},
		},

		"A missing next page on the last page by the page counters should not have more pages.": {
			response:       `{"data":[{"id":"ws-5","attributes":{"name":"e"}}],"meta":{"pagination":{"current-page":5,"total-pages":5,"total-count":5}}}`,
			page:           5,
			size:           1,
			expPageNumber:  "5",
			expPageSize:    "1",
			expTotal:       5,
			expHasNextPage: false,
			expIDs:         []string{"ws-5"},
		},

		"An empty list should return an empty page.": {
			response:       `{"data":[],"meta":{"pagination":{"next-page":null,"total-count":0}}}`,
			page:           1,
			size:           100,
			expPageNumber:  "1",
			expPageSize:    "100",
			expTotal:       0,
			expHasNextPage: false,
			expIDs:         []string{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(test.expPageNumber, r.URL.Query().Get("page[number]"))
				assert.Equal(test.expPageSize, r.URL.Query().Get("page[size]"))
				assert.False(r.URL.Query().Has("include"))
				assert.False(r.URL.Query().Has("search[name]"))
				_, _ = w.Write([]byte(test.response))
			}))
			defer srv.Close()

			repo := newTestRepository(t, srv, nil)
			page, err := repo.ListWorkspacesBasic(context.TODO(), "acme", "", test.page, test.size)
			require.NoError(err)

			gotIDs := []string{}
			for _, w := range page.Items {
				gotIDs = append(gotIDs, w.ID)
			}
			assert.Equal(test.expIDs, gotIDs)
			assert.Equal(test.expTotal, page.TotalCount)
			assert.Equal(test.expHasNextPage, page.HasNextPage)
		})
	}
}

func TestRepositoryListWorkspacesHTTPError(t *testing.T) {
	tests := map[string]struct {
		httpClient *http.Client
	}{
		"Using the error transport should return the API error.": {
			httpClient: tfe.NewHTTPClient(),
		},

		"Using a regular HTTP client should return the API error.": {
			httpClient: http.DefaultClient,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"errors":[{"status":"404","title":"not found"}]}`))
			}))
			defer srv.Close()

			repo, err := tfe.NewRepository(tfe.RepositoryConfig{
				Client:     tfemock.NewClient(t),
				HTTPClient: test.httpClient,
				Address:    srv.URL,
				Token:      "test-token",
			})
			require.NoError(err)

			_, err = repo.ListWorkspacesBasic(context.TODO(), "acme", "", 1, 100)

			var herr *internalerrors.HTTPError
			require.True(errors.As(err, &herr))
			assert.Equal(http.StatusNotFound, herr.StatusCode)
			assert.Equal(`{"errors":[{"status":"404","title":"not found"}]}`, herr.Body)
			assert.Equal(`API error: 404 - {"errors":[{"status":"404","title":"not found"}]}`, err.Error())
		})
	}
}

func TestRepositoryGetWorkspace(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	apiErr := &internalerrors.HTTPError{StatusCode: 404, Body: "not found"}

	tests := map[string]struct {
		mock         func(mc *tfemock.Client)
		expWorkspace *model.Workspace
		expErr       error
	}{
		"Having an API error while reading the workspace, should return the API error unmodified.": {
			mock: func(mc *tfemock.Client) {
				mc.On("ReadWorkspace", mock.Anything, "acme", "web").Once().Return(nil, fmt.Errorf("GET giving up after 1 attempt(s): %w", apiErr))
			},
			expErr: apiErr,
		},

		"Reading a workspace should map the model.": {
			mock: func(mc *tfemock.Client) {
				mc.On("ReadWorkspace", mock.Anything, "acme", "web").Once().Return(&gotfe.Workspace{
					ID:               "ws-1",
					Name:             "web",
					ExecutionMode:    "local",
					TerraformVersion: "1.5.0",
					UpdatedAt:        t0,
					CreatedAt:        t0.Add(-time.Hour),
					Permissions:      &gotfe.WorkspacePermissions{CanDestroy: true},
					VCSRepo:          &gotfe.VCSRepo{Identifier: "acme/web", Branch: "dev"},
					Organization:     &gotfe.Organization{Name: "acme"},
					CurrentRun:       &gotfe.Run{ID: "run-1"},
				}, nil)
			},
			expWorkspace: &model.Workspace{
				ID:               "ws-1",
				Name:             "web",
				Organization:     "acme",
				ExecutionMode:    model.ExecutionModeLocal,
				TerraformVersion: "1.5.0",
				TagNames:         []string{},
				UpdatedAt:        t0,
				LatestChangeAt:   t0,
				CreatedAt:        t0.Add(-time.Hour),
				Permissions:      model.WorkspacePermissions{CanDestroy: true},
				VCSRepo:          &model.VCSRepo{Identifier: "acme/web", Branch: "dev"},
				Relationships: model.WorkspaceRelationships{
					Organization: &model.ResourceRef{Type: "organizations", ID: "acme"},
					CurrentRun:   &model.ResourceRef{Type: "runs", ID: "run-1"},
				},
				HTMLURL: "https://test.dev/app/acme/workspaces/web",
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			// Mocks.
			mc := tfemock.NewClient(t)
			test.mock(mc)

			repo, err := tfe.NewRepository(tfe.RepositoryConfig{Client: mc, Address: "https://test.dev/", Token: "test"})
			require.NoError(t, err)
			gotWk, err := repo.GetWorkspace(context.TODO(), "acme", "web")

			if test.expErr != nil {
				assert.Same(test.expErr, err)
			} else if assert.NoError(err) {
				assert.Equal(test.expWorkspace, gotWk)
			}
		})
	}
}

func TestRepositoryListRuns(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := map[string]struct {
		mock    func(mc *tfemock.Client)
		page    int
		size    int
		expPage model.Page[model.Run]
		expErr  bool
	}{
		"Having an error while listing runs, should fail.": {
			mock: func(mc *tfemock.Client) {
				mc.On("ListRuns", mock.Anything, "ws-1", mock.Anything).Once().Return(nil, fmt.Errorf("something"))
			},
			expErr: true,
		},

		"Listing runs with invalid pagination should use the defaults and include the plans.": {
			mock: func(mc *tfemock.Client) {
				exp := &gotfe.RunListOptions{
					ListOptions: gotfe.ListOptions{PageNumber: 1, PageSize: 10},
					Include:     []gotfe.RunIncludeOpt{gotfe.RunPlan},
				}
				mc.On("ListRuns", mock.Anything, "ws-1", exp).Once().Return(&gotfe.RunList{
					Pagination: &gotfe.Pagination{CurrentPage: 1, NextPage: 0, TotalCount: 0},
				}, nil)
			},
			page:    0,
			size:    -1,
			expPage: model.Page[model.Run]{Items: []model.Run{}},
		},

		"Listing runs should map the model and the pagination.": {
			mock: func(mc *tfemock.Client) {
				mc.On("ListRuns", mock.Anything, "ws-1", mock.Anything).Once().Return(&gotfe.RunList{
					Pagination: &gotfe.Pagination{CurrentPage: 2, NextPage: 3, TotalCount: 25},
					Items: []*gotfe.Run{
						{
							ID:         "run-1",
							Status:     gotfe.RunApplied,
							Message:    "Triggered via UI",
							Source:     gotfe.RunSourceUI,
							HasChanges: true,
							CreatedAt:  t0,
							Plan: &gotfe.Plan{
								Status:               gotfe.PlanFinished,
								ResourceAdditions:    3,
								ResourceChanges:      1,
								ResourceDestructions: 2,
							},
						},
						{
							ID:        "run-2",
							Status:    "new_status_we_do_not_know",
							CreatedAt: t0,
							Plan:      &gotfe.Plan{Status: gotfe.PlanRunning, ResourceAdditions: 10},
						},
					},
				}, nil)
			},
			page: 2,
			size: 10,
			expPage: model.Page[model.Run]{
				TotalCount:  25,
				HasNextPage: true,
				Items: []model.Run{
					{
						ID:                   "run-1",
						WorkspaceID:          "ws-1",
						Status:               model.RunStatusApplied,
						Message:              "Triggered via UI",
						Source:               "tfe-ui",
						HasChanges:           true,
						CreatedAt:            t0,
						ResourceAdditions:    intPtr(3),
						ResourceChanges:      intPtr(1),
						ResourceDestructions: intPtr(2),
					},
					{
						ID:          "run-2",
						WorkspaceID: "ws-1",
						Status:      model.RunStatusErrored,
						CreatedAt:   t0,
					},
				},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			// Mocks.
			mc := tfemock.NewClient(t)
			test.mock(mc)

			repo, err := tfe.NewRepository(tfe.RepositoryConfig{Client: mc, Token: "test"})
			require.NoError(t, err)
			gotPage, err := repo.ListRuns(context.TODO(), "ws-1", test.page, test.size)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expPage, gotPage)
			}
		})
	}
}

func TestRepositoryGetOrganizations(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := map[string]struct {
		mock    func(mc *tfemock.Client)
		expOrgs []model.Organization
		expErr  bool
	}{
		"Having an error while listing organizations, should fail.": {
			mock: func(mc *tfemock.Client) {
				mc.On("ListOrganizations", mock.Anything, mock.Anything).Once().Return(nil, fmt.Errorf("something"))
			},
			expErr: true,
		},

		"Organizations in multiple pages should be mapped.": {
			mock: func(mc *tfemock.Client) {
				mc.On("ListOrganizations", mock.Anything, &gotfe.OrganizationListOptions{ListOptions: gotfe.ListOptions{PageNumber: 1}}).Once().Return(&gotfe.OrganizationList{
					Pagination: &gotfe.Pagination{CurrentPage: 1, NextPage: 2},
					Items: []*gotfe.Organization{
						{
							Name:                  "acme",
							ExternalID:            "org-1",
							Email:                 "ops@acme.dev",
							CreatedAt:             t0,
							CostEstimationEnabled: true,
							Permissions:           &gotfe.OrganizationPermissions{CanCreateWorkspace: true},
						},
					},
				}, nil)
				mc.On("ListOrganizations", mock.Anything, &gotfe.OrganizationListOptions{ListOptions: gotfe.ListOptions{PageNumber: 2}}).Once().Return(&gotfe.OrganizationList{
					Pagination: &gotfe.Pagination{CurrentPage: 2, NextPage: 0},
					Items:      []*gotfe.Organization{{Name: "globex", ExternalID: "org-2"}},
				}, nil)
			},
			expOrgs: []model.Organization{
				{
					ID:                    "org-1",
					Name:                  "acme",
					Email:                 "ops@acme.dev",
					CreatedAt:             t0,
					CostEstimationEnabled: true,
					Permissions:           model.OrganizationPermissions{CanCreateWorkspace: true},
				},
				{ID: "org-2", Name: "globex"},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			// Mocks.
			mc := tfemock.NewClient(t)
			test.mock(mc)

			repo, err := tfe.NewRepository(tfe.RepositoryConfig{Client: mc, Token: "test"})
			require.NoError(t, err)
			gotOrgs, err := repo.GetOrganizations(context.TODO())

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expOrgs, gotOrgs)
			}
		})
	}
}

func TestRepositoryProviderInfo(t *testing.T) {
	mc := tfemock.NewClient(t)
	mc.On("RemoteAPIVersion").Once().Return("2.6")

	repo, err := tfe.NewRepository(tfe.RepositoryConfig{Client: mc, Token: "test"})
	require.NoError(t, err)

	assert.Equal(t, model.ProviderInfo{Name: model.ProviderTypeHTTP, Version: "2.6"}, repo.ProviderInfo(context.TODO()))
}

func TestNewRepositoryConfig(t *testing.T) {
	tests := map[string]struct {
		config tfe.RepositoryConfig
		expErr bool
	}{
		"A missing client should fail.": {
			config: tfe.RepositoryConfig{Token: "test"},
			expErr: true,
		},

		"A missing token should fail.": {
			config: tfe.RepositoryConfig{Client: &tfemock.Client{}},
			expErr: true,
		},

		"A client and a token should be enough.": {
			config: tfe.RepositoryConfig{Client: &tfemock.Client{}, Token: "test"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tfe.NewRepository(test.config)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
