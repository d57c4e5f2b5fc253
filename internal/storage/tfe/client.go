package tfe

import (
	"context"
	"net/http"

	"github.com/hashicorp/go-tfe"
)

// Client is a helper interface to be able to manage in a simpler way the TFE official client.
type Client interface {
	ListOrganizations(ctx context.Context, options *tfe.OrganizationListOptions) (*tfe.OrganizationList, error)
	ReadWorkspace(ctx context.Context, organization, workspace string) (*tfe.Workspace, error)
	ListRuns(ctx context.Context, workspaceID string, options *tfe.RunListOptions) (*tfe.RunList, error)
	RemoteAPIVersion() string
}

//go:generate mockery --case underscore --output tfemock --outpkg tfemock --name Client

func NewClient(c *tfe.Client) Client {
	return tfeClient{c: c}
}

// NewTFEClient returns the official TFE client using the received HTTP client.
func NewTFEClient(address, token string, httpClient *http.Client) (*tfe.Client, error) {
	return tfe.NewClient(&tfe.Config{
		Address:    address,
		Token:      token,
		HTTPClient: httpClient,
	})
}

type tfeClient struct {
	c *tfe.Client
}

func (t tfeClient) ListOrganizations(ctx context.Context, options *tfe.OrganizationListOptions) (*tfe.OrganizationList, error) {
	return t.c.Organizations.List(ctx, options)
}

func (t tfeClient) ReadWorkspace(ctx context.Context, organization, workspace string) (*tfe.Workspace, error) {
	return t.c.Workspaces.Read(ctx, organization, workspace)
}

func (t tfeClient) ListRuns(ctx context.Context, workspaceID string, options *tfe.RunListOptions) (*tfe.RunList, error) {
	return t.c.Runs.List(ctx, workspaceID, options)
}

func (t tfeClient) RemoteAPIVersion() string {
	return t.c.RemoteAPIVersion()
}
