package model

import (
	"fmt"
	"strings"
)

// OrganizationURL returns the web URL of an organization.
func OrganizationURL(address, org string) string {
	return fmt.Sprintf("%s/app/%s", strings.TrimSuffix(address, "/"), org)
}

// WorkspaceURL returns the web URL of a workspace.
func WorkspaceURL(address, org, workspace string) string {
	return fmt.Sprintf("%s/workspaces/%s", OrganizationURL(address, org), workspace)
}

// RunURL returns the web URL of a workspace run.
func RunURL(address, org, workspace, runID string) string {
	return fmt.Sprintf("%s/runs/%s", WorkspaceURL(address, org, workspace), runID)
}
