package provider

import (
	"context"
	"fmt"

	"github.com/slok/tfe-workspaces/internal/model"
)

// Backend is a source of workspaces data.
type Backend interface {
	ListWorkspacesBasic(ctx context.Context, org, search string, page, size int) (model.Page[model.Workspace], error)
	ListWorkspacesDetailed(ctx context.Context, org, search string, page, size int) (model.Page[model.WorkspaceWithDetails], error)
	GetWorkspace(ctx context.Context, org, name string) (*model.Workspace, error)
	ListRuns(ctx context.Context, workspaceID string, page, size int) (model.Page[model.Run], error)
	GetOrganizations(ctx context.Context) ([]model.Organization, error)
	ProviderInfo(ctx context.Context) model.ProviderInfo
	Capabilities() model.Capabilities
}

//go:generate mockery --case underscore --output providermock --outpkg providermock --name Backend

// AllLister is implemented by the backends that can list all the workspaces at once
// without paginating.
type AllLister interface {
	ListAllWorkspacesBasic(ctx context.Context, org, search string) ([]model.Workspace, error)
	ListAllWorkspacesDetailed(ctx context.Context, org, search string) ([]model.WorkspaceWithDetails, error)
}

// CLIDetector knows how to detect the CLI tool and return a backend that uses it.
type CLIDetector interface {
	DetectCLI(ctx context.Context) (Backend, error)
}

//go:generate mockery --case underscore --output providermock --outpkg providermock --name CLIDetector

// CLIDetectorFunc is a helper to implement CLIDetector with functions.
type CLIDetectorFunc func(ctx context.Context) (Backend, error)

func (c CLIDetectorFunc) DetectCLI(ctx context.Context) (Backend, error) { return c(ctx) }

// Mode is how the backend is selected.
type Mode string

const (
	// ModeAuto prefers the CLI and uses the HTTP API when the CLI is missing or fails.
	ModeAuto Mode = "auto"
	// ModeHTTP only uses the HTTP API.
	ModeHTTP Mode = "http"
	// ModeCLI only uses the CLI, without fallback.
	ModeCLI Mode = "cli"
)

// ParseMode returns the mode from its name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeHTTP, ModeCLI:
		return Mode(s), nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown provider mode %q", s)
	}
}

// State is the state of the backend selection.
type State int

const (
	StateUnresolved State = iota
	StateResolving
	StateCLIActive
	StateHTTPActive
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateCLIActive:
		return "cli-active"
	case StateHTTPActive:
		return "http-active"
	default:
		return "unknown"
	}
}
