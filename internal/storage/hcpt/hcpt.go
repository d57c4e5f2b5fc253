package hcpt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-tfe"
	"golang.org/x/sync/singleflight"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/model"
)

const (
	DefaultPageSize = 100

	providerName = string(model.ProviderTypeHCPT)
)

// DriftJoinKey is the field used to match drift records with workspaces.
type DriftJoinKey string

const (
	// DriftJoinKeyAuto uses the workspace ID when the drift records have it, the name otherwise.
	DriftJoinKeyAuto DriftJoinKey = "auto"
	DriftJoinKeyID   DriftJoinKey = "id"
	DriftJoinKeyName DriftJoinKey = "name"
)

// RepositoryConfig is the configuration of the hcpt CLI repository.
type RepositoryConfig struct {
	Runner Runner
	// Address is only used to derive the web URLs of the workspaces.
	Address      string
	DriftJoinKey DriftJoinKey
	Logger       log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}

	if c.Address == "" {
		c.Address = tfe.DefaultAddress
	}
	c.Address = strings.TrimSuffix(c.Address, "/")

	switch c.DriftJoinKey {
	case "":
		c.DriftJoinKey = DriftJoinKeyAuto
	case DriftJoinKeyAuto, DriftJoinKeyID, DriftJoinKeyName:
	default:
		return fmt.Errorf("unknown drift join key %q", c.DriftJoinKey)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.hcpt.Repository"})

	return nil
}

// Repository knows how to get the workspaces data using the hcpt CLI.
//
// hcpt returns all the results at once, pagination is emulated by slicing.
type Repository struct {
	runner       Runner
	address      string
	driftJoinKey DriftJoinKey
	logger       log.Logger
	flight       singleflight.Group
}

func NewRepository(config RepositoryConfig) (*Repository, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Repository{
		runner:       config.Runner,
		address:      config.Address,
		driftJoinKey: config.DriftJoinKey,
		logger:       config.Logger,
	}, nil
}

func (r *Repository) ListWorkspacesBasic(ctx context.Context, org, search string, page, size int) (model.Page[model.Workspace], error) {
	wks, err := r.ListAllWorkspacesBasic(ctx, org, search)
	if err != nil {
		return model.Page[model.Workspace]{}, err
	}

	return paginate(wks, page, size), nil
}

func (r *Repository) ListWorkspacesDetailed(ctx context.Context, org, search string, page, size int) (model.Page[model.WorkspaceWithDetails], error) {
	wks, err := r.ListAllWorkspacesDetailed(ctx, org, search)
	if err != nil {
		return model.Page[model.WorkspaceWithDetails]{}, err
	}

	return paginate(wks, page, size), nil
}

func (r *Repository) ListAllWorkspacesBasic(ctx context.Context, org, search string) ([]model.Workspace, error) {
	hwks, err := r.listWorkspaces(ctx, org, search)
	if err != nil {
		return nil, err
	}

	wks := make([]model.Workspace, 0, len(hwks))
	for _, w := range hwks {
		wks = append(wks, mapWorkspaceHCPT2Model(w, org, r.address))
	}

	return wks, nil
}

func (r *Repository) ListAllWorkspacesDetailed(ctx context.Context, org, search string) ([]model.WorkspaceWithDetails, error) {
	runner := RunnerFunc(r.run)
	wksInv := Start(ctx, runner, workspaceListArgs(org, search)...)
	driftInv := Start(ctx, runner, driftListArgs(org)...)

	wksOut, wksErr := wksInv.Wait()
	driftOut, driftErr := driftInv.Wait()

	if wksErr != nil {
		return nil, wksErr
	}

	var hwks []hcptWorkspace
	err := decode(wksOut, workspaceListArgs(org, search), &hwks)
	if err != nil {
		return nil, err
	}

	// Drift data is optional, without it we return the workspaces without drift information.
	var drifts driftIndex
	if driftErr == nil {
		var records []hcptDrift
		driftErr = decode(driftOut, driftListArgs(org), &records)
		drifts = newDriftIndex(records, r.driftJoinKey)
	}
	if driftErr != nil {
		r.logger.WithCtxValues(ctx).Warningf("Could not get drift information, continuing without it: %s", driftErr)
	}

	wks := make([]model.WorkspaceWithDetails, 0, len(hwks))
	for _, w := range hwks {
		wks = append(wks, mapWorkspaceDetailsHCPT2Model(w, drifts.lookup(w), org, r.address))
	}

	return wks, nil
}

func (r *Repository) GetWorkspace(ctx context.Context, org, name string) (*model.Workspace, error) {
	hwks, err := r.listWorkspaces(ctx, org, name)
	if err != nil {
		return nil, err
	}

	// The search is fuzzy, we only want the exact match.
	for _, w := range hwks {
		if w.Name == name {
			wk := mapWorkspaceHCPT2Model(w, org, r.address)
			return &wk, nil
		}
	}

	return nil, &internalerrors.NotFoundError{Name: name}
}

func (r *Repository) ListRuns(ctx context.Context, workspaceID string, page, size int) (model.Page[model.Run], error) {
	return model.Page[model.Run]{}, &internalerrors.CapabilityUnsupportedError{Operation: "ListRuns", Provider: providerName}
}

func (r *Repository) GetOrganizations(ctx context.Context) ([]model.Organization, error) {
	return nil, &internalerrors.CapabilityUnsupportedError{Operation: "GetOrganizations", Provider: providerName}
}

// ProviderInfo returns the hcpt provider information, if the version can't be
// obtained it will be returned without version.
func (r *Repository) ProviderInfo(ctx context.Context) model.ProviderInfo {
	info := model.ProviderInfo{Name: model.ProviderTypeHCPT}

	out, err := r.run(ctx, "--version")
	if err != nil {
		r.logger.WithCtxValues(ctx).Debugf("Could not get hcpt version: %s", err)
		return info
	}
	info.Version = strings.TrimSpace(string(out))

	return info
}

// Capabilities returns the operations supported by hcpt.
func (r *Repository) Capabilities() model.Capabilities {
	return model.Capabilities{
		ListWorkspaces:    true,
		WorkspacesDetails: true,
		GetWorkspace:      true,
	}
}

func (r *Repository) listWorkspaces(ctx context.Context, org, search string) ([]hcptWorkspace, error) {
	args := workspaceListArgs(org, search)
	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var hwks []hcptWorkspace
	err = decode(out, args, &hwks)
	if err != nil {
		return nil, err
	}

	return hwks, nil
}

// run executes the hcpt command, identical commands executed concurrently share the same execution.
func (r *Repository) run(ctx context.Context, args ...string) ([]byte, error) {
	key := strings.Join(args, "\x00")
	out, err, shared := r.flight.Do(key, func() (any, error) {
		return r.runner.Run(ctx, args...)
	})
	if shared {
		r.logger.Debugf("Shared hcpt execution: %s", commandString(args))
	}
	if err != nil {
		return nil, err
	}

	return out.([]byte), nil
}

func workspaceListArgs(org, search string) []string {
	args := []string{"workspace", "list", "--org", org}
	if search != "" {
		args = append(args, "--search", search)
	}

	return append(args, "--json")
}

func driftListArgs(org string) []string {
	return []string{"drift", "list", "--org", org, "--all", "--json"}
}

func decode(out []byte, args []string, v any) error {
	err := json.Unmarshal(out, v)
	if err != nil {
		return &internalerrors.CLIError{
			Command: commandString(args),
			Err:     fmt.Errorf("invalid JSON output: %w", err),
		}
	}

	return nil
}

// paginate slices the complete list as the page would be returned by a paginated API.
func paginate[T any](all []T, page, size int) model.Page[T] {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	// Checked before multiplying so huge page numbers can't overflow.
	pages := len(all) / size
	if len(all)%size != 0 {
		pages++
	}
	if page-1 >= pages {
		return model.Page[T]{Items: []T{}, TotalCount: len(all)}
	}

	start := (page - 1) * size
	end := len(all)
	if size < len(all)-start {
		end = start + size
	}

	items := make([]T, 0, end-start)
	items = append(items, all[start:end]...)

	return model.Page[T]{
		Items:       items,
		TotalCount:  len(all),
		HasNextPage: end < len(all),
	}
}

type driftIndex struct {
	byID   map[string]hcptDrift
	byName map[string]hcptDrift
}

func newDriftIndex(records []hcptDrift, key DriftJoinKey) driftIndex {
	if key == DriftJoinKeyAuto {
		key = DriftJoinKeyName
		for _, d := range records {
			if d.WorkspaceID != "" {
				key = DriftJoinKeyID
				break
			}
		}
	}

	idx := driftIndex{}
	switch key {
	case DriftJoinKeyID:
		idx.byID = make(map[string]hcptDrift, len(records))
		for _, d := range records {
			if d.WorkspaceID != "" {
				idx.byID[d.WorkspaceID] = d
			}
		}
	case DriftJoinKeyName:
		idx.byName = make(map[string]hcptDrift, len(records))
		for _, d := range records {
			if d.WorkspaceName != "" {
				idx.byName[d.WorkspaceName] = d
			}
		}
	}

	return idx
}

func (d driftIndex) lookup(w hcptWorkspace) *hcptDrift {
	var (
		drift hcptDrift
		ok    bool
	)
	switch {
	case d.byID != nil:
		drift, ok = d.byID[w.ID]
	case d.byName != nil:
		drift, ok = d.byName[w.Name]
	}
	if !ok {
		return nil
	}

	return &drift
}
