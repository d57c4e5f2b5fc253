package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tfe-workspaces/internal/metrics"
	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/workspace/aggregate"
	"github.com/slok/tfe-workspaces/internal/workspace/process"
)

const (
	listModeFused    = "fused"
	listModeBasic    = "basic"
	listModeDetailed = "detailed"
)

type WorkspacesCommand struct {
	cmd        *kingpin.CmdClause
	rootConfig *RootCommand

	org         string
	search      string
	listMode    string
	filters     workspaceFilters
	failOnDrift bool
	output      string
}

// NewWorkspacesCommand returns the workspaces command.
func NewWorkspacesCommand(rootConfig *RootCommand, app *kingpin.Application) *WorkspacesCommand {
	cmd := app.Command("workspaces", "Lists the workspaces of an organization with their drift and latest run.")
	c := &WorkspacesCommand{
		cmd:        cmd,
		rootConfig: rootConfig,
	}

	cmd.Flag("org", "The organization, the first one of the user if not set.").StringVar(&c.org)
	cmd.Flag("search", "Only the workspaces whose name contains the search.").Short('s').StringVar(&c.search)
	cmd.Flag("mode", "fused gets the basic and detailed workspaces at the same time, basic is faster but without drift information.").Default(listModeFused).EnumVar(&c.listMode, listModeFused, listModeBasic, listModeDetailed)
	cmd.Flag("fail-on-drift", "Exit with code 2 if any of the workspaces has drift.").BoolVar(&c.failOnDrift)
	c.filters.register(cmd)
	addOutputFlag(cmd, &c.output)

	return c
}

func (c WorkspacesCommand) Name() string { return c.cmd.FullCommand() }
func (c WorkspacesCommand) Run(ctx context.Context) error {
	logger := c.rootConfig.Logger

	sel, err := newSelector(*c.rootConfig, metrics.Noop)
	if err != nil {
		return err
	}

	org, err := resolveOrg(ctx, *c.rootConfig, sel, c.org)
	if err != nil {
		return err
	}

	ps, err := c.filters.processors(logger, sel)
	if err != nil {
		return err
	}
	ps = append(ps,
		process.NewOutputProcessor(c.rootConfig.Stdout, process.OutputFormat(c.output)),
		process.NewDriftResultProcessor(logger, c.failOnDrift),
	)

	// Execute.
	var wks []model.WorkspaceView
	switch c.listMode {
	case listModeBasic:
		basic, err := sel.ListAllWorkspacesBasic(ctx, org, c.search)
		if err != nil {
			return fmt.Errorf("could not list workspaces: %w", err)
		}
		// Details will not be loaded, show the drift as unavailable instead of loading.
		wks = aggregate.Basic(basic)
		for i := range wks {
			wks[i].Enriched = true
		}

	case listModeDetailed:
		detailed, err := sel.ListAllWorkspacesDetailed(ctx, org, c.search)
		if err != nil {
			return fmt.Errorf("could not list workspaces: %w", err)
		}
		wks = aggregate.Detailed(detailed)

	default:
		fetcher, err := aggregate.NewFetcher(aggregate.FetcherConfig{Lister: sel, Logger: logger})
		if err != nil {
			return err
		}

		v := fetcher.FetchAll(ctx, aggregate.Query{Org: org, Search: c.search})
		if err := v.Err(); err != nil {
			return err
		}
		wks = v.Workspaces
	}

	chain := process.NewProcessorChain(ps)
	_, err = chain.Process(ctx, wks)
	if err != nil {
		return fmt.Errorf("workspaces processing failed: %w", err)
	}

	return nil
}

type WorkspaceCommand struct {
	cmd        *kingpin.CmdClause
	rootConfig *RootCommand

	org         string
	name        string
	hydrateRuns bool
	output      string
}

// NewWorkspaceCommand returns the workspace command.
func NewWorkspaceCommand(rootConfig *RootCommand, app *kingpin.Application) *WorkspaceCommand {
	cmd := app.Command("workspace", "Shows a workspace.")
	c := &WorkspaceCommand{
		cmd:        cmd,
		rootConfig: rootConfig,
	}

	cmd.Flag("org", "The organization, the first one of the user if not set.").StringVar(&c.org)
	cmd.Flag("name", "The exact name of the workspace.").Short('n').Required().StringVar(&c.name)
	cmd.Flag("hydrate-runs", "Get the latest run of the workspace.").BoolVar(&c.hydrateRuns)
	addOutputFlag(cmd, &c.output)

	return c
}

func (c WorkspaceCommand) Name() string { return c.cmd.FullCommand() }
func (c WorkspaceCommand) Run(ctx context.Context) error {
	logger := c.rootConfig.Logger

	sel, err := newSelector(*c.rootConfig, metrics.Noop)
	if err != nil {
		return err
	}

	org, err := resolveOrg(ctx, *c.rootConfig, sel, c.org)
	if err != nil {
		return err
	}

	wk, err := sel.GetWorkspace(ctx, org, c.name)
	if err != nil {
		return fmt.Errorf("could not get workspace: %w", err)
	}

	// A single workspace doesn't have assessment data.
	wks := []model.WorkspaceView{{WorkspaceWithDetails: model.WorkspaceWithDetails{Workspace: *wk}, Enriched: true}}

	ps := []process.Processor{}
	if c.hydrateRuns {
		ps = append(ps, process.NewHydrateLatestRunProcessor(logger, sel, 1))
	}
	ps = append(ps, process.NewOutputProcessor(c.rootConfig.Stdout, process.OutputFormat(c.output)))

	_, err = process.NewProcessorChain(ps).Process(ctx, wks)
	if err != nil {
		return fmt.Errorf("workspace processing failed: %w", err)
	}

	return nil
}
