package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tfe-workspaces/internal/metrics"
	"github.com/slok/tfe-workspaces/internal/workspace/process"
)

type RunsCommand struct {
	cmd        *kingpin.CmdClause
	rootConfig *RootCommand

	workspaceID string
	page        int
	pageSize    int
	output      string
}

// NewRunsCommand returns the runs command.
func NewRunsCommand(rootConfig *RootCommand, app *kingpin.Application) *RunsCommand {
	cmd := app.Command("runs", "Lists the runs of a workspace, newest first.")
	c := &RunsCommand{
		cmd:        cmd,
		rootConfig: rootConfig,
	}

	cmd.Flag("workspace-id", "The ID of the workspace.").Short('w').Required().StringVar(&c.workspaceID)
	cmd.Flag("page", "The page to list.").Default("1").IntVar(&c.page)
	cmd.Flag("page-size", "The number of runs per page.").Default("10").IntVar(&c.pageSize)
	addOutputFlag(cmd, &c.output)

	return c
}

func (c RunsCommand) Name() string { return c.cmd.FullCommand() }
func (c RunsCommand) Run(ctx context.Context) error {
	sel, err := newSelector(*c.rootConfig, metrics.Noop)
	if err != nil {
		return err
	}

	runs, err := sel.ListRuns(ctx, c.workspaceID, c.page, c.pageSize)
	if err != nil {
		return fmt.Errorf("could not list runs: %w", err)
	}

	type result struct {
		Runs        []process.RunResult `json:"runs" yaml:"runs"`
		TotalCount  int                 `json:"total_count" yaml:"total_count"`
		HasNextPage bool                `json:"has_next_page" yaml:"has_next_page"`
	}

	res := result{Runs: []process.RunResult{}, TotalCount: runs.TotalCount, HasNextPage: runs.HasNextPage}
	table := process.Table{Header: []string{"ID", "STATUS", "CATEGORY", "CHANGES", "CREATED", "MESSAGE"}}
	for _, r := range runs.Items {
		rr := process.NewRunResult(r, "")
		res.Runs = append(res.Runs, rr)
		table.Rows = append(table.Rows, []string{rr.ID, rr.StatusLabel, rr.Category, fmt.Sprint(rr.HasChanges), rr.CreatedAt.Format(time.RFC3339), rr.Message})
	}

	return process.WriteOutput(c.rootConfig.Stdout, process.OutputFormat(c.output), res, table)
}
