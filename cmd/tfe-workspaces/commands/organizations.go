package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tfe-workspaces/internal/metrics"
	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/workspace/process"
)

type OrganizationsCommand struct {
	cmd        *kingpin.CmdClause
	rootConfig *RootCommand

	output string
}

// NewOrganizationsCommand returns the organizations command.
func NewOrganizationsCommand(rootConfig *RootCommand, app *kingpin.Application) *OrganizationsCommand {
	cmd := app.Command("organizations", "Lists the organizations of the user.")
	c := &OrganizationsCommand{
		cmd:        cmd,
		rootConfig: rootConfig,
	}
	addOutputFlag(cmd, &c.output)

	return c
}

func (c OrganizationsCommand) Name() string { return c.cmd.FullCommand() }
func (c OrganizationsCommand) Run(ctx context.Context) error {
	sel, err := newSelector(*c.rootConfig, metrics.Noop)
	if err != nil {
		return err
	}

	orgs, err := sel.GetOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("could not list organizations: %w", err)
	}

	type orgResult struct {
		Name      string    `json:"name" yaml:"name"`
		Email     string    `json:"email,omitempty" yaml:"email,omitempty"`
		CreatedAt time.Time `json:"created_at" yaml:"created_at"`
		URL       string    `json:"url" yaml:"url"`
	}

	res := []orgResult{}
	table := process.Table{Header: []string{"NAME", "EMAIL", "URL"}}
	for _, o := range orgs {
		url := model.OrganizationURL(c.rootConfig.TFEAddress, o.Name)
		res = append(res, orgResult{Name: o.Name, Email: o.Email, CreatedAt: o.CreatedAt, URL: url})
		table.Rows = append(table.Rows, []string{o.Name, o.Email, url})
	}

	return process.WriteOutput(c.rootConfig.Stdout, process.OutputFormat(c.output), res, table)
}
