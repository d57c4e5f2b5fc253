package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tfe-workspaces/internal/metrics"
	"github.com/slok/tfe-workspaces/internal/workspace/aggregate"
	"github.com/slok/tfe-workspaces/internal/workspace/process"
)

type SearchCommand struct {
	cmd        *kingpin.CmdClause
	rootConfig *RootCommand

	org    string
	output string
}

// NewSearchCommand returns the search command.
func NewSearchCommand(rootConfig *RootCommand, app *kingpin.Application) *SearchCommand {
	cmd := app.Command("search", "Reads searches from the standard input (one per line) and shows the matching workspaces as they load, a new search discards the previous one.")
	c := &SearchCommand{
		cmd:        cmd,
		rootConfig: rootConfig,
	}

	cmd.Flag("org", "The organization, the first one of the user if not set.").StringVar(&c.org)
	addOutputFlag(cmd, &c.output)

	return c
}

type searchResult struct {
	Search     string                    `json:"search" yaml:"search"`
	Phase      string                    `json:"phase" yaml:"phase"`
	Workspaces []process.WorkspaceResult `json:"workspaces" yaml:"workspaces"`
}

func (c SearchCommand) Name() string { return c.cmd.FullCommand() }
func (c SearchCommand) Run(ctx context.Context) error {
	logger := c.rootConfig.Logger

	sel, err := newSelector(*c.rootConfig, metrics.Noop)
	if err != nil {
		return err
	}

	org, err := resolveOrg(ctx, *c.rootConfig, sel, c.org)
	if err != nil {
		return err
	}

	fetcher, err := aggregate.NewFetcher(aggregate.FetcherConfig{Lister: sel, Logger: logger})
	if err != nil {
		return err
	}
	session := aggregate.NewSession(fetcher)

	linesC := make(chan string)
	go func() {
		defer close(linesC)
		scanner := bufio.NewScanner(c.rootConfig.Stdin)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			case linesC <- strings.TrimSpace(scanner.Text()):
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Errorf("Could not read searches: %s", err)
		}
	}()

	var lines <-chan string = linesC
	var views <-chan aggregate.View
	for {
		// Finish when there are no more searches and the last one has been shown.
		if lines == nil && views == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			logger.Debugf("Searching %q", line)
			views = session.Search(ctx, aggregate.Query{Org: org, Search: line})

		case v, ok := <-views:
			if !ok {
				views = nil
				continue
			}

			err := c.writeView(v)
			if err != nil {
				return err
			}
		}
	}
}

func (c SearchCommand) writeView(v aggregate.View) error {
	logger := c.rootConfig.Logger

	if err := v.Err(); err != nil {
		logger.Errorf("Search %q failed: %s", v.Query.Search, err)
		return nil
	}
	if v.DetailsErr != nil {
		logger.Warningf("Search %q without drift information: %s", v.Query.Search, v.DetailsErr)
	}

	res := searchResult{
		Search:     v.Query.Search,
		Phase:      v.Phase.String(),
		Workspaces: []process.WorkspaceResult{},
	}
	for _, wk := range v.Workspaces {
		res.Workspaces = append(res.Workspaces, process.NewWorkspaceResult(wk))
	}

	format := process.OutputFormat(c.output)
	if format == process.OutputFormatTable {
		fmt.Fprintf(c.rootConfig.Stdout, "# %q (%s)\n", res.Search, res.Phase)
	}

	return process.WriteOutput(c.rootConfig.Stdout, format, res, process.WorkspacesTable(v.Workspaces))
}
