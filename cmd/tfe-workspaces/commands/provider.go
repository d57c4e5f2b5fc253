package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tfe-workspaces/internal/metrics"
	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/provider"
	"github.com/slok/tfe-workspaces/internal/storage/fake"
	"github.com/slok/tfe-workspaces/internal/storage/hcpt"
	tfestorage "github.com/slok/tfe-workspaces/internal/storage/tfe"
	"github.com/slok/tfe-workspaces/internal/workspace/process"
)

const fakeDetailsDelay = 2 * time.Second

// newSelector returns the backend selector configured by the global flags.
func newSelector(root RootCommand, rec metrics.Recorder) (*provider.Selector, error) {
	logger := root.Logger

	if root.Fake {
		logger.Warningf("Using fake data")
		return provider.NewSelector(provider.SelectorConfig{
			Mode:            provider.ModeHTTP,
			HTTP:            fake.NewRepository(fake.RepositoryConfig{DetailsDelay: fakeDetailsDelay}),
			MetricsRecorder: rec,
			Logger:          logger,
		})
	}

	mode, err := provider.ParseMode(root.ProviderMode)
	if err != nil {
		return nil, err
	}

	config := provider.SelectorConfig{
		Mode:            mode,
		MetricsRecorder: rec,
		Logger:          logger,
	}

	if mode != provider.ModeCLI {
		if root.TFEToken == "" {
			return nil, fmt.Errorf("a TFE token is required to use the HTTP API provider")
		}

		httpClient := tfestorage.NewHTTPClient()
		client, err := tfestorage.NewTFEClient(root.TFEAddress, root.TFEToken, httpClient)
		if err != nil {
			return nil, fmt.Errorf("could not create tfe client: %w", err)
		}

		repo, err := tfestorage.NewRepository(tfestorage.RepositoryConfig{
			Client:     tfestorage.NewClient(client),
			HTTPClient: httpClient,
			Address:    root.TFEAddress,
			Token:      root.TFEToken,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create tfe storage repository: %w", err)
		}
		config.HTTP = repo
	}

	if mode != provider.ModeHTTP {
		detector, err := hcpt.NewDetector(hcpt.DetectorConfig{
			CustomPath: root.HCPTPath,
			MinVersion: root.HCPTMinVersion,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create hcpt detector: %w", err)
		}

		config.CLIDetector = provider.CLIDetectorFunc(func(ctx context.Context) (provider.Backend, error) {
			d := detector.Detect(ctx)
			if !d.Available {
				return nil, errors.New(d.Reason)
			}

			runner, err := hcpt.NewExecRunner(hcpt.ExecRunnerConfig{
				Path:    d.Path,
				Token:   root.TFEToken,
				Timeout: root.HCPTTimeout,
			})
			if err != nil {
				return nil, err
			}

			repo, err := hcpt.NewRepository(hcpt.RepositoryConfig{
				Runner:       runner,
				Address:      root.TFEAddress,
				DriftJoinKey: hcpt.DriftJoinKey(root.DriftJoinKey),
				Logger:       logger,
			})
			if err != nil {
				return nil, err
			}

			return repo, nil
		})
	}

	return provider.NewSelector(config)
}

// resolveOrg returns the organization, the first one of the user if not set.
func resolveOrg(ctx context.Context, root RootCommand, sel *provider.Selector, org string) (string, error) {
	if org != "" {
		return org, nil
	}

	orgs, err := sel.GetOrganizations(ctx)
	if err != nil {
		return "", fmt.Errorf("organization not set and could not list organizations: %w", err)
	}
	if len(orgs) == 0 {
		return "", fmt.Errorf("organization not set and the user doesn't have organizations")
	}

	root.Logger.Infof("Organization not set, using %q", orgs[0].Name)
	return orgs[0].Name, nil
}

type ProviderCommand struct {
	cmd        *kingpin.CmdClause
	rootConfig *RootCommand

	output string
}

// NewProviderCommand returns the provider command.
func NewProviderCommand(rootConfig *RootCommand, app *kingpin.Application) *ProviderCommand {
	cmd := app.Command("provider", "Resolves and shows the provider that will be used.")
	c := &ProviderCommand{
		cmd:        cmd,
		rootConfig: rootConfig,
	}
	addOutputFlag(cmd, &c.output)

	return c
}

func (c ProviderCommand) Name() string { return c.cmd.FullCommand() }
func (c ProviderCommand) Run(ctx context.Context) error {
	sel, err := newSelector(*c.rootConfig, metrics.Noop)
	if err != nil {
		return err
	}

	err = sel.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("could not resolve provider: %w", err)
	}

	type result struct {
		Name         model.ProviderType `json:"name" yaml:"name"`
		Version      string             `json:"version" yaml:"version"`
		State        string             `json:"state" yaml:"state"`
		Capabilities model.Capabilities `json:"capabilities" yaml:"capabilities"`
	}

	info := sel.ProviderInfo(ctx)
	res := result{
		Name:         info.Name,
		Version:      info.Version,
		State:        sel.State().String(),
		Capabilities: sel.Capabilities(),
	}

	caps := res.Capabilities
	table := process.Table{
		Header: []string{"PROVIDER", "VERSION", "STATE", "DETAILS", "RUNS", "ORGANIZATIONS"},
		Rows: [][]string{{
			string(res.Name), res.Version, res.State,
			fmt.Sprint(caps.WorkspacesDetails), fmt.Sprint(caps.ListRuns), fmt.Sprint(caps.ListOrganizations),
		}},
	}

	return process.WriteOutput(c.rootConfig.Stdout, process.OutputFormat(c.output), res, table)
}
