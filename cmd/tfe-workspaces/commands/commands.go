package commands

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/hashicorp/go-tfe"

	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/provider"
	"github.com/slok/tfe-workspaces/internal/storage/hcpt"
	"github.com/slok/tfe-workspaces/internal/workspace/process"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug          bool
	NoLog          bool
	NoColor        bool
	LoggerType     string
	TFEToken       string
	TFEAddress     string
	ProviderMode   string
	HCPTPath       string
	HCPTMinVersion string
	HCPTTimeout    time.Duration
	DriftJoinKey   string
	Fake           bool

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("tfe-token", "The HCP Terraform or Terraform enterprise API token.").StringVar(&c.TFEToken)
	app.Flag("tfe-address", "The address of the HCP Terraform or Terraform Enterprise API.").Default(tfe.DefaultAddress).StringVar(&c.TFEAddress)
	app.Flag("provider", "How the workspaces data is obtained, auto prefers the hcpt CLI and falls back to the HTTP API.").Default(string(provider.ModeAuto)).EnumVar(&c.ProviderMode, string(provider.ModeAuto), string(provider.ModeHTTP), string(provider.ModeCLI))
	app.Flag("hcpt-path", "Custom path of the hcpt binary, checked before the well known locations.").StringVar(&c.HCPTPath)
	app.Flag("hcpt-min-version", "The minimum hcpt version that will be used.").StringVar(&c.HCPTMinVersion)
	app.Flag("hcpt-timeout", "Max duration of a single hcpt command.").Default(hcpt.DefaultTimeout.String()).DurationVar(&c.HCPTTimeout)
	app.Flag("drift-join-key", "How hcpt drift records are matched with the workspaces.").Default(string(hcpt.DriftJoinKeyAuto)).EnumVar(&c.DriftJoinKey, string(hcpt.DriftJoinKeyAuto), string(hcpt.DriftJoinKeyID), string(hcpt.DriftJoinKeyName))
	app.Flag("fake", "Use fake data instead of a real backend.").Hidden().BoolVar(&c.Fake)

	return c
}

func addOutputFlag(cmd *kingpin.CmdClause, out *string) {
	cmd.Flag("output", "Selects the format of the result output.").Short('o').Default(string(process.OutputFormatTable)).EnumVar(out, process.OutputFormats()...)
}

// splitRepeatedArg splits the values of repeated flags that can also be comma separated.
func splitRepeatedArg(args []string, sep string) []string {
	res := []string{}
	for _, arg := range args {
		for _, v := range strings.Split(arg, sep) {
			v = strings.TrimSpace(v)
			if v != "" {
				res = append(res, v)
			}
		}
	}

	return res
}
