package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/mattn/go-isatty"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/tfe-workspaces/cmd/tfe-workspaces/commands"
	"github.com/slok/tfe-workspaces/internal/info"
	"github.com/slok/tfe-workspaces/internal/internalerrors"
	"github.com/slok/tfe-workspaces/internal/log"
	loglogrus "github.com/slok/tfe-workspaces/internal/log/logrus"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("tfe-workspaces", "HCP Terraform workspaces browser with drift status.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	versionCmd := commands.NewVersionCommand(rootCmd, app)
	providerCmd := commands.NewProviderCommand(rootCmd, app)
	organizationsCmd := commands.NewOrganizationsCommand(rootCmd, app)
	workspacesCmd := commands.NewWorkspacesCommand(rootCmd, app)
	workspaceCmd := commands.NewWorkspaceCommand(rootCmd, app)
	runsCmd := commands.NewRunsCommand(rootCmd, app)
	searchCmd := commands.NewSearchCommand(rootCmd, app)
	exporterCmd := commands.NewExporterCommand(rootCmd, app)

	cmds := map[string]commands.Command{
		versionCmd.Name():       versionCmd,
		providerCmd.Name():      providerCmd,
		organizationsCmd.Name(): organizationsCmd,
		workspacesCmd.Name():    workspacesCmd,
		workspaceCmd.Name():     workspaceCmd,
		runsCmd.Name():          runsCmd,
		searchCmd.Name():        searchCmd,
		exporterCmd.Name():      exporterCmd,
	}

	// Parse commandline.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	var g run.Group

	// OS signals.
	{
		sigC := make(chan os.Signal, 1)
		exitC := make(chan struct{})
		signal.Notify(sigC, syscall.SIGTERM, syscall.SIGINT)

		g.Add(
			func() error {
				select {
				case s := <-sigC:
					rootCmd.Logger.Infof("Signal %s received", s)
					return nil
				case <-exitC:
					return nil
				}
			},
			func(_ error) {
				close(exitC)
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If not logger disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		noColor := config.NoColor || !isTerminal(config.Stderr)
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			DisableColors: noColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": info.Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		// Detecting drifts is not a regular error: Quiet and other different code.
		if errors.Is(err, internalerrors.ErrDriftDetected) {
			fmt.Fprint(os.Stderr, "Drift detected")
			os.Exit(2)
		}

		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
