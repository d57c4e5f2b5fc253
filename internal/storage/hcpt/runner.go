package hcpt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
)

const (
	DefaultTimeout = 30 * time.Second
	tokenEnvVar    = "TFE_TOKEN"
)

// Runner knows how to execute hcpt commands and return their standard output.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// RunnerFunc is a helper to implement Runner with functions.
type RunnerFunc func(ctx context.Context, args ...string) ([]byte, error)

func (r RunnerFunc) Run(ctx context.Context, args ...string) ([]byte, error) { return r(ctx, args...) }

// ExecRunnerConfig is the configuration of the runner that executes the hcpt binary.
type ExecRunnerConfig struct {
	Path    string
	Token   string
	Timeout time.Duration
}

func (c *ExecRunnerConfig) defaults() error {
	if c.Path == "" {
		return fmt.Errorf("hcpt path is required")
	}

	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	return nil
}

// ExecRunner executes the hcpt binary directly, without a shell, so the arguments are never interpreted.
type ExecRunner struct {
	path    string
	token   string
	timeout time.Duration
}

func NewExecRunner(config ExecRunnerConfig) (*ExecRunner, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &ExecRunner{
		path:    config.Path,
		token:   config.Token,
		timeout: config.Timeout,
	}, nil
}

func (e *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	cmd.Env = os.Environ()
	if e.token != "" {
		cmd.Env = append(cmd.Env, tokenEnvVar+"="+e.token)
	}

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timeout after %s: %w", e.timeout, ctx.Err())
		}

		return nil, &internalerrors.CLIError{
			Command: commandString(args),
			Stderr:  stderr.String(),
			Err:     err,
		}
	}

	return stdout.Bytes(), nil
}

// Invocation is an hcpt command running in the background.
type Invocation struct {
	done chan struct{}
	out  []byte
	err  error
}

// Start runs the command in the background, the result is obtained with Wait.
func Start(ctx context.Context, r Runner, args ...string) *Invocation {
	inv := &Invocation{done: make(chan struct{})}
	go func() {
		defer close(inv.done)
		inv.out, inv.err = r.Run(ctx, args...)
	}()

	return inv
}

// Wait blocks until the command finishes and returns its result, it can be called multiple times.
func (i *Invocation) Wait() ([]byte, error) {
	<-i.done
	return i.out, i.err
}

func commandString(args []string) string {
	return "hcpt " + strings.Join(args, " ")
}
