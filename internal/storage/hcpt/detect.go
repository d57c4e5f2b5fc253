package hcpt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/slok/tfe-workspaces/internal/log"
)

const (
	binaryName            = "hcpt"
	defaultVersionTimeout = 5 * time.Second
)

// Detection is the result of looking for the hcpt binary.
type Detection struct {
	Available bool
	Path      string
	Version   string
	// Reason explains why hcpt is not available.
	Reason string
}

// DetectorConfig is the configuration of the hcpt detector.
type DetectorConfig struct {
	// CustomPath is checked before any other location.
	CustomPath string
	// MinVersion rejects older hcpt binaries, optional.
	MinVersion     string
	VersionTimeout time.Duration
	Logger         log.Logger

	// Getenv, LookPath and Which are used to search the binary, they default to the OS ones.
	Getenv   func(key string) string
	LookPath func(file string) (string, error)
	Which    func(ctx context.Context, file string) (string, error)
}

func (c *DetectorConfig) defaults() error {
	if c.VersionTimeout <= 0 {
		c.VersionTimeout = defaultVersionTimeout
	}

	if c.MinVersion != "" {
		if _, err := version.NewVersion(c.MinVersion); err != nil {
			return fmt.Errorf("invalid minimum version %q: %w", c.MinVersion, err)
		}
	}

	if c.Getenv == nil {
		c.Getenv = os.Getenv
	}

	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}

	if c.Which == nil {
		c.Which = shellWhich
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.hcpt.Detector"})

	return nil
}

// Detector knows how to find an usable hcpt binary on the system.
type Detector struct {
	customPath     string
	minVersion     string
	versionTimeout time.Duration
	getenv         func(string) string
	lookPath       func(string) (string, error)
	which          func(context.Context, string) (string, error)
	logger         log.Logger
}

func NewDetector(config DetectorConfig) (*Detector, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Detector{
		customPath:     config.CustomPath,
		minVersion:     config.MinVersion,
		versionTimeout: config.VersionTimeout,
		getenv:         config.Getenv,
		lookPath:       config.LookPath,
		which:          config.Which,
		logger:         config.Logger,
	}, nil
}

// Detect looks for hcpt in the custom path, the well known install locations and
// the PATH, in that order. The first binary that answers to `--version` is used.
func (d *Detector) Detect(ctx context.Context) Detection {
	for _, path := range d.candidates() {
		if !isExecutable(path) {
			continue
		}

		v, err := d.version(ctx, path)
		if err != nil {
			d.logger.Debugf("hcpt found at %q but version failed: %s", path, err)
			continue
		}

		return d.checkVersion(Detection{Available: true, Path: path, Version: v})
	}

	// Last resort, ask the shell utility in case the PATH has something our lookup didn't see.
	whichCtx, cancel := context.WithTimeout(ctx, d.versionTimeout)
	defer cancel()
	path, err := d.which(whichCtx, binaryName)
	if err == nil && path != "" {
		v, err := d.version(ctx, path)
		if err != nil {
			d.logger.Debugf("hcpt found at %q but version failed: %s", path, err)
		}
		return d.checkVersion(Detection{Available: true, Path: path, Version: v})
	}

	return Detection{Reason: "hcpt binary not found"}
}

func shellWhich(ctx context.Context, file string) (string, error) {
	out, err := exec.CommandContext(ctx, "which", file).Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}

func (d *Detector) candidates() []string {
	paths := []string{}
	if d.customPath != "" {
		paths = append(paths, d.customPath)
	}

	paths = append(paths, "/usr/local/bin/hcpt", "/opt/homebrew/bin/hcpt")
	if home := d.getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, "go", "bin", binaryName))
	}
	if gopath := d.getenv("GOPATH"); gopath != "" {
		paths = append(paths, filepath.Join(gopath, "bin", binaryName))
	}

	if p, err := d.lookPath(binaryName); err == nil {
		paths = append(paths, p)
	}

	return paths
}

func (d *Detector) version(ctx context.Context, path string) (string, error) {
	r, err := NewExecRunner(ExecRunnerConfig{Path: path, Timeout: d.versionTimeout})
	if err != nil {
		return "", err
	}

	out, err := r.Run(ctx, "--version")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}

func (d *Detector) checkVersion(det Detection) Detection {
	if d.minVersion == "" {
		return det
	}

	if !MeetsMinimumVersion(det.Version, d.minVersion) {
		return Detection{
			Path:    det.Path,
			Version: det.Version,
			Reason:  fmt.Sprintf("hcpt version %q is older than the required %s", det.Version, d.minVersion),
		}
	}

	return det
}

var versionRegexp = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// ParseVersion gets the semantic version from the hcpt version output (e.g: `hcpt version v1.2.3`).
func ParseVersion(s string) (*version.Version, error) {
	m := versionRegexp.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("no version found in %q", s)
	}

	return version.NewVersion(m[1])
}

// MeetsMinimumVersion returns true if the version output is at least the minimum version.
// Unparseable versions never meet the minimum.
func MeetsMinimumVersion(s, minVersion string) bool {
	v, err := ParseVersion(s)
	if err != nil {
		return false
	}

	minV, err := version.NewVersion(minVersion)
	if err != nil {
		return false
	}

	return v.GreaterThanOrEqual(minV)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return !info.IsDir() && info.Mode().Perm()&0o111 != 0
}
