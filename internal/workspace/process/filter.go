package process

import (
	"context"
	"fmt"
	"regexp"

	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/model"
)

func NewIncludeNameProcessor(logger log.Logger, regexes []string) (Processor, error) {
	// If no regex, then match all.
	if len(regexes) == 0 {
		return NoopProcessor, nil
	}

	logger = logger.WithValues(log.Kv{"workspace-processor": "IncludeName"})
	rxs, err := compileRegexes(regexes)
	if err != nil {
		return nil, fmt.Errorf("invalid regexes: %w", err)
	}

	return newFilterProcessor(logger, "Including workspaces by name", func(wk model.WorkspaceView) bool {
		return matchStringRegexes(rxs, wk.Name)
	}), nil
}

func NewExcludeNameProcessor(logger log.Logger, regexes []string) (Processor, error) {
	if len(regexes) == 0 {
		return NoopProcessor, nil
	}

	logger = logger.WithValues(log.Kv{"workspace-processor": "ExcludeName"})
	rxs, err := compileRegexes(regexes)
	if err != nil {
		return nil, fmt.Errorf("invalid regexes: %w", err)
	}

	return newFilterProcessor(logger, "Excluding workspaces by name", func(wk model.WorkspaceView) bool {
		return !matchStringRegexes(rxs, wk.Name)
	}), nil
}

// NewIncludeTagProcessor keeps the workspaces that have at least one of the tags.
func NewIncludeTagProcessor(logger log.Logger, tags []string) Processor {
	if len(tags) == 0 {
		return NoopProcessor
	}

	logger = logger.WithValues(log.Kv{"workspace-processor": "IncludeTag"})
	return newFilterProcessor(logger, "Including workspaces by tag", func(wk model.WorkspaceView) bool {
		return hasAnyTag(wk.Workspace, tags)
	})
}

// NewExcludeTagProcessor removes the workspaces that have any of the tags.
func NewExcludeTagProcessor(logger log.Logger, tags []string) Processor {
	if len(tags) == 0 {
		return NoopProcessor
	}

	logger = logger.WithValues(log.Kv{"workspace-processor": "ExcludeTag"})
	return newFilterProcessor(logger, "Excluding workspaces by tag", func(wk model.WorkspaceView) bool {
		return !hasAnyTag(wk.Workspace, tags)
	})
}

// NewDriftedOnlyProcessor keeps only the workspaces with detected drift, the ones without
// details are removed as their drift is unknown.
func NewDriftedOnlyProcessor(logger log.Logger) Processor {
	logger = logger.WithValues(log.Kv{"workspace-processor": "DriftedOnly"})
	return newFilterProcessor(logger, "Filtering drifted workspaces", func(wk model.WorkspaceView) bool {
		return wk.DriftStatus() == model.DriftStatusDrifted
	})
}

func NewLimitMaxProcessor(logger log.Logger, max int) Processor {
	// If 0, then no limit.
	if max == 0 {
		return NoopProcessor
	}

	logger = logger.WithValues(log.Kv{"workspace-processor": "LimitMax"})
	return ProcessorFunc(func(ctx context.Context, wks []model.WorkspaceView) ([]model.WorkspaceView, error) {
		logger.Debugf("Limiting max workspaces to %d", max)
		if max >= len(wks) {
			return wks, nil
		}

		return wks[:max], nil
	})
}

func newFilterProcessor(logger log.Logger, msg string, keep func(wk model.WorkspaceView) bool) Processor {
	return ProcessorFunc(func(ctx context.Context, wks []model.WorkspaceView) ([]model.WorkspaceView, error) {
		logger.Debugf("%s", msg)

		newWks := []model.WorkspaceView{}
		for _, wk := range wks {
			if !keep(wk) {
				logger.WithValues(log.Kv{"workspace": wk.Name}).Debugf("Ignoring workspace")
				continue
			}

			newWks = append(newWks, wk)
		}

		return newWks, nil
	})
}

func hasAnyTag(wk model.Workspace, tags []string) bool {
	for _, t := range tags {
		if wk.HasTag(t) {
			return true
		}
	}

	return false
}

func compileRegexes(regexes []string) ([]*regexp.Regexp, error) {
	rxs := []*regexp.Regexp{}
	for _, r := range regexes {
		rx, err := regexp.Compile(r)
		if err != nil {
			return nil, fmt.Errorf("invalid regex: %w", err)
		}
		rxs = append(rxs, rx)
	}

	return rxs, nil
}

func matchStringRegexes(rxs []*regexp.Regexp, s string) bool {
	for _, rx := range rxs {
		if rx.MatchString(s) {
			return true
		}
	}

	return false
}
