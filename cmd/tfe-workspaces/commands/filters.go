package commands

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/workspace/process"
)

const repeatedArgSplitChar = ","

// workspaceFilters are the workspace selection flags shared by the commands.
type workspaceFilters struct {
	includeNameRegexes []string
	excludeNameRegexes []string
	includeTags        []string
	excludeTags        []string
	driftedOnly        bool
	sortBy             string
	limit              int
	hydrateRuns        bool
	hydrateWorkers     int
}

func (f *workspaceFilters) register(cmd *kingpin.CmdClause) {
	cmd.Flag("include-name", "Regex that if matches workspace name it will be included (can be repeated or comma separated).").Short('i').StringsVar(&f.includeNameRegexes)
	cmd.Flag("exclude-name", "Regex that if matches workspace name it will be excluded (can be repeated or comma separated).").Short('e').StringsVar(&f.excludeNameRegexes)
	cmd.Flag("include-tag", "The workspaces that match the tag will be included (can be repeated or comma separated).").Short('t').StringsVar(&f.includeTags)
	cmd.Flag("exclude-tag", "The workspaces that match the tag will be excluded (can be repeated or comma separated).").Short('x').StringsVar(&f.excludeTags)
	cmd.Flag("drifted-only", "Only the workspaces with detected drift.").BoolVar(&f.driftedOnly)
	cmd.Flag("sort", "The order of the workspaces.").Default(string(process.SortByAPI)).EnumVar(&f.sortBy, string(process.SortByAPI), string(process.SortByName), string(process.SortByLatestChange))
	cmd.Flag("limit", "The maximum number of workspaces, 0 is no limit.").Short('l').IntVar(&f.limit)
	cmd.Flag("hydrate-runs", "Get the latest run of the workspaces that don't have it.").BoolVar(&f.hydrateRuns)
	cmd.Flag("hydrate-workers", "The concurrency used to get the latest runs.").Default("10").IntVar(&f.hydrateWorkers)
}

// processors returns the selection processors in the order they need to be applied.
func (f workspaceFilters) processors(logger log.Logger, runs process.RunLister) ([]process.Processor, error) {
	if len(f.excludeNameRegexes) > 0 && len(f.includeNameRegexes) > 0 {
		return nil, fmt.Errorf("include and exclude name options can't be used at the same time")
	}

	if len(f.includeTags) > 0 && len(f.excludeTags) > 0 {
		return nil, fmt.Errorf("include and exclude tag options can't be used at the same time")
	}

	includeName, err := process.NewIncludeNameProcessor(logger, splitRepeatedArg(f.includeNameRegexes, repeatedArgSplitChar))
	if err != nil {
		return nil, fmt.Errorf("invalid include processor: %w", err)
	}

	excludeName, err := process.NewExcludeNameProcessor(logger, splitRepeatedArg(f.excludeNameRegexes, repeatedArgSplitChar))
	if err != nil {
		return nil, fmt.Errorf("invalid exclude processor: %w", err)
	}

	sorter, err := process.NewSortProcessor(logger, process.SortBy(f.sortBy))
	if err != nil {
		return nil, fmt.Errorf("invalid sort processor: %w", err)
	}

	ps := []process.Processor{
		includeName,
		excludeName,
		process.NewIncludeTagProcessor(logger, splitRepeatedArg(f.includeTags, repeatedArgSplitChar)),
		process.NewExcludeTagProcessor(logger, splitRepeatedArg(f.excludeTags, repeatedArgSplitChar)),
	}
	if f.driftedOnly {
		ps = append(ps, process.NewDriftedOnlyProcessor(logger))
	}
	ps = append(ps,
		sorter,
		process.NewLimitMaxProcessor(logger, f.limit),
	)
	if f.hydrateRuns {
		ps = append(ps, process.NewHydrateLatestRunProcessor(logger, runs, f.hydrateWorkers))
	}

	return ps, nil
}
