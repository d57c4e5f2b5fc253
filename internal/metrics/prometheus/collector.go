package prometheus

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/tfe-workspaces/internal/info"
	"github.com/slok/tfe-workspaces/internal/log"
	"github.com/slok/tfe-workspaces/internal/model"
)

// WorkspaceSource returns the workspaces to export.
type WorkspaceSource interface {
	ListWorkspaces(ctx context.Context) ([]model.WorkspaceView, error)
}

//go:generate mockery --case underscore --output prometheusmock --outpkg prometheusmock --name WorkspaceSource

// ProviderInfoGetter returns the active provider, nil if there is none yet.
type ProviderInfoGetter interface {
	ActiveProviderInfo() *model.ProviderInfo
}

var driftStates = []model.DriftStatus{
	model.DriftStatusDrifted,
	model.DriftStatusNoDrift,
	model.DriftStatusUnavailable,
	model.DriftStatusLoading,
}

type CollectorConfig struct {
	Source       WorkspaceSource
	ProviderInfo ProviderInfoGetter
	Timeout      time.Duration
	Logger       log.Logger
}

func (c *CollectorConfig) defaults() error {
	if c.Source == nil {
		return fmt.Errorf("workspace source is required")
	}

	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "prometheus.Collector"})

	return nil
}

type collector struct {
	source       WorkspaceSource
	providerInfo ProviderInfoGetter
	timeout      time.Duration
	logger       log.Logger

	driftStateDesc   *prometheus.Desc
	infoDesc         *prometheus.Desc
	runStatusDesc    *prometheus.Desc
	runCreatedDesc   *prometheus.Desc
	resourcesDesc    *prometheus.Desc
	lockedDesc       *prometheus.Desc
	latestChangeDesc *prometheus.Desc
	providerInfoDesc *prometheus.Desc
}

func NewCollector(config CollectorConfig) (prometheus.Collector, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return collector{
		source:       config.Source,
		providerInfo: config.ProviderInfo,
		timeout:      config.Timeout,
		logger:       config.Logger,

		driftStateDesc: prometheus.NewDesc(
			prometheus.BuildFQName(info.PrometheusNamespace, "workspace", "drift_state"),
			"The drift state of the workspace based on its current health assessment.",
			[]string{"workspace_name", "state"}, nil,
		),
		infoDesc: prometheus.NewDesc(
			prometheus.BuildFQName(info.PrometheusNamespace, "workspace", "info"),
			"Information of the workspace.",
			[]string{"workspace_name", "workspace_id", "organization_name", "tags", "execution_mode", "url"}, nil,
		),
		runStatusDesc: prometheus.NewDesc(
			prometheus.BuildFQName(info.PrometheusNamespace, "workspace", "latest_run_status"),
			"The status of the latest run of the workspace.",
			[]string{"workspace_name", "run_id", "status", "category"}, nil,
		),
		runCreatedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(info.PrometheusNamespace, "workspace", "latest_run_create"),
			"Unix epoch timestamp when the latest run was created.",
			[]string{"workspace_name"}, nil,
		),
		resourcesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(info.PrometheusNamespace, "workspace", "resources"),
			"The number of resources managed by the workspace.",
			[]string{"workspace_name"}, nil,
		),
		lockedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(info.PrometheusNamespace, "workspace", "locked"),
			"1 if the workspace is locked.",
			[]string{"workspace_name"}, nil,
		),
		latestChangeDesc: prometheus.NewDesc(
			prometheus.BuildFQName(info.PrometheusNamespace, "workspace", "latest_change"),
			"Unix epoch timestamp of the latest change of the workspace.",
			[]string{"workspace_name"}, nil,
		),
		providerInfoDesc: prometheus.NewDesc(
			prometheus.BuildFQName(info.PrometheusNamespace, "provider", "info"),
			"The active provider used to get the workspaces.",
			[]string{"provider", "version"}, nil,
		),
	}, nil
}

func (c collector) Describe(ch chan<- *prometheus.Desc) {}
func (c collector) Collect(ch chan<- prometheus.Metric) {
	c.logger.Debugf("Collection started")
	defer c.logger.Debugf("Collection finished")

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	metrics, err := c.collect(ctx)
	if err != nil {
		c.logger.Errorf("Collection error: %s", err)
		return
	}

	for _, metric := range metrics {
		ch <- metric
	}
}

func (c collector) collect(ctx context.Context) ([]prometheus.Metric, error) {
	metrics := []prometheus.Metric{}

	if c.providerInfo != nil {
		if pi := c.providerInfo.ActiveProviderInfo(); pi != nil {
			metrics = append(metrics, prometheus.MustNewConstMetric(c.providerInfoDesc, prometheus.GaugeValue, 1, string(pi.Name), pi.Version))
		}
	}

	wks, err := c.source.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list workspaces: %w", err)
	}

	for _, wk := range wks {
		// Write all state metrics setting 1 to the state we are in, 0 on the others.
		state := wk.DriftStatus()
		for _, s := range driftStates {
			value := 0.0
			if s == state {
				value = 1
			}
			metrics = append(metrics, prometheus.MustNewConstMetric(c.driftStateDesc, prometheus.GaugeValue, value, wk.Name, string(s)))
		}

		tags := make([]string, len(wk.TagNames))
		copy(tags, wk.TagNames)
		sort.Strings(tags)

		locked := 0.0
		if wk.Locked {
			locked = 1
		}

		metrics = append(metrics,
			prometheus.MustNewConstMetric(c.infoDesc, prometheus.GaugeValue, 1, wk.Name, wk.ID, wk.Organization, strings.Join(tags, ","), string(wk.ExecutionMode), wk.HTMLURL),
			prometheus.MustNewConstMetric(c.resourcesDesc, prometheus.GaugeValue, float64(wk.ResourceCount), wk.Name),
			prometheus.MustNewConstMetric(c.lockedDesc, prometheus.GaugeValue, locked, wk.Name),
		)

		if !wk.LatestChangeAt.IsZero() {
			metrics = append(metrics, prometheus.MustNewConstMetric(c.latestChangeDesc, prometheus.GaugeValue, float64(wk.LatestChangeAt.Unix()), wk.Name))
		}

		if wk.LatestRun != nil {
			metrics = append(metrics,
				prometheus.MustNewConstMetric(c.runStatusDesc, prometheus.GaugeValue, 1, wk.Name, wk.LatestRun.ID, string(wk.LatestRun.Status), string(wk.LatestRun.Status.Category())),
				prometheus.MustNewConstMetric(c.runCreatedDesc, prometheus.GaugeValue, float64(wk.LatestRun.CreatedAt.Unix()), wk.Name),
			)
		}
	}

	return metrics, nil
}
