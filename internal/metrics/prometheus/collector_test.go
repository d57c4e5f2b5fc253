package prometheus_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	internalprometheus "github.com/slok/tfe-workspaces/internal/metrics/prometheus"
	"github.com/slok/tfe-workspaces/internal/metrics/prometheus/prometheusmock"
	"github.com/slok/tfe-workspaces/internal/model"
)

type providerInfoGetter struct {
	info *model.ProviderInfo
}

func (p providerInfoGetter) ActiveProviderInfo() *model.ProviderInfo { return p.info }

var workspaceMetricNames = []string{
	"tfe_workspaces_workspace_drift_state",
	"tfe_workspaces_workspace_info",
	"tfe_workspaces_workspace_latest_change",
	"tfe_workspaces_workspace_latest_run_create",
	"tfe_workspaces_workspace_latest_run_status",
	"tfe_workspaces_workspace_locked",
	"tfe_workspaces_workspace_resources",
}

func TestCollector(t *testing.T) {
	t0, _ := time.Parse(time.RFC3339, "2022-11-21T17:43:53+00:00")

	tests := map[string]struct {
		mock           func(ms *prometheusmock.WorkspaceSource)
		providerInfo   *model.ProviderInfo
		expMetrics     string
		expMetricNames []string
	}{
		"No workspaces shouldn't return any metric.": {
			mock: func(ms *prometheusmock.WorkspaceSource) {
				ms.On("ListWorkspaces", mock.Anything).Once().Return([]model.WorkspaceView{}, nil)
			},
			expMetrics:     ``,
			expMetricNames: workspaceMetricNames,
		},

		"Failing listing workspaces shouldn't return any metric.": {
			mock: func(ms *prometheusmock.WorkspaceSource) {
				ms.On("ListWorkspaces", mock.Anything).Once().Return(nil, fmt.Errorf("something"))
			},
			providerInfo:   &model.ProviderInfo{Name: model.ProviderTypeHTTP, Version: "2.6"},
			expMetrics:     ``,
			expMetricNames: append([]string{"tfe_workspaces_provider_info"}, workspaceMetricNames...),
		},

		"Having workspaces should return metrics.": {
			mock: func(ms *prometheusmock.WorkspaceSource) {
				wks := []model.WorkspaceView{
					{
						Enriched: true,
						WorkspaceWithDetails: model.WorkspaceWithDetails{
							Workspace: model.Workspace{
								ID:             "test-id-1",
								Name:           "test1",
								Organization:   "test-org",
								ExecutionMode:  model.ExecutionModeRemote,
								TagNames:       []string{"t1b", "t1a"},
								ResourceCount:  12,
								LatestChangeAt: t0.Add(10 * time.Second),
								HTMLURL:        "https://test1.dev",
							},
							LatestRun:               &model.Run{ID: "run-1", Status: model.RunStatusApplied, CreatedAt: t0},
							CurrentAssessmentResult: &model.AssessmentResult{Succeeded: true, Drifted: true},
						},
					},
					{
						WorkspaceWithDetails: model.WorkspaceWithDetails{
							Workspace: model.Workspace{
								ID:            "test-id-2",
								Name:          "test2",
								Organization:  "test-org",
								ExecutionMode: model.ExecutionModeLocal,
								Locked:        true,
								HTMLURL:       "https://test2.dev",
							},
						},
					},
				}
				ms.On("ListWorkspaces", mock.Anything).Once().Return(wks, nil)
			},
			providerInfo: &model.ProviderInfo{Name: model.ProviderTypeHCPT, Version: "0.5.0"},
			expMetrics: `
# HELP tfe_workspaces_provider_info The active provider used to get the workspaces.
# TYPE tfe_workspaces_provider_info gauge
tfe_workspaces_provider_info{provider="hcpt",version="0.5.0"} 1

# HELP tfe_workspaces_workspace_drift_state The drift state of the workspace based on its current health assessment.
# TYPE tfe_workspaces_workspace_drift_state gauge
tfe_workspaces_workspace_drift_state{state="drifted",workspace_name="test1"} 1
tfe_workspaces_workspace_drift_state{state="drifted",workspace_name="test2"} 0
tfe_workspaces_workspace_drift_state{state="loading",workspace_name="test1"} 0
tfe_workspaces_workspace_drift_state{state="loading",workspace_name="test2"} 1
tfe_workspaces_workspace_drift_state{state="no-drift",workspace_name="test1"} 0
tfe_workspaces_workspace_drift_state{state="no-drift",workspace_name="test2"} 0
tfe_workspaces_workspace_drift_state{state="unavailable",workspace_name="test1"} 0
tfe_workspaces_workspace_drift_state{state="unavailable",workspace_name="test2"} 0

# HELP tfe_workspaces_workspace_info Information of the workspace.
# TYPE tfe_workspaces_workspace_info gauge
tfe_workspaces_workspace_info{execution_mode="local",organization_name="test-org",tags="",url="https://test2.dev",workspace_id="test-id-2",workspace_name="test2"} 1
tfe_workspaces_workspace_info{execution_mode="remote",organization_name="test-org",tags="t1a,t1b",url="https://test1.dev",workspace_id="test-id-1",workspace_name="test1"} 1

# HELP tfe_workspaces_workspace_latest_change Unix epoch timestamp of the latest change of the workspace.
# TYPE tfe_workspaces_workspace_latest_change gauge
tfe_workspaces_workspace_latest_change{workspace_name="test1"} 1.669052643e+09

# HELP tfe_workspaces_workspace_latest_run_create Unix epoch timestamp when the latest run was created.
# TYPE tfe_workspaces_workspace_latest_run_create gauge
tfe_workspaces_workspace_latest_run_create{workspace_name="test1"} 1.669052633e+09

# HELP tfe_workspaces_workspace_latest_run_status The status of the latest run of the workspace.
# TYPE tfe_workspaces_workspace_latest_run_status gauge
tfe_workspaces_workspace_latest_run_status{category="success",run_id="run-1",status="applied",workspace_name="test1"} 1

# HELP tfe_workspaces_workspace_locked 1 if the workspace is locked.
# TYPE tfe_workspaces_workspace_locked gauge
tfe_workspaces_workspace_locked{workspace_name="test1"} 0
tfe_workspaces_workspace_locked{workspace_name="test2"} 1

# HELP tfe_workspaces_workspace_resources The number of resources managed by the workspace.
# TYPE tfe_workspaces_workspace_resources gauge
tfe_workspaces_workspace_resources{workspace_name="test1"} 12
tfe_workspaces_workspace_resources{workspace_name="test2"} 0
`,
			expMetricNames: append([]string{"tfe_workspaces_provider_info"}, workspaceMetricNames...),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ms := prometheusmock.NewWorkspaceSource(t)
			test.mock(ms)

			// Create collector.
			c, err := internalprometheus.NewCollector(internalprometheus.CollectorConfig{
				Source:       ms,
				ProviderInfo: providerInfoGetter{info: test.providerInfo},
			})
			require.NoError(t, err)

			// Register exporter.
			reg := prometheus.NewRegistry()
			reg.MustRegister(c)

			// Check metrics.
			err = testutil.GatherAndCompare(reg, strings.NewReader(test.expMetrics), test.expMetricNames...)
			assert.NoError(err)
		})
	}
}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := internalprometheus.NewRecorder(reg)

	rec.IncProviderFallback(context.TODO(), "ListRuns")
	rec.IncProviderFallback(context.TODO(), "ListRuns")
	rec.IncProviderFallback(context.TODO(), "GetWorkspace")

	exp := `
# HELP tfe_workspaces_provider_fallbacks_total The number of operations retried on the HTTP API after a CLI failure.
# TYPE tfe_workspaces_provider_fallbacks_total counter
tfe_workspaces_provider_fallbacks_total{operation="GetWorkspace"} 1
tfe_workspaces_provider_fallbacks_total{operation="ListRuns"} 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(exp), "tfe_workspaces_provider_fallbacks_total")
	assert.NoError(t, err)
}
