package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slok/tfe-workspaces/internal/controller"
	"github.com/slok/tfe-workspaces/internal/log"
	internalprometheus "github.com/slok/tfe-workspaces/internal/metrics/prometheus"
	"github.com/slok/tfe-workspaces/internal/model"
	"github.com/slok/tfe-workspaces/internal/workspace/aggregate"
	"github.com/slok/tfe-workspaces/internal/workspace/process"
)

type ExporterCommand struct {
	cmd        *kingpin.CmdClause
	rootConfig *RootCommand

	org             string
	search          string
	filters         workspaceFilters
	refreshInterval time.Duration
	metricsTimeout  time.Duration
	ListenAddress   string
	MetricsPath     string
	HealthCheckPath string
	PprofPath       string
}

// NewExporterCommand returns the exporter command.
func NewExporterCommand(rootConfig *RootCommand, app *kingpin.Application) *ExporterCommand {
	cmd := app.Command("exporter", "Refreshes the workspaces in regular intervals and serves them as Prometheus metrics.")
	c := &ExporterCommand{
		cmd:        cmd,
		rootConfig: rootConfig,
	}

	cmd.Flag("org", "The organization, the first one of the user if not set.").StringVar(&c.org)
	cmd.Flag("search", "Only the workspaces whose name contains the search.").Short('s').StringVar(&c.search)
	c.filters.register(cmd)
	cmd.Flag("refresh-interval", "The interval the workspaces will be refreshed.").Default("5m").DurationVar(&c.refreshInterval)
	cmd.Flag("metrics-exporter-timeout", "Duration timeout used for the prometheus exporter metrics collector.").Default("45s").DurationVar(&c.metricsTimeout)
	cmd.Flag("listen-address", "The address where the server will be listening.").Default(":8080").StringVar(&c.ListenAddress)
	cmd.Flag("metrics-path", "The path where Prometheus metrics will be served.").Default("/metrics").StringVar(&c.MetricsPath)
	cmd.Flag("health-check-path", "The path where the health check will be served.").Default("/status").StringVar(&c.HealthCheckPath)
	cmd.Flag("pprof-path", "The path where the pprof handlers will be served.").Default("/debug/pprof").StringVar(&c.PprofPath)

	return c
}

func (c ExporterCommand) Name() string { return c.cmd.FullCommand() }
func (c ExporterCommand) Run(ctx context.Context) error {
	logger := c.rootConfig.Logger
	notVerboseLogger := infoAsDebugLogger{Logger: logger}

	recorder := internalprometheus.NewRecorder(prometheus.DefaultRegisterer)
	sel, err := newSelector(*c.rootConfig, recorder)
	if err != nil {
		return err
	}

	org, err := resolveOrg(ctx, *c.rootConfig, sel, c.org)
	if err != nil {
		return err
	}

	ps, err := c.filters.processors(notVerboseLogger, sel)
	if err != nil {
		return err
	}

	fetcher, err := aggregate.NewFetcher(aggregate.FetcherConfig{Lister: sel, Logger: notVerboseLogger})
	if err != nil {
		return err
	}

	refresher, err := controller.NewRefresher(controller.RefresherConfig{
		Logger:             logger,
		Interval:           c.refreshInterval,
		Fetcher:            fetcher,
		Query:              aggregate.Query{Org: org, Search: c.search},
		WorkspaceProcessor: process.NewProcessorChain(ps),
		MetricsRecorder:    recorder,
	})
	if err != nil {
		return fmt.Errorf("controller refresher could not be created: %w", err)
	}

	var g run.Group

	// Refresher.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := refresher.Run(ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("controller refresher had an error: %w", err)
				}

				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// Serving HTTP server.
	{
		// Register metrics collector to create the exporter.
		promCollector, err := internalprometheus.NewCollector(internalprometheus.CollectorConfig{
			Source:       refresher,
			ProviderInfo: sel,
			Timeout:      c.metricsTimeout,
			Logger:       logger,
		})
		if err != nil {
			return fmt.Errorf("could not create prometheus collector: %w", err)
		}
		prometheus.DefaultRegisterer.MustRegister(promCollector)

		logger := logger.WithValues(log.Kv{
			"addr":         c.ListenAddress,
			"metrics":      c.MetricsPath,
			"health-check": c.HealthCheckPath,
			"pprof":        c.PprofPath,
		})
		mux := http.NewServeMux()

		// Metrics.
		mux.Handle(c.MetricsPath, promhttp.Handler())

		// Pprof.
		mux.HandleFunc(c.PprofPath+"/", pprof.Index)
		mux.HandleFunc(c.PprofPath+"/cmdline", pprof.Cmdline)
		mux.HandleFunc(c.PprofPath+"/profile", pprof.Profile)
		mux.HandleFunc(c.PprofPath+"/symbol", pprof.Symbol)
		mux.HandleFunc(c.PprofPath+"/trace", pprof.Trace)

		// Health check.
		mux.Handle(c.HealthCheckPath, newStatusHandler(refresher, sel))

		// Create server.
		server := &http.Server{
			Addr:    c.ListenAddress,
			Handler: mux,
		}

		g.Add(
			func() error {
				logger.Infof("HTTP server listening for requests")
				return server.ListenAndServe()
			},
			func(_ error) {
				logger.Infof("HTTP server shutdown, draining connections...")

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				err := server.Shutdown(ctx)
				if err != nil {
					logger.Errorf("Error shutting down server: %s", err)
				}

				logger.Infof("Connections drained")
			},
		)
	}

	// In case we are stopped from the upper level context.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

type statusGetter interface {
	Status() controller.Status
}

type providerInfoGetter interface {
	ActiveProviderInfo() *model.ProviderInfo
}

type statusResponse struct {
	controller.Status
	Provider        string `json:"provider,omitempty"`
	ProviderVersion string `json:"provider_version,omitempty"`
}

// newStatusHandler returns the health check handler, it fails until the first refresh succeeds.
func newStatusHandler(s statusGetter, p providerInfoGetter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{Status: s.Status()}
		if info := p.ActiveProviderInfo(); info != nil {
			resp.Provider = string(info.Name)
			resp.ProviderVersion = info.Version
		}

		w.Header().Set("Content-Type", "application/json")
		if !resp.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
}

// infoAsDebugLogger is a logger that will be used when we have reusable components that
// in some cases we want them verbose and others not.
type infoAsDebugLogger struct {
	log.Logger
}

func (i infoAsDebugLogger) Infof(format string, args ...any) {
	i.Logger.Debugf(format, args...)
}

func (i infoAsDebugLogger) WithValues(kv log.Kv) log.Logger {
	return infoAsDebugLogger{Logger: i.Logger.WithValues(kv)}
}

func (i infoAsDebugLogger) WithCtxValues(ctx context.Context) log.Logger {
	return infoAsDebugLogger{Logger: i.Logger.WithCtxValues(ctx)}
}
