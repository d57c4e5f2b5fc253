package metrics

import (
	"context"
	"time"
)

// Recorder knows how to record the metrics of the app.
type Recorder interface {
	ObserveProviderOperation(ctx context.Context, provider, operation string, success bool, t time.Duration)
	IncProviderFallback(ctx context.Context, operation string)
	ObserveRefresh(ctx context.Context, success bool, t time.Duration)
}

// Noop recorder doesn't record anything.
const Noop = noop(0)

type noop int

func (noop) ObserveProviderOperation(_ context.Context, _, _ string, _ bool, _ time.Duration) {}
func (noop) IncProviderFallback(_ context.Context, _ string)                                  {}
func (noop) ObserveRefresh(_ context.Context, _ bool, _ time.Duration)                        {}
