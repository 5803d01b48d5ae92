// Package observe holds the jukebox's OpenTelemetry metric instruments and
// the Prometheus bridge used to scrape them.
//
// Components record through a [Metrics] value. [DefaultMetrics] is built on
// the global meter provider, which is a no-op until [InitProvider] installs
// the Prometheus-backed SDK provider. Tests should use [NewMetrics] with
// their own provider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/rayhong24/MP3-Embedded-System"

// Metrics holds all metric instruments. The OTel types are safe for
// concurrent use.
type Metrics struct {
	// EffectsDropped counts effect requests rejected because every slot
	// was busy.
	EffectsDropped metric.Int64Counter

	// TracksRejected counts tracks that did not fit in the music queue.
	TracksRejected metric.Int64Counter

	// WriteErrors counts failed hardware writes. Use with attribute
	// attribute.String("stage", "write"|"retry").
	WriteErrors metric.Int64Counter

	// Recoveries counts recovery attempts. Use with attribute
	// attribute.String("status", "ok"|"failed").
	Recoveries metric.Int64Counter

	// ShortWrites counts writes that accepted fewer frames than offered.
	ShortWrites metric.Int64Counter

	// Cycles counts completed mix-and-write cycles.
	Cycles metric.Int64Counter

	// FillDuration tracks how long one FillBuffer pass takes.
	FillDuration metric.Float64Histogram
}

// fillBuckets are histogram boundaries (seconds) sized for a mix pass that
// must finish well inside one ~10ms hardware period.
var fillBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01,
}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.EffectsDropped, err = m.Int64Counter("jukebox.effects.dropped",
		metric.WithDescription("Effect requests dropped because the slot pool was full."),
	); err != nil {
		return nil, err
	}
	if met.TracksRejected, err = m.Int64Counter("jukebox.tracks.rejected",
		metric.WithDescription("Tracks rejected because the music queue was full."),
	); err != nil {
		return nil, err
	}
	if met.WriteErrors, err = m.Int64Counter("jukebox.output.write_errors",
		metric.WithDescription("Failed writes to the audio device by stage."),
	); err != nil {
		return nil, err
	}
	if met.Recoveries, err = m.Int64Counter("jukebox.output.recoveries",
		metric.WithDescription("Audio device recovery attempts by status."),
	); err != nil {
		return nil, err
	}
	if met.ShortWrites, err = m.Int64Counter("jukebox.output.short_writes",
		metric.WithDescription("Writes that accepted fewer frames than offered."),
	); err != nil {
		return nil, err
	}
	if met.Cycles, err = m.Int64Counter("jukebox.mixer.cycles",
		metric.WithDescription("Completed mix and write cycles."),
	); err != nil {
		return nil, err
	}
	if met.FillDuration, err = m.Float64Histogram("jukebox.mixer.fill.duration",
		metric.WithDescription("Time spent mixing one output period."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(fillBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] built on
// [otel.GetMeterProvider]. Panics if instrument creation fails, which does
// not happen with the global provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

func (m *Metrics) RecordEffectDropped(ctx context.Context, clip string) {
	m.EffectsDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("clip", clip)))
}

func (m *Metrics) RecordTrackRejected(ctx context.Context) {
	m.TracksRejected.Add(ctx, 1)
}

func (m *Metrics) RecordWriteError(ctx context.Context, stage string) {
	m.WriteErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *Metrics) RecordRecovery(ctx context.Context, ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.Recoveries.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) RecordShortWrite(ctx context.Context) {
	m.ShortWrites.Add(ctx, 1)
}

// RecordCycle records one finished cycle and how long its mix pass took.
func (m *Metrics) RecordCycle(ctx context.Context, fillSeconds float64) {
	m.Cycles.Add(ctx, 1)
	m.FillDuration.Record(ctx, fillSeconds)
}
