package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Aggregation, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m.Data, true
			}
		}
	}
	return nil, false
}

// sumByAttr returns the counter value for the data point carrying key=value,
// or the total of all points when key is empty.
func sumByAttr(t *testing.T, reader *sdkmetric.ManualReader, name, key, value string) int64 {
	t.Helper()
	data, ok := collect(t, reader, name)
	if !ok {
		t.Fatalf("metric %q not recorded", name)
	}
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is %T, want Sum[int64]", name, data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if key != "" {
			if v, ok := dp.Attributes.Value(attribute.Key(key)); !ok || v.AsString() != value {
				continue
			}
		}
		total += dp.Value
	}
	return total
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t)

	m.RecordEffectDropped(ctx, "click")
	m.RecordEffectDropped(ctx, "click")
	m.RecordEffectDropped(ctx, "queue")
	m.RecordTrackRejected(ctx)
	m.RecordWriteError(ctx, "write")
	m.RecordWriteError(ctx, "retry")
	m.RecordRecovery(ctx, true)
	m.RecordRecovery(ctx, false)
	m.RecordRecovery(ctx, false)
	m.RecordShortWrite(ctx)

	tests := []struct {
		name, key, value string
		want             int64
	}{
		{"jukebox.effects.dropped", "", "", 3},
		{"jukebox.effects.dropped", "clip", "click", 2},
		{"jukebox.tracks.rejected", "", "", 1},
		{"jukebox.output.write_errors", "stage", "write", 1},
		{"jukebox.output.write_errors", "stage", "retry", 1},
		{"jukebox.output.recoveries", "status", "ok", 1},
		{"jukebox.output.recoveries", "status", "failed", 2},
		{"jukebox.output.short_writes", "", "", 1},
	}
	for _, tt := range tests {
		if got := sumByAttr(t, reader, tt.name, tt.key, tt.value); got != tt.want {
			t.Errorf("%s{%s=%q} = %d, want %d", tt.name, tt.key, tt.value, got, tt.want)
		}
	}
}

func TestRecordCycle(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t)

	m.RecordCycle(ctx, 0.0002)
	m.RecordCycle(ctx, 0.003)

	if got := sumByAttr(t, reader, "jukebox.mixer.cycles", "", ""); got != 2 {
		t.Errorf("cycles = %d, want 2", got)
	}
	data, ok := collect(t, reader, "jukebox.mixer.fill.duration")
	if !ok {
		t.Fatal("fill duration not recorded")
	}
	hist, ok := data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("fill duration is %T, want Histogram[float64]", data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("got %d data points, want 1", len(hist.DataPoints))
	}
	dp := hist.DataPoints[0]
	if dp.Count != 2 {
		t.Errorf("Count = %d, want 2", dp.Count)
	}
	if len(dp.Bounds) != len(fillBuckets) {
		t.Errorf("got %d bucket bounds, want %d", len(dp.Bounds), len(fillBuckets))
	}
}

func TestDefaultMetricsIsShared(t *testing.T) {
	if DefaultMetrics() != DefaultMetrics() {
		t.Error("DefaultMetrics returned different instances")
	}
}

func TestHandlerServesExposition(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
