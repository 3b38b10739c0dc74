package loom

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/loom-ui/loom/pkg/vdom"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMetricsRecordLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(reg))

	rt, err := New(Config{
		Backend: &recordingBackend{},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics,
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var set func(int)
	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		n, setN := UseState(ctx, 0)
		set = setN
		UseEffect(ctx, DepsOf(), func() Cleanup { return nil })
		return vdom.Span(vdom.Textf("%d", n))
	}}

	id := mustMount(t, rt, comp)
	if err := rt.Dispatch(func() { set(1) }); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if got := counterValue(t, metrics.renders); got != 2 {
		t.Errorf("renders_total = %v, want 2", got)
	}
	if got := counterValue(t, metrics.effects); got != 1 {
		t.Errorf("effects_run_total = %v, want 1", got)
	}
	if got := counterValue(t, metrics.patches); got != 1 {
		t.Errorf("patches_emitted_total = %v, want 1", got)
	}
	if got := gaugeValue(t, metrics.mounted); got != 1 {
		t.Errorf("components_mounted = %v, want 1", got)
	}

	if err := rt.Unmount(id); err != nil {
		t.Fatalf("Unmount error: %v", err)
	}
	if got := gaugeValue(t, metrics.mounted); got != 0 {
		t.Errorf("components_mounted = %v after unmount, want 0", got)
	}
}

func TestMetricsStormCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	rt, err := New(Config{
		Backend:        &recordingBackend{},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:        metrics,
		MaxDrainPasses: 4,
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	comp := &testComp{render: func(ctx *Ctx) *vdom.VNode {
		n, setN := UseState(ctx, 0)
		setN(n + 1)
		return vdom.Span(vdom.Textf("%d", n))
	}}

	if _, err := rt.Mount(comp); err == nil {
		t.Fatal("expected a render storm error")
	}
	if got := counterValue(t, metrics.storms); got != 1 {
		t.Errorf("render_storms_total = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.renderObserved(0, 3)
	m.effectRun()
	m.stormInc()
	m.setQueueDepth(5)
	m.mountedAdd(1)
}
