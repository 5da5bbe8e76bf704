package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/kiritoko1029/glmcode/internal/platform"
	"github.com/kiritoko1029/glmcode/internal/quota"
	"github.com/rs/zerolog"
)

func TestPlanOf(t *testing.T) {
	if got := planOf(sampleQuota()); got != quota.PlanLite {
		t.Errorf("planOf(sample) = %s, want Lite", got)
	}
	if got := planOf(nil); got != quota.PlanUnknown {
		t.Errorf("planOf(nil) = %s, want Unknown", got)
	}

	q := sampleQuota()
	q.Limits = q.Limits[1:]
	if got := planOf(q); got != quota.PlanUnknown {
		t.Errorf("planOf(no tokens limit) = %s, want Unknown", got)
	}
}

func TestSpeedLine(t *testing.T) {
	perf := &monitor.ModelPerformance{
		LiteDecodeSpeed:   []float64{40, 45, 50, 55, 60, 70},
		ProMaxDecodeSpeed: []float64{1500, 1400, 1200},
	}

	lite := SpeedLine(summarizePerformance(sampleQuota(), perf))
	for _, want := range []string{"Lite ↗70t/s", " ▂▃▅█"} {
		if !strings.Contains(lite, want) {
			t.Errorf("SpeedLine() = %q, missing %q", lite, want)
		}
	}

	unknown := SpeedLine(summarizePerformance(nil, perf))
	if !strings.HasPrefix(unknown, "Unknown ↘1.2kt/s ") {
		t.Errorf("SpeedLine() = %q", unknown)
	}
}

func TestFetchSpeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("startTime") == "" || r.URL.Query().Get("endTime") == "" {
			t.Errorf("expected a time window, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":{"liteDecodeSpeed":[50,50],"proMaxDecodeSpeed":[80,80]}}`))
	}))
	defer server.Close()

	target := &platform.Target{
		Platform:  platform.ZAI,
		Endpoints: platform.Endpoints{ModelPerformance: server.URL + "/api/monitor/usage/model-performance"},
	}
	client := monitor.NewClient("tok", zerolog.Nop())

	got, err := fetchSpeed(context.Background(), client, target, sampleQuota(), testNow)
	if err != nil {
		t.Fatalf("fetchSpeed() error = %v", err)
	}
	if !strings.HasPrefix(got, "Lite →50t/s ") || !strings.Contains(got, "▄▄") {
		t.Errorf("fetchSpeed() = %q", got)
	}
}

func TestFetchSpeed_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer server.Close()

	target := &platform.Target{Endpoints: platform.Endpoints{ModelPerformance: server.URL}}
	client := monitor.NewClient("tok", zerolog.Nop())

	_, err := fetchSpeed(context.Background(), client, target, nil, testNow)
	if err == nil || !strings.HasPrefix(err.Error(), "[Model performance] HTTP 403") {
		t.Fatalf("fetchSpeed() error = %v", err)
	}
}
