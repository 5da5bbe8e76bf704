package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kiritoko1029/glmcode/internal/platform"
	"github.com/rs/zerolog"
)

type stubGetter struct {
	mu    sync.Mutex
	calls int
	body  string
	err   error
}

func (s *stubGetter) Get(ctx context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.body), nil
}

const quotaBody = `{"code":200,"success":true,"data":{"limits":[
	{"type":"TOKENS_LIMIT","unit":3,"number":5,"usage":200000000,"currentValue":1000,"remaining":199999000,"percentage":12,"nextResetTime":1710469800000},
	{"type":"TIME_LIMIT","unit":5,"number":1,"usage":1000,"currentValue":20,"remaining":980,"percentage":2}
]}}`

func newTestServer(g *stubGetter, ttl time.Duration) *Server {
	target := &platform.Target{
		Platform: platform.ZHIPU,
		Endpoints: platform.Endpoints{
			QuotaLimit: "https://open.bigmodel.cn/api/monitor/usage/quota/limit",
		},
	}
	return NewServer(g, target, Options{Addr: "127.0.0.1:0", CacheTTL: ttl, Logger: zerolog.Nop()})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubGetter{body: quotaBody}, time.Minute)

	rec := get(t, s.Router(), "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "ok" || body["platform"] != "ZHIPU" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestQuota_CachesResponse(t *testing.T) {
	g := &stubGetter{body: quotaBody}
	s := newTestServer(g, time.Minute)
	h := s.Router()

	first := get(t, h, "/api/v1/quota")
	if first.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d: %s", first.Code, first.Body.String())
	}
	if first.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first request should miss the cache")
	}
	if !strings.Contains(first.Body.String(), `"planName":"套餐: Pro"`) {
		t.Errorf("quota should be processed, got %s", first.Body.String())
	}

	second := get(t, h, "/api/v1/quota")
	if second.Header().Get("X-Cache") != "HIT" {
		t.Errorf("second request should hit the cache")
	}
	if g.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", g.calls)
	}
}

func TestQuota_ExpiredCacheRefetches(t *testing.T) {
	g := &stubGetter{body: quotaBody}
	s := newTestServer(g, time.Nanosecond)
	h := s.Router()

	get(t, h, "/api/v1/quota")
	time.Sleep(time.Millisecond)
	rec := get(t, h, "/api/v1/quota")

	if rec.Header().Get("X-Cache") != "MISS" {
		t.Error("expired cache should miss")
	}
	if g.calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", g.calls)
	}
}

func TestQuota_UpstreamError(t *testing.T) {
	g := &stubGetter{err: io.ErrUnexpectedEOF}
	s := newTestServer(g, time.Minute)

	rec := get(t, s.Router(), "/api/v1/quota")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "[Quota limit]") {
		t.Errorf("error should name the endpoint, got %s", rec.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(&stubGetter{body: quotaBody}, time.Minute)

	rec := get(t, s.Router(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	text := rec.Body.String()
	for _, want := range []string{
		`glm_quota_percentage{platform="ZHIPU",type="TOKENS_LIMIT"} 12`,
		`glm_quota_remaining{platform="ZHIPU",type="TIME_LIMIT"} 980`,
		`glm_quota_next_reset_timestamp_seconds{platform="ZHIPU",type="TOKENS_LIMIT"} 1.7104698e+09`,
		`glm_quota_refresh_errors_total 0`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %q:\n%s", want, text)
		}
	}
}

func TestMetrics_CountsRefreshErrors(t *testing.T) {
	s := newTestServer(&stubGetter{err: io.ErrUnexpectedEOF}, time.Minute)

	rec := get(t, s.Router(), "/metrics")
	if !strings.Contains(rec.Body.String(), "glm_quota_refresh_errors_total 1") {
		t.Errorf("expected a counted refresh error:\n%s", rec.Body.String())
	}
}

func TestCache(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	if _, ok := c.Fresh(); ok {
		t.Fatal("empty cache should miss")
	}

	c.Store(&Snapshot{Processed: "x"})
	snap, ok := c.Fresh()
	if !ok || snap.Processed != "x" {
		t.Fatalf("expected cached snapshot, got %+v %v", snap, ok)
	}
	if !snap.FetchedAt.Equal(now) {
		t.Errorf("expected snapshot stamped at %v, got %v", now, snap.FetchedAt)
	}

	now = now.Add(time.Minute)
	if _, ok := c.Fresh(); !ok {
		t.Error("snapshot exactly ttl old should still hit")
	}

	now = now.Add(time.Second)
	if _, ok := c.Fresh(); ok {
		t.Error("snapshot older than ttl should miss")
	}
}

func TestCache_KeepsFetchedAt(t *testing.T) {
	fetched := time.Date(2024, 3, 15, 9, 59, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return fetched.Add(2 * time.Minute) }

	c.Store(&Snapshot{FetchedAt: fetched})
	if _, ok := c.Fresh(); ok {
		t.Error("age should be measured from the snapshot's FetchedAt")
	}
}

func TestQuota_StringResetTime(t *testing.T) {
	body := `{"data":{"limits":[{"type":"TOKENS_LIMIT","unit":3,"number":5,"usage":40000000,"percentage":7,"nextResetTime":"1710469800000"}]}}`
	s := newTestServer(&stubGetter{body: body}, time.Minute)
	h := s.Router()

	rec := get(t, h, "/api/v1/quota")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Last-Modified") == "" {
		t.Error("expected Last-Modified header")
	}

	metrics := get(t, h, "/metrics").Body.String()
	want := `glm_quota_next_reset_timestamp_seconds{platform="ZHIPU",type="TOKENS_LIMIT"} 1.7104698e+09`
	if !strings.Contains(metrics, want) {
		t.Errorf("metrics missing %q:\n%s", want, metrics)
	}
}
