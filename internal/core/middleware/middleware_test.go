package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/observability"
	mylog "github.com/mohammed-shakir/geotime-toolkit/internal/logger"
)

func TestLogging_PropagatesRequestID(t *testing.T) {
	var seen string
	h := Logging(slog.Default(), "map")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = mylog.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != "abc" || rr.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("seen=%q header=%q", seen, rr.Header().Get("X-Request-ID"))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get("X-Request-ID") != seen {
		t.Fatalf("generated id not propagated: ctx=%q header=%q", seen, rr.Header().Get("X-Request-ID"))
	}
}

func TestRecover_Returns500(t *testing.T) {
	h := Recover(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", rr.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("preflight reached handler")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/slider/steps", nil))
	if rr.Code != http.StatusNoContent || !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), "PUT") {
		t.Fatalf("status=%d headers=%v", rr.Code, rr.Header())
	}
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.Init(reg, true)

	r := chi.NewRouter()
	r.Use(Metrics())
	r.Get("/v1/slider/steps/{step}/time", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/slider/steps/7/time", nil))

	rr := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `http_requests_total{method="GET",route="/v1/slider/steps/{step}/time",status="404",view="map"} 1`
	if !strings.Contains(rr.Body.String(), want) {
		t.Fatalf("expected %q in:\n%s", want, rr.Body.String())
	}
}
