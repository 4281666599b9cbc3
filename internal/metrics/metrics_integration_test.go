package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/observability"
	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
	"github.com/mohammed-shakir/geotime-toolkit/internal/timeslider"
)

func assertHasMetricLine(t *testing.T, body, metric string, wantLabels ...string) {
	t.Helper()
	for ln := range strings.SplitSeq(body, "\n") {
		if !strings.HasPrefix(ln, metric+"{") {
			continue
		}
		ok := true
		for _, s := range wantLabels {
			if !strings.Contains(ln, s) {
				ok = false
				break
			}
		}
		if ok && (len(ln) > 0 && ln[len(ln)-1] >= '0' && ln[len(ln)-1] <= '9') {
			return
		}
	}
	t.Fatalf("expected a %s line with labels %v; got:\n%s", metric, wantLabels, body)
}

func Test_AppMetrics_CustomRegistry_Smoke(t *testing.T) {
	p := Init(Config{Build: BuildInfo{Version: "test"}})
	observability.Init(p.Registerer(), true)
	observability.SetView("map")

	c := timeslider.New(timeslider.Options{Register: p.Registerer()})
	c.SetView(geoview.NewMapView(geoview.NewMap(nil)))
	observability.ObserveHTTP("PUT", "/v1/slider/steps", 204, 0.001)
	observability.IncKafkaConsumerError("decode")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	mustContain := []string{
		`timeslider_reconciles_total{trigger="view_rebound"} 1`,
		`timeslider_active_subscriptions 2`,
		`kafka_consumer_errors_total{kind="decode",view="map"} 1`,
		`http_request_duration_seconds_count`,
	}
	for _, s := range mustContain {
		if !strings.Contains(body, s) {
			t.Fatalf("expected metrics to contain %q;\n---\n%s", s, body)
		}
	}

	assertHasMetricLine(t, body, "http_requests_total",
		`method="PUT"`, `route="/v1/slider/steps"`, `status="204"`)
	assertHasMetricLine(t, body, "timeslider_build_info",
		`version="test"`)
}
