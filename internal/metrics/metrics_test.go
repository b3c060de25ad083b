package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andreiashu/safemap"
)

// counterValue reads a counter from the default registry; missing series
// read as zero.
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserverSwitch(t *testing.T) {
	var o Observer
	ok := map[string]string{"city": "nyc", "status": "ok"}
	failed := map[string]string{"city": "nyc", "status": "error"}
	okBefore := counterValue(t, "safemap_city_switches_total", ok)
	errBefore := counterValue(t, "safemap_city_switches_total", failed)

	o.SwitchDone(safemap.NewYork, 3*time.Millisecond, nil)
	o.SwitchDone(safemap.NewYork, time.Millisecond, errors.New("boom"))

	if got := counterValue(t, "safemap_city_switches_total", ok); got != okBefore+1 {
		t.Errorf("ok switches = %v, want %v", got, okBefore+1)
	}
	if got := counterValue(t, "safemap_city_switches_total", failed); got != errBefore+1 {
		t.Errorf("failed switches = %v, want %v", got, errBefore+1)
	}
}

func TestObserverQuery(t *testing.T) {
	var o Observer
	london := map[string]string{"city": "london"}
	before := counterValue(t, "safemap_queries_total", london)
	emptyBefore := counterValue(t, "safemap_empty_results_total", london)

	o.QueryDone(safemap.London, time.Microsecond, 3)
	o.QueryDone(safemap.London, time.Microsecond, 0)

	if got := counterValue(t, "safemap_queries_total", london); got != before+2 {
		t.Errorf("queries = %v, want %v", got, before+2)
	}
	if got := counterValue(t, "safemap_empty_results_total", london); got != emptyBefore+1 {
		t.Errorf("empty = %v, want %v", got, emptyBefore+1)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	Observer{}.QueryDone(safemap.London, time.Microsecond, 1)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "safemap_queries_total") {
		t.Error("safemap_queries_total not exported")
	}
}
