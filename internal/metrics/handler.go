package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Summary is the JSON response for the /summary endpoint.
type Summary struct {
	Requests      float64 `json:"requests"`
	ErrorRate     float64 `json:"errorRate"`
	AuthFailures  float64 `json:"authFailures"`
	LookupFires   float64 `json:"lookupFires"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// Handler serves the Prometheus exposition format at /metrics and a
// compact JSON summary at /summary.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		m.handleSummary(w)
	})
	return mux
}

func (m *Metrics) handleSummary(w http.ResponseWriter) {
	families, err := m.registry.Gather()
	if err != nil {
		http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
		return
	}

	fam := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		fam[f.GetName()] = f
	}

	summary := Summary{
		Requests:      sumCounter(fam["roster_requests_total"]),
		ErrorRate:     errorRate(fam["roster_requests_total"]),
		AuthFailures:  sumCounter(fam["roster_auth_failures_total"]),
		LookupFires:   sumCounter(fam["roster_lookup_debounce_fires_total"]),
		UptimeSeconds: float64(time.Now().Unix()) - gaugeValue(fam["roster_start_time_seconds"]),
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	_ = json.NewEncoder(w).Encode(summary)
}

func sumCounter(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() != nil {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func gaugeValue(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	ms := f.GetMetric()
	if len(ms) == 0 || ms[0].GetGauge() == nil {
		return 0
	}
	return ms[0].GetGauge().GetValue()
}

// errorRate is the share of requests whose status_code label is 0 (transport
// failure) or 4xx/5xx.
func errorRate(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total, errors float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() == nil {
			continue
		}
		v := m.GetCounter().GetValue()
		total += v
		for _, lp := range m.GetLabel() {
			if lp.GetName() != "status_code" {
				continue
			}
			code := lp.GetValue()
			if code == "0" || (len(code) > 0 && code[0] >= '4') {
				errors += v
			}
		}
	}
	if total == 0 {
		return 0
	}
	return errors / total
}
