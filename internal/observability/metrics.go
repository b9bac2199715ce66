package observability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// Metrics is a small Prometheus text-format registry for the API and the
// discovery worker. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests     *CounterVec
	apiLatency      *HistogramVec
	apiInflight     *Gauge
	cycles          *CounterVec
	cycleDuration   *HistogramVec
	videos          *CounterVec
	matches         *CounterVec
	classifyLatency *HistogramVec
	keywordSource   *CounterVec
	vectorOps       *CounterVec
	vectorLatency   *HistogramVec
	vectorBootstrap *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("METRICS_ENABLED"))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics registry initialized")
		}
	})
	return instance
}

// NewMetrics returns a standalone registry. Init shares one process-wide.
func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("mt_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"mt_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("mt_api_inflight_requests", "In-flight API requests."),
		cycles:      NewCounterVec("mt_discovery_cycles_total", "Discovery cycles by mode/status.", []string{"mode", "status"}),
		cycleDuration: NewHistogramVec(
			"mt_discovery_cycle_duration_seconds",
			"Wall time of one discovery pass.",
			[]string{"mode"},
			[]float64{1, 10, 30, 60, 120, 300, 600, 1800},
		),
		videos:  NewCounterVec("mt_discovery_videos_total", "Candidate videos by outcome.", []string{"outcome"}),
		matches: NewCounterVec("mt_discovery_matches_total", "Product-creator matches written, by kind (new/linked).", []string{"kind"}),
		classifyLatency: NewHistogramVec(
			"mt_classifier_duration_seconds",
			"Classifier call latency by result kind.",
			[]string{"result"},
			[]float64{0.5, 1, 2, 5, 10, 30, 60},
		),
		keywordSource: NewCounterVec("mt_keyword_generation_total", "Keyword lists by source (stored/ai/fallback).", []string{"source"}),
		vectorOps:     NewCounterVec("mt_vector_store_operations_total", "Vector store calls by provider/operation/status.", []string{"provider", "operation", "status"}),
		vectorLatency: NewHistogramVec(
			"mt_vector_store_operation_duration_seconds",
			"Vector store call latency by provider/operation.",
			[]string{"provider", "operation"},
			[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		vectorBootstrap: NewCounterVec("mt_vector_store_bootstrap_total", "Vector provider bootstrap attempts by provider/status/code.", []string{"provider", "status", "code"}),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed && log != nil {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.cycles, m.cycleDuration, m.videos, m.matches,
		m.classifyLatency, m.keywordSource,
		m.vectorOps, m.vectorLatency, m.vectorBootstrap,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Add(1)
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Add(-1)
	}
}

func (m *Metrics) ObserveCycle(mode, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.cycles.Inc(mode, status)
	m.cycleDuration.Observe(dur.Seconds(), mode)
}

func (m *Metrics) IncVideoOutcome(outcome string) {
	if m != nil {
		m.videos.Inc(outcome)
	}
}

func (m *Metrics) IncMatch(kind string) {
	if m != nil {
		m.matches.Inc(kind)
	}
}

func (m *Metrics) ObserveClassify(result string, dur time.Duration) {
	if m != nil {
		m.classifyLatency.Observe(dur.Seconds(), result)
	}
}

func (m *Metrics) IncKeywordSource(source string) {
	if m != nil {
		m.keywordSource.Inc(source)
	}
}

func (m *Metrics) ObserveVectorStoreOperation(provider, operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.vectorOps.Inc(provider, operation, status)
	m.vectorLatency.Observe(dur.Seconds(), provider, operation)
}

func (m *Metrics) ObserveVectorStoreBootstrap(provider, status, code string) {
	if m != nil {
		m.vectorBootstrap.Inc(provider, status, code)
	}
}

// CounterVec is a labelled monotonic counter.
type CounterVec struct {
	series
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{series: newSeries(name, help, "counter", labels)}
}

func (c *CounterVec) Inc(values ...string) {
	if c != nil {
		c.add(1, values)
	}
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.get(values)
}

// Gauge is an unlabelled value that moves both ways.
type Gauge struct {
	series
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{series: newSeries(name, help, "gauge", nil)}
}

func (g *Gauge) Add(v float64) {
	if g != nil {
		g.add(v, nil)
	}
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.get(nil)
}

type series struct {
	name       string
	help       string
	kind       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func newSeries(name, help, kind string, labels []string) series {
	return series{name: name, help: help, kind: kind, labelNames: labels, values: map[string]float64{}}
}

func (s *series) add(v float64, values []string) {
	lbl := labelString(s.labelNames, values)
	s.mu.Lock()
	s.values[lbl] += v
	s.mu.Unlock()
}

func (s *series) get(values []string) float64 {
	lbl := labelString(s.labelNames, values)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[lbl]
}

func (s *series) WritePrometheus(w io.Writer) error {
	if s == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", s.name, s.help, s.name, s.kind); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range sortedKeys(s.values) {
		if _, err := fmt.Fprintf(w, "%s%s %f\n", s.name, k, s.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64
	mu         sync.RWMutex
	values     map[string]*histogram
}

type histogram struct {
	counts []uint64
	sum    float64
	total  uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	}
	return &HistogramVec{name: name, help: help, labelNames: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	lbl := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[lbl]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets))}
		h.values[lbl] = hist
	}
	hist.sum += v
	hist.total++
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, len(h.values))
	for k := range h.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", b)), v.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %f\n%s_count%s %d\n",
			h.name, withLe(k, "+Inf"), v.total, h.name, k, v.sum, h.name, k, v.total); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		parts[i] = name + `="` + escapeLabel(val) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func escapeLabel(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(v)
}

func withLe(labels string, le string) string {
	le = escapeLabel(le)
	if labels == "" {
		return `{le="` + le + `"}`
	}
	return strings.TrimSuffix(labels, "}") + `,le="` + le + `"}`
}
