package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry         *prom.Registry
	buildDuration    prom.Histogram
	deployDuration   prom.Histogram
	deployOutcome    *prom.CounterVec
	filesTransferred prom.Counter
	filesDeleted     prom.Counter
	bytesTransferred prom.Counter
	transferRetries  prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "blogpub",
		Name:      "build_duration_seconds",
		Help:      "Duration of hugo site builds",
		Buckets:   prom.DefBuckets,
	})
	pr.deployDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "blogpub",
		Name:      "deploy_duration_seconds",
		Help:      "Duration of deploy mirror runs",
		Buckets:   prom.DefBuckets,
	})
	pr.deployOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "blogpub",
		Name:      "deploy_outcomes_total",
		Help:      "Deploy outcomes by final status",
	}, []string{"outcome"})
	pr.filesTransferred = prom.NewCounter(prom.CounterOpts{
		Namespace: "blogpub",
		Name:      "files_transferred_total",
		Help:      "Files uploaded to the deploy target",
	})
	pr.filesDeleted = prom.NewCounter(prom.CounterOpts{
		Namespace: "blogpub",
		Name:      "files_deleted_total",
		Help:      "Remote files deleted by mirror runs",
	})
	pr.bytesTransferred = prom.NewCounter(prom.CounterOpts{
		Namespace: "blogpub",
		Name:      "bytes_transferred_total",
		Help:      "Bytes uploaded to the deploy target",
	})
	pr.transferRetries = prom.NewCounter(prom.CounterOpts{
		Namespace: "blogpub",
		Name:      "transfer_retries_total",
		Help:      "File transfer retries after transient failures",
	})
	reg.MustRegister(pr.buildDuration, pr.deployDuration, pr.deployOutcome,
		pr.filesTransferred, pr.filesDeleted, pr.bytesTransferred, pr.transferRetries)
	return pr
}

// Handler returns an HTTP handler exposing the registry (watch mode endpoint).
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveDeployDuration(d time.Duration) {
	if p == nil || p.deployDuration == nil {
		return
	}
	p.deployDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDeployOutcome(outcome OutcomeLabel) {
	if p == nil || p.deployOutcome == nil {
		return
	}
	p.deployOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddFilesTransferred(n int) {
	if p == nil || p.filesTransferred == nil || n <= 0 {
		return
	}
	p.filesTransferred.Add(float64(n))
}

func (p *PrometheusRecorder) AddFilesDeleted(n int) {
	if p == nil || p.filesDeleted == nil || n <= 0 {
		return
	}
	p.filesDeleted.Add(float64(n))
}

func (p *PrometheusRecorder) AddBytesTransferred(n int64) {
	if p == nil || p.bytesTransferred == nil || n <= 0 {
		return
	}
	p.bytesTransferred.Add(float64(n))
}

func (p *PrometheusRecorder) IncTransferRetry() {
	if p == nil || p.transferRetries == nil {
		return
	}
	p.transferRetries.Inc()
}
