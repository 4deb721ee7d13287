package metrics

import "github.com/prometheus/client_golang/prometheus"

// Verification pipeline Prometheus metrics.
var (
	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regverify",
			Name:      "verifications_total",
			Help:      "Total number of document verifications",
		},
		[]string{"document_type", "outcome"},
	)

	VerificationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "regverify",
			Name:      "verification_duration_seconds",
			Help:      "Full pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"document_type"},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regverify",
			Name:      "provider_requests_total",
			Help:      "Remote extraction provider attempts",
		},
		[]string{"provider", "status"},
	)

	OCRMethodTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regverify",
			Name:      "ocr_method_total",
			Help:      "Acquisition method used per verification",
		},
		[]string{"method"},
	)
)

var registered bool

// Register registers the pipeline metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(VerificationsTotal)
	prometheus.MustRegister(VerificationDuration)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(OCRMethodTotal)
	registered = true
}
