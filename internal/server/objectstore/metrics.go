package objectstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels.
const (
	OpUpload     = "upload"
	OpPresign    = "presign"
	OpDelete     = "delete"
	OpDeleteMany = "delete_many"
)

// Observer captures telemetry for object store operations.
type Observer interface {
	RecordUpload(duration time.Duration, sizeBytes int, err error)
	RecordOperation(op string, duration time.Duration, err error)
}

// PrometheusObserver exports object store metrics to Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// NewPrometheusObserver registers the latency histogram, the error counter
// and the uploaded bytes counter. Collectors that are already registered
// are reused.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "gallery_objectstore"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of object store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of failed object store operations.",
		}, []string{"operation"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative payload size successfully uploaded.",
		}),
	}

	if err := reg.Register(o.duration); err != nil {
		existing, rerr := reuse[*prometheus.HistogramVec](err)
		if rerr != nil {
			return nil, fmt.Errorf("register duration histogram: %w", rerr)
		}
		o.duration = existing
	}
	if err := reg.Register(o.errors); err != nil {
		existing, rerr := reuse[*prometheus.CounterVec](err)
		if rerr != nil {
			return nil, fmt.Errorf("register error counter: %w", rerr)
		}
		o.errors = existing
	}
	if err := reg.Register(o.uploadBytes); err != nil {
		existing, rerr := reuse[prometheus.Counter](err)
		if rerr != nil {
			return nil, fmt.Errorf("register uploaded bytes counter: %w", rerr)
		}
		o.uploadBytes = existing
	}

	return o, nil
}

func reuse[T prometheus.Collector](err error) (T, error) {
	var zero T
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return zero, err
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return zero, err
	}
	return existing, nil
}

func (o *PrometheusObserver) RecordUpload(duration time.Duration, sizeBytes int, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(OpUpload).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(OpUpload).Inc()
		return
	}
	o.uploadBytes.Add(float64(sizeBytes))
}

func (o *PrometheusObserver) RecordOperation(op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op).Inc()
	}
}

type nopObserver struct{}

func (nopObserver) RecordUpload(time.Duration, int, error) {}

func (nopObserver) RecordOperation(string, time.Duration, error) {}
