package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"

	"cutroom/internal/failure"
)

const defaultNamespace = "cutroom"

// PrometheusObserver exports lifecycle metrics to Prometheus.
type PrometheusObserver struct {
	duration   *promclient.HistogramVec
	errors     *promclient.CounterVec
	bytesMoved *promclient.CounterVec
}

// NewPrometheusObserver registers operation metrics on reg. Registering twice
// on the same registry reuses the existing collectors.
func NewPrometheusObserver(namespace string, reg promclient.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}
	duration := promclient.NewHistogramVec(promclient.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of project lifecycle operations.",
		Buckets:   promclient.DefBuckets,
	}, []string{"operation"})
	errorsTotal := promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Count of failed project lifecycle operations by error kind.",
	}, []string{"operation", "kind"})
	bytesMoved := promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "bytes_copied_total",
		Help:      "Bytes written by copy, archive, and extract operations.",
	}, []string{"operation"})

	observer := &PrometheusObserver{}
	var err error
	if observer.duration, err = register(reg, duration); err != nil {
		return nil, fmt.Errorf("register duration histogram: %w", err)
	}
	if observer.errors, err = register(reg, errorsTotal); err != nil {
		return nil, fmt.Errorf("register error counter: %w", err)
	}
	if observer.bytesMoved, err = register(reg, bytesMoved); err != nil {
		return nil, fmt.Errorf("register bytes counter: %w", err)
	}
	return observer, nil
}

func register[C promclient.Collector](reg promclient.Registerer, collector C) (C, error) {
	if err := reg.Register(collector); err != nil {
		var are promclient.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return collector, nil
}

// RecordOperation tracks duration and, on failure, the error kind.
func (o *PrometheusObserver) RecordOperation(operation string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(operation, string(failure.KindOf(err))).Inc()
	}
}

// RecordBytes adds to the bytes-copied counter.
func (o *PrometheusObserver) RecordBytes(operation string, bytes int64) {
	if o == nil || bytes <= 0 {
		return
	}
	o.bytesMoved.WithLabelValues(operation).Add(float64(bytes))
}

// WriteTextfile writes everything gathered from g to path in the text
// exposition format, creating the parent directory when needed.
func WriteTextfile(path string, g promclient.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := promclient.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

var _ Observer = (*PrometheusObserver)(nil)
