package testdoubles

import (
	"context"
	"sync"
	"time"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
)

// SpyMetricRecord is one captured metrics call. Duration is set for durations, Value for values.
type SpyMetricRecord struct {
	Kind     string
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

const (
	metricKindDuration = "duration"
	metricKindCounter  = "counter"
	metricKindValue    = "value"
)

// MetricsCollectorSpy captures metrics calls. It implements the contextual variant as well,
// so instrumentation prefers the context-aware methods like it does with the OTel collector.
type MetricsCollectorSpy struct {
	records        []SpyMetricRecord
	contextualUses int
	mu             sync.Mutex
}

func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{records: make([]SpyMetricRecord, 0)}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: metricKindDuration, Metric: metric, Duration: duration, Labels: copyLabels(labels)}, false)
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: metricKindCounter, Metric: metric, Labels: copyLabels(labels)}, false)
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: metricKindValue, Metric: metric, Value: value, Labels: copyLabels(labels)}, false)
}

func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: metricKindDuration, Metric: metric, Duration: duration, Labels: copyLabels(labels)}, true)
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: metricKindCounter, Metric: metric, Labels: copyLabels(labels)}, true)
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: metricKindValue, Metric: metric, Value: value, Labels: copyLabels(labels)}, true)
}

func (s *MetricsCollectorSpy) add(record SpyMetricRecord, contextual bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	if contextual {
		s.contextualUses++
	}
}

// GetRecords returns a copy of all captured records.
func (s *MetricsCollectorSpy) GetRecords() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyMetricRecord(nil), s.records...)
}

// ContextualUses returns how many records were captured through the context-aware methods.
func (s *MetricsCollectorSpy) ContextualUses() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.contextualUses
}

// CountCounterRecordsForMetric counts the counter increments for metric.
func (s *MetricsCollectorSpy) CountCounterRecordsForMetric(metric string) int {
	return s.count(metricKindCounter, metric)
}

// CountDurationRecordsForMetric counts the duration records for metric.
func (s *MetricsCollectorSpy) CountDurationRecordsForMetric(metric string) int {
	return s.count(metricKindDuration, metric)
}

func (s *MetricsCollectorSpy) count(kind, metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.records {
		if record.Kind == kind && record.Metric == metric {
			count++
		}
	}

	return count
}

// MetricRecordMatcher checks the labels of the first record found for a metric.
type MetricRecordMatcher struct {
	found  bool
	labels map[string]string
}

// HasCounterRecordForMetric starts a fluent check on a counter record.
func (s *MetricsCollectorSpy) HasCounterRecordForMetric(metric string) *MetricRecordMatcher {
	return s.match(metricKindCounter, metric)
}

// HasDurationRecordForMetric starts a fluent check on a duration record.
func (s *MetricsCollectorSpy) HasDurationRecordForMetric(metric string) *MetricRecordMatcher {
	return s.match(metricKindDuration, metric)
}

func (s *MetricsCollectorSpy) match(kind, metric string) *MetricRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Kind == kind && record.Metric == metric {
			return &MetricRecordMatcher{found: true, labels: record.Labels}
		}
	}

	return &MetricRecordMatcher{found: false}
}

// WithStatus checks the status label.
func (m *MetricRecordMatcher) WithStatus(status string) *MetricRecordMatcher {
	return m.WithLabel("status", status)
}

// WithLabel checks that the record carries key=value.
func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	if !m.found {
		return m
	}

	if labelValue, exists := m.labels[key]; !exists || labelValue != value {
		m.found = false
	}

	return m
}

// Assert returns true if all conditions in the fluent chain were met.
func (m *MetricRecordMatcher) Assert() bool {
	return m.found
}

func copyLabels(labels map[string]string) map[string]string {
	labelsCopy := make(map[string]string, len(labels))
	for k, v := range labels {
		labelsCopy[k] = v
	}

	return labelsCopy
}

var _ eventhandler.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)
