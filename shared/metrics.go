package shared

import (
	"sort"
	"sync"
	"time"
)

// ServiceMetrics tracks performance and success metrics for services
type ServiceMetrics struct {
	serviceName         string
	totalRequests       int64
	successfulRequests  int64
	failedRequests      int64
	totalProcessingTime time.Duration
	lastUpdated         time.Time
	customMetrics       map[string]int64
	performance         *PerformanceMetrics
	mutex               sync.RWMutex
}

// MetricsSnapshot is a point-in-time copy of ServiceMetrics, safe to serialize
type MetricsSnapshot struct {
	ServiceName           string             `json:"service_name"`
	TotalRequests         int64              `json:"total_requests"`
	SuccessfulRequests    int64              `json:"successful_requests"`
	FailedRequests        int64              `json:"failed_requests"`
	SuccessRate           float64            `json:"success_rate"`
	AverageProcessingTime time.Duration      `json:"average_processing_time"`
	LastUpdated           time.Time          `json:"last_updated"`
	Counters              map[string]int64   `json:"counters"`
	Performance           PerformanceSummary `json:"performance"`
}

// NewServiceMetrics creates a new metrics tracker for a service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		serviceName:   serviceName,
		lastUpdated:   time.Now(),
		customMetrics: make(map[string]int64),
		performance:   NewPerformanceMetrics(),
	}
}

// RecordRequest records a request with its success status and processing time
func (m *ServiceMetrics) RecordRequest(success bool, processingTime time.Duration) {
	m.mutex.Lock()
	m.totalRequests++
	m.totalProcessingTime += processingTime
	if success {
		m.successfulRequests++
	} else {
		m.failedRequests++
	}
	m.lastUpdated = time.Now()
	m.mutex.Unlock()

	m.performance.RecordProcessingTime(processingTime)
}

// IncrementCustomCounter increments a named counter
func (m *ServiceMetrics) IncrementCustomCounter(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.customMetrics[key]++
	m.lastUpdated = time.Now()
}

func (m *ServiceMetrics) successRateLocked() float64 {
	if m.totalRequests == 0 {
		return 0.0
	}
	return float64(m.successfulRequests) / float64(m.totalRequests) * 100.0
}

// GetSnapshot returns a thread-safe snapshot of current metrics
func (m *ServiceMetrics) GetSnapshot() MetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counters := make(map[string]int64, len(m.customMetrics))
	for k, v := range m.customMetrics {
		counters[k] = v
	}

	var average time.Duration
	if m.totalRequests > 0 {
		average = time.Duration(int64(m.totalProcessingTime) / m.totalRequests)
	}

	return MetricsSnapshot{
		ServiceName:           m.serviceName,
		TotalRequests:         m.totalRequests,
		SuccessfulRequests:    m.successfulRequests,
		FailedRequests:        m.failedRequests,
		SuccessRate:           m.successRateLocked(),
		AverageProcessingTime: average,
		LastUpdated:           m.lastUpdated,
		Counters:              counters,
		Performance:           m.performance.Summary(),
	}
}

// PerformanceMetrics tracks latency percentiles over a sliding window of samples
type PerformanceMetrics struct {
	mutex           sync.RWMutex
	min             time.Duration
	max             time.Duration
	processingTimes []time.Duration
}

// PerformanceSummary is the serializable view of PerformanceMetrics
type PerformanceSummary struct {
	MinProcessingTime time.Duration `json:"min_processing_time"`
	MaxProcessingTime time.Duration `json:"max_processing_time"`
	P95ProcessingTime time.Duration `json:"p95_processing_time"`
	P99ProcessingTime time.Duration `json:"p99_processing_time"`
	Samples           int           `json:"samples"`
}

const maxPerformanceSamples = 1000

// NewPerformanceMetrics creates a new performance metrics tracker
func NewPerformanceMetrics() *PerformanceMetrics {
	return &PerformanceMetrics{
		processingTimes: make([]time.Duration, 0, 64),
	}
}

// RecordProcessingTime records a processing time sample
func (pm *PerformanceMetrics) RecordProcessingTime(duration time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pm.min == 0 || duration < pm.min {
		pm.min = duration
	}
	if duration > pm.max {
		pm.max = duration
	}

	if len(pm.processingTimes) >= maxPerformanceSamples {
		pm.processingTimes = pm.processingTimes[1:]
	}
	pm.processingTimes = append(pm.processingTimes, duration)
}

// Summary computes percentiles over the retained samples
func (pm *PerformanceMetrics) Summary() PerformanceSummary {
	pm.mutex.RLock()
	times := make([]time.Duration, len(pm.processingTimes))
	copy(times, pm.processingTimes)
	summary := PerformanceSummary{
		MinProcessingTime: pm.min,
		MaxProcessingTime: pm.max,
		Samples:           len(times),
	}
	pm.mutex.RUnlock()

	if len(times) == 0 {
		return summary
	}

	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	summary.P95ProcessingTime = times[percentileIndex(len(times), 0.95)]
	summary.P99ProcessingTime = times[percentileIndex(len(times), 0.99)]
	return summary
}

func percentileIndex(n int, p float64) int {
	idx := int(float64(n) * p)
	if idx >= n {
		idx = n - 1
	}
	return idx
}
