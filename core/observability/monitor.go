// Package observability records consumer-side latency without influencing
// receiver behavior: a ConsumerMonitor only ever gets written to by a
// receiver, never read from, so it stays a pure side channel.
package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// ConsumerMonitor records, per consumer type name, the count/min/max/total
// duration and a latency-bucket histogram of ConsumeBuffer calls. Reads and
// writes go through a sync.Map keyed by consumer name plus atomic counters
// on each entry, so no additional locking sits on the hot path beyond what
// those counters already require.
type ConsumerMonitor struct {
	enabled atomic.Bool
	entries sync.Map
}

// ConsumerMetrics stores per-consumer-name metrics.
type ConsumerMetrics struct {
	Name           string
	Count          atomic.Uint64
	Errors         atomic.Uint64
	TotalDuration  atomic.Uint64
	MinDuration    atomic.Uint64
	MaxDuration    atomic.Uint64
	latencyBuckets [10]atomic.Uint64
}

// ConsumerStats is a snapshot of a single consumer's recorded calls. For a
// consumer with no recorded calls it is returned with Name set and every
// other field at zero — Stats never divides by zero.
type ConsumerStats struct {
	Name        string
	Count       uint64
	Errors      uint64
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
}

// NewConsumerMonitor creates a monitor. It starts enabled.
func NewConsumerMonitor() *ConsumerMonitor {
	cm := &ConsumerMonitor{}
	cm.enabled.Store(true)
	return cm
}

// SetEnabled toggles recording. Disabling does not clear already-recorded
// metrics, it only stops RecordCall from accumulating further ones.
func (cm *ConsumerMonitor) SetEnabled(enabled bool) {
	cm.enabled.Store(enabled)
}

// RecordCall records one ConsumeBuffer call for the named consumer.
func (cm *ConsumerMonitor) RecordCall(name string, duration time.Duration, isError bool) {
	if !cm.enabled.Load() {
		return
	}

	val, _ := cm.entries.LoadOrStore(name, &ConsumerMetrics{Name: name})
	metrics := val.(*ConsumerMetrics)

	metrics.Count.Add(1)
	if isError {
		metrics.Errors.Add(1)
	}

	durationNs := uint64(duration.Nanoseconds())
	metrics.TotalDuration.Add(durationNs)
	updateMinMax(metrics, durationNs)
	updateLatencyBucket(metrics, durationNs)
}

func updateMinMax(m *ConsumerMetrics, d uint64) {
	for {
		min := m.MinDuration.Load()
		if min == 0 || d < min {
			if m.MinDuration.CompareAndSwap(min, d) {
				break
			}
		} else {
			break
		}
	}
	for {
		max := m.MaxDuration.Load()
		if d > max {
			if m.MaxDuration.CompareAndSwap(max, d) {
				break
			}
		} else {
			break
		}
	}
}

// latencyBucketBoundsMs are the upper bounds, in milliseconds, of each
// histogram bucket; the final bucket catches everything above the last
// bound.
var latencyBucketBoundsMs = [9]uint64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000}

func updateLatencyBucket(m *ConsumerMetrics, durationNs uint64) {
	ms := durationNs / 1_000_000
	idx := len(latencyBucketBoundsMs)
	for i, bound := range latencyBucketBoundsMs {
		if ms < bound {
			idx = i
			break
		}
	}
	m.latencyBuckets[idx].Add(1)
}

// Stats returns a snapshot for name. A consumer with zero recorded calls
// returns a zero-value ConsumerStats (with Name populated), never divides
// by zero.
func (cm *ConsumerMonitor) Stats(name string) ConsumerStats {
	val, ok := cm.entries.Load(name)
	if !ok {
		return ConsumerStats{Name: name}
	}
	m := val.(*ConsumerMetrics)

	count := m.Count.Load()
	if count == 0 {
		return ConsumerStats{Name: name}
	}

	return ConsumerStats{
		Name:        name,
		Count:       count,
		Errors:      m.Errors.Load(),
		AvgDuration: time.Duration(m.TotalDuration.Load() / count),
		MinDuration: time.Duration(m.MinDuration.Load()),
		MaxDuration: time.Duration(m.MaxDuration.Load()),
	}
}

// Names returns every consumer name with at least one recorded call.
func (cm *ConsumerMonitor) Names() []string {
	names := make([]string, 0)
	cm.entries.Range(func(key, _ interface{}) bool {
		names = append(names, key.(string))
		return true
	})
	return names
}

// StartTrace starts timing a ConsumeBuffer call.
func (cm *ConsumerMonitor) StartTrace() int64 {
	if !cm.enabled.Load() {
		return 0
	}
	return time.Now().UnixNano()
}

// EndTrace ends timing and records the call under name.
func (cm *ConsumerMonitor) EndTrace(name string, startTime int64, isError bool) {
	if startTime == 0 {
		return
	}
	duration := time.Duration(time.Now().UnixNano() - startTime)
	cm.RecordCall(name, duration, isError)
}
