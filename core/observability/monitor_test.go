package observability

import (
	"testing"
	"time"
)

func TestConsumerMonitorRecordsCalls(t *testing.T) {
	cm := NewConsumerMonitor()

	cm.RecordCall("echoConsumer", 10*time.Millisecond, false)
	cm.RecordCall("echoConsumer", 20*time.Millisecond, false)
	cm.RecordCall("echoConsumer", 30*time.Millisecond, false)

	stats := cm.Stats("echoConsumer")
	if stats.Count != 3 {
		t.Fatalf("expected 3 calls, got %d", stats.Count)
	}
	if stats.AvgDuration != 20*time.Millisecond {
		t.Fatalf("expected 20ms avg, got %v", stats.AvgDuration)
	}
	if stats.MinDuration != 10*time.Millisecond {
		t.Fatalf("expected 10ms min, got %v", stats.MinDuration)
	}
	if stats.MaxDuration != 30*time.Millisecond {
		t.Fatalf("expected 30ms max, got %v", stats.MaxDuration)
	}
}

func TestConsumerMonitorStatsZeroValueForUnknownConsumer(t *testing.T) {
	cm := NewConsumerMonitor()

	stats := cm.Stats("neverCalled")
	if stats != (ConsumerStats{Name: "neverCalled"}) {
		t.Fatalf("expected a zero-value ConsumerStats (aside from Name), got %+v", stats)
	}
}

func TestConsumerMonitorDisabledSkipsRecording(t *testing.T) {
	cm := NewConsumerMonitor()
	cm.SetEnabled(false)

	cm.RecordCall("ignored", 5*time.Millisecond, false)

	stats := cm.Stats("ignored")
	if stats.Count != 0 {
		t.Fatalf("expected no recorded calls while disabled, got %d", stats.Count)
	}
}

func TestConsumerMonitorTraceRoundTrip(t *testing.T) {
	cm := NewConsumerMonitor()

	start := cm.StartTrace()
	time.Sleep(time.Millisecond)
	cm.EndTrace("traced", start, false)

	stats := cm.Stats("traced")
	if stats.Count != 1 {
		t.Fatalf("expected one recorded call, got %d", stats.Count)
	}
	if stats.AvgDuration <= 0 {
		t.Fatalf("expected a positive recorded duration, got %v", stats.AvgDuration)
	}
}

func TestConsumerMonitorNamesListsRecordedConsumers(t *testing.T) {
	cm := NewConsumerMonitor()
	cm.RecordCall("a", time.Millisecond, false)
	cm.RecordCall("b", time.Millisecond, false)

	names := cm.Names()
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("expected both recorded consumer names, got %v", names)
	}
}
