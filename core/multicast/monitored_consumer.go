package multicast

import (
	"reflect"

	"github.com/searchktools/quickfast/core/observability"
)

// MonitoredConsumer wraps a BufferConsumer and times every ConsumeBuffer
// call through a ConsumerMonitor, keyed by the wrapped consumer's dynamic
// type name. It changes no receiver behavior: removing it is always safe,
// since the receiver only ever sees MonitoredConsumer's own pass-through
// return values, never anything read back from the monitor.
type MonitoredConsumer struct {
	inner   BufferConsumer
	monitor *observability.ConsumerMonitor
	name    string
}

// NewMonitoredConsumer wraps inner, recording its ConsumeBuffer latency
// into monitor under inner's type name.
func NewMonitoredConsumer(inner BufferConsumer, monitor *observability.ConsumerMonitor) *MonitoredConsumer {
	return &MonitoredConsumer{
		inner:   inner,
		monitor: monitor,
		name:    reflect.TypeOf(inner).String(),
	}
}

func (m *MonitoredConsumer) ReceiverStarted() { m.inner.ReceiverStarted() }

func (m *MonitoredConsumer) ConsumeBuffer(data []byte) bool {
	start := m.monitor.StartTrace()
	ok := m.inner.ConsumeBuffer(data)
	m.monitor.EndTrace(m.name, start, !ok)
	return ok
}

// MonitoredConsumer deliberately does not implement DecodingErrorConsumer:
// Receiver checks for that extension once per consumer, and a wrapper that
// forwarded it without forwarding the exact error (rather than collapsing
// it to a bool) would reintroduce the plain-false/decoding-error
// conflation the receiver's consumeChecked is built to avoid. Wrap a
// DecodingErrorConsumer with monitoring at the call site instead, timing
// ConsumeBufferChecked directly, if both behaviors are needed together.

func (m *MonitoredConsumer) ReportCommunicationError(message string) bool {
	return m.inner.ReportCommunicationError(message)
}

func (m *MonitoredConsumer) ReportDecodingError(message string) bool {
	return m.inner.ReportDecodingError(message)
}

func (m *MonitoredConsumer) WantLog(level LogLevel) bool { return m.inner.WantLog(level) }

func (m *MonitoredConsumer) LogMessage(level LogLevel, text string) { m.inner.LogMessage(level, text) }
