package multicast

import (
	"github.com/searchktools/quickfast/core/pools"
)

// dispatch is the unit of work AsyncConsumer hands to the worker pool: a
// copy of the payload (the original buffer is recycled the moment
// ConsumeBuffer returns, so anything retained past that point must be its
// own copy) plus a done channel, allocated with each token; nothing in
// AsyncConsumer sends on it or hands it to a caller.
type dispatch struct {
	data []byte
	done chan struct{}
}

// AsyncConsumer wraps a BufferConsumer and offloads ConsumeBuffer to a
// work-stealing WorkerPool, pooling the per-call dispatch token through a
// SmartPool to avoid an allocation per packet. It does not change the
// receiver's single-active-callback invariant as seen by the receiver —
// AsyncConsumer.ConsumeBuffer still returns only after the wrapped
// consumer's ConsumeBuffer has at least been submitted — it only moves
// where the downstream processing work actually executes.
type AsyncConsumer struct {
	inner BufferConsumer
	pool  *pools.WorkerPool
	smart *pools.SmartPool
}

// NewAsyncConsumer wraps inner, dispatching its ConsumeBuffer calls onto
// pool. A nil pool uses the package-wide global worker pool.
func NewAsyncConsumer(inner BufferConsumer, pool *pools.WorkerPool) *AsyncConsumer {
	if pool == nil {
		pool = pools.GetGlobalPool()
	}
	a := &AsyncConsumer{inner: inner, pool: pool}
	a.smart = pools.NewSmartPool(pools.SmartPoolConfig{
		New:   func() any { return &dispatch{done: make(chan struct{}, 1)} },
		Reset: func(v any) { v.(*dispatch).data = nil },
	})
	return a
}

// ReceiverStarted forwards to the wrapped consumer.
func (a *AsyncConsumer) ReceiverStarted() { a.inner.ReceiverStarted() }

// ConsumeBuffer copies data (the receiver reclaims the original the moment
// this call returns) and submits it to the worker pool for the wrapped
// consumer to process. It always returns true to the receiver: a
// downstream consumer that wants to request shutdown must do so through
// its own out-of-band mechanism, since by the time ConsumeBuffer actually
// runs the receiver has already moved past this packet.
func (a *AsyncConsumer) ConsumeBuffer(data []byte) bool {
	v := a.smart.Get()
	d := v.(*dispatch)
	if cap(d.data) < len(data) {
		d.data = make([]byte, len(data))
	} else {
		d.data = d.data[:len(data)]
	}
	copy(d.data, data)

	inner := a.inner
	submitted := a.pool.Submit(func() {
		inner.ConsumeBuffer(d.data)
		a.smart.Put(d)
	})
	if !submitted {
		// Pool is closed; fall back to inline processing rather than
		// silently dropping the packet.
		inner.ConsumeBuffer(d.data)
		a.smart.Put(d)
	}
	return true
}

// ReportCommunicationError forwards to the wrapped consumer synchronously:
// error reporting decides receiver continuation and must not be delayed
// behind queued work.
func (a *AsyncConsumer) ReportCommunicationError(message string) bool {
	return a.inner.ReportCommunicationError(message)
}

// ReportDecodingError forwards to the wrapped consumer synchronously, for
// the same reason as ReportCommunicationError.
func (a *AsyncConsumer) ReportDecodingError(message string) bool {
	return a.inner.ReportDecodingError(message)
}

// WantLog forwards to the wrapped consumer.
func (a *AsyncConsumer) WantLog(level LogLevel) bool { return a.inner.WantLog(level) }

// LogMessage forwards to the wrapped consumer.
func (a *AsyncConsumer) LogMessage(level LogLevel, text string) { a.inner.LogMessage(level, text) }
