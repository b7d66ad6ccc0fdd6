package buffers

import "sync"

// Queue is the inbound buffer queue that sits between a receive completion
// handler and the single goroutine that drains it. Unlike Pool, Queue
// guards its own state with an internal mutex: a producer pushes under the
// receiver's mutex while the current servicer drains with ServiceNext
// without holding it, so the two must never race on the same slice. The
// served flag is the cooperative token that guarantees at most one caller
// ever believes itself to be the active servicer at a time.
//
// The state machine:
//
//	Push        appends a buffer and reports whether it just woke an idle
//	            queue (empty and unserved immediately before the push), the
//	            signal a caller uses to decide whether to attempt
//	            StartService.
//	StartService claims the service token if it is free, reporting whether
//	            the claim succeeded.
//	ServiceNext pops the head buffer for the current servicer. Only valid
//	            while the token is held.
//	EndService  releases the token, or — if wantContinue is true and more
//	            work arrived while servicing — re-claims it immediately so
//	            the caller can keep draining without a second StartService
//	            round trip.
type Queue struct {
	mu      sync.Mutex
	pending []*Buffer
	served  bool
}

// NewQueue returns an empty, unserved queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends b to the tail of the queue and reports a service
// opportunity: whether the queue was both empty and unserved immediately
// before this push, i.e. whether this push just woke an idle queue that
// nobody is currently draining. A caller that sees true should attempt
// StartService; a caller that sees false can rely on whichever servicer
// is already running (or will run) to pick this buffer up in its own
// drain loop.
func (q *Queue) Push(b *Buffer) (serviceOpportunity bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	serviceOpportunity = len(q.pending) == 0 && !q.served
	q.pending = append(q.pending, b)
	return serviceOpportunity
}

// StartService claims the service token if nobody currently holds it,
// reporting whether the claim succeeded.
func (q *Queue) StartService() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.served {
		return false
	}
	q.served = true
	return true
}

// ServiceNext pops and returns the head buffer, or nil if the queue is
// empty. It is the servicer's sole means of draining the queue, safe to
// call without the receiver's own mutex held, and must only be called
// while the token is held.
func (q *Queue) ServiceNext() *Buffer {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	b := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return b
}

// EndService releases the service token. If wantContinue is true and the
// queue gained work while being serviced, the token is re-claimed
// immediately instead of released, and EndService reports true — the
// caller should keep servicing rather than returning. If wantContinue is
// false, or there is nothing left to do, the token is released and
// EndService reports false.
func (q *Queue) EndService(wantContinue bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if wantContinue && len(q.pending) > 0 {
		return true
	}
	q.served = false
	return false
}

// Len reports how many buffers are currently queued and unserviced.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Served reports whether the service token is currently held.
func (q *Queue) Served() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.served
}
