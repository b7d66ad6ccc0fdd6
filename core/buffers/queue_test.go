package buffers

import "testing"

func TestQueueStartServiceClaimsOnce(t *testing.T) {
	q := NewQueue()
	if !q.StartService() {
		t.Fatal("expected the first StartService to claim the token")
	}
	if q.StartService() {
		t.Fatal("expected a second StartService to fail while the token is held")
	}
}

func TestQueueServiceNextDrainsInOrder(t *testing.T) {
	q := NewQueue()
	a := NewBuffer(make([]byte, 4))
	b := NewBuffer(make([]byte, 4))
	q.Push(a)
	q.Push(b)

	if !q.StartService() {
		t.Fatal("expected StartService to succeed on an unserved queue")
	}
	if got := q.ServiceNext(); got != a {
		t.Fatalf("expected first pushed buffer first, got %v want %v", got, a)
	}
	if got := q.ServiceNext(); got != b {
		t.Fatalf("expected second pushed buffer second, got %v want %v", got, b)
	}
	if got := q.ServiceNext(); got != nil {
		t.Fatalf("expected nil once drained, got %v", got)
	}
}

func TestQueueEndServiceReleasesToken(t *testing.T) {
	q := NewQueue()
	q.StartService()
	if cont := q.EndService(true); cont {
		t.Fatal("expected EndService to report no more work on an empty queue")
	}
	if q.Served() {
		t.Fatal("expected the token to be released")
	}
	if !q.StartService() {
		t.Fatal("expected StartService to succeed again once released")
	}
}

func TestQueueEndServiceReclaimsWhenWorkArrived(t *testing.T) {
	q := NewQueue()
	q.StartService()
	q.Push(NewBuffer(make([]byte, 4)))

	if cont := q.EndService(true); !cont {
		t.Fatal("expected EndService to report more work when wantContinue and queue is non-empty")
	}
	if !q.Served() {
		t.Fatal("expected the token to remain held across a reclaim")
	}
}

func TestQueueEndServiceWithoutWantContinueAlwaysReleases(t *testing.T) {
	q := NewQueue()
	q.StartService()
	q.Push(NewBuffer(make([]byte, 4)))

	if cont := q.EndService(false); cont {
		t.Fatal("expected EndService(false) to release even with pending work")
	}
	if q.Served() {
		t.Fatal("expected the token to be released")
	}
}

func TestQueuePushReportsServiceOpportunity(t *testing.T) {
	q := NewQueue()
	if opp := q.Push(NewBuffer(make([]byte, 4))); !opp {
		t.Fatal("expected the first push into an empty, unserved queue to report a service opportunity")
	}

	// The queue now has one pending buffer and is still unserved (nobody
	// called StartService yet): a second push sees a non-empty queue, so
	// it is not the transition that woke an idle queue.
	if opp := q.Push(NewBuffer(make([]byte, 4))); opp {
		t.Fatal("expected a push onto an already-pending, unserved queue to report false")
	}

	q.StartService()
	q.ServiceNext()
	q.ServiceNext()
	q.EndService(false)

	// Drained and released: the queue is idle and unserved again, so the
	// next push should report a fresh service opportunity.
	if opp := q.Push(NewBuffer(make([]byte, 4))); !opp {
		t.Fatal("expected a push onto a drained, unserved queue to report a service opportunity")
	}
}

func TestQueueLen(t *testing.T) {
	q := NewQueue()
	q.Push(NewBuffer(make([]byte, 4)))
	q.Push(NewBuffer(make([]byte, 4)))
	if q.Len() != 2 {
		t.Fatalf("expected length 2, got %d", q.Len())
	}
	q.StartService()
	q.ServiceNext()
	if q.Len() != 1 {
		t.Fatalf("expected length 1 after one ServiceNext, got %d", q.Len())
	}
}
