package multicast

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"github.com/searchktools/quickfast/core"
	"github.com/searchktools/quickfast/core/buffers"
	"github.com/searchktools/quickfast/core/poller"
	"github.com/searchktools/quickfast/core/pools"
)

// DefaultBufferSize and DefaultBufferCount mirror the defaults of start():
// enough room for one FAST datagram, and just enough spare buffers to keep
// a read in flight while the previous one is still being consumed.
const (
	DefaultBufferSize  = 1600
	DefaultBufferCount = 2

	// waitTimeoutMillis bounds how long a reactor goroutine blocks in
	// Poller.Wait before it re-checks whether Stop has been requested.
	waitTimeoutMillis = 100
)

// Config describes the multicast group a Receiver joins.
type Config struct {
	// Group is the multicast group address to join.
	Group net.IP
	// Interface is the listen interface address; nil or an unspecified
	// address ("0.0.0.0") lets the system choose.
	Interface net.IP
	// Port is the UDP port both the group and the listen interface bind to.
	Port int
	// Poller, if non-nil, is a reactor shared with other receivers, each
	// running its own reactorLoop goroutine and so calling Wait on it
	// concurrently; both poller.Poller implementations serialize Wait
	// internally to make that safe. A Receiver that creates its own Poller
	// closes it on Stop; one handed a shared Poller never does.
	Poller poller.Poller
}

// stats holds the ten monotonic counters from the distilled spec (the last,
// largestPacket, a high-water mark), each independently atomic so that any
// goroutine may read them at any time without the receiver mutex.
type stats struct {
	noBufferAvailable atomic.Uint64
	packetsReceived   atomic.Uint64
	errorPackets      atomic.Uint64
	emptyPackets      atomic.Uint64
	packetsQueued     atomic.Uint64
	batchesProcessed  atomic.Uint64
	packetsProcessed  atomic.Uint64
	bytesReceived     atomic.Uint64
	bytesProcessed    atomic.Uint64
	largestPacket     atomic.Uint64
}

// Receiver binds a UDP socket to a multicast group, posts reads through an
// I/O reactor, and drains completed buffers into a BufferConsumer. The
// zero value is not usable; construct one with New.
type Receiver struct {
	cfg Config

	mu             sync.Mutex
	pool           *buffers.Pool
	queue          *buffers.Queue
	readInProgress bool
	pendingBuf     *buffers.Buffer
	stopping       bool

	consumer   BufferConsumer
	bufferSize int

	conn      *net.UDPConn
	packet    *ipv4.PacketConn
	ifi       *net.Interface
	fd        int
	ownPoller bool
	reactor   poller.Poller

	bytePool *pools.BytePool

	stopCh chan struct{}
	wg     sync.WaitGroup

	stats stats
}

// New returns a Receiver configured to join cfg.Group once Start is called.
func New(cfg Config) *Receiver {
	return &Receiver{
		cfg:      cfg,
		pool:     buffers.NewPool(),
		queue:    buffers.NewQueue(),
		bytePool: pools.NewBytePool(),
	}
}

// Start opens the socket, joins the multicast group, allocates bufferCount
// buffers of bufferSize bytes into the idle pool, notifies the consumer,
// and posts the initial receive. Start returns once steady-state receiving
// has begun; completions are handled on reactor goroutines thereafter.
func (r *Receiver) Start(consumer BufferConsumer, bufferSize, bufferCount int) error {
	if r.cfg.Group == nil || !r.cfg.Group.IsMulticast() {
		return core.ErrInvalidMulticastGroup
	}
	if r.cfg.Port <= 0 || r.cfg.Port > 65535 {
		return core.ErrInvalidPort
	}
	if bufferCount < 0 {
		return core.ErrBufferCountTooSmall
	}

	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if bufferCount == 0 {
		bufferCount = DefaultBufferCount
	}
	r.consumer = consumer
	r.bufferSize = bufferSize
	r.stopCh = make(chan struct{})

	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var setErr error
			err := c.Control(func(fd uintptr) {
				setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return setErr
		},
	}

	addr := fmt.Sprintf("%s:%d", listenAddr(r.cfg.Interface), r.cfg.Port)
	pc, err := lc.ListenPacket(context.Background(), "udp4", addr)
	if err != nil {
		return fmt.Errorf("multicast: listen %s: %w", addr, err)
	}
	conn := pc.(*net.UDPConn)
	r.conn = conn

	ifi, err := interfaceFor(r.cfg.Interface)
	if err != nil {
		conn.Close()
		return fmt.Errorf("multicast: resolve listen interface: %w", err)
	}

	packet := ipv4.NewPacketConn(conn)
	if err := packet.JoinGroup(ifi, &net.UDPAddr{IP: r.cfg.Group}); err != nil {
		conn.Close()
		return fmt.Errorf("multicast: join group %s: %w", r.cfg.Group, err)
	}
	r.packet = packet
	r.ifi = ifi

	fd, err := extractFD(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("multicast: extract file descriptor: %w", err)
	}
	r.fd = fd

	reactor := r.cfg.Poller
	if reactor == nil {
		reactor, err = poller.NewPoller()
		if err != nil {
			conn.Close()
			return fmt.Errorf("multicast: create poller: %w", err)
		}
		r.ownPoller = true
	}
	r.reactor = reactor
	if err := r.reactor.Add(fd); err != nil {
		conn.Close()
		return fmt.Errorf("multicast: register fd with poller: %w", err)
	}

	pools.OptimizeForHighThroughput()

	r.mu.Lock()
	for i := 0; i < bufferCount; i++ {
		r.pool.Push(buffers.NewBuffer(r.bytePool.Get(bufferSize)))
	}
	r.mu.Unlock()

	r.consumer.ReceiverStarted()
	if r.consumer.WantLog(LogInfo) {
		r.consumer.LogMessage(LogInfo, fmt.Sprintf(
			"joining multicast group %s via interface %s:%d",
			r.cfg.Group, listenAddr(r.cfg.Interface), r.cfg.Port))
	}

	r.mu.Lock()
	r.startReceiveLocked()
	r.mu.Unlock()

	r.wg.Add(1)
	go r.reactorLoop()
	return nil
}

// Stop requests shutdown: it sets the stopping flag and lets the current
// batch, if any, finish draining. Stop is idempotent and safe to call from
// any thread, including from within a BufferConsumer callback.
func (r *Receiver) Stop() {
	r.mu.Lock()
	r.requestStopLocked()
	r.mu.Unlock()
}

// Wait blocks until the reactor goroutine has released the socket and
// poller registration. Callers outside the reactor's own call stack (a
// signal handler, an owning App) use this to know shutdown has completed;
// calling it from within a BufferConsumer callback would deadlock for the
// same reason Stop avoids waiting internally, so it never does.
func (r *Receiver) Wait() {
	r.wg.Wait()
}

// requestStopLocked sets the stopping flag and, the first time it does so,
// closes stopCh to wake the reactor goroutine. Idempotent; must be called
// with the receiver mutex held. Deliberately does not wait for the reactor
// goroutine to exit: this may run from within a consumer callback on that
// very goroutine's stack, and joining it here would deadlock. The reactor
// goroutine notices stopCh on its own and releases the socket and poller
// registration itself.
func (r *Receiver) requestStopLocked() {
	if r.stopping {
		return
	}
	r.stopping = true
	close(r.stopCh)
}

// reactorLoop drains readiness notifications for this receiver's socket
// until Stop closes stopCh, then releases the socket and (if this
// receiver created it) the poller. It is the Go-idiomatic stand-in for
// the completion-port callback the distilled spec describes: readiness
// here plays the role a completion notification plays there.
func (r *Receiver) reactorLoop() {
	defer r.wg.Done()
	defer r.release()
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}
		ready, err := r.reactor.Wait(waitTimeoutMillis)
		if err != nil {
			continue
		}
		for _, fd := range ready {
			if fd == r.fd {
				r.handleReadiness()
			}
		}
		select {
		case <-r.stopCh:
			return
		default:
		}
	}
}

// release leaves the multicast group and tears down the socket, and — if
// this receiver created its own poller rather than being handed a shared
// one — the poller too. Called exactly once, by reactorLoop as it exits.
func (r *Receiver) release() {
	if r.packet != nil {
		_ = r.packet.LeaveGroup(r.ifi, &net.UDPAddr{IP: r.cfg.Group})
	}
	if r.reactor != nil {
		_ = r.reactor.Remove(r.fd)
		if r.ownPoller {
			_ = r.reactor.Close()
		}
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

// handleReadiness is the receive completion handler. It consumes the
// buffer armed by the most recent startReceiveLocked call, updates the
// receiver's statistics and queue under the receiver mutex, and — if this
// completion made the queue worth servicing and nobody else is already
// servicing it — drains the queue itself.
func (r *Receiver) handleReadiness() {
	r.mu.Lock()
	if !r.readInProgress || r.pendingBuf == nil {
		// No receive was armed (most likely the idle pool was empty when
		// startReceiveLocked last ran); the kernel will keep reporting
		// this fd readable until a freed buffer lets startReceiveLocked
		// arm one, so there is nothing to do on this notification.
		r.mu.Unlock()
		return
	}
	buf := r.pendingBuf
	r.pendingBuf = nil
	r.mu.Unlock()

	n, _, recvErr := recvfrom(r.fd, buf.Data())
	if recvErr == syscall.EAGAIN || recvErr == syscall.EWOULDBLOCK {
		// Spurious wakeup: nothing actually arrived. Re-arm with the same
		// buffer and wait for the next genuine notification.
		r.mu.Lock()
		r.pendingBuf = buf
		r.mu.Unlock()
		return
	}

	var service bool
	r.mu.Lock()
	r.readInProgress = false
	r.stats.packetsReceived.Add(1)
	switch {
	case recvErr != nil:
		r.stats.errorPackets.Add(1)
		r.pool.Push(buf)
		if !r.consumer.ReportCommunicationError(recvErr.Error()) {
			r.requestStopLocked()
		}
	case n == 0:
		r.stats.emptyPackets.Add(1)
		r.pool.Push(buf)
	default:
		r.stats.packetsQueued.Add(1)
		r.stats.bytesReceived.Add(uint64(n))
		r.bumpLargestPacket(uint64(n))
		buf.SetUsed(n)
		if r.queue.Push(buf) {
			service = r.queue.StartService()
		}
	}
	r.startReceiveLocked()
	r.mu.Unlock()

	if service {
		r.drain()
	}
}

// startReceiveLocked arms the next receive by reserving an idle buffer, if
// the receiver is neither already waiting on one nor stopping. Must be
// called with the receiver mutex held.
func (r *Receiver) startReceiveLocked() {
	if r.readInProgress || r.stopping {
		return
	}
	buf := r.pool.Pop()
	if buf == nil {
		r.stats.noBufferAvailable.Add(1)
		return
	}
	r.readInProgress = true
	r.pendingBuf = buf
}

// drain repeatedly services the queue — without holding the receiver
// mutex, per Queue's own internal synchronization — until EndService
// reports no further work. It is only ever entered by the one goroutine
// that successfully called queue.StartService.
func (r *Receiver) drain() {
	for {
		r.stats.batchesProcessed.Add(1)
		var idle []*buffers.Buffer

		for {
			buf := r.queue.ServiceNext()
			if buf == nil {
				break
			}
			r.stats.packetsProcessed.Add(1)

			r.mu.Lock()
			stopping := r.stopping
			r.mu.Unlock()

			if !stopping {
				r.stats.bytesProcessed.Add(uint64(buf.Used()))
				if !r.consumeChecked(buf.Bytes()) {
					r.mu.Lock()
					r.requestStopLocked()
					r.mu.Unlock()
				}
			}
			idle = append(idle, buf)
		}

		r.mu.Lock()
		r.pool.PushAll(idle)
		r.startReceiveLocked()
		stopping := r.stopping
		r.mu.Unlock()

		if !r.queue.EndService(!stopping) {
			return
		}
	}
}

// consumeChecked delivers one payload to the consumer. A consumer
// implementing the optional DecodingErrorConsumer extension signals a
// decoding failure by returning a non-nil error, the Go analogue of the
// distilled spec's "consumption throws"; that failure is routed through
// ReportDecodingError. A plain BufferConsumer signals only "stop" or
// "continue" via ConsumeBuffer's boolean return, which maps directly to
// stop() with no error-reporting detour. It reports whether the receiver
// should keep running.
func (r *Receiver) consumeChecked(data []byte) bool {
	if dc, ok := r.consumer.(DecodingErrorConsumer); ok {
		if err := dc.ConsumeBufferChecked(data); err != nil {
			return r.consumer.ReportDecodingError(err.Error())
		}
		return true
	}
	return r.consumer.ConsumeBuffer(data)
}

func (r *Receiver) bumpLargestPacket(n uint64) {
	for {
		cur := r.stats.largestPacket.Load()
		if n <= cur {
			return
		}
		if r.stats.largestPacket.CompareAndSwap(cur, n) {
			return
		}
	}
}

// BytesReadable approximates how many bytes are waiting to be decoded: the
// OS-reported readable count on the socket plus whatever this receiver has
// already pulled off the wire but not yet handed to the consumer.
func (r *Receiver) BytesReadable() (int, error) {
	osReadable, err := socketReadable(r.fd)
	if err != nil {
		return 0, err
	}
	received := r.stats.bytesReceived.Load()
	processed := r.stats.bytesProcessed.Load()
	return osReadable + int(received-processed), nil
}

// Stats is a point-in-time snapshot of the receiver's monotonic counters.
type Stats struct {
	NoBufferAvailable uint64
	PacketsReceived   uint64
	ErrorPackets      uint64
	EmptyPackets      uint64
	PacketsQueued     uint64
	BatchesProcessed  uint64
	PacketsProcessed  uint64
	BytesReceived     uint64
	BytesProcessed    uint64
	LargestPacket     uint64
}

// Stats returns a snapshot of every counter. Each field is individually
// atomic but the snapshot as a whole is not transactional — counters may
// advance between fields being read, consistent with the distilled spec's
// "eventually consistent across threads" rule.
func (r *Receiver) Stats() Stats {
	return Stats{
		NoBufferAvailable: r.stats.noBufferAvailable.Load(),
		PacketsReceived:   r.stats.packetsReceived.Load(),
		ErrorPackets:      r.stats.errorPackets.Load(),
		EmptyPackets:      r.stats.emptyPackets.Load(),
		PacketsQueued:     r.stats.packetsQueued.Load(),
		BatchesProcessed:  r.stats.batchesProcessed.Load(),
		PacketsProcessed:  r.stats.packetsProcessed.Load(),
		BytesReceived:     r.stats.bytesReceived.Load(),
		BytesProcessed:    r.stats.bytesProcessed.Load(),
		LargestPacket:     r.stats.largestPacket.Load(),
	}
}
