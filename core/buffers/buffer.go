// Package buffers implements the fixed-size buffer pool and single-server
// inbound queue that sit between a multicast socket and its consumer: a
// bounded set of reusable byte buffers, and a queue whose cooperative
// "service token" guarantees exactly one goroutine drains it at a time.
package buffers

// Buffer is a contiguous byte region of fixed Capacity with a mutable Used
// length. At any instant a Buffer is owned by exactly one of: the idle
// pool, an in-flight receive, or the inbound queue — ownership moves by
// the Pool/Queue operations below, never by aliasing.
type Buffer struct {
	data []byte
	used int
}

// NewBuffer wraps data (typically carved from a pools.BytePool tier) as an
// idle buffer of that capacity.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Data returns the full backing storage, capacity bytes long.
func (b *Buffer) Data() []byte {
	return b.data
}

// Capacity returns the fixed size of the backing storage.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Used returns the number of bytes actually received into the buffer.
func (b *Buffer) Used() int {
	return b.used
}

// SetUsed records how many bytes a receive filled in. It is the receiver's
// job to never pass a value larger than Capacity.
func (b *Buffer) SetUsed(n int) {
	b.used = n
}

// Bytes returns the received payload: Data()[:Used()].
func (b *Buffer) Bytes() []byte {
	return b.data[:b.used]
}
