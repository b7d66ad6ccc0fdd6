package pmap

// DataSource supplies the raw bytes of an encoded presence map one byte at
// a time. GetByte returns false once the source is exhausted; it never
// panics and never blocks past EOF.
type DataSource interface {
	GetByte() (b byte, ok bool)
}

// DataDestination accepts the encoded bytes of a presence map one byte at
// a time. PutByte has no failure channel by design — a destination that can
// fail (a socket, a file) buffers the error internally and surfaces it
// through whatever other mechanism its caller already uses.
type DataDestination interface {
	PutByte(b byte)
}

// SliceSource is a DataSource backed by an in-memory byte slice, the
// common case when a presence map is decoded out of a buffer already
// received from the network.
type SliceSource struct {
	data []byte
	pos  int
}

// NewSliceSource wraps data for sequential byte-at-a-time reads.
func NewSliceSource(data []byte) *SliceSource {
	return &SliceSource{data: data}
}

// GetByte implements DataSource.
func (s *SliceSource) GetByte() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	b := s.data[s.pos]
	s.pos++
	return b, true
}

// Consumed reports how many bytes have been read so far, letting a caller
// locate the first byte following the encoded presence map.
func (s *SliceSource) Consumed() int {
	return s.pos
}

// SliceDestination is a DataDestination that appends encoded bytes to a
// growable byte slice.
type SliceDestination struct {
	Bytes []byte
}

// PutByte implements DataDestination.
func (d *SliceDestination) PutByte(b byte) {
	d.Bytes = append(d.Bytes, b)
}
