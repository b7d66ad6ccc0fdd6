package pmap

import "testing"

func TestEmptyEncodeIsZeroBytes(t *testing.T) {
	pm := New(0)
	dest := &SliceDestination{}
	pm.Encode(dest)
	if len(dest.Bytes) != 0 {
		t.Fatalf("expected zero bytes, got %v", dest.Bytes)
	}
	if n := pm.EncodeBytesNeeded(); n != 0 {
		t.Fatalf("expected EncodeBytesNeeded() == 0, got %d", n)
	}
}

// Scenario 1: encode [T,F,T,F,F,F,F] -> single byte 0xD0.
func TestEncodeScenarioOne(t *testing.T) {
	pm := New(7)
	bits := []bool{true, false, true, false, false, false, false}
	for _, b := range bits {
		pm.SetNext(b)
	}
	dest := &SliceDestination{}
	pm.Encode(dest)
	want := []byte{0xD0}
	if string(dest.Bytes) != string(want) {
		t.Fatalf("got % X, want % X", dest.Bytes, want)
	}
}

func TestTrailingZerosStripped(t *testing.T) {
	pm := New(64)
	pm.SetNext(true)
	for i := 0; i < 40; i++ {
		pm.SetNext(false)
	}
	dest := &SliceDestination{}
	pm.Encode(dest)
	if len(dest.Bytes) != 1 {
		t.Fatalf("expected exactly one byte, got %d: % X", len(dest.Bytes), dest.Bytes)
	}
	if dest.Bytes[0] != 0xC0 {
		t.Fatalf("got %#x, want 0xC0", dest.Bytes[0])
	}
}

func TestStopBitOnlyOnLastByte(t *testing.T) {
	pm := New(40)
	for i := 0; i < 20; i++ {
		pm.SetNext(i%3 == 0)
	}
	dest := &SliceDestination{}
	pm.Encode(dest)
	if len(dest.Bytes) == 0 {
		t.Fatal("expected nonempty output")
	}
	count := 0
	for i, b := range dest.Bytes {
		if b&0x80 != 0 {
			count++
			if i != len(dest.Bytes)-1 {
				t.Fatalf("stop bit set on byte %d, not the last byte (%d)", i, len(dest.Bytes)-1)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one stop bit, found %d", count)
	}
}

func TestRoundTrip(t *testing.T) {
	bitSequences := [][]bool{
		{true},
		{false},
		{true, false, true, false, false, false, false},
		{true, true, true, true, true, true, true, true, true, true, true, true, true, true},
		{false, false, false, false, false, false, false, false, false},
	}

	for _, bs := range bitSequences {
		pm := New(len(bs))
		for _, b := range bs {
			pm.SetNext(b)
		}
		dest := &SliceDestination{}
		pm.Encode(dest)

		decoded := New(0)
		if !decoded.Decode(NewSliceSource(dest.Bytes)) {
			t.Fatalf("decode failed for %v", bs)
		}
		for i, want := range bs {
			if got := decoded.CheckNextField(); got != want {
				t.Fatalf("bit %d: got %v, want %v (sequence %v)", i, got, want, bs)
			}
		}
	}
}

func TestRawPreservation(t *testing.T) {
	pm := New(0)
	raw := []byte{0x12, 0x34, 0x56}
	pm.SetRaw(raw)
	out := pm.GetRaw()
	if len(out) < len(raw) {
		t.Fatalf("GetRaw returned %d bytes, want at least %d", len(out), len(raw))
	}
	for i, b := range raw {
		if out[i] != b {
			t.Fatalf("byte %d: got %#x, want %#x", i, out[i], b)
		}
	}
	for i := len(raw); i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("byte %d: expected zero padding, got %#x", i, out[i])
		}
	}
}

func TestEqualityReflexive(t *testing.T) {
	pm := New(14)
	pm.SetNext(true)
	pm.SetNext(false)
	pm.SetNext(true)
	if !pm.Equal(pm) {
		t.Fatal("expected a map to equal itself")
	}
}

func TestEqualityViaRawCopy(t *testing.T) {
	pm := New(14)
	pm.SetNext(true)
	pm.SetNext(false)
	pm.SetNext(true)

	copy := New(0)
	copy.SetRaw(pm.GetRaw())
	pm.Rewind()
	if !pm.Equal(copy) {
		t.Fatalf("expected copy to equal original after matching rewind")
	}
}

func TestEqualityFalseWhenCursorsDiffer(t *testing.T) {
	a := New(14)
	a.SetNext(true)
	b := New(14)
	b.SetNext(true)
	b.SetNext(false)

	if a.Equal(b) {
		t.Fatal("expected maps at different cursor positions to be unequal")
	}
}

func TestBitNumbering(t *testing.T) {
	pm := New(21)
	values := make([]bool, 21)
	for i := range values {
		values[i] = i%5 == 0
		pm.SetNext(values[i])
	}
	for i, want := range values {
		if got := pm.CheckSpecificField(i); got != want {
			t.Fatalf("bit %d: got %v, want %v", i, got, want)
		}
	}
}

func TestCheckNextFieldPaddingAfterDecodedLength(t *testing.T) {
	// One byte, no stop bit relevant here: only the first payload bit set.
	pm := New(0)
	if !pm.Decode(NewSliceSource([]byte{0xC0})) {
		t.Fatal("decode failed")
	}
	// byte is 0xC0: payload bit at mask 0x40 is set, the rest within the
	// byte are false, and every check past the single decoded byte must
	// also be false rather than panicking.
	want := []bool{true, false, false, false, false, false, false}
	for i, w := range want {
		if got := pm.CheckNextField(); got != w {
			t.Fatalf("bit %d: got %v, want %v", i, got, w)
		}
	}
	for i := 0; i < 20; i++ {
		if pm.CheckNextField() {
			t.Fatalf("expected padding false at extra check %d", i)
		}
	}
}

func TestDecodeTruncatedInputFails(t *testing.T) {
	pm := New(14)
	pm.SetNext(true)
	if pm.Decode(NewSliceSource([]byte{0x40})) {
		t.Fatal("expected decode of a stop-bit-less byte followed by EOF to fail")
	}
	// the map must be reset and safe to reuse.
	if !pm.Decode(NewSliceSource([]byte{0xC0})) {
		t.Fatal("expected reused map to decode a valid map successfully")
	}
}

func TestInlineMapsDoNotEscapeToExternalStorage(t *testing.T) {
	pm := New(7)
	if &pm.bits[0] != &pm.inline[0] {
		t.Fatal("expected a small map to use inline storage")
	}
}

func TestGrowLoggerInvokedOnlyOnGrowth(t *testing.T) {
	pm := New(0)
	var messages []string
	pm.SetGrowLogger(func(msg string) { messages = append(messages, msg) })

	for i := 0; i < inlineCapacity*7-1; i++ {
		pm.SetNext(true)
	}
	if len(messages) != 0 {
		t.Fatalf("did not expect growth within inline capacity, got %d messages", len(messages))
	}

	pm.SetNext(true)
	if len(messages) == 0 {
		t.Fatal("expected a growth diagnostic once inline capacity is exceeded")
	}
}
