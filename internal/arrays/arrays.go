// Package arrays provides append-with-doubling growable containers used by
// the tokenizer to build its shared buffers without per-append allocation.
// The precise doubling factor is not observable; only amortized O(1) append
// is guaranteed.
package arrays

// Bytes is a growable byte buffer, used for the tokenizer's field-content
// buffer (ParsedBuffer.Bytes in spec terms).
type Bytes struct {
	data []byte
}

// NewBytes creates a Bytes buffer with the given initial capacity hint.
func NewBytes(capHint int) *Bytes {
	if capHint < 16 {
		capHint = 16
	}
	return &Bytes{data: make([]byte, 0, capHint)}
}

// Append adds a single byte, growing the backing array if needed.
func (b *Bytes) Append(c byte) {
	b.data = append(b.data, c)
}

// AppendSlice adds a slice of bytes in one call.
func (b *Bytes) AppendSlice(cs []byte) {
	b.data = append(b.data, cs...)
}

// Len returns the current logical length.
func (b *Bytes) Len() int {
	return len(b.data)
}

// Bytes exposes the backing slice. Callers must not retain it across
// further Append calls without re-fetching, since growth may reallocate.
func (b *Bytes) Bytes() []byte {
	return b.data
}

// Truncate shrinks the buffer back to length n, discarding everything
// appended after it. Used to drop a just-scanned row that turned out to be
// malformed without re-tokenizing from the start.
func (b *Bytes) Truncate(n int) {
	b.data = b.data[:n]
}

// Ints is a growable slice of ints, used for ParsedBuffer.Bounds and
// ParsedBuffer.Lines.
type Ints struct {
	data []int
}

// NewInts creates an Ints buffer, pre-seeded with the given dummy first
// value (bounds[0] and lines[0] both start at 0).
func NewInts(capHint int, dummy int) *Ints {
	if capHint < 16 {
		capHint = 16
	}
	i := &Ints{data: make([]int, 0, capHint)}
	i.data = append(i.data, dummy)
	return i
}

// Append adds a single int.
func (i *Ints) Append(v int) {
	i.data = append(i.data, v)
}

// Len returns the current logical length, including the dummy entry.
func (i *Ints) Len() int {
	return len(i.data)
}

// At returns the value at index idx.
func (i *Ints) At(idx int) int {
	return i.data[idx]
}

// Slice exposes the backing slice.
func (i *Ints) Slice() []int {
	return i.data
}

// Truncate shrinks the buffer back to length n.
func (i *Ints) Truncate(n int) {
	i.data = i.data[:n]
}

// Bits is a growable boolean vector, used for ParsedBuffer.Quoted (one
// entry per field). A byte-per-bit backing store is used rather than true
// bit-packing: what matters here is O(1) amortized append and O(1) random
// access, not storage density, and a byte slice keeps Append and At
// branch-free.
type Bits struct {
	data []bool
}

// NewBits creates an empty Bits vector.
func NewBits(capHint int) *Bits {
	if capHint < 16 {
		capHint = 16
	}
	return &Bits{data: make([]bool, 0, capHint)}
}

// Append adds a single bit.
func (b *Bits) Append(v bool) {
	b.data = append(b.data, v)
}

// Len returns the current logical length.
func (b *Bits) Len() int {
	return len(b.data)
}

// At returns the bit at index idx.
func (b *Bits) At(idx int) bool {
	return b.data[idx]
}

// Slice exposes the backing slice.
func (b *Bits) Slice() []bool {
	return b.data
}

// Truncate shrinks the buffer back to length n.
func (b *Bits) Truncate(n int) {
	b.data = b.data[:n]
}
