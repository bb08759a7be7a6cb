// Package bittest assembles bit-packed consent string segments for tests.
package bittest

import (
	"encoding/base64"

	"github.com/prebid/go-tcf/bitutils"
)

// Writer appends fields most significant bit first.
type Writer struct {
	bits []bool
}

// Bits appends the low n bits of v.
func (w *Writer) Bits(v uint64, n int) *Writer {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, v>>uint(i)&1 == 1)
	}
	return w
}

// Bool appends a single bit.
func (w *Writer) Bool(b bool) *Writer {
	w.bits = append(w.bits, b)
	return w
}

// Bitfield appends n flags, setting bit i-1 for every id i in ids.
func (w *Writer) Bitfield(n int, ids ...int) *Writer {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for i := 1; i <= n; i++ {
		w.bits = append(w.bits, set[i])
	}
	return w
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return len(w.bits)
}

// Bytes pads the written bits with zeros to a byte boundary.
func (w *Writer) Bytes() []byte {
	out := make([]byte, (len(w.bits)+7)/8)
	for i, b := range w.bits {
		if b {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out
}

// BitVector wraps Bytes.
func (w *Writer) BitVector() *bitutils.BitVector {
	return bitutils.New(w.Bytes())
}

// String encodes Bytes as unpadded base64url.
func (w *Writer) String() string {
	return base64.RawURLEncoding.EncodeToString(w.Bytes())
}
