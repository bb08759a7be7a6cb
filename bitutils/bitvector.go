// Package bitutils reads big-endian, bit-packed fields out of a decoded consent string segment.
//
// Bit 0 is the most significant bit of byte 0. Values are assembled most significant bit first,
// within and across byte boundaries.
package bitutils

import (
	"encoding/base64"
	"strings"

	"github.com/prebid/go-tcf/errortypes"
)

// maxReadBits is the widest value ReadBits can assemble.
const maxReadBits = 64

// BitVector is an immutable byte buffer plus a memo of values resolved against it.
//
// A BitVector is not safe for concurrent use: Memo performs an unsynchronized check-then-write.
// Distinct BitVectors share nothing and may be used from different goroutines.
type BitVector struct {
	data []byte
	memo map[int]int
}

// New wraps data. The slice must not be modified afterwards.
func New(data []byte) *BitVector {
	return &BitVector{data: data}
}

// FromBase64 decodes one base64url segment of a consent string. Trailing padding is accepted but not required.
func FromBase64(segment string) (*BitVector, error) {
	trimmed := strings.TrimRight(segment, "=")
	if trimmed == "" {
		return nil, &errortypes.MalformedInput{Message: "consent string segment is empty"}
	}
	data, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, &errortypes.MalformedInput{Message: "consent string segment is not valid base64url: " + err.Error()}
	}
	return New(data), nil
}

// Len returns the number of bits in the vector.
func (bv *BitVector) Len() int {
	return len(bv.data) * 8
}

// ReadBits reads n bits starting at offset as an unsigned integer. n must be between 0 and 64.
func (bv *BitVector) ReadBits(offset int, n int) (uint64, error) {
	if offset < 0 || n < 0 || n > maxReadBits || offset+n > bv.Len() {
		return 0, &errortypes.BufferUnderrun{Offset: offset, Length: n, Available: bv.Len()}
	}

	var value uint64
	for n > 0 {
		byteIndex := offset / 8
		bitOffset := offset % 8
		take := 8 - bitOffset
		if take > n {
			take = n
		}
		chunk := (bv.data[byteIndex] >> uint(8-bitOffset-take)) & byte(0xff>>uint(8-take))
		value = value<<uint(take) | uint64(chunk)
		offset += take
		n -= take
	}
	return value, nil
}

// ReadBool reads the single bit at offset.
func (bv *BitVector) ReadBool(offset int) (bool, error) {
	v, err := bv.ReadBits1(offset)
	return v == 1, err
}

// ReadBits1 reads the single bit at offset.
func (bv *BitVector) ReadBits1(offset int) (uint8, error) {
	v, err := bv.ReadBits(offset, 1)
	return uint8(v), err
}

// ReadBits6 reads the 6 bits starting at offset.
func (bv *BitVector) ReadBits6(offset int) (uint8, error) {
	v, err := bv.ReadBits(offset, 6)
	return uint8(v), err
}

// ReadBits12 reads the 12 bits starting at offset.
func (bv *BitVector) ReadBits12(offset int) (uint16, error) {
	v, err := bv.ReadBits(offset, 12)
	return uint16(v), err
}

// ReadBits16 reads the 16 bits starting at offset.
func (bv *BitVector) ReadBits16(offset int) (uint16, error) {
	v, err := bv.ReadBits(offset, 16)
	return uint16(v), err
}

// ReadBits36 reads the 36 bits starting at offset.
// Timestamps in deciseconds since the epoch use this width.
func (bv *BitVector) ReadBits36(offset int) (uint64, error) {
	return bv.ReadBits(offset, 36)
}

// Memo returns the value stored under key, calling compute at most once per key to produce it.
// Errors are not memoized.
func (bv *BitVector) Memo(key int, compute func() (int, error)) (int, error) {
	if v, ok := bv.memo[key]; ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return 0, err
	}
	if bv.memo == nil {
		bv.memo = make(map[int]int)
	}
	bv.memo[key] = v
	return v, nil
}
