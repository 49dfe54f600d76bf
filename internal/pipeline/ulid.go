package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// ULID job identifiers: 26 Crockford Base32 characters over a 48-bit
// millisecond timestamp and 80 random bits. Lexicographic order follows
// creation order, so job IDs sort by submission time.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID returns a fresh identifier. Calls within the same
// millisecond stay ordered through a sequence counter embedded in the
// random section.
func NewULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeCrockford(b)
}

// encodeCrockford renders 128 bits as 26 base32 digits, most
// significant first. 26 digits hold 130 bits, so the leading digit
// carries only the top 3 bits.
func encodeCrockford(b [16]byte) string {
	var out [26]byte
	acc, bits := uint32(0), 0
	pos := len(out) - 1
	for i := len(b) - 1; i >= 0; i-- {
		acc |= uint32(b[i]) << bits
		bits += 8
		for bits >= 5 {
			out[pos] = crockford[acc&31]
			acc >>= 5
			bits -= 5
			pos--
		}
	}
	out[0] = crockford[acc&31]
	return string(out[:])
}
