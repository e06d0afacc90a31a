package specs

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/zeebo/blake3"

	"github.com/pubky-garden/pubky-playground/crock32"
)

const (
	timestampIDSize = 8  // big-endian microsecond timestamp
	hashIDSize      = 16 // first half of a blake3 digest

	// TimestampIDLength is the text width of a time-ordered identifier.
	TimestampIDLength = 13
	// HashIDLength is the text width of a content-hashed identifier.
	HashIDLength = 26
)

// TimestampGenerator issues time-ordered identifiers. It keeps the last
// issued microsecond in an atomic so that concurrent derivations within
// the same clock tick advance by one microsecond instead of colliding.
type TimestampGenerator struct {
	now  func() time.Time
	last atomic.Int64
}

// NewTimestampGenerator builds a generator around the given clock.
func NewTimestampGenerator(now func() time.Time) *TimestampGenerator {
	return &TimestampGenerator{now: now}
}

// NextID returns a fresh time-ordered identifier. Identifiers issued by
// the same generator are strictly increasing, so their encoded text sorts
// chronologically.
func (g *TimestampGenerator) NextID() string {
	micros := g.next()
	var buf [timestampIDSize]byte
	binary.BigEndian.PutUint64(buf[:], uint64(micros))
	return crock32.Encode(buf[:])
}

func (g *TimestampGenerator) next() int64 {
	for {
		now := g.now().UTC().UnixMicro()
		last := g.last.Load()
		if now <= last {
			now = last + 1
		}
		if g.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

var defaultGenerator = NewTimestampGenerator(time.Now)

// NewTimestampID issues a time-ordered identifier from the process-wide
// generator backed by the system clock.
func NewTimestampID() string {
	return defaultGenerator.NextID()
}

// CheckTimestampID verifies that id is a structurally valid time-ordered
// identifier. The creation instant is not recoverable from content, so
// this is the strongest check possible for the time-ordered strategy.
func CheckTimestampID(id string) error {
	_, err := crock32.DecodeExact(id, timestampIDSize)
	return err
}

// HashID derives a content-hashed identifier from the canonical input
// string of a record. Identical inputs always collide to the same
// identifier; callers must pass already-sanitized fields, otherwise the
// derivation is unstable under equivalent-but-differently-formatted input.
func HashID(input string) string {
	sum := blake3.Sum256([]byte(input))
	return crock32.Encode(sum[:hashIDSize])
}
