// Package entropy supplies seeds for runs that were not given one, so that
// every random choice downstream stays reproducible from a logged seed.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"time"
)

// Seed returns a fresh non-zero seed from crypto/rand. Falls back to the
// clock if the system source fails.
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		slog.Debug("crypto/rand failed, seeding from clock", "error", err)
		return nonZero(time.Now().UnixNano())
	}
	// Clear the sign bit so seeds print as positive numbers.
	return nonZero(int64(binary.LittleEndian.Uint64(buf[:]) >> 1))
}

// Or returns seed, or a fresh one when seed is zero.
func Or(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return Seed()
}

// Zero means "unseeded" throughout the configuration.
func nonZero(s int64) int64 {
	if s == 0 {
		return 1
	}
	return s
}
