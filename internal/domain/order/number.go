package order

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"strings"
	"time"
)

// NewOrderNumber generates a human-readable order number such as
// ORD-T4K9X2M1A0-7GQZ. Numbers are not unique by construction; the
// database's unique constraint is the authority and collisions surface as
// ErrNumberConflict, retried with fresh numbers.
func NewOrderNumber() string {
	return "ORD-" + numberStamp()
}

// NewTransactionNumber generates a transaction number such as
// TXN-T4K9X2M1A0-7GQZ with the same collision semantics as order numbers.
func NewTransactionNumber() string {
	return "TXN-" + numberStamp()
}

// numberStamp is a microsecond timestamp in upper-case base 36 joined with a
// 4-byte suffix from a cryptographically strong source.
func numberStamp() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMicro(), 36))

	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	suffix := strings.ToUpper(strconv.FormatUint(uint64(binary.BigEndian.Uint32(buf[:])), 36))

	return ts + "-" + suffix
}
