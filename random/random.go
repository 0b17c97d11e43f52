package random

import (
	crand "crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"time"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func init() {
	var b [8]byte
	_, err := crand.Read(b[:])
	if err != nil {
		mrand.Seed(time.Now().UnixNano())
		return
	}
	mrand.Seed(int64(binary.LittleEndian.Uint64(b[:])))
}

// String returns a random alphanumeric string, used for guest line item ids.
// Uniqueness only needs to hold within one cart.
func String(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[mrand.Intn(len(charset))]
	}
	return string(b)
}
