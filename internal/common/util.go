package common

import (
	"crypto/rand"
	"strings"
)

// GenerateRandByteArray returns size bytes from crypto/rand.
// It panics if the system random source fails.
func GenerateRandByteArray(size int) []byte {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return buf
}

// WipeByteArray zeroes buf in place. Used for plaintext passwords held by
// the client after they have been sent.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// NormalizeUsername is the canonical comparison form of a username:
// surrounding whitespace removed and lowercased.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
