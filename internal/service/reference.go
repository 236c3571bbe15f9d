package service

import (
	"crypto/rand"
	"fmt"
)

// Reference codes are short, human-readable and unambiguous: no
// 0/O or 1/I lookalikes. Uniqueness is enforced by the storage layer,
// not here; callers retry on collision.
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const referenceLength = 10

// generateReference returns a random booking reference like
// "EE-7XK2M9QTEV".
func generateReference(prefix string) (string, error) {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	if prefix == "" {
		return string(buf), nil
	}
	return prefix + "-" + string(buf), nil
}
