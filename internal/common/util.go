package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size bytes from crypto/rand encoded as hex,
// so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
