package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewToken returns nBytes of CSPRNG output, hex encoded. Session ids and
// verification tokens both come from here; 32 bytes gives 256 bits of entropy.
func NewToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
