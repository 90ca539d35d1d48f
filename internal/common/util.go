package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandBase64String returns a standard-base64 string built from size
// random bytes. Used for opaque refresh token values.
func MakeRandBase64String(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
