package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDFSHA256 implements the HMAC-based Extract-and-Expand Key Derivation
// Function as defined in RFC 5869, using SHA-256.
//
// A nil or empty salt is replaced by HashLen zero bytes per RFC 5869.
func HKDFSHA256(ikm, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
