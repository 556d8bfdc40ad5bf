// Package crypto holds the group arithmetic behind the SPAKE2 handshake: an
// edwards25519 group that interoperates with BoringSSL's SPAKE2 (as used by
// adbd) and an RFC 9382 P-256 group on top of kyber.
package crypto

import (
	"crypto/rand"
	"errors"
	"io"
)

var (
	// ErrInvalidPoint indicates that a peer message does not decode to a curve point
	ErrInvalidPoint = errors.New("peer message is not a valid curve point")

	// ErrMessageSize indicates that a peer message has the wrong length
	ErrMessageSize = errors.New("unexpected peer message size")

	// ErrState indicates that a group was used out of order
	ErrState = errors.New("group operation out of order")
)

func randomOrDefault(r io.Reader) io.Reader {
	if r == nil {
		return rand.Reader
	}
	return r
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
