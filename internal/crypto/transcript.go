package crypto

import (
	"encoding/binary"
	"hash"
)

// Transcript represents the RFC 9382 protocol transcript hashed into the
// raw shared secret of the P-256 group.
type Transcript struct {
	IdentityA []byte
	IdentityB []byte
	MessageA  []byte
	MessageB  []byte
	K         []byte
	Password  []byte
}

// NewTranscript creates a new protocol transcript
func NewTranscript(identityA, identityB, messageA, messageB, k, password []byte) *Transcript {
	return &Transcript{
		IdentityA: identityA,
		IdentityB: identityB,
		MessageA:  messageA,
		MessageB:  messageB,
		K:         k,
		Password:  password,
	}
}

// Bytes returns the byte representation of the transcript as specified in RFC 9382
//
//	 TT = len(A)  || A
//		|| len(B)  || B
//		|| len(pA) || pA
//		|| len(pB) || pB
//		|| len(K)  || K
//		|| len(w)  || w
func (t *Transcript) Bytes() []byte {
	var transcript []byte
	for _, field := range [][]byte{t.IdentityA, t.IdentityB, t.MessageA, t.MessageB, t.K, t.Password} {
		transcript = append(transcript, encodeLength(field)...)
		transcript = append(transcript, field...)
	}
	return transcript
}

// Wipe zeroes the secret parts of the transcript.
func (t *Transcript) Wipe() {
	clear(t.K)
	clear(t.Password)
}

// writeLengthPrefixed feeds len(data) || data into h.
func writeLengthPrefixed(h hash.Hash, data []byte) {
	h.Write(encodeLength(data))
	h.Write(data)
}

// encodeLength encodes the length of a byte array as a little-endian 8-byte number
func encodeLength(data []byte) []byte {
	length := make([]byte, 8)
	binary.LittleEndian.PutUint64(length, uint64(len(data)))
	return length
}
