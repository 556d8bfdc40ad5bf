package pairingauth

import (
	"bytes"
	"errors"
	"fmt"
)

// PeerInfoSize is the fixed size of an encoded PeerInfo
const PeerInfoSize = 8192

// PeerInfoType tags the data carried in a PeerInfo.
type PeerInfoType byte

const (
	// PeerInfoRSAPublicKey carries the adb RSA public key ("<base64> user@host")
	PeerInfoRSAPublicKey PeerInfoType = 0

	// PeerInfoDeviceGUID carries the device GUID
	PeerInfoDeviceGUID PeerInfoType = 1
)

// ErrPeerInfoSize indicates a PeerInfo that does not fit or is not exactly
// PeerInfoSize bytes once decrypted.
var ErrPeerInfoSize = errors.New("pairingauth: invalid peer info size")

// PeerInfo is the payload both sides exchange over the pairing cipher.
type PeerInfo struct {
	Type PeerInfoType
	Data []byte
}

// Marshal encodes p as the type byte followed by Data, zero-padded to
// PeerInfoSize. Data must leave room for a terminating NUL.
func (p PeerInfo) Marshal() ([]byte, error) {
	if len(p.Data) > PeerInfoSize-2 {
		return nil, fmt.Errorf("%w: %d data bytes", ErrPeerInfoSize, len(p.Data))
	}
	buf := make([]byte, PeerInfoSize)
	buf[0] = byte(p.Type)
	copy(buf[1:], p.Data)
	return buf, nil
}

// ParsePeerInfo decodes a decrypted PeerInfo. Data stops at the first NUL.
func ParsePeerInfo(b []byte) (PeerInfo, error) {
	if len(b) != PeerInfoSize {
		return PeerInfo{}, fmt.Errorf("%w: %d bytes", ErrPeerInfoSize, len(b))
	}
	data := b[1:]
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return PeerInfo{
		Type: PeerInfoType(b[0]),
		Data: append([]byte(nil), data...),
	}, nil
}
