// Package pairingauth turns a SPAKE2 handshake into the AES-128-GCM channel
// adb pairing uses to exchange PeerInfo.
//
// Both sides create an Auth from the shared password, swap Msg() out of
// band, call InitCipher with the peer's message, then Encrypt and Decrypt.
// Nonces are 12 bytes built from separate encrypt and decrypt counters
// starting at zero, so a single message in each direction uses an all-zero
// nonce.
package pairingauth

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"

	spake2 "github.com/backkem/adb-spake2"
	"github.com/pion/logging"
)

const (
	// ExportedKeyLabel is the TLS exporter label whose output is appended to
	// the pairing code to form the password.
	ExportedKeyLabel = "adb-label\x00"

	// ExportedKeySize is the number of exported keying material bytes
	ExportedKeySize = 64

	// NonceSize is the AES-GCM nonce size
	NonceSize = 12

	// TagSize is the AES-GCM authentication tag size
	TagSize = 16
)

var (
	// ErrKeyMaterialSize indicates exported keying material of the wrong length
	ErrKeyMaterialSize = errors.New("pairingauth: exported keying material must be 64 bytes")

	// ErrCipherNotInitialized indicates Encrypt or Decrypt before InitCipher
	ErrCipherNotInitialized = errors.New("pairingauth: cipher not initialized")

	// ErrCipherInitialized indicates a second InitCipher call
	ErrCipherInitialized = errors.New("pairingauth: cipher already initialized")

	// ErrDecrypt indicates a ciphertext that failed authentication
	ErrDecrypt = errors.New("pairingauth: unable to decrypt payload")

	// ErrClosed indicates use after Close
	ErrClosed = errors.New("pairingauth: closed")
)

// Password builds the SPAKE2 password from the pairing code and the keying
// material exported from the TLS session with ExportedKeyLabel.
func Password(code string, exportedKeyMaterial []byte) ([]byte, error) {
	if len(exportedKeyMaterial) != ExportedKeySize {
		return nil, ErrKeyMaterialSize
	}
	password := make([]byte, 0, len(code)+ExportedKeySize)
	password = append(password, code...)
	return append(password, exportedKeyMaterial...), nil
}

// Auth is one side of the pairing authentication. It is not safe for
// concurrent use.
type Auth struct {
	ctx *spake2.Context
	msg []byte

	aead        cipher.AEAD
	encSequence uint64
	decSequence uint64
	closed      bool

	log logging.LeveledLogger
}

// New runs the first half of the handshake for role. A nil opts selects
// spake2.DefaultOptions.
func New(role spake2.Role, password []byte, opts *spake2.Options) (*Auth, error) {
	ctx, msg, err := spake2.Create(role, password, opts)
	if err != nil {
		return nil, err
	}
	a := &Auth{
		ctx: ctx,
		msg: msg,
	}
	if opts != nil && opts.LoggerFactory != nil {
		a.log = opts.LoggerFactory.NewLogger("pairingauth")
	}
	return a, nil
}

// Msg returns the public message to send to the peer, or nil once closed.
func (a *Auth) Msg() []byte {
	if a.closed {
		return nil
	}
	return append([]byte(nil), a.msg...)
}

// InitCipher processes the peer's message and keys the AEAD with the
// derived key. The SPAKE2 context is destroyed either way.
func (a *Auth) InitCipher(theirMsg []byte) error {
	if a.closed {
		return ErrClosed
	}
	if a.aead != nil {
		return ErrCipherInitialized
	}

	key, err := a.ctx.ProcessMessage(theirMsg)
	a.ctx.Destroy()
	if err != nil {
		return err
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("pairingauth: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("pairingauth: %w", err)
	}
	a.aead = aead

	if a.log != nil {
		a.log.Debug("cipher initialized")
	}
	return nil
}

// SafeMaxEncryptedSize returns an upper bound for the ciphertext of a
// plaintext of size n.
func (a *Auth) SafeMaxEncryptedSize(n int) int {
	return n + TagSize
}

// SafeMaxDecryptedSize returns an upper bound for the plaintext of a
// ciphertext of size n.
func (a *Auth) SafeMaxDecryptedSize(n int) int {
	return n
}

// Encrypt seals plaintext under the next encrypt nonce.
func (a *Auth) Encrypt(plaintext []byte) ([]byte, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	nonce := sequenceNonce(a.encSequence)
	out := a.aead.Seal(nil, nonce[:], plaintext, nil)
	a.encSequence++
	return out, nil
}

// Decrypt opens ciphertext under the next decrypt nonce. The decrypt
// counter only advances on success.
func (a *Auth) Decrypt(ciphertext []byte) ([]byte, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	nonce := sequenceNonce(a.decSequence)
	out, err := a.aead.Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		if a.log != nil {
			a.log.Warnf("decrypt failed for %d byte payload", len(ciphertext))
		}
		return nil, ErrDecrypt
	}
	a.decSequence++
	return out, nil
}

// Close destroys the handshake state and drops the cipher.
func (a *Auth) Close() error {
	if a.closed {
		return nil
	}
	a.ctx.Destroy()
	a.aead = nil
	clear(a.msg)
	a.closed = true
	return nil
}

func (a *Auth) ready() error {
	if a.closed {
		return ErrClosed
	}
	if a.aead == nil {
		return ErrCipherNotInitialized
	}
	return nil
}

// sequenceNonce places the little-endian counter in the first 8 bytes.
func sequenceNonce(seq uint64) [NonceSize]byte {
	var nonce [NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[:8], seq)
	return nonce
}
