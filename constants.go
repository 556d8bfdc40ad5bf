package spake2

import (
	"fmt"
	"io"

	"github.com/backkem/adb-spake2/internal/crypto"
	"github.com/pion/logging"
)

// Protocol constants shared with adbd. Both endpoints must agree on them.
const (
	// ClientIdentity names the initiator. The trailing NUL is part of the
	// identity on the wire.
	ClientIdentity = "adb pair client\x00"

	// ServerIdentity names the responder, NUL included.
	ServerIdentity = "adb pair server\x00"

	// KeyInfo is the HKDF info label for the pairing key, without any NUL.
	KeyInfo = "adb pairing_auth aes-128-gcm key"

	// KeySize is the size of the derived AES-128-GCM key
	KeySize = 16

	// MaxMsgSize bounds a public message of the default ciphersuite
	MaxMsgSize = crypto.Ed25519MessageSize

	// MaxKeySize bounds the raw key material of the default ciphersuite
	MaxKeySize = crypto.Ed25519KeySize
)

// Role selects which side of the exchange a Context plays.
type Role int

const (
	// Initiator is the "A"/alice role, the adb client
	Initiator Role = iota

	// Responder is the "B"/bob role, the adbd server
	Responder
)

const (
	// Client is the adb name for Initiator
	Client = Initiator

	// Server is the adb name for Responder
	Server = Responder
)

func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Responder:
		return "responder"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Group is the group-arithmetic collaborator holding one party's secret
// state. A Context calls GenerateMessage once, ProcessMessage at most once,
// and Wipe on destruction.
type Group interface {
	// GenerateMessage derives the public message from the password.
	GenerateMessage(password []byte) ([]byte, error)

	// ProcessMessage returns the raw shared key material.
	ProcessMessage(peerMessage []byte) ([]byte, error)

	// MaxMessageSize bounds the size of a public message.
	MaxMessageSize() int

	// MaxKeySize bounds the size of the raw key material.
	MaxKeySize() int

	// Wipe erases all secret state.
	Wipe()
}

// Ciphersuite represents a complete set of algorithms for the SPAKE2 protocol
type Ciphersuite struct {
	// Name identifies the suite in logs
	Name string

	// NewGroup creates the group state for one party
	NewGroup func(role Role, identityInitiator, identityResponder []byte, rand io.Reader) (Group, error)

	// Key derivation function
	KDF func(ikm, salt, info []byte, l int) ([]byte, error)
}

// Ed25519Ciphersuite is SPAKE2 over edwards25519 with SHA-512 key material,
// byte compatible with BoringSSL and therefore with adbd.
func Ed25519Ciphersuite() *Ciphersuite {
	return &Ciphersuite{
		Name: "edwards25519-sha512-hkdf-sha256",
		NewGroup: func(role Role, idInitiator, idResponder []byte, rand io.Reader) (Group, error) {
			return crypto.NewEd25519Group(role == Initiator, idInitiator, idResponder, rand)
		},
		KDF: crypto.HKDFSHA256,
	}
}

// P256Ciphersuite is RFC 9382 SPAKE2 over P-256; the raw key material is
// Hash(TT) = Ke || Ka.
func P256Ciphersuite() *Ciphersuite {
	return &Ciphersuite{
		Name: "p256-sha256-hkdf-sha256",
		NewGroup: func(role Role, idInitiator, idResponder []byte, rand io.Reader) (Group, error) {
			return crypto.NewP256Group(role == Initiator, idInitiator, idResponder, rand)
		},
		KDF: crypto.HKDFSHA256,
	}
}

// DefaultCiphersuite returns the ciphersuite adb pairing uses
func DefaultCiphersuite() *Ciphersuite {
	return Ed25519Ciphersuite()
}

// Options represents configuration options for a handshake Context
type Options struct {
	// The ciphersuite to use
	Ciphersuite *Ciphersuite

	// Identity of the initiator (client)
	IdentityInitiator []byte

	// Identity of the responder (server)
	IdentityResponder []byte

	// Info is the domain-separation label fed to the KDF; empty selects KeyInfo
	Info []byte

	// KeySize is the length of the derived key; zero selects KeySize
	KeySize int

	// Rand is the entropy source for ephemeral scalars; nil selects crypto/rand
	Rand io.Reader

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// DefaultOptions returns the options adb pairing uses
func DefaultOptions() *Options {
	return &Options{
		Ciphersuite:       DefaultCiphersuite(),
		IdentityInitiator: []byte(ClientIdentity),
		IdentityResponder: []byte(ServerIdentity),
		Info:              []byte(KeyInfo),
		KeySize:           KeySize,
	}
}
