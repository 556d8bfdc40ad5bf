package crypto

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"

	"filippo.io/edwards25519"
)

const (
	// Ed25519MessageSize is the size of an encoded edwards25519 point
	Ed25519MessageSize = 32

	// Ed25519KeySize is the size of the raw key material (a SHA-512 digest)
	Ed25519KeySize = sha512.Size
)

// M and N as used by BoringSSL's SPAKE2: the first decodable SHA-256 chain
// values of the seeds "edwards25519 point generation seed (M)" and "(N)".
const (
	ed25519MHex = "5ada7e4bf6ddd9adb6626d32131c6b5c51a1e347a3478f53cfcf441b88eed12e"
	ed25519NHex = "10e3df0ae37d8e7a99b5fe74b44672103dbddcbd06af680d71329a11693bc778"
)

var (
	ed25519M = mustPrimeOrderComponent(ed25519MHex)
	ed25519N = mustPrimeOrderComponent(ed25519NHex)
)

// mustPrimeOrderComponent decodes a point and strips its small-order
// component by computing (8^-1 mod l)·8P.
//
// The seed-derived M and N are not in the prime-order subgroup. BoringSSL
// masks with w'·M where w' ≡ w (mod l) and w' ≡ 0 (mod 8), which equals
// w·M' for the prime-order component M'.
func mustPrimeOrderComponent(s string) *edwards25519.Point {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		panic(err)
	}
	var eight [32]byte
	eight[0] = 8
	e, err := edwards25519.NewScalar().SetCanonicalBytes(eight[:])
	if err != nil {
		panic(err)
	}
	inv := edwards25519.NewScalar().Invert(e)
	cleared := new(edwards25519.Point).MultByCofactor(p)
	return new(edwards25519.Point).ScalarMult(inv, cleared)
}

// Ed25519Group is one party's SPAKE2 state over edwards25519, wire compatible
// with BoringSSL's SPAKE2_CTX.
type Ed25519Group struct {
	initiator bool
	myName    []byte
	theirName []byte
	rand      io.Reader

	// privateKey is x; the effective private scalar is 8x.
	privateKey     *edwards25519.Scalar
	passwordScalar *edwards25519.Scalar
	passwordHash   [sha512.Size]byte
	myMsg          [Ed25519MessageSize]byte

	generated bool
	processed bool
}

// NewEd25519Group creates the edwards25519 state for the initiator (alice)
// or the responder (bob). A nil random source selects crypto/rand.
func NewEd25519Group(initiator bool, identityInitiator, identityResponder []byte, random io.Reader) (*Ed25519Group, error) {
	g := &Ed25519Group{
		initiator: initiator,
		rand:      randomOrDefault(random),
	}
	if initiator {
		g.myName, g.theirName = cloneBytes(identityInitiator), cloneBytes(identityResponder)
	} else {
		g.myName, g.theirName = cloneBytes(identityResponder), cloneBytes(identityInitiator)
	}
	return g, nil
}

func (g *Ed25519Group) MaxMessageSize() int { return Ed25519MessageSize }

func (g *Ed25519Group) MaxKeySize() int { return Ed25519KeySize }

// GenerateMessage computes 8x·B + w·M (initiator) or 8x·B + w·N (responder)
// where w is SHA-512(password) reduced mod l.
func (g *Ed25519Group) GenerateMessage(password []byte) ([]byte, error) {
	if g.generated {
		return nil, ErrState
	}

	var seed [64]byte
	defer clear(seed[:])
	if _, err := io.ReadFull(g.rand, seed[:]); err != nil {
		return nil, fmt.Errorf("failed to read random scalar: %w", err)
	}
	x, err := edwards25519.NewScalar().SetUniformBytes(seed[:])
	if err != nil {
		return nil, fmt.Errorf("failed to reduce random scalar: %w", err)
	}

	// X = 8x·B, so the small-order part of the peer's point is cleared later
	X := new(edwards25519.Point).ScalarBaseMult(x)
	X.MultByCofactor(X)

	g.passwordHash = sha512.Sum512(password)
	w, err := edwards25519.NewScalar().SetUniformBytes(g.passwordHash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to reduce password hash: %w", err)
	}

	mask := new(edwards25519.Point).ScalarMult(w, g.myPoint())
	msg := new(edwards25519.Point).Add(X, mask)
	copy(g.myMsg[:], msg.Bytes())

	g.privateKey = x
	g.passwordScalar = w
	g.generated = true

	out := make([]byte, Ed25519MessageSize)
	copy(out, g.myMsg[:])
	return out, nil
}

// ProcessMessage unmasks the peer's point, computes the shared point
// K = 8x·(Q* - w·N) and returns
//
//	SHA-512(len(A) || A || len(B) || B || len(pA) || pA || len(pB) || pB
//		|| len(K) || K || len(h) || h)
//
// where A is always the initiator and h = SHA-512(password).
func (g *Ed25519Group) ProcessMessage(peerMessage []byte) ([]byte, error) {
	if !g.generated || g.processed || g.privateKey == nil {
		return nil, ErrState
	}
	if len(peerMessage) != Ed25519MessageSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrMessageSize, len(peerMessage), Ed25519MessageSize)
	}

	q, err := new(edwards25519.Point).SetBytes(peerMessage)
	if err != nil {
		return nil, ErrInvalidPoint
	}
	peersMask := new(edwards25519.Point).ScalarMult(g.passwordScalar, g.peerPoint())
	q.Subtract(q, peersMask)

	k := new(edwards25519.Point).ScalarMult(g.privateKey, q)
	k.MultByCofactor(k)
	kData := k.Bytes()
	defer clear(kData)

	h := sha512.New()
	if g.initiator {
		writeLengthPrefixed(h, g.myName)
		writeLengthPrefixed(h, g.theirName)
		writeLengthPrefixed(h, g.myMsg[:])
		writeLengthPrefixed(h, peerMessage)
	} else {
		writeLengthPrefixed(h, g.theirName)
		writeLengthPrefixed(h, g.myName)
		writeLengthPrefixed(h, peerMessage)
		writeLengthPrefixed(h, g.myMsg[:])
	}
	writeLengthPrefixed(h, kData)
	writeLengthPrefixed(h, g.passwordHash[:])

	g.processed = true
	return h.Sum(nil), nil
}

// Wipe zeroes the scalars, the password hash and the cached message.
func (g *Ed25519Group) Wipe() {
	zero := edwards25519.NewScalar()
	if g.privateKey != nil {
		g.privateKey.Set(zero)
		g.privateKey = nil
	}
	if g.passwordScalar != nil {
		g.passwordScalar.Set(zero)
		g.passwordScalar = nil
	}
	clear(g.passwordHash[:])
	clear(g.myMsg[:])
}

func (g *Ed25519Group) myPoint() *edwards25519.Point {
	if g.initiator {
		return ed25519M
	}
	return ed25519N
}

func (g *Ed25519Group) peerPoint() *edwards25519.Point {
	if g.initiator {
		return ed25519N
	}
	return ed25519M
}
