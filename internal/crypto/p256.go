package crypto

import (
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/group/nist"
	"go.dedis.ch/kyber/v4/util/random"
)

// RFC 9382 M and N for P-256, compressed SEC1 encoding.
const (
	P256_M_HEX = "02886e2f97ace46e55ba9dd7242579f2993b64e16ef3dcab95afd497333d8fa12f"
	P256_N_HEX = "03d8bbd6c639c62937b04d997f38c3770719c629d7014d49a24b4f98baa1292b49"
)

const (
	// P256MessageSize is the size of an uncompressed P-256 point
	P256MessageSize = 65

	// P256KeySize is the size of the raw key material, Hash(TT) = Ke || Ka
	P256KeySize = sha256.Size
)

// p256Curve pairs the kyber P-256 suite with the stdlib curve parameters.
type p256Curve struct {
	group kyber.Group
	curve elliptic.Curve
}

func newP256Curve() *p256Curve {
	return &p256Curve{
		group: nist.NewBlakeSHA256P256(),
		curve: elliptic.P256(),
	}
}

func (c *p256Curve) String() string {
	return c.group.String()
}

func (c *p256Curve) Scalar() kyber.Scalar {
	return c.group.Scalar()
}

func (c *p256Curve) RandomScalar(r io.Reader) kyber.Scalar {
	return c.group.Scalar().Pick(random.New(r))
}

func (c *p256Curve) Point() kyber.Point {
	return c.group.Point()
}

// Generator returns the generator point
func (c *p256Curve) Generator() (kyber.Point, error) {
	return c.newPoint(c.curve.Params().Gx, c.curve.Params().Gy)
}

func (c *p256Curve) newPoint(x, y *big.Int) (kyber.Point, error) {
	//lint:ignore SA1019 deprecated function used for compatibility
	b := elliptic.Marshal(c.curve, x, y)
	p := c.group.Point()
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *p256Curve) parseCompressed(s string) (kyber.Point, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	x, y := elliptic.UnmarshalCompressed(c.curve, b)
	if x == nil {
		return nil, ErrInvalidPoint
	}
	return c.newPoint(x, y)
}

func (c *p256Curve) pointFromBytes(b []byte) (kyber.Point, error) {
	p := c.group.Point()
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return p, nil
}

// P256Group is one party's RFC 9382 SPAKE2 state over P-256 (cofactor 1).
type P256Group struct {
	initiator bool
	idA       []byte
	idB       []byte
	rand      io.Reader
	curve     *p256Curve
	m, n      kyber.Point

	// The password converted to a scalar
	w kyber.Scalar

	// The scalar value (x for the initiator, y for the responder)
	scalar kyber.Scalar

	myMsg     []byte
	generated bool
	processed bool
}

// NewP256Group creates the P-256 state. A nil random source selects crypto/rand.
func NewP256Group(initiator bool, identityInitiator, identityResponder []byte, r io.Reader) (*P256Group, error) {
	curve := newP256Curve()
	m, err := curve.parseCompressed(P256_M_HEX)
	if err != nil {
		return nil, fmt.Errorf("failed to decode M: %w", err)
	}
	n, err := curve.parseCompressed(P256_N_HEX)
	if err != nil {
		return nil, fmt.Errorf("failed to decode N: %w", err)
	}
	return &P256Group{
		initiator: initiator,
		idA:       cloneBytes(identityInitiator),
		idB:       cloneBytes(identityResponder),
		rand:      randomOrDefault(r),
		curve:     curve,
		m:         m,
		n:         n,
	}, nil
}

func (g *P256Group) MaxMessageSize() int { return P256MessageSize }

func (g *P256Group) MaxKeySize() int { return P256KeySize }

// derivePassword converts a password to a scalar: w = SHA-256(pw) mod p
func (g *P256Group) derivePassword(password []byte) kyber.Scalar {
	digest := sha256.Sum256(password)
	defer clear(digest[:])
	return g.curve.Scalar().SetBytes(digest[:])
}

// GenerateMessage returns pA = x·P + w·M for the initiator or
// pB = y·P + w·N for the responder.
func (g *P256Group) GenerateMessage(password []byte) ([]byte, error) {
	if g.generated {
		return nil, ErrState
	}
	g.w = g.derivePassword(password)
	g.scalar = g.curve.RandomScalar(g.rand)
	return g.generate()
}

func (g *P256Group) generate() ([]byte, error) {
	gen, err := g.curve.Generator()
	if err != nil {
		return nil, fmt.Errorf("failed to get generator: %w", err)
	}
	mask := g.m
	if !g.initiator {
		mask = g.n
	}

	x := g.curve.Point().Mul(g.scalar, gen)
	wm := g.curve.Point().Mul(g.w, mask)
	msg, err := g.curve.Point().Add(wm, x).MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	g.myMsg = msg
	g.generated = true
	return cloneBytes(msg), nil
}

// ProcessMessage computes K = x·(pB - w·N) (or y·(pA - w·M)) and returns
// Hash(TT) = Ke || Ka.
func (g *P256Group) ProcessMessage(peerMessage []byte) ([]byte, error) {
	if !g.generated || g.processed || g.scalar == nil {
		return nil, ErrState
	}
	tt, err := g.transcript(peerMessage)
	if err != nil {
		return nil, err
	}
	defer tt.Wipe()

	transcript := tt.Bytes()
	defer clear(transcript)
	sum := sha256.Sum256(transcript)

	g.processed = true
	return sum[:], nil
}

func (g *P256Group) transcript(peerMessage []byte) (*Transcript, error) {
	if len(peerMessage) != P256MessageSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrMessageSize, len(peerMessage), P256MessageSize)
	}
	peer, err := g.curve.pointFromBytes(peerMessage)
	if err != nil {
		return nil, ErrInvalidPoint
	}

	unmask := g.n
	if !g.initiator {
		unmask = g.m
	}
	wn := g.curve.Point().Mul(g.w, unmask)
	k := g.curve.Point().Mul(g.scalar, g.curve.Point().Sub(peer, wn))

	kData, err := k.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal K: %w", err)
	}
	wData, err := g.w.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal w: %w", err)
	}

	if g.initiator {
		return NewTranscript(g.idA, g.idB, g.myMsg, peerMessage, kData, wData), nil
	}
	return NewTranscript(g.idA, g.idB, peerMessage, g.myMsg, kData, wData), nil
}

// Wipe zeroes the password and ephemeral scalars.
func (g *P256Group) Wipe() {
	if g.w != nil {
		g.w.Zero()
		g.w = nil
	}
	if g.scalar != nil {
		g.scalar.Zero()
		g.scalar = nil
	}
	clear(g.myMsg)
}
