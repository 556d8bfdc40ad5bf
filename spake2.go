package spake2

import (
	"errors"
	"fmt"

	"github.com/pion/logging"
)

var (
	// ErrContextCreation indicates that the group state could not be created
	ErrContextCreation = errors.New("spake2: unable to create context")

	// ErrMessageGeneration indicates that no valid public message could be produced
	ErrMessageGeneration = errors.New("spake2: unable to generate message")

	// ErrOversizeMessage indicates that the peer message exceeds the maximum message size
	ErrOversizeMessage = errors.New("spake2: peer message too large")

	// ErrKeyAgreement indicates that the peer message could not be processed
	ErrKeyAgreement = errors.New("spake2: unable to process peer message")

	// ErrInvalidState indicates that an operation was invoked out of sequence
	ErrInvalidState = errors.New("spake2: invalid state for this operation")

	errEmptyMessage = errors.New("empty message")
)

// state represents the protocol state
type state int

const (
	stateInitial state = iota
	stateMessageGenerated
	stateCompleted
	stateFailed
	stateDestroyed
)

func (s state) String() string {
	switch s {
	case stateInitial:
		return "initial"
	case stateMessageGenerated:
		return "message generated"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	case stateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Context is one party's participation in exactly one SPAKE2 run.
//
// The lifecycle is New, GenerateMessage, ProcessMessage, Destroy. Every
// failure is terminal. A Context is not safe for concurrent use.
type Context struct {
	role    Role
	suite   *Ciphersuite
	info    []byte
	keySize int
	group   Group
	state   state
	log     logging.LeveledLogger
}

// New creates a handshake context for role, bound to the identities in
// opts. A nil opts selects DefaultOptions.
func New(role Role, opts *Options) (*Context, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if role != Initiator && role != Responder {
		return nil, fmt.Errorf("%w: unknown role %v", ErrContextCreation, role)
	}

	if len(opts.IdentityInitiator) == 0 || len(opts.IdentityResponder) == 0 {
		return nil, fmt.Errorf("%w: empty identity", ErrContextCreation)
	}

	suite := opts.Ciphersuite
	if suite == nil {
		suite = DefaultCiphersuite()
	}
	info := opts.Info
	if len(info) == 0 {
		info = []byte(KeyInfo)
	}
	keySize := opts.KeySize
	if keySize == 0 {
		keySize = KeySize
	}
	if keySize < 0 {
		return nil, fmt.Errorf("%w: invalid key size %d", ErrContextCreation, keySize)
	}

	group, err := suite.NewGroup(role, opts.IdentityInitiator, opts.IdentityResponder, opts.Rand)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextCreation, err)
	}
	if group == nil {
		return nil, ErrContextCreation
	}

	c := &Context{
		role:    role,
		suite:   suite,
		info:    append([]byte(nil), info...),
		keySize: keySize,
		group:   group,
		state:   stateInitial,
	}
	if opts.LoggerFactory != nil {
		c.log = opts.LoggerFactory.NewLogger("spake2")
		c.log.Debugf("created %s context (%s)", role, suite.Name)
	}
	return c, nil
}

// NewClient creates a new initiator context
func NewClient(opts *Options) (*Context, error) {
	return New(Initiator, opts)
}

// NewServer creates a new responder context
func NewServer(opts *Options) (*Context, error) {
	return New(Responder, opts)
}

// Create constructs a context and generates its public message in one step.
// On failure nothing is returned and no context is left alive.
func Create(role Role, password []byte, opts *Options) (*Context, []byte, error) {
	c, err := New(role, opts)
	if err != nil {
		return nil, nil, err
	}
	msg, err := c.GenerateMessage(password)
	if err != nil {
		c.Destroy()
		return nil, nil, err
	}
	return c, msg, nil
}

// Role returns the role the context was created with
func (c *Context) Role() Role {
	return c.role
}

// Completed reports whether a peer message was processed successfully
func (c *Context) Completed() bool {
	return c.state == stateCompleted
}

// GenerateMessage derives this party's public message from password.
// Any password length is accepted, including zero. The password is not
// retained. It may be called once.
func (c *Context) GenerateMessage(password []byte) ([]byte, error) {
	if c.state != stateInitial {
		return nil, c.invalidState("generate message")
	}

	msg, err := c.group.GenerateMessage(password)
	if err == nil && len(msg) == 0 {
		err = errEmptyMessage
	}
	if err == nil && len(msg) > c.group.MaxMessageSize() {
		err = fmt.Errorf("message of %d bytes exceeds %d", len(msg), c.group.MaxMessageSize())
	}
	if err != nil {
		c.fail("generate message")
		return nil, fmt.Errorf("%w: %w", ErrMessageGeneration, err)
	}

	c.state = stateMessageGenerated
	if c.log != nil {
		c.log.Tracef("generated %d byte message", len(msg))
	}
	return msg, nil
}

// ProcessMessage consumes the peer's public message and returns the derived
// key: HKDF(hash, salt=nil, info, raw key material). It may be called once,
// after GenerateMessage.
func (c *Context) ProcessMessage(peerMessage []byte) ([]byte, error) {
	if c.state != stateMessageGenerated {
		return nil, c.invalidState("process message")
	}
	if limit := c.group.MaxMessageSize(); len(peerMessage) > limit {
		c.fail("process message")
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrOversizeMessage, len(peerMessage), limit)
	}

	raw, err := c.group.ProcessMessage(peerMessage)
	defer clear(raw)
	if err == nil && (len(raw) == 0 || len(raw) > c.group.MaxKeySize()) {
		err = fmt.Errorf("raw key material of %d bytes", len(raw))
	}
	if err != nil {
		c.fail("process message")
		return nil, fmt.Errorf("%w: %w", ErrKeyAgreement, err)
	}

	key, err := c.suite.KDF(raw, nil, c.info, c.keySize)
	if err != nil {
		c.fail("derive key")
		return nil, fmt.Errorf("%w: key derivation: %w", ErrKeyAgreement, err)
	}

	c.state = stateCompleted
	if c.log != nil {
		c.log.Debugf("%s derived %d byte key", c.role, len(key))
	}
	return key, nil
}

// Destroy wipes the secret state and releases the context. Further calls
// on the context fail with ErrInvalidState; Destroy itself is idempotent.
func (c *Context) Destroy() {
	if c == nil || c.state == stateDestroyed {
		return
	}
	c.group.Wipe()
	c.group = nil
	c.state = stateDestroyed
	if c.log != nil {
		c.log.Tracef("destroyed %s context", c.role)
	}
}

func (c *Context) invalidState(op string) error {
	from := c.state
	c.fail(op)
	return fmt.Errorf("%w: cannot %s in state %s", ErrInvalidState, op, from)
}

func (c *Context) fail(op string) {
	if c.state == stateDestroyed {
		return
	}
	c.state = stateFailed
	if c.log != nil {
		c.log.Warnf("%s failed to %s", c.role, op)
	}
}
