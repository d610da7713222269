package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wricardo/footprints/game/engine"
	"github.com/wricardo/footprints/game/protocol"
	"github.com/wricardo/footprints/game/state"
	"github.com/wricardo/footprints/logging"
)

var ErrNotConnected = errors.New("session not connected")

// State is the controller lifecycle phase.
type State int32

const (
	Connecting State = iota
	Joining
	Active
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Joining:
		return "joining"
	case Active:
		return "active"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Conn is the broadcast channel a controller talks through.
type Conn interface {
	Send(msg protocol.Message)
	OnMessage(handler func(protocol.Message))
}

// Connector produces the Conn. Implementations must return the same Conn
// on repeated calls.
type Connector interface {
	Connect(ctx context.Context) (Conn, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context) (Conn, error)

func (f ConnectorFunc) Connect(ctx context.Context) (Conn, error) { return f(ctx) }

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Controller) { c.log = logging.OrNop(log) }
}

// Controller drives one local character.
type Controller struct {
	self engine.Character
	log  *zap.SugaredLogger

	state atomic.Int32
	world atomic.Pointer[engine.World]

	// mu serializes Handle and guards conn and observers.
	mu        sync.Mutex
	conn      Conn
	observers []func(engine.World)
}

// New creates a controller whose world holds only self.
func New(self engine.Character, opts ...Option) *Controller {
	c := &Controller{
		self: self,
		log:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	w := engine.NewWorld(self)
	c.world.Store(&w)
	return c
}

// Self returns the local character as created. Its position is not
// tracked; look it up in World.
func (c *Controller) Self() engine.Character { return c.self }

// State returns the current lifecycle phase.
func (c *Controller) State() State { return State(c.state.Load()) }

// World returns the latest world.
func (c *Controller) World() engine.World { return *c.world.Load() }

// Subscribe registers fn to be called with every new world. fn runs on the
// inbound goroutine and must not block.
func (c *Controller) Subscribe(fn func(engine.World)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Start connects and announces the local player. A connect failure leaves
// the controller in Connecting and is not retried.
func (c *Controller) Start(ctx context.Context, connector Connector) error {
	c.state.Store(int32(Connecting))

	conn, err := connector.Connect(ctx)
	if err != nil {
		c.log.Errorw("failed to connect", "id", c.self.ID, "error", err)
		return fmt.Errorf("connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.state.Store(int32(Joining))
	conn.OnMessage(c.Handle)
	conn.Send(protocol.Hello{})
	c.log.Infow("joining", "id", c.self.ID)
	return nil
}

// Handle folds one inbound message into the world. A join naming this
// controller as leader is answered with a snapshot of the world.
func (c *Controller) Handle(msg protocol.Message) {
	c.mu.Lock()

	current := *c.world.Load()
	next := state.Reduce(current, msg)
	c.world.Store(&next)

	if c.state.CompareAndSwap(int32(Joining), int32(Active)) {
		c.log.Infow("active", "id", c.self.ID, "first", msg.Type())
	}

	if join, ok := msg.(protocol.Join); ok && join.Leader && c.conn != nil {
		c.log.Debugw("elected leader, sending snapshot", "characters", len(next.Characters))
		c.conn.Send(protocol.Snapshot{Context: next})
	}

	observers := append([]func(engine.World){}, c.observers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}

// Move broadcasts a step of the local character. The move is applied
// locally only when the relay echoes it back.
func (c *Controller) Move(dir engine.Direction) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.log.Warnw("move before connect", "direction", dir)
		return ErrNotConnected
	}
	conn.Send(protocol.NewMove(c.self, dir))
	return nil
}

// Position returns where the world currently places the local character.
func (c *Controller) Position() engine.Position {
	if ch, ok := c.World().Character(c.self.ID); ok {
		return ch.Position
	}
	return c.self.Position
}
