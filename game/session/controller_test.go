package session

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/wricardo/footprints/game/engine"
	"github.com/wricardo/footprints/game/protocol"
)

// fakeRelay mimics the relay in-process. Sends are queued and delivered by
// flush so handlers can send from inside Handle.
type fakeRelay struct {
	conns []*fakeConn
	queue []queued
}

type queued struct {
	to  *fakeConn
	msg protocol.Message
}

type fakeConn struct {
	relay   *fakeRelay
	id      string
	handler func(protocol.Message)
	sent    []protocol.Message
}

func (r *fakeRelay) connect(id string) *fakeConn {
	conn := &fakeConn{relay: r, id: id}
	r.conns = append(r.conns, conn)
	return conn
}

func (c *fakeConn) OnMessage(h func(protocol.Message)) { c.handler = h }

func (c *fakeConn) Send(msg protocol.Message) {
	c.sent = append(c.sent, msg)
	r := c.relay
	if _, ok := msg.(protocol.Hello); ok {
		ids := make([]string, 0, len(r.conns))
		for _, conn := range r.conns {
			ids = append(ids, conn.id)
		}
		leader := slices.Min(ids)
		for _, conn := range r.conns {
			r.queue = append(r.queue, queued{conn, protocol.Join{Leader: conn.id == leader}})
		}
	}
	for _, conn := range r.conns {
		r.queue = append(r.queue, queued{conn, msg})
	}
}

func (r *fakeRelay) flush() {
	for len(r.queue) > 0 {
		q := r.queue[0]
		r.queue = r.queue[1:]
		if q.to.handler != nil {
			q.to.handler(q.msg)
		}
	}
}

func connectorFor(conn *fakeConn) Connector {
	return ConnectorFunc(func(ctx context.Context) (Conn, error) { return conn, nil })
}

func character(id, color string) engine.Character {
	return engine.Character{ID: id, Color: color, Direction: engine.Down}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Connecting: "connecting",
		Joining:    "joining",
		Active:     "active",
		State(9):   "State(9)",
	}
	for s, expected := range tests {
		if s.String() != expected {
			t.Errorf("Expected %q, got %q", expected, s.String())
		}
	}
}

func TestNew(t *testing.T) {
	self := character("a", "red")
	ctrl := New(self)

	if ctrl.State() != Connecting {
		t.Errorf("Expected Connecting, got %v", ctrl.State())
	}
	world := ctrl.World()
	if len(world.Characters) != 1 || world.Characters[0] != self {
		t.Errorf("Expected world with only self, got %+v", world.Characters)
	}
	if len(world.Colors) != 0 {
		t.Error("Expected empty trail")
	}
	if ctrl.Self() != self {
		t.Error("Self() mismatch")
	}
}

func TestMoveBeforeStart(t *testing.T) {
	ctrl := New(character("a", "red"))
	if err := ctrl.Move(engine.Up); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestStartConnectFailure(t *testing.T) {
	ctrl := New(character("a", "red"))
	boom := errors.New("refused")

	err := ctrl.Start(context.Background(), ConnectorFunc(func(ctx context.Context) (Conn, error) {
		return nil, boom
	}))

	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped connect error, got %v", err)
	}
	if ctrl.State() != Connecting {
		t.Errorf("Expected to remain Connecting, got %v", ctrl.State())
	}
	if err := ctrl.Move(engine.Up); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected after failed start, got %v", err)
	}
}

func TestStartSendsHello(t *testing.T) {
	relay := &fakeRelay{}
	conn := relay.connect("1")
	ctrl := New(character("a", "red"))

	if err := ctrl.Start(context.Background(), connectorFor(conn)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if ctrl.State() != Joining {
		t.Errorf("Expected Joining, got %v", ctrl.State())
	}
	if conn.handler == nil {
		t.Error("Expected handler to be registered")
	}
	if len(conn.sent) != 1 || conn.sent[0] != (protocol.Hello{}) {
		t.Errorf("Expected a single hello, got %v", conn.sent)
	}
}

func TestFirstMessageActivates(t *testing.T) {
	relay := &fakeRelay{}
	conn := relay.connect("1")
	ctrl := New(character("a", "red"))
	ctrl.Start(context.Background(), connectorFor(conn))

	ctrl.Handle(protocol.Hello{})

	if ctrl.State() != Active {
		t.Errorf("Expected Active, got %v", ctrl.State())
	}
}

func TestLeaderSendsSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		leader   bool
		expected int
	}{
		{"leader", true, 1},
		{"follower", false, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			relay := &fakeRelay{}
			conn := relay.connect("1")
			ctrl := New(character("a", "red"))
			ctrl.Start(context.Background(), connectorFor(conn))
			conn.sent = nil

			ctrl.Handle(protocol.Join{Leader: test.leader})

			snapshots := 0
			for _, msg := range conn.sent {
				if snap, ok := msg.(protocol.Snapshot); ok {
					snapshots++
					if _, found := snap.Context.Character("a"); !found {
						t.Error("Expected snapshot to include self")
					}
				}
			}
			if snapshots != test.expected {
				t.Errorf("Expected %d snapshots, got %d", test.expected, snapshots)
			}
		})
	}
}

func TestMoveIsAppliedOnEcho(t *testing.T) {
	relay := &fakeRelay{}
	conn := relay.connect("1")
	ctrl := New(character("a", "red"))
	ctrl.Start(context.Background(), connectorFor(conn))
	relay.flush()

	if err := ctrl.Move(engine.Right); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if ctrl.Position() != engine.Origin {
		t.Error("Expected no local change before the echo")
	}

	relay.flush()

	if ctrl.Position() != (engine.Position{X: 1, Y: 0}) {
		t.Errorf("Expected (1,0), got %v", ctrl.Position())
	}
	if color, ok := ctrl.World().Colors.At(engine.Origin); !ok || color != "red" {
		t.Errorf("Expected red footprint at origin, got %q", color)
	}
}

func TestBlockedMoveIsStillSent(t *testing.T) {
	relay := &fakeRelay{}
	conn := relay.connect("1")
	ctrl := New(character("a", "red"))
	ctrl.Start(context.Background(), connectorFor(conn))
	relay.flush()
	conn.sent = nil

	ctrl.Move(engine.Left)

	if len(conn.sent) != 1 {
		t.Fatalf("Expected move to be sent, got %v", conn.sent)
	}
	before := ctrl.World()
	relay.flush()
	if ctrl.Position() != engine.Origin || len(ctrl.World().Colors) != len(before.Colors) {
		t.Error("Expected blocked move to leave the world unchanged")
	}
}

func TestSubscribe(t *testing.T) {
	relay := &fakeRelay{}
	conn := relay.connect("1")
	ctrl := New(character("a", "red"))

	var seen []engine.World
	ctrl.Subscribe(func(w engine.World) { seen = append(seen, w) })
	ctrl.Start(context.Background(), connectorFor(conn))
	relay.flush()

	// join, hello echo, own snapshot echo
	if len(seen) != 3 {
		t.Fatalf("Expected 3 notifications, got %d", len(seen))
	}
	ctrl.Move(engine.Down)
	relay.flush()

	last := seen[len(seen)-1]
	if ch, _ := last.Character("a"); ch.Position != (engine.Position{X: 0, Y: 1}) {
		t.Errorf("Expected observer to see (0,1), got %v", ch.Position)
	}
}

func TestTwoSessionsBootstrap(t *testing.T) {
	relay := &fakeRelay{}
	first := New(character("A", "red"))
	second := New(character("B", "blue"))

	if err := first.Start(context.Background(), connectorFor(relay.connect("1"))); err != nil {
		t.Fatalf("Start first failed: %v", err)
	}
	relay.flush()

	if err := second.Start(context.Background(), connectorFor(relay.connect("2"))); err != nil {
		t.Fatalf("Start second failed: %v", err)
	}
	relay.flush()

	for name, ctrl := range map[string]*Controller{"first": first, "second": second} {
		if ctrl.State() != Active {
			t.Errorf("%s: expected Active, got %v", name, ctrl.State())
		}
	}

	world := second.World()
	if len(world.Characters) != 2 {
		t.Fatalf("Expected second session to know both characters, got %+v", world.Characters)
	}
	if _, ok := world.Character("A"); !ok {
		t.Error("Expected second session to learn A from the leader's snapshot")
	}
	if _, ok := world.Character("B"); !ok {
		t.Error("Expected second session to keep its own character")
	}

	// the first session learns B from B's first move
	second.Move(engine.Right)
	relay.flush()

	if _, ok := first.World().Character("B"); !ok {
		t.Error("Expected first session to learn B from its move")
	}
	if b, _ := second.World().Character("B"); b.Position != (engine.Position{X: 1, Y: 0}) {
		t.Errorf("Expected B at (1,0) in its own session, got %v", b.Position)
	}
}
