package websocket

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/footprints/game/protocol"
	"github.com/wricardo/footprints/logging"
	"github.com/wricardo/footprints/transport/registry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. A full snapshot of a busy
	// grid is a few tens of kilobytes.
	maxMessageSize = 1 << 20

	// Frames queued per client before it is considered too slow.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients are served from other origins.
		return true
	},
}

// Client is one relay connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// ID returns the opaque connection id used for leader election.
func (c *Client) ID() string { return c.id }

type inbound struct {
	from *Client
	data []byte
}

// Hub maintains the set of active clients and fans frames out to them
type Hub struct {
	registry registry.Registry
	log      *zap.SugaredLogger
	metrics  *Metrics
	newID    func() string

	// Connected clients by connection id. Owned by the Run goroutine.
	clients map[string]*Client

	// Inbound frames from clients
	inbound chan inbound

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}
}

// NewHub creates a hub that records participants in reg.
func NewHub(reg registry.Registry, log *zap.SugaredLogger) *Hub {
	return &Hub{
		registry:   reg,
		log:        logging.OrNop(log),
		metrics:    &Metrics{},
		newID:      newConnectionID,
		clients:    make(map[string]*Client),
		inbound:    make(chan inbound, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Metrics exposes the hub counters.
func (h *Hub) Metrics() *Metrics { return h.metrics }

// Done is closed once Run has returned and every client is unregistered.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Participants returns the tracked connection ids in ascending order.
func (h *Hub) Participants(ctx context.Context) ([]string, error) {
	return h.registry.Members(ctx)
}

// Run starts the hub's event loop. It returns when ctx is cancelled, after
// closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(ctx, client)

		case client := <-h.unregister:
			h.unregisterClient(ctx, client)

		case in := <-h.inbound:
			h.handleInbound(ctx, in)

		case <-ctx.Done():
			// Registry cleanup must outlive the cancelled context.
			cleanup, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			for _, client := range h.clients {
				h.unregisterClient(cleanup, client)
			}
			cancel()
			return
		}
	}
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		id:   h.newID(),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// newConnectionID returns a UUIDv7. Its text form sorts by creation time,
// so the oldest connection wins the election.
func newConnectionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ElectLeader picks the lexicographically smallest id.
func ElectLeader(ids []string) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}
	return slices.Min(ids), true
}

// registerClient tracks a new connection. A connection the registry cannot
// track is closed.
func (h *Hub) registerClient(ctx context.Context, client *Client) {
	if err := h.registry.Add(ctx, client.id); err != nil {
		h.log.Errorw("failed to track participant, closing", "id", client.id, "error", err)
		close(client.send)
		return
	}
	h.clients[client.id] = client
	h.metrics.connected()
	h.log.Infow("participant connected", "id", client.id, "connected", len(h.clients))
}

// unregisterClient forgets a connection and closes its send queue
func (h *Hub) unregisterClient(ctx context.Context, client *Client) {
	if current, ok := h.clients[client.id]; !ok || current != client {
		return
	}
	delete(h.clients, client.id)
	close(client.send)
	h.metrics.disconnected()
	if err := h.registry.Remove(ctx, client.id); err != nil {
		h.log.Errorw("failed to untrack participant", "id", client.id, "error", err)
	}
	h.log.Infow("participant disconnected", "id", client.id, "connected", len(h.clients))
}

// handleInbound reads the frame's tag, runs an election on hello, and fans
// the frame out to every tracked participant. Only the tag is inspected;
// payloads are forwarded untouched.
func (h *Hub) handleInbound(ctx context.Context, in inbound) {
	h.metrics.frameIn()

	kind, err := protocol.PeekType(in.data)
	if err != nil {
		h.metrics.dropped()
		h.log.Warnw("dropping malformed frame", "from", in.from.id, "error", err)
		return
	}

	ids, err := h.registry.Members(ctx)
	if err != nil {
		h.log.Errorw("failed to list participants", "error", err)
		return
	}

	if kind == protocol.TypeHello {
		h.announceJoin(ctx, ids)
	}

	for _, id := range ids {
		h.deliver(ctx, id, in.data)
	}
}

// announceJoin sends join{leader} to every participant.
func (h *Hub) announceJoin(ctx context.Context, ids []string) {
	leader, ok := ElectLeader(ids)
	if !ok {
		return
	}
	h.metrics.helloRound()
	h.log.Debugw("leader elected", "leader", leader, "participants", len(ids))

	for _, id := range ids {
		data, err := protocol.Encode(protocol.Join{Leader: id == leader})
		if err != nil {
			h.log.Errorw("failed to encode join", "error", err)
			return
		}
		h.deliver(ctx, id, data)
	}
}

// deliver queues data for one participant. A client whose queue is full is
// disconnected rather than allowed to stall the hub.
func (h *Hub) deliver(ctx context.Context, id string, data []byte) {
	client, ok := h.clients[id]
	if !ok {
		h.log.Debugw("tracked participant not connected to this relay", "id", id)
		return
	}
	select {
	case client.send <- data:
		h.metrics.frameOut()
	default:
		h.metrics.slowConsumer()
		h.log.Warnw("send queue full, dropping participant", "id", id)
		h.unregisterClient(ctx, client)
	}
}

// readPump pumps frames from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warnw("websocket read error", "id", c.id, "error", err)
			}
			return
		}

		select {
		case c.hub.inbound <- inbound{from: c, data: data}:
		case <-c.hub.done:
			return
		}
	}
}

// writePump pumps frames from the hub to the WebSocket connection, one
// frame per message.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.Debugw("websocket write failed", "id", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
