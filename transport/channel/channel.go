package channel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/footprints/game/protocol"
	"github.com/wricardo/footprints/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBufferSize = 256
)

// Handler receives decoded inbound messages.
type Handler = func(protocol.Message)

// Connector dials the relay at most once.
type Connector struct {
	url    string
	dialer *websocket.Dialer
	log    *zap.SugaredLogger

	once sync.Once
	ch   *Channel
	err  error
}

// NewConnector returns a connector for the relay websocket at url.
func NewConnector(url string, log *zap.SugaredLogger) *Connector {
	return &Connector{
		url:    url,
		dialer: websocket.DefaultDialer,
		log:    logging.OrNop(log),
	}
}

// Connect dials the relay on first use. Later and concurrent calls get the
// same channel or the same error.
func (c *Connector) Connect(ctx context.Context) (*Channel, error) {
	c.once.Do(func() {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.err = fmt.Errorf("dial relay %s: %w", c.url, err)
			c.log.Errorw("relay connection failed", "url", c.url, "error", err)
			return
		}
		c.log.Infow("connected to relay", "url", c.url)
		c.ch = newChannel(conn, c.log)
	})
	return c.ch, c.err
}

// Channel is an open relay connection.
type Channel struct {
	conn *websocket.Conn
	log  *zap.SugaredLogger
	send chan []byte

	handler   atomic.Pointer[Handler]
	readOnce  sync.Once
	closeOnce sync.Once
	closed    chan struct{}
}

func newChannel(conn *websocket.Conn, log *zap.SugaredLogger) *Channel {
	ch := &Channel{
		conn:   conn,
		log:    log,
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
	go ch.writePump()
	return ch
}

// Send encodes msg and queues it for the relay. Failures are logged and
// dropped.
func (c *Channel) Send(msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		c.log.Errorw("failed to encode message", "error", err)
		return
	}

	select {
	case <-c.closed:
		c.log.Warnw("send on closed channel", "type", msg.Type())
		return
	default:
	}

	select {
	case c.send <- data:
	default:
		c.log.Warnw("send queue full, dropping message", "type", msg.Type())
	}
}

// OnMessage sets the inbound handler and starts reading. The handler is
// called from a single goroutine, once per message.
func (c *Channel) OnMessage(h Handler) {
	c.handler.Store(&h)
	c.readOnce.Do(func() { go c.readPump() })
}

// Close shuts the connection down. Safe to call more than once.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// Done is closed once the channel is closed, locally or by the relay.
func (c *Channel) Done() <-chan struct{} { return c.closed }

func (c *Channel) readPump() {
	defer func() {
		c.Close()
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warnw("relay read error", "error", err)
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.log.Debugw("dropping inbound frame", "error", err)
			continue
		}
		if h := c.handler.Load(); h != nil {
			(*h)(msg)
		}
	}
}

func (c *Channel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Warnw("relay write failed", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
