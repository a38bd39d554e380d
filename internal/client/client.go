package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/devaloi/pairline/internal/domain"
	"github.com/devaloi/pairline/internal/hub"
	"github.com/devaloi/pairline/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	defaultWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	defaultPongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	defaultMaxMessageSize = 4096

	defaultSendBuffer = 256

	lookupTimeout = 5 * time.Second
)

// RoomLookup reports whether a room was created through the registry.
type RoomLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Options tunes a connection. Zero values fall back to the defaults above.
type Options struct {
	SendBuffer     int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration

	// Rooms, when set, restricts socket joins to registered rooms.
	Rooms RoomLookup

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = defaultMaxMessageSize
	}
	if o.WriteWait <= 0 {
		o.WriteWait = defaultWriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = defaultPongWait
	}
	return o
}

// Client is one live WebSocket connection and its session state.
type Client struct {
	id   string
	hub  *hub.Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	opts Options
	log  zerolog.Logger

	// joined maps room id to the user this connection joined it as.
	// Only the ReadPump goroutine touches it.
	joined map[string]string
}

// New creates a new Client.
func New(h *hub.Hub, conn *websocket.Conn, opts Options) *Client {
	opts = opts.withDefaults()
	id := uuid.NewString()
	return &Client{
		id:     id,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, opts.SendBuffer),
		done:   make(chan struct{}),
		opts:   opts,
		log:    opts.Logger.With().Str("conn_id", id).Logger(),
		joined: make(map[string]string),
	}
}

// ID returns the connection id.
func (c *Client) ID() string {
	return c.id
}

// Send queues a message to be sent to the WebSocket client.
func (c *Client) Send(data []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		// Client send buffer full, drop message.
		c.opts.Metrics.Dropped()
		c.log.Warn().Msg("send buffer full, dropping message")
	}
}

// ReadPump reads frames from the WebSocket connection and dispatches them.
// On exit the connection leaves every group it joined.
func (c *Client) ReadPump() {
	c.opts.Metrics.ConnectionOpened()
	defer func() {
		c.hub.Disconnect(c, c.joined)
		close(c.done)
		c.conn.Close()
		c.opts.Metrics.ConnectionClosed()
		c.log.Debug().Msg("connection closed")
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("read error")
			}
			return
		}
		c.handleMessage(data)
	}
}

// WritePump writes messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	ev, err := domain.DecodeEvent(data)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.opts.Metrics.Event(ev.Kind())

	switch e := ev.(type) {
	case domain.JoinEvent:
		if err := c.checkRoom(e.Room); err != nil {
			c.sendError(err.Error())
			return
		}
		c.joined[e.Room] = e.User
		c.hub.Join(c, e.Room, e.User)

	case domain.LeaveEvent:
		user := e.User
		if user == "" {
			user = c.joined[e.Room]
		}
		delete(c.joined, e.Room)
		c.hub.Leave(c, e.Room, user)

	case domain.MessageEvent:
		joinedAs, ok := c.joined[e.Room]
		if !ok {
			c.sendError(domain.ErrNotInRoom.Error())
			return
		}
		user := e.User
		if user == "" {
			user = joinedAs
		}
		c.hub.Message(c, e.Room, user, e.Message)
	}
}

func (c *Client) checkRoom(room string) error {
	if c.opts.Rooms == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	ok, err := c.opts.Rooms.Exists(ctx, room)
	if err != nil {
		c.log.Error().Err(err).Str("room_id", room).Msg("room lookup failed")
		return errors.New("room lookup failed")
	}
	if !ok {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (c *Client) sendError(message string) {
	errMsg := domain.ErrorMessage{Type: domain.EvtError, Message: message}
	if data, err := domain.Encode(errMsg); err == nil {
		c.Send(data)
	}
}
