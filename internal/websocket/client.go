// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/presencebridge/internal/dispatch"
	"github.com/tomtom215/presencebridge/internal/logging"
	"github.com/tomtom215/presencebridge/internal/metrics"
)

const (
	writeWait = 10 * time.Second
	sendQueue = 256
)

// ErrClientGone is returned when emitting to a closed or saturated client.
var ErrClientGone = errors.New("websocket: client gone")

// Handler receives decoded events.
type Handler interface {
	// Handle is called on the read pump in receipt order and must not block
	// on platform I/O.
	Handle(ev dispatch.Event, reply dispatch.Emitter)

	// OnClientConnected is called once the client joined the namespace.
	OnClientConnected(reply dispatch.Emitter)
}

// clientIDCounter generates unique, monotonically increasing IDs for clients.
// DETERMINISM: This ensures clients can be sorted in a consistent order for
// broadcast operations.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id      uint64
	sid     string
	hub     *Hub
	conn    *websocket.Conn
	handler Handler
	cfg     Config
	logger  zerolog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
	done   chan struct{}

	// connected is set once the client joined the default namespace. Only
	// the read pump touches it.
	connected bool
}

// NewClient creates a Client and queues the Engine.IO open packet.
func NewClient(hub *Hub, conn *websocket.Conn, handler Handler, cfg Config) *Client {
	id := clientIDCounter.Add(1)
	c := &Client{
		id:      id,
		sid:     uuid.NewString(),
		hub:     hub,
		conn:    conn,
		handler: handler,
		cfg:     cfg,
		logger:  logging.With().Str("component", "websocket").Uint64("client", id).Logger(),
		send:    make(chan []byte, sendQueue),
		done:    make(chan struct{}),
	}

	open, err := encodeOpen(openPayload{
		SID:          c.sid,
		Upgrades:     []string{},
		PingInterval: cfg.PingInterval.Milliseconds(),
		PingTimeout:  cfg.PingTimeout.Milliseconds(),
		MaxPayload:   cfg.MaxPayload,
	})
	if err == nil {
		c.send <- open
	}
	return c
}

// ID returns the client's unique identifier for deterministic ordering
func (c *Client) ID() uint64 {
	return c.id
}

// Emit sends an event to this client only. It implements dispatch.Emitter.
func (c *Client) Emit(event string, payload any) error {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		return err
	}
	if !c.trySend(frame) {
		return ErrClientGone
	}
	return nil
}

func (c *Client) trySend(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend stops the write pump. Only the hub calls it.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	close(c.done)
}

func (c *Client) readDeadline() time.Time {
	return time.Now().Add(c.cfg.PingInterval + c.cfg.PingTimeout)
}

// readPump decodes frames and hands events to the handler in receipt order.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxPayload)
	if err := c.conn.SetReadDeadline(c.readDeadline()); err != nil {
		c.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		if err := c.conn.SetReadDeadline(c.readDeadline()); err != nil {
			return
		}

		if mt != websocket.TextMessage || len(data) == 0 {
			// Binary attachments are not part of the protocol we accept.
			continue
		}
		if !c.handleFrame(data) {
			return
		}
	}
}

// handleFrame processes one Engine.IO packet and reports whether the
// connection stays open.
func (c *Client) handleFrame(data []byte) bool {
	switch data[0] {
	case eioPing:
		c.trySend(append([]byte{eioPong}, data[1:]...))
	case eioPong, eioNoop, eioUpgrade:
	case eioClose:
		return false
	case eioMessage:
		return c.handlePacket(data[1:])
	default:
		c.logger.Debug().Str("type", string(data[0])).Msg("ignoring unknown engine.io packet")
	}
	return true
}

func (c *Client) handlePacket(body []byte) bool {
	p, err := parsePacket(body)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed socket.io packet")
		return true
	}

	switch p.kind {
	case sioConnect:
		if p.namespace != defaultNamespace {
			if frame, err := encodeConnectError(p.namespace, "Invalid namespace"); err == nil {
				c.trySend(frame)
			}
			return true
		}
		frame, err := encodeConnect(c.sid)
		if err != nil {
			return false
		}
		c.trySend(frame)
		if !c.connected {
			c.connected = true
			c.handler.OnClientConnected(c)
		}

	case sioDisconnect:
		return false

	case sioEvent:
		if !c.connected || p.namespace != defaultNamespace {
			c.logger.Debug().Str("namespace", p.namespace).Msg("ignoring event outside the connected namespace")
			return true
		}
		c.handleEvent(p)

	case sioBinaryEvent, sioBinaryAck:
		c.logger.Debug().Msg("ignoring binary socket.io packet")

	default:
		c.logger.Debug().Str("type", string(p.kind)).Msg("ignoring socket.io packet")
	}
	return true
}

func (c *Client) handleEvent(p packet) {
	name, args, err := eventArgs(p.data)
	if err != nil {
		metrics.RecordSocketIORejected(reasonUnknown, reasonDecode)
		c.logger.Warn().Err(err).Msg("dropping undecodable event")
		return
	}

	ev, reason, err := decodeEvent(name, args)
	if err != nil {
		label := name
		if reason == reasonUnknown {
			label = reasonUnknown
		}
		metrics.RecordSocketIORejected(label, reason)
		c.logger.Warn().Err(err).Str("event", name).Msg("dropping event")
		return
	}

	metrics.RecordSocketIOEvent(name)
	c.logger.Debug().Str("event", name).Msg("event received")

	if p.ackID != nil {
		c.trySend(encodeAck(*p.ackID))
	}
	c.handler.Handle(ev, c)
}

// writePump owns all writes to the connection and sends Engine.IO pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug().Err(err).Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte{eioPing}); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
