// Package transport carries match messages between peers over a WebSocket
// relay. Text frames hold JSON envelopes; presence goes out as msgpack
// binary frames.
package transport

import (
	"fmt"
	"log/slog"

	"github.com/dustline/arena/pkg/core"
	"github.com/dustline/arena/pkg/streaming"
	ws "github.com/gorilla/websocket"
)

// Config holds the relay connection settings and the identity announced on
// join.
type Config struct {
	URL       string
	Secret    string
	Match     string
	PlayerID  string
	Name      string
	Character core.CharacterKind
}

// Client is a peer's connection to the match channel. It implements
// combat.Publisher.
type Client struct {
	conn *connection
	cfg  Config
}

// New creates an unconnected client.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		conn: newConnection(logger.With("component", "transport")),
		cfg:  cfg,
	}
}

// OnReceive sets the callback for inbound peer messages. Set it before
// Connect; it runs on the read goroutine.
func (c *Client) OnReceive(fn Receiver) {
	c.conn.mu.Lock()
	c.conn.receive = fn
	c.conn.mu.Unlock()
}

// Connect dials the relay and joins the match channel, waiting for the
// relay's ack.
func (c *Client) Connect() error {
	if err := c.conn.dial(c.cfg.URL, c.cfg.Secret); err != nil {
		return err
	}

	data, err := c.envelope(streaming.TypeJoin, streaming.JoinPayload{
		PlayerID:  c.cfg.PlayerID,
		Name:      c.cfg.Name,
		Character: c.cfg.Character,
	})
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	c.conn.mu.Lock()
	c.conn.cachedJoinMsg = data
	c.conn.mu.Unlock()

	return c.conn.sendAndWait(data, streaming.TypeJoin, ackTimeout)
}

// Close leaves the match channel and disconnects. The leave ack is awaited
// briefly; a missing ack does not keep the connection open.
func (c *Client) Close() error {
	c.conn.mu.Lock()
	joined := c.conn.cachedJoinMsg != nil && c.conn.conn != nil
	c.conn.cachedJoinMsg = nil
	c.conn.mu.Unlock()

	var leaveErr error
	if joined {
		data, err := c.envelope(streaming.TypeLeave, streaming.LeavePayload{PlayerID: c.cfg.PlayerID})
		if err == nil {
			leaveErr = c.conn.sendAndWait(data, streaming.TypeLeave, ackTimeout/5)
		}
	}
	if err := c.conn.close(); err != nil {
		return err
	}
	return leaveErr
}

func (c *Client) envelope(msgType string, payload any) ([]byte, error) {
	return streaming.MarshalEnvelope(msgType, c.cfg.Match, c.cfg.PlayerID, payload)
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (c *Client) sendEnvelope(msgType string, payload any) error {
	data, err := c.envelope(msgType, payload)
	if err != nil {
		return err
	}
	if !c.conn.send(ws.TextMessage, data) {
		return fmt.Errorf("send queue full, dropped %s", msgType)
	}
	return nil
}

func (c *Client) PublishShot(ev core.ShotEvent) error {
	return c.sendEnvelope(streaming.TypeShot, ev)
}

func (c *Client) PublishDamage(ev core.DamageEvent) error {
	return c.sendEnvelope(streaming.TypeDamage, ev)
}

func (c *Client) PublishRespawn(ev core.RespawnEvent) error {
	return c.sendEnvelope(streaming.TypeRespawn, ev)
}

func (c *Client) PublishKill(k core.KillRecord) error {
	return c.sendEnvelope(streaming.TypeKill, k)
}

// PublishPresence sends the snapshot as a binary frame.
func (c *Client) PublishPresence(s core.PresenceSnapshot) error {
	data, err := streaming.EncodePresence(c.cfg.Match, s)
	if err != nil {
		return err
	}
	if !c.conn.send(ws.BinaryMessage, data) {
		return fmt.Errorf("send queue full, dropped %s", streaming.TypePresence)
	}
	return nil
}
