package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dustline/arena/internal/combat"
	"github.com/dustline/arena/pkg/streaming"
)

var (
	// ErrUnknownType is returned for envelopes whose type no peer sends.
	ErrUnknownType = errors.New("unknown message type")
	// ErrOtherMatch is returned for envelopes addressed to a different match.
	ErrOtherMatch = errors.New("message for another match")
)

// Parser turns raw channel messages into session inbound messages. Payload
// fields are read defensively: unknown weapons and characters fall back to
// the defaults, missing numbers read as 0 and missing booleans as false.
// Only a payload that is not a JSON object is an error.
type Parser struct {
	logger *slog.Logger
	match  atomic.Pointer[string]
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// SetMatch restricts parsing to envelopes for code. Envelopes without a match
// are always accepted.
func (p *Parser) SetMatch(code string) {
	p.match.Store(&code)
}

func (p *Parser) currentMatch() string {
	m := p.match.Load()
	if m == nil {
		return ""
	}
	return *m
}

// ParseEnvelope decodes the outer JSON envelope of a text message.
func (p *Parser) ParseEnvelope(data []byte) (streaming.Envelope, error) {
	var env streaming.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("error unmarshalling envelope: %w", err)
	}
	if cur := p.currentMatch(); cur != "" && env.Match != "" && env.Match != cur {
		return env, fmt.Errorf("%w: %s", ErrOtherMatch, env.Match)
	}
	return env, nil
}

// ParseMessage decodes a text message into an Inbound stamped with receivedAt.
func (p *Parser) ParseMessage(data []byte, receivedAt int64) (combat.Inbound, error) {
	env, err := p.ParseEnvelope(data)
	if err != nil {
		return combat.Inbound{}, err
	}
	return p.ParsePayload(env.Type, env.Payload, receivedAt)
}

// ParsePayload decodes the payload of an envelope of type msgType.
func (p *Parser) ParsePayload(msgType string, payload []byte, receivedAt int64) (combat.Inbound, error) {
	in := combat.Inbound{Type: msgType, ReceivedAt: receivedAt}

	switch msgType {
	case streaming.TypeShot:
		ev, err := p.ParseShot(payload)
		if err != nil {
			return in, err
		}
		in.Shot = &ev
	case streaming.TypeDamage:
		ev, err := p.ParseDamage(payload)
		if err != nil {
			return in, err
		}
		in.Damage = &ev
	case streaming.TypeRespawn:
		ev, err := p.ParseRespawn(payload)
		if err != nil {
			return in, err
		}
		in.Respawn = &ev
	case streaming.TypePresence:
		ev, err := p.ParsePresence(payload)
		if err != nil {
			return in, err
		}
		in.Presence = &ev
	case streaming.TypeKill:
		ev, err := p.ParseKill(payload)
		if err != nil {
			return in, err
		}
		in.Kill = &ev
	case streaming.TypeJoin:
		ev, err := p.ParseJoin(payload)
		if err != nil {
			return in, err
		}
		in.Join = &ev
	case streaming.TypeLeave:
		ev, err := p.ParseLeave(payload)
		if err != nil {
			return in, err
		}
		in.Leave = &ev
	default:
		return in, fmt.Errorf("%w: %q", ErrUnknownType, msgType)
	}
	return in, nil
}

// ParsePresenceFrame decodes a binary presence frame.
func (p *Parser) ParsePresenceFrame(data []byte, receivedAt int64) (combat.Inbound, error) {
	match, snap, err := streaming.DecodePresence(data)
	if err != nil {
		return combat.Inbound{}, err
	}
	if cur := p.currentMatch(); cur != "" && match != "" && match != cur {
		return combat.Inbound{}, fmt.Errorf("%w: %s", ErrOtherMatch, match)
	}
	snap = sanitizePresence(snap)
	return combat.Inbound{Type: streaming.TypePresence, Presence: &snap, ReceivedAt: receivedAt}, nil
}
