package streaming

import (
	"encoding/json"
	"fmt"

	"github.com/dustline/arena/pkg/core"
	"github.com/vmihailenco/msgpack/v5"
)

// Message type constants shared by every peer on the match channel.
const (
	TypeShot     = "shot"
	TypeDamage   = "damage"
	TypeRespawn  = "respawn"
	TypePresence = "presence"
	TypeKill     = "kill"
	TypeJoin     = "join"
	TypeLeave    = "leave"
)

// Envelope wraps every text message sent over the channel.
type Envelope struct {
	Type    string          `json:"type"`
	Match   string          `json:"match,omitempty"`
	Sender  string          `json:"sender,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the relay's acknowledgement of a join or leave.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`
}

// JoinPayload announces a peer to the match channel.
type JoinPayload struct {
	PlayerID  string             `json:"playerId"`
	Name      string             `json:"name"`
	Character core.CharacterKind `json:"character"`
}

// LeavePayload removes a peer from the match channel.
type LeavePayload struct {
	PlayerID string `json:"playerId"`
}

// MarshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func MarshalEnvelope(msgType, match, sender string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := Envelope{Type: msgType, Match: match, Sender: sender, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// presenceFrame is the binary form of a presence update. Presence is the
// highest-rate message so it skips the JSON envelope.
type presenceFrame struct {
	Match    string                `msgpack:"m"`
	Snapshot core.PresenceSnapshot `msgpack:"s"`
}

// EncodePresence packs a presence snapshot into a msgpack binary frame.
func EncodePresence(match string, s core.PresenceSnapshot) ([]byte, error) {
	data, err := msgpack.Marshal(presenceFrame{Match: match, Snapshot: s})
	if err != nil {
		return nil, fmt.Errorf("marshal presence frame: %w", err)
	}
	return data, nil
}

// DecodePresence unpacks a binary frame produced by EncodePresence.
func DecodePresence(data []byte) (string, core.PresenceSnapshot, error) {
	var f presenceFrame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return "", core.PresenceSnapshot{}, fmt.Errorf("unmarshal presence frame: %w", err)
	}
	return f.Match, f.Snapshot, nil
}
