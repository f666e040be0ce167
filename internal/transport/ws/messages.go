package ws

import (
	"encoding/json"
	"fmt"

	"github.com/Dendekky/vibe-racing/internal/game"
	"github.com/Dendekky/vibe-racing/internal/race"
	"github.com/Dendekky/vibe-racing/internal/terrain"
)

// Client → server message types.
const (
	MessageTypeInput     = "input"
	MessageTypePing      = "ping"
	MessageTypeAutoDrive = "auto_drive"
	MessageTypeResetRace = "reset_race"
)

// Server → client message types. Race events ride on the state message
// rather than a frame of their own, so clients apply them atomically
// with the tick they happened in.
const (
	MessageTypeWelcome = "welcome"
	MessageTypeState   = "state"
	MessageTypePong    = "pong"
	MessageTypeError   = "error"
)

// ClientMessage is the envelope for everything a client may send.
type ClientMessage struct {
	Type       string            `json:"type"`
	Input      *race.DriverInput `json:"input,omitempty"`
	ClientTime float64           `json:"client_time,omitempty"`
}

// ParseClientMessage decodes and validates one inbound frame.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("ws: bad message: %w", err)
	}
	switch msg.Type {
	case MessageTypeInput:
		if msg.Input == nil {
			return nil, fmt.Errorf("ws: input message without input payload")
		}
	case MessageTypePing, MessageTypeAutoDrive, MessageTypeResetRace:
	default:
		return nil, fmt.Errorf("ws: unknown message type %q", msg.Type)
	}
	return &msg, nil
}

// TrackInfo is the client-facing track description sent on welcome.
type TrackInfo struct {
	Width     float64        `json:"width"`
	Depth     float64        `json:"depth"`
	Start     [3]float64     `json:"start"`
	Finish    [3]float64     `json:"finish"`
	Obstacles []ObstacleInfo `json:"obstacles"`
}

// ObstacleInfo is one static box for the client to render.
type ObstacleInfo struct {
	Position    [3]float64 `json:"position"`
	HalfExtents [3]float64 `json:"half_extents"`
}

// NewTrackInfo converts a terrain config for replication.
func NewTrackInfo(t terrain.Config) TrackInfo {
	info := TrackInfo{
		Width:  t.Width,
		Depth:  t.Depth,
		Start:  [3]float64{t.StartPosition.X(), t.StartPosition.Y(), t.StartPosition.Z()},
		Finish: [3]float64{t.FinishPosition.X(), t.FinishPosition.Y(), t.FinishPosition.Z()},
	}
	for _, o := range t.Obstacles {
		info.Obstacles = append(info.Obstacles, ObstacleInfo{
			Position:    [3]float64{o.Position.X(), o.Position.Y(), o.Position.Z()},
			HalfExtents: [3]float64{o.HalfExtents.X(), o.HalfExtents.Y(), o.HalfExtents.Z()},
		})
	}
	return info
}

// ServerMessage is the envelope for everything the server sends.
type ServerMessage struct {
	Type         string                `json:"type"`
	PlayerID     string                `json:"player_id,omitempty"`
	Message      string                `json:"message,omitempty"`
	Track        *TrackInfo            `json:"track,omitempty"`
	You          *race.Snapshot        `json:"you,omitempty"`
	State        *game.SessionSnapshot `json:"state,omitempty"`
	Events       []race.Event          `json:"events,omitempty"`
	ClientTime   float64               `json:"client_time,omitempty"`
	ServerTimeMs int64                 `json:"server_time_ms,omitempty"`
}
