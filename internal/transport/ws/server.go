package ws

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dendekky/vibe-racing/internal/game"
	"github.com/Dendekky/vibe-racing/internal/race"
)

// Server is the multiplayer room: it upgrades connections, feeds client
// input into the race session and replicates the per-tick state back to
// every player. It satisfies game.Broadcaster.
type Server struct {
	upgrader websocket.Upgrader
	session  *game.RaceSession
	logger   *log.Logger

	mu      sync.RWMutex
	clients map[string]*SafeWriter
}

// NewServer creates a websocket server over a race session.
func NewServer(session *game.RaceSession, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		session: session,
		logger:  logger,
		clients: make(map[string]*SafeWriter),
	}
}

// HandleWS upgrades a connection, joins the player into the session and
// runs its read loop until disconnect.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = fmt.Sprintf("guest_%d", time.Now().UTC().UnixNano())
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[WS] upgrade error: %v", err)
		return
	}
	writer := NewSafeWriter(conn)

	you, err := s.session.Join(playerID)
	if err != nil {
		s.logger.Printf("[WS] join rejected for %s: %v", playerID, err)
		_ = writer.WriteJSON(ServerMessage{Type: MessageTypeError, Message: err.Error()})
		_ = writer.Close()
		return
	}

	s.register(playerID, writer)
	defer func() {
		s.unregister(playerID)
		s.session.Leave(playerID)
		_ = writer.Close()
		s.logger.Printf("[WS] connection closed for %s", playerID)
	}()

	s.logger.Printf("[WS] player %s connected from %s", playerID, r.RemoteAddr)

	track := NewTrackInfo(s.session.Track())
	if err := writer.WriteJSON(ServerMessage{
		Type:         MessageTypeWelcome,
		PlayerID:     playerID,
		Track:        &track,
		You:          &you,
		ServerTimeMs: time.Now().UnixMilli(),
	}); err != nil {
		s.logger.Printf("[WS] welcome failed for %s: %v", playerID, err)
		return
	}

	s.readLoop(playerID, conn, writer)
}

func (s *Server) readLoop(playerID string, conn *websocket.Conn, writer *SafeWriter) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("[WS] read error for %s: %v", playerID, err)
			}
			return
		}

		msg, err := ParseClientMessage(data)
		if err != nil {
			_ = writer.WriteJSON(ServerMessage{Type: MessageTypeError, Message: err.Error()})
			continue
		}

		switch msg.Type {
		case MessageTypeInput:
			s.session.SetInput(playerID, *msg.Input)
		case MessageTypePing:
			_ = writer.WriteJSON(ServerMessage{
				Type:         MessageTypePong,
				ClientTime:   msg.ClientTime,
				ServerTimeMs: time.Now().UnixMilli(),
			})
		case MessageTypeAutoDrive:
			if err := s.session.StartAutoDrive(playerID); err != nil {
				_ = writer.WriteJSON(ServerMessage{Type: MessageTypeError, Message: err.Error()})
			}
		case MessageTypeResetRace:
			if err := s.session.ResetRace(playerID); err != nil {
				_ = writer.WriteJSON(ServerMessage{Type: MessageTypeError, Message: err.Error()})
			}
		}
	}
}

// BroadcastState replicates the tick snapshot plus any race events to
// every connected client. Called from the broadcast system once per
// tick.
func (s *Server) BroadcastState(snap game.SessionSnapshot, events []race.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) == 0 {
		return
	}

	state := ServerMessage{
		Type:         MessageTypeState,
		State:        &snap,
		ServerTimeMs: time.Now().UnixMilli(),
	}
	if len(events) > 0 {
		state.Events = events
	}
	for id, c := range s.clients {
		if err := c.WriteJSON(state); err != nil {
			s.logger.Printf("[WS] broadcast to %s failed: %v", id, err)
		}
	}
}

// ClientCount returns the number of connected players.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) register(id string, w *SafeWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[id] = w
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}
