package game

import (
	"time"

	"github.com/Dendekky/vibe-racing/internal/race"
)

// Broadcaster receives the per-tick snapshot and drained events for
// replication to connected clients.
type Broadcaster interface {
	BroadcastState(snap SessionSnapshot, events []race.Event)
}

// Recorder receives per-vehicle samples for telemetry.
type Recorder interface {
	RecordVehicle(id string, position [3]float64, speed float64, health int, racing bool)
	MaybeReport()
}

// SimulationSystem advances the race session.
type SimulationSystem struct {
	session *RaceSession
}

func NewSimulationSystem(session *RaceSession) *SimulationSystem {
	return &SimulationSystem{session: session}
}

func (s *SimulationSystem) Update(delta time.Duration) error { return s.session.Tick(delta) }
func (s *SimulationSystem) Name() string                     { return "simulation" }
func (s *SimulationSystem) Priority() int                    { return 10 }

// BroadcastSystem replicates the post-simulation state. Runs after the
// simulation so clients always see this tick's poses.
type BroadcastSystem struct {
	session     *RaceSession
	broadcaster Broadcaster
}

func NewBroadcastSystem(session *RaceSession, b Broadcaster) *BroadcastSystem {
	return &BroadcastSystem{session: session, broadcaster: b}
}

func (s *BroadcastSystem) Update(time.Duration) error {
	s.broadcaster.BroadcastState(s.session.Snapshot(), s.session.DrainEvents())
	return nil
}
func (s *BroadcastSystem) Name() string  { return "broadcast" }
func (s *BroadcastSystem) Priority() int { return 20 }

// TelemetrySystem samples every vehicle after simulation and broadcast.
type TelemetrySystem struct {
	session  *RaceSession
	recorder Recorder
}

func NewTelemetrySystem(session *RaceSession, r Recorder) *TelemetrySystem {
	return &TelemetrySystem{session: session, recorder: r}
}

func (s *TelemetrySystem) Update(time.Duration) error {
	snap := s.session.Snapshot()
	for _, v := range snap.Vehicles {
		s.recorder.RecordVehicle(v.ID, v.Position, v.Speed, v.Health, v.Race.Started && !v.Race.Finished)
	}
	s.recorder.MaybeReport()
	return nil
}
func (s *TelemetrySystem) Name() string  { return "telemetry" }
func (s *TelemetrySystem) Priority() int { return 30 }
