package game

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Dendekky/vibe-racing/internal/physics"
	"github.com/Dendekky/vibe-racing/internal/race"
	"github.com/Dendekky/vibe-racing/internal/terrain"
)

// Vehicle collision box dimensions (width, height, length).
var vehicleDims = mgl64.Vec3{2, 1, 4}

// maxFrameDelta caps how much wall time one Tick call may convert into
// physics sub-steps, so a stalled host does not trigger a catch-up
// spiral.
const maxFrameDelta = 0.25

// SessionSnapshot is the replicated view of one simulation tick.
type SessionSnapshot struct {
	Tick     uint64          `json:"tick"`
	Vehicles []race.Snapshot `json:"vehicles"`
}

// RaceSession owns exactly one physics world plus every vehicle racing
// in it. Per sub-step it applies controls, steps the world, dispatches
// contact events for damage and then updates each state machine, in that
// order, so race checks always see the post-step pose.
type RaceSession struct {
	mu     sync.Mutex
	logger *log.Logger

	world      *physics.World
	track      terrain.Config
	classifier race.Classifier
	params     race.Params

	vehicles map[string]*race.Vehicle
	byBody   map[*physics.Body]*race.Vehicle
	inputs   map[string]race.DriverInput

	accumulator float64
	tick        uint64
	events      []race.Event
}

// NewRaceSession builds the world for a track: ground collider plus
// every obstacle, ready for vehicles to join.
func NewRaceSession(track terrain.Config, tuning physics.Tuning, params race.Params, logger *log.Logger) *RaceSession {
	if logger == nil {
		logger = log.Default()
	}
	w := physics.NewWorld(tuning)
	w.CreateGround(track.Width, track.Depth, physics.Pose{Orientation: mgl64.QuatIdent()})
	for _, o := range track.Obstacles {
		w.AddStaticObstacle(physics.NewStaticBox(o.HalfExtents, o.Position))
	}

	logger.Printf("[RaceSession] world ready: %.0fx%.0f ground, %d obstacles, start=%v finish=%v",
		track.Width, track.Depth, len(track.Obstacles), track.StartPosition, track.FinishPosition)

	return &RaceSession{
		logger:     logger,
		world:      w,
		track:      track,
		classifier: race.NewClassifier(),
		params:     params,
		vehicles:   make(map[string]*race.Vehicle),
		byBody:     make(map[*physics.Body]*race.Vehicle),
		inputs:     make(map[string]race.DriverInput),
	}
}

// Track returns the immutable track description.
func (s *RaceSession) Track() terrain.Config { return s.track }

// Join creates a vehicle for the player at the track spawn point.
func (s *RaceSession) Join(id string) (race.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[id]; ok {
		return race.Snapshot{}, fmt.Errorf("session: vehicle %q already joined", id)
	}
	v := race.NewVehicle(id, s.world, s.track.SpawnPosition(), vehicleDims,
		s.track.StartPosition, s.track.FinishPosition, s.params)
	s.vehicles[id] = v
	s.byBody[v.Body()] = v
	s.logger.Printf("[RaceSession] vehicle %s joined at %v", id, s.track.SpawnPosition())
	return v.Snapshot(), nil
}

// Leave destroys the player's vehicle and forgets its input.
func (s *RaceSession) Leave(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok {
		return
	}
	delete(s.byBody, v.Body())
	delete(s.vehicles, id)
	delete(s.inputs, id)
	v.Destroy()
	s.logger.Printf("[RaceSession] vehicle %s left", id)
}

// SetInput stores the latest control tuple for a vehicle; it is applied
// on every sub-step until replaced.
func (s *RaceSession) SetInput(id string, in race.DriverInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[id]; ok {
		s.inputs[id] = in
	}
}

// StartAutoDrive arms the autopilot on an existing vehicle.
func (s *RaceSession) StartAutoDrive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return fmt.Errorf("session: no vehicle %q", id)
	}
	v.StartAutoDrive()
	s.logger.Printf("[RaceSession] autopilot armed for %s", id)
	return nil
}

// SpawnAutopilot joins a scripted vehicle and immediately arms its
// autopilot, used to give a lone player an opponent.
func (s *RaceSession) SpawnAutopilot(id string) error {
	if _, err := s.Join(id); err != nil {
		return err
	}
	return s.StartAutoDrive(id)
}

// ResetRace clears a vehicle's race bookkeeping and places it back at
// the spawn point.
func (s *RaceSession) ResetRace(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return fmt.Errorf("session: no vehicle %q", id)
	}
	v.ResetRace()
	v.TeleportTo(s.track.SpawnPosition())
	return nil
}

// Tick converts elapsed wall time into fixed physics sub-steps. The
// solver always advances by the same timestep no matter how irregular
// the caller's cadence is.
func (s *RaceSession) Tick(delta time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := delta.Seconds()
	if d > maxFrameDelta {
		s.logger.Printf("[RaceSession] clamping oversized frame delta %.3fs", d)
		d = maxFrameDelta
	}
	s.accumulator += d
	for s.accumulator >= physics.FixedStep {
		s.accumulator -= physics.FixedStep
		s.subStep()
	}
	return nil
}

func (s *RaceSession) subStep() {
	for id, v := range s.vehicles {
		v.ApplyControls(s.inputs[id])
	}

	contacts := s.world.Step()
	for _, ev := range contacts {
		v, ok := s.byBody[ev.Body]
		if !ok {
			continue
		}
		sev := s.classifier.Classify(ev, v.Initializing())
		if sev == race.SeverityNone {
			continue
		}
		v.HandleCollision(sev)
	}

	for _, v := range s.vehicles {
		v.Update(physics.FixedStep)
		s.events = append(s.events, v.DrainEvents()...)
	}
	s.tick++
}

// Snapshot returns the replicated view of the current tick, vehicles
// ordered by id for stable output.
func (s *RaceSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{Tick: s.tick, Vehicles: make([]race.Snapshot, 0, len(s.vehicles))}
	for _, v := range s.vehicles {
		snap.Vehicles = append(snap.Vehicles, v.Snapshot())
	}
	sort.Slice(snap.Vehicles, func(i, j int) bool { return snap.Vehicles[i].ID < snap.Vehicles[j].ID })
	return snap
}

// DrainEvents returns and clears the state-transition events queued
// since the last drain.
func (s *RaceSession) DrainEvents() []race.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.events
	s.events = nil
	return ev
}

// VehicleCount returns how many vehicles are in the session.
func (s *RaceSession) VehicleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vehicles)
}

// Vehicle returns the vehicle for direct state-machine operations, or
// nil if the id is unknown.
func (s *RaceSession) Vehicle(id string) *race.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vehicles[id]
}
