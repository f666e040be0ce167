package race

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Dendekky/vibe-racing/internal/physics"
)

// EventType enumerates the state transitions worth broadcasting.
type EventType string

const (
	EventRaceStarted  EventType = "race_started"
	EventRaceFinished EventType = "race_finished"
	EventDisabled     EventType = "vehicle_disabled"
	EventRepaired     EventType = "vehicle_repaired"
	EventNitroStarted EventType = "nitro_started"
	EventNitroEnded   EventType = "nitro_ended"
)

// Event is one vehicle state transition, queued until the session drains
// it for replication.
type Event struct {
	Type      EventType `json:"type"`
	VehicleID string    `json:"vehicle_id"`
	ElapsedS  float64   `json:"elapsed_s,omitempty"`
}

// RaceStatus tracks one vehicle's progress through the start/finish
// lifecycle. Finished implies Started; ElapsedSeconds freezes at finish.
type RaceStatus struct {
	Started        bool    `json:"started"`
	Finished       bool    `json:"finished"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Snapshot is the serializable per-tick view of a vehicle, everything
// the rendering and networking layers are allowed to see.
type Snapshot struct {
	ID                 string     `json:"id"`
	Position           [3]float64 `json:"position"`
	Orientation        [4]float64 `json:"orientation"` // x, y, z, w
	Speed              float64    `json:"speed"`
	Health             int        `json:"health"`
	Disabled           bool       `json:"disabled"`
	DisableRemainingMs float64    `json:"disable_remaining_ms"`
	NitroActive        bool       `json:"nitro_active"`
	NitroRemainingMs   float64    `json:"nitro_remaining_ms"`
	Initializing       bool       `json:"initializing"`
	Autopilot          bool       `json:"autopilot"`
	Race               RaceStatus `json:"race"`
}

// Vehicle is the car state machine: health/damage/disable lifecycle,
// nitro timer, race start/finish bookkeeping and the optional autopilot.
// All timers are countdown fields advanced only inside Update, so every
// transition happens at a single consistent point per tick.
type Vehicle struct {
	id    string
	world *physics.World
	body  *physics.Body
	pose  physics.Transform

	params Params

	health             int
	disabled           bool
	disableRemainingMs float64

	nitroActive      bool
	nitroRemainingMs float64

	initializing     bool
	graceRemainingMs float64

	status         RaceStatus
	startWaypoint  mgl64.Vec3
	finishWaypoint mgl64.Vec3
	raceStartClock float64

	autopilotActive  bool
	autopilotStarted float64

	// clock accumulates simulated seconds across Update calls.
	clock float64

	events []Event
}

// NewVehicle creates a vehicle with its rigid body at the spawn pose.
// The start and finish waypoints come from the selected terrain and are
// immutable afterwards. Coincident waypoints are a programming error.
func NewVehicle(id string, w *physics.World, spawn mgl64.Vec3, dims mgl64.Vec3, start, finish mgl64.Vec3, params Params) *Vehicle {
	if start.Sub(finish).Len() < 1e-9 {
		panic(fmt.Sprintf("race: start and finish waypoints coincide at %v", start))
	}
	body := w.CreateVehicleBody(dims, physics.Pose{Position: spawn, Orientation: mgl64.QuatIdent()})
	v := &Vehicle{
		id:               id,
		world:            w,
		body:             body,
		params:           params,
		health:           params.MaxHealth,
		initializing:     true,
		graceRemainingMs: params.GraceMs,
		startWaypoint:    start,
		finishWaypoint:   finish,
	}
	w.Track(body, &v.pose)
	return v
}

// ID returns the vehicle identifier.
func (v *Vehicle) ID() string { return v.id }

// Body returns the vehicle's rigid body.
func (v *Vehicle) Body() *physics.Body { return v.body }

// Pose returns the mirrored pose synchronized after each physics step.
func (v *Vehicle) Pose() physics.Transform { return v.pose }

// Health returns current health, always within [0, MaxHealth].
func (v *Vehicle) Health() int { return v.health }

// Disabled reports whether the vehicle is in its post-wreck timeout.
func (v *Vehicle) Disabled() bool { return v.disabled }

// Initializing reports whether the spawn grace window is still open.
func (v *Vehicle) Initializing() bool { return v.initializing }

// NitroActive reports whether the boost is currently applied.
func (v *Vehicle) NitroActive() bool { return v.nitroActive }

// Race returns the current race bookkeeping.
func (v *Vehicle) Race() RaceStatus { return v.status }

// AutopilotActive reports whether the scripted drive is running.
func (v *Vehicle) AutopilotActive() bool { return v.autopilotActive }

// Destroy removes the vehicle's body from the physics world. Timers need
// no release: they are plain fields that die with the vehicle.
func (v *Vehicle) Destroy() {
	v.world.RemoveBody(v.body)
}

// ApplyControls turns a driver input tuple into drive forces for this
// tick. It is a defined no-op while the vehicle is disabled or the race
// is finished. The first call within the checkpoint radius of the start
// waypoint starts the race clock.
func (v *Vehicle) ApplyControls(in DriverInput) {
	if v.disabled || v.status.Finished {
		return
	}

	if !v.status.Started && v.withinCheckpoint(v.startWaypoint) {
		v.status.Started = true
		v.raceStartClock = v.clock
		v.push(EventRaceStarted, 0)
	}

	// Digital inputs map to full fixed magnitudes.
	var throttle, brake, steer float64
	if in.Forward {
		throttle = 1
	}
	if in.Backward {
		brake = 1
	}
	if in.Left {
		steer += 1
	}
	if in.Right {
		steer -= 1
	}
	if v.nitroActive {
		throttle *= v.params.NitroBoost
	}

	v.world.ApplyDriveForces(v.body, throttle, brake, steer)

	if in.Nitro {
		v.ActivateNitro()
	}
}

// ActivateNitro arms the boost countdown. Retriggering while the boost
// is active or mid-countdown is a defined no-op: the timer must run all
// the way to zero before the next activation.
func (v *Vehicle) ActivateNitro() {
	if v.nitroActive || v.nitroRemainingMs > 0 {
		return
	}
	v.nitroActive = true
	v.nitroRemainingMs = v.params.NitroMs
	v.push(EventNitroStarted, 0)
}

// Update advances every countdown and the race clock by one tick. Call
// exactly once per simulated tick, after controls were applied and the
// physics world stepped, so finish checks see the post-step pose.
func (v *Vehicle) Update(deltaSeconds float64) {
	v.clock += deltaSeconds
	ms := deltaSeconds * 1000

	if v.initializing {
		v.graceRemainingMs -= ms
		if v.graceRemainingMs <= 0 {
			v.graceRemainingMs = 0
			v.initializing = false
		}
	}

	if v.nitroActive {
		v.nitroRemainingMs -= ms
		if v.nitroRemainingMs <= 0 {
			v.nitroRemainingMs = 0
			v.nitroActive = false
			v.push(EventNitroEnded, 0)
		}
	}

	if v.disabled {
		v.disableRemainingMs -= ms
		if v.disableRemainingMs <= 0 {
			v.disableRemainingMs = 0
			v.disabled = false
			v.health = v.params.MaxHealth
			v.push(EventRepaired, 0)
		}
	}

	if v.autopilotActive {
		v.autopilotStep()
	}

	if v.status.Started && !v.status.Finished {
		v.status.ElapsedSeconds = v.clock - v.raceStartClock
		if v.withinCheckpoint(v.finishWaypoint) {
			v.finishRace()
		}
	}
}

// HandleCollision applies damage for a classified contact. Collisions
// while disabled or still in the grace window are defined no-ops, and
// health never leaves [0, MaxHealth].
func (v *Vehicle) HandleCollision(sev Severity) {
	if sev == SeverityNone || v.disabled || v.initializing {
		return
	}
	dmg := v.params.Damage.amount(sev)
	v.health -= dmg
	if v.health <= 0 {
		v.health = 0
		v.disabled = true
		v.disableRemainingMs = v.params.DisableMs
		v.body.StopMotion()
		v.push(EventDisabled, 0)
	}
}

// TeleportTo force-places the body and zeroes its motion. Race and
// health bookkeeping are untouched; combine with ResetRace for a full
// restart.
func (v *Vehicle) TeleportTo(position mgl64.Vec3) {
	v.body.Teleport(position)
	v.world.SyncTransforms()
}

// ResetRace clears the race bookkeeping back to not-started. Position
// and health are untouched.
func (v *Vehicle) ResetRace() {
	v.status = RaceStatus{}
	v.raceStartClock = 0
}

// StartAutoDrive arms the autopilot: a straight-line interpolation from
// start to finish over a fixed duration, finishing the race when the
// interpolation completes.
func (v *Vehicle) StartAutoDrive() {
	if v.autopilotActive {
		return
	}
	v.autopilotActive = true
	v.autopilotStarted = v.clock
}

// DrainEvents returns and clears the queued state-transition events.
func (v *Vehicle) DrainEvents() []Event {
	ev := v.events
	v.events = nil
	return ev
}

// Snapshot returns the serializable view of the vehicle.
func (v *Vehicle) Snapshot() Snapshot {
	p := v.pose.Position
	q := v.pose.Orientation
	return Snapshot{
		ID:                 v.id,
		Position:           [3]float64{p.X(), p.Y(), p.Z()},
		Orientation:        [4]float64{q.V.X(), q.V.Y(), q.V.Z(), q.W},
		Speed:              v.body.Speed(),
		Health:             v.health,
		Disabled:           v.disabled,
		DisableRemainingMs: v.disableRemainingMs,
		NitroActive:        v.nitroActive,
		NitroRemainingMs:   v.nitroRemainingMs,
		Initializing:       v.initializing,
		Autopilot:          v.autopilotActive,
		Race:               v.status,
	}
}

func (v *Vehicle) withinCheckpoint(waypoint mgl64.Vec3) bool {
	return v.body.Position().Sub(waypoint).Len() <= v.params.CheckpointRadius
}

func (v *Vehicle) finishRace() {
	v.status.Finished = true
	v.status.ElapsedSeconds = v.clock - v.raceStartClock
	v.body.StopMotion()
	v.push(EventRaceFinished, v.status.ElapsedSeconds)
}

// autopilotStep steers and accelerates toward the interpolated waypoint
// between start and finish. Progress reaching 1.0 force-finishes the
// race even if the body lags behind the line.
func (v *Vehicle) autopilotStep() {
	progress := (v.clock - v.autopilotStarted) * 1000 / v.params.AutopilotMs
	if progress >= 1 {
		v.autopilotActive = false
		if !v.status.Started {
			v.status.Started = true
			v.raceStartClock = v.autopilotStarted
		}
		if !v.status.Finished {
			v.finishRace()
		}
		return
	}

	target := v.startWaypoint.Add(v.finishWaypoint.Sub(v.startWaypoint).Mul(progress))
	to := target.Sub(v.body.Position())
	to = mgl64.Vec3{to.X(), 0, to.Z()}
	if to.Len() < 1e-6 {
		return
	}
	to = to.Normalize()

	forward := v.body.Forward()
	forward = mgl64.Vec3{forward.X(), 0, forward.Z()}
	if forward.Len() < 1e-6 {
		return
	}
	forward = forward.Normalize()

	// Signed sine of the heading error: positive means target is left.
	steer := forward.Cross(to).Y()
	if steer > 1 {
		steer = 1
	} else if steer < -1 {
		steer = -1
	}
	v.world.ApplyDriveForces(v.body, 1.0, 0, steer)
}

func (v *Vehicle) push(t EventType, elapsed float64) {
	v.events = append(v.events, Event{Type: t, VehicleID: v.id, ElapsedS: elapsed})
}
