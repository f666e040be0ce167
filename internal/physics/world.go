package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// FixedStep is the simulation timestep. Step advances exactly this much
// regardless of how fast or slow the caller ticks.
const FixedStep = 1.0 / 60.0

var worldUp = mgl64.Vec3{0, 1, 0}

// ContactEvent describes one collision detected during a step. Normal
// points from Other toward Body; ImpactSpeed is the absolute closing
// speed along that normal. Events are not retained past the step.
type ContactEvent struct {
	Body        *Body
	Other       *Body
	Normal      mgl64.Vec3
	ImpactSpeed float64
}

// World owns one simulated rigid-body world: gravity, all bodies, and
// the fixed-step integrator. One world per race session.
type World struct {
	tuning  Tuning
	gravity mgl64.Vec3

	ground    *Body
	obstacles []*Body
	vehicles  []*Body

	tracked map[*Body]*Transform
	nextID  int
}

// NewWorld creates an empty world with the given tuning.
func NewWorld(tuning Tuning) *World {
	return &World{
		tuning:  tuning,
		gravity: mgl64.Vec3{0, tuning.GravityY, 0},
		tracked: make(map[*Body]*Transform),
	}
}

// CreateGround creates the static ground collider. Width and depth are
// the full extents in world units. Degenerate sizes are a programming
// error and panic.
func (w *World) CreateGround(width, depth float64, pose Pose) *Body {
	if width <= 0 || depth <= 0 {
		panic(fmt.Sprintf("physics: degenerate ground size %gx%g", width, depth))
	}
	b := &Body{
		id:          w.allocID("ground"),
		role:        RoleGround,
		static:      true,
		position:    pose.Position,
		orientation: pose.Orientation.Normalize(),
		halfExtents: mgl64.Vec3{width / 2, 0.5, depth / 2},
	}
	w.ground = b
	return b
}

// NewStaticBox builds a static obstacle body. Ownership passes to the
// world once registered with AddStaticObstacle.
func NewStaticBox(halfExtents, position mgl64.Vec3) *Body {
	if halfExtents.X() <= 0 || halfExtents.Y() <= 0 || halfExtents.Z() <= 0 {
		panic(fmt.Sprintf("physics: degenerate obstacle extents %v", halfExtents))
	}
	return &Body{
		role:        RoleObstacle,
		static:      true,
		position:    position,
		orientation: mgl64.QuatIdent(),
		halfExtents: halfExtents,
	}
}

// AddStaticObstacle registers an obstacle body with the world.
func (w *World) AddStaticObstacle(b *Body) {
	if b.id == "" {
		b.id = w.allocID("obstacle")
	}
	w.obstacles = append(w.obstacles, b)
}

// CreateVehicleBody creates a dynamic car body. The collision box is
// raised relative to the center of mass and the roll/pitch moments of
// inertia are inflated past the geometric box values: the car resists
// tipping without losing yaw response. Degenerate dimensions panic.
func (w *World) CreateVehicleBody(dims mgl64.Vec3, pose Pose) *Body {
	if dims.X() <= 0 || dims.Y() <= 0 || dims.Z() <= 0 {
		panic(fmt.Sprintf("physics: degenerate vehicle dimensions %v", dims))
	}
	t := w.tuning
	m := t.VehicleMass
	half := dims.Mul(0.5)

	// Geometric box inertia, then inflate the roll (X) and pitch (Z)
	// moments while keeping yaw (Y) untouched.
	ix := m / 12.0 * (dims.Y()*dims.Y() + dims.Z()*dims.Z()) * t.RollInertiaScale
	iy := m / 12.0 * (dims.X()*dims.X() + dims.Z()*dims.Z())
	iz := m / 12.0 * (dims.X()*dims.X() + dims.Y()*dims.Y()) * t.RollInertiaScale

	b := &Body{
		id:             w.allocID("vehicle"),
		role:           RoleVehicle,
		position:       pose.Position,
		orientation:    pose.Orientation.Normalize(),
		mass:           m,
		invMass:        1.0 / m,
		invInertia:     mgl64.Vec3{1.0 / ix, 1.0 / iy, 1.0 / iz},
		linearDamping:  t.LinearDamping,
		angularDamping: t.AngularDamping,
		halfExtents:    half,
		comOffset:      t.ComDrop,
		boundRadius:    maxf(half.X(), half.Z()),
	}
	w.vehicles = append(w.vehicles, b)
	return b
}

// RemoveBody detaches a body from the world and drops its tracked
// transform. Static geometry cannot be removed.
func (w *World) RemoveBody(b *Body) {
	for i, v := range w.vehicles {
		if v == b {
			w.vehicles = append(w.vehicles[:i], w.vehicles[i+1:]...)
			break
		}
	}
	delete(w.tracked, b)
}

// Track pairs a body with a transform mirror; the mirror is rewritten
// from the authoritative pose after every step.
func (w *World) Track(b *Body, t *Transform) {
	w.tracked[b] = t
	t.Position = b.position
	t.Orientation = b.orientation
}

// IsGroundBody reports whether the body is the ground collider.
func (w *World) IsGroundBody(b *Body) bool {
	return b != nil && b.role == RoleGround
}

// Step advances the world by exactly one fixed timestep, resolves
// contacts and synchronizes tracked transforms. It returns the contact
// events detected during this step.
func (w *World) Step() []ContactEvent {
	dt := FixedStep

	for _, b := range w.vehicles {
		// Gravity plus whatever forces were accumulated since last step.
		b.force = b.force.Add(w.gravity.Mul(b.mass))
		b.velocity = b.velocity.Add(b.force.Mul(b.invMass * dt))

		localTorque := b.orientation.Inverse().Rotate(b.torque)
		angAccel := mgl64.Vec3{
			localTorque.X() * b.invInertia.X(),
			localTorque.Y() * b.invInertia.Y(),
			localTorque.Z() * b.invInertia.Z(),
		}
		b.angularVel = b.angularVel.Add(b.orientation.Rotate(angAccel).Mul(dt))

		b.velocity = b.velocity.Mul(1.0 / (1.0 + dt*b.linearDamping))
		b.angularVel = b.angularVel.Mul(1.0 / (1.0 + dt*b.angularDamping))

		b.position = b.position.Add(b.velocity.Mul(dt))
		spin := mgl64.Quat{W: 0, V: b.angularVel}
		b.orientation = quatAdd(b.orientation, spin.Mul(b.orientation).Scale(0.5*dt)).Normalize()
	}

	events := w.resolveContacts()

	for b, t := range w.tracked {
		t.Position = b.position
		t.Orientation = b.orientation
	}
	for _, b := range w.vehicles {
		b.clearAccumulators()
	}
	return events
}

// SyncTransforms rewrites every tracked transform from the current body
// poses without stepping, used after teleports so readers never see a
// stale pose.
func (w *World) SyncTransforms() {
	for b, t := range w.tracked {
		t.Position = b.position
		t.Orientation = b.orientation
	}
}

func (w *World) resolveContacts() []ContactEvent {
	var events []ContactEvent
	rest := w.tuning.Restitution

	for _, b := range w.vehicles {
		if ev, ok := w.collideGround(b); ok {
			events = append(events, ev)
		}
		for _, o := range w.obstacles {
			if ev, ok := collideObstacle(b, o, rest); ok {
				events = append(events, ev)
			}
		}
	}

	for i := 0; i < len(w.vehicles); i++ {
		for j := i + 1; j < len(w.vehicles); j++ {
			evs := collideVehicles(w.vehicles[i], w.vehicles[j], rest)
			events = append(events, evs...)
		}
	}
	return events
}

func (w *World) collideGround(b *Body) (ContactEvent, bool) {
	g := w.ground
	if g == nil {
		return ContactEvent{}, false
	}
	dx := b.position.X() - g.position.X()
	dz := b.position.Z() - g.position.Z()
	if dx < -g.halfExtents.X() || dx > g.halfExtents.X() ||
		dz < -g.halfExtents.Z() || dz > g.halfExtents.Z() {
		return ContactEvent{}, false
	}

	bottom := b.shapeBottom()
	groundY := g.position.Y()
	if bottom >= groundY {
		return ContactEvent{}, false
	}

	b.position = b.position.Add(mgl64.Vec3{0, groundY - bottom, 0})
	vy := b.velocity.Y()
	if vy >= 0 {
		return ContactEvent{}, false
	}
	b.velocity = mgl64.Vec3{b.velocity.X(), 0, b.velocity.Z()}
	return ContactEvent{Body: b, Other: g, Normal: worldUp, ImpactSpeed: -vy}, true
}

func collideObstacle(b, o *Body, rest float64) (ContactEvent, bool) {
	center := b.position.Add(mgl64.Vec3{0, b.comOffset, 0})
	closest := mgl64.Vec3{
		clampf(center.X(), o.position.X()-o.halfExtents.X(), o.position.X()+o.halfExtents.X()),
		clampf(center.Y(), o.position.Y()-o.halfExtents.Y(), o.position.Y()+o.halfExtents.Y()),
		clampf(center.Z(), o.position.Z()-o.halfExtents.Z(), o.position.Z()+o.halfExtents.Z()),
	}
	delta := center.Sub(closest)
	dist := delta.Len()
	if dist >= b.boundRadius {
		return ContactEvent{}, false
	}

	normal := worldUp
	if dist > 1e-9 {
		normal = delta.Mul(1.0 / dist)
	}
	b.position = b.position.Add(normal.Mul(b.boundRadius - dist))

	vn := b.velocity.Dot(normal)
	if vn >= 0 {
		return ContactEvent{}, false
	}
	b.velocity = b.velocity.Sub(normal.Mul(vn * (1.0 + rest)))
	return ContactEvent{Body: b, Other: o, Normal: normal, ImpactSpeed: -vn}, true
}

// collideVehicles resolves a symmetric car-on-car contact and emits one
// event per involved vehicle.
func collideVehicles(a, b *Body, rest float64) []ContactEvent {
	delta := b.position.Sub(a.position)
	dist := delta.Len()
	minDist := a.boundRadius + b.boundRadius
	if dist <= 0 || dist >= minDist {
		return nil
	}

	normal := delta.Mul(1.0 / dist) // from a toward b
	overlap := minDist - dist
	a.position = a.position.Sub(normal.Mul(overlap / 2))
	b.position = b.position.Add(normal.Mul(overlap / 2))

	rel := b.velocity.Sub(a.velocity)
	vn := rel.Dot(normal)
	if vn >= 0 {
		return nil
	}

	// Equal masses: split the impulse evenly.
	impulse := -(1.0 + rest) * vn / 2.0
	a.velocity = a.velocity.Sub(normal.Mul(impulse))
	b.velocity = b.velocity.Add(normal.Mul(impulse))

	impact := -vn
	return []ContactEvent{
		{Body: a, Other: b, Normal: normal.Mul(-1), ImpactSpeed: impact},
		{Body: b, Other: a, Normal: normal, ImpactSpeed: impact},
	}
}

func (w *World) allocID(prefix string) string {
	w.nextID++
	return fmt.Sprintf("%s-%d", prefix, w.nextID)
}

func quatAdd(a, b mgl64.Quat) mgl64.Quat {
	return mgl64.Quat{W: a.W + b.W, V: a.V.Add(b.V)}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
