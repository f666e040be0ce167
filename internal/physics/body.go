package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Role tags what a body represents so contact handling can tell
// ground touches apart from obstacle and car hits.
type Role int

const (
	RoleGround Role = iota
	RoleObstacle
	RoleVehicle
)

func (r Role) String() string {
	switch r {
	case RoleGround:
		return "ground"
	case RoleObstacle:
		return "obstacle"
	case RoleVehicle:
		return "vehicle"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Pose is the position/orientation value object shared between the
// physics world and everything that only needs to read where a body is.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Transform is the render-facing mirror of a body pose. The world copies
// the authoritative pose into every tracked transform after each step.
type Transform struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Body is one rigid body in the world. Dynamic state is owned by the
// world and must only change through world operations.
type Body struct {
	id     string
	role   Role
	static bool

	position    mgl64.Vec3
	orientation mgl64.Quat
	velocity    mgl64.Vec3
	angularVel  mgl64.Vec3

	force  mgl64.Vec3
	torque mgl64.Vec3

	mass    float64
	invMass float64
	// Diagonal inverse inertia in the body frame. Roll/pitch entries are
	// deliberately smaller than the geometric box values for vehicles.
	invInertia mgl64.Vec3

	linearDamping  float64
	angularDamping float64

	// Collision shape: box half extents. For vehicles the shape sits
	// comOffset above the center of mass, which keeps the mass low and
	// the car hard to tip.
	halfExtents mgl64.Vec3
	comOffset   float64
	boundRadius float64
}

// ID returns the identifier assigned at creation.
func (b *Body) ID() string { return b.id }

// Role returns the role tag assigned at creation.
func (b *Body) Role() Role { return b.role }

// Pose returns a copy of the current pose.
func (b *Body) Pose() Pose {
	return Pose{Position: b.position, Orientation: b.orientation}
}

// Position returns the current center-of-mass position.
func (b *Body) Position() mgl64.Vec3 { return b.position }

// Velocity returns the current linear velocity.
func (b *Body) Velocity() mgl64.Vec3 { return b.velocity }

// AngularVelocity returns the current angular velocity.
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.angularVel }

// Speed returns the current linear speed.
func (b *Body) Speed() float64 { return b.velocity.Len() }

// Forward returns the body's forward axis (-Z local) in world space.
func (b *Body) Forward() mgl64.Vec3 {
	return b.orientation.Rotate(mgl64.Vec3{0, 0, -1})
}

// Up returns the body's up axis in world space.
func (b *Body) Up() mgl64.Vec3 {
	return b.orientation.Rotate(mgl64.Vec3{0, 1, 0})
}

// SetPose force-places the body and zeroes all motion. Used for spawn
// placement and manual repositioning.
func (b *Body) SetPose(position mgl64.Vec3, orientation mgl64.Quat) {
	b.position = position
	b.orientation = orientation.Normalize()
	b.velocity = mgl64.Vec3{}
	b.angularVel = mgl64.Vec3{}
}

// Teleport force-sets position only, keeping orientation, and zeroes
// linear and angular velocity.
func (b *Body) Teleport(position mgl64.Vec3) {
	b.position = position
	b.velocity = mgl64.Vec3{}
	b.angularVel = mgl64.Vec3{}
}

// StopMotion zeroes linear and angular velocity in place.
func (b *Body) StopMotion() {
	b.velocity = mgl64.Vec3{}
	b.angularVel = mgl64.Vec3{}
}

// ApplyForce accumulates a world-space force for the next step.
func (b *Body) ApplyForce(f mgl64.Vec3) {
	if b.static {
		return
	}
	b.force = b.force.Add(f)
}

// ApplyTorque accumulates a world-space torque for the next step.
func (b *Body) ApplyTorque(t mgl64.Vec3) {
	if b.static {
		return
	}
	b.torque = b.torque.Add(t)
}

func (b *Body) clearAccumulators() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// shapeBottom returns the lowest point of the collision box assuming the
// body is roughly upright, which holds for vehicles under the upright
// stabilizer.
func (b *Body) shapeBottom() float64 {
	return b.position.Y() + b.comOffset - b.halfExtents.Y()
}
