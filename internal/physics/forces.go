package physics

import "github.com/go-gl/mathgl/mgl64"

// ApplyDriveForces converts normalized driver magnitudes into world-space
// forces on a vehicle body. throttle and brake are 0..1 (throttle may
// exceed 1 under boost), steer is -1..1 with positive meaning left.
//
// Acceleration fades linearly to zero as speed approaches the configured
// maximum; braking grows with speed but keeps a floor so it works from a
// standstill; steering authority shrinks as speed rises. A squared-speed
// downforce holds the car down once it is moving fast, and an upright
// torque plus roll/pitch damping keep it from tipping.
func (w *World) ApplyDriveForces(b *Body, throttle, brake, steer float64) {
	t := w.tuning
	speed := b.velocity.Len()
	forward := b.Forward()

	if throttle > 0 {
		scale := 1.0 - speed/t.MaxForwardSpeed
		if scale < 0 {
			scale = 0
		}
		b.ApplyForce(forward.Mul(throttle * t.EngineForce * scale))
	}

	if brake > 0 {
		mag := brake * (t.BrakeForceFloor + speed*t.BrakeSpeedGain)
		b.ApplyForce(forward.Mul(-mag))
	}

	if steer != 0 {
		authority := 1.0 / (1.0 + speed/t.SteerFalloffSpeed)
		local := mgl64.Vec3{0, steer * t.SteerTorque * authority, 0}
		b.ApplyTorque(b.orientation.Rotate(local))
	}

	if speed > t.DownforceMinSpeed {
		mag := t.DownforceCoef * speed * speed
		if mag > t.DownforceCap {
			mag = t.DownforceCap
		}
		b.ApplyForce(mgl64.Vec3{0, -mag, 0})
	}

	// Torque about up x worldUp tilts the body's up axis back onto
	// vertical.
	corr := b.Up().Cross(worldUp)
	b.ApplyTorque(corr.Mul(t.UprightGain))

	// Multiplicative damp on lateral angular velocity suppresses the
	// rocking the upright torque would otherwise cause.
	b.angularVel = mgl64.Vec3{
		b.angularVel.X() * t.RollDampFactor,
		b.angularVel.Y(),
		b.angularVel.Z() * t.RollDampFactor,
	}
}
