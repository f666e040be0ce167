package race

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Dendekky/vibe-racing/internal/physics"
)

// Severity is the discrete classification of a collision's impact speed.
type Severity int

const (
	// SeverityNone marks contacts that deal no damage: grace-period hits
	// and ordinary landing/resting contact with the ground.
	SeverityNone Severity = iota
	SeverityMinor
	SeverityWall
	SeverityHeadOn
)

func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityWall:
		return "wall"
	case SeverityHeadOn:
		return "headOn"
	}
	return "none"
}

var classifierUp = mgl64.Vec3{0, 1, 0}

// Classifier turns one contact event into a severity tag. The thresholds
// are game balance constants; the check order matters: grace discard
// first, then the soft-ground-contact discard, then the speed banding.
type Classifier struct {
	// GroundNormalDot is the minimum dot product with world-up for a
	// ground contact to count as a landing rather than a crash (~37°).
	GroundNormalDot float64
	// MinorLimit and WallLimit are the speed band edges in units/s.
	MinorLimit float64
	WallLimit  float64
}

// NewClassifier returns a classifier with the calibrated thresholds.
func NewClassifier() Classifier {
	return Classifier{
		GroundNormalDot: 0.8,
		MinorLimit:      5.0,
		WallLimit:       10.0,
	}
}

// Classify tags a contact event for the vehicle it happened to.
// initializing discards the event entirely, as does a slow near-vertical
// ground contact (a normal landing, not a crash).
func (c Classifier) Classify(ev physics.ContactEvent, initializing bool) Severity {
	if initializing {
		return SeverityNone
	}
	v := ev.ImpactSpeed
	if v < 0 {
		v = -v
	}
	if ev.Other.Role() == physics.RoleGround &&
		ev.Normal.Dot(classifierUp) > c.GroundNormalDot &&
		v < c.MinorLimit {
		return SeverityNone
	}
	switch {
	case v < c.MinorLimit:
		return SeverityMinor
	case v < c.WallLimit:
		return SeverityWall
	default:
		return SeverityHeadOn
	}
}
