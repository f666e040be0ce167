package race

// DamageTable maps collision severity to health loss per hit.
type DamageTable struct {
	Minor  int `yaml:"minor"`
	Wall   int `yaml:"wall"`
	HeadOn int `yaml:"head_on"`
}

// Params holds the vehicle lifecycle tuning: timer durations, nitro
// boost factor, checkpoint capture radius and the damage table.
type Params struct {
	MaxHealth int `yaml:"max_health"`

	// GraceMs is the post-spawn window during which collisions are
	// ignored entirely.
	GraceMs float64 `yaml:"grace_ms"`

	NitroMs    float64 `yaml:"nitro_ms"`
	NitroBoost float64 `yaml:"nitro_boost"`

	DisableMs float64 `yaml:"disable_ms"`

	AutopilotMs float64 `yaml:"autopilot_ms"`

	// CheckpointRadius is the capture-zone radius around the start and
	// finish waypoints. Proximity is plain euclidean distance to the
	// point, heading does not matter.
	CheckpointRadius float64 `yaml:"checkpoint_radius"`

	Damage DamageTable `yaml:"damage"`
}

// DefaultParams returns the calibrated lifecycle defaults.
func DefaultParams() Params {
	return Params{
		MaxHealth:        100,
		GraceMs:          2000,
		NitroMs:          5000,
		NitroBoost:       1.3,
		DisableMs:        3000,
		AutopilotMs:      5000,
		CheckpointRadius: 10,
		Damage:           DamageTable{Minor: 5, Wall: 10, HeadOn: 20},
	}
}

func (t DamageTable) amount(s Severity) int {
	switch s {
	case SeverityMinor:
		return t.Minor
	case SeverityWall:
		return t.Wall
	case SeverityHeadOn:
		return t.HeadOn
	}
	return 0
}
