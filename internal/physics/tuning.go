package physics

// Tuning holds every constant the world and the drive-force model use.
// Values are loaded from config; defaults are the calibrated game feel.
type Tuning struct {
	// World settings
	GravityY       float64 `yaml:"gravity_y"`
	LinearDamping  float64 `yaml:"linear_damping"`
	AngularDamping float64 `yaml:"angular_damping"`
	Restitution    float64 `yaml:"restitution"`

	// Vehicle body
	VehicleMass      float64 `yaml:"vehicle_mass"`
	RollInertiaScale float64 `yaml:"roll_inertia_scale"`
	ComDrop          float64 `yaml:"com_drop"`

	// Drive forces
	MaxForwardSpeed   float64 `yaml:"max_forward_speed"`
	EngineForce       float64 `yaml:"engine_force"`
	BrakeForceFloor   float64 `yaml:"brake_force_floor"`
	BrakeSpeedGain    float64 `yaml:"brake_speed_gain"`
	SteerTorque       float64 `yaml:"steer_torque"`
	SteerFalloffSpeed float64 `yaml:"steer_falloff_speed"`
	DownforceMinSpeed float64 `yaml:"downforce_min_speed"`
	DownforceCoef     float64 `yaml:"downforce_coef"`
	DownforceCap      float64 `yaml:"downforce_cap"`
	UprightGain       float64 `yaml:"upright_gain"`
	RollDampFactor    float64 `yaml:"roll_damp_factor"`
}

// DefaultTuning returns the calibrated defaults.
func DefaultTuning() Tuning {
	return Tuning{
		GravityY:       -9.81,
		LinearDamping:  0.2,
		AngularDamping: 0.3,
		Restitution:    0.2,

		VehicleMass:      300.0,
		RollInertiaScale: 2.5,
		ComDrop:          0.3,

		MaxForwardSpeed:   40.0,
		EngineForce:       9000.0,
		BrakeForceFloor:   600.0,
		BrakeSpeedGain:    150.0,
		SteerTorque:       2200.0,
		SteerFalloffSpeed: 40.0,
		DownforceMinSpeed: 8.0,
		DownforceCoef:     6.0,
		DownforceCap:      3500.0,
		UprightGain:       4000.0,
		RollDampFactor:    0.82,
	}
}
