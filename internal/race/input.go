package race

// DriverInput is the normalized per-tick control tuple. Keyboard and
// gamepad polling happen client-side; by the time input reaches the
// simulation it is exactly this shape. A missing device simply yields
// the zero value.
type DriverInput struct {
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
	Nitro    bool `json:"nitro"`
}
