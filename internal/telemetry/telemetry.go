package telemetry

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Sample is one recorded vehicle observation.
type Sample struct {
	Timestamp int64      `json:"timestamp"`
	VehicleID string     `json:"vehicle_id"`
	Position  [3]float64 `json:"position"`
	Speed     float64    `json:"speed"`
	Health    int        `json:"health"`
	Racing    bool       `json:"racing"`
}

// Manager collects vehicle samples into a bounded buffer and prints
// aggregate stats on an interval. Cheap enough to leave on in
// production; disable for benchmarks.
type Manager struct {
	mu      sync.Mutex
	enabled bool

	samples    []Sample
	maxEntries int

	counters   map[string]int
	lastReport time.Time
	interval   time.Duration

	logger *log.Logger
}

// NewManager creates an enabled telemetry manager.
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		enabled:    true,
		maxEntries: 200,
		counters:   make(map[string]int),
		lastReport: time.Now(),
		interval:   5 * time.Second,
		logger:     logger,
	}
}

// SetEnabled toggles collection.
func (m *Manager) SetEnabled(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = on
}

// RecordVehicle appends one sample, evicting the oldest past capacity.
func (m *Manager) RecordVehicle(id string, position [3]float64, speed float64, health int, racing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}

	m.samples = append(m.samples, Sample{
		Timestamp: time.Now().UnixMilli(),
		VehicleID: id,
		Position:  position,
		Speed:     speed,
		Health:    health,
		Racing:    racing,
	})
	if len(m.samples) > m.maxEntries {
		m.samples = m.samples[1:]
	}
	m.counters[id]++
}

// MaybeReport prints aggregate stats when the report interval elapsed.
func (m *Manager) MaybeReport() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || time.Since(m.lastReport) < m.interval {
		return
	}
	m.lastReport = time.Now()

	maxSpeed := 0.0
	racing := 0
	seen := make(map[string]bool)
	for _, s := range m.samples {
		if s.Speed > maxSpeed {
			maxSpeed = s.Speed
		}
		if s.Racing && !seen[s.VehicleID] {
			racing++
			seen[s.VehicleID] = true
		}
	}
	m.logger.Printf("[Telemetry] samples=%d vehicles=%d racing=%d maxSpeed=%.1f",
		len(m.samples), len(m.counters), racing, maxSpeed)
}

// Recent returns up to n of the latest samples, newest last.
func (m *Manager) Recent(n int) []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 || n > len(m.samples) {
		n = len(m.samples)
	}
	out := make([]Sample, n)
	copy(out, m.samples[len(m.samples)-n:])
	return out
}

// DumpJSON renders the buffered samples, for the debug endpoint.
func (m *Manager) DumpJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.Marshal(m.samples)
}
