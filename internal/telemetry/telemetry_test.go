package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(log.New(io.Discard, "", 0))
}

func TestRecordAndRecent(t *testing.T) {
	m := newTestManager()

	m.RecordVehicle("p1", [3]float64{1, 0, 2}, 12.5, 80, true)
	m.RecordVehicle("p2", [3]float64{0, 0, 0}, 0, 100, false)

	recent := m.Recent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, "p1", recent[0].VehicleID)
	assert.Equal(t, "p2", recent[1].VehicleID, "newest sample comes last")
	assert.Equal(t, 12.5, recent[0].Speed)
	assert.True(t, recent[0].Racing)

	one := m.Recent(1)
	require.Len(t, one, 1)
	assert.Equal(t, "p2", one[0].VehicleID)
}

func TestBufferEvictsOldestPastCapacity(t *testing.T) {
	m := newTestManager()

	for i := 0; i < 250; i++ {
		m.RecordVehicle(fmt.Sprintf("v%d", i), [3]float64{}, 0, 100, false)
	}

	recent := m.Recent(0)
	require.Len(t, recent, 200, "buffer is bounded")
	assert.Equal(t, "v50", recent[0].VehicleID, "oldest samples are evicted first")
	assert.Equal(t, "v249", recent[199].VehicleID)
}

func TestDisabledManagerDropsSamples(t *testing.T) {
	m := newTestManager()
	m.SetEnabled(false)

	m.RecordVehicle("p1", [3]float64{}, 5, 100, false)
	assert.Empty(t, m.Recent(0))

	m.SetEnabled(true)
	m.RecordVehicle("p1", [3]float64{}, 5, 100, false)
	assert.Len(t, m.Recent(0), 1)
}

func TestDumpJSON(t *testing.T) {
	m := newTestManager()
	m.RecordVehicle("p1", [3]float64{1, 2, 3}, 7, 90, true)

	data, err := m.DumpJSON()
	require.NoError(t, err)

	var samples []Sample
	require.NoError(t, json.Unmarshal(data, &samples))
	require.Len(t, samples, 1)
	assert.Equal(t, "p1", samples[0].VehicleID)
	assert.Equal(t, [3]float64{1, 2, 3}, samples[0].Position)
	assert.Equal(t, 90, samples[0].Health)
}

func TestMaybeReportDoesNotFireEarly(t *testing.T) {
	m := newTestManager()
	m.RecordVehicle("p1", [3]float64{}, 5, 100, true)
	// Interval has not elapsed: must be a silent no-op either way.
	m.MaybeReport()
	assert.Len(t, m.Recent(0), 1)
}
