package race

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dendekky/vibe-racing/internal/physics"
)

var (
	testSpawn  = mgl64.Vec3{0, 1, 0}
	testStart  = mgl64.Vec3{0, 0, -10}
	testFinish = mgl64.Vec3{0, 0, 10}
	testDims   = mgl64.Vec3{2, 1, 4}
)

func newTestVehicle(t *testing.T) *Vehicle {
	t.Helper()
	w := physics.NewWorld(physics.DefaultTuning())
	w.CreateGround(200, 200, physics.Pose{Orientation: mgl64.QuatIdent()})
	return NewVehicle("car-1", w, testSpawn, testDims, testStart, testFinish, DefaultParams())
}

// pastGrace advances the vehicle clock past the spawn grace window.
func pastGrace(v *Vehicle) {
	v.Update(2.0)
	v.DrainEvents()
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestNewVehicleRejectsCoincidentWaypoints(t *testing.T) {
	w := physics.NewWorld(physics.DefaultTuning())
	p := mgl64.Vec3{0, 0, 5}
	assert.Panics(t, func() {
		NewVehicle("bad", w, testSpawn, testDims, p, p, DefaultParams())
	})
}

func TestSpawnStateAndGraceExpiry(t *testing.T) {
	v := newTestVehicle(t)

	assert.Equal(t, 100, v.Health())
	assert.True(t, v.Initializing())
	assert.False(t, v.Disabled())
	assert.False(t, v.NitroActive())
	assert.False(t, v.Race().Started)

	v.Update(1.0)
	assert.True(t, v.Initializing(), "grace window is 2000ms, not over after 1s")
	v.Update(1.0)
	assert.False(t, v.Initializing())
}

func TestGracePeriodIgnoresCollisions(t *testing.T) {
	v := newTestVehicle(t)

	v.HandleCollision(SeverityHeadOn)
	v.HandleCollision(SeverityHeadOn)

	assert.Equal(t, 100, v.Health(), "grace-period hits must deal zero damage")
	assert.False(t, v.Disabled())
}

func TestDamageTable(t *testing.T) {
	v := newTestVehicle(t)
	pastGrace(v)

	v.HandleCollision(SeverityMinor)
	assert.Equal(t, 95, v.Health())
	v.HandleCollision(SeverityWall)
	assert.Equal(t, 85, v.Health())
	v.HandleCollision(SeverityHeadOn)
	assert.Equal(t, 65, v.Health())
	v.HandleCollision(SeverityNone)
	assert.Equal(t, 65, v.Health(), "a none-severity contact deals no damage")
}

func TestFifthHeadOnHitDisables(t *testing.T) {
	v := newTestVehicle(t)
	pastGrace(v)

	for i := 0; i < 4; i++ {
		v.HandleCollision(SeverityHeadOn)
	}
	assert.Equal(t, 20, v.Health())
	assert.False(t, v.Disabled(), "four head-on hits leave the car alive")

	v.HandleCollision(SeverityHeadOn)
	assert.Equal(t, 0, v.Health())
	assert.True(t, v.Disabled(), "the fifth hit zeroes health and disables")
	assert.Contains(t, eventTypes(v.DrainEvents()), EventDisabled)
}

func TestHealthNeverGoesNegative(t *testing.T) {
	v := newTestVehicle(t)
	pastGrace(v)

	v.HandleCollision(SeverityHeadOn)
	v.HandleCollision(SeverityHeadOn)
	v.HandleCollision(SeverityHeadOn)
	v.HandleCollision(SeverityHeadOn)
	v.HandleCollision(SeverityWall) // 20 - 10 = 10 left
	v.HandleCollision(SeverityHeadOn)
	assert.Equal(t, 0, v.Health(), "health clamps at zero, never negative")
}

func TestDisabledVehicleIgnoresDamageAndControls(t *testing.T) {
	v := newTestVehicle(t)
	pastGrace(v)

	for i := 0; i < 5; i++ {
		v.HandleCollision(SeverityHeadOn)
	}
	require.True(t, v.Disabled())
	v.DrainEvents()

	v.HandleCollision(SeverityHeadOn)
	assert.Equal(t, 0, v.Health())
	assert.Empty(t, v.DrainEvents(), "hits while disabled must not re-trigger the disable transition")

	// Controls are a no-op: even parked inside the start zone the race
	// must not start while disabled.
	v.TeleportTo(testStart)
	v.ApplyControls(DriverInput{Forward: true})
	assert.False(t, v.Race().Started)
}

func TestDisableCountdownRepairsToFullHealth(t *testing.T) {
	v := newTestVehicle(t)
	pastGrace(v)

	for i := 0; i < 5; i++ {
		v.HandleCollision(SeverityHeadOn)
	}
	require.True(t, v.Disabled())
	v.DrainEvents()

	v.Update(1.0)
	assert.True(t, v.Disabled(), "disable window is 3000ms")
	v.Update(1.0)
	assert.True(t, v.Disabled())
	v.Update(1.0)

	assert.False(t, v.Disabled())
	assert.Equal(t, 100, v.Health(), "repair restores exactly full health")
	assert.Contains(t, eventTypes(v.DrainEvents()), EventRepaired)
}

func TestNitroCountdownAndExpiry(t *testing.T) {
	v := newTestVehicle(t)

	v.ActivateNitro()
	assert.True(t, v.NitroActive())
	assert.Contains(t, eventTypes(v.DrainEvents()), EventNitroStarted)

	v.Update(1.0)
	assert.True(t, v.NitroActive())
	assert.InDelta(t, 4000, v.Snapshot().NitroRemainingMs, 1e-9)

	// Many small deltas must sum to the same expiry as few large ones;
	// one extra tick absorbs float rounding in the sum.
	for i := 0; i < 241; i++ {
		v.Update(1.0 / 60.0)
	}
	assert.False(t, v.NitroActive())
	assert.InDelta(t, 0, v.Snapshot().NitroRemainingMs, 1e-9)
	assert.Contains(t, eventTypes(v.DrainEvents()), EventNitroEnded)
}

func TestNitroRetriggerMidBoostIsNoOp(t *testing.T) {
	v := newTestVehicle(t)

	v.ActivateNitro()
	v.Update(2.0)
	require.InDelta(t, 3000, v.Snapshot().NitroRemainingMs, 1e-9)

	v.ActivateNitro()
	assert.InDelta(t, 3000, v.Snapshot().NitroRemainingMs, 1e-9,
		"retriggering mid-boost must not extend or reset the countdown")

	v.Update(3.0)
	assert.False(t, v.NitroActive())

	// Once fully expired, activation works again.
	v.ActivateNitro()
	assert.True(t, v.NitroActive())
	assert.InDelta(t, 5000, v.Snapshot().NitroRemainingMs, 1e-9)
}

func TestRaceStartsInsideCheckpointRadius(t *testing.T) {
	v := newTestVehicle(t)

	// Spawn is ~10.05 units from the start waypoint, just outside.
	v.ApplyControls(DriverInput{Forward: true})
	assert.False(t, v.Race().Started)

	v.TeleportTo(mgl64.Vec3{0, 0, -5})
	v.ApplyControls(DriverInput{Forward: true})
	assert.True(t, v.Race().Started)
	assert.Contains(t, eventTypes(v.DrainEvents()), EventRaceStarted)
}

func TestRaceClockDoesNotResetOnRepeatedInput(t *testing.T) {
	v := newTestVehicle(t)
	v.TeleportTo(testStart)
	v.ApplyControls(DriverInput{Forward: true})
	require.True(t, v.Race().Started)

	v.Update(1.0)
	v.ApplyControls(DriverInput{Forward: true})
	v.Update(0.5)

	assert.InDelta(t, 1.5, v.Race().ElapsedSeconds, 1e-9,
		"later inputs inside the start zone must not restart the clock")
}

func TestFinishFreezesElapsedTime(t *testing.T) {
	v := newTestVehicle(t)
	v.TeleportTo(testStart)
	v.ApplyControls(DriverInput{Forward: true})
	require.True(t, v.Race().Started)

	v.Update(2.0)
	v.TeleportTo(testFinish)
	v.Update(1.0 / 60.0)

	st := v.Race()
	require.True(t, st.Finished)
	finishTime := st.ElapsedSeconds
	assert.InDelta(t, 2.0+1.0/60.0, finishTime, 1e-9)

	events := v.DrainEvents()
	require.Contains(t, eventTypes(events), EventRaceFinished)
	for _, e := range events {
		if e.Type == EventRaceFinished {
			assert.InDelta(t, finishTime, e.ElapsedS, 1e-9)
		}
	}

	v.Update(5.0)
	assert.InDelta(t, finishTime, v.Race().ElapsedSeconds, 1e-9, "elapsed freezes at finish")

	v.ApplyControls(DriverInput{Forward: true})
	assert.True(t, v.Race().Finished, "controls after finish are a no-op")
}

func TestResetRaceAllowsRestart(t *testing.T) {
	v := newTestVehicle(t)
	v.TeleportTo(testStart)
	v.ApplyControls(DriverInput{Forward: true})
	v.Update(1.0)
	v.TeleportTo(testFinish)
	v.Update(1.0 / 60.0)
	require.True(t, v.Race().Finished)

	v.ResetRace()
	st := v.Race()
	assert.False(t, st.Started)
	assert.False(t, st.Finished)
	assert.Zero(t, st.ElapsedSeconds)

	v.TeleportTo(testStart)
	v.ApplyControls(DriverInput{Forward: true})
	require.True(t, v.Race().Started)
	v.Update(0.5)
	assert.InDelta(t, 0.5, v.Race().ElapsedSeconds, 1e-9, "the restarted clock counts from zero")
}

func TestTeleportZeroesMotionAndSyncsPose(t *testing.T) {
	v := newTestVehicle(t)
	v.ApplyControls(DriverInput{Forward: true})

	target := mgl64.Vec3{4, 1, -8}
	v.TeleportTo(target)

	assert.Equal(t, target, v.Body().Position())
	assert.Equal(t, mgl64.Vec3{}, v.Body().Velocity())
	assert.Equal(t, target, v.Pose().Position, "the mirrored pose must not lag a teleport")
}

func TestAutopilotFinishesTheRace(t *testing.T) {
	v := newTestVehicle(t)

	v.StartAutoDrive()
	assert.True(t, v.AutopilotActive())

	// 5s autopilot window at the fixed tick rate, plus one tick of slack.
	for i := 0; i < 301; i++ {
		v.Update(1.0 / 60.0)
	}

	assert.False(t, v.AutopilotActive())
	st := v.Race()
	assert.True(t, st.Started)
	assert.True(t, st.Finished)
	assert.InDelta(t, 5.0, st.ElapsedSeconds, 0.05)
	assert.Contains(t, eventTypes(v.DrainEvents()), EventRaceFinished)
}

func TestStartAutoDriveIsIdempotent(t *testing.T) {
	v := newTestVehicle(t)
	v.StartAutoDrive()
	v.Update(1.0)
	v.StartAutoDrive()
	v.Update(1.0)

	// A second arm must not restart the interpolation: the race still
	// finishes 5s after the first arm.
	for i := 0; i < 181; i++ {
		v.Update(1.0 / 60.0)
	}
	assert.True(t, v.Race().Finished)
}

func TestSnapshotReflectsState(t *testing.T) {
	v := newTestVehicle(t)
	v.ActivateNitro()

	snap := v.Snapshot()
	assert.Equal(t, "car-1", snap.ID)
	assert.Equal(t, [3]float64{0, 1, 0}, snap.Position)
	assert.Equal(t, 100, snap.Health)
	assert.True(t, snap.Initializing)
	assert.True(t, snap.NitroActive)
	assert.False(t, snap.Race.Started)
	// Identity orientation in x, y, z, w order.
	assert.Equal(t, [4]float64{0, 0, 0, 1}, snap.Orientation)
}

func TestDrainEventsClearsQueue(t *testing.T) {
	v := newTestVehicle(t)
	v.ActivateNitro()

	first := v.DrainEvents()
	require.Len(t, first, 1)
	assert.Equal(t, EventNitroStarted, first[0].Type)
	assert.Equal(t, "car-1", first[0].VehicleID)
	assert.Empty(t, v.DrainEvents())
}
