package terrain

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Margin keeps the start/finish waypoints away from the world edge.
	waypointMargin = 15.0
	// Half-width of the obstacle-free corridor along the racing line.
	corridorHalfWidth = 12.0
)

// Obstacle is one static box placed on the track.
type Obstacle struct {
	Position    mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// Config is the immutable track description the simulation consumes:
// ground size, start/finish waypoints and the obstacle field. Produced
// once at session creation and read-only afterwards.
type Config struct {
	Width          float64
	Depth          float64
	StartPosition  mgl64.Vec3
	FinishPosition mgl64.Vec3
	Obstacles      []Obstacle
}

// SpawnPosition returns where a fresh vehicle is placed: just behind the
// start waypoint, slightly above the ground so the first step settles it.
func (c Config) SpawnPosition() mgl64.Vec3 {
	return mgl64.Vec3{c.StartPosition.X(), 1, c.StartPosition.Z() - 4}
}

// Generate builds a deterministic track: a flat ground of the given
// size, start and finish waypoints at opposite ends of the Z axis, and
// pseudo-noise-placed box obstacles that avoid the racing corridor.
// Degenerate sizes are a programming error and panic.
func Generate(width, depth float64, obstacleCount int) Config {
	if width <= 0 || depth <= 0 {
		panic(fmt.Sprintf("terrain: degenerate size %gx%g", width, depth))
	}

	cfg := Config{
		Width:          width,
		Depth:          depth,
		StartPosition:  mgl64.Vec3{0, 0, -depth/2 + waypointMargin},
		FinishPosition: mgl64.Vec3{0, 0, depth/2 - waypointMargin},
	}

	for i := 0; i < obstacleCount; i++ {
		// Fixed pseudo-noise keeps layouts reproducible between runs.
		nx := noise2D(float64(i)*0.731, 0.17)
		nz := noise2D(0.43, float64(i)*0.519)
		ns := noise2D(float64(i)*0.311, float64(i)*0.877)

		x := (nx*2 - 1) * (width/2 - 5)
		z := (nz*2 - 1) * (depth/2 - waypointMargin*2)

		// Keep the line between start and finish drivable.
		if math.Abs(x) < corridorHalfWidth {
			if x < 0 {
				x -= corridorHalfWidth
			} else {
				x += corridorHalfWidth
			}
		}

		size := lerp(1.0, 3.5, smoothstep(ns))
		cfg.Obstacles = append(cfg.Obstacles, Obstacle{
			Position:    mgl64.Vec3{x, size / 2, z},
			HalfExtents: mgl64.Vec3{size / 2, size / 2, size / 2},
		})
	}
	return cfg
}

// noise2D is a hash-based pseudo-noise in [0, 1), deterministic for a
// given coordinate pair.
func noise2D(x, y float64) float64 {
	h := x*12.9898 + y*78.233
	s := math.Sin(h) * 43758.5453
	return math.Abs(s) - math.Floor(math.Abs(s))
}

// smoothstep eases t in [0,1] for blended placements.
func smoothstep(t float64) float64 {
	return t * t * (3.0 - 2.0*t)
}

// lerp interpolates between a and b.
func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// HeightAt returns the ground height at a world coordinate. The track
// is flat; the function exists so the renderer and future height-mapped
// tracks share one query point.
func (c Config) HeightAt(x, z float64) float64 {
	return 0
}
