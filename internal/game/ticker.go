package game

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// TickSystem is one unit of per-tick work. Systems run every tick in
// ascending priority order.
type TickSystem interface {
	Update(delta time.Duration) error
	Name() string
	Priority() int
}

// Ticker drives the cooperative game loop: a wall-clock ticker feeding
// every registered system, with basic performance accounting. The
// physics itself still advances in fixed sub-steps inside the session;
// the ticker only decides how often the session gets to catch up.
type Ticker struct {
	targetTPS    int
	tickDuration time.Duration

	systems []TickSystem

	running   bool
	startTime time.Time

	// mu guards the loop counters: the loop goroutine writes them every
	// tick while the /stats handler reads them.
	mu          sync.RWMutex
	tickCount   uint64
	lastTick    time.Time
	avgTickTime time.Duration
	maxTickTime time.Duration

	warnThreshold time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger
}

// NewTicker creates a game loop at the target ticks-per-second.
func NewTicker(targetTPS int, logger *log.Logger) *Ticker {
	if targetTPS <= 0 {
		targetTPS = 60
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := time.Second / time.Duration(targetTPS)
	return &Ticker{
		targetTPS:     targetTPS,
		tickDuration:  d,
		warnThreshold: d / 2,
		ctx:           ctx,
		cancel:        cancel,
		logger:        logger,
	}
}

// Register adds a system and keeps the list sorted by priority.
func (t *Ticker) Register(system TickSystem) {
	t.systems = append(t.systems, system)
	sort.SliceStable(t.systems, func(i, j int) bool {
		return t.systems[i].Priority() < t.systems[j].Priority()
	})
	t.logger.Printf("[Ticker] registered system %s (priority %d)", system.Name(), system.Priority())
}

// Start launches the loop. Registration must be complete before Start.
func (t *Ticker) Start() {
	if t.running {
		return
	}
	t.running = true
	t.startTime = time.Now()
	t.lastTick = t.startTime
	t.logger.Printf("[Ticker] starting loop: %d TPS (tick every %v)", t.targetTPS, t.tickDuration)
	go t.loop()
}

// Stop halts the loop.
func (t *Ticker) Stop() {
	if !t.running {
		return
	}
	t.logger.Printf("[Ticker] stopping loop after %d ticks", t.tickCount)
	t.cancel()
	t.running = false
}

func (t *Ticker) loop() {
	ticker := time.NewTicker(t.tickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case now := <-ticker.C:
			t.executeTick(now)
		}
	}
}

func (t *Ticker) executeTick(now time.Time) {
	start := time.Now()

	t.mu.Lock()
	delta := now.Sub(t.lastTick)
	t.lastTick = now
	t.tickCount++
	t.mu.Unlock()

	for _, system := range t.systems {
		t.runSystem(system, delta)
	}

	took := time.Since(start)
	t.mu.Lock()
	if took > t.maxTickTime {
		t.maxTickTime = took
	}
	if t.avgTickTime == 0 {
		t.avgTickTime = took
	} else {
		t.avgTickTime = (t.avgTickTime*9 + took) / 10
	}
	t.mu.Unlock()

	if took > t.warnThreshold {
		t.logger.Printf("[Ticker] slow tick: %v (target %v)", took, t.tickDuration)
	}
}

// runSystem isolates one system: a panic or error is logged and the
// loop keeps going. A physics fault inside the session surfaces here as
// an error and is treated as fatal for the session owner to handle.
func (t *Ticker) runSystem(system TickSystem, delta time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Printf("[Ticker] panic in system %s: %v", system.Name(), r)
		}
	}()
	if err := system.Update(delta); err != nil {
		t.logger.Printf("[Ticker] error in system %s: %v", system.Name(), err)
	}
}

// Stats returns loop health counters for the /stats endpoint. Safe to
// call while the loop is running.
func (t *Ticker) Stats() map[string]interface{} {
	t.mu.RLock()
	ticks := t.tickCount
	avg := t.avgTickTime
	max := t.maxTickTime
	t.mu.RUnlock()

	uptime := time.Since(t.startTime)
	actual := 0.0
	if uptime > 0 {
		actual = float64(ticks) / uptime.Seconds()
	}
	return map[string]interface{}{
		"target_tps":    t.targetTPS,
		"actual_tps":    actual,
		"tick_count":    ticks,
		"avg_tick_time": avg.String(),
		"max_tick_time": max.String(),
		"systems":       len(t.systems),
	}
}
