package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type payload struct {
	level int
}

func newTestStore(ttl time.Duration) (*Store[string, int, *payload], *clock, *int) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	builds := 0
	s := New[string, int, *payload]("test", func(level int) *payload {
		builds++
		return &payload{level: level}
	}, Options{TTL: ttl, Now: clk.Now})
	return s, clk, &builds
}

func TestGetOrCreate_BuildsOnCreate(t *testing.T) {
	s, _, builds := newTestStore(time.Minute)

	e := s.GetOrCreate("a", 1)
	assert.Equal(t, 1, *builds)
	assert.Equal(t, Clean, e.State())
	assert.Equal(t, 1, e.Payload().level)
	assert.Equal(t, 1, *builds)
}

func TestGetOrCreate_SameIdentityKeepsPayload(t *testing.T) {
	s, _, builds := newTestStore(time.Minute)

	first := s.Get("a", 3)
	for i := 0; i < 5; i++ {
		assert.Same(t, first, s.Get("a", 3))
	}
	assert.Equal(t, 1, *builds)
}

func TestGetOrCreate_IdentityChangeDefersBuild(t *testing.T) {
	s, _, builds := newTestStore(time.Minute)

	first := s.Get("a", 1)
	e := s.GetOrCreate("a", 2)
	assert.Equal(t, Dirty, e.State())
	assert.Equal(t, 1, *builds, "identity change must not build eagerly")
	assert.Equal(t, 2, e.Identity())

	second := e.Payload()
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, second.level)
	assert.Equal(t, 2, *builds)

	// Exactly one rebuild before the next read.
	e.Payload()
	assert.Equal(t, 2, *builds)
	assert.Equal(t, 2, e.Builds())
}

func TestSweep_TTLBoundary(t *testing.T) {
	const ttl = 10 * time.Second
	s, clk, _ := newTestStore(ttl)

	touched := clk.Now()
	s.Get("a", 1)

	assert.Equal(t, 0, s.Sweep(touched.Add(ttl-time.Millisecond)))
	assert.Equal(t, 1, s.Len())

	assert.Equal(t, 1, s.Sweep(touched.Add(ttl+time.Millisecond)))
	assert.Equal(t, 0, s.Len())
}

func TestSweep_ExactTTLEvicts(t *testing.T) {
	s, clk, _ := newTestStore(time.Second)
	s.Get("a", 1)
	assert.Equal(t, 1, s.Sweep(clk.Now().Add(time.Second)))
}

func TestSweep_TouchResetsClock(t *testing.T) {
	s, clk, _ := newTestStore(10 * time.Second)
	s.Get("a", 1)

	clk.Advance(8 * time.Second)
	s.Get("a", 1)
	clk.Advance(8 * time.Second)

	assert.Equal(t, 0, s.Sweep(clk.Now()))
	assert.Equal(t, 1, s.Len())
}

func TestSweep_KeepsEntriesTouchedAfterNow(t *testing.T) {
	s, clk, _ := newTestStore(time.Second)
	sweepAt := clk.Now()
	clk.Advance(time.Hour)
	s.Get("late", 1)

	assert.Equal(t, 0, s.Sweep(sweepAt))
	assert.Equal(t, 1, s.Len())
}

func TestClear(t *testing.T) {
	s, _, builds := newTestStore(time.Minute)
	s.Get("a", 1)
	s.Get("b", 1)
	s.Clear()
	assert.Equal(t, 0, s.Len())

	s.Get("a", 1)
	assert.Equal(t, 3, *builds, "cleared entries rebuild on next access")
}

func TestStore_ConcurrentAccess(t *testing.T) {
	var mu sync.Mutex
	builds := 0
	s := New[string, int, int]("concurrent", func(level int) int {
		mu.Lock()
		builds++
		mu.Unlock()
		return level * 10
	}, Options{TTL: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, 70, s.Get("k", 7))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, builds)
}

func TestMetrics_CountTraffic(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s := New[string, int, int]("items", func(level int) int { return level }, Options{TTL: time.Second, Metrics: m})

	s.Get("a", 1) // miss + build
	s.Get("a", 1) // hit
	s.Get("a", 2) // hit + build
	s.Sweep(time.Now().Add(time.Hour))

	families, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			got[mf.GetName()] += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, got["statcore_cache_hits_total"])
	assert.Equal(t, 1.0, got["statcore_cache_misses_total"])
	assert.Equal(t, 2.0, got["statcore_cache_builds_total"])
	assert.Equal(t, 1.0, got["statcore_cache_evictions_total"])
}
