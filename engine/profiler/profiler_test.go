package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestTickReportsOncePerInterval(t *testing.T) {
	// Given a profiler with a one second interval
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := NewProfiler(WithLogger(logger.Discard()), WithClock(clock.now))

	// When 90 frames land within the interval
	for range 89 {
		clock.t = clock.t.Add(10 * time.Millisecond)
		if p.Tick() {
			t.Fatal("reported before the interval elapsed")
		}
	}
	clock.t = time.Unix(101, 0)

	// Then the 90th tick reports 90 fps
	if !p.Tick() {
		t.Fatal("no report after the interval")
	}
	if got := p.Last().FPS; got != 90 {
		t.Errorf("FPS = %v, want 90", got)
	}
	if p.Last().XR {
		t.Error("XR stats reported without compositor frames")
	}
}

func TestRecordAggregatesCompositorFrames(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithLogger(logger.Discard()), WithClock(clock.now), WithInterval(time.Second))

	period := 11111111 * time.Nanosecond
	p.Record(FrameSample{DisplayPeriod: period, Rendered: true})
	p.Record(FrameSample{DisplayPeriod: period, Rendered: true})
	p.Record(FrameSample{DisplayPeriod: period, Skipped: true})
	p.Record(FrameSample{DisplayPeriod: period, Rendered: true, Failed: true})

	clock.t = clock.t.Add(time.Second)
	p.Tick()

	s := p.Last()
	if !s.XR || s.CompositorFrames != 4 {
		t.Fatalf("stats = %+v", s)
	}
	if s.Rendered != 2 || s.Skipped != 1 || s.Failed != 1 {
		t.Errorf("rendered/skipped/failed = %d/%d/%d, want 2/1/1", s.Rendered, s.Skipped, s.Failed)
	}
	if s.DisplayPeriod != period {
		t.Errorf("display period = %v", s.DisplayPeriod)
	}

	// The next interval starts from zero.
	clock.t = clock.t.Add(time.Second)
	p.Tick()
	if p.Last().CompositorFrames != 0 {
		t.Error("counters not reset between intervals")
	}
}

func TestSmoothedFPSBlendsIntervals(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithLogger(logger.Discard()), WithClock(clock.now), WithInterval(time.Second))
	tickInterval := func(frames int) {
		for range frames - 1 {
			p.Tick()
		}
		clock.t = clock.t.Add(time.Second)
		if !p.Tick() {
			t.Fatal("no report after the interval")
		}
	}

	tests := []struct {
		name   string
		frames int
		fps    float64
		smooth float64
	}{
		{"first interval starts the average", 90, 90, 90},
		{"slow interval moves it a quarter of the way", 50, 50, 80},
		{"recovery", 80, 80, 80},
	}
	for _, tt := range tests {
		tickInterval(tt.frames)
		s := p.Last()
		if s.FPS != tt.fps || s.SmoothedFPS != tt.smooth {
			t.Errorf("%s: fps %v smoothed %v, want %v %v", tt.name, s.FPS, s.SmoothedFPS, tt.fps, tt.smooth)
		}
	}
}
