package xr

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/frame"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics/d3d12"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics/vulkan"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/handoff"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/session"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/space"
)

// defaultBackends are the backends tried when none are given, Vulkan first.
func defaultBackends() []graphics.Backend {
	return []graphics.Backend{vulkan.New(), d3d12.New()}
}

// poll drains the runtime events. A loss reported by a frame call is handled
// first; a lost instance is destroyed and the plugin stays flat.
func (p *plugin) poll(c *engine.Context) error {
	if kind := p.loss.Swap(lossNone); kind != lossNone {
		p.logger.Error("XR session lost", "instance_lost", kind == lossInstance)
		p.machine.Abandon(kind == lossInstance)
	}
	err := p.machine.Poll()
	p.releaseRetired()

	p.mu.Lock()
	inst := p.inst
	if inst != nil && !inst.Valid() {
		p.inst = nil
	}
	p.mu.Unlock()
	if inst != nil && !inst.Valid() {
		if derr := inst.Destroy(); derr != nil {
			p.logger.Warn("instance teardown", "err", derr)
		}
		p.logger.Warn("XR instance lost, rendering flat")
	}
	if err != nil {
		return fmt.Errorf("xr: poll: %w", err)
	}
	return nil
}

// createSession opens the graphics device, creates the session and publishes
// the per-session resources. Any failure leaves the plugin without a session.
func (p *plugin) createSession(c *engine.Context) error {
	p.requested.Store(false)
	cfg := p.Config()

	dev, binding, err := p.inst.InitGraphics()
	if err != nil {
		return fmt.Errorf("xr: init graphics: %w", err)
	}
	s, err := session.Create(p.inst, dev, binding, p.sessionOptions(cfg)...)
	if err != nil {
		dev.Release()
		return fmt.Errorf("xr: create session: %w", err)
	}
	if err := p.registry.Commit(s, c.Engine.Resources(engine.ScheduleMain), c.Engine.Resources(engine.ScheduleRender)); err != nil {
		if derr := s.Destroy(); derr != nil {
			p.logger.Warn("session teardown", "err", derr)
		}
		dev.Release()
		return fmt.Errorf("xr: %w", err)
	}

	p.timing.SetPipelined(cfg.XR.Pipelined)
	d := frame.NewDriver(s,
		frame.WithLogger(p.logger),
		frame.WithTiming(p.timing),
		frame.WithProviders(p.providers),
		frame.WithImageTimeout(cfg.ImageTimeout()),
	)

	p.mu.Lock()
	p.driver, p.device = d, dev
	p.recenter = space.NewRecenter(s.Handle(), s.ReferenceSpaceType())
	views := append([]space.Target{}, p.viewTargets...)
	p.mu.Unlock()
	for _, target := range views {
		p.Track(s.ViewSpace(), target, false)
	}

	p.machine.Attach(s)
	return nil
}

// waitFrame blocks in xrWaitFrame, locates every tracked space and the hands at
// the frame's query time and hands the frame to the render context.
func (p *plugin) waitFrame(c *engine.Context) error {
	d := p.currentDriver()
	if d == nil {
		return nil
	}
	fs, err := d.Wait()
	if err != nil {
		if frame.IsFatal(err) {
			p.markLost(err)
		}
		return err
	}

	s := d.Session()
	at := p.timing.Time()
	if err := p.tracker.Update(s.ReferenceSpace(), at); err != nil {
		p.logger.Warn("tracked space update failed", "err", err)
	}
	if hands := s.Hands(); hands.Enabled() {
		if err := hands.Locate(s.ReferenceSpace(), at); err != nil {
			p.logger.Warn("hand joint update failed", "err", err)
		}
	}
	p.mu.Lock()
	rc := p.recenter
	p.mu.Unlock()
	if rc != nil {
		if ev, ok := rc.Take(fs.PredictedDisplayTime); ok {
			p.logger.Info("reference space recentered", "type", ev.ReferenceSpaceType)
			handoff.Insert(c.Resources, ev)
		}
	}

	p.inFlight.Store(true)
	if err := p.frames.Send(c.Ctx, pendingFrame{driver: d, state: fs}); err != nil {
		p.inFlight.Store(false)
		return err
	}
	return nil
}

// renderFrame runs the handed-over frame. Failed frames cost only themselves;
// a lost session is torn down by the next poll.
func (p *plugin) renderFrame(c *engine.Context) error {
	pf, ok := p.frames.TryReceive()
	if !ok {
		return nil
	}
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	defer p.inFlight.Store(false)
	if pf.driver != p.currentDriver() {
		// The session ended while the frame was in the mailbox.
		return nil
	}

	before := pf.driver.Stats()
	err := pf.driver.Run(func(f *frame.Frame) error {
		eyes := p.rig.Update(f.Views)
		if p.render == nil {
			return nil
		}
		return p.render(f, eyes)
	})
	if prof := c.Engine.Profiler(); prof != nil {
		prof.Record(sample(pf.state, before, pf.driver.Stats()))
	}
	if err != nil && frame.IsFatal(err) {
		p.logger.Error("frame failed fatally", "err", err)
		p.markLost(err)
	}
	return nil
}

// installFlat creates the window renderer and the system presenting through it
// while no session is running.
func (p *plugin) installFlat(e engine.Engine) error {
	w := e.Window()
	if w == nil {
		return nil
	}
	r, err := renderer.NewRenderer(w, append([]renderer.RendererBuilderOption{renderer.WithLogger(p.logger)}, p.flatOptions...)...)
	if err != nil {
		return fmt.Errorf("xr: flat renderer: %w", err)
	}
	p.flat = r
	if w.Height() > 0 {
		p.flatCam.SetAspect(float32(w.Width()) / float32(w.Height()))
	}
	w.SetResizeCallback(p.resizeFlat)
	e.AddSystem(engine.ScheduleRender, SystemFlatFrame, p.flatFrame, p.flatActive)
	return nil
}

// resizeFlat follows the window size with the surface and the flat camera's aspect.
func (p *plugin) resizeFlat(width, height int) {
	if p.flat != nil {
		p.flat.Resize(width, height)
	}
	if width > 0 && height > 0 {
		p.flatCam.SetAspect(float32(width) / float32(height))
	}
}

func (p *plugin) flatActive() bool {
	return p.flat != nil && !p.SessionRunning()
}

func (p *plugin) flatFrame(c *engine.Context) error {
	pass, err := p.flat.BeginFrame()
	if err != nil {
		return fmt.Errorf("xr: flat frame: %w", err)
	}
	if p.flatRender != nil {
		if err := p.flatRender(pass, p.flatCam); err != nil {
			// The pass must still be closed before the surface texture is dropped.
			_ = p.flat.EndFrame()
			p.flat.Present()
			return fmt.Errorf("xr: flat frame: %w", err)
		}
	}
	if err := p.flat.EndFrame(); err != nil {
		return fmt.Errorf("xr: flat frame: %w", err)
	}
	p.flat.Present()
	return nil
}
