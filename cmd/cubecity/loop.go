package main

import (
	"image"
	"log/slog"
	"time"

	"cubecity/internal/atlas"
	"cubecity/internal/chunks"
	"cubecity/internal/config"
	"cubecity/internal/graphics"
	"cubecity/internal/physics"
	"cubecity/internal/profiling"
	"cubecity/internal/terrain"
	"cubecity/internal/world"

	"github.com/faiface/mainthread"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const (
	flySpeed  = 20.0 // blocks per second
	tileSize  = 16
	slowFrame = 50 * time.Millisecond
)

// runWindowed drives the chunk manager from the tick goroutine and hands every
// GL and glfw call to the main thread.
func runWindowed(cfg config.Config, gen *terrain.Composite, opts options, log *slog.Logger) error {
	atlasImg, err := loadAtlas(opts.atlasPath)
	if err != nil {
		return err
	}

	var window *glfw.Window
	mainthread.Call(func() { window, err = setupWindow() })
	if err != nil {
		return errors.Wrap(err, "window")
	}
	defer mainthread.Call(func() {
		window.Destroy()
		glfw.Terminate()
	})

	mgr, err := chunks.NewManager(cfg, chunks.Deps{
		Generator: gen,
		Blocks:    world.DefaultBlocks(),
		Factory:   graphics.GLFactory{},
		Logger:    log,
	})
	if err != nil {
		return err
	}
	// Buffers disposed by Close are deleted on the main thread before the
	// deferred window teardown runs.
	defer mgr.Close()

	var r *graphics.ChunkRenderer
	mainthread.Call(func() { r, err = graphics.NewChunkRenderer(mgr.Components(), atlasImg) })
	if err != nil {
		return errors.Wrap(err, "renderer")
	}
	defer mainthread.Call(r.Delete)

	dims := cfg.Dims()
	cam := graphics.NewCamera(graphics.WinWidth, graphics.WinHeight, mgl32.Vec3{0, float32(dims.Y) * 0.6, 0})
	r.FogEnd = float32(cfg.LoadRange * dims.X)

	ctl := &controls{}
	mainthread.Call(func() { setupInputHandlers(window, ctl) })

	limiter := newFPSLimiter(cfg.TickRateHz)
	lastTime := time.Now()
	lastReport := time.Now()
	frames := 0

	for {
		profiling.ResetFrame()
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		var quit bool
		var move mgl32.Vec3
		mainthread.Call(func() {
			defer profiling.Track("glfw.PollEvents")()
			glfw.PollEvents()
			quit = window.ShouldClose()
			move = movement(window, cam)
		})
		if quit {
			return nil
		}

		if !ctl.paused {
			cam.Look(ctl.yaw, ctl.pitch)
			ctl.yaw, ctl.pitch = 0, 0
			if move.Len() > 0 {
				cam.Position = cam.Position.Add(move.Normalize().Mul(flySpeed * dt))
			}
			applyControls(mgr, gen, cam, ctl, log)
			mgr.Tick(cam.Position)
		}

		mainthread.Call(func() {
			r.Render(cam)
			func() { defer profiling.Track("glfw.SwapBuffers")(); window.SwapBuffers() }()
		})
		frames++

		if total := time.Since(now); total > slowFrame {
			log.Debug("slow frame", "took", total, "top", profiling.TopN(3))
		}
		if time.Since(lastReport) >= time.Second {
			st := mgr.Stats()
			log.Info("frame",
				"fps", frames,
				"chunk", mgr.Reference(),
				"resident", st.Resident,
				"generating", st.Generating,
				"drawn", r.Visible,
			)
			frames = 0
			lastReport = time.Now()
		}
		limiter.Wait()
	}
}

func loadAtlas(path string) (*image.RGBA, error) {
	if path == "" {
		return atlas.Procedural(tileSize), nil
	}
	return atlas.Load(path, tileSize)
}

// movement reads the held movement keys. Must run on the main thread.
func movement(w *glfw.Window, cam *graphics.Camera) mgl32.Vec3 {
	var dir mgl32.Vec3
	front, right := cam.Front(), cam.Right()
	if w.GetKey(glfw.KeyW) == glfw.Press {
		dir = dir.Add(front)
	}
	if w.GetKey(glfw.KeyS) == glfw.Press {
		dir = dir.Sub(front)
	}
	if w.GetKey(glfw.KeyD) == glfw.Press {
		dir = dir.Add(right)
	}
	if w.GetKey(glfw.KeyA) == glfw.Press {
		dir = dir.Sub(right)
	}
	if w.GetKey(glfw.KeySpace) == glfw.Press {
		dir = dir.Add(mgl32.Vec3{0, 1, 0})
	}
	if w.GetKey(glfw.KeyLeftShift) == glfw.Press {
		dir = dir.Sub(mgl32.Vec3{0, 1, 0})
	}
	return dir
}

func applyControls(mgr *chunks.Manager, gen *terrain.Composite, cam *graphics.Camera, ctl *controls, log *slog.Logger) {
	if ctl.rangesChanged {
		ctl.rangesChanged = false
		if err := mgr.SetRanges(config.GetLoadRange(), config.GetRemoveRange()); err != nil {
			log.Warn("view distance", "err", err)
		} else {
			log.Info("view distance", "chunks", config.GetViewDistance())
		}
	}
	if ctl.generatorDirty {
		ctl.generatorDirty = false
		if err := gen.SetActive(ctl.generator); err != nil {
			log.Warn("generator", "err", err)
		} else {
			config.SetGenerator(ctl.generator)
			log.Info("generator switched; chunks loaded from now on use it", "index", ctl.generator)
		}
	}
	if ctl.dig || ctl.place {
		hit, before, ok := pick(mgr, cam)
		switch {
		case !ok:
		case ctl.dig:
			if err := mgr.SetBlock(hit[0], hit[1], hit[2], world.BlockTypeAir); err != nil {
				log.Debug("dig", "err", err)
			}
		case ctl.place:
			if err := mgr.SetBlock(before[0], before[1], before[2], world.BlockTypeStone); err != nil {
				log.Debug("place", "err", err)
			}
		}
		ctl.dig, ctl.place = false, false
	}
}

// pick returns the block under the crosshair and the empty cell in front of it.
func pick(mgr *chunks.Manager, cam *graphics.Camera) (hit, before [3]int, ok bool) {
	solid := physics.SolidFunc(func(x, y, z int) bool {
		b, resident := mgr.BlockAt(x, y, z)
		return resident && b != world.BlockTypeAir
	})
	r := physics.Raycast(cam.Position, cam.Front(), physics.MinReachDistance, physics.MaxReachDistance, solid)
	return r.HitPosition, r.AdjacentPosition, r.Hit
}
