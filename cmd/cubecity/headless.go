package main

import (
	"log/slog"
	"math"
	"os"
	"time"

	"cubecity/internal/chunks"
	"cubecity/internal/config"
	"cubecity/internal/gpu"
	"cubecity/internal/profiling"
	"cubecity/internal/terrain"
	"cubecity/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"
)

// runHeadless walks the viewpoint in a slow spiral with in-memory buffers and
// reports leaks on shutdown. It exits through closer on SIGINT or when
// opts.duration elapses.
func runHeadless(cfg config.Config, gen *terrain.Composite, opts options, log *slog.Logger) {
	mem := gpu.NewMemory()
	mgr, err := chunks.NewManager(cfg, chunks.Deps{
		Generator: gen,
		Blocks:    world.DefaultBlocks(),
		Factory:   mem,
		Logger:    log,
	})
	if err != nil {
		log.Error("starting manager", "err", err)
		os.Exit(1)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	closer.Bind(func() {
		close(stop)
		<-done
		mgr.Close()

		ms := mem.Stats()
		log.Info("soak finished",
			"installed", mgr.Stats().Installed,
			"uploaded_bytes", ms.UploadedBytes,
			"live_vertex_buffers", ms.LiveVertexBuffers,
			"live_index_buffers", ms.LiveIndexBuffers,
		)
		leaked := ms.LiveVertexBuffers != 0 || ms.LiveIndexBuffers != 0
		for _, st := range mgr.ArenaStats() {
			if st.Outstanding != 0 {
				log.Error("arena leak", "arena", st.Name, "outstanding", st.Outstanding)
				leaked = true
			}
		}
		if leaked {
			log.Error("resources leaked during soak")
			os.Exit(1)
		}
	})

	go soak(mgr, cfg, opts.speed, stop, done, log)
	if opts.duration > 0 {
		go func() {
			time.Sleep(opts.duration)
			closer.Close()
		}()
	}
	closer.Hold()
}

func soak(mgr *chunks.Manager, cfg config.Config, speed float64, stop <-chan struct{}, done chan<- struct{}, log *slog.Logger) {
	defer close(done)

	limiter := newFPSLimiter(cfg.TickRateHz)
	start := time.Now()
	lastReport := start
	for {
		select {
		case <-stop:
			return
		default:
		}
		profiling.ResetFrame()

		// Archimedean spiral: radius grows with distance walked.
		s := speed * time.Since(start).Seconds()
		theta := math.Sqrt(2 * s / 8)
		radius := 8 * theta
		pos := mgl32.Vec3{float32(radius * math.Cos(theta)), 0, float32(radius * math.Sin(theta))}
		mgr.Tick(pos)

		if time.Since(lastReport) >= time.Second {
			st := mgr.Stats()
			log.Info("soak",
				"chunk", mgr.Reference(),
				"records", st.Records,
				"resident", st.Resident,
				"generating", st.Generating,
				"discarded", st.Discarded,
				"saturated", st.Saturated,
				"faults", st.Faults,
			)
			log.Debug("counters", "values", profiling.Counters())
			lastReport = time.Now()
		}
		limiter.Wait()
	}
}
