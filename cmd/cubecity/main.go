package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"
	"time"

	"cubecity/internal/config"
	"cubecity/internal/terrain"

	"github.com/faiface/mainthread"
)

func init() {
	runtime.LockOSThread()
}

type options struct {
	configPath string
	atlasPath  string
	headless   bool
	duration   time.Duration
	speed      float64
	logLevel   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file (defaults apply when empty)")
	flag.StringVar(&opts.atlasPath, "atlas", "", "4x4 block atlas image; a procedural one is used when empty")
	flag.BoolVar(&opts.headless, "headless", false, "stream chunks without a window, using in-memory buffers")
	flag.DurationVar(&opts.duration, "duration", 0, "headless run time; 0 runs until interrupted")
	flag.Float64Var(&opts.speed, "speed", 24, "headless walk speed in blocks per second")
	flag.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			log.Error("loading config", "err", err)
			os.Exit(1)
		}
	}
	config.Apply(cfg)

	gen := terrain.NewDefault(cfg.Seed, cfg.Dims())
	if err := gen.SetActive(config.GetGenerator()); err != nil {
		log.Error("selecting generator", "err", err)
		os.Exit(1)
	}

	if opts.headless {
		runHeadless(cfg, gen, opts, log)
		return
	}

	var runErr error
	mainthread.Run(func() {
		runErr = runWindowed(cfg, gen, opts, log)
	})
	if runErr != nil {
		log.Error("demo stopped", "err", runErr)
		os.Exit(1)
	}
}
