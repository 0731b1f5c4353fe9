// Command chunkexport generates chunks around a coordinate with one terrain
// strategy and writes their meshes to a glTF file.
package main

import (
	"flag"
	"log/slog"
	"os"

	"cubecity/internal/config"
	"cubecity/internal/export"
	"cubecity/internal/meshing"
	"cubecity/internal/terrain"
	"cubecity/internal/world"

	"github.com/pkg/errors"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	out := flag.String("out", "chunk.glb", "output file; .gltf writes JSON, .glb binary")
	strategy := flag.Int("generator", -1, "terrain strategy index; -1 uses the config value")
	cx := flag.Int("x", 0, "chunk x")
	cz := flag.Int("z", 0, "chunk z")
	radius := flag.Int("radius", 0, "also export chunks up to this Chebyshev distance")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Error("loading config", "err", err)
			os.Exit(1)
		}
	}
	if *strategy >= 0 {
		cfg.Generator = *strategy
	}

	n, err := run(cfg, world.ChunkCoord{X: *cx, Z: *cz}, *radius, *out)
	if err != nil {
		log.Error("export failed", "err", err)
		os.Exit(1)
	}
	log.Info("exported", "chunks", n, "file", *out)
}

func run(cfg config.Config, center world.ChunkCoord, radius int, out string) (int, error) {
	dims := cfg.Dims()
	gen := terrain.NewDefault(cfg.Seed, dims)
	if err := gen.SetActive(cfg.Generator); err != nil {
		return 0, err
	}
	tracker, err := world.NewRangeTracker(radius, radius)
	if err != nil {
		return 0, err
	}
	tracker.Update(center)

	grids := world.NewGridArena(cfg.BucketGranularity)
	builder := meshing.NewBuilder(world.DefaultBlocks(), meshing.NewArenas(cfg.BucketGranularity))
	scene := export.NewScene()

	for _, c := range tracker.RequiredCoords() {
		h := grids.Get(dims.Volume())
		grid := world.GridFromHandle(h, dims)
		gen.Generate(c, grid)
		mesh := builder.Build(grid)
		h.Release()
		scene.Add(c, c.Origin(dims), mesh)
		mesh.Release()
	}
	if err := scene.Save(out); err != nil {
		return 0, errors.WithStack(err)
	}
	return scene.Len(), nil
}
