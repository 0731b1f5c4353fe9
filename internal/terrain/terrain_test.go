package terrain

import (
	"errors"
	"sync"
	"testing"

	"cubecity/internal/world"
)

func newGrid(t testing.TB, d world.Dims) *world.BlockGrid {
	t.Helper()
	g, err := world.NewBlockGrid(d, make([]world.BlockType, d.Volume()))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestFlatColumnLayout(t *testing.T) {
	d := world.Dims{X: 2, Y: 32, Z: 2}
	g := newGrid(t, d)
	NewFlat(20).Generate(world.ChunkCoord{}, g)

	for y := 0; y < hardRockLevel; y++ {
		if g.At(1, y, 1) != world.BlockTypeHardRock {
			t.Fatalf("y=%d: %v, want hard rock", y, g.At(1, y, 1))
		}
	}
	for y := hardRockLevel; y < 19; y++ {
		if g.At(1, y, 1) != world.BlockTypeStone {
			t.Fatalf("y=%d: %v, want stone", y, g.At(1, y, 1))
		}
	}
	if g.At(1, 19, 1) != world.BlockTypeDirt {
		t.Fatalf("cap = %v, want dirt", g.At(1, 19, 1))
	}
	if g.At(1, 20, 1) != world.BlockTypeAir {
		t.Fatal("above the surface should be air")
	}
}

func TestFlatSolidHeight(t *testing.T) {
	tests := []struct {
		height int
		solid  int
		top    world.BlockType
	}{
		{height: 10, solid: 9, top: world.BlockTypeStone},
		{height: dirtCapLevel, solid: dirtCapLevel - 1, top: world.BlockTypeStone},
		{height: dirtCapLevel + 1, solid: dirtCapLevel + 1, top: world.BlockTypeDirt},
	}
	for _, tt := range tests {
		g := newGrid(t, world.Dims{X: 1, Y: 32, Z: 1})
		NewFlat(tt.height).Generate(world.ChunkCoord{}, g)
		if g.SolidCount() != tt.solid {
			t.Errorf("height %d: SolidCount = %d, want %d", tt.height, g.SolidCount(), tt.solid)
		}
		if got := g.At(0, tt.solid-1, 0); got != tt.top {
			t.Errorf("height %d: top block = %v, want %v", tt.height, got, tt.top)
		}
		if g.At(0, tt.solid, 0) != world.BlockTypeAir {
			t.Errorf("height %d: y=%d not air", tt.height, tt.solid)
		}
	}
}

func TestColumnsNeverBelowMinimum(t *testing.T) {
	d := world.Dims{X: 1, Y: 16, Z: 1}
	g := newGrid(t, d)
	NewFlat(-10).Generate(world.ChunkCoord{}, g)
	if g.SolidCount() != minColumn-1 {
		t.Fatalf("SolidCount = %d, want %d", g.SolidCount(), minColumn-1)
	}
}

func TestGeneratorsDeterministic(t *testing.T) {
	d := world.Dims{X: 16, Y: 64, Z: 16}
	gens := map[string]func() Generator{
		"simplex": func() Generator { return NewSimplex(42) },
		"value":   func() Generator { return NewValueNoise(42) },
		"diamond": func() Generator { return NewDiamondSquare(42, d, 8) },
	}
	for name, mk := range gens {
		t.Run(name, func(t *testing.T) {
			a, b := newGrid(t, d), newGrid(t, d)
			c := world.ChunkCoord{X: -3, Z: 7}
			mk().Generate(c, a)
			mk().Generate(c, b)
			for i, v := range a.Blocks() {
				if b.Blocks()[i] != v {
					t.Fatalf("block %d differs: %v vs %v", i, v, b.Blocks()[i])
				}
			}
			if a.SolidCount() == 0 {
				t.Fatal("generator produced an empty chunk")
			}
		})
	}
}

func TestGenerateConcurrent(t *testing.T) {
	d := world.Dims{X: 16, Y: 64, Z: 16}
	gen := NewDefault(7, d)
	for i := range gen.Len() {
		if err := gen.SetActive(i); err != nil {
			t.Fatal(err)
		}
		want := newGrid(t, d)
		gen.Generate(world.ChunkCoord{X: 1, Z: 1}, want)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				g := newGrid(t, d)
				gen.Generate(world.ChunkCoord{X: 1, Z: 1}, g)
				for j, v := range g.Blocks() {
					if want.Blocks()[j] != v {
						t.Errorf("strategy %d: concurrent result differs at %d", i, j)
						return
					}
				}
			}()
		}
		wg.Wait()
	}
}

func TestCompositeSelect(t *testing.T) {
	d := world.Dims{X: 4, Y: 32, Z: 4}
	c := NewComposite(NewFlat(8), NewFlat(20))
	g := newGrid(t, d)
	c.Generate(world.ChunkCoord{}, g)
	if n := g.SolidCount(); n != 16*7 {
		t.Fatalf("strategy 0 solid = %d", n)
	}
	if err := c.SetActive(1); err != nil {
		t.Fatal(err)
	}
	if c.Active() != 1 {
		t.Fatalf("Active() = %d", c.Active())
	}
	if err := c.SetActive(2); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("SetActive(2) err = %v", err)
	}
}

func TestDiamondSquareTiles(t *testing.T) {
	d := world.Dims{X: 16, Y: 128, Z: 16}
	ds := NewDiamondSquare(3, d, 4)
	for _, p := range [][2]int{{0, 0}, {5, 9}, {63, 1}} {
		if ds.HeightAt(p[0], p[1]) != ds.HeightAt(p[0]+64, p[1]-64) {
			t.Fatalf("field does not tile at %v", p)
		}
	}
}

func BenchmarkSimplexChunk(b *testing.B) {
	g := newGrid(b, world.DefaultDims)
	gen := NewSimplex(1)
	for i := 0; i < b.N; i++ {
		clear(g.Blocks())
		gen.Generate(world.ChunkCoord{X: i % 32, Z: i / 32}, g)
	}
}
