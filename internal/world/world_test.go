package world

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestChunkFromWorldFloors(t *testing.T) {
	d := DefaultDims
	cases := []struct {
		pos  mgl32.Vec3
		want ChunkCoord
	}{
		{mgl32.Vec3{0, 50, 0}, ChunkCoord{0, 0}},
		{mgl32.Vec3{15.9, 0, 15.9}, ChunkCoord{0, 0}},
		{mgl32.Vec3{16, 0, 31.99}, ChunkCoord{1, 1}},
		{mgl32.Vec3{-0.1, 0, -16}, ChunkCoord{-1, -1}},
		{mgl32.Vec3{-16.01, 0, 3}, ChunkCoord{-2, 0}},
	}
	for _, c := range cases {
		if got := ChunkFromWorld(c.pos, d); got != c.want {
			t.Errorf("ChunkFromWorld(%v) = %v, want %v", c.pos, got, c.want)
		}
	}
}

func TestSplitWorld(t *testing.T) {
	c, lx, lz := SplitWorld(-1, 17, DefaultDims)
	if c != (ChunkCoord{-1, 1}) || lx != 15 || lz != 1 {
		t.Fatalf("SplitWorld(-1,17) = %v %d %d", c, lx, lz)
	}
}

func TestTrackerExample(t *testing.T) {
	tr, err := NewRangeTracker(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	tr.Update(ChunkCoord{0, 0})
	if !tr.IsRequired(ChunkCoord{2, 0}) {
		t.Error("(2,0) should be required")
	}
	if tr.IsForDelete(ChunkCoord{2, 0}) {
		t.Error("(2,0) should not be for delete")
	}
	if !tr.IsForDelete(ChunkCoord{5, 0}) {
		t.Error("(5,0) should be for delete")
	}
	if tr.IsRequired(ChunkCoord{3, 3}) || tr.IsForDelete(ChunkCoord{3, 3}) {
		t.Error("(3,3) lies in the hysteresis band")
	}
}

func TestTrackerPredicatesExclusive(t *testing.T) {
	for load := 0; load <= 4; load++ {
		for remove := load; remove <= 6; remove++ {
			tr, err := NewRangeTracker(load, remove)
			if err != nil {
				t.Fatal(err)
			}
			for _, ref := range []ChunkCoord{{0, 0}, {-3, 7}, {100, -100}} {
				tr.Update(ref)
				for dx := -remove - 2; dx <= remove+2; dx++ {
					for dz := -remove - 2; dz <= remove+2; dz++ {
						c := ref.Add(dx, dz)
						if tr.IsRequired(c) && tr.IsForDelete(c) {
							t.Fatalf("load=%d remove=%d ref=%v c=%v both required and for delete", load, remove, ref, c)
						}
					}
				}
			}
		}
	}
}

func TestTrackerRejectsInvertedRanges(t *testing.T) {
	if _, err := NewRangeTracker(5, 4); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
	if _, err := NewRangeTracker(-1, 4); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
}

func TestTrackerUpdateReportsChange(t *testing.T) {
	tr, _ := NewRangeTracker(1, 2)
	if tr.Update(ChunkCoord{}) {
		t.Error("origin is the initial reference")
	}
	if !tr.Update(ChunkCoord{1, 0}) {
		t.Error("moving the reference should report a change")
	}
	if tr.Reference() != (ChunkCoord{1, 0}) {
		t.Errorf("Reference() = %v", tr.Reference())
	}
}

func TestRequiredCoordsRings(t *testing.T) {
	tr, _ := NewRangeTracker(3, 5)
	tr.Update(ChunkCoord{10, -4})
	coords := tr.RequiredCoords()
	if len(coords) != 49 {
		t.Fatalf("len = %d, want 49", len(coords))
	}
	seen := make(map[ChunkCoord]bool)
	last := 0
	for _, c := range coords {
		if seen[c] {
			t.Fatalf("duplicate %v", c)
		}
		seen[c] = true
		if !tr.IsRequired(c) {
			t.Fatalf("%v listed but not required", c)
		}
		d := Chebyshev(tr.Reference(), c)
		if d < last {
			t.Fatalf("ring order violated at %v", c)
		}
		last = d
	}
}

func TestGridAccess(t *testing.T) {
	d := Dims{X: 4, Y: 8, Z: 2}
	g, err := NewBlockGrid(d, make([]BlockType, 100))
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Blocks()) != d.Volume() {
		t.Fatalf("grid len = %d, want %d", len(g.Blocks()), d.Volume())
	}
	if !g.Set(3, 7, 1, BlockTypeSand) {
		t.Fatal("Set in bounds failed")
	}
	if g.Set(4, 0, 0, BlockTypeSand) {
		t.Fatal("Set out of bounds succeeded")
	}
	if g.At(3, 7, 1) != BlockTypeSand || g.At(-1, 0, 0) != BlockTypeAir {
		t.Fatal("At mismatch")
	}
	g.FillColumn(0, 0, -3, 100, BlockTypeStone)
	if g.SolidCount() != 1+d.Y {
		t.Fatalf("SolidCount = %d", g.SolidCount())
	}
}

func TestGridShapeMismatch(t *testing.T) {
	if _, err := NewBlockGrid(DefaultDims, make([]BlockType, 10)); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
	a, _ := NewBlockGrid(Dims{2, 2, 2}, make([]BlockType, 8))
	b, _ := NewBlockGrid(Dims{2, 4, 1}, make([]BlockType, 8))
	if err := a.CopyFrom(b); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("CopyFrom err = %v", err)
	}
}

func TestGridArenaZeroes(t *testing.T) {
	arena := NewGridArena(1024)
	h := arena.Get(DefaultDims.Volume())
	g := GridFromHandle(h, DefaultDims)
	g.FillColumn(3, 3, 0, 64, BlockTypeDirt)
	h.Release()

	h2 := arena.Get(DefaultDims.Volume())
	defer h2.Release()
	if n := GridFromHandle(h2, DefaultDims).SolidCount(); n != 0 {
		t.Fatalf("reused grid has %d solid blocks", n)
	}
}

func TestDefaultBlocks(t *testing.T) {
	r := DefaultBlocks()
	if r.TextureID(BlockTypeDirt, FaceTop) != 11 || r.TextureID(BlockTypeDirt, FaceBottom) != 13 {
		t.Error("dirt textures")
	}
	if r.TextureID(BlockType(999), FaceTop) != 0 {
		t.Error("unknown blocks map to texture 0")
	}
	if _, err := NewBlockRegistry(BlockDefinition{ID: 1}, BlockDefinition{ID: 1}); err == nil {
		t.Error("duplicate ids should be rejected")
	}
}
