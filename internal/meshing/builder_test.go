package meshing

import (
	"testing"

	"cubecity/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func newGrid(t testing.TB, d world.Dims) *world.BlockGrid {
	t.Helper()
	g, err := world.NewBlockGrid(d, make([]world.BlockType, d.Volume()))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func newBuilder() *Builder {
	return NewBuilder(world.DefaultBlocks(), NewArenas(1024))
}

func visibleFaces(g *world.BlockGrid, x, y, z int) int {
	n := 0
	for f := world.BlockFace(0); f < world.NumFaces; f++ {
		if faceVisible(g, x, y, z, f) {
			n++
		}
	}
	return n
}

func TestFaceCulling(t *testing.T) {
	d := world.Dims{X: 8, Y: 8, Z: 8}
	cases := []struct {
		name  string
		fill  func(g *world.BlockGrid)
		x, y  int
		z     int
		faces int
	}{
		{"floor isolated", func(g *world.BlockGrid) { g.Set(3, 0, 3, world.BlockTypeStone) }, 3, 0, 3, 5},
		{"one above floor", func(g *world.BlockGrid) { g.Set(3, 1, 3, world.BlockTypeStone) }, 3, 1, 3, 6},
		{"enclosed", func(g *world.BlockGrid) {
			for x := 2; x <= 4; x++ {
				for z := 2; z <= 4; z++ {
					g.FillColumn(x, z, 0, 3, world.BlockTypeStone)
				}
			}
		}, 3, 1, 3, 0},
		{"past horizontal edge", func(g *world.BlockGrid) { g.Set(0, 2, 7, world.BlockTypeDirt) }, 0, 2, 7, 6},
		{"top of grid", func(g *world.BlockGrid) { g.Set(4, 7, 4, world.BlockTypeDirt) }, 4, 7, 4, 6},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := newGrid(t, d)
			c.fill(g)
			if got := visibleFaces(g, c.x, c.y, c.z); got != c.faces {
				t.Fatalf("visible faces = %d, want %d", got, c.faces)
			}
		})
	}
}

func TestBuildCounts(t *testing.T) {
	d := world.Dims{X: 8, Y: 8, Z: 8}
	g := newGrid(t, d)
	for x := 2; x <= 4; x++ {
		for z := 2; z <= 4; z++ {
			g.FillColumn(x, z, 0, 3, world.BlockTypeStone)
		}
	}
	m := newBuilder().Build(g)
	defer m.Release()

	// 3x3x3 cube on the floor: four sides and the top, no bottom.
	want := 9 * 5
	if m.FaceCount() != want {
		t.Fatalf("faces = %d, want %d", m.FaceCount(), want)
	}
	if len(m.Vertices()) != want*VerticesPerFace || len(m.Indices()) != want*IndicesPerFace {
		t.Fatalf("vertices=%d indices=%d", len(m.Vertices()), len(m.Indices()))
	}
	for _, i := range m.Indices() {
		if int(i) >= len(m.Vertices()) {
			t.Fatalf("index %d out of range", i)
		}
	}
}

func TestEmptyGrid(t *testing.T) {
	m := newBuilder().Build(newGrid(t, world.Dims{X: 4, Y: 4, Z: 4}))
	defer m.Release()
	if !m.Empty() || len(m.Vertices()) != 0 || len(m.Indices()) != 0 {
		t.Fatalf("empty grid produced %d faces", m.FaceCount())
	}
}

func TestWindingPointsOutward(t *testing.T) {
	g := newGrid(t, world.Dims{X: 3, Y: 3, Z: 3})
	g.Set(1, 1, 1, world.BlockTypeStone)
	m := newBuilder().Build(g)
	defer m.Release()

	center := mgl32.Vec3{1.5, 1.5, 1.5}
	v := m.Vertices()
	idx := m.Indices()
	for tri := 0; tri < len(idx); tri += 3 {
		a, b, c := v[idx[tri]].Position, v[idx[tri+1]].Position, v[idx[tri+2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		out := a.Add(b).Add(c).Mul(1.0 / 3).Sub(center)
		if n.Dot(out) <= 0 {
			t.Fatalf("triangle %d (%v %v %v) faces inward", tri/3, a, b, c)
		}
	}
}

func TestAtlasUV(t *testing.T) {
	cases := []struct {
		id   int
		want [VerticesPerFace]mgl32.Vec2
	}{
		{0, [4]mgl32.Vec2{{0, 1}, {0, 0.75}, {0.25, 1}, {0.25, 0.75}}},
		{5, [4]mgl32.Vec2{{0.25, 0.75}, {0.25, 0.5}, {0.5, 0.75}, {0.5, 0.5}}},
		{15, [4]mgl32.Vec2{{0.75, 0.25}, {0.75, 0}, {1, 0.25}, {1, 0}}},
	}
	for _, c := range cases {
		got := AtlasUV(c.id)
		for i := range got {
			if !got[i].ApproxEqual(c.want[i]) {
				t.Errorf("AtlasUV(%d)[%d] = %v, want %v", c.id, i, got[i], c.want[i])
			}
		}
	}
}

func TestFaceTextures(t *testing.T) {
	g := newGrid(t, world.Dims{X: 3, Y: 3, Z: 3})
	g.Set(1, 1, 1, world.BlockTypeDirt)
	m := newBuilder().Build(g)
	defer m.Release()

	top := AtlasUV(11)
	found := false
	v := m.Vertices()
	for f := 0; f < m.FaceCount(); f++ {
		q := v[f*VerticesPerFace : (f+1)*VerticesPerFace]
		if q[0].Position.Y() == 2 && q[1].Position.Y() == 2 && q[2].Position.Y() == 2 {
			found = true
			for i := range q {
				if !q[i].UV.ApproxEqual(top[i]) {
					t.Fatalf("top face uv %v, want %v", q[i].UV, top[i])
				}
			}
		}
	}
	if !found {
		t.Fatal("no top face emitted")
	}
}

func TestBuildDeterministic(t *testing.T) {
	d := world.Dims{X: 16, Y: 32, Z: 16}
	g := newGrid(t, d)
	for x := range d.X {
		for z := range d.Z {
			g.FillColumn(x, z, 0, 4+(x*z)%20, world.BlockType(1+(x+z)%6))
		}
	}
	b := newBuilder()
	m1 := b.Build(g)
	m2 := b.Build(g)
	defer m1.Release()
	defer m2.Release()

	if m1.Digest() != m2.Digest() || m1.FaceCount() != m2.FaceCount() {
		t.Fatal("repeated builds differ")
	}
	for i, v := range m1.Vertices() {
		if m2.Vertices()[i] != v {
			t.Fatalf("vertex %d differs", i)
		}
	}

	g.Set(0, 31, 0, world.BlockTypeSand)
	m3 := b.Build(g)
	defer m3.Release()
	if m3.Digest() == m1.Digest() {
		t.Fatal("digest did not change after an edit")
	}
}

func TestScratchReturned(t *testing.T) {
	b := newBuilder()
	g := newGrid(t, world.Dims{X: 4, Y: 4, Z: 4})
	g.Set(0, 0, 0, world.BlockTypeStone)
	m := b.Build(g)
	for _, st := range b.Arenas().Stats()[:2] {
		if st.Outstanding != 0 {
			t.Fatalf("scratch still leased: %v", st)
		}
	}
	m.Release()
	for _, st := range b.Arenas().Stats() {
		if st.Outstanding != 0 {
			t.Fatalf("buffer still leased: %v", st)
		}
	}
}

func BenchmarkBuildFullSurface(b *testing.B) {
	d := world.DefaultDims
	g := newGrid(b, d)
	for x := range d.X {
		for z := range d.Z {
			g.FillColumn(x, z, 0, 40+(x+z)%8, world.BlockTypeStone)
		}
	}
	builder := newBuilder()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder.Build(g).Release()
	}
}
