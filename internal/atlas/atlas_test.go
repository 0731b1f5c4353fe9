package atlas

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cubecity/internal/meshing"
)

func solid(size int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestComposePlacesTiles(t *testing.T) {
	tiles := make([]image.Image, Tiles)
	for i := range tiles {
		tiles[i] = solid(2, color.RGBA{uint8(i * 10), 0, 0, 255})
	}
	a, err := Compose(tiles, 4)
	if err != nil {
		t.Fatal(err)
	}
	if a.Bounds().Dx() != 16 || a.Bounds().Dy() != 16 {
		t.Fatalf("bounds = %v", a.Bounds())
	}
	for i := range tiles {
		r := TileRect(i, 4)
		if got := a.RGBAAt(r.Min.X+1, r.Min.Y+1).R; got != uint8(i*10) {
			t.Errorf("tile %d red = %d", i, got)
		}
	}
}

// The mesher's UVs for a tile must land inside that tile's pixels.
func TestTileRectMatchesUV(t *testing.T) {
	const tile = 8
	side := float32(tile * meshing.AtlasTiles)
	for id := range Tiles {
		r := TileRect(id, tile)
		uv := meshing.AtlasUV(id)
		// UV v grows upward; image y grows downward.
		cx := (uv[0].X() + uv[3].X()) / 2 * side
		cy := (1 - (uv[0].Y()+uv[3].Y())/2) * side
		if !image.Pt(int(cx), int(cy)).In(r) {
			t.Fatalf("tile %d: uv centre (%v,%v) outside %v", id, cx, cy, r)
		}
	}
}

func TestComposeTooMany(t *testing.T) {
	if _, err := Compose(make([]image.Image, Tiles+1), 4); !errors.Is(err, ErrTooManyTiles) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadRescales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, Procedural(4)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	a, err := Load(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	if a.Bounds().Dx() != 32 {
		t.Fatalf("width = %d", a.Bounds().Dx())
	}
}
