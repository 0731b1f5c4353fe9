// Package atlas builds the square block texture atlas the mesher's UVs index into.
package atlas

import (
	"image"
	"image/color"
	_ "image/png"
	"os"

	"cubecity/internal/meshing"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Tiles is the number of texture slots in the atlas.
const Tiles = meshing.AtlasTiles * meshing.AtlasTiles

// ErrTooManyTiles is returned when more tiles are given than the atlas holds.
var ErrTooManyTiles = errors.New("atlas: too many tiles")

// TileRect returns the pixel rectangle of tile id. Row 0 is the top of the image.
func TileRect(id, tileSize int) image.Rectangle {
	row := id / meshing.AtlasTiles
	col := id % meshing.AtlasTiles
	origin := image.Pt(col*tileSize, row*tileSize)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(tileSize, tileSize))}
}

// Compose scales each tile to tileSize and places tile i in slot i. Nil tiles
// leave their slot transparent.
func Compose(tiles []image.Image, tileSize int) (*image.RGBA, error) {
	if len(tiles) > Tiles {
		return nil, errors.Wrapf(ErrTooManyTiles, "%d > %d", len(tiles), Tiles)
	}
	side := tileSize * meshing.AtlasTiles
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	for i, t := range tiles {
		if t == nil {
			continue
		}
		draw.NearestNeighbor.Scale(dst, TileRect(i, tileSize), t, t.Bounds(), draw.Src, nil)
	}
	return dst, nil
}

// Load decodes an atlas image and rescales it so every tile is tileSize pixels.
func Load(path string, tileSize int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "atlas")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "atlas %s", path)
	}
	side := tileSize * meshing.AtlasTiles
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

// palette gives each slot a recognisable colour for the procedural atlas.
var palette = [Tiles]color.RGBA{
	{200, 60, 60, 255}, {60, 200, 60, 255}, {60, 60, 200, 255}, {200, 200, 60, 255},
	{200, 60, 200, 255}, {70, 70, 80, 255}, {220, 210, 150, 255}, {60, 200, 200, 255},
	{180, 140, 90, 255}, {120, 120, 120, 255}, {150, 110, 60, 255}, {90, 160, 60, 255},
	{130, 130, 130, 255}, {120, 85, 55, 255}, {110, 90, 60, 255}, {240, 240, 240, 255},
}

// Procedural returns a generated atlas with a flat colour and a darker border
// per tile, for runs without texture assets.
func Procedural(tileSize int) *image.RGBA {
	tiles := make([]image.Image, Tiles)
	for i, c := range palette {
		img := image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))
		border := color.RGBA{c.R / 2, c.G / 2, c.B / 2, 255}
		for y := range tileSize {
			for x := range tileSize {
				if x == 0 || y == 0 || x == tileSize-1 || y == tileSize-1 {
					img.SetRGBA(x, y, border)
				} else {
					img.SetRGBA(x, y, c)
				}
			}
		}
		tiles[i] = img
	}
	out, _ := Compose(tiles, tileSize)
	return out
}
