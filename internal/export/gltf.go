// Package export writes chunk meshes to glTF so terrain can be inspected in
// external tools.
package export

import (
	"io"

	"cubecity/internal/meshing"
	"cubecity/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrNothingToExport is returned when every mesh handed to a Scene is empty.
var ErrNothingToExport = errors.New("export: no faces to export")

// Scene accumulates chunk meshes into one glTF document, one node per chunk.
type Scene struct {
	doc   *gltf.Document
	nodes int
}

func NewScene() *Scene {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "cubecity"
	return &Scene{doc: doc}
}

// Add copies mesh into the document as a node placed at origin. Empty meshes
// are skipped and reported as false. The mesh may be released afterwards.
func (s *Scene) Add(coord world.ChunkCoord, origin mgl32.Vec3, mesh *meshing.Mesh) bool {
	if mesh.Empty() {
		return false
	}
	verts := mesh.Vertices()
	positions := make([][3]float32, len(verts))
	uvs := make([][2]float32, len(verts))
	for i, v := range verts {
		positions[i] = v.Position
		// glTF puts v=0 at the top of the image.
		uvs[i] = [2]float32{v.UV.X(), 1 - v.UV.Y()}
	}
	indices := make([]uint32, len(mesh.Indices()))
	copy(indices, mesh.Indices())

	pos := modeler.WritePosition(s.doc, positions)
	uv := modeler.WriteTextureCoord(s.doc, uvs)
	idx := modeler.WriteIndices(s.doc, indices)

	s.doc.Meshes = append(s.doc.Meshes, &gltf.Mesh{
		Name: coord.String(),
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(idx),
			Attributes: map[string]uint32{
				gltf.POSITION:   pos,
				gltf.TEXCOORD_0: uv,
			},
		}},
	})
	s.doc.Nodes = append(s.doc.Nodes, &gltf.Node{
		Name:        coord.String(),
		Mesh:        gltf.Index(uint32(len(s.doc.Meshes) - 1)),
		Translation: [3]float32{origin.X(), origin.Y(), origin.Z()},
	})
	s.doc.Scenes[0].Nodes = append(s.doc.Scenes[0].Nodes, uint32(len(s.doc.Nodes)-1))
	s.nodes++
	return true
}

// Len returns the number of chunk nodes added.
func (s *Scene) Len() int { return s.nodes }

// Document exposes the underlying glTF document.
func (s *Scene) Document() *gltf.Document { return s.doc }

// Encode writes the scene as binary glTF.
func (s *Scene) Encode(w io.Writer) error {
	if s.nodes == 0 {
		return ErrNothingToExport
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return errors.Wrap(enc.Encode(s.doc), "export: encode")
}

// Save writes the scene to path; the extension picks .gltf or .glb.
func (s *Scene) Save(path string) error {
	if s.nodes == 0 {
		return ErrNothingToExport
	}
	return errors.Wrapf(gltf.Save(s.doc, path), "export: save %s", path)
}
