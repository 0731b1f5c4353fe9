package world

import (
	"fmt"

	"github.com/pkg/errors"
)

type BlockType uint16

const (
	BlockTypeAir BlockType = iota
	BlockTypeStone
	BlockTypeDirt
	BlockTypeWoodPlanks
	BlockTypeWood
	BlockTypeSand
	BlockTypeHardRock
)

// BlockFace identifies one of the six axis-aligned faces of a block.
type BlockFace int

const (
	FaceBack   BlockFace = iota // -Z
	FaceFront                   // +Z
	FaceTop                     // +Y
	FaceBottom                  // -Y
	FaceLeft                    // -X
	FaceRight                   // +X
)

// NumFaces is the number of faces on a block.
const NumFaces = 6

// Normal returns the unit offset pointing out of the face.
func (f BlockFace) Normal() (dx, dy, dz int) {
	switch f {
	case FaceBack:
		return 0, 0, -1
	case FaceFront:
		return 0, 0, 1
	case FaceTop:
		return 0, 1, 0
	case FaceBottom:
		return 0, -1, 0
	case FaceLeft:
		return -1, 0, 0
	case FaceRight:
		return 1, 0, 0
	}
	return 0, 0, 0
}

func (f BlockFace) String() string {
	switch f {
	case FaceBack:
		return "back"
	case FaceFront:
		return "front"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	}
	return fmt.Sprintf("face(%d)", int(f))
}

// BlockDefinition describes how a block type looks and behaves.
type BlockDefinition struct {
	ID          BlockType
	Name        string
	Solid       bool
	Transparent bool
	// Textures holds the atlas index per BlockFace.
	Textures [NumFaces]int
}

// BlockRegistry is an immutable lookup table from block id to definition.
// It is shared read-only between worker goroutines.
type BlockRegistry struct {
	defs []BlockDefinition
}

// NewBlockRegistry indexes the given definitions by ID. Gaps are filled with
// non-solid placeholders.
func NewBlockRegistry(defs ...BlockDefinition) (*BlockRegistry, error) {
	maxID := BlockTypeAir
	for _, d := range defs {
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	r := &BlockRegistry{defs: make([]BlockDefinition, int(maxID)+1)}
	seen := make(map[BlockType]bool, len(defs))
	for _, d := range defs {
		if seen[d.ID] {
			return nil, errors.Errorf("world: duplicate block id %d (%s)", d.ID, d.Name)
		}
		seen[d.ID] = true
		r.defs[d.ID] = d
	}
	return r, nil
}

// Lookup returns the definition for b.
func (r *BlockRegistry) Lookup(b BlockType) (BlockDefinition, bool) {
	if int(b) >= len(r.defs) {
		return BlockDefinition{}, false
	}
	return r.defs[b], true
}

// TextureID returns the atlas index used for face f of block b. Unknown blocks map to 0.
func (r *BlockRegistry) TextureID(b BlockType, f BlockFace) int {
	if int(b) >= len(r.defs) {
		return 0
	}
	return r.defs[b].Textures[f]
}

// Len returns the number of addressable block ids.
func (r *BlockRegistry) Len() int {
	return len(r.defs)
}

func uniform(tex int) [NumFaces]int {
	return [NumFaces]int{tex, tex, tex, tex, tex, tex}
}

// DefaultBlocks returns the stock block table.
func DefaultBlocks() *BlockRegistry {
	r, err := NewBlockRegistry(
		BlockDefinition{ID: BlockTypeAir, Name: "air", Transparent: true},
		BlockDefinition{ID: BlockTypeStone, Name: "stone", Solid: true, Textures: uniform(12)},
		BlockDefinition{ID: BlockTypeDirt, Name: "dirt", Solid: true,
			// back, front, top, bottom, left, right
			Textures: [NumFaces]int{14, 14, 11, 13, 14, 14}},
		BlockDefinition{ID: BlockTypeWoodPlanks, Name: "wood_planks", Solid: true, Textures: uniform(8)},
		BlockDefinition{ID: BlockTypeWood, Name: "wood", Solid: true,
			Textures: [NumFaces]int{11, 11, 10, 10, 11, 11}},
		BlockDefinition{ID: BlockTypeSand, Name: "sand", Solid: true, Textures: uniform(6)},
		BlockDefinition{ID: BlockTypeHardRock, Name: "hard_rock", Solid: true, Textures: uniform(5)},
	)
	if err != nil {
		panic(err)
	}
	return r
}
