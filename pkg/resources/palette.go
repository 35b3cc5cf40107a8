package resources

import (
	"github.com/cfoust/modstore/pkg/assets"
	"github.com/cfoust/modstore/pkg/stream"
)

const PALETTE_SIZE = 256

type Material struct {
	Color     [4]uint8
	Roughness float32
	Metalness float32
	Emission  float32
}

// Palette is the material table voxel volumes index into.
type Palette struct {
	assets.Base
	Materials [PALETTE_SIZE]Material

	atlas *PaletteAtlas
	slot  int
}

func NewPalette(atlas *PaletteAtlas) *Palette {
	return &Palette{
		atlas: atlas,
		slot:  -1,
	}
}

// Slot is the palette's row in the atlas, or -1 if it has none.
func (p *Palette) Slot() int {
	return p.slot
}

func (p *Palette) Serialize(s stream.Stream) error {
	return stream.Put(s, &p.Materials)
}

func (p *Palette) Deserialize(s stream.Stream) error {
	return stream.Get(s, &p.Materials)
}

func (p *Palette) PostLoad() error {
	if p.atlas == nil {
		return nil
	}

	slot, err := p.atlas.Allocate()
	if err != nil {
		return err
	}
	p.slot = slot
	return nil
}

func (p *Palette) Destroy() {
	if p.atlas == nil || p.slot == -1 {
		return
	}
	p.atlas.Free(p.slot)
	p.slot = -1
}

var _ assets.PostLoader = (*Palette)(nil)
var _ assets.Destroyer = (*Palette)(nil)
