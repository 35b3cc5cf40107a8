package resources

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cfoust/modstore/pkg/assets"
	"github.com/cfoust/modstore/pkg/stream"

	"github.com/klauspost/compress/gzip"
)

// Volume is a dense grid of palette indices.
type Volume struct {
	assets.Base
	Size    [3]uint16
	Palette assets.Slot
	Voxels  []byte
}

func NewVolume(x, y, z uint16) *Volume {
	return &Volume{
		Size:   [3]uint16{x, y, z},
		Voxels: make([]byte, int(x)*int(y)*int(z)),
	}
}

func (v *Volume) index(x, y, z int) int {
	return x + int(v.Size[0])*(y+int(v.Size[1])*z)
}

func (v *Volume) At(x, y, z int) byte {
	return v.Voxels[v.index(x, y, z)]
}

func (v *Volume) SetAt(x, y, z int, value byte) {
	v.Voxels[v.index(x, y, z)] = value
}

func (v *Volume) expected() int {
	return int(v.Size[0]) * int(v.Size[1]) * int(v.Size[2])
}

func (v *Volume) Serialize(s stream.Stream) error {
	if len(v.Voxels) != v.expected() {
		return fmt.Errorf("volume has %d voxels, expected %d", len(v.Voxels), v.expected())
	}

	if err := stream.Put(s, v.Size); err != nil {
		return err
	}

	if err := v.Palette.Marshal(s); err != nil {
		return err
	}

	var buffer bytes.Buffer
	gz := gzip.NewWriter(&buffer)
	if _, err := gz.Write(v.Voxels); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	return stream.PutBytes(s, buffer.Bytes())
}

func (v *Volume) Deserialize(s stream.Stream) error {
	if err := stream.Get(s, &v.Size); err != nil {
		return err
	}

	if err := v.Palette.Unmarshal(s); err != nil {
		return err
	}

	compressed, err := stream.GetBytes(s)
	if err != nil {
		return err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return err
	}
	defer gz.Close()

	// One byte past the expected size is enough to notice a bad payload.
	voxels, err := io.ReadAll(io.LimitReader(gz, int64(v.expected())+1))
	if err != nil {
		return err
	}

	v.Voxels = voxels
	if len(voxels) != v.expected() {
		return fmt.Errorf("volume has %d voxels, expected %d", len(voxels), v.expected())
	}

	return nil
}

func (v *Volume) Destroy() {
	v.Palette.Release()
}
