// Package resources holds the asset types the engine ships with.
package resources

import (
	"github.com/cfoust/modstore/pkg/assets"
)

const (
	PALETTE_EXTENSION = "p"
	PREFAB_EXTENSION  = "pf"
	SCRIPT_EXTENSION  = "wren"
	VOLUME_EXTENSION  = "v"
)

// Register adds every built-in type to registry. Loaded palettes take their
// rows from atlas.
func Register(registry *assets.Registry, atlas *PaletteAtlas) error {
	factories := []struct {
		extension string
		factory   assets.Factory
	}{
		{PALETTE_EXTENSION, func() assets.Resource { return NewPalette(atlas) }},
		{PREFAB_EXTENSION, func() assets.Resource { return &Prefab{} }},
		{SCRIPT_EXTENSION, func() assets.Resource { return &Script{} }},
		{VOLUME_EXTENSION, func() assets.Resource { return &Volume{} }},
	}

	for _, entry := range factories {
		if err := registry.Register(entry.extension, entry.factory); err != nil {
			return err
		}
	}

	return nil
}
