package mods

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cfoust/modstore/pkg/assets"
	"github.com/cfoust/modstore/pkg/guid"

	"github.com/repeale/fp-go/option"
	"github.com/rs/zerolog/log"
)

// InvalidPath is what GetPath returns for an identifier no mod knows about.
const InvalidPath = "<invalid>"

const DefaultMod = "default"

var (
	ErrNoDefault  = fmt.Errorf("default mod is not mounted")
	ErrUnknownMod = fmt.Errorf("no such mod")
)

type Options struct {
	// The mod that must be present. Defaults to DefaultMod.
	Default string
	// Mount from each mod's IndexFile when one exists.
	UseIndex bool
}

// Loader is the ordered set of mounted mods. Earlier mods shadow later ones.
// The set is fixed once the Loader is built; the mods' own mappings are not.
type Loader struct {
	root     string
	registry *assets.Registry
	mods     []*Mod
	byName   map[string]*Mod
}

// NewLoader mounts every directory directly below root, in directory order.
func NewLoader(root string, registry *assets.Registry, options Options) (*Loader, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("could not read content root: %w", err)
	}

	mods := make([]*Mod, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		var mod *Mod
		if options.UseIndex {
			mod, err = MountIndex(root, entry.Name(), registry)
		} else {
			mod, err = ScanDirectory(root, entry.Name(), registry)
		}
		if err != nil {
			return nil, err
		}

		log.Info().
			Str("mod", mod.Name()).
			Int("assets", mod.Len()).
			Msg("mounted mod")
		mods = append(mods, mod)
	}

	loader := NewLoaderFrom(root, registry, mods...)

	defaultMod := options.Default
	if defaultMod == "" {
		defaultMod = DefaultMod
	}
	if _, ok := loader.byName[defaultMod]; !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrNoDefault, defaultMod, root)
	}

	return loader, nil
}

// NewLoaderFrom builds a Loader over mods that are already mounted, in the
// given order.
func NewLoaderFrom(root string, registry *assets.Registry, mods ...*Mod) *Loader {
	byName := make(map[string]*Mod)
	for _, mod := range mods {
		if _, ok := byName[mod.Name()]; ok {
			continue
		}
		byName[mod.Name()] = mod
	}

	return &Loader{
		root:     root,
		registry: registry,
		mods:     mods,
		byName:   byName,
	}
}

func (l *Loader) Root() string {
	return l.root
}

func (l *Loader) Registry() *assets.Registry {
	return l.registry
}

func (l *Loader) Mods() []*Mod {
	return l.mods
}

func (l *Loader) Mod(name string) opt.Option[*Mod] {
	mod, ok := l.byName[name]
	if !ok {
		return opt.None[*Mod]()
	}
	return opt.Some(mod)
}

// Find returns the first mod that knows about id.
func (l *Loader) Find(id guid.GUID) opt.Option[*Mod] {
	for _, mod := range l.mods {
		if mod.Has(id) {
			return opt.Some(mod)
		}
	}
	return opt.None[*Mod]()
}

// TryLoad loads id from the first mod that has it. A failure in that mod is
// logged and not retried in later mods.
func (l *Loader) TryLoad(id guid.GUID) opt.Option[*assets.Ref] {
	mod := l.Find(id)
	if opt.IsNone(mod) {
		log.Debug().Stringer("guid", id).Msg("asset not in any mod")
		return opt.None[*assets.Ref]()
	}

	ref, err := mod.Value.Load(id)
	if err != nil {
		log.Error().
			Err(err).
			Stringer("guid", id).
			Str("mod", mod.Value.Name()).
			Msg("could not load asset")
		return opt.None[*assets.Ref]()
	}

	return opt.Some(ref)
}

// GetPath returns the content-root-relative path of id, or InvalidPath.
func (l *Loader) GetPath(id guid.GUID) string {
	mod := l.Find(id)
	if opt.IsNone(mod) {
		return InvalidPath
	}

	path, err := mod.Value.GetPath(id)
	if err != nil {
		return InvalidPath
	}
	return path
}

// FilePath returns where path lives on disk.
func (l *Loader) FilePath(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(path))
}

// Route returns the mounted mod named by the path's first segment.
func (l *Loader) Route(path string) (*Mod, error) {
	name := modName(path)
	mod, ok := l.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (from %s)", ErrUnknownMod, name, path)
	}
	return mod, nil
}

// AddPath tells the mod named by the path's first segment about a file that
// was just created.
func (l *Loader) AddPath(path string) error {
	mod, err := l.Route(path)
	if err != nil {
		return err
	}
	return mod.AddPath(path)
}

func (l *Loader) RemovePath(path string) error {
	mod, err := l.Route(path)
	if err != nil {
		return err
	}
	return mod.RemovePath(path)
}

// Rescan rebuilds every mod's mapping from disk.
func (l *Loader) Rescan() error {
	for _, mod := range l.mods {
		if err := mod.Scan(); err != nil {
			return err
		}
	}
	return nil
}
