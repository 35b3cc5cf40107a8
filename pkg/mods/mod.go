package mods

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cfoust/modstore/pkg/assets"
	"github.com/cfoust/modstore/pkg/guid"
	"github.com/cfoust/modstore/pkg/stream"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

var (
	ErrNotFound   = fmt.Errorf("asset not found in mod")
	ErrNotTracked = fmt.Errorf("path not tracked by mod")
	ErrWrongMod   = fmt.Errorf("path belongs to another mod")
)

// A Mod is one mounted content package: a directory below the content root
// whose files are addressed by their path relative to that root, for example
// "default/island.pf".
type Mod struct {
	name     string
	root     string
	registry *assets.Registry

	// guid -> content-root-relative path
	paths map[guid.GUID]string
	mutex deadlock.RWMutex
}

func newMod(root string, name string, registry *assets.Registry) *Mod {
	return &Mod{
		name:     name,
		root:     root,
		registry: registry,
		paths:    make(map[guid.GUID]string),
	}
}

// ScanDirectory mounts root/name by walking it once.
func ScanDirectory(root string, name string, registry *assets.Registry) (*Mod, error) {
	mod := newMod(root, name, registry)
	if err := mod.Scan(); err != nil {
		return nil, err
	}
	return mod, nil
}

// Scan rebuilds the whole mapping from the files on disk. Use it after bulk
// changes made outside the store, such as an importer writing many files.
func (m *Mod) Scan() error {
	paths := make(map[guid.GUID]string)
	index := filepath.Join(m.Dir(), IndexFile)

	err := filepath.WalkDir(m.Dir(), func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() || path == index {
			return nil
		}

		relative, err := filepath.Rel(m.root, path)
		if err != nil {
			return err
		}

		relative = filepath.ToSlash(relative)
		paths[guid.Identify(relative)] = relative
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not scan mod %s: %w", m.name, err)
	}

	m.mutex.Lock()
	m.paths = paths
	m.mutex.Unlock()

	log.Debug().Str("mod", m.name).Int("assets", len(paths)).Msg("scanned mod")
	return nil
}

func (m *Mod) Name() string {
	return m.name
}

// Root is the content root the mod lives in.
func (m *Mod) Root() string {
	return m.root
}

// Dir is the mod's own directory.
func (m *Mod) Dir() string {
	return filepath.Join(m.root, m.name)
}

func (m *Mod) Has(id guid.GUID) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.paths[id]
	return ok
}

func (m *Mod) GetPath(id guid.GUID) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	path, ok := m.paths[id]
	if !ok {
		return "", fmt.Errorf("%w: %s in %s", ErrNotFound, id, m.name)
	}
	return path, nil
}

// Load reads the asset from disk. The returned Ref is the only reference to
// a fresh resource whose identifier is id.
func (m *Mod) Load(id guid.GUID) (*assets.Ref, error) {
	path, err := m.GetPath(id)
	if err != nil {
		return nil, err
	}

	file, err := stream.Open(m.root, path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer file.Close()

	ref, err := m.registry.Load(file)
	if err != nil {
		return nil, err
	}

	ref.Get().SetGUID(id)
	return ref, nil
}

func (m *Mod) owns(path string) bool {
	return strings.HasPrefix(path, m.name+"/")
}

// AddPath starts tracking a file that was just written below the mod.
func (m *Mod) AddPath(path string) error {
	path = guid.Clean(path)
	if !m.owns(path) {
		return fmt.Errorf("%w: %s is not in %s", ErrWrongMod, path, m.name)
	}

	if _, err := os.Stat(filepath.Join(m.root, filepath.FromSlash(path))); err != nil {
		return fmt.Errorf("could not add %s: %w", path, err)
	}

	m.mutex.Lock()
	m.paths[guid.Identify(path)] = path
	m.mutex.Unlock()
	return nil
}

func (m *Mod) RemovePath(path string) error {
	path = guid.Clean(path)
	id := guid.Identify(path)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.paths[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotTracked, path)
	}

	delete(m.paths, id)
	return nil
}

func (m *Mod) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.paths)
}

// Paths returns every tracked path in lexical order.
func (m *Mod) Paths() []string {
	m.mutex.RLock()
	paths := make([]string, 0, len(m.paths))
	for _, path := range m.paths {
		paths = append(paths, path)
	}
	m.mutex.RUnlock()

	sort.Strings(paths)
	return paths
}
