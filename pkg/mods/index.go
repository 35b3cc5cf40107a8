package mods

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cfoust/modstore/pkg/assets"
	"github.com/cfoust/modstore/pkg/guid"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
)

// IndexFile caches a mod's mapping so it can be mounted without a walk. It
// lives in the mod's directory and is never treated as an asset.
const IndexFile = ".index"

var ErrBadIndex = fmt.Errorf("index does not match its paths")

type IndexEntry struct {
	_    struct{} `cbor:",toarray"`
	Id   uint64
	Path string
}

type Index struct {
	Mod     string
	Entries []IndexEntry
}

// Index returns a snapshot of the mapping, sorted by path.
func (m *Mod) Index() *Index {
	m.mutex.RLock()
	entries := make([]IndexEntry, 0, len(m.paths))
	for id, path := range m.paths {
		entries = append(entries, IndexEntry{
			Id:   uint64(id),
			Path: path,
		})
	}
	m.mutex.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	return &Index{
		Mod:     m.name,
		Entries: entries,
	}
}

func EncodeIndex(index *Index) ([]byte, error) {
	return cbor.Marshal(index)
}

func DecodeIndex(data []byte) (*Index, error) {
	var index Index
	if err := cbor.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

// WriteIndex stores the current mapping in the mod's IndexFile.
func (m *Mod) WriteIndex() error {
	data, err := EncodeIndex(m.Index())
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(m.Dir(), IndexFile), data, 0644)
}

// ReadIndex replaces the mapping with the contents of the mod's IndexFile.
// Every entry must still hash to its own identifier.
func (m *Mod) ReadIndex() error {
	data, err := os.ReadFile(filepath.Join(m.Dir(), IndexFile))
	if err != nil {
		return err
	}

	index, err := DecodeIndex(data)
	if err != nil {
		return fmt.Errorf("could not decode index of %s: %w", m.name, err)
	}

	if index.Mod != m.name {
		return fmt.Errorf("%w: index is for %q, not %q", ErrBadIndex, index.Mod, m.name)
	}

	paths := make(map[guid.GUID]string, len(index.Entries))
	for _, entry := range index.Entries {
		id := guid.GUID(entry.Id)
		if guid.Identify(entry.Path) != id || !m.owns(entry.Path) {
			return fmt.Errorf("%w: %s", ErrBadIndex, entry.Path)
		}
		paths[id] = entry.Path
	}

	m.mutex.Lock()
	m.paths = paths
	m.mutex.Unlock()
	return nil
}

// MountIndex mounts root/name from its IndexFile, falling back to a scan if
// there is no usable index.
func MountIndex(root string, name string, registry *assets.Registry) (*Mod, error) {
	mod := newMod(root, name, registry)
	err := mod.ReadIndex()
	if err == nil {
		return mod, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("mod", name).Msg("ignoring unusable index")
	}

	if err := mod.Scan(); err != nil {
		return nil, err
	}
	return mod, nil
}
