// Package store is the process-wide asset cache. It hands out Refs by
// identifier and keeps the mounted mods in step with assets it creates or
// deletes.
package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/cfoust/modstore/pkg/assets"
	"github.com/cfoust/modstore/pkg/guid"
	"github.com/cfoust/modstore/pkg/mods"
	"github.com/cfoust/modstore/pkg/stream"

	"github.com/repeale/fp-go/option"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

var (
	ErrAlreadyPersisted = fmt.Errorf("resource already has an identifier")
	ErrNotPersisted     = fmt.Errorf("resource has no identifier")
	ErrMissingFile      = fmt.Errorf("asset file does not exist")
)

// Assets caches one Ref per identifier. Entries stay until the asset is
// deleted; nothing evicts them otherwise.
//
// Resources must not call back into Assets from Deserialize, PostLoad or
// Destroy.
type Assets struct {
	loader *mods.Loader
	cache  map[guid.GUID]*assets.Ref
	mutex  deadlock.Mutex
}

func New(loader *mods.Loader) *Assets {
	return &Assets{
		loader: loader,
		cache:  make(map[guid.GUID]*assets.Ref),
	}
}

func (a *Assets) Loader() *mods.Loader {
	return a.loader
}

// Load returns a new Ref to the asset, reading it from its mod on first
// use. Every call for the same identifier yields the same resource. The
// caller owns the returned Ref; an unknown identifier gives an invalid one.
func (a *Assets) Load(id guid.GUID) *assets.Ref {
	if id.IsNull() {
		return &assets.Ref{}
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if cached, ok := a.cache[id]; ok {
		return cached.Clone()
	}

	loaded := a.loader.TryLoad(id)
	if opt.IsNone(loaded) {
		return &assets.Ref{}
	}

	a.cache[id] = loaded.Value
	return loaded.Value.Clone()
}

func (a *Assets) LoadPath(path string) *assets.Ref {
	return a.Load(guid.Identify(path))
}

// CreateAsset persists a transient resource at path, which must start with
// the name of a mounted mod. The resource is cached under its new
// identifier. If anything fails, the file that was at path before, if any,
// is left as it was.
func (a *Assets) CreateAsset(resource assets.Resource, path string) error {
	if !resource.GUID().IsNull() {
		return fmt.Errorf("%w: %s", ErrAlreadyPersisted, resource.GUID())
	}

	path = guid.Clean(path)
	id := guid.Identify(path)

	if _, err := a.loader.Route(path); err != nil {
		return err
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	existed := mods.FileExists(a.loader.FilePath(path))

	resource.SetGUID(id)
	err := a.write(resource, path)
	if err != nil {
		resource.SetGUID(guid.Null)
		return err
	}

	err = a.loader.AddPath(path)
	if err != nil {
		resource.SetGUID(guid.Null)
		if !existed {
			os.Remove(a.loader.FilePath(path))
		}
		return err
	}

	// Whatever was cached at this path was just overwritten on disk.
	if previous, ok := a.cache[id]; ok && previous.Get() != resource {
		previous.Get().SetGUID(guid.Null)
		previous.Release()
	}
	a.cache[id] = assets.NewRef(resource)

	log.Info().Str("path", path).Stringer("guid", id).Msg("created asset")
	return nil
}

func (a *Assets) write(resource assets.Resource, path string) error {
	file, err := stream.Replace(a.loader.Root(), path)
	if err != nil {
		return err
	}

	err = assets.SaveResource(resource, file)
	if err != nil {
		file.Discard()
		return err
	}

	return file.Close()
}

// SaveAsset writes a resource back over its existing file.
func (a *Assets) SaveAsset(resource assets.Resource) error {
	id := resource.GUID()
	if id.IsNull() {
		return ErrNotPersisted
	}

	path := a.loader.GetPath(id)
	if path == mods.InvalidPath || !mods.FileExists(a.loader.FilePath(path)) {
		return fmt.Errorf("%w: %s", ErrMissingFile, id)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	err := a.write(resource, path)
	if err != nil {
		return err
	}

	log.Debug().Str("path", path).Stringer("guid", id).Msg("saved asset")
	return nil
}

// DeleteAsset removes the asset's file and forgets it. Refs held elsewhere
// keep the resource alive, but it no longer has an identifier and Load
// will not find it again.
func (a *Assets) DeleteAsset(id guid.GUID) error {
	path := a.loader.GetPath(id)

	a.mutex.Lock()
	if cached, ok := a.cache[id]; ok {
		delete(a.cache, id)
		cached.Get().SetGUID(guid.Null)
		cached.Release()
	}
	a.mutex.Unlock()

	if path == mods.InvalidPath {
		return fmt.Errorf("%w: %s", mods.ErrNotFound, id)
	}

	err := os.Remove(a.loader.FilePath(path))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	err = a.loader.RemovePath(path)
	if err != nil {
		return err
	}

	log.Info().Str("path", path).Stringer("guid", id).Msg("deleted asset")
	return nil
}

// GarbageCollect would drop cache entries nobody else references. The cache
// is unbounded on purpose, so this reclaims nothing.
func (a *Assets) GarbageCollect() int {
	log.Debug().Msg("asset garbage collection is not implemented")
	return 0
}

func (a *Assets) Cached(id guid.GUID) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	_, ok := a.cache[id]
	return ok
}

func (a *Assets) Len() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return len(a.cache)
}

var _ assets.Loader = (*Assets)(nil)
