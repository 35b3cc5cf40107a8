package assets

import (
	"io"

	"github.com/cfoust/modstore/pkg/guid"
	"github.com/cfoust/modstore/pkg/stream"
	"github.com/rs/zerolog/log"
)

// Loader resolves an identifier to a Ref the caller owns. An unknown
// identifier yields an invalid Ref.
type Loader interface {
	Load(id guid.GUID) *Ref
}

type SlotState int

const (
	SlotUnset SlotState = iota
	SlotUnresolved
	SlotResolved
)

func (s SlotState) String() string {
	switch s {
	case SlotUnset:
		return "unset"
	case SlotUnresolved:
		return "unresolved"
	case SlotResolved:
		return "resolved"
	}
	return "unknown"
}

// Slot is a lazily resolved reference to an asset by identifier. Only the
// identifier is ever persisted.
//
// Once resolved, a Slot keeps its Ref until the identifier is replaced, even
// if the asset changes on disk in the meantime.
type Slot struct {
	id     guid.GUID
	cached *Ref
}

func NewSlot(id guid.GUID) Slot {
	return Slot{id: id}
}

func SlotFor(path string) Slot {
	return NewSlot(guid.Identify(path))
}

func (s *Slot) GUID() guid.GUID {
	return s.id
}

func (s *Slot) State() SlotState {
	switch {
	case s.cached.IsValid():
		return SlotResolved
	case s.id.IsNull():
		return SlotUnset
	default:
		return SlotUnresolved
	}
}

// Resolve returns the Ref the Slot points at, loading it on first use. The
// Ref stays owned by the Slot; Clone it to keep it past the next SetGUID.
//
// If the load fails the Slot forgets its identifier.
func (s *Slot) Resolve(loader Loader) *Ref {
	if s.cached.IsValid() {
		return s.cached
	}

	if s.id.IsNull() {
		return &Ref{}
	}

	ref := loader.Load(s.id)
	if !ref.IsValid() {
		log.Error().Stringer("guid", s.id).Msg("could not resolve asset slot")
		s.id = guid.Null
		return &Ref{}
	}

	s.cached = ref
	return ref
}

// IsValid reports whether the Slot resolves to a resource that still
// carries the Slot's identifier. A deleted asset kept alive by the cached
// Ref has lost its identifier and is not valid.
func (s *Slot) IsValid(loader Loader) bool {
	ref := s.Resolve(loader)
	return ref.IsValid() && ref.GUID() == s.id
}

func (s *Slot) SetGUID(id guid.GUID) {
	s.Release()
	s.id = id
}

func (s *Slot) SetPath(path string) {
	s.SetGUID(guid.Identify(path))
}

// Release drops the cached Ref, if any, without touching the identifier.
func (s *Slot) Release() {
	if s.cached == nil {
		return
	}
	s.cached.Release()
	s.cached = nil
}

func (s Slot) Marshal(w io.Writer) error {
	return stream.Put(w, uint64(s.id))
}

func (s *Slot) Unmarshal(r io.Reader) error {
	var id uint64
	if err := stream.Get(r, &id); err != nil {
		return err
	}
	s.SetGUID(guid.GUID(id))
	return nil
}
