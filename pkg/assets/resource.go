package assets

import (
	"fmt"
	"sync/atomic"

	"github.com/cfoust/modstore/pkg/guid"
	"github.com/cfoust/modstore/pkg/stream"
)

// Resource is a typed, reference-counted asset payload. Concrete types embed
// Base and implement their own byte layout.
type Resource interface {
	GUID() guid.GUID
	SetGUID(id guid.GUID)
	Type() string
	RefCount() int32

	Serialize(s stream.Stream) error
	Deserialize(s stream.Stream) error

	base() *Base
}

// PostLoader is implemented by resources that must do extra work after
// being read, such as registering in a shared index.
type PostLoader interface {
	PostLoad() error
}

// Destroyer is implemented by resources that hold something outside of Go's
// heap. Destroy is called synchronously when the last Ref is released.
type Destroyer interface {
	Destroy()
}

// Base carries the bookkeeping shared by every resource.
type Base struct {
	id    atomic.Uint64
	refs  atomic.Int32
	kind  string
}

func (b *Base) base() *Base {
	return b
}

func (b *Base) GUID() guid.GUID {
	return guid.GUID(b.id.Load())
}

// SetGUID is reserved for the asset store, which assigns an identifier when
// a resource is loaded or created and clears it when the asset is deleted.
func (b *Base) SetGUID(id guid.GUID) {
	b.id.Store(uint64(id))
}

// Type is the extension the resource was registered under. It is empty for
// a resource that was neither loaded nor saved yet.
func (b *Base) Type() string {
	return b.kind
}

func (b *Base) RefCount() int32 {
	return b.refs.Load()
}

func (b *Base) acquire() {
	b.refs.Add(1)
}

// release reports whether this was the last reference.
func (b *Base) release() bool {
	count := b.refs.Add(-1)
	if count < 0 {
		panic(fmt.Sprintf("assets: reference count of %s dropped below zero", b.GUID()))
	}
	return count == 0
}

func destroy(resource Resource) {
	if !resource.base().release() {
		return
	}

	if destroyer, ok := resource.(Destroyer); ok {
		destroyer.Destroy()
	}
}
