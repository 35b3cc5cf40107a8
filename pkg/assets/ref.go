package assets

import (
	"fmt"

	"github.com/cfoust/modstore/pkg/guid"
	"github.com/repeale/fp-go/option"
)

// Ref is an owning handle to a Resource. Every valid Ref holds one
// reference; the resource is destroyed the moment the last one is released.
//
// A single Ref value is not safe for concurrent use, but distinct Refs to
// the same resource are.
type Ref struct {
	resource Resource
}

// NewRef takes a new reference to resource. A nil resource gives an invalid
// Ref.
func NewRef(resource Resource) *Ref {
	if resource == nil {
		return &Ref{}
	}

	resource.base().acquire()
	return &Ref{resource: resource}
}

func (r *Ref) IsValid() bool {
	return r != nil && r.resource != nil
}

// Get returns the resource. Calling it on an invalid Ref is a programming
// error and panics.
func (r *Ref) Get() Resource {
	if !r.IsValid() {
		panic("assets: dereferenced an invalid Ref")
	}
	return r.resource
}

// GUID is Null for an invalid Ref or a transient resource.
func (r *Ref) GUID() guid.GUID {
	if !r.IsValid() {
		return guid.Null
	}
	return r.resource.GUID()
}

// Clone returns another owning Ref to the same resource.
func (r *Ref) Clone() *Ref {
	if !r.IsValid() {
		return &Ref{}
	}
	return NewRef(r.resource)
}

// Set points r at other's resource. The new target is acquired before the
// old one is released, so r.Set(r) never destroys anything.
func (r *Ref) Set(other *Ref) {
	var next Resource
	if other.IsValid() {
		next = other.resource
		next.base().acquire()
	}

	previous := r.resource
	r.resource = next

	if previous != nil {
		destroy(previous)
	}
}

// Release drops the reference and leaves r invalid. Releasing an invalid Ref
// does nothing.
func (r *Ref) Release() {
	if !r.IsValid() {
		return
	}

	previous := r.resource
	r.resource = nil
	destroy(previous)
}

func (r *Ref) String() string {
	if !r.IsValid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%s (%s, refs=%d)", r.resource.GUID(), r.resource.Type(), r.resource.RefCount())
}

// Typed is a Ref narrowed to one concrete resource type.
type Typed[T Resource] struct {
	ref   *Ref
	value T
}

// As takes a typed reference to ref's resource. It panics if ref is invalid
// or holds a different type.
func As[T Resource](ref *Ref) *Typed[T] {
	resource := ref.Get()

	value, ok := resource.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf(
			"assets: %s is a %T, not a %T",
			resource.GUID(),
			resource,
			zero,
		))
	}

	return &Typed[T]{
		ref:   ref.Clone(),
		value: value,
	}
}

// TryAs is As for callers probing unknown assets.
func TryAs[T Resource](ref *Ref) opt.Option[*Typed[T]] {
	if !ref.IsValid() {
		return opt.None[*Typed[T]]()
	}

	if _, ok := ref.resource.(T); !ok {
		return opt.None[*Typed[T]]()
	}

	return opt.Some(As[T](ref))
}

func (t *Typed[T]) IsValid() bool {
	return t != nil && t.ref.IsValid()
}

func (t *Typed[T]) Get() T {
	if !t.IsValid() {
		panic("assets: dereferenced an invalid Ref")
	}
	return t.value
}

func (t *Typed[T]) GUID() guid.GUID {
	if !t.IsValid() {
		return guid.Null
	}
	return t.ref.GUID()
}

// Ref returns an untyped Ref that shares ownership with t.
func (t *Typed[T]) Ref() *Ref {
	if !t.IsValid() {
		return &Ref{}
	}
	return t.ref.Clone()
}

func (t *Typed[T]) Release() {
	if t == nil {
		return
	}
	t.ref.Release()
}
