package assets

import (
	"fmt"
	"testing"

	"github.com/cfoust/modstore/pkg/guid"
	"github.com/cfoust/modstore/pkg/stream"
	"github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	Base
	Text      string
	destroyed *int
	loaded    bool
}

func (n *note) Serialize(s stream.Stream) error {
	return stream.PutString(s, n.Text)
}

func (n *note) Deserialize(s stream.Stream) error {
	text, err := stream.GetString(s)
	if err != nil {
		return err
	}
	n.Text = text
	return nil
}

func (n *note) PostLoad() error {
	n.loaded = true
	return nil
}

func (n *note) Destroy() {
	if n.destroyed != nil {
		*n.destroyed++
	}
}

type other struct {
	Base
}

func (o *other) Serialize(s stream.Stream) error   { return nil }
func (o *other) Deserialize(s stream.Stream) error { return stream.ErrUnsupported }

func TestRefLifecycle(t *testing.T) {
	destroyed := 0
	resource := &note{destroyed: &destroyed}
	assert.Equal(t, int32(0), resource.RefCount())

	ref := NewRef(resource)
	assert.True(t, ref.IsValid())
	assert.Equal(t, int32(1), resource.RefCount())

	ref.Release()
	assert.False(t, ref.IsValid())
	assert.Equal(t, 1, destroyed)

	// Releasing twice is harmless
	ref.Release()
	assert.Equal(t, 1, destroyed)
}

func TestRefDropOrder(t *testing.T) {
	for first := 0; first < 3; first++ {
		destroyed := 0
		resource := &note{destroyed: &destroyed}

		root := NewRef(resource)
		refs := []*Ref{root, root.Clone(), root.Clone()}
		assert.Equal(t, int32(3), resource.RefCount())

		order := []int{first, (first + 1) % 3, (first + 2) % 3}
		for i, index := range order {
			refs[index].Release()
			if i < 2 {
				assert.Equal(t, 0, destroyed, "destroyed too early")
			}
		}
		assert.Equal(t, 1, destroyed)
	}
}

func TestRefSet(t *testing.T) {
	destroyedA := 0
	destroyedB := 0
	a := NewRef(&note{destroyed: &destroyedA})
	b := NewRef(&note{destroyed: &destroyedB})

	// Self assignment never drops the count to zero
	a.Set(a)
	assert.True(t, a.IsValid())
	assert.Equal(t, int32(1), a.Get().RefCount())
	assert.Equal(t, 0, destroyedA)

	target := a.Clone()
	target.Set(b)
	assert.Equal(t, int32(1), a.Get().RefCount())
	assert.Equal(t, int32(2), b.Get().RefCount())

	a.Release()
	assert.Equal(t, 1, destroyedA)

	// Chained reassignment onto an invalid Ref
	target.Set(&Ref{})
	assert.False(t, target.IsValid())
	assert.Equal(t, 0, destroyedB)

	b.Release()
	assert.Equal(t, 1, destroyedB)
}

func TestInvalidRef(t *testing.T) {
	var ref *Ref
	assert.False(t, ref.IsValid())
	assert.Equal(t, guid.Null, ref.GUID())
	assert.Panics(t, func() { ref.Get() })
	assert.Panics(t, func() { (&Ref{}).Get() })
	assert.False(t, (&Ref{}).Clone().IsValid())
	assert.False(t, NewRef(nil).IsValid())
}

func TestTyped(t *testing.T) {
	ref := NewRef(&note{Text: "hi"})
	defer ref.Release()

	typed := As[*note](ref)
	assert.Equal(t, "hi", typed.Get().Text)
	assert.Equal(t, int32(2), ref.Get().RefCount())
	typed.Release()
	assert.Equal(t, int32(1), ref.Get().RefCount())
	assert.Panics(t, func() { typed.Get() })

	assert.Panics(t, func() { As[*other](ref) })
	assert.Panics(t, func() { As[*note](&Ref{}) })

	assert.True(t, opt.IsNone(TryAs[*other](ref)))
	assert.True(t, opt.IsNone(TryAs[*note](&Ref{})))

	found := TryAs[*note](ref)
	require.True(t, opt.IsSome(found))
	assert.Equal(t, "hi", found.Value.Get().Text)
	found.Value.Release()
}

func newRegistry(t *testing.T) *Registry {
	registry := NewRegistry()
	require.NoError(t, registry.Register("note", func() Resource { return &note{} }))
	require.NoError(t, registry.Register("other", func() Resource { return &other{} }))
	return registry
}

func TestRegistry(t *testing.T) {
	registry := newRegistry(t)
	assert.Equal(t, []string{"note", "other"}, registry.Extensions())
	assert.True(t, registry.Has("note"))

	err := registry.Register("note", func() Resource { return &other{} })
	assert.ErrorIs(t, err, ErrDuplicateExtension)
	assert.Panics(t, func() {
		registry.MustRegister("other", func() Resource { return &note{} })
	})

	resource, err := registry.Construct("note")
	require.NoError(t, err)
	assert.IsType(t, &note{}, resource)
	assert.Equal(t, "note", resource.Type())

	_, err = registry.Construct("missing")
	assert.ErrorIs(t, err, ErrUnknownExtension)
}

func TestRegistryDuplicateAnyOrder(t *testing.T) {
	for _, order := range [][]string{{"a", "b"}, {"b", "a"}} {
		registry := NewRegistry()
		factories := map[string]Factory{
			"a": func() Resource { return &note{} },
			"b": func() Resource { return &other{} },
		}

		require.NoError(t, registry.Register("p", factories[order[0]]))
		assert.ErrorIs(t, registry.Register("p", factories[order[1]]), ErrDuplicateExtension)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	registry := newRegistry(t)

	buffer := stream.NewBuffer("default/greeting.note", nil)
	original := &note{Text: "hello world"}
	require.NoError(t, SaveResource(original, buffer))
	assert.Equal(t, "note", original.Type())

	ref, err := registry.Load(buffer)
	require.NoError(t, err)
	defer ref.Release()

	loaded := As[*note](ref)
	defer loaded.Release()
	assert.Equal(t, "hello world", loaded.Get().Text)
	assert.True(t, loaded.Get().loaded, "post-load hook should run")
	assert.Equal(t, guid.Null, loaded.GUID())

	out := stream.NewBuffer("copy.note", nil)
	require.NoError(t, Save(ref, out))
	assert.Zero(t, buffer.Len())
	assert.NotZero(t, out.Len())
}

func TestCodecFailures(t *testing.T) {
	registry := newRegistry(t)

	_, err := registry.Load(stream.NewBuffer("default/thing.unknown", nil))
	assert.ErrorIs(t, err, ErrUnknownExtension)

	_, err = registry.Load(stream.NewBuffer("default/thing.other", nil))
	assert.ErrorIs(t, err, stream.ErrUnsupported)

	// Truncated payload
	_, err = registry.Load(stream.NewBuffer("default/thing.note", []byte{5}))
	assert.Error(t, err)
}

type fakeLoader struct {
	resources map[guid.GUID]Resource
	calls     int
}

func (f *fakeLoader) Load(id guid.GUID) *Ref {
	f.calls++
	resource, ok := f.resources[id]
	if !ok {
		return &Ref{}
	}
	return NewRef(resource)
}

func TestSlotStates(t *testing.T) {
	id := guid.Identify("default/a.note")
	resource := &note{Text: "a"}
	resource.SetGUID(id)

	loader := &fakeLoader{resources: map[guid.GUID]Resource{id: resource}}

	var empty Slot
	assert.Equal(t, SlotUnset, empty.State())
	assert.False(t, empty.Resolve(loader).IsValid())
	assert.Equal(t, 0, loader.calls)

	slot := SlotFor("default/a.note")
	assert.Equal(t, SlotUnresolved, slot.State())

	first := slot.Resolve(loader)
	require.True(t, first.IsValid())
	assert.Equal(t, SlotResolved, slot.State())
	assert.Equal(t, 1, loader.calls)

	second := slot.Resolve(loader)
	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.calls, "resolved slot should not hit the loader")
	assert.True(t, slot.IsValid(loader))

	slot.SetPath("default/a.note")
	assert.Equal(t, SlotUnresolved, slot.State())
	assert.Equal(t, int32(0), resource.RefCount())

	slot.Resolve(loader)
	assert.Equal(t, 2, loader.calls)
	slot.Release()
	assert.Equal(t, SlotUnresolved, slot.State())
}

func TestSlotMissDemotes(t *testing.T) {
	loader := &fakeLoader{resources: map[guid.GUID]Resource{}}

	slot := SlotFor("default/missing.note")
	ref := slot.Resolve(loader)
	assert.False(t, ref.IsValid())
	assert.Equal(t, SlotUnset, slot.State())
	assert.Equal(t, guid.Null, slot.GUID())
	assert.False(t, slot.IsValid(loader))
	assert.Equal(t, 1, loader.calls)
}

func TestSlotStaleResource(t *testing.T) {
	id := guid.Identify("default/a.note")
	resource := &note{Text: "a"}
	resource.SetGUID(id)
	loader := &fakeLoader{resources: map[guid.GUID]Resource{id: resource}}

	slot := NewSlot(id)
	require.True(t, slot.IsValid(loader))

	// Deleting the asset orphans the resource the slot still holds.
	resource.SetGUID(guid.Null)
	assert.Equal(t, SlotResolved, slot.State())
	assert.False(t, slot.IsValid(loader))
	slot.Release()
}

func TestSlotSerialization(t *testing.T) {
	id := guid.Identify("default/a.note")
	resource := &note{}
	resource.SetGUID(id)
	loader := &fakeLoader{resources: map[guid.GUID]Resource{id: resource}}

	slot := NewSlot(id)
	slot.Resolve(loader)

	buffer := stream.NewBuffer("slot", nil)
	require.NoError(t, slot.Marshal(buffer))
	assert.Equal(t, 8, buffer.Len(), "only the identifier is persisted")

	var restored Slot
	require.NoError(t, restored.Unmarshal(buffer))
	assert.Equal(t, id, restored.GUID())
	assert.Equal(t, SlotUnresolved, restored.State())
	slot.Release()
}

func TestRefString(t *testing.T) {
	resource := &note{}
	resource.SetGUID(guid.Identify("default/a.note"))
	ref := NewRef(resource)
	defer ref.Release()

	assert.Equal(t, "<invalid>", (&Ref{}).String())
	assert.Equal(t, fmt.Sprintf("%s (, refs=1)", resource.GUID()), ref.String())
}
