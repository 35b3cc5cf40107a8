package assets

import (
	"fmt"
	"sort"

	"github.com/sasha-s/go-deadlock"
)

// Factory constructs an empty resource ready to be deserialized.
type Factory func() Resource

var (
	ErrDuplicateExtension = fmt.Errorf("extension already registered")
	ErrUnknownExtension   = fmt.Errorf("no factory for extension")
)

// Registry maps file extensions to resource factories. Each resource type
// registers exactly one extension, once, while the process starts.
type Registry struct {
	factories map[string]Factory
	mutex     deadlock.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

func (r *Registry) Register(extension string, factory Factory) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.factories[extension]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateExtension, extension)
	}

	r.factories[extension] = factory
	return nil
}

// MustRegister is Register for start-up code, where a duplicate is a
// configuration error.
func (r *Registry) MustRegister(extension string, factory Factory) {
	if err := r.Register(extension, factory); err != nil {
		panic(err)
	}
}

func (r *Registry) Construct(extension string) (Resource, error) {
	r.mutex.RLock()
	factory, ok := r.factories[extension]
	r.mutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, extension)
	}

	resource := factory()
	resource.base().kind = extension
	return resource, nil
}

func (r *Registry) Has(extension string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.factories[extension]
	return ok
}

func (r *Registry) Extensions() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	extensions := make([]string, 0, len(r.factories))
	for extension := range r.factories {
		extensions = append(extensions, extension)
	}
	sort.Strings(extensions)
	return extensions
}
