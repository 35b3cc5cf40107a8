package assets

import (
	"fmt"

	"github.com/cfoust/modstore/pkg/stream"
)

// Load constructs the resource type registered for the stream's extension
// and reads it from the stream. The returned Ref is the only reference.
func (r *Registry) Load(s stream.Stream) (*Ref, error) {
	resource, err := r.Construct(stream.Extension(s.Name()))
	if err != nil {
		return nil, err
	}

	err = resource.Deserialize(s)
	if err != nil {
		return nil, fmt.Errorf("could not deserialize %s: %w", s.Name(), err)
	}

	if loader, ok := resource.(PostLoader); ok {
		err = loader.PostLoad()
		if err != nil {
			return nil, fmt.Errorf("post-load of %s failed: %w", s.Name(), err)
		}
	}

	return NewRef(resource), nil
}

// Save writes the resource behind ref to the stream.
func Save(ref *Ref, s stream.Stream) error {
	return SaveResource(ref.Get(), s)
}

// SaveResource writes resource to the stream. A resource that was never
// loaded takes its type from the stream's extension.
func SaveResource(resource Resource, s stream.Stream) error {
	base := resource.base()
	if base.kind == "" {
		base.kind = stream.Extension(s.Name())
	}

	err := resource.Serialize(s)
	if err != nil {
		return fmt.Errorf("could not serialize %s: %w", s.Name(), err)
	}

	return nil
}
