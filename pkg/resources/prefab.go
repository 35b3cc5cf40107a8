package resources

import (
	"github.com/cfoust/modstore/pkg/assets"
	"github.com/cfoust/modstore/pkg/stream"
)

// Prefab is a named group of other assets. Children are stored by
// identifier only and resolved on demand.
type Prefab struct {
	assets.Base
	Name     string
	Children []assets.Slot
}

func (p *Prefab) Serialize(s stream.Stream) error {
	if err := stream.PutString(s, p.Name); err != nil {
		return err
	}

	if err := stream.Put(s, uint32(len(p.Children))); err != nil {
		return err
	}

	for _, child := range p.Children {
		if err := child.Marshal(s); err != nil {
			return err
		}
	}

	return nil
}

func (p *Prefab) Deserialize(s stream.Stream) error {
	name, err := stream.GetString(s)
	if err != nil {
		return err
	}

	var count uint32
	if err := stream.Get(s, &count); err != nil {
		return err
	}

	children := make([]assets.Slot, count)
	for i := range children {
		if err := children[i].Unmarshal(s); err != nil {
			return err
		}
	}

	p.Name = name
	p.Children = children
	return nil
}

// Destroy lets go of every child the prefab resolved.
func (p *Prefab) Destroy() {
	for i := range p.Children {
		p.Children[i].Release()
	}
}
