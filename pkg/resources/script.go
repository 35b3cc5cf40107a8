package resources

import (
	"io"

	"github.com/cfoust/modstore/pkg/assets"
	"github.com/cfoust/modstore/pkg/stream"
)

// Script is plain source text; the file holds nothing else.
type Script struct {
	assets.Base
	Source string
}

func (s *Script) Serialize(out stream.Stream) error {
	_, err := io.WriteString(out, s.Source)
	return err
}

func (s *Script) Deserialize(in stream.Stream) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	s.Source = string(data)
	return nil
}
