package stream

import (
	"bytes"
)

// Buffer is an in-memory Stream, for payloads that never touch the disk.
type Buffer struct {
	bytes.Buffer
	name string
}

func NewBuffer(name string, data []byte) *Buffer {
	buffer := &Buffer{name: name}
	buffer.Write(data)
	return buffer
}

func (b *Buffer) Name() string {
	return b.name
}

var _ Stream = (*Buffer)(nil)
