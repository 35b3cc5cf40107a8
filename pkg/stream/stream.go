package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"strings"
)

// Stream is the byte source or sink a resource (de)serializes itself over.
// Name is the logical filename, which selects the resource type.
type Stream interface {
	io.Reader
	io.Writer
	Name() string
}

var ErrUnsupported = fmt.Errorf("unsupported stream operation")

// Extension returns the type tag of a logical filename: its extension
// without the leading dot.
func Extension(name string) string {
	return strings.TrimPrefix(path.Ext(strings.ReplaceAll(name, "\\", "/")), ".")
}

// Get reads fixed-size values in little-endian order.
func Get(s io.Reader, pieces ...interface{}) error {
	for _, piece := range pieces {
		err := binary.Read(s, binary.LittleEndian, piece)
		if err != nil {
			return err
		}
	}

	return nil
}

// Put writes fixed-size values in little-endian order.
func Put(s io.Writer, pieces ...interface{}) error {
	for _, piece := range pieces {
		err := binary.Write(s, binary.LittleEndian, piece)
		if err != nil {
			return err
		}
	}

	return nil
}

func GetString(s io.Reader) (string, error) {
	var length uint16
	if err := Get(s, &length); err != nil {
		return "", err
	}

	value := make([]byte, length)
	if _, err := io.ReadFull(s, value); err != nil {
		return "", err
	}

	return string(value), nil
}

func PutString(s io.Writer, value string) error {
	if len(value) > 0xFFFF {
		return fmt.Errorf("string too long: %d bytes", len(value))
	}

	if err := Put(s, uint16(len(value))); err != nil {
		return err
	}

	_, err := io.WriteString(s, value)
	return err
}

func GetBytes(s io.Reader) ([]byte, error) {
	var length uint32
	if err := Get(s, &length); err != nil {
		return nil, err
	}

	value := make([]byte, length)
	if _, err := io.ReadFull(s, value); err != nil {
		return nil, err
	}

	return value, nil
}

func PutBytes(s io.Writer, value []byte) error {
	if err := Put(s, uint32(len(value))); err != nil {
		return err
	}

	_, err := s.Write(value)
	return err
}
