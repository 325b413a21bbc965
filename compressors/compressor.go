// Package compressors provides the pluggable payload compression used by
// the annotation record store's segment files.
package compressors

import (
	"fmt"
	"io"
	"strings"
)

// Type identifies a compression algorithm. The value is written into the
// segment file header so readers can pick the matching decompressor.
type Type uint8

const (
	TypeNone   Type = 0
	TypeSnappy Type = 1
	TypeZstd   Type = 2
	TypeLZ4    Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeSnappy:
		return "snappy"
	case TypeZstd:
		return "zstd"
	case TypeLZ4:
		return "lz4"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// ParseType maps a config string to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TypeNone, nil
	case "snappy":
		return TypeSnappy, nil
	case "zstd":
		return TypeZstd, nil
	case "lz4":
		return TypeLZ4, nil
	}
	return TypeNone, fmt.Errorf("unknown compression type %q", s)
}

// Compressor compresses and decompresses record payloads.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) (io.ReadCloser, error)
	Type() Type
}

// For returns the Compressor implementing the given type.
func For(t Type) (Compressor, error) {
	switch t {
	case TypeNone:
		return &NoCompression{}, nil
	case TypeSnappy:
		return &Snappy{}, nil
	case TypeZstd:
		return NewZstd()
	case TypeLZ4:
		return &LZ4{}, nil
	}
	return nil, fmt.Errorf("no compressor for type %s", t)
}
