package compressors

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// Snappy implements Compressor using block-mode Snappy.
type Snappy struct{}

type snappyReadCloser struct {
	*bytes.Reader
}

func (src *snappyReadCloser) Close() error {
	// In-memory data, nothing to release.
	return nil
}

var _ Compressor = (*Snappy)(nil)
var _ io.ReadCloser = (*snappyReadCloser)(nil)

func (c *Snappy) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (c *Snappy) Decompress(data []byte) (io.ReadCloser, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress error: %w", err)
	}
	return &snappyReadCloser{Reader: bytes.NewReader(decompressed)}, nil
}

func (c *Snappy) Type() Type {
	return TypeSnappy
}
