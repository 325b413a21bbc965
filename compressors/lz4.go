package compressors

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 implements Compressor using lz4 frame encoding.
type LZ4 struct{}

var _ Compressor = (*LZ4)(nil)

func (c *LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress write error: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress close error: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *LZ4) Decompress(data []byte) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(bytes.NewReader(data))), nil
}

func (c *LZ4) Type() Type {
	return TypeLZ4
}
