package compressors

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Zstd implements Compressor using a shared zstd encoder/decoder pair.
// Annotation payloads are small, so a single reusable pair is enough.
type Zstd struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ Compressor = (*Zstd)(nil)

// NewZstd creates a Zstd compressor with default settings.
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Zstd{encoder: enc, decoder: dec}, nil
}

func (c *Zstd) Compress(data []byte) ([]byte, error) {
	return c.encoder.EncodeAll(data, nil), nil
}

func (c *Zstd) Decompress(data []byte) (io.ReadCloser, error) {
	decompressed, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress error: %w", err)
	}
	return io.NopCloser(bytes.NewReader(decompressed)), nil
}

func (c *Zstd) Type() Type {
	return TypeZstd
}
