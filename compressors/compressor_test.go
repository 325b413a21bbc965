package compressors

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllTypes(t *testing.T) {
	payload := []byte(`{"type":"pen","coords":[150,100],"prev_coords":[100,100],"color":[255,0,0],"brush_size":5,"target":"slide"}`)

	for _, typ := range []Type{TypeNone, TypeSnappy, TypeZstd, TypeLZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			c, err := For(typ)
			require.NoError(t, err)
			assert.Equal(t, typ, c.Type())

			compressed, err := c.Compress(payload)
			require.NoError(t, err)

			rc, err := c.Decompress(compressed)
			require.NoError(t, err)
			defer rc.Close()

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in       string
		expected Type
		wantErr  bool
	}{
		{"snappy", TypeSnappy, false},
		{"ZSTD", TypeZstd, false},
		{" lz4 ", TypeLZ4, false},
		{"", TypeNone, false},
		{"none", TypeNone, false},
		{"gzip", TypeNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSnappyRejectsCorruptInput(t *testing.T) {
	c := &Snappy{}
	_, err := c.Decompress([]byte("definitely not snappy"))
	assert.Error(t, err)
}
