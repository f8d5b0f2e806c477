package decode_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"

	"github.com/apiprobe/go-client/pkg/sender/decode"
)

func TestDecode_Identity(t *testing.T) {
	t.Parallel()

	body := io.NopCloser(strings.NewReader("plain"))
	out, err := decode.Decode(body, "")
	assert.NoError(t, err)
	content, err := io.ReadAll(out)
	assert.NoError(t, err)
	assert.Equal(t, "plain", string(content))
}

func TestDecode_Gzip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte("compressed content"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	out, err := decode.Decode(io.NopCloser(&buf), "gzip")
	assert.NoError(t, err)
	content, err := io.ReadAll(out)
	assert.NoError(t, err)
	assert.Equal(t, "compressed content", string(content))
}

func TestDecode_GzipMalformed(t *testing.T) {
	t.Parallel()

	body := io.NopCloser(strings.NewReader("not gzip"))
	_, err := decode.Decode(body, "gzip")
	assert.Error(t, err)
}

func TestDecode_Brotli(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte("compressed content"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	out, err := decode.Decode(io.NopCloser(&buf), "BR")
	assert.NoError(t, err)
	content, err := io.ReadAll(out)
	assert.NoError(t, err)
	assert.Equal(t, "compressed content", string(content))
}
