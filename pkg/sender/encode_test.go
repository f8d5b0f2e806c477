package sender_test

import (
	"errors"
	"testing"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/stretchr/testify/assert"

	"github.com/apiprobe/go-client/pkg/sender"
)

func TestEncodeArgs_Empty(t *testing.T) {
	t.Parallel()

	out, err := sender.EncodeArgs(nil)
	assert.NoError(t, err)
	assert.Equal(t, "", out)

	out, err = sender.EncodeArgs(orderedmap.New())
	assert.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestEncodeArgs_OrderAndEscaping(t *testing.T) {
	t.Parallel()

	args := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "x y"},
	})
	out, err := sender.EncodeArgs(args)
	assert.NoError(t, err)
	assert.Equal(t, "a=1&b=x+y", out)

	// Reversed insertion order changes the wire order
	args = orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "b", Value: "x y"},
		{Key: "a", Value: "1"},
	})
	out, err = sender.EncodeArgs(args)
	assert.NoError(t, err)
	assert.Equal(t, "b=x+y&a=1", out)
}

func TestEncodeArgs_ReservedCharacters(t *testing.T) {
	t.Parallel()

	args := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "q", Value: "a&b=c"},
		{Key: "name", Value: "Ann Lee"},
		{Key: "special key", Value: "100%"},
	})
	out, err := sender.EncodeArgs(args)
	assert.NoError(t, err)
	assert.Equal(t, "q=a%26b%3Dc&name=Ann+Lee&special+key=100%25", out)
}

func TestEncodeArgs_ValueTypes(t *testing.T) {
	t.Parallel()

	args := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "id", Value: 42},
		{Key: "active", Value: true},
		{Key: "score", Value: 1.5},
		{Key: "nested", Value: orderedmap.FromPairs([]orderedmap.Pair{
			{Key: "foo", Value: "bar"},
		})},
	})
	out, err := sender.EncodeArgs(args)
	assert.NoError(t, err)
	assert.Equal(t, `id=42&active=true&score=1.5&nested=%7B%22foo%22%3A%22bar%22%7D`, out)
}

func TestEncodeArgs_InvalidUTF8(t *testing.T) {
	t.Parallel()

	args := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "key", Value: string([]byte{0xff, 0xfe})},
	})
	_, err := sender.EncodeArgs(args)
	assert.Error(t, err)
	var encErr *sender.EncodingError
	assert.True(t, errors.As(err, &encErr))
	assert.Equal(t, "key", encErr.Key)
}

func TestEncodeArgs_NotCastable(t *testing.T) {
	t.Parallel()

	args := orderedmap.FromPairs([]orderedmap.Pair{
		{Key: "bad", Value: struct{ A int }{A: 1}},
	})
	_, err := sender.EncodeArgs(args)
	assert.Error(t, err)
	var encErr *sender.EncodingError
	assert.True(t, errors.As(err, &encErr))
	assert.Equal(t, "bad", encErr.Key)
}
