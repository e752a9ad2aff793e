package user

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncoder(t *testing.T) {
	enc, err := NewEncoder("", 0)
	require.NoError(t, err)
	assert.Equal(t, "application/avro", enc.ContentType())

	enc, err = NewEncoder(FormatJSON, 0)
	require.NoError(t, err)
	assert.Equal(t, "application/json", enc.ContentType())

	_, err = NewEncoder("protobuf", 0)
	assert.Error(t, err)

	_, err = NewEncoder(FormatAvro, -3)
	assert.Error(t, err)
}

func TestAvroEncoder(t *testing.T) {
	u := User{Name: "Alice", Age: 34}

	t.Run("plain binary", func(t *testing.T) {
		enc, err := NewAvroEncoder(0)
		require.NoError(t, err)

		b, err := enc.Encode(u)
		require.NoError(t, err)
		// zigzag varint length 5, "Alice", zigzag 34
		assert.Equal(t, []byte{0x0a, 'A', 'l', 'i', 'c', 'e', 0x44}, b)

		got, err := enc.decode(b)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("confluent framing", func(t *testing.T) {
		enc, err := NewAvroEncoder(17)
		require.NoError(t, err)

		b, err := enc.Encode(u)
		require.NoError(t, err)
		require.Greater(t, len(b), 5)
		assert.Equal(t, byte(0), b[0])
		assert.Equal(t, uint32(17), binary.BigEndian.Uint32(b[1:5]))

		got, err := enc.decode(b)
		require.NoError(t, err)
		assert.Equal(t, u, got)

		other, err := NewAvroEncoder(18)
		require.NoError(t, err)
		_, err = other.decode(b)
		assert.Error(t, err)
	})
}

func TestJSONEncoder(t *testing.T) {
	b, err := JSONEncoder{}.Encode(User{Name: "Bob", Age: 22})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Bob","age":22}`, string(b))
}
