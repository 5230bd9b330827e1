package wstr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"hello",
		"příliš žluťoučký kůň",
		"日本語",
		"emoji \U0001F600 outside the BMP",
	}
	for _, s := range cases {
		b, err := Encode(s)
		require.NoError(t, err, s)
		// terminator included in the byte count
		assert.Equal(t, uint16(0), uint16(b[len(b)-2])|uint16(b[len(b)-1])<<8)

		decoded, consumed, err := Decode(b)
		require.NoError(t, err, s)
		assert.Equal(t, s, decoded)
		assert.Equal(t, len(b), consumed)
	}
}

func TestEncodeInvalidUTF8(t *testing.T) {
	_, err := Encode(string([]byte{0xff, 0xfe, 0x41}))
	assert.Error(t, err)
}

func TestDecodeConsumedDelimitsFields(t *testing.T) {
	a, err := Encode("first")
	require.NoError(t, err)
	b, err := Encode("second")
	require.NoError(t, err)

	joined := append(append([]byte{}, a...), b...)
	s1, n1, err := Decode(joined)
	require.NoError(t, err)
	assert.Equal(t, "first", s1)

	s2, _, err := Decode(joined[n1:])
	require.NoError(t, err)
	assert.Equal(t, "second", s2)
}

func TestDecodeUnterminated(t *testing.T) {
	_, _, err := Decode([]byte{0x41, 0x00, 0x42, 0x00})
	assert.Error(t, err)

	_, _, err = Decode(nil)
	assert.Error(t, err)

	// odd trailing byte, no terminator
	_, _, err = Decode([]byte{0x41})
	assert.Error(t, err)
}

func TestDecodeLoneSurrogate(t *testing.T) {
	// high surrogate followed directly by the terminator
	_, _, err := Decode([]byte{0x00, 0xd8, 0x00, 0x00})
	assert.Error(t, err)

	// low surrogate with no preceding high one
	_, _, err = Decode([]byte{0x00, 0xdc, 0x00, 0x00})
	assert.Error(t, err)
}
