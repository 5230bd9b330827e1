package sid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextRoundTrip(t *testing.T) {
	cases := []string{
		"S-1-5-32-544",
		"S-1-0-0",
		"S-1-5-21-3623811015-3361044348-30300820-1013",
		"S-1-281474976710655",
		"S-255-1-4294967295",
	}
	for _, text := range cases {
		bin, err := ToBinary(text)
		require.NoError(t, err, text)
		back, err := ToString(bin)
		require.NoError(t, err, text)
		assert.Equal(t, text, back)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	bin := []byte{
		1, 2, // revision, two sub-authorities
		0, 0, 0, 0, 0, 5, // authority 5, big-endian
		32, 0, 0, 0, // 32, little-endian
		0x20, 0x02, 0, 0, // 544
	}
	text, err := ToString(bin)
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-32-544", text)

	back, err := ToBinary(text)
	require.NoError(t, err)
	assert.Equal(t, bin, back)
}

func TestToBinaryRejects(t *testing.T) {
	cases := []string{
		"",
		"S-",
		"S-1",
		"X-1-5",
		// revision, authority and sub-authority out of range
		"S-256-5",
		"S-1-281474976710656",
		"S-1-5-4294967296",
		"S-1-5-abc",
		"s-1-5-32",
	}
	for _, text := range cases {
		_, err := ToBinary(text)
		assert.Error(t, err, text)
	}
}

func TestToStringRejectsTruncated(t *testing.T) {
	_, err := ToString([]byte{1, 1, 0, 0, 0})
	assert.Error(t, err)

	// declares two sub-authorities, carries one
	_, err = ToString([]byte{1, 2, 0, 0, 0, 0, 0, 5, 32, 0, 0, 0})
	assert.Error(t, err)
}

func TestToStringIgnoresTrailingBytes(t *testing.T) {
	bin := []byte{1, 1, 0, 0, 0, 0, 0, 5, 32, 0, 0, 0, 0xde, 0xad}
	text, err := ToString(bin)
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-32", text)
}
