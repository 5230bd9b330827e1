// Package b64 wraps the standard Base64 codec with the tolerant
// decoding convention of libb64: bytes outside the alphabet are
// skipped rather than rejected, and a dangling quantum shorter than
// two characters is ignored.
package b64

import (
	"encoding/base64"
)

// Encode emits a single unwrapped line with "=" padding.
func Encode(src []byte) string {
	return base64.StdEncoding.EncodeToString(src)
}

// Decode decodes as much of s as forms whole output bytes. It cannot
// fail: alien characters (including padding) are dropped beforehand.
func Decode(s string) []byte {
	filtered := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z',
			c >= 'a' && c <= 'z',
			c >= '0' && c <= '9',
			c == '+', c == '/':
			filtered = append(filtered, c)
		}
	}
	// A single leftover character carries fewer than 8 bits.
	if len(filtered)%4 == 1 {
		filtered = filtered[:len(filtered)-1]
	}
	out, err := base64.RawStdEncoding.DecodeString(string(filtered))
	if err != nil {
		// The filter leaves only alphabet characters and the length is
		// adjusted above, so the stdlib decoder has nothing to object to.
		return nil
	}
	return out
}
