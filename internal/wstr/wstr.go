// Package wstr converts between UTF-8 strings and the NUL-terminated
// UTF-16LE form used inside event log records.
package wstr

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	ErrInvalidUTF8   = errors.New("malformed UTF-8 input")
	ErrUnterminated  = errors.New("missing NUL terminator")
	ErrLoneSurrogate = errors.New("unpaired UTF-16 surrogate")
)

// Encode converts s to UTF-16LE and appends the terminating NUL code
// unit. The returned length therefore always includes the terminator.
func Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidUTF8
	}
	units := utf16.Encode([]rune(s))
	out := make([]byte, (len(units)+1)*2)
	for i, u := range units {
		out[i*2] = byte(u)
		out[i*2+1] = byte(u >> 8)
	}
	return out, nil
}

// Decode reads a NUL-terminated UTF-16LE string from the beginning of b
// and reports the number of bytes consumed, including the NUL pair.
// It fails if no terminator occurs within b or if the code units do not
// form valid UTF-16.
func Decode(b []byte) (string, int, error) {
	var units []uint16
	terminated := false
	consumed := 0
	for i := 0; i+1 < len(b); i += 2 {
		u := uint16(b[i]) | uint16(b[i+1])<<8
		consumed += 2
		if u == 0 {
			terminated = true
			break
		}
		units = append(units, u)
	}
	if !terminated {
		return "", 0, ErrUnterminated
	}

	// utf16.Decode silently replaces broken pairs with U+FFFD;
	// the wire format requires a hard failure instead.
	for i := 0; i < len(units); i++ {
		switch u := units[i]; {
		case u >= 0xD800 && u < 0xDC00:
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return "", 0, ErrLoneSurrogate
			}
			i++
		case u >= 0xDC00 && u < 0xE000:
			return "", 0, ErrLoneSurrogate
		}
	}
	return string(utf16.Decode(units)), consumed, nil
}
