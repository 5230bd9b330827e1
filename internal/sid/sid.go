// Package sid converts security identifiers between their canonical
// text form "S-r-a-s1-s2-..." and the packed binary layout:
// revision (u8), sub-authority count (u8), a 48-bit big-endian
// identifier authority, then count little-endian u32 sub-authorities.
package sid

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	headerSize   = 8
	maxAuthority = 1<<48 - 1
	maxSubAuths  = 255
)

var (
	ErrMalformed = errors.New("malformed SID string")
	ErrTruncated = errors.New("SID buffer too short")
)

// ToString renders a binary SID as canonical text. Bytes beyond the
// declared sub-authority list are tolerated and ignored.
func ToString(b []byte) (string, error) {
	if len(b) < headerSize {
		return "", ErrTruncated
	}
	revision := b[0]
	count := int(b[1])
	if len(b) < headerSize+4*count {
		return "", ErrTruncated
	}

	authority := uint64(b[2])<<40 | uint64(b[3])<<32 | uint64(b[4])<<24 |
		uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])

	var sb strings.Builder
	fmt.Fprintf(&sb, "S-%d-%d", revision, authority)
	for i := 0; i < count; i++ {
		sub := binary.LittleEndian.Uint32(b[headerSize+4*i:])
		fmt.Fprintf(&sb, "-%d", sub)
	}
	return sb.String(), nil
}

// ToBinary parses canonical SID text into the packed binary layout.
func ToBinary(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "S-") {
		return nil, errors.Wrap(ErrMalformed, "missing S- prefix")
	}
	parts := strings.Split(s[2:], "-")
	if len(parts) < 2 {
		return nil, errors.Wrap(ErrMalformed, "missing authority")
	}
	if len(parts)-2 > maxSubAuths {
		return nil, errors.Wrap(ErrMalformed, "too many sub-authorities")
	}

	revision, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "revision %q", parts[0])
	}
	authority, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || authority > maxAuthority {
		return nil, errors.Wrapf(ErrMalformed, "authority %q", parts[1])
	}

	out := make([]byte, headerSize+4*(len(parts)-2))
	out[0] = byte(revision)
	out[1] = byte(len(parts) - 2)
	out[2] = byte(authority >> 40)
	out[3] = byte(authority >> 32)
	out[4] = byte(authority >> 24)
	out[5] = byte(authority >> 16)
	out[6] = byte(authority >> 8)
	out[7] = byte(authority)

	for i, p := range parts[2:] {
		sub, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "sub-authority %q", p)
		}
		binary.LittleEndian.PutUint32(out[headerSize+4*i:], uint32(sub))
	}
	return out, nil
}
