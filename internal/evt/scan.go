package evt

import (
	"github.com/snowflk/evtkit/internal/fileio"
)

// ScanKind classifies what ScanSignature found.
type ScanKind int

const (
	// ScanNothing means no signature occurred within the search window.
	ScanNothing ScanKind = iota
	// ScanHeader means a file header candidate was found.
	ScanHeader
	// ScanRecord means a record candidate was found.
	ScanRecord
)

// ScanSignature walks the medium from its current position looking for
// the "LfLe" signature with a DWORD in front of it that makes sense as
// a length. It is a diagnostic for logs whose header does not validate:
// a hit tells the caller roughly where intact structures still sit.
// Returns the kind found and the offset of the length DWORD preceding
// the signature.
func ScanSignature(m fileio.Medium, searchMax int64) (ScanKind, int64, error) {
	if searchMax < 8 {
		return ScanNothing, 0, nil
	}

	// An 8-byte circular window: the signature candidate in the upper
	// half, its length prefix in the lower.
	var window [8]byte
	if err := m.Read(window[:]); err != nil {
		return ScanNothing, 0, err
	}
	searched := int64(8)

	readDword := func(i int64) uint32 {
		return uint32(window[i&7]) |
			uint32(window[(i+1)&7])<<8 |
			uint32(window[(i+2)&7])<<16 |
			uint32(window[(i+3)&7])<<24
	}

	for searched < searchMax {
		if readDword(searched-4) == Signature {
			length := readDword(searched - 8)
			pos, err := m.Tell()
			if err != nil {
				return ScanNothing, 0, err
			}
			if length == HeaderLength {
				return ScanHeader, pos - 8, nil
			}
			if length >= RecordMinLength {
				return ScanRecord, pos - 8, nil
			}
		}
		if err := m.Read(window[searched&7 : searched&7+1]); err != nil {
			return ScanNothing, 0, err
		}
		searched++
	}
	return ScanNothing, 0, nil
}
