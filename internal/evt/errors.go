package evt

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrEndOfLog is returned by ReadRecord at the end-of-log marker.
	ErrEndOfLog = errors.New("end of log")
	// ErrLogFull is returned by AppendRecord when the record does not
	// fit and overwriting old records was not allowed.
	ErrLogFull = errors.New("log is full")
	// ErrDamaged covers structurally impossible on-disk state.
	ErrDamaged = errors.New("log is damaged")
	// ErrBadHeader accompanies a non-zero HeaderFlags from Open.
	ErrBadHeader = errors.New("invalid log header")
	// ErrDecode accompanies a non-zero DecodeFlags.
	ErrDecode = errors.New("record decoding failed")
	// ErrEncode accompanies a non-zero EncodeFlags.
	ErrEncode = errors.New("record encoding failed")
)

// HeaderFlags reports what was wrong with a log header on open.
type HeaderFlags uint32

const (
	HeaderWrongLength HeaderFlags = 1 << iota
	HeaderWrongSignature
	HeaderWrongVersion
)

func (f HeaderFlags) String() string {
	var parts []string
	if f&HeaderWrongLength != 0 {
		parts = append(parts, "wrong length")
	}
	if f&HeaderWrongSignature != 0 {
		parts = append(parts, "wrong signature")
	}
	if f&HeaderWrongVersion != 0 {
		parts = append(parts, "wrong version")
	}
	return strings.Join(parts, ", ")
}

// DecodeFlags reports which parts of a record failed to decode.
type DecodeFlags uint32

const (
	DecodeInvalid DecodeFlags = 1 << iota
	DecodeSourceNameFailed
	DecodeComputerNameFailed
	DecodeStringsFailed
	DecodeSidOverflow
	DecodeSidFailed
	DecodeDataOverflow
	DecodeLengthMismatch
)

func (f DecodeFlags) String() string {
	var parts []string
	if f&DecodeInvalid != 0 {
		parts = append(parts, "record too short")
	}
	if f&DecodeSourceNameFailed != 0 {
		parts = append(parts, "source name")
	}
	if f&DecodeComputerNameFailed != 0 {
		parts = append(parts, "computer name")
	}
	if f&DecodeStringsFailed != 0 {
		parts = append(parts, "strings")
	}
	if f&DecodeSidOverflow != 0 {
		parts = append(parts, "SID overflow")
	}
	if f&DecodeSidFailed != 0 {
		parts = append(parts, "SID")
	}
	if f&DecodeDataOverflow != 0 {
		parts = append(parts, "data overflow")
	}
	if f&DecodeLengthMismatch != 0 {
		parts = append(parts, "length mismatch")
	}
	return strings.Join(parts, ", ")
}

// EncodeFlags reports which parts of a record failed to encode.
type EncodeFlags uint32

const (
	EncodeSourceNameFailed EncodeFlags = 1 << iota
	EncodeComputerNameFailed
	EncodeStringsFailed
	EncodeSidFailed
)

func (f EncodeFlags) String() string {
	var parts []string
	if f&EncodeSourceNameFailed != 0 {
		parts = append(parts, "source name")
	}
	if f&EncodeComputerNameFailed != 0 {
		parts = append(parts, "computer name")
	}
	if f&EncodeStringsFailed != 0 {
		parts = append(parts, "strings")
	}
	if f&EncodeSidFailed != 0 {
		parts = append(parts, "SID")
	}
	return strings.Join(parts, ", ")
}
