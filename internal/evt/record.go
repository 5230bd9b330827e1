package evt

import (
	"encoding/binary"
	"math"

	"github.com/snowflk/evtkit/internal/sid"
	"github.com/snowflk/evtkit/internal/wstr"
)

// clampTime squeezes a UNIX timestamp into the 32-bit range the format
// stores. Values outside [0, 2^32) saturate silently.
func clampTime(t int64) uint32 {
	if t < 0 {
		return 0
	}
	if t > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(t)
}

// EncodeRecordData assembles the on-disk payload for in and fills the
// derived fields of out.Header: the timestamps, the section offsets
// and lengths, the string count and the total record length. Fields
// that identify the record (number, event ID, type, category) are the
// caller's to set. On failure the returned flags tell which sections
// could not be encoded and out.Data is left nil.
func EncodeRecordData(in *RecordContents, out *RecordData) (EncodeFlags, error) {
	var flags EncodeFlags
	var buf Buffer

	out.Header.Reserved = Signature
	out.Header.TimeGenerated = clampTime(in.TimeGenerated)
	out.Header.TimeWritten = clampTime(in.TimeWritten)

	if b, err := wstr.Encode(in.SourceName); err != nil {
		flags |= EncodeSourceNameFailed
	} else {
		buf.Append(b, 0)
	}
	if b, err := wstr.Encode(in.ComputerName); err != nil {
		flags |= EncodeComputerNameFailed
	} else {
		buf.Append(b, 0)
	}

	if in.UserSid == "" {
		out.Header.UserSidLength = 0
		out.Header.UserSidOffset = 0
	} else if b, err := sid.ToBinary(in.UserSid); err != nil {
		flags |= EncodeSidFailed
	} else {
		out.Header.UserSidOffset = RecordHeaderLength +
			uint32(buf.Append(b, sizeofDword))
		out.Header.UserSidLength = uint32(len(b))
	}

	out.Header.StringOffset = RecordHeaderLength + uint32(buf.Len())
	out.Header.NumStrings = uint16(len(in.Strings))
	for _, s := range in.Strings {
		if b, err := wstr.Encode(s); err != nil {
			flags |= EncodeStringsFailed
		} else {
			buf.Append(b, 0)
		}
	}

	if flags != 0 {
		return flags, ErrEncode
	}

	out.Header.DataLength = uint32(len(in.Data))
	out.Header.DataOffset = RecordHeaderLength + uint32(buf.Append(in.Data, 0))

	// Total record size: header, payload, the trailing length DWORD,
	// rounded up to a DWORD boundary.
	out.Header.Length = uint32(RecordHeaderLength+buf.Len()+sizeofDword+
		sizeofDword-1) / sizeofDword * sizeofDword

	var trailer [sizeofDword]byte
	binary.LittleEndian.PutUint32(trailer[:], out.Header.Length)
	buf.Append(trailer[:], sizeofDword)

	out.Data = buf.Bytes()
	return 0, nil
}

// DecodeRecordData recovers the logical contents of rec. Every field
// that decodes successfully is populated even when the function fails,
// so callers can still use the partial result; the flags tell exactly
// which sections went wrong.
func DecodeRecordData(rec *RecordData) (*RecordContents, DecodeFlags, error) {
	if len(rec.Data) < RecordMinLength-RecordHeaderLength {
		return &RecordContents{}, DecodeInvalid, ErrDecode
	}

	var flags DecodeFlags
	hdr := &rec.Header
	payload := rec.Data
	out := &RecordContents{
		TimeGenerated: int64(hdr.TimeGenerated),
		TimeWritten:   int64(hdr.TimeWritten),
	}

	s, consumed, err := wstr.Decode(payload)
	if err != nil {
		flags |= DecodeSourceNameFailed
	} else {
		out.SourceName = s
		if s, _, err := wstr.Decode(payload[consumed:]); err != nil {
			flags |= DecodeComputerNameFailed
		} else {
			out.ComputerName = s
		}
	}

	if hdr.NumStrings > 0 {
		offset := int(hdr.StringOffset) - RecordHeaderLength
		for i := 0; i < int(hdr.NumStrings); i++ {
			if offset < 0 || offset >= len(payload) {
				flags |= DecodeStringsFailed
				break
			}
			s, n, err := wstr.Decode(payload[offset:])
			if err != nil {
				flags |= DecodeStringsFailed
				break
			}
			out.Strings = append(out.Strings, s)
			offset += n
		}
	}

	// Section offsets are relative to the start of the record; both
	// sections must land before the trailing length DWORD.
	limit := int64(len(payload)) - sizeofDword
	if hdr.UserSidLength > 0 {
		rel := int64(hdr.UserSidOffset) - RecordHeaderLength
		if rel < 0 || rel+int64(hdr.UserSidLength) > limit {
			flags |= DecodeSidOverflow
		} else if s, err := sid.ToString(payload[rel : rel+int64(hdr.UserSidLength)]); err != nil {
			flags |= DecodeSidFailed
		} else {
			out.UserSid = s
		}
	}

	if hdr.DataLength > 0 {
		rel := int64(hdr.DataOffset) - RecordHeaderLength
		if rel < 0 || rel+int64(hdr.DataLength) > limit {
			flags |= DecodeDataOverflow
		} else {
			out.Data = make([]byte, hdr.DataLength)
			copy(out.Data, payload[rel:])
		}
	}

	if binary.LittleEndian.Uint32(payload[len(payload)-sizeofDword:]) != hdr.Length {
		flags |= DecodeLengthMismatch
	}

	if flags != 0 {
		return out, flags, ErrDecode
	}
	return out, 0, nil
}
