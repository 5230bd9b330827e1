package evt

import (
	"encoding/binary"
)

// Explicit per-field little-endian marshalling. The structs are not
// trusted to match the on-disk layout through compiler padding.

func putHeader(b []byte, h *Header) {
	le := binary.LittleEndian
	le.PutUint32(b[0:], h.HeaderSize)
	le.PutUint32(b[4:], h.Signature)
	le.PutUint32(b[8:], h.MajorVersion)
	le.PutUint32(b[12:], h.MinorVersion)
	le.PutUint32(b[16:], h.StartOffset)
	le.PutUint32(b[20:], h.EndOffset)
	le.PutUint32(b[24:], h.CurrentRecordNumber)
	le.PutUint32(b[28:], h.OldestRecordNumber)
	le.PutUint32(b[32:], h.MaxSize)
	le.PutUint32(b[36:], h.Flags)
	le.PutUint32(b[40:], h.Retention)
	le.PutUint32(b[44:], h.EndHeaderSize)
}

func parseHeader(b []byte) Header {
	le := binary.LittleEndian
	return Header{
		HeaderSize:          le.Uint32(b[0:]),
		Signature:           le.Uint32(b[4:]),
		MajorVersion:        le.Uint32(b[8:]),
		MinorVersion:        le.Uint32(b[12:]),
		StartOffset:         le.Uint32(b[16:]),
		EndOffset:           le.Uint32(b[20:]),
		CurrentRecordNumber: le.Uint32(b[24:]),
		OldestRecordNumber:  le.Uint32(b[28:]),
		MaxSize:             le.Uint32(b[32:]),
		Flags:               le.Uint32(b[36:]),
		Retention:           le.Uint32(b[40:]),
		EndHeaderSize:       le.Uint32(b[44:]),
	}
}

func putRecordHeader(b []byte, h *RecordHeader) {
	le := binary.LittleEndian
	le.PutUint32(b[0:], h.Length)
	le.PutUint32(b[4:], h.Reserved)
	le.PutUint32(b[8:], h.RecordNumber)
	le.PutUint32(b[12:], h.TimeGenerated)
	le.PutUint32(b[16:], h.TimeWritten)
	le.PutUint32(b[20:], h.EventID)
	le.PutUint16(b[24:], h.EventType)
	le.PutUint16(b[26:], h.NumStrings)
	le.PutUint16(b[28:], h.EventCategory)
	le.PutUint16(b[30:], h.ReservedFlags)
	le.PutUint32(b[32:], h.ClosingRecordNumber)
	le.PutUint32(b[36:], h.StringOffset)
	le.PutUint32(b[40:], h.UserSidLength)
	le.PutUint32(b[44:], h.UserSidOffset)
	le.PutUint32(b[48:], h.DataLength)
	le.PutUint32(b[52:], h.DataOffset)
}

func parseRecordHeader(b []byte) RecordHeader {
	le := binary.LittleEndian
	return RecordHeader{
		Length:              le.Uint32(b[0:]),
		Reserved:            le.Uint32(b[4:]),
		RecordNumber:        le.Uint32(b[8:]),
		TimeGenerated:       le.Uint32(b[12:]),
		TimeWritten:         le.Uint32(b[16:]),
		EventID:             le.Uint32(b[20:]),
		EventType:           le.Uint16(b[24:]),
		NumStrings:          le.Uint16(b[26:]),
		EventCategory:       le.Uint16(b[28:]),
		ReservedFlags:       le.Uint16(b[30:]),
		ClosingRecordNumber: le.Uint32(b[32:]),
		StringOffset:        le.Uint32(b[36:]),
		UserSidLength:       le.Uint32(b[40:]),
		UserSidOffset:       le.Uint32(b[44:]),
		DataLength:          le.Uint32(b[48:]),
		DataOffset:          le.Uint32(b[52:]),
	}
}

func putEOF(b []byte, e *eofRecord) {
	le := binary.LittleEndian
	le.PutUint32(b[0:], e.RecordSizeBeginning)
	le.PutUint32(b[4:], e.One)
	le.PutUint32(b[8:], e.Two)
	le.PutUint32(b[12:], e.Three)
	le.PutUint32(b[16:], e.Four)
	le.PutUint32(b[20:], e.BeginRecord)
	le.PutUint32(b[24:], e.EndRecord)
	le.PutUint32(b[28:], e.CurrentRecordNumber)
	le.PutUint32(b[32:], e.OldestRecordNumber)
	le.PutUint32(b[36:], e.RecordSizeEnd)
}

func parseEOF(b []byte) eofRecord {
	le := binary.LittleEndian
	return eofRecord{
		RecordSizeBeginning: le.Uint32(b[0:]),
		One:                 le.Uint32(b[4:]),
		Two:                 le.Uint32(b[8:]),
		Three:               le.Uint32(b[12:]),
		Four:                le.Uint32(b[16:]),
		BeginRecord:         le.Uint32(b[20:]),
		EndRecord:           le.Uint32(b[24:]),
		CurrentRecordNumber: le.Uint32(b[28:]),
		OldestRecordNumber:  le.Uint32(b[32:]),
		RecordSizeEnd:       le.Uint32(b[36:]),
	}
}
