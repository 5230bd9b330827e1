// Package evt implements the classic event log file format: a fixed
// capacity circular file holding variable-length records between a
// 48-byte header and a 40-byte end-of-log marker, signature "LfLe",
// version 1.1. Everything on disk is little-endian.
package evt

const (
	// Signature is ASCII "LfLe" read as a little-endian DWORD. It opens
	// the file header and recurs in every record header.
	Signature uint32 = 0x654c664c

	// HeaderLength is the on-disk size of the file header.
	HeaderLength = 0x30
	// RecordHeaderLength is the fixed part of every record.
	RecordHeaderLength = 56
	// RecordMinLength is the smallest valid record: the fixed header,
	// two empty NUL-terminated names and the trailing length DWORD,
	// padded to a DWORD boundary.
	RecordMinLength = 64
	// EOFLength is the on-disk size of the end-of-log marker.
	EOFLength = 0x28

	// MinSize is the smallest log that can hold the header and the
	// end-of-log marker.
	MinSize = HeaderLength + EOFLength

	sizeofDword = 4
)

// File header flag bits.
const (
	// FlagDirty marks a log that has been written to but not closed.
	FlagDirty uint32 = 1 << iota
	// FlagWrap marks a log whose live records cross the end of the file.
	FlagWrap
	// FlagLogFullWritten marks a log whose most recent write attempt
	// failed for lack of space.
	FlagLogFullWritten
	// FlagArchiveSet mirrors the file's archive attribute.
	FlagArchiveSet
)

// Event types as stored in RecordHeader.EventType.
const (
	EventError        uint16 = 0x0001
	EventWarning      uint16 = 0x0002
	EventInformation  uint16 = 0x0004
	EventAuditSuccess uint16 = 0x0008
	EventAuditFailure uint16 = 0x0010
)

// Header is the 48-byte structure at the start of every log file.
type Header struct {
	HeaderSize          uint32
	Signature           uint32
	MajorVersion        uint32
	MinorVersion        uint32
	StartOffset         uint32
	EndOffset           uint32
	CurrentRecordNumber uint32
	OldestRecordNumber  uint32
	MaxSize             uint32
	Flags               uint32
	Retention           uint32
	EndHeaderSize       uint32
}

// RecordHeader is the 56-byte fixed part of a record. Length covers
// the whole on-disk record including padding and the trailing copy of
// itself.
type RecordHeader struct {
	Length              uint32
	Reserved            uint32
	RecordNumber        uint32
	TimeGenerated       uint32
	TimeWritten         uint32
	EventID             uint32
	EventType           uint16
	NumStrings          uint16
	EventCategory       uint16
	ReservedFlags       uint16
	ClosingRecordNumber uint32
	StringOffset        uint32
	UserSidLength       uint32
	UserSidOffset       uint32
	DataLength          uint32
	DataOffset          uint32
}

// eofRecord is the 40-byte end-of-log marker that follows the newest
// record. The four magic DWORDs distinguish it from record data.
type eofRecord struct {
	RecordSizeBeginning uint32
	One                 uint32
	Two                 uint32
	Three               uint32
	Four                uint32
	BeginRecord         uint32
	EndRecord           uint32
	CurrentRecordNumber uint32
	OldestRecordNumber  uint32
	RecordSizeEnd       uint32
}

const (
	eofMagicOne   uint32 = 0x11111111
	eofMagicTwo   uint32 = 0x22222222
	eofMagicThree uint32 = 0x33333333
	eofMagicFour  uint32 = 0x44444444
)

// RecordContents is the logical, decoded form of a record. Strings are
// UTF-8, the SID is canonical text (empty means none), timestamps are
// UTC seconds since 1970.
type RecordContents struct {
	TimeGenerated int64
	TimeWritten   int64
	SourceName    string
	ComputerName  string
	UserSid       string
	Strings       []string
	Data          []byte
}

// RecordData is the raw, encoded form of a record: the fixed header
// plus the payload bytes that follow it on disk (names, SID, strings,
// data, padding and the trailing length DWORD).
type RecordData struct {
	Header RecordHeader
	Data   []byte
}
