package evt

import (
	"encoding/binary"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/snowflk/evtkit/internal/fileio"
)

// Log is an open event log file. It owns the position of its medium;
// nothing else may seek it while the log is open.
type Log struct {
	io     fileio.Medium
	header Header
	// length is the medium size, remembered at open time.
	length  int64
	changed bool
	// firstRecLength caches the on-disk length of the oldest record,
	// 0 when unknown. Eviction needs it to advance startOffset.
	firstRecLength uint32
}

// Open reads and validates the header of an existing log and positions
// the medium at the oldest record. On a validation failure the
// returned flags name everything that was wrong and no Log is created.
func Open(m fileio.Medium) (*Log, HeaderFlags, error) {
	length, err := m.Length()
	if err != nil {
		return nil, 0, err
	}
	if length < HeaderLength {
		return nil, HeaderWrongLength, errors.Wrap(ErrBadHeader, "file too short")
	}
	if _, err := m.Seek(0, fileio.SeekSet); err != nil {
		return nil, 0, err
	}
	buf := make([]byte, HeaderLength)
	if err := m.Read(buf); err != nil {
		return nil, 0, err
	}
	header := parseHeader(buf)

	var flags HeaderFlags
	if header.HeaderSize != HeaderLength || header.EndHeaderSize != HeaderLength {
		flags |= HeaderWrongLength
	}
	if header.Signature != Signature {
		flags |= HeaderWrongSignature
	}
	if header.MajorVersion != 1 || header.MinorVersion != 1 {
		flags |= HeaderWrongVersion
	}
	if flags != 0 {
		return nil, flags, errors.Wrap(ErrBadHeader, flags.String())
	}

	if _, err := m.Seek(int64(header.StartOffset), fileio.SeekSet); err != nil {
		return nil, 0, err
	}
	return &Log{io: m, header: header, length: length}, 0, nil
}

// OpenCreate truncates the medium to size bytes and initializes a
// fresh, empty log over it. The minimum size holds just the header and
// the end-of-log marker.
func OpenCreate(m fileio.Medium, size uint32) (*Log, error) {
	if size < MinSize {
		return nil, errors.Errorf("log size %d below the minimum of %d", size, MinSize)
	}
	if err := m.Truncate(int64(size)); err != nil {
		return nil, err
	}
	l := &Log{
		io: m,
		header: Header{
			HeaderSize:          HeaderLength,
			Signature:           Signature,
			MajorVersion:        1,
			MinorVersion:        1,
			StartOffset:         HeaderLength,
			EndOffset:           HeaderLength,
			CurrentRecordNumber: 1,
			OldestRecordNumber:  0,
			MaxSize:             size,
			Flags:               FlagDirty,
			EndHeaderSize:       HeaderLength,
		},
		length:  int64(size),
		changed: true,
	}
	if err := l.writeHeader(); err != nil {
		return nil, err
	}
	if _, err := m.Seek(HeaderLength, fileio.SeekSet); err != nil {
		return nil, err
	}
	return l, nil
}

// Header returns a copy of the in-memory header.
func (l *Log) Header() Header {
	return l.header
}

// Length reports the size of the underlying medium.
func (l *Log) Length() int64 {
	return l.length
}

// Rewind repositions at the oldest record.
func (l *Log) Rewind() error {
	_, err := l.io.Seek(int64(l.header.StartOffset), fileio.SeekSet)
	return err
}

func (l *Log) writeHeader() error {
	if _, err := l.io.Seek(0, fileio.SeekSet); err != nil {
		return err
	}
	buf := make([]byte, HeaderLength)
	putHeader(buf, &l.header)
	return l.io.Write(buf)
}

// ReadRecord reads the record at the current position, following the
// ring across the end of the file when the record is split there.
// It returns ErrEndOfLog at the end-of-log marker.
func (l *Log) ReadRecord() (*RecordData, error) {
	offset, err := l.io.Tell()
	if err != nil {
		return nil, err
	}
	if uint32(offset) == l.header.EndOffset {
		return nil, ErrEndOfLog
	}
	// A record header never spans the ring end; too short a run means
	// the next record continues past the log header.
	if l.length-offset < RecordHeaderLength {
		if offset, err = l.io.Seek(HeaderLength, fileio.SeekSet); err != nil {
			return nil, err
		}
		if uint32(offset) == l.header.EndOffset {
			return nil, ErrEndOfLog
		}
	}

	buf := make([]byte, RecordHeaderLength)
	if err := l.io.Read(buf[:sizeofDword]); err != nil {
		return nil, err
	}
	recLen := binary.LittleEndian.Uint32(buf)

	// It looks like an end-of-log marker; verify it.
	if recLen == EOFLength {
		eofBuf := make([]byte, EOFLength)
		copy(eofBuf, buf[:sizeofDword])
		if err := l.io.Read(eofBuf[sizeofDword:]); err != nil {
			return nil, err
		}
		eof := parseEOF(eofBuf)
		if eof.One == eofMagicOne && eof.Two == eofMagicTwo &&
			eof.Three == eofMagicThree && eof.Four == eofMagicFour &&
			eof.RecordSizeEnd == EOFLength {
			return nil, ErrEndOfLog
		}
		return nil, errors.Wrap(ErrDamaged, "malformed end-of-log marker")
	}

	if recLen < RecordMinLength || recLen > l.header.MaxSize-HeaderLength {
		return nil, errors.Wrapf(ErrDamaged, "impossible record length %d", recLen)
	}

	if err := l.io.Read(buf[sizeofDword:]); err != nil {
		return nil, err
	}
	hdr := parseRecordHeader(buf)

	payload := make([]byte, recLen-RecordHeaderLength)
	pos, err := l.io.Tell()
	if err != nil {
		return nil, err
	}
	if pos+int64(len(payload)) > l.length {
		if l.header.Flags&FlagWrap == 0 {
			return nil, errors.Wrap(ErrDamaged, "record runs past the file end without wrapping")
		}
		run := l.length - pos
		if err := l.io.Read(payload[:run]); err != nil {
			return nil, err
		}
		if _, err := l.io.Seek(HeaderLength, fileio.SeekSet); err != nil {
			return nil, err
		}
		if err := l.io.Read(payload[run:]); err != nil {
			return nil, err
		}
	} else if err := l.io.Read(payload); err != nil {
		return nil, err
	}

	if uint32(offset) == l.header.StartOffset {
		l.firstRecLength = recLen
	}
	return &RecordData{Header: hdr, Data: payload}, nil
}

// AppendRecord writes rec at the end of the log. With overwrite set,
// the oldest records are evicted until the record fits; without it the
// append fails with ErrLogFull as soon as the record plus the
// end-of-log marker would not fit untouched.
func (l *Log) AppendRecord(rec *RecordData, overwrite bool) error {
	if rec.Header.Length != RecordHeaderLength+uint32(len(rec.Data)) {
		return errors.Errorf("record length %d does not match its %d payload bytes",
			rec.Header.Length, len(rec.Data))
	}
	size := int64(rec.Header.Length)

	l.header.Flags &^= FlagLogFullWritten
	wasEmpty := l.header.OldestRecordNumber == 0
	start, end := int64(l.header.StartOffset), int64(l.header.EndOffset)

	free := freeSpace(start, end, l.length, wasEmpty)
	recCost, afterRec, _ := blockCost(end, l.length, size, RecordHeaderLength)
	eofCost, _, _ := blockCost(afterRec, l.length, EOFLength, EOFLength)
	if recCost+eofCost > free && !overwrite {
		l.header.Flags |= FlagLogFullWritten
		l.changed = true
		return ErrLogFull
	}

	// The log is dirty from the first write until a clean close.
	if l.header.Flags&FlagDirty == 0 {
		l.header.Flags |= FlagDirty
		l.changed = true
		if err := l.writeHeader(); err != nil {
			return err
		}
	}

	// Reclaim space from the oldest records until the new one fits.
	for {
		empty := l.header.OldestRecordNumber == 0
		start, end = int64(l.header.StartOffset), int64(l.header.EndOffset)
		cost, _, _ := blockCost(end, l.length, size, RecordHeaderLength)
		if freeSpace(start, end, l.length, empty) >= cost {
			break
		}
		if empty {
			return errors.Wrapf(ErrLogFull,
				"record of %d bytes cannot fit a log of %d", size, l.length)
		}
		if err := l.evictFirst(); err != nil {
			return err
		}
		if l.header.OldestRecordNumber == 0 {
			l.header.StartOffset = HeaderLength
			l.header.EndOffset = HeaderLength
			l.header.Flags &^= FlagWrap
			log.Debug("log emptied by eviction, ring collapsed")
		}
	}

	// Eviction may have emptied the log entirely; the record written
	// now becomes the oldest one either way.
	wasEmpty = l.header.OldestRecordNumber == 0

	end = int64(l.header.EndOffset)
	writeOffset := end
	if endSpace := l.length - end; endSpace < RecordHeaderLength {
		if err := l.fillUnused(end, endSpace); err != nil {
			return err
		}
		l.header.Flags |= FlagWrap
		writeOffset = HeaderLength
	}

	if _, err := l.io.Seek(writeOffset, fileio.SeekSet); err != nil {
		return err
	}
	hdrBuf := make([]byte, RecordHeaderLength)
	putRecordHeader(hdrBuf, &rec.Header)
	if err := l.io.Write(hdrBuf); err != nil {
		return err
	}

	var newEnd int64
	payloadPos := writeOffset + RecordHeaderLength
	if run := l.length - payloadPos; int64(len(rec.Data)) > run {
		if err := l.io.Write(rec.Data[:run]); err != nil {
			return err
		}
		if _, err := l.io.Seek(HeaderLength, fileio.SeekSet); err != nil {
			return err
		}
		if err := l.io.Write(rec.Data[run:]); err != nil {
			return err
		}
		l.header.Flags |= FlagWrap
		newEnd = HeaderLength + int64(len(rec.Data)) - run
	} else {
		if err := l.io.Write(rec.Data); err != nil {
			return err
		}
		newEnd = payloadPos + int64(len(rec.Data))
	}
	// A record ending exactly at the file end leaves the next write
	// position just past the log header; the live region still does
	// not cross the ring end, so this is not a wrap.
	if newEnd == l.length {
		newEnd = HeaderLength
	}

	if wasEmpty {
		l.header.OldestRecordNumber = rec.Header.RecordNumber
		l.header.StartOffset = uint32(writeOffset)
		l.firstRecLength = rec.Header.Length
	}
	l.header.CurrentRecordNumber = rec.Header.RecordNumber + 1
	l.header.EndOffset = uint32(newEnd)
	l.changed = true
	return nil
}

// evictFirst deletes the oldest record by advancing startOffset past
// it, refreshing oldestRecordNumber from the record that follows.
func (l *Log) evictFirst() error {
	if l.header.OldestRecordNumber == 0 {
		return errors.Wrap(ErrDamaged, "no records left to evict")
	}
	start := int64(l.header.StartOffset)

	if l.firstRecLength == 0 {
		if _, err := l.io.Seek(start, fileio.SeekSet); err != nil {
			return err
		}
		var lenBuf [sizeofDword]byte
		if err := l.io.Read(lenBuf[:]); err != nil {
			return err
		}
		l.firstRecLength = binary.LittleEndian.Uint32(lenBuf[:])
		if l.firstRecLength < RecordMinLength {
			return errors.Wrapf(ErrDamaged, "impossible first record length %d",
				l.firstRecLength)
		}
	}

	newStart := advanceStart(start, int64(l.firstRecLength), l.length)
	log.WithFields(log.Fields{
		"record": l.header.OldestRecordNumber,
		"start":  newStart,
	}).Debug("evicting the oldest record")

	// Deleting the only record empties the log.
	if l.header.CurrentRecordNumber-l.header.OldestRecordNumber <= 1 ||
		uint32(newStart) == l.header.EndOffset {
		l.header.StartOffset = uint32(newStart)
		l.header.OldestRecordNumber = 0
		l.firstRecLength = 0
		return nil
	}

	l.header.StartOffset = uint32(newStart)
	if _, err := l.io.Seek(newStart, fileio.SeekSet); err != nil {
		return err
	}
	buf := make([]byte, RecordHeaderLength)
	if err := l.io.Read(buf); err != nil {
		return err
	}
	hdr := parseRecordHeader(buf)
	l.header.OldestRecordNumber = hdr.RecordNumber
	l.firstRecLength = hdr.Length
	return nil
}

// fillUnused overwrites n residual bytes at off with the repeating
// filler pattern 27 00 00 00.
func (l *Log) fillUnused(off, n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := l.io.Seek(off, fileio.SeekSet); err != nil {
		return err
	}
	pattern := [sizeofDword]byte{0x27, 0x00, 0x00, 0x00}
	filler := make([]byte, n)
	for i := range filler {
		filler[i] = pattern[i%sizeofDword]
	}
	return l.io.Write(filler)
}

// Close finalizes a changed log: it writes the end-of-log marker after
// the newest record, clears the dirty flag and rewrites the header.
// An unchanged log is left untouched. The medium stays open; it
// belongs to the caller to close.
func (l *Log) Close() error {
	if !l.changed {
		return nil
	}

	// Make room for the marker. Non-overwriting appends already left
	// room for it; overwriting appends evict only for the record, so
	// after them a tight geometry can force an eviction here.
	for {
		empty := l.header.OldestRecordNumber == 0
		start, end := int64(l.header.StartOffset), int64(l.header.EndOffset)
		cost, _, _ := blockCost(end, l.length, EOFLength, EOFLength)
		if freeSpace(start, end, l.length, empty) >= cost {
			break
		}
		if empty {
			return errors.Wrap(ErrLogFull, "no room for the end-of-log marker")
		}
		if err := l.evictFirst(); err != nil {
			return err
		}
		if l.header.OldestRecordNumber == 0 {
			l.header.StartOffset = HeaderLength
			l.header.EndOffset = HeaderLength
			l.header.Flags &^= FlagWrap
		}
	}

	end := int64(l.header.EndOffset)
	writeOffset := end
	if endSpace := l.length - end; endSpace < EOFLength {
		if err := l.fillUnused(end, endSpace); err != nil {
			return err
		}
		l.header.Flags |= FlagWrap
		writeOffset = HeaderLength
		l.header.EndOffset = uint32(writeOffset)
	}

	eof := eofRecord{
		RecordSizeBeginning: EOFLength,
		One:                 eofMagicOne,
		Two:                 eofMagicTwo,
		Three:               eofMagicThree,
		Four:                eofMagicFour,
		BeginRecord:         l.header.StartOffset,
		EndRecord:           l.header.EndOffset,
		CurrentRecordNumber: l.header.CurrentRecordNumber,
		OldestRecordNumber:  l.header.OldestRecordNumber,
		RecordSizeEnd:       EOFLength,
	}
	if _, err := l.io.Seek(writeOffset, fileio.SeekSet); err != nil {
		return err
	}
	buf := make([]byte, EOFLength)
	putEOF(buf, &eof)
	if err := l.io.Write(buf); err != nil {
		return err
	}

	l.header.Flags &^= FlagDirty
	if err := l.writeHeader(); err != nil {
		return err
	}
	l.changed = false
	return nil
}
