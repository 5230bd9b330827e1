package convert

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/snowflk/evtkit/internal/b64"
	"github.com/snowflk/evtkit/internal/csvio"
	"github.com/snowflk/evtkit/internal/evt"
	"github.com/snowflk/evtkit/internal/fileio"
)

// EncodeOptions control the CSV to log conversion.
type EncodeOptions struct {
	// Renumber replaces the record numbers from the input with a fresh
	// sequence continuing from the log's current record number.
	Renumber bool
	// Append adds to an existing log instead of creating a new one.
	Append bool
	// NoOverwrite turns a full log into a fatal error instead of
	// evicting the oldest records.
	NoOverwrite bool
}

// Positions of the record fields within a CSV row.
const (
	fieldRecordNo = iota
	fieldTimeGenerated
	fieldTimeWritten
	fieldEventID
	fieldEventType
	fieldEventCategory
	fieldSourceName
	fieldComputerName
	fieldSid
	fieldStrings
	fieldData
	fieldEnd
	fieldIgnore
)

type encoder struct {
	output *evt.Log
	opts   EncodeOptions
	logger *log.Entry

	lineNo       int64
	overwrite    bool
	firstWritten bool

	field      int
	ignore     bool
	emptyFirst bool
	contents   evt.RecordContents
	rec        evt.RecordData
}

// CSVToEvt reads CSV rows from in and writes them as records into the
// log on m. The first row carries the log size in bytes; it is ignored
// in append mode, where the existing header is authoritative.
func CSVToEvt(in io.Reader, m fileio.Medium, opts EncodeOptions) error {
	logger := log.WithField("run", uuid.New().String())
	reader := csvio.NewReader(in)

	size, err := readSizeRecord(reader)
	if err != nil {
		return err
	}

	var output *evt.Log
	if opts.Append {
		var flags evt.HeaderFlags
		if output, flags, err = evt.Open(m); err != nil {
			if flags != 0 {
				logger.Errorf("cannot append, header invalid: %s", flags)
			}
			return err
		}
	} else if output, err = evt.OpenCreate(m, size); err != nil {
		return err
	}

	e := &encoder{
		output: output,
		opts:   opts,
		logger: logger,
		lineNo: 2,
	}
	e.reset()

	convErr := e.consume(reader)

	if err := output.Close(); err != nil {
		logger.Errorf("failed to close the log file properly: %v", err)
		if convErr == nil {
			convErr = err
		}
	}
	return convErr
}

// readSizeRecord parses the leading single-field metadata row with the
// target log size. Any extra fields on the row are skipped.
func readSizeRecord(reader *csvio.Reader) (uint32, error) {
	field, tok, err := reader.Read()
	if err != nil {
		return 0, err
	}
	if tok != csvio.Field {
		return 0, errors.New("failed to read the filesize record")
	}
	size, parseErr := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
	if parseErr != nil || size > math.MaxUint32 {
		return 0, errors.Errorf("failed to parse the filesize record %q", field)
	}
	for {
		_, tok, err := reader.Read()
		if err != nil {
			return 0, err
		}
		if tok != csvio.Field {
			break
		}
	}
	return uint32(size), nil
}

func (e *encoder) consume(reader *csvio.Reader) error {
	for {
		field, tok, err := reader.Read()
		if err != nil {
			return errors.Wrap(err, "error reading the input")
		}
		switch tok {
		case csvio.Field:
			if e.field != fieldIgnore {
				e.processField(field)
			}
			e.lineNo += countLineBreaks(field)

		case csvio.EOR:
			if !e.ignore {
				if e.field < fieldEnd {
					e.logger.Errorf("line %d: incomplete record, skipping it", e.lineNo)
				} else if err := e.processRecord(); err != nil {
					return err
				}
			}
			e.lineNo++
			e.reset()

		case csvio.EOF:
			return nil
		}
	}
}

func (e *encoder) reset() {
	e.contents = evt.RecordContents{}
	e.rec = evt.RecordData{}
	e.rec.Header.Reserved = evt.Signature
	e.field = 0
	e.ignore = false
	e.emptyFirst = false
}

// skip abandons the current row with an error message.
func (e *encoder) skip(msg string) {
	e.logger.Errorf("line %d: %s, skipping the record", e.lineNo, msg)
	e.field = fieldIgnore
	e.ignore = true
}

func (e *encoder) parseUint32(token, what string) (uint32, bool) {
	n, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		e.skip("failed to parse " + what)
		return 0, false
	}
	if n > math.MaxUint32 {
		e.skip("integer out of 32-bit range in " + what)
		return 0, false
	}
	return uint32(n), true
}

func (e *encoder) processField(token string) {
	// Hand-written CSV tends to pad fields after the separators.
	token = strings.TrimSpace(token)
	field := e.field
	e.field++

	switch field {
	case fieldRecordNo:
		e.processRecordNumber(token)

	case fieldTimeGenerated:
		// An empty line scans as a single zero-length field; it was
		// not reported back then because another field could follow.
		if e.emptyFirst {
			e.skip("a record without a record number")
			return
		}
		t, err := parseTime(token)
		if err != nil {
			e.skip("failed to parse generation time")
			return
		}
		e.contents.TimeGenerated = t

	case fieldTimeWritten:
		t, err := parseTime(token)
		if err != nil {
			e.skip("failed to parse written time")
			return
		}
		e.contents.TimeWritten = t

	case fieldEventID:
		if n, ok := e.parseUint32(token, "event ID"); ok {
			e.rec.Header.EventID = n
		}

	case fieldEventType:
		t, err := parseEventType(token)
		if err != nil {
			e.skip("failed to parse event type")
			return
		}
		e.rec.Header.EventType = t

	case fieldEventCategory:
		if n, ok := e.parseUint32(token, "event category"); ok {
			e.rec.Header.EventCategory = uint16(n)
		}

	case fieldSourceName:
		e.contents.SourceName = token

	case fieldComputerName:
		e.contents.ComputerName = token

	case fieldSid:
		e.contents.UserSid = token

	case fieldStrings:
		e.contents.Strings = splitStrings(token)

	case fieldData:
		e.contents.Data = b64.Decode(token)

	case fieldEnd:
		e.logger.Warnf("line %d: extraneous field(s) in a record", e.lineNo)
	}
}

func (e *encoder) processRecordNumber(token string) {
	if token == "" {
		e.emptyFirst = true
		e.ignore = true
		return
	}

	var msg string
	number, err := strconv.ParseUint(token, 10, 64)
	switch {
	case err != nil:
		msg = "invalid record number"
	case number > math.MaxUint32:
		msg = "record number out of 32-bit range"
	case number == 0:
		msg = "record numbers can't be zero"
	}

	current := e.output.Header().CurrentRecordNumber
	if e.opts.Renumber {
		if msg != "" {
			e.logger.Warnf("line %d: %s", e.lineNo, msg)
		}
		e.rec.Header.RecordNumber = current
		return
	}

	if msg != "" {
		e.skip(msg)
		return
	}
	if e.firstWritten {
		if uint32(number) > current {
			e.logger.Warnf("line %d: discontiguous record", e.lineNo)
		} else if uint32(number) < current {
			e.skip("a record with a record number less than or equal to the previous record")
			return
		}
	}
	e.rec.Header.RecordNumber = uint32(number)
}

func (e *encoder) processRecord() error {
	flags, err := evt.EncodeRecordData(&e.contents, &e.rec)
	if err != nil {
		e.logger.Errorf("line %d: data conversion failed (%s), skipping the record",
			e.lineNo, flags)
		return nil
	}

	err = e.output.AppendRecord(&e.rec, e.overwrite)
	if errors.Cause(err) == evt.ErrLogFull && !e.overwrite {
		if e.opts.NoOverwrite {
			return errors.Wrap(err, "the log is full")
		}
		e.logger.Warn("the log is full, removing old records")
		e.overwrite = true
		err = e.output.AppendRecord(&e.rec, true)
	}
	if err != nil {
		return errors.Wrap(err, "log write failed")
	}
	e.firstWritten = true
	return nil
}
