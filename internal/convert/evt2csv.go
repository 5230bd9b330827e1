package convert

import (
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/snowflk/evtkit/internal/b64"
	"github.com/snowflk/evtkit/internal/csvio"
	"github.com/snowflk/evtkit/internal/evt"
	"github.com/snowflk/evtkit/internal/fileio"
)

// DecodeOptions control the log to CSV conversion.
type DecodeOptions struct {
	// Append suppresses the leading size metadata row, so the output
	// can be concatenated onto an earlier conversion.
	Append bool
}

// EvtToCSV decodes the log on m into CSV rows on out. Records that
// decode with errors are reported and skipped; the run continues with
// the next record.
func EvtToCSV(m fileio.Medium, out io.Writer, opts DecodeOptions) error {
	logger := log.WithField("run", uuid.New().String())

	input, hdrFlags, err := evt.Open(m)
	if err != nil {
		if hdrFlags != 0 {
			logger.Errorf("opening the log file failed: %s", hdrFlags)
			reportSignatureScan(m, logger)
		}
		return err
	}

	if input.Header().Flags&evt.FlagDirty != 0 {
		logger.Warn("the log file is marked dirty")
	}

	w := csvio.NewWriter(out)
	if !opts.Append {
		// A single metadata row with the file size: the only value
		// besides the records needed to reconstruct the log.
		if err := w.Field(strconv.FormatInt(input.Length(), 10)); err != nil {
			return err
		}
		if err := w.EndRecord(); err != nil {
			return err
		}
	}

	for {
		rec, err := input.ReadRecord()
		if errors.Cause(err) == evt.ErrEndOfLog {
			break
		}
		if err != nil {
			return errors.Wrap(err, "reading the log failed")
		}

		contents, flags, err := evt.DecodeRecordData(rec)
		if err != nil {
			logger.Warnf("record %d decoded with errors: %s, skipping it",
				rec.Header.RecordNumber, flags)
			continue
		}
		if err := writeRow(w, rec, contents); err != nil {
			return err
		}
	}

	if err := input.Close(); err != nil {
		return err
	}
	return w.Flush()
}

// reportSignatureScan hints where intact structures still sit in a log
// whose header does not validate.
func reportSignatureScan(m fileio.Medium, logger *log.Entry) {
	if _, err := m.Seek(0, fileio.SeekSet); err != nil {
		return
	}
	length, err := m.Length()
	if err != nil {
		return
	}
	kind, offset, err := evt.ScanSignature(m, length)
	if err != nil {
		return
	}
	switch kind {
	case evt.ScanHeader:
		logger.Infof("a header candidate sits at offset %d", offset)
	case evt.ScanRecord:
		logger.Infof("a record candidate sits at offset %d", offset)
	}
}

func writeRow(w *csvio.Writer, rec *evt.RecordData, contents *evt.RecordContents) error {
	fields := []string{
		strconv.FormatUint(uint64(rec.Header.RecordNumber), 10),
		formatTime(contents.TimeGenerated),
		formatTime(contents.TimeWritten),
		strconv.FormatUint(uint64(rec.Header.EventID), 10),
		eventTypeLabel(rec.Header.EventType),
		strconv.FormatUint(uint64(rec.Header.EventCategory), 10),
		contents.SourceName,
		contents.ComputerName,
		contents.UserSid,
		joinStrings(contents.Strings),
		b64.Encode(contents.Data),
	}
	for _, f := range fields {
		if err := w.Field(f); err != nil {
			return err
		}
	}
	return w.EndRecord()
}
