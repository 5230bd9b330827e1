package csvio

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Writer emits CSV records. Fields are written raw unless they contain
// a comma, a quote, CR or LF, or are empty; those are wrapped in
// quotes with embedded quotes doubled. Records end with a bare LF.
type Writer struct {
	w        *bufio.Writer
	notFirst bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func mustBeQuoted(c byte) bool {
	return c == '\n' || c == '\r' || c == '"' || c == ','
}

// Field appends one field to the current record.
func (w *Writer) Field(field string) error {
	if w.notFirst {
		if err := w.w.WriteByte(','); err != nil {
			return errors.Wrap(err, "write failed")
		}
	}
	w.notFirst = true

	quote := field == ""
	for i := 0; i < len(field); i++ {
		if mustBeQuoted(field[i]) {
			quote = true
			break
		}
	}
	if !quote {
		_, err := w.w.WriteString(field)
		return errors.Wrap(err, "write failed")
	}

	escaped := strings.ReplaceAll(field, `"`, `""`)
	if _, err := w.w.WriteString(`"` + escaped + `"`); err != nil {
		return errors.Wrap(err, "write failed")
	}
	return nil
}

// EndRecord terminates the current record.
func (w *Writer) EndRecord() error {
	w.notFirst = false
	return errors.Wrap(w.w.WriteByte('\n'), "write failed")
}

func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "flush failed")
}
