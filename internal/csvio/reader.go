// Package csvio implements the CSV dialect of the converter: commas
// separate fields, CR, LF or CRLF ends a record, double quotes wrap
// fields that need them with embedded quotes doubled. The reader is a
// small state machine; the stdlib encoding/csv cannot be used because
// it neither ends a record on a lone CR nor quotes empty fields on
// output.
package csvio

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Token classifies what Read returned.
type Token int

const (
	// Field carries the next field of the current record.
	Field Token = iota
	// EOR marks the end of a record.
	EOR
	// EOF marks the end of the input; no further tokens follow.
	EOF
)

const (
	stateNormal = iota
	stateInQuotes
	stateEOR
	stateEOREOF
	stateEOF
)

// Reader tokenizes CSV input field by field.
type Reader struct {
	r     *bufio.Reader
	state int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next token. When the token is Field, field holds
// its (unescaped) content. After EOF has been returned once, every
// further call returns EOF again.
func (r *Reader) Read() (field string, tok Token, err error) {
	var sb strings.Builder

	for {
		switch r.state {
		case stateNormal:
			c, err := r.r.ReadByte()
			switch {
			case err == io.EOF:
				r.state = stateEOREOF
				return sb.String(), Field, nil
			case err != nil:
				return "", EOF, errors.Wrap(err, "read failed")
			case c == ',':
				return sb.String(), Field, nil
			case c == '\r':
				if next, err := r.r.ReadByte(); err == nil && next != '\n' {
					r.r.UnreadByte()
				}
				r.state = stateEOR
				return sb.String(), Field, nil
			case c == '\n':
				r.state = stateEOR
				return sb.String(), Field, nil
			case c == '"':
				r.state = stateInQuotes
			default:
				sb.WriteByte(c)
			}

		case stateInQuotes:
			c, err := r.r.ReadByte()
			switch {
			case err == io.EOF:
				r.state = stateEOREOF
				return sb.String(), Field, nil
			case err != nil:
				return "", EOF, errors.Wrap(err, "read failed")
			case c == '"':
				next, err := r.r.ReadByte()
				if err == nil && next == '"' {
					sb.WriteByte('"')
					continue
				}
				if err == nil {
					r.r.UnreadByte()
				}
				r.state = stateNormal
			default:
				sb.WriteByte(c)
			}

		case stateEOR:
			r.state = stateNormal
			return "", EOR, nil

		case stateEOREOF:
			r.state = stateEOF
			return "", EOR, nil

		default: // stateEOF
			return "", EOF, nil
		}
	}
}
