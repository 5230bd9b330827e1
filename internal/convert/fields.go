// Package convert orchestrates the two conversion directions between
// the CSV representation and the binary log format.
package convert

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/snowflk/evtkit/internal/evt"
)

// timeLayout is the CSV timestamp format, always UTC.
const timeLayout = "2006-01-02 15:04:05"

func parseTime(s string) (int64, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid time %q", s)
	}
	return t.Unix(), nil
}

func formatTime(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(timeLayout)
}

// eventTypeLabel names well-known event types; anything else is
// expressed as its number.
func eventTypeLabel(t uint16) string {
	switch t {
	case evt.EventInformation:
		return "Information"
	case evt.EventWarning:
		return "Warning"
	case evt.EventError:
		return "Error"
	case evt.EventAuditSuccess:
		return "Audit Success"
	case evt.EventAuditFailure:
		return "Audit Failure"
	default:
		return strconv.FormatUint(uint64(t), 10)
	}
}

func parseEventType(s string) (uint16, error) {
	switch s {
	case "Information":
		return evt.EventInformation, nil
	case "Warning":
		return evt.EventWarning, nil
	case "Error":
		return evt.EventError, nil
	case "Audit Success":
		return evt.EventAuditSuccess, nil
	case "Audit Failure":
		return evt.EventAuditFailure, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid event type %q", s)
	}
	return uint16(n), nil
}

// splitStrings breaks the strings column on unescaped "|" separators.
// A backslash makes the following byte literal; a trailing backslash
// is dropped. An empty column means no strings at all.
func splitStrings(field string) []string {
	if field == "" {
		return nil
	}
	var out []string
	var sb strings.Builder
	for i := 0; i < len(field); i++ {
		switch c := field[i]; c {
		case '\\':
			if i+1 < len(field) {
				i++
				sb.WriteByte(field[i])
			}
		case '|':
			out = append(out, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	return append(out, sb.String())
}

// joinStrings is the inverse: "|" separates, "\" escapes both itself
// and the separator.
func joinStrings(strs []string) string {
	var sb strings.Builder
	for i, s := range strs {
		if i > 0 {
			sb.WriteByte('|')
		}
		for j := 0; j < len(s); j++ {
			if s[j] == '|' || s[j] == '\\' {
				sb.WriteByte('\\')
			}
			sb.WriteByte(s[j])
		}
	}
	return sb.String()
}

func countLineBreaks(s string) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' || s[i] == '\n' {
			n++
			if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		}
	}
	return n
}
