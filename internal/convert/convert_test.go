package convert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowflk/evtkit/internal/evt"
	"github.com/snowflk/evtkit/internal/fileio"
)

func decodeAll(t *testing.T, m fileio.Medium) []*evt.RecordContents {
	t.Helper()
	l, flags, err := evt.Open(m)
	require.NoError(t, err)
	require.Zero(t, flags)

	var out []*evt.RecordContents
	for {
		rec, err := l.ReadRecord()
		if err == evt.ErrEndOfLog {
			return out
		}
		require.NoError(t, err)
		contents, _, err := evt.DecodeRecordData(rec)
		require.NoError(t, err)
		out = append(out, contents)
	}
}

func TestCSVToEvtBasicRow(t *testing.T) {
	input := "4096\n" +
		"1, 2000-01-01 00:00:00, 2000-01-01 00:00:00, 42, Information, 0," +
		" src, host, , one|two, \n"

	m := fileio.NewMemory()
	require.NoError(t, CSVToEvt(strings.NewReader(input), m, EncodeOptions{}))

	size, err := m.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(4096), size)

	l, flags, err := evt.Open(m)
	require.NoError(t, err)
	require.Zero(t, flags)

	rec, err := l.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), rec.Header.RecordNumber)
	assert.Equal(t, uint32(42), rec.Header.EventID)
	assert.Equal(t, evt.EventInformation, rec.Header.EventType)
	assert.Equal(t, uint16(2), rec.Header.NumStrings)

	contents, _, err := evt.DecodeRecordData(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, contents.Strings)
	assert.Equal(t, "src", contents.SourceName)
	assert.Equal(t, "host", contents.ComputerName)
	assert.Empty(t, contents.UserSid)
	assert.Equal(t, int64(946684800), contents.TimeGenerated)

	_, err = l.ReadRecord()
	assert.Equal(t, evt.ErrEndOfLog, err)
}

func TestCSVToEvtSkipsBrokenRows(t *testing.T) {
	input := "1024\n" +
		"1,2000-01-01 00:00:00,2000-01-01 00:00:00,1,Error,0,a,b,,x,\n" +
		"2,NOT A TIME,2000-01-01 00:00:00,2,Error,0,a,b,,x,\n" + // bad time
		"3,2000-01-01 00:00:00,2000-01-01 00:00:00\n" + // incomplete
		"\n" + // empty line
		"4,2000-01-01 00:00:01,2000-01-01 00:00:01,4,Warning,0,a,b,,y,\n"

	m := fileio.NewMemory()
	require.NoError(t, CSVToEvt(strings.NewReader(input), m, EncodeOptions{}))

	records := decodeAll(t, m)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"x"}, records[0].Strings)
	assert.Equal(t, []string{"y"}, records[1].Strings)
}

func TestCSVToEvtRejectsRegressingNumbers(t *testing.T) {
	input := "1024\n" +
		"5,2000-01-01 00:00:00,2000-01-01 00:00:00,1,Error,0,a,b,,x,\n" +
		"4,2000-01-01 00:00:00,2000-01-01 00:00:00,2,Error,0,a,b,,y,\n"

	m := fileio.NewMemory()
	require.NoError(t, CSVToEvt(strings.NewReader(input), m, EncodeOptions{}))

	records := decodeAll(t, m)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"x"}, records[0].Strings)
}

func TestCSVToEvtRenumbers(t *testing.T) {
	input := "1024\n" +
		"700,2000-01-01 00:00:00,2000-01-01 00:00:00,1,Error,0,a,b,,x,\n" +
		"9,2000-01-01 00:00:00,2000-01-01 00:00:00,2,Error,0,a,b,,y,\n"

	m := fileio.NewMemory()
	require.NoError(t, CSVToEvt(strings.NewReader(input), m,
		EncodeOptions{Renumber: true}))

	l, _, err := evt.Open(m)
	require.NoError(t, err)
	first, err := l.ReadRecord()
	require.NoError(t, err)
	second, err := l.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), first.Header.RecordNumber)
	assert.Equal(t, uint32(2), second.Header.RecordNumber)
}

func TestCSVToEvtAppendContinuesNumbering(t *testing.T) {
	row := func(n string) string {
		return n + ",2000-01-01 00:00:00,2000-01-01 00:00:00,1,Error,0,a,b,,x,\n"
	}
	m := fileio.NewMemory()
	require.NoError(t, CSVToEvt(strings.NewReader("1024\n"+row("1")+row("2")),
		m, EncodeOptions{}))

	// the size row is ignored in append mode; the header rules
	require.NoError(t, CSVToEvt(strings.NewReader("99999\n"+row("1")),
		m, EncodeOptions{Append: true, Renumber: true}))

	size, err := m.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(1024), size)

	l, _, err := evt.Open(m)
	require.NoError(t, err)
	var numbers []uint32
	for {
		rec, err := l.ReadRecord()
		if err == evt.ErrEndOfLog {
			break
		}
		require.NoError(t, err)
		numbers = append(numbers, rec.Header.RecordNumber)
	}
	assert.Equal(t, []uint32{1, 2, 3}, numbers)
}

func TestEvtToCSVOutput(t *testing.T) {
	m := fileio.NewMemory()
	l, err := evt.OpenCreate(m, 1024)
	require.NoError(t, err)

	var rec evt.RecordData
	_, err = evt.EncodeRecordData(&evt.RecordContents{
		TimeGenerated: 1000000000,
		TimeWritten:   1000000000,
		SourceName:    "src",
		ComputerName:  "host",
		UserSid:       "S-1-5-32-544",
		Strings:       []string{"alpha", "beta"},
		Data:          []byte{0, 1, 2, 3},
	}, &rec)
	require.NoError(t, err)
	rec.Header.RecordNumber = 1
	rec.Header.EventID = 42
	rec.Header.EventType = evt.EventInformation
	require.NoError(t, l.AppendRecord(&rec, false))
	require.NoError(t, l.Close())

	var out bytes.Buffer
	require.NoError(t, EvtToCSV(m, &out, DecodeOptions{}))

	assert.Equal(t,
		"1024\n"+
			"1,2001-09-09 01:46:40,2001-09-09 01:46:40,42,Information,0,"+
			"src,host,S-1-5-32-544,alpha|beta,AAECAw==\n",
		out.String())
}

func TestEvtToCSVAppendSkipsSizeRow(t *testing.T) {
	m := fileio.NewMemory()
	l, err := evt.OpenCreate(m, 256)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	var out bytes.Buffer
	require.NoError(t, EvtToCSV(m, &out, DecodeOptions{Append: true}))
	assert.Empty(t, out.String())
}

func TestRoundTripPreservesEscapes(t *testing.T) {
	m := fileio.NewMemory()
	l, err := evt.OpenCreate(m, 2048)
	require.NoError(t, err)

	var rec evt.RecordData
	_, err = evt.EncodeRecordData(&evt.RecordContents{
		TimeGenerated: 1500000000,
		TimeWritten:   1500000001,
		SourceName:    "pipes",
		ComputerName:  "box",
		Strings:       []string{`with|pipe`, `with\backslash`},
		Data:          []byte("payload"),
	}, &rec)
	require.NoError(t, err)
	rec.Header.RecordNumber = 1
	rec.Header.EventType = evt.EventWarning
	require.NoError(t, l.AppendRecord(&rec, false))
	require.NoError(t, l.Close())

	var first bytes.Buffer
	require.NoError(t, EvtToCSV(m, &first, DecodeOptions{}))
	assert.Contains(t, first.String(), `with\|pipe`)
	assert.Contains(t, first.String(), `with\\backslash`)

	// CSV -> log -> CSV must reproduce the text exactly
	m2 := fileio.NewMemory()
	require.NoError(t, CSVToEvt(strings.NewReader(first.String()), m2, EncodeOptions{}))

	var second bytes.Buffer
	require.NoError(t, EvtToCSV(m2, &second, DecodeOptions{}))
	assert.Equal(t, first.String(), second.String())

	records := decodeAll(t, m2)
	require.Len(t, records, 1)
	assert.Equal(t, []string{`with|pipe`, `with\backslash`}, records[0].Strings)
}

func TestCSVToEvtBadSizeRow(t *testing.T) {
	m := fileio.NewMemory()
	err := CSVToEvt(strings.NewReader("not a number\n"), m, EncodeOptions{})
	assert.Error(t, err)
}
