package evt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowflk/evtkit/internal/fileio"
)

func TestScanSignatureFindsHeader(t *testing.T) {
	m := fileio.NewMemory()
	l, err := OpenCreate(m, 512)
	require.NoError(t, err)
	require.NoError(t, l.AppendRecord(minimalRecord(t, 1), false))
	require.NoError(t, l.Close())

	_, err = m.Seek(0, fileio.SeekSet)
	require.NoError(t, err)
	kind, offset, err := ScanSignature(m, 512)
	require.NoError(t, err)
	assert.Equal(t, ScanHeader, kind)
	assert.Equal(t, int64(0), offset)
}

func TestScanSignatureFindsRecordPastBrokenHeader(t *testing.T) {
	m := fileio.NewMemory()
	l, err := OpenCreate(m, 512)
	require.NoError(t, err)
	require.NoError(t, l.AppendRecord(minimalRecord(t, 1), false))
	require.NoError(t, l.Close())

	// break the file header's signature; the record one survives
	m.Bytes()[4] ^= 0xff

	_, err = m.Seek(0, fileio.SeekSet)
	require.NoError(t, err)
	kind, offset, err := ScanSignature(m, 512)
	require.NoError(t, err)
	assert.Equal(t, ScanRecord, kind)
	assert.Equal(t, int64(HeaderLength), offset)
}

func TestScanSignatureFindsNothing(t *testing.T) {
	junk := make([]byte, 128)
	for i := range junk {
		junk[i] = byte(i)
	}
	m := fileio.NewMemoryBuffer(junk)
	kind, _, err := ScanSignature(m, 128)
	require.NoError(t, err)
	assert.Equal(t, ScanNothing, kind)
}
