package recordlog_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MikhailWahib/recordfile/internal/diskmanager"
	"github.com/MikhailWahib/recordfile/internal/diskmanager/mockdm"
	"github.com/MikhailWahib/recordfile/internal/record"
	"github.com/MikhailWahib/recordfile/internal/recordlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, name string) string {
	testDir := t.TempDir()
	return filepath.Join(testDir, name)
}

func TestLog_BasicOperations(t *testing.T) {
	logPath := setup(t, "basic.log")

	l, err := recordlog.New(diskmanager.NewDiskManager(), logPath, nil)
	require.NoError(t, err)

	require.NoError(t, l.Append([]byte("value1")))
	require.NoError(t, l.Append([]byte("value2")))

	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "second close is a no-op")

	assert.FileExists(t, logPath)
}

func TestLog_Replay(t *testing.T) {
	logPath := setup(t, "replay.log")
	dm := diskmanager.NewDiskManager()

	l, err := recordlog.New(dm, logPath, nil)
	require.NoError(t, err)

	expected := [][]byte{
		[]byte("value1"),
		{},
		[]byte("value3"),
	}
	for _, e := range expected {
		require.NoError(t, l.Append(e))
	}
	require.NoError(t, l.Close())

	// Reopen log for replay
	l, err = recordlog.New(dm, logPath, nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	records, err := l.Replay()
	require.NoError(t, err)
	require.Len(t, records, len(expected))
	for i, r := range records {
		assert.True(t, bytes.Equal(expected[i], r), "record %d mismatch", i)
	}
}

func TestLog_EmptyReplay(t *testing.T) {
	l, err := recordlog.New(diskmanager.NewDiskManager(), setup(t, "empty.log"), nil)
	require.NoError(t, err)

	records, err := l.Replay()
	require.NoError(t, err)
	assert.Len(t, records, 0, "Expected empty replay, got records")
	require.NoError(t, l.Close())
}

func TestLog_AppendAfterReplay(t *testing.T) {
	l, err := recordlog.New(diskmanager.NewDiskManager(), setup(t, "after.log"), nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	require.NoError(t, l.Append([]byte("a")))
	_, err = l.Replay()
	require.NoError(t, err)

	require.NoError(t, l.Append([]byte("b")))
	records, err := l.Replay()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, records)
}

func TestLog_LargeRecords(t *testing.T) {
	logPath := setup(t, "large.log")
	dm := diskmanager.NewDiskManager()

	l, err := recordlog.New(dm, logPath, nil)
	require.NoError(t, err)

	large := bytes.Repeat([]byte{0xAB}, 64*1024)
	require.NoError(t, l.Append(large))
	require.NoError(t, l.Append([]byte("small_value")))
	require.NoError(t, l.Close())

	l, err = recordlog.New(dm, logPath, nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	records, err := l.Replay()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, bytes.Equal(large, records[0]), "Large record mismatch")
	assert.Equal(t, "small_value", string(records[1]))
}

func TestLog_Reopening(t *testing.T) {
	logPath := setup(t, "reopen.log")
	dm := diskmanager.NewDiskManager()

	l, err := recordlog.New(dm, logPath, nil)
	require.NoError(t, err)
	require.NoError(t, l.Append([]byte("value1")))
	require.NoError(t, l.Close())

	// Reopen and add more records
	l, err = recordlog.New(dm, logPath, nil)
	require.NoError(t, err)
	require.NoError(t, l.Append([]byte("value2")))
	require.NoError(t, l.Close())

	l, err = recordlog.New(dm, logPath, nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	records, err := l.Replay()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("value1"), []byte("value2")}, records)
}

func TestLog_TornTail(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	intact, err := record.Encode([]byte("intact"))
	require.NoError(t, err)
	torn, err := record.Encode([]byte("torn"))
	require.NoError(t, err)
	dm.SetContents("torn.log", append(intact, torn[:5]...))

	l, err := recordlog.New(dm, "torn.log", nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	records, err := l.Replay()
	assert.ErrorIs(t, err, recordlog.ErrTornRecord)
	assert.Equal(t, [][]byte{[]byte("intact")}, records)
}

func TestLog_ShortWrite(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	dm.Capacity = 8

	l, err := recordlog.New(dm, "full.log", nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	err = l.Append([]byte("too long for the card"))
	assert.ErrorIs(t, err, recordlog.ErrShortWrite)
}

func TestLog_ShortWriteRollsBack(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	dm.Capacity = 12

	l, err := recordlog.New(dm, "rollback.log", nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	require.NoError(t, l.Append([]byte("ab")))
	err = l.Append([]byte("cdefgh"))
	require.ErrorIs(t, err, recordlog.ErrShortWrite)

	got, ok := dm.Contents("rollback.log")
	require.True(t, ok)
	assert.Len(t, got, 6, "partial record must be cut off")

	dm.Capacity = 0
	require.NoError(t, l.Append([]byte("ok")))

	records, err := l.Replay()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("ab"), []byte("ok")}, records)
}

func TestLog_ShortWriteNothingWritten(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	dm.Capacity = 5

	l, err := recordlog.New(dm, "exact.log", nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	require.NoError(t, l.Append([]byte("x")))
	err = l.Append([]byte("y"))
	assert.ErrorIs(t, err, recordlog.ErrShortWrite)

	records, err := l.Replay()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x")}, records)
}

func TestLog_FailedRollback(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	dm.Capacity = 8
	dm.TruncateErr = errors.New("card removed")

	l, err := recordlog.New(dm, "stuck.log", nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	err = l.Append([]byte("too long for the card"))
	require.ErrorIs(t, err, recordlog.ErrShortWrite)

	dm.Capacity = 0
	dm.TruncateErr = nil
	err = l.Append([]byte("next"))
	assert.ErrorIs(t, err, recordlog.ErrFailed)

	got, ok := dm.Contents("stuck.log")
	require.True(t, ok)
	assert.Len(t, got, 8, "nothing appended after a failed rollback")
}

func TestLog_ReplayMissingFileKeepsLogOpen(t *testing.T) {
	dm := mockdm.NewMockDiskManager()

	l, err := recordlog.New(dm, "gone.log", nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	require.NoError(t, l.Append([]byte("a")))
	require.NoError(t, dm.Delete("gone.log"))

	_, err = l.Replay()
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, l.Append([]byte("b")))
	records, err := l.Replay()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("b")}, records)
}

func TestLog_SyncsOnAppend(t *testing.T) {
	dm := mockdm.NewMockDiskManager()

	l, err := recordlog.New(dm, "sync.log", nil)
	require.NoError(t, err)

	require.NoError(t, l.Append([]byte("x")))
	assert.Equal(t, 1, dm.Syncs)
	require.NoError(t, l.Close())
	assert.Equal(t, 2, dm.Syncs)
}

func TestLog_InvalidPath(t *testing.T) {
	_, err := recordlog.New(diskmanager.NewDiskManager(), "/nonexistent/directory/test.log", nil)
	assert.Error(t, err, "Expected error with invalid path, got nil")
}
