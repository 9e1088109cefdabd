package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	root := t.TempDir()
	l := NewRunLock(root)
	assert.False(t, l.Held())

	require.NoError(t, l.AcquireOrFail())
	assert.True(t, l.Held())
	assert.FileExists(t, filepath.Join(root, LockFileName))

	require.NoError(t, l.Release())
	assert.False(t, l.Held())
	assert.NoFileExists(t, filepath.Join(root, LockFileName))
}

func TestSecondAcquireFails(t *testing.T) {
	root := t.TempDir()
	first := NewRunLock(root)
	require.NoError(t, first.AcquireOrFail())
	defer first.Release()

	second := NewRunLock(root)
	err := second.AcquireOrFail()
	require.ErrorIs(t, err, ErrLockHeld)
	assert.False(t, second.Held())
	assert.Contains(t, err.Error(), "pid")
}

func TestReacquireAfterRelease(t *testing.T) {
	root := t.TempDir()
	l := NewRunLock(root)
	require.NoError(t, l.AcquireOrFail())
	require.NoError(t, l.Release())
	require.NoError(t, l.AcquireOrFail())
	require.NoError(t, l.Release())
}

func TestReleaseUnheldIsNoOp(t *testing.T) {
	l := NewRunLock(t.TempDir())
	require.NoError(t, l.Release())
}

func TestAcquireWithStaleEmptyLockFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, LockFileName), nil, 0o644))

	l := NewRunLock(root)
	err := l.AcquireOrFail()
	require.ErrorIs(t, err, ErrLockHeld)
	assert.NotContains(t, err.Error(), "pid")
}
