package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileIsEmpty(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "done.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("anything"))
}

func TestAppendPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "done.txt")
	l, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, l.Append("Person:Smith, John|John Smith|National|2024-01-01"))
	require.NoError(t, l.Append("Place:Hobart|Hobart|Tasmania|2024-01-01\n"))
	require.NoError(t, l.Append("Person:Smith, John|John Smith|National|2024-01-01"))
	assert.Equal(t, 2, l.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Person:Smith, John|John Smith|National|2024-01-01\nPlace:Hobart|Hobart|Tasmania|2024-01-01\n", string(data))

	again, err := Open(path)
	require.NoError(t, err)
	assert.True(t, again.Contains("Place:Hobart|Hobart|Tasmania|2024-01-01"))
	assert.Equal(t, l.Lines(), again.Lines())
}

func TestReadLinesSkipsBlankAndCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\r\n\n  \nb\n"), 0o644))
	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
}
