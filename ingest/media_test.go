package ingest

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaDir_SaveOpenRemove(t *testing.T) {
	m, err := NewMediaDir(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	rel, err := m.Save("../../etc/beach.jpg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f-]{36}_beach\.jpg$`, rel)

	f, err := m.Open(rel)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	require.NoError(t, m.Remove(rel))
	require.NoError(t, m.Remove(rel))

	_, err = os.Stat(filepath.Join(m.Root(), rel))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMediaDir_UniqueNames(t *testing.T) {
	m, err := NewMediaDir(t.TempDir())
	require.NoError(t, err)

	a, err := m.Save("same.jpg", []byte("a"))
	require.NoError(t, err)
	b, err := m.Save("same.jpg", []byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestMediaDir_RejectsTraversal(t *testing.T) {
	m, err := NewMediaDir(t.TempDir())
	require.NoError(t, err)

	for _, rel := range []string{"", ".", "..", "../secret", "a/b.jpg", `a\b.jpg`} {
		_, err := m.Path(rel)
		assert.ErrorIs(t, err, ErrInvalidMediaPath, rel)
	}
}

func TestMediaDir_SaveStripsClientDirectories(t *testing.T) {
	m, err := NewMediaDir(t.TempDir())
	require.NoError(t, err)

	cases := map[string]string{
		`C:\fakepath\beach.png`: "beach.png",
		`photos/2019\dad.jpg`:   "dad.jpg",
		`..\..\secret.mp3`:      "secret.mp3",
		`dir\`:                  "upload",
		"..":                    "upload",
		"":                      "upload",
	}
	for in, want := range cases {
		rel, err := m.Save(in, []byte("x"))
		require.NoError(t, err, in)
		assert.Regexp(t, `^[0-9a-f-]{36}_`+regexp.QuoteMeta(want)+`$`, rel, in)

		_, err = m.Path(rel)
		assert.NoError(t, err, in)
		require.NoError(t, m.Remove(rel), in)
	}

	entries, err := os.ReadDir(m.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
