package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectorListsImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o700))

	s, err := NewSelector(dir, "/static/images/events/")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "/static/images/events/a.JPG", s.For(2))
	assert.Equal(t, "/static/images/events/b.png", s.For(3))
}

func TestNewSelectorMissingDir(t *testing.T) {
	_, err := NewSelector(filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
}

func TestSelectorWithoutImages(t *testing.T) {
	s, err := NewSelector("", "/img")
	require.NoError(t, err)
	assert.Equal(t, "", s.For(7))

	var nilSelector *Selector
	assert.Equal(t, "", nilSelector.For(7))
}

func TestSelectorIsStablePerEvent(t *testing.T) {
	s := NewStatic("/img", "one.png", "two.png", "three.png")
	assert.Equal(t, "/img/two.png", s.For(4))
	assert.Equal(t, s.For(4), s.For(4))
	assert.Equal(t, "/img/one.png", s.For(0))
	assert.Equal(t, "two.png", NewStatic("", "one.png", "two.png").For(1))
}
