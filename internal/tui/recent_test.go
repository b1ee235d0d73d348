package tui

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateConfigDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
}

func TestSaveRecentMovesToFront(t *testing.T) {
	isolateConfigDir(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.db")
	b := filepath.Join(dir, "b.db")

	assert.Empty(t, LoadRecent())

	SaveRecent(a, filepath.Join(dir, "shops.json"))
	SaveRecent(b, "")
	SaveRecent(a, "")

	got := LoadRecent()
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].DBPath)
	assert.Equal(t, filepath.Join(dir, "shops.json"), got[0].ConfigPath)
	assert.Equal(t, b, got[1].DBPath)
}

func TestSaveRecentCapsList(t *testing.T) {
	isolateConfigDir(t)
	dir := t.TempDir()
	for i := 0; i < maxRecent+3; i++ {
		SaveRecent(filepath.Join(dir, fmt.Sprintf("%d.db", i)), "")
	}
	got := LoadRecent()
	require.Len(t, got, maxRecent)
	assert.Equal(t, filepath.Join(dir, fmt.Sprintf("%d.db", maxRecent+2)), got[0].DBPath)
}
