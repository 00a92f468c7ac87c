package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadScreenIDProvisionsFromSample(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "screen.cfg.sample"), []byte("7\n"), 0o644))

	e := Discard(dir)
	id, err := e.ReadScreenID()
	require.NoError(t, err)
	require.Equal(t, 7, id)

	data, err := os.ReadFile(filepath.Join(dir, "screen.cfg"))
	require.NoError(t, err)
	require.Equal(t, "7\n", string(data))
}

func TestReadScreenIDDefaultsWithoutSample(t *testing.T) {
	e := Discard(t.TempDir())
	id, err := e.ReadScreenID()
	require.NoError(t, err)
	require.Equal(t, 1, id)
}

func TestReadScreenIDRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "screen.cfg"), []byte("twelve"), 0o644))
	_, err := Discard(dir).ReadScreenID()
	require.Error(t, err)
}

func TestReloadMarkerRoundTrip(t *testing.T) {
	e := Discard(t.TempDir())
	require.False(t, e.ConsumeReloadMarker())

	require.NoError(t, e.TouchReloadMarker())
	require.True(t, e.ConsumeReloadMarker())
	require.False(t, e.ConsumeReloadMarker(), "marker must be deleted once consumed")
}

func TestLogFileLifecycle(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "kiosk.log")
	e, err := New(Options{Paths: Paths{Base: dir}, LogPath: logPath})
	require.NoError(t, err)
	e.Logger.Info("hello")
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
	require.Equal(t, filepath.Join(dir, "graphics", "missing_poster.png"), e.MissingPosterPath())
}
