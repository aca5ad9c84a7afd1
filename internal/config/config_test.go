package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("QBANK_CONFIG", filepath.Join(dir, "config.toml"))
	t.Setenv("QBANK_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{"QBANK_DATA_DIR", "QBANK_SNAPSHOTS_AUTO", "QBANK_SNAPSHOTS_INTERVAL", "QBANK_SNAPSHOTS_KEEP", "QBANK_EXAM_SIZE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestPath(t *testing.T) {
	t.Setenv("QBANK_CONFIG", "/etc/qbank.toml")
	assert.Equal(t, "/etc/qbank.toml", Path())

	t.Setenv("QBANK_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "qbank", "config.toml"), Path())
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data"), c.Data.Dir)
	assert.True(t, c.Snapshots.Auto)
	assert.Equal(t, 10*time.Minute, c.Snapshots.Interval)
	assert.Equal(t, 50, c.Snapshots.Keep)
	assert.Equal(t, 25, c.Exam.Size)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	toml := "[snapshots]\nauto = false\ninterval = \"30m\"\nkeep = 3\n\n[exam]\nsize = 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	c, err := Load()
	require.NoError(t, err)
	assert.False(t, c.Snapshots.Auto)
	assert.Equal(t, 30*time.Minute, c.Snapshots.Interval)
	assert.Equal(t, 3, c.Snapshots.Keep)
	assert.Equal(t, 10, c.Exam.Size)

	t.Setenv("QBANK_EXAM_SIZE", "40")
	c, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 40, c.Exam.Size)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[snapshots\n"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)

	c, err := Load()
	require.NoError(t, err)
	c.Snapshots.Auto = false
	c.Snapshots.Interval = 2 * time.Hour
	require.NoError(t, Save(c))

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestPreferencesPersistToggle(t *testing.T) {
	isolate(t)
	c, err := Load()
	require.NoError(t, err)

	p := NewPreferences(c)
	var seen []bool
	p.OnAutoSnapshots(func(on bool) { seen = append(seen, on) })

	require.NoError(t, p.SetAutoSnapshots(false))
	assert.False(t, p.AutoSnapshots())
	assert.Equal(t, []bool{false}, seen)

	reloaded, err := Load()
	require.NoError(t, err)
	assert.False(t, reloaded.Snapshots.Auto)
}

func TestPreferencesToggleKeepsDataDirUnpinned(t *testing.T) {
	dir := isolate(t)
	toml := "[snapshots]\ninterval = \"30m\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	c, err := Load()
	require.NoError(t, err)
	c.Data.Dir = filepath.Join(dir, "one-off")

	p := NewPreferences(c)
	require.NoError(t, p.SetAutoSnapshots(false))
	assert.Equal(t, filepath.Join(dir, "one-off"), p.Config().Data.Dir)

	later := filepath.Join(dir, "later-home")
	t.Setenv("QBANK_HOME", later)
	reloaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, later, reloaded.Data.Dir)
	assert.False(t, reloaded.Snapshots.Auto)
	assert.Equal(t, 30*time.Minute, reloaded.Snapshots.Interval)
}

func TestPreferencesKeepValueOnSaveError(t *testing.T) {
	p := &Preferences{
		cfg:  Config{Snapshots: SnapshotsConfig{Auto: true, Interval: time.Minute}},
		save: func(bool) error { return errors.New("read-only") },
	}
	called := false
	p.OnAutoSnapshots(func(bool) { called = true })

	require.Error(t, p.SetAutoSnapshots(false))
	assert.True(t, p.AutoSnapshots())
	assert.False(t, called)
	assert.Equal(t, time.Minute, p.SnapshotInterval())
}
