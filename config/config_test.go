package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odlm.ini")

	cfg, wrote, err := Load(path)
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err, "defaults should have been written to disk")
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odlm.ini")

	want := Default()
	want.SimulationParams.SEG_MAX_CYCLES = 123
	want.PixelsParams.PIXEL_RANDOM_INIT = false
	want.Neuron.TAU = 2.5

	require.NoError(t, Save(want, path))

	got, wrote, err := Load(path)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, want, got)
}

func TestLoad_MalformedLineFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odlm.ini")

	require.NoError(t, writeRaw(path, "[Neuron]\nPOT_THRESHOLD not-a-number\n"))

	cfg, wrote, err := Load(path)
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, Default(), cfg)

	// the defaults were written back out, so loading again round-trips clean
	cfg2, wrote2, err := Load(path)
	require.NoError(t, err)
	assert.False(t, wrote2)
	assert.Equal(t, Default(), cfg2)
}

func TestLoad_UnknownSectionIsAParseFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odlm.ini")
	require.NoError(t, writeRaw(path, "[NotASection]\nFOO = 1\n"))

	cfg, wrote, err := Load(path)
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_BooleanIsCaseSensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odlm.ini")
	require.NoError(t, writeRaw(path, "[PixelsParams]\nPIXEL_RANDOM_INIT = true\n"))

	cfg, wrote, err := Load(path)
	require.NoError(t, err)
	assert.True(t, wrote, "lowercase 'true' must be rejected, not silently accepted")
	assert.Equal(t, Default(), cfg)
}

func writeRaw(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
