package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pool-designer/pkg/units"
)

func TestLoadWritesDefaultFileOnFirstRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pool-designer")

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 10.0, s.GridSize)
	assert.Equal(t, 8.0, s.VertexRadius)
	assert.Equal(t, 12.0, s.ClosureRadius)
	assert.Equal(t, 30.0, s.AxisTolerance)
	assert.Equal(t, 45.0, s.AngleStepDeg)
	assert.Equal(t, units.Feet, s.DefaultUnit)

	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}

func TestLoadReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	content := `snap:
  grid_size: 25
  vertex_radius: 4
units:
  default: meters
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 25.0, s.GridSize)
	assert.Equal(t, 4.0, s.VertexRadius)
	// unset keys keep their defaults
	assert.Equal(t, 12.0, s.ClosureRadius)
	assert.Equal(t, units.Meters, s.DefaultUnit)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero grid", "snap:\n  grid_size: 0\n"},
		{"negative radius", "snap:\n  vertex_radius: -1\n"},
		{"angle step over 90", "snap:\n  angle_step_deg: 120\n"},
		{"unknown unit", "units:\n  default: furlongs\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.content), 0o644))
			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadDoesNotOverwriteExistingFile(t *testing.T) {
	dir := t.TempDir()
	custom := "snap:\n  grid_size: 50\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o644))

	_, err := Load(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}
