// Package config loads designer settings from a config.yaml in the
// user's config directory using Viper, writing a commented default
// file on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"pool-designer/pkg/units"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	keyGridSize      = "snap.grid_size"
	keyVertexRadius  = "snap.vertex_radius"
	keyClosureRadius = "snap.closure_radius"
	keyAxisTolerance = "snap.axis_tolerance"
	keyAngleStepDeg  = "snap.angle_step_deg"
	keyDefaultUnit   = "units.default"
)

// defaultConfigYAML is written to config.yaml on first run so the
// tunables are discoverable.
const defaultConfigYAML = `# Pool designer configuration

snap:
  # Grid spacing in canvas pixels.
  grid_size: 10
  # Pointer distance within which an existing vertex captures the click.
  vertex_radius: 8
  # Pointer distance to the first vertex that closes the shape.
  closure_radius: 12
  # Shift-drag distance within which a stroke flattens onto the first
  # vertex's axis.
  axis_tolerance: 30
  # Shift-drag angle quantum in degrees.
  angle_step_deg: 45

units:
  # "feet" or "meters".
  default: feet
`

// Settings are the loaded, validated designer tunables.
type Settings struct {
	GridSize      float64
	VertexRadius  float64
	ClosureRadius float64
	AxisTolerance float64
	AngleStepDeg  float64
	DefaultUnit   units.Unit
}

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run. A missing config.yaml is not an error;
// defaults apply.
func Load(configDir string) (Settings, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return Settings{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return Settings{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyGridSize, 10.0)
	v.SetDefault(keyVertexRadius, 8.0)
	v.SetDefault(keyClosureRadius, 12.0)
	v.SetDefault(keyAxisTolerance, 30.0)
	v.SetDefault(keyAngleStepDeg, 45.0)
	v.SetDefault(keyDefaultUnit, "feet")
}

func fromViper(v *viper.Viper) (Settings, error) {
	unit, err := units.Parse(v.GetString(keyDefaultUnit))
	if err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", keyDefaultUnit, err)
	}

	s := Settings{
		GridSize:      v.GetFloat64(keyGridSize),
		VertexRadius:  v.GetFloat64(keyVertexRadius),
		ClosureRadius: v.GetFloat64(keyClosureRadius),
		AxisTolerance: v.GetFloat64(keyAxisTolerance),
		AngleStepDeg:  v.GetFloat64(keyAngleStepDeg),
		DefaultUnit:   unit,
	}

	if s.GridSize <= 0 {
		return Settings{}, fmt.Errorf("config %s: must be positive, got %v", keyGridSize, s.GridSize)
	}
	if s.VertexRadius < 0 || s.ClosureRadius < 0 || s.AxisTolerance < 0 {
		return Settings{}, fmt.Errorf("config snap radii must not be negative")
	}
	if s.AngleStepDeg <= 0 || s.AngleStepDeg > 90 {
		return Settings{}, fmt.Errorf("config %s: must be in (0, 90], got %v", keyAngleStepDeg, s.AngleStepDeg)
	}
	return s, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// DefaultDir resolves the per-user config directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "pool-designer"), nil
}
