// Package config handles configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	OSC     OSCConfig     `yaml:"osc"`
	Bones   BonesConfig   `yaml:"bones"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// OSCConfig holds the motion capture feed settings.
type OSCConfig struct {
	Listen string `yaml:"listen"` // UDP host:port to receive on
	Prefix string `yaml:"prefix"` // Address prefix, e.g. "/mocap"
}

// BonesConfig holds per-joint rotation adjustments.
type BonesConfig struct {
	// Offsets maps a joint index to (pitch, yaw, roll) degrees. Empty means
	// no-op.
	Offsets  map[int][3]float32 `yaml:"offsets"`
	Override OverrideConfig     `yaml:"override"`
	// FixRoot pins joint 0 at the origin and moves the others with it.
	FixRoot bool `yaml:"fix_root"`
}

// OverrideConfig forces a single joint's offset.
type OverrideConfig struct {
	Enabled bool       `yaml:"enabled"`
	Bone    int        `yaml:"bone"`
	Offset  [3]float32 `yaml:"offset"`
}

// OutputConfig holds where packed frames are written.
type OutputConfig struct {
	Dir      string        `yaml:"dir"`
	Name     string        `yaml:"name"`     // Base file name without extension
	Interval time.Duration `yaml:"interval"` // Frame write period in listen mode
	Preview  string        `yaml:"preview"`  // png, webp, tiff, tga or empty
	// PreviewRange is the absolute value mapped to full color.
	PreviewRange float32 `yaml:"preview_range"`
	PreviewScale int     `yaml:"preview_scale"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		OSC: OSCConfig{
			Listen: "127.0.0.1:9007",
			Prefix: "/mocap",
		},
		Bones: BonesConfig{
			Offsets: map[int][3]float32{},
		},
		Output: OutputConfig{
			Dir:          ".",
			Name:         "joints",
			Interval:     33 * time.Millisecond,
			Preview:      "",
			PreviewRange: 2,
			PreviewScale: 16,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
