package config

import (
	"fmt"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Imaging ImagingConfig `yaml:"imaging" json:"imaging"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Remote  RemoteConfig  `yaml:"remote" json:"remote"`
}

// ImagingConfig configures how dd commands are built
type ImagingConfig struct {
	BlockSize    string `yaml:"block_size" json:"block_size"`       // default dd bs= value
	ExtraOptions string `yaml:"extra_options" json:"extra_options"` // appended dd conv options
	ImageDir     string `yaml:"image_dir" json:"image_dir"`         // where image files are read/written
}

// UIConfig configures the terminal interface
type UIConfig struct {
	DisplayMode   string `yaml:"display_mode" json:"display_mode"` // progress|blockmap
	LogPaneHeight int    `yaml:"log_pane_height" json:"log_pane_height"`
	MinWidth      int    `yaml:"min_width" json:"min_width"`
	MinHeight     int    `yaml:"min_height" json:"min_height"`
	ASCIIOnly     bool   `yaml:"ascii_only" json:"ascii_only"` // disable unicode glyphs
}

// LoggingConfig configures the log file and verbosity
type LoggingConfig struct {
	File    string `yaml:"file" json:"file"`
	Verbose bool   `yaml:"verbose" json:"verbose"`
}

// RemoteConfig configures SSH/NFS connectivity checks
type RemoteConfig struct {
	SSHPort          int `yaml:"ssh_port" json:"ssh_port"`
	ConnectTimeoutMS int `yaml:"connect_timeout_ms" json:"connect_timeout_ms"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Imaging: ImagingConfig{
			BlockSize:    "64K",
			ExtraOptions: "conv=sync,noerror",
			ImageDir:     ".",
		},
		UI: UIConfig{
			DisplayMode:   "progress",
			LogPaneHeight: 8,
			MinWidth:      80,
			MinHeight:     24,
			ASCIIOnly:     false,
		},
		Logging: LoggingConfig{
			File:    "ddi.log",
			Verbose: false,
		},
		Remote: RemoteConfig{
			SSHPort:          22,
			ConnectTimeoutMS: 5000,
		},
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.UI.DisplayMode {
	case "progress", "blockmap":
	default:
		return fmt.Errorf("invalid display_mode %q (want progress or blockmap)", c.UI.DisplayMode)
	}
	if c.UI.LogPaneHeight < 3 {
		return fmt.Errorf("log_pane_height must be at least 3, got %d", c.UI.LogPaneHeight)
	}
	if c.UI.MinWidth < 40 || c.UI.MinHeight < 10 {
		return fmt.Errorf("minimum terminal size %dx%d is too small", c.UI.MinWidth, c.UI.MinHeight)
	}
	if c.Imaging.BlockSize == "" {
		return fmt.Errorf("block_size must not be empty")
	}
	if c.Remote.SSHPort <= 0 || c.Remote.SSHPort > 65535 {
		return fmt.Errorf("invalid ssh_port %d", c.Remote.SSHPort)
	}
	return nil
}
