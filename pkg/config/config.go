package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultInterval = time.Second
	DefaultProcRoot = "/proc"
	DefaultNodeRoot = "/sys/devices/system/node"
)

// Config is the full runtime configuration, loadable from a YAML file
// and overridable by flags in main.
type Config struct {
	Interval time.Duration `yaml:"interval"`
	ProcRoot string        `yaml:"proc_root"`
	NodeRoot string        `yaml:"node_root"`
	Logging  LoggingConfig `yaml:"logging"`
	Export   ExportConfig  `yaml:"export"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ExportConfig controls the Prometheus endpoint. TopProcesses caps the
// per-process series count so a busy host cannot blow up cardinality.
type ExportConfig struct {
	ListenAddress string `yaml:"listen_address"`
	MetricsPath   string `yaml:"metrics_path"`
	TopProcesses  int    `yaml:"top_processes"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Interval: DefaultInterval,
		ProcRoot: DefaultProcRoot,
		NodeRoot: DefaultNodeRoot,
		Logging: LoggingConfig{
			Level: "info",
		},
		Export: ExportConfig{
			ListenAddress: ":9740",
			MetricsPath:   "/metrics",
			TopProcesses:  15,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate normalizes out-of-range values instead of failing: a bad
// interval falls back to the default, an empty root to the standard
// mount point.
func (c *Config) Validate() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.ProcRoot == "" {
		c.ProcRoot = DefaultProcRoot
	}
	if c.NodeRoot == "" {
		c.NodeRoot = DefaultNodeRoot
	}
	if c.Export.MetricsPath == "" {
		c.Export.MetricsPath = "/metrics"
	}
	if c.Export.TopProcesses <= 0 {
		c.Export.TopProcesses = 15
	}
}
