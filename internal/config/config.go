package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	dirName = ".matchstats"
	envName = "MATCHSTATS"
)

// Global configuration structure.
type Global struct {
	Dataset      string `mapstructure:"dataset" yaml:"dataset"`
	UnitsColumn  string `mapstructure:"units_column" yaml:"units_column"`
	ChartsDir    string `mapstructure:"charts_dir" yaml:"charts_dir"`
	RenderCharts bool   `mapstructure:"render_charts" yaml:"render_charts"`
	SampleRows   int    `mapstructure:"sample_rows" yaml:"sample_rows"`
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.matchstats/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(envName)
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset", "dataset.parquet")
	v.SetDefault("units_column", "units")
	v.SetDefault("charts_dir", "charts")
	v.SetDefault("render_charts", true)
	v.SetDefault("sample_rows", 5)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		p, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.SampleRows <= 0 {
		c.SampleRows = 5
	}
	return &c, nil
}
