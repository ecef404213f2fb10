package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// rawConfig mirrors Config with pointer fields so unset keys keep defaults.
type rawConfig struct {
	Modifier             *Modifier `yaml:"modifier"`
	SettleDelayMS        *int      `yaml:"settle_delay_ms"`
	AutoRemoveEmpty      *bool     `yaml:"auto_remove_empty"`
	BackendLibrary       *string   `yaml:"backend_library"`
	IgnoredWindowClasses []string  `yaml:"ignored_window_classes"`
	Notifications        *bool     `yaml:"notifications"`
	IPC                  *bool     `yaml:"ipc"`
	LogLevel             *string   `yaml:"log_level"`
}

func (r rawConfig) apply(cfg *Config) {
	if r.Modifier != nil {
		cfg.Modifier = *r.Modifier
	}
	if r.SettleDelayMS != nil {
		cfg.SettleDelayMS = *r.SettleDelayMS
	}
	if r.AutoRemoveEmpty != nil {
		cfg.AutoRemoveEmpty = *r.AutoRemoveEmpty
	}
	if r.BackendLibrary != nil {
		cfg.BackendLibrary = *r.BackendLibrary
	}
	if r.IgnoredWindowClasses != nil {
		cfg.IgnoredWindowClasses = append([]string(nil), r.IgnoredWindowClasses...)
	}
	if r.Notifications != nil {
		cfg.Notifications = *r.Notifications
	}
	if r.IPC != nil {
		cfg.IPC = *r.IPC
	}
	if r.LogLevel != nil {
		cfg.LogLevel = *r.LogLevel
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "hyprdesk", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the config file at path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	exists, err := pathExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	var raw rawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	raw.apply(cfg)

	if err := cfg.Validate(); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
