package config

import (
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/assetforge/internal/fsutil"
)

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo writes the config to a specific path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return fsutil.WriteBytes(path, data, 0644)
}
