package runtimeconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadFile decodes a TOML configuration file over DefaultConfig, so hosts only
// spell out the values they change. The merged configuration is validated
// before it is returned.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sitegen config: read %s: %w", path, err)
	}

	if err := Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("sitegen config: decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode applies TOML content over the provided configuration. Unknown keys
// are tolerated so older binaries keep working against newer site files.
func Decode(content string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("sitegen config: nil target")
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}
	_, err := toml.Decode(content, cfg)
	return err
}
