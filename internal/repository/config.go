package repository

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/KostasZigo/clony/internal/constants"
)

// Config is the content of .clony/config.toml.
type Config struct {
	User UserConfig `toml:"user"`
	Core CoreConfig `toml:"core"`
}

// UserConfig supplies default commit author identity.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

type CoreConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Ignore lists doublestar globs excluded from tree snapshots.
	Ignore []string `toml:"ignore"`
}

func DefaultConfig() Config {
	return Config{
		Core: CoreConfig{
			LogLevel: "info",
			Ignore:   []string{},
		},
	}
}

func configPath(repoPath string) string {
	return filepath.Join(repoPath, constants.Clony, constants.ConfigFile)
}

// LoadConfig reads the repository config. Keys absent from the file keep their defaults,
// and a missing file yields DefaultConfig.
func LoadConfig(repoPath string) (Config, error) {
	cfg := DefaultConfig()
	path := configPath(repoPath)

	meta, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, key := range meta.Undecoded() {
		slog.Warn("Unknown config key", "key", key.String(), "path", path)
	}

	return cfg, nil
}

// WriteConfig replaces the repository config file.
func WriteConfig(repoPath string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(configPath(repoPath), buf.Bytes(), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
