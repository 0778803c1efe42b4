package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	settingsDirName  = "simplewebserver"
	settingsFileName = "config.toml"
)

// Settings are the values remembered between runs: the last served folder
// and port.
type Settings struct {
	ProjectPath string `toml:"project_path,omitempty"`
	Port        int    `toml:"port,omitzero"`
}

// DefaultSettingsPath returns <user config dir>/simplewebserver/config.toml.
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, settingsDirName, settingsFileName), nil
}

// LoadSettings reads the settings file. A missing file yields empty settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes s to path, creating the parent directory. A port
// outside 80..65534 and a project path that is not an existing directory
// are left out of the file.
func SaveSettings(path string, s Settings) error {
	var out Settings
	if s.Port >= 80 && s.Port < 65535 {
		out.Port = s.Port
	}
	if info, err := os.Stat(s.ProjectPath); err == nil && info.IsDir() {
		out.ProjectPath = s.ProjectPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create settings %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(out); err != nil {
		f.Close()
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return f.Close()
}
