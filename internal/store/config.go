// Package store owns the client-local state: the config file (API base
// URL, saved session, TUI preferences) and the SQLite snapshot cache of the
// last fetched lists. The backend remains the source of truth for all of
// the data itself.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

type GlobalConfig struct {
	// APIBaseURL overrides the default backend address.
	APIBaseURL string `json:"apiBaseUrl,omitempty"`

	// Session persists the bearer token between runs so every invocation
	// does not start at the login prompt. Cleared on logout and on 401.
	Session *SavedSession `json:"session,omitempty"`

	// TUI holds optional appearance preferences.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type SavedSession struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type TUIConfig struct {
	// Theme forces light/dark instead of detecting ("light", "dark", "auto").
	Theme string `json:"theme,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.valos).
	if v := strings.TrimSpace(os.Getenv("VALOS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".valos"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Unique temp name + rename so concurrent CLI/TUI processes cannot
	// corrupt the file. 0600: it holds a token.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
