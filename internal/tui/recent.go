package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const maxRecent = 10

// RecentEntry records a state database written by a run or opened in the
// explorer.
type RecentEntry struct {
	DBPath     string    `json:"db_path"`
	ConfigPath string    `json:"config_path,omitempty"`
	OpenedAt   time.Time `json:"opened_at"`
}

func recentFilePath() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		cfg = os.TempDir()
	}
	return filepath.Join(cfg, "openinghours", "recent.json")
}

// LoadRecent returns recent entries, newest first. A missing or corrupt
// file yields none.
func LoadRecent() []RecentEntry {
	data, err := os.ReadFile(recentFilePath())
	if err != nil {
		return nil
	}
	var entries []RecentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// SaveRecent moves dbPath to the front of the list. An empty configPath
// keeps the one recorded earlier.
func SaveRecent(dbPath, configPath string) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		abs = dbPath
	}
	if configPath != "" {
		if c, err := filepath.Abs(configPath); err == nil {
			configPath = c
		}
	}

	entries := LoadRecent()
	filtered := make([]RecentEntry, 0, len(entries)+1)
	for _, e := range entries {
		if e.DBPath == abs {
			if configPath == "" {
				configPath = e.ConfigPath
			}
			continue
		}
		filtered = append(filtered, e)
	}

	filtered = append([]RecentEntry{{DBPath: abs, ConfigPath: configPath, OpenedAt: time.Now()}}, filtered...)
	if len(filtered) > maxRecent {
		filtered = filtered[:maxRecent]
	}

	data, err := json.MarshalIndent(filtered, "", "  ")
	if err != nil {
		return
	}
	path := recentFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	os.WriteFile(path, data, 0644)
}
