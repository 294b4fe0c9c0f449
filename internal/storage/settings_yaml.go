package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lapwatch/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	RefreshIntervalMs    int   `yaml:"refresh_interval_ms"`
	ShowMillis           *bool `yaml:"show_millis"`
	PauseOnHide          *bool `yaml:"pause_on_hide"`
	IdleThresholdSeconds int   `yaml:"idle_threshold_seconds"`
	Autostart            *bool `yaml:"autostart"`
}

// SettingsPath returns the settings file location inside configDir.
func SettingsPath(configDir, appName string) string {
	return filepath.Join(configDir, appName, settingsFileName)
}

// LoadSettings reads user preferences from YAML.
// If the file does not exist, default settings are returned.
func LoadSettings(path string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(path string, settings preferences.Settings) error {
	fileData := yamlSettings{
		RefreshIntervalMs:    int(settings.RefreshInterval / time.Millisecond),
		ShowMillis:           &settings.ShowMillis,
		PauseOnHide:          &settings.PauseOnHide,
		IdleThresholdSeconds: int(settings.IdleThreshold / time.Second),
		Autostart:            &settings.Autostart,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := writeFileAtomic(path, serialized); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.RefreshIntervalMs > 0 {
		settings.RefreshInterval = preferences.ClampRefresh(time.Duration(fileData.RefreshIntervalMs) * time.Millisecond)
	}
	if fileData.IdleThresholdSeconds > 0 {
		settings.IdleThreshold = time.Duration(fileData.IdleThresholdSeconds) * time.Second
	}

	// Keys missing from the file keep their defaults.
	if fileData.ShowMillis != nil {
		settings.ShowMillis = *fileData.ShowMillis
	}
	if fileData.PauseOnHide != nil {
		settings.PauseOnHide = *fileData.PauseOnHide
	}
	if fileData.Autostart != nil {
		settings.Autostart = *fileData.Autostart
	}
}
