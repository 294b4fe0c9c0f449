package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var errEmptyItemName = errors.New("login item name is empty")

// LoginItem describes how the stopwatch is relaunched when the user logs in.
type LoginItem struct {
	Name     string
	ExecPath string
	Args     []string
}

func (item LoginItem) validate() error {
	if strings.TrimSpace(item.Name) == "" {
		return errEmptyItemName
	}
	if item.ExecPath == "" {
		return errors.New("login item exec path is empty")
	}
	return nil
}

// slug turns a display name into a file-safe identifier.
func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "lapwatch"
	}
	return strings.Join(strings.Fields(name), "-")
}

// Service defines OS-specific helpers needed by the application.
type Service interface {
	ConfigDir() (string, error)
	EnableAutostart(item LoginItem) error
	DisableAutostart(name string) error
	AutostartEnabled(name string) (bool, error)
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// ConfigDir returns the OS-standard configuration directory.
func (service *platformService) ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// SyncAutostart installs or removes the login item so it matches enabled.
// It is a no-op when the current registration already agrees.
func SyncAutostart(service Service, item LoginItem, enabled bool) error {
	current, err := service.AutostartEnabled(item.Name)
	if err == nil && current == enabled {
		return nil
	}
	if !enabled {
		return service.DisableAutostart(item.Name)
	}
	if item.ExecPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("enable autostart: resolve executable: %w", err)
		}
		item.ExecPath = execPath
	}
	return service.EnableAutostart(item)
}
