//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (service *platformService) EnableAutostart(item LoginItem) error {
	if err := item.validate(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	entryPath, err := service.desktopEntryPath(item.Name)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(entryPath), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}
	if err := os.WriteFile(entryPath, []byte(buildDesktopEntry(item)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("disable autostart: %w", errEmptyItemName)
	}

	entryPath, err := service.desktopEntryPath(name)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(entryPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) AutostartEnabled(name string) (bool, error) {
	entryPath, err := service.desktopEntryPath(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(entryPath)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat desktop entry: %w", err)
	}
}

func (service *platformService) desktopEntryPath(name string) (string, error) {
	configDir, err := service.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", slug(name)+".desktop"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

// desktopExecQuote quotes one Exec argument using freedesktop quoting rules.
func desktopExecQuote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\"'\\$`") {
		return arg
	}
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", "$", `\$`)
	return `"` + replacer.Replace(arg) + `"`
}

func buildDesktopEntry(item LoginItem) string {
	parts := make([]string, 0, len(item.Args)+1)
	parts = append(parts, desktopExecQuote(item.ExecPath))
	for _, arg := range item.Args {
		parts = append(parts, desktopExecQuote(arg))
	}

	return fmt.Sprintf(
		`[Desktop Entry]
Type=Application
Name=%s
Comment=Stopwatch with laps
Exec=%s
X-GNOME-Autostart-enabled=true
Terminal=false
`,
		item.Name,
		strings.Join(parts, " "),
	)
}
