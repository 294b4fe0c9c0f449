//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (service *platformService) EnableAutostart(item LoginItem) error {
	if err := item.validate(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	output, err := exec.Command(
		"reg", "add", registryRunKey,
		"/v", item.Name,
		"/t", "REG_SZ",
		"/d", windowsCommandLine(item),
		"/f",
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("enable autostart: reg add failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (service *platformService) DisableAutostart(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("disable autostart: %w", errEmptyItemName)
	}

	enabled, err := service.AutostartEnabled(name)
	if err == nil && !enabled {
		return nil
	}
	output, err := exec.Command("reg", "delete", registryRunKey, "/v", name, "/f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("disable autostart: reg delete failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (service *platformService) AutostartEnabled(name string) (bool, error) {
	err := exec.Command("reg", "query", registryRunKey, "/v", name).Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("reg query failed: %w", err)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func windowsCommandLine(item LoginItem) string {
	parts := []string{quoteWindowsArg(item.ExecPath)}
	for _, arg := range item.Args {
		parts = append(parts, quoteWindowsArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteWindowsArg(arg string) string {
	trimmed := strings.Trim(arg, `"`)
	if trimmed != "" && !strings.ContainsAny(trimmed, " \t") {
		return trimmed
	}
	return `"` + trimmed + `"`
}
