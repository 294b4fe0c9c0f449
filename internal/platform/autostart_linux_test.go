package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinuxAutostartDesktopEntry(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	service := NewService()
	item := LoginItem{
		Name:     "Lap Watch",
		ExecPath: "/opt/lap watch/lapwatch",
		Args:     []string{"--store", "sqlite"},
	}

	require.NoError(t, service.EnableAutostart(item))

	entryPath := filepath.Join(configHome, "autostart", "lap-watch.desktop")
	content, err := os.ReadFile(entryPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Name=Lap Watch\n")
	assert.Contains(t, string(content), `Exec="/opt/lap watch/lapwatch" --store sqlite`)

	enabled, err := service.AutostartEnabled(item.Name)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, service.DisableAutostart(item.Name))
	assert.NoFileExists(t, entryPath)
	require.NoError(t, service.DisableAutostart(item.Name))
}

func TestSyncAutostart(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	service := NewService()
	item := LoginItem{Name: "lapwatch", ExecPath: "/usr/bin/lapwatch"}
	entryPath := filepath.Join(configHome, "autostart", "lapwatch.desktop")

	require.NoError(t, SyncAutostart(service, item, true))
	assert.FileExists(t, entryPath)
	require.NoError(t, SyncAutostart(service, item, true))

	require.NoError(t, SyncAutostart(service, item, false))
	assert.NoFileExists(t, entryPath)
}

func TestAutostartRejectsEmptyName(t *testing.T) {
	service := NewService()
	assert.ErrorIs(t, service.EnableAutostart(LoginItem{ExecPath: "/bin/true"}), errEmptyItemName)
	assert.ErrorIs(t, service.DisableAutostart(" "), errEmptyItemName)
}

func TestDesktopExecQuote(t *testing.T) {
	assert.Equal(t, "/usr/bin/lapwatch", desktopExecQuote("/usr/bin/lapwatch"))
	assert.Equal(t, `"a b"`, desktopExecQuote("a b"))
	assert.Equal(t, `"\$HOME"`, desktopExecQuote("$HOME"))
	assert.Equal(t, `""`, desktopExecQuote(""))
}
