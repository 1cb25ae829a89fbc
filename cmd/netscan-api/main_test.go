package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterfacesCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"network": {"link_source": "net"}}`), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"interfaces", "--config", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "all", lines[0])
	assert.NotContains(t, lines, "lo")
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.json")
	listenAddr = "127.0.0.1:9999"
	logLevel = "debug"
	t.Cleanup(func() { configPath, listenAddr, logLevel = "config.json", "", "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Service.Addr)
	assert.Equal(t, "debug", cfg.Service.LogLevel)
}

func TestNewAppRejectsBadMDNSAddr(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.json")
	listenAddr = "no-port"
	t.Cleanup(func() { configPath, listenAddr = "config.json", "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	cfg.MDNS.Enabled = true

	_, err = newApp(context.Background(), cfg)
	assert.Error(t, err)
}
