package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ovs-vsctl", cfg.OVS.VsctlPath)
	assert.Equal(t, "ovsdb-server", cfg.OVS.DBServerPath)
	assert.Equal(t, "ovs-vswitchd", cfg.OVS.VswitchdPath)
	assert.Equal(t, "/var/run/openvswitch", cfg.OVS.RunDir)
	assert.Equal(t, "/etc/openvswitch/conf.db", cfg.OVS.DBPath)
	assert.Equal(t, 100, cfg.Readiness.PollIntervalMs)
	assert.Equal(t, 15000, cfg.Readiness.TimeoutMs)
	assert.Equal(t, []string{"python3", "/containernet/examples/containernet_example.py"}, cfg.DefaultPayload)
	assert.Equal(t, "/var/lib/cnetinit/journal.db", cfg.JournalPath)
	assert.False(t, cfg.Supervise)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadYAML(t *testing.T) {
	yamlContent := `
ovs:
  run_dir: /tmp/ovs-run
  db_path: /tmp/conf.db
readiness:
  poll_interval_ms: 50
  timeout_ms: 3000
default_payload: ["bash"]
supervise: true
log_level: debug
`
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "cnetinit.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlContent), 0644))

	cfg, err := Load(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ovs-run", cfg.OVS.RunDir)
	assert.Equal(t, "/tmp/conf.db", cfg.OVS.DBPath)
	// Untouched keys keep their defaults.
	assert.Equal(t, "ovs-vsctl", cfg.OVS.VsctlPath)
	assert.Equal(t, 50, cfg.Readiness.PollIntervalMs)
	assert.Equal(t, 3000, cfg.Readiness.TimeoutMs)
	assert.Equal(t, []string{"bash"}, cfg.DefaultPayload)
	assert.True(t, cfg.Supervise)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadYAMLMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/cnetinit.yaml")
	// Non-existent file is not an error (silently uses defaults)
	require.NoError(t, err)
	assert.Equal(t, "/var/run/openvswitch", cfg.OVS.RunDir)
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("{{{{invalid yaml"), 0644))

	_, err := Load(yamlPath)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CNETINIT_OVS_RUN_DIR", "/run/ovs-test")
	t.Setenv("CNETINIT_OVS_DB_PATH", "/run/conf.db")
	t.Setenv("CNETINIT_POLL_INTERVAL_MS", "25")
	t.Setenv("CNETINIT_TIMEOUT_MS", "2000")
	t.Setenv("CNETINIT_JOURNAL_PATH", "/tmp/journal.db")
	t.Setenv("CNETINIT_SUPERVISE", "1")
	t.Setenv("CNETINIT_LOG_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/run/ovs-test", cfg.OVS.RunDir)
	assert.Equal(t, "/run/conf.db", cfg.OVS.DBPath)
	assert.Equal(t, 25, cfg.Readiness.PollIntervalMs)
	assert.Equal(t, 2000, cfg.Readiness.TimeoutMs)
	assert.Equal(t, "/tmp/journal.db", cfg.JournalPath)
	assert.True(t, cfg.Supervise)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestEnvOverridesInvalidValues(t *testing.T) {
	t.Setenv("CNETINIT_POLL_INTERVAL_MS", "not-a-number")
	t.Setenv("CNETINIT_TIMEOUT_MS", "-5")
	t.Setenv("CNETINIT_SUPERVISE", "maybe")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Readiness.PollIntervalMs)
	assert.Equal(t, 15000, cfg.Readiness.TimeoutMs)
	assert.False(t, cfg.Supervise)
}

func TestReadinessDurations(t *testing.T) {
	rd := Readiness{PollIntervalMs: 250, TimeoutMs: 5000}
	assert.Equal(t, 250*int64(1e6), rd.PollInterval().Nanoseconds())
	assert.Equal(t, 5*int64(1e9), rd.Timeout().Nanoseconds())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("bogus"))
}
