package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the YAML config file; the --config flag wins over it.
const EnvConfigPath = "CNETINIT_CONFIG"

type OVS struct {
	VsctlPath    string `yaml:"vsctl_path"`
	AppctlPath   string `yaml:"appctl_path"`
	DBServerPath string `yaml:"db_server_path"`
	DBToolPath   string `yaml:"db_tool_path"`
	VswitchdPath string `yaml:"vswitchd_path"`
	ModprobePath string `yaml:"modprobe_path"`
	RunDir       string `yaml:"run_dir"`
	DBPath       string `yaml:"db_path"`
	SchemaPath   string `yaml:"schema_path"`
}

type Readiness struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
	TimeoutMs      int `yaml:"timeout_ms"`
}

type Config struct {
	OVS            OVS       `yaml:"ovs"`
	Readiness      Readiness `yaml:"readiness"`
	DefaultPayload []string  `yaml:"default_payload"`
	JournalPath    string    `yaml:"journal_path"`
	Supervise      bool      `yaml:"supervise"`
	LogLevel       string    `yaml:"log_level"`
}

func (r Readiness) PollInterval() time.Duration {
	return time.Duration(r.PollIntervalMs) * time.Millisecond
}

func (r Readiness) Timeout() time.Duration {
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

func Load(yamlPath string) (*Config, error) {
	cfg := &Config{
		OVS: OVS{
			VsctlPath:    "ovs-vsctl",
			AppctlPath:   "ovs-appctl",
			DBServerPath: "ovsdb-server",
			DBToolPath:   "ovsdb-tool",
			VswitchdPath: "ovs-vswitchd",
			ModprobePath: "modprobe",
			RunDir:       "/var/run/openvswitch",
			DBPath:       "/etc/openvswitch/conf.db",
			SchemaPath:   "/usr/share/openvswitch/vswitch.ovsschema",
		},
		Readiness: Readiness{
			PollIntervalMs: 100,
			TimeoutMs:      15000,
		},
		DefaultPayload: []string{"python3", "/containernet/examples/containernet_example.py"},
		JournalPath:    "/var/lib/cnetinit/journal.db",
		Supervise:      false,
		LogLevel:       "info",
	}

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CNETINIT_OVS_RUN_DIR"); v != "" {
		cfg.OVS.RunDir = v
	}
	if v := os.Getenv("CNETINIT_OVS_DB_PATH"); v != "" {
		cfg.OVS.DBPath = v
	}
	if v := os.Getenv("CNETINIT_OVS_SCHEMA_PATH"); v != "" {
		cfg.OVS.SchemaPath = v
	}
	if v := os.Getenv("CNETINIT_POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Readiness.PollIntervalMs = n
		}
	}
	if v := os.Getenv("CNETINIT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Readiness.TimeoutMs = n
		}
	}
	if v := os.Getenv("CNETINIT_JOURNAL_PATH"); v != "" {
		cfg.JournalPath = v
	}
	if v := os.Getenv("CNETINIT_SUPERVISE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Supervise = b
		}
	}
	if v := os.Getenv("CNETINIT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// ParseLogLevel maps the configured level string onto a slog level.
// Unknown values fall back to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
