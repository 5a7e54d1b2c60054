package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slovo/slovo/desktop/internal/origin"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultAgentBaseURL   = "http://127.0.0.1:8741"
	DefaultAgentTimeout   = 30 * time.Second
	DefaultHealthInterval = 10 * time.Second
	DefaultHealthyStatus  = "healthy"
	DefaultBridgeListen   = "127.0.0.1:8742"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
)

// DefaultAllowedOrigins are the origins the desktop webview loads from on
// macOS/Linux (tauri://localhost) and Windows (http(s)://tauri.localhost).
var DefaultAllowedOrigins = []string{
	"tauri://localhost",
	"http://tauri.localhost",
	"https://tauri.localhost",
}

// LogLevelEnv overrides log.level when set.
const LogLevelEnv = "SLOVO_LOG"

// Config is the top-level configuration for the desktop bridge.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Agent  AgentConfig  `yaml:"agent"`
	Bridge BridgeConfig `yaml:"bridge"`
	Log    LogConfig    `yaml:"log"`
}

// AgentConfig describes how to reach the background agent process.
type AgentConfig struct {
	// BaseURL is the loopback address of the agent's HTTP interface.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every single request to the agent.
	Timeout time.Duration `yaml:"timeout"`

	// HealthInterval controls how often the health monitor polls the agent.
	HealthInterval time.Duration `yaml:"health_interval"`

	// HealthyStatus is the status token the agent reports when fully healthy.
	HealthyStatus string `yaml:"healthy_status"`
}

// BridgeConfig holds the settings of the loopback surface the webview talks to.
type BridgeConfig struct {
	// Listen is the host:port of the command API and event stream.
	Listen string `yaml:"listen"`

	// GRPCListen is the host:port of the gRPC health service.
	// Empty disables it.
	GRPCListen string `yaml:"grpc_listen"`

	// AutostartHidden keeps the main window hidden when launched with --autostart.
	AutostartHidden bool `yaml:"autostart_hidden"`

	// AllowedOrigins lists the browser origins (scheme://host[:port]) that may
	// call the command API and subscribe to events. Requests without an
	// Origin header are always accepted.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// Format is one of: json | text.
	Format string `yaml:"format"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := defaults()
	applyEnv(cfg)
	return cfg
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			BaseURL:        DefaultAgentBaseURL,
			Timeout:        DefaultAgentTimeout,
			HealthInterval: DefaultHealthInterval,
			HealthyStatus:  DefaultHealthyStatus,
		},
		Bridge: BridgeConfig{
			Listen:          DefaultBridgeListen,
			AutostartHidden: true,
			AllowedOrigins:  append([]string(nil), DefaultAllowedOrigins...),
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func applyEnv(cfg *Config) {
	if lvl := strings.TrimSpace(os.Getenv(LogLevelEnv)); lvl != "" {
		cfg.Log.Level = lvl
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Agent.BaseURL)
	if err != nil || u.Scheme != "http" || u.Host == "" {
		return fmt.Errorf("agent.base_url %q must be an http URL", cfg.Agent.BaseURL)
	}
	if !isLoopback(u.Hostname()) {
		return fmt.Errorf("agent.base_url %q must point at a loopback host", cfg.Agent.BaseURL)
	}
	if cfg.Agent.Timeout <= 0 {
		return fmt.Errorf("agent.timeout must be positive")
	}
	if cfg.Agent.HealthInterval <= 0 {
		return fmt.Errorf("agent.health_interval must be positive")
	}
	if cfg.Agent.HealthyStatus == "" {
		return fmt.Errorf("agent.healthy_status is required")
	}
	if err := validateListen("bridge.listen", cfg.Bridge.Listen); err != nil {
		return err
	}
	if cfg.Bridge.GRPCListen != "" {
		if err := validateListen("bridge.grpc_listen", cfg.Bridge.GRPCListen); err != nil {
			return err
		}
	}
	for _, o := range cfg.Bridge.AllowedOrigins {
		if _, err := origin.Normalize(o); err != nil {
			return fmt.Errorf("bridge.allowed_origins: %w", err)
		}
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}
	return nil
}

func validateListen(field, addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s %q: %w", field, addr, err)
	}
	if !isLoopback(host) {
		return fmt.Errorf("%s %q must bind a loopback host", field, addr)
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
