package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the specmcp server.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Transport       TransportConfig       `toml:"transport"`
	Log             LogConfig             `toml:"log"`
	LLM             LLMConfig             `toml:"llm"`
	Scanners        ScannersConfig        `toml:"scanners"`
	Session         SessionConfig         `toml:"session"`
	DependencyGuard DependencyGuardConfig `toml:"dependency_guard"`
	TestRunner      TestRunnerConfig      `toml:"test_runner"`
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds transport-related settings.
type TransportConfig struct {
	// Mode selects the transport: "stdio" (default) or "http".
	Mode string `toml:"mode"`
	// Port is the HTTP listen port (default: 21452). Only used when Mode is "http".
	Port string `toml:"port"`
	// Host is the HTTP listen address (default: "0.0.0.0"). Only used when Mode is "http".
	Host string `toml:"host"`
	// CORSOrigins is a comma-separated list of allowed CORS origins (default: "*").
	CORSOrigins string `toml:"cors_origins"`
	// AuthToken, when set, is required as a Bearer token on every HTTP request.
	// Empty disables authentication (loopback-only deployments).
	AuthToken string `toml:"auth_token"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// LLMConfig selects and configures the LLM manager used for `sample_llm` /
// fallback enrichment across tools that offer LLM-assisted output.
type LLMConfig struct {
	// Provider selects the backing LLM: "openai", "gemini", or "none" (disables
	// LLM enrichment; tools fall back to their heuristic-only result).
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	// APIKeyEnv names the environment variable holding the provider API key
	// (never stored in the config file itself).
	APIKeyEnv string `toml:"api_key_env"`
	TimeoutMS int    `toml:"timeout_ms"`
	// RateLimitPerSecond throttles outgoing sample requests; <= 0 disables.
	RateLimitPerSecond float64 `toml:"rate_limit_per_second"`
}

// ScannersConfig holds shared defaults for the static-analysis tools.
type ScannersConfig struct {
	DefaultSeverityThreshold string   `toml:"default_severity_threshold"` // info|low|medium|high|critical
	DefaultIaCProfile        string   `toml:"default_iac_profile"`        // baseline|strict
	SecretScanExtensions     []string `toml:"secret_scan_extensions"`     // not read by secret_scan
	SecretScanExcludes       []string `toml:"secret_scan_excludes"`       // not read by secret_scan
}

// SessionConfig holds Session Context Manager settings.
type SessionConfig struct {
	// StorageDir is where per-session JSON snapshots are persisted.
	// Empty disables persistence (in-memory only).
	StorageDir string `toml:"storage_dir"`
	// Bounded history sizes. Overridable downward only; Validate clamps any
	// configured value above the spec's ceiling back down to it.
	CodeHistoryLimit        int `toml:"code_history_limit"`
	ConversationHistoryLimit int `toml:"conversation_history_limit"`
	ExecutionHistoryLimit    int `toml:"execution_history_limit"`
}

// DependencyGuardConfig holds the Dependency Guard's external-collaborator settings.
type DependencyGuardConfig struct {
	OSVEndpoint         string  `toml:"osv_endpoint"`
	BlocklistPath       string  `toml:"blocklist_path"`
	AllowlistPath       string  `toml:"allowlist_path"`
	CheckRegistryExists bool    `toml:"check_registry_exists"`
	PyPIEndpoint        string  `toml:"pypi_endpoint"`
	NpmEndpoint         string  `toml:"npm_endpoint"`
	RateLimitPerSecond  float64 `toml:"rate_limit_per_second"` // shared OSV/PyPI/npm client throttle; <= 0 disables
}

// TestRunnerConfig holds Test Runner sandbox defaults.
type TestRunnerConfig struct {
	DefaultTimeoutSeconds int `toml:"default_timeout_seconds"`
	MaxTimeoutSeconds     int `toml:"max_timeout_seconds"` // hard ceiling, enforced regardless of config
}

const (
	maxCodeHistory        = 20
	maxConversationHistory = 30
	maxExecutionHistory    = 20
	hardMaxTestTimeoutSeconds = 600
)

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. SPECMCP_CONFIG environment variable
//  3. ./specmcp.toml (current directory)
//  4. ~/.config/specmcp/specmcp.toml (XDG-style)
//
// Before the environment layer is read, an optional .env file is loaded
// (if present) so its values participate in the "environment always wins"
// precedence rule. All fields are optional in the config file.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load() // optional; missing .env is not an error

	cfg := &Config{
		Server: ServerConfig{
			Name:    "specmcp",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Mode:        "stdio",
			Port:        "21452",
			Host:        "0.0.0.0",
			CORSOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
		LLM: LLMConfig{
			Provider:           "none",
			Model:              "gpt-4o-mini",
			APIKeyEnv:          "OPENAI_API_KEY",
			TimeoutMS:          30000,
			RateLimitPerSecond: 2,
		},
		Scanners: ScannersConfig{
			DefaultSeverityThreshold: "low",
			DefaultIaCProfile:        "baseline",
		},
		Session: SessionConfig{
			CodeHistoryLimit:         maxCodeHistory,
			ConversationHistoryLimit: maxConversationHistory,
			ExecutionHistoryLimit:    maxExecutionHistory,
		},
		DependencyGuard: DependencyGuardConfig{
			OSVEndpoint:         "https://api.osv.dev",
			CheckRegistryExists: true,
			PyPIEndpoint:        "https://pypi.org",
			NpmEndpoint:         "https://registry.npmjs.org",
			RateLimitPerSecond:  5,
		},
		TestRunner: TestRunnerConfig{
			DefaultTimeoutSeconds: 30,
			MaxTimeoutSeconds:     hardMaxTestTimeoutSeconds,
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil // no config file found; rely on defaults + env
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return nil
}

// resolveConfigPath determines which config file to use. Returns empty string
// if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit // caller wants this file; let DecodeFile report if missing
	}

	if p := os.Getenv("SPECMCP_CONFIG"); p != "" {
		return p
	}

	if _, err := os.Stat("specmcp.toml"); err == nil {
		return "specmcp.toml"
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/specmcp/specmcp.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnv overlays environment variables on top of existing config values.
// An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("SPECMCP_TRANSPORT", &c.Transport.Mode)
	envOverride("SPECMCP_PORT", &c.Transport.Port)
	envOverride("SPECMCP_HOST", &c.Transport.Host)
	envOverride("SPECMCP_CORS_ORIGINS", &c.Transport.CORSOrigins)
	envOverride("SPECMCP_AUTH_TOKEN", &c.Transport.AuthToken)

	envOverride("SPECMCP_LOG_LEVEL", &c.Log.Level)

	envOverride("SPECMCP_LLM_PROVIDER", &c.LLM.Provider)
	envOverride("SPECMCP_LLM_MODEL", &c.LLM.Model)
	envOverride("SPECMCP_LLM_API_KEY_ENV", &c.LLM.APIKeyEnv)

	envOverride("SPECMCP_SESSION_STORAGE_DIR", &c.Session.StorageDir)
	envOverride("SPECMCP_OSV_ENDPOINT", &c.DependencyGuard.OSVEndpoint)
	envOverride("SPECMCP_DEPENDENCY_BLOCKLIST", &c.DependencyGuard.BlocklistPath)
	envOverride("SPECMCP_DEPENDENCY_ALLOWLIST", &c.DependencyGuard.AllowlistPath)
}

// Validate checks that required fields are present and clamps any bounded
// value back to its ceiling.
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode: %q (must be \"stdio\" or \"http\")", c.Transport.Mode)
	}

	switch c.LLM.Provider {
	case "openai", "gemini", "none":
	default:
		return fmt.Errorf("invalid llm provider: %q (must be \"openai\", \"gemini\", or \"none\")", c.LLM.Provider)
	}

	if c.Session.CodeHistoryLimit <= 0 || c.Session.CodeHistoryLimit > maxCodeHistory {
		c.Session.CodeHistoryLimit = maxCodeHistory
	}
	if c.Session.ConversationHistoryLimit <= 0 || c.Session.ConversationHistoryLimit > maxConversationHistory {
		c.Session.ConversationHistoryLimit = maxConversationHistory
	}
	if c.Session.ExecutionHistoryLimit <= 0 || c.Session.ExecutionHistoryLimit > maxExecutionHistory {
		c.Session.ExecutionHistoryLimit = maxExecutionHistory
	}

	if c.TestRunner.MaxTimeoutSeconds <= 0 || c.TestRunner.MaxTimeoutSeconds > hardMaxTestTimeoutSeconds {
		c.TestRunner.MaxTimeoutSeconds = hardMaxTestTimeoutSeconds
	}
	if c.TestRunner.DefaultTimeoutSeconds <= 0 || c.TestRunner.DefaultTimeoutSeconds > c.TestRunner.MaxTimeoutSeconds {
		c.TestRunner.DefaultTimeoutSeconds = c.TestRunner.MaxTimeoutSeconds
	}

	return nil
}

// envOverride sets *dst to the value of the named env var, if it is non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
