// Package config implements the four-level configuration hierarchy for a
// FEAGI core deployment: built-in defaults, an optional YAML file,
// environment variables (FEAGI_ prefix), and finally CLI-flag overrides
// applied by the command entrypoint. The shape follows the teacher's
// pkg/core config section exactly, generalized to this runtime's groups.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig groups the debug HTTP listener's network settings.
type ServerConfig struct {
	// APIHost is the interface the debug HTTP surface binds to.
	APIHost string `yaml:"apiHost"`

	// APIPort is the TCP port the debug HTTP surface binds to.
	APIPort int `yaml:"apiPort"`
}

// BurstConfig groups burst-loop scheduling settings.
type BurstConfig struct {
	// FrequencyHz is the burst loop's starting rate. A ParameterUpdate with
	// burst.FrequencyParameterName can reconfigure this at runtime.
	FrequencyHz float64 `yaml:"frequencyHz"`

	// RegistrationDeadlineMs is a registration deadline in milliseconds
	// (0 for none). It is validated and logged at startup; no package in this
	// module reads it, so no session is failed when it expires.
	RegistrationDeadlineMs int64 `yaml:"registrationDeadlineMs"`
}

// SessionConfig groups session registry settings.
type SessionConfig struct {
	// HeartbeatInterval is the maximum interval an agent may go without
	// sending a heartbeat before it risks deregistration.
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval"`

	// DeregistrationTimeout is how long past the last heartbeat a session
	// may go before the sweep deregisters it. Typically 3x HeartbeatInterval.
	DeregistrationTimeout time.Duration `yaml:"deregistrationTimeout"`

	// MaxRegistrationBytes is validated but not read by
	// session.ParseRegistrationRequest, which always drops requests larger
	// than the constant session.MaxRegistrationBytes (1024).
	MaxRegistrationBytes int `yaml:"maxRegistrationBytes"`

	// SweepInterval controls how often the heartbeat-timeout sweep runs.
	// spec.md §4.4 requires at least 1 Hz.
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

// TransportConfig groups the ZMQ tuning knobs spec.md §6 names explicitly.
type TransportConfig struct {
	// ZMQLingerMs is the socket linger period in milliseconds applied on close.
	ZMQLingerMs int `yaml:"zmqLingerMs"`

	// ZMQSndHWM is the send high-water mark (messages queued before blocking/dropping).
	ZMQSndHWM int `yaml:"zmqSndHwm"`

	// ZMQRcvHWM is the receive high-water mark.
	ZMQRcvHWM int `yaml:"zmqRcvHwm"`

	// ZMQImmediate, when true, only queues messages to a connected peer
	// rather than buffering for a peer that has not yet connected.
	ZMQImmediate bool `yaml:"zmqImmediate"`
}

// PipelineConfig groups sensorimotor codec defaults.
type PipelineConfig struct {
	// DefaultPositioningDepth is the depth used for percentage/linear
	// channels that don't specify one explicitly.
	DefaultPositioningDepth int `yaml:"defaultPositioningDepth"`
}

// SecurityConfig groups auth requirements for agent registration.
type SecurityConfig struct {
	// RequireAuthToken, when true, rejects registration requests that carry
	// no auth token even before checking it against any credential store.
	RequireAuthToken bool `yaml:"requireAuthToken"`
}

// Config is the root configuration object for a feagi-core instance.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Burst     BurstConfig     `yaml:"burst"`
	Session   SessionConfig   `yaml:"session"`
	Transport TransportConfig `yaml:"transport"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Security  SecurityConfig  `yaml:"security"`
}

// DefaultConfig returns a Config populated with production-safe defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			APIHost: "127.0.0.1",
			APIPort: 8081,
		},
		Burst: BurstConfig{
			FrequencyHz:            20,
			RegistrationDeadlineMs: 5000,
		},
		Session: SessionConfig{
			HeartbeatInterval:     2 * time.Second,
			DeregistrationTimeout: 6 * time.Second,
			MaxRegistrationBytes:  1024,
			SweepInterval:         500 * time.Millisecond,
		},
		Transport: TransportConfig{
			ZMQLingerMs:  0,
			ZMQSndHWM:    1000,
			ZMQRcvHWM:    1000,
			ZMQImmediate: true,
		},
		Pipeline: PipelineConfig{
			DefaultPositioningDepth: 10,
		},
		Security: SecurityConfig{
			RequireAuthToken: true,
		},
	}
}

// ConfigFromFile reads a YAML configuration file and merges it on top of
// the built-in defaults. Fields absent from the file retain their defaults.
func ConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigFromEnv applies environment variable overrides to the given Config.
// If cfg is nil a new default Config is created first.
//
// Environment variable mapping (all optional, prefix FEAGI_):
//
//	FEAGI_API_HOST                    → Server.APIHost
//	FEAGI_API_PORT                    → Server.APIPort
//	FEAGI_BURST_FREQUENCY_HZ          → Burst.FrequencyHz
//	FEAGI_REGISTRATION_DEADLINE_MS    → Burst.RegistrationDeadlineMs
//	FEAGI_HEARTBEAT_INTERVAL          → Session.HeartbeatInterval (duration string)
//	FEAGI_DEREGISTRATION_TIMEOUT      → Session.DeregistrationTimeout (duration string)
//	FEAGI_MAX_REGISTRATION_BYTES      → Session.MaxRegistrationBytes
//	FEAGI_SWEEP_INTERVAL              → Session.SweepInterval (duration string)
//	FEAGI_ZMQ_LINGER_MS               → Transport.ZMQLingerMs
//	FEAGI_ZMQ_SNDHWM                  → Transport.ZMQSndHWM
//	FEAGI_ZMQ_RCVHWM                  → Transport.ZMQRcvHWM
//	FEAGI_ZMQ_IMMEDIATE               → Transport.ZMQImmediate ("true"/"false")
//	FEAGI_DEFAULT_POSITIONING_DEPTH   → Pipeline.DefaultPositioningDepth
//	FEAGI_REQUIRE_AUTH_TOKEN          → Security.RequireAuthToken ("true"/"false")
func ConfigFromEnv(cfg *Config) *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	setEnvStr("FEAGI_API_HOST", &cfg.Server.APIHost)
	setEnvInt("FEAGI_API_PORT", &cfg.Server.APIPort)

	setEnvFloat("FEAGI_BURST_FREQUENCY_HZ", &cfg.Burst.FrequencyHz)
	setEnvInt64("FEAGI_REGISTRATION_DEADLINE_MS", &cfg.Burst.RegistrationDeadlineMs)

	setEnvDuration("FEAGI_HEARTBEAT_INTERVAL", &cfg.Session.HeartbeatInterval)
	setEnvDuration("FEAGI_DEREGISTRATION_TIMEOUT", &cfg.Session.DeregistrationTimeout)
	setEnvInt("FEAGI_MAX_REGISTRATION_BYTES", &cfg.Session.MaxRegistrationBytes)
	setEnvDuration("FEAGI_SWEEP_INTERVAL", &cfg.Session.SweepInterval)

	setEnvInt("FEAGI_ZMQ_LINGER_MS", &cfg.Transport.ZMQLingerMs)
	setEnvInt("FEAGI_ZMQ_SNDHWM", &cfg.Transport.ZMQSndHWM)
	setEnvInt("FEAGI_ZMQ_RCVHWM", &cfg.Transport.ZMQRcvHWM)
	setEnvBool("FEAGI_ZMQ_IMMEDIATE", &cfg.Transport.ZMQImmediate)

	setEnvInt("FEAGI_DEFAULT_POSITIONING_DEPTH", &cfg.Pipeline.DefaultPositioningDepth)
	setEnvBool("FEAGI_REQUIRE_AUTH_TOKEN", &cfg.Security.RequireAuthToken)

	return cfg
}

// LoadConfig implements the full hierarchy: defaults, then an optional YAML
// file, then environment overrides. The caller applies CLI overrides last.
func LoadConfig(configPath string) (*Config, error) {
	var cfg *Config
	if configPath != "" {
		var err error
		cfg, err = ConfigFromFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = DefaultConfig()
	}
	return ConfigFromEnv(cfg), nil
}

// Validate performs structural validation of the entire configuration.
// Returns a descriptive error for the first invalid field encountered.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.APIHost) == "" {
		return fmt.Errorf("server.apiHost must not be empty")
	}
	if c.Server.APIPort <= 0 || c.Server.APIPort > 65535 {
		return fmt.Errorf("server.apiPort must be between 1 and 65535, got %d", c.Server.APIPort)
	}

	if c.Burst.FrequencyHz <= 0 {
		return fmt.Errorf("burst.frequencyHz must be > 0, got %f", c.Burst.FrequencyHz)
	}
	if c.Burst.RegistrationDeadlineMs < 0 {
		return fmt.Errorf("burst.registrationDeadlineMs must be >= 0")
	}

	if c.Session.HeartbeatInterval <= 0 {
		return fmt.Errorf("session.heartbeatInterval must be > 0")
	}
	if c.Session.DeregistrationTimeout <= c.Session.HeartbeatInterval {
		return fmt.Errorf("session.deregistrationTimeout (%v) must be > session.heartbeatInterval (%v)",
			c.Session.DeregistrationTimeout, c.Session.HeartbeatInterval)
	}
	if c.Session.MaxRegistrationBytes <= 0 {
		return fmt.Errorf("session.maxRegistrationBytes must be > 0")
	}
	if c.Session.SweepInterval <= 0 || c.Session.SweepInterval > time.Second {
		return fmt.Errorf("session.sweepInterval must be > 0 and <= 1s (spec requires >= 1 Hz), got %v", c.Session.SweepInterval)
	}

	if c.Transport.ZMQLingerMs < 0 {
		return fmt.Errorf("transport.zmqLingerMs must be >= 0")
	}
	if c.Transport.ZMQSndHWM < 0 || c.Transport.ZMQRcvHWM < 0 {
		return fmt.Errorf("transport.zmqSndHwm and transport.zmqRcvHwm must be >= 0")
	}

	if c.Pipeline.DefaultPositioningDepth <= 0 {
		return fmt.Errorf("pipeline.defaultPositioningDepth must be > 0")
	}

	return nil
}

// ---------------------------------------------------------------------------
// Environment variable helpers
// ---------------------------------------------------------------------------

func setEnvStr(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setEnvBool(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

func setEnvInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func setEnvInt64(key string, target *int64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = n
		}
	}
}

func setEnvFloat(key string, target *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

func setEnvDuration(key string, target *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}

// ---------------------------------------------------------------------------
// CLI flag overrides — final layer of the configuration hierarchy.
// ---------------------------------------------------------------------------

// CLIOverrides carries optional values set via command-line flags.
// Pointer fields are nil when the flag was not explicitly provided,
// allowing the caller to distinguish "not set" from the zero value.
type CLIOverrides struct {
	ConfigPath             *string
	APIHost                *string
	APIPort                *int
	FrequencyHz            *float64
	RegistrationDeadlineMs *int64
	HeartbeatInterval      *time.Duration
	DeregistrationTimeout  *time.Duration
	MaxRegistrationBytes   *int
}

// ApplyCLIOverrides patches the Config with any explicitly-set CLI flags.
// Only non-nil fields in the CLIOverrides are applied, preserving all
// values resolved from earlier hierarchy layers.
func (c *Config) ApplyCLIOverrides(o *CLIOverrides) {
	if o == nil {
		return
	}
	if o.APIHost != nil {
		c.Server.APIHost = *o.APIHost
	}
	if o.APIPort != nil {
		c.Server.APIPort = *o.APIPort
	}
	if o.FrequencyHz != nil {
		c.Burst.FrequencyHz = *o.FrequencyHz
	}
	if o.RegistrationDeadlineMs != nil {
		c.Burst.RegistrationDeadlineMs = *o.RegistrationDeadlineMs
	}
	if o.HeartbeatInterval != nil {
		c.Session.HeartbeatInterval = *o.HeartbeatInterval
	}
	if o.DeregistrationTimeout != nil {
		c.Session.DeregistrationTimeout = *o.DeregistrationTimeout
	}
	if o.MaxRegistrationBytes != nil {
		c.Session.MaxRegistrationBytes = *o.MaxRegistrationBytes
	}
}

// DebugLevels parses a list of "crate=level" CLI arguments (spec.md §6's
// `--debug <crate>=<level>` flag, which may be repeated) into a per-subsystem
// map consumed by logging call sites that want finer-grained verbosity than
// the global default.
func DebugLevels(entries []string) (map[string]string, error) {
	levels := make(map[string]string, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid --debug value %q, want <crate>=<level>", entry)
		}
		levels[parts[0]] = parts[1]
	}
	return levels, nil
}
