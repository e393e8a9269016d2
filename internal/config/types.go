package config

// Config represents the complete sensorgate configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Server  ServerConfig  `yaml:"server"`

	// Path is the file the configuration was read from. Empty when the
	// configuration came from defaults and environment only.
	Path string `yaml:"-"`

	// Warnings holds non-fatal integrity findings from Load.
	Warnings []string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// ServerConfig defines the ingest HTTP listener.
type ServerConfig struct {
	Listen string `yaml:"listen"`

	// Secret is the shared HMAC key. Usually written as ${SECRET_KEY}.
	Secret string `yaml:"secret,omitempty"`

	// MaxBodySize accepts plain bytes or KB/MB/GB suffixes (default: 1MB).
	MaxBodySize string `yaml:"max_body_size,omitempty"`

	// ExposeErrors returns internal error details to callers instead of a
	// generic message.
	ExposeErrors bool `yaml:"expose_errors,omitempty"`
}

// ChecksumManifest is the on-disk .checksums file written by Lock.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// IntegrityResult collects the outcome of VerifyIntegrity.
type IntegrityResult struct {
	Passed   bool
	Warnings []string
	Errors   []string
}

// Default values
const (
	DefaultListen      = "0.0.0.0:8000"
	DefaultMaxBodySize = "1MB"
)

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "sensorgate",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Server: ServerConfig{
			Listen:      DefaultListen,
			MaxBodySize: DefaultMaxBodySize,
		},
	}
}
