// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. RECEIPT_BRIDGE_SERVER_PORT
const EnvPrefix = "RECEIPT_BRIDGE"

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Security  SecurityConfig  `mapstructure:"security"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Print     PrintConfig     `mapstructure:"print"`
	Bluetooth BluetoothConfig `mapstructure:"bluetooth"`
	Serial    SerialConfig    `mapstructure:"serial"`
	USB       USBConfig       `mapstructure:"usb"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	App       AppConfig       `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required,oneof=debug info warn error fatal"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// SecurityConfig controls which browser origins may call the bridge.
// An empty AllowedOrigins list allows every origin.
type SecurityConfig struct {
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
	AllowPrivateNetwork bool     `mapstructure:"allow_private_network"`
	MaxRequestBodyBytes int64    `mapstructure:"max_request_body_bytes" validate:"min=1024"`
}

// StorageConfig locates the printer profile file
type StorageConfig struct {
	ProfilePath string `mapstructure:"profile_path" validate:"required"`
}

// PrintConfig holds print job defaults
type PrintConfig struct {
	SendTimeout      time.Duration `mapstructure:"send_timeout" validate:"gt=0"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	FeedLines        int           `mapstructure:"feed_lines" validate:"min=0,max=255"`
	DefaultLanguage  string        `mapstructure:"default_language" validate:"required"`
	DefaultCurrency  string        `mapstructure:"default_currency" validate:"required,len=3"`
	LogoFetchTimeout time.Duration `mapstructure:"logo_fetch_timeout" validate:"gt=0"`
	DrawerPin        int           `mapstructure:"drawer_pin" validate:"oneof=2 5"`
	CupsHost         string        `mapstructure:"cups_host"`
	CupsPort         int           `mapstructure:"cups_port" validate:"min=0,max=65535"`
	CupsUser         string        `mapstructure:"cups_user"`
}

// BluetoothConfig represents BLE transport configuration
type BluetoothConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ScanTimeout    time.Duration `mapstructure:"scan_timeout" validate:"gt=0"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	ChunkSize      int           `mapstructure:"chunk_size" validate:"min=1,max=512"`
	ChunkDelay     time.Duration `mapstructure:"chunk_delay"`
	NegotiateMTU   bool          `mapstructure:"negotiate_mtu"`
}

// SerialConfig holds serial line defaults applied when a profile omits them
type SerialConfig struct {
	BaudRate int           `mapstructure:"baud_rate" validate:"min=1200"`
	DataBits int           `mapstructure:"data_bits" validate:"oneof=5 6 7 8"`
	StopBits int           `mapstructure:"stop_bits" validate:"oneof=1 2"`
	Parity   string        `mapstructure:"parity" validate:"oneof=none odd even"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// USBConfig represents USB transport configuration
type USBConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// DiscoveryConfig represents printer discovery configuration
type DiscoveryConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	NetworkScan    bool          `mapstructure:"network_scan"`
	NetworkTargets []string      `mapstructure:"network_targets"`
	NetworkPort    int           `mapstructure:"network_port" validate:"min=1,max=65535"`
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout" validate:"gt=0"`
	Concurrency    int           `mapstructure:"concurrency" validate:"min=1"`
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development staging production test"`
	Debug       bool   `mapstructure:"debug"`
}

// Load reads configuration from an optional file and the environment.
// An empty path searches for config.yaml in the usual locations.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "receipt-bridge"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// the bridge runs with defaults when no file exists
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8084")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{})
	v.SetDefault("security.allow_private_network", true)
	v.SetDefault("security.max_request_body_bytes", 10<<20)

	v.SetDefault("storage.profile_path", defaultProfilePath())

	// Print defaults
	v.SetDefault("print.send_timeout", "10s")
	v.SetDefault("print.connect_timeout", "5s")
	v.SetDefault("print.write_timeout", "10s")
	v.SetDefault("print.feed_lines", 4)
	v.SetDefault("print.default_language", "en")
	v.SetDefault("print.default_currency", "USD")
	v.SetDefault("print.logo_fetch_timeout", "5s")
	v.SetDefault("print.drawer_pin", 2)
	v.SetDefault("print.cups_host", "localhost")
	v.SetDefault("print.cups_port", 631)
	v.SetDefault("print.cups_user", "")

	// Bluetooth defaults
	v.SetDefault("bluetooth.enabled", true)
	v.SetDefault("bluetooth.scan_timeout", "10s")
	v.SetDefault("bluetooth.connect_timeout", "15s")
	v.SetDefault("bluetooth.chunk_size", 20)
	v.SetDefault("bluetooth.chunk_delay", "20ms")
	v.SetDefault("bluetooth.negotiate_mtu", true)

	// Serial defaults
	v.SetDefault("serial.baud_rate", 9600)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.parity", "none")
	v.SetDefault("serial.timeout", "5s")

	v.SetDefault("usb.timeout", "5s")

	// Discovery defaults
	v.SetDefault("discovery.timeout", "15s")
	v.SetDefault("discovery.network_scan", false)
	v.SetDefault("discovery.network_targets", []string{})
	v.SetDefault("discovery.network_port", 9100)
	v.SetDefault("discovery.probe_timeout", "500ms")
	v.SetDefault("discovery.concurrency", 32)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// App defaults
	v.SetDefault("app.name", "receipt-bridge")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "production")
	v.SetDefault("app.debug", false)
}

func defaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "receipt-bridge", "printers.yaml")
}

// validate validates the configuration
func validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
