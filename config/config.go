package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	dirsharehttp "github.com/calebsm/dirshare/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for dirshare.
type Config struct {
	Server  ServerConfig            `mapstructure:"server"`
	Storage StorageConfig           `mapstructure:"storage"`
	Uploads UploadsConfig           `mapstructure:"uploads"`
	TLS     TLSConfig               `mapstructure:"tls"`
	CORS    dirsharehttp.CORSConfig `mapstructure:"cors"`
	Log     LogConfig               `mapstructure:"log"`
}

// ServerConfig holds listening socket configuration.
type ServerConfig struct {
	Bind string `mapstructure:"bind"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	// Connection deadlines in seconds; 0 disables the deadline.
	ReadTimeout  int `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout int `mapstructure:"write_timeout" validate:"min=0"`
}

// StorageConfig holds the served directory.
type StorageConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
}

// UploadsConfig controls the upload surface.
type UploadsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// MaxBodySize caps the upload request body in bytes; 0 means no cap.
	MaxBodySize int64 `mapstructure:"max_body_size" validate:"min=0"`
}

// TLSConfig controls HTTPS serving and certificate bootstrap paths.
type TLSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cert    string `mapstructure:"cert" validate:"required"`
	Key     string `mapstructure:"key" validate:"required"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"directory": "storage.directory",
	"bind":      "server.bind",
	"port":      "server.port",
	"uploads":   "uploads.enabled",
	"tls":       "tls.enabled",
	"cert":      "tls.cert",
	"key":       "tls.key",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.bind", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 300)  // seconds
	v.SetDefault("server.write_timeout", 300) // seconds

	v.SetDefault("storage.directory", ".")

	v.SetDefault("uploads.enabled", false)
	v.SetDefault("uploads.max_body_size", 0) // 0 means no limit

	v.SetDefault("tls.enabled", false)
	v.SetDefault("tls.cert", "server.crt")
	v.SetDefault("tls.key", "server.key")

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config file > defaults
//
// Parameters:
//   - configFile: config file path ("" falls back to ./config.yaml)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config file
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFile, "err", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("DIRSHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
