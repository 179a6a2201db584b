package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	App       AppConfig
	Location  LocationConfig
	Position  PositionConfig
	Geocoder  GeocoderConfig
	Weather   WeatherConfig
	Backdrops BackdropConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port    int    `validate:"gt=0,lte=65535"`
	GinMode string `validate:"oneof=debug release test"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	File   string // optional; the terminal client always logs to a file
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	// TimeOfDayZone selects the clock used for classification:
	// "local" reads the host clock, "coordinate" the zone at the resolved position.
	TimeOfDayZone string `validate:"oneof=local coordinate"`
}

// LocationConfig controls how location access is authorized
type LocationConfig struct {
	Consent string `validate:"oneof=granted denied prompt"`
}

// PositionConfig selects and configures the position source
type PositionConfig struct {
	Source    string        `validate:"oneof=fixed ipapi"`
	Latitude  float64       `validate:"gte=-90,lte=90"`
	Longitude float64       `validate:"gte=-180,lte=180"`
	BaseURL   string        `validate:"required,url"`
	Timeout   time.Duration `validate:"gt=0"`
}

// GeocoderConfig selects and configures the reverse geocoding backend
type GeocoderConfig struct {
	Provider  string `validate:"oneof=nominatim google"`
	BaseURL   string `validate:"required,url"`
	UserAgent string `validate:"required"`
	APIKey    string `validate:"required_if=Provider google"`
}

// WeatherConfig configures the OpenWeather client
type WeatherConfig struct {
	APIKey  string        `validate:"required"`
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// BackdropConfig overrides the background image for each time of day
type BackdropConfig struct {
	Morning   string
	Afternoon string
	Evening   string
	Night     string
}

// Load reads configuration from file and environment variables.
// An empty path searches the default locations.
func Load(path string) (*Config, error) {
	// A missing .env file is fine; real deployments set the environment directly
	_ = godotenv.Load()

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.current-weather")
	}

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ginmode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("app.timeofdayzone", "local")
	v.SetDefault("location.consent", "granted")
	v.SetDefault("position.source", "ipapi")
	v.SetDefault("position.latitude", 0)
	v.SetDefault("position.longitude", 0)
	v.SetDefault("position.baseurl", "http://ip-api.com/json/")
	v.SetDefault("position.timeout", 10*time.Second)
	v.SetDefault("geocoder.provider", "nominatim")
	v.SetDefault("geocoder.baseurl", "https://nominatim.openstreetmap.org/reverse")
	v.SetDefault("geocoder.useragent", "current-weather/1.0")
	v.SetDefault("geocoder.apikey", "")
	v.SetDefault("weather.apikey", "")
	v.SetDefault("weather.baseurl", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("weather.timeout", 10*time.Second)
	v.SetDefault("backdrops.morning", "")
	v.SetDefault("backdrops.afternoon", "")
	v.SetDefault("backdrops.evening", "")
	v.SetDefault("backdrops.night", "")

	// Read from environment variables, e.g. CURRENT_WEATHER_WEATHER_APIKEY
	v.SetEnvPrefix("CURRENT_WEATHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("weather.apikey", "CURRENT_WEATHER_WEATHER_APIKEY", "OPENWEATHER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind weather api key: %w", err)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !(path != "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints declared on the config structs
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetServerAddr returns the server address in the format ":port"
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// NewLogger creates a new slog.Logger based on the configuration
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo is NewLogger with an explicit destination
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler options
	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Choose handler based on format
	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
