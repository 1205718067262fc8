package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the configuration for the lesezeit server.
type Config struct {
	// Listen is the address the server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the public base URL of the server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// LogLevel is the default log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// SessionKey is the key used to sign and encrypt session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// SecureCookies marks the session cookie as HTTPS only.
	SecureCookies bool `yaml:"secure_cookies" mapstructure:"secure_cookies"`
	// AdminEmail is the only address that is granted the admin role.
	AdminEmail string `yaml:"admin_email" mapstructure:"admin_email"`
	// BcryptCost is the cost factor used when hashing passwords.
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
	// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Uploads holds the audio upload configuration.
	Uploads *UploadsConfig `yaml:"uploads" mapstructure:"uploads"`
	// Avatars holds the configuration for Gravatar profile pictures.
	Avatars *AvatarConfig `yaml:"avatars" mapstructure:"avatars"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// UploadsConfig holds the configuration for uploaded question audio.
type UploadsConfig struct {
	// Dir is the directory uploaded files are written to.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// MaxSize is the maximum size of a single uploaded file in bytes.
	MaxSize int64 `yaml:"max_size" mapstructure:"max_size"`
}

// AvatarConfig holds the configuration for Gravatar profile pictures.
type AvatarConfig struct {
	// Enabled shows an avatar next to the logged in user's email.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the image Gravatar serves when no avatar is registered.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for avatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the avatar in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

var (
	avatarDefaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	avatarRatings       = []string{"g", "pg", "r", "x"}
)

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("LESEZEIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.lesezeit")
		v.AddConfigPath("/etc/lesezeit")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults and environment
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3000")
	v.SetDefault("server_url", "http://localhost:3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 604800) // 7 days
	v.SetDefault("secure_cookies", false)
	v.SetDefault("admin_email", "")
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "./data/lesezeit.db")

	v.SetDefault("uploads.dir", "./data/uploads")
	v.SetDefault("uploads.max_size", 10<<20)

	v.SetDefault("avatars.enabled", false)
	v.SetDefault("avatars.default_image", "identicon")
	v.SetDefault("avatars.rating", "g")
	v.SetDefault("avatars.size", 64)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing lesezeit config")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session key is required")
	}
	if len(c.SessionKey) < 32 {
		return fmt.Errorf("session key must be at least 32 characters long")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be greater than 0")
	}

	if c.AdminEmail == "" {
		return fmt.Errorf("admin email is required")
	}
	if !strings.Contains(c.AdminEmail, "@") {
		return fmt.Errorf("admin email %q is not a valid email address", c.AdminEmail)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Uploads == nil || c.Uploads.Dir == "" {
		return fmt.Errorf("uploads directory is required")
	}
	if c.Uploads.MaxSize <= 0 {
		return fmt.Errorf("uploads max size must be greater than 0")
	}

	if c.Avatars != nil && c.Avatars.Enabled {
		if c.Avatars.DefaultImage != "" && !lo.Contains(avatarDefaultImages, c.Avatars.DefaultImage) {
			return fmt.Errorf("avatars default image must be one of %s", strings.Join(avatarDefaultImages, ", "))
		}
		if c.Avatars.Rating != "" && !lo.Contains(avatarRatings, c.Avatars.Rating) {
			return fmt.Errorf("avatars rating must be one of %s", strings.Join(avatarRatings, ", "))
		}
		if c.Avatars.Size < 1 || c.Avatars.Size > 2048 {
			return fmt.Errorf("avatars size must be between 1 and 2048")
		}
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = strings.TrimSpace(c.Listen)
	c.ServerURL = strings.TrimSuffix(strings.TrimSpace(c.ServerURL), "/")
	c.AdminEmail = NormalizeEmail(c.AdminEmail)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// NormalizeEmail trims and lowercases an email address. All lookups and inserts
// of user emails go through this function.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdminEmail reports whether email is the configured admin address.
func (c *Config) IsAdminEmail(email string) bool {
	if c == nil || c.AdminEmail == "" {
		return false
	}
	return NormalizeEmail(email) == c.AdminEmail
}

// GetShutdownTimeout returns the shutdown timeout with proper defaults.
func (c *Config) GetShutdownTimeout() time.Duration {
	if c == nil || c.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return c.ShutdownTimeout
}
