package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Config is the root configuration shared by the gateway and the CLI.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Mode      Mode   `yaml:"mode"       env:"MODE"       env-default:"offline"`
	HTTPAddr  string `yaml:"http_addr"  env:"HTTP_ADDR"  env-default:":8080"`
	PublicURL string `yaml:"public_url" env:"PUBLIC_URL"`

	// Largest accepted upload, report and roster together.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"33554432"`

	CORSOriginsOnline  []string `yaml:"cors_origins_online"  env:"CORS_ORIGINS_ONLINE"  env-default:"https://grades.example.org"`
	CORSOriginsOffline []string `yaml:"cors_origins_offline" env:"CORS_ORIGINS_OFFLINE" env-default:"http://localhost:3000,http://localhost:3010"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"` // sqlite|postgres
	DSN    string `yaml:"dsn"    env:"DB_DSN"`
}

type StorageConfig struct {
	// DataDir holds participant exports (courseid_<id>_participants.csv),
	// uploaded reports and exported grade tables.
	DataDir string `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`
}

type AuthConfig struct {
	HMACSecret    string        `yaml:"hmac_secret"     env:"JWT_HMAC_SECRET" env-default:"dev-secret-change-me"`
	TokenTTL      time.Duration `yaml:"token_ttl"       env:"JWT_TTL"         env-default:"8h"`
	AdminUser     string        `yaml:"admin_user"      env:"ADMIN_USER"      env-default:"admin"`
	AdminPassHash string        `yaml:"admin_pass_hash" env:"ADMIN_PASS_HASH"` // bcrypt
	// Users are extra accounts as "name:role:bcrypt-hash".
	Users []string `yaml:"users" env:"AUTH_USERS" env-separator:";"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"` // text|json
}

// CORSOrigins returns the allowed origins for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Server.Mode == ModeOnline {
		return c.Server.CORSOriginsOnline
	}
	return c.Server.CORSOriginsOffline
}

func (c Config) Validate() error {
	var errs []error
	switch c.Server.Mode {
	case ModeOffline, ModeOnline:
	default:
		errs = append(errs, fmt.Errorf("server.mode: unknown mode %q", c.Server.Mode))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported %q", c.Database.Driver))
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		errs = append(errs, errors.New("storage.data_dir: required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes: must be positive"))
	}
	if c.Server.Mode == ModeOnline {
		if c.Auth.HMACSecret == "" || c.Auth.HMACSecret == "dev-secret-change-me" {
			errs = append(errs, errors.New("auth.hmac_secret: required in online mode"))
		}
		if c.Auth.AdminPassHash == "" {
			errs = append(errs, errors.New("auth.admin_pass_hash: required in online mode"))
		}
	}
	for i, u := range c.Auth.Users {
		if parts := strings.SplitN(u, ":", 3); len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			errs = append(errs, fmt.Errorf("auth.users[%d]: want name:role:hash", i))
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
