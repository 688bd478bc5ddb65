package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers for the token store.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	App        AppConfig
	Log        LogConfig
	Backend    BackendConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cookie     CookieConfig
	Session    SessionConfig
	Routes     RoutesConfig
	DevBackend DevBackendConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// BackendConfig points the front end at the platform API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StorageConfig selects where credentials persist.
type StorageConfig struct {
	Driver    string // memory, file, redis, postgres
	FilePath  string
	Namespace string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig holds database connection parameters. DSN wins over
// the individual fields when set.
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int64
}

type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type SessionConfig struct {
	IdleTTL    time.Duration
	MaxClients int
}

type RoutesConfig struct {
	File string
}

// DevBackendConfig configures cmd/devbackend only.
type DevBackendConfig struct {
	Port          string
	UsersDriver   string // memory, postgres
	OTPDriver     string // memory, redis
	OTPTTL        time.Duration
	AdminEmail    string
	AdminPassword string
}

// Load reads .env, then config.toml, then SALT_-prefixed environment
// variables, e.g. SALT_BACKEND_BASE_URL.
func Load() (*Config, error) {
	// .env is optional; the real environment still applies.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/salt_portal")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SALT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Backend: BackendConfig{
			BaseURL: v.GetString("backend.base_url"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(v.GetString("storage.driver")),
			FilePath:  v.GetString("storage.file_path"),
			Namespace: v.GetString("storage.namespace"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			DSN:      v.GetString("database.dsn"),
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Name:     v.GetString("database.name"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("jwt.secret"),
			ExpirationHours: v.GetInt64("jwt.expiration_hours"),
		},
		Cookie: CookieConfig{
			Name:   v.GetString("cookie.name"),
			Secure: v.GetBool("cookie.secure"),
			MaxAge: v.GetDuration("cookie.max_age"),
		},
		Session: SessionConfig{
			IdleTTL:    v.GetDuration("session.idle_ttl"),
			MaxClients: v.GetInt("session.max_clients"),
		},
		Routes: RoutesConfig{
			File: v.GetString("routes.file"),
		},
		DevBackend: DevBackendConfig{
			Port:          v.GetString("dev_backend.port"),
			UsersDriver:   strings.ToLower(v.GetString("dev_backend.users_driver")),
			OTPDriver:     strings.ToLower(v.GetString("dev_backend.otp_driver")),
			OTPTTL:        v.GetDuration("dev_backend.otp_ttl"),
			AdminEmail:    v.GetString("dev_backend.admin_email"),
			AdminPassword: v.GetString("dev_backend.admin_password"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "salt-portal"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "3000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8080"
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 15 * time.Second
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverMemory
	}
	if cfg.Storage.FilePath == "" {
		cfg.Storage.FilePath = "data/credentials.json"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "salt_portal"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.JWT.ExpirationHours == 0 {
		cfg.JWT.ExpirationHours = 24
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = "salt_client"
	}
	if cfg.Cookie.MaxAge == 0 {
		cfg.Cookie.MaxAge = 30 * 24 * time.Hour
	}
	if cfg.Session.IdleTTL == 0 {
		cfg.Session.IdleTTL = 30 * time.Minute
	}
	if cfg.Session.MaxClients == 0 {
		cfg.Session.MaxClients = 10000
	}
	if cfg.DevBackend.Port == "" {
		cfg.DevBackend.Port = "8080"
	}
	if cfg.DevBackend.UsersDriver == "" {
		cfg.DevBackend.UsersDriver = DriverMemory
	}
	if cfg.DevBackend.OTPDriver == "" {
		cfg.DevBackend.OTPDriver = DriverMemory
	}
	if cfg.DevBackend.OTPTTL == 0 {
		cfg.DevBackend.OTPTTL = 5 * time.Minute
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: backend base URL %q must be absolute", ErrInvalidConfig, c.Backend.BaseURL)
	}
	switch c.DevBackend.UsersDriver {
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown dev backend users driver %q", ErrInvalidConfig, c.DevBackend.UsersDriver)
	}
	switch c.DevBackend.OTPDriver {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("%w: unknown dev backend otp driver %q", ErrInvalidConfig, c.DevBackend.OTPDriver)
	}
	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// ConnString builds the connection string from the individual fields
// unless DSN is set.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
