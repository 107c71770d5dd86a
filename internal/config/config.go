package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// PostgresConfig with an empty DSN makes the api fall back to the in-memory
// store. Only honoured outside production.
type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	TokenSecret     string
	SessionTTL      time.Duration
	ConfirmationTTL time.Duration
	ResetTTL        time.Duration
	EmailChangeTTL  time.Duration
	InvitationTTL   time.Duration
}

type SeedAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type SeedConfig struct {
	Enabled     bool
	Admin       SeedAccount
	UserManager SeedAccount
	User        SeedAccount
}

type MailConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
	LinkBaseURL   string
}

type JobsConfig struct {
	ReminderSpec  string
	ReminderAfter time.Duration
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	TLS              TLSConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Security         SecurityConfig
	Seed             SeedConfig
	Mail             MailConfig
	Jobs             JobsConfig
	Logging          LoggingConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Security.TokenSecret == "" {
		return errors.New("security.tokensecret is required")
	}
	if c.Environment == "production" && c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required in production")
	}
	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return errors.New("tls.certfile and tls.keyfile are required when tls is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("tls.enabled", false)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("security.tokensecret", "")
	v.SetDefault("security.sessionttl", "1h")
	v.SetDefault("security.confirmationttl", "1h")
	v.SetDefault("security.resetttl", "1h")
	v.SetDefault("security.emailchangettl", "1h")
	v.SetDefault("security.invitationttl", "7h")

	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.admin.email", "admin@catalog.local")
	v.SetDefault("seed.admin.password", "")
	v.SetDefault("seed.admin.firstname", "Site")
	v.SetDefault("seed.admin.lastname", "Administrator")
	v.SetDefault("seed.usermanager.email", "usermanager@catalog.local")
	v.SetDefault("seed.usermanager.password", "")
	v.SetDefault("seed.usermanager.firstname", "User")
	v.SetDefault("seed.usermanager.lastname", "Manager")
	v.SetDefault("seed.user.email", "user@catalog.local")
	v.SetDefault("seed.user.password", "")
	v.SetDefault("seed.user.firstname", "Default")
	v.SetDefault("seed.user.lastname", "User")

	v.SetDefault("mail.stream", "mail:outbox")
	v.SetDefault("mail.group", "mail-workers")
	v.SetDefault("mail.consumer", "worker-1")
	v.SetDefault("mail.claiminterval", "30s")
	v.SetDefault("mail.linkbaseurl", "http://localhost:8080")

	v.SetDefault("jobs.reminderspec", "0 0 3 * * *")
	v.SetDefault("jobs.reminderafter", "24h")

	v.SetDefault("logging.level", "")
	v.SetDefault("allowcorsorigins", []string{})
}
