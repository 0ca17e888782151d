package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// ServerConfig controls the HTTP control surface.
type ServerConfig struct {
	Host                string   `mapstructure:"host"`
	Port                int      `mapstructure:"port"`
	Mode                string   `mapstructure:"mode"`
	BaseURL             string   `mapstructure:"base_url"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
	FrontendCallbackURL string   `mapstructure:"frontend_callback_url"`
	// InternalAPIToken gates the bot/admin-facing surface (§6.3) — every
	// request must carry it as a bearer token. Not used for the OAuth
	// callback or the payment-confirmation endpoint, which authenticate
	// differently.
	InternalAPIToken string `mapstructure:"internal_api_token"`
}

// DatabaseConfig holds the MySQL connection parameters.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// RedisConfig holds the Redis connection parameters used for the OAuth
// state store, refresh-stampede locks and the sliding-window rate limiter.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HHConfig holds credentials and endpoints for the HH OAuth client and API.
type HHConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	OAuthBaseURL string `mapstructure:"oauth_base_url"`
	APIBaseURL   string `mapstructure:"api_base_url"`
	UserAgent    string `mapstructure:"user_agent"`
	// StateSecret signs the OAuth state nonce (oauthstate.Signer) so a
	// forged state parameter is rejected before touching the token store.
	StateSecret string `mapstructure:"state_secret"`
}

// TelegramConfig holds the bot token used to notify linked users.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

// PaymentConfig holds the payment gateway credentials for the
// subscription webhook and return URL.
type PaymentConfig struct {
	PublicID      string `mapstructure:"public_id"`
	APISecret     string `mapstructure:"api_secret"`
	ReturnBotURL  string `mapstructure:"return_bot_url"`
}

// WorkerConfig controls the campaign/dispatch/notification schedulers.
type WorkerConfig struct {
	Concurrency        int `mapstructure:"concurrency"`
	AutoPollEverySec   int `mapstructure:"auto_poll_every_sec"`
	DispatchEverySec   int `mapstructure:"dispatch_every_sec"`
	NotifierEnabled    bool `mapstructure:"notifier_enabled"`
}

// QuotaConfig holds the daily application-send caps enforced by the
// quota engine.
type QuotaConfig struct {
	HardDailyCap int `mapstructure:"hard_daily_cap"`
	FreeDailyCap int `mapstructure:"free_daily_cap"`
	PaidDailyCap int `mapstructure:"paid_daily_cap"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HH       HHConfig       `mapstructure:"hh"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Quota    QuotaConfig    `mapstructure:"quota"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// If configPath is provided, it is used instead of the default search paths.
// The config file is optional - if not found, defaults and environment
// variables are used.
func Load(env string, configPath ...string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if len(configPath) > 0 && configPath[0] != "" {
		viper.SetConfigFile(configPath[0])
	} else {
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("../configs")
		viper.AddConfigPath("../../configs")
	}

	viper.SetEnvPrefix("HHBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

// Get returns the last loaded configuration.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.base_url", "")
	viper.SetDefault("server.allowed_origins", []string{})
	viper.SetDefault("server.frontend_callback_url", "")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "hhbot_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// HH OAuth/API defaults (empty, must be configured per environment)
	viper.SetDefault("hh.client_id", "")
	viper.SetDefault("hh.client_secret", "")
	viper.SetDefault("hh.redirect_uri", "")
	viper.SetDefault("hh.oauth_base_url", "https://hh.ru/oauth")
	viper.SetDefault("hh.api_base_url", "https://api.hh.ru")
	viper.SetDefault("hh.user_agent", "hhbot-dispatcher/1.0 (admin@hhbot.local)")

	viper.SetDefault("telegram.bot_token", "")

	viper.SetDefault("payment.public_id", "")
	viper.SetDefault("payment.api_secret", "")
	viper.SetDefault("payment.return_bot_url", "")

	viper.SetDefault("worker.concurrency", 4)
	viper.SetDefault("worker.auto_poll_every_sec", 300)
	viper.SetDefault("worker.dispatch_every_sec", 5)
	viper.SetDefault("worker.notifier_enabled", true)

	viper.SetDefault("quota.hard_daily_cap", 200)
	viper.SetDefault("quota.free_daily_cap", 10)
	viper.SetDefault("quota.paid_daily_cap", 200)
}
