package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	Secret         string        `mapstructure:"secret"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`

	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Calls    CallsConfig    `mapstructure:"calls"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Rate     RateConfig     `mapstructure:"rate"`
	RTC      RTCConfig      `mapstructure:"rtc"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig enables the presence mirror when Addr is set.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PresenceTTL time.Duration `mapstructure:"presence_ttl"`
}

// KafkaConfig enables the message stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type CallsConfig struct {
	RingTimeout time.Duration `mapstructure:"ring_timeout"`
}

// AuthConfig turns on token checks for the socket upgrade when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type RateConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

type RTCConfig struct {
	ICEServers []ICEServer `mapstructure:"ice_servers"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "change-me")
	v.SetDefault("persist_timeout", "5s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:kairos.db?cache=shared")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.presence_ttl", "60s")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "chat-messages")

	v.SetDefault("calls.ring_timeout", "45s")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("rate.limit", 20)
	v.SetDefault("rate.interval", "5s")
}

// Load reads config/config.<CONFIG_ENV>.yaml over the defaults. A .env file
// and KAIROS_* variables override both, e.g. KAIROS_DATABASE_DSN.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Str("module", "config").Msg(".env loaded")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		fileName = fmt.Sprintf("%s/config.%s.yaml", strings.TrimRight(dir, "/"), env)
	}
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("KAIROS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if brokers := os.Getenv("KAIROS_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("db", cfg.Database.Driver).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Calls.RingTimeout < 0 {
		return fmt.Errorf("config: calls.ring_timeout must not be negative")
	}
	return nil
}
