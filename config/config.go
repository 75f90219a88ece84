package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	Environment string         `mapstructure:"-"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Security    SecurityConfig `mapstructure:"security"`
	AI          AIConfig       `mapstructure:"ai"`
	Metrics     MetricsConfig  `mapstructure:"metrics"`
	Audit       AuditConfig    `mapstructure:"audit"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode        string        `mapstructure:"mode"` // sqlite | mysql | postgres
	SQLitePath  string        `mapstructure:"sqlite_path"`
	MySQLDSN    string        `mapstructure:"mysql_dsn"`
	PostgresDSN string        `mapstructure:"postgres_dsn"`
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLife     time.Duration `mapstructure:"max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// AIConfig points at an OpenAI-compatible chat completion endpoint.
type AIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
}

type MetricsConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	AllowedIPs []string `mapstructure:"allowed_ips"`
}

// AuditConfig controls audit log retention. A zero Retention keeps rows
// forever.
type AuditConfig struct {
	Retention     time.Duration `mapstructure:"retention"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// ResolveEnv returns the environment name to run under. An explicit value
// wins over the ENVIRONMENT variable; anything other than "development"
// is treated as production.
func ResolveEnv(explicit string) string {
	env := explicit
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	if strings.EqualFold(strings.TrimSpace(env), EnvDevelopment) {
		return EnvDevelopment
	}
	return EnvProduction
}

// FileNames returns the YAML config file and dotenv file used for env.
func FileNames(env string) (yamlFile, dotenvFile string) {
	if env == EnvDevelopment {
		return "config.development.yaml", ".env.development"
	}
	return "config.yaml", ".env"
}

// Load reads the dotenv file and YAML config for the given environment.
// The YAML file is optional; defaults and environment variables are enough
// to boot. Environment variables override YAML keys, e.g.
// SECURITY_JWT_SECRET overrides security.jwt_secret.
func Load(dir, env string) (*Config, error) {
	env = ResolveEnv(env)
	yamlFile, dotenvFile := FileNames(env)

	// Missing dotenv files are fine; existing variables are not overridden.
	_ = godotenv.Load(dotenvFile)

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, yamlFile))
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.debug", env == EnvDevelopment)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/studymate.db")
	v.SetDefault("database.mysql_dsn", "")
	v.SetDefault("database.postgres_dsn", "")
	v.SetDefault("database.max_open", 25)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.max_life", "1h")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "studymate:")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)
	v.SetDefault("ai.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("ai.model", "llama3-8b-8192")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.allowed_ips", []string{})
	v.SetDefault("audit.retention", "720h")
	v.SetDefault("audit.prune_interval", "1h")

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.Environment = env
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("GROQ_API_KEY")
	}
	return cfg, nil
}

// isNotExist reports whether err means the config file is absent. viper
// returns ConfigFileNotFoundError only when searching paths; with an explicit
// file it surfaces the underlying fs error instead.
func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
