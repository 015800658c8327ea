package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL            string `yaml:"url"`
		MigrationsPath string `yaml:"migrations_path"`
	} `yaml:"database"`
	Server struct {
		Port            string   `yaml:"port"`
		FrontendOrigins []string `yaml:"frontend_origins"`
		StaticDir       string   `yaml:"static_dir"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret    string        `yaml:"jwt_secret"`
		TokenTTL     time.Duration `yaml:"token_ttl"`
		CookieName   string        `yaml:"cookie_name"`
		CookieSecure bool          `yaml:"cookie_secure"`
		BcryptCost   int           `yaml:"bcrypt_cost"`
		TokenInBody  *bool         `yaml:"token_in_body"`
	} `yaml:"auth"`
	Cache struct {
		Backend string        `yaml:"backend"` // "memory" or "redis"
		TTL     time.Duration `yaml:"ttl"`
		Size    int           `yaml:"size"`
	} `yaml:"cache"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Log struct {
		Production bool `yaml:"production"`
	} `yaml:"log"`
}

// envOverrides mirrors the variables the deployment scripts export.
type envOverrides struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	Port           string `env:"PORT"`
	JWTSecret      string `env:"JWT_SECRET"`
	FrontendOrigin string `env:"FRONTEND_ORIGIN"`
	RedisAddr      string `env:"REDIS_ADDR"`
	CookieSecure   bool   `env:"COOKIE_SECURE"`
}

// TokenInBodyEnabled reports whether signup/login echo the token in JSON.
func (c *Config) TokenInBodyEnabled() bool {
	return c.Auth.TokenInBody == nil || *c.Auth.TokenInBody
}

// LoadConfig reads configuration from the specified YAML file, then applies
// .env and environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to decode environment: %w", err)
	}

	if env.DatabaseURL != "" {
		c.Database.URL = env.DatabaseURL
	}
	if env.Port != "" {
		c.Server.Port = env.Port
	}
	if env.JWTSecret != "" {
		c.Auth.JWTSecret = env.JWTSecret
	}
	if env.FrontendOrigin != "" {
		// The env origin takes the first slot; configured extras stay allowed.
		origins := []string{env.FrontendOrigin}
		for _, o := range c.Server.FrontendOrigins {
			if o != env.FrontendOrigin {
				origins = append(origins, o)
			}
		}
		c.Server.FrontendOrigins = origins
	}
	if env.RedisAddr != "" {
		c.Redis.Addr = env.RedisAddr
		c.Cache.Backend = "redis"
	}
	if _, ok := os.LookupEnv("COOKIE_SECURE"); ok {
		c.Auth.CookieSecure = env.CookieSecure
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "4000"
	}
	if len(c.Server.FrontendOrigins) == 0 {
		c.Server.FrontendOrigins = []string{"http://localhost:5173", "http://localhost:5174"}
	}
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = "file://migrations"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "token"
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 60 * time.Second
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 1024
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "courses:"
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is missing: set auth.jwt_secret or the JWT_SECRET environment variable")
	}
	if c.Database.URL == "" {
		return errors.New("database url is missing: set database.url or DATABASE_URL")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("cache backend is redis but redis.addr is empty")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
