package config

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env             string
	HTTPAddr        string
	Storage         string
	DBDriver        string
	DBDSN           string
	AuthBaseURL     string
	AuthAPIKey      string
	LogLevel        string
	ShutdownTimeout time.Duration
	Feedback        FeedbackConfig
}

// FeedbackConfig optionally overrides the built-in message pools.
type FeedbackConfig struct {
	Emojis  []string `yaml:"emojis"`
	Phrases []string `yaml:"phrases"`
}

// fileConfig is the optional YAML overlay; zero values leave the env/flag
// result alone.
type fileConfig struct {
	HTTPAddr    string         `yaml:"http_addr"`
	Storage     string         `yaml:"storage"`
	DBDSN       string         `yaml:"db_dsn"`
	AuthBaseURL string         `yaml:"auth_base_url"`
	LogLevel    string         `yaml:"log_level"`
	Feedback    FeedbackConfig `yaml:"feedback"`
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func Load() Config {
	_ = godotenv.Load()

	var addr string
	var storage string
	var env string
	var configFile string
	flag.StringVar(&addr, "http", getenv("HTTP_ADDR", ":8080"), "addr")
	flag.StringVar(&storage, "storage", getenv("STORAGE", "memory"), "storage")
	flag.StringVar(&env, "env", getenv("APP_ENV", "dev"), "env")
	flag.StringVar(&configFile, "config", getenv("CONFIG_FILE", ""), "config file")
	flag.Parse()

	cfg := Config{
		Env:             env,
		HTTPAddr:        addr,
		Storage:         storage,
		DBDriver:        getenv("DB_DRIVER", "pgx"),
		DBDSN:           getenv("DB_DSN", ""),
		AuthBaseURL:     getenv("AUTH_BASE_URL", ""),
		AuthAPIKey:      getenv("AUTH_API_KEY", ""),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		ShutdownTimeout: getdur("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
	if configFile != "" {
		cfg = applyFile(cfg, configFile)
	}
	return cfg
}

func applyFile(cfg Config, path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg
	}
	if fc.HTTPAddr != "" {
		cfg.HTTPAddr = fc.HTTPAddr
	}
	if fc.Storage != "" {
		cfg.Storage = fc.Storage
	}
	if fc.DBDSN != "" {
		cfg.DBDSN = fc.DBDSN
	}
	if fc.AuthBaseURL != "" {
		cfg.AuthBaseURL = fc.AuthBaseURL
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	cfg.Feedback = fc.Feedback
	return cfg
}
