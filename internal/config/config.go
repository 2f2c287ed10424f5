package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultHTTPTimeout = 10 * time.Second

type Config struct {
	Port        string        `yaml:"port"`
	LogLevel    string        `yaml:"log_level"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	BaseURL     string        `yaml:"base_url"`
	RedisURL    string        `yaml:"redis_url"`
	RedisPrefix string        `yaml:"redis_prefix"`
	Brokers     []string      `yaml:"kafka_brokers"`
	FetchTopic  string        `yaml:"fetch_topic"`
	WarmTopic   string        `yaml:"warm_topic"`
	KafkaGroup  string        `yaml:"kafka_group"`
	Coalesce    bool          `yaml:"coalesce"`
	APIToken    string        `yaml:"api_token"`
}

// Load reads .env (if present), the environment, and then the YAML file named
// by CONFIG_FILE, whose non-zero values win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env not loaded")
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", DefaultHTTPTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}

	coalesce, err := strconv.ParseBool(getEnv("COALESCE", "false"))
	if err != nil {
		return nil, fmt.Errorf("COALESCE: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPTimeout: timeout,
		BaseURL:     os.Getenv("BASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		RedisPrefix: getEnv("REDIS_PREFIX", "redis:"),
		Brokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		FetchTopic:  getEnv("FETCH_TOPIC", "fetch-events"),
		WarmTopic:   getEnv("WARM_TOPIC", "warm-requests"),
		KafkaGroup:  getEnv("KAFKA_GROUP", "cache-warmer"),
		Coalesce:    coalesce,
		APIToken:    os.Getenv("API_TOKEN"),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	log.WithField("path", path).Debug("using config file")

	setString(&c.Port, file.Port)
	setString(&c.LogLevel, file.LogLevel)
	setString(&c.BaseURL, file.BaseURL)
	setString(&c.RedisURL, file.RedisURL)
	setString(&c.RedisPrefix, file.RedisPrefix)
	setString(&c.FetchTopic, file.FetchTopic)
	setString(&c.WarmTopic, file.WarmTopic)
	setString(&c.KafkaGroup, file.KafkaGroup)
	setString(&c.APIToken, file.APIToken)
	if file.HTTPTimeout != 0 {
		c.HTTPTimeout = file.HTTPTimeout
	}
	if len(file.Brokers) > 0 {
		c.Brokers = file.Brokers
	}
	if file.Coalesce {
		c.Coalesce = true
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
