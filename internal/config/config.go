// config - источник загрузки конфигурации блога.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	WordPress WordPressConfig `yaml:"wordpress"`
	Blog      BlogConfig      `yaml:"blog"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// TimeoutConfig — таймаут обработки одного запроса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"15s"`
}

// HTTPConfig — публичный HTTP-сервер.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"3000"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// WordPressConfig — контент-API.
type WordPressConfig struct {
	BaseURL    string        `yaml:"base_url"     env:"WP_BASE_URL"`
	Timeout    time.Duration `yaml:"timeout"      env:"WP_TIMEOUT"      env-default:"15s"`
	PerPageMax int           `yaml:"per_page_max" env:"WP_PER_PAGE_MAX" env-default:"100"`
	// RateLimit — запросов в секунду к API; 0 — без ограничения.
	RateLimit float64 `yaml:"rate_limit" env:"WP_RATE_LIMIT" env-default:"0"`
	Burst     int     `yaml:"burst"      env:"WP_BURST"      env-default:"5"`
	UserAgent string  `yaml:"user_agent" env:"WP_USER_AGENT" env-default:"upsc-blog"`
}

// BlogConfig — параметры отображения.
type BlogConfig struct {
	PostsPerPage int `yaml:"posts_per_page" env:"BLOG_POSTS_PER_PAGE" env-default:"6"`
	// SiteURL — публичный адрес сайта для sitemap.xml; пусто — относительные ссылки.
	SiteURL string `yaml:"site_url" env:"BLOG_SITE_URL"`
	Title   string `yaml:"title"    env:"BLOG_TITLE"    env-default:"MentorGuru Blog"`
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.WordPress.BaseURL == "" {
		return fmt.Errorf("wordpress.base_url is required")
	}

	u, err := url.Parse(c.WordPress.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("wordpress.base_url must be an absolute http(s) url")
	}

	if c.WordPress.PerPageMax < 1 || c.WordPress.PerPageMax > 100 {
		return fmt.Errorf("wordpress.per_page_max must be in [1, 100]")
	}

	if c.WordPress.RateLimit < 0 {
		return fmt.Errorf("wordpress.rate_limit must be >= 0")
	}

	if c.Blog.PostsPerPage < 1 {
		return fmt.Errorf("blog.posts_per_page must be positive")
	}

	if c.Timeouts.Service <= 0 {
		return fmt.Errorf("timeouts.service must be positive")
	}

	return nil
}
