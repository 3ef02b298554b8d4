package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"go-newsrank/internal/ranking"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cron     CronConfig     `yaml:"cron"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Feed     FeedConfig     `yaml:"feed"`
	Log      LogConfig      `yaml:"log"`
	Feeds    []FeedSource   `yaml:"feeds"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT"`
	Mode string `yaml:"mode" env:"GIN_MODE"` // debug, release, test
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"DB_PATH"`
}

type CronConfig struct {
	RefreshInterval string        `yaml:"refresh_interval" env:"REFRESH_INTERVAL"` // 刷新周期,cron 表达式
	RunOnStart      bool          `yaml:"run_on_start" env:"RUN_ON_START"`
	CycleTimeout    time.Duration `yaml:"cycle_timeout" env:"CYCLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type RankingConfig struct {
	EvictMode string  `yaml:"evict_mode" env:"EVICT_MODE"` // keep_count, threshold, fraction, none
	KeepCount int     `yaml:"keep_count" env:"KEEP_COUNT"`
	Threshold int     `yaml:"threshold" env:"SCORE_THRESHOLD"`
	Fraction  float64 `yaml:"fraction" env:"EVICT_FRACTION"`
}

type FeedConfig struct {
	Timeout     time.Duration `yaml:"timeout" env:"FEED_TIMEOUT"`
	Concurrency int           `yaml:"concurrency" env:"FEED_CONCURRENCY"`
	MaxItems    int           `yaml:"max_items" env:"FEED_MAX_ITEMS"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// FeedSource 启动时写入数据库的订阅源
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3000",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Path: "data/news.db",
		},
		Cron: CronConfig{
			RefreshInterval: "@every 10s",
			RunOnStart:      true,
			CycleTimeout:    2 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
		},
		Ranking: RankingConfig{
			EvictMode: string(ranking.EvictKeepCount),
			KeepCount: 100,
		},
		Feed: FeedConfig{
			Timeout:     15 * time.Second,
			Concurrency: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load 加载配置文件,再用环境变量覆盖
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// 如果配置文件存在,读取配置
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	} else {
		slog.Info("Config file not found, using defaults", "path", configPath)
	}

	// 环境变量覆盖配置;feeds 列表只能来自配置文件
	for _, section := range []any{&cfg.Server, &cfg.Database, &cfg.Cron, &cfg.Ranking, &cfg.Feed, &cfg.Log} {
		if err := env.Parse(section); err != nil {
			return nil, fmt.Errorf("parsing environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.Cron.RefreshInterval); err != nil {
		return fmt.Errorf("invalid cron.refresh_interval %q: %w", c.Cron.RefreshInterval, err)
	}
	if c.Cron.CycleTimeout <= 0 {
		return errors.New("cron.cycle_timeout must be positive")
	}
	if c.Cron.ShutdownTimeout <= 0 {
		return errors.New("cron.shutdown_timeout must be positive")
	}
	if err := c.Ranking.Policy().Validate(); err != nil {
		return fmt.Errorf("invalid ranking config: %w", err)
	}
	for i, f := range c.Feeds {
		if f.URL == "" {
			return fmt.Errorf("feeds[%d]: url is required", i)
		}
	}
	return nil
}

// Policy 转换为淘汰策略
func (r RankingConfig) Policy() ranking.Policy {
	return ranking.Policy{
		Mode:      ranking.EvictMode(r.EvictMode),
		KeepCount: r.KeepCount,
		Threshold: r.Threshold,
		Fraction:  r.Fraction,
	}
}

// GetServerAddress 获取服务器监听地址
func (c *Config) GetServerAddress() string {
	// 如果端口是纯数字,加上冒号前缀
	if _, err := strconv.Atoi(c.Server.Port); err == nil {
		return ":" + c.Server.Port
	}
	return c.Server.Port
}
