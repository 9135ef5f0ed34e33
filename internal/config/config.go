package config

import (
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

// 主配置结构
type Config struct {
	App       App     `yaml:"app"`
	Server    Server  `yaml:"server"`
	Database  DB      `yaml:"database"`
	Cache     Cache   `yaml:"cache"`
	Auth      Auth    `yaml:"auth"`
	RateLimit Limit   `yaml:"rate_limit"`
	Gateway   Gateway `yaml:"gateway"`
	Tracker   Tracker `yaml:"tracker"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
}

// 服务器配置
type Server struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// 数据库配置
type DB struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// 缓存配置（Redis）
type Cache struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// 认证配置
type Auth struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  int64    `yaml:"requests_per_minute"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 机器人网关配置
type Gateway struct {
	BaseURL        string `yaml:"base_url"`
	BotUsername    string `yaml:"bot_username"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// 追踪配置
type Tracker struct {
	ExportWorkers int `yaml:"export_workers"`
	CacheTTLHours int `yaml:"cache_ttl_hours"`
}

// 加载配置
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gateway.TimeoutSeconds <= 0 {
		c.Gateway.TimeoutSeconds = 10
	}
	if c.Tracker.ExportWorkers <= 0 {
		c.Tracker.ExportWorkers = 8
	}
	if c.Tracker.CacheTTLHours <= 0 {
		c.Tracker.CacheTTLHours = 24
	}
}
