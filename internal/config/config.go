package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 SKUDASH_API_BASE_URL
const EnvPrefix = "SKUDASH"

// Config 客户端配置
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Session  SessionConfig  `mapstructure:"session"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
	View     ViewConfig     `mapstructure:"view"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig 远端服务
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Debug   bool          `mapstructure:"debug"`
}

// SessionConfig 会话持久化
type SessionConfig struct {
	Backend string `mapstructure:"backend"` // file | sqlite
	Path    string `mapstructure:"path"`
}

// AutosaveConfig 备注自动保存
type AutosaveConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// ViewConfig 看板视图
type ViewConfig struct {
	// ServerSide 为 true 时把搜索/筛选/排序作为查询参数交给远端，本地仍会再计算一遍
	ServerSide bool `mapstructure:"server_side"`
}

// RefreshConfig 看板定时刷新 (watch 命令)
type RefreshConfig struct {
	Spec string `mapstructure:"spec"` // cron 表达式，空表示关闭
}

// LogConfig 日志
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// 会话存储后端
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Load 读取配置
// 优先级：环境变量 > 配置文件 > 默认值；当前目录存在 .env 时先加载
func Load(path string) (*Config, error) {
	// 1. .env (可选)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 2. 配置文件 (可选)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// 3. 环境变量
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url is required")
	}
	switch c.Session.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown session.backend %q", c.Session.Backend)
	}
	if c.Autosave.Delay <= 0 {
		return errors.New("config: autosave.delay must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", "20s")
	v.SetDefault("api.debug", false)

	v.SetDefault("session.backend", BackendFile)
	v.SetDefault("session.path", defaultSessionPath())

	v.SetDefault("autosave.delay", "2s")
	v.SetDefault("view.server_side", true)
	v.SetDefault("refresh.spec", "")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
}

// defaultSessionPath 用户配置目录下的会话目录
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "skudash")
}
