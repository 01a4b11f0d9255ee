package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Bot       BotConfig     `mapstructure:"bot"`
	Checkin   CheckinConfig `mapstructure:"checkin"`
	Awards    AwardsConfig  `mapstructure:"awards"`
	AI        AIConfig      `mapstructure:"ai"`
	Admin     AdminConfig   `mapstructure:"admin"`
	Redis     RedisConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

// BotConfig 机器人运行参数，auto_delete 部分支持热更新
type BotConfig struct {
	Token              string  `mapstructure:"token"`
	AdminIDs           []int64 `mapstructure:"admin_ids"`
	AutoDeleteEnabled  bool    `mapstructure:"auto_delete_enabled"`
	AutoDeleteSeconds  int     `mapstructure:"auto_delete_seconds"`
	DeleteWorkers      int     `mapstructure:"delete_workers"`
	UpdateTimeout      int     `mapstructure:"update_timeout"`
	AdminPanelURL      string  `mapstructure:"admin_panel_url"`
	MuteDurationMinute int     `mapstructure:"mute_duration_minutes"`
}

// AutoDeleteDelay 返回自动删除消息前等待的时长
func (b BotConfig) AutoDeleteDelay() time.Duration {
	return time.Duration(b.AutoDeleteSeconds) * time.Second
}

// IsAdmin 判断给定的Telegram用户是否在管理员名单中
func (b BotConfig) IsAdmin(telegramID int64) bool {
	for _, id := range b.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

type CheckinConfig struct {
	BasePoints int `mapstructure:"base_points"`
	StreakCap  int `mapstructure:"streak_cap"`
}

// AwardsConfig 各命令成功后奖励的积分
type AwardsConfig struct {
	Translate int `mapstructure:"translate"`
	Webpage   int `mapstructure:"webpage"`
	Heatmap   int `mapstructure:"heatmap"`
}

type AIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// AdminConfig 网页后台的管理员账号，密码存bcrypt哈希
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("TGBOT")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Bot
	viper.BindEnv("bot.token", "BOT_TOKEN")
	viper.BindEnv("bot.auto_delete_enabled", "AUTO_DELETE_MESSAGES")
	viper.BindEnv("bot.auto_delete_seconds", "AUTO_DELETE_INTERVAL")

	// Admin
	viper.BindEnv("admin.username", "ADMIN_USERNAME")
	viper.BindEnv("admin.password_hash", "ADMIN_PASSWORD_HASH")

	// AI
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Bot.AutoDeleteSeconds <= 0 {
		cfg.Bot.AutoDeleteSeconds = 30
	}
	if cfg.Bot.DeleteWorkers <= 0 {
		cfg.Bot.DeleteWorkers = 4
	}
	if cfg.Bot.UpdateTimeout <= 0 {
		cfg.Bot.UpdateTimeout = 60
	}
	if cfg.Bot.MuteDurationMinute <= 0 {
		cfg.Bot.MuteDurationMinute = 60
	}
	if cfg.Checkin.BasePoints <= 0 {
		cfg.Checkin.BasePoints = 5
	}
	if cfg.Checkin.StreakCap <= 0 {
		cfg.Checkin.StreakCap = 30
	}

	return &cfg, nil
}
