package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/zhouzirui/minichat/backend/internal/model/profile"
	"github.com/zhouzirui/minichat/backend/internal/service/widget"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Widget WidgetConfig
	Log    LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	w, err := loadWidgetConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Widget: w, Log: loadLogConfig()}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// WidgetConfig 描述聊天挂件的计时与资料配置。
type WidgetConfig struct {
	CloseDelay     time.Duration
	ReplyDelay     time.Duration
	ProfilesFile   string
	DefaultProfile string
	MaxSessions    int
}

// Options converts the timer settings for the controller.
func (c WidgetConfig) Options() widget.Options {
	return widget.Options{CloseDelay: c.CloseDelay, ReplyDelay: c.ReplyDelay}
}

// LoadProfiles 读取资料文件；未配置时使用内置资料。
func (c WidgetConfig) LoadProfiles() (*profile.MemoryStore, error) {
	if c.ProfilesFile == "" {
		return profile.NewMemoryStore(profile.Seed(), c.DefaultProfile), nil
	}
	items, err := profile.LoadFile(c.ProfilesFile)
	if err != nil {
		return nil, err
	}
	return profile.NewMemoryStore(items, c.DefaultProfile), nil
}

func loadWidgetConfig() (WidgetConfig, error) {
	closeDelay, err := parseDurationEnv("WIDGET_CLOSE_DELAY", widget.DefaultCloseDelay)
	if err != nil {
		return WidgetConfig{}, err
	}

	replyDelay, err := parseDurationEnv("WIDGET_REPLY_DELAY", widget.DefaultReplyDelay)
	if err != nil {
		return WidgetConfig{}, err
	}

	maxSessions := 0
	if override, err := parseOptionalIntEnv("WIDGET_MAX_SESSIONS"); err != nil {
		return WidgetConfig{}, err
	} else if override != nil && *override > 0 {
		maxSessions = *override
	}

	return WidgetConfig{
		CloseDelay:     closeDelay,
		ReplyDelay:     replyDelay,
		ProfilesFile:   strings.TrimSpace(os.Getenv("WIDGET_PROFILES_FILE")),
		DefaultProfile: getEnvOrDefault("WIDGET_DEFAULT_PROFILE", profile.DefaultID),
		MaxSessions:    maxSessions,
	}, nil
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "console")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s value %q", key, raw)
	}
	if val <= 0 {
		return 0, errors.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &val, nil
}
