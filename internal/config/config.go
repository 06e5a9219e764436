package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Widget WidgetConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port               string   `env:"PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Addr 由 Port 归一化得到。
	Addr string
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// WidgetConfig 描述聊天挂件的计时与内容来源。
type WidgetConfig struct {
	HoverDelay    time.Duration `env:"WIDGET_HOVER_DELAY" envDefault:"1500ms"`
	BlinkInterval time.Duration `env:"WIDGET_BLINK_INTERVAL" envDefault:"800ms"`
	SessionTTL    time.Duration `env:"WIDGET_SESSION_TTL" envDefault:"30m"`
	FAQFile       string        `env:"WIDGET_FAQ_FILE"`
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	addr, err := normalizeAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Widget.HoverDelay <= 0 {
		errs = append(errs, fmt.Errorf("invalid WIDGET_HOVER_DELAY value %s: must be positive", c.Widget.HoverDelay))
	}
	if c.Widget.BlinkInterval <= 0 {
		errs = append(errs, fmt.Errorf("invalid WIDGET_BLINK_INTERVAL value %s: must be positive", c.Widget.BlinkInterval))
	}
	if c.Widget.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("invalid WIDGET_SESSION_TTL value %s: must not be negative", c.Widget.SessionTTL))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT value %q: want json or console", c.Log.Format))
	}
	return errors.Join(errs...)
}

// normalizeAddr 解析服务器监听地址。
func normalizeAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}
