package httpfb

import (
	"fmt"
	"time"
)

// Config 标准信道客户端配置
type Config struct {
	// 请求超时
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// 访问令牌，authenticated 请求以 Bearer 头携带
	AccessToken string `mapstructure:"access_token" json:"access_token" yaml:"access_token"`

	// User-Agent 头
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		UserAgent: "lowband/1.0",
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpfb: timeout must be positive")
	}
	return nil
}
