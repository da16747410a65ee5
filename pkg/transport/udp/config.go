package udp

import (
	"fmt"
	"time"
)

// Config 数据报交换器配置
type Config struct {
	// 服务端主机名或 IP
	Host string `mapstructure:"host" json:"host" yaml:"host"`

	// 紧凑信道端口
	Port int `mapstructure:"port" json:"port" yaml:"port"`

	// 单次交换的响应等待上限，超时按空响应处理
	ReadTimeout time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`

	// 收包缓冲区大小
	MaxPacketSize int `mapstructure:"max_packet_size" json:"max_packet_size" yaml:"max_packet_size"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Port:          5683,
		ReadTimeout:   3 * time.Second,
		MaxPacketSize: 1280,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("udp: host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("udp: invalid port %d", c.Port)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("udp: read_timeout must be positive")
	}
	if c.MaxPacketSize <= 0 {
		return fmt.Errorf("udp: max_packet_size must be positive")
	}
	return nil
}
