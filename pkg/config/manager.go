// Package config 提供配置加载与合并。
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager 配置管理器接口
type Manager interface {
	// LoadFile 加载配置文件（支持 YAML、JSON、TOML 等）
	LoadFile(path string) error
	// BindEnv 绑定环境变量，prefix 如 "LOWBAND" 会匹配 LOWBAND_TRANSPORT_HOST
	BindEnv(prefix string)
	// Unmarshal 解析整个配置到结构体
	Unmarshal(v any) error
	// UnmarshalKey 解析指定路径的配置，key 如 "transport.udp"
	UnmarshalKey(key string, v any) error
	// IsSet 检查配置项是否存在
	IsSet(key string) bool
}

// manager 配置管理器实现
type manager struct {
	mu sync.RWMutex
	v  *viper.Viper
}

// NewManager 创建配置管理器
func NewManager() Manager {
	return &manager{v: viper.New()}
}

// LoadFile 加载配置文件
func (m *manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// BindEnv 绑定环境变量
func (m *manager) BindEnv(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prefix != "" {
		m.v.SetEnvPrefix(prefix)
	}
	m.v.AutomaticEnv()
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// Unmarshal 解析整个配置到结构体
func (m *manager) Unmarshal(v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.Unmarshal(v); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// UnmarshalKey 解析指定路径的配置
func (m *manager) UnmarshalKey(key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.v.IsSet(key) {
		return fmt.Errorf("config key not found: %s", key)
	}
	if err := m.v.UnmarshalKey(key, v); err != nil {
		return fmt.Errorf("failed to unmarshal config key %s: %w", key, err)
	}
	return nil
}

// IsSet 检查配置项是否存在
func (m *manager) IsSet(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(key)
}
