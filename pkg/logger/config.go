package logger

import "fmt"

// Level 日志等级
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Format 日志格式
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// RotationType 轮换类型
type RotationType string

const (
	RotationBySize RotationType = "size"
	RotationByTime RotationType = "time"
)

// Config 日志配置
type Config struct {
	// 日志等级
	Level Level `mapstructure:"level" json:"level" yaml:"level"`

	// 输出格式 (json/console)
	Format Format `mapstructure:"format" json:"format" yaml:"format"`

	// 启用控制台输出
	EnableConsole bool `mapstructure:"enable_console" json:"enable_console" yaml:"enable_console"`

	// 启用文件输出
	EnableFile bool `mapstructure:"enable_file" json:"enable_file" yaml:"enable_file"`

	// 日志文件路径
	OutputPath string `mapstructure:"output_path" json:"output_path" yaml:"output_path"`

	// 轮换配置
	Rotation RotationConfig `mapstructure:"rotation" json:"rotation" yaml:"rotation"`
}

// RotationConfig 轮换配置
type RotationConfig struct {
	// 轮换类型 (size/time)
	Type RotationType `mapstructure:"type" json:"type" yaml:"type"`

	// 按大小轮换: 单文件最大 MB 数
	MaxSize int `mapstructure:"max_size" json:"max_size" yaml:"max_size"`

	// 按大小轮换: 保留文件数
	MaxBackups int `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`

	// 按大小轮换: 保留天数
	MaxAge int `mapstructure:"max_age" json:"max_age" yaml:"max_age"`

	// 是否压缩旧日志
	Compress bool `mapstructure:"compress" json:"compress" yaml:"compress"`

	// 按时间轮换: 轮换间隔，如 "24h"
	RotationTime string `mapstructure:"rotation_time" json:"rotation_time" yaml:"rotation_time"`

	// 按时间轮换: 保留时长，如 "168h"
	MaxAgeTime string `mapstructure:"max_age_time" json:"max_age_time" yaml:"max_age_time"`
}

// DefaultConfig 返回默认日志配置
func DefaultConfig() *Config {
	return &Config{
		Level:         InfoLevel,
		Format:        JSONFormat,
		EnableConsole: true,
		EnableFile:    false,
		OutputPath:    "logs/lowband.log",
		Rotation: RotationConfig{
			Type:       RotationBySize,
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     7,
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	switch c.Level {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
	default:
		return fmt.Errorf("logger: invalid level %q", c.Level)
	}
	if c.EnableFile && c.OutputPath == "" {
		return fmt.Errorf("logger: output_path required when file output enabled")
	}
	return nil
}
