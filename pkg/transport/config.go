package transport

import "fmt"

// Config 传输适配器配置
// 字典版本与对端一次协商后固定，适配器实例生命周期内不变。
type Config struct {
	// 路径字典版本
	ProtocolVersion int `mapstructure:"protocol_version" json:"protocol_version" yaml:"protocol_version"`

	// 键字典（对象编码）版本
	CodecVersion int `mapstructure:"codec_version" json:"codec_version" yaml:"codec_version"`

	// 访问令牌，可为空；变更后会在下一条消息重新通告
	AccessToken string `mapstructure:"access_token" json:"access_token" yaml:"access_token"`

	// 编码后负载的最大字节数，超出时该次请求静默走标准信道
	MaxMessageSize int `mapstructure:"max_message_size" json:"max_message_size" yaml:"max_message_size"`

	// 连续无回应次数超过该阈值后放弃紧凑信道
	FailureThreshold int `mapstructure:"failure_threshold" json:"failure_threshold" yaml:"failure_threshold"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		ProtocolVersion:  1,
		CodecVersion:     1,
		MaxMessageSize:   1024,
		FailureThreshold: 2,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.ProtocolVersion < 1 {
		return fmt.Errorf("transport: protocol_version must be >= 1, got %d", c.ProtocolVersion)
	}
	if c.CodecVersion < 1 {
		return fmt.Errorf("transport: codec_version must be >= 1, got %d", c.CodecVersion)
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("transport: max_message_size must be positive, got %d", c.MaxMessageSize)
	}
	if c.FailureThreshold < 1 {
		return fmt.Errorf("transport: failure_threshold must be >= 1, got %d", c.FailureThreshold)
	}
	return nil
}
