package transport

import (
	"github.com/lk2023060901/lowband/pkg/codec"
	"github.com/lk2023060901/lowband/pkg/dict"
	"github.com/lk2023060901/lowband/pkg/logger"
)

// AdapterOption 适配器可选配置
type AdapterOption func(*Adapter)

// WithLogger 设置日志记录器
func WithLogger(l logger.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics 设置运行指标
func WithMetrics(m *Metrics) AdapterOption {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// WithKeyTable 使用自定义键字典
// 版本仍取配置中的 CodecVersion。
func WithKeyTable(table *dict.KeyTable) AdapterOption {
	return func(a *Adapter) {
		a.codec = codec.New(table, a.config.CodecVersion)
	}
}

// WithPathTable 使用自定义路径字典
// 版本仍取配置中的 ProtocolVersion。
func WithPathTable(table *dict.PathTable) AdapterOption {
	return func(a *Adapter) {
		a.matcher = dict.NewMatcher(table, a.config.ProtocolVersion)
	}
}
