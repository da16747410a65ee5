// Package udp 实现紧凑信道的数据报交换器。
//
// 每次交换发送一个请求帧并以消息 id 关联响应；超时不是错误，
// 返回空 Response 交由上层按不确定结果分类。套接字层面的
// 硬故障以错误返回，上层据此永久放弃紧凑信道。
package udp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"

	"github.com/lk2023060901/lowband/pkg/config"
	"github.com/lk2023060901/lowband/pkg/logger"
	"github.com/lk2023060901/lowband/pkg/transport"
)

var (
	ErrClientClosed = errors.New("udp: client closed")
)

// 确保 Client 实现了 Exchanger 接口
var _ transport.Exchanger = (*Client)(nil)

// Client 数据报交换器
type Client struct {
	config *Config
	logger logger.Logger
	nextID atomic.Uint32

	// 单请求在途；互斥保证响应不会被并发调用窃取
	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool
}

// ClientOption 交换器可选配置
type ClientOption func(*Client)

// WithLogger 设置日志记录器
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New 创建数据报交换器，连接按需建立
func New(cfg *Config, opts ...ClientOption) (*Client, error) {
	mergedCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge udp config: %w", err)
	}
	if err := mergedCfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: mergedCfg,
		logger: logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("transport.udp")
	return c, nil
}

// Exchange 发送消息并等待对应的响应
// 读超时返回空 Response；其余网络错误原样返回。
func (c *Client) Exchange(ctx context.Context, msg *transport.Message) (*transport.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if err := c.ensureConn(); err != nil {
		return nil, err
	}

	id := uint16(c.nextID.Inc())
	frame := encodeFrame(msg, id)

	deadline := time.Now().Add(c.config.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if _, err := c.conn.Write(frame); err != nil {
		return nil, errors.Wrap(err, "udp: send failed")
	}

	buf := make([]byte, c.config.MaxPacketSize)
	for {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, errors.Wrap(err, "udp: set deadline failed")
		}

		n, err := c.conn.Read(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				// 超时按空响应处理，由上层累计失败
				return &transport.Response{}, nil
			}
			return nil, errors.Wrap(err, "udp: recv failed")
		}

		respID, resp, derr := decodeResponse(buf[:n])
		if derr != nil {
			c.logger.Debug("dropping malformed datagram", "error", derr)
			continue
		}
		if respID != id {
			// 迟到的历史响应，丢弃继续等待
			c.logger.Debug("dropping stale response", "id", respID, "want", id)
			continue
		}
		return resp, nil
	}
}

// ensureConn 按需建立连接，调用方须持有锁
func (c *Client) ensureConn() error {
	if c.conn != nil {
		return nil
	}

	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", c.config.Host, c.config.Port))
	if err != nil {
		return errors.Wrap(err, "udp: resolve failed")
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return errors.Wrap(err, "udp: dial failed")
	}

	c.conn = conn
	c.logger.Debug("compact channel connected", "addr", addr.String())
	return nil
}

// Close 关闭交换器
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
