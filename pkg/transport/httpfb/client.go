// Package httpfb 实现标准 HTTP+JSON 信道，作为紧凑信道的降级路径。
package httpfb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/lowband/pkg/config"
	"github.com/lk2023060901/lowband/pkg/logger"
	"github.com/lk2023060901/lowband/pkg/transport"
)

var (
	ErrRequestFailed = errors.New("httpfb: request failed")
)

// 确保 Client 实现了 Fallback 接口
var _ transport.Fallback = (*Client)(nil)

// Client 标准信道客户端
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger

	mu    sync.RWMutex
	token string
}

// ClientOption 客户端可选配置
type ClientOption func(*Client)

// WithLogger 设置日志记录器
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New 创建标准信道客户端
func New(cfg *Config, opts ...ClientOption) (*Client, error) {
	mergedCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge httpfb config: %w", err)
	}
	if err := mergedCfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: mergedCfg,
		client: &http.Client{Timeout: mergedCfg.Timeout},
		logger: logger.NewNoop(),
		token:  mergedCfg.AccessToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("transport.httpfb")
	return c, nil
}

// SetAccessToken 更新访问令牌
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// SendRaw 发送一个标准请求
func (c *Client) SendRaw(ctx context.Context, method, url string, body map[string]interface{}, authenticated bool) (*transport.FallbackResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpfb: marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("httpfb: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	if authenticated {
		c.mu.RLock()
		token := c.token
		c.mu.RUnlock()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpfb: read response: %w", err)
	}

	c.logger.Debug("request completed", "method", method, "status", resp.StatusCode)
	return &transport.FallbackResponse{Status: resp.StatusCode, Body: respBody}, nil
}
