// Package transport 实现低带宽传输适配器。
//
// 适配器把同样的逻辑请求在紧凑信道（数据报协议 + 紧凑对象编码）上
// 重新编码发送，并在紧凑路径不可用、报文过大或不可靠时自动退回
// 标准 HTTP+JSON 信道。降级状态在适配器实例生命周期内单调：一旦
// 放弃紧凑信道就不再自动恢复。
package transport

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"

	"github.com/lk2023060901/lowband/pkg/codec"
	"github.com/lk2023060901/lowband/pkg/config"
	"github.com/lk2023060901/lowband/pkg/dict"
	"github.com/lk2023060901/lowband/pkg/logger"
)

// 请求信道标签值
const (
	channelCompact  = "compact"
	channelFallback = "fallback"
)

// Adapter 低带宽传输适配器
// 每个服务端连接配置创建一个实例，与该连接同生命周期。
// 会话状态由互斥锁保护，可并发调用 DoRequest。
type Adapter struct {
	config    *Config
	codec     *codec.Codec
	matcher   *dict.Matcher
	exchanger Exchanger
	fallback  Fallback
	logger    logger.Logger
	metrics   *Metrics

	// 会话/降级状态
	mu           sync.Mutex
	firstMessage bool
	failures     int
	accessToken  string
	abandoned    atomic.Bool
}

// New 创建传输适配器
// exchanger 是紧凑信道，fallback 是始终可用的标准信道。
func New(cfg *Config, exchanger Exchanger, fallback Fallback, opts ...AdapterOption) (*Adapter, error) {
	mergedCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge transport config: %w", err)
	}
	if err := mergedCfg.Validate(); err != nil {
		return nil, err
	}
	if exchanger == nil {
		return nil, errors.New("transport: exchanger is required")
	}
	if fallback == nil {
		return nil, errors.New("transport: fallback is required")
	}

	a := &Adapter{
		config:       mergedCfg,
		exchanger:    exchanger,
		fallback:     fallback,
		logger:       logger.NewNoop(),
		firstMessage: true,
		accessToken:  mergedCfg.AccessToken,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.codec == nil {
		a.codec = codec.New(dict.DefaultKeyTable(), mergedCfg.CodecVersion)
	}
	if a.matcher == nil {
		a.matcher = dict.NewMatcher(dict.DefaultPathTable(), mergedCfg.ProtocolVersion)
	}
	a.logger = a.logger.Named("transport")

	return a, nil
}

// DoRequest 发出一个逻辑请求
// method 为 GET/POST/PUT/DELETE 之一，url 为绝对 URL，body 可为 nil。
// 成功返回解码后的响应体；失败返回 ErrUnknownVerb、ErrConnectionTimeout、
// *ProtocolError 或 *TransportFailure。
func (a *Adapter) DoRequest(ctx context.Context, method, rawurl string, body map[string]interface{}) (map[string]interface{}, error) {
	if a.abandoned.Load() {
		a.metrics.observeDegradation(reasonAbandoned)
		return a.sendFallback(ctx, method, rawurl, body)
	}

	verb, err := ParseVerb(method)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, errors.Wrap(err, "transport: invalid url")
	}

	msg, err := a.buildMessage(verb, u, body)
	if err != nil {
		if errors.Is(err, errOversizedPayload) {
			// 结构性限制，不计入可靠性失败
			a.logger.Debug("payload oversized, using fallback", "path", u.Path)
			a.metrics.observeDegradation(reasonOversize)
			return a.sendFallback(ctx, method, rawurl, body)
		}
		return nil, err
	}

	a.metrics.observeRequest(channelCompact)
	resp, xerr := a.exchanger.Exchange(ctx, msg)
	if xerr != nil {
		// 信道硬故障：永久放弃紧凑信道
		a.abandon()
		a.logger.Warn("compact channel failed, abandoning", "error", xerr)
		a.metrics.observeDegradation(reasonException)
		return a.sendFallback(ctx, method, rawurl, body)
	}

	if resp.Empty() {
		n := a.recordFailure()
		if n > a.config.FailureThreshold {
			a.abandon()
			a.logger.Warn("compact channel unresponsive, abandoning", "consecutive_failures", n)
			a.metrics.observeDegradation(reasonTimeout)
			return a.sendFallback(ctx, method, rawurl, body)
		}
		return nil, ErrConnectionTimeout
	}

	// 有明确回应即重置连续失败计数
	a.resetFailures()
	return a.finishCompact(resp)
}

// SetAccessToken 更新访问令牌
// 新令牌会在下一条紧凑消息上重新通告。
func (a *Adapter) SetAccessToken(token string) {
	a.mu.Lock()
	a.accessToken = token
	a.firstMessage = true
	a.mu.Unlock()
}

// Abandoned 报告紧凑信道是否已被永久放弃
func (a *Adapter) Abandoned() bool {
	return a.abandoned.Load()
}

// buildMessage 构造紧凑信道消息
func (a *Adapter) buildMessage(verb Verb, u *url.URL, body map[string]interface{}) (*Message, error) {
	msg := &Message{Verb: verb}

	mapped, matched := a.matcher.Map(u.Path)
	if !matched {
		// 字典未覆盖的端点原样透传
		a.logger.Debug("no path template matched, passing through", "path", u.Path)
	}
	msg.Path = mapped

	// 查询参数原文逐条复制
	if u.RawQuery != "" {
		for _, q := range strings.Split(u.RawQuery, "&") {
			msg.AddOption(OptionURIQuery, []byte(q))
		}
	}

	if body != nil {
		payload, err := a.codec.Encode(body)
		if err != nil {
			return nil, err
		}
		if len(payload) > a.config.MaxMessageSize {
			return nil, errOversizedPayload
		}
		msg.Payload = payload

		var cf [2]byte
		binary.BigEndian.PutUint16(cf[:], ContentFormatCompact)
		msg.AddOption(OptionContentFormat, cf[:])
	}

	// 会话首条消息携带令牌与编码版本，对端须缓存；之后不再重发
	if token, first := a.takeFirstMessage(); first {
		if token != "" {
			msg.AddOption(OptionAccessToken, []byte(token))
		}
		msg.AddOption(OptionCodecVersion, binary.AppendUvarint(nil, uint64(a.codec.Version())))
	}

	return msg, nil
}

// finishCompact 解码并分类紧凑信道的明确回应
func (a *Adapter) finishCompact(resp *Response) (map[string]interface{}, error) {
	var decoded map[string]interface{}
	var decodeErr error
	if len(resp.Payload) > 0 {
		decoded, decodeErr = a.codec.Decode(resp.Payload)
	}
	return classify(resp.Status, decoded, decodeErr, resp.Payload)
}

// sendFallback 本次请求改走标准信道
func (a *Adapter) sendFallback(ctx context.Context, method, rawurl string, body map[string]interface{}) (map[string]interface{}, error) {
	a.metrics.observeRequest(channelFallback)

	resp, err := a.fallback.SendRaw(ctx, method, rawurl, body, a.authenticated())
	if err != nil {
		return nil, errors.Wrap(err, "transport: fallback request failed")
	}

	var decoded map[string]interface{}
	var decodeErr error
	if len(resp.Body) > 0 {
		decodeErr = json.Unmarshal(resp.Body, &decoded)
	}
	return classify(resp.Status, decoded, decodeErr, resp.Body)
}

// classify 按状态码把响应归一化为结果或错误
// 两条信道共用同一分类，调用方看到的形状一致。
func classify(status int, decoded map[string]interface{}, decodeErr error, raw []byte) (map[string]interface{}, error) {
	switch {
	case status >= 500:
		return nil, &TransportFailure{Status: status, Detail: diagnosticText(decoded, decodeErr, raw)}
	case status >= 400:
		if decodeErr != nil || decoded == nil {
			return nil, &TransportFailure{Status: status, Detail: string(raw)}
		}
		return nil, newProtocolError(status, decoded)
	default:
		if decodeErr != nil {
			return nil, &TransportFailure{Status: status, Detail: string(raw)}
		}
		if decoded == nil {
			decoded = map[string]interface{}{}
		}
		return decoded, nil
	}
}

// diagnosticText 提取尽力而为的诊断文本
func diagnosticText(decoded map[string]interface{}, decodeErr error, raw []byte) string {
	if decodeErr == nil && decoded != nil {
		if msg, ok := decoded["error"].(string); ok {
			return msg
		}
		return fmt.Sprintf("%v", decoded)
	}
	return string(raw)
}

// takeFirstMessage 取走首条消息标记
// 返回 true 时本条消息携带令牌与编码版本。
func (a *Adapter) takeFirstMessage() (token string, first bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.firstMessage {
		return "", false
	}
	a.firstMessage = false
	return a.accessToken, true
}

// authenticated 报告当前是否持有访问令牌
func (a *Adapter) authenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accessToken != ""
}

// recordFailure 累计一次不确定结果，返回当前连续失败数
func (a *Adapter) recordFailure() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures++
	return a.failures
}

// resetFailures 收到明确回应后清零连续失败计数
func (a *Adapter) resetFailures() {
	a.mu.Lock()
	a.failures = 0
	a.mu.Unlock()
}

// abandon 永久放弃紧凑信道
func (a *Adapter) abandon() {
	a.abandoned.Store(true)
	a.metrics.markAbandoned()
}
