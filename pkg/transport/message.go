package transport

import "context"

// 传输层选项编号
// 15 以下沿用数据报协议的公共选项语义，2048 以上为私有选项。
const (
	// OptionURIPath 请求路径，由交换器封帧时写入
	OptionURIPath uint16 = 11
	// OptionContentFormat 负载的媒体类型标识
	OptionContentFormat uint16 = 12
	// OptionURIQuery 一条查询参数，原文 "key=value"
	OptionURIQuery uint16 = 15
	// OptionAccessToken 访问令牌，仅会话首条消息携带
	OptionAccessToken uint16 = 2053
	// OptionCodecVersion 对象编码的字典版本，仅会话首条消息携带
	OptionCodecVersion uint16 = 2055
)

// ContentFormatCompact 紧凑对象编码的媒体类型标识
const ContentFormatCompact uint16 = 1664

// Option 一条传输层选项
type Option struct {
	Code  uint16
	Value []byte
}

// Message 紧凑信道的请求消息，按请求构造，发送后即丢弃
type Message struct {
	Verb    Verb
	Path    string
	Options []Option // 有序
	Payload []byte
}

// AddOption 追加一条选项，保持追加顺序
func (m *Message) AddOption(code uint16, value []byte) {
	m.Options = append(m.Options, Option{Code: code, Value: value})
}

// Response 紧凑信道的响应
// Status 为 0 表示无回应（超时或空响应），按不确定结果处理。
type Response struct {
	Status  int
	Payload []byte
}

// Empty 判断是否为不确定结果
func (r *Response) Empty() bool {
	return r == nil || r.Status == 0
}

// Exchanger 紧凑信道的请求/响应交换接口
// 超时返回空 Response 而不是错误；错误仅用于信道本身不可用的硬故障。
type Exchanger interface {
	// Exchange 发送消息并在有限时间内等待响应
	Exchange(ctx context.Context, msg *Message) (*Response, error)
	// Close 关闭信道
	Close() error
}

// FallbackResponse 标准信道的响应
type FallbackResponse struct {
	Status int
	Body   []byte
}

// Fallback 标准 HTTP+JSON 信道的请求接口，降级时使用
type Fallback interface {
	// SendRaw 发送一个标准请求
	// authenticated 为 true 时附加访问令牌。
	SendRaw(ctx context.Context, method, url string, body map[string]interface{}, authenticated bool) (*FallbackResponse, error)
}
