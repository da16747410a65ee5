package transport

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnknownVerb 不支持的请求方法，该次调用直接失败
	ErrUnknownVerb = errors.New("transport: unknown verb")

	// ErrConnectionTimeout 紧凑信道无回应且未达降级阈值
	// 调用方可自行重试，本层不自动重试。
	ErrConnectionTimeout = errors.New("transport: compact channel timed out")

	// errOversizedPayload 编码后超过最大报文限制，内部信号，
	// 静默走标准信道，不计入可靠性失败。
	errOversizedPayload = errors.New("transport: payload exceeds max message size")
)

// ProtocolError 协议层结构化错误，对应客户端错误段的状态码
// 调用方可依据 Code 分支处理。
type ProtocolError struct {
	Status  int
	Code    string
	Message string
	Body    map[string]interface{}
}

// Error 实现 error 接口
func (e *ProtocolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("transport: protocol error %s (status=%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("transport: protocol error (status=%d)", e.Status)
}

// newProtocolError 从解码后的错误体构造 ProtocolError
func newProtocolError(status int, body map[string]interface{}) *ProtocolError {
	e := &ProtocolError{Status: status, Body: body}
	if c, ok := body["errcode"].(string); ok {
		e.Code = c
	}
	if m, ok := body["error"].(string); ok {
		e.Message = m
	}
	return e
}

// TransportFailure 服务端错误段状态码或无法解码的响应体
// Detail 为尽力而为的诊断文本。
type TransportFailure struct {
	Status int
	Detail string
}

// Error 实现 error 接口
func (e *TransportFailure) Error() string {
	return fmt.Sprintf("transport: request failed (status=%d): %s", e.Status, e.Detail)
}
