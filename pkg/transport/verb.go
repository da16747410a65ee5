package transport

import "github.com/cockroachdb/errors"

// Verb 紧凑信道支持的请求动词，封闭枚举
type Verb uint8

const (
	VerbGet Verb = iota + 1
	VerbPost
	VerbPut
	VerbDelete
)

// ParseVerb 将 HTTP 方法名映射为传输动词
// 未知方法名在任何 I/O 之前直接失败，不重试。
func ParseVerb(method string) (Verb, error) {
	switch method {
	case "GET":
		return VerbGet, nil
	case "POST":
		return VerbPost, nil
	case "PUT":
		return VerbPut, nil
	case "DELETE":
		return VerbDelete, nil
	default:
		return 0, errors.Wrapf(ErrUnknownVerb, "%q", method)
	}
}

// String 返回动词的 HTTP 方法名
func (v Verb) String() string {
	switch v {
	case VerbGet:
		return "GET"
	case VerbPost:
		return "POST"
	case VerbPut:
		return "PUT"
	case VerbDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Code 返回动词的线上编码
func (v Verb) Code() uint8 {
	return uint8(v)
}
