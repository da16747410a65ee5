// Package codec 提供紧凑对象编码：在 msgpack 序列化之上叠加键压缩，
// 把字典内的字符串键替换为小整数编码以减小报文体积。
package codec

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/lowband/pkg/dict"
	"github.com/lk2023060901/lowband/pkg/serializer"
)

var (
	// ErrInvalidFrame 解码结果不是单个顶层 map
	ErrInvalidFrame = errors.New("codec: payload is not a single top-level map")
)

// Codec 绑定了字典版本的紧凑对象编解码器
// 构造后只读，可并发使用。
type Codec struct {
	forward map[string]int64
	inverse map[int64]string
	version int
}

// New 创建绑定 table 指定版本的编解码器
func New(table *dict.KeyTable, version int) *Codec {
	return &Codec{
		forward: table.ForwardMap(version),
		inverse: table.InverseMap(version),
		version: version,
	}
}

// Version 返回绑定的字典版本
func (c *Codec) Version() int {
	return c.version
}

// Encode 压缩键并序列化
func (c *Codec) Encode(v map[string]interface{}) ([]byte, error) {
	return Encode(v, c.forward)
}

// Decode 反序列化并还原键
func (c *Codec) Decode(data []byte) (map[string]interface{}, error) {
	return Decode(data, c.inverse)
}

// Encode 用正向映射压缩 v 的键后做 msgpack 序列化
//
// 替换在每一层 map 上独立进行，包括列表里嵌套的 map。若某个 map 同时
// 含有目标编码的字面键（十进制字符串形式），则保留原字符串键不替换，
// 避免两个键折叠成一个。
func Encode(v map[string]interface{}, forward map[string]int64) ([]byte, error) {
	data, err := serializer.Encode(compressMap(v, forward))
	if err != nil {
		return nil, errors.Wrap(err, "codec: encode failed")
	}
	return data, nil
}

// Decode 反序列化 data 并用反向映射还原键
//
// 顶层必须恰好是一个 map，否则返回 ErrInvalidFrame。整数键若存在于
// 反向映射且不会与同层字面键冲突，则还原为字符串键；标量统一归一化，
// 可精确表示为整数的浮点值转为 int64。
func Decode(data []byte, inverse map[int64]string) (map[string]interface{}, error) {
	var raw interface{}
	if err := serializer.Decode(data, &raw); err != nil {
		return nil, errors.Wrap(err, "codec: decode failed")
	}

	m, ok := raw.(map[interface{}]interface{})
	if !ok {
		return nil, ErrInvalidFrame
	}
	return expandMap(m, inverse), nil
}

// compressValue 递归压缩嵌套结构里的 map 键
func compressValue(v interface{}, forward map[string]int64) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return compressMap(t, forward)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = compressValue(e, forward)
		}
		return out
	default:
		return v
	}
}

// compressMap 压缩单层 map 的键
func compressMap(m map[string]interface{}, forward map[string]int64) map[interface{}]interface{} {
	out := make(map[interface{}]interface{}, len(m))
	for k, v := range m {
		cv := compressValue(v, forward)

		code, ok := forward[k]
		if ok {
			// 同层已有编码的字面键时保留原键
			if _, taken := m[strconv.FormatInt(code, 10)]; !taken {
				out[code] = cv
				continue
			}
		}
		out[k] = cv
	}
	return out
}

// expandValue 递归还原嵌套结构里的 map 键并归一化标量
func expandValue(v interface{}, inverse map[int64]string) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		return expandMap(t, inverse)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = expandValue(e, inverse)
		}
		return out
	default:
		return normalizeScalar(v)
	}
}

// expandMap 还原单层 map 的键
func expandMap(m map[interface{}]interface{}, inverse map[int64]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[expandKey(k, m, inverse)] = expandValue(v, inverse)
	}
	return out
}

// expandKey 还原单个键
// 整数键还原为字典里的字符串；同层已有该字符串的字面键时按十进制
// 字符串保留，与编码侧的冲突规则对称。
func expandKey(k interface{}, m map[interface{}]interface{}, inverse map[int64]string) string {
	switch key := k.(type) {
	case string:
		return key
	case int64:
		if name, ok := inverse[key]; ok {
			if _, taken := m[name]; !taken {
				return name
			}
		}
		return strconv.FormatInt(key, 10)
	case uint64:
		return expandKey(int64(key), m, inverse)
	case int:
		return expandKey(int64(key), m, inverse)
	default:
		return fmt.Sprint(key)
	}
}

// maxExactInt 是 float64 能精确表示整数的上界 (2^53)
const maxExactInt = float64(1 << 53)

// normalizeScalar 归一化数值标量
// 线上编码可能区分 1.0 和 1，逻辑模型不区分：可精确表示为整数的
// 浮点值统一转为 int64，各宽度整数也统一为 int64。
func normalizeScalar(v interface{}) interface{} {
	switch n := v.(type) {
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < maxExactInt {
			return int64(n)
		}
		return n
	case float32:
		return normalizeScalar(float64(n))
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return normalizeScalar(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
		return n
	default:
		return v
	}
}
