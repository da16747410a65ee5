// Package serializer 提供紧凑信道使用的 msgpack 编解码。
//
// 对端约定使用定长 map 的规范二进制编码，map 键可以是整数或字符串，
// 因此解码使用 map[interface{}]interface{} 作为通用 map 类型。
package serializer

import (
	"bytes"
	"io"
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/lk2023060901/lowband/pkg/pool/bytebuff"
)

// wireHandle 是线上帧的编解码配置
// RawToString=true 保证字符串不会以 []byte 形式出现
// SignedInteger=true 保证整数键统一解码为 int64
var wireHandle = &codec.MsgpackHandle{}

func init() {
	wireHandle.MapType = reflect.TypeOf(map[interface{}]interface{}{})
	wireHandle.RawToString = true
	wireHandle.SignedInteger = true
}

// Encode 使用 msgpack 编码数据
func Encode(v interface{}) ([]byte, error) {
	buf := bytebuff.Get()
	defer bytebuff.Put(buf)

	enc := codec.NewEncoder(buf, wireHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	// 复制数据，因为 buf 会被回收复用
	result := make([]byte, buf.Len())
	copy(result, buf.B)
	return result, nil
}

// Decode 使用 msgpack 解码数据
func Decode(data []byte, v interface{}) error {
	dec := codec.NewDecoder(bytes.NewReader(data), wireHandle)
	return dec.Decode(v)
}

// NewEncoder 创建一个新的 msgpack 编码器
func NewEncoder(w io.Writer) *codec.Encoder {
	return codec.NewEncoder(w, wireHandle)
}

// NewDecoder 创建一个新的 msgpack 解码器
func NewDecoder(r io.Reader) *codec.Decoder {
	return codec.NewDecoder(r, wireHandle)
}
