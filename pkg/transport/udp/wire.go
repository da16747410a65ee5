package udp

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/lk2023060901/lowband/pkg/pool/bytebuff"
	"github.com/lk2023060901/lowband/pkg/transport"
)

// 帧布局
//
// 请求:  [0] 动词编码 (1..4)
//        [1:3] 消息 id (大端)
//        [3] 选项条数
//        选项 * N: uvarint 编号 + uvarint 长度 + 值
//        其余字节为负载
//
// 响应:  [0] 0x80
//        [1:3] 消息 id (大端)
//        [3:5] 状态码 (大端)
//        其余字节为负载

// frameResponse 响应帧的标记字节
const frameResponse = 0x80

var (
	ErrFrameTooShort = errors.New("udp: frame too short")
	ErrNotResponse   = errors.New("udp: not a response frame")
)

// encodeFrame 将消息封装为请求帧
// 路径作为首个选项写入，其余选项保持消息中的顺序。
func encodeFrame(msg *transport.Message, id uint16) []byte {
	buf := bytebuff.Get()
	defer bytebuff.Put(buf)

	_ = buf.WriteByte(msg.Verb.Code())

	var id16 [2]byte
	binary.BigEndian.PutUint16(id16[:], id)
	_, _ = buf.Write(id16[:])

	_ = buf.WriteByte(byte(1 + len(msg.Options)))
	writeOption(buf, transport.OptionURIPath, []byte(msg.Path))
	for _, opt := range msg.Options {
		writeOption(buf, opt.Code, opt.Value)
	}

	if len(msg.Payload) > 0 {
		_, _ = buf.Write(msg.Payload)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out
}

// writeOption 写入一条选项
func writeOption(buf *bytebufferpool.ByteBuffer, code uint16, value []byte) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(code))
	_, _ = buf.Write(tmp[:n])
	n = binary.PutUvarint(tmp[:], uint64(len(value)))
	_, _ = buf.Write(tmp[:n])
	_, _ = buf.Write(value)
}

// decodeResponse 解析响应帧
func decodeResponse(data []byte) (id uint16, resp *transport.Response, err error) {
	if len(data) < 5 {
		return 0, nil, ErrFrameTooShort
	}
	if data[0] != frameResponse {
		return 0, nil, ErrNotResponse
	}

	id = binary.BigEndian.Uint16(data[1:3])
	status := int(binary.BigEndian.Uint16(data[3:5]))

	var payload []byte
	if len(data) > 5 {
		payload = make([]byte, len(data)-5)
		copy(payload, data[5:])
	}
	return id, &transport.Response{Status: status, Payload: payload}, nil
}

// decodeRequest 解析请求帧，对端实现与测试使用
func decodeRequest(data []byte) (id uint16, msg *transport.Message, err error) {
	if len(data) < 4 {
		return 0, nil, ErrFrameTooShort
	}

	verb := transport.Verb(data[0])
	id = binary.BigEndian.Uint16(data[1:3])
	count := int(data[3])

	msg = &transport.Message{Verb: verb}
	rest := data[4:]
	for i := 0; i < count; i++ {
		code, n := binary.Uvarint(rest)
		if n <= 0 {
			return 0, nil, ErrFrameTooShort
		}
		rest = rest[n:]

		length, n := binary.Uvarint(rest)
		if n <= 0 || uint64(len(rest)-n) < length {
			return 0, nil, ErrFrameTooShort
		}
		rest = rest[n:]

		value := make([]byte, length)
		copy(value, rest[:length])
		rest = rest[length:]

		if uint16(code) == transport.OptionURIPath {
			msg.Path = string(value)
			continue
		}
		msg.AddOption(uint16(code), value)
	}

	if len(rest) > 0 {
		msg.Payload = make([]byte, len(rest))
		copy(msg.Payload, rest)
	}
	return id, msg, nil
}

// encodeResponse 封装响应帧，对端实现与测试使用
func encodeResponse(id uint16, resp *transport.Response) []byte {
	out := make([]byte, 5+len(resp.Payload))
	out[0] = frameResponse
	binary.BigEndian.PutUint16(out[1:3], id)
	binary.BigEndian.PutUint16(out[3:5], uint16(resp.Status))
	copy(out[5:], resp.Payload)
	return out
}
