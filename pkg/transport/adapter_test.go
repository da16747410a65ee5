package transport

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/lowband/pkg/codec"
	"github.com/lk2023060901/lowband/pkg/dict"
)

// exchangeStep 脚本化的一次交换结果
type exchangeStep struct {
	resp *Response
	err  error
}

// fakeExchanger 按脚本逐次返回结果并记录消息
type fakeExchanger struct {
	steps []exchangeStep
	calls []*Message
}

func (f *fakeExchanger) Exchange(_ context.Context, msg *Message) (*Response, error) {
	f.calls = append(f.calls, msg)
	if len(f.steps) == 0 {
		return &Response{Status: 200}, nil
	}
	step := f.steps[0]
	if len(f.steps) > 1 {
		f.steps = f.steps[1:]
	}
	return step.resp, step.err
}

func (f *fakeExchanger) Close() error { return nil }

// fakeFallback 记录调用并返回固定响应
type fakeFallback struct {
	status int
	body   []byte
	calls  int
	auth   []bool
}

func (f *fakeFallback) SendRaw(_ context.Context, method, url string, body map[string]interface{}, authenticated bool) (*FallbackResponse, error) {
	f.calls++
	f.auth = append(f.auth, authenticated)
	status := f.status
	if status == 0 {
		status = 200
	}
	respBody := f.body
	if respBody == nil {
		respBody = []byte(`{}`)
	}
	return &FallbackResponse{Status: status, Body: respBody}, nil
}

// encodeBody 用内置 v1 字典编码测试负载
func encodeBody(t *testing.T, v map[string]interface{}) []byte {
	t.Helper()
	data, err := codec.Encode(v, dict.DefaultKeyTable().ForwardMap(1))
	require.NoError(t, err)
	return data
}

func newTestAdapter(t *testing.T, cfg *Config, ex Exchanger, fb Fallback) *Adapter {
	t.Helper()
	a, err := New(cfg, ex, fb)
	require.NoError(t, err)
	return a
}

func TestDoRequestSuccess(t *testing.T) {
	ex := &fakeExchanger{steps: []exchangeStep{{
		resp: &Response{Status: 200, Payload: encodeBody(t, map[string]interface{}{"next_batch": "s72"})},
	}}}
	fb := &fakeFallback{}
	a := newTestAdapter(t, &Config{AccessToken: "syt_abc"}, ex, fb)

	result, err := a.DoRequest(context.Background(), "GET", "http://hs.example.com:8008/_matrix/client/r0/sync?timeout=30000&since=s71", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"next_batch": "s72"}, result)
	assert.Equal(t, 0, fb.calls)

	require.Len(t, ex.calls, 1)
	msg := ex.calls[0]
	assert.Equal(t, VerbGet, msg.Verb)
	assert.Equal(t, "/S", msg.Path, "path must be rewritten via the dictionary")

	// 查询参数原文按序复制
	queries := optionValues(msg, OptionURIQuery)
	assert.Equal(t, [][]byte{[]byte("timeout=30000"), []byte("since=s71")}, queries)
}

func TestDoRequestPostBody(t *testing.T) {
	ex := &fakeExchanger{steps: []exchangeStep{{
		resp: &Response{Status: 200, Payload: encodeBody(t, map[string]interface{}{"event_id": "$e1"})},
	}}}
	a := newTestAdapter(t, nil, ex, &fakeFallback{})

	result, err := a.DoRequest(context.Background(), "PUT",
		"http://hs.example.com:8008/_matrix/client/r0/rooms/!r:hs/send/m.room.message/txn1",
		map[string]interface{}{"body": "hi", "msgtype": "m.text"})
	require.NoError(t, err)
	assert.Equal(t, "$e1", result["event_id"])

	msg := ex.calls[0]
	assert.Equal(t, "/R/!r:hs/m.room.message/txn1", msg.Path)
	assert.NotEmpty(t, msg.Payload)
	assert.Len(t, optionValues(msg, OptionContentFormat), 1)

	// 负载确实做了键压缩
	decoded, err := codec.Decode(msg.Payload, dict.DefaultKeyTable().InverseMap(1))
	require.NoError(t, err)
	assert.Equal(t, "hi", decoded["body"])
}

func TestUnknownVerbRejected(t *testing.T) {
	ex := &fakeExchanger{}
	a := newTestAdapter(t, nil, ex, &fakeFallback{})

	_, err := a.DoRequest(context.Background(), "PATCH", "http://hs/_matrix/client/r0/sync", nil)
	assert.ErrorIs(t, err, ErrUnknownVerb)
	assert.Empty(t, ex.calls, "no I/O before verb validation")
}

func TestFailureAccumulation(t *testing.T) {
	ex := &fakeExchanger{steps: []exchangeStep{{resp: &Response{}}}}
	fb := &fakeFallback{}
	a := newTestAdapter(t, nil, ex, fb)

	ctx := context.Background()
	url := "http://hs:8008/_matrix/client/r0/sync"

	// 前两次无回应：向调用方暴露超时，不降级
	_, err := a.DoRequest(ctx, "GET", url, nil)
	assert.ErrorIs(t, err, ErrConnectionTimeout)
	_, err = a.DoRequest(ctx, "GET", url, nil)
	assert.ErrorIs(t, err, ErrConnectionTimeout)
	assert.Equal(t, 0, fb.calls)
	assert.False(t, a.Abandoned())

	// 第三次连续无回应：本次走标准信道，不再报超时
	result, err := a.DoRequest(ctx, "GET", url, nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 1, fb.calls)
	assert.True(t, a.Abandoned())

	// 之后所有请求都直接走标准信道
	before := len(ex.calls)
	_, err = a.DoRequest(ctx, "GET", url, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, fb.calls)
	assert.Len(t, ex.calls, before)
}

func TestConclusiveResponseResetsFailures(t *testing.T) {
	ex := &fakeExchanger{steps: []exchangeStep{
		{resp: &Response{}},
		{resp: &Response{}},
		{resp: &Response{Status: 200, Payload: encodeBody(t, map[string]interface{}{})}},
		{resp: &Response{}},
		{resp: &Response{}},
	}}
	a := newTestAdapter(t, nil, ex, &fakeFallback{})

	ctx := context.Background()
	url := "http://hs:8008/_matrix/client/r0/sync"

	_, err := a.DoRequest(ctx, "GET", url, nil)
	assert.ErrorIs(t, err, ErrConnectionTimeout)
	_, err = a.DoRequest(ctx, "GET", url, nil)
	assert.ErrorIs(t, err, ErrConnectionTimeout)

	// 明确回应清零计数
	_, err = a.DoRequest(ctx, "GET", url, nil)
	require.NoError(t, err)

	// 计数重新开始累计
	_, err = a.DoRequest(ctx, "GET", url, nil)
	assert.ErrorIs(t, err, ErrConnectionTimeout)
	_, err = a.DoRequest(ctx, "GET", url, nil)
	assert.ErrorIs(t, err, ErrConnectionTimeout)
	assert.False(t, a.Abandoned())
}

func TestAbandonOnHardFailure(t *testing.T) {
	ex := &fakeExchanger{steps: []exchangeStep{{err: assert.AnError}}}
	fb := &fakeFallback{}
	a := newTestAdapter(t, nil, ex, fb)

	ctx := context.Background()
	url := "http://hs:8008/_matrix/client/r0/sync"

	result, err := a.DoRequest(ctx, "GET", url, nil)
	require.NoError(t, err, "hard failure delegates to fallback")
	assert.NotNil(t, result)
	assert.True(t, a.Abandoned())
	assert.Equal(t, 1, fb.calls)

	// 即使紧凑信道之后恢复也不再使用
	_, _ = a.DoRequest(ctx, "GET", url, nil)
	_, _ = a.DoRequest(ctx, "GET", url, nil)
	assert.Equal(t, 3, fb.calls)
	assert.Len(t, ex.calls, 1)
}

func TestOversizeBypassesCompactChannel(t *testing.T) {
	ex := &fakeExchanger{}
	fb := &fakeFallback{}
	a := newTestAdapter(t, &Config{MaxMessageSize: 16}, ex, fb)

	big := map[string]interface{}{"body": "a very long message body that cannot fit in sixteen bytes"}
	_, err := a.DoRequest(context.Background(), "POST", "http://hs:8008/_matrix/client/r0/rooms/!r:hs/join", big)
	require.NoError(t, err)

	assert.Empty(t, ex.calls, "oversized payload never reaches the compact path")
	assert.Equal(t, 1, fb.calls)
	assert.False(t, a.Abandoned())

	a.mu.Lock()
	failures := a.failures
	first := a.firstMessage
	a.mu.Unlock()
	assert.Equal(t, 0, failures, "oversize is not a reliability failure")
	assert.True(t, first, "metadata not consumed by an unsent message")
}

func TestFirstMessageMetadata(t *testing.T) {
	ex := &fakeExchanger{}
	a := newTestAdapter(t, &Config{AccessToken: "syt_one"}, ex, &fakeFallback{})

	ctx := context.Background()
	url := "http://hs:8008/_matrix/client/r0/sync"

	_, err := a.DoRequest(ctx, "GET", url, nil)
	require.NoError(t, err)
	_, err = a.DoRequest(ctx, "GET", url, nil)
	require.NoError(t, err)

	require.Len(t, ex.calls, 2)
	assert.Equal(t, [][]byte{[]byte("syt_one")}, optionValues(ex.calls[0], OptionAccessToken))
	assert.Len(t, optionValues(ex.calls[0], OptionCodecVersion), 1)
	assert.Empty(t, optionValues(ex.calls[1], OptionAccessToken), "metadata sent exactly once")
	assert.Empty(t, optionValues(ex.calls[1], OptionCodecVersion))

	// 令牌变更后恰好重新通告一次
	a.SetAccessToken("syt_two")
	_, err = a.DoRequest(ctx, "GET", url, nil)
	require.NoError(t, err)
	_, err = a.DoRequest(ctx, "GET", url, nil)
	require.NoError(t, err)

	assert.Equal(t, [][]byte{[]byte("syt_two")}, optionValues(ex.calls[2], OptionAccessToken))
	assert.Empty(t, optionValues(ex.calls[3], OptionAccessToken))
}

func TestProtocolErrorFromCompactChannel(t *testing.T) {
	body := encodeBody(t, map[string]interface{}{"errcode": "M_FORBIDDEN", "error": "denied"})
	ex := &fakeExchanger{steps: []exchangeStep{{resp: &Response{Status: 403, Payload: body}}}}
	a := newTestAdapter(t, nil, ex, &fakeFallback{})

	_, err := a.DoRequest(context.Background(), "POST", "http://hs:8008/_matrix/client/r0/rooms/!r:hs/join", nil)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 403, perr.Status)
	assert.Equal(t, "M_FORBIDDEN", perr.Code)
	assert.Equal(t, "denied", perr.Message)
}

func TestTransportFailureFromServerError(t *testing.T) {
	body := encodeBody(t, map[string]interface{}{"error": "overloaded"})
	ex := &fakeExchanger{steps: []exchangeStep{{resp: &Response{Status: 502, Payload: body}}}}
	a := newTestAdapter(t, nil, ex, &fakeFallback{})

	_, err := a.DoRequest(context.Background(), "GET", "http://hs:8008/_matrix/client/r0/sync", nil)
	var tf *TransportFailure
	require.ErrorAs(t, err, &tf)
	assert.Equal(t, 502, tf.Status)
	assert.Contains(t, tf.Detail, "overloaded")
}

func TestTransportFailureFromUndecodableBody(t *testing.T) {
	ex := &fakeExchanger{steps: []exchangeStep{{resp: &Response{Status: 200, Payload: []byte("plain text")}}}}
	a := newTestAdapter(t, nil, ex, &fakeFallback{})

	_, err := a.DoRequest(context.Background(), "GET", "http://hs:8008/_matrix/client/r0/sync", nil)
	var tf *TransportFailure
	require.ErrorAs(t, err, &tf)
	assert.Contains(t, tf.Detail, "plain text")
}

func TestFallbackClassification(t *testing.T) {
	ex := &fakeExchanger{steps: []exchangeStep{{err: assert.AnError}}}
	fb := &fakeFallback{status: 404, body: []byte(`{"errcode":"M_NOT_FOUND","error":"missing"}`)}
	a := newTestAdapter(t, nil, ex, fb)

	_, err := a.DoRequest(context.Background(), "GET", "http://hs:8008/_matrix/client/r0/sync", nil)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "M_NOT_FOUND", perr.Code)
}

func TestFallbackAuthenticatedFlag(t *testing.T) {
	ex := &fakeExchanger{steps: []exchangeStep{{err: assert.AnError}}}
	fb := &fakeFallback{}
	a := newTestAdapter(t, &Config{AccessToken: "syt_abc"}, ex, fb)

	_, err := a.DoRequest(context.Background(), "GET", "http://hs:8008/_matrix/client/r0/sync", nil)
	require.NoError(t, err)
	require.Len(t, fb.auth, 1)
	assert.True(t, fb.auth[0])
}

func TestUnmatchedPathPassesThrough(t *testing.T) {
	ex := &fakeExchanger{}
	a := newTestAdapter(t, nil, ex, &fakeFallback{})

	_, err := a.DoRequest(context.Background(), "GET", "http://hs:8008/_matrix/client/r0/capabilities", nil)
	require.NoError(t, err)
	assert.Equal(t, "/_matrix/client/r0/capabilities", ex.calls[0].Path)
}

func TestClassifyFallbackBody(t *testing.T) {
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"chunk":[]}`), &decoded))

	result, err := classify(200, decoded, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, decoded, result)

	_, err = classify(500, nil, nil, []byte("boom"))
	var tf *TransportFailure
	require.ErrorAs(t, err, &tf)
	assert.Equal(t, "boom", tf.Detail)
}

// optionValues 收集消息中指定编号的选项值
func optionValues(msg *Message, code uint16) [][]byte {
	var out [][]byte
	for _, opt := range msg.Options {
		if opt.Code == code {
			out = append(out, opt.Value)
		}
	}
	return out
}
