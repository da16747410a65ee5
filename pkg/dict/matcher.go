package dict

import (
	"fmt"
	"net/url"
	"strings"
)

// Matcher 在固定版本的路径字典上做模板匹配与重写
type Matcher struct {
	table   *PathTable
	version int
}

// NewMatcher 创建匹配器，version 静默收敛到已知范围
func NewMatcher(table *PathTable, version int) *Matcher {
	return &Matcher{table: table, version: table.clamp(version)}
}

// Map 将具体路径重写为 /<符号>/<参数1>/<参数2>/... 的紧凑形式
// 按字典顺序尝试每个模板，首个匹配生效。捕获的参数先做百分号解码，
// 其中的字面 '/' 再编码为 %2F，避免替换后被误认为路径分隔符。
// 无模板匹配时原样返回路径，matched 为 false。
func (m *Matcher) Map(path string) (mapped string, matched bool) {
	for _, ct := range m.table.templates[m.version] {
		groups := ct.re.FindStringSubmatch(path)
		if groups == nil {
			continue
		}

		var b strings.Builder
		b.WriteString("/")
		b.WriteString(ct.symbol)
		for _, g := range groups[1:] {
			decoded, err := url.PathUnescape(g)
			if err != nil {
				// 非法转义序列按原文处理
				decoded = g
			}
			b.WriteString("/")
			b.WriteString(strings.ReplaceAll(decoded, "/", "%2F"))
		}
		return b.String(), true
	}
	return path, false
}

// Expand 用符号键和参数重建完整路径
// 参数按模板占位符的声明顺序代入。
func (m *Matcher) Expand(symbol string, params ...string) (string, error) {
	ct, ok := m.table.bySymbol[m.version][symbol]
	if !ok {
		return "", fmt.Errorf("dict: unknown path symbol %q", symbol)
	}
	if len(params) != len(ct.params) {
		return "", fmt.Errorf("dict: symbol %q expects %d params, got %d", symbol, len(ct.params), len(params))
	}

	path := ct.template
	for i, name := range ct.params {
		path = strings.Replace(path, "{"+name+"}", params[i], 1)
	}
	return path, nil
}

// Lookup 返回符号键对应的模板及其参数名
func (m *Matcher) Lookup(symbol string) (template string, params []string, ok bool) {
	ct, found := m.table.bySymbol[m.version][symbol]
	if !found {
		return "", nil, false
	}
	return ct.template, ct.params, true
}
