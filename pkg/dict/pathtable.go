package dict

import (
	"fmt"
	"regexp"
	"strings"
)

// PathEntry 路径模板到符号键的一条映射
// 模板中的 {name} 占位符匹配单个路径段。
type PathEntry struct {
	Template string
	Symbol   string
}

// PathGeneration 路径字典的一代
type PathGeneration struct {
	Version int
	Entries []PathEntry
}

// compiledTemplate 编译后的路径模板
type compiledTemplate struct {
	template string
	symbol   string
	re       *regexp.Regexp
	params   []string
}

// PathTable 版本化的路径字典
// 模板匹配顺序 = 代的插入顺序 + 代内声明顺序，保证首个匹配确定。
// 构造完成后只读。
type PathTable struct {
	maxVersion int
	templates  map[int][]*compiledTemplate
	bySymbol   map[int]map[string]*compiledTemplate
}

// placeholderPattern 匹配模板中的 {identifier} 占位符
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// buildTemplateRegex 将模板编译为锚定正则
// 每个 {name} 替换为捕获组 ([^/]+)，其余部分按字面量匹配。
func buildTemplateRegex(template string) (*regexp.Regexp, []string, error) {
	var b strings.Builder
	b.WriteString("^")

	params := make([]string, 0, 4)
	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(template, -1) {
		b.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		b.WriteString(`([^/]+)`)
		params = append(params, template[loc[2]:loc[3]])
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(template[last:]))
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, nil, fmt.Errorf("dict: failed to compile template %q: %w", template, err)
	}
	return re, params, nil
}

// NewPathTable 从若干代构建路径字典
// 符号键在有效字典内必须唯一；重复的符号或模板属于编程错误，直接 panic。
func NewPathTable(generations ...PathGeneration) *PathTable {
	t := &PathTable{
		maxVersion: len(generations),
		templates:  make(map[int][]*compiledTemplate, len(generations)),
		bySymbol:   make(map[int]map[string]*compiledTemplate, len(generations)),
	}

	all := make([]*compiledTemplate, 0, 16)
	symbols := make(map[string]*compiledTemplate)

	for i, gen := range generations {
		if gen.Version != i+1 {
			panic(fmt.Sprintf("dict: path generation %d declared version %d", i+1, gen.Version))
		}
		for _, e := range gen.Entries {
			if _, ok := symbols[e.Symbol]; ok {
				panic(fmt.Sprintf("dict: path symbol %q reused in generation %d", e.Symbol, gen.Version))
			}
			re, params, err := buildTemplateRegex(e.Template)
			if err != nil {
				panic(err.Error())
			}
			ct := &compiledTemplate{
				template: e.Template,
				symbol:   e.Symbol,
				re:       re,
				params:   params,
			}
			all = append(all, ct)
			symbols[e.Symbol] = ct
		}

		// 固化当前版本的累积快照
		tmplCopy := make([]*compiledTemplate, len(all))
		copy(tmplCopy, all)
		symCopy := make(map[string]*compiledTemplate, len(symbols))
		for k, v := range symbols {
			symCopy[k] = v
		}
		t.templates[gen.Version] = tmplCopy
		t.bySymbol[gen.Version] = symCopy
	}

	return t
}

// MaxVersion 返回已知的最高版本
func (t *PathTable) MaxVersion() int {
	return t.maxVersion
}

// clamp 将未知版本收敛到已知范围
func (t *PathTable) clamp(version int) int {
	if version < 1 || version > t.maxVersion {
		return t.maxVersion
	}
	return version
}
