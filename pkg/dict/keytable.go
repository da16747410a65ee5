// Package dict 提供字段名与路径模板的版本化压缩字典。
//
// 字典由若干"代"(generation) 组成，每一代发布后不可变：新字段只能在
// 更高的代中追加，已有编码永不复用、永不改义。版本 v 的有效字典是
// 第 1..v 代的并集，低代先入，因此同一编码在任何版本下含义一致。
package dict

import "fmt"

// KeyEntry 字段名到整数编码的一条映射
type KeyEntry struct {
	Name string
	Code int64
}

// KeyGeneration 键字典的一代
type KeyGeneration struct {
	Version int
	Entries []KeyEntry
}

// KeyTable 版本化的键字典
// 构造完成后只读，可在多个 goroutine 间安全共享。
type KeyTable struct {
	maxVersion int
	forward    map[int]map[string]int64
	inverse    map[int]map[int64]string
}

// NewKeyTable 从若干代构建键字典
// 各代必须按版本 1..N 连续给出；跨代的重复字段名或重复编码属于
// 编程错误，直接 panic。
func NewKeyTable(generations ...KeyGeneration) *KeyTable {
	t := &KeyTable{
		maxVersion: len(generations),
		forward:    make(map[int]map[string]int64, len(generations)),
		inverse:    make(map[int]map[int64]string, len(generations)),
	}

	fwd := make(map[string]int64)
	inv := make(map[int64]string)

	for i, gen := range generations {
		if gen.Version != i+1 {
			panic(fmt.Sprintf("dict: key generation %d declared version %d", i+1, gen.Version))
		}
		for _, e := range gen.Entries {
			if _, ok := fwd[e.Name]; ok {
				panic(fmt.Sprintf("dict: key %q redefined in generation %d", e.Name, gen.Version))
			}
			if _, ok := inv[e.Code]; ok {
				panic(fmt.Sprintf("dict: key code %d reused in generation %d", e.Code, gen.Version))
			}
			fwd[e.Name] = e.Code
			inv[e.Code] = e.Name
		}

		// 固化当前版本的累积快照
		fwdCopy := make(map[string]int64, len(fwd))
		for k, v := range fwd {
			fwdCopy[k] = v
		}
		invCopy := make(map[int64]string, len(inv))
		for k, v := range inv {
			invCopy[k] = v
		}
		t.forward[gen.Version] = fwdCopy
		t.inverse[gen.Version] = invCopy
	}

	return t
}

// MaxVersion 返回已知的最高版本
func (t *KeyTable) MaxVersion() int {
	return t.maxVersion
}

// clamp 将未知版本收敛到已知范围
func (t *KeyTable) clamp(version int) int {
	if version < 1 || version > t.maxVersion {
		return t.maxVersion
	}
	return version
}

// ForwardMap 返回版本 version 的正向映射 (字段名 -> 编码)
// 未知版本静默收敛到最高已知版本。返回的 map 只读，调用方不得修改。
func (t *KeyTable) ForwardMap(version int) map[string]int64 {
	return t.forward[t.clamp(version)]
}

// InverseMap 返回版本 version 的反向映射 (编码 -> 字段名)
func (t *KeyTable) InverseMap(version int) map[int64]string {
	return t.inverse[t.clamp(version)]
}
