package config

import (
	"fmt"
	"reflect"
)

// MergeConfig 合并配置
// - dst 和 src 都为 nil 时返回错误
// - dst 为 nil 返回 src，src 为 nil 返回 dst
// - 否则 src 的非零值覆盖 dst 的对应字段，返回合并后的 dst
//
// 各组件用它把用户传入的部分配置叠加到 DefaultConfig() 之上。
func MergeConfig[T any](dst, src *T) (*T, error) {
	if dst == nil && src == nil {
		return nil, fmt.Errorf("both dst and src cannot be nil")
	}
	if dst == nil {
		return src, nil
	}
	if src == nil {
		return dst, nil
	}

	if err := mergeValue(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem()); err != nil {
		return nil, err
	}
	return dst, nil
}

// mergeValue 递归合并 src 到 dst，src 的零值不覆盖
func mergeValue(dst, src reflect.Value) error {
	if !src.IsValid() || src.IsZero() {
		return nil
	}

	switch dst.Kind() {
	case reflect.Struct:
		for i := 0; i < dst.NumField(); i++ {
			if !dst.Field(i).CanSet() {
				continue
			}
			if err := mergeValue(dst.Field(i), src.Field(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Ptr:
		if dst.IsNil() {
			dst.Set(src)
			return nil
		}
		return mergeValue(dst.Elem(), src.Elem())

	case reflect.Map:
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(dst.Type(), src.Len()))
		}
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(iter.Key(), iter.Value())
		}
		return nil

	case reflect.Slice:
		// 切片整体覆盖，不做逐元素合并
		dst.Set(src)
		return nil

	default:
		if !dst.CanSet() {
			return fmt.Errorf("cannot set field of type %s", dst.Type())
		}
		dst.Set(src)
		return nil
	}
}
