package layout

import (
	"errors"
	"fmt"
)

// ErrConfiguration 是所有配置错误的哨兵，可用 errors.Is 判断。
var ErrConfiguration = errors.New("layout: 配置错误")

// ConfigurationError 表示页面几何或样式表无法产生可用的排版区域。
// 这是版式引擎唯一会返回的错误类型，且总在任何排版工作开始前报告。
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("layout: 配置错误 %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func configErrorf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
