package config

import "fmt"

// ConfigurationError 配置错误
// 功能：描述构造仿真时提供的非法时长或到达率，仿真不得启动
type ConfigurationError struct {
	Field  string // 出错的配置项
	Reason string // 出错原因
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func newError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
