package xrun

import (
	"os"
	"syscall"

	"github.com/omeyang/xflow/pkg/observability/xlog"
)

// Option 配置 Group
type Option func(*options)

type options struct {
	logger  xlog.Logger
	name    string
	signals []os.Signal
}

func defaultOptions() *options {
	return &options{
		name:    "xrun",
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// WithLogger 设置生命周期日志，默认使用 xlog 全局 Logger
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置日志中的 group 名称
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 设置 Run 监听的信号，默认 SIGINT、SIGTERM；传入空列表禁用信号处理
func WithSignals(signals ...os.Signal) Option {
	copied := append([]os.Signal{}, signals...)
	return func(o *options) {
		o.signals = copied
	}
}
