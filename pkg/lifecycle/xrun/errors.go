package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 因收到系统信号而终止
	ErrSignal = errors.New("xrun: received signal")

	// ErrNilFunc 注册了 nil 服务函数
	ErrNilFunc = errors.New("xrun: nil service func")

	// ErrNilServer HTTPServer 的 server 为 nil
	ErrNilServer = errors.New("xrun: nil server")
)

// SignalError 记录触发退出的信号
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("xrun: received signal %v", e.Signal)
}

// Is 支持 errors.Is(err, ErrSignal)
func (e *SignalError) Is(target error) bool {
	return target == ErrSignal
}
