package xrun

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/omeyang/xflow/pkg/observability/xlog"

	"golang.org/x/sync/errgroup"
)

// Group 管理一组服务。Go 可并发调用，Wait 只调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *options
}

// NewGroup 创建 Group，返回的 context 在任一服务出错或 Cancel 时取消
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{eg: eg, ctx: egCtx, causeCtx: causeCtx, cancel: cancel, opts: o}, egCtx
}

func (g *Group) logger() xlog.Logger {
	if g.opts.logger != nil {
		return g.opts.logger
	}
	return xlog.Default()
}

// Go 以 name 启动服务，fn 应在 ctx 取消后返回
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("service", name)}
		g.logger().Debug(g.ctx, "xrun: service starting", attrs...)

		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.logger().Warn(g.ctx, "xrun: service exited with error", append(attrs, xlog.Err(err))...)
		} else {
			g.logger().Debug(g.ctx, "xrun: service stopped", attrs...)
		}
		return err
	})
}

// Cancel 以 cause 取消所有服务，Wait 返回该 cause
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Wait 等待所有服务退出。
//
// 普通取消返回 nil；Cancel 或信号设置的 cause 优先于服务返回的 context.Canceled。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	if g.causeCtx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
		if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return nil
	}
	return err
}

// Run 运行 services 并监听终止信号，直到全部退出
func Run(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)
	if len(g.opts.signals) > 0 {
		g.Go("signal", g.watchSignals)
	}
	for i, svc := range services {
		g.Go(serviceName(i), svc)
	}
	return g.Wait()
}

func serviceName(i int) string {
	return "service-" + strconv.Itoa(i)
}

type testSigChanKey struct{}

// withTestSigChan 测试通过 context 注入信号，避免向进程发送真实信号
func withTestSigChan(ctx context.Context, c <-chan os.Signal) context.Context {
	return context.WithValue(ctx, testSigChanKey{}, c)
}

func (g *Group) watchSignals(ctx context.Context) error {
	testc, _ := ctx.Value(testSigChanKey{}).(<-chan os.Signal)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, g.opts.signals...)
	defer signal.Stop(sigCh)

	var sig os.Signal
	select {
	case sig = <-testc:
	case sig = <-sigCh:
	case <-ctx.Done():
		return ctx.Err()
	}
	g.logger().Info(ctx, "xrun: received signal",
		slog.String("group", g.opts.name), slog.String("signal", sig.String()))
	g.cancel(&SignalError{Signal: sig})
	return nil
}

// HTTPServerInterface *http.Server 满足此接口
type HTTPServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServer 将 server 包装为服务函数：ctx 取消时在 shutdownTimeout 内优雅关闭，
// shutdownTimeout <= 0 表示等待所有在途请求完成。
func HTTPServer(server HTTPServerInterface, shutdownTimeout time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if server == nil {
			return ErrNilServer
		}
		shutdownErr := make(chan error, 1)
		listenDone := make(chan struct{})

		go func() {
			select {
			case <-ctx.Done():
				shutdownCtx := context.Background()
				if shutdownTimeout > 0 {
					var cancel context.CancelFunc
					shutdownCtx, cancel = context.WithTimeout(shutdownCtx, shutdownTimeout)
					defer cancel()
				}
				shutdownErr <- server.Shutdown(shutdownCtx)
			case <-listenDone:
			}
		}()

		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			select {
			case err := <-shutdownErr:
				return err
			case <-ctx.Done():
				return <-shutdownErr
			default:
				// 外部直接关闭
				close(listenDone)
				return nil
			}
		}
		close(listenDone)
		return err
	}
}
