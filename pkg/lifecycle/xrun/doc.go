// Package xrun 基于 errgroup 管理长驻进程内多个服务的并发运行与协调关闭。
//
// 任一服务返回错误、父 context 取消或收到终止信号时，所有服务的 ctx 被取消。
// 信号导致的退出以 *SignalError 返回，可用 errors.Is(err, ErrSignal) 判断。
//
//	server := &http.Server{Addr: ":8080", Handler: handler}
//	err := xrun.Run(ctx, nil, xrun.HTTPServer(server, 5*time.Second))
package xrun
