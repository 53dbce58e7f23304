// xflowctl 是 xflow 的调试命令行工具，按与服务端相同的优先级
// （baggage > header > trace id）解析 flow id 并输出结果。
//
// 用法:
//
//	xflowctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config      配置文件（yaml/json），读取 flow 节点的 key 名
//	    --log-level   日志级别 (默认: warn)
//	    --log-format  日志格式 text/json (默认: text)
//	    --log-file    日志文件，按大小轮转；为空时输出到 stderr
//
// 命令:
//
//	resolve        模拟一次入站解析
//	config         输出生效的 key 配置
//	serve          启动回显服务，用于跨进程联调
//	help           显示帮助信息
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误（格式错误的 NAME=VALUE、无效 trace id、未知输出格式等）
//
// 示例:
//
//	xflowctl resolve -H X-Flow-ID=REcCvlqMSReeo7adheiYFA
//	xflowctl resolve -b flow_id=REcCvlqMSReeo7adheiYFA -H X-Flow-ID=other
//	xflowctl resolve --trace-id 4bf92f3577b34da6a3ce929d0e0e4736 -o json
//	xflowctl -c app.yaml config
//	xflowctl serve --addr :8080
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/omeyang/xflow/pkg/observability/xlog"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	var cleanup func() error

	return &cli.Command{
		Name:      "xflowctl",
		Usage:     "xflow flow id 解析调试工具",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（yaml/json）",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径，按大小轮转",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			c, err := setupLogger(cmd, stderr)
			if err != nil {
				return ctx, &usageError{err: err}
			}
			cleanup = c
			return ctx, nil
		},
		After: func(context.Context, *cli.Command) error {
			if cleanup != nil {
				return cleanup()
			}
			return nil
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码
		ExitErrHandler: func(_ context.Context, cmd *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(cmd.Root().ErrWriter, err)
			}
		},
	}
}

func setupLogger(cmd *cli.Command, stderr io.Writer) (func() error, error) {
	b := xlog.New().
		SetOutput(stderr).
		SetLevelString(cmd.String("log-level")).
		SetFormat(cmd.String("log-format"))
	if file := cmd.String("log-file"); file != "" {
		b = b.SetRotation(file, xlog.WithMaxSize(10), xlog.WithMaxBackups(3))
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, err
	}
	xlog.SetDefault(logger)
	return cleanup, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)

	if err := app.Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			return exitCoder.ExitCode()
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
