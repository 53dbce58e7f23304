package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/omeyang/xflow/pkg/context/xctx"
	"github.com/omeyang/xflow/pkg/lifecycle/xrun"
	"github.com/omeyang/xflow/pkg/observability/xflow"
	"github.com/omeyang/xflow/pkg/observability/xflow/xflowotel"
	"github.com/omeyang/xflow/pkg/observability/xlog"

	"github.com/urfave/cli/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const defaultShutdownTimeout = 5 * time.Second

func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动回显服务，返回每个请求解析出的 flow id",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "监听地址",
				Value: ":8080",
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "优雅关闭超时",
				Value: defaultShutdownTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadFlowConfig(cmd.String("config"))
			if err != nil {
				return err
			}

			tp := sdktrace.NewTracerProvider()
			defer func() { _ = tp.Shutdown(context.Background()) }()

			handler, err := newServeHandler(cfg, tp.Tracer("xflowctl"))
			if err != nil {
				return err
			}
			server := &http.Server{
				Addr:              cmd.String("addr"),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			xlog.Info(ctx, "xflowctl: serving", slog.String("addr", server.Addr))
			err = xrun.Run(ctx, []xrun.Option{xrun.WithName("xflowctl")},
				xrun.HTTPServer(server, cmd.Duration("shutdown-timeout")))
			if errors.Is(err, xrun.ErrSignal) {
				return nil
			}
			return err
		},
	}
}

// echoResponse 回显服务的响应体
type echoResponse struct {
	FlowID  string            `json:"flow_id"`
	TraceID string            `json:"trace_id"`
	Baggage map[string]string `json:"baggage"`
}

// newServeHandler 组装 tracing 与 flow id 中间件，下游请求头按配置回写 flow id
func newServeHandler(cfg xflow.Config, tracer trace.Tracer) (http.Handler, error) {
	f, err := xflow.New(xflowotel.Tracer{}, xflow.WithConfig(cfg))
	if err != nil {
		return nil, err
	}

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp := echoResponse{
			FlowID:  xctx.FlowID(ctx),
			TraceID: xctx.TraceID(ctx),
			Baggage: baggageMap(xflowotel.Baggage(ctx)),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			xlog.Warn(ctx, "xflowctl: write response failed", xlog.Err(err))
		}
	})

	return xflowotel.HTTPMiddleware(tracer)(xflow.HTTPMiddleware(f)(echo)), nil
}
