package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/omeyang/xflow/pkg/config/xconf"
	"github.com/omeyang/xflow/pkg/observability/xflow"
	"github.com/omeyang/xflow/pkg/observability/xflow/xflowotel"

	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// usageError 参数错误，退出码 2
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createResolveCommand(),
		createConfigCommand(),
		createServeCommand(),
	}
}

func createResolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "模拟入站请求并解析 flow id",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "header",
				Aliases: []string{"H"},
				Usage:   "入站 header，格式 NAME=VALUE，可重复",
			},
			&cli.StringSliceFlag{
				Name:    "baggage",
				Aliases: []string{"b"},
				Usage:   "上游 baggage，格式 KEY=VALUE，可重复",
			},
			&cli.StringFlag{
				Name:  "trace-id",
				Usage: "上游 trace id（32 位十六进制），为空时生成新链路",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "输出格式 (text/json)",
				Value:   "text",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			req, err := parseResolveRequest(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadFlowConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			result, err := resolve(ctx, cfg, req)
			if err != nil {
				return err
			}
			return printResult(cmd.Root().Writer, req.output, result)
		},
	}
}

func createConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "输出生效的 header/baggage/tag 名称",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadFlowConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			fmt.Fprintf(w, "header:  %s\n", cfg.Header)
			fmt.Fprintf(w, "baggage: %s\n", cfg.Baggage)
			fmt.Fprintf(w, "tag:     %s\n", cfg.Tag)
			return nil
		},
	}
}

// =============================================================================
// resolve
// =============================================================================

type resolveRequest struct {
	headers map[string]string
	baggage baggage.Baggage
	traceID trace.TraceID
	output  string
}

// resolveResult 解析结果，JSON 输出使用
type resolveResult struct {
	FlowID   string            `json:"flow_id"`
	Source   string            `json:"source"`
	TraceID  string            `json:"trace_id"`
	Baggage  map[string]string `json:"baggage"`
	Tags     map[string]string `json:"tags"`
	Outbound map[string]string `json:"outbound"`
}

func parseResolveRequest(cmd *cli.Command) (*resolveRequest, error) {
	req := &resolveRequest{output: cmd.String("output")}
	if req.output != "text" && req.output != "json" {
		return nil, usageErrorf("unknown output format %q", req.output)
	}

	headers, err := parsePairs("header", cmd.StringSlice("header"))
	if err != nil {
		return nil, err
	}
	req.headers = headers

	pairs, err := parsePairs("baggage", cmd.StringSlice("baggage"))
	if err != nil {
		return nil, err
	}
	members := make([]baggage.Member, 0, len(pairs))
	for k, v := range pairs {
		m, err := baggage.NewMemberRaw(k, v)
		if err != nil {
			return nil, usageErrorf("baggage %q: %w", k, err)
		}
		members = append(members, m)
	}
	if req.baggage, err = baggage.New(members...); err != nil {
		return nil, usageErrorf("baggage: %w", err)
	}

	if raw := cmd.String("trace-id"); raw != "" {
		if req.traceID, err = trace.TraceIDFromHex(raw); err != nil {
			return nil, usageErrorf("trace id %q: %w", raw, err)
		}
	}
	return req, nil
}

// parsePairs 解析 NAME=VALUE 列表，后出现的同名项覆盖先出现的
func parsePairs(kind string, values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, usageErrorf("%s %q: expected NAME=VALUE", kind, v)
		}
		out[name] = value
	}
	return out, nil
}

func loadFlowConfig(path string) (xflow.Config, error) {
	if path == "" {
		return xflow.DefaultConfig(), nil
	}
	c, err := xconf.New(path)
	if err != nil {
		return xflow.Config{}, err
	}
	return xflow.LoadConfig(c, "flow")
}

// resolve 在本地 SDK tracer 上模拟一次入站解析：
// 以 trace id 和 baggage 构造远端父 span，创建并激活本地 span，
// 然后按服务端相同的流程调用 ReadFrom/CurrentID/WriteTo。
func resolve(ctx context.Context, cfg xflow.Config, req *resolveRequest) (*resolveResult, error) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	f, err := xflow.New(xflowotel.Tracer{}, xflow.WithConfig(cfg), xflow.WithMeterProvider(mp))
	if err != nil {
		return nil, err
	}

	ctx = baggage.ContextWithBaggage(ctx, req.baggage)
	if req.traceID.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    req.traceID,
			SpanID:     remoteSpanID,
			TraceFlags: trace.FlagsSampled,
			Remote:     true,
		}))
	}

	ctx, scope := xflowotel.Start(ctx, tp.Tracer("xflowctl"), "xflowctl.resolve",
		trace.WithSpanKind(trace.SpanKindServer))
	defer scope.End()

	if err := f.ReadFrom(ctx, xflow.MapLookup(req.headers)); err != nil {
		return nil, err
	}
	id, err := f.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	outbound := make(map[string]string)
	if err := f.WriteTo(ctx, xflow.MapSink(outbound)); err != nil {
		return nil, err
	}

	source, err := collectSource(ctx, reader)
	if err != nil {
		return nil, err
	}

	return &resolveResult{
		FlowID:   id,
		Source:   source,
		TraceID:  scope.Span().SpanContext().TraceID().String(),
		Baggage:  baggageMap(xflowotel.Baggage(ctx)),
		Tags:     spanTags(scope.Span()),
		Outbound: outbound,
	}, nil
}

// remoteSpanID 模拟上游的 span id，仅用于构造合法的远端 span context
var remoteSpanID = trace.SpanID{0, 0, 0, 0, 0, 0, 0, 1}

// collectSource 从 xflow.MetricResolveTotal 指标读取本次解析的来源
func collectSource(ctx context.Context, reader *sdkmetric.ManualReader) (string, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return "", fmt.Errorf("collect metrics: %w", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || m.Name != xflow.MetricResolveTotal {
				continue
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(xflow.AttrSource)); ok && dp.Value > 0 {
					return v.AsString(), nil
				}
			}
		}
	}
	return "", errors.New("resolution source not recorded")
}

func baggageMap(b baggage.Baggage) map[string]string {
	out := make(map[string]string, b.Len())
	for _, m := range b.Members() {
		out[m.Key()] = m.Value()
	}
	return out
}

// spanTags 读取 SDK span 上的字符串属性
func spanTags(s trace.Span) map[string]string {
	out := make(map[string]string)
	ro, ok := s.(sdktrace.ReadOnlySpan)
	if !ok {
		return out
	}
	for _, kv := range ro.Attributes() {
		if kv.Value.Type() == attribute.STRING {
			out[string(kv.Key)] = kv.Value.AsString()
		}
	}
	return out
}

func printResult(w io.Writer, format string, r *resolveResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(w, "flow_id:  %s\n", r.FlowID)
	fmt.Fprintf(w, "source:   %s\n", r.Source)
	fmt.Fprintf(w, "trace_id: %s\n", r.TraceID)
	fmt.Fprintf(w, "baggage:  %s\n", formatPairs(r.Baggage, "="))
	fmt.Fprintf(w, "tags:     %s\n", formatPairs(r.Tags, "="))
	fmt.Fprintf(w, "outbound: %s\n", formatPairs(r.Outbound, ": "))
	return nil
}

func formatPairs(m map[string]string, sep string) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+sep+m[k])
	}
	return strings.Join(parts, ", ")
}
