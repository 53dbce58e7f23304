// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 自动从 context 注入 flow_id、trace_id（EnrichHandler，默认启用）
//   - 动态级别调整
//   - 全局 Logger 便利函数
//
// # 创建 Logger
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelDebug).
//		SetFormat("json").
//		SetRotation("/var/log/app/flow.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// Builder 遵循 first-error-wins：第一个配置错误在 Build 时返回。
//
// # 全局 Logger
//
// 适用于库内部与小工具：[Default] 惰性初始化（stderr、Info、text），
// [SetDefault] 替换，[Debug]/[Info]/[Warn]/[Error] 为便利函数。
package xlog
