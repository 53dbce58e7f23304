// Package xconf 基于 koanf 加载 YAML/JSON 配置。
//
// 只提供加载、反序列化与重载三个增值能力，其余操作直接使用 Client() 返回的 koanf 实例。
//
//	cfg, err := xconf.New("/etc/app/flow.yaml")
//	if err != nil {
//	    return err
//	}
//	var keys struct {
//	    Header string `koanf:"header"`
//	}
//	err = cfg.Unmarshal("flow", &keys)
//
// 从字节数据创建（如 K8s ConfigMap 挂载内容）使用 NewFromBytes，需要显式指定格式。
package xconf
