package xflow

import (
	"fmt"
	"strings"

	"github.com/omeyang/xflow/pkg/config/xconf"
)

// 默认 key 名
const (
	DefaultHeader  = "X-Flow-ID"
	DefaultBaggage = "flow_id"
	DefaultTag     = "flow_id"
)

// Config 承载 flow id 的 header、baggage、tag 名称。
type Config struct {
	Header  string `koanf:"header"`
	Baggage string `koanf:"baggage"`
	Tag     string `koanf:"tag"`
}

// DefaultConfig 返回默认 key 配置
func DefaultConfig() Config {
	return Config{
		Header:  DefaultHeader,
		Baggage: DefaultBaggage,
		Tag:     DefaultTag,
	}
}

// Validate 校验三个 key 均非空且不含空白
func (c Config) Validate() error {
	for _, kv := range [...]struct{ name, value string }{
		{"header", c.Header},
		{"baggage", c.Baggage},
		{"tag", c.Tag},
	} {
		if kv.value == "" {
			return fmt.Errorf("%w: empty %s key", ErrInvalidConfig, kv.name)
		}
		if strings.ContainsAny(kv.value, " \t\r\n") {
			return fmt.Errorf("%w: %s key %q contains whitespace", ErrInvalidConfig, kv.name, kv.value)
		}
	}
	return nil
}

// LoadConfig 从 xconf 配置的 path 节点读取 key 配置，缺失字段使用默认值。
//
//	flow:
//	  header: X-Flow-ID
//	  baggage: flow_id
//	  tag: flow_id
func LoadConfig(cfg xconf.Config, path string) (Config, error) {
	c := DefaultConfig()
	if cfg == nil {
		return c, nil
	}
	if err := cfg.Unmarshal(path, &c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
