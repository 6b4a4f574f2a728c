package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	DefaultServiceTime  = 1.0 // 默认单车通过时长，对应最大服务率1辆/秒
	DefaultPollInterval = 0.1 // 默认信号灯检查间隔
	DefaultDuration     = 500 // 默认仿真时长
	DefaultHeartbeat    = 100 // 默认心跳日志间隔
)

// RuntimeConfig 运行时配置
// 功能：存储通过校验的配置以及由配置派生的常用量
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	CycleLength float64 // 信号周期时长
}

// NewRuntimeConfig 校验配置并创建运行时配置
// 功能：校验配置并计算派生量
// 参数：config-原始配置对象
// 返回：运行时配置指针；配置非法时返回*ConfigurationError
// 说明：不补全默认值，显式给出的0（如通行时长0）按原值使用
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if err := Validate(config); err != nil {
		return nil, err
	}
	return &RuntimeConfig{
		All:         config,
		C:           config.Control,
		CycleLength: config.Signal.CycleLength(),
	}, nil
}

// Default 默认配置
// 说明：30/3/25/3/15秒配时（周期76秒），两车道λ=0.3辆/秒
func Default() Config {
	return Config{
		Seed: 42,
		Signal: Signal{
			GreenA:     30,
			GreenB:     25,
			Yellow:     3,
			Pedestrian: 15,
		},
		Arrival: Arrival{
			RateA: 0.3,
			RateB: 0.3,
		},
		Crossing: Crossing{
			ServiceTime:  DefaultServiceTime,
			PollInterval: DefaultPollInterval,
		},
		Control: Control{
			Duration:  DefaultDuration,
			Heartbeat: DefaultHeartbeat,
		},
	}
}

// Scenario 预置场景
// 功能：按名称返回预置场景配置（light: 轻度交通, asymmetric: 非对称, optimised: 优化配时）
func Scenario(name string) (Config, error) {
	c := Default()
	switch name {
	case "light", "":
	case "asymmetric":
		c.Signal.GreenA, c.Signal.GreenB = 40, 20
		c.Arrival.RateA, c.Arrival.RateB = 0.4, 0.4
	case "optimised":
		c.Signal.GreenA, c.Signal.GreenB, c.Signal.Pedestrian = 28, 28, 14
	default:
		return Config{}, fmt.Errorf("unknown scenario %q", name)
	}
	return c, nil
}

// Load 从YAML数据加载配置（严格模式，不允许未知字段）
// 说明：以Default()为底，YAML中未出现的字段保持默认值
func Load(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("config unmarshal: %w", err)
	}
	return c, nil
}

// LoadFile 从YAML文件加载配置
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config file load: %w", err)
	}
	return Load(data)
}

// Validate 校验配置
// 功能：在仿真开始前拒绝所有非法输入
// 返回：第一个不合法字段对应的*ConfigurationError，合法时返回nil
// 算法说明：
// 1. 四个信号时长必须为非负有限数，且周期不能为0
// 2. 到达率必须为正（allow_idle时允许为0）
// 3. 通行时长非负，检查间隔为正
// 4. 仿真时长与心跳间隔非负
func Validate(c Config) error {
	durations := []struct {
		field string
		value float64
	}{
		{"signal.green_a", c.Signal.GreenA},
		{"signal.green_b", c.Signal.GreenB},
		{"signal.yellow", c.Signal.Yellow},
		{"signal.pedestrian", c.Signal.Pedestrian},
	}
	for _, d := range durations {
		if !finite(d.value) || d.value < 0 {
			return newError(d.field, "duration must be a non-negative number, got %v", d.value)
		}
	}
	if c.Signal.CycleLength() <= 0 {
		return newError("signal", "cycle length must be positive")
	}

	rates := []struct {
		field string
		value float64
	}{
		{"arrival.rate_a", c.Arrival.RateA},
		{"arrival.rate_b", c.Arrival.RateB},
	}
	for _, r := range rates {
		if !finite(r.value) || r.value < 0 {
			return newError(r.field, "rate must be a non-negative number, got %v", r.value)
		}
		if r.value == 0 && !c.Arrival.AllowIdle {
			return newError(r.field, "rate must be positive (set arrival.allow_idle to permit an idle lane)")
		}
	}

	if !finite(c.Crossing.ServiceTime) || c.Crossing.ServiceTime < 0 {
		return newError("crossing.service_time", "must be non-negative, got %v", c.Crossing.ServiceTime)
	}
	if !finite(c.Crossing.PollInterval) || c.Crossing.PollInterval <= 0 {
		return newError("crossing.poll_interval", "must be positive, got %v", c.Crossing.PollInterval)
	}
	if !finite(c.Control.Duration) || c.Control.Duration < 0 {
		return newError("control.duration", "must be non-negative, got %v", c.Control.Duration)
	}
	if !finite(c.Control.Heartbeat) || c.Control.Heartbeat < 0 {
		return newError("control.heartbeat", "must be non-negative, got %v", c.Control.Heartbeat)
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
