package entity

import (
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

// ITaskContext 仿真任务上下文接口
// 说明：时钟、配置与信号灯都是一次仿真的字段，不存在进程级的全局状态
type ITaskContext interface {
	ID() string
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
	Signal() ISignal
}
