package trafficlight

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

var log = logrus.WithField("module", "trafficlight")

// localTlRuntime 信号灯运行时数据
type localTlRuntime struct {
	phase      entity.Phase // 当前相位
	phaseStart float64      // 当前相位开始时刻
	cycles     int          // 已完成的周期数
	mayCross   [2]bool      // 各车道是否允许通过（由相位推出）
}

// LocalTrafficLight 固定配时信号灯控制器
// 功能：按 A绿 -> A黄 -> B绿 -> B黄 -> 行人 的固定顺序循环，每个相位保持配置的时长
// 说明：
// 1. 作为时钟上的一个进程运行，每次恢复即进入下一相位并登记本相位结束时刻
// 2. 初始相位为A绿，没有终止状态
// 3. 行人相位结束回到A绿时已完成周期数+1
type LocalTrafficLight struct {
	clock *clock.Clock
	task  *clock.Task

	durations     [entity.NumPhases]float64 // 各相位时长
	yellowPermits bool                      // 黄灯期间是否允许本车道通过

	started     bool
	runtime     localTlRuntime
	transitions []entity.PhaseTransition       // 相位切换历史
	observers   []func(entity.PhaseTransition) // 相位切换订阅者
}

// NewLocalTrafficLight 创建固定配时信号灯控制器
// 功能：根据配置初始化各相位时长，初始状态为A绿（尚未开始计时）
// 参数：clk-仿真时钟，signal-已校验的信号灯配置
// 返回：信号灯控制器实例
func NewLocalTrafficLight(clk *clock.Clock, signal config.Signal) *LocalTrafficLight {
	l := &LocalTrafficLight{
		clock: clk,
		durations: [entity.NumPhases]float64{
			entity.PhaseAGreen:     signal.GreenA,
			entity.PhaseAYellow:    signal.Yellow,
			entity.PhaseBGreen:     signal.GreenB,
			entity.PhaseBYellow:    signal.Yellow,
			entity.PhasePedestrian: signal.Pedestrian,
		},
		yellowPermits: signal.YellowPermitsCrossing,
		transitions:   make([]entity.PhaseTransition, 0),
	}
	l.runtime.mayCross = l.derive(entity.PhaseAGreen)
	return l
}

// Start 在时钟上启动信号灯进程
func (l *LocalTrafficLight) Start() {
	if l.task != nil {
		log.Panic("traffic light already started")
	}
	l.task = l.clock.Spawn("signal", l)
}

// Subscribe 订阅相位切换
func (l *LocalTrafficLight) Subscribe(fn func(entity.PhaseTransition)) {
	l.observers = append(l.observers, fn)
}

// Resume 进程恢复：进入下一相位并登记该相位结束时刻
// 算法说明：
// 1. 第一次恢复时进入初始相位A绿
// 2. 之后每次恢复切换到下一个相位，从行人相位回到A绿时周期数+1
// 3. 更新各车道通行标志，记录切换历史并通知订阅者
// 4. 在本相位时长之后再次恢复（时长为0的相位会在同一时刻的其他事件之后立即结束）
func (l *LocalTrafficLight) Resume(now float64) clock.Yield {
	if !l.started {
		l.started = true
	} else {
		if l.runtime.phase == entity.PhasePedestrian {
			l.runtime.cycles++
		}
		l.runtime.phase = l.runtime.phase.Next()
	}
	l.runtime.phaseStart = now
	l.runtime.mayCross = l.derive(l.runtime.phase)

	tr := entity.PhaseTransition{T: now, Phase: l.runtime.phase, Cycle: l.runtime.cycles}
	l.transitions = append(l.transitions, tr)
	log.Debugf("[%.2f] phase %v (cycle %d)", now, tr.Phase, tr.Cycle)
	for _, fn := range l.observers {
		fn(tr)
	}
	return clock.Timeout(l.durations[l.runtime.phase])
}

// derive 由相位推出各车道的通行标志
// 说明：两条车道的绿（黄）灯相位互斥，行人相位两条车道都不允许通过
func (l *LocalTrafficLight) derive(p entity.Phase) [2]bool {
	var m [2]bool
	switch p {
	case entity.PhaseAGreen:
		m[entity.LaneA] = true
	case entity.PhaseAYellow:
		m[entity.LaneA] = l.yellowPermits
	case entity.PhaseBGreen:
		m[entity.LaneB] = true
	case entity.PhaseBYellow:
		m[entity.LaneB] = l.yellowPermits
	}
	return m
}

// MayCross 当前是否允许该车道车辆通过（纯读取）
func (l *LocalTrafficLight) MayCross(lane entity.LaneID) bool {
	if lane != entity.LaneA && lane != entity.LaneB {
		return false
	}
	return l.runtime.mayCross[lane]
}

// CurrentPhase 当前相位
func (l *LocalTrafficLight) CurrentPhase() entity.Phase {
	return l.runtime.phase
}

// CompletedCycles 已完成的周期数
func (l *LocalTrafficLight) CompletedCycles() int {
	return l.runtime.cycles
}

// RemainingTime 当前相位剩余时长，未启动时返回初始相位的完整时长
func (l *LocalTrafficLight) RemainingTime() float64 {
	if !l.started {
		return l.durations[entity.PhaseAGreen]
	}
	remaining := l.runtime.phaseStart + l.durations[l.runtime.phase] - l.clock.T
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Duration 相位时长
func (l *LocalTrafficLight) Duration(p entity.Phase) float64 {
	return l.durations[p]
}

// CycleLength 周期总时长
func (l *LocalTrafficLight) CycleLength() float64 {
	sum := 0.
	for _, d := range l.durations {
		sum += d
	}
	return sum
}

// GreenFraction 一个周期内该车道允许通过的时间占比
func (l *LocalTrafficLight) GreenFraction(lane entity.LaneID) float64 {
	open := 0.
	for p := entity.Phase(0); p < entity.NumPhases; p++ {
		if l.derive(p)[lane] {
			open += l.durations[p]
		}
	}
	return open / l.CycleLength()
}

// Transitions 相位切换历史（只读副本）
func (l *LocalTrafficLight) Transitions() []entity.PhaseTransition {
	return append([]entity.PhaseTransition(nil), l.transitions...)
}

func (l *LocalTrafficLight) String() string {
	return fmt.Sprintf("TrafficLight{phase=%v, cycles=%d, remaining=%.2f}",
		l.runtime.phase, l.runtime.cycles, l.RemainingTime())
}
