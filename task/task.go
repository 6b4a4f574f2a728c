package task

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/arrival"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/junction"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/lane"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/trafficlight"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

var (
	ErrInvalidDuration = errors.New("duration must be a non-negative finite number")
	ErrInvalidLimit    = errors.New("limit must be a finite number")
)

// 每条车道独立随机数流的种子扰动量
const laneSeedStride = 0x9E3779B97F4A7C15

// QueueSample 周期边界（进入A绿）时刻的排队长度采样
type QueueSample struct {
	T           float64 `json:"t" yaml:"t"`
	Cycle       int     `json:"cycle" yaml:"cycle"`
	QueueLength [2]int  `json:"queue_length" yaml:"queue_length"` // 按车道ID索引
}

// Context 仿真任务上下文
// 功能：包含一次仿真的全部状态（时钟、配置、信号灯、车道、路口、到达过程），不存在全局变量
// 说明：多个Context之间互不影响，可以在不同协程中并行运行；单个Context不是线程安全的
type Context struct {
	// 运行ID
	id string

	// 时钟
	clock *clock.Clock
	// 运行时配置
	runtimeConfig *config.RuntimeConfig

	// 信号灯
	trafficLight *trafficlight.LocalTrafficLight
	// Lane管理器
	laneManager *lane.LaneManager
	// 路口协调器
	junction *junction.Junction
	// 各车道到达过程
	generators []*arrival.Generator

	// 周期边界的排队长度历史
	history []QueueSample

	started bool
}

// NewContext 创建新的仿真任务上下文
// 功能：校验配置并创建仿真的全部组件
// 参数：c-配置对象
// 返回：初始化完成的Context实例；配置非法时返回*config.ConfigurationError，仿真不会开始
// 算法说明：
// 1. 校验配置
// 2. 创建时钟、信号灯、车道与路口
// 3. 为每条车道创建使用独立随机数流的到达过程
func NewContext(c config.Config) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		id:            uuid.NewString(),
		clock:         clock.New(),
		runtimeConfig: rc,
		history:       make([]QueueSample, 0),
	}
	ctx.trafficLight = trafficlight.NewLocalTrafficLight(ctx.clock, rc.All.Signal)
	ctx.laneManager = lane.NewManager(ctx)
	ctx.junction = junction.New(ctx, ctx.laneManager)
	rates := map[entity.LaneID]float64{
		entity.LaneA: rc.All.Arrival.RateA,
		entity.LaneB: rc.All.Arrival.RateB,
	}
	ctx.generators = lo.Map(entity.Lanes, func(id entity.LaneID, _ int) *arrival.Generator {
		rng := randengine.New(rc.All.Seed ^ (uint64(id+1) * laneSeedStride))
		return arrival.New(ctx.clock, id, rates[id], rng, ctx.junction)
	})
	ctx.trafficLight.Subscribe(ctx.onPhaseChange)
	return ctx, nil
}

func (ctx *Context) ID() string {
	return ctx.id
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Signal() entity.ISignal {
	return ctx.trafficLight
}

func (ctx *Context) TrafficLight() *trafficlight.LocalTrafficLight {
	return ctx.trafficLight
}

func (ctx *Context) Junction() *junction.Junction {
	return ctx.junction
}

func (ctx *Context) Generators() []*arrival.Generator {
	return ctx.generators
}

// History 周期边界的排队长度历史（只读副本）
func (ctx *Context) History() []QueueSample {
	return append([]QueueSample(nil), ctx.history...)
}

// Init 在时钟上启动信号灯与各车道的到达过程，重复调用无效
// 说明：启动顺序固定（信号灯、A车道、B车道），同一时刻的事件按此顺序执行
func (ctx *Context) Init() {
	if ctx.started {
		return
	}
	ctx.started = true
	ctx.trafficLight.Start()
	for _, g := range ctx.generators {
		g.Start()
	}
	log.WithField("run", ctx.id).Infof(
		"start: cycle %.1fs, λA=%.3f, λB=%.3f, seed %d, yellow permits crossing: %v",
		ctx.runtimeConfig.CycleLength,
		ctx.runtimeConfig.All.Arrival.RateA, ctx.runtimeConfig.All.Arrival.RateB,
		ctx.runtimeConfig.All.Seed, ctx.runtimeConfig.All.Signal.YellowPermitsCrossing,
	)
}

// onPhaseChange 每次回到A绿时采样排队长度
func (ctx *Context) onPhaseChange(tr entity.PhaseTransition) {
	if tr.Phase != entity.PhaseAGreen {
		return
	}
	s := QueueSample{T: tr.T, Cycle: tr.Cycle}
	for _, l := range ctx.laneManager.Lanes() {
		s.QueueLength[l.ID()] = l.QueueLength()
	}
	ctx.history = append(ctx.history, s)
}

// Advance 从当前时刻推进dt秒
// 返回：dt为负数、NaN或无穷大时返回ErrInvalidDuration，不推进
// 说明：到达过程永不停止，推进无穷长时间不会结束
func (ctx *Context) Advance(dt float64) error {
	if !finite(dt) || dt < 0 {
		return fmt.Errorf("advance %v: %w", dt, ErrInvalidDuration)
	}
	return ctx.RunUntil(ctx.clock.T + dt)
}

// RunUntil 推进仿真到绝对时刻limit
// 返回：limit为NaN或无穷大时返回ErrInvalidLimit，不推进
// 说明：limit早于当前时刻时不做任何事；limit之后的事件以及正在排队、通过的车辆保持不变
func (ctx *Context) RunUntil(limit float64) error {
	if !finite(limit) {
		return fmt.Errorf("run until %v: %w", limit, ErrInvalidLimit)
	}
	ctx.Init()
	ctx.clock.RunUntil(limit)
	return nil
}

// RunUntilContext 分段推进仿真到limit，每段之间检查c是否已取消
// 返回：limit非有限数时返回ErrInvalidLimit；c被取消时返回c.Err()
// 说明：分段长度为心跳间隔，心跳间隔为0时不输出心跳日志，按信号周期分段
func (ctx *Context) RunUntilContext(c context.Context, limit float64) error {
	if !finite(limit) {
		return fmt.Errorf("run until %v: %w", limit, ErrInvalidLimit)
	}
	ctx.Init()
	step := ctx.runtimeConfig.C.Heartbeat
	if step <= 0 {
		step = ctx.runtimeConfig.CycleLength
	}
	for ctx.clock.T < limit {
		if err := c.Err(); err != nil {
			return err
		}
		ctx.clock.RunUntil(math.Min(ctx.clock.T+step, limit))
		if ctx.runtimeConfig.C.Heartbeat > 0 {
			ctx.heartbeat()
		}
	}
	return nil
}

// Run 运行到配置的仿真时长，每个心跳间隔输出一次状态日志
// 返回：结束时的快照
func (ctx *Context) Run() Snapshot {
	if err := ctx.RunUntilContext(context.Background(), ctx.runtimeConfig.C.Duration); err != nil {
		log.Panicf("run: %v", err)
	}
	log.WithField("run", ctx.id).Infof("engine complete at %v", ctx.clock)
	return ctx.Snapshot()
}

func (ctx *Context) heartbeat() {
	a := ctx.laneManager.Get(entity.LaneA).Stats()
	b := ctx.laneManager.Get(entity.LaneB).Stats()
	log.WithField("run", ctx.id).Infof(
		"T: %v(%.2f) %v cycles=%d | A q=%d served=%d/%d | B q=%d served=%d/%d",
		ctx.clock, ctx.clock.T, ctx.trafficLight.CurrentPhase(), ctx.trafficLight.CompletedCycles(),
		a.QueueLength, a.Served, a.Arrived,
		b.QueueLength, b.Served, b.Arrived,
	)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
