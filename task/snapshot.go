package task

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/arrival"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/lane"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/queueing"
)

// Snapshot 仿真状态快照
// 说明：读取快照不改变任何仿真状态
type Snapshot struct {
	RunID           string       `json:"run_id" yaml:"run_id"`
	T               float64      `json:"t" yaml:"t"`
	Phase           entity.Phase `json:"phase" yaml:"phase"`
	PhaseName       string       `json:"phase_name" yaml:"phase_name"`
	RemainingTime   float64      `json:"remaining_time" yaml:"remaining_time"`
	CompletedCycles int          `json:"completed_cycles" yaml:"completed_cycles"`
	Lanes           []lane.Stats `json:"lanes" yaml:"lanes"`
}

// Lane 按车道ID获取统计
func (s Snapshot) Lane(id entity.LaneID) lane.Stats {
	st, ok := lo.Find(s.Lanes, func(st lane.Stats) bool { return st.Lane == id })
	if !ok {
		log.Panicf("no lane %v in snapshot", id)
	}
	return st
}

// Snapshot 获取当前仿真状态快照
func (ctx *Context) Snapshot() Snapshot {
	tl := ctx.trafficLight
	return Snapshot{
		RunID:           ctx.id,
		T:               ctx.clock.T,
		Phase:           tl.CurrentPhase(),
		PhaseName:       tl.CurrentPhase().String(),
		RemainingTime:   tl.RemainingTime(),
		CompletedCycles: tl.CompletedCycles(),
		Lanes:           ctx.junction.Stats(),
	}
}

// Theory 各车道的M/M/1理论模型
// 功能：λ取配置的到达率，μ = 绿灯占比 / 单车通过时长
func (ctx *Context) Theory() []queueing.MM1 {
	serviceTime := ctx.runtimeConfig.All.Crossing.ServiceTime
	return lo.Map(ctx.generators, func(g *arrival.Generator, _ int) queueing.MM1 {
		return queueing.MM1{
			Lambda: g.Rate(),
			Mu:     queueing.EffectiveServiceRate(serviceTime, ctx.trafficLight.GreenFraction(g.Lane())),
		}
	})
}
