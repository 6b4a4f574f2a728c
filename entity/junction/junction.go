package junction

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/lane"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"
)

var log = logrus.WithField("module", "junction")

// Junction 路口协调器
// 功能：为每辆到达车辆建立通行进程，组合排队队列、通行资源与信号灯
// 说明：
// 1. 路口独占两条车道的排队队列与通行资源，只读取信号灯状态
// 2. 所有进程由同一个时钟顺序执行，不需要加锁
type Junction struct {
	ctx entity.ITaskContext

	lanes     *lane.LaneManager
	observers []IObserver

	serviceTime  float64 // 单车通过时长
	pollInterval float64 // 队首车辆检查信号灯的间隔

	polls uint64 // 全部未获得通行权的检查次数
}

// New 创建路口协调器
// 参数：ctx-任务上下文，lanes-车道管理器
// 返回：路口协调器实例
func New(ctx entity.ITaskContext, lanes *lane.LaneManager) *Junction {
	cc := ctx.RuntimeConfig().All.Crossing
	return &Junction{
		ctx:          ctx,
		lanes:        lanes,
		observers:    make([]IObserver, 0),
		serviceTime:  cc.ServiceTime,
		pollInterval: cc.PollInterval,
	}
}

// Subscribe 添加车辆通行过程的观察者
func (j *Junction) Subscribe(o IObserver) {
	j.observers = append(j.observers, o)
}

// Arrive 车辆到达
// 功能：车辆立即加入所在车道的队尾，并为其创建通行进程
// 参数：v-到达车辆，到达时间必须等于当前时间
func (j *Junction) Arrive(v *vehicle.Vehicle) {
	now := j.ctx.Clock().T
	if v.Arrival != now {
		log.Panicf("vehicle %v arrives at %v but clock is %v", v, v.Arrival, now)
	}
	l := j.lanes.Get(v.Lane)
	c := &crossing{j: j, lane: l, vehicle: v, state: crossingWaiting}
	task := j.ctx.Clock().Spawn(fmt.Sprintf("crossing-%v", v), c)
	l.Enqueue(v, task)
	for _, o := range j.observers {
		o.OnArrival(v)
	}
}

// Lane 获取车道
func (j *Junction) Lane(id entity.LaneID) *lane.Lane {
	return j.lanes.Get(id)
}

// Stats 各车道统计快照（只读）
func (j *Junction) Stats() []lane.Stats {
	return j.lanes.Stats()
}

// InFlight 已到达但尚未通过路口的车辆数（排队或正在通过）
func (j *Junction) InFlight() int {
	return lo.SumBy(j.lanes.Lanes(), func(l *lane.Lane) int { return l.InSystem() })
}

// Polls 全部未获得通行权的检查次数
func (j *Junction) Polls() uint64 {
	return j.polls
}

// ServiceTime 单车通过时长
func (j *Junction) ServiceTime() float64 {
	return j.serviceTime
}
