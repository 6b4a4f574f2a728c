package arrival

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

var log = logrus.WithField("module", "arrival")

// Generator 单车道泊松到达过程
// 功能：按指数分布的到达间隔不断产生车辆，交给路口协调器处理
// 说明：
// 1. 每条车道一个实例，各自持有独立的随机数引擎，修改一条车道的到达率不影响另一条车道的到达序列
// 2. 序列无限且不可重启，车辆ID在车道内从1开始单调递增
// 3. 到达率为0时进程直接结束，不会产生任何车辆
type Generator struct {
	clock        *clock.Clock
	lane         entity.LaneID
	rate         float64
	rng          *randengine.Engine
	intersection IIntersection
	task         *clock.Task

	started     bool
	nextID      int32
	lastArrival float64
}

// New 创建到达过程
// 参数：clk-仿真时钟，lane-车道，rate-到达率λ（辆/秒），rng-随机数引擎，intersection-接收到达车辆的路口
// 返回：到达过程实例，需调用Start后开始运行
func New(
	clk *clock.Clock,
	lane entity.LaneID,
	rate float64,
	rng *randengine.Engine,
	intersection IIntersection,
) *Generator {
	if rate < 0 {
		log.Panicf("negative arrival rate %v on lane %v", rate, lane)
	}
	return &Generator{
		clock:        clk,
		lane:         lane,
		rate:         rate,
		rng:          rng,
		intersection: intersection,
		nextID:       1,
	}
}

// Start 在时钟上启动到达进程
func (g *Generator) Start() {
	if g.task != nil {
		log.Panicf("arrival generator of lane %v already started", g.lane)
	}
	g.task = g.clock.Spawn(fmt.Sprintf("arrival-%v", g.lane), g)
}

// Resume 进程恢复
// 算法说明：
// 1. 第一次恢复时只抽取第一个到达间隔（到达率为0时结束进程）
// 2. 之后每次恢复在当前时刻生成一辆车并交给路口
// 3. 抽取下一个到达间隔g~Exp(λ)，在g秒后再次恢复
func (g *Generator) Resume(now float64) clock.Yield {
	if !g.started {
		g.started = true
		if g.rate == 0 {
			log.Infof("lane %v has zero arrival rate, no vehicle will arrive", g.lane)
			return clock.Exit()
		}
	} else {
		v := vehicle.New(g.nextID, g.lane, now)
		g.nextID++
		g.lastArrival = now
		log.Tracef("[%.2f] vehicle %v arrives", now, v)
		g.intersection.Arrive(v)
	}
	return clock.Timeout(g.rng.Exponential(g.rate))
}

// Lane 所属车道
func (g *Generator) Lane() entity.LaneID {
	return g.lane
}

// Rate 到达率
func (g *Generator) Rate() float64 {
	return g.rate
}

// Generated 已产生的车辆数
func (g *Generator) Generated() int {
	return int(g.nextID - 1)
}

// LastArrival 最近一辆车的到达时刻，尚无车辆到达时返回0
func (g *Generator) LastArrival() float64 {
	return g.lastArrival
}

// Done 进程是否已结束（仅到达率为0时发生）
func (g *Generator) Done() bool {
	return g.task != nil && g.task.Done()
}
