package junction

import (
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/lane"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"
)

type crossingState int

const (
	crossingWaiting  crossingState = iota // 排队等待通行权
	crossingOccupied                      // 占用通行资源通过路口
)

// crossing 单辆车的通行进程
// 功能：从到达开始等待通行权，获得后占用通行资源固定时长，然后离开
// 说明：
// 1. 非队首车辆挂起，直到前车获得通行权时被车道唤醒
// 2. 队首车辆每隔pollInterval检查一次信号灯与通行资源
type crossing struct {
	j       *Junction
	lane    *lane.Lane
	vehicle *vehicle.Vehicle
	state   crossingState
	polls   int // 未获得通行权的检查次数
}

// Resume 进程恢复
// 算法说明：
// 1. 等待状态：不是队首则挂起；是队首则尝试获得通行权，失败后在检查间隔后重试
// 2. 获得通行权后在serviceTime后恢复
// 3. 占用状态：释放通行资源，记录离开时间与等待时长，进程结束
func (c *crossing) Resume(now float64) clock.Yield {
	switch c.state {
	case crossingWaiting:
		if !c.lane.IsHead(c.vehicle) {
			return clock.Passivate()
		}
		if !c.lane.TryAdmit(c.vehicle) {
			c.polls++
			c.j.polls++
			return clock.Timeout(c.j.pollInterval)
		}
		c.state = crossingOccupied
		log.Tracef("[%.2f] vehicle %v admitted after %d polls", now, c.vehicle, c.polls)
		for _, o := range c.j.observers {
			o.OnAdmission(c.vehicle)
		}
		return clock.Timeout(c.j.serviceTime)
	case crossingOccupied:
		c.lane.Release(c.vehicle)
		log.Tracef("[%.2f] vehicle %v departs, wait %.2f", now, c.vehicle, c.vehicle.Wait)
		for _, o := range c.j.observers {
			o.OnDeparture(c.vehicle)
		}
		return clock.Exit()
	default:
		log.Panicf("bad crossing state %v of vehicle %v", c.state, c.vehicle)
		return clock.Exit()
	}
}
