package lane

import (
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"
)

// Stats 车道统计快照
type Stats struct {
	Lane              entity.LaneID `json:"lane" yaml:"lane"`
	Arrived           int           `json:"arrived" yaml:"arrived"`                         // 到达车辆数
	Admitted          int           `json:"admitted" yaml:"admitted"`                       // 获得通行权的车辆数
	Served            int           `json:"served" yaml:"served"`                           // 已通过路口的车辆数
	QueueLength       int           `json:"queue_length" yaml:"queue_length"`               // 当前排队车辆数（不含正在通过的车辆）
	Crossing          bool          `json:"crossing" yaml:"crossing"`                       // 通行资源是否被占用
	TotalWait         float64       `json:"total_wait" yaml:"total_wait"`                   // 已通过车辆的等待时长之和
	AverageWait       float64       `json:"average_wait" yaml:"average_wait"`               // 已通过车辆的平均等待时长
	MaxWait           float64       `json:"max_wait" yaml:"max_wait"`                       // 已通过车辆的最大等待时长
	StdWait           float64       `json:"std_wait" yaml:"std_wait"`                       // 已通过车辆等待时长的总体标准差
	AverageQueueDelay float64       `json:"average_queue_delay" yaml:"average_queue_delay"` // 获得通行权车辆的平均排队时长
}

// laneRuntime 车道累计统计
type laneRuntime struct {
	arrived         int
	admitted        int
	served          int
	totalWait       float64
	sumSqWait       float64 // 等待时长平方和，用于计算标准差
	maxWait         float64
	totalQueueDelay float64
}

// Lane 车道实体
// 功能：一条进口车道的排队队列与容量为1的通行资源
// 说明：
// 1. 队列严格先进先出，只有队首车辆可以获得通行权
// 2. 同一时刻至多一辆车占用通行资源
// 3. 只有信号灯允许本车道通过时才能获得通行权
type Lane struct {
	ctx entity.ITaskContext

	id       entity.LaneID
	queue    laneQueue
	crossing *vehicle.Vehicle // 正在通过路口的车辆，空闲时为nil

	runtime laneRuntime
}

// newLane 创建空车道
func newLane(ctx entity.ITaskContext, id entity.LaneID) *Lane {
	return &Lane{
		ctx:   ctx,
		id:    id,
		queue: newLaneQueue(fmt.Sprintf("lane %v queue", id)),
	}
}

// ID 车道标识
func (l *Lane) ID() entity.LaneID {
	return l.id
}

// Enqueue 车辆加入队尾
// 功能：登记到达并把车辆放入队尾，立即返回
// 参数：v-到达车辆，waiter-该车辆的通行进程，车辆成为队首时被唤醒
// 返回：入队后车辆是否位于队首
func (l *Lane) Enqueue(v *vehicle.Vehicle, waiter *clock.Task) bool {
	if v.Lane != l.id {
		log.Panicf("vehicle %v enqueued on lane %v", v, l.id)
	}
	l.runtime.arrived++
	return l.queue.push(v, waiter)
}

// IsHead 车辆是否位于队首
func (l *Lane) IsHead(v *vehicle.Vehicle) bool {
	return l.queue.head() == v
}

// Free 通行资源是否空闲
func (l *Lane) Free() bool {
	return l.crossing == nil
}

// MayCross 信号灯当前是否允许本车道通过
func (l *Lane) MayCross() bool {
	return l.ctx.Signal().MayCross(l.id)
}

// TryAdmit 尝试让队首车辆获得通行权
// 功能：车辆位于队首、通行资源空闲且信号灯允许时，将其移出队列并占用通行资源
// 参数：v-请求通行的车辆，必须位于队首
// 返回：是否获得通行权
// 算法说明：
// 1. 非队首车辆请求通行属于程序缺陷，直接panic
// 2. 资源被占用或信号灯禁止通过时返回false，不改变任何状态
// 3. 成功时记录获得通行权的时刻，并唤醒新队首车辆的通行进程
func (l *Lane) TryAdmit(v *vehicle.Vehicle) bool {
	if !l.IsHead(v) {
		log.Panicf("vehicle %v is not the head of lane %v (head=%v)", v, l.id, l.queue.head())
	}
	if !l.Free() || !l.MayCross() {
		return false
	}
	now := l.ctx.Clock().T
	admitted, next := l.queue.pop()
	admitted.Admission = now
	l.crossing = admitted
	l.runtime.admitted++
	l.runtime.totalQueueDelay += admitted.QueueDelay()
	if next != nil {
		l.ctx.Clock().Activate(next)
	}
	return true
}

// Release 车辆通过路口，释放通行资源
// 功能：记录离开时刻与等待时长并累计统计
// 参数：v-正在通过路口的车辆
func (l *Lane) Release(v *vehicle.Vehicle) {
	if l.crossing != v {
		log.Panicf("vehicle %v releases lane %v held by %v", v, l.id, l.crossing)
	}
	v.Depart(l.ctx.Clock().T)
	l.crossing = nil
	l.runtime.served++
	l.runtime.totalWait += v.Wait
	l.runtime.sumSqWait += v.Wait * v.Wait
	l.runtime.maxWait = math.Max(l.runtime.maxWait, v.Wait)
}

// QueueLength 当前排队车辆数（不含正在通过的车辆）
func (l *Lane) QueueLength() int {
	return l.queue.len()
}

// Crossing 正在通过路口的车辆，没有时返回nil
func (l *Lane) Crossing() *vehicle.Vehicle {
	return l.crossing
}

// Waiting 按到达顺序返回排队中的车辆
func (l *Lane) Waiting() []*vehicle.Vehicle {
	return l.queue.list.Values()
}

// InSystem 已到达但尚未离开的车辆数
func (l *Lane) InSystem() int {
	n := l.queue.len()
	if l.crossing != nil {
		n++
	}
	return n
}

// Stats 车道统计快照（只读）
func (l *Lane) Stats() Stats {
	s := Stats{
		Lane:        l.id,
		Arrived:     l.runtime.arrived,
		Admitted:    l.runtime.admitted,
		Served:      l.runtime.served,
		QueueLength: l.queue.len(),
		Crossing:    l.crossing != nil,
		TotalWait:   l.runtime.totalWait,
		MaxWait:     l.runtime.maxWait,
	}
	if s.Served > 0 {
		n := float64(s.Served)
		s.AverageWait = s.TotalWait / n
		// 舍入误差可能使方差略小于0
		s.StdWait = math.Sqrt(math.Max(0, l.runtime.sumSqWait/n-s.AverageWait*s.AverageWait))
	}
	if s.Admitted > 0 {
		s.AverageQueueDelay = l.runtime.totalQueueDelay / float64(s.Admitted)
	}
	return s
}

func (l *Lane) String() string {
	return fmt.Sprintf("Lane{id=%v, queue=%d, crossing=%v}", l.id, l.queue.len(), l.crossing)
}
