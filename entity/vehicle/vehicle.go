package vehicle

import (
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// Vehicle 车辆
// 功能：记录单个车辆从到达路口到通过路口的全部时间信息
// 说明：到达时创建，通过路口后从所有队列中移除
type Vehicle struct {
	ID        int32         // 车道内唯一ID，从1开始递增
	Lane      entity.LaneID // 所在车道
	Arrival   float64       // 到达时间
	Admission float64       // 获得通行权（进入路口）的时间，未获得时为NaN
	Departure float64       // 离开路口的时间，未离开时为NaN
	Wait      float64       // 等待时长 = Departure - Arrival
}

// New 创建到达时刻为arrival的车辆
func New(id int32, lane entity.LaneID, arrival float64) *Vehicle {
	return &Vehicle{
		ID:        id,
		Lane:      lane,
		Arrival:   arrival,
		Admission: math.NaN(),
		Departure: math.NaN(),
	}
}

// Admitted 是否已获得通行权
func (v *Vehicle) Admitted() bool {
	return !math.IsNaN(v.Admission)
}

// Departed 是否已离开路口
func (v *Vehicle) Departed() bool {
	return !math.IsNaN(v.Departure)
}

// QueueDelay 排队时长（到达至获得通行权），未获得通行权时返回0
func (v *Vehicle) QueueDelay() float64 {
	if !v.Admitted() {
		return 0
	}
	return v.Admission - v.Arrival
}

// Depart 记录离开时间并计算等待时长
// 说明：离开时间不得早于到达时间
func (v *Vehicle) Depart(t float64) {
	if t < v.Arrival {
		log.Panicf("vehicle %v departs at %v before its arrival %v", v, t, v.Arrival)
	}
	v.Departure = t
	v.Wait = t - v.Arrival
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("%v-%d", v.Lane, v.ID)
}
