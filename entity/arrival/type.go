package arrival

import "github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"

// 依赖倒置，表达到达过程对路口协调器的接口需求
type IIntersection interface {
	Arrive(v *vehicle.Vehicle) // 新车辆到达，由路口负责排队与通行
}
