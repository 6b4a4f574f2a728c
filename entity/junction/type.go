package junction

import "github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"

// IObserver 车辆通行过程的观察者
// 说明：回调在仿真进程内同步执行，不得阻塞，也不得修改车辆
type IObserver interface {
	OnArrival(v *vehicle.Vehicle)   // 车辆到达并加入队尾
	OnAdmission(v *vehicle.Vehicle) // 车辆获得通行权
	OnDeparture(v *vehicle.Vehicle) // 车辆通过路口
}

// ObserverFuncs 函数形式的观察者，未设置的回调忽略
type ObserverFuncs struct {
	Arrival   func(v *vehicle.Vehicle)
	Admission func(v *vehicle.Vehicle)
	Departure func(v *vehicle.Vehicle)
}

func (o ObserverFuncs) OnArrival(v *vehicle.Vehicle) {
	if o.Arrival != nil {
		o.Arrival(v)
	}
}

func (o ObserverFuncs) OnAdmission(v *vehicle.Vehicle) {
	if o.Admission != nil {
		o.Admission(v)
	}
}

func (o ObserverFuncs) OnDeparture(v *vehicle.Vehicle) {
	if o.Departure != nil {
		o.Departure(v)
	}
}
