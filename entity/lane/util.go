package lane

import (
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
)

// queueNode 排队节点，Extra为等待该车辆获得通行权的进程
type queueNode = container.ListNode[*vehicle.Vehicle, *clock.Task]

// laneQueue 车道排队队列
// 功能：按到达顺序保存等待通过路口的车辆，尾部插入，头部移除
// 说明：节点的Extra保存车辆所属的通行进程，车辆成为队首时用于唤醒该进程
type laneQueue struct {
	list  *container.List[*vehicle.Vehicle, *clock.Task]
	nodes map[*vehicle.Vehicle]*queueNode
}

// newLaneQueue 创建空的排队队列
// 参数：id-队列标识符，用于调试和日志
func newLaneQueue(id string) laneQueue {
	return laneQueue{
		list:  container.NewList[*vehicle.Vehicle, *clock.Task](id),
		nodes: make(map[*vehicle.Vehicle]*queueNode),
	}
}

// push 车辆入队
// 返回：入队后车辆是否位于队首
func (q *laneQueue) push(v *vehicle.Vehicle, waiter *clock.Task) bool {
	if _, ok := q.nodes[v]; ok {
		log.Panicf("vehicle %v already in %v", v, q.list)
	}
	node := &queueNode{S: v.Arrival, Value: v, Extra: waiter}
	q.list.PushBack(node)
	q.nodes[v] = node
	return q.list.First() == node
}

// head 队首车辆，队列为空时返回nil
func (q *laneQueue) head() *vehicle.Vehicle {
	if node := q.list.First(); node != nil {
		return node.Value
	}
	return nil
}

// pop 移除队首车辆
// 返回：被移除的车辆与新队首的等待进程（没有新队首时为nil）
func (q *laneQueue) pop() (*vehicle.Vehicle, *clock.Task) {
	node := q.list.PopFront()
	if node == nil {
		return nil, nil
	}
	delete(q.nodes, node.Value)
	if next := q.list.First(); next != nil {
		return node.Value, next.Extra
	}
	return node.Value, nil
}

func (q *laneQueue) len() int {
	return q.list.Len()
}
