package lane

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
)

// LaneManager Lane管理器
// 功能：持有路口的全部进口车道，提供查找与统计功能
type LaneManager struct {
	ctx entity.ITaskContext

	data  map[entity.LaneID]*Lane
	lanes []*Lane
}

// NewManager 创建Lane管理器实例
// 功能：为每条车道创建空的排队队列与通行资源
// 参数：ctx-任务上下文
// 返回：新创建的Lane管理器实例
func NewManager(ctx entity.ITaskContext) *LaneManager {
	lanes := lo.Map(entity.Lanes, func(id entity.LaneID, _ int) *Lane {
		return newLane(ctx, id)
	})
	return &LaneManager{
		ctx:   ctx,
		lanes: lanes,
		data: lo.SliceToMap(lanes, func(l *Lane) (entity.LaneID, *Lane) {
			return l.id, l
		}),
	}
}

// Get 根据ID获取Lane实例，不存在则panic
func (m *LaneManager) Get(id entity.LaneID) *Lane {
	if lane, ok := m.data[id]; !ok {
		log.Panicf("no id %v in lane data", id)
		return nil
	} else {
		return lane
	}
}

// GetOrError 根据ID获取Lane实例（带错误处理）
// 参数：id-车道标识
// 返回：Lane实例和错误信息，如果不存在则返回nil和错误
func (m *LaneManager) GetOrError(id entity.LaneID) (*Lane, error) {
	if lane, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %v in lane data", id)
	} else {
		return lane, nil
	}
}

// Lanes 全部车道（按ID顺序）
func (m *LaneManager) Lanes() []*Lane {
	return m.lanes
}

// Stats 全部车道的统计快照
func (m *LaneManager) Stats() []Stats {
	return lo.Map(m.lanes, func(l *Lane, _ int) Stats { return l.Stats() })
}
