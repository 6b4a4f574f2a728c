package entity

import "fmt"

// LaneID 车道标识
type LaneID int32

// 路口的两条车道
const (
	LaneA LaneID = 0 // A车道
	LaneB LaneID = 1 // B车道
)

// Lanes 全部车道（按ID顺序）
var Lanes = []LaneID{LaneA, LaneB}

func (l LaneID) String() string {
	switch l {
	case LaneA:
		return "A"
	case LaneB:
		return "B"
	default:
		return fmt.Sprintf("Lane(%d)", int32(l))
	}
}

// Phase 信号相位
// 说明：周期固定为 AGreen -> AYellow -> BGreen -> BYellow -> Pedestrian -> AGreen
type Phase int32

const (
	PhaseAGreen     Phase = iota // A车道绿灯
	PhaseAYellow                 // A车道黄灯
	PhaseBGreen                  // B车道绿灯
	PhaseBYellow                 // B车道黄灯
	PhasePedestrian              // 行人相位（两条车道均为红灯）

	NumPhases = 5
)

func (p Phase) String() string {
	switch p {
	case PhaseAGreen:
		return "A-Green"
	case PhaseAYellow:
		return "A-Yellow"
	case PhaseBGreen:
		return "B-Green"
	case PhaseBYellow:
		return "B-Yellow"
	case PhasePedestrian:
		return "Pedestrian"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// Next 周期中的下一个相位
func (p Phase) Next() Phase {
	return (p + 1) % NumPhases
}

// PhaseTransition 一次相位切换记录
type PhaseTransition struct {
	T     float64 // 切换时刻
	Phase Phase   // 进入的相位
	Cycle int     // 切换后已完成的周期数
}

// entity/trafficlight的依赖倒置，供车道与路口读取信号灯状态
type ISignal interface {
	MayCross(lane LaneID) bool // 当前是否允许该车道车辆通过
	CurrentPhase() Phase       // 当前相位
	CompletedCycles() int      // 已完成的周期数
	RemainingTime() float64    // 当前相位剩余时长
}
