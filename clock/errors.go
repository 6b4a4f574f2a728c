package clock

import "fmt"

// SchedulingError 调度错误
// 功能：描述内部请求的非法唤醒（负时长、NaN、重复调度已结束的进程等）
// 说明：属于程序缺陷，调度器直接panic，不做截断或恢复
type SchedulingError struct {
	Task   string  // 出错的进程名
	Delay  float64 // 请求的时长
	Reason string  // 出错原因
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("scheduling error: task %s delay %v: %s", e.Task, e.Delay, e.Reason)
}
