package clock

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/container"
)

var log = logrus.WithField("module", "clock")

// Clock 仿真虚拟时钟与事件调度器
// 功能：维护当前仿真时间与所有挂起进程的唤醒时间表，按时间顺序逐个恢复进程
// 说明：
// 1. 单线程协作式调度：同一时刻只有一个进程在执行，直到它让出控制权
// 2. 唤醒时间相同的进程按登记顺序恢复（稳定排序），保证同种子结果可复现
// 3. 时间单调不减，进程只会在请求的唤醒时间或之后恢复
type Clock struct {
	T float64 // 当前时间（秒）

	queue   *container.PriorityQueue[*Task] // 唤醒时间表
	resumed uint64                          // 已执行的恢复次数
}

// New 创建时间为0的时钟
func New() *Clock {
	return &Clock{
		queue: container.NewPriorityQueue[*Task](),
	}
}

// Spawn 注册新进程并安排在当前时刻执行
// 功能：创建进程句柄，等价于After(0, task)
// 参数：name-进程名（用于日志与错误信息），proc-进程实现
// 返回：进程句柄
func (c *Clock) Spawn(name string, proc Process) *Task {
	t := &Task{name: name, proc: proc, state: taskPassive}
	c.After(0, t)
	return t
}

// After 登记进程在当前时间delay秒后恢复
// 功能：对应scheduleAfter，delay==0时在所有已登记的同时刻进程之后恢复
// 参数：delay-延迟时长，task-进程句柄
// 说明：delay为负数或NaN、进程已结束或已在时间表中都属于程序缺陷，直接panic
func (c *Clock) After(delay float64, task *Task) {
	if math.IsNaN(delay) || delay < 0 {
		c.fail(task, delay, "delay must be a non-negative number")
	}
	switch task.state {
	case taskDone:
		c.fail(task, delay, "task already exited")
	case taskScheduled:
		c.fail(task, delay, "task already scheduled")
	}
	task.state = taskScheduled
	c.queue.HeapPush(task, c.T+delay)
}

// Activate 唤醒挂起（Passivate）的进程，使其在当前时刻排队恢复
// 返回：进程原本处于挂起状态则返回true，否则不做任何事并返回false
func (c *Clock) Activate(task *Task) bool {
	if task.state != taskPassive {
		return false
	}
	c.After(0, task)
	return true
}

// Advance 推进到最早的唤醒时间并恢复该进程
// 功能：弹出最早（同时刻则最先登记）的唤醒事件，设置当前时间并执行一步
// 返回：没有待恢复的进程时返回false
// 算法说明：
// 1. 弹出时间表头部事件，时钟设为事件时间
// 2. 执行进程的Resume
// 3. 根据Yield重新登记（Timeout）、挂起（Passivate）或结束（Exit）
func (c *Clock) Advance() bool {
	if c.queue.Len() == 0 {
		return false
	}
	task, at := c.queue.HeapPop()
	if at < c.T {
		// 不可能出现：After保证唤醒时间不早于登记时刻
		c.fail(task, at-c.T, "wake-up time earlier than clock")
	}
	c.T = at
	c.resumed++
	task.state = taskRunning
	y := task.proc.Resume(c.T)
	switch y.kind {
	case yieldTimeout:
		task.state = taskPassive
		c.After(y.delay, task)
	case yieldPassivate:
		task.state = taskPassive
	case yieldExit:
		task.state = taskDone
	}
	return true
}

// RunUntil 推进仿真直到limit
// 功能：不断执行唤醒时间<=limit的事件，然后把时钟设为limit
// 参数：limit-绝对时间上限
// 说明：limit之后的事件保持不变，可以继续调用RunUntil延长仿真；limit早于当前时间时不做任何事
func (c *Clock) RunUntil(limit float64) {
	if math.IsNaN(limit) || limit < c.T {
		return
	}
	for {
		at, ok := c.Peek()
		if !ok || at > limit {
			break
		}
		c.Advance()
	}
	c.T = limit
}

// Peek 查看下一个唤醒时间
func (c *Clock) Peek() (at float64, ok bool) {
	if c.queue.Len() == 0 {
		return 0, false
	}
	_, at = c.queue.First()
	return at, true
}

// Pending 时间表中等待恢复的进程数
func (c *Clock) Pending() int {
	return c.queue.Len()
}

// Resumed 已执行的恢复次数
func (c *Clock) Resumed() uint64 {
	return c.resumed
}

func (c *Clock) fail(task *Task, delay float64, reason string) {
	err := &SchedulingError{Task: task.name, Delay: delay, Reason: reason}
	log.WithField("t", c.T).Error(err)
	panic(err)
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串（HH:MM:SS）
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(s))
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
