package clock

import "fmt"

type yieldKind int

const (
	yieldTimeout   yieldKind = iota // 指定时长后恢复
	yieldPassivate                  // 挂起，直到被其他进程Activate
	yieldExit                       // 进程结束
)

// Yield 进程让出控制权时向调度器提出的请求
type Yield struct {
	kind  yieldKind
	delay float64
}

// Timeout 在delay秒后恢复本进程（delay必须>=0）
func Timeout(delay float64) Yield {
	return Yield{kind: yieldTimeout, delay: delay}
}

// Passivate 挂起本进程，不设定恢复时间
func Passivate() Yield {
	return Yield{kind: yieldPassivate}
}

// Exit 结束本进程
func Exit() Yield {
	return Yield{kind: yieldExit}
}

func (y Yield) String() string {
	switch y.kind {
	case yieldTimeout:
		return fmt.Sprintf("timeout(%v)", y.delay)
	case yieldPassivate:
		return "passivate"
	default:
		return "exit"
	}
}

// Process 可恢复的仿真进程
// 功能：每次被调度器恢复时执行一步，并以Yield说明下一次何时恢复
// 说明：进程自己保存恢复所需的状态，调度器不使用协程
type Process interface {
	Resume(now float64) Yield
}

// ProcessFunc 函数形式的Process
type ProcessFunc func(now float64) Yield

func (f ProcessFunc) Resume(now float64) Yield {
	return f(now)
}

type taskState int

const (
	taskPassive   taskState = iota // 未在等待队列中
	taskScheduled                  // 已登记唤醒时间
	taskRunning                    // 正在执行
	taskDone                       // 已结束
)

// Task 调度器中的进程句柄
type Task struct {
	name  string
	proc  Process
	state taskState
}

// Name 进程名
func (t *Task) Name() string {
	return t.name
}

// Done 进程是否已结束
func (t *Task) Done() bool {
	return t.state == taskDone
}

// Passive 进程是否处于挂起状态（等待Activate）
func (t *Task) Passive() bool {
	return t.state == taskPassive
}

func (t *Task) String() string {
	return fmt.Sprintf("Task{%s}", t.name)
}
