package clock_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
)

type record struct {
	name string
	t    float64
}

// ticker 每隔interval恢复一次，共n次
func ticker(name string, interval float64, n int, out *[]record) clock.Process {
	count := 0
	return clock.ProcessFunc(func(now float64) clock.Yield {
		*out = append(*out, record{name, now})
		count++
		if count >= n {
			return clock.Exit()
		}
		return clock.Timeout(interval)
	})
}

func TestAdvanceOrder(t *testing.T) {
	c := clock.New()
	var out []record
	c.Spawn("a", ticker("a", 2, 3, &out))
	c.Spawn("b", ticker("b", 3, 2, &out))

	for c.Advance() {
	}
	assert.Equal(t, []record{
		{"a", 0}, {"b", 0}, // 同时刻按Spawn顺序
		{"a", 2},
		{"b", 3},
		{"a", 4},
	}, out)
	assert.Equal(t, 4., c.T)
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, uint64(5), c.Resumed())
}

func TestStableTieBreak(t *testing.T) {
	c := clock.New()
	var out []record
	for _, name := range []string{"p1", "p2", "p3", "p4"} {
		c.Spawn(name, ticker(name, 1, 3, &out))
	}
	for c.Advance() {
	}
	names := make([]string, 0)
	for _, r := range out {
		names = append(names, r.name)
	}
	assert.Equal(t, []string{
		"p1", "p2", "p3", "p4",
		"p1", "p2", "p3", "p4",
		"p1", "p2", "p3", "p4",
	}, names)
}

func TestZeroDelayRunsAfterCurrentWork(t *testing.T) {
	c := clock.New()
	var out []string
	step := 0
	c.Spawn("looper", clock.ProcessFunc(func(now float64) clock.Yield {
		out = append(out, "looper")
		step++
		if step > 3 {
			return clock.Exit()
		}
		return clock.Timeout(0)
	}))
	c.Spawn("other", clock.ProcessFunc(func(now float64) clock.Yield {
		out = append(out, "other")
		return clock.Exit()
	}))
	for c.Advance() {
	}
	// 零延迟的进程让出后，已排队的other先执行
	assert.Equal(t, []string{"looper", "other", "looper", "looper", "looper"}, out)
	assert.Equal(t, 0., c.T)
}

func TestRunUntilLeavesFutureEvents(t *testing.T) {
	c := clock.New()
	var out []record
	c.Spawn("a", ticker("a", 10, 100, &out))

	c.RunUntil(25)
	assert.Equal(t, 25., c.T)
	assert.Len(t, out, 3) // 0, 10, 20
	at, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, 30., at)

	// 事件恰好等于limit时执行
	c.RunUntil(30)
	assert.Len(t, out, 4)
	assert.Equal(t, 30., c.T)

	// limit早于当前时间：不做任何事
	c.RunUntil(5)
	assert.Equal(t, 30., c.T)
	assert.Len(t, out, 4)
}

func TestPassivateActivate(t *testing.T) {
	c := clock.New()
	var out []record
	sleeper := c.Spawn("sleeper", clock.ProcessFunc(func(now float64) clock.Yield {
		out = append(out, record{"sleeper", now})
		return clock.Passivate()
	}))
	c.Spawn("waker", clock.ProcessFunc(func(now float64) clock.Yield {
		if now < 5 {
			return clock.Timeout(5)
		}
		out = append(out, record{"waker", now})
		assert.True(t, c.Activate(sleeper))
		assert.False(t, c.Activate(sleeper)) // 已在时间表中
		return clock.Exit()
	}))
	for c.Advance() {
	}
	assert.Equal(t, []record{{"sleeper", 0}, {"waker", 5}, {"sleeper", 5}}, out)
	assert.True(t, sleeper.Passive())
}

func TestNegativeDelayPanics(t *testing.T) {
	c := clock.New()
	task := c.Spawn("bad", clock.ProcessFunc(func(now float64) clock.Yield {
		return clock.Timeout(-1)
	}))
	assert.PanicsWithError(t,
		"scheduling error: task bad delay -1: delay must be a non-negative number",
		func() { c.Advance() },
	)
	assert.False(t, task.Done())

	c2 := clock.New()
	assert.Panics(t, func() {
		c2.Spawn("nan", clock.ProcessFunc(func(now float64) clock.Yield {
			return clock.Exit()
		}))
		c2.Advance()
		c2.After(math.NaN(), &clock.Task{})
	})
}

func TestExitedTaskCannotBeRescheduled(t *testing.T) {
	c := clock.New()
	task := c.Spawn("once", clock.ProcessFunc(func(now float64) clock.Yield {
		return clock.Exit()
	}))
	c.Advance()
	assert.True(t, task.Done())
	assert.False(t, c.Activate(task))
	assert.Panics(t, func() { c.After(1, task) })
}

func TestClockString(t *testing.T) {
	c := clock.New()
	c.Spawn("idle", clock.ProcessFunc(func(now float64) clock.Yield { return clock.Exit() }))
	c.RunUntil(3723.5)
	assert.Equal(t, "01:02:03", c.String())
	h, m, s := c.GetHourMinuteSecond()
	assert.Equal(t, 1, h)
	assert.Equal(t, 2, m)
	assert.InDelta(t, 3.5, s, 1e-9)
}
