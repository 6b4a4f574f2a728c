package trafficlight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/clock"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/trafficlight"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

func defaultSignal() config.Signal {
	return config.Signal{GreenA: 30, GreenB: 25, Yellow: 3, Pedestrian: 15}
}

func TestInitialPhase(t *testing.T) {
	clk := clock.New()
	tl := trafficlight.NewLocalTrafficLight(clk, defaultSignal())
	assert.Equal(t, entity.PhaseAGreen, tl.CurrentPhase())
	assert.True(t, tl.MayCross(entity.LaneA))
	assert.False(t, tl.MayCross(entity.LaneB))
	assert.Equal(t, 0, tl.CompletedCycles())
	assert.Equal(t, 76., tl.CycleLength())
	assert.Equal(t, 30., tl.RemainingTime())
}

func TestPhaseSequence(t *testing.T) {
	clk := clock.New()
	tl := trafficlight.NewLocalTrafficLight(clk, defaultSignal())
	tl.Start()

	cases := []struct {
		at    float64
		phase entity.Phase
		a, b  bool
	}{
		{0, entity.PhaseAGreen, true, false},
		{29.9, entity.PhaseAGreen, true, false},
		{31, entity.PhaseAYellow, false, false},
		{34, entity.PhaseBGreen, false, true},
		{58.5, entity.PhaseBYellow, false, false},
		{62, entity.PhasePedestrian, false, false},
		{75.9, entity.PhasePedestrian, false, false},
	}
	for _, c := range cases {
		clk.RunUntil(c.at)
		assert.Equal(t, c.phase, tl.CurrentPhase(), "t=%v", c.at)
		assert.Equal(t, c.a, tl.MayCross(entity.LaneA), "t=%v", c.at)
		assert.Equal(t, c.b, tl.MayCross(entity.LaneB), "t=%v", c.at)
	}
	assert.InDelta(t, 0.1, tl.RemainingTime(), 1e-9)
}

func TestCycleWrap(t *testing.T) {
	clk := clock.New()
	tl := trafficlight.NewLocalTrafficLight(clk, defaultSignal())
	tl.Start()

	clk.RunUntil(76)
	assert.Equal(t, entity.PhaseAGreen, tl.CurrentPhase())
	assert.Equal(t, 1, tl.CompletedCycles())

	clk.RunUntil(76 * 3)
	assert.Equal(t, 3, tl.CompletedCycles())

	trs := tl.Transitions()
	require.Len(t, trs, 3*entity.NumPhases+1)
	for i, tr := range trs {
		assert.Equal(t, entity.Phase(i%entity.NumPhases), tr.Phase)
		assert.Equal(t, i/entity.NumPhases, tr.Cycle)
	}
	assert.Equal(t, 76., trs[entity.NumPhases].T)
}

func TestMutualExclusion(t *testing.T) {
	clk := clock.New()
	tl := trafficlight.NewLocalTrafficLight(clk, defaultSignal())
	tl.Start()
	for now := 0.; now < 500; now += 0.5 {
		clk.RunUntil(now)
		assert.False(t, tl.MayCross(entity.LaneA) && tl.MayCross(entity.LaneB), "t=%v", now)
	}
}

func TestYellowPermitsCrossing(t *testing.T) {
	s := defaultSignal()
	s.YellowPermitsCrossing = true
	clk := clock.New()
	tl := trafficlight.NewLocalTrafficLight(clk, s)
	tl.Start()

	clk.RunUntil(31)
	assert.Equal(t, entity.PhaseAYellow, tl.CurrentPhase())
	assert.True(t, tl.MayCross(entity.LaneA))
	assert.False(t, tl.MayCross(entity.LaneB))
	assert.InDelta(t, 33./76, tl.GreenFraction(entity.LaneA), 1e-9)

	clk.RunUntil(62)
	assert.False(t, tl.MayCross(entity.LaneA))
	assert.False(t, tl.MayCross(entity.LaneB))
}

func TestSubscribe(t *testing.T) {
	clk := clock.New()
	tl := trafficlight.NewLocalTrafficLight(clk, defaultSignal())
	var seen []entity.Phase
	tl.Subscribe(func(tr entity.PhaseTransition) { seen = append(seen, tr.Phase) })
	tl.Start()
	clk.RunUntil(40)
	assert.Equal(t, []entity.Phase{entity.PhaseAGreen, entity.PhaseAYellow, entity.PhaseBGreen}, seen)
	assert.InDelta(t, 30./76, tl.GreenFraction(entity.LaneA), 1e-9)
	assert.Panics(t, tl.Start)
}
