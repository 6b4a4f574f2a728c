package randengine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/randengine"
)

func TestExponentialMean(t *testing.T) {
	e := randengine.New(7)
	const n = 20000
	sum := 0.
	for i := 0; i < n; i++ {
		x := e.Exponential(0.3)
		assert.GreaterOrEqual(t, x, 0.)
		sum += x
	}
	// 期望1/0.3≈3.33，标准误约0.024
	assert.InDelta(t, 1/0.3, sum/n, 0.15)
}

func TestExponentialZeroRate(t *testing.T) {
	e := randengine.New(1)
	assert.True(t, math.IsInf(e.Exponential(0), 1))
	assert.True(t, math.IsInf(e.Exponential(-1), 1))
}

func TestSameSeedSameSequence(t *testing.T) {
	a := randengine.New(42)
	b := randengine.New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Exponential(2), b.Exponential(2))
	}
	c := randengine.New(43)
	assert.NotEqual(t, a.Float64(), c.Float64())
}
