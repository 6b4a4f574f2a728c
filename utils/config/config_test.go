package config_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equal(t, 76., c.Signal.CycleLength())
	assert.Equal(t, config.DefaultServiceTime, c.Crossing.ServiceTime)
	assert.Equal(t, config.DefaultPollInterval, c.Crossing.PollInterval)
	assert.False(t, c.Signal.YellowPermitsCrossing)

	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, 76., rc.CycleLength)
	assert.Equal(t, c.Control, rc.C)
}

func TestScenario(t *testing.T) {
	c, err := config.Scenario("optimised")
	require.NoError(t, err)
	// 28+3+28+3+14
	assert.Equal(t, 76., c.Signal.CycleLength())

	c, err = config.Scenario("asymmetric")
	require.NoError(t, err)
	assert.Equal(t, 0.4, c.Arrival.RateA)

	_, err = config.Scenario("rush-hour")
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *config.Config)
		field  string
	}{
		{"negative green", func(c *config.Config) { c.Signal.GreenA = -1 }, "signal.green_a"},
		{"nan yellow", func(c *config.Config) { c.Signal.Yellow = math.NaN() }, "signal.yellow"},
		{"all zero cycle", func(c *config.Config) {
			c.Signal = config.Signal{}
		}, "signal"},
		{"zero rate", func(c *config.Config) { c.Arrival.RateB = 0 }, "arrival.rate_b"},
		{"negative rate", func(c *config.Config) { c.Arrival.RateA = -0.3 }, "arrival.rate_a"},
		{"negative service", func(c *config.Config) { c.Crossing.ServiceTime = -1 }, "crossing.service_time"},
		{"negative poll", func(c *config.Config) { c.Crossing.PollInterval = -0.1 }, "crossing.poll_interval"},
		{"zero poll", func(c *config.Config) { c.Crossing.PollInterval = 0 }, "crossing.poll_interval"},
		{"negative duration", func(c *config.Config) { c.Control.Duration = -5 }, "control.duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := config.Default()
			tc.mutate(&c)
			_, err := config.NewRuntimeConfig(c)
			require.Error(t, err)
			var cfgErr *config.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestValidateAllowIdle(t *testing.T) {
	c := config.Default()
	c.Arrival.RateB = 0
	c.Arrival.AllowIdle = true
	assert.NoError(t, config.Validate(c))

	// 单个相位为0是合法的
	c = config.Default()
	c.Signal.Pedestrian = 0
	assert.NoError(t, config.Validate(c))
}

func TestExplicitZeroKept(t *testing.T) {
	c := config.Default()
	c.Crossing.ServiceTime = 0
	c.Control.Duration = 0
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, 0., rc.All.Crossing.ServiceTime)
	assert.Equal(t, 0., rc.C.Duration)

	// YAML中显式写出的0同样保留
	c, err = config.Load([]byte("crossing:\n  service_time: 0\n  poll_interval: 0.5\ncontrol:\n  duration: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0., c.Crossing.ServiceTime)
	assert.Equal(t, 0.5, c.Crossing.PollInterval)
	assert.Equal(t, 0., c.Control.Duration)
	rc, err = config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, 0., rc.All.Crossing.ServiceTime)
}

func TestLoad(t *testing.T) {
	data := []byte(`
seed: 7
signal:
  green_a: 20
  green_b: 20
  yellow: 2
  pedestrian: 10
  yellow_permits_crossing: true
arrival:
  rate_a: 0.5
  rate_b: 0.1
control:
  duration: 1000
`)
	c, err := config.Load(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), c.Seed)
	assert.Equal(t, 54., c.Signal.CycleLength())
	assert.True(t, c.Signal.YellowPermitsCrossing)
	assert.Equal(t, 1000., c.Control.Duration)
	// 未给出的字段使用默认值
	assert.Equal(t, config.DefaultServiceTime, c.Crossing.ServiceTime)
	assert.Equal(t, float64(config.DefaultHeartbeat), c.Control.Heartbeat)

	_, err = config.Load([]byte("seed: 1\nunknown_field: 2\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arrival:\n  rate_a: 2.0\n  rate_b: 0.3\n"), 0o644))
	c, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, c.Arrival.RateA)
	assert.Equal(t, 30., c.Signal.GreenA)

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
