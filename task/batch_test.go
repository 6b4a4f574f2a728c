package task_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/task"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

func TestRunBatch(t *testing.T) {
	c := config.Default()
	c.Control.Duration = 300
	seeds := task.Seeds(10, 4)
	assert.Equal(t, []uint64{10, 11, 12, 13}, seeds)

	replicas, err := task.RunBatch(context.Background(), c, seeds, 2)
	require.NoError(t, err)
	require.Len(t, replicas, 4)
	for i, r := range replicas {
		assert.Equal(t, seeds[i], r.Seed)
		assert.Equal(t, 300., r.Snapshot.T)
	}
	assert.Len(t, lo.Uniq(lo.Map(replicas, func(r task.Replica, _ int) string { return r.Snapshot.RunID })), 4)

	// 与单独运行的结果一致
	c.Seed = 12
	single := newContext(t, c)
	single.RunUntil(300)
	assert.Equal(t, single.Snapshot().Lanes, replicas[2].Snapshot.Lanes)

	mean := task.MeanAverageWait(replicas, entity.LaneA)
	assert.Greater(t, mean, 0.)
	assert.Equal(t, 0., task.MeanAverageWait(nil, entity.LaneA))
}

func TestRunBatchErrors(t *testing.T) {
	c := config.Default()
	c.Arrival.RateA = -1
	_, err := task.RunBatch(context.Background(), c, task.Seeds(1, 3), 0)
	var cfgErr *config.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = task.RunBatch(canceled, config.Default(), task.Seeds(1, 3), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
