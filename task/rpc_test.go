package task_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/intersection-sim/task"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
)

func newRPC(t *testing.T) *task.Client {
	sim := newContext(t, config.Default())
	mux := http.NewServeMux()
	mux.Handle(task.NewServer(sim).Handler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return task.NewClient(srv.Client(), srv.URL)
}

func TestRPC(t *testing.T) {
	client := newRPC(t)
	ctx := context.Background()

	now, err := client.Now(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0., now)

	snap, err := client.Advance(ctx, 76)
	require.NoError(t, err)
	assert.Equal(t, 76., snap.Fields["t"].GetNumberValue())
	assert.Equal(t, 1., snap.Fields["completed_cycles"].GetNumberValue())
	assert.Equal(t, "A-Green", snap.Fields["phase"].GetStringValue())
	lanes := snap.Fields["lanes"].GetListValue().GetValues()
	require.Len(t, lanes, 2)
	assert.Equal(t, "A", lanes[0].GetStructValue().Fields["lane"].GetStringValue())
	assert.Contains(t, lanes[0].GetStructValue().Fields, "std_wait")

	snap, err = client.RunUntil(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 100., snap.Fields["t"].GetNumberValue())

	// 早于当前时刻：不推进
	snap, err = client.RunUntil(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 100., snap.Fields["t"].GetNumberValue())

	snap, err = client.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Fields["run_id"].GetStringValue())

	now, err = client.Now(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100., now)
}

func TestRPCInvalidArgument(t *testing.T) {
	client := newRPC(t)
	ctx := context.Background()

	_, err := client.Advance(ctx, -1)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	_, err = client.Advance(ctx, math.Inf(1))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	_, err = client.RunUntil(ctx, math.NaN())
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	_, err = client.RunUntil(ctx, math.Inf(1))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	now, err := client.Now(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0., now)
}
