package task

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"golang.org/x/sync/errgroup"
)

// Replica 一次重复实验的结果
type Replica struct {
	Seed     uint64   `json:"seed" yaml:"seed"`
	Snapshot Snapshot `json:"snapshot" yaml:"snapshot"`
}

// Seeds 从base开始的n个连续种子
func Seeds(base uint64, n int) []uint64 {
	return lo.Times(n, func(i int) uint64 { return base + uint64(i) })
}

// RunBatch 以多个随机数种子并行运行同一配置
// 功能：每个种子创建独立的仿真上下文并运行到配置的仿真时长
// 参数：ctx-取消控制，c-配置（Seed字段被覆盖），seeds-种子列表，parallelism-最大并行数（<=0表示不限制）
// 返回：与seeds顺序一致的结果；任一运行失败或ctx取消时返回错误
func RunBatch(ctx context.Context, c config.Config, seeds []uint64, parallelism int) ([]Replica, error) {
	results := make([]Replica, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, seed := range seeds {
		g.Go(func() error {
			cc := c
			cc.Seed = seed
			sim, err := NewContext(cc)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			if err := sim.RunUntilContext(gctx, sim.runtimeConfig.C.Duration); err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = Replica{Seed: seed, Snapshot: sim.Snapshot()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MeanAverageWait 各次实验中某车道平均等待时长的均值
func MeanAverageWait(replicas []Replica, id entity.LaneID) float64 {
	if len(replicas) == 0 {
		return 0
	}
	return lo.SumBy(replicas, func(r Replica) float64 { return r.Snapshot.Lane(id).AverageWait }) / float64(len(replicas))
}
