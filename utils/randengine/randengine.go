// 随机数引擎，包装了golang.org/x/exp/rand，提供了仿真常用的随机数生成方法
package randengine

import (
	"flag"
	"math"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能，支持指数分布采样
// 说明：基于golang.org/x/exp/rand库的PCG源，同一种子产生完全相同的序列
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改配置的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Exponential 按指数分布采样（非线程安全，每条车道独占一个引擎）
// 功能：生成参数为rate的指数分布随机数，即泊松过程的到达间隔
// 参数：rate-到达率λ（单位时间内的期望事件数）
// 返回：采样值，期望为1/rate；rate<=0时返回+Inf（永远不会发生）
func (e *Engine) Exponential(rate float64) float64 {
	if rate <= 0 {
		return math.Inf(1)
	}
	return e.ExpFloat64() / rate
}
