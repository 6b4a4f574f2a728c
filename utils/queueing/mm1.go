// M/M/1排队模型的理论指标，用于与仿真结果对照
package queueing

import (
	"fmt"
	"math"
)

// MM1 单服务台M/M/1排队模型
// 说明：Lambda为到达率，Mu为服务率（单位均为辆/秒）；ρ>=1时系统不稳定，各期望值为+Inf
type MM1 struct {
	Lambda float64 `json:"lambda" yaml:"lambda"`
	Mu     float64 `json:"mu" yaml:"mu"`
}

// EffectiveServiceRate 信号控制下车道的等效服务率
// 功能：μ = μmax × 绿灯占比，μmax = 1 / 单车通过时长
// 参数：serviceTime-单车通过时长，greenFraction-一个周期内允许通过的时间占比
// 返回：等效服务率，通过时长为0时视为服务率无穷大
func EffectiveServiceRate(serviceTime, greenFraction float64) float64 {
	if serviceTime <= 0 {
		return math.Inf(1)
	}
	return greenFraction / serviceTime
}

// Rho 利用率ρ = λ/μ
func (q MM1) Rho() float64 {
	if q.Mu == 0 {
		return math.Inf(1)
	}
	return q.Lambda / q.Mu
}

// Stable 是否满足稳定条件ρ<1
func (q MM1) Stable() bool {
	return q.Rho() < 1
}

// L 系统中的平均车辆数 ρ/(1-ρ)
func (q MM1) L() float64 {
	if !q.Stable() {
		return math.Inf(1)
	}
	rho := q.Rho()
	return rho / (1 - rho)
}

// W 车辆在系统中的平均逗留时间 1/(μ-λ)
func (q MM1) W() float64 {
	if !q.Stable() {
		return math.Inf(1)
	}
	return 1 / (q.Mu - q.Lambda)
}

// Lq 平均排队车辆数 ρ²/(1-ρ)
func (q MM1) Lq() float64 {
	if !q.Stable() {
		return math.Inf(1)
	}
	rho := q.Rho()
	return rho * rho / (1 - rho)
}

// Wq 平均排队时间 ρ/(μ-λ)
func (q MM1) Wq() float64 {
	if !q.Stable() {
		return math.Inf(1)
	}
	return q.Rho() / (q.Mu - q.Lambda)
}

func (q MM1) String() string {
	if !q.Stable() {
		return fmt.Sprintf("M/M/1{λ=%.3f, μ=%.3f, ρ=%.3f, unstable}", q.Lambda, q.Mu, q.Rho())
	}
	return fmt.Sprintf("M/M/1{λ=%.3f, μ=%.3f, ρ=%.3f, L=%.3f, W=%.3f, Lq=%.3f, Wq=%.3f}",
		q.Lambda, q.Mu, q.Rho(), q.L(), q.W(), q.Lq(), q.Wq())
}
