package config

// Signal 信号灯配时配置（单位：秒）
// 功能：定义5相位固定配时信号灯的各相位时长
// 说明：周期为 A绿 -> A黄 -> B绿 -> B黄 -> 行人，两个黄灯共用同一时长
type Signal struct {
	GreenA     float64 `yaml:"green_a"`    // A车道绿灯时长
	GreenB     float64 `yaml:"green_b"`    // B车道绿灯时长
	Yellow     float64 `yaml:"yellow"`     // 黄灯时长
	Pedestrian float64 `yaml:"pedestrian"` // 行人相位时长
	// 黄灯期间本车道是否允许通行（默认false：仅绿灯通行）
	YellowPermitsCrossing bool `yaml:"yellow_permits_crossing,omitempty"`
}

// CycleLength 信号周期总时长
func (s Signal) CycleLength() float64 {
	return s.GreenA + s.Yellow + s.GreenB + s.Yellow + s.Pedestrian
}

// Arrival 车辆到达配置
// 功能：定义两条车道的泊松到达率
type Arrival struct {
	RateA float64 `yaml:"rate_a"` // A车道到达率λ（辆/秒）
	RateB float64 `yaml:"rate_b"` // B车道到达率λ（辆/秒）
	// 允许到达率为0（该车道永远没有车辆到达）
	AllowIdle bool `yaml:"allow_idle,omitempty"`
}

// Crossing 路口通行配置
type Crossing struct {
	ServiceTime  float64 `yaml:"service_time"`  // 单车通过路口占用时长（秒），最大服务率为1/ServiceTime
	PollInterval float64 `yaml:"poll_interval"` // 排头车辆重新检查信号灯的间隔（秒）
}

// Control 模拟器控制配置
// 功能：定义仿真运行时长与心跳日志间隔
type Control struct {
	Duration  float64 `yaml:"duration"`            // Run()的仿真总时长（秒）
	Heartbeat float64 `yaml:"heartbeat,omitempty"` // 心跳日志间隔（仿真秒），0表示关闭
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
type Config struct {
	Seed     uint64   `yaml:"seed"`     // 随机种子
	Signal   Signal   `yaml:"signal"`   // 信号灯
	Arrival  Arrival  `yaml:"arrival"`  // 到达
	Crossing Crossing `yaml:"crossing"` // 通行
	Control  Control  `yaml:"control"`  // 模拟过程控制
}
