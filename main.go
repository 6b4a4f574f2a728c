package main

import (
	"context"
	"encoding/base64"
	"flag"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"github.com/tsinghua-fib-lab/intersection-sim/entity"
	"github.com/tsinghua-fib-lab/intersection-sim/task"
	"github.com/tsinghua-fib-lab/intersection-sim/utils/config"
	"gopkg.in/yaml.v2"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 未指定配置时使用的预置场景
	scenario = flag.String("scenario", "light", "preset scenario when no config is given (light asymmetric optimised)")
	// RPC监听地址，设置为空则运行到配置的仿真时长后退出
	listen = flag.String("listen", "", "connect RPC listening address (empty means batch mode), e.g. :51102")
	// 重复实验次数，>1时以连续种子并行运行
	replicas = flag.Int("replicas", 1, "number of replicas with consecutive seeds")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "intersection")
)

// loadConfig 按 -config / -config-data / -scenario 的优先级获取配置
func loadConfig() config.Config {
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		c, err := config.Scenario(*scenario)
		if err != nil {
			log.Panicf("%v", err)
		}
		return c
	}
	c, err := config.Load(file)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	return c
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	c := loadConfig()
	out, _ := yaml.Marshal(c)
	log.Infof("config:\n%s", out)

	t, err := task.NewContext(c)
	if err != nil {
		log.Panicf("%v", err)
	}
	for id, q := range t.Theory() {
		if q.Stable() {
			log.Infof("lane %v: %v", entity.LaneID(id), q)
		} else {
			log.Warnf("lane %v: %v, queue will grow without bound", entity.LaneID(id), q)
		}
	}

	switch {
	case *listen != "":
		mux := http.NewServeMux()
		mux.Handle(task.NewServer(t).Handler())
		log.Infof("serving %s on %s", task.SimulationServiceName, *listen)
		if err := http.ListenAndServe(*listen, mux); err != nil {
			log.Panicf("failed to serve: %v", err)
		}
	case *replicas > 1:
		results, err := task.RunBatch(context.Background(), c, task.Seeds(c.Seed, *replicas), 0)
		if err != nil {
			log.Panicf("batch run: %v", err)
		}
		out, _ := yaml.Marshal(results)
		os.Stdout.Write(out)
		for _, id := range entity.Lanes {
			log.Infof("lane %v: mean of average wait over %d replicas: %.2fs",
				id, len(results), task.MeanAverageWait(results, id))
		}
	default:
		snap := t.Run()
		out, _ := yaml.Marshal(snap)
		os.Stdout.Write(out)
	}
}
