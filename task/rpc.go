package task

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/intersection-sim/entity/lane"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// SimulationServiceName 仿真服务名
	SimulationServiceName = "intersection.v1.SimulationService"

	NowProcedure         = "/" + SimulationServiceName + "/Now"
	GetSnapshotProcedure = "/" + SimulationServiceName + "/GetSnapshot"
	AdvanceProcedure     = "/" + SimulationServiceName + "/Advance"
	RunUntilProcedure    = "/" + SimulationServiceName + "/RunUntil"
)

// Server 仿真RPC服务
// 功能：通过connect协议对外提供时间查询、快照查询与推进仿真的接口
// 说明：RPC请求在各自的协程中处理，Server用互斥锁串行化对仿真上下文的访问
type Server struct {
	mtx sync.Mutex
	ctx *Context
}

// NewServer 创建仿真RPC服务
func NewServer(ctx *Context) *Server {
	return &Server{ctx: ctx}
}

// Handler 构造服务的HTTP处理器
// 返回：路由前缀与处理器，可直接注册到http.ServeMux
func (s *Server) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(NowProcedure, connect.NewUnaryHandler(NowProcedure, s.Now, opts...))
	mux.Handle(GetSnapshotProcedure, connect.NewUnaryHandler(GetSnapshotProcedure, s.GetSnapshot, opts...))
	mux.Handle(AdvanceProcedure, connect.NewUnaryHandler(AdvanceProcedure, s.Advance, opts...))
	mux.Handle(RunUntilProcedure, connect.NewUnaryHandler(RunUntilProcedure, s.RunUntil, opts...))
	return "/" + SimulationServiceName + "/", mux
}

// Now RPC接口：获取当前仿真时间
func (s *Server) Now(
	ctx context.Context, in *connect.Request[emptypb.Empty],
) (*connect.Response[wrapperspb.DoubleValue], error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return connect.NewResponse(wrapperspb.Double(s.ctx.clock.T)), nil
}

// GetSnapshot RPC接口：获取仿真状态快照
func (s *Server) GetSnapshot(
	ctx context.Context, in *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.snapshot()
}

// Advance RPC接口：从当前时刻推进指定秒数，返回推进后的快照
// 说明：秒数为负数、NaN或无穷时返回InvalidArgument
func (s *Server) Advance(
	ctx context.Context, in *connect.Request[wrapperspb.DoubleValue],
) (*connect.Response[structpb.Struct], error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err := s.ctx.Advance(in.Msg.GetValue()); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return s.snapshot()
}

// RunUntil RPC接口：推进仿真到指定绝对时刻，返回推进后的快照
// 说明：时刻早于当前时间时不推进，时刻为NaN或无穷时返回InvalidArgument
func (s *Server) RunUntil(
	ctx context.Context, in *connect.Request[wrapperspb.DoubleValue],
) (*connect.Response[structpb.Struct], error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if err := s.ctx.RunUntilContext(ctx, in.Msg.GetValue()); err != nil {
		if errors.Is(err, ErrInvalidLimit) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeCanceled, err)
	}
	return s.snapshot()
}

func (s *Server) snapshot() (*connect.Response[structpb.Struct], error) {
	pb, err := snapshotToStruct(s.ctx.Snapshot())
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(pb), nil
}

// snapshotToStruct 快照转换为protobuf Struct
func snapshotToStruct(snap Snapshot) (*structpb.Struct, error) {
	lanes := lo.Map(snap.Lanes, func(l lane.Stats, _ int) any {
		return map[string]any{
			"lane":                l.Lane.String(),
			"arrived":             l.Arrived,
			"admitted":            l.Admitted,
			"served":              l.Served,
			"queue_length":        l.QueueLength,
			"crossing":            l.Crossing,
			"total_wait":          l.TotalWait,
			"average_wait":        l.AverageWait,
			"max_wait":            l.MaxWait,
			"std_wait":            l.StdWait,
			"average_queue_delay": l.AverageQueueDelay,
		}
	})
	return structpb.NewStruct(map[string]any{
		"run_id":           snap.RunID,
		"t":                snap.T,
		"phase":            snap.PhaseName,
		"remaining_time":   snap.RemainingTime,
		"completed_cycles": snap.CompletedCycles,
		"lanes":            lanes,
	})
}

// Client 仿真RPC客户端
type Client struct {
	now         *connect.Client[emptypb.Empty, wrapperspb.DoubleValue]
	getSnapshot *connect.Client[emptypb.Empty, structpb.Struct]
	advance     *connect.Client[wrapperspb.DoubleValue, structpb.Struct]
	runUntil    *connect.Client[wrapperspb.DoubleValue, structpb.Struct]
}

// NewClient 创建仿真RPC客户端
// 参数：httpClient-HTTP客户端，baseURL-服务地址（如http://localhost:51102）
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		now:         connect.NewClient[emptypb.Empty, wrapperspb.DoubleValue](httpClient, baseURL+NowProcedure, opts...),
		getSnapshot: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+GetSnapshotProcedure, opts...),
		advance:     connect.NewClient[wrapperspb.DoubleValue, structpb.Struct](httpClient, baseURL+AdvanceProcedure, opts...),
		runUntil:    connect.NewClient[wrapperspb.DoubleValue, structpb.Struct](httpClient, baseURL+RunUntilProcedure, opts...),
	}
}

func (c *Client) Now(ctx context.Context) (float64, error) {
	res, err := c.now.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return 0, err
	}
	return res.Msg.GetValue(), nil
}

func (c *Client) GetSnapshot(ctx context.Context) (*structpb.Struct, error) {
	res, err := c.getSnapshot.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) Advance(ctx context.Context, dt float64) (*structpb.Struct, error) {
	res, err := c.advance.CallUnary(ctx, connect.NewRequest(wrapperspb.Double(dt)))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) RunUntil(ctx context.Context, limit float64) (*structpb.Struct, error) {
	res, err := c.runUntil.CallUnary(ctx, connect.NewRequest(wrapperspb.Double(limit)))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
