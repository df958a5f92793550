package simd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	BrownoutServiceName = "brownout.v1.BrownoutService"

	getReportMethod = "/" + BrownoutServiceName + "/GetReport"
	listRunsMethod  = "/" + BrownoutServiceName + "/ListRuns"
)

// BrownoutServiceServer is the read-only run query surface. Requests and
// responses are well-known protobuf types so no generated stubs are needed:
// GetReport takes {"run_id": "..."} and answers with the run and its report.
type BrownoutServiceServer interface {
	GetReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func getReportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BrownoutServiceServer).GetReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getReportMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BrownoutServiceServer).GetReport(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listRunsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BrownoutServiceServer).ListRuns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listRunsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BrownoutServiceServer).ListRuns(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// BrownoutServiceDesc describes the service for grpc.Server.RegisterService
var BrownoutServiceDesc = grpc.ServiceDesc{
	ServiceName: BrownoutServiceName,
	HandlerType: (*BrownoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetReport", Handler: getReportHandler},
		{MethodName: "ListRuns", Handler: listRunsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "brownout/v1/brownout.proto",
}

// RegisterBrownoutServiceServer registers srv and a health service reporting
// SERVING for it.
func RegisterBrownoutServiceServer(s *grpc.Server, srv BrownoutServiceServer) {
	s.RegisterService(&BrownoutServiceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus(BrownoutServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
}

// BrownoutServiceClient calls the service over an existing connection
type BrownoutServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBrownoutServiceClient(cc grpc.ClientConnInterface) *BrownoutServiceClient {
	return &BrownoutServiceClient{cc: cc}
}

func (c *BrownoutServiceClient) GetReport(ctx context.Context, runID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"run_id": runID})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getReportMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BrownoutServiceClient) ListRuns(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listRunsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// BrownoutGRPCServer implements BrownoutServiceServer using a RunStore backend.
type BrownoutGRPCServer struct {
	store *RunStore
}

func NewBrownoutGRPCServer(store *RunStore) *BrownoutGRPCServer {
	return &BrownoutGRPCServer{store: store}
}

func (s *BrownoutGRPCServer) GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	runID := req.GetFields()["run_id"].GetStringValue()
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}

	rec, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	if rec.Report == nil {
		return nil, status.Errorf(codes.FailedPrecondition, "report not available for run in status %s", rec.Run.Status)
	}

	out, err := toStruct(map[string]any{
		"run":    rec.Run,
		"report": rec.Report,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	logger.Debug("report served (gRPC)", "run_id", runID)
	return out, nil
}

func (s *BrownoutGRPCServer) ListRuns(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	recs := s.store.List(1000, 0, "")
	runs := make([]*models.Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}
	out, err := toStruct(map[string]any{"runs": runs})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStruct converts v through its JSON form. Numbers become float64.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return structpb.NewStruct(m)
}
