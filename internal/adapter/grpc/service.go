package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the forecast service
const ServiceName = "wealthflow.forecast.v1.ForecastService"

// Full method names, as seen by interceptors
const (
	MethodGetOverview  = "/" + ServiceName + "/GetOverview"
	MethodSyncPlanning = "/" + ServiceName + "/SyncPlanning"
)

// ForecastServiceServer is the server API of the forecast service.
// Requests and responses are google.protobuf.Struct documents.
type ForecastServiceServer interface {
	GetOverview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SyncPlanning(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ForecastServiceDesc describes the forecast service for grpc.Server registration
var ForecastServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ForecastServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetOverview", Handler: getOverviewHandler},
		{MethodName: "SyncPlanning", Handler: syncPlanningHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wealthflow/forecast/v1/forecast.proto",
}

// RegisterForecastServiceServer registers srv on the given registrar
func RegisterForecastServiceServer(s grpc.ServiceRegistrar, srv ForecastServiceServer) {
	s.RegisterService(&ForecastServiceDesc, srv)
}

func getOverviewHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ForecastServiceServer).GetOverview(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodGetOverview}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ForecastServiceServer).GetOverview(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func syncPlanningHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ForecastServiceServer).SyncPlanning(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodSyncPlanning}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ForecastServiceServer).SyncPlanning(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ForecastServiceClient is a thin client for the forecast service
type ForecastServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewForecastServiceClient creates a client on an existing connection
func NewForecastServiceClient(cc grpc.ClientConnInterface) *ForecastServiceClient {
	return &ForecastServiceClient{cc: cc}
}

// GetOverview calls the GetOverview RPC
func (c *ForecastServiceClient) GetOverview(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodGetOverview, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SyncPlanning calls the SyncPlanning RPC
func (c *ForecastServiceClient) SyncPlanning(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodSyncPlanning, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
