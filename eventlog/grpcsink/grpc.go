// Package grpcsink exposes an eventlog.Sink over gRPC so a collection daemon
// can mirror events to a remote append-only service.
package grpcsink

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// SinkServer is the server API for the event Sink gRPC service.
//
// Requests and responses use protobuf well-known types (structpb, wrapperspb)
// so this package does not require a protoc/codegen toolchain.
//
// The request Struct carries three fields:
//   - "collection": 0x-prefixed address string
//   - "name":       event name
//   - "payload":    nested struct of string/bool/list values
type SinkServer interface {
	Emit(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
}

// UnimplementedSinkServer can be embedded to have forward compatible
// implementations.
type UnimplementedSinkServer struct{}

func (UnimplementedSinkServer) Emit(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Emit not implemented")
}

// RegisterSinkServer registers the Sink service on a gRPC server.
func RegisterSinkServer(s grpc.ServiceRegistrar, srv SinkServer) {
	s.RegisterService(&Sink_ServiceDesc, srv)
}

// SinkClient is the client API for the event Sink gRPC service.
type SinkClient interface {
	Emit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
}

type sinkClient struct{ cc grpc.ClientConnInterface }

func NewSinkClient(cc grpc.ClientConnInterface) SinkClient { return &sinkClient{cc: cc} }

func (c *sinkClient) Emit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	err := c.cc.Invoke(ctx, "/mintlock.eventlog.v1.Sink/Emit", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Sink_Emit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SinkServer).Emit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mintlock.eventlog.v1.Sink/Emit"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SinkServer).Emit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Sink_ServiceDesc is the grpc.ServiceDesc for the Sink service.
var Sink_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "mintlock.eventlog.v1.Sink",
	HandlerType: (*SinkServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Emit", Handler: _Sink_Emit_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sink.proto",
}
