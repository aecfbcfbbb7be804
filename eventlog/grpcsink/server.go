package grpcsink

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/eventlog"
)

// Server exposes an eventlog.Sink over the Sink gRPC service.
type Server struct {
	UnimplementedSinkServer
	Sink eventlog.Sink
}

func (s *Server) Emit(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.Sink == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing sink")
	}
	fields := in.GetFields()

	collection, err := addr.Parse(fields["collection"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid collection address")
	}
	name := fields["name"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "missing event name")
	}

	var payload map[string]any
	if p := fields["payload"].GetStructValue(); p != nil {
		payload = p.AsMap()
	}

	if err := s.Sink.Emit(collection, name, payload); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bool(true), nil
}
