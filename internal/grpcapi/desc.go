package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceDesc is written by hand in the shape protoc-gen-go-grpc emits.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlinkoServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Board", Handler: unary(PlinkoServer.Board, "Board")},
		{MethodName: "Configure", Handler: unary(PlinkoServer.Configure, "Configure")},
		{MethodName: "Drop", Handler: unary(PlinkoServer.Drop, "Drop")},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
	Metadata: "plinko/v1/plinko.proto",
}

func Register(s grpc.ServiceRegistrar, srv PlinkoServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryFn func(PlinkoServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(fn unaryFn, method string) grpc.MethodHandler {
	full := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(PlinkoServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		handler := func(ctx context.Context, req any) (any, error) {
			return fn(srv.(PlinkoServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(PlinkoServer).Watch(in, stream)
}
