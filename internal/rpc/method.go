// Package rpc holds the gRPC plumbing shared by the catalog handlers: method
// descriptors over structpb payloads, request field decoding, error mapping
// and the server interceptors.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// UnaryMethod builds a MethodDesc whose request and response are
// structpb.Struct. call is a method expression such as ItemServiceServer.GetItem.
func UnaryMethod[S any](service, name string, call func(srv S, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(S)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Invoke calls a unary method registered with UnaryMethod.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, service, name string, req *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, "/"+service+"/"+name, req, out); err != nil {
		return nil, err
	}
	return out, nil
}
