package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jsoncond.v1.ConditionService"

// Full method names, as seen by interceptors.
const (
	CheckFullMethod       = "/" + ServiceName + "/Check"
	ToSQLFullMethod       = "/" + ServiceName + "/ToSQL"
	CheckStoredFullMethod = "/" + ServiceName + "/CheckStored"
)

// ConditionServer is the server API for ConditionService.
// Requests and responses are generic structpb documents.
type ConditionServer interface {
	Check(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToSQL(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckStored(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ConditionServiceDesc describes ConditionService for grpc.Server.RegisterService.
var ConditionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConditionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Check", Handler: unaryHandler(CheckFullMethod, ConditionServer.Check)},
		{MethodName: "ToSQL", Handler: unaryHandler(ToSQLFullMethod, ConditionServer.ToSQL)},
		{MethodName: "CheckStored", Handler: unaryHandler(CheckStoredFullMethod, ConditionServer.CheckStored)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterConditionServer registers srv with s.
func RegisterConditionServer(s grpc.ServiceRegistrar, srv ConditionServer) {
	s.RegisterService(&ConditionServiceDesc, srv)
}

type unaryMethod func(ConditionServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a ConditionServer method to grpc.MethodHandler, routing
// through the server's interceptor chain when one is installed.
func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ConditionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ConditionServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client is the client API for ConditionService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Check calls ConditionService.Check.
func (c *Client) Check(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CheckFullMethod, req, opts...)
}

// ToSQL calls ConditionService.ToSQL.
func (c *Client) ToSQL(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ToSQLFullMethod, req, opts...)
}

// CheckStored calls ConditionService.CheckStored.
func (c *Client) CheckStored(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CheckStoredFullMethod, req, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
