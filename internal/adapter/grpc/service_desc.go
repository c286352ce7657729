package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages on this service are google.protobuf.Struct documents, so callers
// only need the well-known types to talk to it.
const ServiceName = "catalog.DiscoveryService"

const (
	MethodBrowse           = "/" + ServiceName + "/Browse"
	MethodSearch           = "/" + ServiceName + "/Search"
	MethodFeatured         = "/" + ServiceName + "/Featured"
	MethodPopular          = "/" + ServiceName + "/Popular"
	MethodGetListing       = "/" + ServiceName + "/GetListing"
	MethodGetListingBySlug = "/" + ServiceName + "/GetListingBySlug"
	MethodRecordView       = "/" + ServiceName + "/RecordView"
)

type DiscoveryServiceServer interface {
	Browse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Search(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Featured(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Popular(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetListing(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetListingBySlug(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordView(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterDiscoveryServiceServer(s grpc.ServiceRegistrar, srv DiscoveryServiceServer) {
	s.RegisterService(&DiscoveryServiceDesc, srv)
}

type unaryMethod func(DiscoveryServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodHandler(fullMethod string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DiscoveryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DiscoveryServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var DiscoveryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiscoveryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Browse", Handler: methodHandler(MethodBrowse, DiscoveryServiceServer.Browse)},
		{MethodName: "Search", Handler: methodHandler(MethodSearch, DiscoveryServiceServer.Search)},
		{MethodName: "Featured", Handler: methodHandler(MethodFeatured, DiscoveryServiceServer.Featured)},
		{MethodName: "Popular", Handler: methodHandler(MethodPopular, DiscoveryServiceServer.Popular)},
		{MethodName: "GetListing", Handler: methodHandler(MethodGetListing, DiscoveryServiceServer.GetListing)},
		{MethodName: "GetListingBySlug", Handler: methodHandler(MethodGetListingBySlug, DiscoveryServiceServer.GetListingBySlug)},
		{MethodName: "RecordView", Handler: methodHandler(MethodRecordView, DiscoveryServiceServer.RecordView)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/discovery.proto",
}

// DiscoveryServiceClient is the caller side of DiscoveryServiceDesc.
type DiscoveryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDiscoveryServiceClient(cc grpc.ClientConnInterface) *DiscoveryServiceClient {
	return &DiscoveryServiceClient{cc: cc}
}

func (c *DiscoveryServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DiscoveryServiceClient) Browse(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodBrowse, in, opts...)
}

func (c *DiscoveryServiceClient) Search(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSearch, in, opts...)
}

func (c *DiscoveryServiceClient) Featured(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodFeatured, in, opts...)
}

func (c *DiscoveryServiceClient) Popular(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodPopular, in, opts...)
}

func (c *DiscoveryServiceClient) GetListing(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetListing, in, opts...)
}

func (c *DiscoveryServiceClient) GetListingBySlug(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetListingBySlug, in, opts...)
}

func (c *DiscoveryServiceClient) RecordView(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodRecordView, in, opts...)
}
