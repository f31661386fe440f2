package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	Storefront_GetCart_FullMethodName        = "/storefront.v1.Storefront/GetCart"
	Storefront_AddItem_FullMethodName        = "/storefront.v1.Storefront/AddItem"
	Storefront_UpdateQuantity_FullMethodName = "/storefront.v1.Storefront/UpdateQuantity"
	Storefront_RemoveItem_FullMethodName     = "/storefront.v1.Storefront/RemoveItem"
	Storefront_ClearCart_FullMethodName      = "/storefront.v1.Storefront/ClearCart"
	Storefront_Checkout_FullMethodName       = "/storefront.v1.Storefront/Checkout"
)

type StorefrontClient interface {
	GetCart(ctx context.Context, in *CartRequest, opts ...grpc.CallOption) (*CartReply, error)
	AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*CartReply, error)
	UpdateQuantity(ctx context.Context, in *UpdateQuantityRequest, opts ...grpc.CallOption) (*UpdateQuantityReply, error)
	RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*CartReply, error)
	ClearCart(ctx context.Context, in *CartRequest, opts ...grpc.CallOption) (*CartReply, error)
	Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*CheckoutReply, error)
}

type storefrontClient struct {
	cc grpc.ClientConnInterface
}

// NewStorefrontClient returns a client that always negotiates the JSON codec.
func NewStorefrontClient(cc grpc.ClientConnInterface) StorefrontClient {
	return &storefrontClient{cc}
}

func (c *storefrontClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *storefrontClient) GetCart(ctx context.Context, in *CartRequest, opts ...grpc.CallOption) (*CartReply, error) {
	out := new(CartReply)
	if err := c.invoke(ctx, Storefront_GetCart_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *storefrontClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*CartReply, error) {
	out := new(CartReply)
	if err := c.invoke(ctx, Storefront_AddItem_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *storefrontClient) UpdateQuantity(ctx context.Context, in *UpdateQuantityRequest, opts ...grpc.CallOption) (*UpdateQuantityReply, error) {
	out := new(UpdateQuantityReply)
	if err := c.invoke(ctx, Storefront_UpdateQuantity_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *storefrontClient) RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*CartReply, error) {
	out := new(CartReply)
	if err := c.invoke(ctx, Storefront_RemoveItem_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *storefrontClient) ClearCart(ctx context.Context, in *CartRequest, opts ...grpc.CallOption) (*CartReply, error) {
	out := new(CartReply)
	if err := c.invoke(ctx, Storefront_ClearCart_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *storefrontClient) Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*CheckoutReply, error) {
	out := new(CheckoutReply)
	if err := c.invoke(ctx, Storefront_Checkout_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

type StorefrontServer interface {
	GetCart(context.Context, *CartRequest) (*CartReply, error)
	AddItem(context.Context, *AddItemRequest) (*CartReply, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*UpdateQuantityReply, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*CartReply, error)
	ClearCart(context.Context, *CartRequest) (*CartReply, error)
	Checkout(context.Context, *CheckoutRequest) (*CheckoutReply, error)
}

// UnimplementedStorefrontServer can be embedded to keep forward compatibility.
type UnimplementedStorefrontServer struct{}

func (UnimplementedStorefrontServer) GetCart(context.Context, *CartRequest) (*CartReply, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCart not implemented")
}

func (UnimplementedStorefrontServer) AddItem(context.Context, *AddItemRequest) (*CartReply, error) {
	return nil, status.Error(codes.Unimplemented, "method AddItem not implemented")
}

func (UnimplementedStorefrontServer) UpdateQuantity(context.Context, *UpdateQuantityRequest) (*UpdateQuantityReply, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateQuantity not implemented")
}

func (UnimplementedStorefrontServer) RemoveItem(context.Context, *RemoveItemRequest) (*CartReply, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveItem not implemented")
}

func (UnimplementedStorefrontServer) ClearCart(context.Context, *CartRequest) (*CartReply, error) {
	return nil, status.Error(codes.Unimplemented, "method ClearCart not implemented")
}

func (UnimplementedStorefrontServer) Checkout(context.Context, *CheckoutRequest) (*CheckoutReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Checkout not implemented")
}

func RegisterStorefrontServer(s grpc.ServiceRegistrar, srv StorefrontServer) {
	s.RegisterService(&Storefront_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodDesc's handler signature.
func unaryHandler[Req any, Resp any](fullMethod string, call func(StorefrontServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StorefrontServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StorefrontServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var Storefront_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "storefront.v1.Storefront",
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetCart",
			Handler:    unaryHandler(Storefront_GetCart_FullMethodName, StorefrontServer.GetCart),
		},
		{
			MethodName: "AddItem",
			Handler:    unaryHandler(Storefront_AddItem_FullMethodName, StorefrontServer.AddItem),
		},
		{
			MethodName: "UpdateQuantity",
			Handler:    unaryHandler(Storefront_UpdateQuantity_FullMethodName, StorefrontServer.UpdateQuantity),
		},
		{
			MethodName: "RemoveItem",
			Handler:    unaryHandler(Storefront_RemoveItem_FullMethodName, StorefrontServer.RemoveItem),
		},
		{
			MethodName: "ClearCart",
			Handler:    unaryHandler(Storefront_ClearCart_FullMethodName, StorefrontServer.ClearCart),
		},
		{
			MethodName: "Checkout",
			Handler:    unaryHandler(Storefront_Checkout_FullMethodName, StorefrontServer.Checkout),
		},
	},
	Streams:  []grpc.StreamDesc{},
}
