package grpcsvc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName — полное имя gRPC-сервиса.
const ServiceName = "kitchen.v1.KitchenService"

// KitchenServiceServer — серверная сторона kitchen.v1.KitchenService.
type KitchenServiceServer interface {
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	CreateOrder(context.Context, *CreateOrderRequest) (*OrderResponse, error)
	UpdateOrder(context.Context, *UpdateOrderRequest) (*OrderResponse, error)
	SetOrderStatus(context.Context, *SetOrderStatusRequest) (*SetOrderStatusResponse, error)
	GetWeeklySummary(context.Context, *GetWeeklySummaryRequest) (*GetWeeklySummaryResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	CreateProduct(context.Context, *CreateProductRequest) (*CreateProductResponse, error)
	ToggleProduct(context.Context, *ToggleProductRequest) (*ToggleProductResponse, error)
}

// ServiceDesc описывает KitchenService для grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*KitchenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListOrders", KitchenServiceServer.ListOrders),
		unaryMethod("CreateOrder", KitchenServiceServer.CreateOrder),
		unaryMethod("UpdateOrder", KitchenServiceServer.UpdateOrder),
		unaryMethod("SetOrderStatus", KitchenServiceServer.SetOrderStatus),
		unaryMethod("GetWeeklySummary", KitchenServiceServer.GetWeeklySummary),
		unaryMethod("ListProducts", KitchenServiceServer.ListProducts),
		unaryMethod("CreateProduct", KitchenServiceServer.CreateProduct),
		unaryMethod("ToggleProduct", KitchenServiceServer.ToggleProduct),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kitchen/v1/kitchen.proto",
}

// RegisterKitchenServiceServer регистрирует реализацию на сервере.
func RegisterKitchenServiceServer(registrar grpc.ServiceRegistrar, srv KitchenServiceServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryMethod[Req, Resp any](
	name string,
	call func(KitchenServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(KitchenServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(KitchenServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// KitchenServiceClient — клиент kitchen.v1.KitchenService поверх JSON-кодека.
type KitchenServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewKitchenServiceClient создаёт клиента.
func NewKitchenServiceClient(cc grpc.ClientConnInterface) *KitchenServiceClient {
	return &KitchenServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *KitchenServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return invoke[ListOrdersResponse](ctx, c.cc, "ListOrders", in, opts)
}

func (c *KitchenServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, "CreateOrder", in, opts)
}

func (c *KitchenServiceClient) UpdateOrder(ctx context.Context, in *UpdateOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, "UpdateOrder", in, opts)
}

func (c *KitchenServiceClient) SetOrderStatus(ctx context.Context, in *SetOrderStatusRequest, opts ...grpc.CallOption) (*SetOrderStatusResponse, error) {
	return invoke[SetOrderStatusResponse](ctx, c.cc, "SetOrderStatus", in, opts)
}

func (c *KitchenServiceClient) GetWeeklySummary(ctx context.Context, in *GetWeeklySummaryRequest, opts ...grpc.CallOption) (*GetWeeklySummaryResponse, error) {
	return invoke[GetWeeklySummaryResponse](ctx, c.cc, "GetWeeklySummary", in, opts)
}

func (c *KitchenServiceClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, "ListProducts", in, opts)
}

func (c *KitchenServiceClient) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*CreateProductResponse, error) {
	return invoke[CreateProductResponse](ctx, c.cc, "CreateProduct", in, opts)
}

func (c *KitchenServiceClient) ToggleProduct(ctx context.Context, in *ToggleProductRequest, opts ...grpc.CallOption) (*ToggleProductResponse, error) {
	return invoke[ToggleProductResponse](ctx, c.cc, "ToggleProduct", in, opts)
}
