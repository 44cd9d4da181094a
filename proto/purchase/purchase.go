// Package purchasepb describes the purchase calculator service shared by the
// backend and the frontend. Messages travel as JSON over gRPC (content-subtype
// "json"), so the contract needs no protoc step.
package purchasepb

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "purchase.Purchase"
	CodecName   = "json"
)

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// Mensajes

type OpenSessionRequest struct {
	ProductSku string `json:"product_sku,omitempty"`
}

func (x *OpenSessionRequest) GetProductSku() string {
	if x == nil {
		return ""
	}
	return x.ProductSku
}

type SessionRef struct {
	SessionId string `json:"session_id"`
}

func (x *SessionRef) GetSessionId() string {
	if x == nil {
		return ""
	}
	return x.SessionId
}

// PurchaseView is a snapshot of one calculator after the last interaction.
type PurchaseView struct {
	SessionId     string `json:"session_id"`
	ProductSku    string `json:"product_sku"`
	ProductName   string `json:"product_name"`
	ImageUrl      string `json:"image_url,omitempty"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"`
	Total         int64  `json:"total"`
	UnitPriceText string `json:"unit_price_text"`
	TotalText     string `json:"total_text"`
	Summary       string `json:"summary"`
	CanCheckout   bool   `json:"can_checkout"`
}

func (x *PurchaseView) GetSessionId() string {
	if x == nil {
		return ""
	}
	return x.SessionId
}

func (x *PurchaseView) GetQuantity() int64 {
	if x == nil {
		return 0
	}
	return x.Quantity
}

func (x *PurchaseView) GetTotal() int64 {
	if x == nil {
		return 0
	}
	return x.Total
}

func (x *PurchaseView) GetCanCheckout() bool {
	if x == nil {
		return false
	}
	return x.CanCheckout
}

type CheckoutResult struct {
	View    *PurchaseView `json:"view"`
	EventId string        `json:"event_id,omitempty"`
}

func (x *CheckoutResult) GetView() *PurchaseView {
	if x == nil {
		return nil
	}
	return x.View
}

type Empty struct{}

// Servidor

type PurchaseServer interface {
	OpenSession(context.Context, *OpenSessionRequest) (*PurchaseView, error)
	GetView(context.Context, *SessionRef) (*PurchaseView, error)
	Increment(context.Context, *SessionRef) (*PurchaseView, error)
	Decrement(context.Context, *SessionRef) (*PurchaseView, error)
	Checkout(context.Context, *SessionRef) (*CheckoutResult, error)
	CloseSession(context.Context, *SessionRef) (*Empty, error)
}

// UnimplementedPurchaseServer can be embedded to keep forward compatibility.
type UnimplementedPurchaseServer struct{}

func (UnimplementedPurchaseServer) OpenSession(context.Context, *OpenSessionRequest) (*PurchaseView, error) {
	return nil, status.Error(codes.Unimplemented, "method OpenSession not implemented")
}
func (UnimplementedPurchaseServer) GetView(context.Context, *SessionRef) (*PurchaseView, error) {
	return nil, status.Error(codes.Unimplemented, "method GetView not implemented")
}
func (UnimplementedPurchaseServer) Increment(context.Context, *SessionRef) (*PurchaseView, error) {
	return nil, status.Error(codes.Unimplemented, "method Increment not implemented")
}
func (UnimplementedPurchaseServer) Decrement(context.Context, *SessionRef) (*PurchaseView, error) {
	return nil, status.Error(codes.Unimplemented, "method Decrement not implemented")
}
func (UnimplementedPurchaseServer) Checkout(context.Context, *SessionRef) (*CheckoutResult, error) {
	return nil, status.Error(codes.Unimplemented, "method Checkout not implemented")
}
func (UnimplementedPurchaseServer) CloseSession(context.Context, *SessionRef) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method CloseSession not implemented")
}

func RegisterPurchaseServer(s grpc.ServiceRegistrar, srv PurchaseServer) {
	s.RegisterService(&Purchase_ServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(PurchaseServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PurchaseServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PurchaseServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var Purchase_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PurchaseServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "OpenSession", Handler: unaryHandler("OpenSession", PurchaseServer.OpenSession)},
		{MethodName: "GetView", Handler: unaryHandler("GetView", PurchaseServer.GetView)},
		{MethodName: "Increment", Handler: unaryHandler("Increment", PurchaseServer.Increment)},
		{MethodName: "Decrement", Handler: unaryHandler("Decrement", PurchaseServer.Decrement)},
		{MethodName: "Checkout", Handler: unaryHandler("Checkout", PurchaseServer.Checkout)},
		{MethodName: "CloseSession", Handler: unaryHandler("CloseSession", PurchaseServer.CloseSession)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "purchase",
}

// Cliente

type PurchaseClient interface {
	OpenSession(ctx context.Context, in *OpenSessionRequest, opts ...grpc.CallOption) (*PurchaseView, error)
	GetView(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*PurchaseView, error)
	Increment(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*PurchaseView, error)
	Decrement(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*PurchaseView, error)
	Checkout(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*CheckoutResult, error)
	CloseSession(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*Empty, error)
}

type purchaseClient struct {
	cc grpc.ClientConnInterface
}

func NewPurchaseClient(cc grpc.ClientConnInterface) PurchaseClient {
	return &purchaseClient{cc: cc}
}

func (c *purchaseClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *purchaseClient) OpenSession(ctx context.Context, in *OpenSessionRequest, opts ...grpc.CallOption) (*PurchaseView, error) {
	out := new(PurchaseView)
	if err := c.invoke(ctx, "OpenSession", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *purchaseClient) GetView(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*PurchaseView, error) {
	out := new(PurchaseView)
	if err := c.invoke(ctx, "GetView", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *purchaseClient) Increment(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*PurchaseView, error) {
	out := new(PurchaseView)
	if err := c.invoke(ctx, "Increment", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *purchaseClient) Decrement(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*PurchaseView, error) {
	out := new(PurchaseView)
	if err := c.invoke(ctx, "Decrement", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *purchaseClient) Checkout(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*CheckoutResult, error) {
	out := new(CheckoutResult)
	if err := c.invoke(ctx, "Checkout", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *purchaseClient) CloseSession(ctx context.Context, in *SessionRef, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "CloseSession", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
