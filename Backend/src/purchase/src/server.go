// Servidor gRPC del calculador de compra
package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	purchasepb "github.com/desafiolatam/calculando-total/proto/purchase"
)

var ErrNothingToCheckout = errors.New("quantity must be greater than zero to checkout")

type ProductSource interface {
	GetProduct(ctx context.Context, sku string) (Product, error)
}

type PurchaseService struct {
	purchasepb.UnimplementedPurchaseServer
	catalog    ProductSource
	sessions   *SessionStore
	pub        EventPublisher
	defaultSKU string
}

func NewPurchaseService(catalog ProductSource, sessions *SessionStore, pub EventPublisher, defaultSKU string) *PurchaseService {
	return &PurchaseService{catalog: catalog, sessions: sessions, pub: pub, defaultSKU: defaultSKU}
}

func (s *PurchaseService) OpenSession(ctx context.Context, req *purchasepb.OpenSessionRequest) (*purchasepb.PurchaseView, error) {
	sku := req.GetProductSku()
	if sku == "" {
		sku = s.defaultSKU
	}
	p, err := s.catalog.GetProduct(ctx, sku)
	if err != nil {
		return nil, toStatus(err)
	}
	id, snap := s.sessions.Open(p)
	log.Info().Str("session", id).Str("sku", p.SKU).Int64("unit_price", p.UnitPrice).Msg("session opened")
	return toView(id, snap), nil
}

func (s *PurchaseService) GetView(ctx context.Context, req *purchasepb.SessionRef) (*purchasepb.PurchaseView, error) {
	return s.step(req, s.sessions.View)
}

func (s *PurchaseService) Increment(ctx context.Context, req *purchasepb.SessionRef) (*purchasepb.PurchaseView, error) {
	return s.step(req, s.sessions.Increment)
}

func (s *PurchaseService) Decrement(ctx context.Context, req *purchasepb.SessionRef) (*purchasepb.PurchaseView, error) {
	return s.step(req, s.sessions.Decrement)
}

func (s *PurchaseService) step(req *purchasepb.SessionRef, op func(string) (Snapshot, error)) (*purchasepb.PurchaseView, error) {
	id := req.GetSessionId()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	snap, err := op(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return toView(id, snap), nil
}

// Checkout only announces the intent to buy; nothing downstream is waited on.
func (s *PurchaseService) Checkout(ctx context.Context, req *purchasepb.SessionRef) (*purchasepb.CheckoutResult, error) {
	view, err := s.step(req, s.sessions.View)
	if err != nil {
		return nil, err
	}
	if !view.CanCheckout {
		return nil, toStatus(ErrNothingToCheckout)
	}

	evt := CheckoutRequestedPayload{
		EventID:     uuid.NewString(),
		SessionID:   view.SessionId,
		ProductSKU:  view.ProductSku,
		Quantity:    view.Quantity,
		UnitPrice:   view.UnitPrice,
		Total:       view.Total,
		TotalText:   view.TotalText,
		Currency:    s.sessions.formatter.Currency().String(),
		RequestedAt: time.Now().Unix(),
	}
	if s.pub == nil {
		return &purchasepb.CheckoutResult{View: view, EventId: evt.EventID}, nil
	}
	if err := s.pub.PublishJSON(ctx, RKCheckoutRequested, evt); err != nil {
		log.Error().Err(err).Str("session", view.SessionId).Msg("checkout: publish failed")
		return nil, status.Error(codes.Unavailable, "checkout could not be published")
	}
	log.Info().Str("session", view.SessionId).Int64("qty", view.Quantity).Int64("total", view.Total).Msg("checkout requested")
	return &purchasepb.CheckoutResult{View: view, EventId: evt.EventID}, nil
}

func (s *PurchaseService) CloseSession(ctx context.Context, req *purchasepb.SessionRef) (*purchasepb.Empty, error) {
	id := req.GetSessionId()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	if err := s.sessions.Close(id); err != nil {
		return nil, toStatus(err)
	}
	return &purchasepb.Empty{}, nil
}

func toView(id string, snap Snapshot) *purchasepb.PurchaseView {
	return &purchasepb.PurchaseView{
		SessionId:     id,
		ProductSku:    snap.Product.SKU,
		ProductName:   snap.Product.Name,
		ImageUrl:      snap.Product.ImageURL,
		Quantity:      snap.State.Quantity,
		UnitPrice:     snap.State.UnitPrice,
		Total:         snap.Total,
		UnitPriceText: snap.UnitPriceText,
		TotalText:     snap.TotalText,
		Summary:       snap.Summary,
		CanCheckout:   snap.CanCheckout,
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrNothingToCheckout):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	ev := log.Debug()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("method", info.FullMethod).Dur("took", time.Since(start)).Msg("rpc")
	return resp, err
}
