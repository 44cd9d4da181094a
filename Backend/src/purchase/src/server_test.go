package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	purchasepb "github.com/desafiolatam/calculando-total/proto/purchase"
)

type recordedEvent struct {
	key  string
	body []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) PublishJSON(ctx context.Context, key string, v any) error {
	if p.err != nil {
		return p.err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{key: key, body: body})
	return nil
}

type staticCatalog map[string]Product

func (c staticCatalog) GetProduct(ctx context.Context, sku string) (Product, error) {
	p, ok := c[sku]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func newTestService(t *testing.T, pub EventPublisher) *PurchaseService {
	t.Helper()
	return NewPurchaseService(staticCatalog{DefaultProductSKU: laptop()}, newTestStore(t, 100, time.Minute), pub, DefaultProductSKU)
}

// dialService runs svc behind an in-memory listener and returns a client.
func dialService(t *testing.T, svc purchasepb.PurchaseServer) purchasepb.PurchaseClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(logUnary))
	purchasepb.RegisterPurchaseServer(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.Dial("bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return purchasepb.NewPurchaseClient(conn)
}

func TestServiceOverGRPC(t *testing.T) {
	pub := &fakePublisher{}
	client := dialService(t, newTestService(t, pub))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	view, err := client.OpenSession(ctx, &purchasepb.OpenSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), view.Quantity)
	assert.Equal(t, "$400.000", view.UnitPriceText)
	assert.Equal(t, "$0", view.TotalText)
	assert.Equal(t, "Selecciona una cantidad para ver el total.", view.Summary)
	assert.False(t, view.CanCheckout)
	ref := &purchasepb.SessionRef{SessionId: view.SessionId}

	for i := 0; i < 3; i++ {
		view, err = client.Increment(ctx, ref)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), view.Quantity)
	assert.Equal(t, int64(1200000), view.Total)
	assert.Equal(t, "$1.200.000", view.TotalText)
	assert.Equal(t, "Has seleccionado 3 unidades de Laptop Gamer AMD.", view.Summary)
	assert.True(t, view.CanCheckout)

	view, err = client.Decrement(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.Quantity)

	got, err := client.GetView(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, view, got)

	_, err = client.CloseSession(ctx, ref)
	require.NoError(t, err)
	_, err = client.GetView(ctx, ref)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestCheckoutGate(t *testing.T) {
	pub := &fakePublisher{}
	client := dialService(t, newTestService(t, pub))
	ctx := context.Background()

	view, err := client.OpenSession(ctx, &purchasepb.OpenSessionRequest{ProductSku: DefaultProductSKU})
	require.NoError(t, err)
	ref := &purchasepb.SessionRef{SessionId: view.SessionId}

	_, err = client.Checkout(ctx, ref)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Empty(t, pub.events)

	_, err = client.Increment(ctx, ref)
	require.NoError(t, err)
	res, err := client.Checkout(ctx, ref)
	require.NoError(t, err)
	assert.NotEmpty(t, res.EventId)
	assert.Equal(t, int64(1), res.GetView().Quantity)

	require.Len(t, pub.events, 1)
	assert.Equal(t, RKCheckoutRequested, pub.events[0].key)
	var evt CheckoutRequestedPayload
	require.NoError(t, json.Unmarshal(pub.events[0].body, &evt))
	assert.Equal(t, res.EventId, evt.EventID)
	assert.Equal(t, int64(400000), evt.Total)
	assert.Equal(t, "$400.000", evt.TotalText)
	assert.Equal(t, "CLP", evt.Currency)

	// el checkout no altera la cantidad
	view, err = client.GetView(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Quantity)
}

func TestCheckoutPublishFailure(t *testing.T) {
	svc := newTestService(t, &fakePublisher{err: errors.New("broker down")})
	ctx := context.Background()
	view, err := svc.OpenSession(ctx, &purchasepb.OpenSessionRequest{})
	require.NoError(t, err)
	ref := &purchasepb.SessionRef{SessionId: view.SessionId}
	_, err = svc.Increment(ctx, ref)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, ref)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestServiceErrors(t *testing.T) {
	svc := newTestService(t, (*Rabbit)(nil))
	ctx := context.Background()

	_, err := svc.OpenSession(ctx, &purchasepb.OpenSessionRequest{ProductSku: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = svc.Increment(ctx, &purchasepb.SessionRef{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Decrement(ctx, &purchasepb.SessionRef{SessionId: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = svc.CloseSession(ctx, &purchasepb.SessionRef{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestNilRabbitDropsEvents(t *testing.T) {
	var r *Rabbit
	assert.NoError(t, r.PublishJSON(context.Background(), RKCheckoutRequested, CheckoutRequestedPayload{}))
	r.Close()

	r, err := NewRabbit("", "desafio.events")
	require.NoError(t, err)
	assert.Nil(t, r)
}
