package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	purchasepb "github.com/desafiolatam/calculando-total/proto/purchase"
)

func newTestGateway(t *testing.T) http.Handler {
	t.Helper()
	h, err := NewGateway(newTestService(t, &fakePublisher{}), []string{"http://localhost:8080"})
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) purchasepb.PurchaseView {
	t.Helper()
	var v purchasepb.PurchaseView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestGatewayFlow(t *testing.T) {
	h := newTestGateway(t)

	rec := do(t, h, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeView(t, rec)
	assert.Equal(t, int64(0), view.Quantity)
	base := "/v1/sessions/" + view.SessionId

	rec = do(t, h, http.MethodPost, base+"/checkout", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/increment", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	assert.Equal(t, "$400.000", view.TotalText)
	assert.Equal(t, "Has seleccionado 1 unidad de Laptop Gamer AMD.", view.Summary)

	rec = do(t, h, http.MethodPost, base+"/checkout", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/decrement", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), decodeView(t, rec).Quantity)

	rec = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeView(t, rec).CanCheckout)

	rec = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGatewayOpenSessionBody(t *testing.T) {
	h := newTestGateway(t)

	rec := do(t, h, http.MethodPost, "/v1/sessions", `{"product_sku":"unknown"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/sessions", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGatewayHealthAndCORS(t *testing.T) {
	h := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
}
