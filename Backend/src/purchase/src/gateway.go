package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/status"

	purchasepb "github.com/desafiolatam/calculando-total/proto/purchase"
)

// Gateway exposes the purchase service as JSON over HTTP for clients that do
// not speak gRPC.
type Gateway struct {
	svc purchasepb.PurchaseServer
}

func NewGateway(svc purchasepb.PurchaseServer, origins []string) (http.Handler, error) {
	g := &Gateway{svc: svc}
	mux := runtime.NewServeMux()

	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/healthz", g.health},
		{http.MethodPost, "/v1/sessions", g.openSession},
		{http.MethodGet, "/v1/sessions/{id}", g.session(g.svc.GetView)},
		{http.MethodPost, "/v1/sessions/{id}/increment", g.session(g.svc.Increment)},
		{http.MethodPost, "/v1/sessions/{id}/decrement", g.session(g.svc.Decrement)},
		{http.MethodPost, "/v1/sessions/{id}/checkout", g.checkout},
		{http.MethodDelete, "/v1/sessions/{id}", g.closeSession},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return nil, err
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return withLog(c.Handler(mux)), nil
}

func (g *Gateway) health(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) openSession(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req purchasepb.OpenSessionRequest
	// el cuerpo es opcional: sin él se usa el producto por defecto
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "InvalidArgument", "message": "invalid json body"})
		return
	}
	view, err := g.svc.OpenSession(r.Context(), &req)
	if err != nil {
		writeStatus(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (g *Gateway) session(call func(ctx context.Context, req *purchasepb.SessionRef) (*purchasepb.PurchaseView, error)) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		view, err := call(r.Context(), &purchasepb.SessionRef{SessionId: params["id"]})
		if err != nil {
			writeStatus(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (g *Gateway) checkout(w http.ResponseWriter, r *http.Request, params map[string]string) {
	res, err := g.svc.Checkout(r.Context(), &purchasepb.SessionRef{SessionId: params["id"]})
	if err != nil {
		writeStatus(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (g *Gateway) closeSession(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if _, err := g.svc.CloseSession(r.Context(), &purchasepb.SessionRef{SessionId: params["id"]}); err != nil {
		writeStatus(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeStatus(w http.ResponseWriter, err error) {
	st := status.Convert(err)
	writeJSON(w, runtime.HTTPStatusFromCode(st.Code()), map[string]string{
		"code":    st.Code().String(),
		"message": st.Message(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write json")
	}
}

func withLog(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("http")
	})
}
