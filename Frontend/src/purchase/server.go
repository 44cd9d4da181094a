package main

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	purchasepb "github.com/desafiolatam/calculando-total/proto/purchase"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionCookie = "purchase_sid"

type Server struct {
	tpl     *template.Template
	client  purchasepb.PurchaseClient
	timeout time.Duration
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	_ = godotenv.Load()

	addr := getenv("FRONTEND_PURCHASE_ADDR", ":8080")
	grpcTarget := getenv("PURCHASE_GRPC_TARGET", "localhost:50061")

	cc, err := grpc.Dial(grpcTarget, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal().Err(err).Str("target", grpcTarget).Msg("dial purchase grpc")
	}
	defer cc.Close()

	s, err := NewServer(purchasepb.NewPurchaseClient(cc))
	if err != nil {
		log.Fatal().Err(err).Msg("parse templates")
	}

	log.Info().Str("addr", addr).Str("grpc", grpcTarget).Msg("purchase frontend listening")
	if err := http.ListenAndServe(addr, s.Routes()); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

func NewServer(client purchasepb.PurchaseClient) (*Server, error) {
	funcs := template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}
	tpl, err := template.New("layout.html").Funcs(funcs).
		ParseFS(templatesFS, "templates/layout.html", "templates/purchase.html")
	if err != nil {
		return nil, err
	}
	return &Server{tpl: tpl, client: client, timeout: 3 * time.Second}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/increment", s.postOnly(s.handleStep(s.client.Increment)))
	mux.HandleFunc("/decrement", s.postOnly(s.handleStep(s.client.Decrement)))
	mux.HandleFunc("/checkout", s.postOnly(s.handleCheckout))
	mux.HandleFunc("/reset", s.postOnly(s.handleReset))
	mux.HandleFunc("/api/view", s.handleAPIView)
	return withLog(mux)
}

func withLog(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		log.Info().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("http")
	})
}

func (s *Server) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

func (s *Server) postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h(w, r)
	}
}

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func setSession(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// open starts a fresh product card and remembers it in the cookie.
func (s *Server) open(ctx context.Context, w http.ResponseWriter) (*purchasepb.PurchaseView, error) {
	view, err := s.client.OpenSession(ctx, &purchasepb.OpenSessionRequest{})
	if err != nil {
		return nil, err
	}
	setSession(w, view.GetSessionId())
	return view, nil
}

// withSession calls op on the current session. A missing or expired session
// is replaced by a new one, which starts again at quantity 0.
func (s *Server) withSession(ctx context.Context, w http.ResponseWriter, r *http.Request,
	op func(context.Context, *purchasepb.SessionRef, ...grpc.CallOption) (*purchasepb.PurchaseView, error)) (*purchasepb.PurchaseView, error) {
	if id := sessionID(r); id != "" {
		view, err := op(ctx, &purchasepb.SessionRef{SessionId: id})
		if status.Code(err) != codes.NotFound {
			return view, err
		}
		log.Info().Str("session", id).Msg("session expired, opening a new one")
	}
	view, err := s.open(ctx, w)
	if err != nil {
		return nil, err
	}
	return op(ctx, &purchasepb.SessionRef{SessionId: view.GetSessionId()})
}

type pageData struct {
	View *purchasepb.PurchaseView
	Msg  string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := s.ctx(r)
	defer cancel()

	view, err := s.withSession(ctx, w, r, s.client.GetView)
	if err != nil {
		log.Error().Err(err).Msg("index: get view")
		httpError(w, "No se pudo obtener la compra", http.StatusBadGateway)
		return
	}
	s.render(w, pageData{View: view, Msg: r.URL.Query().Get("msg")})
}

func (s *Server) handleStep(op func(context.Context, *purchasepb.SessionRef, ...grpc.CallOption) (*purchasepb.PurchaseView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := s.ctx(r)
		defer cancel()
		if _, err := s.withSession(ctx, w, r, op); err != nil {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("step failed")
			httpError(w, "No se pudo actualizar la cantidad", http.StatusBadGateway)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	id := sessionID(r)
	if id == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_, err := s.client.Checkout(ctx, &purchasepb.SessionRef{SessionId: id})
	switch status.Code(err) {
	case codes.OK:
		http.Redirect(w, r, "/?msg=Compra%20en%20proceso", http.StatusSeeOther)
	case codes.FailedPrecondition, codes.NotFound:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		log.Error().Err(err).Str("session", id).Msg("checkout failed")
		http.Redirect(w, r, "/?msg=No%20se%20pudo%20continuar%20con%20la%20compra", http.StatusSeeOther)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	if id := sessionID(r); id != "" {
		if _, err := s.client.CloseSession(ctx, &purchasepb.SessionRef{SessionId: id}); err != nil && status.Code(err) != codes.NotFound {
			log.Warn().Err(err).Str("session", id).Msg("close session")
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	view, err := s.withSession(ctx, w, r, s.client.GetView)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

func (s *Server) render(w http.ResponseWriter, data pageData) {
	if err := s.tpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Error().Err(err).Msg("template render error")
		httpError(w, "Error renderizando página", http.StatusInternalServerError)
	}
}

func httpError(w http.ResponseWriter, msg string, code int) {
	w.WriteHeader(code)
	_, _ = w.Write([]byte("<pre>" + template.HTMLEscapeString(msg) + "</pre>"))
}
