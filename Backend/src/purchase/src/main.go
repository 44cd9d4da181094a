package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	purchasepb "github.com/desafiolatam/calculando-total/proto/purchase"
)

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := LoadConfig()
	log.Info().
		Str("grpc", cfg.GRPCAddr).
		Str("http", cfg.HTTPAddr).
		Str("db", cfg.DBPath).
		Str("locale", cfg.Locale).
		Str("currency", cfg.Currency).
		Msg("starting purchase service")

	formatter, err := NewCurrencyFormatter(cfg.Locale, cfg.Currency)
	must(err)

	// Catálogo
	repo, err := NewCatalogRepository(cfg.DBPath)
	must(err)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.SeedOnStart {
		must(repo.Seed(ctx))
		log.Info().Msg("seeded catalog")
	}
	p, err := repo.GetProduct(ctx, cfg.ProductSKU)
	must(err)
	if p.Currency != formatter.Currency().String() {
		log.Warn().Str("sku", p.SKU).Str("product_currency", p.Currency).
			Str("display_currency", formatter.Currency().String()).
			Msg("product priced in a different currency than the display currency")
	}

	// Rabbit
	rabbit, err := NewRabbit(cfg.RabbitURL, cfg.ExchangeName)
	must(err)
	defer rabbit.Close()
	if rabbit == nil {
		log.Warn().Msg("RABBITMQ_URL not set, checkout events are not published")
	}

	sessions := NewSessionStore(cfg.SessionCapacity, cfg.SessionTTL, formatter)
	svc := NewPurchaseService(repo, sessions, rabbit, cfg.ProductSKU)

	// HTTP gateway
	gateway, err := NewGateway(svc, cfg.CORSOrigins)
	must(err)
	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      gateway,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http gateway listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http gateway stopped")
		}
	}()

	// gRPC server
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	must(err)
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(logUnary))
	purchasepb.RegisterPurchaseServer(grpcSrv, svc)

	// Señales para apagado limpio
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Warn().Msg("shutting down...")
		shutdownCtx, stop := context.WithTimeout(context.Background(), ShutdownGrace)
		defer stop()
		_ = httpSrv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		cancel()
	}()

	log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC listening")
	must(grpcSrv.Serve(lis))
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
