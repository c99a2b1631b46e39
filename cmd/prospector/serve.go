package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/prospector/internal/infra/http/handlers"
	"github.com/xavierca1/prospector/internal/infra/http/middleware"
	"github.com/xavierca1/prospector/internal/infra/queue"
	"github.com/xavierca1/prospector/internal/infra/worker"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the prospect list, CSV export and outreach helpers as REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	cfg := b.cfg
	if servePort > 0 {
		cfg.Port = servePort
	}

	sender := b.mailSender()

	// 1. Worker (consome eventos e notifica reuniões marcadas)
	var broker handlers.BrokerConn
	if b.rabbit != nil {
		broker = b.rabbit.Conn

		var notifier queue.Notifier
		if sender != nil {
			notifier = sender
		}
		consumer := queue.NewWorker(b.rabbit.Ch, notifier)
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				log.Printf("❌ Worker parou: %v", err)
			}
		}()
	}

	// 2. Flush worker (regrava a lista quando uma escrita falhou).
	// Só para depois do Shutdown, quando não há mais requests em andamento.
	flushCtx, stopFlush := context.WithCancel(context.Background())
	flushDone := make(chan struct{})
	go func() {
		worker.NewFlushWorker(b.store, cfg.FlushInterval).Start(flushCtx)
		close(flushDone)
	}()
	stopFlushing := func() {
		stopFlush()
		<-flushDone
	}

	// 3. Handlers
	var exportMailer handlers.ExportMailer
	if sender != nil {
		exportMailer = sender
	}

	prospectHandler := handlers.NewProspectHandler(b.store, exportMailer)
	outreachHandler := handlers.NewOutreachHandler(cfg.Search)
	healthHandler := handlers.NewHealthHandler(b.slot, broker, sender.Configured(), b.store.Len)

	// 4. Router
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	defer limiter.Stop()

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    limiter,
		TrustProxy:     cfg.TrustProxy,
	}, prospectHandler, outreachHandler, healthHandler)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🔥 Prospector rodando na porta %s", srv.Addr)
	return serveUntilDone(ctx, srv, stopFlushing)
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// serveUntilDone runs srv until ctx ends or it fails to listen. afterShutdown
// runs once no request is in flight anymore.
func serveUntilDone(ctx context.Context, srv httpServer, afterShutdown func()) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		afterShutdown()
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 Encerrando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	afterShutdown()
	return err
}
