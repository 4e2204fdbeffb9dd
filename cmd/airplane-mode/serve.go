package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/airplane-mode/internal/console/handler"
	"github.com/xela07ax/airplane-mode/internal/console/server"
	"github.com/xela07ax/airplane-mode/internal/console/service"
	"github.com/xela07ax/airplane-mode/internal/infra/auth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP surface: toolbar toggle, decision API, metrics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	// Ключи: открытый для проверки токенов, закрытый для выдачи
	pubKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		return fmt.Errorf("auth public key: %w", err)
	}
	privKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		return fmt.Errorf("auth private key: %w", err)
	}

	// Контекст для управления жизненным циклом фоновых горутин
	appCtx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := buildApp(appCtx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer a.close()

	// L1 кэш настроек держим согласованным между инстансами
	if a.cached != nil {
		go a.cached.StartListener(appCtx, a.rdb)
	}

	cs := server.NewConsoleServer(server.Deps{
		Config:          cfg,
		Logger:          logger,
		Gate:            a.gate,
		Gatherer:        reg,
		Validator:       auth.NewBaseValidator(pubKey),
		AuthHandler:     handler.NewAuthHandler(service.NewAuthService(a.users, privKey, cfg.Auth.TokenTTL)),
		AirplaneHandler: handler.NewAirplaneHandler(a.gate, logger),
		DecideHandler:   handler.NewDecideHandler(a.gate),
		AuditHandler:    handler.NewAuditHandler(service.NewAuditService(a.audit)),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      cs,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("airplane-mode started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-appCtx.Done():
	}
	logger.Info("airplane-mode stopping...")

	// Даем время на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("airplane-mode exited properly")
	return nil
}
