package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/longjinxiang/alexa-smart-screen-sdk/adapters"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/api"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/config"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/websocket"
	"github.com/longjinxiang/alexa-smart-screen-sdk/usecase"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the host side of the bridge and accept renderer connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, app.cfg, app.logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	dispatcher := protocol.NewDispatcher(domain.Outbound,
		protocol.WithLogger(logger),
		protocol.WithQueueSize(cfg.QueueSize))
	hub := websocket.NewHub(dispatcher, logger)

	host := adapters.NewLoggingHost(logger.Named("host"))
	service, err := usecase.NewHostService(hub, usecase.HostDependencies{
		Documents:   host,
		Focus:       adapters.NewMemoryFocusManager(),
		Interaction: host,
		Calls:       host,
		Activity:    host,
	}, cfg.SDKVersion, logger)
	if err != nil {
		return err
	}
	if err := service.Register(dispatcher); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}

	hub.OnRegister(func(rendererID string) {
		if err := hub.SendTo(rendererID, service.InitRequest()); err != nil {
			logger.Error("Failed to send init request", zap.String("rendererID", rendererID), zap.Error(err))
		}
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	api.InitRoutes(e, hub, []byte(cfg.AuthSecret), logger)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: e,
	}
	if cfg.TLSEnabled() {
		tlsConfig, err := serverTLSConfig(cfg)
		if err != nil {
			return err
		}
		server.TLSConfig = tlsConfig
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(ctx)
	})
	g.Go(func() error {
		logger.Info("Bridge listening", zap.String("addr", server.Addr), zap.Bool("tls", cfg.TLSEnabled()))
		var err error
		if cfg.TLSEnabled() {
			err = server.ListenAndServeTLS(cfg.WebsocketCertificate, cfg.WebsocketPrivateKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Server is shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server exited")
	return nil
}

// serverTLSConfig verifies renderer client certificates against the configured authority when one is set
func serverTLSConfig(cfg config.Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.WebsocketCertificateAuthority == "" {
		return tlsConfig, nil
	}

	pool, err := loadCertPool(cfg.WebsocketCertificateAuthority)
	if err != nil {
		return nil, err
	}
	tlsConfig.ClientCAs = pool
	tlsConfig.ClientAuth = tls.VerifyClientCertIfGiven
	return tlsConfig, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read certificate authority: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
