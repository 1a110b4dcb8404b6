package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/longjinxiang/alexa-smart-screen-sdk/adapters"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/auth"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/config"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/protocol"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/websocket"
	"github.com/longjinxiang/alexa-smart-screen-sdk/usecase"
)

type rendererOptions struct {
	URL          string
	RendererID   string
	Token        string
	FocusChannel string
	Insecure     bool
}

func newRendererCmd() *cobra.Command {
	var ro rendererOptions

	cmd := &cobra.Command{
		Use:   "renderer",
		Short: "Run a headless renderer endpoint that connects to a host bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if ro.URL == "" {
				ro.URL = app.cfg.RendererURL
			}
			if ro.RendererID == "" {
				ro.RendererID = uuid.NewString()
			}
			return runRenderer(ctx, app.cfg, ro, app.logger)
		},
	}

	cmd.Flags().StringVar(&ro.URL, "url", "", "host websocket URL (default renderer_url)")
	cmd.Flags().StringVar(&ro.RendererID, "id", "", "renderer id placed in the minted token")
	cmd.Flags().StringVar(&ro.Token, "token", "", "bearer token; minted from auth_secret when empty")
	cmd.Flags().StringVar(&ro.FocusChannel, "focus-channel", "", "acquire focus on this channel after the handshake")
	cmd.Flags().BoolVar(&ro.Insecure, "insecure", false, "skip host certificate verification for wss://")
	return cmd
}

func runRenderer(ctx context.Context, cfg config.Config, ro rendererOptions, logger *zap.Logger) error {
	header := http.Header{}
	token := ro.Token
	if token == "" && cfg.AuthSecret != "" {
		minted, err := auth.GenerateRendererToken([]byte(cfg.AuthSecret), ro.RendererID, 0)
		if err != nil {
			return err
		}
		token = minted
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	tlsConfig, err := clientTLSConfig(cfg, ro)
	if err != nil {
		return err
	}

	conn, err := websocket.Dial(ctx, ro.URL, header, tlsConfig, logger)
	if err != nil {
		return fmt.Errorf("dial %s: %w", ro.URL, err)
	}
	defer conn.Close()
	logger.Info("Connected to host", zap.String("url", ro.URL), zap.String("rendererID", ro.RendererID))

	dispatcher := protocol.NewDispatcher(domain.Inbound,
		protocol.WithLogger(logger),
		protocol.WithQueueSize(cfg.QueueSize))

	tokens := usecase.NewFocusTokens()
	view := adapters.NewLoggingView(logger.Named("view"))
	service, err := usecase.NewRendererService(conn, view, tokens, usecase.RendererConfig{
		SupportedSDKMajor: cfg.SupportedSDKMajor,
		APLMaxVersion:     cfg.APLMaxVersion,
	}, logger)
	if err != nil {
		return err
	}
	if err := service.Register(dispatcher); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}

	if ro.FocusChannel != "" {
		service.OnHandshake(func(ctx context.Context, supported bool) error {
			if !supported {
				return nil
			}
			_, err := service.AcquireFocus(ctx, ro.FocusChannel, func(req entities.FocusRequest) {
				logger.Info("Focus request finished",
					zap.Uint64("token", req.Token),
					zap.String("status", string(req.Status)))
			})
			return err
		})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(ctx)
	})
	g.Go(func() error {
		return usecase.NewFocusSweeper(tokens, cfg.FocusTokenTTL, logger).Run(ctx)
	})
	g.Go(func() error {
		err := conn.Listen(ctx, dispatcher)
		if err == nil {
			logger.Info("Host closed the connection")
		}
		// Stop the other workers once the connection ends.
		return errConnectionEnded(err)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errListenDone) {
		return err
	}
	return nil
}

var errListenDone = errors.New("connection ended")

func errConnectionEnded(err error) error {
	if err != nil {
		return err
	}
	return errListenDone
}

func clientTLSConfig(cfg config.Config, ro rendererOptions) (*tls.Config, error) {
	if !strings.HasPrefix(ro.URL, "wss://") {
		return nil, nil
	}
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: ro.Insecure,
	}
	if cfg.WebsocketCertificateAuthority != "" {
		pool, err := loadCertPool(cfg.WebsocketCertificateAuthority)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}
	if cfg.TLSEnabled() {
		cert, err := tls.LoadX509KeyPair(cfg.WebsocketCertificate, cfg.WebsocketPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}
