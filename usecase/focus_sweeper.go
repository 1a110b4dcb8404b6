package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/metrics"
)

// FocusSweeper drops focus requests the host never answered
type FocusSweeper struct {
	tokens   *FocusTokens
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewFocusSweeper creates a sweeper that checks every ttl/2
func NewFocusSweeper(tokens *FocusTokens, ttl time.Duration, logger *zap.Logger) *FocusSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := ttl / 2
	if interval <= 0 {
		interval = time.Second
	}
	return &FocusSweeper{
		tokens:   tokens,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps periodically until ctx is canceled
func (s *FocusSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Focus sweeper started", zap.Duration("ttl", s.ttl))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Focus sweeper stopped")
			return nil
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// Sweep expires stale requests as of now and returns how many were dropped
func (s *FocusSweeper) Sweep(now time.Time) int {
	dropped := s.tokens.expireStale(now, s.ttl)
	for _, e := range dropped {
		metrics.FocusRequestsExpiredTotal.Inc()
		s.logger.Warn("Focus request expired without response",
			zap.Uint64("token", e.request.Token),
			zap.String("channel", e.request.ChannelName))
		if e.callback != nil {
			e.callback(e.request)
		}
	}
	return len(dropped)
}
