package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		rendererID string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a renderer bearer token from auth_secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.AuthSecret == "" {
				return errors.New("auth_secret is not configured")
			}
			if rendererID == "" {
				return errors.New("--id is required")
			}
			token, err := auth.GenerateRendererToken([]byte(app.cfg.AuthSecret), rendererID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&rendererID, "id", "", "renderer id")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")
	return cmd
}
