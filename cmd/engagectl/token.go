package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dashboard-engagement/server/pkg/jwt"
)

func newTokenCmd(e *env) *cobra.Command {
	var (
		email   string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a dashboard access token signed with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				subject = uuid.New().String()
			}
			token, err := jwt.NewManager(&e.cfg.Auth).GenerateToken(subject, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email claim (required)")
	cmd.Flags().StringVar(&subject, "sub", "", "subject claim (default: random UUID)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
