package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sakif/snippy/internal/client"
)

var (
	serverFlag  string
	sessionFlag string

	session   *Session
	apiClient *client.Client
)

var rootCmd = &cobra.Command{
	Use:           "snippy",
	Short:         "Keep code snippets on a snippy server",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := sessionFlag
		if path == "" {
			p, err := defaultSessionPath()
			if err != nil {
				return err
			}
			path = p
		}

		s, err := loadSession(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("server") || s.Server == "" {
			if s.Server != "" && s.Server != serverFlag {
				// a token is only valid on the server that issued it
				s.Token, s.Email = "", ""
			}
			s.Server = serverFlag
		}
		session = s
		apiClient = client.New(s.Server, client.WithToken(s.Token))
		return nil
	},
}

// Execute runs the root command and prints the error, if any, once.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
	}
	return err
}

// requireLogin fails fast before a round trip when no token is stored.
func requireLogin() error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("not logged in: run `snippy login` first")
	}
	return nil
}

func init() {
	defaultServer := os.Getenv("SNIPPY_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", defaultServer, "snippy server URL (env SNIPPY_SERVER)")
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "", "session file (default ~/.config/snippy/session.yaml)")
}
