package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/Arnthorny/gatehouse/api"
	"github.com/Arnthorny/gatehouse/auth"
	"github.com/Arnthorny/gatehouse/store"
	bboltstore "github.com/Arnthorny/gatehouse/store/bbolt"
	"github.com/Arnthorny/gatehouse/store/memory"
)

var (
	port            int
	dataDir         string
	authType        string
	authScheme      string
	cookieName      string
	sessionDuration string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the authentication server",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			users    store.UserStore
			sessions store.SessionStore
		)
		if dataDir != "" {
			if err := os.MkdirAll(dataDir, 0o700); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			st, err := bboltstore.NewStoreFromFile(filepath.Join(dataDir, "gatehouse.db"), nil)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer st.Close()
			users, sessions = st, st
		} else {
			users = memory.NewUserStore()
			sessions = memory.NewSessionStore()
		}

		ttl := auth.TTLFromSeconds(sessionDuration)

		strategy, err := buildStrategy(users, sessions, ttl)
		if err != nil {
			return err
		}

		a := api.New(users, strategy,
			api.WithCookieName(cookieName),
			api.WithSessionTTL(ttl),
		)

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Mount("/", a.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		fmt.Printf("Starting server on port %d (auth: %s)...\n", port, authType)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

// buildStrategy selects the active authentication mechanism.
func buildStrategy(users store.UserStore, sessions store.SessionStore, ttl time.Duration) (auth.Strategy, error) {
	switch authType {
	case "basic":
		return auth.NewBasicStrategy(users, authScheme), nil
	case "session":
		return auth.NewSessionStrategy(auth.NewRegistry(), users, cookieName), nil
	case "session-exp":
		src := auth.NewExpiringSource(auth.NewRegistry(), ttl)
		return auth.NewSessionStrategy(src, users, cookieName), nil
	case "session-db":
		src := auth.NewPersistentSource(sessions, ttl)
		return auth.NewSessionStrategy(src, users, cookieName), nil
	default:
		return nil, fmt.Errorf("unknown auth type %q (want basic, session, session-exp, or session-db)", authType)
	}
}

// envOr returns the environment value when set, the fallback otherwise.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory for persistent data (empty = in-memory)")
	serverCmd.Flags().StringVar(&authType, "auth-type", envOr("AUTH_TYPE", "session"),
		"Authentication mechanism: basic, session, session-exp, session-db")
	serverCmd.Flags().StringVar(&authScheme, "auth-scheme", auth.DefaultScheme,
		"Credential header scheme for basic auth")
	serverCmd.Flags().StringVar(&cookieName, "cookie-name", envOr("SESSION_NAME", api.DefaultCookieName),
		"Session cookie name")
	serverCmd.Flags().StringVar(&sessionDuration, "session-duration", envOr("SESSION_DURATION", "0"),
		"Session lifetime in seconds (0 = never expires)")
}
