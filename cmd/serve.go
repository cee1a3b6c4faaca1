package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edalquez/facegate/internal/command"
	"github.com/edalquez/facegate/internal/config"
	"github.com/edalquez/facegate/internal/gallery"
	"github.com/edalquez/facegate/internal/notify"
	"github.com/edalquez/facegate/internal/store/postgres"
	"github.com/edalquez/facegate/internal/uploads"
	"github.com/edalquez/facegate/internal/web"
	"github.com/edalquez/facegate/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance server",
	Long: `Start the Facegate attendance server.
The server exposes the camera's polling protocol, the operator console API
and the attendance dashboard queries.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("notify-workers", 2, "Concurrent guardian mail deliveries")
	serveCmd.Flags().Int("notify-queue", 64, "Pending guardian mail queue size")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (string, int) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return host, port
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	attendance := postgres.NewAttendanceRepository(pool)
	students := postgres.NewStudentRepository(pool)

	up, err := uploads.New(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("failed to prepare uploads directory: %w", err)
	}

	embedder := gallery.NewEmbeddingClient(cfg.Embedding.URL, cfg.Embedding.Dim)
	matcher := gallery.NewMatcher(embedder, gallery.New(), cfg.Matcher.Tolerance, cfg.Matcher.Timeout)

	var sender notify.Sender
	if cfg.SMTP.Enabled() {
		sender = notify.NewMailer(&cfg.SMTP, &cfg.Assets.Notify)
		fmt.Printf("Guardian notifications enabled (%s)\n", cfg.SMTP.Host)
	} else {
		fmt.Println("Guardian notifications disabled (SMTP not configured)")
	}
	dispatcher := notify.NewDispatcher(sender,
		mustGetInt(cmd, "notify-workers"), mustGetInt(cmd, "notify-queue"))
	defer dispatcher.Stop()

	commands := command.NewStore(cfg.Command.CommandTTL, cfg.Command.ResultTTL)
	wf := workflow.New(commands, matcher, attendance, students, up, dispatcher,
		cfg.Command.DuplicateWindow)

	n, err := wf.ReloadGallery(ctx)
	if err != nil {
		return fmt.Errorf("failed to load face gallery: %w", err)
	}
	fmt.Printf("Face gallery loaded with %d identities (%s)\n", n, matcher)

	host, port := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, host, port, commands, wf, attendance, students, up.Dir())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Facegate attendance server on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
