package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/lesezeit/lesezeit/internal/api"
	"github.com/lesezeit/lesezeit/internal/config"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Lesezeit server",
	Long:  `Start the Lesezeit web server. This is also what runs when no subcommand is given.`,
	Example: `lesezeit serve --config config.yml
lesezeit serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the config and applies its log level unless the flag
// already set one.
func loadConfig() *config.Config {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if rootCmdPersistentFlags.LogLevel == "" {
		setLogLevel(cfg.LogLevel)
	}
	return cfg
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	debug := log.GetLevel() == log.DebugLevel
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := api.New(cfg, db, debug)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	log.Info("lesezeit started successfully", "url", cfg.ServerURL)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("API server error: %v", err)
		}
		return
	case <-ctx.Done():
	}

	log.Info("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down API server", "error", err)
	}
}
