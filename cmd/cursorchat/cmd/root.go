package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xwartz/cursor-api/pkg/client"
	"github.com/xwartz/cursor-api/pkg/config"
	"github.com/xwartz/cursor-api/pkg/debug"
	"github.com/xwartz/cursor-api/pkg/observability"
)

var (
	// Global flags
	cfgFile   string
	baseURL   string
	modelFlag string
	timeout   time.Duration

	// Shared state set during PersistentPreRun
	cfg *config.Config
	sdk *client.Client
)

// rootCmd is the base command for cursorchat.
var rootCmd = &cobra.Command{
	Use:           "cursorchat",
	Short:         "Chat with the Cursor backend from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env is a convenience, not a requirement.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Warn("could not load .env file", "error", err)
		}
		debug.Init("", "")

		// Listing models needs no credentials or backend.
		if cmd.Name() == "models" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Flags override config.
		if baseURL != "" {
			cfg.Backend.URL = baseURL
		}
		if modelFlag != "" {
			cfg.Defaults.Model = modelFlag
		}
		if timeout > 0 {
			cfg.Backend.Timeout = timeout
		}

		sdk, err = client.New(client.Options{
			Token:   cfg.Auth.Token,
			BaseURL: cfg.Backend.URL,
			Timeout: cfg.Backend.Timeout,
		})
		if err != nil {
			return err
		}

		if cfg.Metrics.Enabled {
			serveMetrics(cfg.Metrics.Addr, cfg.Metrics.Path)
		}
		return nil
	},
}

// serveMetrics exposes the Prometheus endpoint in the background for
// long-lived invocations.
func serveMetrics(addr, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, observability.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Warn("metrics endpoint failed", "addr", addr, "error", err)
		}
	}()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend base URL")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "model name")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout for non-streaming calls")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(modelsCmd)
}
