package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msuddaby/DownDetector/config"
	"github.com/msuddaby/DownDetector/logging"
	"github.com/msuddaby/DownDetector/monitor"
	"github.com/msuddaby/DownDetector/network"
	"github.com/msuddaby/DownDetector/pushover"
)

var (
	flagSettings string
	flagSecrets  string
	flagLog      string
	flagProxy    string
)

var rootCmd = &cobra.Command{
	Use:           "downdetector",
	Short:         "Check websites on an interval and send a Pushover alert when one is down",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMonitor,
}

func init() {
	rootCmd.Flags().StringVar(&flagSettings, "settings", config.DefaultSettingsFile, "Path to the settings file (JSON or YAML)")
	rootCmd.Flags().StringVar(&flagSecrets, "secrets", config.DefaultSecretsPath(), "Path to the secrets file (JSON or YAML)")
	rootCmd.Flags().StringVar(&flagLog, "log", "", "Also append log output to this file")
	rootCmd.Flags().StringVar(&flagProxy, "proxy", "", "Optional SOCKS5 proxy for outbound requests (e.g., socks5://127.0.0.1:9050)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Options{
		SettingsPath: flagSettings,
		SecretsPath:  flagSecrets,
	})
	if err != nil {
		return err
	}

	out, closer, err := logging.Open(flagLog)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger := logging.New(out)

	client, err := network.NewClient(cfg.RequestTimeout, flagProxy)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.InfoLog.Println("Domains and URLs being monitored:")
	for _, target := range cfg.URLs {
		logger.InfoLog.Printf("- Domain: %s, URL: %s", extractDomain(target), target)
	}
	logger.InfoLog.Printf("Starting website monitoring for %s", strings.Join(cfg.URLs, ", "))
	logger.InfoLog.Printf("Checking every %v", cfg.CheckInterval)
	logger.InfoLog.Println("Press Ctrl+C to exit")

	m := &monitor.Monitor{
		Targets:  cfg.URLs,
		Interval: cfg.CheckInterval,
		Client:   client,
		Alerter:  pushover.New(cfg.PushoverAppToken, cfg.PushoverUserKey, client, logger),
		Logger:   logger,
	}

	err = m.Run(ctx)
	if monitor.IsShutdown(err) {
		logger.InfoLog.Println("Received shutdown signal. Exiting program.")
		return nil
	}
	return err
}

func extractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "invalid_domain"
	}
	return parsed.Host
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
