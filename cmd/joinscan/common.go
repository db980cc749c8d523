package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/joinscan/internal/config"
	"github.com/nao1215/joinscan/internal/log"
	"github.com/nao1215/joinscan/internal/report"
)

// addNodeFlags registers the bitcoind connection flags shared by the
// commands that talk to a node.
func addNodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("rpc-address", "r", config.DefaultRPCAddress,
		"bitcoind JSON-RPC endpoint (host:port)")
	cmd.Flags().String("rpc-user", "",
		"bitcoind RPC username (default: read from bitcoin.conf)")
	cmd.Flags().String("rpc-password", "",
		"bitcoind RPC password (default: read from bitcoin.conf)")
	cmd.Flags().String("bitcoin-conf", "",
		"bitcoind configuration file to read RPC credentials from (default: ~/.bitcoin/bitcoin.conf)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent per-transaction tasks")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .joinscan in current directory or XDG config directory)")
}

// addReportFlags registers the report output flags shared by the commands
// that produce reports.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// buildConfig creates a Config from the config file and cobra command
// flags. File values are applied first so that explicit flags win.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Args = args
	cfg.Verbose = getVerboseFlag(cmd)

	configPath, err := cmd.Flags().GetString("config")
	if err == nil {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		file.ApplyTo(cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("rpc-address") {
		if cfg.RPCAddress, err = flags.GetString("rpc-address"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rpc-user") {
		if cfg.RPCUser, err = flags.GetString("rpc-user"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rpc-password") {
		if cfg.RPCPassword, err = flags.GetString("rpc-password"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("bitcoin-conf") {
		if cfg.BitcoinConfPath, err = flags.GetString("bitcoin-conf"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return nil, err
		}
	}

	if flags.Lookup("json") != nil {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the credential-redacting structured logger and
// installs it as the slog default.
func setupLogger(verbose bool) *slog.Logger {
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// openReportOutput returns the report destination: the configured file, or
// stdout with a no-op closer.
func openReportOutput(cfg *config.Config) (io.WriteCloser, error) {
	if cfg.ReportFile == "" {
		return nopCloser{os.Stdout}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// nopCloser wraps stdout so openReportOutput callers can always defer Close.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// newReportWriter selects the report format configured by the flags.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output)
	}
}
