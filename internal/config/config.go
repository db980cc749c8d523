package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultRPCAddress is the standard bitcoind JSON-RPC endpoint on
	// mainnet. We use 127.0.0.1 instead of localhost to avoid DNS
	// resolution and IPv6 surprises.
	DefaultRPCAddress = "127.0.0.1:8332"

	// DefaultWorkers is the number of concurrent per-transaction tasks
	// for scanning and analysis. Prevout resolution is the bottleneck and
	// bitcoind handles a handful of parallel RPC calls comfortably;
	// higher values mostly queue up inside the node.
	DefaultWorkers = 8

	// AppName is the application name used for XDG directory paths.
	AppName = "joinscan"
)

// Config holds all configuration options for joinscan.
//
// Design decision: a single flat struct instead of nested sub-structs. The
// number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// RPCAddress is the bitcoind JSON-RPC endpoint in "host:port" format.
	RPCAddress string

	// RPCUser and RPCPassword authenticate against bitcoind. When empty,
	// they are read from BitcoinConfPath.
	RPCUser     string
	RPCPassword string

	// BitcoinConfPath is the bitcoind configuration file to read RPC
	// credentials from when they are not given explicitly. Defaults to
	// ~/.bitcoin/bitcoin.conf.
	BitcoinConfPath string

	// Workers is the number of concurrent per-transaction tasks.
	Workers int

	// DBDir is the directory holding the SQLite corpus database.
	// Defaults to the XDG data directory.
	DBDir string

	// Limit restricts analysis to the last N corpus transactions.
	// 0 means the whole corpus. Quick mode for debugging.
	Limit int

	// JSONReport enables JSON report output instead of the human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When empty, the
	// report is written to stdout.
	ReportFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// Args are the positional command arguments: block heights, block
	// ids, transaction ids, or files containing transaction ids.
	Args []string
}

// NewConfig creates a Config with default values.
//
// Design decision: a constructor instead of relying on zero values because
// several defaults are non-zero. It also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		RPCAddress:      DefaultRPCAddress,
		BitcoinConfPath: DefaultBitcoinConfPath(),
		Workers:         DefaultWorkers,
		DBDir:           XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for joinscan.
// On Linux: ~/.local/share/joinscan.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for joinscan.
// On Linux: ~/.config/joinscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultBitcoinConfPath returns the default bitcoind configuration file
// location, ~/.bitcoin/bitcoin.conf.
func DefaultBitcoinConfPath() string {
	return filepath.Join(xdg.Home, ".bitcoin", "bitcoin.conf")
}

// Validate checks if the configuration is valid, returning a specific
// error describing the first problem found. Called once after CLI parsing,
// before any work begins.
func (c *Config) Validate() error {
	if c.RPCAddress == "" {
		return ErrNoRPCAddress
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Limit < 0 {
		return ErrInvalidLimit
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
