package config

import (
	"errors"
	"strings"
	"testing"
)

// TestNewConfig tests default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.RPCAddress != DefaultRPCAddress {
		t.Errorf("expected default RPC address %s, got %s", DefaultRPCAddress, cfg.RPCAddress)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("expected default workers %d, got %d", DefaultWorkers, cfg.Workers)
	}
	if cfg.DBDir == "" {
		t.Error("expected a default database directory")
	}
	if !strings.HasSuffix(cfg.BitcoinConfPath, "bitcoin.conf") {
		t.Errorf("unexpected bitcoin.conf path: %s", cfg.BitcoinConfPath)
	}
}

// TestConfigValidate tests validation rules.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts defaults", func(t *testing.T) {
		t.Parallel()

		if err := NewConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects empty RPC address", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.RPCAddress = ""
		if err := cfg.Validate(); !errors.Is(err, ErrNoRPCAddress) {
			t.Errorf("expected ErrNoRPCAddress, got %v", err)
		}
	})

	t.Run("rejects non-positive workers", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Workers = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidWorkers) {
			t.Errorf("expected ErrInvalidWorkers, got %v", err)
		}
	})

	t.Run("rejects a negative limit", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Limit = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("expected ErrInvalidLimit, got %v", err)
		}
	})

	t.Run("rejects conflicting report formats", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true
		if err := cfg.Validate(); !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

// TestXDGDirs tests the derived directory paths.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGDataDir(), AppName) {
		t.Errorf("unexpected data dir: %s", XDGDataDir())
	}
	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("unexpected config dir: %s", XDGConfigDir())
	}
}
