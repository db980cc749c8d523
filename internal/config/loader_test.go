package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates a file with the given content in a temp directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestLoadConfigFile tests YAML configuration loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("parses a full file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, ".joinscan", `
rpc:
  address: 10.0.0.5:8332
  user: bitcoinrpc
  password: hunter2
workers: 4
`)
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.RPC.Address != "10.0.0.5:8332" {
			t.Errorf("unexpected address: %s", f.RPC.Address)
		}
		if f.RPC.User != "bitcoinrpc" || f.RPC.Password != "hunter2" {
			t.Error("credentials not parsed")
		}
		if f.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", f.Workers)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected an error for an explicit missing file")
		}
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, ".joinscan", "rpc: [not a mapping")
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

// TestFileApplyTo tests overlaying file values onto a Config.
func TestFileApplyTo(t *testing.T) {
	t.Parallel()

	t.Run("set fields override", func(t *testing.T) {
		t.Parallel()

		var f File
		f.RPC.Address = "10.0.0.5:8332"
		f.RPC.User = "u"
		f.RPC.Password = "p"
		f.Workers = 3

		cfg := NewConfig()
		f.ApplyTo(cfg)

		if cfg.RPCAddress != "10.0.0.5:8332" || cfg.RPCUser != "u" || cfg.RPCPassword != "p" {
			t.Error("file values not applied")
		}
		if cfg.Workers != 3 {
			t.Errorf("expected 3 workers, got %d", cfg.Workers)
		}
	})

	t.Run("unset fields leave defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		(&File{}).ApplyTo(cfg)

		if cfg.RPCAddress != DefaultRPCAddress {
			t.Errorf("empty file changed the address to %s", cfg.RPCAddress)
		}
		if cfg.Workers != DefaultWorkers {
			t.Errorf("empty file changed workers to %d", cfg.Workers)
		}
	})
}

// TestLoadRPCCredentials tests reading credentials from bitcoin.conf.
func TestLoadRPCCredentials(t *testing.T) {
	t.Parallel()

	t.Run("reads rpcuser and rpcpassword", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.BitcoinConfPath = writeFile(t, "bitcoin.conf", `
# comment
server=1
rpcuser = alice
rpcpassword=s3cret
`)
		if err := cfg.LoadRPCCredentials(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.RPCUser != "alice" || cfg.RPCPassword != "s3cret" {
			t.Errorf("unexpected credentials: %s/%s", cfg.RPCUser, cfg.RPCPassword)
		}
	})

	t.Run("explicit credentials are kept", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.RPCUser = "explicit"
		cfg.RPCPassword = "pw"
		cfg.BitcoinConfPath = filepath.Join(t.TempDir(), "missing.conf")

		if err := cfg.LoadRPCCredentials(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.RPCUser != "explicit" {
			t.Errorf("explicit user overwritten: %s", cfg.RPCUser)
		}
	})

	t.Run("missing file yields ErrNoRPCCredentials", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.BitcoinConfPath = filepath.Join(t.TempDir(), "missing.conf")
		if err := cfg.LoadRPCCredentials(); !errors.Is(err, ErrNoRPCCredentials) {
			t.Errorf("expected ErrNoRPCCredentials, got %v", err)
		}
	})

	t.Run("incomplete credentials yield ErrNoRPCCredentials", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.BitcoinConfPath = writeFile(t, "bitcoin.conf", "rpcuser=alice\n")
		if err := cfg.LoadRPCCredentials(); !errors.Is(err, ErrNoRPCCredentials) {
			t.Errorf("expected ErrNoRPCCredentials, got %v", err)
		}
	})
}
