package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML configuration (.joinscan).
//
// Example:
//
//	rpc:
//	  address: 127.0.0.1:8332
//	  user: bitcoinrpc
//	  password: hunter2
//	workers: 8
type File struct {
	// RPC configures the bitcoind connection.
	RPC struct {
		Address  string `yaml:"address"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"rpc"`

	// Workers overrides the default concurrency when positive.
	Workers int `yaml:"workers"`
}

// LoadConfigFile loads a .joinscan YAML file. When path is empty, it
// searches the current directory and then the XDG config directory; a
// missing file is not an error in that case.
func LoadConfigFile(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = findConfigFile()
		if path == "" {
			return &File{}, nil
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's own flags
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &f, nil
}

// findConfigFile returns the first existing default config file location.
func findConfigFile() string {
	candidates := []string{
		".joinscan",
		filepath.Join(XDGConfigDir(), "joinscan.yaml"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// ApplyTo overlays the file's values onto a Config, leaving fields the
// file doesn't set untouched. Explicit CLI flags should be applied after
// this so they win.
func (f *File) ApplyTo(cfg *Config) {
	if f.RPC.Address != "" {
		cfg.RPCAddress = f.RPC.Address
	}
	if f.RPC.User != "" {
		cfg.RPCUser = f.RPC.User
	}
	if f.RPC.Password != "" {
		cfg.RPCPassword = f.RPC.Password
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
}

// LoadRPCCredentials fills in RPCUser/RPCPassword from the bitcoind
// configuration file when they are still empty. bitcoind config is plain
// key=value lines; only rpcuser and rpcpassword are read.
func (c *Config) LoadRPCCredentials() error {
	if c.RPCUser != "" && c.RPCPassword != "" {
		return nil
	}

	f, err := os.Open(c.BitcoinConfPath)
	if err != nil {
		return fmt.Errorf("%w: %s unreadable: %v", ErrNoRPCCredentials, c.BitcoinConfPath, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "rpcuser":
			if c.RPCUser == "" {
				c.RPCUser = strings.TrimSpace(value)
			}
		case "rpcpassword":
			if c.RPCPassword == "" {
				c.RPCPassword = strings.TrimSpace(value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", c.BitcoinConfPath, err)
	}

	if c.RPCUser == "" || c.RPCPassword == "" {
		return ErrNoRPCCredentials
	}
	return nil
}
