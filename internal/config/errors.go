package config

import "errors"

// Configuration validation errors.
//
// Design decision: package-level sentinel errors rather than ad-hoc error
// values in Validate(). Callers can use errors.Is() for programmatic
// handling while still getting human-readable messages.
var (
	// ErrNoRPCAddress is returned when the bitcoind RPC address is empty.
	ErrNoRPCAddress = errors.New("no RPC address: provide --rpc-address or a config file")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidLimit is returned when the quick-mode limit is negative.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoRPCCredentials is returned when RPC credentials are neither
	// given explicitly nor found in the bitcoind configuration file.
	ErrNoRPCCredentials = errors.New("no RPC credentials: set --rpc-user/--rpc-password or rpcuser/rpcpassword in bitcoin.conf")
)
