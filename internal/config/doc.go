// Package config defines the configuration for joinscan.
//
// Configuration is populated from CLI flags and optionally a .joinscan YAML
// file, then passed through the application via dependency injection rather
// than global state. RPC credentials can additionally be read from a
// bitcoind configuration file (key=value), which is where most node
// operators already keep them.
package config
