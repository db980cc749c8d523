// Package log provides logging helpers built on the standard slog package.
//
// The RedactHandler sanitizes RPC credentials in log output: joinscan logs
// may be shared when reporting analysis results, and bitcoind credentials
// must never leak into them. Even in verbose mode, attribute values for
// credential-like keys are masked before reaching the underlying handler.
package log
