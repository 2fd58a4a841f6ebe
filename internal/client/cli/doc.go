// Package cli implements the interactive taskkeeper command line: a small
// REPL that registers, logs in and manages the user's todos over gRPC.
package cli
