package main

import "flag"

// newFlagSet creates a flag.FlagSet with ContinueOnError so callers
// control the error handling behavior (mirrors the cmd/eth2030 flag
// wrapper pattern, minus the uint64 shim this command has no use for).
func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}
