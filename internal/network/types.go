package network

import "context"

// AllInterfaces is the synthetic entry that selects every interface.
const AllInterfaces = "all"

// LoopbackName is never offered to clients.
const LoopbackName = "lo"

// LinkSource enumerates host network link names.
type LinkSource interface {
	Name() string
	Links(ctx context.Context) ([]string, error)
}
