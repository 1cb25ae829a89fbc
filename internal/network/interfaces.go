package network

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"netscan/internal/logger"
)

// Lister builds the interface list offered to clients.
type Lister struct {
	source  LinkSource
	timeout time.Duration
}

// NewLister creates a lister over the given link source.
func NewLister(source LinkSource, timeout time.Duration) *Lister {
	return &Lister{source: source, timeout: timeout}
}

// List returns "all" followed by every host link except "lo".
// Enumeration failures are logged and yield just ["all"], so scanning
// every interface stays possible even when the host query breaks.
func (l *Lister) List(ctx context.Context) []string {
	names, err := l.links(ctx)
	if err != nil {
		logger.Warnf("Could not list network interfaces via %s: %v", l.source.Name(), err)
		return []string{AllInterfaces}
	}

	list := make([]string, 0, len(names)+1)
	list = append(list, AllInterfaces)
	for _, name := range names {
		if name == "" || name == LoopbackName {
			continue
		}
		list = append(list, name)
	}
	return list
}

// Contains reports whether name is currently a valid selection.
func (l *Lister) Contains(ctx context.Context, name string) bool {
	return slices.Contains(l.List(ctx), name)
}

func (l *Lister) links(ctx context.Context) ([]string, error) {
	if l.source == nil {
		return nil, errors.New("no link source configured")
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	names, err := l.source.Links(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s reported no interfaces", l.source.Name())
	}
	return names, nil
}
