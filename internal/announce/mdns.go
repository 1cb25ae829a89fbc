// Package announce advertises the web UI on the local network over mDNS.
package announce

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hashicorp/mdns"

	"netscan/internal/logger"
)

// Announcer publishes one mDNS service record.
type Announcer struct {
	instance string
	service  string
	port     int
	server   *mdns.Server
}

// NewAnnouncer creates an announcer for the HTTP listen address addr.
func NewAnnouncer(instance, service, addr string) (*Announcer, error) {
	port, err := portOf(addr)
	if err != nil {
		return nil, err
	}
	if instance == "" {
		instance, _ = os.Hostname()
	}
	if service == "" {
		service = "_http._tcp"
	}
	return &Announcer{instance: instance, service: service, port: port}, nil
}

// Start begins answering mDNS queries.
func (a *Announcer) Start() error {
	zone, err := mdns.NewMDNSService(a.instance, a.service, "", "", a.port, nil, []string{"path=/"})
	if err != nil {
		return fmt.Errorf("failed to build mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return fmt.Errorf("failed to start mDNS server: %w", err)
	}
	a.server = server

	logger.Infof("mDNS: announcing %s.%s.local on port %d", a.instance, a.service, a.port)
	return nil
}

// Stop withdraws the announcement. Safe to call when not started.
func (a *Announcer) Stop() error {
	if a.server == nil {
		return nil
	}
	err := a.server.Shutdown()
	a.server = nil
	return err
}

func portOf(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port in listen address %q", addr)
	}
	return port, nil
}
