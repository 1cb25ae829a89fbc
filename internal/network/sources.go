package network

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"

	"netscan/internal/runner"
)

// IPLinkSource lists links by running `ip -o link show`.
type IPLinkSource struct {
	runner  runner.Runner
	command string
}

// NewIPLinkSource creates a source that shells out to the iproute2 binary.
func NewIPLinkSource(r runner.Runner, command string) *IPLinkSource {
	if command == "" {
		command = "ip"
	}
	return &IPLinkSource{runner: r, command: command}
}

func (s *IPLinkSource) Name() string { return "ip" }

func (s *IPLinkSource) Links(ctx context.Context) ([]string, error) {
	res, err := s.runner.Run(ctx, runner.Command{
		Path: s.command,
		Args: []string{"-o", "link", "show"},
	})
	if err != nil {
		return nil, fmt.Errorf("ip link show failed: %w", err)
	}
	return parseIPLinkOutput(res.Stdout), nil
}

// parseIPLinkOutput extracts link names from one-line `ip -o link` output:
//
//	2: eth0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 ...
//	5: veth1a2b@if4: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 ...
func parseIPLinkOutput(out []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.SplitN(scanner.Text(), ": ", 3)
		if len(fields) < 2 {
			continue
		}
		name := strings.TrimSpace(fields[1])
		if at := strings.IndexByte(name, '@'); at >= 0 {
			name = name[:at]
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// NetSource lists links with the Go net package.
type NetSource struct {
	interfaces func() ([]net.Interface, error)
}

// NewNetSource creates a source backed by net.Interfaces
func NewNetSource() *NetSource {
	return &NetSource{interfaces: net.Interfaces}
}

func (s *NetSource) Name() string { return "net" }

func (s *NetSource) Links(ctx context.Context) ([]string, error) {
	interfaces, err := s.interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	names := make([]string, 0, len(interfaces))
	for _, iface := range interfaces {
		names = append(names, iface.Name)
	}
	return names, nil
}

// NewSource returns the link source registered under name.
func NewSource(name string, r runner.Runner, ipCommand string) (LinkSource, error) {
	switch name {
	case "", "ip":
		return NewIPLinkSource(r, ipCommand), nil
	case "net":
		return NewNetSource(), nil
	case "pcap":
		return NewPcapSource(), nil
	default:
		return nil, fmt.Errorf("unknown link source %q", name)
	}
}
