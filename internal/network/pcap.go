package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/gopacket/pcap"
)

// PcapSource lists the devices libpcap can capture on.
type PcapSource struct {
	findAllDevs func() ([]pcap.Interface, error)
}

// NewPcapSource creates a source backed by pcap.FindAllDevs
func NewPcapSource() *PcapSource {
	return &PcapSource{findAllDevs: pcap.FindAllDevs}
}

func (s *PcapSource) Name() string { return "pcap" }

func (s *PcapSource) Links(ctx context.Context) ([]string, error) {
	devices, err := s.findAllDevs()
	if err != nil {
		return nil, fmt.Errorf("failed to find pcap devices: %w", err)
	}

	names := make([]string, 0, len(devices))
	for _, dev := range devices {
		if isPseudoDevice(dev.Name) {
			continue
		}
		names = append(names, dev.Name)
	}
	return names, nil
}

// libpcap also reports capture-only pseudo devices that are not links.
var pseudoDevicePrefixes = []string{"usbmon", "bluetooth-monitor", "nflog", "nfqueue", "dbus-"}

func isPseudoDevice(name string) bool {
	if name == "any" {
		return true
	}
	for _, prefix := range pseudoDevicePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
