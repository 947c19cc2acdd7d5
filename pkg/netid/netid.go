package netid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
)

// SentinelLocalMAC identifies loopback callers, which never appear in the
// ARP table.
const SentinelLocalMAC = "local"

// ErrNoEntry is returned when the ARP table has no usable entry for an IP.
var ErrNoEntry = errors.New("netid: no arp entry")

// Resolver maps a caller's IP address to a MAC address.
type Resolver interface {
	LookupMAC(ip string) (string, error)
}

// IsLoopback reports whether the address is local traffic. The literal
// "localhost" shows up when the server itself dials by name.
func IsLoopback(addr string) bool {
	if addr == "localhost" {
		return true
	}
	parsed := net.ParseIP(addr)
	return parsed != nil && parsed.IsLoopback()
}

// ARPResolver reads the kernel ARP table. Entries appear once the caller
// has exchanged at least one packet with this host, which is always true
// for an HTTP client on the same LAN segment.
type ARPResolver struct {
	// Path of the ARP table, /proc/net/arp unless overridden in tests.
	Path string
}

// NewARPResolver builds a resolver over /proc/net/arp.
func NewARPResolver() *ARPResolver {
	return &ARPResolver{Path: "/proc/net/arp"}
}

// LookupMAC finds the hardware address recorded for ip.
func (r *ARPResolver) LookupMAC(ip string) (string, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return "", fmt.Errorf("open arp table: %w", err)
	}
	defer f.Close()
	return scanARPTable(f, ip)
}

// scanARPTable walks a /proc/net/arp formatted table:
//
//	IP address  HW type  Flags  HW address  Mask  Device
func scanARPTable(r io.Reader, ip string) (string, error) {
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		if first { // header line
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[0] != ip {
			continue
		}
		hw, err := net.ParseMAC(fields[3])
		if err != nil {
			continue
		}
		// An incomplete entry is reported as all zeros.
		if hw.String() == "00:00:00:00:00:00" {
			continue
		}
		return hw.String(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan arp table: %w", err)
	}
	return "", ErrNoEntry
}
