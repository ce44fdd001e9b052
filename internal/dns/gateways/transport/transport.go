// Package transport provides the network side of an mDNS query: a socket that
// sends one query to the multicast group and hands back whatever datagrams
// arrive. It knows nothing about the DNS wire format.
package transport

import (
	"context"
	"net"
)

// mDNS well-known groups and port (RFC 6762 §3).
const (
	MDNSPort = 5353
)

var (
	// GroupIPv4 is 224.0.0.251:5353.
	GroupIPv4 = &net.UDPAddr{IP: net.IPv4(224, 0, 0, 251), Port: MDNSPort}
	// GroupIPv6 is [ff02::fb]:5353.
	GroupIPv6 = &net.UDPAddr{IP: net.ParseIP("ff02::fb"), Port: MDNSPort}
)

// Datagram is one received packet.
type Datagram struct {
	Payload []byte
	Source  net.Addr
	// IfIndex is the interface the packet arrived on, 0 when unknown.
	IfIndex int
}

// Transport is the send/receive capability a query round borrows.
// Implementations are owned by the caller and are not safe for concurrent Receive calls.
type Transport interface {
	// Send writes payload to the multicast group. Failures wrap domain.ErrTransport.
	Send(payload []byte) error

	// Receive blocks until one datagram arrives or ctx is done, in which case
	// ctx.Err() is returned. Socket failures wrap domain.ErrTransport.
	Receive(ctx context.Context) (Datagram, error)

	// Close releases the socket. Receive calls in progress return an error.
	Close() error

	// LocalAddr returns the bound local address.
	LocalAddr() net.Addr
}

// Family selects the IP version of a transport.
type Family string

const (
	// FamilyIPv4 sends to 224.0.0.251.
	FamilyIPv4 Family = "udp4"

	// FamilyIPv6 sends to ff02::fb.
	FamilyIPv6 Family = "udp6"
)

// Group returns the multicast destination for the family.
func (f Family) Group() *net.UDPAddr {
	if f == FamilyIPv6 {
		return GroupIPv6
	}
	return GroupIPv4
}
