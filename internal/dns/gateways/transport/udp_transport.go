package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

const (
	// defaultBufferSize fits the largest mDNS message (RFC 6762 §17).
	defaultBufferSize = 9000
	// pollInterval bounds a single blocking read when ctx carries no deadline,
	// so cancellation is noticed.
	pollInterval = 250 * time.Millisecond
	// multicastTTL is the IP TTL / hop limit mandated for mDNS (RFC 6762 §11).
	multicastTTL = 255
)

// Options configures a multicast transport.
type Options struct {
	Family Family
	// Interface scopes outgoing multicast; nil leaves the choice to the OS.
	Interface *net.Interface
	// Destination overrides the multicast group, mainly for tests.
	Destination *net.UDPAddr
	// BufferSize is the receive buffer; 0 means 9000 bytes.
	BufferSize int
	Logger     log.Logger
}

// packetConn hides the differences between ipv4.PacketConn and ipv6.PacketConn.
type packetConn interface {
	readFrom(b []byte) (n int, ifIndex int, src net.Addr, err error)
	writeTo(b []byte, dst net.Addr) (int, error)
	setReadDeadline(t time.Time) error
}

type packetConn4 struct{ *ipv4.PacketConn }

func (p packetConn4) readFrom(b []byte) (int, int, net.Addr, error) {
	n, cm, src, err := p.ReadFrom(b)
	if cm == nil {
		return n, 0, src, err
	}
	return n, cm.IfIndex, src, err
}

func (p packetConn4) writeTo(b []byte, dst net.Addr) (int, error) { return p.WriteTo(b, nil, dst) }

func (p packetConn4) setReadDeadline(t time.Time) error { return p.SetReadDeadline(t) }

type packetConn6 struct{ *ipv6.PacketConn }

func (p packetConn6) readFrom(b []byte) (int, int, net.Addr, error) {
	n, cm, src, err := p.ReadFrom(b)
	if cm == nil {
		return n, 0, src, err
	}
	return n, cm.IfIndex, src, err
}

func (p packetConn6) writeTo(b []byte, dst net.Addr) (int, error) { return p.WriteTo(b, nil, dst) }

func (p packetConn6) setReadDeadline(t time.Time) error { return p.SetReadDeadline(t) }

// MulticastTransport implements Transport as a legacy one-shot mDNS querier
// (RFC 6762 §5.1): it sends from an ephemeral port, so responders reply by
// unicast to that port without the socket joining the group.
type MulticastTransport struct {
	conn   *net.UDPConn
	pconn  packetConn
	dst    *net.UDPAddr
	iface  string
	buf    []byte
	logger log.Logger

	mu     sync.Mutex
	closed bool
}

// NewMulticastTransport opens the socket described by opts.
func NewMulticastTransport(opts Options) (*MulticastTransport, error) {
	if opts.Family != FamilyIPv4 && opts.Family != FamilyIPv6 {
		return nil, fmt.Errorf("%w: unsupported family %q", domain.ErrTransport, opts.Family)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	dst := opts.Destination
	if dst == nil {
		dst = opts.Family.Group()
	}
	size := opts.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}

	conn, err := net.ListenUDP(string(opts.Family), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to bind %s socket: %w", domain.ErrTransport, opts.Family, err)
	}

	t := &MulticastTransport{
		conn:   conn,
		dst:    dst,
		buf:    make([]byte, size),
		logger: logger,
	}
	if opts.Interface != nil {
		t.iface = opts.Interface.Name
	}

	if err := t.setup(opts); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug(map[string]any{
		"family":      string(opts.Family),
		"interface":   t.iface,
		"local":       conn.LocalAddr().String(),
		"destination": dst.String(),
	}, "mDNS transport opened")
	return t, nil
}

// setup applies the multicast socket options for the family.
// Missing control messages only cost the interface index on received packets,
// so that option is best effort.
func (t *MulticastTransport) setup(opts Options) error {
	switch opts.Family {
	case FamilyIPv6:
		p := ipv6.NewPacketConn(t.conn)
		if opts.Interface != nil {
			if err := p.SetMulticastInterface(opts.Interface); err != nil {
				return fmt.Errorf("%w: set multicast interface %s: %w", domain.ErrTransport, opts.Interface.Name, err)
			}
		}
		if err := p.SetMulticastHopLimit(multicastTTL); err != nil {
			return fmt.Errorf("%w: set hop limit: %w", domain.ErrTransport, err)
		}
		_ = p.SetMulticastLoopback(true)
		if err := p.SetControlMessage(ipv6.FlagInterface, true); err != nil {
			t.logger.Debug(map[string]any{"error": err.Error()}, "interface control messages unavailable")
		}
		t.pconn = packetConn6{p}
	default:
		p := ipv4.NewPacketConn(t.conn)
		if opts.Interface != nil {
			if err := p.SetMulticastInterface(opts.Interface); err != nil {
				return fmt.Errorf("%w: set multicast interface %s: %w", domain.ErrTransport, opts.Interface.Name, err)
			}
		}
		if err := p.SetMulticastTTL(multicastTTL); err != nil {
			return fmt.Errorf("%w: set multicast ttl: %w", domain.ErrTransport, err)
		}
		_ = p.SetMulticastLoopback(true)
		if err := p.SetControlMessage(ipv4.FlagInterface, true); err != nil {
			t.logger.Debug(map[string]any{"error": err.Error()}, "interface control messages unavailable")
		}
		t.pconn = packetConn4{p}
	}
	return nil
}

// Send writes payload to the destination group.
func (t *MulticastTransport) Send(payload []byte) error {
	if t.isClosed() {
		return fmt.Errorf("%w: transport closed", domain.ErrTransport)
	}
	n, err := t.pconn.writeTo(payload, t.dst)
	if err != nil {
		return fmt.Errorf("%w: send to %s: %w", domain.ErrTransport, t.dst, err)
	}
	if n != len(payload) {
		return fmt.Errorf("%w: short write to %s: %d of %d bytes", domain.ErrTransport, t.dst, n, len(payload))
	}
	t.logger.Debug(map[string]any{
		"destination": t.dst.String(),
		"interface":   t.iface,
		"size":        n,
	}, "sent mDNS query")
	return nil
}

// Receive reads the next datagram. The read deadline follows ctx; without a
// ctx deadline the read wakes every pollInterval to check for cancellation.
func (t *MulticastTransport) Receive(ctx context.Context) (Datagram, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Datagram{}, err
		}
		if t.isClosed() {
			return Datagram{}, fmt.Errorf("%w: transport closed", domain.ErrTransport)
		}

		deadline := time.Now().Add(pollInterval)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := t.pconn.setReadDeadline(deadline); err != nil {
			return Datagram{}, fmt.Errorf("%w: set read deadline: %w", domain.ErrTransport, err)
		}

		n, ifIndex, src, err := t.pconn.readFrom(t.buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Datagram{}, ctxErr
			}
			return Datagram{}, fmt.Errorf("%w: receive: %w", domain.ErrTransport, err)
		}

		payload := make([]byte, n)
		copy(payload, t.buf[:n])
		return Datagram{Payload: payload, Source: src, IfIndex: ifIndex}, nil
	}
}

// Close shuts the socket. Closing twice is not an error.
func (t *MulticastTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.conn.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", domain.ErrTransport, err)
	}
	t.logger.Debug(map[string]any{"interface": t.iface}, "mDNS transport closed")
	return nil
}

// LocalAddr returns the ephemeral address the socket is bound to.
func (t *MulticastTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *MulticastTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

var _ Transport = &MulticastTransport{}
