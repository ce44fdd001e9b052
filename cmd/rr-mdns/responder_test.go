package main

import (
	"context"
	"net"
	"net/netip"
	"sync"

	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/gateways/transport"
	"github.com/haukened/rr-mdns/internal/dns/gateways/wire"
)

// responderTransport answers every query it is sent from a fixed zone, as a
// well-behaved mDNS responder on the link would.
type responderTransport struct {
	zone   map[string][]domain.Record
	mu     sync.Mutex
	queue  [][]byte
	closed bool
}

func (r *responderTransport) Send(payload []byte) error {
	q, err := wire.DecodeMessage(payload)
	if err != nil {
		return err
	}
	resp := domain.Message{
		ID:    q.ID,
		Flags: domain.Flags{Response: true, Authoritative: true},
	}
	for _, question := range q.Questions {
		resp.Answers = append(resp.Answers, r.zone[question.Name.Canonical()]...)
	}
	if len(resp.Answers) == 0 {
		return nil
	}
	b, err := wire.EncodeMessage(resp)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.queue = append(r.queue, b)
	r.mu.Unlock()
	return nil
}

func (r *responderTransport) Receive(ctx context.Context) (transport.Datagram, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		b := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return transport.Datagram{Payload: b, Source: &net.UDPAddr{IP: net.IPv4(192, 168, 1, 20), Port: 5353}}, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return transport.Datagram{}, ctx.Err()
}

func (r *responderTransport) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *responderTransport) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(192, 168, 1, 10), Port: 41000}
}

func name(s string) domain.Name { return domain.MustParseName(s) }

func rr(owner string, data domain.RData) domain.Record {
	return domain.Record{Name: name(owner), Type: data.Type(), Class: domain.RRClassIN, TTL: 120, Data: data}
}

// testZone advertises a printer and a router.
func testZone() map[string][]domain.Record {
	printer := []domain.Record{
		rr("_ipp._tcp.local.", domain.PTR{Target: name("Office._ipp._tcp.local.")}),
		rr("Office._ipp._tcp.local.", domain.SRV{Port: 631, Target: name("printer.local.")}),
		rr("Office._ipp._tcp.local.", domain.NewTXT([]string{"rp=ipp/print", "ty=Office Laser"})),
		rr("printer.local.", domain.A{Addr: netip.MustParseAddr("192.168.1.20")}),
	}
	router := []domain.Record{
		rr("_http._tcp.local.", domain.PTR{Target: name("Router._http._tcp.local.")}),
		rr("Router._http._tcp.local.", domain.SRV{Port: 80, Target: name("router.local.")}),
		rr("router.local.", domain.A{Addr: netip.MustParseAddr("192.168.1.1")}),
	}
	return map[string][]domain.Record{
		"_services._dns-sd._udp.local.": {
			rr("_services._dns-sd._udp.local.", domain.PTR{Target: name("_ipp._tcp.local.")}),
			rr("_services._dns-sd._udp.local.", domain.PTR{Target: name("_http._tcp.local.")}),
		},
		"_ipp._tcp.local.":  printer,
		"_http._tcp.local.": router,
	}
}

// fakeNetwork returns deps exposing one interface answered by testZone.
func fakeNetwork() (appDeps, *[]*responderTransport) {
	var (
		mu     sync.Mutex
		opened []*responderTransport
	)
	deps := appDeps{
		factory: func(transport.Family, *net.Interface) (transport.Transport, error) {
			tr := &responderTransport{zone: testZone()}
			mu.Lock()
			opened = append(opened, tr)
			mu.Unlock()
			return tr, nil
		},
		lister: func([]string) ([]net.Interface, error) {
			return []net.Interface{{Index: 1, Name: "lan0", Flags: net.FlagUp | net.FlagMulticast}}, nil
		},
	}
	return deps, &opened
}
