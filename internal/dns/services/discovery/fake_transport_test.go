package discovery

import (
	"context"
	"net"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/haukened/rr-mdns/internal/dns/gateways/transport"
)

// scriptedTransport replays queued datagrams, then blocks until ctx is done.
type scriptedTransport struct {
	mu      sync.Mutex
	queue   []transport.Datagram
	sent    [][]byte
	sendErr error
	recvErr error
	// reply builds datagrams from the sent query; it runs on every Send.
	reply func(query []byte) [][]byte
}

func (s *scriptedTransport) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, append([]byte(nil), payload...))
	if s.reply != nil {
		for _, p := range s.reply(payload) {
			s.queue = append(s.queue, transport.Datagram{Payload: p, Source: &net.UDPAddr{IP: net.IPv4(10, 0, 0, 5), Port: 5353}})
		}
	}
	return nil
}

func (s *scriptedTransport) Receive(ctx context.Context) (transport.Datagram, error) {
	s.mu.Lock()
	if s.recvErr != nil {
		err := s.recvErr
		s.mu.Unlock()
		return transport.Datagram{}, err
	}
	if len(s.queue) > 0 {
		dg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		return dg, nil
	}
	s.mu.Unlock()
	<-ctx.Done()
	return transport.Datagram{}, ctx.Err()
}

func (s *scriptedTransport) Close() error { return nil }

func (s *scriptedTransport) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}
}

func (s *scriptedTransport) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// MockTransport implements transport.Transport with testify expectations.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(payload []byte) error {
	args := m.Called(payload)
	return args.Error(0)
}

func (m *MockTransport) Receive(ctx context.Context) (transport.Datagram, error) {
	args := m.Called(ctx)
	return args.Get(0).(transport.Datagram), args.Error(1)
}

func (m *MockTransport) Close() error {
	return m.Called().Error(0)
}

func (m *MockTransport) LocalAddr() net.Addr {
	return m.Called().Get(0).(net.Addr)
}
