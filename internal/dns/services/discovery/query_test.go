package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-mdns/internal/dns/common/clock"
	"github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/common/metrics"
	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/gateways/transport"
	"github.com/haukened/rr-mdns/internal/dns/gateways/wire"
)

const testTimeout = 50 * time.Millisecond

func fixedID(id uint16) IDGenerator { return func() uint16 { return id } }

func response(t *testing.T, id uint16, answers []domain.Record, additional ...domain.Record) []byte {
	t.Helper()
	data, err := wire.EncodeMessage(domain.Message{
		ID:         id,
		Flags:      domain.Flags{Response: true, Authoritative: true},
		Answers:    answers,
		Additional: additional,
	})
	require.NoError(t, err)
	return data
}

func newHTTPQuery(t *testing.T, opts Options) *Query {
	t.Helper()
	if opts.Timeout == 0 {
		opts.Timeout = testTimeout
	}
	q, err := NewQuery(domain.MustService("_http._tcp"), domain.LocalDomain, opts)
	require.NoError(t, err)
	return q
}

func TestNewQuery_Question(t *testing.T) {
	q := newHTTPQuery(t, Options{UnicastResponse: true})
	assert.Equal(t, "_http._tcp.local.", q.Question().Name.String())
	assert.Equal(t, domain.RRTypePTR, q.Question().Type)
	assert.Equal(t, domain.RRClassIN, q.Question().Class)
	assert.True(t, q.Question().UnicastResponse)
	assert.Equal(t, StateBuilt, q.State())
	assert.Equal(t, uint16(0), q.LastID())
}

func TestNewQuery_ServiceAlreadyQualified(t *testing.T) {
	q, err := NewQuery(domain.MustService("_ipp._tcp.local."), domain.LocalDomain, Options{})
	require.NoError(t, err)
	assert.Equal(t, "_ipp._tcp.local.", q.Question().Name.String())
}

func TestNewQuery_RootService(t *testing.T) {
	_, err := NewQuery(domain.Service{}, domain.Root, Options{})
	assert.Error(t, err)
}

func TestRunOnce_BuildsInstance(t *testing.T) {
	tr := &scriptedTransport{
		reply: func([]byte) [][]byte {
			return [][]byte{response(t, 0,
				[]domain.Record{ptr(httpService, instanceX)},
				srv(instanceX, hostH, 80), a(hostH, "10.0.0.5"))}
		},
	}
	q := newHTTPQuery(t, Options{NewID: fixedID(42)})

	got, err := q.RunOnce(context.Background(), tr)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0].Name)
	assert.Equal(t, uint16(80), got[0].Port)
	assert.Equal(t, "10.0.0.5", got[0].Addresses[0].IP.String())
	assert.Equal(t, StateExecuted, q.State())
	assert.Equal(t, uint16(42), q.LastID())

	// the sent bytes are a well-formed query for the service
	require.Equal(t, 1, tr.sentCount())
	sent, err := wire.DecodeMessage(tr.sent[0])
	require.NoError(t, err)
	assert.Equal(t, uint16(42), sent.ID)
	assert.False(t, sent.Flags.Response)
	require.Len(t, sent.Questions, 1)
	assert.Equal(t, "_http._tcp.local.", sent.Questions[0].Name.String())
}

func TestRunOnce_RecordsAcrossDatagrams(t *testing.T) {
	tr := &scriptedTransport{
		reply: func([]byte) [][]byte {
			return [][]byte{
				response(t, 0, []domain.Record{ptr(httpService, instanceX)}),
				response(t, 7, []domain.Record{srv(instanceX, hostH, 80)}),
				response(t, 0, []domain.Record{a(hostH, "10.0.0.5")}),
			}
		},
	}
	q := newHTTPQuery(t, Options{NewID: fixedID(7)})

	got, err := q.RunOnce(context.Background(), tr)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint16(80), got[0].Port)
	assert.Len(t, got[0].Addresses, 1)
}

func TestRunOnce_SkipsBadDatagrams(t *testing.T) {
	query := response(t, 0, nil)
	query[2] = 0 // clear QR

	wrongID := response(t, 99, []domain.Record{ptr(httpService, domain.MustParseName("Wrong._http._tcp.local."))})

	refused, err := wire.EncodeMessage(domain.Message{
		Flags:   domain.Flags{Response: true, RCode: domain.RCodeRefused},
		Answers: []domain.Record{ptr(httpService, domain.MustParseName("Refused._http._tcp.local."))},
	})
	require.NoError(t, err)

	tr := &scriptedTransport{
		reply: func([]byte) [][]byte {
			return [][]byte{
				{0x00, 0x01}, // short header
				{0, 0, 0x84, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0xC0, 12}, // pointer loop
				query,
				wrongID,
				refused,
				response(t, 0, []domain.Record{ptr(httpService, instanceX)}),
			}
		},
	}
	rec := log.NewRecorder()
	m := metrics.New()
	q := newHTTPQuery(t, Options{NewID: fixedID(5), Logger: rec, Metrics: m})

	got, err := q.RunOnce(context.Background(), tr)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "X._http._tcp.local.", got[0].FullName.String())

	debug := rec.Messages("debug")
	assert.Contains(t, debug, "dropping malformed datagram")
	assert.Contains(t, debug, "ignoring datagram")
	assert.Empty(t, rec.Messages("error"))

	// accepted, malformed and ignored series
	n, err := testutil.GatherAndCount(m.Registry(), "rr_mdns_datagrams_received_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRunOnce_NoResponsesIsEmptyNotError(t *testing.T) {
	q := newHTTPQuery(t, Options{})
	start := time.Now()

	got, err := q.RunOnce(context.Background(), &scriptedTransport{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.GreaterOrEqual(t, time.Since(start), testTimeout)
	assert.Equal(t, StateExecuted, q.State())
}

func TestRunOnce_SendFailureIsFatal(t *testing.T) {
	tr := &scriptedTransport{sendErr: fmt.Errorf("%w: network unreachable", domain.ErrTransport)}
	q := newHTTPQuery(t, Options{})

	got, err := q.RunOnce(context.Background(), tr)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.Equal(t, StateBuilt, q.State())
}

func TestRunOnce_ReceiveFailureIsFatal(t *testing.T) {
	tr := &MockTransport{}
	tr.On("Send", mock.Anything).Return(nil)
	tr.On("Receive", mock.Anything).Return(transport.Datagram{}, fmt.Errorf("%w: socket closed", domain.ErrTransport))
	q := newHTTPQuery(t, Options{})

	_, err := q.RunOnce(context.Background(), tr)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	tr.AssertExpectations(t)
}

func TestRunOnce_ParentCancelReturnsPartial(t *testing.T) {
	tr := &scriptedTransport{
		reply: func([]byte) [][]byte {
			return [][]byte{response(t, 0, []domain.Record{ptr(httpService, instanceX)})}
		},
	}
	q := newHTTPQuery(t, Options{Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	got, err := q.RunOnce(ctx, tr)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, got, 1)
}

func TestRunOnce_Idempotent(t *testing.T) {
	tr := &scriptedTransport{
		reply: func([]byte) [][]byte {
			return [][]byte{
				response(t, 0, []domain.Record{ptr(httpService, instanceX), ptr(httpService, domain.MustParseName("Y._http._tcp.local."))}),
				response(t, 0, nil, srv(instanceX, hostH, 80), a(hostH, "10.0.0.5")),
			}
		},
	}
	ids := []uint16{1, 2}
	next := 0
	q := newHTTPQuery(t, Options{NewID: func() uint16 { next++; return ids[next-1] }})

	first, err := q.RunOnce(context.Background(), tr)
	require.NoError(t, err)
	second, err := q.RunOnce(context.Background(), tr)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, tr.sentCount())
	assert.Equal(t, uint16(2), q.LastID())
}

func TestRunOnce_RecordsMetricsAndClock(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))
	tr := &scriptedTransport{
		reply: func([]byte) [][]byte {
			clk.Advance(2 * time.Second)
			return [][]byte{response(t, 0, []domain.Record{ptr(httpService, instanceX)})}
		},
	}
	m := metrics.New()
	q := newHTTPQuery(t, Options{Metrics: m, Clock: clk, Timeout: testTimeout})

	start := time.Now()
	_, err := q.RunOnce(context.Background(), tr)
	require.NoError(t, err)
	// the window runs on wall time even though the mock clock moved past it
	assert.GreaterOrEqual(t, time.Since(start), testTimeout)

	n, err := testutil.GatherAndCount(m.Registry(), "rr_mdns_queries_sent_total", "rr_mdns_instances_discovered_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range families {
		if mf.GetName() == "rr_mdns_round_duration_seconds" {
			sum = mf.GetMetric()[0].GetHistogram().GetSampleSum()
		}
	}
	assert.Equal(t, 2.0, sum)
}

func TestRunOnce_EncodeFailure(t *testing.T) {
	codec := &MockCodec{}
	codec.On("EncodeQuery", uint16(3), mock.Anything).Return([]byte(nil), errors.New("boom"))
	tr := &MockTransport{}
	q := newHTTPQuery(t, Options{Codec: codec, NewID: fixedID(3)})

	_, err := q.RunOnce(context.Background(), tr)
	assert.Error(t, err)
	tr.AssertNotCalled(t, "Send", mock.Anything)
}

func TestRandomID_NonZero(t *testing.T) {
	for i := 0; i < 1000; i++ {
		assert.NotZero(t, RandomID())
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "built", StateBuilt.String())
	assert.Equal(t, "executed", StateExecuted.String())
	assert.Equal(t, "State(9)", State(9).String())
}

// MockCodec implements wire.MessageCodec for testing
type MockCodec struct {
	mock.Mock
}

func (m *MockCodec) EncodeQuery(id uint16, q domain.Question) ([]byte, error) {
	args := m.Called(id, q)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCodec) DecodeMessage(data []byte) (domain.Message, error) {
	args := m.Called(data)
	return args.Get(0).(domain.Message), args.Error(1)
}
