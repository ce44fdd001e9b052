package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.QuerySent("_http._tcp.local.")
	m.QuerySent("_http._tcp.local.")
	m.DatagramReceived(OutcomeAccepted)
	m.DatagramReceived(OutcomeMalformed)
	m.DatagramReceived(OutcomeMalformed)
	m.RoundFinished("_http._tcp.local.", 3, 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("_http._tcp.local.")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.datagrams.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.datagrams.WithLabelValues(OutcomeMalformed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.instances.WithLabelValues("_http._tcp.local.")))
}

func TestMetrics_PrivateRegistry(t *testing.T) {
	a, b := New(), New()
	a.DatagramReceived(OutcomeIgnored)

	n, err := testutil.GatherAndCount(a.Registry(), "rr_mdns_datagrams_received_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = testutil.GatherAndCount(b.Registry(), "rr_mdns_datagrams_received_total")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.QuerySent("x")
	r.DatagramReceived(OutcomeAccepted)
	r.RoundFinished("x", 1, time.Second)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.QuerySent("_ipp._tcp.local.")

	path := filepath.Join(t.TempDir(), "rr_mdns.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `rr_mdns_queries_sent_total{service="_ipp._tcp.local."} 1`), string(data))
}
