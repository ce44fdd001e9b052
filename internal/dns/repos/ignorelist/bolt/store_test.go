package bolt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbolt "go.etcd.io/bbolt"
)

func openTemp(t *testing.T) ignorelist.Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "ignore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestBoltStore_GetFirstMatch_ExactAndSuffix(t *testing.T) {
	st := openTemp(t)

	if _, ok, err := st.GetFirstMatch("_ipp._tcp.local"); err != nil || ok {
		t.Fatalf("expected empty miss, got ok=%v err=%v", ok, err)
	}

	added := time.Unix(1700000000, 0)
	rules := []domain.IgnoreRule{
		{Name: "_sleep-proxy._udp.local", Kind: domain.IgnoreRuleExact, Source: "config", AddedAt: added},
		{Name: "_googlecast._tcp.local", Kind: domain.IgnoreRuleSuffix, Source: "/etc/rr-mdns/ignore.txt", AddedAt: added},
		{Name: "local", Kind: domain.IgnoreRuleSuffix, Source: "broad", AddedAt: added},
	}
	require.NoError(t, st.RebuildAll(rules, 3, added.Unix()))

	r, ok, err := st.GetFirstMatch("_sleep-proxy._udp.local")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rules[0], r)

	// the most specific suffix wins over "local"
	r, ok, err = st.GetFirstMatch("kitchen._googlecast._tcp.local")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rules[1], r)

	r, ok, err = st.GetFirstMatch("_http._tcp.local")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "local", r.Name)

	if _, ok, err = st.GetFirstMatch("printer.lan"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestBoltStore_RebuildReplacesRules(t *testing.T) {
	st := openTemp(t)
	now := time.Unix(1700000000, 0)

	require.NoError(t, st.RebuildAll([]domain.IgnoreRule{
		{Name: "_a._tcp.local", Kind: domain.IgnoreRuleExact, Source: "s", AddedAt: now},
		{Name: "_b._tcp.local", Kind: domain.IgnoreRuleSuffix, Source: "s", AddedAt: now},
		{Name: "skip.local", Kind: 9, Source: "s", AddedAt: now},
	}, 1, 100))
	assert.Equal(t, ignorelist.StoreStats{ExactCount: 1, SuffixCount: 1, Version: 1, UpdatedUnix: 100}, st.Stats())

	require.NoError(t, st.RebuildAll([]domain.IgnoreRule{
		{Name: "_c._tcp.local", Kind: domain.IgnoreRuleExact, Source: "s", AddedAt: now},
	}, 2, 200))
	assert.Equal(t, ignorelist.StoreStats{ExactCount: 1, SuffixCount: 0, Version: 2, UpdatedUnix: 200}, st.Stats())

	_, ok, err := st.GetFirstMatch("_a._tcp.local")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStore_ReopenKeepsRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ignore.db")
	st, err := New(path)
	require.NoError(t, err)
	now := time.Unix(1700000000, 0)
	require.NoError(t, st.RebuildAll([]domain.IgnoreRule{
		{Name: "_raop._tcp.local", Kind: domain.IgnoreRuleExact, Source: "s", AddedAt: now},
	}, 5, now.Unix()))
	require.NoError(t, st.Close())

	st, err = New(path)
	require.NoError(t, err)
	defer st.Close()
	_, ok, err := st.GetFirstMatch("_raop._tcp.local")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), st.Stats().Version)
}

func TestBoltStore_CorruptValue(t *testing.T) {
	st := openTemp(t)
	bs := st.(*boltStore)
	require.NoError(t, bs.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketExact).Put([]byte("short.local"), []byte{1, 2})
	}))
	_, ok, err := st.GetFirstMatch("short.local")
	assert.ErrorIs(t, err, errCorruptValue)
	assert.False(t, ok)
}

func TestNew_OpenError(t *testing.T) {
	st, err := New(filepath.Join(t.TempDir(), "no-such-dir", "ignore.db"))
	if err == nil || st != nil {
		t.Fatalf("expected New to fail when parent directory does not exist")
	}
}

func TestReverse(t *testing.T) {
	assert.Equal(t, "lacol.pct_", reverse("_tcp.local"))
	assert.Equal(t, "", reverse(""))
}
