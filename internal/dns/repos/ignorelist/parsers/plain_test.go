package parsers

import (
	"bytes"
	"testing"
	"time"

	"github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainList_Basics(t *testing.T) {
	input := "\uFEFF# devices we never want to see\n" +
		"_Sleep-Proxy._udp.local.   \n" +
		"_sleep-proxy._udp.local # duplicate\n" +
		"\n" +
		"  Living Room._googlecast._tcp.local.\n" +
		"*._companion-link._tcp.local\n" +
		"._airplay._tcp.local\n" +
		"nodots\n" +
		"_sleep-proxy._udp.local\n"

	now := time.Unix(1723550000, 0)
	got, err := ParsePlainList(bytes.NewBufferString(input), "ignore.txt", log.NewNoopLogger(), now)
	require.NoError(t, err)

	want := []struct {
		name string
		kind domain.IgnoreRuleKind
	}{
		{"_sleep-proxy._udp.local", domain.IgnoreRuleExact},
		{"living room._googlecast._tcp.local", domain.IgnoreRuleExact},
		{"_companion-link._tcp.local", domain.IgnoreRuleSuffix},
		{"_airplay._tcp.local", domain.IgnoreRuleSuffix},
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		if got[i].Name != w.name || got[i].Kind != w.kind {
			t.Errorf("rule[%d] = %s/%s; want %s/%s", i, got[i].Name, got[i].Kind, w.name, w.kind)
		}
		assert.Equal(t, "ignore.txt", got[i].Source)
		assert.True(t, got[i].AddedAt.Equal(now))
	}
}

func TestParsePlainList_EmptyAndCommentsOnly(t *testing.T) {
	got, err := ParsePlainList(bytes.NewBufferString("\n# only comments\n   # another\n\n"), "s", log.NewNoopLogger(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParsePlainList_ConstructorErrorsAreSkipped(t *testing.T) {
	input := "_ipp._tcp.local\n*._http._tcp.local\n"

	got, err := ParsePlainList(bytes.NewBufferString(input), "", log.NewNoopLogger(), time.Unix(1, 0))
	require.NoError(t, err)
	assert.Empty(t, got, "empty source")

	got, err = ParsePlainList(bytes.NewBufferString(input), "src", log.NewNoopLogger(), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got, "zero time")
}

func TestParsePlainList_LogsSkips(t *testing.T) {
	rec := log.NewRecorder()
	_, err := ParsePlainList(bytes.NewBufferString("bad\n_ipp._tcp.local\n_ipp._tcp.local\n"), "src", rec, time.Unix(1, 0))
	require.NoError(t, err)
	msgs := rec.Messages("debug")
	assert.Contains(t, msgs, "skip_invalid_pattern")
	assert.Contains(t, msgs, "skip_duplicate")
	assert.Contains(t, msgs, "parse_plain_list_done")
}

func TestParsePlainList_ScannerError(t *testing.T) {
	big := bytes.Repeat([]byte{'a'}, 70000)
	got, err := ParsePlainList(bytes.NewBuffer(big), "src", log.NewNoopLogger(), time.Now())
	if err == nil {
		t.Fatalf("expected error from scanner, got nil")
	}
	if got != nil {
		t.Fatalf("expected nil result on error, got len=%d", len(got))
	}
}
