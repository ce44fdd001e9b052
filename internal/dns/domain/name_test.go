package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLabels []string
		wantString string
	}{
		{"root empty", "", []string{}, "."},
		{"root dot", ".", []string{}, "."},
		{"single label", "local", []string{"local"}, "local."},
		{"trailing dot", "_http._tcp.local.", []string{"_http", "_tcp", "local"}, "_http._tcp.local."},
		{"escaped dot", `My\.Printer._ipp._tcp.local.`, []string{"My.Printer", "_ipp", "_tcp", "local"}, `My\.Printer._ipp._tcp.local.`},
		{"escaped backslash", `a\\b.local`, []string{`a\b`, "local"}, `a\\b.local.`},
		{"spaces in label", "Living Room TV._airplay._tcp.local.", []string{"Living Room TV", "_airplay", "_tcp", "local"}, "Living Room TV._airplay._tcp.local."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabels, n.Labels())
			assert.Equal(t, tt.wantString, n.String())
		})
	}
}

func TestParseName_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty label", "a..local"},
		{"leading dot", ".local"},
		{"trailing escape", `local\`},
		{"label too long", strings.Repeat("a", 64) + ".local"},
		{"name too long", strings.Repeat(strings.Repeat("a", 63)+".", 4) + "local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseName(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedName), "want ErrMalformedName, got %v", err)
		})
	}
}

func TestNewName_LengthLimits(t *testing.T) {
	// 3 labels of 63 + 1 label of 61: 3*64 + 62 + 1 = 255 bytes exactly
	labels := []string{strings.Repeat("a", 63), strings.Repeat("b", 63), strings.Repeat("c", 63), strings.Repeat("d", 61)}
	n, err := NewName(labels...)
	require.NoError(t, err)
	assert.Equal(t, 255, n.WireLength())

	labels[3] = strings.Repeat("d", 62)
	_, err = NewName(labels...)
	assert.ErrorIs(t, err, ErrMalformedName)
}

func TestName_EqualAndSuffix(t *testing.T) {
	a := MustParseName("Zelda._HTTP._tcp.Local.")
	b := MustParseName("zelda._http._tcp.local")
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Canonical(), b.Canonical())

	assert.True(t, a.HasSuffix(LocalDomain))
	assert.True(t, a.HasSuffix(Root))
	assert.False(t, LocalDomain.HasSuffix(a))

	rest, ok := a.TrimSuffix(MustParseName("_http._tcp.local."))
	require.True(t, ok)
	assert.Equal(t, []string{"Zelda"}, rest.Labels())

	same, ok := a.TrimSuffix(MustParseName("example.com."))
	assert.False(t, ok)
	assert.True(t, same.Equal(a))
}

func TestName_Concat(t *testing.T) {
	svc := MustParseName("_http._tcp")
	full, err := svc.Concat(LocalDomain)
	require.NoError(t, err)
	assert.Equal(t, "_http._tcp.local.", full.String())
	// the receiver is not modified
	assert.Equal(t, "_http._tcp.", svc.String())
}

func TestName_LabelsReturnsCopy(t *testing.T) {
	n := MustParseName("a.local.")
	labels := n.Labels()
	labels[0] = "mutated"
	assert.Equal(t, "a.local.", n.String())
}

func TestMustParseName_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseName("a..b") })
}
