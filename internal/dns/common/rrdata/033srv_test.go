package rrdata

import (
	"errors"
	"testing"

	"github.com/haukened/rr-mdns/internal/dns/domain"
)

func TestEncodeSRVData(t *testing.T) {
	got := encodeSRVData(domain.SRV{
		Priority: 1,
		Weight:   2,
		Port:     8080,
		Target:   domain.MustParseName("host.local."),
	})
	want := []byte{
		0, 1, 0, 2, 0x1F, 0x90,
		4, 'h', 'o', 's', 't',
		5, 'l', 'o', 'c', 'a', 'l',
		0,
	}
	if !equalBytes(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDecodeSRVData(t *testing.T) {
	payload := encodeSRVData(domain.SRV{Port: 631, Target: domain.MustParseName("printer.local.")})
	rd, err := decodeSRVData(payload, 0, len(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	srv := rd.(domain.SRV)
	if srv.Port != 631 {
		t.Errorf("expected port 631, got %d", srv.Port)
	}
	if srv.Target.String() != "printer.local." {
		t.Errorf("expected printer.local., got %s", srv.Target)
	}
}

func TestDecodeSRVData_CompressedTarget(t *testing.T) {
	msg := []byte{
		4, 'h', 'o', 's', 't', 5, 'l', 'o', 'c', 'a', 'l', 0, // 0..11
		0, 0, 0, 0, 0, 80, 0xC0, 0x00, // payload at 12
	}
	rd, err := decodeSRVData(msg, 12, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rd.(domain.SRV).Target.String() != "host.local." {
		t.Errorf("expected host.local., got %s", rd.(domain.SRV).Target)
	}
}

func TestDecodeSRVData_TooShort(t *testing.T) {
	if _, err := decodeSRVData(make([]byte, 6), 0, 6); !errors.Is(err, domain.ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestDecodeSRVData_TargetOverrun(t *testing.T) {
	msg := []byte{0, 0, 0, 0, 0, 80, 4, 'h', 'o', 0}
	if _, err := decodeSRVData(msg, 0, len(msg)); !errors.Is(err, domain.ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestDecodeSRVData_TargetPointerLoop(t *testing.T) {
	// target is a pointer to itself at offset 6
	msg := []byte{0, 0, 0, 0, 0, 80, 0xC0, 0x06}
	_, err := decodeSRVData(msg, 0, len(msg))
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
	if !errors.Is(err, domain.ErrMalformedName) {
		t.Errorf("expected ErrMalformedName, got %v", err)
	}
}
