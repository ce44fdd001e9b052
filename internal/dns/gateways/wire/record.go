package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/haukened/rr-mdns/internal/dns/common/dnsname"
	"github.com/haukened/rr-mdns/internal/dns/common/rrdata"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// recordFixedLen is type, class, ttl and rdlength.
const recordFixedLen = 10

// ParseRecord decodes the resource record that starts at msg[offset] and
// returns it with the offset of the byte after it.
// Name failures wrap both domain.ErrMalformedRecord and domain.ErrMalformedName.
func ParseRecord(msg []byte, offset int) (domain.Record, int, error) {
	name, n, err := dnsname.Decode(msg, offset)
	if err != nil {
		return domain.Record{}, 0, fmt.Errorf("%w: owner: %w", domain.ErrMalformedRecord, err)
	}
	offset += n

	if offset+recordFixedLen > len(msg) {
		return domain.Record{}, 0, fmt.Errorf("%w: truncated header for %s", domain.ErrMalformedRecord, name)
	}
	rrType := domain.RRType(binary.BigEndian.Uint16(msg[offset : offset+2]))
	class, flush := domain.SplitClass(binary.BigEndian.Uint16(msg[offset+2 : offset+4]))
	ttl := binary.BigEndian.Uint32(msg[offset+4 : offset+8])
	rdLen := int(binary.BigEndian.Uint16(msg[offset+8 : offset+10]))
	offset += recordFixedLen

	if offset+rdLen > len(msg) {
		return domain.Record{}, 0, fmt.Errorf("%w: %s %s rdlength %d exceeds message", domain.ErrMalformedRecord, name, rrType, rdLen)
	}
	data, err := rrdata.Decode(rrType, msg, offset, rdLen)
	if err != nil {
		return domain.Record{}, 0, fmt.Errorf("%s: %w", name, err)
	}

	return domain.Record{
		Name:       name,
		Type:       rrType,
		Class:      class,
		CacheFlush: flush,
		TTL:        ttl,
		Data:       data,
	}, offset + rdLen, nil
}

// AppendRecord appends the wire form of rr to b. Names are not compressed.
func AppendRecord(b []byte, rr domain.Record) ([]byte, error) {
	if rr.Data == nil {
		return nil, fmt.Errorf("%w: %s has no payload", domain.ErrMalformedRecord, rr.Name)
	}
	if rr.Data.Type() != rr.Type {
		return nil, fmt.Errorf("%w: %s payload type %s does not match record type %s",
			domain.ErrMalformedRecord, rr.Name, rr.Data.Type(), rr.Type)
	}
	payload, err := rrdata.Encode(rr.Data)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0xFFFF {
		return nil, fmt.Errorf("%w: rdata too large: %d bytes (max 65535)", domain.ErrMalformedRecord, len(payload))
	}

	b = dnsname.Append(b, rr.Name)
	b = binary.BigEndian.AppendUint16(b, uint16(rr.Type))
	b = binary.BigEndian.AppendUint16(b, domain.JoinClass(rr.Class, rr.CacheFlush))
	b = binary.BigEndian.AppendUint32(b, rr.TTL)
	b = binary.BigEndian.AppendUint16(b, uint16(len(payload)))
	return append(b, payload...), nil
}

// EncodeRecord returns the wire form of rr.
func EncodeRecord(rr domain.Record) ([]byte, error) {
	return AppendRecord(nil, rr)
}
