// Package wire provides encoding and decoding of DNS messages for mDNS over UDP.
// It handles the DNS wire format as specified in RFC 1035 and the mDNS class bit
// conventions of RFC 6762.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/haukened/rr-mdns/internal/dns/common/dnsname"
	"github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// headerLen is the fixed DNS header size.
const headerLen = 12

// udpCodec implements the MessageCodec interface for mDNS messages over UDP.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec creates and returns a new instance of udpCodec using the provided logger.
func NewUDPCodec(logger log.Logger) *udpCodec {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &udpCodec{
		logger: logger,
	}
}

// EncodeQuery serializes a single question into a query message.
// mDNS queries leave RD clear (RFC 6762 §18.6).
func (c *udpCodec) EncodeQuery(id uint16, q domain.Question) ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	msg := domain.Message{
		ID:        id,
		Questions: []domain.Question{q},
	}
	buf, err := EncodeMessage(msg)
	if err != nil {
		return nil, err
	}
	c.logger.Debug(map[string]any{
		"id":       id,
		"question": q.String(),
		"size":     len(buf),
	}, "encoded query")
	return buf, nil
}

// DecodeMessage parses a message and logs its shape at debug level.
func (c *udpCodec) DecodeMessage(data []byte) (domain.Message, error) {
	msg, err := DecodeMessage(data)
	if err != nil {
		return domain.Message{}, err
	}
	c.logger.Debug(map[string]any{
		"message": msg.String(),
		"size":    len(data),
	}, "decoded message")
	return msg, nil
}

// EncodeMessage serializes a complete message without name compression.
func EncodeMessage(m domain.Message) ([]byte, error) {
	sections := [][]domain.Record{m.Answers, m.Authority, m.Additional}
	for _, count := range []int{len(m.Questions), len(m.Answers), len(m.Authority), len(m.Additional)} {
		if count > 0xFFFF {
			return nil, fmt.Errorf("%w: section too large: %d entries", domain.ErrMalformedMessage, count)
		}
	}

	buf := make([]byte, 0, 512)
	buf = binary.BigEndian.AppendUint16(buf, m.ID)
	buf = binary.BigEndian.AppendUint16(buf, m.Flags.Pack())
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(m.Questions)))
	for _, section := range sections {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(section)))
	}

	for _, q := range m.Questions {
		buf = dnsname.Append(buf, q.Name)
		buf = binary.BigEndian.AppendUint16(buf, uint16(q.Type))
		buf = binary.BigEndian.AppendUint16(buf, domain.JoinClass(q.Class, q.UnicastResponse))
	}
	for _, section := range sections {
		for _, rr := range section {
			var err error
			buf, err = AppendRecord(buf, rr)
			if err != nil {
				return nil, err
			}
		}
	}
	return buf, nil
}

// DecodeMessage parses a whole message, honoring every section count.
// Bytes after the last declared record are ignored; a count that runs past the
// end of data fails with domain.ErrMalformedMessage.
func DecodeMessage(data []byte) (domain.Message, error) {
	if len(data) < headerLen {
		return domain.Message{}, fmt.Errorf("%w: %d bytes, header needs %d", domain.ErrMalformedMessage, len(data), headerLen)
	}
	msg := domain.Message{
		ID:    binary.BigEndian.Uint16(data[0:2]),
		Flags: domain.UnpackFlags(binary.BigEndian.Uint16(data[2:4])),
	}
	qdCount := int(binary.BigEndian.Uint16(data[4:6]))
	anCount := int(binary.BigEndian.Uint16(data[6:8]))
	nsCount := int(binary.BigEndian.Uint16(data[8:10]))
	arCount := int(binary.BigEndian.Uint16(data[10:12]))

	offset := headerLen
	if qdCount > 0 {
		msg.Questions = make([]domain.Question, 0, min(qdCount, 16))
	}
	for i := 0; i < qdCount; i++ {
		q, next, err := parseQuestion(data, offset)
		if err != nil {
			return domain.Message{}, fmt.Errorf("%w: question %d: %w", domain.ErrMalformedMessage, i, err)
		}
		msg.Questions = append(msg.Questions, q)
		offset = next
	}

	var err error
	if msg.Answers, offset, err = parseSection(data, offset, anCount, "answer"); err != nil {
		return domain.Message{}, err
	}
	if msg.Authority, offset, err = parseSection(data, offset, nsCount, "authority"); err != nil {
		return domain.Message{}, err
	}
	if msg.Additional, _, err = parseSection(data, offset, arCount, "additional"); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// parseQuestion extracts a single question entry.
func parseQuestion(data []byte, offset int) (domain.Question, int, error) {
	name, n, err := dnsname.Decode(data, offset)
	if err != nil {
		return domain.Question{}, 0, err
	}
	offset += n
	if offset+4 > len(data) {
		return domain.Question{}, 0, fmt.Errorf("truncated question %s", name)
	}
	class, qu := domain.SplitClass(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
	return domain.Question{
		Name:            name,
		Type:            domain.RRType(binary.BigEndian.Uint16(data[offset : offset+2])),
		Class:           class,
		UnicastResponse: qu,
	}, offset + 4, nil
}

// parseSection extracts count consecutive resource records.
func parseSection(data []byte, offset, count int, section string) ([]domain.Record, int, error) {
	if count == 0 {
		return nil, offset, nil
	}
	// each record needs at least a root owner and the fixed fields
	if offset+count*(1+recordFixedLen) > len(data) {
		return nil, 0, fmt.Errorf("%w: %s count %d exceeds remaining %d bytes",
			domain.ErrMalformedMessage, section, count, len(data)-offset)
	}
	records := make([]domain.Record, 0, count)
	for i := 0; i < count; i++ {
		rr, next, err := ParseRecord(data, offset)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s record %d: %w", domain.ErrMalformedMessage, section, i, err)
		}
		records = append(records, rr)
		offset = next
	}
	return records, offset, nil
}

var _ MessageCodec = &udpCodec{}
